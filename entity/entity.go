/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package entity

import (
	"fmt"
	"reflect"
)

// Entity is the identity contract every persisted record satisfies.
type Entity interface {
	// GetID returns the storage-assigned identifier and whether it is set.
	// A record that has not been persisted yet reports false.
	GetID() (int64, bool)
}

// Ptr constrains a type parameter to *T where *T is an Entity. Generic
// constructors use it to reach the identifier of a *T without reflection.
type Ptr[T any] interface {
	*T
	Entity
}

// Model is embedded by every persisted struct. The identifier is nil until
// the storage engine assigns it on insert.
//
//	type Book struct {
//		bun.BaseModel `bun:"table:books"`
//		entity.Model
//		Title string `bun:"title,notnull" json:"title"`
//	}
type Model struct {
	ID *int64 `bun:"id,pk,autoincrement" json:"id" xml:"id"`
}

// GetID implements Entity.
func (m *Model) GetID() (int64, bool) {
	if m == nil || m.ID == nil {
		return 0, false
	}
	return *m.ID, true
}

// HasID reports whether e carries a storage-assigned identifier.
func HasID(e Entity) bool {
	if isNil(e) {
		return false
	}
	_, ok := e.GetID()
	return ok
}

// Equal reports whether a and b denote the same record. The same reference
// is always equal to itself. Otherwise both must have a set identifier, the
// identifiers must match and both must be of the same dynamic type. Records
// without an identifier are never equal to another instance.
func Equal(a, b Entity) bool {
	if isNil(a) || isNil(b) {
		return isNil(a) && isNil(b)
	}
	if reflect.TypeOf(a) != reflect.TypeOf(b) {
		return false
	}
	if sameReference(a, b) {
		return true
	}
	idA, okA := a.GetID()
	if !okA {
		return false
	}
	idB, okB := b.GetID()
	return okB && idA == idB
}

// Describe returns the diagnostic form "<TypeName>[ id=<id or null> ]".
func Describe(e Entity) string {
	if isNil(e) {
		return "<nil>"
	}
	t := reflect.TypeOf(e)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if id, ok := e.GetID(); ok {
		return fmt.Sprintf("%s[ id=%d ]", t.Name(), id)
	}
	return fmt.Sprintf("%s[ id=null ]", t.Name())
}

// TypeName returns the bare struct name behind e, used in log fields and
// error messages.
func TypeName(e any) string {
	t := reflect.TypeOf(e)
	if t == nil {
		return "<nil>"
	}
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

func sameReference(a, b Entity) bool {
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Kind() != reflect.Ptr || vb.Kind() != reflect.Ptr {
		return false
	}
	return va.Pointer() == vb.Pointer()
}

func isNil(e Entity) bool {
	if e == nil {
		return true
	}
	v := reflect.ValueOf(e)
	return v.Kind() == reflect.Ptr && v.IsNil()
}

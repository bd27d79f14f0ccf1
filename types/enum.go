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

package types

import "strings"

// Common illegal/default values used by enums.
const (
	IllegalValue = -1
	IllegalName  = "unknown"
	IllegalDesc  = "unknown"
)

// BaseEnum represents a basic enum contract used by domain types.
type BaseEnum interface {
	IsValid() bool
	Number() int
	String() string
	Desc() string
	Name() string
}

// Verb is one of the operations a resource can expose.
type Verb int

const (
	VerbCreate Verb = iota
	VerbList
	VerbGet
	VerbRange
	VerbCount
	VerbUpdate
	VerbDelete
)

var _ BaseEnum = VerbCreate

var verbNames = [...]string{"create", "list", "get", "range", "count", "update", "delete"}

var verbDescs = [...]string{
	"POST / creates a record",
	"GET / lists every record",
	"GET /{id} reads one record",
	"GET /{from}/{to} reads a slice of records",
	"GET /count counts records",
	"PUT / updates a record",
	"DELETE /{id} removes a record",
}

// AllVerbs returns every verb in declaration order.
func AllVerbs() []Verb {
	return []Verb{VerbCreate, VerbList, VerbGet, VerbRange, VerbCount, VerbUpdate, VerbDelete}
}

// ReadVerbs returns the verbs that never write.
func ReadVerbs() []Verb {
	return []Verb{VerbList, VerbGet, VerbRange, VerbCount}
}

// ParseVerb resolves a verb by its case-insensitive name.
func ParseVerb(name string) (Verb, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	for i, v := range verbNames {
		if v == n {
			return Verb(i), true
		}
	}
	return Verb(IllegalValue), false
}

func (v Verb) IsValid() bool { return v >= VerbCreate && v <= VerbDelete }

func (v Verb) Number() int {
	if !v.IsValid() {
		return IllegalValue
	}
	return int(v)
}

func (v Verb) Name() string {
	if !v.IsValid() {
		return IllegalName
	}
	return verbNames[v]
}

func (v Verb) String() string { return v.Name() }

func (v Verb) Desc() string {
	if !v.IsValid() {
		return IllegalDesc
	}
	return verbDescs[v]
}

// Mutates reports whether the verb writes to storage.
func (v Verb) Mutates() bool {
	return v == VerbCreate || v == VerbUpdate || v == VerbDelete
}

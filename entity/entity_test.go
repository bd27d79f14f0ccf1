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

import "testing"

type book struct {
	Model
	Title string
}

type author struct {
	Model
	Name string
}

func idPtr(v int64) *int64 { return &v }

func TestModelGetID(t *testing.T) {
	var b book
	if _, ok := b.GetID(); ok {
		t.Fatalf("expected unset id on a fresh record")
	}
	b.ID = idPtr(7)
	id, ok := b.GetID()
	if !ok || id != 7 {
		t.Fatalf("expected id 7, got %d (set=%v)", id, ok)
	}

	var nilModel *Model
	if _, ok := nilModel.GetID(); ok {
		t.Fatalf("nil model must report unset id")
	}
}

func TestEqual(t *testing.T) {
	transient := &book{Title: "a"}
	otherTransient := &book{Title: "a"}

	tests := []struct {
		name string
		a, b Entity
		want bool
	}{
		{"same transient reference", transient, transient, true},
		{"distinct transient instances", transient, otherTransient, false},
		{"same id", &book{Model: Model{ID: idPtr(1)}}, &book{Model: Model{ID: idPtr(1)}, Title: "x"}, true},
		{"different id", &book{Model: Model{ID: idPtr(1)}}, &book{Model: Model{ID: idPtr(2)}}, false},
		{"one side transient", &book{Model: Model{ID: idPtr(1)}}, &book{}, false},
		{"different types same id", &book{Model: Model{ID: idPtr(1)}}, &author{Model: Model{ID: idPtr(1)}}, false},
		{"nil and record", nil, transient, false},
		{"typed nil both sides", (*book)(nil), (*book)(nil), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Equal(tt.a, tt.b); got != tt.want {
				t.Fatalf("Equal() = %v, want %v", got, tt.want)
			}
			if got := Equal(tt.b, tt.a); got != tt.want {
				t.Fatalf("Equal() is not symmetric: got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDescribe(t *testing.T) {
	if got := Describe(&book{}); got != "book[ id=null ]" {
		t.Fatalf("unexpected description %q", got)
	}
	if got := Describe(&book{Model: Model{ID: idPtr(42)}}); got != "book[ id=42 ]" {
		t.Fatalf("unexpected description %q", got)
	}
	if got := Describe((*book)(nil)); got != "<nil>" {
		t.Fatalf("unexpected description %q", got)
	}
}

func TestHasID(t *testing.T) {
	if HasID(&book{}) {
		t.Fatalf("transient record reported an id")
	}
	if !HasID(&book{Model: Model{ID: idPtr(3)}}) {
		t.Fatalf("persisted record reported no id")
	}
	if HasID((*book)(nil)) {
		t.Fatalf("nil record reported an id")
	}
}

/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package strategy

import (
	"testing"

	"dirpx.dev/dos/apis"
)

type A struct{}
type G[T any] struct{}
type W[T any] struct{ V T }

type entity string

func (e entity) EntityName() string { return string(e) }

func TestEntities(t *testing.T) {
	s := Entities()
	tests := []struct {
		name    string
		val     any
		want    string
		handled bool
	}{
		{"namer", entity("shapes.Circle"), "shapes.Circle", true},
		{"empty name", entity(""), "", false},
		{"not a namer", A{}, "", false},
		{"nil", nil, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := s.Name(tt.val, apis.Config{})
			if got != tt.want || ok != tt.handled {
				t.Fatalf("Name: got (%q, %v), want (%q, %v)", got, ok, tt.want, tt.handled)
			}
		})
	}
}

func TestDeclared(t *testing.T) {
	s := Declared()
	cfg := apis.Config{MaxUnwrap: 8}
	tests := []struct {
		name    string
		val     any
		want    string
		handled bool
	}{
		{"struct", A{}, "strategy.A", true},
		{"pointer", &A{}, "strategy.A", true},
		{"slice", []A{}, "strategy.A", true},
		{"array", [2]A{}, "strategy.A", true},
		{"map element", map[string]A{}, "strategy.A", true},
		{"map of builtins", map[string]int{}, "", false},
		{"generic", G[int]{}, "strategy.G", true},
		{"wrapped generic", []W[G[int]]{}, "strategy.W", true},
		{"builtin", 42, "", false},
		{"anonymous", struct{}{}, "", false},
		{"func", func() {}, "", false},
		{"nil", nil, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := s.Name(tt.val, cfg)
			if got != tt.want || ok != tt.handled {
				t.Fatalf("Name: got (%q, %v), want (%q, %v)", got, ok, tt.want, tt.handled)
			}
		})
	}
}

func TestDeclaredMaxUnwrap(t *testing.T) {
	s := Declared()
	if got, ok := s.Name((***A)(nil), apis.Config{MaxUnwrap: 2}); ok {
		t.Fatalf("MaxUnwrap 2: got (%q, true), want (\"\", false)", got)
	}
	if got, ok := s.Name((***A)(nil), apis.Config{MaxUnwrap: 3}); !ok || got != "strategy.A" {
		t.Fatalf("MaxUnwrap 3: got (%q, %v), want (strategy.A, true)", got, ok)
	}
	if got, ok := s.Name(&A{}, apis.Config{}); !ok || got != "strategy.A" {
		t.Fatalf("MaxUnwrap 0: got (%q, %v), want (strategy.A, true)", got, ok)
	}
}

func TestTags(t *testing.T) {
	s := Tags()
	cfg := apis.Config{MaxUnwrap: 8}
	tests := []struct {
		val  any
		want string
	}{
		{nil, "undefined"},
		{1, "number"},
		{"s", "string"},
		{[]string{}, "array"},
		{A{}, "object"},
	}
	for _, tt := range tests {
		if got, ok := s.Name(tt.val, cfg); !ok || got != tt.want {
			t.Fatalf("Name(%T): got (%q, %v), want (%q, true)", tt.val, got, ok, tt.want)
		}
	}
}

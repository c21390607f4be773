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

package builder_test

import (
	"testing"

	"dirpx.dev/dos/apis"
	"dirpx.dev/dos/builder"
	"dirpx.dev/dos/config"
)

// leaf is a root class node with no bases.
type leaf struct {
	id   int64
	name string
}

func (l leaf) EntityName() string                    { return l.name }
func (l leaf) NodeID() int64                         { return l.id }
func (l leaf) IsInterface() bool                     { return false }
func (l leaf) InstanceOfNode(o apis.ClassNode) bool  { return o.NodeID() == l.id }
func (l leaf) ImplementsNode(_ apis.ClassNode) bool  { return false }
func (l leaf) BaseNodes() []apis.ClassNode           { return nil }

// hotType implements apis.Namer and must win over every other strategy.
type hotType struct{}

func (hotType) EntityName() string { return "hot-name" }

// userType is a plain named type resolved by reflection.
type userType struct{}

func TestBuildRegistry_MigratesPrevious(t *testing.T) {
	b := builder.New()
	cfg := config.DefaultConfig()

	prev := b.BuildRegistry(cfg, nil)
	for i, n := range []string{"a.One", "a.Two"} {
		if err := prev.Register(leaf{id: int64(i + 1), name: n}); err != nil {
			t.Fatalf("Register(%s): %v", n, err)
		}
	}

	next := b.BuildRegistry(cfg, prev)
	if next.Count() != 2 {
		t.Fatalf("Count() = %d, want 2", next.Count())
	}
	entries := next.Entries()
	if entries[0].EntityName() != "a.One" || entries[1].EntityName() != "a.Two" {
		t.Fatalf("Entries order: got (%s,%s), want (a.One,a.Two)", entries[0].EntityName(), entries[1].EntityName())
	}
}

func TestBuildResolver_Chain(t *testing.T) {
	b := builder.New()
	cfg := config.DefaultConfig()
	res := b.BuildResolver(cfg, b.BuildRegistry(cfg, nil))

	cases := []struct {
		val  any
		want string
	}{
		{hotType{}, "hot-name"},
		{userType{}, "builder_test.userType"},
		{&userType{}, "builder_test.userType"},
		{"str", "string"},
		{[]int{1}, "array"},
	}
	for _, tc := range cases {
		if got := res.Resolve(tc.val, cfg); got != tc.want {
			t.Fatalf("Resolve(%T): got (%q), want (%q)", tc.val, got, tc.want)
		}
	}
}

func TestBuildResolver_ExtraStrategiesFirst(t *testing.T) {
	celsius := apis.StrategyFunc(func(v any, _ apis.Config) (string, bool) {
		if _, ok := v.(userType); ok {
			return "units.Celsius", true
		}
		return "", false
	})
	b := builder.New(celsius)
	cfg := config.DefaultConfig()
	res := b.BuildResolver(cfg, b.BuildRegistry(cfg, nil))

	if got := res.Resolve(userType{}, cfg); got != "units.Celsius" {
		t.Fatalf("Resolve(userType): got (%q), want (units.Celsius)", got)
	}
	if got := res.Resolve(hotType{}, cfg); got != "hot-name" {
		t.Fatalf("Resolve(hotType): got (%q), want (hot-name)", got)
	}
}

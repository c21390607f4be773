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

// Package dos is a dynamic object system: classes are defined at runtime
// from descriptors, instances are built from scopes of named members, and
// everything about a class can be inspected while the program runs.
//
// # Classes
//
// A class is defined through a Runtime with one of the definers (Class,
// Abstract, Root, Interface, Static, AllocatorClass, Exception) and a
// Descriptor naming its superclass, the interfaces and mixins it
// implements, its allocator and its bodies:
//
//	rt, _ := dos.NewRuntime()
//	point, err := rt.Class("geo.Point", dos.Descriptor{
//		Body: func(b *dos.Body) {
//			b.Private.Field("x", dos.GetterOn(b.Public))
//			b.Defaults(func(d map[string]any) { d["x"] = 0 })
//			b.Init(func(p *dos.Params) error {
//				x, err := p.Get("x")
//				if err != nil {
//					return err
//				}
//				return b.Private.Set("x", x)
//			})
//		},
//	})
//
// The class is placed in the runtime namespace under its dotted name and
// registered in the class graph. A failed definition leaves neither.
//
// # Scopes
//
// An instance has four scopes. Public and Protected are shared by every
// level of the hierarchy; Private belongs to one level; Super is a
// read-only snapshot of what the levels below defined. Bodies declare
// members on them while they run, after that the scopes only accept reads,
// writes and calls of existing members.
//
// # Interfaces
//
// An interface body declares requirements by passing nil implementations:
//
//	b.Public.Method("draw", nil)
//	b.Public.Getter("area", nil)
//
// Every requirement still open once the leaf level of an instance has run
// its body fails the construction with ErrInterfaceContract.
// Class.Obligations lists the open ones without constructing anything.
//
// # Static sections
//
// The Static body of a descriptor builds a single class-level object
// reachable through Class.Static, Class.Get and friends. Instances
// requested while it is initializing stay pending and are constructed as
// soon as it completes.
//
// # Lifecycle
//
// Class.New allocates through the class allocator, merges the defaults of
// every level with the given params and runs the constructors, super
// first. Object.Dispose runs the destructors in reverse and hands the
// instance back to its allocator. Runtime.Deinit disposes the static
// sections.
//
// A default runtime backs the package-level helpers (Define, Import,
// Lookup, Throw, Deinit). A Runtime is not safe for concurrent definition.
package dos

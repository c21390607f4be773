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

package apis

// ClassNode is the view of a class the registry needs.
type ClassNode interface {
	Namer
	// NodeID returns the arena slot of the class. It is unique per runtime.
	NodeID() int64
	// IsInterface reports whether the class is an interface.
	IsInterface() bool
	// InstanceOfNode reports whether other is in the ancestor chain of the class.
	InstanceOfNode(other ClassNode) bool
	// ImplementsNode reports whether other is in any ancestor level's interface list.
	ImplementsNode(other ClassNode) bool
	// BaseNodes returns the superclass (if any) followed by the implemented interfaces.
	BaseNodes() []ClassNode
}

// Registry is the append-only, definition-ordered set of classes of a runtime.
type Registry interface {
	// Register appends c. Registering the same class twice is a no-op.
	Register(c ClassNode) error
	// Lookup returns the first class registered under a canonical name.
	Lookup(name string) (ClassNode, bool)
	// Entries returns a snapshot in definition order.
	Entries() []ClassNode
	// Count returns the number of registered classes.
	Count() int
	// DescendantsOf returns every registered class that is an instance of c, excluding c.
	DescendantsOf(c ClassNode) []ClassNode
	// ImplementorsOf returns every registered class that implements c, excluding c.
	ImplementorsOf(c ClassNode) []ClassNode
	// Sorted returns the classes ordered so that bases precede derived classes.
	Sorted() ([]ClassNode, error)
	// MarshalDOT renders the class graph in Graphviz DOT format.
	MarshalDOT(name string) ([]byte, error)
}

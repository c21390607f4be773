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

package dos

import (
	"errors"
	"fmt"
)

var (
	// ErrDefinition classifies errors raised while defining a class.
	ErrDefinition = errors.New("dos: class definition error")
	// ErrInstantiation classifies attempts to instantiate abstract, interface or static classes.
	ErrInstantiation = errors.New("dos: instantiation error")
	// ErrInterfaceContract classifies interface obligations left unresolved.
	ErrInterfaceContract = errors.New("dos: interface contract violated")
	// ErrFieldType classifies incompatible assignments to typesafe fields.
	ErrFieldType = errors.New("dos: field type error")
	// ErrParam classifies missing or mistyped parameters.
	ErrParam = errors.New("dos: parameter error")

	// ErrSealed is returned by definition helpers used outside their definition window.
	ErrSealed = errors.New("dos: scope is sealed")
	// ErrNoConstructor is returned when instantiating a class whose root has no init anywhere in the chain.
	ErrNoConstructor = errors.New("dos: class has no constructor")
	// ErrDoubleRelease is returned by allocators when an instance is released twice.
	ErrDoubleRelease = errors.New("dos: instance released twice")
	// ErrNoMember is returned when a scope has no member of the requested name.
	ErrNoMember = errors.New("dos: no such member")
	// ErrReadOnly is returned when writing a member that cannot be written.
	ErrReadOnly = errors.New("dos: member is read-only")
	// ErrNotCallable is returned when calling a member that is not a method.
	ErrNotCallable = errors.New("dos: member is not callable")
	// ErrPending is returned when using an instance whose construction is deferred.
	ErrPending = errors.New("dos: instance is pending static initialization")
)

// ClassError is an error tied to a class. Kind is one of the classification
// sentinels (ErrDefinition, ErrInstantiation, ErrInterfaceContract, ErrFieldType).
type ClassError struct {
	// Class is the canonical name of the class involved.
	Class string
	// Kind is the classification sentinel.
	Kind error
	// Msg describes the violated contract.
	Msg string
	// Err is an optional underlying cause.
	Err error
}

func (e *ClassError) Error() string {
	s := e.Msg
	if e.Class != "" {
		s = e.Class + ": " + s
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

// Unwrap exposes both the classification and the cause to errors.Is and errors.As.
func (e *ClassError) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

func defErr(class, format string, args ...any) error {
	return &ClassError{Class: class, Kind: ErrDefinition, Msg: fmt.Sprintf(format, args...)}
}

func instErr(class, format string, args ...any) error {
	return &ClassError{Class: class, Kind: ErrInstantiation, Msg: fmt.Sprintf(format, args...)}
}

func contractErr(class, format string, args ...any) error {
	return &ClassError{Class: class, Kind: ErrInterfaceContract, Msg: fmt.Sprintf(format, args...)}
}

func typeErr(class, format string, args ...any) error {
	return &ClassError{Class: class, Kind: ErrFieldType, Msg: fmt.Sprintf(format, args...)}
}

// wrapErr attaches a class context to a cause under the given classification.
func wrapErr(class string, kind error, msg string, err error) error {
	return &ClassError{Class: class, Kind: kind, Msg: msg, Err: err}
}

// ParamError reports a parameter that is missing, mistyped or invalid.
type ParamError struct {
	// Param is the parameter name ("" when not tied to one).
	Param string
	// Msg is the human-readable reason.
	Msg string
}

func (e *ParamError) Error() string { return e.Msg }

// Unwrap returns ErrParam.
func (e *ParamError) Unwrap() error { return ErrParam }

func paramErr(name, format string, args ...any) error {
	return &ParamError{Param: name, Msg: fmt.Sprintf(format, args...)}
}

// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package deep

import (
	"fmt"
)

// Kind identifies the constructor used to build a given command.
type Kind uint8

const (
	// RETURN identifies a command which immediately produces a value.
	RETURN Kind = iota
	// BIND identifies the sequential composition of two commands.
	BIND
	// READ identifies a command which reads one heap location.
	READ
	// WRITE identifies a command which writes one heap location.
	WRITE
	// LOOP identifies an (unbounded) loop.
	LOOP
)

func (k Kind) String() string {
	switch k {
	case RETURN:
		return "return"
	case BIND:
		return "bind"
	case READ:
		return "read"
	case WRITE:
		return "write"
	case LOOP:
		return "loop"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Unit is the result type of commands executed only for their effect on the
// heap (e.g. Write).
type Unit struct{}

// Command describes a heap-manipulating computation which, if it terminates,
// produces a result of type R.  Commands are immutable trees constructed using
// Return, Bind, Read, Write and Loop.  Constructing a command performs no
// computation: the components of a Bind or Loop are only evaluated when
// demanded by the stepper.
//
// Internally, commands are untyped so that a Bind can chain commands of
// different result types.  Type safety is established by the constructors,
// which are the only way to build a command.
type Command[R any] struct {
	node node
}

// Kind returns the constructor used to build this command.  The zero Command
// (i.e. one not built by a constructor) is invalid and has no kind.
func (p Command[R]) Kind() Kind {
	if p.node == nil {
		panic("empty command has no kind")
	}
	//
	return p.node.kind()
}

func (p Command[R]) String() string {
	if p.node == nil {
		return "<nil>"
	}
	//
	return p.node.String()
}

// Return constructs a command which immediately produces the given value,
// without accessing the heap.
func Return[R any](value R) Command[R] {
	return Command[R]{&returnNode{value}}
}

// Bind constructs the sequential composition of two commands: first execute c,
// then feed its result into k to determine the command to execute next.  The
// continuation k is not called until c has produced its result.
func Bind[A any, R any](c Command[A], k func(A) Command[R]) Command[R] {
	if k == nil {
		panic("bind requires a continuation")
	}
	//
	return Command[R]{&bindNode{c.node, func(v any) node { return k(unwrap[A](v)).node }}}
}

// Then sequences two commands, discarding the result of the first.
func Then[A any, R any](c1 Command[A], c2 Command[R]) Command[R] {
	return Bind(c1, func(A) Command[R] { return c2 })
}

// Map applies a pure function to the result of a command.
func Map[A any, R any](c Command[A], fn func(A) R) Command[R] {
	return Bind(c, func(v A) Command[R] { return Return(fn(v)) })
}

// Read constructs a command which reads the value held at a given address.
// Addresses which have never been written hold zero.
func Read(address uint64) Command[uint64] {
	return Command[uint64]{&readNode{address}}
}

// Write constructs a command which overwrites the value held at a given
// address.
func Write(address uint64, value uint64) Command[Unit] {
	return Command[Unit]{&writeNode{address, value}}
}

// Loop constructs an unbounded loop.  Starting from the initial accumulator,
// the body is executed repeatedly: when it produces Again(a) the loop continues
// with accumulator a; when it produces Done(r), the loop terminates with result
// r.  A loop whose body never produces Done does not terminate.
func Loop[A any](init A, body func(A) Command[Outcome[A]]) Command[A] {
	if body == nil {
		panic("loop requires a body")
	}
	//
	return Command[A]{&loopNode{init, func(v any) node { return body(unwrap[A](v)).node }}}
}

// ============================================================================
// Loop Outcomes
// ============================================================================

// Outcome is the result of a single iteration of a loop body: either the loop
// continues with a new accumulator (Again), or it has finished with a given
// result (Done).
type Outcome[A any] struct {
	done  bool
	value A
}

// Again constructs an outcome indicating that the loop continues with the
// given accumulator.
func Again[A any](acc A) Outcome[A] {
	return Outcome[A]{false, acc}
}

// Done constructs an outcome indicating that the loop terminates with the
// given result.
func Done[A any](result A) Outcome[A] {
	return Outcome[A]{true, result}
}

// IsDone checks whether this outcome terminates the loop.
func (o Outcome[A]) IsDone() bool {
	return o.done
}

// Value returns the accumulator (for Again) or result (for Done).
func (o Outcome[A]) Value() A {
	return o.value
}

func (o Outcome[A]) String() string {
	if o.done {
		return fmt.Sprintf("done(%v)", o.value)
	}
	//
	return fmt.Sprintf("again(%v)", o.value)
}

// unpack provides untyped access to an outcome, as needed when unrolling a
// loop.
func (o Outcome[A]) unpack() (bool, any) {
	return o.done, o.value
}

// tagged is implemented by every instance of Outcome.
type tagged interface {
	unpack() (bool, any)
}

// ============================================================================
// Nodes
// ============================================================================

type node interface {
	fmt.Stringer
	kind() Kind
}

type returnNode struct {
	value any
}

type bindNode struct {
	first node
	then  func(any) node
}

type readNode struct {
	address uint64
}

type writeNode struct {
	address uint64
	value   uint64
}

type loopNode struct {
	acc  any
	body func(any) node
}

func (p *returnNode) kind() Kind { return RETURN }
func (p *bindNode) kind() Kind   { return BIND }
func (p *readNode) kind() Kind   { return READ }
func (p *writeNode) kind() Kind  { return WRITE }
func (p *loopNode) kind() Kind   { return LOOP }

func (p *returnNode) String() string {
	return fmt.Sprintf("return %v", p.value)
}

func (p *bindNode) String() string {
	return fmt.Sprintf("%s; ...", p.first.String())
}

func (p *readNode) String() string {
	return fmt.Sprintf("read %d", p.address)
}

func (p *writeNode) String() string {
	return fmt.Sprintf("write %d %d", p.address, p.value)
}

func (p *loopNode) String() string {
	return fmt.Sprintf("loop %v", p.acc)
}

// iterate determines what happens after one iteration of this loop's body has
// produced the given outcome: either the loop is entered again with the next
// accumulator, or the final result is returned.
func (p *loopNode) iterate(outcome any) node {
	done, value := outcome.(tagged).unpack()
	//
	if done {
		return &returnNode{value}
	}
	//
	return &loopNode{value, p.body}
}

// unwrap an untyped value as a given type.  A nil value unwraps as the zero
// value of that type.
func unwrap[T any](value any) T {
	v, _ := value.(T)
	return v
}

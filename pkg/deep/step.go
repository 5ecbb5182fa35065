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

	"github.com/yurrriq/frap/pkg/heap"
	"github.com/yurrriq/frap/pkg/util/collection/stack"
)

// StepResult captures the unit of progress made by executing a command: either
// the command has produced its final answer, or it has been suspended and
// execution can be resumed later from the given heap and command (sometimes
// also known as a "continuation").  For an answer, the heap is that against
// which the answer was produced (which is unchanged by the answering step).
type StepResult[R any] struct {
	answered bool
	value    R
	heap     heap.Heap
	next     Command[R]
}

// Answer constructs a step result holding a final answer.
func Answer[R any](value R, h heap.Heap) StepResult[R] {
	return StepResult[R]{true, value, h, Command[R]{}}
}

// Suspended constructs a step result from which execution can continue.
func Suspended[R any](h heap.Heap, next Command[R]) StepResult[R] {
	var empty R
	return StepResult[R]{false, empty, h, next}
}

// IsAnswer checks whether this result holds a final answer.
func (p StepResult[R]) IsAnswer() bool {
	return p.answered
}

// Value returns the final answer held in this result, or panics if execution
// was suspended.
func (p StepResult[R]) Value() R {
	if !p.answered {
		panic("suspended execution has no value")
	}
	//
	return p.value
}

// Heap returns the heap at this point in the execution.
func (p StepResult[R]) Heap() heap.Heap {
	return p.heap
}

// Next returns the command from which a suspended execution resumes, or panics
// if this result holds a final answer.
func (p StepResult[R]) Next() Command[R] {
	if p.answered {
		panic("answered execution has no continuation")
	}
	//
	return p.next
}

func (p StepResult[R]) String() string {
	if p.answered {
		return fmt.Sprintf("answer(%v, %s)", p.value, p.heap.String())
	}
	//
	return fmt.Sprintf("suspended(%s, %s)", p.heap.String(), p.next.String())
}

// Step performs exactly one primitive action of a given command on a given
// heap, producing either a final answer or a suspended execution.  Stepping is
// total: reads of unwritten locations produce zero, and no command can fail.
//
// The first component of a Bind is stepped in place, keeping the continuation.
// However, once the first component of a Bind has produced its result, feeding
// it into the continuation counts as a step in its own right (i.e. the result
// is suspended rather than answered).  Likewise, a Loop unrolls exactly one
// iteration of its body into a Bind, and never executes the body itself.
func Step[R any](c Command[R], h heap.Heap) StepResult[R] {
	var (
		cursor = newCursor(c.node)
		t      = cursor.advance(h)
	)
	//
	if t.answered {
		return Answer(unwrap[R](t.value), h)
	}
	//
	return Suspended(t.heap, Command[R]{cursor.node()})
}

// transition is the untyped outcome of a single step.
type transition struct {
	answered bool
	value    any
	heap     heap.Heap
}

// ============================================================================
// Cursor
// ============================================================================

// cursor is an executing command, split into the command at the head of its
// left spine and the stack of continuations enclosing it (where the top of the
// stack is innermost).  Advancing a cursor only ever touches the head of the
// spine.
type cursor struct {
	command       node
	continuations *stack.Stack[func(any) node]
}

func newCursor(command node) *cursor {
	return &cursor{command, stack.NewStack[func(any) node]()}
}

// clone returns a cursor which can be advanced independently of this one.
func (p *cursor) clone() *cursor {
	return &cursor{p.command, p.continuations.Clone()}
}

// kind returns the kind of the command represented by this cursor as a whole.
func (p *cursor) kind() Kind {
	if !p.continuations.IsEmpty() {
		return BIND
	}
	//
	return p.command.kind()
}

// node reconstructs the command represented by this cursor as a whole.
func (p *cursor) node() node {
	var inner = p.command
	//
	for i := range p.continuations.Len() {
		inner = &bindNode{inner, p.continuations.Peek(i)}
	}
	//
	return inner
}

// advance this cursor by exactly one step on a given heap.
func (p *cursor) advance(h heap.Heap) transition {
	var n = p.command
	// Descend nested binds, since the innermost first component is the one
	// which actually executes.
	for b, ok := n.(*bindNode); ok; b, ok = n.(*bindNode) {
		p.continuations.Push(b.then)
		n = b.first
	}
	//
	switch n := n.(type) {
	case *returnNode:
		return p.feed(n, n.value, h)
	case *readNode:
		return p.feed(n, h.Lookup(n.address), h)
	case *writeNode:
		p.command = &returnNode{Unit{}}
		//
		return transition{false, nil, h.Update(n.address, n.value)}
	case *loopNode:
		p.command = &bindNode{n.body(n.acc), n.iterate}
		//
		return transition{false, nil, h}
	default:
		panic(fmt.Sprintf("unknown command encountered (%T)", n))
	}
}

// feed a value produced by the command at the head of the spine into its
// innermost continuation.  If there is no enclosing continuation, the value is
// the final answer.
func (p *cursor) feed(head node, value any, h heap.Heap) transition {
	if p.continuations.IsEmpty() {
		p.command = head
		//
		return transition{true, value, h}
	}
	//
	var k = p.continuations.Pop()
	//
	p.command = k(value)
	//
	return transition{false, nil, h}
}

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
package hoare

import (
	"errors"
	"fmt"
	"reflect"

	log "github.com/sirupsen/logrus"
	"github.com/yurrriq/frap/pkg/deep"
	"github.com/yurrriq/frap/pkg/heap"
	"github.com/yurrriq/frap/pkg/util/collection/stack"
)

// Report summarises the verification of a triple against a given heap.
type Report[R any] struct {
	// Indicates whether the command produced its answer within the available
	// fuel.  If not, every configuration reached was nevertheless consistent
	// with the triple.
	Finished bool
	// Answer produced (when finished).
	Value R
	// Heap at the last configuration reached.
	Heap heap.Heap
	// Number of steps executed.
	Steps uint
	// Number of assertions evaluated.
	Obligations uint
}

// Verify checks a triple against a given starting heap by executing at most
// fuel steps of its command.  Each step is mirrored on the triple's derivation,
// which maintains the invariant that there is a valid derivation linking the
// current command and heap to the triple's postcondition.  Maintaining this
// invariant requires checking the side conditions of each rule on the
// configurations reached: the implications of consequence, the preconditions of
// bind continuations, and the establishment and preservation of loop
// invariants.  When the command produces its answer, the invariant ensures
// that the postcondition holds, which is also checked directly.
//
// A heap which does not satisfy the precondition is reported with
// ErrPreconditionUnmet.  Running out of fuel is not an error.
func Verify[R any](t Triple[R], h heap.Heap, fuel uint) (Report[R], error) {
	var (
		c       = checker{}
		current = t.derivation
		command = t.command
	)
	//
	if err := c.require(holds(t.pre, h), ErrPreconditionUnmet, t.Rule(), "precondition does not hold", h); err != nil {
		return newReport[R](&c, h), err
	}
	//
	for c.steps < fuel {
		var (
			expected  = deep.Step(command, h)
			next, err = c.step(current, h)
		)
		//
		if err != nil {
			return newReport[R](&c, h), err
		}
		//
		c.steps++
		// Sanity check derivation against command
		if err = agree(&c, expected, next); err != nil {
			return newReport[R](&c, h), err
		}
		//
		if next.answered {
			var value = unwrap[R](next.value)
			//
			if err = c.require(t.post(value, h), ErrObligationUnmet, t.Rule(), "postcondition does not hold", h); err != nil {
				return newReport[R](&c, h), err
			}
			//
			log.Debugf("verified %s triple in %d steps (%d obligations)", t.Rule(), c.steps, c.obligations)
			//
			report := newReport[R](&c, h)
			report.Finished, report.Value = true, value
			//
			return report, nil
		}
		//
		h, current, command = next.heap, next.next, expected.Next()
	}
	//
	log.Debugf("fuel exhausted verifying %s triple after %d steps (%d obligations)", t.Rule(), c.steps, c.obligations)
	//
	return newReport[R](&c, h), nil
}

// VerifyAll checks a triple against every heap in a given sample which
// satisfies its precondition, returning every diagnostic produced.
func VerifyAll[R any](t Triple[R], heaps []heap.Heap, fuel uint) error {
	var (
		errs    []error
		skipped uint
	)
	//
	for i, h := range heaps {
		if !holds(t.pre, h) {
			skipped++
			continue
		}
		//
		if _, err := Verify(t, h, fuel); err != nil {
			errs = append(errs, fmt.Errorf("heap #%d: %w", i, err))
		}
	}
	//
	log.Debugf("checked %s triple on %d heaps (%d skipped, %d failed)", t.Rule(), len(heaps), skipped, len(errs))
	//
	return errors.Join(errs...)
}

// ============================================================================
// Checker
// ============================================================================

// checker executes derivations one step at a time, in exactly the same manner
// as commands are executed, whilst checking the side conditions of every rule
// encountered.
type checker struct {
	steps       uint
	obligations uint
}

// outcome is the (untyped) result of stepping a derivation.
type outcome struct {
	answered bool
	value    any
	heap     heap.Heap
	next     derivation
}

// newReport constructs an (unfinished) report from the current state of a
// checker.
func newReport[R any](c *checker, h heap.Heap) Report[R] {
	return Report[R]{Heap: h, Steps: c.steps, Obligations: c.obligations}
}

func (p *checker) require(ok bool, kind error, rule string, msg string, h heap.Heap) error {
	p.obligations++
	//
	if ok {
		return nil
	}
	//
	return &Diagnostic{kind, rule, msg, p.steps, h}
}

// agree checks that a step of a derivation matches the corresponding step of
// its command.
func agree[R any](c *checker, expected deep.StepResult[R], actual outcome) error {
	var msg string
	//
	switch {
	case expected.IsAnswer() != actual.answered:
		msg = "termination differs from command"
	case !expected.Heap().Equal(actual.heap):
		msg = fmt.Sprintf("heap differs from command (%s)", expected.Heap().String())
	case actual.answered && !reflect.DeepEqual(any(expected.Value()), actual.value):
		msg = fmt.Sprintf("answer %v differs from command (%v)", actual.value, expected.Value())
	default:
		return nil
	}
	//
	return &Diagnostic{ErrDerivationMismatch, "step", msg, c.steps, actual.heap}
}

// step performs exactly one step of a given derivation.
func (p *checker) step(d derivation, h heap.Heap) (outcome, error) {
	var frames = stack.NewStack[frame]()
	// Descend the left spine, checking preconditions of consequences as they
	// are entered.
	for descending := true; descending; {
		switch n := d.(type) {
		case *bindRule:
			frames.Push(bindFrame{n})
			d = n.first
		case *consequenceRule:
			if !n.entered {
				if err := p.require(holds(n.precondition, h), n.kind, n.name, "precondition does not hold on entry", h); err != nil {
					return outcome{}, err
				} else if err := p.require(holds(n.inner.pre(), h), n.kind, n.name, "precondition not strengthened", h); err != nil {
					return outcome{}, err
				}
			}
			//
			frames.Push(checkFrame{n})
			d = n.inner
		default:
			descending = false
		}
	}
	//
	switch n := d.(type) {
	case *returnRule:
		if err := p.checkLeaf(n.rule(), n.precondition, n.post, n.value, h); err != nil {
			return outcome{}, err
		}
		//
		return p.feed(frames, n.value, h)
	case *readRule:
		var value = h.Lookup(n.address)
		//
		if err := p.checkLeaf(n.rule(), n.precondition, n.post, value, h); err != nil {
			return outcome{}, err
		}
		//
		return p.feed(frames, value, h)
	case *writeRule:
		if err := p.require(holds(n.precondition, h), ErrObligationUnmet, n.rule(), "precondition does not hold", h); err != nil {
			return outcome{}, err
		}
		// Remember the witness for the existential in the postcondition
		n.witnesses.Record(h.Lookup(n.address))
		//
		var next derivation = &resultRule{n.rule(), ErrObligationUnmet, deep.Unit{}, n.post}
		//
		return outcome{false, nil, h.Update(n.address, n.value), rebuild(frames, next)}, nil
	case *resultRule:
		if err := p.require(n.post(n.value, h), n.kind, n.name, "postcondition does not hold", h); err != nil {
			return outcome{}, err
		}
		//
		return p.feed(frames, n.value, h)
	case *loopRule:
		var body = n.family.body(n.acc)
		//
		if err := p.require(n.family.entry(n.acc, h), ErrMalformedInvariant, n.rule(),
			fmt.Sprintf("invariant does not hold at again(%v)", n.acc), h); err != nil {
			return outcome{}, err
		} else if err := p.require(holds(body.pre(), h), ErrMalformedInvariant, n.rule(),
			fmt.Sprintf("body precondition not implied by invariant at again(%v)", n.acc), h); err != nil {
			return outcome{}, err
		}
		// Unroll one iteration, requiring the body to re-establish the invariant
		var (
			iteration = &consequenceRule{"loop", ErrMalformedInvariant, body, nil, n.family.exit, true}
			next      = &bindRule{"loop", ErrMalformedInvariant, iteration, n.family.iterate, n.family.post, true}
		)
		//
		return outcome{false, nil, h, rebuild(frames, next)}, nil
	default:
		panic(fmt.Sprintf("unknown derivation encountered (%T)", d))
	}
}

func (p *checker) checkLeaf(rule string, pre Assertion, post func(any, heap.Heap) bool, value any, h heap.Heap) error {
	if err := p.require(holds(pre, h), ErrObligationUnmet, rule, "precondition does not hold", h); err != nil {
		return err
	}
	//
	return p.require(post(value, h), ErrObligationUnmet, rule, "postcondition does not hold", h)
}

// feed a value produced by the innermost derivation outwards.  Enclosing
// consequences check their postconditions, until the value reaches the
// continuation of a bind (or there is nothing left, in which case the value is
// the final answer).
func (p *checker) feed(frames *stack.Stack[frame], value any, h heap.Heap) (outcome, error) {
	for !frames.IsEmpty() {
		switch f := frames.Pop().(type) {
		case checkFrame:
			if err := p.require(f.node.post(value, h), f.node.kind, f.node.name,
				fmt.Sprintf("postcondition does not hold for %v", value), h); err != nil {
				return outcome{}, err
			}
		case bindFrame:
			var next = f.node.then(value)
			//
			if err := p.require(holds(next.pre(), h), f.node.kind, f.node.name,
				fmt.Sprintf("continuation precondition does not hold for %v", value), h); err != nil {
				return outcome{}, err
			}
			// Continuation must establish this bind's postcondition
			if !f.node.tail {
				next = &consequenceRule{f.node.name, f.node.kind, next, nil, f.node.post, true}
			}
			//
			return outcome{false, nil, h, rebuild(frames, next)}, nil
		}
	}
	//
	return outcome{true, value, h, nil}, nil
}

// ============================================================================
// Frames
// ============================================================================

// frame is an enclosing derivation found along the left spine of a derivation.
type frame interface {
	// Wrap an updated inner derivation back into this frame.
	wrap(inner derivation) derivation
}

type bindFrame struct {
	node *bindRule
}

type checkFrame struct {
	node *consequenceRule
}

func (p bindFrame) wrap(inner derivation) derivation {
	var n = *p.node
	//
	n.first = inner
	//
	return &n
}

func (p checkFrame) wrap(inner derivation) derivation {
	var n = *p.node
	//
	n.inner, n.entered = inner, true
	//
	return &n
}

// rebuild a derivation from a given innermost derivation by wrapping it in the
// given frames (innermost on top).
func rebuild(frames *stack.Stack[frame], inner derivation) derivation {
	for i := range frames.Len() {
		inner = frames.Peek(i).wrap(inner)
	}
	//
	return inner
}

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

// Package hoare provides a specification logic for deep commands.  A triple
// {P} c {Q} states that, starting from any heap satisfying P, the command c
// either runs forever or produces a result r in a heap h such that Q(r, h).
//
// Triples can only be constructed using the rules of the logic (Return, Bind,
// Read, Write, Consequence and Loop), and the command described by a triple is
// built from the triple itself.  The side conditions of the rules (for example,
// the implications required by the rule of consequence, or the preservation of a
// loop invariant) cannot be established by construction in Go.  Instead, Verify
// drives a triple's derivation alongside its command, discharging every side
// condition on the concrete configurations actually reached.
package hoare

import (
	"github.com/yurrriq/frap/pkg/deep"
	"github.com/yurrriq/frap/pkg/heap"
)

// Triple relates a precondition, a command and a postcondition, together with
// the derivation establishing that relationship.
type Triple[R any] struct {
	pre        Assertion
	command    deep.Command[R]
	post       Post[R]
	derivation derivation
}

// Pre returns the precondition of this triple.
func (p Triple[R]) Pre() Assertion {
	return p.pre
}

// Command returns the command described by this triple.
func (p Triple[R]) Command() deep.Command[R] {
	return p.command
}

// Post returns the postcondition of this triple.
func (p Triple[R]) Post() Post[R] {
	return p.post
}

// Rule returns the name of the last rule used to derive this triple.
func (p Triple[R]) Rule() string {
	return p.derivation.rule()
}

// Return derives {P} return v {λr h. P(h) ∧ r = v}.
func Return[R comparable](pre Assertion, value R) Triple[R] {
	var post Post[R] = func(r R, h heap.Heap) bool {
		return holds(pre, h) && r == value
	}
	//
	return Triple[R]{pre, deep.Return(value), post, &returnRule{pre, value, erase(post)}}
}

// Read derives {P} read a {λr h. P(h) ∧ r = h[a]}.
func Read(pre Assertion, address uint64) Triple[uint64] {
	var post Post[uint64] = func(r uint64, h heap.Heap) bool {
		return holds(pre, h) && r == h.Lookup(address)
	}
	//
	return Triple[uint64]{pre, deep.Read(address), post, &readRule{pre, address, erase(post)}}
}

// Write derives {P} write a v {λ_ h. ∃h'. P(h') ∧ h = h'[a ↦ v]}.
//
// Since h' can only differ from h at a, the existential reduces to finding the
// value held at a before the write.  This is evaluated over a finite set of
// candidates: zero, the values held in h, and every value which the checker has
// observed being overwritten by this command.  Thus, for every heap reached by
// Verify, the postcondition is decided exactly.
func Write(pre Assertion, address uint64, value uint64) Triple[deep.Unit] {
	var witnesses = newWitnesses()
	//
	var post Post[deep.Unit] = func(_ deep.Unit, h heap.Heap) bool {
		if h.Lookup(address) != value {
			return false
		}
		//
		for _, old := range witnesses.Candidates(h) {
			if holds(pre, h.Update(address, old)) {
				return true
			}
		}
		//
		return false
	}
	//
	return Triple[deep.Unit]{pre, deep.Write(address, value), post,
		&writeRule{pre, address, value, witnesses, erase(post)}}
}

// Bind derives {P} c1 >>= c2 {Q} from {P} c1 {R} and, for every result r of c1,
// {R(r)} c2(r) {Q}.  Since the intermediate postcondition cannot be recovered
// from the continuation, Q is given explicitly and every continuation triple
// must agree with it.
func Bind[A any, R any](first Triple[A], k func(A) Triple[R], post Post[R]) Triple[R] {
	if k == nil || post == nil {
		panic("bind requires a continuation and a postcondition")
	}
	//
	var (
		command = deep.Bind(first.command, func(a A) deep.Command[R] { return k(a).command })
		then    = func(v any) derivation { return k(unwrap[A](v)).derivation }
	)
	//
	return Triple[R]{first.pre, command, post,
		&bindRule{"bind", ErrObligationUnmet, first.derivation, then, erase(post), false}}
}

// Consequence derives {P'} c {Q'} from {P} c {Q}, provided P' implies P and Q
// implies Q'.  Both implications are proof obligations.
func Consequence[R any](t Triple[R], pre Assertion, post Post[R]) Triple[R] {
	if post == nil {
		panic("consequence requires a postcondition")
	}
	//
	return Triple[R]{pre, t.command, post,
		&consequenceRule{"consequence", ErrObligationUnmet, t.derivation, pre, erase(post), false}}
}

// Strengthen the precondition of a triple, leaving its postcondition as is.
func Strengthen[R any](t Triple[R], pre Assertion) Triple[R] {
	return Consequence(t, pre, t.post)
}

// Weaken the postcondition of a triple, leaving its precondition as is.
func Weaken[R any](t Triple[R], post Post[R]) Triple[R] {
	return Consequence(t, t.pre, post)
}

// Loop derives {I(again init)} loop init body {λr h. I(done r, h)} from a loop
// invariant family I such that, for every accumulator a,
// {I(again a)} body(a) {I}.  An empty loop (whose body is immediately done)
// requires no special treatment: the invariant at again(init) must simply
// guarantee the invariant at whatever result is reached.
func Loop[A any](init A, invariant Invariant[A], body func(A) Triple[deep.Outcome[A]]) Triple[A] {
	if invariant == nil || body == nil {
		panic("loop requires an invariant and a body")
	}
	//
	var post Post[A] = func(r A, h heap.Heap) bool {
		return invariant(deep.Done(r), h)
	}
	//
	var (
		pre     = invariant.At(deep.Again(init))
		command = deep.Loop(init, func(a A) deep.Command[deep.Outcome[A]] { return body(a).command })
		family  = &loopFamily{
			entry: func(acc any, h heap.Heap) bool { return invariant(deep.Again(unwrap[A](acc)), h) },
			exit:  func(o any, h heap.Heap) bool { return invariant(unwrap[deep.Outcome[A]](o), h) },
			split: func(o any) (bool, any) {
				var outcome = unwrap[deep.Outcome[A]](o)
				return outcome.IsDone(), outcome.Value()
			},
			body: func(acc any) derivation { return body(unwrap[A](acc)).derivation },
			post: erase(post),
		}
	)
	//
	return Triple[A]{pre, command, post, &loopRule{init, family}}
}

// erase the result type of a postcondition.
func erase[R any](post Post[R]) func(any, heap.Heap) bool {
	return func(v any, h heap.Heap) bool {
		return post(unwrap[R](v), h)
	}
}

// unwrap an untyped value as a given type.  A nil value unwraps as the zero
// value of that type.
func unwrap[T any](value any) T {
	v, _ := value.(T)
	return v
}

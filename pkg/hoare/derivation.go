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
	"github.com/yurrriq/frap/pkg/heap"
	"github.com/yurrriq/frap/pkg/util/collection/set"
)

// derivation is the (untyped) proof tree of a triple.  Derivations mirror the
// structure of the command they describe, except that consequence nodes have
// no counterpart in the command.
type derivation interface {
	// Name of the rule at the root of this derivation.
	rule() string
	// Precondition of this derivation, where nil means "true".
	pre() Assertion
}

type returnRule struct {
	precondition Assertion
	value        any
	post         func(any, heap.Heap) bool
}

type readRule struct {
	precondition Assertion
	address      uint64
	post         func(any, heap.Heap) bool
}

type writeRule struct {
	precondition Assertion
	address      uint64
	value        uint64
	witnesses    *witnesses
	post         func(any, heap.Heap) bool
}

// resultRule describes a command which has finished its work, and now only has
// to hand over its result.  For example, this is reached after a write has
// updated the heap, or when a loop has just finished.
type resultRule struct {
	name  string
	kind  error
	value any
	post  func(any, heap.Heap) bool
}

type bindRule struct {
	name  string
	kind  error
	first derivation
	then  func(any) derivation
	post  func(any, heap.Heap) bool
	// Indicates the continuation always carries this bind's postcondition, such
	// that it need not be checked separately.
	tail bool
}

type consequenceRule struct {
	name         string
	kind         error
	inner        derivation
	precondition Assertion
	post         func(any, heap.Heap) bool
	// Indicates the preconditions have already been checked.
	entered bool
}

type loopRule struct {
	acc    any
	family *loopFamily
}

// loopFamily captures everything shared between the iterations of a loop.
type loopFamily struct {
	// Invariant at again(acc)
	entry func(any, heap.Heap) bool
	// Invariant at a given outcome
	exit func(any, heap.Heap) bool
	// Split an outcome into its tag and value
	split func(any) (bool, any)
	// Derivation of the body for a given accumulator
	body func(any) derivation
	// Postcondition of the loop as a whole
	post func(any, heap.Heap) bool
}

func (p *returnRule) rule() string      { return "return" }
func (p *readRule) rule() string        { return "read" }
func (p *writeRule) rule() string       { return "write" }
func (p *resultRule) rule() string      { return p.name }
func (p *bindRule) rule() string        { return p.name }
func (p *consequenceRule) rule() string { return p.name }
func (p *loopRule) rule() string        { return "loop" }

func (p *returnRule) pre() Assertion      { return p.precondition }
func (p *readRule) pre() Assertion        { return p.precondition }
func (p *writeRule) pre() Assertion       { return p.precondition }
func (p *resultRule) pre() Assertion      { return nil }
func (p *bindRule) pre() Assertion        { return p.first.pre() }
func (p *consequenceRule) pre() Assertion { return p.precondition }

func (p *loopRule) pre() Assertion {
	return func(h heap.Heap) bool {
		return p.family.entry(p.acc, h)
	}
}

// iterate determines the derivation which follows one iteration of the loop
// body producing a given outcome.
func (p *loopFamily) iterate(outcome any) derivation {
	done, value := p.split(outcome)
	//
	if done {
		return &resultRule{"loop", ErrMalformedInvariant, value, p.post}
	}
	//
	return &loopRule{value, p}
}

// ============================================================================
// Witnesses
// ============================================================================

// witnesses records the values observed being overwritten by a write, such that
// the existential in its postcondition can be decided.
type witnesses struct {
	values *set.SortedSet[uint64]
}

func newWitnesses() *witnesses {
	return &witnesses{set.NewSortedSet[uint64]()}
}

// Record a value observed being overwritten.
func (p *witnesses) Record(value uint64) {
	p.values.Insert(value)
}

// Candidates returns the values which might have been held before a write
// produced the given heap.
func (p *witnesses) Candidates(h heap.Heap) []uint64 {
	var candidates = set.NewSortedSet[uint64]()
	//
	candidates.Insert(0)
	candidates.InsertAll(*p.values...)
	candidates.InsertAll(h.Values()...)
	//
	return *candidates
}

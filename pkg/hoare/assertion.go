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
	"github.com/yurrriq/frap/pkg/deep"
	"github.com/yurrriq/frap/pkg/heap"
)

// Assertion is a predicate over heaps, as used for the precondition of a
// triple.  Assertions are only ever evaluated by the checker, never by the
// driver.
type Assertion func(h heap.Heap) bool

// Post is a predicate over the result of a command and the heap in which it was
// produced, as used for the postcondition of a triple.
type Post[R any] func(r R, h heap.Heap) bool

// Invariant is a loop invariant family, indexed by the tagged outcome of a loop
// iteration.  Thus, the same predicate describes both the states in which the
// loop is still running with a given accumulator, and those in which it has
// just finished with a given result.
type Invariant[A any] = Post[deep.Outcome[A]]

// True holds for every heap.
func True(heap.Heap) bool {
	return true
}

// Equals returns the assertion which holds only for heaps equal to the given
// heap.
func Equals(expected heap.Heap) Assertion {
	return func(h heap.Heap) bool {
		return h.Equal(expected)
	}
}

// And returns the conjunction of zero or more assertions.
func And(assertions ...Assertion) Assertion {
	return func(h heap.Heap) bool {
		for _, a := range assertions {
			if !a(h) {
				return false
			}
		}
		//
		return true
	}
}

// At fixes the result of a postcondition, producing the assertion that must
// hold for the continuation of a Bind which receives that result.
func (q Post[R]) At(r R) Assertion {
	return func(h heap.Heap) bool {
		return q(r, h)
	}
}

// NewInvariant constructs a loop invariant family from two separate predicates:
// one for when the loop continues with a given accumulator, and one for when it
// has just finished with a given result.
func NewInvariant[A any](running func(A, heap.Heap) bool, finished func(A, heap.Heap) bool) Invariant[A] {
	return func(o deep.Outcome[A], h heap.Heap) bool {
		if o.IsDone() {
			return finished(o.Value(), h)
		}
		//
		return running(o.Value(), h)
	}
}

// holds evaluates an optional assertion, where an absent assertion always
// holds.
func holds(a Assertion, h heap.Heap) bool {
	return a == nil || a(h)
}

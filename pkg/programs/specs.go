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
package programs

import (
	"github.com/yurrriq/frap/pkg/deep"
	"github.com/yurrriq/frap/pkg/heap"
	"github.com/yurrriq/frap/pkg/hoare"
)

// ArrayMaxSpec derives a triple for ArrayMax(i, acc) starting from the heap h0.
// The result is at least acc and every value held at locations 0 .. i-1, and is
// either acc or one of those values.  The heap is unchanged.
func ArrayMaxSpec(h0 heap.Heap, i uint64, acc uint64) hoare.Triple[uint64] {
	var (
		pre  = hoare.Equals(h0)
		post = arrayMaxPost(h0, i, acc)
	)
	//
	if i == 0 {
		return hoare.Weaken(hoare.Return(pre, acc), post)
	}
	//
	read := hoare.Read(pre, i-1)
	//
	return hoare.Bind(read, func(v uint64) hoare.Triple[uint64] {
		return hoare.Consequence(ArrayMaxSpec(h0, i-1, max(v, acc)), read.Post().At(v), post)
	}, post)
}

func arrayMaxPost(h0 heap.Heap, i uint64, acc uint64) hoare.Post[uint64] {
	return func(r uint64, h heap.Heap) bool {
		var witnessed = r == acc
		//
		if !h.Equal(h0) || r < acc {
			return false
		}
		//
		for j := range i {
			if v := h0.Lookup(j); v > r {
				return false
			} else if v == r {
				witnessed = true
			}
		}
		//
		return witnessed
	}
}

// IncrementAllSpec derives a triple for IncrementAll(n) starting from the heap
// h0.  Upon completion, every location 0 .. n-1 holds one more than it did in
// h0 (modulo 2^64), and every other location is unchanged.
func IncrementAllSpec(h0 heap.Heap, n uint64) hoare.Triple[deep.Unit] {
	return incrementFrom(h0, n, n)
}

// incrementFrom derives a triple for IncrementAll(i), starting from a heap in
// which locations i .. n-1 have already been incremented.
func incrementFrom(h0 heap.Heap, n uint64, i uint64) hoare.Triple[deep.Unit] {
	var (
		pre    = hoare.Equals(incremented(h0, i, n))
		target = incremented(h0, 0, n)
	)
	//
	var post hoare.Post[deep.Unit] = func(_ deep.Unit, h heap.Heap) bool {
		return h.Equal(target)
	}
	//
	if i == 0 {
		return hoare.Weaken(hoare.Return(pre, deep.Unit{}), post)
	}
	//
	read := hoare.Read(pre, i-1)
	//
	return hoare.Bind(read, func(v uint64) hoare.Triple[deep.Unit] {
		var write = hoare.Write(read.Post().At(v), i-1, v+1)
		//
		return hoare.Bind(write, func(deep.Unit) hoare.Triple[deep.Unit] {
			return hoare.Consequence(incrementFrom(h0, n, i-1), write.Post().At(deep.Unit{}), post)
		}, post)
	}, post)
}

// incremented returns h0 with locations from .. to-1 incremented.
func incremented(h0 heap.Heap, from uint64, to uint64) heap.Heap {
	var h = h0
	//
	for j := from; j < to; j++ {
		h = h.Update(j, h0.Lookup(j)+1)
	}
	//
	return h
}

// IndexOfSpec derives a triple for IndexOf(needle) starting from the heap h0.
// Should it terminate, the result is the smallest location holding the needle
// and the heap is unchanged.  Termination itself is not guaranteed, as this is a
// statement of partial correctness.
func IndexOfSpec(h0 heap.Heap, needle uint64) hoare.Triple[uint64] {
	var invariant = IndexOfInvariant(h0, needle)
	//
	return hoare.Loop(uint64(0), invariant, func(i uint64) hoare.Triple[deep.Outcome[uint64]] {
		var read = hoare.Read(invariant.At(deep.Again(i)), i)
		//
		return hoare.Bind(read, func(v uint64) hoare.Triple[deep.Outcome[uint64]] {
			var outcome = deep.Again(i + 1)
			//
			if v == needle {
				outcome = deep.Done(i)
			}
			//
			return hoare.Weaken(hoare.Return(read.Post().At(v), outcome), invariant)
		}, invariant)
	})
}

// IndexOfInvariant is the loop invariant for IndexOf(needle) starting from the
// heap h0.  Whilst running with accumulator i, no location before i holds the
// needle.  Once finished with result r, location r holds the needle and no
// location before it does.  In both cases, the heap is unchanged.
func IndexOfInvariant(h0 heap.Heap, needle uint64) hoare.Invariant[uint64] {
	var absent = func(i uint64) bool {
		for j := range i {
			if h0.Lookup(j) == needle {
				return false
			}
		}
		//
		return true
	}
	//
	return hoare.NewInvariant(
		func(i uint64, h heap.Heap) bool {
			return h.Equal(h0) && absent(i)
		},
		func(r uint64, h heap.Heap) bool {
			return h.Equal(h0) && h0.Lookup(r) == needle && absent(r)
		})
}

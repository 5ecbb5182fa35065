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
package programs_test

import (
	"math/rand"
	"testing"

	"github.com/yurrriq/frap/pkg/deep"
	"github.com/yurrriq/frap/pkg/heap"
	"github.com/yurrriq/frap/pkg/hoare"
	"github.com/yurrriq/frap/pkg/programs"
)

// Enough fuel for every program considered here (on heaps of at most 16
// locations) to terminate.
const fuel = 1000

// ===================================================================
// Concrete Scenario
// ===================================================================

func Test_Programs_01(t *testing.T) {
	var (
		h = heap.New(2, 1, 8, 6)
		r = deep.Run(programs.ArrayMax(4, 0), h, 20)
	)
	//
	if !r.IsAnswer() || r.Value() != 8 || !r.Heap().Equal(h) {
		t.Errorf("expected answer 8, got %s", r.String())
	}
}

func Test_Programs_02(t *testing.T) {
	var (
		h        = heap.New(2, 1, 8, 6)
		expected = heap.New(3, 2, 9, 7)
		r        = deep.Run(programs.IncrementAll(4), h, 20)
	)
	//
	if !r.IsAnswer() || !r.Heap().Equal(expected) {
		t.Errorf("expected answer with heap %s, got %s", expected.String(), r.String())
	}
}

func Test_Programs_03(t *testing.T) {
	var (
		h = heap.New(2, 1, 8, 6)
		r = deep.Run(programs.IndexOf(6), h, 20)
	)
	//
	if !r.IsAnswer() || r.Value() != 3 || !r.Heap().Equal(h) {
		t.Errorf("expected answer 3, got %s", r.String())
	}
}

// ===================================================================
// Properties
// ===================================================================

func Test_ArrayMax_01(t *testing.T) {
	var rng = rand.New(rand.NewSource(1))
	//
	for range 100 {
		var (
			h = randomHeap(rng, 16, 32)
			n = uint64(rng.Intn(17))
			r = deep.Run(programs.ArrayMax(n, 0), h, fuel)
		)
		//
		if !r.IsAnswer() {
			t.Errorf("array max did not terminate on %s", h.String())
			continue
		}
		// Maximum of prefix
		var found = n == 0 && r.Value() == 0
		//
		for j := range n {
			if h.Lookup(j) > r.Value() {
				t.Errorf("array max %d below h[%d] of %s", r.Value(), j, h.String())
			} else if h.Lookup(j) == r.Value() {
				found = true
			}
		}
		//
		if !found {
			t.Errorf("array max %d not in prefix %d of %s", r.Value(), n, h.String())
		}
	}
}

func Test_IncrementAll_01(t *testing.T) {
	var rng = rand.New(rand.NewSource(2))
	//
	for range 100 {
		var (
			h = randomHeap(rng, 16, 32)
			n = uint64(rng.Intn(17))
			r = deep.Run(programs.IncrementAll(n), h, fuel)
		)
		//
		if !r.IsAnswer() {
			t.Errorf("increment all did not terminate on %s", h.String())
			continue
		}
		// Incremented prefix, untouched frame
		for j := range uint64(20) {
			var expected = h.Lookup(j)
			//
			if j < n {
				expected++
			}
			//
			if r.Heap().Lookup(j) != expected {
				t.Errorf("increment all (%d) of %s gave %s", n, h.String(), r.Heap().String())
				break
			}
		}
	}
}

func Test_IndexOf_01(t *testing.T) {
	var rng = rand.New(rand.NewSource(3))
	//
	for range 100 {
		var (
			h      = randomHeap(rng, 16, 8)
			needle = h.Lookup(uint64(rng.Intn(16)))
			r      = deep.Run(programs.IndexOf(needle), h, fuel)
		)
		//
		if !r.IsAnswer() {
			t.Errorf("index of %d did not terminate on %s", needle, h.String())
			continue
		}
		// Smallest index holding needle
		if h.Lookup(r.Value()) != needle {
			t.Errorf("index of %d gave %d on %s", needle, r.Value(), h.String())
		}
		//
		for j := range r.Value() {
			if h.Lookup(j) == needle {
				t.Errorf("index of %d gave %d, but found at %d on %s", needle, r.Value(), j, h.String())
			}
		}
	}
}

func Test_IndexOf_02(t *testing.T) {
	var h = heap.New(1, 2, 3)
	// Absent needle is searched for indefinitely
	r := deep.Run(programs.IndexOf(4), h, fuel)
	//
	if r.IsAnswer() {
		t.Errorf("unexpected answer %s", r.String())
	}
	// Except zero, which every unwritten location holds
	r = deep.Run(programs.IndexOf(0), h, fuel)
	//
	if !r.IsAnswer() || r.Value() != 3 {
		t.Errorf("expected answer 3, got %s", r.String())
	}
}

// ===================================================================
// Verification
// ===================================================================

func Test_ArrayMaxSpec_01(t *testing.T) {
	var rng = rand.New(rand.NewSource(4))
	//
	for range 50 {
		var (
			h   = randomHeap(rng, 8, 16)
			n   = uint64(rng.Intn(9))
			acc = uint64(rng.Intn(16))
		)
		//
		checkSpec(t, programs.ArrayMaxSpec(h, n, acc), programs.ArrayMax(n, acc), h)
	}
}

func Test_ArrayMaxSpec_02(t *testing.T) {
	var h = heap.New(2, 1, 8, 6)
	//
	report := checkSpec(t, programs.ArrayMaxSpec(h, 4, 0), programs.ArrayMax(4, 0), h)
	//
	if report.Value != 8 || report.Steps != 5 {
		t.Errorf("expected answer 8 in 5 steps, got %d in %d steps", report.Value, report.Steps)
	}
}

func Test_IncrementAllSpec_01(t *testing.T) {
	var rng = rand.New(rand.NewSource(5))
	//
	for range 50 {
		var (
			h = randomHeap(rng, 8, 16)
			n = uint64(rng.Intn(9))
		)
		//
		checkSpec(t, programs.IncrementAllSpec(h, n), programs.IncrementAll(n), h)
	}
}

func Test_IncrementAllSpec_02(t *testing.T) {
	var (
		h        = heap.New(2, 1, 8, 6)
		expected = heap.New(3, 2, 9, 7)
	)
	//
	report := checkSpec(t, programs.IncrementAllSpec(h, 4), programs.IncrementAll(4), h)
	//
	if !report.Heap.Equal(expected) || report.Steps != 13 {
		t.Errorf("expected %s in 13 steps, got %s in %d steps", expected.String(), report.Heap.String(), report.Steps)
	}
}

func Test_IndexOfSpec_01(t *testing.T) {
	var rng = rand.New(rand.NewSource(6))
	//
	for range 50 {
		var (
			h      = randomHeap(rng, 8, 8)
			needle = h.Lookup(uint64(rng.Intn(8)))
		)
		//
		checkSpec(t, programs.IndexOfSpec(h, needle), programs.IndexOf(needle), h)
	}
}

func Test_IndexOfSpec_02(t *testing.T) {
	var h = heap.New(2, 1, 8, 6)
	//
	report := checkSpec(t, programs.IndexOfSpec(h, 6), programs.IndexOf(6), h)
	//
	if report.Value != 3 || report.Steps != 13 {
		t.Errorf("expected answer 3 in 13 steps, got %d in %d steps", report.Value, report.Steps)
	}
}

func Test_IndexOfSpec_03(t *testing.T) {
	var h = heap.New(1, 2, 3)
	// Partial correctness says nothing when the needle is absent
	report, err := hoare.Verify(programs.IndexOfSpec(h, 4), h, fuel)
	//
	if err != nil {
		t.Errorf("unexpected error: %s", err)
	} else if report.Finished || report.Steps != fuel {
		t.Errorf("expected fuel exhaustion, got %d steps", report.Steps)
	}
}

func Test_IndexOfSpec_04(t *testing.T) {
	var (
		h         = heap.New(2, 1, 8, 6)
		invariant = programs.IndexOfInvariant(h, 8)
	)
	//
	if !invariant(deep.Again(uint64(2)), h) || invariant(deep.Again(uint64(3)), h) {
		t.Errorf("unexpected running invariant")
	}
	//
	if !invariant(deep.Done(uint64(2)), h) || invariant(deep.Done(uint64(1)), h) {
		t.Errorf("unexpected finished invariant")
	}
	// Heap must be unchanged
	if invariant(deep.Again(uint64(0)), heap.New(2)) {
		t.Errorf("invariant holds on different heap")
	}
}

func Test_Specs_01(t *testing.T) {
	var (
		rng   = rand.New(rand.NewSource(7))
		heaps = make([]heap.Heap, 20)
		h0    = heap.New(5, 3, 9)
	)
	//
	for i := range heaps {
		heaps[i] = randomHeap(rng, 3, 10)
	}
	// Only heaps equal to h0 meet the precondition
	heaps = append(heaps, h0)
	//
	if err := hoare.VerifyAll(programs.ArrayMaxSpec(h0, 3, 0), heaps, fuel); err != nil {
		t.Errorf("unexpected error: %s", err)
	}
	//
	if err := hoare.VerifyAll(programs.IncrementAllSpec(h0, 3), heaps, fuel); err != nil {
		t.Errorf("unexpected error: %s", err)
	}
	//
	if err := hoare.VerifyAll(programs.IndexOfSpec(h0, 9), heaps, fuel); err != nil {
		t.Errorf("unexpected error: %s", err)
	}
}

// ===================================================================
// Helpers
// ===================================================================

// Check a triple verifies on a given heap, and that its command
// behaves identically to the corresponding program.
func checkSpec[R comparable](t *testing.T, triple hoare.Triple[R], program deep.Command[R],
	h heap.Heap) hoare.Report[R] {
	t.Helper()
	//
	var (
		expected    = deep.Run(program, h, fuel)
		report, err = hoare.Verify(triple, h, fuel)
	)
	//
	if err != nil {
		t.Errorf("unexpected error: %s", err)
	} else if !report.Finished || !expected.IsAnswer() {
		t.Errorf("expected termination on %s", h.String())
	} else if report.Value != expected.Value() || !report.Heap.Equal(expected.Heap()) {
		t.Errorf("expected %s, got %v with heap %s", expected.String(), report.Value, report.Heap.String())
	} else if machine := deep.NewMachine(program, h); deep.ExecuteAll[R](machine, fuel) != report.Steps {
		t.Errorf("expected %d steps, got %d", machine.Steps(), report.Steps)
	}
	//
	return report
}

func randomHeap(rng *rand.Rand, n uint64, bound int) heap.Heap {
	var values = make([]uint64, n)
	//
	for i := range values {
		values[i] = uint64(rng.Intn(bound))
	}
	//
	return heap.New(values...)
}

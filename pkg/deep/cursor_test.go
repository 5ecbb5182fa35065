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
	"testing"

	"github.com/yurrriq/frap/pkg/heap"
)

// ===================================================================
// Cursors
// ===================================================================

func Test_Cursor_01(t *testing.T) {
	var (
		depth   = uint64(500)
		machine = NewMachine(leftNested(depth), heap.Empty())
	)
	// First step exposes the whole spine
	machine.Execute(1)
	checkCursor(t, machine.cursor, depth-1)
	// Every further step consumes exactly one continuation, without walking
	// the spine again.
	for i := uint64(2); i <= depth; i++ {
		machine.Execute(1)
		checkCursor(t, machine.cursor, depth-i)
	}
	//
	machine.Execute(1)
	//
	if r := machine.State(); !r.IsAnswer() || r.Value() != depth {
		t.Errorf("expected answer %d, got %s", depth, r.String())
	}
}

func Test_Cursor_02(t *testing.T) {
	var (
		small = testing.AllocsPerRun(5, func() { Run(leftNested(1000), heap.Empty(), 2000) })
		large = testing.AllocsPerRun(5, func() { Run(leftNested(4000), heap.Empty(), 8000) })
	)
	// Allocations grow linearly with depth (i.e. not with its square)
	if large > 6*small {
		t.Errorf("allocations grew from %.0f to %.0f for four times the depth", small, large)
	}
}

func Test_Cursor_03(t *testing.T) {
	var machine = NewMachine(leftNested(100), heap.Empty())
	// Suspended state reconstructs the remaining command
	machine.Execute(40)
	//
	r := machine.State()
	//
	if r.IsAnswer() || r.Next().Kind() != BIND {
		t.Fatalf("expected suspended bind, got %s", r.String())
	}
	// Reconstruction leaves the machine itself unaffected
	checkCursor(t, machine.cursor, 60)
	//
	if s := Run(r.Next(), r.Heap(), 61); !s.IsAnswer() || s.Value() != 100 {
		t.Errorf("expected answer 100 on resumption, got %s", s.String())
	}
	//
	if machine.Execute(100) != 61 || machine.State().Value() != 100 {
		t.Errorf("expected answer 100 after 61 steps, got %s", machine.State().String())
	}
}

func Test_Cursor_04(t *testing.T) {
	var (
		h        = heap.New(2, 1, 8, 6)
		original = NewMachine(Then(Write(0, 5), Read(0)), h)
	)
	//
	original.Execute(1)
	// Machines derived with observers execute independently
	var (
		steps   uint
		derived = original.WithObserver(func(Configuration) { steps++ })
	)
	//
	derived.Execute(10)
	//
	if !derived.Terminated() || original.Terminated() || steps != 2 {
		t.Errorf("expected only derived machine to terminate (%d observed steps)", steps)
	}
	//
	original.Execute(10)
	//
	if original.State().Value() != 5 || derived.State().Value() != 5 || steps != 2 {
		t.Errorf("expected both machines to answer 5")
	}
}

// ===================================================================
// Test Helpers
// ===================================================================

// leftNested constructs n binds nested to the left, each incrementing the
// result of the previous one.
func leftNested(n uint64) Command[uint64] {
	var c = Return(uint64(0))
	//
	for range n {
		c = Bind(c, func(v uint64) Command[uint64] { return Return(v + 1) })
	}
	//
	return c
}

func checkCursor(t *testing.T, c *cursor, continuations uint64) {
	t.Helper()
	//
	if c.continuations.Len() != uint(continuations) {
		t.Errorf("expected %d continuations, got %d", continuations, c.continuations.Len())
	} else if c.command.kind() != RETURN {
		t.Errorf("expected return at head of spine, got %s", c.command.kind())
	}
}

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
package set

import (
	"math/rand"
	"slices"
	"testing"
)

func Test_SortedSet_00(t *testing.T) {
	check_SortedSet_Insert(t, 5, 10)
}

func Test_SortedSet_01(t *testing.T) {
	for range 1000 {
		check_SortedSet_Insert(t, 10, 32)
	}
}

func Test_SortedSet_02(t *testing.T) {
	check_SortedSet_Insert(t, 100, 32)
}

func Test_SortedSet_03(t *testing.T) {
	check_SortedSet_Insert(t, 1000, 64)
}

func Test_SortedSet_04(t *testing.T) {
	var set = NewSortedSet[uint64]()
	//
	set.InsertAll(7, 0, 3, 7, 0)
	//
	if !slices.Equal(*set, []uint64{0, 3, 7}) {
		t.Errorf("expected [0 3 7], got %v", *set)
	}
}

// ===================================================================
// Test Helpers
// ===================================================================

func array_contains(items []uint, element uint) bool {
	for _, e := range items {
		if e == element {
			return true
		}
	}
	// Not present
	return false
}

func check_SortedSet_Insert(t *testing.T, n uint, m uint) {
	var (
		items = make([]uint, n)
		set   = NewSortedSet[uint]()
	)
	//
	for i := range items {
		items[i] = uint(rand.Intn(int(m)))
		set.Insert(items[i])
	}
	// Sorted, without duplicates
	for i := 1; i < len(*set); i++ {
		if (*set)[i-1] >= (*set)[i] {
			t.Errorf("set not strictly sorted: %v", *set)
			break
		}
	}
	// Every element present, and nothing else
	for i := range m {
		if array_contains(items, i) != set.Contains(i) {
			t.Errorf("set membership of %d incorrect", i)
		}
	}
}

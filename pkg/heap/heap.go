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
package heap

import (
	"fmt"
	"slices"
	"strings"
)

// Heap represents a total mapping from natural-number addresses to
// natural-number values.  Initially, all locations of a heap can be considered
// to hold zero.  Thus, reading a location which has not yet been written will
// return zero; otherwise, it will return the last value written.
//
// Heaps are values: they are never modified after construction.  Instead,
// Update returns a fresh heap and leaves the original untouched, such that any
// earlier heap remains a valid snapshot.  Locations holding zero are never
// stored explicitly, hence two heaps are structurally equal exactly when they
// agree on every address.
type Heap struct {
	cells map[uint64]uint64
}

// Empty returns the heap where every location holds zero.
func Empty() Heap {
	return Heap{nil}
}

// New constructs a heap whose first n locations hold the given values (in
// order), and where all remaining locations hold zero.
func New(values ...uint64) Heap {
	var cells = make(map[uint64]uint64)
	//
	for i, v := range values {
		if v != 0 {
			cells[uint64(i)] = v
		}
	}
	//
	return Heap{cells}
}

// FromMap constructs a heap from an explicit address/value mapping.  The
// mapping is copied, so subsequent changes to it are not visible through the
// heap.
func FromMap(mapping map[uint64]uint64) Heap {
	var cells = make(map[uint64]uint64, len(mapping))
	//
	for k, v := range mapping {
		if v != 0 {
			cells[k] = v
		}
	}
	//
	return Heap{cells}
}

// Lookup the value held at a given address, or zero if that address has never
// been assigned a (non-zero) value.
func (p Heap) Lookup(address uint64) uint64 {
	return p.cells[address]
}

// Update returns a heap identical to this one, except that the given address
// now holds the given value.  This heap is unchanged.
func (p Heap) Update(address uint64, value uint64) Heap {
	var cells = make(map[uint64]uint64, len(p.cells)+1)
	//
	for k, v := range p.cells {
		cells[k] = v
	}
	// Normalise zero as absent
	if value == 0 {
		delete(cells, address)
	} else {
		cells[address] = value
	}
	//
	return Heap{cells}
}

// Equal checks whether two heaps hold the same value at every address.
func (p Heap) Equal(other Heap) bool {
	if len(p.cells) != len(other.cells) {
		return false
	}
	//
	for k, v := range p.cells {
		if w, ok := other.cells[k]; !ok || v != w {
			return false
		}
	}
	//
	return true
}

// Len returns the number of locations holding a non-zero value.
func (p Heap) Len() uint {
	return uint(len(p.cells))
}

// Addresses returns the (sorted) set of locations holding a non-zero value.
func (p Heap) Addresses() []uint64 {
	var addresses = make([]uint64, 0, len(p.cells))
	//
	for k := range p.cells {
		addresses = append(addresses, k)
	}
	//
	slices.Sort(addresses)
	//
	return addresses
}

// Values returns the values held at each location returned by Addresses (in
// the same order).
func (p Heap) Values() []uint64 {
	var (
		addresses = p.Addresses()
		values    = make([]uint64, len(addresses))
	)
	//
	for i, k := range addresses {
		values[i] = p.cells[k]
	}
	//
	return values
}

func (p Heap) String() string {
	var builder strings.Builder
	//
	builder.WriteString("{")
	//
	for i, k := range p.Addresses() {
		if i != 0 {
			builder.WriteString(", ")
		}
		//
		fmt.Fprintf(&builder, "%d↦%d", k, p.cells[k])
	}
	//
	builder.WriteString("}")
	//
	return builder.String()
}

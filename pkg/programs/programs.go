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

// Package programs provides a small library of array-style algorithms written
// as deep commands, together with Hoare triples proving their
// behaviour.  Arrays of length n are modelled by heap locations 0 .. n-1.
package programs

import (
	"github.com/yurrriq/frap/pkg/deep"
)

// ArrayMax computes the maximum of acc and the values held at locations
// i-1, i-2, ..., 0 (read in that order).
func ArrayMax(i uint64, acc uint64) deep.Command[uint64] {
	if i == 0 {
		return deep.Return(acc)
	}
	//
	return deep.Bind(deep.Read(i-1), func(v uint64) deep.Command[uint64] {
		return ArrayMax(i-1, max(v, acc))
	})
}

// IncrementAll increments the values held at locations i-1, i-2, ..., 0 (in
// that order), leaving all other locations unchanged.
func IncrementAll(i uint64) deep.Command[deep.Unit] {
	if i == 0 {
		return deep.Return(deep.Unit{})
	}
	//
	return deep.Bind(deep.Read(i-1), func(v uint64) deep.Command[deep.Unit] {
		return deep.Then(deep.Write(i-1, v+1), IncrementAll(i-1))
	})
}

// IndexOf searches locations 0, 1, 2, ... in turn for the given needle,
// returning the first location holding it.  Since the search is unbounded, it
// does not terminate when no location holds the needle (unless the needle is
// zero, which every unwritten location holds).
func IndexOf(needle uint64) deep.Command[uint64] {
	return deep.Loop(uint64(0), func(i uint64) deep.Command[deep.Outcome[uint64]] {
		return deep.Bind(deep.Read(i), func(v uint64) deep.Command[deep.Outcome[uint64]] {
			if v == needle {
				return deep.Return(deep.Done(i))
			}
			//
			return deep.Return(deep.Again(i + 1))
		})
	})
}

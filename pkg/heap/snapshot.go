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
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/mr-tron/base58"
	"github.com/zeebo/blake3"
)

// DigestSize is the number of bytes in a heap digest.
const DigestSize = 32

// Digest identifies a heap snapshot by hashing its binary encoding.  Equal
// heaps always have equal digests, since the encoding is canonical (i.e.
// addresses are written in ascending order, and zero locations are omitted).
type Digest [DigestSize]byte

// String returns the base58 encoding of this digest.
func (d Digest) String() string {
	return base58.Encode(d[:])
}

// Short returns an abbreviated form of this digest, as used in step traces.
func (d Digest) Short() string {
	return d.String()[:8]
}

// Digest computes the digest of this heap snapshot.
func (p Heap) Digest() Digest {
	// NOTE: marshalling a heap never fails.
	bytes, _ := p.MarshalBinary()
	//
	return blake3.Sum256(bytes)
}

// MarshalBinary encodes this heap as a sequence of unsigned varints: first the
// number of non-zero locations, and then each address/value pair in ascending
// order of address.
func (p Heap) MarshalBinary() ([]byte, error) {
	var (
		addresses = p.Addresses()
		bytes     = binary.AppendUvarint(nil, uint64(len(addresses)))
	)
	//
	for _, k := range addresses {
		bytes = binary.AppendUvarint(bytes, k)
		bytes = binary.AppendUvarint(bytes, p.cells[k])
	}
	//
	return bytes, nil
}

// UnmarshalBinary decodes a heap previously encoded with MarshalBinary.
func (p *Heap) UnmarshalBinary(data []byte) error {
	var (
		count, n = binary.Uvarint(data)
		cells    = make(map[uint64]uint64)
		last     uint64
	)
	//
	if n <= 0 {
		return errors.New("heap snapshot: malformed header")
	}
	//
	data = data[n:]
	//
	for i := uint64(0); i < count; i++ {
		address, n := binary.Uvarint(data)
		if n <= 0 {
			return fmt.Errorf("heap snapshot: malformed address (entry %d)", i)
		}
		//
		data = data[n:]
		//
		value, m := binary.Uvarint(data)
		if m <= 0 {
			return fmt.Errorf("heap snapshot: malformed value (entry %d)", i)
		}
		//
		data = data[m:]
		// Sanity check canonical form
		if (i > 0 && address <= last) || value == 0 {
			return fmt.Errorf("heap snapshot: non-canonical entry %d", i)
		}
		//
		cells[address] = value
		last = address
	}
	//
	if len(data) != 0 {
		return fmt.Errorf("heap snapshot: %d trailing bytes", len(data))
	}
	//
	p.cells = cells
	//
	return nil
}

// Copyright 2025 The ClassMap Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package classmap

import "math/bits"

// HashFn hashes an attribute name to the 32-bit value the probe sequence is
// seeded with. Implementations must be pure: the same name must hash to the
// same value for the life of a map.
type HashFn func(name string) uint32

// defaultHash is the classic multiplicative string hash
// (h = h*1000003 ^ c, seeded with the first byte shifted left by 7 and
// finalized by xoring in the length). It is deliberately unseeded:
// deterministic bucket placement is part of the package's contract.
func defaultHash(name string) uint32 {
	if len(name) == 0 {
		return 0
	}
	h := uint32(name[0]) << 7
	for i := 0; i < len(name); i++ {
		h = h*1000003 ^ uint32(name[i])
	}
	return h ^ uint32(len(name))
}

// minCount is the floor applied to the entry count before sizing the bucket
// array. It keeps classes with 0-2 attributes out of degenerate micro-tables.
const minCount = 3

// tableSize returns the bucket array length for n attributes:
// next_power_of_two(max(n, 3) * 4 / 3) in integer arithmetic. The result is
// a power of two at most 3/4 full once all n attributes are inserted, so at
// least one bucket is always empty.
func tableSize(n int) uint32 {
	count := uint32(n)
	if count < minCount {
		count = minCount
	}
	return nextPowerOfTwo(count * 4 / 3)
}

// nextPowerOfTwo rounds v up to the nearest power of two. v itself is
// returned if it is already one.
func nextPowerOfTwo(v uint32) uint32 {
	if v <= 1 {
		return 1
	}
	return 1 << bits.Len32(v-1)
}

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

// Package classmap implements the per-class attribute index used by slotted
// object models: a read-mostly open-addressing hash table that maps an
// attribute name to its descriptor (Member) and to the fixed position in an
// instance's flat value array where that attribute's value lives.
//
// A class owns exactly one Map, built once when the class is defined and
// shared by every instance for the remainder of the class's life. Instances
// therefore carry no per-instance dictionary; an attribute access hashes the
// name, probes the class's Map, and indexes the instance's slot array with
// the returned slot index.
//
// # Table design
//
// The table is a single contiguous array of entries whose length is always a
// power of two. An entry is occupied iff its name is non-empty; entries are
// never removed, so there are no tombstones and no rehashing. The capacity
// for n attributes is next_power_of_two(max(n, 3) * 4 / 3) using integer
// arithmetic, which caps the load factor at 3/4 and guarantees at least one
// empty bucket. That spare bucket is what makes every probe loop terminate.
//
// Collisions are resolved with the perturbation scheme used by CPython's
// dict: the starting bucket is hash & (capacity-1), and on a collision the
// next bucket is ((bucket << 2) + bucket + hash + 1) & (capacity-1) with the
// working hash shifted right by 5 bits between steps. The shifting hash
// feeds high-order bits into the sequence so that keys colliding in their
// low bits separate quickly, and once the hash is exhausted the recurrence
// degenerates to a full-period linear congruence that visits every bucket.
// The exact formula is a compatibility contract; see the probe sequence
// tests which pin bucket chains for known hash values.
//
// Slot indices are assigned in input order, forming the contiguous range
// 0..n-1. Iteration order of the input is therefore significant: it is the
// layout of the instance slot array.
//
// # Concurrency
//
// Build is not goroutine-safe. Once Build returns the Map is immutable and
// any number of goroutines may call Lookup, Traverse, Len and Sizeof
// concurrently without locking. Clear and Close mutate the table and must
// only be called once no concurrent readers remain, which is the host
// object model's lifecycle protocol to enforce, not this package's.
package classmap

import (
	"fmt"
	"unsafe"
)

// Entry is a single bucket in the table: an attribute name, its member
// descriptor and the slot index assigned to it. An Entry with an empty name
// is an empty bucket.
type Entry struct {
	name   string
	member Member
	slot   uint32
}

// Field pairs an attribute name with its member descriptor. Build consumes
// a slice of Fields; the slice order determines slot assignment.
type Field struct {
	Name   string
	Member Member
}

// Map is an immutable index from attribute name to (member, slot index).
// Build a Map with Build; the zero value is not usable.
//
// A Map is safe for concurrent readers once built. See the package
// documentation for the full concurrency contract.
type Map struct {
	// The hash function applied to attribute names. Deterministic by
	// default so that bucket placement is reproducible across processes.
	hash HashFn
	// The allocator for the entries array.
	allocator Allocator
	// entries is the bucket array. len(entries) is always a power of two
	// and is used as a mask to reduce hashes to bucket indices.
	entries []Entry
	// The number of occupied entries, which is also the next slot index
	// that Build would assign.
	count uint32
}

// maxFields bounds the input size so that the uint32 capacity arithmetic
// cannot overflow.
const maxFields = 1<<30 - 1

// Build constructs a Map from an ordered list of fields. Slot indices are
// assigned 0..len(fields)-1 in slice order. Every field must carry a
// non-empty name, a non-nil member, and a name no earlier field used;
// violations abort construction with a typed error and release any member
// references retained up to that point, leaving nothing for the caller to
// clean up.
//
// Members that implement Referent are retained once per stored entry and
// released again by Clear or Close.
func Build(fields []Field, opts ...option) (*Map, error) {
	if len(fields) > maxFields {
		return nil, ErrTooManyFields
	}
	m := &Map{
		hash:      defaultHash,
		allocator: defaultAllocator{},
	}
	for _, op := range opts {
		op.apply(m)
	}
	m.entries = m.allocator.AllocEntries(int(tableSize(len(fields))))

	for i, f := range fields {
		if f.Name == "" {
			m.Close()
			return nil, &ErrInvalidName{Index: i}
		}
		if f.Member == nil {
			m.Close()
			return nil, &ErrNilMember{Name: f.Name}
		}
		if err := m.insert(f.Name, f.Member); err != nil {
			m.Close()
			return nil, err
		}
	}
	m.checkInvariants()
	return m, nil
}

// insert places a name/member pair into the first free bucket on the name's
// probe chain and assigns it the next slot index. The table always has a
// free bucket (the load factor never exceeds 3/4) so the loop terminates.
func (m *Map) insert(name string, member Member) error {
	mask := uint32(len(m.entries)) - 1
	for s := makeProbeSeq(m.hash(name), mask); ; s = s.next() {
		e := &m.entries[s.bucket]
		if e.name == "" {
			e.name = name
			e.member = member
			e.slot = m.count
			m.count++
			retain(member)
			return nil
		}
		if e.name == name {
			return &ErrDuplicateName{Name: name}
		}
	}
}

// Lookup returns the member descriptor and slot index for name, or ok=false
// if name is not in the map. Lookup performs no allocation and has no side
// effects; the returned member is borrowed, the Map retains ownership.
func (m *Map) Lookup(name string) (member Member, slot uint32, ok bool) {
	if len(m.entries) == 0 {
		return nil, 0, false
	}
	mask := uint32(len(m.entries)) - 1
	for s := makeProbeSeq(m.hash(name), mask); ; s = s.next() {
		e := &m.entries[s.bucket]
		if e.name == "" {
			return nil, 0, false
		}
		if e.name == name {
			return e.member, e.slot, true
		}
	}
}

// Traverse calls visit for every occupied entry, reporting the name and
// member references held by the map. If visit returns false, Traverse stops.
// The host's cycle collector uses this to discover references reachable
// through the map; it also serves as plain iteration, in table order rather
// than slot order.
func (m *Map) Traverse(visit func(name string, member Member) bool) {
	for i := range m.entries {
		e := &m.entries[i]
		if e.name == "" {
			continue
		}
		if !visit(e.name, e.member) {
			return
		}
	}
}

// Clear releases the map's reference on every stored member and empties all
// entries without freeing the bucket array. The host's cycle collector calls
// this to break reference cycles before teardown. Clear is reentrant-safe;
// clearing an already cleared map is a no-op.
func (m *Map) Clear() {
	for i := range m.entries {
		e := &m.entries[i]
		if e.name == "" {
			continue
		}
		release(e.member)
		*e = Entry{}
	}
	m.count = 0
}

// Close clears the map and returns the bucket array to the allocator. It is
// unnecessary to close a map using the default allocator. Lookups on a
// closed map report not-found. Close is idempotent.
func (m *Map) Close() {
	m.Clear()
	if m.entries != nil {
		m.allocator.FreeEntries(m.entries)
		m.entries = nil
	}
}

// Len returns the number of attributes in the map, which is also the length
// of the slot array an instance of the owning class needs.
func (m *Map) Len() int {
	return int(m.count)
}

// Sizeof returns the total memory footprint of the map in bytes: the header
// plus the bucket array. Diagnostic only; the value is constant for the
// life of the map.
func (m *Map) Sizeof() uintptr {
	return unsafe.Sizeof(*m) + uintptr(len(m.entries))*unsafe.Sizeof(Entry{})
}

// capacity returns the length of the bucket array.
func (m *Map) capacity() int {
	return len(m.entries)
}

// probeSeq maintains the state for a probe sequence over the bucket array.
// The starting bucket is hash & mask; each step applies the CPython dict
// recurrence bucket = ((bucket << 2) + bucket + hash + 1) & mask and shifts
// the working hash right by 5 bits. After the hash bits are exhausted the
// recurrence is bucket = 5*bucket + 1 (mod capacity), a full-period linear
// congruence for power-of-two capacities, so the sequence eventually visits
// every bucket.
type probeSeq struct {
	mask   uint32
	hash   uint32
	bucket uint32
}

func makeProbeSeq(hash, mask uint32) probeSeq {
	return probeSeq{
		mask:   mask,
		hash:   hash,
		bucket: hash & mask,
	}
}

func (s probeSeq) next() probeSeq {
	s.bucket = ((s.bucket << 2) + s.bucket + s.hash + 1) & s.mask
	s.hash >>= 5
	return s
}

func (m *Map) checkInvariants() {
	if invariants {
		if n := len(m.entries); n == 0 || n&(n-1) != 0 {
			panic(fmt.Sprintf("invariant failed: capacity %d is not a power of two", n))
		}
		if 4*m.count > 3*uint32(len(m.entries)) {
			panic(fmt.Sprintf("invariant failed: %d entries overfill capacity %d",
				m.count, len(m.entries)))
		}

		// Slot indices must form the range 0..count-1 with no duplicates,
		// and every occupied entry must be reachable through Lookup.
		seen := make([]bool, m.count)
		var occupied uint32
		for i := range m.entries {
			e := &m.entries[i]
			if e.name == "" {
				continue
			}
			occupied++
			if e.member == nil {
				panic(fmt.Sprintf("invariant failed: entry %q has a nil member", e.name))
			}
			if e.slot >= m.count || seen[e.slot] {
				panic(fmt.Sprintf("invariant failed: entry %q has bad slot %d", e.name, e.slot))
			}
			seen[e.slot] = true
			member, slot, ok := m.Lookup(e.name)
			if !ok || member != e.member || slot != e.slot {
				panic(fmt.Sprintf("invariant failed: entry %q not found at slot %d", e.name, e.slot))
			}
		}
		if occupied != m.count {
			panic(fmt.Sprintf("invariant failed: found %d occupied entries, but count is %d",
				occupied, m.count))
		}
	}
}

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

// option provides an interface to do work on a Map while it is being built.
type option interface {
	apply(m *Map)
}

type hashOption struct {
	hash HashFn
}

func (op hashOption) apply(m *Map) {
	m.hash = op.hash
}

// WithHash is an option to specify the hash function applied to attribute
// names. The same function is used during construction and lookup; a map is
// permanently bound to the function it was built with.
func WithHash(hash HashFn) option {
	return hashOption{hash}
}

// Allocator specifies an interface for allocating and releasing the memory
// backing a Map's bucket array. The default allocator utilizes Go's builtin
// make() and allows the GC to reclaim memory.
//
// If the allocator is manually managing memory then Map.Close must be
// called in order to ensure FreeEntries is called.
type Allocator interface {
	// AllocEntries should return a slice equivalent to make([]Entry, n).
	// The entries must be zeroed: a zero Entry is an empty bucket.
	AllocEntries(n int) []Entry

	// FreeEntries can optionally release the memory associated with the
	// supplied slice that is guaranteed to have been allocated by
	// AllocEntries.
	FreeEntries(v []Entry)
}

type defaultAllocator struct{}

func (defaultAllocator) AllocEntries(n int) []Entry {
	return make([]Entry, n)
}

func (defaultAllocator) FreeEntries(v []Entry) {
}

type allocatorOption struct {
	allocator Allocator
}

func (op allocatorOption) apply(m *Map) {
	m.allocator = op.allocator
}

// WithAllocator is an option to specify the Allocator to use for a Map.
func WithAllocator(allocator Allocator) option {
	return allocatorOption{allocator}
}

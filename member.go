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

// Member is the capability implemented by attribute descriptors. A Map
// stores members and hands them back from Lookup without ever inspecting
// them beyond identity; what a descriptor actually does on attribute access
// is between it and the instance slot layer.
//
// Descriptor implementations satisfy Member by embedding MemberTag.
type Member interface {
	isMember()
}

// MemberTag is embedded by descriptor implementations to mark them as
// Members.
type MemberTag struct{}

func (MemberTag) isMember() {}

// Referent is implemented by members whose lifetime the host object model
// tracks by reference counting. Build retains every stored member that
// implements it; Clear (and therefore Close) releases those references
// again. Members that do not implement Referent are held by ordinary Go
// ownership and need no bookkeeping.
type Referent interface {
	Retain()
	Release()
}

func retain(m Member) {
	if r, ok := m.(Referent); ok {
		r.Retain()
	}
}

func release(m Member) {
	if r, ok := m.(Referent); ok {
		r.Release()
	}
}

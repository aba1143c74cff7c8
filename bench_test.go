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

import (
	"fmt"
	"io"
	"strconv"
	"testing"

	"github.com/aclements/go-perfevent/perfbench"
)

// The baseline is the representation the class map replaces: a generic
// string-keyed map from attribute name to (member, slot).

type runtimeMapEntry struct {
	member Member
	slot   uint32
}

func benchFields(n int) []Field {
	fields := make([]Field, n)
	for i := range fields {
		fields[i] = Field{Name: "attr" + strconv.Itoa(i), Member: &testMember{id: i}}
	}
	return fields
}

func benchNames(fields []Field, miss bool) []string {
	names := make([]string, len(fields))
	for i, f := range fields {
		if miss {
			names[i] = "miss" + strconv.Itoa(i)
		} else {
			// Copy the name so that lookups cannot win through pointer
			// equality of the string data.
			names[i] = string(append([]byte(nil), f.Name...))
		}
	}
	return names
}

func benchSizes(f func(b *testing.B, n int)) func(*testing.B) {
	// Classes carry few attributes; the sizes stay small accordingly.
	cases := []int{3, 8, 16, 32, 64}
	return func(b *testing.B) {
		for _, n := range cases {
			b.Run("len="+strconv.Itoa(n), func(b *testing.B) { f(b, n) })
		}
	}
}

func BenchmarkLookupHit(b *testing.B) {
	b.Run("impl=runtimeMap", benchSizes(benchmarkRuntimeMapLookupHit))
	b.Run("impl=classMap", benchSizes(benchmarkClassMapLookupHit))
}

func BenchmarkLookupMiss(b *testing.B) {
	b.Run("impl=runtimeMap", benchSizes(benchmarkRuntimeMapLookupMiss))
	b.Run("impl=classMap", benchSizes(benchmarkClassMapLookupMiss))
}

func BenchmarkBuild(b *testing.B) {
	b.Run("impl=classMap", benchSizes(benchmarkClassMapBuild))
}

func benchmarkRuntimeMapLookupHit(b *testing.B, n int) {
	fields := benchFields(n)
	m := make(map[string]runtimeMapEntry, n)
	for i, f := range fields {
		m[f.Name] = runtimeMapEntry{member: f.Member, slot: uint32(i)}
	}
	names := benchNames(fields, false)

	perfbench.Open(b)
	b.ResetTimer()
	var e runtimeMapEntry
	for i := 0; i < b.N; i++ {
		e = m[names[i%n]]
	}
	b.StopTimer()
	fmt.Fprint(io.Discard, e.slot)
}

func benchmarkClassMapLookupHit(b *testing.B, n int) {
	fields := benchFields(n)
	m, err := Build(fields)
	if err != nil {
		b.Fatal(err)
	}
	names := benchNames(fields, false)

	perfbench.Open(b)
	b.ResetTimer()
	var slot uint32
	for i := 0; i < b.N; i++ {
		_, slot, _ = m.Lookup(names[i%n])
	}
	b.StopTimer()
	fmt.Fprint(io.Discard, slot)
}

func benchmarkRuntimeMapLookupMiss(b *testing.B, n int) {
	fields := benchFields(n)
	m := make(map[string]runtimeMapEntry, n)
	for i, f := range fields {
		m[f.Name] = runtimeMapEntry{member: f.Member, slot: uint32(i)}
	}
	names := benchNames(fields, true)

	perfbench.Open(b)
	b.ResetTimer()
	var ok bool
	for i := 0; i < b.N; i++ {
		_, ok = m[names[i%n]]
	}
	b.StopTimer()
	fmt.Fprint(io.Discard, ok)
}

func benchmarkClassMapLookupMiss(b *testing.B, n int) {
	fields := benchFields(n)
	m, err := Build(fields)
	if err != nil {
		b.Fatal(err)
	}
	names := benchNames(fields, true)

	perfbench.Open(b)
	b.ResetTimer()
	var ok bool
	for i := 0; i < b.N; i++ {
		_, _, ok = m.Lookup(names[i%n])
	}
	b.StopTimer()
	fmt.Fprint(io.Discard, ok)
}

func benchmarkClassMapBuild(b *testing.B, n int) {
	fields := benchFields(n)

	perfbench.Open(b)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m, err := Build(fields)
		if err != nil {
			b.Fatal(err)
		}
		m.Close()
	}
}

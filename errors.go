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
	"errors"
	"fmt"
)

// ErrTooManyFields is returned by Build when the input exceeds the maximum
// representable table size.
var ErrTooManyFields = errors.New("too many fields for a class map")

// ErrInvalidName indicates a field whose attribute name is not a usable
// string. Index identifies the offending field in the Build input.
type ErrInvalidName struct {
	Index int
}

func (e *ErrInvalidName) Error() string {
	return fmt.Sprintf("field %d: attribute name must be a non-empty string", e.Index)
}

// ErrNilMember indicates a field whose value does not satisfy the member
// descriptor capability.
type ErrNilMember struct {
	Name string
}

func (e *ErrNilMember) Error() string {
	return fmt.Sprintf("attribute %q: member must not be nil", e.Name)
}

// ErrDuplicateName indicates two fields in the Build input sharing an
// attribute name.
type ErrDuplicateName struct {
	Name string
}

func (e *ErrDuplicateName) Error() string {
	return fmt.Sprintf("attribute %q: duplicate attribute name", e.Name)
}

// Copyright 2024 The University of Queensland
// Copyright 2025 Contriboss
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

package crates

import (
	"fmt"
	"time"

	pubgrub "github.com/contriboss/crates-resolve"
)

// InternalInconsistencyError reports that the solver asked about a (virtual
// package, version) pair the index cannot explain — e.g. a Bucket query for
// a version the package simply does not have. Unlike an Unavailable result
// (yanked, missing feature), this always indicates a bug in the caller or
// the index snapshot, never a legitimate resolve outcome.
type InternalInconsistencyError struct {
	Package pubgrub.Name
	Version *CargoVersion
	Reason  string
}

func (e *InternalInconsistencyError) Error() string {
	return fmt.Sprintf("internal inconsistency: %s %s: %s", e.Package.Value(), e.Version, e.Reason)
}

var _ error = (*InternalInconsistencyError)(nil)

// CancelledError is returned by Resolve when should_cancel tripped the
// configured time budget before the solver reached a conclusion.
type CancelledError struct {
	Elapsed time.Duration
	Budget  time.Duration
}

func (e *CancelledError) Error() string {
	return fmt.Sprintf("resolve cancelled after %s (budget %s)", e.Elapsed, e.Budget)
}

var _ error = (*CancelledError)(nil)

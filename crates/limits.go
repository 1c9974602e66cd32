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

import "time"

// Limits bounds a single resolve's effort.
type Limits struct {
	// MaxSteps caps the solver's CDCL iteration count. Zero disables the cap.
	MaxSteps int
	// TimeBudget is the should_cancel deadline (TIME_CUT_OFF in the
	// reference implementation this package's encoder is modeled on).
	TimeBudget time.Duration
	// DumpThreshold is how long a resolve may run before it is considered
	// slow enough to warrant a diagnostic dump (TIME_MAKE_FILE).
	DumpThreshold time.Duration
	// CancelEvery is how many should_cancel calls elapse between actual
	// clock reads.
	CancelEvery int
}

const (
	defaultDumpThreshold = 40 * time.Second
	defaultCancelEvery   = 64
)

// DefaultLimits mirrors the reference resolver's TIME_MAKE_FILE=40s,
// TIME_CUT_OFF=4*TIME_MAKE_FILE=160s budget.
func DefaultLimits() Limits {
	return Limits{
		MaxSteps:      0,
		TimeBudget:    4 * defaultDumpThreshold,
		DumpThreshold: defaultDumpThreshold,
		CancelEvery:   defaultCancelEvery,
	}
}

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

// monotonicInstant is a thin wrapper over time.Time so should_cancel's
// elapsed-time arithmetic reads as domain code rather than bare time.Time
// juggling.
type monotonicInstant struct {
	t time.Time
}

func now() monotonicInstant {
	return monotonicInstant{t: time.Now()}
}

func (m monotonicInstant) elapsed() time.Duration {
	return time.Since(m.t)
}

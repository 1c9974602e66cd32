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

package pubgrub

// PriorityStats carries conflict-history counters a Prioritizer can use to
// steer the solver toward packages that have recently caused trouble.
type PriorityStats struct {
	AffectedCount int // incompatibilities currently indexed under this package
	CulpritCount  int // incompatibilities where this package was the decided one
}

// Priority is a lexicographically ordered branching priority. Higher Conflict
// wins first; on a tie, lower Matches wins (fewer remaining options decided
// first). The zero value is the lowest possible priority.
type Priority struct {
	Conflict int
	Matches  int
}

// Less reports whether p is a lower branching priority than other.
func (p Priority) Less(other Priority) bool {
	if p.Conflict != other.Conflict {
		return p.Conflict < other.Conflict
	}
	return p.Matches > other.Matches
}

// VersionChooser lets a Source override the solver's default newest-first
// version selection. Implementations return (nil, false, nil) to signal that
// no candidate exists in allowed.
type VersionChooser interface {
	ChooseVersion(name Name, allowed VersionSet) (Version, bool, error)
}

// Prioritizer lets a Source steer which pending package the solver decides
// next. Among all packages awaiting a decision, the solver picks the one
// with the highest Priority.
type Prioritizer interface {
	Prioritize(name Name, allowed VersionSet, stats PriorityStats) Priority
}

// Canceller lets a Source abort an in-flight solve, e.g. on a time budget.
type Canceller interface {
	ShouldCancel() error
}

// pickDecisionCandidate selects the next package to decide. If the source
// implements Prioritizer, every pending package is scored and the highest
// priority wins (ties broken by assignment order); otherwise the first
// pending package in assignment order is used, matching the solver's
// original behaviour.
func (st *solverState) pickDecisionCandidate() (Name, bool) {
	prioritizer, ok := st.source.(Prioritizer)
	if !ok {
		return st.partial.nextDecisionCandidate()
	}

	pending := st.partial.pendingPackages()
	if len(pending) == 0 {
		return EmptyName(), false
	}

	best := pending[0]
	bestPriority := prioritizer.Prioritize(best, st.partial.allowedSet(best), st.conflictStats(best))

	for _, name := range pending[1:] {
		priority := prioritizer.Prioritize(name, st.partial.allowedSet(name), st.conflictStats(name))
		if bestPriority.Less(priority) {
			best = name
			bestPriority = priority
		}
	}

	return best, true
}

// conflictStats reports how often a package has been involved in learned
// incompatibilities so far in this solve.
func (st *solverState) conflictStats(name Name) PriorityStats {
	affected := len(st.incompatibilities[name])
	culprit := 0
	for _, inc := range st.learned {
		if inc.Package == name {
			culprit++
		}
	}
	return PriorityStats{AffectedCount: affected, CulpritCount: culprit}
}

// checkCancelled polls the source's Canceller, if any.
func (st *solverState) checkCancelled() error {
	canceller, ok := st.source.(Canceller)
	if !ok {
		return nil
	}
	return canceller.ShouldCancel()
}

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

import pubgrub "github.com/contriboss/crates-resolve"

var (
	_ pubgrub.VersionChooser = (*Index)(nil)
	_ pubgrub.Prioritizer    = (*Index)(nil)
	_ pubgrub.Canceller      = (*Index)(nil)
)

// ChooseVersion implements pubgrub.VersionChooser.
//
// Links(key) has no real package behind it — its only legal values are the
// singleton hashes Bucket selections project onto it — so the candidate is
// read directly off allowed's upper bound rather than scanned from an index.
// Wide* nodes represent "which compatibility class satisfies this width
// shard", not a concrete version, so they project each real version newest
// first onto its class's canonical placeholder and return the first one
// allowed accepts. Bucket* nodes pick the newest real version allowed
// accepts directly.
func (idx *Index) ChooseVersion(name pubgrub.Name, allowed pubgrub.VersionSet) (pubgrub.Version, bool, error) {
	names, err := DecodeName(name)
	if err != nil {
		return nil, false, err
	}

	switch names.Kind {
	case KindLinks:
		interval, ok := allowed.(*pubgrub.VersionIntervalSet)
		if !ok {
			return nil, false, nil
		}
		v, inclusive, ok := interval.UpperBound()
		if !ok || !inclusive {
			return nil, false, nil
		}
		return v, true, nil
	case KindWide, KindWideFeatures, KindWideDefaultFeatures:
		for _, v := range idx.versionsDescending(names.Package) {
			canonical := CompatibilityOf(v).Canonical()
			if allowed.Contains(canonical) {
				return canonical, true, nil
			}
		}
		return nil, false, nil
	default:
		for _, v := range idx.versionsDescending(names.Package) {
			if allowed.Contains(v) {
				return v, true, nil
			}
		}
		return nil, false, nil
	}
}

// Prioritize implements pubgrub.Prioritizer. Conflict weight is
// affected+culprit counts, conflict-driven branching. Match count is fewer
// remaining options (Reverse'd by Priority.Less so it raises priority):
// Links is pinned to the lowest priority since it carries no real choice;
// Wide counts distinct compatibility classes still reachable; Bucket counts
// versions still in range; every *Features/*DefaultFeatures shard uses its
// non-feature sibling's count plus one, so a bucket is decided before its
// own feature shards.
func (idx *Index) Prioritize(name pubgrub.Name, allowed pubgrub.VersionSet, stats pubgrub.PriorityStats) pubgrub.Priority {
	names, err := DecodeName(name)
	if err != nil {
		return pubgrub.Priority{}
	}

	conflict := stats.AffectedCount + stats.CulpritCount

	switch names.Kind {
	case KindLinks:
		return pubgrub.Priority{Conflict: conflict, Matches: int(^uint(0) >> 1)}
	case KindBucket:
		return pubgrub.Priority{Conflict: conflict, Matches: idx.countVersionsInRange(names.Package, allowed)}
	case KindBucketFeatures, KindBucketDefaultFeatures:
		return pubgrub.Priority{Conflict: conflict, Matches: idx.countVersionsInRange(names.Package, allowed) + 1}
	case KindWide:
		return pubgrub.Priority{Conflict: conflict, Matches: idx.countCompatClasses(names.Package, names.Req, allowed)}
	case KindWideFeatures, KindWideDefaultFeatures:
		return pubgrub.Priority{Conflict: conflict, Matches: idx.countCompatClasses(names.Package, names.Req, allowed) + 1}
	default:
		return pubgrub.Priority{Conflict: conflict}
	}
}

func (idx *Index) countVersionsInRange(pkg string, allowed pubgrub.VersionSet) int {
	count := 0
	for _, v := range idx.sorted[pkg] {
		if allowed.Contains(v) {
			count++
		}
	}
	return count
}

func (idx *Index) countCompatClasses(pkg, reqText string, allowed pubgrub.VersionSet) int {
	req, err := ParseCargoRequirement(reqText)
	if err != nil {
		return 0
	}
	seen := make(map[SemverCompatibility]bool)
	for _, v := range idx.sorted[pkg] {
		if req.Matches(v) && allowed.Contains(v) {
			seen[CompatibilityOf(v)] = true
		}
	}
	return len(seen)
}

// ShouldCancel implements pubgrub.Canceller with a pre-increment
// modulo-CancelEvery cadence: only every CancelEvery'th call actually reads
// the clock, keeping the check itself cheap on a hot solver loop.
func (idx *Index) ShouldCancel() error {
	idx.mu.Lock()
	calls := idx.cancelCalls
	idx.cancelCalls++
	startedAt := idx.startedAt
	limits := idx.limits
	idx.mu.Unlock()

	if limits.CancelEvery <= 0 || calls%limits.CancelEvery != 0 {
		return nil
	}
	if elapsed := startedAt.elapsed(); elapsed > limits.TimeBudget {
		return &CancelledError{Elapsed: elapsed, Budget: limits.TimeBudget}
	}
	return nil
}

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
	"testing"
	"time"

	pubgrub "github.com/contriboss/crates-resolve"
)

func TestChooseVersionBucketPicksNewest(t *testing.T) {
	idx := newFixtureIndex(pkg("B", rec("1.0.0"), rec("1.2.0"), rec("2.0.0")))
	allowed := pubgrub.NewVersionRangeSet(MustCargoVersion("1.0.0"), true, MustCargoVersion("2.0.0"), false)
	v, ok, err := idx.ChooseVersion(BucketName("B", compat1(), false).ToName(), allowed)
	if err != nil {
		t.Fatalf("ChooseVersion: %v", err)
	}
	if !ok || v.String() != "1.2.0" {
		t.Fatalf("expected newest in-range version 1.2.0, got %v ok=%v", v, ok)
	}
}

func TestChooseVersionWideProjectsToCanonical(t *testing.T) {
	idx := newFixtureIndex(pkg("B", rec("1.0.0"), rec("1.5.0"), rec("2.0.0"), rec("2.5.0")))
	allowed := pubgrub.NewVersionRangeSet(MustCargoVersion("1.0.0"), true, MustCargoVersion("3.0.0"), false)
	wide := WideName("B", ">=1.0.0, <3.0.0", "A", compat1())
	v, ok, err := idx.ChooseVersion(wide.ToName(), allowed)
	if err != nil {
		t.Fatalf("ChooseVersion: %v", err)
	}
	if !ok {
		t.Fatalf("expected a choice")
	}
	// Newest version is 2.5.0 whose canonical class representative is 2.0.0.
	if v.String() != "2.0.0" {
		t.Fatalf("expected canonical 2.0.0 for the newest compat class, got %s", v)
	}
}

func TestPrioritizeLinksIsLowestPriority(t *testing.T) {
	idx := newFixtureIndex(pkg("B", rec("1.0.0")))
	p := idx.Prioritize(LinksName("x").ToName(), pubgrub.FullVersionSet(), pubgrub.PriorityStats{})
	if p.Matches != int(^uint(0)>>1) {
		t.Errorf("expected Links to report the maximum Matches count, got %d", p.Matches)
	}
}

func TestPrioritizeBucketCountsVersionsInRange(t *testing.T) {
	idx := newFixtureIndex(pkg("B", rec("1.0.0"), rec("1.2.0"), rec("2.0.0")))
	allowed := pubgrub.NewVersionRangeSet(MustCargoVersion("1.0.0"), true, MustCargoVersion("2.0.0"), false)
	p := idx.Prioritize(BucketName("B", compat1(), false).ToName(), allowed, pubgrub.PriorityStats{})
	if p.Matches != 2 {
		t.Errorf("expected 2 versions in range, got %d", p.Matches)
	}
}

func TestPrioritizeConflictWeight(t *testing.T) {
	idx := newFixtureIndex(pkg("B", rec("1.0.0")))
	stats := pubgrub.PriorityStats{AffectedCount: 3, CulpritCount: 5}
	p := idx.Prioritize(BucketName("B", compat1(), false).ToName(), pubgrub.FullVersionSet(), stats)
	if p.Conflict != 8 {
		t.Errorf("expected Conflict = affected+culprit = 8, got %d", p.Conflict)
	}
}

func TestShouldCancelTripsPastBudget(t *testing.T) {
	idx := NewIndex(map[string]map[string]*VersionRecord{}, WithLimits(Limits{
		CancelEvery: 1,
		TimeBudget:  0,
	}))
	err := idx.ShouldCancel()
	if err == nil {
		t.Fatalf("expected ShouldCancel to trip immediately with a zero time budget")
	}
	var cancelled *CancelledError
	if ce, ok := err.(*CancelledError); ok {
		cancelled = ce
	} else {
		t.Fatalf("expected *CancelledError, got %T", err)
	}
	if cancelled.Budget != 0 {
		t.Errorf("expected zero budget echoed back, got %s", cancelled.Budget)
	}
}

// The counter is read pre-increment, so the very first call (count 0) does
// consult the clock; calls at counts 1 through 63 fall between cadence
// checkpoints and must skip the clock read entirely, regardless of budget.
func TestShouldCancelChecksImmediatelyOnFirstCall(t *testing.T) {
	idx := NewIndex(map[string]map[string]*VersionRecord{}, WithLimits(Limits{
		CancelEvery: 64,
		TimeBudget:  0,
	}))
	if err := idx.ShouldCancel(); err == nil {
		t.Fatalf("expected the first call (pre-increment count 0) to check the clock immediately")
	}
}

func TestShouldCancelRespectsCadence(t *testing.T) {
	idx := NewIndex(map[string]map[string]*VersionRecord{}, WithLimits(Limits{
		CancelEvery: 64,
		TimeBudget:  time.Hour,
	}))
	for i := 0; i < 64; i++ {
		if err := idx.ShouldCancel(); err != nil {
			t.Fatalf("call %d: expected no cancellation before the budget is exceeded, got %v", i, err)
		}
	}

	// With a zero budget every clock read cancels, so only the cadence
	// checkpoints (counts 0 and 64) may report an error.
	zero := NewIndex(map[string]map[string]*VersionRecord{}, WithLimits(Limits{
		CancelEvery: 64,
		TimeBudget:  0,
	}))
	if err := zero.ShouldCancel(); err == nil {
		t.Fatalf("call 0: expected the checkpoint to read the clock and cancel")
	}
	for i := 1; i < 64; i++ {
		if err := zero.ShouldCancel(); err != nil {
			t.Fatalf("call %d: expected no clock read between checkpoints, got %v", i, err)
		}
	}
	if err := zero.ShouldCancel(); err == nil {
		t.Fatalf("call 64: expected the next checkpoint to read the clock and cancel")
	}
}

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

	"github.com/google/go-cmp/cmp"
	pubgrub "github.com/contriboss/crates-resolve"
)

// bucketVersions projects a solution down to plain package->version strings
// for Bucket entries only, so expected/actual can be diffed with cmp without
// dragging the full Names/Version types into the comparison.
func bucketVersions(sol pubgrub.Solution) map[string]string {
	out := make(map[string]string)
	for nv := range sol.All() {
		names, err := DecodeName(nv.Name)
		if err != nil || names.Kind != KindBucket {
			continue
		}
		out[names.Package] = nv.Version.String()
	}
	return out
}

// S1: trivial resolve, no dependencies.
func TestScenarioTrivial(t *testing.T) {
	idx := newFixtureIndex(pkg("A", rec("1.0.0")))

	out, err := Resolve(idx, "A", MustCargoVersion("1.0.0"), ModePrimary)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	v, ok := out.Solution.GetVersion(out.Root.ToName())
	if !ok || v.String() != "1.0.0" {
		t.Fatalf("expected root A@1.0.0 in solution, got %v ok=%v", v, ok)
	}
}

// S2: SemVer class selection picks the newest version within the requested
// compatibility range, never a version in a different class.
func TestScenarioSemverClass(t *testing.T) {
	idx := newFixtureIndex(
		pkg("A", rec("1.0.0", withDeps(dep("B", "B", "^1.2")))),
		pkg("B", rec("1.2.0"), rec("1.5.0"), rec("2.0.0")),
	)

	out, err := Resolve(idx, "A", MustCargoVersion("1.0.0"), ModePrimary)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	want := map[string]string{"A": "1.0.0", "B": "1.5.0"}
	if diff := cmp.Diff(want, bucketVersions(out.Solution)); diff != "" {
		t.Errorf("unexpected bucket selection (-want +got):\n%s", diff)
	}
}

// S3: a yanked version is skipped in favor of the next newest still in range.
func TestScenarioYanked(t *testing.T) {
	idx := newFixtureIndex(
		pkg("A", rec("1.0.0", withDeps(dep("B", "B", "^1.2")))),
		pkg("B", rec("1.2.0"), rec("1.5.0", withYanked()), rec("2.0.0")),
	)

	out, err := Resolve(idx, "A", MustCargoVersion("1.0.0"), ModePrimary)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	want := map[string]string{"A": "1.0.0", "B": "1.2.0"}
	if diff := cmp.Diff(want, bucketVersions(out.Solution)); diff != "" {
		t.Errorf("unexpected bucket selection (-want +got):\n%s", diff)
	}
}

// S4: two dependencies claiming the same links key can never both be
// selected.
func TestScenarioLinksCollision(t *testing.T) {
	idx := newFixtureIndex(
		pkg("A", rec("1.0.0", withDeps(
			dep("B", "B", "^1"),
			dep("C", "C", "^1"),
		))),
		pkg("B", rec("1.0.0", withLinks("x"))),
		pkg("C", rec("1.0.0", withLinks("x"))),
	)

	_, err := Resolve(idx, "A", MustCargoVersion("1.0.0"), ModePrimary)
	if err == nil {
		t.Fatalf("expected NoSolution for colliding links keys")
	}
}

// S6: a normal-edge cycle is solvable (no version conflict) but the cycle
// detector must report it.
func TestScenarioCycleDetection(t *testing.T) {
	idx := newFixtureIndex(
		pkg("A", rec("1.0.0", withDeps(dep("B", "B", "^1")))),
		pkg("B", rec("1.0.0", withDeps(dep("A", "A", "^1")))),
	)

	out, err := Resolve(idx, "A", MustCargoVersion("1.0.0"), ModePrimary)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !out.Cyclic {
		t.Errorf("expected Cyclic=true for a mutual normal-edge dependency")
	}
}

// S7: a wide requirement spanning two compatibility classes must resolve to
// exactly one bucket for the dependency, never two.
func TestScenarioWideRequirement(t *testing.T) {
	idx := newFixtureIndex(
		pkg("A", rec("1.0.0", withDeps(dep("B", "B", ">=1.0.0, <3.0.0")))),
		pkg("B", rec("1.0.0"), rec("1.5.0"), rec("2.0.0"), rec("2.5.0")),
	)

	out, err := Resolve(idx, "A", MustCargoVersion("1.0.0"), ModePrimary)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	seen := 0
	for nv := range out.Solution.All() {
		names, derr := DecodeName(nv.Name)
		if derr != nil || names.Kind != KindBucket || names.Package != "B" {
			continue
		}
		seen++
	}
	if seen != 1 {
		t.Fatalf("expected exactly one B bucket in the solution, got %d", seen)
	}
}

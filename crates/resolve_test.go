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

	pubgrub "github.com/contriboss/crates-resolve"
)

func TestModeStrings(t *testing.T) {
	cases := map[Mode]string{
		ModePrimary:                  "primary",
		ModeReference:                "reference",
		ModeAll:                      "all",
		ModePrimaryLockedByReference: "primary-locked-by-reference",
		ModeReferenceLockedByPrimary: "reference-locked-by-primary",
		Mode(99):                     "unknown",
	}
	for mode, want := range cases {
		if got := mode.String(); got != want {
			t.Errorf("Mode(%d).String() = %q, want %q", mode, got, want)
		}
	}
}

// Property 8: re-solving with a resolve's own output installed as an overlay
// must produce the same (real package, version) projection.
func TestResolveOverlayIdempotence(t *testing.T) {
	idx := newFixtureIndex(
		pkg("A", rec("1.0.0", withDeps(dep("B", "B", "^1")))),
		pkg("B", rec("1.0.0"), rec("1.5.0"), rec("2.0.0")),
	)

	first, err := Resolve(idx, "A", MustCargoVersion("1.0.0"), ModePrimary)
	if err != nil {
		t.Fatalf("first Resolve: %v", err)
	}

	second, err := Resolve(idx, "A", MustCargoVersion("1.0.0"), ModePrimary, WithOverlay(first.Solution))
	if err != nil {
		t.Fatalf("second Resolve with overlay: %v", err)
	}

	if !solutionsAgree(first.Solution, second.Solution) {
		t.Errorf("expected overlay re-solve to reproduce the same solution")
	}
}

func TestResolveModeAllAgreement(t *testing.T) {
	idx := newFixtureIndex(pkg("A", rec("1.0.0")))

	ref := func(idx *Index, root Names) (pubgrub.Solution, error) {
		return pubgrub.Solution{{Name: root.ToName(), Version: MustCargoVersion("1.0.0")}}, nil
	}

	out, err := Resolve(idx, "A", MustCargoVersion("1.0.0"), ModeAll, WithReferenceResolver(ref))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if out.Agreement == nil || !*out.Agreement {
		t.Errorf("expected the reference and primary solutions to agree")
	}
}

func TestResolveModeAllDisagreement(t *testing.T) {
	idx := newFixtureIndex(pkg("A", rec("1.0.0")))

	ref := func(idx *Index, root Names) (pubgrub.Solution, error) {
		return pubgrub.Solution{{Name: root.ToName(), Version: MustCargoVersion("9.9.9")}}, nil
	}

	out, err := Resolve(idx, "A", MustCargoVersion("1.0.0"), ModeAll, WithReferenceResolver(ref))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if out.Agreement == nil || *out.Agreement {
		t.Errorf("expected disagreement when the reference picks a different version")
	}
}

func TestResolveModeRequiresReference(t *testing.T) {
	idx := newFixtureIndex(pkg("A", rec("1.0.0")))
	if _, err := Resolve(idx, "A", MustCargoVersion("1.0.0"), ModeReference); err == nil {
		t.Errorf("expected ModeReference without WithReferenceResolver to error")
	}
	if _, err := Resolve(idx, "A", MustCargoVersion("1.0.0"), ModeAll); err == nil {
		t.Errorf("expected ModeAll without WithReferenceResolver to error")
	}
}

func TestSolutionsAgree(t *testing.T) {
	a := pubgrub.Solution{{Name: pubgrub.MakeName("x"), Version: MustCargoVersion("1.0.0")}}
	b := pubgrub.Solution{{Name: pubgrub.MakeName("x"), Version: MustCargoVersion("1.0.0")}}
	if !solutionsAgree(a, b) {
		t.Errorf("expected identical solutions to agree")
	}

	c := pubgrub.Solution{{Name: pubgrub.MakeName("x"), Version: MustCargoVersion("2.0.0")}}
	if solutionsAgree(a, c) {
		t.Errorf("expected differing versions to disagree")
	}
}

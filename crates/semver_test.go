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

import "testing"

func TestCargoVersionSort(t *testing.T) {
	a := MustCargoVersion("1.2.3")
	b := MustCargoVersion("1.3.0")
	if a.Sort(b) >= 0 {
		t.Fatalf("expected 1.2.3 < 1.3.0")
	}
	if b.Sort(a) <= 0 {
		t.Fatalf("expected 1.3.0 > 1.2.3")
	}
	if a.Sort(a) != 0 {
		t.Fatalf("expected 1.2.3 == 1.2.3")
	}
}

func TestCargoVersionStringNilSafe(t *testing.T) {
	var v *CargoVersion
	if v.String() != "?" {
		t.Fatalf("expected nil CargoVersion to render as ?, got %q", v.String())
	}
}

func TestCompatibilityOf(t *testing.T) {
	tests := []struct {
		version string
		want    SemverCompatibility
	}{
		{"1.2.3", SemverCompatibility{Kind: CompatMajor, Major: 1}},
		{"2.0.0", SemverCompatibility{Kind: CompatMajor, Major: 2}},
		{"0.3.1", SemverCompatibility{Kind: CompatMinor, Minor: 3}},
		{"0.0.5", SemverCompatibility{Kind: CompatPatch, Patch: 5}},
	}
	for _, tt := range tests {
		got := CompatibilityOf(MustCargoVersion(tt.version))
		if got != tt.want {
			t.Errorf("CompatibilityOf(%s) = %+v, want %+v", tt.version, got, tt.want)
		}
	}
}

func TestSemverCompatibilityContains(t *testing.T) {
	c := CompatibilityOf(MustCargoVersion("1.0.0"))
	if !c.Contains(MustCargoVersion("1.9.9")) {
		t.Errorf("expected 1.x to contain 1.9.9")
	}
	if c.Contains(MustCargoVersion("2.0.0")) {
		t.Errorf("expected 1.x to not contain 2.0.0")
	}

	zero := CompatibilityOf(MustCargoVersion("0.3.0"))
	if !zero.Contains(MustCargoVersion("0.3.9")) {
		t.Errorf("expected 0.3.x to contain 0.3.9")
	}
	if zero.Contains(MustCargoVersion("0.4.0")) {
		t.Errorf("expected 0.3.x to not contain 0.4.0")
	}
}

func TestSemverCompatibilityCanonicalAndString(t *testing.T) {
	major := SemverCompatibility{Kind: CompatMajor, Major: 3}
	if major.Canonical().String() != "3.0.0" {
		t.Errorf("got %s", major.Canonical())
	}
	if major.String() != "3" {
		t.Errorf("got %s", major.String())
	}

	minor := SemverCompatibility{Kind: CompatMinor, Minor: 4}
	if minor.Canonical().String() != "0.4.0" {
		t.Errorf("got %s", minor.Canonical())
	}
	if minor.String() != "0.4" {
		t.Errorf("got %s", minor.String())
	}

	patch := SemverCompatibility{Kind: CompatPatch, Patch: 7}
	if patch.Canonical().String() != "0.0.7" {
		t.Errorf("got %s", patch.Canonical())
	}
	if patch.String() != "0.0.7" {
		t.Errorf("got %s", patch.String())
	}
}

func TestRangeForCompatibility(t *testing.T) {
	c := CompatibilityOf(MustCargoVersion("1.4.0"))
	r := c.rangeForCompatibility()
	if !r.Contains(MustCargoVersion("1.9.9")) {
		t.Errorf("expected range to contain 1.9.9")
	}
	if r.Contains(MustCargoVersion("2.0.0")) {
		t.Errorf("expected range to exclude 2.0.0")
	}
	if r.Contains(MustCargoVersion("0.9.0")) {
		t.Errorf("expected range to exclude 0.9.0")
	}
}

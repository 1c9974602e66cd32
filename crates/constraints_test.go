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

func TestDependencyConstraintsInsertIntersects(t *testing.T) {
	c := newConstraints()
	name := BucketName("serde", compat1(), false)

	wide := pubgrub.NewVersionRangeSet(MustCargoVersion("1.0.0"), true, MustCargoVersion("3.0.0"), false)
	narrow := pubgrub.NewVersionRangeSet(MustCargoVersion("1.5.0"), true, MustCargoVersion("2.0.0"), false)

	c.insert(name, wide)
	c.insert(name, narrow)

	got := c[name]
	if got.Contains(MustCargoVersion("1.2.0")) {
		t.Errorf("1.2.0 is outside the narrower range; intersection should exclude it")
	}
	if !got.Contains(MustCargoVersion("1.6.0")) {
		t.Errorf("1.6.0 is inside both ranges; intersection should include it")
	}
}

func TestDependencyConstraintsInsertSingleton(t *testing.T) {
	c := newConstraints()
	name := BucketName("serde", compat1(), false)
	c.insertSingleton(name, MustCargoVersion("1.2.3"))

	got := c[name]
	if !got.Contains(MustCargoVersion("1.2.3")) {
		t.Errorf("expected singleton to contain 1.2.3")
	}
	if got.Contains(MustCargoVersion("1.2.4")) {
		t.Errorf("expected singleton to exclude 1.2.4")
	}
}

func TestDependencyConstraintsTerms(t *testing.T) {
	c := newConstraints()
	a := BucketName("serde", compat1(), false)
	b := BucketName("rayon", compat1(), false)
	c.insertSingleton(a, MustCargoVersion("1.0.0"))
	c.insertSingleton(b, MustCargoVersion("1.0.0"))

	terms := c.Terms()
	if len(terms) != 2 {
		t.Fatalf("expected 2 terms, got %d", len(terms))
	}
}

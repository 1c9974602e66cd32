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

func compat1() SemverCompatibility { return SemverCompatibility{Kind: CompatMajor, Major: 1} }

func TestNamesEncodeRoundTrip(t *testing.T) {
	cases := []Names{
		BucketName("serde", compat1(), false),
		BucketName("serde", compat1(), true),
		LinksName("openssl"),
		WideName("serde", "=1", "app", compat1()),
	}
	for _, n := range cases {
		decoded, err := DecodeName(n.ToName())
		if err != nil {
			t.Fatalf("DecodeName(%s): %v", n, err)
		}
		if decoded != n {
			t.Errorf("round-trip mismatch: %+v != %+v", decoded, n)
		}
	}
}

func TestNamesEncodeRoundTripFeatures(t *testing.T) {
	bucket := BucketName("serde", compat1(), false)
	feat, err := bucket.WithFeatures(LabelFeat, "derive")
	if err != nil {
		t.Fatalf("WithFeatures: %v", err)
	}
	decoded, err := DecodeName(feat.ToName())
	if err != nil {
		t.Fatalf("DecodeName: %v", err)
	}
	if decoded != feat {
		t.Errorf("round-trip mismatch: %+v != %+v", decoded, feat)
	}

	dep, err := bucket.WithFeatures(LabelDep, "rayon")
	if err != nil {
		t.Fatalf("WithFeatures(Dep): %v", err)
	}
	decodedDep, err := DecodeName(dep.ToName())
	if err != nil {
		t.Fatalf("DecodeName: %v", err)
	}
	if decodedDep != dep {
		t.Errorf("round-trip mismatch: %+v != %+v", decodedDep, dep)
	}

	def, err := bucket.WithDefaultFeatures()
	if err != nil {
		t.Fatalf("WithDefaultFeatures: %v", err)
	}
	decodedDef, err := DecodeName(def.ToName())
	if err != nil {
		t.Fatalf("DecodeName: %v", err)
	}
	if decodedDef != def {
		t.Errorf("round-trip mismatch: %+v != %+v", decodedDef, def)
	}
}

func TestNamesEncodeRoundTripWide(t *testing.T) {
	wide := WideName("serde", ">=1.0,<3.0", "app", compat1())
	feat, err := wide.WithFeatures(LabelFeat, "derive")
	if err != nil {
		t.Fatalf("WithFeatures: %v", err)
	}
	decoded, err := DecodeName(feat.ToName())
	if err != nil {
		t.Fatalf("DecodeName: %v", err)
	}
	if decoded != feat {
		t.Errorf("round-trip mismatch: %+v != %+v", decoded, feat)
	}

	def, err := wide.WithDefaultFeatures()
	if err != nil {
		t.Fatalf("WithDefaultFeatures: %v", err)
	}
	decodedDef, err := DecodeName(def.ToName())
	if err != nil {
		t.Fatalf("DecodeName: %v", err)
	}
	if decodedDef != def {
		t.Errorf("round-trip mismatch: %+v != %+v", decodedDef, def)
	}
}

func TestNamesDistinctEncodingsPerField(t *testing.T) {
	a := BucketName("serde", compat1(), false)
	b := BucketName("serde", compat1(), true)
	if a.Encode() == b.Encode() {
		t.Errorf("root and non-root bucket must encode distinctly")
	}

	c := BucketName("serde", SemverCompatibility{Kind: CompatMajor, Major: 2}, false)
	if a.Encode() == c.Encode() {
		t.Errorf("different compat classes must encode distinctly")
	}

	w1 := WideName("serde", "*", "app", compat1())
	w2 := WideName("serde", "*", "other", compat1())
	if w1.Encode() == w2.Encode() {
		t.Errorf("Wide nodes with different parents must encode distinctly")
	}
}

func TestWithFeaturesInvalidOnLinks(t *testing.T) {
	links := LinksName("openssl")
	if _, err := links.WithFeatures(LabelFeat, "x"); err == nil {
		t.Errorf("expected error deriving a feature shard off a Links node")
	}
	if _, err := links.WithDefaultFeatures(); err == nil {
		t.Errorf("expected error deriving a default-features shard off a Links node")
	}
}

func TestAsBucket(t *testing.T) {
	bucket := BucketName("serde", compat1(), true)
	feat, _ := bucket.WithFeatures(LabelFeat, "derive")
	anchor, ok := feat.AsBucket()
	if !ok {
		t.Fatalf("expected AsBucket to succeed")
	}
	if anchor.IsRoot {
		t.Errorf("AsBucket must clear IsRoot: a feature shard always anchors the non-root bucket identity")
	}
	if anchor.Package != "serde" || anchor.Compat != compat1() {
		t.Errorf("got %+v", anchor)
	}

	if _, ok := LinksName("openssl").AsBucket(); ok {
		t.Errorf("Links has no AsBucket derivation")
	}
}

func TestDecodeNameRejectsGarbage(t *testing.T) {
	if _, err := DecodeName(pubgrub.MakeName("not-a-valid-encoding")); err == nil {
		t.Errorf("expected decode error for garbage input")
	}
}

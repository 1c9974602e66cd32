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
	"fmt"
	"strconv"
	"strings"

	pubgrub "github.com/contriboss/crates-resolve"
)

// Kind tags the seven virtual package identities a real package can expand
// into. See Names.
type Kind int

const (
	KindBucket Kind = iota
	KindBucketFeatures
	KindBucketDefaultFeatures
	KindWide
	KindWideFeatures
	KindWideDefaultFeatures
	KindLinks
)

func (k Kind) String() string {
	switch k {
	case KindBucket:
		return "bucket"
	case KindBucketFeatures:
		return "bucket-features"
	case KindBucketDefaultFeatures:
		return "bucket-default-features"
	case KindWide:
		return "wide"
	case KindWideFeatures:
		return "wide-features"
	case KindWideDefaultFeatures:
		return "wide-default-features"
	case KindLinks:
		return "links"
	default:
		return "unknown"
	}
}

// LabelKind distinguishes the two things a *Features shard can require be
// active: a named feature (Feat) or an optional dependency activation (Dep).
type LabelKind int

const (
	LabelFeat LabelKind = iota
	LabelDep
)

func (k LabelKind) String() string {
	if k == LabelDep {
		return "dep"
	}
	return "feat"
}

// Names is a tagged union identifying one node in the solver's dependency
// graph. It is pure data; every consumer switches on Kind explicitly. Two
// Names are the same solver package iff their Encode() strings are equal —
// which covers every field relevant to that Kind (structural equality).
type Names struct {
	Kind Kind

	// Bucket, BucketFeatures, BucketDefaultFeatures
	Package string
	Compat  SemverCompatibility
	IsRoot  bool // Bucket only

	// BucketFeatures, WideFeatures
	Label     string
	LabelKind LabelKind

	// Wide, WideFeatures, WideDefaultFeatures
	Req          string
	Parent       string
	ParentCompat SemverCompatibility

	// Links
	LinksKey string
}

const fieldSep = "\x1f"

// Encode renders a canonical, lossless string encoding of n, interned as
// the solver's Name.
func (n Names) Encode() string {
	switch n.Kind {
	case KindBucket:
		return join("B", n.Package, n.Compat.String(), strconv.FormatBool(n.IsRoot))
	case KindBucketFeatures:
		return join("BF", n.Package, n.Compat.String(), n.LabelKind.String(), n.Label)
	case KindBucketDefaultFeatures:
		return join("BD", n.Package, n.Compat.String())
	case KindWide:
		return join("W", n.Package, n.Req, n.Parent, n.ParentCompat.String())
	case KindWideFeatures:
		return join("WF", n.Package, n.Req, n.Parent, n.ParentCompat.String(), n.LabelKind.String(), n.Label)
	case KindWideDefaultFeatures:
		return join("WD", n.Package, n.Req, n.Parent, n.ParentCompat.String())
	case KindLinks:
		return join("L", n.LinksKey)
	default:
		return join("?")
	}
}

func join(parts ...string) string {
	return strings.Join(parts, fieldSep)
}

// ToName interns n as a solver-level Name.
func (n Names) ToName() pubgrub.Name {
	return pubgrub.MakeName(n.Encode())
}

// String implements fmt.Stringer for debug output.
func (n Names) String() string {
	switch n.Kind {
	case KindBucket:
		root := ""
		if n.IsRoot {
			root = ",root"
		}
		return fmt.Sprintf("Bucket(%s,%s%s)", n.Package, n.Compat, root)
	case KindBucketFeatures:
		return fmt.Sprintf("BucketFeatures(%s,%s,%s(%s))", n.Package, n.Compat, n.LabelKind, n.Label)
	case KindBucketDefaultFeatures:
		return fmt.Sprintf("BucketDefaultFeatures(%s,%s)", n.Package, n.Compat)
	case KindWide:
		return fmt.Sprintf("Wide(%s,%q,from=%s@%s)", n.Package, n.Req, n.Parent, n.ParentCompat)
	case KindWideFeatures:
		return fmt.Sprintf("WideFeatures(%s,%q,from=%s@%s,%s(%s))", n.Package, n.Req, n.Parent, n.ParentCompat, n.LabelKind, n.Label)
	case KindWideDefaultFeatures:
		return fmt.Sprintf("WideDefaultFeatures(%s,%q,from=%s@%s)", n.Package, n.Req, n.Parent, n.ParentCompat)
	case KindLinks:
		return fmt.Sprintf("Links(%s)", n.LinksKey)
	default:
		return "Names(?)"
	}
}

// DecodeName parses a solver-level Name back into its structured form.
func DecodeName(name pubgrub.Name) (Names, error) {
	s := name.Value()
	parts := strings.Split(s, fieldSep)
	if len(parts) == 0 {
		return Names{}, fmt.Errorf("decoding name %q: empty", s)
	}

	switch parts[0] {
	case "B":
		if len(parts) != 4 {
			return Names{}, fmt.Errorf("decoding bucket name %q: wrong arity", s)
		}
		compat, err := parseCompat(parts[2])
		if err != nil {
			return Names{}, err
		}
		isRoot, err := strconv.ParseBool(parts[3])
		if err != nil {
			return Names{}, fmt.Errorf("decoding bucket name %q: %w", s, err)
		}
		return Names{Kind: KindBucket, Package: parts[1], Compat: compat, IsRoot: isRoot}, nil
	case "BF":
		if len(parts) != 5 {
			return Names{}, fmt.Errorf("decoding bucket-features name %q: wrong arity", s)
		}
		compat, err := parseCompat(parts[2])
		if err != nil {
			return Names{}, err
		}
		return Names{
			Kind: KindBucketFeatures, Package: parts[1], Compat: compat,
			LabelKind: parseLabelKind(parts[3]), Label: parts[4],
		}, nil
	case "BD":
		if len(parts) != 3 {
			return Names{}, fmt.Errorf("decoding bucket-default-features name %q: wrong arity", s)
		}
		compat, err := parseCompat(parts[2])
		if err != nil {
			return Names{}, err
		}
		return Names{Kind: KindBucketDefaultFeatures, Package: parts[1], Compat: compat}, nil
	case "W":
		if len(parts) != 5 {
			return Names{}, fmt.Errorf("decoding wide name %q: wrong arity", s)
		}
		parentCompat, err := parseCompat(parts[4])
		if err != nil {
			return Names{}, err
		}
		return Names{Kind: KindWide, Package: parts[1], Req: parts[2], Parent: parts[3], ParentCompat: parentCompat}, nil
	case "WF":
		if len(parts) != 7 {
			return Names{}, fmt.Errorf("decoding wide-features name %q: wrong arity", s)
		}
		parentCompat, err := parseCompat(parts[4])
		if err != nil {
			return Names{}, err
		}
		return Names{
			Kind: KindWideFeatures, Package: parts[1], Req: parts[2], Parent: parts[3], ParentCompat: parentCompat,
			LabelKind: parseLabelKind(parts[5]), Label: parts[6],
		}, nil
	case "WD":
		if len(parts) != 5 {
			return Names{}, fmt.Errorf("decoding wide-default-features name %q: wrong arity", s)
		}
		parentCompat, err := parseCompat(parts[4])
		if err != nil {
			return Names{}, err
		}
		return Names{Kind: KindWideDefaultFeatures, Package: parts[1], Req: parts[2], Parent: parts[3], ParentCompat: parentCompat}, nil
	case "L":
		if len(parts) != 2 {
			return Names{}, fmt.Errorf("decoding links name %q: wrong arity", s)
		}
		return Names{Kind: KindLinks, LinksKey: parts[1]}, nil
	default:
		return Names{}, fmt.Errorf("decoding name %q: unknown tag %q", s, parts[0])
	}
}

func parseLabelKind(s string) LabelKind {
	if s == "dep" {
		return LabelDep
	}
	return LabelFeat
}

func parseCompat(s string) (SemverCompatibility, error) {
	if !strings.Contains(s, ".") {
		major, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return SemverCompatibility{}, fmt.Errorf("decoding compat %q: %w", s, err)
		}
		return SemverCompatibility{Kind: CompatMajor, Major: major}, nil
	}
	rest := strings.TrimPrefix(s, "0.")
	if !strings.Contains(rest, ".") {
		minor, err := strconv.ParseUint(rest, 10, 64)
		if err != nil {
			return SemverCompatibility{}, fmt.Errorf("decoding compat %q: %w", s, err)
		}
		return SemverCompatibility{Kind: CompatMinor, Minor: minor}, nil
	}
	patch, err := strconv.ParseUint(strings.TrimPrefix(rest, "0."), 10, 64)
	if err != nil {
		return SemverCompatibility{}, fmt.Errorf("decoding compat %q: %w", s, err)
	}
	return SemverCompatibility{Kind: CompatPatch, Patch: patch}, nil
}

// BucketName builds a Bucket(package, compat, isRoot) identity.
func BucketName(pkg string, compat SemverCompatibility, isRoot bool) Names {
	return Names{Kind: KindBucket, Package: pkg, Compat: compat, IsRoot: isRoot}
}

// LinksName builds a Links(key) identity.
func LinksName(key string) Names {
	return Names{Kind: KindLinks, LinksKey: key}
}

// WideName builds a Wide(package, req, parent, parentCompat) identity.
func WideName(pkg, req, parent string, parentCompat SemverCompatibility) Names {
	return Names{Kind: KindWide, Package: pkg, Req: req, Parent: parent, ParentCompat: parentCompat}
}

// WithFeatures derives the *Features variant of n requiring label (of kind
// labelKind) be active. Valid on Bucket and Wide only.
func (n Names) WithFeatures(labelKind LabelKind, label string) (Names, error) {
	switch n.Kind {
	case KindBucket:
		return Names{Kind: KindBucketFeatures, Package: n.Package, Compat: n.Compat, LabelKind: labelKind, Label: label}, nil
	case KindWide:
		return Names{
			Kind: KindWideFeatures, Package: n.Package, Req: n.Req, Parent: n.Parent, ParentCompat: n.ParentCompat,
			LabelKind: labelKind, Label: label,
		}, nil
	default:
		return Names{}, fmt.Errorf("WithFeatures: %s has no feature-shard derivation", n.Kind)
	}
}

// WithDefaultFeatures derives the *DefaultFeatures variant of n. Valid on
// Bucket and Wide only.
func (n Names) WithDefaultFeatures() (Names, error) {
	switch n.Kind {
	case KindBucket:
		return Names{Kind: KindBucketDefaultFeatures, Package: n.Package, Compat: n.Compat}, nil
	case KindWide:
		return Names{Kind: KindWideDefaultFeatures, Package: n.Package, Req: n.Req, Parent: n.Parent, ParentCompat: n.ParentCompat}, nil
	default:
		return Names{}, fmt.Errorf("WithDefaultFeatures: %s has no default-features derivation", n.Kind)
	}
}

// AsBucket returns the anchoring Bucket(package, compat, false) for any
// *Features/*DefaultFeatures variant of a Bucket-rooted shard.
func (n Names) AsBucket() (Names, bool) {
	switch n.Kind {
	case KindBucketFeatures, KindBucketDefaultFeatures:
		return Names{Kind: KindBucket, Package: n.Package, Compat: n.Compat, IsRoot: false}, true
	default:
		return Names{}, false
	}
}

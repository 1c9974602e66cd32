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

	"github.com/Masterminds/semver/v3"

	pubgrub "github.com/contriboss/crates-resolve"
)

// CargoVersion is the concrete pubgrub.Version used throughout this package.
// It wraps Masterminds/semver/v3, which owns parsing, comparison, and the
// major/minor/patch accessors compatibility-class computation depends on.
type CargoVersion struct {
	v *semver.Version
}

var _ pubgrub.Version = (*CargoVersion)(nil)

// ParseCargoVersion parses a concrete version string.
func ParseCargoVersion(s string) (*CargoVersion, error) {
	v, err := semver.NewVersion(s)
	if err != nil {
		return nil, fmt.Errorf("parsing version %q: %w", s, err)
	}
	return &CargoVersion{v: v}, nil
}

// MustCargoVersion is ParseCargoVersion, panicking on error. Intended for
// tests and compile-time literals.
func MustCargoVersion(s string) *CargoVersion {
	v, err := ParseCargoVersion(s)
	if err != nil {
		panic(err)
	}
	return v
}

func newCargoVersion(major, minor, patch uint64) *CargoVersion {
	return &CargoVersion{v: semver.New(major, minor, patch, "", "")}
}

func (c *CargoVersion) String() string {
	if c == nil {
		return "?"
	}
	return c.v.String()
}

// Sort implements pubgrub.Version.
func (c *CargoVersion) Sort(other pubgrub.Version) int {
	o, ok := other.(*CargoVersion)
	if !ok {
		return strings.Compare(c.String(), other.String())
	}
	return c.v.Compare(o.v)
}

func (c *CargoVersion) semVer() *semver.Version { return c.v }

// CompatKind identifies which component of a version anchors its SemVer
// compatibility class, per Cargo's caret-compatibility rule.
type CompatKind int

const (
	CompatMajor CompatKind = iota
	CompatMinor
	CompatPatch
)

// SemverCompatibility is the canonical representative of a SemVer
// compatibility class: versions sharing a class are "caret compatible"
// with each other.
type SemverCompatibility struct {
	Kind  CompatKind
	Major uint64
	Minor uint64
	Patch uint64
}

// CompatibilityOf computes the compatibility class of a version using
// Cargo's rule: Major(x) for x>=1, else Minor(y) for 0.y>0, else Patch(z).
func CompatibilityOf(v *CargoVersion) SemverCompatibility {
	sv := v.semVer()
	if sv.Major() > 0 {
		return SemverCompatibility{Kind: CompatMajor, Major: sv.Major()}
	}
	if sv.Minor() > 0 {
		return SemverCompatibility{Kind: CompatMinor, Minor: sv.Minor()}
	}
	return SemverCompatibility{Kind: CompatPatch, Patch: sv.Patch()}
}

// Canonical returns the placeholder version representing this compatibility
// class (e.g. Major(1) -> 1.0.0).
func (c SemverCompatibility) Canonical() *CargoVersion {
	switch c.Kind {
	case CompatMajor:
		return newCargoVersion(c.Major, 0, 0)
	case CompatMinor:
		return newCargoVersion(0, c.Minor, 0)
	default:
		return newCargoVersion(0, 0, c.Patch)
	}
}

// String renders a compact, stable identifier used inside encoded Names.
func (c SemverCompatibility) String() string {
	switch c.Kind {
	case CompatMajor:
		return strconv.FormatUint(c.Major, 10)
	case CompatMinor:
		return "0." + strconv.FormatUint(c.Minor, 10)
	default:
		return "0.0." + strconv.FormatUint(c.Patch, 10)
	}
}

// Contains reports whether v belongs to this compatibility class.
func (c SemverCompatibility) Contains(v *CargoVersion) bool {
	return CompatibilityOf(v) == c
}

// rangeForCompatibility returns the half-open version range spanning an
// entire compatibility class, as lower-inclusive/upper-exclusive bounds.
func (c SemverCompatibility) rangeForCompatibility() pubgrub.VersionSet {
	lower := c.Canonical()
	var upper *CargoVersion
	switch c.Kind {
	case CompatMajor:
		upper = newCargoVersion(c.Major+1, 0, 0)
	case CompatMinor:
		upper = newCargoVersion(0, c.Minor+1, 0)
	default:
		upper = newCargoVersion(0, 0, c.Patch+1)
	}
	return pubgrub.NewVersionRangeSet(lower, true, upper, false)
}

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
	"strings"

	pubgrub "github.com/contriboss/crates-resolve"
)

// Requirement is a parsed Cargo-style version requirement: the raw text, the
// version set it denotes, and — when the syntax unambiguously names a single
// SemVer compatibility class — that class, for from_dep's fast path.
type Requirement struct {
	Raw           string
	Set           pubgrub.VersionSet
	impliedCompat *SemverCompatibility
}

// Matches reports whether v satisfies the requirement.
func (r *Requirement) Matches(v *CargoVersion) bool {
	return r.Set.Contains(v)
}

// OnlyOneCompatibilityRange returns the single compatibility class this
// requirement is syntactically restricted to, if any. Caret (`^`), tilde
// (`~`), and exact (`=`) requirements always name one class; comma-chained
// or bare comparator requirements may span several and report false here —
// callers fall back to scanning the index (see from_dep).
func (r *Requirement) OnlyOneCompatibilityRange() (SemverCompatibility, bool) {
	if r.impliedCompat == nil {
		return SemverCompatibility{}, false
	}
	return *r.impliedCompat, true
}

// ParseCargoRequirement parses a Cargo-style requirement string: "*",
// "1.2.3" (implicit caret), "^1.2.3", "~1.2.3", or a comma-separated
// (AND) / "||"-separated (OR) list of comparator expressions
// (">=", ">", "<=", "<", "=", "==").
func ParseCargoRequirement(s string) (*Requirement, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "*" {
		return &Requirement{Raw: s, Set: pubgrub.FullVersionSet()}, nil
	}

	orParts := strings.Split(s, "||")
	result := pubgrub.EmptyVersionSet()
	var single *SemverCompatibility

	for _, orPart := range orParts {
		orPart = strings.TrimSpace(orPart)
		if orPart == "" {
			return nil, fmt.Errorf("invalid empty requirement in %q", s)
		}

		andParts := strings.Split(orPart, ",")
		current := pubgrub.FullVersionSet()
		var partCompat *SemverCompatibility

		for _, andPart := range andParts {
			token := strings.TrimSpace(andPart)
			if token == "" {
				return nil, fmt.Errorf("invalid empty constraint in %q", orPart)
			}

			set, compat, err := parseRequirementToken(token)
			if err != nil {
				return nil, err
			}
			current = current.Intersection(set)
			if len(andParts) == 1 {
				partCompat = compat
			}
		}

		result = result.Union(current)
		if len(orParts) == 1 {
			single = partCompat
		} else {
			single = nil
		}
	}

	return &Requirement{Raw: s, Set: result, impliedCompat: single}, nil
}

func parseRequirementToken(token string) (pubgrub.VersionSet, *SemverCompatibility, error) {
	switch {
	case strings.HasPrefix(token, "^"):
		v, err := ParseCargoVersion(strings.TrimSpace(token[1:]))
		if err != nil {
			return nil, nil, err
		}
		return caretRange(v), compatPtr(CompatibilityOf(v)), nil
	case strings.HasPrefix(token, "~"):
		v, err := ParseCargoVersion(strings.TrimSpace(token[1:]))
		if err != nil {
			return nil, nil, err
		}
		return tildeRange(v), compatPtr(CompatibilityOf(v)), nil
	case strings.HasPrefix(token, ">="):
		v, err := ParseCargoVersion(strings.TrimSpace(token[2:]))
		if err != nil {
			return nil, nil, err
		}
		return pubgrub.NewLowerBoundVersionSet(v, true), nil, nil
	case strings.HasPrefix(token, ">"):
		v, err := ParseCargoVersion(strings.TrimSpace(token[1:]))
		if err != nil {
			return nil, nil, err
		}
		return pubgrub.NewLowerBoundVersionSet(v, false), nil, nil
	case strings.HasPrefix(token, "<="):
		v, err := ParseCargoVersion(strings.TrimSpace(token[2:]))
		if err != nil {
			return nil, nil, err
		}
		return pubgrub.NewUpperBoundVersionSet(v, true), nil, nil
	case strings.HasPrefix(token, "<"):
		v, err := ParseCargoVersion(strings.TrimSpace(token[1:]))
		if err != nil {
			return nil, nil, err
		}
		return pubgrub.NewUpperBoundVersionSet(v, false), nil, nil
	case strings.HasPrefix(token, "=="):
		v, err := ParseCargoVersion(strings.TrimSpace(token[2:]))
		if err != nil {
			return nil, nil, err
		}
		return pubgrub.NewVersionRangeSet(v, true, v, true), compatPtr(CompatibilityOf(v)), nil
	case strings.HasPrefix(token, "="):
		v, err := ParseCargoVersion(strings.TrimSpace(token[1:]))
		if err != nil {
			return nil, nil, err
		}
		return pubgrub.NewVersionRangeSet(v, true, v, true), compatPtr(CompatibilityOf(v)), nil
	default:
		// Bare version implies caret, matching Cargo's default requirement operator.
		v, err := ParseCargoVersion(token)
		if err != nil {
			return nil, nil, err
		}
		return caretRange(v), compatPtr(CompatibilityOf(v)), nil
	}
}

func compatPtr(c SemverCompatibility) *SemverCompatibility { return &c }

// caretRange implements Cargo's caret-compatibility rule:
//
//	^1.2.3 := >=1.2.3, <2.0.0
//	^0.2.3 := >=0.2.3, <0.3.0
//	^0.0.3 := >=0.0.3, <0.0.4
func caretRange(v *CargoVersion) pubgrub.VersionSet {
	c := CompatibilityOf(v)
	var upper *CargoVersion
	switch c.Kind {
	case CompatMajor:
		upper = newCargoVersion(c.Major+1, 0, 0)
	case CompatMinor:
		upper = newCargoVersion(0, c.Minor+1, 0)
	default:
		upper = newCargoVersion(0, 0, c.Patch+1)
	}
	return pubgrub.NewVersionRangeSet(v, true, upper, false)
}

// tildeRange implements Cargo's tilde requirement: pin major.minor, allow
// patch to float: ~1.2.3 := >=1.2.3, <1.3.0; ~1.2 := >=1.2.0, <1.3.0.
func tildeRange(v *CargoVersion) pubgrub.VersionSet {
	upper := newCargoVersion(v.semVer().Major(), v.semVer().Minor()+1, 0)
	return pubgrub.NewVersionRangeSet(v, true, upper, false)
}

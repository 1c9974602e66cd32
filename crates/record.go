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

import "strings"

// DependencyKind classifies when a dependency edge applies.
type DependencyKind int

const (
	Normal DependencyKind = iota
	Build
	Dev
)

// Dependency is one edge from a VersionRecord to another package, as
// declared by the manifest: an alias the parent refers to it by, the real
// package it resolves to, and its activation rules.
type Dependency struct {
	Name            string // alias inside the parent; what feature syntax references
	PackageName     string // real package name
	Req             *Requirement
	Kind            DependencyKind
	Optional        bool
	DefaultFeatures bool
	Features        []string
}

// VersionRecord is one immutable (package, version) entry from the index.
type VersionRecord struct {
	Name     string
	Version  *CargoVersion
	Yanked   bool
	Links    string // "" means no links key
	Features map[string][]string
	Deps     []Dependency
}

// DepsByAlias returns every Dependency record declared under the given
// alias, in declaration order. A manifest may declare the same alias
// multiple times (e.g. per-target-platform variants).
func (r *VersionRecord) DepsByAlias(alias string) []Dependency {
	var out []Dependency
	for _, d := range r.Deps {
		if d.Name == alias {
			out = append(out, d)
		}
	}
	return out
}

// FeatureExprKind classifies one entry in a feature's expression list.
type FeatureExprKind int

const (
	ExprBare FeatureExprKind = iota
	ExprDepMarker
	ExprSlash
)

// FeatureExpr is one parsed entry from a VersionRecord.Features list: a bare
// feature name, an explicit "dep:D" optional-dependency marker, or a
// "D/F"/"D?/F" strong/weak activation.
type FeatureExpr struct {
	Kind FeatureExprKind
	Dep  string // alias, for ExprDepMarker and ExprSlash
	Feat string // target feature, for ExprBare and ExprSlash
	Weak bool   // ExprSlash only: true for "D?/F"
}

// ParseFeatureExpr classifies a single feature-expression string.
func ParseFeatureExpr(e string) FeatureExpr {
	if strings.HasPrefix(e, "dep:") {
		return FeatureExpr{Kind: ExprDepMarker, Dep: strings.TrimPrefix(e, "dep:")}
	}
	if idx := strings.Index(e, "/"); idx >= 0 {
		dep := e[:idx]
		weak := strings.HasSuffix(dep, "?")
		if weak {
			dep = strings.TrimSuffix(dep, "?")
		}
		return FeatureExpr{Kind: ExprSlash, Dep: dep, Feat: e[idx+1:], Weak: weak}
	}
	return FeatureExpr{Kind: ExprBare, Feat: e}
}

// AsNamespace interprets a bare or dep-marker expression as a (LabelKind,
// label) pair for FeatureNamespace::from-style resolution. Not meaningful
// for ExprSlash, which callers handle directly (it names a dependency AND a
// feature on that dependency, not a single namespace label).
func (e FeatureExpr) AsNamespace() (LabelKind, string) {
	if e.Kind == ExprDepMarker {
		return LabelDep, e.Dep
	}
	return LabelFeat, e.Feat
}

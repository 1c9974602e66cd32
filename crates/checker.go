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

	pubgrub "github.com/contriboss/crates-resolve"
)

// bucketView accumulates the per-package state the checker and cycle
// detector both need: the selected version, and which features/optional
// dependencies are active on it.
type bucketView struct {
	Package        string
	Compat         SemverCompatibility
	Version        *CargoVersion
	Feat           map[string]bool
	Dep            map[string]bool
	DefaultFeature bool
	IsRoot         bool
}

// bucketKey identifies one selected bucket by (package, compatibility
// class). A single real package can legitimately be selected at two
// different compatibility classes in the same solution (two dependents
// requiring, say, B^1 and B^2), so the package name alone is not a unique
// key — only the pair is.
type bucketKey struct {
	Package string
	Compat  SemverCompatibility
}

// bucketsForPackage returns every selected bucket for pkg, across however
// many compatibility classes it was selected at.
func bucketsForPackage(buckets map[bucketKey]*bucketView, pkg string) []*bucketView {
	var out []*bucketView
	for key, b := range buckets {
		if key.Package == pkg {
			out = append(out, b)
		}
	}
	return out
}

// buildBucketViews walks sol's Bucket/BucketFeatures/BucketDefaultFeatures
// entries into one bucketView per selected (package, compat) pair,
// reporting the first invariant violation it finds (duplicate bucket at
// the same compat class, or a feature/default-features shard with no
// matching bucket).
func buildBucketViews(sol pubgrub.Solution) (map[bucketKey]*bucketView, string) {
	buckets := make(map[bucketKey]*bucketView)

	for _, nv := range sol {
		names, err := DecodeName(nv.Name)
		if err != nil || names.Kind != KindBucket {
			continue
		}
		cv, ok := nv.Version.(*CargoVersion)
		if !ok {
			return nil, fmt.Sprintf("bucket %s: version is not a CargoVersion", names.Package)
		}
		if CompatibilityOf(cv) != names.Compat {
			return nil, fmt.Sprintf("bucket %s: version %s is not in compatibility class %s", names.Package, cv, names.Compat)
		}
		key := bucketKey{Package: names.Package, Compat: names.Compat}
		if existing, ok := buckets[key]; ok {
			if existing.Version.String() != cv.String() {
				return nil, fmt.Sprintf("duplicate or mismatched bucket selection for %s", names.Package)
			}
			continue
		}
		buckets[key] = &bucketView{
			Package: names.Package, Compat: names.Compat, Version: cv, IsRoot: names.IsRoot,
			Feat: make(map[string]bool), Dep: make(map[string]bool),
		}
	}

	for _, nv := range sol {
		names, err := DecodeName(nv.Name)
		if err != nil {
			continue
		}
		switch names.Kind {
		case KindBucketFeatures:
			b, ok := buckets[bucketKey{Package: names.Package, Compat: names.Compat}]
			if !ok {
				return nil, fmt.Sprintf("feature shard for %s has no matching bucket", names.Package)
			}
			set := b.Feat
			if names.LabelKind == LabelDep {
				set = b.Dep
			}
			if set[names.Label] {
				return nil, fmt.Sprintf("duplicate feature activation %s on %s", names.Label, names.Package)
			}
			set[names.Label] = true
		case KindBucketDefaultFeatures:
			b, ok := buckets[bucketKey{Package: names.Package, Compat: names.Compat}]
			if !ok {
				return nil, fmt.Sprintf("default-features shard for %s has no matching bucket", names.Package)
			}
			if b.DefaultFeature {
				return nil, fmt.Sprintf("duplicate default-features activation on %s", names.Package)
			}
			b.DefaultFeature = true
		}
	}

	return buckets, ""
}

// Check validates a candidate solution map against every invariant the
// encoder relies on: every dependency constraint the solution claims to
// satisfy actually holds, and every selected bucket is a real, unyanked,
// links-collision-free version. root is the Names of the driver's entry
// bucket. ok is false with a human-readable reason for any ordinary
// violation (which the solver should never produce, but which the checker
// exists to catch); err is reserved for inputs the checker itself cannot
// make sense of (decoding failures, missing records) — InternalInconsistency
// territory.
func (idx *Index) Check(sol pubgrub.Solution, root Names) (ok bool, reason string, err error) {
	if _, found := sol.GetVersion(root.ToName()); !found {
		return false, "root package missing from solution", nil
	}

	for _, nv := range sol {
		names, derr := DecodeName(nv.Name)
		if derr != nil {
			return false, "", derr
		}
		cv, okv := nv.Version.(*CargoVersion)
		if !okv {
			return false, "", &InternalInconsistencyError{Package: nv.Name, Reason: "version is not a CargoVersion"}
		}
		constraints, unavailable, eerr := idx.encodeDependencies(names, cv)
		if eerr != nil {
			return false, "", eerr
		}
		if unavailable != "" {
			return false, fmt.Sprintf("%s %s: %s", names, cv, unavailable), nil
		}
		for child, rangeSet := range constraints {
			childVersion, found := sol.GetVersion(child.ToName())
			if !found {
				return false, fmt.Sprintf("%s %s requires %s, not in solution", names, cv, child), nil
			}
			if !rangeSet.Contains(childVersion) {
				return false, fmt.Sprintf("%s %s requires %s outside %s", names, cv, child, rangeSet), nil
			}
		}
	}

	buckets, reason := buildBucketViews(sol)
	if reason != "" {
		return false, reason, nil
	}

	links := make(map[string]string) // links key -> package that claimed it
	for _, b := range buckets {
		pkg := b.Package
		rec, found := idx.record(pkg, b.Version)
		if !found {
			return false, "", &InternalInconsistencyError{Package: pubgrub.MakeName(pkg), Version: b.Version, Reason: "no such package version"}
		}
		if rec.Yanked {
			return false, fmt.Sprintf("%s %s is yanked", pkg, b.Version), nil
		}
		if rec.Links != "" {
			if claimedBy, seen := links[rec.Links]; seen {
				return false, fmt.Sprintf("links key %q claimed by both %s and %s", rec.Links, claimedBy, pkg), nil
			}
			links[rec.Links] = pkg
		}

		if b.DefaultFeature {
			_, declared := rec.Features["default"]
			if declared != b.Feat["default"] {
				return false, fmt.Sprintf("%s: default-feature activation disagrees with record", pkg), nil
			}
		}

		for _, dep := range rec.Deps {
			if dep.Kind == Dev {
				continue
			}
			if dep.Optional && !b.Dep[dep.Name] {
				continue
			}
			if _, shadowed := rec.Features[dep.Name]; shadowed {
				continue
			}
			if !anySatisfies(buckets, dep) {
				return false, fmt.Sprintf("%s %s: no selected bucket satisfies dependency %s", pkg, b.Version, dep.PackageName), nil
			}
		}
	}

	return true, "", nil
}

// anySatisfies reports whether some selected bucket of dep.PackageName (at
// any compatibility class) satisfies dep: the requirement matches its
// version, every listed feature is active on it, and default-features is
// active if requested.
func anySatisfies(buckets map[bucketKey]*bucketView, dep Dependency) bool {
	for _, b := range bucketsForPackage(buckets, dep.PackageName) {
		if bucketSatisfies(b, dep) {
			return true
		}
	}
	return false
}

func bucketSatisfies(b *bucketView, dep Dependency) bool {
	if !dep.Req.Matches(b.Version) {
		return false
	}
	if dep.DefaultFeatures && !b.DefaultFeature {
		return false
	}
	for _, f := range dep.Features {
		_, label := ParseFeatureExpr(f).AsNamespace()
		if !b.Feat[label] && !b.Dep[label] {
			return false
		}
	}
	return true
}

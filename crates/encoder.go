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

// encodeDependencies is get_dependencies: it turns one (virtual package,
// version) pair into the set of constraints the solver must additionally
// satisfy. A non-empty unavailable string means the pair cannot be selected
// at all (yanked, missing feature, missing optional dependency) — distinct
// from an internal inconsistency, which is an error.
func (idx *Index) encodeDependencies(names Names, version *CargoVersion) (DependencyConstraints, string, error) {
	switch names.Kind {
	case KindBucket:
		return idx.encodeBucket(names, version)
	case KindBucketFeatures:
		if names.LabelKind == LabelDep {
			return idx.encodeBucketFeaturesDep(names, version)
		}
		return idx.encodeBucketFeaturesFeat(names, version)
	case KindBucketDefaultFeatures:
		return idx.encodeBucketDefaultFeatures(names, version)
	case KindWide:
		return idx.encodeWide(names, version)
	case KindWideFeatures:
		return idx.encodeWideFeatures(names, version)
	case KindWideDefaultFeatures:
		return idx.encodeWideDefaultFeatures(names, version)
	case KindLinks:
		return newConstraints(), "", nil
	default:
		return nil, "", &InternalInconsistencyError{Package: names.ToName(), Version: version, Reason: "unknown name kind"}
	}
}

// encodeBucket is the real package: all of its normal and build (and, if
// allFeatures — i.e. the root package — dev/optional) dependency edges, its links
// constraint if any, and (for the root only) a synthetic walk of every
// feature's D/F and D?/F expressions so optional dependencies they require
// get pulled in even though the root itself has no *Features shard pulling
// them.
func (idx *Index) encodeBucket(names Names, version *CargoVersion) (DependencyConstraints, string, error) {
	rec, ok := idx.record(names.Package, version)
	if !ok {
		return nil, "", &InternalInconsistencyError{Package: names.ToName(), Version: version, Reason: "no such package version"}
	}
	if rec.Yanked {
		return nil, "yanked", nil
	}
	idx.markReal(names.Package, version)

	out := newConstraints()
	allFeatures := names.IsRoot

	if rec.Links != "" {
		hash := linksHash(names.Encode(), version)
		out.insertSingleton(LinksName(rec.Links), linksVersion(hash))
	}

	for _, dep := range rec.Deps {
		if dep.Kind == Dev && !allFeatures {
			continue
		}
		if dep.Optional && !allFeatures {
			continue
		}
		idx.insertDepEdge(out, dep, names.Package, names.Compat)
	}

	if allFeatures {
		for _, exprs := range rec.Features {
			for _, e := range exprs {
				fe := ParseFeatureExpr(e)
				if fe.Kind != ExprSlash {
					continue
				}
				for _, dep := range rec.DepsByAlias(fe.Dep) {
					child, r := idx.fromDep(dep, names.Package, names.Compat)
					childFeat, err := child.WithFeatures(LabelFeat, fe.Feat)
					if err != nil {
						return nil, "", &InternalInconsistencyError{Package: names.ToName(), Version: version, Reason: err.Error()}
					}
					out.insert(childFeat, r)
				}
			}
		}
	}

	return out, "", nil
}

// insertDepEdge inserts the constraint edge for one manifest dependency, plus
// its default-features and additional-features shards.
func (idx *Index) insertDepEdge(out DependencyConstraints, dep Dependency, parentPkg string, parentCompat SemverCompatibility) {
	child, r := idx.fromDep(dep, parentPkg, parentCompat)
	out.insert(child, r)

	if dep.DefaultFeatures {
		if withDefault, err := child.WithDefaultFeatures(); err == nil {
			out.insert(withDefault, r)
		}
	}
	for _, f := range dep.Features {
		labelKind, label := ParseFeatureExpr(f).AsNamespace()
		if withFeat, err := child.WithFeatures(labelKind, label); err == nil {
			out.insert(withFeat, r)
		}
	}
}

// encodeBucketFeaturesFeat is BucketFeatures(name, compat, Feat(feat)): it
// anchors the bucket (pins this exact version) and then, for each expression
// in feat's definition, either activates a sibling shard on the same bucket
// (bare or "dep:D" expressions) or a feature shard on a child package
// ("D/F"/"D?/F" expressions). Strong ("D/F") syntax additionally activates D
// as an optional dependency, and this package's own feature named D if one
// exists and D is not the feature being expanded;
// weak ("D?/F") syntax activates neither — it only takes effect if D ends up
// enabled some other way.
func (idx *Index) encodeBucketFeaturesFeat(names Names, version *CargoVersion) (DependencyConstraints, string, error) {
	rec, ok := idx.record(names.Package, version)
	if !ok {
		return nil, "", &InternalInconsistencyError{Package: names.ToName(), Version: version, Reason: "no such package version"}
	}
	if rec.Yanked {
		return nil, "yanked", nil
	}

	anchor, ok := names.AsBucket()
	if !ok {
		return nil, "", &InternalInconsistencyError{Package: names.ToName(), Version: version, Reason: "not bucket-rooted"}
	}

	out := newConstraints()
	out.insertSingleton(anchor, version)

	exprs, found := rec.Features[names.Label]
	if !found {
		return nil, "no such feature", nil
	}

	for _, e := range exprs {
		fe := ParseFeatureExpr(e)
		if fe.Kind != ExprSlash {
			labelKind, label := fe.AsNamespace()
			shard, err := anchor.WithFeatures(labelKind, label)
			if err != nil {
				return nil, "", &InternalInconsistencyError{Package: names.ToName(), Version: version, Reason: err.Error()}
			}
			out.insertSingleton(shard, version)
			continue
		}

		for _, dep := range rec.DepsByAlias(fe.Dep) {
			if dep.Kind == Dev {
				continue
			}
			child, r := idx.fromDep(dep, names.Package, names.Compat)

			if dep.Optional && !fe.Weak {
				depShard, err := anchor.WithFeatures(LabelDep, fe.Dep)
				if err != nil {
					return nil, "", &InternalInconsistencyError{Package: names.ToName(), Version: version, Reason: err.Error()}
				}
				out.insertSingleton(depShard, version)

				if fe.Dep != names.Label {
					if _, hasFeature := rec.Features[fe.Dep]; hasFeature {
						featShard, err := anchor.WithFeatures(LabelFeat, fe.Dep)
						if err != nil {
							return nil, "", &InternalInconsistencyError{Package: names.ToName(), Version: version, Reason: err.Error()}
						}
						out.insertSingleton(featShard, version)
					}
				}
			}

			childFeat, err := child.WithFeatures(LabelFeat, fe.Feat)
			if err != nil {
				return nil, "", &InternalInconsistencyError{Package: names.ToName(), Version: version, Reason: err.Error()}
			}
			out.insert(childFeat, r)
		}
	}

	return out, "", nil
}

// encodeBucketFeaturesDep is BucketFeatures(name, compat, Dep(dep)): it
// activates the optional dependency dep (which must exist, non-dev, as an
// optional edge) with its own default-features and additional-features
// shards, same as a normal dependency edge would get when the bucket itself
// is selected with all_features set.
func (idx *Index) encodeBucketFeaturesDep(names Names, version *CargoVersion) (DependencyConstraints, string, error) {
	rec, ok := idx.record(names.Package, version)
	if !ok {
		return nil, "", &InternalInconsistencyError{Package: names.ToName(), Version: version, Reason: "no such package version"}
	}
	if rec.Yanked {
		return nil, "yanked", nil
	}

	anchor, ok := names.AsBucket()
	if !ok {
		return nil, "", &InternalInconsistencyError{Package: names.ToName(), Version: version, Reason: "not bucket-rooted"}
	}

	out := newConstraints()
	out.insertSingleton(anchor, version)

	found := false
	for _, dep := range rec.DepsByAlias(names.Label) {
		if dep.Kind == Dev || !dep.Optional {
			continue
		}
		found = true
		idx.insertDepEdge(out, dep, names.Package, names.Compat)
	}
	if !found {
		return nil, "no such optional dependency", nil
	}

	return out, "", nil
}

// encodeBucketDefaultFeatures is BucketDefaultFeatures(name, compat): it
// anchors the bucket and, if the package declares a "default" feature,
// activates it.
func (idx *Index) encodeBucketDefaultFeatures(names Names, version *CargoVersion) (DependencyConstraints, string, error) {
	rec, ok := idx.record(names.Package, version)
	if !ok {
		return nil, "", &InternalInconsistencyError{Package: names.ToName(), Version: version, Reason: "no such package version"}
	}
	if rec.Yanked {
		return nil, "yanked", nil
	}

	anchor, ok := names.AsBucket()
	if !ok {
		return nil, "", &InternalInconsistencyError{Package: names.ToName(), Version: version, Reason: "not bucket-rooted"}
	}

	out := newConstraints()
	out.insertSingleton(anchor, version)

	if _, hasDefault := rec.Features["default"]; hasDefault {
		shard, err := anchor.WithFeatures(LabelFeat, "default")
		if err != nil {
			return nil, "", &InternalInconsistencyError{Package: names.ToName(), Version: version, Reason: err.Error()}
		}
		out.insertSingleton(shard, version)
	}

	return out, "", nil
}

// encodeWide is Wide(name, req, parent, parentCompat): it projects the
// version picked for this wide node onto the Bucket of that version's own
// compatibility class, intersected with the requirement that named this
// Wide node in the first place.
func (idx *Index) encodeWide(names Names, version *CargoVersion) (DependencyConstraints, string, error) {
	req, err := ParseCargoRequirement(names.Req)
	if err != nil {
		return nil, "", &InternalInconsistencyError{Package: names.ToName(), Version: version, Reason: err.Error()}
	}
	compat := CompatibilityOf(version)

	out := newConstraints()
	out.insert(BucketName(names.Package, compat, false), req.Set.Intersection(compat.rangeForCompatibility()))
	return out, "", nil
}

// encodeWideFeatures is WideFeatures(name, req, parent, parentCompat,
// label): it pins this wide node to the chosen version and forwards onto the
// BucketFeatures shard of that version's compatibility class.
func (idx *Index) encodeWideFeatures(names Names, version *CargoVersion) (DependencyConstraints, string, error) {
	req, err := ParseCargoRequirement(names.Req)
	if err != nil {
		return nil, "", &InternalInconsistencyError{Package: names.ToName(), Version: version, Reason: err.Error()}
	}
	compat := CompatibilityOf(version)
	r := req.Set.Intersection(compat.rangeForCompatibility())

	out := newConstraints()
	out.insertSingleton(names, version)

	bucketFeat, ferr := BucketName(names.Package, compat, false).WithFeatures(names.LabelKind, names.Label)
	if ferr != nil {
		return nil, "", &InternalInconsistencyError{Package: names.ToName(), Version: version, Reason: ferr.Error()}
	}
	out.insert(bucketFeat, r)
	return out, "", nil
}

// encodeWideDefaultFeatures mirrors encodeWideFeatures for the
// default-features shard.
func (idx *Index) encodeWideDefaultFeatures(names Names, version *CargoVersion) (DependencyConstraints, string, error) {
	req, err := ParseCargoRequirement(names.Req)
	if err != nil {
		return nil, "", &InternalInconsistencyError{Package: names.ToName(), Version: version, Reason: err.Error()}
	}
	compat := CompatibilityOf(version)
	r := req.Set.Intersection(compat.rangeForCompatibility())

	out := newConstraints()
	out.insertSingleton(names, version)

	bucketDefault, derr := BucketName(names.Package, compat, false).WithDefaultFeatures()
	if derr != nil {
		return nil, "", &InternalInconsistencyError{Package: names.ToName(), Version: version, Reason: derr.Error()}
	}
	out.insert(bucketDefault, r)
	return out, "", nil
}

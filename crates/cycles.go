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

import pubgrub "github.com/contriboss/crates-resolve"

// HasCycle reports whether sol's runtime dependency graph (non-Dev edges
// only) contains a cycle, DFS'ing from root. Optional deps not active in
// their parent's Dep set are skipped, except under root — root's bucket
// carries all_features, so every optional edge is live from it.
func (idx *Index) HasCycle(sol pubgrub.Solution, root Names) (bool, error) {
	buckets, reason := buildBucketViews(sol)
	if reason != "" {
		return false, &InternalInconsistencyError{Package: root.ToName(), Reason: reason}
	}

	onStack := make(map[bucketKey]bool)
	visited := make(map[bucketKey]bool)

	var visit func(key bucketKey) (bool, error)
	visit = func(key bucketKey) (bool, error) {
		if onStack[key] {
			return true, nil
		}
		if visited[key] {
			return false, nil
		}
		b, ok := buckets[key]
		if !ok {
			return false, &InternalInconsistencyError{Package: pubgrub.MakeName(key.Package), Reason: "bucket not selected"}
		}
		rec, found := idx.record(key.Package, b.Version)
		if !found {
			return false, &InternalInconsistencyError{Package: pubgrub.MakeName(key.Package), Version: b.Version, Reason: "no such package version"}
		}

		onStack[key] = true
		defer delete(onStack, key)

		for _, dep := range rec.Deps {
			if dep.Kind == Dev {
				continue
			}
			if dep.Optional && !b.Dep[dep.Name] && !b.IsRoot {
				continue
			}
			for _, childBucket := range bucketsForPackage(buckets, dep.PackageName) {
				childKey := bucketKey{Package: childBucket.Package, Compat: childBucket.Compat}
				cyclic, err := visit(childKey)
				if err != nil || cyclic {
					return cyclic, err
				}
			}
		}

		visited[key] = true
		return false, nil
	}

	return visit(bucketKey{Package: root.Package, Compat: root.Compat})
}

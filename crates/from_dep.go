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

// fromDep turns one manifest dependency edge into the virtual package it
// constrains and the range it constrains it to.
//
// When the requirement syntactically names a single compatibility class
// (caret, tilde, or exact), the edge targets that Bucket directly. Otherwise
// the index is scanned: if every matching version still happens to fall in
// one compatibility class the edge still targets that Bucket, but if matches
// span more than one class there is no single Bucket the edge can name, so
// it targets a Wide node instead — parameterized by the requirement text and
// by (parent, parentCompat) so that two different dependents requiring the
// same package via the same text don't collide when their own compatibility
// classes differ.
func (idx *Index) fromDep(dep Dependency, parentPkg string, parentCompat SemverCompatibility) (Names, pubgrub.VersionSet) {
	if compat, ok := dep.Req.OnlyOneCompatibilityRange(); ok {
		return BucketName(dep.PackageName, compat, false), dep.Req.Set
	}

	var single *SemverCompatibility
	consistent := true
	overlay := idx.overlay[dep.PackageName]
	for _, v := range idx.sorted[dep.PackageName] {
		if idx.overlay != nil && !overlay[v.String()] {
			continue
		}
		if !dep.Req.Matches(v) {
			continue
		}
		c := CompatibilityOf(v)
		if single == nil {
			single = &c
		} else if *single != c {
			consistent = false
			break
		}
	}
	if consistent && single != nil {
		return BucketName(dep.PackageName, *single, false), dep.Req.Set
	}

	return WideName(dep.PackageName, dep.Req.Raw, parentPkg, parentCompat), pubgrub.FullVersionSet()
}

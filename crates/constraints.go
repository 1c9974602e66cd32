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

// DependencyConstraints maps virtual packages to the version set the
// current selection requires of them. Inserting the same key twice
// intersects the ranges, so two dependency edges naming the same virtual
// package narrow to their common ground rather than one silently replacing
// the other.
type DependencyConstraints map[Names]pubgrub.VersionSet

func newConstraints() DependencyConstraints {
	return make(DependencyConstraints)
}

func (c DependencyConstraints) insert(n Names, set pubgrub.VersionSet) {
	if existing, ok := c[n]; ok {
		c[n] = existing.Intersection(set)
		return
	}
	c[n] = set
}

func (c DependencyConstraints) insertSingleton(n Names, version *CargoVersion) {
	c.insert(n, pubgrub.EmptyVersionSet().Singleton(version))
}

// Terms converts the constraint map into the solver's term representation.
func (c DependencyConstraints) Terms() []pubgrub.Term {
	terms := make([]pubgrub.Term, 0, len(c))
	for n, set := range c {
		terms = append(terms, pubgrub.NewTerm(n.ToName(), pubgrub.NewVersionSetCondition(set)))
	}
	return terms
}

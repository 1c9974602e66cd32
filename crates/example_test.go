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

package crates_test

import (
	"fmt"

	"github.com/contriboss/crates-resolve/crates"
)

// ExampleResolve builds a two-package index and resolves the newest version
// of B satisfying A's requirement.
func ExampleResolve() {
	b100 := &crates.VersionRecord{Name: "B", Version: crates.MustCargoVersion("1.0.0")}
	b120 := &crates.VersionRecord{Name: "B", Version: crates.MustCargoVersion("1.2.0")}
	b200 := &crates.VersionRecord{Name: "B", Version: crates.MustCargoVersion("2.0.0")}

	req, _ := crates.ParseCargoRequirement("^1")
	a100 := &crates.VersionRecord{
		Name:    "A",
		Version: crates.MustCargoVersion("1.0.0"),
		Deps: []crates.Dependency{
			{Name: "B", PackageName: "B", Req: req, Kind: crates.Normal, DefaultFeatures: true},
		},
	}

	idx := crates.NewIndex(map[string]map[string]*crates.VersionRecord{
		"A": {"1.0.0": a100},
		"B": {"1.0.0": b100, "1.2.0": b120, "2.0.0": b200},
	})

	out, err := crates.Resolve(idx, "A", crates.MustCargoVersion("1.0.0"), crates.ModePrimary)
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	bBucket := crates.BucketName("B", crates.CompatibilityOf(crates.MustCargoVersion("1.0.0")), false)
	v, _ := out.Solution.GetVersion(bBucket.ToName())
	fmt.Println(v)
	// Output: 1.2.0
}

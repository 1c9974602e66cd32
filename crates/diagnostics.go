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
	"encoding/json"
	"sort"

	pubgrub "github.com/contriboss/crates-resolve"
)

// IndexDumpEntry is one record in the index dump: every (package, version)
// the resolve actually considered a real VersionRecord for.
type IndexDumpEntry struct {
	Package string   `json:"package"`
	Version string   `json:"version"`
	Yanked  bool     `json:"yanked"`
	Links   string   `json:"links,omitempty"`
	Deps    []string `json:"deps,omitempty"`
}

// SolverDumpEntry is one record in the solver dump: every (virtual package,
// version) the solver asked get_dependencies about, and what it got back.
type SolverDumpEntry struct {
	Name    string   `json:"name"`
	Version string   `json:"version"`
	Error   string   `json:"error,omitempty"`
	Deps    []string `json:"deps,omitempty"`
}

// DumpIndexJSON serializes every (package, version) markReal recorded during
// the most recent resolve, sorted by package name and then by version string
// (both compared as plain strings).
func (idx *Index) DumpIndexJSON() ([]byte, error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	var entries []IndexDumpEntry
	packages := make([]string, 0, len(idx.real))
	for pkg := range idx.real {
		packages = append(packages, pkg)
	}
	sort.Strings(packages)

	for _, pkg := range packages {
		versions := make([]string, 0, len(idx.real[pkg]))
		for v := range idx.real[pkg] {
			versions = append(versions, v)
		}
		sort.Strings(versions)

		for _, v := range versions {
			rec, ok := idx.packages[pkg][v]
			if !ok {
				continue
			}
			deps := make([]string, 0, len(rec.Deps))
			for _, d := range rec.Deps {
				deps = append(deps, d.PackageName)
			}
			entries = append(entries, IndexDumpEntry{
				Package: pkg, Version: v, Yanked: rec.Yanked, Links: rec.Links, Deps: deps,
			})
		}
	}

	return json.MarshalIndent(entries, "", "  ")
}

// DumpSolverJSON serializes every (virtual package, version) the solver
// queried get_dependencies about during the most recent resolve.
func (idx *Index) DumpSolverJSON() ([]byte, error) {
	idx.mu.Lock()
	queriedKeys := make([]string, 0, len(idx.queried))
	for key := range idx.queried {
		queriedKeys = append(queriedKeys, key)
	}
	idx.mu.Unlock()
	sort.Strings(queriedKeys)

	var entries []SolverDumpEntry
	for _, key := range queriedKeys {
		idx.mu.Lock()
		versions := make([]string, 0, len(idx.queried[key]))
		for v := range idx.queried[key] {
			versions = append(versions, v)
		}
		idx.mu.Unlock()
		sort.Strings(versions)

		names, err := DecodeName(pubgrub.MakeName(key))
		if err != nil {
			continue
		}
		for _, vs := range versions {
			cv, err := ParseCargoVersion(vs)
			if err != nil {
				continue
			}
			constraints, unavailable, err := idx.encodeDependencies(names, cv)
			entry := SolverDumpEntry{Name: key, Version: vs}
			switch {
			case err != nil:
				entry.Error = err.Error()
			case unavailable != "":
				entry.Error = unavailable
			default:
				deps := make([]string, 0, len(constraints))
				for child := range constraints {
					deps = append(deps, child.String())
				}
				sort.Strings(deps)
				entry.Deps = deps
			}
			entries = append(entries, entry)
		}
	}

	return json.MarshalIndent(entries, "", "  ")
}

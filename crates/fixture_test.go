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

// Small fixture DSL shared by this package's tests: newFixtureIndex builds an
// Index straight from rec()/dep() literals so each scenario test reads close
// to the index it describes.

func newFixtureIndex(pkgs ...[]*VersionRecord) *Index {
	data := make(map[string]map[string]*VersionRecord)
	for _, recs := range pkgs {
		for _, r := range recs {
			if data[r.Name] == nil {
				data[r.Name] = make(map[string]*VersionRecord)
			}
			data[r.Name][r.Version.String()] = r
		}
	}
	return NewIndex(data)
}

func pkg(name string, recs ...*VersionRecord) []*VersionRecord {
	for _, r := range recs {
		r.Name = name
	}
	return recs
}

func rec(version string, opts ...func(*VersionRecord)) *VersionRecord {
	r := &VersionRecord{Version: MustCargoVersion(version), Features: map[string][]string{}}
	for _, o := range opts {
		o(r)
	}
	return r
}

func withDeps(deps ...Dependency) func(*VersionRecord) {
	return func(r *VersionRecord) { r.Deps = append(r.Deps, deps...) }
}

func withFeature(name string, exprs ...string) func(*VersionRecord) {
	return func(r *VersionRecord) { r.Features[name] = exprs }
}

func withLinks(key string) func(*VersionRecord) {
	return func(r *VersionRecord) { r.Links = key }
}

func withYanked() func(*VersionRecord) {
	return func(r *VersionRecord) { r.Yanked = true }
}

func dep(alias, pkgName, req string, opts ...func(*Dependency)) Dependency {
	r, err := ParseCargoRequirement(req)
	if err != nil {
		panic(err)
	}
	d := Dependency{Name: alias, PackageName: pkgName, Req: r, Kind: Normal, DefaultFeatures: true}
	for _, o := range opts {
		o(&d)
	}
	return d
}

func optional() func(*Dependency) {
	return func(d *Dependency) { d.Optional = true }
}

func devDep() func(*Dependency) {
	return func(d *Dependency) { d.Kind = Dev }
}

func noDefaultFeatures() func(*Dependency) {
	return func(d *Dependency) { d.DefaultFeatures = false }
}

func withDepFeatures(features ...string) func(*Dependency) {
	return func(d *Dependency) { d.Features = append(d.Features, features...) }
}

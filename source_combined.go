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

package pubgrub

import (
	"errors"
	"slices"
)

// CombinedSource aggregates multiple package sources into a single source.
// When querying for versions or dependencies, it tries each source in order
// and combines the results.
//
// This is useful for:
//   - Combining local and remote package sources
//   - Implementing package source fallbacks
//   - Testing with mixed source types
//
// Example:
//
//	local := &InMemorySource{}
//	remote := &RegistrySource{}
//	combined := CombinedSource{local, remote}
//	solver := NewSolver(root, combined)
type CombinedSource []Source

// GetVersions queries all sources and returns the combined set of versions
// in sorted order. Sources reporting PackageNotFoundError are skipped; any other
// error from a source is returned immediately. If no source has the package,
// returns PackageNotFoundError.
func (s CombinedSource) GetVersions(name Name) ([]Version, error) {
	var ret []Version
	var sawNotFound bool
	for _, source := range s {
		versions, err := source.GetVersions(name)
		if err != nil {
			var pkgErr *PackageNotFoundError
			if errors.As(err, &pkgErr) {
				sawNotFound = true
				continue
			}
			return nil, err
		}
		ret = append(ret, versions...)
	}

	if len(ret) == 0 {
		if sawNotFound {
			return nil, &PackageNotFoundError{Package: name}
		}
		return nil, &PackageNotFoundError{Package: name}
	}

	// sort the versions
	slices.SortFunc(ret, func(a Version, b Version) int {
		return a.Sort(b)
	})

	return ret, nil
}

// GetDependencies queries sources in order and returns dependencies from the
// first source that has the specified package version.
func (s CombinedSource) GetDependencies(name Name, version Version) ([]Term, error) {
	for _, source := range s {
		deps, err := source.GetDependencies(name, version)
		if err != nil {
			var pkgErr *PackageNotFoundError
			var verErr *PackageVersionNotFoundError
			switch {
			case errors.As(err, &pkgErr):
				continue
			case errors.As(err, &verErr):
				continue
			default:
				return nil, err
			}
		} else {
			return deps, nil
		}
	}

	return nil, &PackageVersionNotFoundError{Package: name, Version: version}
}

// ChooseVersion forwards to the first member source implementing
// VersionChooser, letting a single domain-specific source steer version
// selection even when wrapped for combination with others. If no member
// implements it, falls back to the solver's own newest-first default so
// wrapping a plain Source in CombinedSource never changes its behavior.
func (s CombinedSource) ChooseVersion(name Name, allowed VersionSet) (Version, bool, error) {
	for _, source := range s {
		if chooser, ok := source.(VersionChooser); ok {
			return chooser.ChooseVersion(name, allowed)
		}
	}

	versions, err := s.GetVersions(name)
	if err != nil {
		var pkgErr *PackageNotFoundError
		var verErr *PackageVersionNotFoundError
		if errors.As(err, &pkgErr) || errors.As(err, &verErr) {
			return nil, false, nil
		}
		return nil, false, err
	}
	for i := len(versions) - 1; i >= 0; i-- {
		if allowed.Contains(versions[i]) {
			return versions[i], true, nil
		}
	}
	return nil, false, nil
}

// Prioritize forwards to the first member source implementing Prioritizer.
func (s CombinedSource) Prioritize(name Name, allowed VersionSet, stats PriorityStats) Priority {
	for _, source := range s {
		if prioritizer, ok := source.(Prioritizer); ok {
			return prioritizer.Prioritize(name, allowed, stats)
		}
	}
	return Priority{}
}

// ShouldCancel polls every member source implementing Canceller, returning
// the first error any of them report.
func (s CombinedSource) ShouldCancel() error {
	for _, source := range s {
		if canceller, ok := source.(Canceller); ok {
			if err := canceller.ShouldCancel(); err != nil {
				return err
			}
		}
	}
	return nil
}

var (
	_ Source         = CombinedSource{}
	_ VersionChooser = CombinedSource{}
	_ Prioritizer    = CombinedSource{}
	_ Canceller      = CombinedSource{}
)

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
	"log/slog"
	"sort"
	"sync"

	pubgrub "github.com/contriboss/crates-resolve"
)

// Index is a read-only view over a package → version → VersionRecord
// snapshot. It implements pubgrub.Source so the generic solver can drive a
// resolve directly against it, and additionally implements VersionChooser,
// Prioritizer, and Canceller (see provider.go) to steer that solver per the
// dependency-provider contract.
//
// An Index is not safe for concurrent use by multiple in-flight resolves:
// its overlay and diagnostic accumulators are per-resolver interior-mutable
// state, cleared by Reset at the start of each resolve.
type Index struct {
	packages map[string]map[string]*VersionRecord // package -> version string -> record
	sorted   map[string][]*CargoVersion           // package -> versions, ascending

	logger *slog.Logger
	limits Limits

	mu sync.Mutex

	// overlay restricts visible versions to a prior solution, for
	// lockfile-style re-solves. nil means no overlay is active.
	overlay map[string]map[string]bool // package -> version string -> true

	// diagnostic accumulators, cleared by Reset.
	queried map[string]map[string]bool // virtual package Encode() -> version string -> true
	real    map[string]map[string]bool // real package -> version string -> true

	startedAt     timeSource
	cancelCalls   int
	versionCalls  int
	versionHits   int
	depCalls      int
	depHits       int
}

// NewIndex builds an Index over the given package -> version -> record
// snapshot.
func NewIndex(packages map[string]map[string]*VersionRecord, opts ...IndexOption) *Index {
	idx := &Index{
		packages: packages,
		sorted:   make(map[string][]*CargoVersion, len(packages)),
		limits:   DefaultLimits(),
	}
	for name, versions := range packages {
		list := make([]*CargoVersion, 0, len(versions))
		for _, rec := range versions {
			list = append(list, rec.Version)
		}
		sort.Slice(list, func(i, j int) bool { return list[i].Sort(list[j]) < 0 })
		idx.sorted[name] = list
	}
	for _, opt := range opts {
		opt(idx)
	}
	idx.Reset()
	return idx
}

// IndexOption configures an Index at construction time.
type IndexOption func(*Index)

// WithLogger attaches structured logging to the Index, following the
// solver's own *slog.Logger convention.
func WithLogger(logger *slog.Logger) IndexOption {
	return func(idx *Index) { idx.logger = logger }
}

// WithLimits overrides the default time budget and step limits.
func WithLimits(limits Limits) IndexOption {
	return func(idx *Index) { idx.limits = limits }
}

// Reset clears the overlay and diagnostic accumulators and restarts the
// should_cancel timer. Called once at the start of every resolve.
func (idx *Index) Reset() {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.overlay = nil
	idx.queried = make(map[string]map[string]bool)
	idx.real = make(map[string]map[string]bool)
	idx.startedAt = now()
	idx.cancelCalls = 0
}

// InstallOverlay restricts visible versions of every package to those
// appearing in sol, for a lockfile-style re-solve. Pass nil to clear it.
func (idx *Index) InstallOverlay(sol pubgrub.Solution) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if sol == nil {
		idx.overlay = nil
		return
	}
	overlay := make(map[string]map[string]bool)
	for nv := range sol.All() {
		names, err := DecodeName(nv.Name)
		if err != nil || names.Kind != KindBucket {
			continue
		}
		if overlay[names.Package] == nil {
			overlay[names.Package] = make(map[string]bool)
		}
		overlay[names.Package][nv.Version.String()] = true
	}
	idx.overlay = overlay
}

// record looks up a VersionRecord, honoring the overlay.
func (idx *Index) record(pkg string, v *CargoVersion) (*VersionRecord, bool) {
	versions, ok := idx.packages[pkg]
	if !ok {
		return nil, false
	}
	rec, ok := versions[v.String()]
	if !ok {
		return nil, false
	}
	if idx.overlay != nil {
		allowed, ok := idx.overlay[pkg]
		if !ok || !allowed[v.String()] {
			return nil, false
		}
	}
	return rec, true
}

// versionsDescending returns pkg's versions, newest first, honoring the
// overlay. Used by ChooseVersion, which always wants newest-first iteration.
func (idx *Index) versionsDescending(pkg string) []*CargoVersion {
	idx.mu.Lock()
	idx.versionCalls++
	idx.mu.Unlock()

	all := idx.sorted[pkg]
	out := make([]*CargoVersion, 0, len(all))
	for i := len(all) - 1; i >= 0; i-- {
		v := all[i]
		if idx.overlay != nil {
			allowed, ok := idx.overlay[pkg]
			if !ok || !allowed[v.String()] {
				continue
			}
		}
		out = append(out, v)
	}
	if len(out) > 0 {
		idx.mu.Lock()
		idx.versionHits++
		idx.mu.Unlock()
	}
	return out
}

// markQueried records that the solver asked about (names, version), for the
// solver-dump diagnostic file.
func (idx *Index) markQueried(names Names, version *CargoVersion) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	key := names.Encode()
	if idx.queried[key] == nil {
		idx.queried[key] = make(map[string]bool)
	}
	idx.queried[key][version.String()] = true
}

// markReal records that (package, version) was actually considered, for the
// index-dump diagnostic file — distinct from every virtual package queried.
func (idx *Index) markReal(pkg string, version *CargoVersion) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if idx.real[pkg] == nil {
		idx.real[pkg] = make(map[string]bool)
	}
	idx.real[pkg][version.String()] = true
}

// Stats reports cache-style call/hit counters, mirroring CachedSource's
// query-count instrumentation.
type Stats struct {
	VersionCalls int
	VersionHits  int
	DepCalls     int
	DepHits      int
}

// Stats returns a snapshot of the Index's lookup counters.
func (idx *Index) Stats() Stats {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return Stats{
		VersionCalls: idx.versionCalls,
		VersionHits:  idx.versionHits,
		DepCalls:     idx.depCalls,
		DepHits:      idx.depHits,
	}
}

// GetVersions implements pubgrub.Source. It is ascending, as the interface
// requires; choose_version uses versionsDescending directly instead.
func (idx *Index) GetVersions(name pubgrub.Name) ([]pubgrub.Version, error) {
	names, err := DecodeName(name)
	if err != nil {
		return nil, err
	}
	pkg := names.Package
	if names.Kind == KindLinks {
		return nil, &pubgrub.PackageNotFoundError{Package: name}
	}
	all := idx.sorted[pkg]
	out := make([]pubgrub.Version, 0, len(all))
	for _, v := range all {
		if idx.overlay != nil {
			allowed, ok := idx.overlay[pkg]
			if !ok || !allowed[v.String()] {
				continue
			}
		}
		out = append(out, v)
	}
	return out, nil
}

// GetDependencies implements pubgrub.Source by delegating to the encoder.
func (idx *Index) GetDependencies(name pubgrub.Name, version pubgrub.Version) ([]pubgrub.Term, error) {
	idx.mu.Lock()
	idx.depCalls++
	idx.mu.Unlock()

	names, err := DecodeName(name)
	if err != nil {
		return nil, err
	}
	cv, ok := version.(*CargoVersion)
	if !ok {
		return nil, &pubgrub.VersionError{Package: name, Message: "not a CargoVersion"}
	}

	idx.markQueried(names, cv)

	constraints, unavailable, err := idx.encodeDependencies(names, cv)
	if err != nil {
		return nil, err
	}
	if unavailable != "" {
		return nil, &pubgrub.PackageVersionNotFoundError{Package: name, Version: version}
	}

	idx.mu.Lock()
	idx.depHits++
	idx.mu.Unlock()

	return constraints.Terms(), nil
}

// timeSource is the clock type Index records its resolve start time with. It
// is a plain alias of monotonicInstant; there is no hook to substitute a fake
// clock.
type timeSource = monotonicInstant

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
	"log/slog"

	pubgrub "github.com/contriboss/crates-resolve"
)

// Mode selects which combination of primary/reference solves a resolve
// performs. The core only needs Primary; the others exist so an external
// driver can differentially compare two resolver implementations or re-solve
// locked to a prior result without duplicating this package's plumbing.
type Mode int

const (
	// ModePrimary runs only this package's resolver.
	ModePrimary Mode = iota
	// ModeReference runs only a caller-supplied reference resolver.
	ModeReference
	// ModeAll runs both and cross-checks their output.
	ModeAll
	// ModePrimaryLockedByReference re-solves this package's resolver with
	// the reference resolver's result installed as an overlay.
	ModePrimaryLockedByReference
	// ModeReferenceLockedByPrimary is the mirror image of
	// ModePrimaryLockedByReference.
	ModeReferenceLockedByPrimary
)

func (m Mode) String() string {
	switch m {
	case ModePrimary:
		return "primary"
	case ModeReference:
		return "reference"
	case ModeAll:
		return "all"
	case ModePrimaryLockedByReference:
		return "primary-locked-by-reference"
	case ModeReferenceLockedByPrimary:
		return "reference-locked-by-primary"
	default:
		return "unknown"
	}
}

// ReferenceResolver lets a driver supply a second resolver implementation to
// cross-check against, for ModeAll and the *LockedBy* modes.
type ReferenceResolver func(idx *Index, root Names) (pubgrub.Solution, error)

// OutputSummary is what Resolve returns: the selected versions, the
// diagnostic instrumentation collected along the way, and — for
// cross-checking modes — whether the two resolvers agreed.
type OutputSummary struct {
	Root      Names
	Solution  pubgrub.Solution
	Stats     Stats
	Mode      Mode
	Cyclic    bool
	Agreement *bool // nil unless Mode performed a cross-check
}

// ResolveOption configures a single Resolve call.
type ResolveOption func(*resolveConfig)

type resolveConfig struct {
	logger    *slog.Logger
	reference ReferenceResolver
	overlay   pubgrub.Solution
}

// WithResolveLogger attaches structured logging to the underlying solver.
func WithResolveLogger(logger *slog.Logger) ResolveOption {
	return func(c *resolveConfig) { c.logger = logger }
}

// WithReferenceResolver supplies the reference implementation used by
// ModeAll and the *LockedBy* modes.
func WithReferenceResolver(ref ReferenceResolver) ResolveOption {
	return func(c *resolveConfig) { c.reference = ref }
}

// WithOverlay installs a past-result overlay before solving, restricting
// every package's visible versions to those the overlay selected.
func WithOverlay(sol pubgrub.Solution) ResolveOption {
	return func(c *resolveConfig) { c.overlay = sol }
}

// Resolve is the package's entry point: build a root Bucket for (pkg,
// version), drive the generic solver against idx, then run the checker and
// cycle detector before handing back a solution.
func Resolve(idx *Index, pkg string, version *CargoVersion, mode Mode, opts ...ResolveOption) (*OutputSummary, error) {
	cfg := &resolveConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	root := BucketName(pkg, CompatibilityOf(version), true)

	switch mode {
	case ModePrimary:
		return resolveOnce(idx, root, version, cfg)
	case ModeReference:
		if cfg.reference == nil {
			return nil, fmt.Errorf("crates: ModeReference requires WithReferenceResolver")
		}
		sol, err := cfg.reference(idx, root)
		if err != nil {
			return nil, err
		}
		return &OutputSummary{Root: root, Solution: sol, Mode: mode}, nil
	case ModeAll:
		if cfg.reference == nil {
			return nil, fmt.Errorf("crates: ModeAll requires WithReferenceResolver")
		}
		primary, err := resolveOnce(idx, root, version, cfg)
		if err != nil {
			return nil, err
		}
		refSol, err := cfg.reference(idx, root)
		if err != nil {
			return nil, err
		}
		agree := solutionsAgree(primary.Solution, refSol)
		primary.Agreement = &agree
		return primary, nil
	case ModePrimaryLockedByReference:
		if cfg.reference == nil {
			return nil, fmt.Errorf("crates: ModePrimaryLockedByReference requires WithReferenceResolver")
		}
		refSol, err := cfg.reference(idx, root)
		if err != nil {
			return nil, err
		}
		cfg.overlay = refSol
		return resolveOnce(idx, root, version, cfg)
	case ModeReferenceLockedByPrimary:
		if cfg.reference == nil {
			return nil, fmt.Errorf("crates: ModeReferenceLockedByPrimary requires WithReferenceResolver")
		}
		primary, err := resolveOnce(idx, root, version, cfg)
		if err != nil {
			return nil, err
		}
		idx.InstallOverlay(primary.Solution)
		refSol, err := cfg.reference(idx, root)
		if err != nil {
			return nil, err
		}
		return &OutputSummary{Root: root, Solution: refSol, Mode: mode}, nil
	default:
		return nil, fmt.Errorf("crates: unknown mode %v", mode)
	}
}

func resolveOnce(idx *Index, root Names, version *CargoVersion, cfg *resolveConfig) (*OutputSummary, error) {
	idx.Reset()
	if cfg.overlay != nil {
		idx.InstallOverlay(cfg.overlay)
	}

	solverOpts := []pubgrub.SolverOption{pubgrub.WithMaxSteps(idx.limits.MaxSteps)}
	if cfg.logger != nil {
		solverOpts = append(solverOpts, pubgrub.WithLogger(cfg.logger))
	}
	solver := pubgrub.NewSolverWithOptions([]pubgrub.Source{idx}, solverOpts...)

	term := pubgrub.NewTerm(root.ToName(), pubgrub.NewVersionSetCondition(pubgrub.EmptyVersionSet().Singleton(version)))
	sol, err := solver.Solve(term)
	if err != nil {
		return nil, err
	}

	ok, reason, err := idx.Check(sol, root)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &InternalInconsistencyError{Package: root.ToName(), Version: version, Reason: reason}
	}

	cyclic, err := idx.HasCycle(sol, root)
	if err != nil {
		return nil, err
	}

	return &OutputSummary{
		Root:     root,
		Solution: sol,
		Stats:    idx.Stats(),
		Mode:     ModePrimary,
		Cyclic:   cyclic,
	}, nil
}

// solutionsAgree reports whether two solutions select the same version for
// every package they both mention — the differential-compare check behind
// ModeAll.
func solutionsAgree(a, b pubgrub.Solution) bool {
	bv := make(map[pubgrub.Name]pubgrub.Version, len(b))
	for _, nv := range b {
		bv[nv.Name] = nv.Version
	}
	if len(a) != len(b) {
		return false
	}
	for _, nv := range a {
		other, ok := bv[nv.Name]
		if !ok || nv.Version.Sort(other) != 0 {
			return false
		}
	}
	return true
}

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

// Package crates encodes a Cargo-style version and feature resolution
// problem into inputs for the generic PubGrub solver in the parent
// github.com/contriboss/crates-resolve package.
//
// A real package is split into several virtual package identities (see
// Names) so that the solver's plain version-set bookkeeping can express
// SemVer compatibility classes, optional dependencies, weak and strong
// feature activation, default features, and "links" uniqueness. Resolve is
// the package's single entry point.
package crates

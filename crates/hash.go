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
	"github.com/cespare/xxhash/v2"
)

// linksHash computes a stable 64-bit hash of a virtual package identity and
// a concrete version, used as the singleton version of its Links(key) node.
// It must be content-stable across processes and runs — never derived from
// pointer addresses or map iteration order — since two independent resolves
// selecting the same (virtual package, version) must agree on the Links
// version they emit.
func linksHash(virtualPackage string, version *CargoVersion) uint64 {
	h := xxhash.New()
	_, _ = h.WriteString(virtualPackage)
	_, _ = h.Write([]byte{0})
	_, _ = h.WriteString(version.String())
	return h.Sum64()
}

// linksVersion turns a stable hash into a CargoVersion usable as a Links
// singleton. The hash is encoded into the major component; minor and patch
// are always zero since only equality of the whole triple matters.
func linksVersion(hash uint64) *CargoVersion {
	return newCargoVersion(hash, 0, 0)
}

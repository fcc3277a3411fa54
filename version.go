// SPDX-FileCopyrightText: © 2026 hq05
// SPDX-License-Identifier: AGPL-3.0-only
package mozquic

import (
	"github.com/carlmjohnson/versioninfo"

	"github.com/hq05/mozquic-go/wire"
)

// LibraryVersion is the fixed library version analogous to
// mozquic_library_version in the original source.
const LibraryVersion uint32 = 1

// ALPN is the fixed application protocol identifier.
const ALPN = wire.ALPN

// BuildVersion reports the module's build version as resolved from VCS
// info embedded at build time (github.com/carlmjohnson/versioninfo),
// falling back to "unknown" outside a module build (e.g. `go run` on a
// bare file). It is purely diagnostic: wire version negotiation uses
// LibraryVersion/Config.SupportedVersions, never this string.
func BuildVersion() string {
	if v := versioninfo.Version; v != "" && v != "(devel)" {
		return v
	}
	if versioninfo.Revision != "" {
		rev := versioninfo.Revision
		if versioninfo.DirtyBuild {
			rev += "-dirty"
		}
		return rev
	}
	return "unknown"
}

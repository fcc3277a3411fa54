// SPDX-FileCopyrightText: © 2026 hq05
// SPDX-License-Identifier: AGPL-3.0-only
package fileconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mozquic.toml")
	contents := `
origin_name = "example.test"
origin_port = 4433
handle_io = true
grease_version_negotiation = true
supported_versions = [5, 6]
milestone_version = 5
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	f, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "example.test", f.OriginName)
	require.Equal(t, 4433, f.OriginPort)
	require.True(t, f.HandleIO)
	require.True(t, f.GreaseVersionNegotiation)
	require.False(t, f.TolerateBadALPN)
	require.Equal(t, []uint32{5, 6}, f.SupportedVersions)
	require.Equal(t, uint32(5), f.MilestoneVersion)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
}

// SPDX-FileCopyrightText: © 2026 hq05
// SPDX-License-Identifier: AGPL-3.0-only
package mozquic

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigMergesOntoBase(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mozquic.toml")
	contents := `
origin_name = "127.0.0.1"
origin_port = 9443
supported_versions = [5]
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	base := &Config{AppHandlesSendRecv: true}
	cfg, err := LoadConfig(path, base)
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1", cfg.OriginName)
	require.Equal(t, 9443, cfg.OriginPort)
	require.Equal(t, []uint32{5}, cfg.SupportedVersions)
	require.True(t, cfg.AppHandlesSendRecv) // untouched field preserved
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"), nil)
	require.Error(t, err)
}

// SPDX-FileCopyrightText: © 2026 hq05
// SPDX-License-Identifier: AGPL-3.0-only
// Package fileconfig loads a mozquic endpoint's configuration from a
// TOML file on disk, the same format and library (BurntSushi/toml) the
// rest of this codebase's host configs use.
package fileconfig

import (
	"os"

	"github.com/BurntSushi/toml"
)

// File is the on-disk shape of a mozquic endpoint's configuration. It is
// deliberately smaller than mozquic.Config: fields that only make sense
// set up in code (EventHandler, AppHandlesSendRecv) have no place here.
type File struct {
	OriginName string `toml:"origin_name"`
	OriginPort int    `toml:"origin_port"`

	HandleIO                 bool `toml:"handle_io"`
	GreaseVersionNegotiation bool `toml:"grease_version_negotiation"`
	PreferMilestoneVersion   bool `toml:"prefer_milestone_version"`
	IgnorePKI                bool `toml:"ignore_pki"`
	TolerateBadALPN          bool `toml:"tolerate_bad_alpn"`

	SupportedVersions []uint32 `toml:"supported_versions"`
	MilestoneVersion  uint32   `toml:"milestone_version"`
}

// Load reads and parses the TOML file at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f File
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

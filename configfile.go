// SPDX-FileCopyrightText: © 2026 hq05
// SPDX-License-Identifier: AGPL-3.0-only
package mozquic

import "github.com/hq05/mozquic-go/fileconfig"

// LoadConfig reads a TOML config file and merges it onto a Config,
// leaving fields the file format has no say over (EventHandler,
// AppHandlesSendRecv) untouched.
func LoadConfig(path string, base *Config) (*Config, error) {
	f, err := fileconfig.Load(path)
	if err != nil {
		return nil, &IOError{Err: err}
	}
	if base == nil {
		base = &Config{}
	}
	base.OriginName = f.OriginName
	base.OriginPort = f.OriginPort
	base.HandleIO = f.HandleIO
	base.GreaseVersionNegotiation = f.GreaseVersionNegotiation
	base.PreferMilestoneVersion = f.PreferMilestoneVersion
	base.IgnorePKI = f.IgnorePKI
	base.TolerateBadALPN = f.TolerateBadALPN
	base.SupportedVersions = f.SupportedVersions
	base.MilestoneVersion = f.MilestoneVersion
	return base, nil
}

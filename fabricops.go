// Copyright (c) Mondoo, Inc.
// SPDX-License-Identifier: BUSL-1.1

package fabricops

// Version is set via ldflags
var Version string

// Build version is set via ldflags
var Build string

// Date of the build, set via ldflags
var Date string

// GetVersion returns the version of the build
// valid versions are semver or "unstable"
func GetVersion() string {
	if Version == "" {
		return "unstable"
	}
	return Version
}

// GetBuild returns the git sha of the build
func GetBuild() string {
	b := Build
	if len(b) == 0 {
		b = "development"
	}
	return b
}

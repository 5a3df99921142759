package main

import (
	_ "embed"
	"runtime/debug"
	"strings"
)

//go:embed VERSION
var embeddedVersion string

// buildVersion identifies the running binary.
type buildVersion struct {
	// module is the version recorded by `go install ...@version`.
	module string
	// base is the contents of the VERSION file.
	base string
	// revision is the short VCS revision of a development build.
	revision string
	// devel is set for builds from a checkout.
	devel bool
}

func currentVersion() buildVersion {
	info, _ := debug.ReadBuildInfo()
	return versionFrom(strings.TrimSpace(embeddedVersion), info)
}

func versionFrom(base string, info *debug.BuildInfo) buildVersion {
	v := buildVersion{base: base}
	if info == nil {
		return v
	}
	if info.Main.Version != "" && info.Main.Version != "(devel)" {
		v.module = info.Main.Version
		return v
	}
	v.devel = true
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" && len(s.Value) >= 7 {
			v.revision = s.Value[:7]
			break
		}
	}
	return v
}

// String is the version shown to users, e.g. "v0.1.0" for installed
// binaries or "devel-0.1.0+abc1234" for checkouts.
func (v buildVersion) String() string {
	s := v.Semver()
	if v.devel {
		return "devel-" + s
	}
	return s
}

// Semver is the version manifest `requires` constraints are checked
// against. Development builds report their VERSION base.
func (v buildVersion) Semver() string {
	if v.module != "" {
		return v.module
	}
	if v.revision != "" {
		return v.base + "+" + v.revision
	}
	return v.base
}

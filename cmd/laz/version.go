package main

import (
	_ "embed"
	"runtime/debug"
	"strings"
)

//go:embed VERSION
var rawVersion string

// Version reports the CLI version. Released builds installed with go install
// report the module version; development builds report the embedded base
// version with a "-dev" suffix, plus the VCS revision when the build info
// carries one (e.g. "0.1.0-dev.1a2b3c4d").
func Version() string {
	v := strings.TrimSpace(rawVersion)

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return v
	}
	if mv := info.Main.Version; mv != "" && mv != "(devel)" {
		return mv
	}

	for _, s := range info.Settings {
		if s.Key == "vcs.revision" && len(s.Value) >= 8 {
			return v + "-dev." + s.Value[:8]
		}
	}
	return v + "-dev"
}

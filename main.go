package main

import (
	"runtime/debug"

	"github.com/fitsync/fitsync/cmd"
)

// version is set via ldflags at build time, with a VCS fallback.
var version = ""

func main() {
	cmd.SetVersion(resolveVersion())
	cmd.Execute()
}

func resolveVersion() string {
	if version != "" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return "dev"
}

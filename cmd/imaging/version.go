package main

import "runtime/debug"

// version is set with -ldflags "-X main.version=...".
var version = ""

// appVersion prefers the module version recorded by go install, then the
// ldflags value, then "dev".
func appVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	if version != "" {
		return version
	}
	return "dev"
}

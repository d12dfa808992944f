// Package appinfo reports the build version and the normalized runtime environment.
package appinfo

import (
	"os"
	"runtime/debug"
	"strings"
)

// Version can be set at build time with -ldflags "-X referralhub/internal/appinfo.Version=1.2.3"
var Version = ""

// Environment reads GO_ENV and folds common aliases ("prod", "dev", ...) onto
// production, staging, test or development.
func Environment() string {
	return NormalizeEnvironment(os.Getenv("GO_ENV"))
}

// NormalizeEnvironment maps an environment name onto its canonical form
func NormalizeEnvironment(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "prod", "production":
		return "production"
	case "stage", "staging":
		return "staging"
	case "test", "testing":
		return "test"
	case "", "dev", "development":
		return "development"
	default:
		return strings.ToLower(strings.TrimSpace(env))
	}
}

// GetVersion returns the linker-set version, then APP_VERSION, then the
// module or VCS revision from the build info.
func GetVersion() string {
	if Version != "" {
		return Version
	}
	if version := os.Getenv("APP_VERSION"); version != "" {
		return version
	}

	if info, ok := debug.ReadBuildInfo(); ok {
		if info.Main.Version != "" && info.Main.Version != "(devel)" {
			return info.Main.Version
		}
		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" && setting.Value != "" {
				if len(setting.Value) > 12 {
					return setting.Value[:12]
				}
				return setting.Value
			}
		}
	}

	return "0.0.0-unknown"
}

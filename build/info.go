// Package build exposes the version control metadata stamped into the binary,
// for startup logging and support bundles.
package build

import "runtime/debug"

type Info struct {
	ModulePath string `json:"modulePath,omitempty"`
	GoVersion  string `json:"goVersion,omitempty"`
	CommitHash string `json:"commitHash,omitempty"`
	CommitTime string `json:"commitTime,omitempty"`
	Modified   bool   `json:"modified,omitempty"`
}

func GetBuildInfo() *Info {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return nil
	}

	result := &Info{
		ModulePath: bi.Main.Path,
		GoVersion:  bi.GoVersion,
	}

	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			result.CommitHash = s.Value
		case "vcs.time":
			result.CommitTime = s.Value
		case "vcs.modified":
			result.Modified = s.Value == "true"
		}
	}
	return result
}

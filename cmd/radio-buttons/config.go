package main

import (
	"os"
	"path/filepath"
)

const configBaseName = "radio-buttons"

// configSystemDir holds the system-wide configuration files.
var configSystemDir = "/etc/radio-buttons"

// configCandidatePaths lists configuration files per format, highest
// priority first. An explicit userPath is routed by extension and wins over
// the working directory and the system directory.
func configCandidatePaths(userPath string) (jsonPaths, yamlPaths, tomlPaths []string) {
	if userPath != "" {
		switch filepath.Ext(userPath) {
		case ".yaml", ".yml":
			yamlPaths = append(yamlPaths, userPath)
		case ".toml":
			tomlPaths = append(tomlPaths, userPath)
		default:
			jsonPaths = append(jsonPaths, userPath)
		}
	}

	var dirs []string
	if wd, err := os.Getwd(); err == nil {
		dirs = append(dirs, wd)
	}
	dirs = append(dirs, configSystemDir)

	for _, dir := range dirs {
		base := filepath.Join(dir, configBaseName)
		if dir == configSystemDir {
			base = filepath.Join(dir, "config")
		}
		jsonPaths = append(jsonPaths, base+".json")
		yamlPaths = append(yamlPaths, base+".yaml", base+".yml")
		tomlPaths = append(tomlPaths, base+".toml")
	}
	return jsonPaths, yamlPaths, tomlPaths
}

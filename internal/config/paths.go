package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const (
	configDirName  = "auxilium"
	configFileName = "server.yaml"
)

// DefaultConfigPath is where the relay looks for server.yaml when neither
// --config nor CONFIG_FILE names a file. The file is optional.
func DefaultConfigPath() string {
	home, _ := os.UserHomeDir()
	return ResolveConfigPath(runtime.GOOS, home, os.Getenv("ProgramData"))
}

// ResolveConfigPath returns the server.yaml location for goos. Linux and
// other unix systems use /etc/auxilium, macOS the per-user Application
// Support folder, Windows %ProgramData%\auxilium.
func ResolveConfigPath(goos, home, programData string) string {
	var dir string
	switch goos {
	case "darwin":
		dir = filepath.Join(home, "Library", "Application Support")
	case "windows":
		dir = strings.TrimRight(programData, `\/`)
		if dir == "" {
			dir = "C:/ProgramData"
		}
	default:
		dir = "/etc"
	}
	return filepath.Join(dir, configDirName, configFileName)
}

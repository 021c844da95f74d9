package configutil

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
)

// AppName namespaces every file this project keeps in the user's xdg
// directories.
const AppName = "ao3-scraper"

const statePrefix = "<state>"

// ConfigPath is where a config file called name lives in the user's config
// directory.
func ConfigPath(name string) string {
	return filepath.Join(xdg.ConfigHome, AppName, name)
}

// ResolvePath expands a leading "<state>" into the xdg state directory for
// this project, creating the directory if needed. Other paths are returned
// unchanged.
func ResolvePath(path string) (string, error) {
	if !strings.HasPrefix(path, statePrefix) {
		return path, nil
	}

	stateDir := filepath.Join(xdg.StateHome, AppName)
	err := os.MkdirAll(stateDir, 0o755)
	if err != nil {
		return "", err
	}

	subpath := strings.TrimLeft(strings.TrimPrefix(path, statePrefix), `/\`)
	return filepath.Join(stateDir, subpath), nil
}

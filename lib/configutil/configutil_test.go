package configutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/adrg/xdg"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	BaseUrl  string   `json:"base_url"`
	Username string   `json:"username"`
	Rate     float64  `json:"rate"`
	Tags     []string `json:"tags"`
}

func writeFile(t testing.TB, path, contents string) {
	err := os.WriteFile(path, []byte(contents), 0o600)
	if err != nil {
		t.Fatal(err)
	}
}

func TestReadConfig(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "ao3.json5"), `{
		// comments are allowed
		base_url: "https://archiveofourown.org",
		username: "alice",
		rate: 2,
	}`)

	cfg, err := ReadConfig[testConfig](filepath.Join(dir, "ao3.json5"))
	require.NoError(t, err)
	require.Equal(t, testConfig{
		BaseUrl:  "https://archiveofourown.org",
		Username: "alice",
		Rate:     2,
	}, cfg)
}

func TestReadConfigLocalOverride(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "ao3.json5"), `{
		base_url: "https://archiveofourown.org",
		username: "alice",
	}`)
	writeFile(t, filepath.Join(dir, "ao3.local.json5"), `{
		username: "bob",
		tags: ["x"],
	}`)

	cfg, err := ReadConfig[testConfig](filepath.Join(dir, "ao3.json5"))
	require.NoError(t, err)
	require.Equal(t, "https://archiveofourown.org", cfg.BaseUrl)
	require.Equal(t, "bob", cfg.Username)
	require.Equal(t, []string{"x"}, cfg.Tags)
}

func TestReadConfigMissing(t *testing.T) {
	_, err := ReadConfig[testConfig](filepath.Join(t.TempDir(), "nothing.json5"))
	require.True(t, os.IsNotExist(err))
}

func TestReadConfigInvalid(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "ao3.json5"), `{ username: `)

	_, err := ReadConfig[testConfig](filepath.Join(dir, "ao3.json5"))
	require.Error(t, err)
	require.False(t, os.IsNotExist(err))
}

func TestReadRecursively(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	writeFile(t, filepath.Join(root, "recursive-test.json5"), `{ username: "carol" }`)

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(nested))
	defer os.Chdir(wd)

	cfg, err := ReadRecursively[testConfig]("recursive-test.json5")
	require.NoError(t, err)
	require.Equal(t, "carol", cfg.Username)
}

func TestResolvePath(t *testing.T) {
	stateHome := t.TempDir()
	t.Cleanup(xdg.Reload)
	t.Setenv("XDG_STATE_HOME", stateHome)
	xdg.Reload()

	path, err := ResolvePath("/tmp/plain.db")
	require.NoError(t, err)
	require.Equal(t, "/tmp/plain.db", path)

	path, err = ResolvePath("<state>/ao3.db")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(stateHome, AppName, "ao3.db"), path)
}

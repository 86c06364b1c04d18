package configutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Url       string  `json:"url"`
	Threshold float64 `json:"threshold"`
	Rescale   bool    `json:"rescale"`
}

func writeFile(t testing.TB, path, contents string) {
	err := os.WriteFile(path, []byte(contents), 0600)
	if err != nil {
		t.Fatal(err)
	}
}

func TestLocalName(t *testing.T) {
	require.Equal(t, filepath.Join("config", "gdp-etl.local.json5"), LocalName("config/gdp-etl.json5"))
	require.Equal(t, "settings.local", LocalName("settings"))
}

func TestReadConfig(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "gdp-etl.json5")

	_, err := ReadConfig[testConfig](name)
	require.True(t, os.IsNotExist(err))

	writeFile(t, name, `{
		// comments are allowed
		url: "https://example.com",
		threshold: 100,
	}`)
	writeFile(t, filepath.Join(dir, "gdp-etl.local.json5"), `{threshold: 250}`)

	cfg, err := ReadConfig[testConfig](name)
	require.NoError(t, err)
	require.Equal(t, "https://example.com", cfg.Url)
	require.Equal(t, 250.0, cfg.Threshold)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "gdp-etl.json5")

	defaults := testConfig{Url: "https://default", Threshold: 100}

	cfg, err := Load(name, defaults)
	require.NoError(t, err)
	require.Equal(t, defaults, cfg)

	writeFile(t, name, `{rescale: true}`)
	cfg, err = Load(name, defaults)
	require.NoError(t, err)
	require.Equal(t, testConfig{Url: "https://default", Threshold: 100, Rescale: true}, cfg)

	writeFile(t, name, `{rescale: `)
	_, err = Load(name, defaults)
	require.Error(t, err)
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
trusted_issuers:
  - id: "https://issuer.example"
    did_document_path: "/etc/sdjwtengine/issuer.json"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sha-256", cfg.Hasher)
	assert.Equal(t, 30, cfg.ClockLeewaySeconds)
	assert.Equal(t, 30, cfg.KbIatLeewaySeconds)
	require.Len(t, cfg.TrustedIssuers, 1)
	assert.Equal(t, "https://issuer.example", cfg.TrustedIssuers[0].ID)
}

func TestLoadRejectsInvalidHasher(t *testing.T) {
	path := writeConfig(t, `
hasher: "md5"
trusted_issuers:
  - id: "https://issuer.example"
    did_document_path: "/etc/sdjwtengine/issuer.json"
`)

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadRejectsMissingTrustedIssuerFields(t *testing.T) {
	path := writeConfig(t, `
trusted_issuers:
  - id: "https://issuer.example"
`)

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadRejectsDirectory(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(dir)
	require.Error(t, err)
}

func TestLoadRejectsMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.Error(t, err)
}

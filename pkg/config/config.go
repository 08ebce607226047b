// Package config loads the engine's operating configuration: which
// hasher new credentials are issued with, how much clock skew temporal
// checks tolerate, and where trusted issuers' DID documents live.
package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// TrustedIssuer pins an issuer identifier to the DID document used to
// resolve its signing keys, when that document is not fetched live.
type TrustedIssuer struct {
	ID              string `yaml:"id" validate:"required"`
	DidDocumentPath string `yaml:"did_document_path" validate:"required"`
}

// EngineConfig is the engine's operating configuration.
type EngineConfig struct {
	// Hasher is the `_sd_alg` new credentials are issued with.
	Hasher string `yaml:"hasher" default:"sha-256" validate:"oneof=sha-256 sha-512 sha3-256 sha3-512"`

	// Decoys is the default number of decoy digests added per
	// concealable object during issuance.
	Decoys int `yaml:"decoys" default:"0" validate:"gte=0"`

	// ClockLeewaySeconds bounds the skew tolerated when checking nbf/exp.
	ClockLeewaySeconds int `yaml:"clock_leeway_seconds" default:"30" validate:"gte=0"`

	// KbIatLeewaySeconds bounds the skew tolerated on a KB-JWT's iat.
	KbIatLeewaySeconds int `yaml:"kb_iat_leeway_seconds" default:"30" validate:"gte=0"`

	// RequireKeyBinding rejects any presentation lacking a KB-JWT, even
	// when the credential itself carries no `cnf` claim.
	RequireKeyBinding bool `yaml:"require_key_binding" default:"false"`

	TrustedIssuers []TrustedIssuer `yaml:"trusted_issuers" validate:"dive"`
}

type envVars struct {
	ConfigYAML string `envconfig:"SDJWTENGINE_CONFIG_YAML" required:"true"`
}

// New reads the YAML config file named by SDJWTENGINE_CONFIG_YAML,
// applies field defaults, and validates the result.
func New() (*EngineConfig, error) {
	env := envVars{}
	if err := envconfig.Process("", &env); err != nil {
		return nil, err
	}
	return Load(env.ConfigYAML)
}

// Load reads, defaults, and validates the YAML config at path.
func Load(path string) (*EngineConfig, error) {
	cfg := &EngineConfig{}
	if err := defaults.Set(cfg); err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, errors.New("config: path is a directory")
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Package config describes the optional YAML configuration accepted by
// the wsdlc compiler: the local schema directory fallback (§4.1), strict
// vs. lax unresolved-reference handling (§7), and an initial target
// namespace override (§6.1).
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds compiler-wide options.
type Config struct {
	// LocalSchemaDir is the fallback directory used to resolve a
	// relative schemaLocation when the parent namespace is not itself
	// an http(s):// URL, or when that attempt fails.
	LocalSchemaDir string `yaml:"localSchemaDir"`
	// Strict, when true, makes an UnresolvedReference a hard failure
	// (§7). When false, unresolved references are downgraded to
	// warnings.
	Strict bool `yaml:"strict"`
	// InitialNamespace overrides the target namespace used before the
	// root document declares one of its own (§6.1).
	InitialNamespace string `yaml:"initialNamespace"`
}

// Default returns the configuration used when no file is supplied:
// strict mode on, no local schema directory.
func Default() Config {
	return Config{Strict: true}
}

// Load reads and parses a YAML configuration file.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/suparena/schemastore"
	"github.com/suparena/schemastore/datastore/ddb"
	"github.com/suparena/schemastore/datastore/pg"
	serrors "github.com/suparena/schemastore/errors"
	"github.com/suparena/schemastore/logging"
	"github.com/suparena/schemastore/security"
)

// EnvPrefix prefixes every environment override, e.g.
// SCHEMASTORE_STORES__CONTENT__ATTRIBUTES__JDBCURL.
const EnvPrefix = "SCHEMASTORE_"

// Config is the merged configuration of every store of one process.
type Config struct {
	Logging  Logging          `koanf:"logging"`
	Mappers  string           `koanf:"mappers"`
	Manifest string           `koanf:"manifest"`
	Security Security         `koanf:"security"`
	Stores   map[string]Store `koanf:"stores"`
}

// Logging configures the global logger.
type Logging struct {
	Verbosity int  `koanf:"verbosity"`
	JSON      bool `koanf:"json"`
}

// Security holds the cipher secret and the sensitive attribute patterns.
type Security struct {
	Passphrase string   `koanf:"passphrase"`
	Salt       string   `koanf:"salt"`
	Sensitive  []string `koanf:"sensitive"`
}

// Store configures one named store.
type Store struct {
	// Engine is the database id of the engine: postgresql, dynamodb or mock
	Engine     string            `koanf:"engine"`
	Attributes map[string]string `koanf:"attributes"`
}

// knownAttributes restores the case of attribute names lowercased by the env provider.
var knownAttributes = []string{
	pg.AttrPoolName, pg.AttrJDBCURL, pg.AttrUsername, pg.AttrPassword, pg.AttrSchema,
	pg.AttrAdvanced, pg.AttrMaximumPoolSize, pg.AttrMinimumIdle, pg.AttrConnectionTimeout,
	pg.AttrIdleTimeout, pg.AttrMaxLifetime,
	ddb.AttrRegion, ddb.AttrAccessKey, ddb.AttrSecretKey, ddb.AttrEndpoint,
	ddb.AttrTablePrefix, ddb.AttrMaxRetries, ddb.AttrRetryBackoff,
}

func defaults() map[string]any {
	return map[string]any{
		"logging.verbosity": 1,
		"logging.json":      false,
		"mappers":           "mappers",
	}
}

// Load merges defaults, the file at path (when not empty) and SCHEMASTORE_
// environment variables, in that order. A .env file next to the working
// directory is loaded into the environment first.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	k := koanf.New(".")

	// 1. Load defaults
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Load the config file
	if path != "" {
		parser, err := parserFor(path)
		if err != nil {
			return nil, err
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
		}
	}

	// 3. Load env vars
	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Unmarshal
	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	// 5. Post-process
	if err := cfg.postProcess(path); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func parserFor(path string) (koanf.Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	case ".toml":
		return toml.Parser(), nil
	}
	return nil, serrors.NewValidationError("config", fmt.Sprintf("unsupported config format %q", filepath.Ext(path)))
}

func (c *Config) postProcess(path string) error {
	if c.Stores == nil {
		c.Stores = map[string]Store{}
	}
	for name, store := range c.Stores {
		store.Engine = strings.ToLower(strings.TrimSpace(store.Engine))
		store.Attributes = canonicalize(store.Attributes)
		c.Stores[name] = store
	}

	// relative mapper and manifest paths are relative to the config file
	if path != "" {
		base := filepath.Dir(path)
		if c.Mappers != "" && !filepath.IsAbs(c.Mappers) {
			c.Mappers = filepath.Join(base, c.Mappers)
		}
		if c.Manifest != "" && !filepath.IsAbs(c.Manifest) {
			c.Manifest = filepath.Join(base, c.Manifest)
		}
	}

	if (c.Security.Passphrase == "") != (c.Security.Salt == "") {
		return serrors.NewValidationError("security", "passphrase and salt must be set together")
	}
	return nil
}

// canonicalize renames attributes that match a known name case-insensitively.
// An env override beats the file value it shadows.
func canonicalize(attrs map[string]string) map[string]string {
	out := make(map[string]string, len(attrs))
	var lowered []string
	for k, v := range attrs {
		canonical := k
		for _, known := range knownAttributes {
			if strings.EqualFold(k, known) {
				canonical = known
				break
			}
		}
		if canonical != k {
			lowered = append(lowered, k)
			continue
		}
		out[k] = v
	}
	for _, k := range lowered {
		for _, known := range knownAttributes {
			if strings.EqualFold(k, known) {
				out[known] = attrs[k]
			}
		}
	}
	return out
}

// StoreNames returns the configured store names, sorted.
func (c *Config) StoreNames() []string {
	names := make([]string, 0, len(c.Stores))
	for name := range c.Stores {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Cipher builds the store cipher, or returns nil when no passphrase is configured.
func (c *Config) Cipher() (security.Cipher, error) {
	if c.Security.Passphrase == "" {
		return nil, nil
	}
	return security.NewPBECipher(c.Security.Passphrase, c.Security.Salt)
}

// LoggingOptions returns the options for logging.Setup.
func (c *Config) LoggingOptions() logging.Options {
	return logging.Options{JSON: c.Logging.JSON}
}

// StoreOptions returns the options that configure the store called name.
func (c *Config) StoreOptions(name string) ([]schemastore.Option, error) {
	store, ok := c.Stores[name]
	if !ok {
		return nil, serrors.NewNotFoundError("store", name)
	}

	opts := []schemastore.Option{
		schemastore.WithAttributes(store.Attributes),
		schemastore.WithSensitivePatterns(c.Security.Sensitive...),
	}
	if c.Mappers != "" {
		opts = append(opts, schemastore.WithSources(os.DirFS(c.Mappers)))
	}
	cipher, err := c.Cipher()
	if err != nil {
		return nil, fmt.Errorf("failed to build cipher: %w", err)
	}
	if cipher != nil {
		opts = append(opts, schemastore.WithCipher(cipher))
	}
	return opts, nil
}

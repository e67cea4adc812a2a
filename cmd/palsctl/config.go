package main

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/pals/internal/protocol/pals"
	"github.com/danmuck/pals/internal/server"
)

// palsctl config.toml key mapping to codec service settings.
type fileConfig struct {
	Name                string   `toml:"name"`
	Addr                string   `toml:"addr"`
	Variant             string   `toml:"variant"`
	PermitEmptySegments bool     `toml:"permit_empty_segments"`
	StrictTrailing      bool     `toml:"strict_trailing"`
	MaxBufferBytes      int64    `toml:"max_buffer_bytes"`
	CorsOrigins         []string `toml:"cors_origins"`
}

// loadConfig overlays the TOML file at path on the defaults. An empty path
// returns the defaults.
func loadConfig(path string) (server.Config, error) {
	cfg := server.DefaultConfig()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return server.Config{}, fmt.Errorf("load palsctl config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return server.Config{}, fmt.Errorf("load palsctl config: unknown key %q", undecoded[0].String())
	}

	if meta.IsDefined("name") {
		cfg.Name = strings.TrimSpace(raw.Name)
	}
	if meta.IsDefined("addr") {
		cfg.Addr = strings.TrimSpace(raw.Addr)
	}
	if meta.IsDefined("variant") {
		v, err := pals.ParseVariant(raw.Variant)
		if err != nil {
			return server.Config{}, fmt.Errorf("load palsctl config: %w", err)
		}
		cfg.Variant = v
	}
	if meta.IsDefined("permit_empty_segments") {
		cfg.Options.PermitEmptySegments = raw.PermitEmptySegments
	}
	if meta.IsDefined("strict_trailing") {
		cfg.Options.StrictTrailing = raw.StrictTrailing
	}
	if meta.IsDefined("max_buffer_bytes") {
		cfg.MaxBufferBytes = raw.MaxBufferBytes
	}
	if meta.IsDefined("cors_origins") {
		cfg.CorsOrigins = raw.CorsOrigins
	}

	if err := cfg.Validate(); err != nil {
		return server.Config{}, fmt.Errorf("load palsctl config: %w", err)
	}
	return cfg, nil
}

// Package config loads, normalizes, and validates karaparty's TOML
// configuration.
//
// Load resolves the config path (explicit flag, ~/.config/karaparty/config.toml,
// then ./karaparty.toml), decodes it over Default(), expands paths, applies
// environment fallbacks for secrets, and validates each section. CreateSample
// writes the embedded sample file for `karaparty config init`.
package config

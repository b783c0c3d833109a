// Package config loads memscope configuration.
//
// Sources are layered, later ones winning:
//
//  1. embedded defaults (embedded/defaults.toml)
//  2. the user file: --config, or $XDG_CONFIG_HOME/memscope/config.toml
//  3. MEMSCOPE_ environment variables, "__" separating sections
//  4. command line overrides
package config

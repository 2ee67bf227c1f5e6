// Package configs embeds the configuration templates written by
// `scribe config init`.
//
// Configuration hierarchy (see internal/config Load):
//  1. Hardcoded defaults
//  2. User config (~/.config/scribe/config.yaml)
//  3. Project config (.scribe.yaml, .scribe.yml or .scribe.toml)
//  4. Environment variables (SCRIBE_*)
package configs

import _ "embed"

// UserConfigTemplate is written to ~/.config/scribe/config.yaml by
// `scribe config init`.
//
//go:embed user-config.example.yaml
var UserConfigTemplate string

// ProjectConfigTemplate is written to .scribe.yaml by
// `scribe config init --project`.
//
//go:embed project-config.example.yaml
var ProjectConfigTemplate string

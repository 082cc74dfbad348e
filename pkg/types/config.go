// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// OutputFormat names an output formatter.
type OutputFormat string

const (
	FormatPlain OutputFormat = "plain"
	FormatHTML  OutputFormat = "html"
)

// AppConfig holds the settings read from citekit.yaml, CITEKIT_*
// environment variables, and command-line flags.
type AppConfig struct {
	// Style is a built-in style name or the path of a style YAML file.
	Style string `json:"style" yaml:"style"`

	// Locale is a built-in locale id or the path of a locale YAML file.
	Locale string `json:"locale" yaml:"locale"`

	// Format selects the output formatter (plain, html).
	Format OutputFormat `json:"format" yaml:"format"`

	// Bibliography is the default references file (YAML or CSL-JSON).
	Bibliography string `json:"bibliography" yaml:"bibliography"`

	// Library is the path of the SQLite reference library.
	Library string `json:"library" yaml:"library"`

	// Verbose enables debug logging.
	Verbose bool `json:"verbose" yaml:"verbose"`
}

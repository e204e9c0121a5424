package core

import "strings"

// SourceConfig holds configuration for loading a dataset.
type SourceConfig struct {
	// Type selects the ingestion adapter (e.g., "duckdb", "csv", "postgres").
	Type string `koanf:"type" json:"type"`

	// Path is the file path for file-backed sources, or the database file for sqlite.
	Path string `koanf:"path" json:"path,omitempty"`

	// Table is loaded in full when Query is empty.
	Table string `koanf:"table" json:"table,omitempty"`

	// Query overrides Table for database sources.
	Query string `koanf:"query" json:"query,omitempty"`

	Host     string `koanf:"host" json:"host,omitempty"`
	Port     int    `koanf:"port" json:"port,omitempty"`
	Database string `koanf:"database" json:"database,omitempty"`
	User     string `koanf:"user" json:"user,omitempty"`
	Password string `koanf:"password" json:"-"`

	// Options contains additional driver-specific options (sslmode, delimiter, header).
	Options map[string]string `koanf:"options" json:"options,omitempty"`
}

// Option returns the named option or def when unset.
func (c SourceConfig) Option(name, def string) string {
	if v, ok := c.Options[name]; ok && v != "" {
		return v
	}
	return def
}

// DefaultNullValues are the cell tokens read as null when a source sets no
// null_values option. The empty cell is always null.
var DefaultNullValues = []string{
	"", "#N/A", "#N/A N/A", "#NA", "-1.#IND", "-1.#QNAN", "-NaN", "-nan",
	"1.#IND", "1.#QNAN", "<NA>", "N/A", "NA", "NULL", "NaN", "None",
	"n/a", "nan", "null",
}

// NullValues returns the tokens read as null by text sources. The
// null_values option replaces the defaults with a comma-separated list.
func (c SourceConfig) NullValues() []string {
	raw, ok := c.Options["null_values"]
	if !ok {
		out := make([]string, len(DefaultNullValues))
		copy(out, DefaultNullValues)
		return out
	}
	out := []string{""}
	for _, tok := range strings.Split(raw, ",") {
		if tok = strings.TrimSpace(tok); tok != "" {
			out = append(out, tok)
		}
	}
	return out
}

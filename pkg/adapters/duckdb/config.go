package duckdb

import (
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// Params holds DuckDB-specific configuration.
// Parsed from core.SourceConfig.Options using mapstructure.
type Params struct {
	// Extensions to install and load (e.g., "httpfs", "json"), comma separated
	Extensions []string `mapstructure:"extensions"`

	// Settings to apply at session level, given as "setting.<name>" options
	Settings map[string]string `mapstructure:"settings"`

	// Delimiter overrides CSV delimiter sniffing
	Delimiter string `mapstructure:"delimiter"`

	// Header controls whether the first CSV line holds column names (default true)
	Header *bool `mapstructure:"header"`
}

const settingPrefix = "setting."

// ParseParams decodes adapter options into Params.
func ParseParams(options map[string]string) (*Params, error) {
	raw := make(map[string]any, len(options))
	settings := make(map[string]any)
	for k, v := range options {
		if k == "null_values" {
			// read through core.SourceConfig.NullValues
			continue
		}
		if name, ok := strings.CutPrefix(k, settingPrefix); ok {
			settings[name] = v
			continue
		}
		raw[k] = v
	}
	if len(settings) > 0 {
		raw["settings"] = settings
	}

	var p Params
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &p,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook:       mapstructure.StringToSliceHookFunc(","),
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("invalid duckdb options: %w", err)
	}
	for i, ext := range p.Extensions {
		p.Extensions[i] = strings.TrimSpace(ext)
	}
	return &p, nil
}

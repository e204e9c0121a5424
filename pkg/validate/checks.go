package validate

import (
	"fmt"
	"sort"
	"sync"

	"github.com/go-viper/mapstructure/v2"
)

// Check is a configured rule invocation.
type Check interface {
	// Kind returns the registered kind of the check.
	Kind() string

	// Apply evaluates the check against the validator's dataset.
	Apply(v *Validator)
}

// CheckDef describes a registered check kind for configuration and tooling.
type CheckDef struct {
	Kind        string
	Description string
	Params      []string
	Example     string

	// Decode builds a typed Check from its configuration params.
	Decode func(params map[string]any) (Check, error)
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]CheckDef)
)

// Register adds a check kind to the registry.
// Call this from init() functions.
func Register(def CheckDef) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[def.Kind] = def
}

// Lookup returns the definition for kind.
func Lookup(kind string) (CheckDef, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	def, ok := registry[kind]
	return def, ok
}

// Kinds returns all registered check definitions sorted by kind.
func Kinds() []CheckDef {
	registryMu.RLock()
	defer registryMu.RUnlock()
	defs := make([]CheckDef, 0, len(registry))
	for _, def := range registry {
		defs = append(defs, def)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Kind < defs[j].Kind })
	return defs
}

func kindNames() []string {
	defs := Kinds()
	names := make([]string, len(defs))
	for i, def := range defs {
		names[i] = def.Kind
	}
	return names
}

// UnknownCheckError is returned when a configured check kind is not registered.
type UnknownCheckError struct {
	Kind      string
	Available []string
}

func (e *UnknownCheckError) Error() string {
	return fmt.Sprintf("unknown check kind %q\nAvailable kinds: %v\nHint: Check the checks section in leapdq.yaml", e.Kind, e.Available)
}

// Decode builds a Check from a raw configuration entry. The entry must carry
// a "kind" key; every other key is a parameter of that kind.
func Decode(raw map[string]any) (Check, error) {
	kind, _ := raw["kind"].(string)
	if kind == "" {
		return nil, fmt.Errorf("check is missing a kind")
	}
	def, ok := Lookup(kind)
	if !ok {
		return nil, &UnknownCheckError{Kind: kind, Available: kindNames()}
	}

	params := make(map[string]any, len(raw))
	for k, v := range raw {
		if k == "kind" {
			continue
		}
		params[k] = v
	}

	check, err := def.Decode(params)
	if err != nil {
		return nil, fmt.Errorf("invalid %s check: %w", kind, err)
	}
	return check, nil
}

// DecodeAll decodes a list of raw configuration entries in order.
func DecodeAll(raws []map[string]any) ([]Check, error) {
	checks := make([]Check, 0, len(raws))
	for i, raw := range raws {
		check, err := Decode(raw)
		if err != nil {
			return nil, fmt.Errorf("checks[%d]: %w", i, err)
		}
		checks = append(checks, check)
	}
	return checks, nil
}

// Apply runs checks against v in order.
func Apply(v *Validator, checks []Check) {
	for _, c := range checks {
		c.Apply(v)
	}
}

// decodeParams decodes params into out, rejecting unknown keys.
func decodeParams(params map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return err
	}
	return dec.Decode(params)
}

func validThreshold(t float64) error {
	if t < 0 || t > 1 {
		return fmt.Errorf("threshold %v must be a fraction in [0, 1]", t)
	}
	return nil
}

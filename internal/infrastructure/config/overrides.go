package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// ErrUnknownConfigKey reports a key that does not map onto any Config
// field. A misspelled option must fail loudly instead of silently falling
// back to its default.
var ErrUnknownConfigKey = errors.New("unknown config key")

// ApplyJSON merges a JSON document of overrides into cfg. Only the keys the
// document mentions change; everything else keeps its current value. The
// document uses the same group/key names as the config file, and any
// unknown key fails with ErrUnknownConfigKey.
func ApplyJSON(cfg *Config, doc []byte) error {
	var settings map[string]any
	if err := json.Unmarshal(doc, &settings); err != nil {
		return fmt.Errorf("failed to parse config overrides: %w", err)
	}
	return decodeStrict(settings, cfg)
}

// decodeStrict decodes settings into cfg and rejects unused keys.
func decodeStrict(settings map[string]any, cfg *Config) error {
	var md mapstructure.Metadata
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Metadata:         &md,
		Result:           cfg,
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return fmt.Errorf("failed to build config decoder: %w", err)
	}
	if err := dec.Decode(settings); err != nil {
		return fmt.Errorf("failed to decode config: %w", err)
	}
	if len(md.Unused) > 0 {
		sort.Strings(md.Unused)
		return fmt.Errorf("%w: %s", ErrUnknownConfigKey, strings.Join(md.Unused, ", "))
	}
	return nil
}

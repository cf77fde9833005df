package config

import (
	"errors"
	"io/fs"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	ErrNoSources  = errors.New("config: no sources provided")
	ErrNotFound   = errors.New("config: file not found")
	ErrRead       = errors.New("config: failed to read file")
	ErrParse      = errors.New("config: failed to parse yaml")
	ErrDecode     = errors.New("config: failed to decode into target")
	ErrValidation = errors.New("config: validation failed")
)

// Validatable is implemented by config types that validate themselves
// after loading.
type Validatable interface {
	Validate() error
}

// Source is one layer of configuration. Layers load in the order given
// to Load; later layers override earlier ones.
type Source struct {
	path     string
	optional bool
}

// Required names a file that must exist. Load fails with ErrNotFound
// if it is missing.
func Required(path string) Source {
	return Source{path: path}
}

// Optional names a file that may be absent, for environment-specific
// overrides (config.local.yaml and the like).
func Optional(path string) Source {
	return Source{path: path, optional: true}
}

// Load reads the sources in order, substitutes environment variables,
// deep-merges the layers, and decodes the result into dst. Mappings
// merge key by key; scalars and sequences from later layers replace
// earlier values entirely.
//
// If dst implements Validatable, Validate runs after decoding and a
// failure surfaces as ErrValidation.
//
// When every source is optional and none exists, dst is left at its
// zero value and Load returns nil.
func Load(dst any, sources ...Source) error {
	if len(sources) == 0 {
		return ErrNoSources
	}

	merged := map[string]any{}
	for _, src := range sources {
		data, err := os.ReadFile(src.path)
		if err != nil {
			if src.optional && errors.Is(err, fs.ErrNotExist) {
				continue
			}
			if errors.Is(err, fs.ErrNotExist) {
				return errors.Join(ErrNotFound, err)
			}
			return errors.Join(ErrRead, err)
		}

		var layer map[string]any
		if err := yaml.Unmarshal([]byte(expandEnv(string(data))), &layer); err != nil {
			return errors.Join(ErrParse, err)
		}
		merged = merge(merged, layer)
	}

	// Round-trip through yaml so dst's own tags and types apply.
	out, err := yaml.Marshal(merged)
	if err != nil {
		return errors.Join(ErrDecode, err)
	}
	if err := yaml.Unmarshal(out, dst); err != nil {
		return errors.Join(ErrDecode, err)
	}

	if v, ok := dst.(Validatable); ok {
		if err := v.Validate(); err != nil {
			return errors.Join(ErrValidation, err)
		}
	}
	return nil
}

// merge folds src into dst. Nested mappings merge recursively; any
// other value from src replaces what dst had.
func merge(dst, src map[string]any) map[string]any {
	if dst == nil {
		return src
	}
	for k, v := range src {
		if sm, ok := v.(map[string]any); ok {
			if dm, ok := dst[k].(map[string]any); ok {
				dst[k] = merge(dm, sm)
				continue
			}
		}
		dst[k] = v
	}
	return dst
}

// envVarPattern matches ${VAR} and ${VAR:-default}.
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandEnv substitutes ${VAR} and ${VAR:-default} references with
// environment values. An unset variable without a default expands to
// the empty string. "$$" escapes a literal dollar sign.
func expandEnv(content string) string {
	const escaped = "\x00escaped-dollar\x00"
	content = strings.ReplaceAll(content, "$$", escaped)

	content = envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		parts := envVarPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}
		if value, ok := os.LookupEnv(parts[1]); ok {
			return value
		}
		if len(parts) >= 3 {
			return parts[2]
		}
		return ""
	})

	return strings.ReplaceAll(content, escaped, "$")
}

package file

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/harvester/internal/core/domain"
)

// Reserved top-level keys describing the source rather than its parameters.
const (
	KeyName    = "name"
	KeyService = "service"
)

// Format is the syntax of a run file.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// FormatFor picks the format from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", &domain.ConfigError{
			Param:  "config",
			Reason: fmt.Sprintf("unrecognised file extension %q", filepath.Ext(path)),
			Err:    domain.ErrUnsupportedType,
		}
	}
}

// Load reads a run file into a Source. The source name defaults to the file
// name without extension.
func Load(path string) (domain.Source, error) {
	format, err := FormatFor(path)
	if err != nil {
		return domain.Source{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Source{}, &domain.ConfigError{Param: "config", Reason: "read " + path, Err: err}
	}

	src, err := Parse(data, format)
	if err != nil {
		return domain.Source{}, err
	}
	if src.Name == "" {
		src.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return src, nil
}

// Parse decodes run file contents into a Source.
func Parse(data []byte, format Format) (domain.Source, error) {
	var loaded map[string]any
	var err error
	switch format {
	case FormatTOML:
		err = toml.Unmarshal(data, &loaded)
	case FormatYAML:
		err = yaml.Unmarshal(data, &loaded)
	default:
		err = fmt.Errorf("%w: format %q", domain.ErrUnsupportedType, format)
	}
	if err != nil {
		return domain.Source{}, &domain.ConfigError{Param: "config", Reason: "decode " + string(format), Err: err}
	}

	params := flattenMap(loaded, "")
	src := domain.Source{
		Name:    params[KeyName],
		Service: domain.Service(params[KeyService]),
	}
	delete(params, KeyName)
	delete(params, KeyService)
	src.Config = params
	return src, nil
}

// flattenMap converts nested maps to dot-notation keys.
// E.g., {"a": {"b": 1}} becomes {"a.b": "1"}.
func flattenMap(m map[string]any, prefix string) map[string]string {
	result := make(map[string]string)

	for key, value := range m {
		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}

		switch nested := value.(type) {
		case map[string]any:
			for k, v := range flattenMap(nested, fullKey) {
				result[k] = v
			}
		case map[any]any:
			converted := make(map[string]any, len(nested))
			for k, v := range nested {
				converted[fmt.Sprint(k)] = v
			}
			for k, v := range flattenMap(converted, fullKey) {
				result[k] = v
			}
		default:
			result[fullKey] = scalar(value)
		}
	}

	return result
}

// scalar renders a decoded value as a parameter string.
func scalar(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case []any:
		parts := make([]string, 0, len(x))
		for _, item := range x {
			parts = append(parts, scalar(item))
		}
		return strings.Join(parts, "\n")
	case []string:
		return strings.Join(x, "\n")
	default:
		return fmt.Sprint(x)
	}
}

// Keys returns the parameter names of a source in sorted order.
func Keys(src domain.Source) []string {
	keys := make([]string, 0, len(src.Config))
	for k := range src.Config {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

package sheet

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

func loadTOML(file string) ([]Definition, error) {
	var raw map[string]any
	md, err := toml.DecodeFile(file, &raw)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse TOML file %s: %w", ErrInvalidSheet, file, err)
	}

	var defs []Definition
	for _, key := range md.Keys() {
		if len(key) != 1 {
			// Nested keys only exist below a table, which is rejected below.
			continue
		}
		name := key[0]
		if err := validName(file, name); err != nil {
			return nil, err
		}
		expression, err := tomlExpression(raw[name])
		if err != nil {
			return nil, fmt.Errorf("%w: %s: key %q: %w", ErrInvalidSheet, file, name, err)
		}
		defs = append(defs, Definition{
			Name:       name,
			Expression: expression,
			Source:     fmt.Sprintf("%s:%s", file, name),
		})
	}
	return defs, nil
}

// tomlExpression converts a decoded TOML value into expression text.
func tomlExpression(v any) (string, error) {
	switch val := v.(type) {
	case string:
		if strings.TrimSpace(val) == "" {
			return "", fmt.Errorf("empty expression")
		}
		return val, nil
	case int64:
		return strconv.FormatInt(val, 10), nil
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return "", fmt.Errorf("%v is not a finite number", val)
		}
		return strconv.FormatFloat(val, 'f', -1, 64), nil
	default:
		return "", fmt.Errorf("unsupported value of type %T, want a string or a number", v)
	}
}

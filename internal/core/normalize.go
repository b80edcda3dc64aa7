package core

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// normalizeLanguageCode reduces a detection reply to its first token with
// everything outside a-z removed. The result may be empty.
func normalizeLanguageCode(reply string) string {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(reply)))
	if len(fields) == 0 {
		return ""
	}
	return strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' {
			return r
		}
		return -1
	}, fields[0])
}

type definition struct {
	Definition   string
	PartOfSpeech string
	Examples     string
}

// parseDefinition decodes the model's JSON object reply. Anything that is
// not a JSON object is ErrMalformedDefinition.
func parseDefinition(reply string) (definition, error) {
	var fields map[string]any
	if err := json.Unmarshal([]byte(reply), &fields); err != nil {
		return definition{}, fmt.Errorf("%w: %v", ErrMalformedDefinition, err)
	}
	if fields == nil {
		return definition{}, fmt.Errorf("%w: reply is null", ErrMalformedDefinition)
	}

	return definition{
		Definition:   coerceField(fields["definition"]),
		PartOfSpeech: coerceField(fields["partOfSpeech"]),
		Examples:     coerceField(fields["examples"]),
	}, nil
}

// coerceField flattens a top-level reply value to text. Falsy values
// (null, false, 0, "") become empty; arrays are joined with ". ".
func coerceField(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case bool:
		if val {
			return "true"
		}
		return ""
	case float64:
		if val == 0 {
			return ""
		}
		return formatNumber(val)
	case []any:
		return joinElements(val, ". ")
	default:
		return elementString(v)
	}
}

func joinElements(values []any, sep string) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = elementString(v)
	}
	return strings.Join(parts, sep)
}

func elementString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return formatNumber(val)
	case []any:
		return joinElements(val, ",")
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	}
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

package tools

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"stockpulse/pkg/errors"
)

// objectSchema builds a JSON schema for an object with the given
// properties and required keys.
func objectSchema(props map[string]interface{}, required ...string) map[string]interface{} {
	schema := map[string]interface{}{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func stringProp(description string) map[string]interface{} {
	return map[string]interface{}{"type": "string", "description": description}
}

func numberProp(description string) map[string]interface{} {
	return map[string]interface{}{"type": "number", "description": description}
}

func stringArrayProp(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "array",
		"items":       map[string]interface{}{"type": "string"},
		"description": description,
	}
}

// validateArgs checks model-provided arguments against the tool's
// declared schema: required keys present, basic types matching. The
// model is an untrusted caller, so malformed arguments come back as
// ErrInvalidInput rather than panics deeper down.
func validateArgs(def Definition, args map[string]interface{}) error {
	schema := def.Parameters
	if schema == nil {
		return nil
	}

	if required, ok := schema["required"].([]string); ok {
		for _, key := range required {
			if _, present := args[key]; !present {
				return errors.NewValidationError(key, "required argument is missing", nil)
			}
		}
	}

	props, ok := schema["properties"].(map[string]interface{})
	if !ok {
		return nil
	}
	for key, raw := range args {
		propSchema, known := props[key].(map[string]interface{})
		if !known {
			continue
		}
		if err := checkType(key, propSchema, raw); err != nil {
			return err
		}
	}
	return nil
}

func checkType(key string, propSchema map[string]interface{}, value interface{}) error {
	if value == nil {
		return nil
	}
	switch propSchema["type"] {
	case "string":
		if _, ok := value.(string); !ok {
			return errors.NewValidationError(key, "must be a string", value)
		}
	case "number":
		switch value.(type) {
		case float64, int, int64, json.Number, string:
		default:
			return errors.NewValidationError(key, "must be a number", value)
		}
	case "array":
		if _, ok := value.([]interface{}); !ok {
			return errors.NewValidationError(key, "must be an array", value)
		}
	}
	return nil
}

// stringArg extracts a required string argument
func stringArg(args map[string]interface{}, key string) (string, error) {
	raw, ok := args[key]
	if !ok {
		return "", errors.NewValidationError(key, "required argument is missing", nil)
	}
	s, ok := raw.(string)
	if !ok || s == "" {
		return "", errors.NewValidationError(key, "must be a non-empty string", raw)
	}
	return s, nil
}

// decimalArg extracts a numeric argument as a decimal. The model may
// send numbers as JSON numbers or strings; both are accepted.
func decimalArg(args map[string]interface{}, key string) (decimal.Decimal, error) {
	raw, ok := args[key]
	if !ok {
		return decimal.Zero, errors.NewValidationError(key, "required argument is missing", nil)
	}
	return toDecimal(key, raw)
}

// optionalDecimalArg extracts a numeric argument if present
func optionalDecimalArg(args map[string]interface{}, key string) (*decimal.Decimal, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return nil, nil
	}
	d, err := toDecimal(key, raw)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func toDecimal(key string, raw interface{}) (decimal.Decimal, error) {
	switch v := raw.(type) {
	case float64:
		return decimal.NewFromFloat(v), nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case json.Number:
		d, err := decimal.NewFromString(v.String())
		if err != nil {
			return decimal.Zero, errors.NewValidationError(key, "must be a number", raw)
		}
		return d, nil
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return decimal.Zero, errors.NewValidationError(key, "must be a number", raw)
		}
		return d, nil
	default:
		return decimal.Zero, errors.NewValidationError(key, fmt.Sprintf("unsupported type %T", raw), raw)
	}
}

// symbolsArg extracts a required non-empty list of ticker symbols,
// normalized and deduplicated in input order.
func symbolsArg(args map[string]interface{}, key string) ([]string, error) {
	raw, ok := args[key]
	if !ok {
		return nil, errors.NewValidationError(key, "required argument is missing", nil)
	}

	var items []interface{}
	switch v := raw.(type) {
	case []interface{}:
		items = v
	case string:
		// A single bare symbol is tolerated
		items = []interface{}{v}
	default:
		return nil, errors.NewValidationError(key, "must be an array of strings", raw)
	}

	seen := make(map[string]bool, len(items))
	symbols := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, errors.NewValidationError(key, "must contain only strings", item)
		}
		symbol := NormalizeSymbol(s)
		if symbol == "" || seen[symbol] {
			continue
		}
		seen[symbol] = true
		symbols = append(symbols, symbol)
	}
	if len(symbols) == 0 {
		return nil, errors.NewValidationError(key, "must contain at least one symbol", raw)
	}
	return symbols, nil
}

// symbolArg extracts and normalizes a single required ticker symbol
func symbolArg(args map[string]interface{}) (string, error) {
	s, err := stringArg(args, "symbol")
	if err != nil {
		return "", err
	}
	symbol := NormalizeSymbol(s)
	if symbol == "" {
		return "", errors.NewValidationError("symbol", "must be a non-empty symbol", s)
	}
	return symbol, nil
}

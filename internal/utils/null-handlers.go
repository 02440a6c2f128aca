package utils

import (
	"strconv"
	"strings"
	"time"
)

func GetStringValueOrNil(row map[string]interface{}, key string) *string {
	if val, ok := row[key]; ok {
		if strVal, ok := val.(string); ok {
			return &strVal
		}
	}
	return nil
}

func GetDefaultValue(row map[string]interface{}, key string, defaultType string) interface{} {
	if val, ok := row[key]; ok {
		switch defaultType {
		case "string":
			if v, ok := val.(string); ok && v != "" {
				return strings.TrimSpace(v)
			}
			if v, ok := val.(float64); ok {
				return strconv.FormatFloat(v, 'f', -1, 64)
			}
			return ""
		case "float64":
			if strVal, ok := val.(string); ok {
				strVal = strings.TrimSpace(strVal)
				strVal = strings.ReplaceAll(strVal, ",", "")

				if floatVal, err := strconv.ParseFloat(strVal, 64); err == nil {
					return floatVal
				}
			}
			if v, ok := val.(float64); ok {
				return v
			}
			if v, ok := val.(int64); ok {
				return float64(v)
			}
			return 0.0
		case "int64":
			if v, ok := val.(int64); ok {
				return v
			}
			if v, ok := val.(float64); ok {
				return int64(v)
			}
			return int64(0)
		case "datetime":
			if v, ok := val.(time.Time); ok {
				return v
			}
			if strVal, ok := val.(string); ok {
				if parsed, err := ParseDate(strings.TrimSpace(strVal)); err == nil {
					return parsed
				}
			}
			return time.Time{}
		default:
			return nil
		}
	}

	switch defaultType {
	case "string":
		return ""
	case "float64":
		return 0.0
	case "int64":
		return int64(0)
	case "datetime":
		return time.Time{}
	default:
		return nil
	}
}

func NullHandler(input *string) string {
	if input == nil {
		return ""
	}
	return *input
}

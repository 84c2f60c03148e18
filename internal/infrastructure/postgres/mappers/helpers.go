package mappers

import (
	"encoding/json"

	"gorm.io/datatypes"
)

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func apiStatus(code int) *int16 {
	if code == 0 {
		return nil
	}
	v := int16(code)
	return &v
}

func fromAPIStatus(code *int16) int {
	if code == nil {
		return 0
	}
	return int(*code)
}

func toJSON(raw json.RawMessage) datatypes.JSON {
	if len(raw) == 0 {
		return nil
	}
	return datatypes.JSON(raw)
}

func fromJSON(j datatypes.JSON) json.RawMessage {
	if len(j) == 0 {
		return nil
	}
	return json.RawMessage(j)
}

func toJSONMap(m map[string]any) datatypes.JSONMap {
	if m == nil {
		return nil
	}
	return datatypes.JSONMap(m)
}

func fromJSONMap(m datatypes.JSONMap) map[string]any {
	if m == nil {
		return nil
	}
	return map[string]any(m)
}

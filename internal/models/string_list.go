package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// StringList stores list-valued profile fields as a JSON array in a text column.
// It always marshals as an array, never null.
type StringList []string

// Value implements driver.Valuer.
func (s StringList) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	data, err := json.Marshal([]string(s))
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner. Legacy rows holding a bare string decode as a one-element list.
func (s *StringList) Scan(src interface{}) error {
	var raw string
	switch v := src.(type) {
	case nil:
		*s = StringList{}
		return nil
	case []byte:
		raw = string(v)
	case string:
		raw = v
	default:
		return fmt.Errorf("cannot scan %T into StringList", src)
	}

	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		*s = StringList{}
		return nil
	}
	if !strings.HasPrefix(trimmed, "[") {
		*s = StringList{trimmed}
		return nil
	}

	var values []string
	if err := json.Unmarshal([]byte(trimmed), &values); err != nil {
		return fmt.Errorf("cannot decode StringList: %w", err)
	}
	if values == nil {
		values = []string{}
	}
	*s = values
	return nil
}

// MarshalJSON keeps an unset list as [] in responses.
func (s StringList) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(s))
}

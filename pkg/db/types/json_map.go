package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONMap stores an open string-keyed document in a jsonb column.
type JSONMap map[string]any

// Value implements driver.Valuer.
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner.
func (m *JSONMap) Scan(src any) error {
	if src == nil {
		*m = JSONMap{}
		return nil
	}

	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported jsonb source %T", src)
	}

	if len(raw) == 0 {
		*m = JSONMap{}
		return nil
	}

	decoded := map[string]any{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return fmt.Errorf("decoding jsonb: %w", err)
	}
	*m = decoded
	return nil
}

// GormDataType tells GORM which column type to use.
func (JSONMap) GormDataType() string {
	return "jsonb"
}

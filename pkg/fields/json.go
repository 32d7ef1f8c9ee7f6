package fields

import (
	"bytes"
	"encoding/json"

	"github.com/goccy/go-yaml"
)

// RecordJSON encodes a record as a JSON object with its keys in record
// order. Nested ordered maps keep their order too.
func RecordJSON(rec Record) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, rec); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeJSON(buf *bytes.Buffer, v any) error {
	switch x := v.(type) {
	case yaml.MapSlice:
		buf.WriteByte('{')
		for i, item := range x {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(Key(item.Key))
			if err != nil {
				return err
			}
			buf.Write(key)
			buf.WriteByte(':')
			if err := writeJSON(buf, item.Value); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case []any:
		buf.WriteByte('[')
		for i, elem := range x {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSON(buf, elem); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	default:
		raw, err := json.Marshal(x)
		if err != nil {
			return err
		}
		buf.Write(raw)
	}
	return nil
}

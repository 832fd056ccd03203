package knowledge

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Metadata is the free-form chunk attribute mapping. It behaves like
// datatypes.JSONMap but decodes numbers as json.Number, so integers keep
// their exact value and are never turned into float64. Every number reads
// back as json.Number: a stored Metadata{"page": 3} scans as
// Metadata{"page": json.Number("3")}. A nil map is stored as SQL NULL.
type Metadata map[string]interface{}

func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	b, err := json.Marshal(map[string]interface{}(m))
	return string(b), err
}

func (m *Metadata) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*m = nil
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("metadata: unsupported scan type %T", value)
	}
	decoded, err := DecodeMetadata(raw)
	if err != nil {
		return err
	}
	*m = decoded
	return nil
}

// DecodeMetadata parses a JSON object preserving number literals.
func DecodeMetadata(raw []byte) (Metadata, error) {
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var out map[string]interface{}
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("metadata: %w", err)
	}
	return Metadata(out), nil
}

func (Metadata) GormDataType() string { return "jsonmap" }

func (Metadata) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	switch db.Dialector.Name() {
	case "postgres":
		return "JSONB"
	default:
		return "JSON"
	}
}

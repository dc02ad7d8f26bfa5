package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	pgvector "github.com/pgvector/pgvector-go"
)

// JSONBMap is a string map stored as JSONB
type JSONBMap map[string]string

// Value implements the driver.Valuer interface
func (m JSONBMap) Value() (driver.Value, error) {
	if len(m) == 0 {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface
func (m *JSONBMap) Scan(value interface{}) error {
	if value == nil {
		*m = JSONBMap{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("unsupported JSONBMap source %T", value)
	}

	return json.Unmarshal(bytes, m)
}

// Document is one recipe record from the knowledge base. Content is the
// text that gets embedded; Metadata keeps the original columns.
type Document struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	CreatedAt time.Time       `json:"-"`
	Source    string          `gorm:"size:1024;index;not null" json:"source"`
	Row       int             `gorm:"not null" json:"row"`
	Content   string          `gorm:"type:text;not null" json:"content"`
	Metadata  JSONBMap        `gorm:"type:jsonb" json:"metadata"`
	Embedding pgvector.Vector `gorm:"type:vector" json:"-"`
}

// TableName keeps the table name stable regardless of the struct name
func (Document) TableName() string {
	return "recipe_documents"
}

// DocumentID derives a stable identifier from the source and row so the
// same row maps to the same ID across restarts.
func DocumentID(source string, row int) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(fmt.Sprintf("%s#%d", source, row)))
}

// NewDocument builds a document from one tabular row. Content lists every
// column as "column: value", one per line, in header order.
func NewDocument(source string, row int, header, values []string) Document {
	var b strings.Builder
	meta := make(JSONBMap, len(header))
	for i, col := range header {
		val := ""
		if i < len(values) {
			val = strings.TrimSpace(values[i])
		}
		meta[col] = val
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(col)
		b.WriteString(": ")
		b.WriteString(val)
	}
	return Document{
		ID:       DocumentID(source, row),
		Source:   source,
		Row:      row,
		Content:  b.String(),
		Metadata: meta,
	}
}

package schema

import (
	"github.com/rotisserie/eris"

	"github.com/uls-digital/migrate-cli/internal/tabular"
)

// FieldType classifies the value constraints of a target field.
type FieldType string

const (
	// TypeText is plain text capped at 255 characters.
	TypeText FieldType = "text"
	// TypeString is long text with no length cap.
	TypeString FieldType = "string"
	// TypeInteger holds numeric identifiers; letters are rejected unless
	// the field schema allows them.
	TypeInteger FieldType = "integer"
	// TypeEDTF holds extended date/time expressions.
	TypeEDTF FieldType = "edtf"
	// TypeCoordinates holds a latitude/longitude pair.
	TypeCoordinates FieldType = "coordinates"
)

// Field describes one target field of the destination schema.
type Field struct {
	Name         string
	Type         FieldType
	Repeatable   bool
	Vocabulary   string // vocabulary name, "" when unbound
	AllowLetters bool   // integer fields only: permit alphanumeric ids
}

// LoadFields reads the field schema from a CSV or XLSX file. Expected
// columns: field, type, repeatable, vocabulary, allow_letters.
func LoadFields(path string) (map[string]Field, error) {
	rows, err := tabular.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "schema: load field schema %s", path)
	}

	fields := make(map[string]Field)
	for _, row := range rows.Data {
		f := Field{
			Name:         rows.Get(row, "field"),
			Type:         FieldType(rows.Get(row, "type")),
			Repeatable:   parseBool(rows.Get(row, "repeatable")),
			Vocabulary:   rows.Get(row, "vocabulary"),
			AllowLetters: parseBool(rows.Get(row, "allow_letters")),
		}
		if f.Name == "" {
			continue
		}
		if f.Type == "" {
			f.Type = TypeString
		}
		fields[f.Name] = f
	}
	return fields, nil
}

package normalize

import "strings"

// TitleParts collects the components of a structured title as they arrive
// from separate source fields.
type TitleParts struct {
	NonSort    string
	Title      string
	SubTitle   string
	PartNumber string
	PartName   string
}

// ClassifyTitlePart maps a source field name to the title component it
// carries, based on the component markers used by the source schema.
func ClassifyTitlePart(sourceField string) string {
	switch {
	case strings.Contains(sourceField, "nonSort"):
		return "nonSort"
	case strings.Contains(sourceField, "subTitle"):
		return "subTitle"
	case strings.Contains(sourceField, "partNumber"):
		return "partNumber"
	case strings.Contains(sourceField, "partName"):
		return "partName"
	}
	return "title"
}

// Set stores a component by its classified name.
func (t *TitleParts) Set(part, value string) {
	value = CollapseWhitespace(value)
	switch part {
	case "nonSort":
		t.NonSort = value
	case "subTitle":
		t.SubTitle = value
	case "partNumber":
		t.PartNumber = value
	case "partName":
		t.PartName = value
	default:
		t.Title = value
	}
}

// Empty reports whether no component has been set.
func (t *TitleParts) Empty() bool {
	return t.NonSort == "" && t.Title == "" && t.SubTitle == "" &&
		t.PartNumber == "" && t.PartName == ""
}

// Assemble concatenates the components into a display title:
// "NonSort Title: SubTitle, PartNumber, PartName".
func (t *TitleParts) Assemble() string {
	var b strings.Builder
	if t.NonSort != "" {
		b.WriteString(t.NonSort)
		b.WriteString(" ")
	}
	b.WriteString(t.Title)
	if t.SubTitle != "" {
		b.WriteString(": ")
		b.WriteString(t.SubTitle)
	}
	if t.PartNumber != "" {
		b.WriteString(", ")
		b.WriteString(t.PartNumber)
	}
	if t.PartName != "" {
		b.WriteString(", ")
		b.WriteString(t.PartName)
	}
	return strings.TrimSpace(b.String())
}

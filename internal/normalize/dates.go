package normalize

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/uls-digital/migrate-cli/internal/model"
	"github.com/uls-digital/migrate-cli/internal/tabular"
)

// DateFragment is one point/qualifier date fragment attached to an object,
// typically extracted upstream from MARC control fields or ISO 8601 keyDate
// attributes. Fragments arrive in a companion tabular file keyed by object id.
type DateFragment struct {
	ObjectID     string
	Field        string // target date field
	Encoding     string // source encoding, e.g. "marc" or "iso8601"
	StartYear    string
	StartMonth   string
	StartDay     string
	EndYear      string
	Approximate  bool
	Questionable bool
	Raw          string
}

// yearPattern accepts four digits with optional trailing unspecified-digit
// placeholders, e.g. 1918, 191X, 19XX.
var yearPattern = regexp.MustCompile(`^\d{1,4}X{0,3}$`)

func validYear(y string) bool {
	return len(y) == 4 && yearPattern.MatchString(y)
}

// BuildEDTF converts a date fragment into a single EDTF expression. A
// missing or non-numeric start year is structurally malformed input and
// returns an error; every other defect is left to the validator.
func BuildEDTF(f DateFragment) (string, error) {
	if !validYear(f.StartYear) {
		return "", eris.Errorf("normalize: malformed year %q for object %s", f.StartYear, f.ObjectID)
	}

	expr := f.StartYear
	if f.StartMonth != "" {
		expr += "-" + pad2(f.StartMonth)
		if f.StartDay != "" {
			expr += "-" + pad2(f.StartDay)
		}
	}
	expr += qualifier(f)

	if f.EndYear != "" {
		if !validYear(f.EndYear) {
			return "", eris.Errorf("normalize: malformed end year %q for object %s", f.EndYear, f.ObjectID)
		}
		expr += "/" + f.EndYear + qualifier(f)
	}
	return expr, nil
}

func qualifier(f DateFragment) string {
	switch {
	case f.Approximate && f.Questionable:
		return "%"
	case f.Approximate:
		return "~"
	case f.Questionable:
		return "?"
	}
	return ""
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

// edtfSingle matches a level 0/1 EDTF date: a year with optional unspecified
// digits, optional month and day (which may themselves be unspecified), and
// an optional uncertainty/approximation qualifier.
var edtfSingle = regexp.MustCompile(
	`^-?(\d{4}|\d{3}X|\d{2}XX|\dXXX|XXXX)(-(0[1-9]|1[0-2]|XX)(-(0[1-9]|[12]\d|3[01]|XX))?)?[?~%]?$`)

// ValidEDTF reports whether an expression conforms to the EDTF grammar
// accepted by the destination schema: a single date, or an interval whose
// ends are dates, ".." (open), or empty (unknown).
func ValidEDTF(expr string) bool {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return false
	}
	parts := strings.SplitN(expr, "/", 2)
	if len(parts) == 1 {
		return edtfSingle.MatchString(expr)
	}
	start, end := parts[0], parts[1]
	if start != "" && start != ".." && !edtfSingle.MatchString(start) {
		return false
	}
	if end != "" && end != ".." && !edtfSingle.MatchString(end) {
		return false
	}
	// An interval needs at least one known end.
	return start != "" && start != ".." || end != "" && end != ".."
}

// DateResult carries the normalized date values for one record plus any
// issues raised while building them.
type DateResult struct {
	Values map[string][]string // target field -> EDTF expressions
	Issues []model.ExceptionRecord
}

// NormalizeDates builds EDTF expressions from an object's date fragments,
// grouped by target field. When fragments from more than one source encoding
// describe the same target field, both values are kept and a data-quality
// warning is surfaced rather than guessing a merge precedence.
func NormalizeDates(sourceFile string, fragments []DateFragment) DateResult {
	res := DateResult{Values: make(map[string][]string)}
	encodings := make(map[string]map[string]struct{})

	for _, f := range fragments {
		expr, err := BuildEDTF(f)
		if err != nil {
			res.Issues = append(res.Issues, model.ExceptionRecord{
				SourceFile: sourceFile,
				ObjectID:   f.ObjectID,
				Field:      f.Field,
				Value:      f.Raw,
				Rule:       model.RuleDateFormat,
				Severity:   model.SeverityFatal,
				Message:    err.Error(),
			})
			continue
		}
		res.Values[f.Field] = append(res.Values[f.Field], expr)
		if encodings[f.Field] == nil {
			encodings[f.Field] = make(map[string]struct{})
		}
		if f.Encoding != "" {
			encodings[f.Field][f.Encoding] = struct{}{}
		}
	}

	for field, values := range res.Values {
		res.Values[field] = Dedup(values)
	}

	for _, f := range fragments {
		if len(encodings[f.Field]) > 1 {
			res.Issues = append(res.Issues, model.ExceptionRecord{
				SourceFile: sourceFile,
				ObjectID:   f.ObjectID,
				Field:      f.Field,
				Value:      strings.Join(res.Values[f.Field], "|"),
				Rule:       model.RuleCompetingDates,
				Severity:   model.SeverityAdvisory,
				Message:    fmt.Sprintf("%d independently encoded dates for one logical date", len(res.Values[f.Field])),
			})
			delete(encodings, f.Field)
		}
	}

	return res
}

// LoadFragments reads the companion date-fragment file and groups fragments
// by object id. Expected columns: object_id, field, encoding, start_year,
// start_month, start_day, end_year, approximate, questionable, raw.
func LoadFragments(path string) (map[string][]DateFragment, error) {
	rows, err := tabular.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "normalize: load date fragments %s", path)
	}

	byObject := make(map[string][]DateFragment)
	for _, row := range rows.Data {
		f := DateFragment{
			ObjectID:     rows.Get(row, "object_id"),
			Field:        rows.Get(row, "field"),
			Encoding:     rows.Get(row, "encoding"),
			StartYear:    rows.Get(row, "start_year"),
			StartMonth:   rows.Get(row, "start_month"),
			StartDay:     rows.Get(row, "start_day"),
			EndYear:      rows.Get(row, "end_year"),
			Approximate:  parseFlag(rows.Get(row, "approximate")),
			Questionable: parseFlag(rows.Get(row, "questionable")),
			Raw:          rows.Get(row, "raw"),
		}
		if f.ObjectID == "" || f.Field == "" {
			continue
		}
		byObject[f.ObjectID] = append(byObject[f.ObjectID], f)
	}
	return byObject, nil
}

func parseFlag(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "y", "1":
		return true
	}
	return false
}

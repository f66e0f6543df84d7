package schema

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/unicode/norm"

	"github.com/uls-digital/migrate-cli/internal/tabular"
)

// Term is one entry of a controlled vocabulary.
type Term struct {
	Label     string
	Code      string
	Authority string
}

// Vocabulary is a closed set of terms for one field. Membership tests are
// case-folded, NFC-normalized exact matches against the label set.
type Vocabulary struct {
	Name    string
	byLabel map[string]Term
	byCode  map[string]Term
	terms   []Term
}

// foldKey normalizes a label for lookup: NFC form, trimmed, lower-cased.
func foldKey(s string) string {
	return strings.ToLower(strings.TrimSpace(norm.NFC.String(s)))
}

// NewVocabulary builds a vocabulary from a term list. The first occurrence
// of a duplicated label or code wins.
func NewVocabulary(name string, terms []Term) *Vocabulary {
	v := &Vocabulary{
		Name:    name,
		byLabel: make(map[string]Term),
		byCode:  make(map[string]Term),
	}
	for _, t := range terms {
		if t.Label == "" {
			continue
		}
		v.terms = append(v.terms, t)
		if _, dup := v.byLabel[foldKey(t.Label)]; !dup {
			v.byLabel[foldKey(t.Label)] = t
		}
		if t.Code != "" {
			if _, dup := v.byCode[t.Code]; !dup {
				v.byCode[t.Code] = t
			}
		}
	}
	return v
}

// LoadVocabulary reads a vocabulary term list from a CSV or XLSX file.
// Expected columns: label, code, authority. The vocabulary name is the file
// base name without extension.
func LoadVocabulary(path string) (*Vocabulary, error) {
	rows, err := tabular.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "schema: load vocabulary %s", path)
	}

	var terms []Term
	for _, row := range rows.Data {
		terms = append(terms, Term{
			Label:     rows.Get(row, "label"),
			Code:      rows.Get(row, "code"),
			Authority: rows.Get(row, "authority"),
		})
	}
	base := filepath.Base(path)
	return NewVocabulary(strings.TrimSuffix(base, filepath.Ext(base)), terms), nil
}

// Contains reports vocabulary membership for a label.
func (v *Vocabulary) Contains(label string) bool {
	_, ok := v.byLabel[foldKey(label)]
	return ok
}

// LookupLabel returns the term for a label.
func (v *Vocabulary) LookupLabel(label string) (Term, bool) {
	t, ok := v.byLabel[foldKey(label)]
	return t, ok
}

// LookupCode returns the term for a code. Used for code-to-label value
// translation (language, country, rights URIs).
func (v *Vocabulary) LookupCode(code string) (Term, bool) {
	t, ok := v.byCode[strings.TrimSpace(code)]
	return t, ok
}

// Terms returns the term list in file order.
func (v *Vocabulary) Terms() []Term { return v.terms }

// LoadVocabularyDir loads every .csv and .xlsx file in a directory as a
// vocabulary keyed by file base name.
func LoadVocabularyDir(dir string) (map[string]*Vocabulary, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, eris.Wrapf(err, "schema: read vocabulary dir %s", dir)
	}

	vocabs := make(map[string]*Vocabulary)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".csv", ".xlsx":
		default:
			continue
		}
		v, err := LoadVocabulary(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		vocabs[v.Name] = v
	}
	return vocabs, nil
}

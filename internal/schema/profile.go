package schema

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Profile is the migration profile: per-model required fields, inherited
// fields, strictness, collection ordering, and identifier namespaces.
type Profile struct {
	// RequiredFields maps an object model to its required target fields.
	// The "default" key applies to models without their own entry.
	RequiredFields map[string][]string `yaml:"required_fields"`

	// InheritedFields are copied from a resolved parent onto descendants
	// that lack their own value. A child's explicit value is never
	// overwritten.
	InheritedFields []string `yaml:"inherited_fields"`

	// StrictVocabularies lists vocabulary-bound fields whose membership
	// violations are fatal rather than advisory.
	StrictVocabularies []string `yaml:"strict_vocabularies"`

	// TitleFields are assembled from title parts rather than added directly.
	TitleFields []string `yaml:"title_fields"`

	// DateFields hold EDTF expressions built from date fragments.
	DateFields []string `yaml:"date_fields"`

	// HoldCollections are input files processed after all others.
	HoldCollections []string `yaml:"hold_collections"`

	// IgnoreCollections are input files dropped from a batch entirely.
	IgnoreCollections []string `yaml:"ignore_collections"`

	// NamespacePrefixes are repository-internal prefixes stripped from
	// object and parent identifiers, e.g. "info:fedora/".
	NamespacePrefixes []string `yaml:"namespace_prefixes"`

	// RootObjects are parent references discarded rather than linked.
	RootObjects []string `yaml:"root_objects"`
}

// LoadProfile reads the migration profile from a YAML file.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "schema: read profile %s", path)
	}
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, eris.Wrapf(err, "schema: parse profile %s", path)
	}
	if p.RequiredFields == nil {
		p.RequiredFields = map[string][]string{}
	}
	return &p, nil
}

// RequiredFor returns the required fields for an object model, falling back
// to the default set.
func (p *Profile) RequiredFor(objectModel string) []string {
	if fields, ok := p.RequiredFields[objectModel]; ok {
		return fields
	}
	return p.RequiredFields["default"]
}

// Strict reports whether vocabulary violations on a field are fatal.
func (p *Profile) Strict(field string) bool {
	for _, f := range p.StrictVocabularies {
		if f == field {
			return true
		}
	}
	return false
}

// Inherited reports whether a field propagates from parent to child.
func (p *Profile) Inherited(field string) bool {
	for _, f := range p.InheritedFields {
		if f == field {
			return true
		}
	}
	return false
}

// IsTitleField reports whether a target field is assembled from title parts.
func (p *Profile) IsTitleField(field string) bool {
	for _, f := range p.TitleFields {
		if f == field {
			return true
		}
	}
	return false
}

// IsDateField reports whether a target field holds EDTF expressions.
func (p *Profile) IsDateField(field string) bool {
	for _, f := range p.DateFields {
		if f == field {
			return true
		}
	}
	return false
}

// IsRootObject reports whether a parent reference points at a repository
// root placeholder.
func (p *Profile) IsRootObject(id string) bool {
	for _, r := range p.RootObjects {
		if r == id {
			return true
		}
	}
	return false
}

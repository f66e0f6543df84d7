package schema

import (
	"github.com/uls-digital/migrate-cli/internal/config"
)

// Store aggregates everything loaded at startup: mapping tables, field
// schema, controlled vocabularies, and the migration profile. It is built
// once and passed explicitly to each pipeline component; nothing in it
// mutates after Load returns.
type Store struct {
	Resolver     *Resolver
	Fields       map[string]Field
	Vocabularies map[string]*Vocabulary
	Profile      *Profile
	Remediations *RemediationTable // optional, nil when unconfigured
}

// Load builds the schema store from the configured input paths.
func Load(cfg config.SchemaConfig) (*Store, error) {
	tables := make([]*Table, 0, len(cfg.MappingTables))
	for _, path := range cfg.MappingTables {
		t, err := LoadTable(path)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}

	fields, err := LoadFields(cfg.FieldSchema)
	if err != nil {
		return nil, err
	}

	vocabs, err := LoadVocabularyDir(cfg.VocabularyDir)
	if err != nil {
		return nil, err
	}

	profile, err := LoadProfile(cfg.Profile)
	if err != nil {
		return nil, err
	}

	var remediations *RemediationTable
	if cfg.RemediationTable != "" {
		if remediations, err = LoadRemediations(cfg.RemediationTable); err != nil {
			return nil, err
		}
	}

	return &Store{
		Resolver:     NewResolver(tables...),
		Fields:       fields,
		Vocabularies: vocabs,
		Profile:      profile,
		Remediations: remediations,
	}, nil
}

// VocabularyFor returns the vocabulary bound to a target field, or nil when
// the field is unbound or the vocabulary was not loaded.
func (s *Store) VocabularyFor(field string) *Vocabulary {
	f, ok := s.Fields[field]
	if !ok || f.Vocabulary == "" {
		return nil
	}
	return s.Vocabularies[f.Vocabulary]
}

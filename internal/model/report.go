package model

// Validation and normalization rule identifiers used in exception reports.
const (
	RuleRequiredField        = "required-field"
	RuleVocabularyMembership = "vocabulary-membership"
	RuleDateFormat           = "date-format"
	RuleCoordinateFormat     = "coordinate-format"
	RuleTypeCompliance       = "type-compliance"
	RuleUnresolvedParent     = "unresolved-parent"
	RuleCompetingDates       = "competing-date-encodings"
	RuleUnmappedField        = "unmapped-field"
	RuleMalformedRow         = "malformed-row"
)

// Severity classifies an exception. Fatal exceptions exclude the record from
// the ready output; advisory exceptions annotate it.
type Severity string

const (
	SeverityFatal    Severity = "fatal"
	SeverityAdvisory Severity = "advisory"
)

// ExceptionRecord describes a single rule violation found while transforming
// or validating a record. It never mutates the record it describes.
type ExceptionRecord struct {
	SourceFile string   `csv:"source_file"`
	ObjectID   string   `csv:"object_id"`
	Field      string   `csv:"field"`
	Value      string   `csv:"value"`
	Rule       string   `csv:"rule"`
	Severity   Severity `csv:"severity"`
	Message    string   `csv:"message"`
}

// Fatal reports whether the exception excludes its record from the ready set.
func (e ExceptionRecord) Fatal() bool { return e.Severity == SeverityFatal }

// TransformationRecord logs a non-fatal normalization applied to a value,
// kept for audit alongside the exception report.
type TransformationRecord struct {
	SourceFile string `csv:"source_file"`
	ObjectID   string `csv:"object_id"`
	Field      string `csv:"field"`
	OldValue   string `csv:"old_value"`
	NewValue   string `csv:"new_value"`
	Note       string `csv:"note"`
}

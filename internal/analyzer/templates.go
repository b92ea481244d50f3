package analyzer

import (
	"regexp"

	"github.com/srusht-ship-it/Automated-Document-Verif/internal/domain"
)

// FieldRule is one required field of a document template, recognized by a
// presence pattern over the extracted text.
type FieldRule struct {
	Name    string
	Pattern *regexp.Regexp
}

// Template describes what a compliant document of a given type looks like:
// required fields, phrases that usually appear, and keywords used for the
// metadata type-consistency check.
type Template struct {
	RequiredFields []FieldRule
	CommonPhrases  []string
	Keywords       []string
}

var templates = map[domain.DocumentType]Template{
	domain.DocTypeBirthCertificate: {
		RequiredFields: []FieldRule{
			{Name: "name", Pattern: regexp.MustCompile(`(?i)name\s*:?\s*([a-zA-Z\s]+)`)},
			{Name: "date", Pattern: regexp.MustCompile(`(?i)birth\s*:?\s*(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`)},
			{Name: "place", Pattern: regexp.MustCompile(`(?i)place\s*:?\s*([a-zA-Z\s,]+)`)},
		},
		CommonPhrases: []string{"certificate of birth", "born on", "state of", "county of"},
		Keywords:      []string{"birth", "certificate", "born"},
	},
	domain.DocTypeAcademicTranscript: {
		RequiredFields: []FieldRule{
			{Name: "name", Pattern: regexp.MustCompile(`(?i)name\s*:?\s*([a-zA-Z\s]+)`)},
			{Name: "institution", Pattern: regexp.MustCompile(`(?i)(university|college|school)\s*:?\s*([a-zA-Z\s]+)`)},
			{Name: "grade", Pattern: regexp.MustCompile(`(?i)(grade|gpa|marks)\s*:?\s*([A-F]|\d+\.?\d*)`)},
		},
		CommonPhrases: []string{"transcript", "academic record", "grade point average", "credit hours"},
		Keywords:      []string{"transcript", "academic", "grade", "university"},
	},
	domain.DocTypeExperienceCertificate: {
		RequiredFields: []FieldRule{
			{Name: "name", Pattern: regexp.MustCompile(`(?i)name\s*:?\s*([a-zA-Z\s]+)`)},
			{Name: "company", Pattern: regexp.MustCompile(`(?i)(company|organization)\s*:?\s*([a-zA-Z\s]+)`)},
			{Name: "duration", Pattern: regexp.MustCompile(`(?i)(\d+)\s*(year|month)`)},
		},
		CommonPhrases: []string{"employment certificate", "worked as", "from", "to", "salary"},
		Keywords:      []string{"experience", "employment", "work", "company"},
	},
}

// TemplateFor looks up the per-type template. The second return is false for
// unknown or untyped documents; analyzers then produce neutral results
// instead of failing.
func TemplateFor(docType domain.DocumentType) (Template, bool) {
	tpl, ok := templates[docType]
	return tpl, ok
}

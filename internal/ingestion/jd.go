package ingestion

import (
	"fmt"
	"strings"
)

// ValidationError reports bad or contradictory caller input. It is always
// detected before any extraction or LLM call is attempted.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ResolveJobDescription picks exactly one of the two job-description
// sources and produces normalized text. The file and inline text are
// mutually exclusive.
func ResolveJobDescription(file *Upload, text string) (Extracted, error) {
	hasFile := file != nil && len(file.Content) > 0
	hasText := strings.TrimSpace(text) != ""

	switch {
	case !hasFile && !hasText:
		return Extracted{}, &ValidationError{Message: "jd required: provide jd_file or jd_text"}
	case hasFile && hasText:
		return Extracted{}, &ValidationError{Message: "mutually exclusive jd sources: provide only one of jd_file or jd_text"}
	case hasFile:
		ext := file.Ext()
		if !SupportedExtension(ext) {
			return Extracted{}, &ValidationError{Message: fmt.Sprintf("unsupported file type: %s", ext)}
		}
		return Extract(file.Content, ext), nil
	default:
		return Extracted{Text: CleanText(text), Kind: KindInline, OK: true}, nil
	}
}

package pipeline

import (
	"fmt"
	"strings"

	"github.com/jonathan/resume-transformer/internal/prompts"
)

// Section names a required prompt section. Each section is validated
// non-empty before assembly so a missing input cannot silently produce a
// malformed prompt.
type Section string

// Prompt sections used by the phase templates.
const (
	SectionJobDescription Section = "JobDescription"
	SectionResume         Section = "Resume"
	SectionPriorAnalysis  Section = "PriorAnalysis"
	SectionUserAnswers    Section = "UserAnswers"
)

// MissingSectionError reports a prompt section that was empty at build time.
type MissingSectionError struct {
	Section Section
}

func (e *MissingSectionError) Error() string {
	return fmt.Sprintf("prompt section %s must not be empty", e.Section)
}

const promptFile = "pipeline.json"

// buildPrompt validates the named sections and applies them to the template.
func buildPrompt(templateKey string, sections map[Section]string, extra map[string]string) (string, error) {
	data := make(map[string]string, len(sections)+len(extra))
	for section, value := range sections {
		if strings.TrimSpace(value) == "" {
			return "", &MissingSectionError{Section: section}
		}
		data[string(section)] = value
	}
	for key, value := range extra {
		data[key] = value
	}

	tmpl, err := prompts.Get(promptFile, templateKey)
	if err != nil {
		return "", err
	}
	return prompts.Format(tmpl, data), nil
}

// BuildAnalysisPrompt assembles the Phase 1 prompt from the job description
// and resume text.
func BuildAnalysisPrompt(jdText, resumeText string) (string, error) {
	return buildPrompt("analysis_template", map[Section]string{
		SectionJobDescription: jdText,
		SectionResume:         resumeText,
	}, nil)
}

// BuildDraftPrompt assembles the Phase 2 prompt from the job description,
// resume, prior analysis, and user answers. Job title and company are
// optional context.
func BuildDraftPrompt(jdText, resumeText, priorAnalysis, userAnswers, jobTitle, company string) (string, error) {
	return buildPrompt("draft_template", map[Section]string{
		SectionJobDescription: jdText,
		SectionResume:         resumeText,
		SectionPriorAnalysis:  priorAnalysis,
		SectionUserAnswers:    userAnswers,
	}, map[string]string{
		"TargetRole": targetRoleLine(jobTitle, company),
	})
}

func targetRoleLine(jobTitle, company string) string {
	jobTitle = strings.TrimSpace(jobTitle)
	company = strings.TrimSpace(company)
	switch {
	case jobTitle != "" && company != "":
		return fmt.Sprintf("\nTarget role: %s at %s.", jobTitle, company)
	case jobTitle != "":
		return fmt.Sprintf("\nTarget role: %s.", jobTitle)
	case company != "":
		return fmt.Sprintf("\nTarget company: %s.", company)
	default:
		return ""
	}
}

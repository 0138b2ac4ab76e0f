// Package pipeline sequences the three LLM phases: analysis, draft
// transformation, and format normalization. The controller keeps no state
// between HTTP calls; a Context is rebuilt per request from caller input.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jonathan/resume-transformer/internal/llm"
	"github.com/jonathan/resume-transformer/internal/prompts"
)

// Phase labels carried on phase errors so callers can tell which phase failed.
type Phase string

// Pipeline phases, in execution order.
const (
	PhaseAnalysis Phase = "phase 1 (analysis)"
	PhaseDraft    Phase = "phase 2 (draft)"
	PhaseFormat   Phase = "phase 3 (format)"
)

// Context accumulates the inputs and outputs of one in-flight request.
// It is owned by exactly one request and discarded at completion.
type Context struct {
	ResumeText  string
	JDText      string
	JobTitle    string
	Company     string
	Analysis    string
	UserAnswers string
	Draft       string
	Formatted   string
}

// PhaseError wraps a failure with the phase it occurred in. A failing phase
// short-circuits the remaining phases.
type PhaseError struct {
	Phase Phase
	Err   error
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("%s: %v", e.Phase, e.Err)
}

func (e *PhaseError) Unwrap() error {
	return e.Err
}

// Gateway is the slice of the provider registry the controller needs.
type Gateway interface {
	Generate(ctx context.Context, p llm.Provider, model, systemInstruction, userPrompt string) (string, error)
	Configured(p llm.Provider) bool
}

// Controller drives the phase pipeline against a provider gateway.
type Controller struct {
	gateway Gateway
	timeout time.Duration
}

// New creates a Controller. timeout bounds each individual LLM call.
func New(gateway Gateway, timeout time.Duration) *Controller {
	return &Controller{gateway: gateway, timeout: timeout}
}

// Analyze runs Phase 1: strengths, gaps, and clarification questions from
// resume + JD. The result is also stored on pctx.
func (c *Controller) Analyze(ctx context.Context, provider llm.Provider, pctx *Context) (string, error) {
	prompt, err := BuildAnalysisPrompt(pctx.JDText, pctx.ResumeText)
	if err != nil {
		return "", &PhaseError{Phase: PhaseAnalysis, Err: err}
	}

	log.Printf("[pipeline] %s: calling %s", PhaseAnalysis, provider)
	text, err := c.generate(ctx, provider, prompts.MustGet(promptFile, "primary_system"), prompt)
	if err != nil {
		return "", &PhaseError{Phase: PhaseAnalysis, Err: err}
	}

	pctx.Analysis = text
	return text, nil
}

// Transform runs Phase 2 (draft) and chains Phase 3 (format normalization).
// The formatted text is returned; the intermediate draft stays on pctx.
func (c *Controller) Transform(ctx context.Context, provider llm.Provider, pctx *Context) (string, error) {
	prompt, err := BuildDraftPrompt(pctx.JDText, pctx.ResumeText, pctx.Analysis, pctx.UserAnswers, pctx.JobTitle, pctx.Company)
	if err != nil {
		return "", &PhaseError{Phase: PhaseDraft, Err: err}
	}

	log.Printf("[pipeline] %s: calling %s", PhaseDraft, provider)
	draft, err := c.generate(ctx, provider, prompts.MustGet(promptFile, "primary_system"), prompt)
	if err != nil {
		return "", &PhaseError{Phase: PhaseDraft, Err: err}
	}
	pctx.Draft = draft

	formatted, err := c.Format(ctx, provider, pctx)
	if err != nil {
		return "", err
	}
	return formatted, nil
}

// Format runs Phase 3: structural Markdown normalization of the Phase 2
// draft. The raw draft is the entire user prompt; no JD or resume context
// is supplied. Provider selection prefers the low-latency provider when it
// is configured, regardless of the caller's choice for the earlier phases.
func (c *Controller) Format(ctx context.Context, caller llm.Provider, pctx *Context) (string, error) {
	if pctx.Draft == "" {
		return "", &PhaseError{Phase: PhaseFormat, Err: fmt.Errorf("no draft to format")}
	}

	provider := c.formattingProvider(caller)
	log.Printf("[pipeline] %s: calling %s", PhaseFormat, provider)
	text, err := c.generate(ctx, provider, prompts.MustGet(promptFile, "formatting_system"), pctx.Draft)
	if err != nil {
		return "", &PhaseError{Phase: PhaseFormat, Err: err}
	}

	pctx.Formatted = text
	return text, nil
}

// formattingProvider returns the provider used for Phase 3. Groq is the
// low-latency backend and is always preferred when configured; this is a
// fixed policy, not user-configurable per call.
func (c *Controller) formattingProvider(caller llm.Provider) llm.Provider {
	if c.gateway.Configured(llm.ProviderGroq) {
		return llm.ProviderGroq
	}
	return caller
}

// generate issues a single bounded gateway call. No retries.
func (c *Controller) generate(ctx context.Context, provider llm.Provider, systemInstruction, prompt string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	return c.gateway.Generate(ctx, provider, "", systemInstruction, prompt)
}

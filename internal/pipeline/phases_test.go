package pipeline

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-transformer/internal/llm"
)

// recordedCall captures one gateway invocation.
type recordedCall struct {
	Provider llm.Provider
	System   string
	Prompt   string
	Deadline bool
}

// mockGateway scripts gateway responses and records every call.
type mockGateway struct {
	calls      []recordedCall
	responses  []string
	errs       []error
	configured map[llm.Provider]bool
}

func (m *mockGateway) Generate(ctx context.Context, p llm.Provider, _ string, systemInstruction, userPrompt string) (string, error) {
	_, hasDeadline := ctx.Deadline()
	m.calls = append(m.calls, recordedCall{Provider: p, System: systemInstruction, Prompt: userPrompt, Deadline: hasDeadline})

	idx := len(m.calls) - 1
	if idx < len(m.errs) && m.errs[idx] != nil {
		return "", m.errs[idx]
	}
	if idx < len(m.responses) {
		return m.responses[idx], nil
	}
	return "response", nil
}

func (m *mockGateway) Configured(p llm.Provider) bool {
	return m.configured[p]
}

func bothConfigured() map[llm.Provider]bool {
	return map[llm.Provider]bool{llm.ProviderGemini: true, llm.ProviderGroq: true}
}

func sampleContext() *Context {
	return &Context{
		ResumeText:  "John Doe\nSoftware Engineer\n- Built X",
		JDText:      "Looking for a backend engineer with Python and SQL",
		Analysis:    "Strengths\n- solid\nGaps/Clarification Questions\n- any SQL?",
		UserAnswers: "I used SQL daily at my last job",
	}
}

func TestAnalyze_PromptContract(t *testing.T) {
	gw := &mockGateway{responses: []string{"Strengths\n...\nGaps/Clarification Questions\n..."}, configured: bothConfigured()}
	c := New(gw, time.Minute)

	pctx := sampleContext()
	out, err := c.Analyze(context.Background(), llm.ProviderGroq, pctx)
	require.NoError(t, err)

	require.Len(t, gw.calls, 1)
	call := gw.calls[0]
	assert.Equal(t, llm.ProviderGroq, call.Provider)
	assert.True(t, call.Deadline, "LLM call must carry a bounded deadline")
	assert.Contains(t, call.System, "career coach")

	// Inputs embedded verbatim between the delimiter markers.
	assert.Contains(t, call.Prompt, "[JOB DESCRIPTION START]\nLooking for a backend engineer with Python and SQL\n[JOB DESCRIPTION END]")
	assert.Contains(t, call.Prompt, "[ORIGINAL RESUME START]\nJohn Doe\nSoftware Engineer\n- Built X\n[ORIGINAL RESUME END]")

	assert.Equal(t, out, pctx.Analysis)
}

func TestAnalyze_MissingResume_NoGatewayCall(t *testing.T) {
	gw := &mockGateway{configured: bothConfigured()}
	c := New(gw, time.Minute)

	pctx := sampleContext()
	pctx.ResumeText = "   "

	_, err := c.Analyze(context.Background(), llm.ProviderGemini, pctx)

	var phaseErr *PhaseError
	require.ErrorAs(t, err, &phaseErr)
	assert.Equal(t, PhaseAnalysis, phaseErr.Phase)

	var missing *MissingSectionError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, SectionResume, missing.Section)

	assert.Empty(t, gw.calls, "validation must fail before any LLM spend")
}

func TestTransform_ChainsDraftAndFormat(t *testing.T) {
	gw := &mockGateway{
		responses:  []string{"raw draft content", "## Formatted\n- Built X"},
		configured: bothConfigured(),
	}
	c := New(gw, time.Minute)

	pctx := sampleContext()
	out, err := c.Transform(context.Background(), llm.ProviderGemini, pctx)
	require.NoError(t, err)

	require.Len(t, gw.calls, 2)

	draftCall := gw.calls[0]
	assert.Equal(t, llm.ProviderGemini, draftCall.Provider)
	assert.Contains(t, draftCall.System, "career coach")
	assert.Contains(t, draftCall.Prompt, "[PHASE 1 ANALYSIS START]")
	assert.Contains(t, draftCall.Prompt, "[USER CLARIFICATIONS START]\nI used SQL daily at my last job\n[USER CLARIFICATIONS END]")

	// Phase 3 runs on the low-latency provider with the draft as the whole prompt.
	formatCall := gw.calls[1]
	assert.Equal(t, llm.ProviderGroq, formatCall.Provider)
	assert.Contains(t, formatCall.System, "Markdown formatting engine")
	assert.Equal(t, "raw draft content", formatCall.Prompt)
	assert.NotContains(t, formatCall.Prompt, "[JOB DESCRIPTION START]")

	assert.Equal(t, "raw draft content", pctx.Draft)
	assert.Equal(t, "## Formatted\n- Built X", out)
	assert.Equal(t, out, pctx.Formatted)
}

func TestTransform_TargetRoleIncludedWhenPresent(t *testing.T) {
	gw := &mockGateway{responses: []string{"draft", "formatted"}, configured: bothConfigured()}
	c := New(gw, time.Minute)

	pctx := sampleContext()
	pctx.JobTitle = "Backend Engineer"
	pctx.Company = "Acme"

	_, err := c.Transform(context.Background(), llm.ProviderGroq, pctx)
	require.NoError(t, err)

	assert.Contains(t, gw.calls[0].Prompt, "Target role: Backend Engineer at Acme.")
}

func TestTransform_FormatFallsBackToCallerProvider(t *testing.T) {
	gw := &mockGateway{
		responses:  []string{"draft", "formatted"},
		configured: map[llm.Provider]bool{llm.ProviderGemini: true},
	}
	c := New(gw, time.Minute)

	_, err := c.Transform(context.Background(), llm.ProviderGemini, sampleContext())
	require.NoError(t, err)

	require.Len(t, gw.calls, 2)
	assert.Equal(t, llm.ProviderGemini, gw.calls[1].Provider)
}

func TestTransform_DraftFailureShortCircuits(t *testing.T) {
	gw := &mockGateway{
		errs:       []error{&llm.UpstreamError{Provider: llm.ProviderGemini, Cause: assert.AnError}},
		configured: bothConfigured(),
	}
	c := New(gw, time.Minute)

	_, err := c.Transform(context.Background(), llm.ProviderGemini, sampleContext())

	var phaseErr *PhaseError
	require.ErrorAs(t, err, &phaseErr)
	assert.Equal(t, PhaseDraft, phaseErr.Phase)

	var upstream *llm.UpstreamError
	assert.ErrorAs(t, err, &upstream)

	assert.Len(t, gw.calls, 1, "phase 3 must not run after a phase 2 failure")
}

func TestTransform_FormatFailureLabeled(t *testing.T) {
	gw := &mockGateway{
		responses:  []string{"draft", ""},
		errs:       []error{nil, &llm.UpstreamError{Provider: llm.ProviderGroq, Cause: assert.AnError}},
		configured: bothConfigured(),
	}
	c := New(gw, time.Minute)

	_, err := c.Transform(context.Background(), llm.ProviderGemini, sampleContext())

	var phaseErr *PhaseError
	require.ErrorAs(t, err, &phaseErr)
	assert.Equal(t, PhaseFormat, phaseErr.Phase)
}

func TestFormat_RequiresDraft(t *testing.T) {
	gw := &mockGateway{configured: bothConfigured()}
	c := New(gw, time.Minute)

	_, err := c.Format(context.Background(), llm.ProviderGroq, &Context{})

	var phaseErr *PhaseError
	require.ErrorAs(t, err, &phaseErr)
	assert.Equal(t, PhaseFormat, phaseErr.Phase)
	assert.Empty(t, gw.calls)
}

// A well-formed draft passed through formatting must keep its structural
// counts: same headings, same bullets.
func TestFormat_PreservesStructureCounts(t *testing.T) {
	draft := "# Experience\n- Built X\n- Shipped Y\n\n# Education\n- BSc Computer Science"
	gw := &mockGateway{responses: []string{draft}, configured: bothConfigured()}
	c := New(gw, time.Minute)

	pctx := &Context{Draft: draft}
	out, err := c.Format(context.Background(), llm.ProviderGroq, pctx)
	require.NoError(t, err)

	assert.Equal(t, countPrefixed(draft, "# "), countPrefixed(out, "# "))
	assert.Equal(t, countPrefixed(draft, "- "), countPrefixed(out, "- "))
}

func countPrefixed(text, prefix string) int {
	count := 0
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), prefix) {
			count++
		}
	}
	return count
}

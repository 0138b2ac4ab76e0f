package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/resume-transformer/internal/ingestion"
	"github.com/jonathan/resume-transformer/internal/llm"
	"github.com/jonathan/resume-transformer/internal/pipeline"
)

// maxUploadMemory is the in-memory threshold for multipart parsing; larger
// parts spool to disk and are removed when the handler returns.
const maxUploadMemory = 32 << 20

var validate = validator.New()

// AnalyzeResponse is the /api/analyze success payload. The extracted texts
// are echoed back because the server is stateless: the caller resupplies
// them on /api/transform.
type AnalyzeResponse struct {
	Status             string `json:"status"`
	Part1Analysis      string `json:"part_1_analysis"`
	OriginalResumeText string `json:"original_resume_text"`
	JobDescriptionText string `json:"job_description_text"`
}

// TransformRequest is the /api/transform form payload.
type TransformRequest struct {
	Provider      string `validate:"required"`
	ResumeText    string `validate:"required"`
	JDText        string `validate:"required"`
	JobTitle      string
	Company       string
	Part1Analysis string `validate:"required"`
	UserAnswers   string `validate:"required"`
}

// TransformResponse is the /api/transform success payload.
type TransformResponse struct {
	Status            string `json:"status"`
	TransformedResume string `json:"transformed_resume"`
}

// handleAnalyze runs Phase 1: multipart form with a resume file and exactly
// one job-description source.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		s.errorResponse(w, &ingestion.ValidationError{Message: "invalid multipart form: " + err.Error()})
		return
	}
	// Release spooled multipart parts on every exit path.
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	provider, err := llm.ParseProvider(r.FormValue("provider"))
	if err != nil {
		s.errorResponse(w, &ingestion.ValidationError{Message: err.Error()})
		return
	}

	resume, err := readUpload(r, "resume")
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	if resume == nil {
		s.errorResponse(w, &ingestion.ValidationError{Message: "resume file is required"})
		return
	}
	if !ingestion.SupportedExtension(resume.Ext()) {
		s.errorResponse(w, &ingestion.ValidationError{Message: fmt.Sprintf("unsupported file type: %s", resume.Ext())})
		return
	}

	jdFile, err := readUpload(r, "jd_file")
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	// All validation happens before any extraction or LLM spend.
	jdResult, err := ingestion.ResolveJobDescription(jdFile, r.FormValue("jd_text"))
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	if !jdResult.OK {
		s.errorResponse(w, &ExtractionError{Document: "job description", Detail: jdResult.ErrorDetail})
		return
	}

	resumeResult := ingestion.Extract(resume.Content, resume.Ext())
	if !resumeResult.OK {
		s.errorResponse(w, &ExtractionError{Document: "resume", Detail: resumeResult.ErrorDetail})
		return
	}

	pctx := &pipeline.Context{
		ResumeText: resumeResult.Text,
		JDText:     jdResult.Text,
	}
	analysis, err := s.controller.Analyze(r.Context(), provider, pctx)
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, AnalyzeResponse{
		Status:             "success",
		Part1Analysis:      analysis,
		OriginalResumeText: resumeResult.Text,
		JobDescriptionText: jdResult.Text,
	})
}

// handleTransform runs Phase 2 chained into Phase 3. The caller resupplies
// everything from the analyze step; nothing is persisted server-side.
func (s *Server) handleTransform(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r); err != nil {
		s.errorResponse(w, &ingestion.ValidationError{Message: "invalid form: " + err.Error()})
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	req := TransformRequest{
		Provider:      r.FormValue("provider"),
		ResumeText:    r.FormValue("resume_text"),
		JDText:        r.FormValue("jd_text"),
		JobTitle:      r.FormValue("job_title"),
		Company:       r.FormValue("company"),
		Part1Analysis: r.FormValue("part_1_analysis"),
		UserAnswers:   r.FormValue("user_answers"),
	}
	if err := validate.Struct(req); err != nil {
		s.errorResponse(w, &ingestion.ValidationError{Message: validationMessage(err)})
		return
	}

	provider, err := llm.ParseProvider(req.Provider)
	if err != nil {
		s.errorResponse(w, &ingestion.ValidationError{Message: err.Error()})
		return
	}

	pctx := &pipeline.Context{
		ResumeText:  req.ResumeText,
		JDText:      req.JDText,
		JobTitle:    req.JobTitle,
		Company:     req.Company,
		Analysis:    req.Part1Analysis,
		UserAnswers: req.UserAnswers,
	}
	formatted, err := s.controller.Transform(r.Context(), provider, pctx)
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, TransformResponse{
		Status:            "success",
		TransformedResume: formatted,
	})
}

// readUpload reads a multipart file field into memory. A missing field is
// not an error; it returns nil so callers can decide whether it was required.
func readUpload(r *http.Request, field string) (*ingestion.Upload, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if err == http.ErrMissingFile {
			return nil, nil
		}
		return nil, &ingestion.ValidationError{Message: fmt.Sprintf("could not read %s upload: %v", field, err)}
	}
	defer func() { _ = file.Close() }()

	content, err := io.ReadAll(file)
	if err != nil {
		return nil, &ingestion.ValidationError{Message: fmt.Sprintf("could not read %s upload: %v", field, err)}
	}
	return &ingestion.Upload{Filename: header.Filename, Content: content}, nil
}

// parseForm accepts both urlencoded and multipart form bodies.
func parseForm(r *http.Request) error {
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		return r.ParseMultipartForm(maxUploadMemory)
	}
	return r.ParseForm()
}

// validationMessage flattens a validator error into a user-facing message
// naming the offending form field.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "invalid request: " + err.Error()
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, formFieldName(fe.Field()))
	}
	return "missing required field(s): " + strings.Join(fields, ", ")
}

func formFieldName(structField string) string {
	switch structField {
	case "Provider":
		return "provider"
	case "ResumeText":
		return "resume_text"
	case "JDText":
		return "jd_text"
	case "Part1Analysis":
		return "part_1_analysis"
	case "UserAnswers":
		return "user_answers"
	default:
		return strings.ToLower(structField)
	}
}

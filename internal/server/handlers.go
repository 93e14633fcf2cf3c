package server

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/spigell/resume-screener/internal/extract"
	"github.com/spigell/resume-screener/internal/logger"
	"github.com/spigell/resume-screener/internal/screening"
)

// ErrValidationFailed marks a request missing required input.
var ErrValidationFailed = errors.New("validation failed")

type healthResponse struct {
	Status string `json:"status"`
	Model  string `json:"model"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type analysisResponse struct {
	Success           bool                         `json:"success"`
	CriteriaDecisions []screening.CriteriaDecision `json:"criteria_decisions"`
	OverallDecision   bool                         `json:"overall_decision"`
	OverallReasoning  string                       `json:"overall_reasoning"`
	Method            screening.Method             `json:"method"`
	Fallback          bool                         `json:"fallback"`
}

// analysisRequest binds multipart forms, url-encoded forms and JSON bodies.
// The optional resume file is read separately.
type analysisRequest struct {
	ResumeText     string `form:"resume_text" json:"resume_text"`
	JobDescription string `form:"job_description" json:"job_description"`
	Criteria       string `form:"criteria" json:"criteria"`
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, healthResponse{Status: "ok", Model: s.analyzer.Model()})
}

func (s *Server) analyzeResume(c *gin.Context) {
	log := logger.WithFields(s.logger, zap.String(logger.FieldRequestID, c.GetString(requestIDKey)))

	var req analysisRequest
	if err := c.ShouldBind(&req); err != nil {
		s.fail(c, http.StatusBadRequest, fmt.Errorf("%w: %v", ErrValidationFailed, err))
		return
	}

	resumeText := strings.TrimSpace(req.ResumeText)

	// A missing file or a non-multipart body both mean no upload.
	if header, err := c.FormFile("resume"); err == nil {
		uploaded, err := s.readUpload(header)
		switch {
		case err != nil && resumeText == "":
			s.fail(c, http.StatusBadRequest, fmt.Errorf("%w: %v", ErrValidationFailed, err))
			return
		case err != nil:
			log.Warn("ignoring unreadable upload", zap.String("filename", header.Filename), zap.Error(err))
		case resumeText == "":
			resumeText = uploaded
		default:
			resumeText = resumeText + "\n" + uploaded
		}
	}

	if err := validate(resumeText, req.JobDescription, req.Criteria); err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return
	}

	analysis, err := s.analyzer.Analyze(c.Request.Context(), resumeText, req.JobDescription, req.Criteria)
	if err != nil {
		log.Error("analysis failed", zap.Error(err))
		s.fail(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, analysisResponse{
		Success:           true,
		CriteriaDecisions: analysis.CriteriaDecisions,
		OverallDecision:   analysis.OverallDecision,
		OverallReasoning:  analysis.OverallReasoning,
		Method:            analysis.Method,
		Fallback:          analysis.Fallback(),
	})
}

func validate(resumeText, jobDescription, criteria string) error {
	var missing []string
	if strings.TrimSpace(resumeText) == "" {
		missing = append(missing, "resume or resume_text")
	}
	if strings.TrimSpace(jobDescription) == "" {
		missing = append(missing, "job_description")
	}
	if strings.TrimSpace(criteria) == "" {
		missing = append(missing, "criteria")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s required", ErrValidationFailed, strings.Join(missing, ", "))
	}
	return nil
}

func (s *Server) readUpload(header *multipart.FileHeader) (string, error) {
	format, err := extract.FormatOf(header.Filename)
	if err != nil {
		return "", err
	}

	if header.Size > s.cfg.MaxUploadBytes {
		return "", fmt.Errorf("upload %s exceeds %d bytes", header.Filename, s.cfg.MaxUploadBytes)
	}

	file, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes))
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}

	text, err := s.extractor.Extract(data, format)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func (s *Server) fail(c *gin.Context, status int, err error) {
	_ = c.Error(err)
	c.JSON(status, errorResponse{Success: false, Error: err.Error()})
}

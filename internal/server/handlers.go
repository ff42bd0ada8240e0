package server

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/joseph-ayodele/resume-analyzer/constants"
	"github.com/joseph-ayodele/resume-analyzer/internal/analysis"
	"github.com/joseph-ayodele/resume-analyzer/internal/common"
	"github.com/joseph-ayodele/resume-analyzer/internal/pipeline"
	"github.com/joseph-ayodele/resume-analyzer/internal/status"
)

type analyzeRequest struct {
	ResumeText  string             `json:"resume_text"`
	Model       string             `json:"ai_model"`
	Temperature *float32           `json:"temperature"`
	Threshold   *int               `json:"threshold"`
	Criteria    *analysis.Criteria `json:"criteria"`
	JDPrompt    string             `json:"jd_prompt"`
}

func (r analyzeRequest) validate() error {
	if strings.TrimSpace(r.ResumeText) == "" {
		return errors.New("resume_text must not be empty")
	}
	if r.Temperature != nil && (*r.Temperature < 0 || *r.Temperature > 1) {
		return errors.New("temperature must be between 0 and 1")
	}
	if r.Threshold != nil && (*r.Threshold < 0 || *r.Threshold > 100) {
		return errors.New("threshold must be between 0 and 100")
	}
	return nil
}

// handleAnalyze runs the full analysis synchronously and returns the final
// summary and score. Rate limits are not retried here; they surface as 429.
func (s *Server) handleAnalyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid request body"})
		return
	}
	if err := req.validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	model := req.Model
	if model == "" {
		model = s.Model
	}
	temperature := s.Temperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}
	threshold := analysis.DefaultThreshold
	if req.Threshold != nil {
		threshold = *req.Threshold
	}

	result, err := s.Analysis.RunFullAnalysis(c.Request.Context(), analysis.Request{
		Text: req.ResumeText,
		Model: analysis.ModelConfig{
			Client:      s.Client,
			Model:       model,
			Temperature: temperature,
		},
		Threshold: threshold,
		Criteria:  req.Criteria,
		JDPrompt:  req.JDPrompt,
	})
	if err != nil {
		if errors.Is(err, common.ErrRateLimited) {
			c.JSON(http.StatusTooManyRequests, gin.H{"detail": "model provider rate limit exceeded"})
			return
		}
		s.Logger.Error("api.analyze.failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "analysis failed"})
		return
	}
	if result.Status != analysis.CodeOK {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": result.Error})
		return
	}

	c.JSON(http.StatusOK, gin.H{"summary": result.Summary, "score": result.Score})
}

// handleAnalyzeAsync accepts a PDF upload plus optional evaluation criteria
// and enqueues the processing chain.
func (s *Server) handleAnalyzeAsync(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "file is required"})
		return
	}
	if !constants.IsAllowedFilename(fileHeader.Filename) {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "only PDF files are supported"})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "could not read uploaded file"})
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil || len(data) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "uploaded file is empty"})
		return
	}

	sub := pipeline.Submission{
		FileName: fileHeader.Filename,
		PDF:      data,
		Model:    c.PostForm("ai_model"),
		JDPrompt: c.PostForm("jd_prompt"),
	}
	if v := c.PostForm("temperature"); v != "" {
		t, err := strconv.ParseFloat(v, 32)
		if err != nil || t < 0 || t > 1 {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "temperature must be between 0 and 1"})
			return
		}
		temp := float32(t)
		sub.Temperature = &temp
	}
	if v := c.PostForm("threshold"); v != "" {
		th, err := strconv.Atoi(v)
		if err != nil || th < 0 || th > 100 {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "threshold must be between 0 and 100"})
			return
		}
		sub.Threshold = th
	}
	if criteria := criteriaFromForm(c); criteria != nil {
		sub.Criteria = criteria
	}

	receipt, err := s.Orchestrator.Submit(c.Request.Context(), sub)
	if err != nil {
		s.Logger.Error("api.submit.failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "could not schedule analysis"})
		return
	}

	c.JSON(http.StatusAccepted, receipt)
}

func criteriaFromForm(c *gin.Context) *analysis.Criteria {
	criteria := analysis.Criteria{
		CompanyName:    c.PostForm("company_name"),
		Role:           c.PostForm("role"),
		JobDescription: c.PostForm("job_description"),
	}
	if v := c.PostForm("experience_level"); v != "" {
		if years, err := strconv.Atoi(v); err == nil {
			criteria.ExperienceLevel = years
		}
	}
	if criteria == (analysis.Criteria{}) {
		return nil
	}
	return &criteria
}

// handleStatus reports the aggregate job view for polling clients.
func (s *Server) handleStatus(c *gin.Context) {
	taskID := c.Param("task_id")
	rec, err := s.Records.Get(c.Request.Context(), taskID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"detail": "unknown task id"})
			return
		}
		s.Logger.Error("api.status.failed", "task_id", taskID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "could not load task status"})
		return
	}

	c.JSON(http.StatusOK, status.Resolve(rec))
}

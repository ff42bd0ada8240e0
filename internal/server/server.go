package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/resume-analyzer/internal/analysis"
	"github.com/joseph-ayodele/resume-analyzer/internal/common"
	"github.com/joseph-ayodele/resume-analyzer/internal/llm"
	"github.com/joseph-ayodele/resume-analyzer/internal/pipeline"
	"github.com/joseph-ayodele/resume-analyzer/internal/status"
)

// Server holds the handler dependencies for the HTTP surface.
type Server struct {
	Analysis     *analysis.Service
	Client       llm.Client
	Model        string
	Temperature  float32
	Orchestrator *pipeline.Orchestrator
	Records      status.RecordStore
	Logger       *slog.Logger
}

// Router builds the gin engine with CORS restricted to the configured
// frontend origin.
func (s *Server) Router(allowOrigin string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestID())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{allowOrigin},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", s.handleHealth)
	r.POST("/analysis", s.handleAnalyze)
	r.POST("/analysis/async", s.handleAnalyzeAsync)
	r.GET("/analysis/status/:task_id", s.handleStatus)
	return r
}

// requestID tags every request's context so downstream provider calls log a
// stable req_id.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := uuid.NewString()
		c.Request = c.Request.WithContext(common.WithRequestID(c.Request.Context(), rid))
		c.Header("X-Request-Id", rid)
		c.Next()
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

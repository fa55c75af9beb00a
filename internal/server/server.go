package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/agenthands/issuedup/internal/config"
	"github.com/agenthands/issuedup/internal/core/dedupe"
	"github.com/agenthands/issuedup/internal/core/model"
	"github.com/agenthands/issuedup/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const sessionHeader = "session-id"

// IssueGenerator is satisfied by *generation.Generator.
type IssueGenerator interface {
	Generate(ctx context.Context, career string, values []string, previous []string) ([]string, error)
}

type Server struct {
	Generator IssueGenerator
	Sessions  *session.Store
	Analysis  config.AnalysisConfig
}

func NewServer(gen IssueGenerator, store *session.Store, analysis config.AnalysisConfig) *Server {
	if store == nil {
		store = session.NewStore()
	}
	return &Server{
		Generator: gen,
		Sessions:  store,
		Analysis:  analysis,
	}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	r.GET("/health", s.Health)

	api := r.Group("/api")
	api.POST("/sessions", s.CreateSession)
	api.GET("/sessions/:id/report", s.SessionReport)
	api.POST("/career", s.SetCareer)
	api.POST("/values", s.SetValues)
	api.POST("/generate-issues", s.GenerateIssues)
	api.POST("/reset-issues", s.ResetIssues)
	api.POST("/analyze", s.Analyze)

	return r
}

func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "sessions": s.Sessions.Len()})
}

func (s *Server) CreateSession(c *gin.Context) {
	sess := s.Sessions.Create()
	c.JSON(http.StatusOK, gin.H{"session_id": sess.ID})
}

type CareerRequest struct {
	Career string `json:"career" binding:"required"`
}

func (s *Server) SetCareer(c *gin.Context) {
	var req CareerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	id := s.sessionID(c)
	if err := s.Sessions.SetCareer(id, req.Career); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "session_id": id, "career": req.Career})
}

type ValuesRequest struct {
	Values []string `json:"values" binding:"required"`
}

func (s *Server) SetValues(c *gin.Context) {
	var req ValuesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	id := s.sessionID(c)
	if err := s.Sessions.SetValues(id, req.Values); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "session_id": id, "values": req.Values})
}

func (s *Server) GenerateIssues(c *gin.Context) {
	id := c.GetHeader(sessionHeader)
	sess, err := s.Sessions.Get(id)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid session"})
		return
	}
	if sess.Career == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Career must be set first"})
		return
	}

	issues, err := s.Generator.Generate(c.Request.Context(), sess.Career, sess.Values, sess.Previous())
	if err != nil {
		if len(issues) == 0 {
			log.Error().Err(err).Str("session_id", id).Msg("Failed to generate issues")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate issues"})
			return
		}
		log.Warn().Err(err).Str("session_id", id).Msg("Serving fallback issues")
	}

	if err := s.Sessions.AppendIssued(id, issues); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "issues": issues})
}

func (s *Server) ResetIssues(c *gin.Context) {
	if err := s.Sessions.ResetIssued(c.GetHeader(sessionHeader)); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// SessionReport analyzes everything a session has been issued so far.
func (s *Server) SessionReport(c *gin.Context) {
	sess, err := s.Sessions.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}

	analyzer := s.analyzer()
	if th := c.Query("threshold"); th != "" {
		v, err := strconv.ParseFloat(th, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid threshold"})
			return
		}
		analyzer.Threshold = v
	}
	if k := c.Query("top_k"); k != "" {
		v, err := strconv.Atoi(k)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid top_k"})
			return
		}
		analyzer.TopK = v
		analyzer.OverallTopK = v
	}
	if k := c.Query("overall_top_k"); k != "" {
		v, err := strconv.Atoi(k)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid overall_top_k"})
			return
		}
		analyzer.OverallTopK = v
	}

	var items []model.TextItem
	for round, issues := range sess.Issued {
		for _, issue := range issues {
			items = append(items, model.TextItem{Text: issue, Category: sess.Career, Batch: round + 1})
		}
	}

	s.respondReport(c, analyzer, items)
}

// AnalyzeRequest sets top_k for both frequency rankings unless
// overall_top_k is given as well.
type AnalyzeRequest struct {
	Items       []model.TextItem `json:"items"`
	Texts       []string         `json:"texts"`
	Threshold   *float64         `json:"threshold"`
	TopK        *int             `json:"top_k"`
	OverallTopK *int             `json:"overall_top_k"`
}

// Analyze runs the duplicate analysis over a caller-supplied batch. Items
// that are not strings fail JSON binding and are rejected with 400.
func (s *Server) Analyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "detail": err.Error()})
		return
	}

	analyzer := s.analyzer()
	if req.Threshold != nil {
		analyzer.Threshold = *req.Threshold
	}
	if req.TopK != nil {
		analyzer.TopK = *req.TopK
		analyzer.OverallTopK = *req.TopK
	}
	if req.OverallTopK != nil {
		analyzer.OverallTopK = *req.OverallTopK
	}

	items := append(req.Items, model.NewTextItems(req.Texts)...)
	s.respondReport(c, analyzer, items)
}

func (s *Server) respondReport(c *gin.Context, analyzer *dedupe.Analyzer, items []model.TextItem) {
	rep, err := analyzer.Analyze(items)
	if errors.Is(err, dedupe.ErrInvalidThreshold) || errors.Is(err, dedupe.ErrInvalidTopK) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("Failed to analyze batch")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to analyze"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"report": rep, "severity": rep.Severity()})
}

func (s *Server) analyzer() *dedupe.Analyzer {
	return dedupe.FromConfig(s.Analysis)
}

// sessionID returns the caller's session, creating one when the header is
// missing or unknown.
func (s *Server) sessionID(c *gin.Context) string {
	id := c.GetHeader(sessionHeader)
	if id == "" {
		sess := s.Sessions.Create()
		c.Header(sessionHeader, sess.ID)
		return sess.ID
	}
	return s.Sessions.GetOrCreate(id).ID
}

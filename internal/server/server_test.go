package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/agenthands/issuedup/internal/config"
	"github.com/agenthands/issuedup/internal/core/model"
	"github.com/agenthands/issuedup/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockGenerator struct {
	Issues    []string
	Err       error
	Calls     int
	Previous  [][]string
	LastValue []string
}

func (m *MockGenerator) Generate(ctx context.Context, career string, values []string, previous []string) ([]string, error) {
	m.Calls++
	m.Previous = append(m.Previous, previous)
	m.LastValue = values
	return m.Issues, m.Err
}

type reportResponse struct {
	Report   model.AnalysisReport `json:"report"`
	Severity model.Severity       `json:"severity"`
}

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(gen IssueGenerator) (*Server, *gin.Engine) {
	s := NewServer(gen, session.NewStore(), config.AnalysisConfig{Threshold: 0.7, TopK: 5, OverallTopK: 10})
	return s, s.SetupRouter()
}

func do(r http.Handler, method, path, sessionID string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if sessionID != "" {
		req.Header.Set(sessionHeader, sessionID)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	_, r := newTestServer(&MockGenerator{})

	w := do(r, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestAnalyze_Texts(t *testing.T) {
	_, r := newTestServer(&MockGenerator{})

	w := do(r, http.MethodPost, "/api/analyze", "", gin.H{
		"texts": []string{"인력 부족 문제", "인력 부족 문제", "야간 근무 부담"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp reportResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Report.TotalItems)
	assert.Equal(t, 2, resp.Report.TotalDuplicates)
	assert.InDelta(t, 2.0/3.0, resp.Report.DuplicationRate, 1e-9)
	assert.Equal(t, []int{2}, resp.Report.Singletons)
	assert.Equal(t, model.SeverityHigh, resp.Severity)
	assert.Nil(t, resp.Report.ByCategory)
}

func TestAnalyze_ItemsWithCategories(t *testing.T) {
	_, r := newTestServer(&MockGenerator{})

	w := do(r, http.MethodPost, "/api/analyze", "", gin.H{
		"items": []gin.H{
			{"text": "의료 소송 증가", "category": "의사"},
			{"text": "의료 소송 증가", "category": "의사"},
			{"text": "교권 침해 문제", "category": "교사"},
		},
		"top_k": 1,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp reportResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"의사", "교사"}, resp.Report.Categories)
	assert.Equal(t, 2, resp.Report.ByCategory["의사"].Total)
	assert.Equal(t, 1, resp.Report.ByCategory["의사"].Unique)
	assert.Len(t, resp.Report.ByCategory["의사"].MostCommon, 1)
}

func TestAnalyze_TopKLimitsBothRankings(t *testing.T) {
	_, r := newTestServer(&MockGenerator{})
	texts := []string{"의료 소송 증가", "교권 침해 문제", "야간 근무 부담"}

	w := do(r, http.MethodPost, "/api/analyze", "", gin.H{"texts": texts, "top_k": 1})
	require.Equal(t, http.StatusOK, w.Code)
	var resp reportResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Report.MostCommonOverall, 1)

	w = do(r, http.MethodPost, "/api/analyze", "", gin.H{"texts": texts, "top_k": 1, "overall_top_k": 2})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Report.MostCommonOverall, 2)
}

func TestAnalyze_ConfiguredZeroValuesKept(t *testing.T) {
	s := NewServer(&MockGenerator{}, session.NewStore(), config.AnalysisConfig{Threshold: 0, TopK: 0, OverallTopK: 0})
	r := s.SetupRouter()

	texts := make([]string, 12)
	for i := range texts {
		texts[i] = string(rune('a'+i)) + " distinct"
	}
	texts[0] = "alpha"
	texts[1] = "beta"

	w := do(r, http.MethodPost, "/api/analyze", "", gin.H{"texts": texts})
	require.Equal(t, http.StatusOK, w.Code)
	var resp reportResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Equal(t, 0.0, resp.Report.Threshold)
	require.Len(t, resp.Report.DuplicateGroups, 1)
	assert.Equal(t, len(texts), resp.Report.DuplicateGroups[0].Size)
	assert.Empty(t, resp.Report.Singletons)
	assert.Len(t, resp.Report.MostCommonOverall, len(texts))
}

func TestAnalyze_InvalidThreshold(t *testing.T) {
	_, r := newTestServer(&MockGenerator{})

	w := do(r, http.MethodPost, "/api/analyze", "", gin.H{"texts": []string{"a"}, "threshold": 1.5})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "threshold")
}

func TestAnalyze_NonStringItem(t *testing.T) {
	_, r := newTestServer(&MockGenerator{})

	w := do(r, http.MethodPost, "/api/analyze", "", gin.H{"texts": []any{"a", 42}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAnalyze_Empty(t *testing.T) {
	_, r := newTestServer(&MockGenerator{})

	w := do(r, http.MethodPost, "/api/analyze", "", gin.H{})
	require.Equal(t, http.StatusOK, w.Code)

	var resp reportResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.Report.TotalItems)
	assert.Equal(t, 0.0, resp.Report.DuplicationRate)
	assert.Equal(t, model.SeverityAcceptable, resp.Severity)
}

func TestSessionFlow(t *testing.T) {
	gen := &MockGenerator{Issues: []string{"간호사 인력 부족 문제가 심각합니다", "야간 근무 부담이 너무 큽니다"}}
	s, r := newTestServer(gen)

	w := do(r, http.MethodPost, "/api/sessions", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var created struct {
		SessionID string `json:"session_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	id := created.SessionID
	require.NotEmpty(t, id)

	w = do(r, http.MethodPost, "/api/career", id, gin.H{"career": "간호사"})
	require.Equal(t, http.StatusOK, w.Code)
	w = do(r, http.MethodPost, "/api/values", id, gin.H{"values": []string{"안정성"}})
	require.Equal(t, http.StatusOK, w.Code)

	for i := 0; i < 2; i++ {
		w = do(r, http.MethodPost, "/api/generate-issues", id, nil)
		require.Equal(t, http.StatusOK, w.Code)
	}
	assert.Equal(t, 2, gen.Calls)
	assert.Empty(t, gen.Previous[0])
	assert.Equal(t, gen.Issues, gen.Previous[1])
	assert.Equal(t, []string{"안정성"}, gen.LastValue)

	w = do(r, http.MethodGet, "/api/sessions/"+id+"/report", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp reportResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 4, resp.Report.TotalItems)
	assert.Equal(t, 4, resp.Report.TotalDuplicates)
	assert.Equal(t, []string{"간호사"}, resp.Report.Categories)

	w = do(r, http.MethodPost, "/api/reset-issues", id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	sess, err := s.Sessions.Get(id)
	require.NoError(t, err)
	assert.Empty(t, sess.Issued)
	assert.Equal(t, "간호사", sess.Career)
}

func TestSessionReport_ThresholdQuery(t *testing.T) {
	s, r := newTestServer(&MockGenerator{})
	sess := s.Sessions.Create()
	require.NoError(t, s.Sessions.SetCareer(sess.ID, "교사"))
	require.NoError(t, s.Sessions.AppendIssued(sess.ID, []string{"alpha", "beta"}))

	w := do(r, http.MethodGet, "/api/sessions/"+sess.ID+"/report?threshold=0", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp reportResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 0.0, resp.Report.Threshold)
	assert.Equal(t, 2, resp.Report.TotalDuplicates)

	w = do(r, http.MethodGet, "/api/sessions/"+sess.ID+"/report?top_k=1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Report.MostCommonOverall, 1)

	w = do(r, http.MethodGet, "/api/sessions/"+sess.ID+"/report?top_k=x", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodGet, "/api/sessions/"+sess.ID+"/report?threshold=abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodGet, "/api/sessions/"+sess.ID+"/report?threshold=-0.1", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSessionReport_NotFound(t *testing.T) {
	_, r := newTestServer(&MockGenerator{})

	w := do(r, http.MethodGet, "/api/sessions/missing/report", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGenerateIssues_RequiresCareer(t *testing.T) {
	s, r := newTestServer(&MockGenerator{})
	sess := s.Sessions.Create()

	w := do(r, http.MethodPost, "/api/generate-issues", sess.ID, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/api/generate-issues", "unknown", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGenerateIssues_Fallback(t *testing.T) {
	gen := &MockGenerator{Issues: []string{"fallback issue one"}, Err: errors.New("llm down")}
	s, r := newTestServer(gen)
	sess := s.Sessions.Create()
	require.NoError(t, s.Sessions.SetCareer(sess.ID, "의사"))

	w := do(r, http.MethodPost, "/api/generate-issues", sess.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "fallback issue one")

	gen.Issues = nil
	w = do(r, http.MethodPost, "/api/generate-issues", sess.ID, nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestSetCareer_CreatesSessionWithoutHeader(t *testing.T) {
	s, r := newTestServer(&MockGenerator{})

	w := do(r, http.MethodPost, "/api/career", "", gin.H{"career": "개발자"})
	require.Equal(t, http.StatusOK, w.Code)
	id := w.Header().Get(sessionHeader)
	require.NotEmpty(t, id)

	sess, err := s.Sessions.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "개발자", sess.Career)

	w = do(r, http.MethodPost, "/api/career", "", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

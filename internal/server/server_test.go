package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/clausematrix/internal/model"
	"github.com/ppiankov/clausematrix/internal/pipeline"
)

const sonyTable = "Master clause matrix v3,,,,\n" +
	"Article,Clause Number,Clause Title,Baseline,Sony\n" +
	"2,1,Services,RHEI will provide services.,RHEI shall provide services to Sony.\n" +
	"2,2,Payment,Fees are due monthly.,✓\n"

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer() *Server {
	return New(pipeline.NewPipeline(model.DefaultConfig(), nil), nil)
}

func do(t *testing.T, s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func loadSony(t *testing.T, s *Server) {
	t.Helper()
	w := do(t, s, http.MethodPost, "/api/matrix", gin.H{"text": sonyTable})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestHealth(t *testing.T) {
	s := newTestServer()
	w := do(t, s, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
	assert.Equal(t, float64(0), resp["clauses"])
}

func TestRequestID_Propagated(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestRecovery(t *testing.T) {
	s := newTestServer()
	s.router.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := do(t, s, http.MethodGet, "/boom", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Internal server error")
}

func TestLoadMatrix(t *testing.T) {
	s := newTestServer()
	w := do(t, s, http.MethodPost, "/api/matrix", gin.H{"text": sonyTable})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Source  string   `json:"source"`
		Clauses int      `json:"clauses"`
		Parties []string `json:"parties"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "inline", resp.Source)
	assert.Equal(t, 2, resp.Clauses)
	assert.Equal(t, []string{"Sony"}, resp.Parties)
}

func TestLoadMatrix_BadInput(t *testing.T) {
	s := newTestServer()

	w := do(t, s, http.MethodPost, "/api/matrix", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, s, http.MethodPost, "/api/matrix", gin.H{"text": "a", "url": "http://example.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, s, http.MethodPost, "/api/matrix", gin.H{"text": "just one line"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "could not load clause data")
}

func TestClauses(t *testing.T) {
	s := newTestServer()

	w := do(t, s, http.MethodGet, "/api/clauses", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"clauses":[]}`, w.Body.String())

	loadSony(t, s)

	w = do(t, s, http.MethodGet, "/api/clauses", nil)
	var list struct {
		Clauses []model.Clause `json:"clauses"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Clauses, 2)
	assert.Equal(t, "2.1", list.Clauses[0].Key)

	w = do(t, s, http.MethodGet, "/api/clauses/2.2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var clause model.Clause
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &clause))
	assert.Equal(t, "Fees are due monthly.", clause.Baseline.Text)

	w = do(t, s, http.MethodGet, "/api/clauses/9.9", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestClause_NotFoundBeforeLoad(t *testing.T) {
	w := do(t, newTestServer(), http.MethodGet, "/api/clauses/2.1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestParties(t *testing.T) {
	s := newTestServer()
	loadSony(t, s)

	w := do(t, s, http.MethodGet, "/api/parties", nil)
	assert.JSONEq(t, `{"parties":["Sony"]}`, w.Body.String())
}

func TestAnalyze(t *testing.T) {
	s := newTestServer()

	w := do(t, s, http.MethodPost, "/api/analyze", gin.H{"text": "2.1 RHEI will provide services."})
	assert.Equal(t, http.StatusConflict, w.Code)

	loadSony(t, s)

	w = do(t, s, http.MethodPost, "/api/analyze", gin.H{
		"text":         "2.1 RHEI shall provide services to Sony.\n2.2 Fees are due monthly.",
		"target_party": "Sony",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var report model.AnalysisReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, "Sony", report.TargetParty)
	assert.Equal(t, 100, report.Score.Index)
	assert.Equal(t, model.StatusAcceptableModification, report.Results[0].Status)
}

func TestApply(t *testing.T) {
	s := newTestServer()
	loadSony(t, s)

	w := do(t, s, http.MethodPost, "/api/apply", gin.H{
		"text":         "2.1 Vendor may subcontract everything.\n2.2 Fees are due monthly.",
		"target_party": "Sony",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Document  string            `json:"document"`
		Applied   []json.RawMessage `json:"applied"`
		Revisions []model.Revision  `json:"revisions"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.Document, "RHEI shall provide services to Sony.")
	assert.Len(t, resp.Applied, 1)
	require.Len(t, resp.Revisions, 1)
	assert.Equal(t, "replacement", resp.Revisions[0].Type)
}

func TestGenerate(t *testing.T) {
	s := newTestServer()
	loadSony(t, s)

	w := do(t, s, http.MethodPost, "/api/generate", gin.H{
		"variables": map[string]string{"company_name": "RHEI", "counterparty_name": "Sony"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Contract string `json:"contract"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.Contract, "ARTICLE 2\n\n2 1\nRHEI will provide services.\n\n")
	assert.Contains(t, resp.Contract, "between RHEI and Sony")
}

func TestGenerate_NoBody(t *testing.T) {
	w := do(t, newTestServer(), http.MethodPost, "/api/generate", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "contract")
}

package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"settlement-pipeline/internal/api/models"
	"settlement-pipeline/internal/config"
	"settlement-pipeline/internal/pipeline"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestHandler(t *testing.T, demand string) (*PipelineHandler, *config.Config) {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"cost.csv":       "SettlementDate,SettlementPeriod,Price\n2020-01-01,1,30\n",
		"generation.csv": "SettlementDate,SettlementPeriod,FuelType,Generation\n2020-01-01,1,CCGT,10\n2020-01-01,3,CCGT,30\n2020-01-02,1,CCGT,5\n",
		"demand.csv":     demand,
	}
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	cfg := config.Default()
	cfg.Inputs = config.InputsConfig{
		Cost:       filepath.Join(dir, "cost.csv"),
		Generation: filepath.Join(dir, "generation.csv"),
		Demand:     filepath.Join(dir, "demand.csv"),
	}
	cfg.Outputs = config.OutputsConfig{
		Cost:       filepath.Join(dir, "out", "cost.csv"),
		Generation: filepath.Join(dir, "out", "generation.csv"),
		Demand:     filepath.Join(dir, "out", "demand.csv"),
		Merged:     filepath.Join(dir, "out", "merged.csv"),
	}
	return NewPipelineHandler(pipeline.New(cfg, nil), 0), cfg
}

const validDemand = "SETTLEMENT_DATE,SETTLEMENT_PERIOD,TSD\n2020-01-01,1,5\n2020-01-01,2,6\n"

func newRouter(h *PipelineHandler) *gin.Engine {
	r := gin.New()
	api := r.Group("/api/v1")
	api.GET("/datasets", h.ListDatasets)
	api.GET("/merged", h.GetMerged)
	api.GET("/summary", h.GetSummary)
	api.GET("/runs/last", h.GetLastRun)
	api.POST("/pipeline/run", h.RunPipeline)
	return r
}

func do(r http.Handler, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, target, nil))
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) models.ErrorDetail {
	t.Helper()
	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Error
}

func TestRunPipeline(t *testing.T) {
	h, cfg := newTestHandler(t, validDemand)
	r := newRouter(h)

	w := do(r, http.MethodPost, "/api/v1/pipeline/run")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var summary pipeline.Summary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	assert.Equal(t, "run", summary.Command)
	assert.Contains(t, summary.Published, cfg.Outputs.Merged)
	require.NotNil(t, summary.Merged)
	assert.Equal(t, 4, summary.Merged.Rows)
}

func TestRunPipeline_Malformed(t *testing.T) {
	h, cfg := newTestHandler(t, "SETTLEMENT_DATE,SETTLEMENT_PERIOD,TSD\nyesterday,1,5\n")
	w := do(newRouter(h), http.MethodPost, "/api/v1/pipeline/run")

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "MALFORMED_INPUT", decodeError(t, w).Code)
	assert.NoFileExists(t, cfg.Outputs.Merged)
}

func TestRunPipeline_DuplicateKey(t *testing.T) {
	h, _ := newTestHandler(t, "SETTLEMENT_DATE,SETTLEMENT_PERIOD,TSD\n2020-01-01,1,5\n2020-01-01,1,6\n")
	w := do(newRouter(h), http.MethodPost, "/api/v1/pipeline/run")

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "DUPLICATE_KEY", decodeError(t, w).Code)
}

func TestRunPipeline_AlreadyRunning(t *testing.T) {
	h, _ := newTestHandler(t, validDemand)
	h.running.Lock()
	defer h.running.Unlock()

	w := do(newRouter(h), http.MethodPost, "/api/v1/pipeline/run")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "RUN_IN_PROGRESS", decodeError(t, w).Code)
}

func TestGetMerged_NotFoundBeforeRun(t *testing.T) {
	h, _ := newTestHandler(t, validDemand)
	r := newRouter(h)

	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/api/v1/merged").Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/api/v1/summary").Code)
}

func TestGetMerged(t *testing.T) {
	h, _ := newTestHandler(t, validDemand)
	r := newRouter(h)
	require.Equal(t, http.StatusOK, do(r, http.MethodPost, "/api/v1/pipeline/run").Code)

	w := do(r, http.MethodGet, "/api/v1/merged")
	require.Equal(t, http.StatusOK, w.Code)
	var resp models.MergedResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 4, resp.Total)
	assert.Equal(t, 4, resp.Count)

	first := resp.Rows[0]
	assert.Equal(t, "2020-01-01", first.SettlementDate.String())
	assert.Equal(t, 1, first.SettlementPeriod)
	require.NotNil(t, first.Generation)
	assert.Equal(t, 10.0, *first.Generation)

	// demand stops at 2020-01-01 period 2, so later periods stay null
	last := resp.Rows[3]
	assert.Equal(t, "2020-01-02", last.SettlementDate.String())
	assert.Nil(t, last.Demand)
	require.NotNil(t, last.Generation)
	assert.Equal(t, 5.0, *last.Generation)

	w = do(r, http.MethodGet, "/api/v1/merged?start=2020-01-02")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Total)

	w = do(r, http.MethodGet, "/api/v1/merged?end=2020-01-01&limit=2")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Total)
	assert.Equal(t, 2, resp.Count)
}

func TestGetMerged_BadQuery(t *testing.T) {
	h, _ := newTestHandler(t, validDemand)
	r := newRouter(h)

	w := do(r, http.MethodGet, "/api/v1/merged?start=soon")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_PARAM", decodeError(t, w).Code)

	w = do(r, http.MethodGet, "/api/v1/merged?limit=-1")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_QUERY", decodeError(t, w).Code)
}

func TestGetSummary(t *testing.T) {
	h, _ := newTestHandler(t, validDemand)
	r := newRouter(h)
	require.Equal(t, http.StatusOK, do(r, http.MethodPost, "/api/v1/pipeline/run").Code)

	w := do(r, http.MethodGet, "/api/v1/summary")
	require.Equal(t, http.StatusOK, w.Code)
	var d pipeline.Description
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &d))
	assert.Equal(t, 4, d.Rows)
	assert.Equal(t, 2, d.Dates)
	assert.True(t, d.Dense)
	assert.Equal(t, map[string]int{"Generation": 0, "Demand": 2}, d.Missing)
}

func TestListDatasets(t *testing.T) {
	h, cfg := newTestHandler(t, validDemand)
	w := do(newRouter(h), http.MethodGet, "/api/v1/datasets")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Datasets []models.DatasetInfo `json:"datasets"`
		Count    int                  `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 7, resp.Count)
	for _, d := range resp.Datasets {
		switch d.Role {
		case "input":
			assert.True(t, d.Exists, d.Path)
			assert.Positive(t, d.SizeBytes)
		case "output":
			assert.False(t, d.Exists, d.Path)
		}
	}
	assert.Equal(t, cfg.Inputs.Cost, resp.Datasets[0].Path)
}

func TestGetLastRun(t *testing.T) {
	h, cfg := newTestHandler(t, validDemand)
	r := newRouter(h)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/api/v1/runs/last").Code)

	cfg.Outputs.Summary = filepath.Join(filepath.Dir(cfg.Outputs.Merged), "run.json")
	run := do(r, http.MethodPost, "/api/v1/pipeline/run")
	require.Equal(t, http.StatusOK, run.Code)
	var want pipeline.Summary
	require.NoError(t, json.Unmarshal(run.Body.Bytes(), &want))

	w := do(r, http.MethodGet, "/api/v1/runs/last")
	require.Equal(t, http.StatusOK, w.Code)
	var got pipeline.Summary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, want.RunID, got.RunID)
}

func TestGetMerged_SeesRerun(t *testing.T) {
	h, cfg := newTestHandler(t, validDemand)
	r := newRouter(h)
	require.Equal(t, http.StatusOK, do(r, http.MethodPost, "/api/v1/pipeline/run").Code)
	require.Equal(t, http.StatusOK, do(r, http.MethodGet, "/api/v1/merged").Code)

	extra := validDemand + "2020-01-02,1,8\n"
	require.NoError(t, os.WriteFile(cfg.Inputs.Demand, []byte(extra), 0o644))
	require.Equal(t, http.StatusOK, do(r, http.MethodPost, "/api/v1/pipeline/run").Code)

	w := do(r, http.MethodGet, "/api/v1/merged?start=2020-01-02")
	var resp models.MergedResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Rows, 1)
	require.NotNil(t, resp.Rows[0].Demand)
	assert.Equal(t, 8.0, *resp.Rows[0].Demand)
}

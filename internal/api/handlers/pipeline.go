package handlers

import (
	"net/http"
	"sync"
	"time"

	"settlement-pipeline/internal/api/models"
	"settlement-pipeline/internal/data"
	"settlement-pipeline/internal/model"
	"settlement-pipeline/internal/pipeline"

	"github.com/gin-gonic/gin"
)

// PipelineHandler exposes the pipeline and its outputs over HTTP.
// At most one run executes at a time.
type PipelineHandler struct {
	pipeline *pipeline.Pipeline
	merged   *data.FrameCache
	running  sync.Mutex
}

// NewPipelineHandler creates a new pipeline handler. Parsed merged tables
// are cached for up to cacheTTL; zero keeps them until the file changes.
func NewPipelineHandler(p *pipeline.Pipeline, cacheTTL time.Duration) *PipelineHandler {
	return &PipelineHandler{
		pipeline: p,
		merged:   data.NewFrameCache(cacheTTL, data.ReadMerged),
	}
}

// RunPipeline handles POST /api/v1/pipeline/run
func (h *PipelineHandler) RunPipeline(c *gin.Context) {
	if !h.running.TryLock() {
		respondError(c, http.StatusConflict, "RUN_IN_PROGRESS", "a pipeline run is already in progress")
		return
	}
	defer h.running.Unlock()

	summary, err := h.pipeline.Run(c.Request.Context())
	h.merged.Clear()
	if err != nil {
		respondPipelineError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// GetMerged handles GET /api/v1/merged
func (h *PipelineHandler) GetMerged(c *gin.Context) {
	var q models.MergedQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_QUERY", err.Error())
		return
	}
	var start, end model.Date
	if q.Start != "" {
		d, err := model.ParseDate(q.Start)
		if err != nil {
			respondError(c, http.StatusBadRequest, "INVALID_PARAM", "start: "+err.Error())
			return
		}
		start = d
	}
	if q.End != "" {
		d, err := model.ParseDate(q.End)
		if err != nil {
			respondError(c, http.StatusBadRequest, "INVALID_PARAM", "end: "+err.Error())
			return
		}
		end = d
	}

	f, err := h.merged.Get(h.pipeline.Config().Outputs.Merged)
	if err != nil {
		respondPipelineError(c, err)
		return
	}

	gen, _ := f.Column(model.ColGeneration)
	dem, _ := f.Column(model.ColDemand)
	resp := models.MergedResponse{Rows: []models.MergedRow{}}
	for i, k := range f.Keys {
		if !start.IsZero() && k.Date.Before(start) {
			continue
		}
		if !end.IsZero() && k.Date.After(end) {
			continue
		}
		resp.Total++
		if q.Limit > 0 && len(resp.Rows) >= q.Limit {
			continue
		}
		resp.Rows = append(resp.Rows, models.MergedRow{
			SettlementDate:   k.Date,
			SettlementPeriod: k.Period,
			Generation:       nullable(gen.Values[i]),
			Demand:           nullable(dem.Values[i]),
		})
	}
	resp.Count = len(resp.Rows)
	c.JSON(http.StatusOK, resp)
}

// GetSummary handles GET /api/v1/summary
func (h *PipelineHandler) GetSummary(c *gin.Context) {
	f, err := h.merged.Get(h.pipeline.Config().Outputs.Merged)
	if err != nil {
		respondPipelineError(c, err)
		return
	}
	c.JSON(http.StatusOK, pipeline.Describe(f))
}

// GetLastRun handles GET /api/v1/runs/last
func (h *PipelineHandler) GetLastRun(c *gin.Context) {
	s, err := h.pipeline.LastSummary()
	if err != nil {
		respondPipelineError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func nullable(v float64) *float64 {
	if model.IsMissing(v) {
		return nil
	}
	return &v
}

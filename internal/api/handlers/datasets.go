package handlers

import (
	"net/http"
	"os"

	"settlement-pipeline/internal/api/models"
	"settlement-pipeline/internal/config"

	"github.com/gin-gonic/gin"
)

// ListDatasets handles GET /api/v1/datasets
func (h *PipelineHandler) ListDatasets(c *gin.Context) {
	datasets := describeDatasets(h.pipeline.Config())
	c.JSON(http.StatusOK, gin.H{
		"datasets": datasets,
		"window": gin.H{
			"start": h.pipeline.Config().Window.Start,
			"end":   h.pipeline.Config().Window.End,
		},
		"count": len(datasets),
	})
}

func describeDatasets(cfg *config.Config) []models.DatasetInfo {
	entries := []models.DatasetInfo{
		{ID: "cost", Role: "input", Path: cfg.Inputs.Cost},
		{ID: "generation", Role: "input", Path: cfg.Inputs.Generation},
		{ID: "demand", Role: "input", Path: cfg.Inputs.Demand},
		{ID: "cost", Role: "output", Path: cfg.Outputs.Cost},
		{ID: "generation", Role: "output", Path: cfg.Outputs.Generation},
		{ID: "demand", Role: "output", Path: cfg.Outputs.Demand},
		{ID: "merged", Role: "output", Path: cfg.Outputs.Merged},
	}
	if cfg.Outputs.MergedXLSX != "" {
		entries = append(entries, models.DatasetInfo{ID: "merged_xlsx", Role: "output", Path: cfg.Outputs.MergedXLSX})
	}

	for i := range entries {
		info, err := os.Stat(entries[i].Path)
		if err != nil || info.IsDir() {
			continue
		}
		mod := info.ModTime().UTC()
		entries[i].Exists = true
		entries[i].SizeBytes = info.Size()
		entries[i].ModifiedAt = &mod
	}
	return entries
}

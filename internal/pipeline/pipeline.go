package pipeline

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"time"

	"settlement-pipeline/internal/config"
	"settlement-pipeline/internal/data"
	"settlement-pipeline/internal/log"
	"settlement-pipeline/internal/merge"
	"settlement-pipeline/internal/metrics"
	"settlement-pipeline/internal/model"
	"settlement-pipeline/internal/normalize"

	"github.com/google/uuid"
)

// Pipeline runs the batch job described by a Config. Each command computes
// all of its tables in memory and publishes files only once every stage has
// succeeded, so a failed run leaves previous outputs untouched.
type Pipeline struct {
	cfg     *config.Config
	metrics *metrics.Metrics
	engine  *merge.Engine
}

// New returns a pipeline for cfg. m may be nil.
func New(cfg *config.Config, m *metrics.Metrics) *Pipeline {
	return &Pipeline{cfg: cfg, metrics: m, engine: merge.New()}
}

func (p *Pipeline) Config() *config.Config { return p.cfg }

// Tables are the three normalized single-source tables.
type Tables struct {
	Cost       *model.Frame
	Generation *model.Frame
	Demand     *model.Frame
}

// Run normalizes the raw sources and merges generation with demand,
// publishing the three intermediate tables and the merged table.
func (p *Pipeline) Run(ctx context.Context) (*Summary, error) {
	return p.do(ctx, "run", func(ctx context.Context, s *Summary) error {
		tables, err := p.normalize(ctx, s)
		if err != nil {
			return err
		}
		res, err := p.merge(ctx, s, tables.Generation, tables.Demand)
		if err != nil {
			return err
		}
		return p.publish(ctx, s, append(p.tableOutputs(tables), p.mergedOutputs(res.Merged)...))
	})
}

// Normalize publishes only the three intermediate tables.
func (p *Pipeline) Normalize(ctx context.Context) (*Summary, error) {
	return p.do(ctx, "normalize", func(ctx context.Context, s *Summary) error {
		tables, err := p.normalize(ctx, s)
		if err != nil {
			return err
		}
		return p.publish(ctx, s, p.tableOutputs(tables))
	})
}

// Merge reads the intermediate generation and demand tables back and
// publishes the merged table.
func (p *Pipeline) Merge(ctx context.Context) (*Summary, error) {
	return p.do(ctx, "merge", func(ctx context.Context, s *Summary) error {
		start := time.Now()
		gen, err := data.ReadFrame(p.cfg.Outputs.Generation, "generation", model.GenerationSchema)
		if err != nil {
			return fmt.Errorf("read generation table: %w", err)
		}
		dem, err := data.ReadFrame(p.cfg.Outputs.Demand, "demand", model.DemandSchema)
		if err != nil {
			return fmt.Errorf("read demand table: %w", err)
		}
		p.metrics.ObserveStage("read_intermediate", start)
		s.Tables = map[string]int{"generation": gen.Len(), "demand": dem.Len()}

		res, err := p.merge(ctx, s, gen, dem)
		if err != nil {
			return err
		}
		return p.publish(ctx, s, p.mergedOutputs(res.Merged))
	})
}

func (p *Pipeline) do(ctx context.Context, command string, fn func(context.Context, *Summary) error) (*Summary, error) {
	s := &Summary{RunID: uuid.NewString(), Command: command}
	logger := log.Ctx(ctx).With(slog.String("run_id", s.RunID), slog.String("command", command))
	ctx = log.With(ctx, logger)

	start := time.Now()
	logger.InfoContext(ctx, "pipeline started")
	err := fn(ctx, s)
	s.Duration = time.Since(start)
	if err == nil {
		err = p.report(ctx, s)
	}

	status := "ok"
	if err != nil {
		status = "error"
		logger.ErrorContext(ctx, "pipeline failed", slog.Any("error", err), slog.Duration("duration", s.Duration))
	} else {
		logger.InfoContext(ctx, "pipeline finished",
			slog.Int("published", len(s.Published)),
			slog.Duration("duration", s.Duration))
	}

	if p.metrics != nil {
		p.metrics.Runs.WithLabelValues(command, status).Inc()
		if err == nil {
			p.metrics.LastSuccess.SetToCurrentTime()
		}
		if path := p.cfg.Outputs.Metrics; path != "" {
			if werr := p.metrics.WriteTextfile(path); werr != nil {
				logger.WarnContext(ctx, "failed to write metrics textfile",
					slog.String("path", path), slog.Any("error", werr))
			}
		}
	}
	return s, err
}

func (p *Pipeline) normalize(ctx context.Context, s *Summary) (*Tables, error) {
	logger := log.Ctx(ctx)
	window := normalize.Window{Start: p.cfg.Window.Start, End: p.cfg.Window.End}
	s.RowsRead = map[string]int{}
	s.Tables = map[string]int{}

	start := time.Now()
	costRecords, err := data.ReadCost(p.cfg.Inputs.Cost)
	if err != nil {
		return nil, fmt.Errorf("read cost source: %w", err)
	}
	genRecords, err := data.ReadGeneration(p.cfg.Inputs.Generation)
	if err != nil {
		return nil, fmt.Errorf("read generation source: %w", err)
	}
	demRecords, err := data.ReadDemand(p.cfg.Inputs.Demand)
	if err != nil {
		return nil, fmt.Errorf("read demand source: %w", err)
	}
	p.metrics.ObserveStage("read", start)
	s.RowsRead["cost"] = len(costRecords)
	s.RowsRead["generation"] = len(genRecords)
	s.RowsRead["demand"] = len(demRecords)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start = time.Now()
	tables := &Tables{}
	if tables.Cost, err = normalize.Cost(costRecords); err != nil {
		return nil, fmt.Errorf("normalize cost: %w", err)
	}
	if tables.Generation, err = normalize.Generation(genRecords, window); err != nil {
		return nil, fmt.Errorf("normalize generation: %w", err)
	}
	if tables.Demand, err = normalize.Demand(demRecords, window); err != nil {
		return nil, fmt.Errorf("normalize demand: %w", err)
	}
	p.metrics.ObserveStage("normalize", start)

	for _, f := range []*model.Frame{tables.Cost, tables.Generation, tables.Demand} {
		s.Tables[f.Name] = f.Len()
		logger.InfoContext(ctx, "normalized table",
			slog.String("table", f.Name),
			slog.Int("rows_read", s.RowsRead[f.Name]),
			slog.Int("rows", f.Len()))
		if p.metrics != nil {
			p.metrics.RowsRead.WithLabelValues(f.Name).Set(float64(s.RowsRead[f.Name]))
			p.metrics.RowsNormalized.WithLabelValues(f.Name).Set(float64(f.Len()))
		}
	}
	return tables, ctx.Err()
}

func (p *Pipeline) merge(ctx context.Context, s *Summary, gen, dem *model.Frame) (*merge.Result, error) {
	start := time.Now()
	res, err := p.engine.Run(gen, dem)
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	p.metrics.ObserveStage("merge", start)

	s.Merged = summarizeResult(res)
	log.Ctx(ctx).InfoContext(ctx, "merged generation and demand",
		slog.Int("rows", res.Merged.Len()),
		slog.Int("dates", res.Dates),
		slog.Int("joined_rows", res.JoinedRows),
		slog.Int("synthesized_rows", res.SynthesizedRows),
		slog.Int("remaining_missing", res.Remaining()))
	for _, f := range res.Fills {
		if f.Remaining > 0 {
			log.Ctx(ctx).WarnContext(ctx, "cells left missing after interpolation",
				slog.String("column", f.Column), slog.Int("cells", f.Remaining))
		}
	}
	if p.metrics != nil {
		p.metrics.RowsMerged.Set(float64(res.Merged.Len()))
		p.metrics.RowsSynthesized.Set(float64(res.SynthesizedRows))
		for _, f := range res.Fills {
			p.metrics.CellsInterpolated.WithLabelValues(f.Column).Set(float64(f.Filled))
			p.metrics.CellsMissing.WithLabelValues(f.Column).Set(float64(f.Remaining))
		}
	}
	return res, ctx.Err()
}

type output struct {
	path  string
	write func(w io.Writer) error
}

func frameCSV(path string, f *model.Frame) output {
	return output{path: path, write: data.FrameCSV(f)}
}

func (p *Pipeline) tableOutputs(t *Tables) []output {
	return []output{
		frameCSV(p.cfg.Outputs.Cost, t.Cost),
		frameCSV(p.cfg.Outputs.Generation, t.Generation),
		frameCSV(p.cfg.Outputs.Demand, t.Demand),
	}
}

func (p *Pipeline) mergedOutputs(merged *model.Frame) []output {
	outs := []output{frameCSV(p.cfg.Outputs.Merged, merged)}
	if path := p.cfg.Outputs.MergedXLSX; path != "" {
		outs = append(outs, output{path: path, write: data.FrameXLSX(merged)})
	}
	return outs
}

// publish stages every output before renaming any of them into place, so a
// failure while writing leaves all previous files untouched.
func (p *Pipeline) publish(ctx context.Context, s *Summary, outs []output) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()
	defer p.metrics.ObserveStage("publish", start)

	staged := make([]*data.Staged, 0, len(outs))
	discard := func() {
		for _, st := range staged {
			if err := st.Discard(); err != nil {
				log.Ctx(ctx).WarnContext(ctx, "failed to remove staged file",
					slog.String("path", st.Path), slog.Any("error", err))
			}
		}
	}
	for _, o := range outs {
		st, err := data.Stage(o.path, o.write)
		if err != nil {
			discard()
			return err
		}
		staged = append(staged, st)
	}
	if err := ctx.Err(); err != nil {
		discard()
		return err
	}

	for i, st := range staged {
		if err := st.Commit(); err != nil {
			staged = staged[i+1:]
			discard()
			return err
		}
		s.Published = append(s.Published, st.Path)
		log.Ctx(ctx).InfoContext(ctx, "published", slog.String("path", st.Path))
	}
	return nil
}

// report publishes the run summary when outputs.summary is set. It is
// written last so that it only ever describes a completed command.
func (p *Pipeline) report(ctx context.Context, s *Summary) error {
	path := p.cfg.Outputs.Summary
	if path == "" {
		return nil
	}
	s.Published = append(s.Published, path)
	if err := data.WriteJSON(path, s); err != nil {
		s.Published = s.Published[:len(s.Published)-1]
		return fmt.Errorf("write run summary: %w", err)
	}
	log.Ctx(ctx).InfoContext(ctx, "published", slog.String("path", path))
	return nil
}

// LastSummary loads the run summary written by the last successful command.
// It fails with fs.ErrNotExist when no summary output is configured or none
// has been written yet.
func (p *Pipeline) LastSummary() (*Summary, error) {
	path := p.cfg.Outputs.Summary
	if path == "" {
		return nil, fmt.Errorf("no summary output configured: %w", fs.ErrNotExist)
	}
	var s Summary
	if err := data.LoadJSON(path, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

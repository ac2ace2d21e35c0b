package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"settlement-pipeline/internal/config"
	"settlement-pipeline/internal/data"
	"settlement-pipeline/internal/log"
	"settlement-pipeline/internal/metrics"
	"settlement-pipeline/internal/pipeline"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "run":
		err = cmdPipeline(ctx, "run", os.Args[2:])
	case "normalize":
		err = cmdPipeline(ctx, "normalize", os.Args[2:])
	case "merge":
		err = cmdPipeline(ctx, "merge", os.Args[2:])
	case "summary":
		err = cmdSummary(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("usage:")
	fmt.Println("  cli run       [--config pipeline.yaml] [--log-level info]")
	fmt.Println("  cli normalize [--config pipeline.yaml]")
	fmt.Println("  cli merge     [--config pipeline.yaml]")
	fmt.Println("  cli summary   [--config pipeline.yaml] [--file merged.csv]")
	fmt.Println("")
	fmt.Println("notes:")
	fmt.Println("  - run = normalize + merge; outputs are published only if every stage succeeds")
	fmt.Println("  - without --config the historical Datasets/ paths and 2016-01-06..2024-04-01 window are used")
}

type commonFlags struct {
	cfgPath  *string
	logLevel *string
}

func registerCommon(fs *flag.FlagSet) commonFlags {
	return commonFlags{
		cfgPath:  fs.String("config", "", "Path to YAML config (default: built-in paths)"),
		logLevel: fs.String("log-level", "info", "Log level: debug, info, warn, error"),
	}
}

func (c commonFlags) setup() (*config.Config, error) {
	level, err := log.ParseLevel(*c.logLevel)
	if err != nil {
		return nil, err
	}
	log.Setup(os.Stderr, level)
	return config.Load(*c.cfgPath)
}

func cmdPipeline(ctx context.Context, command string, args []string) error {
	fs := flag.NewFlagSet(command, flag.ExitOnError)
	common := registerCommon(fs)
	_ = fs.Parse(args)

	cfg, err := common.setup()
	if err != nil {
		return err
	}

	p := pipeline.New(cfg, metrics.New())
	var s *pipeline.Summary
	switch command {
	case "run":
		s, err = p.Run(ctx)
	case "normalize":
		s, err = p.Normalize(ctx)
	case "merge":
		s, err = p.Merge(ctx)
	}
	if err != nil {
		return err
	}

	printSummary(s)
	return nil
}

func printSummary(s *pipeline.Summary) {
	for _, name := range sortedKeys(s.Tables) {
		if read, ok := s.RowsRead[name]; ok {
			fmt.Printf("%-12s read=%-9d rows=%d\n", name, read, s.Tables[name])
		} else {
			fmt.Printf("%-12s rows=%d\n", name, s.Tables[name])
		}
	}
	if m := s.Merged; m != nil {
		fmt.Printf("merged       rows=%d dates=%d joined=%d synthesized=%d\n",
			m.Rows, m.Dates, m.JoinedRows, m.SynthesizedRows)
		for _, f := range m.Fills {
			fmt.Printf("  %-10s interpolated=%d still_missing=%d\n", f.Column, f.Filled, f.Remaining)
		}
	}
	for _, path := range s.Published {
		fmt.Printf("Wrote %s\n", path)
	}
	fmt.Printf("run %s finished in %s\n", s.RunID, s.Duration)
}

func cmdSummary(args []string) error {
	fs := flag.NewFlagSet("summary", flag.ExitOnError)
	common := registerCommon(fs)
	file := fs.String("file", "", "Merged CSV to describe (default: outputs.merged from config)")
	_ = fs.Parse(args)

	cfg, err := common.setup()
	if err != nil {
		return err
	}
	path := *file
	if path == "" {
		path = cfg.Outputs.Merged
	}

	f, err := data.ReadMerged(path)
	if err != nil {
		return err
	}
	d := pipeline.Describe(f)

	fmt.Printf("file        %s\n", path)
	fmt.Printf("rows        %d\n", d.Rows)
	fmt.Printf("dates       %d (%s .. %s)\n", d.Dates, d.FirstDate, d.LastDate)
	fmt.Printf("dense       %t\n", d.Dense)
	for _, n := range sortedKeys(d.PeriodsPerDate) {
		fmt.Printf("  %2d periods: %d dates\n", n, d.PeriodsPerDate[n])
	}
	for _, col := range sortedKeys(d.Missing) {
		fmt.Printf("missing     %-10s %d\n", col, d.Missing[col])
	}
	return nil
}

func sortedKeys[K int | string, V any](m map[K]V) []K {
	out := make([]K, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

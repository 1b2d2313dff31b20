// Command surface sweeps the rule base over a grid of inputs and writes the
// resulting suitability surface as CSV.
//
// Usage:
//
//	go run ./cmd/surface -steps 21 -out surface.csv
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/MikeSquared-Agency/Suitability/internal/fuzzy"
	"github.com/MikeSquared-Agency/Suitability/internal/rulebase"
)

func main() {
	rulesPath := flag.String("rules", "", "rule base file (default: built-in)")
	steps := flag.Int("steps", 11, "grid points per continuous input")
	outPath := flag.String("out", "", "output CSV path (default: stdout)")
	workers := flag.Int("workers", 0, "parallel evaluations, 0 for unbounded")
	resolution := flag.Int("resolution", fuzzy.DefaultOptions().Resolution, "output samples")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	rb := rulebase.Default()
	if *rulesPath != "" {
		var err error
		if rb, err = rulebase.Load(*rulesPath); err != nil {
			logger.Error("failed to load rule base", "error", err)
			os.Exit(1)
		}
	}
	opts := fuzzy.DefaultOptions()
	opts.Resolution = *resolution
	engine, err := fuzzy.NewEngine(rb, opts)
	if err != nil {
		logger.Error("failed to build engine", "error", err)
		os.Exit(1)
	}

	out := io.Writer(os.Stdout)
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			logger.Error("failed to create output", "error", err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}

	n, err := sweep(context.Background(), engine, *steps, *workers, out)
	if err != nil {
		logger.Error("sweep failed", "error", err)
		os.Exit(1)
	}
	logger.Info("surface written", "rule_base", rb.Name, "points", n)
}

// grid returns every combination of the inputs' sample points. Continuous
// inputs get steps evenly spaced points over their domain; inputs whose sets
// are all single points (such as a capability flag) get exactly those points.
func grid(rb fuzzy.RuleBase, steps int) [][]float64 {
	axes := make([][]float64, len(rb.Inputs))
	for i, v := range rb.Inputs {
		axes[i] = axis(v, steps)
	}

	points := [][]float64{{}}
	for _, ax := range axes {
		next := make([][]float64, 0, len(points)*len(ax))
		for _, p := range points {
			for _, x := range ax {
				q := make([]float64, len(p), len(p)+1)
				copy(q, p)
				next = append(next, append(q, x))
			}
		}
		points = next
	}
	return points
}

func axis(v fuzzy.Variable, steps int) []float64 {
	var singletons []float64
	for _, s := range v.Sets {
		if len(s.Params) == 0 || s.Params[0] != s.Params[len(s.Params)-1] {
			singletons = nil
			break
		}
		singletons = append(singletons, s.Params[0])
	}
	if singletons != nil {
		return singletons
	}

	if steps < 2 {
		return []float64{v.Midpoint()}
	}
	xs := make([]float64, steps)
	for i := range xs {
		xs[i] = v.Min + (v.Max-v.Min)*float64(i)/float64(steps-1)
	}
	return xs
}

func sweep(ctx context.Context, engine *fuzzy.Engine, steps, workers int, out io.Writer) (int, error) {
	rb := engine.RuleBase()
	points := grid(rb, steps)
	results, err := engine.EvaluateBatch(ctx, points, workers)
	if err != nil {
		return 0, err
	}

	w := csv.NewWriter(out)
	header := make([]string, 0, len(rb.Inputs)+2)
	for _, v := range rb.Inputs {
		header = append(header, v.Name)
	}
	header = append(header, rb.Output.Name, "status")
	if err := w.Write(header); err != nil {
		return 0, err
	}

	for i, p := range points {
		row := make([]string, 0, len(p)+2)
		for _, x := range p {
			row = append(row, strconv.FormatFloat(x, 'g', -1, 64))
		}
		row = append(row, strconv.FormatFloat(results[i].Value, 'f', 6, 64), string(results[i].Status))
		if err := w.Write(row); err != nil {
			return 0, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return 0, fmt.Errorf("write csv: %w", err)
	}
	return len(points), nil
}

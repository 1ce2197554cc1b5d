package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/fluid/config"
)

// evalRecord is one row of optimize_log.csv.
type evalRecord struct {
	Eval                int     `csv:"eval"`
	Fitness             float64 `csv:"fitness"`
	Residual            float64 `csv:"residual"`
	PressureIterations  float64 `csv:"pressure_iterations"`
	PressureRetain      float64 `csv:"pressure_retain"`
	Vorticity           float64 `csv:"vorticity"`
	VelocityDissipation float64 `csv:"velocity_dissipation"`
}

// evalLog appends evaluations to a CSV file and remembers the best one.
type evalLog struct {
	file  *os.File
	count int
	best  float64
	bestX []float64
	start time.Time
}

func newEvalLog(path string) (*evalLog, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", path, err)
	}
	return &evalLog{file: f, best: math.Inf(1), start: time.Now()}, nil
}

// record logs one evaluation of the clamped parameter vector x.
func (l *evalLog) record(x []float64, fitness, residual float64) error {
	l.count++
	if fitness < l.best {
		l.best = fitness
		l.bestX = x
	}

	rec := []evalRecord{{
		Eval:                l.count,
		Fitness:             fitness,
		Residual:            residual,
		PressureIterations:  x[0],
		PressureRetain:      x[1],
		Vorticity:           x[2],
		VelocityDissipation: x[3],
	}}
	if l.count == 1 {
		return gocsv.Marshal(rec, l.file)
	}
	return gocsv.MarshalWithoutHeaders(rec, l.file)
}

// eta estimates the time left for total evaluations.
func (l *evalLog) eta(total int) time.Duration {
	if l.count == 0 {
		return 0
	}
	per := time.Since(l.start) / time.Duration(l.count)
	return time.Duration(total-l.count) * per
}

func (l *evalLog) Close() error { return l.file.Close() }

// formatDuration formats a duration as 1h02m03s or 2m03s.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}

type options struct {
	configPath    string
	steps         int
	seeds         int
	maxEvals      int
	population    int
	iterationCost float64
	outputDir     string
}

func main() {
	var o options
	flag.StringVar(&o.configPath, "config", "", "Base config YAML file (empty = use defaults)")
	flag.IntVar(&o.steps, "steps", 600, "Simulation steps per run")
	flag.IntVar(&o.seeds, "seeds", 3, "Number of seeds per evaluation")
	flag.IntVar(&o.maxEvals, "max-evals", 200, "Maximum number of evaluations")
	flag.IntVar(&o.population, "population", 0, "CMA-ES population size (0 = auto)")
	flag.Float64Var(&o.iterationCost, "iteration-cost", 0.002, "Fitness charge per pressure iteration")
	flag.StringVar(&o.outputDir, "output", "", "Output directory for results")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, nil)))

	if err := run(o); err != nil {
		slog.Error("optimize failed", "error", err)
		os.Exit(1)
	}
}

func run(o options) error {
	if o.outputDir == "" {
		return errors.New("-output is required")
	}
	if err := os.MkdirAll(o.outputDir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	baseCfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}

	params := NewParamVector()
	seeds := make([]int64, o.seeds)
	for i := range seeds {
		seeds[i] = int64(i*1000 + 42)
	}
	evaluator := NewFitnessEvaluator(params, o.steps, seeds, baseCfg, o.iterationCost)

	evals, err := newEvalLog(filepath.Join(o.outputDir, "optimize_log.csv"))
	if err != nil {
		return err
	}
	defer evals.Close()

	// Func is called sequentially (Concurrent is 0), so evals needs no lock.
	problem := optimize.Problem{
		Func: func(unit []float64) float64 {
			x := params.Clamp(params.Denormalize(unit))
			fitness := evaluator.Evaluate(x)
			residual := evaluator.LastResidual()
			if err := evals.record(x, fitness, residual); err != nil {
				slog.Warn("failed to log evaluation", "error", err)
			}
			slog.Info("eval",
				"n", evals.count,
				"of", o.maxEvals,
				"fitness", fitness,
				"residual", residual,
				"iterations", x[0],
				"best", evals.best,
				"eta", formatDuration(evals.eta(o.maxEvals)),
			)
			return fitness
		},
	}

	pop := o.population
	if pop == 0 {
		pop = 4 + 3*params.Dim()/2
	}
	method := &optimize.CmaEsChol{InitStepSize: 0.3, Population: pop}
	settings := &optimize.Settings{FuncEvaluations: o.maxEvals}

	slog.Info("starting CMA-ES",
		"params", params.Dim(),
		"population", pop,
		"max_evals", o.maxEvals,
		"seeds", o.seeds,
		"steps", o.steps,
	)

	initX := params.Normalize(params.Extract(baseCfg))
	result, err := optimize.Minimize(problem, initX, settings, method)
	if err != nil {
		slog.Info("optimization ended", "reason", err)
	}

	best := evals.bestX
	if best == nil && result != nil {
		best = params.Clamp(params.Denormalize(result.X))
	}
	if best == nil {
		return errors.New("no evaluations completed")
	}

	bestCfg := *baseCfg
	params.Apply(&bestCfg, best)
	out := filepath.Join(o.outputDir, "best_config.yaml")
	if err := bestCfg.WriteYAML(out); err != nil {
		return fmt.Errorf("writing best config: %w", err)
	}

	attrs := []any{"evals", evals.count, "elapsed", formatDuration(time.Since(evals.start)), "fitness", evals.best, "config", out}
	for i, p := range params.Params {
		attrs = append(attrs, "fluid."+p.Name, best[i])
	}
	slog.Info("optimization complete", attrs...)
	return nil
}

// Package pipeline runs the full analysis of a scalar field on a triangle mesh:
// gradient construction, Morse complex extraction, persistence simplification
// and reporting, with optional verification and segmentation.
package pipeline

import (
	"context"
	"math"
	"time"

	"github.com/pkg/errors"

	cc "github.com/notargets/gomorse/cellcomplex"
	"github.com/notargets/gomorse/fieldexpr"
	"github.com/notargets/gomorse/gradient"
	"github.com/notargets/gomorse/homology"
	"github.com/notargets/gomorse/logging"
	"github.com/notargets/gomorse/morse"
	"github.com/notargets/gomorse/persistence"
	"github.com/notargets/gomorse/readfiles"
	"github.com/notargets/gomorse/segmentation"
)

// ErrVerification reports disagreement between the simplified Morse complex
// and the homology of the input.
var ErrVerification = errors.New("pipeline: verification failed")

// Config controls a run. Verify checks the field invariants and compares the Z2 Betti numbers of the
// simplified Morse complex with the real Betti numbers of the input; the two
// agree on orientable surfaces.
type Config struct {
	Title           string
	Threshold       float64   // cancel pairs with persistence up to this, +Inf for all
	Thresholds      []float64 // Betti numbers reported at each
	Workers         int
	Verify          bool
	Segment         bool
	InvariantChecks bool
	Logger          *logging.Logger
}

func DefaultConfig() Config {
	return Config{Threshold: math.Inf(1)}
}

type Result struct {
	Complex      *cc.Complex
	Field        *gradient.Field
	Graph        *morse.Graph
	Engine       *morse.Engine
	Diagram      *persistence.Diagram
	Segmentation *segmentation.Segmentation
	Report       *Report
}

// FieldValues samples expr at the mesh points, or reads one value per point
// from file. Exactly one of the two must be set.
func FieldValues(m *readfiles.Mesh, expr, file string) (values []float64, err error) {
	switch {
	case expr != "" && file != "":
		return nil, errors.New("pipeline: both a field expression and a field file given")
	case expr != "":
		var e *fieldexpr.Expr
		if e, err = fieldexpr.Compile(expr); err != nil {
			return nil, err
		}
		return e.Sample(m.Points), nil
	case file != "":
		if values, err = readfiles.ReadFieldFile(file); err != nil {
			return nil, err
		}
		if len(values) != len(m.Points) {
			return nil, errors.Errorf("pipeline: field file has %d values for %d points", len(values), len(m.Points))
		}
		return values, nil
	}
	return nil, errors.New("pipeline: no field given")
}

// Run builds the complex of mesh with values and analyses it.
func Run(ctx context.Context, m *readfiles.Mesh, values []float64, cfg Config) (*Result, error) {
	cx, err := m.Complex(values)
	if err != nil {
		return nil, errors.Wrap(err, "pipeline: building complex")
	}
	return RunComplex(ctx, cx, cfg)
}

func RunComplex(ctx context.Context, cx *cc.Complex, cfg Config) (res *Result, err error) {
	var (
		log   = cfg.Logger
		start = time.Now()
	)
	if log == nil {
		log = logging.NoopLogger()
	}
	res = &Result{Complex: cx}
	if res.Field, err = gradient.Build(ctx, cx,
		gradient.WithWorkers(cfg.Workers),
		gradient.WithLogger(log),
	); err != nil {
		return nil, err
	}
	raw := res.Field.CriticalCount()

	mopts := []morse.Option{morse.WithLogger(log)}
	if cfg.InvariantChecks {
		mopts = append(mopts, morse.WithInvariantChecks())
	}
	if res.Graph, err = morse.Extract(ctx, res.Field, mopts...); err != nil {
		return nil, err
	}
	res.Engine = morse.NewEngine(res.Field, res.Graph, mopts...)
	if _, err = res.Engine.Simplify(ctx, cfg.Threshold); err != nil {
		return nil, err
	}
	res.Diagram = persistence.NewDiagram(res.Field, res.Engine.History(), raw)
	res.Report = newReport(cfg, res)

	if cfg.Verify {
		if err = verify(res); err != nil {
			return nil, err
		}
	}
	if cfg.Segment {
		res.Segmentation = segmentation.Segment(res.Graph)
		res.Report.addSegmentation(res.Segmentation)
	}
	res.Report.Elapsed = time.Since(start)
	log.LogPhase(ctx, "pipeline", res.Report.Elapsed,
		"title", cfg.Title,
		"cancelled", res.Report.Cancellations,
	)
	return
}

func verify(res *Result) error {
	if err := res.Field.Validate(); err != nil {
		return errors.Wrap(ErrVerification, err.Error())
	}
	if err := res.Field.CheckAcyclic(); err != nil {
		return errors.Wrap(ErrVerification, err.Error())
	}
	var (
		reduced = persistence.PairCells(res.Graph).Betti
		direct  = homology.Betti(res.Complex)
		final   = res.Diagram.FinalCounts()
	)
	res.Report.ReducedBetti = &reduced
	res.Report.HomologyBetti = &direct
	if reduced != direct {
		return errors.Wrapf(ErrVerification, "Morse complex Betti %v, homology Betti %v", reduced, direct)
	}
	for d := range final {
		if final[d] < direct[d] {
			return errors.Wrapf(ErrVerification, "%d critical cells of dimension %d below Betti number %d",
				final[d], d, direct[d])
		}
	}
	if res.Diagram.EulerCharacteristic() != res.Complex.EulerCharacteristic() {
		return errors.Wrap(ErrVerification, "Euler characteristic changed")
	}
	return nil
}

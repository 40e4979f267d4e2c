package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/okian/glyco/internal/domain/measurement"
	"github.com/okian/glyco/internal/domain/scoring"
	"github.com/okian/glyco/pkg/logger"
	"github.com/okian/glyco/pkg/metrics"
)

// Row is one screening input. A row whose Err is set failed to parse and is
// reported as failed without being scored.
type Row struct {
	Line        int
	Measurement measurement.Measurement
	Err         error
}

// Outcome pairs a row with its result or error.
type Outcome struct {
	Row    Row
	Result Result
	Err    error
}

// Summary aggregates a screening run.
type Summary struct {
	ID        uuid.UUID             `json:"id" yaml:"id"`
	Total     int                   `json:"total" yaml:"total"`
	Scored    int                   `json:"scored" yaml:"scored"`
	Failed    int                   `json:"failed" yaml:"failed"`
	Positive  int                   `json:"positive" yaml:"positive"`
	Levels    map[scoring.Level]int `json:"levels" yaml:"levels"`
	MeanScore float64               `json:"mean_score" yaml:"mean_score"`
	Threshold float64               `json:"threshold" yaml:"threshold"`
}

// Screening is the full result of Screen. Outcomes follow input order.
type Screening struct {
	Summary  Summary
	Outcomes []Outcome
}

// Screen scores rows concurrently. Row failures are recorded per row and do
// not stop the run; artifact failures and cancellation fail the whole run.
func (s *Service) Screen(ctx context.Context, rows []Row) (Screening, error) {
	switch {
	case len(rows) == 0:
		return Screening{}, ErrNoRows
	case len(rows) > s.maxScreenRows:
		return Screening{}, fmt.Errorf("%w: %d rows, limit %d", ErrTooManyRows, len(rows), s.maxScreenRows)
	}

	if _, err := s.params.Get(ctx); err != nil {
		return Screening{}, fmt.Errorf("%w: %w", ErrPrediction, err)
	}
	if _, err := s.loadModel(ctx); err != nil {
		return Screening{}, fmt.Errorf("%w: %w", ErrPrediction, err)
	}

	id := uuid.New()
	log := s.logger.With(logger.String("screeningID", id.String()))
	start := time.Now()

	outcomes := make([]Outcome, len(rows))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.screeningWorkers)
	for i, row := range rows {
		outcomes[i].Row = row
		if row.Err != nil {
			outcomes[i].Err = row.Err
			continue
		}
		i, row := i, row
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := s.Predict(gctx, row.Measurement)
			outcomes[i].Result, outcomes[i].Err = res, err
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Screening{}, err
	}
	if err := ctx.Err(); err != nil {
		return Screening{}, err
	}

	summary := summarize(outcomes)
	summary.ID = id
	summary.Threshold = s.calibrator.Threshold()

	s.screenings.Add(1)
	metrics.RecordScreening(summary.Scored, summary.Failed)
	log.Info(ctx, "screening complete",
		logger.Int("total", summary.Total),
		logger.Int("scored", summary.Scored),
		logger.Int("failed", summary.Failed),
		logger.Duration("elapsed", time.Since(start)),
	)
	return Screening{Summary: summary, Outcomes: outcomes}, nil
}

func summarize(outcomes []Outcome) Summary {
	sum := Summary{
		Total: len(outcomes),
		Levels: map[scoring.Level]int{
			scoring.LevelLow:    0,
			scoring.LevelMedium: 0,
			scoring.LevelHigh:   0,
		},
	}
	scores := make([]float64, 0, len(outcomes))
	for _, o := range outcomes {
		if o.Err != nil {
			sum.Failed++
			continue
		}
		sum.Scored++
		sum.Levels[o.Result.Level]++
		if o.Result.Positive {
			sum.Positive++
		}
		scores = append(scores, o.Result.Score)
	}
	if len(scores) > 0 {
		sum.MeanScore = stat.Mean(scores, nil)
	}
	return sum
}

// Package pipeline runs the scoring stages for one charity and folds their
// outputs into a final verdict. Stages are independent: they fan out in
// parallel and none of them sees another stage's result.
package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"cointribute/internal/ai"
	"cointribute/internal/oracle/models"
)

// TextAnalyzer produces the base legitimacy score from the registration text.
type TextAnalyzer interface {
	AnalyzeCharity(ctx context.Context, req ai.TextRequest) (ai.TextAnalysis, error)
}

// ImageAnalyzer reviews the uploaded evidence images.
type ImageAnalyzer interface {
	AnalyzeImages(ctx context.Context, req ai.ImageRequest) (ai.ImageAnalysis, error)
}

// DocumentProber checks whether the registration's evidence reference
// resolves to a reachable document.
type DocumentProber interface {
	Probe(ctx context.Context, ref string) bool
}

// Input is everything the pipeline needs to score one charity.
type Input struct {
	Charity   models.Charity
	ImageURLs []string
}

// Runner executes the stages and aggregates a breakdown.
type Runner struct {
	text   TextAnalyzer
	images ImageAnalyzer
	docs   DocumentProber
	logger *slog.Logger
	tracer trace.Tracer
}

// NewRunner wires the stage collaborators into a pipeline.
func NewRunner(text TextAnalyzer, images ImageAnalyzer, docs DocumentProber, logger *slog.Logger) *Runner {
	return &Runner{
		text:   text,
		images: images,
		docs:   docs,
		logger: logger,
		tracer: otel.Tracer("oracle/pipeline"),
	}
}

// Score runs every applicable stage concurrently and returns the aggregated
// breakdown. Text-analysis failures escalate as a *models.StageFailure; probe
// stage failures degrade to neutral sub-results and never fail the run.
func (r *Runner) Score(ctx context.Context, in Input) (models.ScoreBreakdown, error) {
	ctx, span := r.tracer.Start(ctx, "pipeline.Score",
		trace.WithAttributes(attribute.Int64("charity.id", int64(in.Charity.ID))))
	defer span.End()

	var (
		text     ai.TextAnalysis
		image    ai.ImageAnalysis
		imageOK  bool
		docValid bool
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		sctx, sspan := r.tracer.Start(gctx, "pipeline.text")
		defer sspan.End()

		res, err := r.text.AnalyzeCharity(sctx, ai.TextRequest{
			Name:        in.Charity.Name,
			Description: in.Charity.Description,
			Wallet:      in.Charity.Wallet,
			EvidenceRef: in.Charity.EvidenceRef,
		})
		if err != nil {
			kind := models.FailureTransient
			if errors.Is(err, ai.ErrMalformedResponse) {
				kind = models.FailureMalformed
			}
			return models.NewStageFailure("text", kind, err)
		}
		text = res
		return nil
	})

	if len(in.ImageURLs) > 0 {
		g.Go(func() error {
			sctx, sspan := r.tracer.Start(gctx, "pipeline.image")
			defer sspan.End()

			res, err := r.images.AnalyzeImages(sctx, ai.ImageRequest{
				Name:        in.Charity.Name,
				Description: in.Charity.Description,
				ImageURLs:   in.ImageURLs,
			})
			if err != nil {
				r.logger.Warn("image analysis failed, scoring without image signal",
					"charity_id", in.Charity.ID,
					"error", err,
				)
				return nil
			}
			image = res
			imageOK = true
			return nil
		})
	}

	g.Go(func() error {
		sctx, sspan := r.tracer.Start(gctx, "pipeline.document")
		defer sspan.End()

		docValid = r.docs.Probe(sctx, in.Charity.EvidenceRef)
		return nil
	})

	if err := g.Wait(); err != nil {
		return models.ScoreBreakdown{}, err
	}

	breakdown := models.ScoreBreakdown{
		BaseScore:     text.BaseScore,
		Reasoning:     text.Reasoning,
		Flags:         text.Flags,
		PresenceFound: presenceSignal(in.Charity.Name),
		DocumentValid: docValid,
	}
	if imageOK {
		breakdown.ImageScore = image.Score
		breakdown.ImageValid = image.Valid
		breakdown.ImageReasoning = image.Reasoning
	}
	breakdown = Aggregate(breakdown)

	span.SetAttributes(
		attribute.Int("score.final", breakdown.FinalScore),
		attribute.Bool("score.approved", breakdown.Approved),
	)
	return breakdown, nil
}

package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/david/opportunity-finder/internal/config"
	"github.com/david/opportunity-finder/internal/models"
)

// Generator turns an industry/country pair into validated opportunity records with a
// single schema-constrained model call.
type Generator struct {
	model     Model
	profile   config.Profile
	timeout   time.Duration
	validator *recordValidator
	logger    *zap.Logger
}

// NewGenerator wires a model with the prompt profile. timeout <= 0 disables the
// per-call deadline; the caller's context still applies.
func NewGenerator(model Model, profile config.Profile, timeout time.Duration, logger *zap.Logger) (*Generator, error) {
	if model == nil {
		return nil, errors.New("generator requires a model")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	validator, err := newRecordValidator()
	if err != nil {
		return nil, err
	}
	return &Generator{
		model:     model,
		profile:   profile,
		timeout:   timeout,
		validator: validator,
		logger:    logger,
	}, nil
}

// Generate asks the model for opportunities in the given industry and country.
// Any failure is returned as a *GenerationFailure; there are no retries.
func (g *Generator) Generate(ctx context.Context, industry, country string) ([]models.OpportunityRecord, error) {
	industry = strings.TrimSpace(industry)
	country = strings.TrimSpace(country)
	if industry == "" || country == "" {
		return nil, newFailure(errors.New("industry and country are required"))
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	log := g.logger.With(zap.String("industry", industry), zap.String("country", country))
	started := time.Now()

	raw, err := g.model.GenerateJSON(ctx, JSONRequest{
		Prompt:      BuildOpportunityPrompt(g.profile, industry, country),
		Schema:      ResponseSchema(),
		Temperature: g.profile.Temperature,
	})
	if err != nil {
		log.Error("opportunity generation failed", zap.Error(err), zap.Duration("elapsed", time.Since(started)))
		return nil, newFailure(err)
	}

	records, err := g.parse(raw)
	if err != nil {
		log.Error("opportunity response rejected", zap.Error(err), zap.Int("raw_bytes", len(raw)))
		log.Debug("rejected response", zap.String("raw", raw))
		return nil, newFailure(err)
	}

	if len(records) != g.profile.Count {
		log.Warn("model returned unexpected number of opportunities",
			zap.Int("want", g.profile.Count), zap.Int("got", len(records)))
	}
	log.Info("opportunities generated", zap.Int("count", len(records)), zap.Duration("elapsed", time.Since(started)))
	return records, nil
}

func (g *Generator) parse(raw string) ([]models.OpportunityRecord, error) {
	items, err := decodeArray(raw)
	if err != nil {
		return nil, err
	}
	normalizeItems(items)
	records, err := g.validator.Validate(items)
	if err != nil {
		return nil, fmt.Errorf("validate records: %w", err)
	}
	return records, nil
}

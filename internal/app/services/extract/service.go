// Package extract turns scraped recipe text into structured recipes using a
// generative model with a fixed JSON output schema.
package extract

import (
	"context"
	"fmt"
	"strings"
	"time"

	domain "github.com/pantrylab/recipehub/internal/app/domain/extract"
	"github.com/pantrylab/recipehub/internal/app/metrics"
	"github.com/pantrylab/recipehub/pkg/logger"
)

// Generator produces one structured recipe from raw text.
type Generator interface {
	Generate(ctx context.Context, text string) (domain.Recipe, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, text string) (domain.Recipe, error)

func (f GeneratorFunc) Generate(ctx context.Context, text string) (domain.Recipe, error) {
	return f(ctx, text)
}

// Service runs extraction over batches of recipe texts.
type Service struct {
	generator Generator
	log       *logger.Logger
	progress  func(done, total int)
}

// New constructs an extraction service.
func New(generator Generator, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("extract")
	}
	return &Service{
		generator: generator,
		log:       log,
	}
}

// WithProgress registers a callback invoked after each batch item, finished
// or skipped. Used by the CLI to drive its progress bar.
func (s *Service) WithProgress(fn func(done, total int)) {
	s.progress = fn
}

// Extract converts one recipe text into its structured form.
func (s *Service) Extract(ctx context.Context, text string) (domain.Recipe, error) {
	if strings.TrimSpace(text) == "" {
		return domain.Recipe{}, fmt.Errorf("text is required")
	}

	start := time.Now()
	recipe, err := s.generator.Generate(ctx, text)
	if err != nil {
		metrics.RecordExtraction("failed", time.Since(start))
		return domain.Recipe{}, err
	}
	metrics.RecordExtraction("completed", time.Since(start))
	return recipe, nil
}

// Run extracts every text in the batch. Items the model cannot parse are
// logged and skipped so one bad page does not sink the whole run.
func (s *Service) Run(ctx context.Context, texts []string) ([]domain.Recipe, error) {
	out := make([]domain.Recipe, 0, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return out, err
		}

		recipe, err := s.Extract(ctx, text)
		if err != nil {
			s.log.WithError(err).WithField("item", i).Warn("extraction failed; skipping")
		} else {
			s.log.WithField("item", i).
				WithField("recipe_name", recipe.RecipeName).
				Debug("recipe extracted")
			out = append(out, recipe)
		}
		if s.progress != nil {
			s.progress(i+1, len(texts))
		}
	}
	return out, nil
}

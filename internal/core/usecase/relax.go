package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mlucchetti/rfdrelax/internal/core/domain"
	"github.com/mlucchetti/rfdrelax/internal/core/ports"
)

type RelaxUseCase struct {
	catalogSrc ports.CatalogSource
	datasetSrc ports.DatasetSource
	logger     *slog.Logger
	minMatches int
	maxRounds  int
}

// NewRelaxUseCase wires the relaxation driver. minMatches is the default
// row count a query must reach (at least 1); maxRounds caps attempted
// candidates per run, 0 meaning all of them.
func NewRelaxUseCase(
	catalogSrc ports.CatalogSource,
	datasetSrc ports.DatasetSource,
	logger *slog.Logger,
	minMatches int,
	maxRounds int,
) *RelaxUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	if minMatches <= 0 {
		minMatches = 1
	}
	if maxRounds < 0 {
		maxRounds = 0
	}
	return &RelaxUseCase{
		catalogSrc: catalogSrc,
		datasetSrc: datasetSrc,
		logger:     logger,
		minMatches: minMatches,
		maxRounds:  maxRounds,
	}
}

// Relax evaluates the query and, when it falls short of the match target,
// tries the ranked candidate dependencies one at a time, each widening a
// fresh copy of the original query. The first widened query reaching the
// target wins; a run that exhausts its candidates reports the original
// query unchanged.
func (uc *RelaxUseCase) Relax(ctx context.Context, query domain.Query, opts domain.RelaxOptions) (*domain.RelaxResult, error) {
	if query.Len() == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "relax query", fmt.Errorf("query has no conditions"))
	}
	minMatches := opts.MinMatches
	if minMatches <= 0 {
		minMatches = uc.minMatches
	}
	maxRounds := opts.MaxRounds
	if maxRounds <= 0 {
		maxRounds = uc.maxRounds
	}

	catalog, err := uc.catalogSrc.LoadCatalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	dataset, err := uc.datasetSrc.LoadDataset(ctx)
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}

	baseline, err := CountMatches(query, dataset)
	if err != nil {
		return nil, fmt.Errorf("evaluate original query: %w", err)
	}
	result := &domain.RelaxResult{
		Status:   domain.RelaxStatusExact,
		Original: query,
		Relaxed:  query,
		Matches:  baseline,
	}
	if baseline >= minMatches {
		uc.logger.InfoContext(ctx, "query satisfied without relaxation",
			"expr", query.Expr(),
			"matches", baseline,
		)
		return result, nil
	}

	candidates, err := FilterCandidates(catalog, query)
	if err != nil {
		return nil, err
	}
	ranked := RankCandidates(candidates, query)
	result.Candidates = ranked.Len()

	rounds := ranked.RFDs()
	if maxRounds > 0 && len(rounds) > maxRounds {
		rounds = rounds[:maxRounds]
	}

	for _, rfd := range rounds {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("relax query: %w", err)
		}
		widened, err := ExpandQuery(query, rfd, dataset)
		if err != nil {
			return nil, err
		}
		matches, err := CountMatches(widened, dataset)
		if err != nil {
			return nil, err
		}
		result.Rounds = append(result.Rounds, domain.RelaxRound{
			RFD:     rfd.String(),
			Expr:    widened.Expr(),
			Matches: matches,
		})
		uc.logger.DebugContext(ctx, "relaxation round",
			"rfd", rfd.String(),
			"expr", widened.Expr(),
			"matches", matches,
		)
		if matches >= minMatches {
			result.Status = domain.RelaxStatusRelaxed
			result.Relaxed = widened
			result.Matches = matches
			uc.logger.InfoContext(ctx, "query relaxed",
				"rfd", rfd.String(),
				"expr", widened.Expr(),
				"matches", matches,
				"rounds", len(result.Rounds),
			)
			return result, nil
		}
	}

	result.Status = domain.RelaxStatusExhausted
	uc.logger.InfoContext(ctx, "relaxation exhausted",
		"expr", query.Expr(),
		"candidates", result.Candidates,
		"rounds", len(result.Rounds),
	)
	return result, nil
}

// Candidates returns the filtered, ranked dependency view for a query
// without running any relaxation round.
func (uc *RelaxUseCase) Candidates(ctx context.Context, query domain.Query) ([]domain.RFD, error) {
	catalog, err := uc.catalogSrc.LoadCatalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	filtered, err := FilterCandidates(catalog, query)
	if err != nil {
		return nil, err
	}
	return RankCandidates(filtered, query).RFDs(), nil
}

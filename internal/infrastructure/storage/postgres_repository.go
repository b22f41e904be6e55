package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"StoryScanner/internal/domain"
	"StoryScanner/internal/infrastructure/content"
	"StoryScanner/internal/ports"
)

// PostgresRepository reads stories and companies and persists combined
// scores. It is the durable side of the pipeline; local-only scoring
// never writes through it.
type PostgresRepository struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

var _ ports.StoryRepository = (*PostgresRepository)(nil)

// NewPostgresRepository wires a sql.DB implementation.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// FetchStory loads story content by identifier and normalizes the body
// for scoring.
func (r *PostgresRepository) FetchStory(ctx context.Context, storyID string) (domain.StoryContent, error) {
	query, args, err := r.builder.
		Select("id", "title", "body", "source_url", "company_id").
		From("stories").
		Where(sq.Eq{"id": storyID}).
		ToSql()
	if err != nil {
		return domain.StoryContent{}, fmt.Errorf("build story query: %w", err)
	}

	var story domain.StoryContent
	var sourceURL, companyID sql.NullString
	err = r.db.QueryRowContext(ctx, query, args...).
		Scan(&story.ID, &story.Title, &story.Body, &sourceURL, &companyID)
	if err != nil {
		return domain.StoryContent{}, fmt.Errorf("fetch story %s: %w", storyID, err)
	}
	story.SourceURL = sourceURL.String
	story.CompanyID = companyID.String

	return content.Normalize(story), nil
}

// FetchCompany loads company context; an unknown company returns nil
// without error.
func (r *PostgresRepository) FetchCompany(ctx context.Context, companyID string) (*domain.CompanyContext, error) {
	query, args, err := r.builder.
		Select("id", "name", "sectors", "has_ethics_statement", "has_privacy_policy",
			"prior_credibility", "prior_ethics_score").
		From("companies").
		Where(sq.Eq{"id": companyID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build company query: %w", err)
	}

	var company domain.CompanyContext
	var sectors pq.StringArray
	var credibility, ethics sql.NullFloat64
	err = r.db.QueryRowContext(ctx, query, args...).
		Scan(&company.ID, &company.Name, &sectors,
			&company.HasEthicsStatement, &company.HasPrivacyPolicy,
			&credibility, &ethics)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch company %s: %w", companyID, err)
	}

	company.Sectors = sectors
	if credibility.Valid {
		v := credibility.Float64
		company.PriorCredibility = &v
	}
	if ethics.Valid {
		v := ethics.Float64
		company.PriorEthicsScore = &v
	}
	return &company, nil
}

// PersistScore upserts the combined score onto the story record. Only
// a completing worker calls this, and its write wins.
func (r *PostgresRepository) PersistScore(ctx context.Context, storyID string, result domain.CombinedScoreResult) error {
	query, args, err := r.builder.
		Insert("story_scores").
		Columns("story_id", "hype_score", "ethics_score", "impact_tags",
			"confidence", "enhanced", "recommendations", "processing_time_ms").
		Values(storyID, result.HypeScore, result.EthicsScore, pq.StringArray(result.ImpactTags),
			result.Confidence, result.Enhanced, pq.StringArray(result.Recommendations), result.ProcessingTimeMs).
		Suffix(`ON CONFLICT (story_id) DO UPDATE
            SET hype_score = EXCLUDED.hype_score,
                ethics_score = EXCLUDED.ethics_score,
                impact_tags = EXCLUDED.impact_tags,
                confidence = EXCLUDED.confidence,
                enhanced = EXCLUDED.enhanced,
                recommendations = EXCLUDED.recommendations,
                processing_time_ms = EXCLUDED.processing_time_ms,
                updated_at = NOW()`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build score upsert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert score for story %s: %w", storyID, err)
	}
	return nil
}

package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"seller-onboarding/internal/domain"
	"seller-onboarding/internal/domain/model"
	"seller-onboarding/internal/domain/ports/repository"
)

var _ repository.SellerRepository = (*PostgresSellerRepo)(nil)

type PostgresSellerRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresSellerRepo(pool *pgxpool.Pool) *PostgresSellerRepo {
	return &PostgresSellerRepo{pool: pool}
}

// Upsert is keyed on the seller identity so a caller retry racing the
// original terminal turn writes one row, last context wins.
func (r *PostgresSellerRepo) Upsert(ctx context.Context, p *model.SellerProfile) error {
	const q = `
INSERT INTO sellers (
  id, language, store_name, store_slug, category, description, phone,
  onboarding_complete, created_at, updated_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10
) ON CONFLICT (id) DO UPDATE SET
  language=$2, store_name=$3, store_slug=$4, category=$5, description=$6,
  phone=$7, onboarding_complete=$8, updated_at=$10;
`
	_, err := r.pool.Exec(ctx, q,
		p.ID, p.Language, p.StoreName, p.StoreSlug, p.Category, p.Description,
		p.Phone, p.OnboardingComplete, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			// Slug collision with another seller's store.
			return fmt.Errorf("store slug %q: %w", p.StoreSlug, domain.ErrAlreadyExists)
		}
		return fmt.Errorf("upsert seller: %w", err)
	}
	return nil
}

func (r *PostgresSellerRepo) FindByID(ctx context.Context, id string) (*model.SellerProfile, error) {
	const q = `
SELECT id, language, store_name, store_slug, category, description, phone,
       onboarding_complete, created_at, updated_at
  FROM sellers WHERE id=$1;`
	var p model.SellerProfile
	err := r.pool.QueryRow(ctx, q, id).Scan(
		&p.ID, &p.Language, &p.StoreName, &p.StoreSlug, &p.Category,
		&p.Description, &p.Phone, &p.OnboardingComplete, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find seller: %w", err)
	}
	return &p, nil
}

func (r *PostgresSellerRepo) CountOnboarded(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM sellers WHERE onboarding_complete;`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count onboarded: %w", err)
	}
	return n, nil
}

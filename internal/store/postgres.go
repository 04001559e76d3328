package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Yuki33825/x-music-bar/internal/recipe"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) LoadIngredients(ctx context.Context) ([]recipe.Ingredient, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT name, sweetness, acidity, bitterness, intensity, texture
		FROM ingredients
		ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query ingredients: %w", err)
	}
	defer rows.Close()

	var catalog []recipe.Ingredient
	for rows.Next() {
		var ing recipe.Ingredient
		if err := rows.Scan(
			&ing.Name,
			&ing.Profile.Sweetness,
			&ing.Profile.Acidity,
			&ing.Profile.Bitterness,
			&ing.Profile.Intensity,
			&ing.Profile.Texture,
		); err != nil {
			return nil, fmt.Errorf("scan ingredient: %w", err)
		}
		catalog = append(catalog, ing)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := recipe.ValidateCatalog(catalog); err != nil {
		return nil, fmt.Errorf("catalog from database: %w", err)
	}
	return catalog, nil
}

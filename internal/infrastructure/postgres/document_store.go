package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/delivery-marketplace/internal/domain"
	"github.com/oksasatya/delivery-marketplace/internal/domain/repository"
)

// DocumentStore keeps every collection in the single JSONB table `documents`.
// The table has no foreign keys; referential integrity is the scanner's job.
type DocumentStore struct {
	pool *pgxpool.Pool
}

func NewDocumentStore(pool *pgxpool.Pool) *DocumentStore {
	return &DocumentStore{pool: pool}
}

func (s *DocumentStore) Insert(ctx context.Context, collection, id string, doc any) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: encode %s/%s: %v", domain.ErrValidation, collection, id, err)
	}
	tag, err := s.pool.Exec(ctx, `
		INSERT INTO documents (collection, id, body)
		VALUES ($1, $2, $3)
		ON CONFLICT (collection, id) DO NOTHING
	`, collection, id, body)
	if err != nil {
		return domain.Infra("insert "+collection, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s/%s already exists", domain.ErrConflict, collection, id)
	}
	return nil
}

func (s *DocumentStore) Get(ctx context.Context, collection, id string) (repository.Document, error) {
	var body []byte
	err := s.pool.QueryRow(ctx, `
		SELECT body FROM documents WHERE collection = $1 AND id = $2
	`, collection, id).Scan(&body)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repository.Document{}, fmt.Errorf("%w: %s/%s", domain.ErrNotFound, collection, id)
		}
		return repository.Document{}, domain.Infra("get "+collection, err)
	}
	return repository.Document{ID: id, Body: body}, nil
}

func (s *DocumentStore) Replace(ctx context.Context, collection, id string, doc any) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: encode %s/%s: %v", domain.ErrValidation, collection, id, err)
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE documents SET body = $3, updated_at = now()
		WHERE collection = $1 AND id = $2
	`, collection, id, body)
	if err != nil {
		return domain.Infra("replace "+collection, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s/%s", domain.ErrNotFound, collection, id)
	}
	return nil
}

func (s *DocumentStore) ReplaceIf(ctx context.Context, collection, id string, match repository.Filter, doc any) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: encode %s/%s: %v", domain.ErrValidation, collection, id, err)
	}
	if match == nil {
		match = repository.Filter{}
	}
	guard, err := json.Marshal(match)
	if err != nil {
		return fmt.Errorf("%w: encode filter: %v", domain.ErrValidation, err)
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE documents SET body = $3, updated_at = now()
		WHERE collection = $1 AND id = $2 AND body @> $4::jsonb
	`, collection, id, body, guard)
	if err != nil {
		return domain.Infra("replace "+collection, err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}
	if _, err := s.Get(ctx, collection, id); err != nil {
		return err
	}
	return fmt.Errorf("%w: %s/%s changed concurrently", domain.ErrConflict, collection, id)
}

func (s *DocumentStore) Delete(ctx context.Context, collection string, ids ...string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM documents WHERE collection = $1 AND id = ANY($2)
	`, collection, ids)
	if err != nil {
		return 0, domain.Infra("delete "+collection, err)
	}
	return int(tag.RowsAffected()), nil
}

func (s *DocumentStore) Find(ctx context.Context, collection string, filter repository.Filter) ([]repository.Document, error) {
	if filter == nil {
		filter = repository.Filter{}
	}
	match, err := json.Marshal(filter)
	if err != nil {
		return nil, fmt.Errorf("%w: encode filter: %v", domain.ErrValidation, err)
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, body FROM documents
		WHERE collection = $1 AND body @> $2::jsonb
		ORDER BY created_at, id
	`, collection, match)
	if err != nil {
		return nil, domain.Infra("find "+collection, err)
	}
	defer rows.Close()

	var out []repository.Document
	for rows.Next() {
		var d repository.Document
		var body []byte
		if err := rows.Scan(&d.ID, &body); err != nil {
			return nil, domain.Infra("scan "+collection, err)
		}
		d.Body = body
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Infra("find "+collection, err)
	}
	return out, nil
}

var _ repository.DocumentStore = (*DocumentStore)(nil)

package postgres

import (
	"context"
	"time"

	"github.com/pgvector/pgvector-go"
	"github.com/pkg/errors"

	"github.com/neusearch/neusearch/store"
)

// UpsertProductEmbedding inserts or updates a product embedding.
func (d *DB) UpsertProductEmbedding(ctx context.Context, embedding *store.ProductEmbedding) (*store.ProductEmbedding, error) {
	if len(embedding.Embedding) == 0 {
		return nil, errors.New("embedding vector cannot be empty")
	}

	stmt := `
		INSERT INTO product_embedding (product_id, model, embedding, created_ts, updated_ts)
		VALUES (` + placeholders(5) + `)
		ON CONFLICT (product_id, model)
		DO UPDATE SET
			embedding = EXCLUDED.embedding,
			updated_ts = EXCLUDED.updated_ts
		RETURNING created_ts, updated_ts
	`

	now := time.Now().Unix()
	vector := pgvector.NewVector(embedding.Embedding)
	if err := d.db.QueryRowContext(ctx, stmt,
		embedding.ProductID,
		embedding.Model,
		vector,
		now,
		now,
	).Scan(&embedding.CreatedTs, &embedding.UpdatedTs); err != nil {
		return nil, errors.Wrap(err, "failed to upsert product embedding")
	}

	return embedding, nil
}

// FindProductsWithoutEmbedding finds products that have no vector for find.Model.
func (d *DB) FindProductsWithoutEmbedding(ctx context.Context, find *store.FindProductsWithoutEmbedding) ([]*store.Product, error) {
	limit := find.Limit
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT p.id, p.name, p.category, p.price, p.description, p.created_ts, p.updated_ts
		FROM product p
		LEFT JOIN product_embedding e ON p.id = e.product_id AND e.model = $1
		WHERE e.product_id IS NULL
		ORDER BY p.id ASC
		LIMIT $2
	`

	rows, err := d.db.QueryContext(ctx, query, find.Model, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find products without embedding")
	}
	defer rows.Close()

	list := []*store.Product{}
	for rows.Next() {
		var product store.Product
		if err := rows.Scan(
			&product.ID,
			&product.Name,
			&product.Category,
			&product.Price,
			&product.Description,
			&product.CreatedTs,
			&product.UpdatedTs,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan product")
		}
		list = append(list, &product)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

// VectorSearch performs vector similarity search using pgvector.
func (d *DB) VectorSearch(ctx context.Context, opts *store.VectorSearchOptions) ([]*store.ProductWithDistance, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 10
	}

	vector := pgvector.NewVector(opts.Vector)
	args := []any{vector, opts.Model, len(opts.Vector)}

	// <=> is cosine distance (1 - cosine similarity); ascending means most similar first.
	// Rows of another dimension get a NULL distance instead of failing the query.
	query := `
		SELECT id, name, category, price, description, created_ts, updated_ts, distance
		FROM (
			SELECT p.id, p.name, p.category, p.price, p.description, p.created_ts, p.updated_ts,
				CASE WHEN vector_dims(e.embedding) = $3 THEN e.embedding <=> $1 END AS distance
			FROM product p
			INNER JOIN product_embedding e ON p.id = e.product_id
			WHERE e.model = $2
		) candidate
		WHERE distance IS NOT NULL`
	if opts.MaxDistance > 0 {
		args = append(args, opts.MaxDistance)
		query += ` AND distance < ` + placeholder(len(args))
	}
	args = append(args, limit)
	query += `
		ORDER BY distance ASC, id ASC
		LIMIT ` + placeholder(len(args))

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to vector search")
	}
	defer rows.Close()

	results := []*store.ProductWithDistance{}
	for rows.Next() {
		var product store.Product
		var result store.ProductWithDistance
		if err := rows.Scan(
			&product.ID,
			&product.Name,
			&product.Category,
			&product.Price,
			&product.Description,
			&product.CreatedTs,
			&product.UpdatedTs,
			&result.Distance,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan vector search result")
		}
		result.Product = &product
		results = append(results, &result)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return results, nil
}

package sqlite

import (
	"context"
	"encoding/binary"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/neusearch/neusearch/store"
)

// float32ArrayToBLOB packs a vector as little-endian float32s.
func float32ArrayToBLOB(vec []float32) []byte {
	buf := make([]byte, len(vec)*4)
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:i*4+4], math.Float32bits(v))
	}
	return buf
}

// blobToFloat32Array is the inverse of float32ArrayToBLOB.
func blobToFloat32Array(blob []byte) ([]float32, error) {
	if len(blob)%4 != 0 {
		return nil, fmt.Errorf("invalid BLOB length: %d", len(blob))
	}
	vec := make([]float32, len(blob)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[i*4 : i*4+4]))
	}
	return vec, nil
}

// UpsertProductEmbedding inserts or replaces the vector of (product_id, model).
func (d *DB) UpsertProductEmbedding(ctx context.Context, embedding *store.ProductEmbedding) (*store.ProductEmbedding, error) {
	if len(embedding.Embedding) == 0 {
		return nil, errors.New("embedding vector cannot be empty")
	}

	now := time.Now().Unix()
	stmt := `INSERT INTO product_embedding (product_id, model, embedding, created_ts, updated_ts)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (product_id, model) DO UPDATE SET
			embedding = excluded.embedding,
			updated_ts = excluded.updated_ts
		RETURNING created_ts, updated_ts`

	if err := d.db.QueryRowContext(ctx, stmt,
		embedding.ProductID,
		embedding.Model,
		float32ArrayToBLOB(embedding.Embedding),
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

	query := `SELECT p.id, p.name, p.category, p.price, p.description, p.created_ts, p.updated_ts
		FROM product p
		LEFT JOIN product_embedding e ON p.id = e.product_id AND e.model = ?
		WHERE e.product_id IS NULL
		ORDER BY p.id ASC
		LIMIT ?`

	rows, err := d.db.QueryContext(ctx, query, find.Model, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find products without embedding")
	}
	defer rows.Close()

	list := []*store.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, product)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

// VectorSearch computes cosine distance in Go over every vector of opts.Model.
func (d *DB) VectorSearch(ctx context.Context, opts *store.VectorSearchOptions) ([]*store.ProductWithDistance, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 10
	}

	query := `SELECT p.id, p.name, p.category, p.price, p.description, p.created_ts, p.updated_ts, e.embedding
		FROM product p
		INNER JOIN product_embedding e ON p.id = e.product_id
		WHERE e.model = ?`

	rows, err := d.db.QueryContext(ctx, query, opts.Model)
	if err != nil {
		return nil, errors.Wrap(err, "failed to vector search")
	}
	defer rows.Close()

	results := []*store.ProductWithDistance{}
	skipped := 0
	for rows.Next() {
		var vectorBLOB []byte
		product, err := scanProduct(rows, &vectorBLOB)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan vector search result")
		}

		embedding, err := blobToFloat32Array(vectorBLOB)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to decode embedding of product %d", product.ID)
		}
		// Vectors left over from another dimension are unusable, not fatal.
		if len(embedding) != len(opts.Vector) {
			skipped++
			continue
		}

		distance := cosineDistance(opts.Vector, embedding)
		if opts.MaxDistance > 0 && distance >= opts.MaxDistance {
			continue
		}
		results = append(results, &store.ProductWithDistance{
			Product:  product,
			Distance: distance,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if skipped > 0 {
		slog.WarnContext(ctx, "skipped embeddings with a different dimension, re-ingest to refresh them",
			"model", opts.Model,
			"dimensions", len(opts.Vector),
			"skipped", skipped,
		)
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Distance != results[j].Distance {
			return results[i].Distance < results[j].Distance
		}
		return results[i].Product.ID < results[j].Product.ID
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// cosineDistance returns 1 - cosine similarity, matching pgvector's <=>.
// A zero vector is treated as orthogonal to everything.
func cosineDistance(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}

package sqlite

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/neusearch/neusearch/store"
)

func (d *DB) CreateProduct(ctx context.Context, create *store.Product) (*store.Product, error) {
	stmt := `INSERT INTO product (name, category, price, description)
		VALUES (?, ?, ?, ?)
		RETURNING id, created_ts, updated_ts`
	if err := d.db.QueryRowContext(ctx, stmt,
		create.Name,
		create.Category,
		create.Price,
		create.Description,
	).Scan(&create.ID, &create.CreatedTs, &create.UpdatedTs); err != nil {
		return nil, errors.Wrap(err, "failed to create product")
	}
	return create, nil
}

func (d *DB) ListProducts(ctx context.Context, find *store.FindProduct) ([]*store.Product, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "id = ?"), append(args, *v)
	}
	if v := find.Category; v != nil {
		where, args = append(where, "category = ?"), append(args, *v)
	}

	query := `SELECT id, name, category, price, description, created_ts, updated_ts
		FROM product
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY id ASC`
	if find.Limit != nil {
		query += " LIMIT ?"
		args = append(args, *find.Limit)
		if find.Offset != nil {
			query += " OFFSET ?"
			args = append(args, *find.Offset)
		}
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list products")
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

func (d *DB) CountProducts(ctx context.Context) (int, error) {
	var count int
	if err := d.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM product").Scan(&count); err != nil {
		return 0, errors.Wrap(err, "failed to count products")
	}
	return count, nil
}

// DeleteAllProducts deletes embeddings first, then products, in one transaction.
func (d *DB) DeleteAllProducts(ctx context.Context) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM product_embedding"); err != nil {
		return errors.Wrap(err, "failed to delete product embeddings")
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM product"); err != nil {
		return errors.Wrap(err, "failed to delete products")
	}
	return errors.Wrap(tx.Commit(), "failed to commit product deletion")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner, extra ...any) (*store.Product, error) {
	var product store.Product
	dest := append([]any{
		&product.ID,
		&product.Name,
		&product.Category,
		&product.Price,
		&product.Description,
		&product.CreatedTs,
		&product.UpdatedTs,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, errors.Wrap(err, "failed to scan product")
	}
	return &product, nil
}

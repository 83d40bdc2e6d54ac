package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"beatstore/internal/catalog/models"
	id "beatstore/pkg/domain"
)

// PostgresStore reads and writes the products table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// ByIDs returns the products of type t with the given ids, in request order.
func (s *PostgresStore) ByIDs(ctx context.Context, t id.ProductType, ids []id.ProductID) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}
	raw := make([]int64, len(ids))
	for i, pid := range ids {
		raw[i] = int64(pid)
	}
	query := `
		SELECT id, product_type, title, price, artwork_url, variants
		FROM products
		WHERE product_type = $1 AND id = ANY($2::bigint[])
		ORDER BY array_position($2::bigint[], id)
	`
	rows, err := s.db.QueryContext(ctx, query, string(t), pq.Array(raw))
	if err != nil {
		return nil, fmt.Errorf("query products by ids: %w", err)
	}
	defer rows.Close()

	out := make([]models.Product, 0, len(ids))
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Upsert(ctx context.Context, p models.Product) error {
	variants, err := json.Marshal(p.Variants)
	if err != nil {
		return fmt.Errorf("encode variants: %w", err)
	}
	query := `
		INSERT INTO products (id, product_type, title, price, artwork_url, variants)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (product_type, id) DO UPDATE SET
			title = EXCLUDED.title,
			price = EXCLUDED.price,
			artwork_url = EXCLUDED.artwork_url,
			variants = EXCLUDED.variants
	`
	_, err = s.db.ExecContext(ctx, query,
		int64(p.ID),
		string(p.Type),
		p.Title,
		p.Price.String(),
		p.ArtworkURL,
		variants,
	)
	if err != nil {
		return fmt.Errorf("upsert product: %w", err)
	}
	return nil
}

type productRow interface {
	Scan(dest ...any) error
}

func scanProduct(row productRow) (*models.Product, error) {
	var (
		p        models.Product
		pid      int64
		ptype    string
		price    decimal.Decimal
		variants []byte
	)
	if err := row.Scan(&pid, &ptype, &p.Title, &price, &p.ArtworkURL, &variants); err != nil {
		return nil, err
	}
	p.ID = id.ProductID(pid)
	p.Type = id.ProductType(ptype)
	p.Price = price
	if len(variants) > 0 {
		if err := json.Unmarshal(variants, &p.Variants); err != nil {
			return nil, fmt.Errorf("decode variants: %w", err)
		}
	}
	return &p, nil
}

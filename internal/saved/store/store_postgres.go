package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"beatstore/internal/saved/models"
	id "beatstore/pkg/domain"
)

// PostgresStore persists saved items in PostgreSQL.
// This store is pure I/O; type validation and product joins live in the service.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Add inserts the item; an existing (user, item, type) row is left untouched.
func (s *PostgresStore) Add(ctx context.Context, item models.SavedItem) (bool, error) {
	query := `
		INSERT INTO saved_items (user_id, item_id, item_type, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, item_id, item_type) DO NOTHING
	`
	result, err := s.db.ExecContext(ctx, query,
		uuid.UUID(item.UserID).String(),
		int64(item.ItemID),
		string(item.ItemType),
		item.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("add saved item: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("add saved item rows affected: %w", err)
	}
	return rows > 0, nil
}

func (s *PostgresStore) Remove(ctx context.Context, userID id.UserID, key id.ItemKey) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM saved_items WHERE user_id = $1 AND item_id = $2 AND item_type = $3`,
		uuid.UUID(userID).String(), int64(key.ID), string(key.Type),
	)
	if err != nil {
		return fmt.Errorf("remove saved item: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByUser(ctx context.Context, userID id.UserID) ([]models.SavedItem, error) {
	query := `
		SELECT item_id, item_type, created_at
		FROM saved_items
		WHERE user_id = $1
		ORDER BY created_at, item_type, item_id
	`
	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(userID).String())
	if err != nil {
		return nil, fmt.Errorf("list saved items: %w", err)
	}
	defer rows.Close()

	var out []models.SavedItem
	for rows.Next() {
		var (
			itemID   int64
			itemType string
			item     = models.SavedItem{UserID: userID}
		)
		if err := rows.Scan(&itemID, &itemType, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan saved item: %w", err)
		}
		item.ItemID = id.ProductID(itemID)
		item.ItemType = id.ProductType(itemType)
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate saved items: %w", err)
	}
	return out, nil
}

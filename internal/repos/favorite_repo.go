package repos

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"clearfashion/internal/catalog"
)

// FavoriteRepo is the durable favorites slot: one JSON-encoded array of
// product snapshots per session id.
type FavoriteRepo struct{ db *sqlx.DB }

func NewFavoriteRepo(db *sqlx.DB) *FavoriteRepo { return &FavoriteRepo{db: db} }

type favoriteRow struct {
	SessionID    string `db:"session_id"`
	ProductsJSON string `db:"products_json"`
	UpdatedAt    string `db:"updated_at"`
}

// Load returns the stored favorites; an absent slot is an empty set.
func (r *FavoriteRepo) Load(sessionID string) (catalog.Favorites, error) {
	var row favoriteRow
	err := r.db.Get(&row, `
	  SELECT session_id, products_json, COALESCE(updated_at,'') AS updated_at
	  FROM favorites WHERE session_id = ?
	`, sessionID)
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.Favorites{}, nil
	}
	if err != nil {
		return nil, err
	}
	favs := catalog.Favorites{}
	if err := json.Unmarshal([]byte(row.ProductsJSON), &favs); err != nil {
		return nil, fmt.Errorf("decode favorites of %s: %w", sessionID, err)
	}
	return favs, nil
}

// Save overwrites the slot with favs.
func (r *FavoriteRepo) Save(sessionID string, favs catalog.Favorites) error {
	if favs == nil {
		favs = catalog.Favorites{}
	}
	b, err := json.Marshal(favs)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(`
	  INSERT INTO favorites(session_id, products_json, updated_at)
	  VALUES(?, ?, ?)
	  ON CONFLICT(session_id) DO UPDATE
	  SET products_json = excluded.products_json, updated_at = excluded.updated_at
	`, sessionID, string(b), time.Now().UTC().Format(time.RFC3339))
	return err
}

func (r *FavoriteRepo) Delete(sessionID string) error {
	_, err := r.db.Exec(`DELETE FROM favorites WHERE session_id = ?`, sessionID)
	return err
}

package pantry

import (
	"context"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore PostgreSQL 庫存
// 同步與扣減各在單一事務內執行，扣減用行鎖序列化同一用戶的並發操作
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore 創建 PostgreSQL 庫存
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate 建表
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS pantry_lots (
			id              UUID PRIMARY KEY,
			user_id         TEXT NOT NULL,
			name            TEXT NOT NULL,
			normalized_name TEXT NOT NULL,
			amount          DOUBLE PRECISION NOT NULL CHECK (amount > 0),
			unit            TEXT NOT NULL DEFAULT '个',
			category        TEXT,
			sub_category    TEXT,
			expiry_date     DATE,
			is_scrap        BOOLEAN NOT NULL DEFAULT FALSE,
			created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE INDEX IF NOT EXISTS idx_pantry_lots_user_name ON pantry_lots (user_id, normalized_name);
		CREATE INDEX IF NOT EXISTS idx_pantry_lots_expiry ON pantry_lots (expiry_date);
	`)
	return err
}

const lotColumns = `id, user_id, name, normalized_name, amount, unit,
	COALESCE(category, ''), COALESCE(sub_category, ''), expiry_date, is_scrap, created_at`

func scanLots(rows pgx.Rows) ([]Lot, error) {
	defer rows.Close()

	var out []Lot
	for rows.Next() {
		var lot Lot
		if err := rows.Scan(&lot.ID, &lot.UserID, &lot.Name, &lot.NormalizedName,
			&lot.Amount, &lot.Unit, &lot.Category, &lot.SubCategory,
			&lot.ExpiryDate, &lot.IsScrap, &lot.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, lot)
	}
	return out, rows.Err()
}

// ListByUser 用戶全部批次，按入庫時間升序
func (s *PostgresStore) ListByUser(ctx context.Context, userID string) ([]Lot, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+lotColumns+`
		 FROM pantry_lots
		 WHERE user_id = $1
		 ORDER BY created_at, id`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	return scanLots(rows)
}

// ListExpiring 過期日在 deadline 當日或之前的批次
func (s *PostgresStore) ListExpiring(ctx context.Context, userID string, deadline time.Time) ([]Lot, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+lotColumns+`
		 FROM pantry_lots
		 WHERE user_id = $1 AND expiry_date IS NOT NULL AND expiry_date <= $2
		 ORDER BY created_at, id`,
		userID, deadline,
	)
	if err != nil {
		return nil, err
	}
	return scanLots(rows)
}

// ListScrap 邊角料批次
func (s *PostgresStore) ListScrap(ctx context.Context, userID string) ([]Lot, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+lotColumns+`
		 FROM pantry_lots
		 WHERE user_id = $1 AND is_scrap
		 ORDER BY created_at, id`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	return scanLots(rows)
}

// ReplaceAll 先刪後插，單一事務
func (s *PostgresStore) ReplaceAll(ctx context.Context, userID string, lots []Lot) (int, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if _, err := tx.Exec(ctx, `DELETE FROM pantry_lots WHERE user_id = $1`, userID); err != nil {
		return 0, err
	}

	for _, lot := range lots {
		_, err := tx.Exec(ctx,
			`INSERT INTO pantry_lots
				(id, user_id, name, normalized_name, amount, unit, category, sub_category, expiry_date, is_scrap, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), NULLIF($8, ''), $9, $10, $11)`,
			lot.ID, userID, lot.Name, lot.NormalizedName, lot.Amount, lot.Unit,
			lot.Category, lot.SubCategory, lot.ExpiryDate, lot.IsScrap, lot.CreatedAt,
		)
		if err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return len(lots), nil
}

// DeductFIFO 先進先出扣減，FOR UPDATE 行鎖防止並發超扣
func (s *PostgresStore) DeductFIFO(ctx context.Context, userID string, needs map[string]float64) error {
	if len(needs) == 0 {
		return nil
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	// 名稱排序後處理，鎖的獲取順序固定，避免互相死鎖
	names := make([]string, 0, len(needs))
	for name := range needs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		needed := needs[name]
		if needed <= 0 {
			continue
		}

		rows, err := tx.Query(ctx,
			`SELECT id, amount
			 FROM pantry_lots
			 WHERE user_id = $1 AND normalized_name = $2
			 ORDER BY created_at, id
			 FOR UPDATE`,
			userID, name,
		)
		if err != nil {
			return err
		}

		type lotRow struct {
			id     string
			amount float64
		}
		var matched []lotRow
		for rows.Next() {
			var lr lotRow
			if err := rows.Scan(&lr.id, &lr.amount); err != nil {
				rows.Close()
				return err
			}
			matched = append(matched, lr)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		for _, lr := range matched {
			if needed <= 0 {
				break
			}
			if lr.amount > needed {
				if _, err := tx.Exec(ctx,
					`UPDATE pantry_lots SET amount = amount - $1 WHERE id = $2`,
					needed, lr.id,
				); err != nil {
					return err
				}
				needed = 0
			} else {
				if _, err := tx.Exec(ctx,
					`DELETE FROM pantry_lots WHERE id = $1`,
					lr.id,
				); err != nil {
					return err
				}
				needed -= lr.amount
			}
		}
	}

	return tx.Commit(ctx)
}

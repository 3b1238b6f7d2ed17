package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/hitoshi/rankman/internal/model"
)

// pqUniqueViolation はPostgreSQLの一意制約違反のエラーコード。
const pqUniqueViolation = "23505"

// dateLayout は履歴のDATEカラムへの書き込みフォーマット。
const dateLayout = "2006-01-02"

// PostgresRatingHistoryRepo はPostgreSQLを使用したレーティング履歴リポジトリ。
// 履歴はappend-onlyであり、UPDATE/DELETEを発行するメソッドは存在しない。
type PostgresRatingHistoryRepo struct {
	db *sql.DB
}

// NewPostgresRatingHistoryRepo はPostgresRatingHistoryRepoを生成する。
func NewPostgresRatingHistoryRepo(db *sql.DB) *PostgresRatingHistoryRepo {
	return &PostgresRatingHistoryRepo{db: db}
}

const historySelectColumns = `id, user_id, date, old_rating, new_rating, change, dps, breakdown, reason, created_at`

// rowScanner は*sql.Rowと*sql.Rowsの共通スキャンインターフェース。
type rowScanner interface {
	Scan(dest ...any) error
}

// scanHistoryEntry は1行分の履歴エントリをスキャンする。
func scanHistoryEntry(row rowScanner) (*model.RatingHistoryEntry, error) {
	entry := &model.RatingHistoryEntry{}
	var breakdownJSON []byte
	err := row.Scan(
		&entry.ID, &entry.UserID, &entry.Date,
		&entry.OldRating, &entry.NewRating, &entry.Change, &entry.DPS,
		&breakdownJSON, &entry.Reason, &entry.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(breakdownJSON) > 0 {
		if err := json.Unmarshal(breakdownJSON, &entry.Breakdown); err != nil {
			return nil, fmt.Errorf("failed to unmarshal breakdown: %w", err)
		}
	}
	return entry, nil
}

// Latest は最新の履歴エントリを返す。履歴が空の場合はnilを返す。
func (r *PostgresRatingHistoryRepo) Latest(ctx context.Context, userID string) (*model.RatingHistoryEntry, error) {
	return latestHistory(ctx, r.db, userID)
}

// LatestTx はトランザクション内で最新の履歴エントリを返す。
func (r *PostgresRatingHistoryRepo) LatestTx(ctx context.Context, tx *sql.Tx, userID string) (*model.RatingHistoryEntry, error) {
	return latestHistory(ctx, tx, userID)
}

// querier は*sql.DBと*sql.Txの共通クエリインターフェース。
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func latestHistory(ctx context.Context, q querier, userID string) (*model.RatingHistoryEntry, error) {
	row := q.QueryRowContext(ctx,
		`SELECT `+historySelectColumns+` FROM rating_history
		 WHERE user_id = $1 ORDER BY date DESC LIMIT 1`,
		userID,
	)
	entry, err := scanHistoryEntry(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find latest history entry: %w", err)
	}
	return entry, nil
}

// RecentChanges は直近limit件のchange値をdate降順で返す。
func (r *PostgresRatingHistoryRepo) RecentChanges(ctx context.Context, userID string, limit int) ([]int, error) {
	return recentChanges(ctx, r.db, userID, limit)
}

// RecentChangesTx はトランザクション内で直近limit件のchange値を返す。
func (r *PostgresRatingHistoryRepo) RecentChangesTx(ctx context.Context, tx *sql.Tx, userID string, limit int) ([]int, error) {
	return recentChanges(ctx, tx, userID, limit)
}

func recentChanges(ctx context.Context, q querier, userID string, limit int) ([]int, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT change FROM rating_history
		 WHERE user_id = $1 ORDER BY date DESC LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent changes: %w", err)
	}
	defer rows.Close()

	var changes []int
	for rows.Next() {
		var c int
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("failed to scan change: %w", err)
		}
		changes = append(changes, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate recent changes: %w", err)
	}
	return changes, nil
}

// AppendTx はトランザクション内で履歴エントリを追記する。
// (user_id, date)の一意制約は同一日の二重確定に対する最後の防壁であり、
// 違反はINCONSISTENT_HISTORYとして表面化させる。自動修復はしない。
func (r *PostgresRatingHistoryRepo) AppendTx(ctx context.Context, tx *sql.Tx, entry *model.RatingHistoryEntry) error {
	breakdownJSON, err := json.Marshal(entry.Breakdown)
	if err != nil {
		return fmt.Errorf("failed to marshal breakdown: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO rating_history
		 (id, user_id, date, old_rating, new_rating, change, dps, breakdown, reason, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now())`,
		entry.ID, entry.UserID, entry.Date.Format(dateLayout),
		entry.OldRating, entry.NewRating, entry.Change, entry.DPS,
		breakdownJSON, entry.Reason,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return model.NewInconsistentHistoryError(
				fmt.Sprintf("%s の履歴は既に確定済みです", entry.Date.Format(dateLayout)))
		}
		return fmt.Errorf("failed to append history entry: %w", err)
	}
	return nil
}

// ListByUser はユーザーの履歴をdate降順でページネーション取得する。
func (r *PostgresRatingHistoryRepo) ListByUser(ctx context.Context, userID string, offset, limit int) ([]model.RatingHistoryEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+historySelectColumns+` FROM rating_history
		 WHERE user_id = $1 ORDER BY date DESC OFFSET $2 LIMIT $3`,
		userID, offset, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list history entries: %w", err)
	}
	defer rows.Close()

	var entries []model.RatingHistoryEntry
	for rows.Next() {
		entry, err := scanHistoryEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate history entries: %w", err)
	}
	return entries, nil
}

// compile-time interface check
var _ RatingHistoryRepository = (*PostgresRatingHistoryRepo)(nil)

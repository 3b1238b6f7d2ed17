package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/rankman/internal/model"
)

// PostgresTaskRepo はPostgreSQLを使用したタスクの読み取り専用リポジトリ。
// タスクのCRUDは外部のタスク管理サービスが所有するため、SELECTのみ発行する。
type PostgresTaskRepo struct {
	db *sql.DB
}

// NewPostgresTaskRepo はPostgresTaskRepoを生成する。
func NewPostgresTaskRepo(db *sql.DB) *PostgresTaskRepo {
	return &PostgresTaskRepo{db: db}
}

const taskSelectColumns = `id, user_id, title, estimated_duration, is_completed, created_at, deleted_at, date`

// listTasks は条件付きタスククエリを実行して結果をスキャンする。
func (r *PostgresTaskRepo) listTasks(ctx context.Context, query string, args ...any) ([]model.Task, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		var t model.Task
		var deletedAt sql.NullTime
		if err := rows.Scan(
			&t.ID, &t.UserID, &t.Title, &t.EstimatedDuration, &t.IsCompleted,
			&t.CreatedAt, &deletedAt, &t.Date,
		); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		if deletedAt.Valid {
			d := deletedAt.Time
			t.DeletedAt = &d
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tasks: %w", err)
	}
	return tasks, nil
}

// ListCreatedBetween は作成日時が[start, end]に含まれるタスクを返す。
// 削除済みタスクも含む（規律ペナルティの計算に必要）。
func (r *PostgresTaskRepo) ListCreatedBetween(ctx context.Context, userID string, start, end time.Time) ([]model.Task, error) {
	return r.listTasks(ctx,
		`SELECT `+taskSelectColumns+` FROM tasks
		 WHERE user_id = $1 AND created_at BETWEEN $2 AND $3
		 ORDER BY created_at`,
		userID, start, end,
	)
}

// ListDeletedBetween は削除日時が[start, end]に含まれるタスクを返す。
func (r *PostgresTaskRepo) ListDeletedBetween(ctx context.Context, userID string, start, end time.Time) ([]model.Task, error) {
	return r.listTasks(ctx,
		`SELECT `+taskSelectColumns+` FROM tasks
		 WHERE user_id = $1 AND deleted_at IS NOT NULL AND deleted_at BETWEEN $2 AND $3
		 ORDER BY deleted_at`,
		userID, start, end,
	)
}

// compile-time interface check
var _ TaskRepository = (*PostgresTaskRepo)(nil)

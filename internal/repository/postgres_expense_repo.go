package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/rankman/internal/model"
)

// PostgresExpenseRepo はPostgreSQLを使用した支出レコードの読み取り専用リポジトリ。
type PostgresExpenseRepo struct {
	db *sql.DB
}

// NewPostgresExpenseRepo はPostgresExpenseRepoを生成する。
func NewPostgresExpenseRepo(db *sql.DB) *PostgresExpenseRepo {
	return &PostgresExpenseRepo{db: db}
}

// ListOn は記録日が指定暦日に一致する支出を返す。
// DATEカラムのため日付文字列の等値比較で絞り込む（study_sessionsと同様）。
func (r *PostgresExpenseRepo) ListOn(ctx context.Context, userID string, day time.Time) ([]model.Expense, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, date, amount FROM expenses
		 WHERE user_id = $1 AND date = $2::date
		 ORDER BY id`,
		userID, day.Format(dateLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []model.Expense
	for rows.Next() {
		var e model.Expense
		if err := rows.Scan(&e.ID, &e.UserID, &e.Date, &e.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}
	return expenses, nil
}

// compile-time interface check
var _ ExpenseRepository = (*PostgresExpenseRepo)(nil)

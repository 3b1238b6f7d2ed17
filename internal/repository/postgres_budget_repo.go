package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/rankman/internal/model"
)

// PostgresBudgetRepo はPostgreSQLを使用した予算設定の読み取り専用リポジトリ。
type PostgresBudgetRepo struct {
	db *sql.DB
}

// NewPostgresBudgetRepo はPostgresBudgetRepoを生成する。
func NewPostgresBudgetRepo(db *sql.DB) *PostgresBudgetRepo {
	return &PostgresBudgetRepo{db: db}
}

// FindActive はユーザーの有効な予算（作成日時が最新の1件）を返す。
// 未設定の場合はnilを返す。
func (r *PostgresBudgetRepo) FindActive(ctx context.Context, userID string) (*model.Budget, error) {
	budget := &model.Budget{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, amount, type, created_at FROM budgets
		 WHERE user_id = $1 ORDER BY created_at DESC LIMIT 1`,
		userID,
	).Scan(&budget.ID, &budget.UserID, &budget.Amount, &budget.Type, &budget.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find active budget: %w", err)
	}
	return budget, nil
}

// compile-time interface check
var _ BudgetRepository = (*PostgresBudgetRepo)(nil)

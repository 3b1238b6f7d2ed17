package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/rankman/internal/model"
)

// PostgresActivityRepo はPostgreSQLを使用した活動レコードの読み取り専用リポジトリ。
type PostgresActivityRepo struct {
	db *sql.DB
}

// NewPostgresActivityRepo はPostgresActivityRepoを生成する。
func NewPostgresActivityRepo(db *sql.DB) *PostgresActivityRepo {
	return &PostgresActivityRepo{db: db}
}

// ListOn は記録日が指定暦日に一致する活動を返す。
// DATEカラムのため日付文字列の等値比較で絞り込む（study_sessionsと同様）。
func (r *PostgresActivityRepo) ListOn(ctx context.Context, userID string, day time.Time) ([]model.Activity, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, date, duration, planned_duration FROM activities
		 WHERE user_id = $1 AND date = $2::date
		 ORDER BY id`,
		userID, day.Format(dateLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	defer rows.Close()

	var activities []model.Activity
	for rows.Next() {
		var a model.Activity
		if err := rows.Scan(&a.ID, &a.UserID, &a.Date, &a.Duration, &a.PlannedDuration); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		activities = append(activities, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate activities: %w", err)
	}
	return activities, nil
}

// compile-time interface check
var _ ActivityRepository = (*PostgresActivityRepo)(nil)

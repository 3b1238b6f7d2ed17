package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/rankman/internal/model"
)

// PostgresStudySessionRepo はPostgreSQLを使用した学習セッションの読み取り専用リポジトリ。
type PostgresStudySessionRepo struct {
	db *sql.DB
}

// NewPostgresStudySessionRepo はPostgresStudySessionRepoを生成する。
func NewPostgresStudySessionRepo(db *sql.DB) *PostgresStudySessionRepo {
	return &PostgresStudySessionRepo{db: db}
}

// ListOn は記録日が指定暦日に一致する学習セッションを返す。
// dateはDATEカラムのため、タイムスタンプ比較ではなく日付文字列の等値比較で絞り込む。
// タイムスタンプを渡すとDBセッションのタイムゾーン次第で前日にずれる。
func (r *PostgresStudySessionRepo) ListOn(ctx context.Context, userID string, day time.Time) ([]model.StudySession, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, date, duration FROM study_sessions
		 WHERE user_id = $1 AND date = $2::date
		 ORDER BY id`,
		userID, day.Format(dateLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list study sessions: %w", err)
	}
	defer rows.Close()

	var sessions []model.StudySession
	for rows.Next() {
		var s model.StudySession
		if err := rows.Scan(&s.ID, &s.UserID, &s.Date, &s.Duration); err != nil {
			return nil, fmt.Errorf("failed to scan study session: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate study sessions: %w", err)
	}
	return sessions, nil
}

// compile-time interface check
var _ StudySessionRepository = (*PostgresStudySessionRepo)(nil)

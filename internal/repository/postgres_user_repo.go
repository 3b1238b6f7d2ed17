package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/rankman/internal/model"
)

// PostgresUserRepo はPostgreSQLを使用したユーザーリポジトリ。
type PostgresUserRepo struct {
	db *sql.DB
}

// NewPostgresUserRepo はPostgresUserRepoを生成する。
func NewPostgresUserRepo(db *sql.DB) *PostgresUserRepo {
	return &PostgresUserRepo{db: db}
}

const userSelectColumns = `id, rating, rank, daily_study_goal, last_active_at, created_at, updated_at`

// scanUser は1行分のユーザーをスキャンする。
// daily_study_goalはアカウント作成を所有する外部認証基盤が設定しないため
// NULLになりうる。NULLは0として読み、デフォルト値の解決はUser.StudyGoalHoursが行う。
func scanUser(row *sql.Row) (*model.User, error) {
	user := &model.User{}
	var studyGoal sql.NullFloat64
	var lastActive sql.NullTime
	err := row.Scan(
		&user.ID, &user.Rating, &user.Rank, &studyGoal,
		&lastActive, &user.CreatedAt, &user.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	if studyGoal.Valid {
		user.DailyStudyGoal = studyGoal.Float64
	}
	if lastActive.Valid {
		t := lastActive.Time
		user.LastActiveAt = &t
	}
	return user, nil
}

// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userSelectColumns+` FROM users WHERE id = $1`,
		id,
	)
	return scanUser(row)
}

// FindByIDForUpdate はトランザクション内でユーザー行をFOR UPDATEロックして取得する。
// 同一ユーザーの確定処理を直列化するための排他点。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id string) (*model.User, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+userSelectColumns+` FROM users WHERE id = $1 FOR UPDATE`,
		id,
	)
	return scanUser(row)
}

// UpdateLiveRating は暫定レーティング・ランク・最終活動時刻を更新する。
func (r *PostgresUserRepo) UpdateLiveRating(ctx context.Context, id string, rating int, rank string, lastActiveAt time.Time) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET rating = $1, rank = $2, last_active_at = $3, updated_at = now() WHERE id = $4`,
		rating, rank, lastActiveAt, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update live rating: %w", err)
	}
	return requireOneRow(result, id)
}

// UpdateRatingTx はトランザクション内で確定後のレーティング状態を更新する。
func (r *PostgresUserRepo) UpdateRatingTx(ctx context.Context, tx *sql.Tx, id string, rating int, rank string, lastActiveAt time.Time) error {
	result, err := tx.ExecContext(ctx,
		`UPDATE users SET rating = $1, rank = $2, last_active_at = $3, updated_at = now() WHERE id = $4`,
		rating, rank, lastActiveAt, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update finalized rating: %w", err)
	}
	return requireOneRow(result, id)
}

// requireOneRow は更新が正確に1行に適用されたことを確認する。
func requireOneRow(result sql.Result, id string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("user not found: %s", id)
	}
	return nil
}

// compile-time interface check
var _ UserRepository = (*PostgresUserRepo)(nil)

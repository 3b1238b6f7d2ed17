// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/hitoshi/rankman/internal/model"
)

// UserRepository はユーザーのレーティング状態の永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByIDForUpdate はトランザクション内でユーザー行をロックして取得する。
	// 見つからない場合はnilを返す。確定処理のユーザー単位直列化に使用する。
	FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id string) (*model.User, error)

	// UpdateLiveRating は暫定レーティング・ランク・最終活動時刻を更新する。
	// 履歴には一切触れない。
	UpdateLiveRating(ctx context.Context, id string, rating int, rank string, lastActiveAt time.Time) error

	// UpdateRatingTx はトランザクション内で確定後のレーティング状態を更新する。
	UpdateRatingTx(ctx context.Context, tx *sql.Tx, id string, rating int, rank string, lastActiveAt time.Time) error
}

// RatingHistoryRepository はレーティング履歴台帳の永続化インターフェース。
// 台帳はappend-onlyで、エントリの更新・削除メソッドは意図的に存在しない。
type RatingHistoryRepository interface {
	// Latest は最新（date降順で先頭）の履歴エントリを返す。
	// 履歴が空の場合はnilを返す。
	Latest(ctx context.Context, userID string) (*model.RatingHistoryEntry, error)

	// LatestTx はトランザクション内でLatestと同じ取得を行う。
	LatestTx(ctx context.Context, tx *sql.Tx, userID string) (*model.RatingHistoryEntry, error)

	// RecentChanges は直近limit件のchange値をdate降順で返す。
	RecentChanges(ctx context.Context, userID string, limit int) ([]int, error)

	// RecentChangesTx はトランザクション内でRecentChangesと同じ取得を行う。
	RecentChangesTx(ctx context.Context, tx *sql.Tx, userID string, limit int) ([]int, error)

	// AppendTx はトランザクション内で履歴エントリを追記する。
	// (user_id, date)の一意制約違反はmodel.APIError（INCONSISTENT_HISTORY）
	// として返す。
	AppendTx(ctx context.Context, tx *sql.Tx, entry *model.RatingHistoryEntry) error

	// ListByUser はユーザーの履歴をdate降順でページネーション取得する。
	ListByUser(ctx context.Context, userID string, offset, limit int) ([]model.RatingHistoryEntry, error)
}

// TaskRepository はタスクレコードの読み取り専用インターフェース。
// タスクのCRUD自体は外部のタスク管理サービスが所有する。
type TaskRepository interface {
	// ListCreatedBetween は作成日時が[start, end]に含まれるタスクを返す。
	// 削除済みタスクも含む。
	ListCreatedBetween(ctx context.Context, userID string, start, end time.Time) ([]model.Task, error)

	// ListDeletedBetween は削除日時が[start, end]に含まれるタスクを返す。
	ListDeletedBetween(ctx context.Context, userID string, start, end time.Time) ([]model.Task, error)
}

// StudySessionRepository は学習セッションレコードの読み取り専用インターフェース。
type StudySessionRepository interface {
	// ListOn は記録日が指定暦日に一致するセッションを返す。
	ListOn(ctx context.Context, userID string, day time.Time) ([]model.StudySession, error)
}

// ActivityRepository は活動レコードの読み取り専用インターフェース。
type ActivityRepository interface {
	// ListOn は記録日が指定暦日に一致する活動を返す。
	ListOn(ctx context.Context, userID string, day time.Time) ([]model.Activity, error)
}

// ExpenseRepository は支出レコードの読み取り専用インターフェース。
type ExpenseRepository interface {
	// ListOn は記録日が指定暦日に一致する支出を返す。
	ListOn(ctx context.Context, userID string, day time.Time) ([]model.Expense, error)
}

// BudgetRepository は予算設定の読み取り専用インターフェース。
type BudgetRepository interface {
	// FindActive はユーザーの有効な予算（最新の1件）を返す。
	// 未設定の場合はnilを返す。
	FindActive(ctx context.Context, userID string) (*model.Budget, error)
}

// SessionRepository はセッションデータの読み取りインターフェース。
// セッションの発行・失効は外部の認証基盤が所有する。
type SessionRepository interface {
	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
}

// TxBeginner はトランザクション開始用のインターフェース。
// 確定処理の原子性境界を提供する。
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

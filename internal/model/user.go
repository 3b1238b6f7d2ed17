// Package model はドメインモデルを定義する。
package model

import "time"

// レーティングの取りうる範囲と初期基準値。
const (
	// MinRating はレーティングの下限。
	MinRating = 400
	// MaxRating はレーティングの上限。
	MaxRating = 2500
	// DefaultBaseRating は履歴が存在しないユーザーの暗黙の基準レーティング。
	// 基準値の解決は rating.Service 内の1箇所に集約する。
	DefaultBaseRating = 1000
	// DefaultDailyStudyGoalHours は学習目標時間（時間単位）のデフォルト値。
	DefaultDailyStudyGoalHours = 2.0
	// InactivityDecayPerDay は完全に活動がなかった1日あたりのレーティング減衰量。
	InactivityDecayPerDay = 10
)

// User はサービス利用ユーザーのレーティング状態を表す。
// アカウント自体のライフサイクル（作成・削除）は外部の認証基盤が所有し、
// 本エンジンはレーティング関連フィールドのみを更新する。
type User struct {
	ID             string
	Rating         int     // 暫定値または確定値。[MinRating, MaxRating]にクランプされる。
	Rank           string  // Ratingから導出されるランク名
	DailyStudyGoal float64 // 1日の学習目標（時間）。未設定時はDefaultDailyStudyGoalHours。
	LastActiveAt   *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// StudyGoalHours は学習目標時間を返す。未設定（0以下）の場合はデフォルト値を返す。
func (u *User) StudyGoalHours() float64 {
	if u.DailyStudyGoal <= 0 {
		return DefaultDailyStudyGoalHours
	}
	return u.DailyStudyGoal
}

// Session はユーザーのログインセッションを表す。
// セッションの発行・失効は外部の認証基盤が所有し、本エンジンは検証のみ行う。
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

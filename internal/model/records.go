package model

import "time"

// このファイルの型は外部コラボレータ（タスク・家計簿・学習記録のCRUD層）が
// 所有するレコードを表す。本エンジンは日単位の範囲で読み取るのみで、
// 作成・更新・削除は一切行わない。

// DefaultTaskEstimateMinutes は見積もり未設定タスクに適用する既定値（分）。
const DefaultTaskEstimateMinutes = 30

// Task はその日に作成された計画タスクを表す。
type Task struct {
	ID                string
	UserID            string
	Title             string
	EstimatedDuration int // 分。0は未設定を意味しDefaultTaskEstimateMinutesとして扱う。
	IsCompleted       bool
	CreatedAt         time.Time
	DeletedAt         *time.Time
	Date              time.Time
}

// EstimateMinutes は見積もり時間（分）を返す。未設定の場合は既定値を返す。
func (t *Task) EstimateMinutes() int {
	if t.EstimatedDuration <= 0 {
		return DefaultTaskEstimateMinutes
	}
	return t.EstimatedDuration
}

// IsActive は削除されていないタスクかどうかを返す。
func (t *Task) IsActive() bool {
	return t.DeletedAt == nil
}

// StudySession は学習セッションの記録を表す。
type StudySession struct {
	ID       string
	UserID   string
	Date     time.Time
	Duration int // 分
}

// Activity はタイマー付きで記録された活動を表す。
// PlannedDurationが0の場合は計画なしのアドホック活動を意味する。
type Activity struct {
	ID              string
	UserID          string
	Date            time.Time
	Duration        int // 分
	PlannedDuration int // 分。0はアドホック活動。
}

// Expense は支出の記録を表す。
type Expense struct {
	ID     string
	UserID string
	Date   time.Time
	Amount float64
}

// BudgetType は予算の期間種別を表す。
type BudgetType string

const (
	// BudgetTypeDaily は日次予算を示す。
	BudgetTypeDaily BudgetType = "DAILY"
	// BudgetTypeWeekly は週次予算を示す。日割りは/7。
	BudgetTypeWeekly BudgetType = "WEEKLY"
	// BudgetTypeMonthly は月次予算を示す。日割りは/30。
	BudgetTypeMonthly BudgetType = "MONTHLY"
)

// Budget はユーザーの有効な予算設定を表す。
type Budget struct {
	ID        string
	UserID    string
	Amount    float64
	Type      BudgetType
	CreatedAt time.Time
}

// DailyLimit は予算を1日あたりの上限額に日割りして返す。
func (b *Budget) DailyLimit() float64 {
	switch b.Type {
	case BudgetTypeWeekly:
		return b.Amount / 7
	case BudgetTypeMonthly:
		return b.Amount / 30
	default:
		return b.Amount
	}
}

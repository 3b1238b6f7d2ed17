package model

import "time"

// 履歴エントリのreasonフィールドに入る固定文字列。
const (
	// ReasonEndOfDay は通常の日次確定エントリを示す。
	ReasonEndOfDay = "End of Day Summary"
	// ReasonInactivity は複数日の空白に対する減衰エントリを示す。
	ReasonInactivity = "Inactivity Penalty"
)

// ScoreBreakdown は1日分のサブスコアの内訳を表す。
// 履歴のbreakdownカラムにJSONとして保存する固定スキーマ。
// 自由形式のフィールド追加は行わない。
type ScoreBreakdown struct {
	Plan       int `json:"plan"`
	Study      int `json:"study"`
	Activity   int `json:"activity"`
	Budget     int `json:"budget"`
	Discipline int `json:"discipline"`
	Raw        int `json:"raw"`        // クランプ後のraw DPS
	Adjustment int `json:"adjustment"` // 直近履歴平均に対する相対調整
	Final      int `json:"final"`      // Raw + Adjustment（意図的に再クランプしない）
}

// RatingHistoryEntry は確定済みの1日分のレーティング変動を表す。
// 確定処理のみが作成するappend-onlyの不変レコードで、更新・削除は行わない。
// 同一ユーザーの連続するエントリはoldRating == 直前エントリのnewRatingの
// 連鎖を保つ（最初のエントリの基準はDefaultBaseRating）。
type RatingHistoryEntry struct {
	ID        string
	UserID    string
	Date      time.Time // 確定対象の暦日（日付のみ有効）
	OldRating int
	NewRating int
	Change    int // 符号付き変動量
	DPS       int // その日の最終DPS（減衰エントリでは0）
	Breakdown ScoreBreakdown
	Reason    string
	CreatedAt time.Time
}

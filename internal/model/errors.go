package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, rating, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeUserNotFound        = "USER_NOT_FOUND"
	ErrCodeInconsistentHistory = "INCONSISTENT_HISTORY"
	ErrCodeInvalidPage         = "INVALID_PAGE"
)

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
// 確定処理・暫定反映処理の双方でリクエスト全体を中断させる致命的エラー。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "ユーザーが見つかりません。",
		Category: "auth",
		Action:   "ログインし直してください。",
	}
}

// NewInconsistentHistoryError は履歴台帳の不整合を検出した場合のエラーを生成する。
// 同一日の二重確定や連鎖の断絶は自動修復せず、ハードエラーとして表面化させる。
func NewInconsistentHistoryError(detail string) *APIError {
	return &APIError{
		Code:     ErrCodeInconsistentHistory,
		Message:  fmt.Sprintf("レーティング履歴に不整合が検出されました: %s", detail),
		Category: "rating",
		Action:   "時間をおいて再度お試しください。解消しない場合は管理者に連絡してください。",
	}
}

// NewInvalidPageError は無効なページ番号が指定された場合のエラーを生成する。
func NewInvalidPageError(page string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidPage,
		Message:  fmt.Sprintf("無効なページ番号です: %s", page),
		Category: "validation",
		Action:   "1以上の整数をページ番号に指定してください。",
	}
}

// Package handler はHTTP APIのハンドラー層を提供する。
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/hitoshi/rankman/internal/middleware"
	"github.com/hitoshi/rankman/internal/model"
	"github.com/hitoshi/rankman/internal/rating"
)

// RatingServiceInterface はレーティングハンドラーが必要とするサービスインターフェース。
type RatingServiceInterface interface {
	// FinalizeIfDayCrossed は日をまたいでいた場合に前回活動日を確定する。
	FinalizeIfDayCrossed(ctx context.Context, userID string) (*rating.FinalizeResult, error)
	// RecalculateLive は今日のDPSを暫定レーティングとして反映する。
	RecalculateLive(ctx context.Context, userID string) (*rating.LiveResult, error)
	// GetHistory は履歴台帳をページ単位で返す。
	GetHistory(ctx context.Context, userID string, page int) ([]model.RatingHistoryEntry, error)
	// CurrentRating は現在のレーティング状態を返す。
	CurrentRating(ctx context.Context, userID string) (*rating.Snapshot, error)
}

// RatingHandler はレーティングエンジンのHTTPハンドラー。
type RatingHandler struct {
	service RatingServiceInterface
}

// NewRatingHandler はRatingHandlerを生成する。
func NewRatingHandler(service RatingServiceInterface) *RatingHandler {
	return &RatingHandler{
		service: service,
	}
}

// --- レスポンス型 ---

// breakdownResponse はDPS内訳のレスポンス。固定スキーマで序列化する。
type breakdownResponse struct {
	Plan       int `json:"plan"`
	Study      int `json:"study"`
	Activity   int `json:"activity"`
	Budget     int `json:"budget"`
	Discipline int `json:"discipline"`
	Raw        int `json:"raw"`
	Adjustment int `json:"adjustment"`
	Final      int `json:"final"`
}

// recalculateResponse はレーティング再計算のレスポンス。
type recalculateResponse struct {
	Finalized     bool               `json:"finalized"`
	OldRating     int                `json:"old_rating"`
	NewRating     int                `json:"new_rating"`
	Change        int                `json:"change"`
	Rank          string             `json:"rank"`
	DPS           int                `json:"dps"`
	Breakdown     *breakdownResponse `json:"breakdown,omitempty"`
	IsProvisional bool               `json:"is_provisional"`
}

// ratingSnapshotResponse は現在のレーティング状態のレスポンス。
type ratingSnapshotResponse struct {
	Rating       int        `json:"rating"`
	Rank         string     `json:"rank"`
	LastActiveAt *time.Time `json:"last_active_at,omitempty"`
}

// historyEntryResponse は履歴エントリのレスポンス。
type historyEntryResponse struct {
	ID        string            `json:"id"`
	Date      string            `json:"date"`
	OldRating int               `json:"old_rating"`
	NewRating int               `json:"new_rating"`
	Change    int               `json:"change"`
	DPS       int               `json:"dps"`
	Breakdown breakdownResponse `json:"breakdown"`
	Reason    string            `json:"reason"`
}

// historyListResponse は履歴一覧のレスポンス。
type historyListResponse struct {
	Entries []historyEntryResponse `json:"entries"`
	Page    int                    `json:"page"`
	HasMore bool                   `json:"has_more"`
}

// apiErrorResponse は統一エラーフォーマットのレスポンス。
type apiErrorResponse struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

func toBreakdownResponse(b model.ScoreBreakdown) breakdownResponse {
	return breakdownResponse{
		Plan:       b.Plan,
		Study:      b.Study,
		Activity:   b.Activity,
		Budget:     b.Budget,
		Discipline: b.Discipline,
		Raw:        b.Raw,
		Adjustment: b.Adjustment,
		Final:      b.Final,
	}
}

// Recalculate は日次確定チェックと暫定レーティングの再計算を実行する。
// POST /api/rating/recalculate
//
// 外部のミューテーションAPI（タスク完了、支出記録、タイマー停止など）は
// 書き込み成功後にこのエンドポイントを同期的に呼ぶ。確定処理の失敗は
// リクエスト全体の失敗として返すが、暫定反映の失敗は警告ログに留めて
// 確定結果（または現状値）を返す。表示用の値の計算失敗でユーザーの
// アクション自体を失敗させないため。
func (h *RatingHandler) Recalculate(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	fin, err := h.service.FinalizeIfDayCrossed(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	live, err := h.service.RecalculateLive(r.Context(), userID)
	if err != nil {
		// 致命的エラー（ユーザー不在）以外は回復可能な警告として扱う。
		var apiErr *model.APIError
		if errors.As(err, &apiErr) && apiErr.Code == model.ErrCodeUserNotFound {
			handleServiceError(w, err)
			return
		}
		slog.Warn("live rating recalculation failed",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		writeJSON(w, http.StatusOK, recalculateResponse{
			Finalized: fin.Finalized,
			OldRating: fin.NewRating,
			NewRating: fin.NewRating,
			Rank:      fin.NewRank,
		})
		return
	}

	writeJSON(w, http.StatusOK, recalculateResponse{
		Finalized:     fin.Finalized,
		OldRating:     live.OldRating,
		NewRating:     live.NewRating,
		Change:        live.Change,
		Rank:          live.Rank,
		DPS:           live.DPS,
		Breakdown:     ptr(toBreakdownResponse(live.Breakdown)),
		IsProvisional: live.IsProvisional,
	})
}

// Me は現在のレーティング状態を返す。
// GET /api/rating/me
func (h *RatingHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	snap, err := h.service.CurrentRating(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ratingSnapshotResponse{
		Rating:       snap.Rating,
		Rank:         snap.Rank,
		LastActiveAt: snap.LastActiveAt,
	})
}

// History は履歴台帳をページ単位で返す。
// GET /api/rating/history?page=N
func (h *RatingHandler) History(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	page := 1
	if pageStr := r.URL.Query().Get("page"); pageStr != "" {
		p, err := strconv.Atoi(pageStr)
		if err != nil || p < 1 {
			writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidPageError(pageStr))
			return
		}
		page = p
	}

	entries, err := h.service.GetHistory(r.Context(), userID, page)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := historyListResponse{
		Entries: make([]historyEntryResponse, len(entries)),
		Page:    page,
		HasMore: len(entries) == rating.HistoryPageSize,
	}
	for i, e := range entries {
		resp.Entries[i] = historyEntryResponse{
			ID:        e.ID,
			Date:      e.Date.Format("2006-01-02"),
			OldRating: e.OldRating,
			NewRating: e.NewRating,
			Change:    e.Change,
			DPS:       e.DPS,
			Breakdown: toBreakdownResponse(e.Breakdown),
			Reason:    e.Reason,
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// --- 共通ヘルパー ---

func ptr[T any](v T) *T {
	return &v
}

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

// writeUnauthorized は未認証エラーの統一レスポンスを書き込む。
func writeUnauthorized(w http.ResponseWriter) {
	writeAPIErrorResponse(w, http.StatusUnauthorized, &model.APIError{
		Code:     "UNAUTHORIZED",
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "ログインしてください。",
	})
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(apiErrorResponse{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		statusCode := mapAPIErrorToHTTPStatus(apiErr)
		writeAPIErrorResponse(w, statusCode, apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	writeAPIErrorResponse(w, http.StatusInternalServerError, &model.APIError{
		Code:     "INTERNAL_ERROR",
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	})
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeUserNotFound:
		return http.StatusNotFound
	case model.ErrCodeInconsistentHistory:
		return http.StatusConflict
	case model.ErrCodeInvalidPage:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

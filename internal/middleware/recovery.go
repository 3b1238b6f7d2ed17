package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/hitoshi/rankman/internal/model"
)

// NewRecoveryMiddleware はpanic発生時にプロセスクラッシュを防ぎ、
// 統一エラーフォーマットで500レスポンスを返すミドルウェアを生成する。
// レーティングAPIのエラーはすべてAPIError形式で返すため、panic経路も合わせる。
func NewRecoveryMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					slog.Error("panic recovered",
						slog.Any("panic", rec),
						slog.String("method", r.Method),
						slog.String("path", r.URL.Path),
						slog.String("stack", string(debug.Stack())),
					)
					WriteErrorResponse(w, http.StatusInternalServerError, &model.APIError{
						Code:     "INTERNAL_ERROR",
						Message:  "サーバー内部でエラーが発生しました。",
						Category: "system",
						Action:   "時間をおいて再度お試しください。",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

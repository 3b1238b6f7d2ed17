// Package rating はDPS計算結果をレーティングへ反映するドメインロジックを提供する。
//
// 1日のレーティングは「オープン」（今日。暫定値で何度でも再計算される）か
// 「クローズド」（確定済み。履歴に1回だけ書かれ以後不変）のどちらかであり、
// その遷移はすべてFinalizeIfDayCrossedの1箇所を通る。
package rating

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/rankman/internal/model"
	"github.com/hitoshi/rankman/internal/repository"
	"github.com/hitoshi/rankman/internal/score"
)

// HistoryPageSize は履歴取得の1ページあたりの件数。
const HistoryPageSize = 20

// MetricsRecorder はサービス層が必要とするメトリクス記録のインターフェース。
// metrics.Collectorの部分集合として定義する。
type MetricsRecorder interface {
	RecordFinalization(duration time.Duration)
	RecordInactivityDecay(days int)
	RecordLiveRecalc()
	RecordFinalDPS(dps int)
}

// noopMetrics はメトリクス未設定時のフォールバック。
type noopMetrics struct{}

func (noopMetrics) RecordFinalization(time.Duration) {}
func (noopMetrics) RecordInactivityDecay(int)        {}
func (noopMetrics) RecordLiveRecalc()                {}
func (noopMetrics) RecordFinalDPS(int)               {}

// Service はレーティングエンジンのサービス層。
// 暫定反映（ライブプロジェクション）と日次確定の両方を提供する。
type Service struct {
	users   repository.UserRepository
	history repository.RatingHistoryRepository
	tasks   repository.TaskRepository
	studies repository.StudySessionRepository
	acts    repository.ActivityRepository
	exps    repository.ExpenseRepository
	budgets repository.BudgetRepository
	tx      repository.TxBeginner

	loc     *time.Location
	clock   func() time.Time
	metrics MetricsRecorder
}

// Deps はNewServiceに必要な依存関係をまとめた構造体。
type Deps struct {
	Users      repository.UserRepository
	History    repository.RatingHistoryRepository
	Tasks      repository.TaskRepository
	Studies    repository.StudySessionRepository
	Acts       repository.ActivityRepository
	Exps       repository.ExpenseRepository
	Budgets    repository.BudgetRepository
	TxBeginner repository.TxBeginner

	Location *time.Location
	Clock    func() time.Time // テスト用のクロック注入。nilならtime.Now。
	Metrics  MetricsRecorder  // nil可。
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(deps Deps) *Service {
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	metrics := deps.Metrics
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &Service{
		users:   deps.Users,
		history: deps.History,
		tasks:   deps.Tasks,
		studies: deps.Studies,
		acts:    deps.Acts,
		exps:    deps.Exps,
		budgets: deps.Budgets,
		tx:      deps.TxBeginner,
		loc:     deps.Location,
		clock:   clock,
		metrics: metrics,
	}
}

// LiveResult は暫定反映の結果を表す。
type LiveResult struct {
	OldRating     int
	NewRating     int
	Change        int
	DPS           int
	Breakdown     model.ScoreBreakdown
	Rank          string
	IsProvisional bool
}

// FinalizeResult は日次確定チェックの結果を表す。
// Finalizedがfalseの場合は同日内の再呼び出しで何も書き込まれていない。
type FinalizeResult struct {
	NewRating int
	NewRank   string
	Delta     int
	DPS       model.ScoreBreakdown
	Finalized bool
}

// Snapshot は現在のレーティング状態の読み取り結果を表す。
type Snapshot struct {
	Rating       int
	Rank         string
	LastActiveAt *time.Time
}

// baselineRating は確定済み履歴から次の基準レーティングを解決する。
// 履歴が空の場合のみ暗黙の初期値を返す。暗黙値の参照はこの1箇所に集約し、
// Userの暫定Ratingを基準に使うことは決してない（暫定値は同日中の
// 再計算で汚れている可能性があるため）。
func baselineRating(latest *model.RatingHistoryEntry) int {
	if latest == nil {
		return model.DefaultBaseRating
	}
	return latest.NewRating
}

// computeDay はユーザーの指定暦日のDPS内訳を計算する。
// レコードの読み取りと純粋計算のみで、書き込みは行わない。
func (s *Service) computeDay(ctx context.Context, user *model.User, day time.Time, recentChanges []int) (model.ScoreBreakdown, error) {
	start, end := score.DayWindow(day, s.loc)

	created, err := s.tasks.ListCreatedBetween(ctx, user.ID, start, end)
	if err != nil {
		return model.ScoreBreakdown{}, fmt.Errorf("タスクの取得に失敗しました: %w", err)
	}
	deleted, err := s.tasks.ListDeletedBetween(ctx, user.ID, start, end)
	if err != nil {
		return model.ScoreBreakdown{}, fmt.Errorf("削除タスクの取得に失敗しました: %w", err)
	}
	sessions, err := s.studies.ListOn(ctx, user.ID, day)
	if err != nil {
		return model.ScoreBreakdown{}, fmt.Errorf("学習セッションの取得に失敗しました: %w", err)
	}
	activities, err := s.acts.ListOn(ctx, user.ID, day)
	if err != nil {
		return model.ScoreBreakdown{}, fmt.Errorf("活動記録の取得に失敗しました: %w", err)
	}
	expenses, err := s.exps.ListOn(ctx, user.ID, day)
	if err != nil {
		return model.ScoreBreakdown{}, fmt.Errorf("支出の取得に失敗しました: %w", err)
	}
	budget, err := s.budgets.FindActive(ctx, user.ID)
	if err != nil {
		return model.ScoreBreakdown{}, fmt.Errorf("予算の取得に失敗しました: %w", err)
	}

	sub := score.SubScores{
		Plan:       score.PlanScore(created),
		Study:      score.StudyScore(sessions, user.StudyGoalHours()),
		Activity:   score.ActivityScore(activities),
		Budget:     score.BudgetScore(expenses, budget),
		Discipline: score.DisciplinePenalty(created, deleted, s.loc),
	}

	return score.Aggregate(sub, recentChanges), nil
}

// RecalculateLive は今日のDPSを再計算し、暫定レーティングとしてユーザーに反映する。
// 履歴には一切書き込まない。ミューテーション後に同期的に呼ばれる前提のため、
// 同一条件での再呼び出しは同じ結果を返す冪等な操作になっている。
func (s *Service) RecalculateLive(ctx context.Context, userID string) (*LiveResult, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}

	now := s.clock()
	today := score.DayOf(now, s.loc)

	changes, err := s.history.RecentChanges(ctx, userID, score.RelativeWindowSize)
	if err != nil {
		return nil, fmt.Errorf("直近履歴の取得に失敗しました: %w", err)
	}

	breakdown, err := s.computeDay(ctx, user, today, changes)
	if err != nil {
		return nil, err
	}

	latest, err := s.history.Latest(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("最新履歴の取得に失敗しました: %w", err)
	}
	base := baselineRating(latest)

	provisional := score.ClampRating(base+breakdown.Final, model.MinRating, model.MaxRating)
	rank := score.RankFor(provisional)

	if err := s.users.UpdateLiveRating(ctx, userID, provisional, rank, now); err != nil {
		return nil, fmt.Errorf("暫定レーティングの更新に失敗しました: %w", err)
	}

	s.metrics.RecordLiveRecalc()

	return &LiveResult{
		OldRating:     user.Rating,
		NewRating:     provisional,
		Change:        provisional - user.Rating,
		DPS:           breakdown.Final,
		Breakdown:     breakdown,
		Rank:          rank,
		IsProvisional: true,
	}, nil
}

// FinalizeIfDayCrossed は最終活動日と今日を比較し、日をまたいでいた場合に
// 前回の活動日を確定する。同日内の呼び出しは安価なno-op。
//
// 確定処理の全ステップ（基準解決、履歴追記、減衰、ユーザー更新）は
// ユーザー行のFOR UPDATEロックを持つ1つのトランザクション内で実行され、
// 同時リクエストによる二重確定を防ぐ。途中で失敗した場合は何も書き込まれない。
func (s *Service) FinalizeIfDayCrossed(ctx context.Context, userID string) (*FinalizeResult, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}

	now := s.clock()

	// 初回アクション: 閉じるべき日が存在しない。
	// 最終活動時刻はこの後のライブプロジェクションが刻印する。
	if user.LastActiveAt == nil {
		return &FinalizeResult{NewRating: user.Rating, NewRank: user.Rank, Finalized: false}, nil
	}

	// ロック取得前の早期リターン。日付のみの比較を固定タイムゾーンで行う。
	if score.SameDay(*user.LastActiveAt, now, s.loc) {
		return &FinalizeResult{NewRating: user.Rating, NewRank: user.Rank, Finalized: false}, nil
	}

	start := time.Now()
	result, err := s.finalize(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	if result.Finalized {
		s.metrics.RecordFinalization(time.Since(start))
	}
	return result, nil
}

// finalize は日次確定の本体。ユーザー行ロック下で最終活動日を再検証し、
// 前回活動日のエントリ（と必要なら減衰エントリ）を追記する。
func (s *Service) finalize(ctx context.Context, userID string, now time.Time) (*FinalizeResult, error) {
	today := score.DayOf(now, s.loc)

	tx, err := s.tx.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("トランザクションの開始に失敗しました: %w", err)
	}
	defer tx.Rollback()

	// ロック下で再読込し、先行リクエストが確定済みでないか検証する
	// （lastActiveAtに対するcompare-and-swap相当）。
	user, err := s.users.FindByIDForUpdate(ctx, tx, userID)
	if err != nil {
		return nil, fmt.Errorf("ユーザー行のロックに失敗しました: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}
	if user.LastActiveAt == nil || score.SameDay(*user.LastActiveAt, now, s.loc) {
		// 並行リクエストに先を越された。何も書かずに戻る。
		return &FinalizeResult{NewRating: user.Rating, NewRank: user.Rank, Finalized: false}, nil
	}

	closedDay := score.DayOf(*user.LastActiveAt, s.loc)

	latest, err := s.history.LatestTx(ctx, tx, userID)
	if err != nil {
		return nil, fmt.Errorf("最新履歴の取得に失敗しました: %w", err)
	}
	if latest != nil && score.DateOnOrAfter(latest.Date, closedDay) {
		// 一意制約と同じ不変条件をロック下でも検証する。自動修復はしない。
		return nil, model.NewInconsistentHistoryError(
			fmt.Sprintf("%s 以降の履歴が既に存在します", score.FormatDate(closedDay)))
	}
	base := baselineRating(latest)

	changes, err := s.history.RecentChangesTx(ctx, tx, userID, score.RelativeWindowSize)
	if err != nil {
		return nil, fmt.Errorf("直近履歴の取得に失敗しました: %w", err)
	}

	// クローズした日の凍結済みレコードからDPSを計算する。
	// 読み取りは独立した純粋クエリのためロック外のコネクションでよい。
	breakdown, err := s.computeDay(ctx, user, closedDay, changes)
	if err != nil {
		return nil, err
	}

	dps := breakdown.Final
	newRating := score.ClampRating(base+dps, model.MinRating, model.MaxRating)

	entry := &model.RatingHistoryEntry{
		ID:        uuid.New().String(),
		UserID:    userID,
		Date:      closedDay,
		OldRating: base,
		NewRating: newRating,
		Change:    dps,
		DPS:       dps,
		Breakdown: breakdown,
		Reason:    model.ReasonEndOfDay,
	}
	if err := s.history.AppendTx(ctx, tx, entry); err != nil {
		return nil, err
	}

	finalRating := newRating

	// 丸1日以上の完全な空白があった場合は減衰エントリを追加する。
	gapDays := score.DaysBetween(closedDay, today, s.loc)
	if gapDays > 1 {
		decay := (gapDays - 1) * model.InactivityDecayPerDay
		decayed := score.ClampRating(newRating-decay, model.MinRating, model.MaxRating)

		// 減衰エントリの日付は直近のスキップ日（今日の前日）。
		// (user_id, date)の一意性を保ちつつ、date降順で確定エントリの直後に並ぶ。
		decayEntry := &model.RatingHistoryEntry{
			ID:        uuid.New().String(),
			UserID:    userID,
			Date:      today.AddDate(0, 0, -1),
			OldRating: newRating,
			NewRating: decayed,
			Change:    -decay,
			DPS:       0,
			Reason:    model.ReasonInactivity,
		}
		if err := s.history.AppendTx(ctx, tx, decayEntry); err != nil {
			return nil, err
		}

		finalRating = decayed
		s.metrics.RecordInactivityDecay(gapDays - 1)

		slog.Info("inactivity decay applied",
			slog.String("user_id", userID),
			slog.Int("gap_days", gapDays),
			slog.Int("decay", decay),
		)
	}

	rank := score.RankFor(finalRating)
	if err := s.users.UpdateRatingTx(ctx, tx, userID, finalRating, rank, now); err != nil {
		return nil, fmt.Errorf("確定レーティングの更新に失敗しました: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("確定トランザクションのコミットに失敗しました: %w", err)
	}

	s.metrics.RecordFinalDPS(dps)

	slog.Info("day finalized",
		slog.String("user_id", userID),
		slog.String("date", score.FormatDate(closedDay)),
		slog.Int("old_rating", base),
		slog.Int("new_rating", finalRating),
		slog.Int("dps", dps),
	)

	return &FinalizeResult{
		NewRating: finalRating,
		NewRank:   rank,
		Delta:     finalRating - base,
		DPS:       breakdown,
		Finalized: true,
	}, nil
}

// GetHistory はユーザーの履歴台帳をdate降順でページ単位に返す（pageは1始まり）。
func (s *Service) GetHistory(ctx context.Context, userID string, page int) ([]model.RatingHistoryEntry, error) {
	if page < 1 {
		return nil, model.NewInvalidPageError(fmt.Sprintf("%d", page))
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}

	offset := (page - 1) * HistoryPageSize
	entries, err := s.history.ListByUser(ctx, userID, offset, HistoryPageSize)
	if err != nil {
		return nil, fmt.Errorf("履歴の取得に失敗しました: %w", err)
	}
	return entries, nil
}

// CurrentRating は現在のレーティング状態を返す。
func (s *Service) CurrentRating(ctx context.Context, userID string) (*Snapshot, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}
	return &Snapshot{
		Rating:       user.Rating,
		Rank:         user.Rank,
		LastActiveAt: user.LastActiveAt,
	}, nil
}

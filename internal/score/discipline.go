package score

import (
	"math"
	"time"

	"github.com/hitoshi/rankman/internal/model"
)

// noPlanPenalty はその日にタスクが1件も作成されなかった場合の固定ペナルティ。
const noPlanPenalty = -50

// creationHourPenalty はタスク作成時刻（時）に応じた基礎ペナルティを返す。
// 早朝の計画は無料、時間が遅くなるほど重くなる。
func creationHourPenalty(hour int) float64 {
	switch {
	case hour < 6:
		return 0
	case hour < 9:
		return -2
	case hour < 21:
		return -4
	default:
		return -6
	}
}

// deletionHourPenalty はタスク削除時刻（時）に応じた基礎ペナルティを返す。
func deletionHourPenalty(hour int) float64 {
	if hour >= 6 {
		return -5
	}
	return -2
}

// durationWeight は見積もり時間による重みを返す。30分を基準の1.0とする。
func durationWeight(t *model.Task) float64 {
	return float64(t.EstimateMinutes()) / 30
}

// DisciplinePenalty はタスクの作成・削除の規律ペナルティを計算する。
// createdはその日に作成された全タスク（後に削除されたものを含む）、
// deletedはその日に削除された全タスク（作成日を問わない）。
// その日にタスクが1件も作成されなかった場合、作成分としてnoPlanPenaltyを
// 一度だけ課す（存在しないタスクごとに課すことはない）。
// 作成分と削除分は浮動小数で積算し、合計を一度だけ丸める。
func DisciplinePenalty(created, deleted []model.Task, loc *time.Location) int {
	total := 0.0

	if len(created) == 0 {
		total += noPlanPenalty
	}
	for i := range created {
		t := &created[i]
		hour := t.CreatedAt.In(loc).Hour()
		total += creationHourPenalty(hour) * durationWeight(t)
	}
	for i := range deleted {
		t := &deleted[i]
		if t.DeletedAt == nil {
			continue
		}
		hour := t.DeletedAt.In(loc).Hour()
		total += deletionHourPenalty(hour) * durationWeight(t)
	}

	return int(math.Round(total))
}

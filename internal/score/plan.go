package score

import (
	"math"

	"github.com/hitoshi/rankman/internal/model"
)

// 計画スコアの範囲。完了率0%で-25、100%で+25の線形マップ。
const (
	planScoreMin = -25
	planScoreMax = 25
)

// PlanScore はその日に作成されたタスクの完了度から計画スコアを計算する。
// 削除済みタスクは対象外。見積もり時間で重み付けした完了率を
// [0,1] -> [-25,+25] に線形変換する。
// 有効なタスクが1件もない日は0を返す（計画ゼロのペナルティは
// DisciplinePenalty側で別途課す）。
func PlanScore(tasks []model.Task) int {
	totalMinutes := 0
	completedMinutes := 0
	for i := range tasks {
		t := &tasks[i]
		if !t.IsActive() {
			continue
		}
		est := t.EstimateMinutes()
		totalMinutes += est
		if t.IsCompleted {
			completedMinutes += est
		}
	}

	if totalMinutes == 0 {
		return 0
	}

	completionRate := float64(completedMinutes) / float64(totalMinutes)
	return int(math.Round(completionRate*50 - 25))
}

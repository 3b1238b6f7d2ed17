package score

import (
	"math"

	"github.com/hitoshi/rankman/internal/model"
)

// 活動スコアの各種定数。
const (
	activityScoreMin      = -30
	activityScoreMax      = 20
	activityCompleteBonus = 2  // 計画時間を守り切った活動のボーナス
	activityAdHocBonus    = 1  // 計画なし（タイマーのみ）活動のボーナス
	activityUnderrunScale = 10 // 未達率に対する線形ペナルティの最大値
)

// ActivityScore は記録された活動のタイマー遵守度から活動スコアを計算する。
// 計画時間付きの活動は実績/計画の比率で評価し、未達分に比例して最大
// activityUnderrunScaleまで減点、完遂ならボーナスを加点する。
// 計画なしの活動は1件ごとに小さなボーナスを加点する。
// 合計を丸めたうえで[activityScoreMin, activityScoreMax]にクランプする。
func ActivityScore(activities []model.Activity) int {
	total := 0.0
	for _, a := range activities {
		if a.PlannedDuration > 0 {
			ratio := float64(a.Duration) / float64(a.PlannedDuration)
			if ratio > 1 {
				ratio = 1
			}
			if ratio < 1 {
				total -= (1 - ratio) * activityUnderrunScale
			} else {
				total += activityCompleteBonus
			}
		} else {
			total += activityAdHocBonus
		}
	}

	return clampInt(int(math.Round(total)), activityScoreMin, activityScoreMax)
}

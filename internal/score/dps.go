package score

import (
	"math"

	"github.com/hitoshi/rankman/internal/model"
)

// raw DPSのクランプ範囲。
const (
	rawDPSMin = -100
	rawDPSMax = 100
)

// RelativeWindowSize は相対調整に使用する直近履歴エントリの最大件数。
const RelativeWindowSize = 7

// relativeAdjustmentFactor は直近平均との差分に掛ける係数。
const relativeAdjustmentFactor = 0.1

// SubScores は1日分の5つのサブスコアをまとめた入力。
type SubScores struct {
	Plan       int
	Study      int
	Activity   int
	Budget     int
	Discipline int
}

// Aggregate は5つのサブスコアと直近履歴の変動量からその日のDPSを計算する。
// サブスコアの合計を[rawDPSMin, rawDPSMax]にクランプしたraw DPSに対し、
// 直近の変動平均との差分の一部を相対調整として加算する。
// 最終DPSは意図的に再クランプしない。相対調整によって±100をわずかに
// 超えることがあるが、これは原設計が保持している挙動であり、ここで
// 勝手に丸め直さない。
func Aggregate(sub SubScores, recentChanges []int) model.ScoreBreakdown {
	raw := sub.Plan + sub.Study + sub.Activity + sub.Budget + sub.Discipline
	raw = clampInt(raw, rawDPSMin, rawDPSMax)

	adjustment := 0
	if len(recentChanges) > 0 {
		sum := 0
		for _, c := range recentChanges {
			sum += c
		}
		avg := float64(sum) / float64(len(recentChanges))
		adjustment = int(math.Round((float64(raw) - avg) * relativeAdjustmentFactor))
	}

	return model.ScoreBreakdown{
		Plan:       sub.Plan,
		Study:      sub.Study,
		Activity:   sub.Activity,
		Budget:     sub.Budget,
		Discipline: sub.Discipline,
		Raw:        raw,
		Adjustment: adjustment,
		Final:      raw + adjustment,
	}
}

package score

import (
	"math"

	"github.com/hitoshi/rankman/internal/model"
)

// studyScoreCap は学習目標を達成した場合の固定スコア。
const studyScoreCap = 30

// StudyScore はその日の学習時間から学習スコアを計算する。
// 目標達成でstudyScoreCap、未達の場合は達成率を[0,1) -> [-30,30)に線形変換する。
// goalHoursが0以下の場合も達成扱いとなり除算は発生しない。
func StudyScore(sessions []model.StudySession, goalHours float64) int {
	goalMinutes := goalHours * 60

	studyMinutes := 0
	for _, s := range sessions {
		studyMinutes += s.Duration
	}

	if float64(studyMinutes) >= goalMinutes {
		return studyScoreCap
	}

	ratio := float64(studyMinutes) / goalMinutes
	return int(math.Round(ratio*60 - 30))
}

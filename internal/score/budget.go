package score

import (
	"math"

	"github.com/hitoshi/rankman/internal/model"
)

// budgetScoreFull は日割り予算内に収まった場合の固定スコア。
// 超過時は超過率に応じて減点され、下限は設けない（大幅な超過は
// そのまま大きなマイナスになる設計）。
const budgetScoreFull = 20

// budgetOverspendScale は超過率1.0（2倍の支出）あたりの減点量。
const budgetOverspendScale = 50

// BudgetScore はその日の支出と日割り予算から予算スコアを計算する。
// 予算未設定は中立の0。日割り上限が0以下になる退化ケースも除算せず0を返す。
func BudgetScore(expenses []model.Expense, budget *model.Budget) int {
	if budget == nil {
		return 0
	}

	limit := budget.DailyLimit()
	if limit <= 0 {
		return 0
	}

	spent := 0.0
	for _, e := range expenses {
		spent += e.Amount
	}

	if spent <= limit {
		return budgetScoreFull
	}

	percentageOver := (spent - limit) / limit
	return int(math.Round(budgetScoreFull - percentageOver*budgetOverspendScale))
}

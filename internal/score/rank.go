package score

// RankThreshold はランク表の1行を表す。
type RankThreshold struct {
	Min  int
	Name string
}

// UnratedRank はどの閾値にも達しないレーティングのフォールバック。
// [model.MinRating, model.MaxRating]のクランプ下では通常到達しない。
const UnratedRank = "Unrated"

// rankTable は昇順に並んだランク閾値表。
// 競技プログラミングのレーティング帯に倣った固定テーブル。
var rankTable = []RankThreshold{
	{0, "Newbie"},
	{1200, "Pupil"},
	{1400, "Specialist"},
	{1600, "Expert"},
	{2100, "Master"},
	{2400, "Grandmaster"},
	{3000, "Legendary"},
}

// RankFor はレーティングに対応するランク名を返す。
// 閾値がレーティング以下の行のうち最大のものを選ぶ（昇順に走査して
// 上書きし続けるため、最後に一致した行が採用される）。
func RankFor(rating int) string {
	name := UnratedRank
	for _, r := range rankTable {
		if rating >= r.Min {
			name = r.Name
		}
	}
	return name
}

// RankTable はランク閾値表のコピーを返す。UI表示用。
func RankTable() []RankThreshold {
	out := make([]RankThreshold, len(rankTable))
	copy(out, rankTable)
	return out
}

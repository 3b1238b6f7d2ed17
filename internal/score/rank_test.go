package score

import "testing"

// TestRankFor はレーティング帯とランク名の対応を検証する。
func TestRankFor(t *testing.T) {
	tests := []struct {
		rating int
		want   string
	}{
		{0, "Newbie"},
		{1199, "Newbie"},
		{1200, "Pupil"},
		{1399, "Pupil"},
		{1400, "Specialist"},
		{1599, "Specialist"},
		{1600, "Expert"},
		{2099, "Expert"},
		{2100, "Master"},
		{2399, "Master"},
		{2400, "Grandmaster"},
		{2999, "Grandmaster"},
		{3000, "Legendary"},
		{9999, "Legendary"},
	}

	for _, tt := range tests {
		if got := RankFor(tt.rating); got != tt.want {
			t.Errorf("RankFor(%d) = %q, want %q", tt.rating, got, tt.want)
		}
	}
}

// TestRankFor_NegativeRating はどの閾値にも達しない場合のフォールバックを検証する。
// レーティングのクランプ下限が400のため通常は到達しない番兵値。
func TestRankFor_NegativeRating(t *testing.T) {
	if got := RankFor(-1); got != UnratedRank {
		t.Errorf("RankFor(-1) = %q, want %q", got, UnratedRank)
	}
}

// TestRankTable_ReturnsCopy は閾値表の変更が内部状態に影響しないことを検証する。
func TestRankTable_ReturnsCopy(t *testing.T) {
	table := RankTable()
	if len(table) == 0 {
		t.Fatal("RankTable returned empty table")
	}
	table[0].Name = "Tampered"

	if got := RankFor(0); got != "Newbie" {
		t.Errorf("RankFor(0) = %q after tampering copy, want %q", got, "Newbie")
	}
}

package score

import (
	"testing"
	"time"
)

// TestDayOf_Normalization は時刻が暦日の00:00に正規化されることを検証する。
func TestDayOf_Normalization(t *testing.T) {
	ts := time.Date(2026, 3, 10, 23, 45, 12, 0, jst)
	day := DayOf(ts, jst)

	want := time.Date(2026, 3, 10, 0, 0, 0, 0, jst)
	if !day.Equal(want) {
		t.Errorf("DayOf = %v, want %v", day, want)
	}
}

// TestDayOf_TimezoneBoundary はUTCでは前日でもローカルでは当日となる
// 深夜帯の正規化を検証する。
func TestDayOf_TimezoneBoundary(t *testing.T) {
	// UTC 2026-03-09 16:00 = JST 2026-03-10 01:00
	ts := time.Date(2026, 3, 9, 16, 0, 0, 0, time.UTC)
	day := DayOf(ts, jst)

	want := time.Date(2026, 3, 10, 0, 0, 0, 0, jst)
	if !day.Equal(want) {
		t.Errorf("DayOf = %v, want %v", day, want)
	}
}

// TestSameDay_MonthBoundary は月境界をまたぐ日同士が別日と判定されることを検証する。
// 日番号だけの比較では2/28と3/28を同日と誤判定するため、完全な暦日比較であることを確める。
func TestSameDay_MonthBoundary(t *testing.T) {
	a := time.Date(2026, 2, 28, 12, 0, 0, 0, jst)
	b := time.Date(2026, 3, 28, 12, 0, 0, 0, jst)

	if SameDay(a, b, jst) {
		t.Error("SameDay should be false for same day-of-month in different months")
	}
}

// TestSameDay_OverOneYear は1年以上離れた同月同日が別日と判定されることを検証する。
func TestSameDay_OverOneYear(t *testing.T) {
	a := time.Date(2025, 3, 10, 12, 0, 0, 0, jst)
	b := time.Date(2026, 3, 10, 12, 0, 0, 0, jst)

	if SameDay(a, b, jst) {
		t.Error("SameDay should be false for the same date in different years")
	}
}

// TestDaysBetween は暦日差の計算を検証する。
func TestDaysBetween(t *testing.T) {
	tests := []struct {
		name string
		a, b time.Time
		want int
	}{
		{
			name: "same day",
			a:    time.Date(2026, 3, 10, 1, 0, 0, 0, jst),
			b:    time.Date(2026, 3, 10, 23, 0, 0, 0, jst),
			want: 0,
		},
		{
			name: "adjacent days across midnight",
			a:    time.Date(2026, 3, 10, 23, 59, 0, 0, jst),
			b:    time.Date(2026, 3, 11, 0, 1, 0, 0, jst),
			want: 1,
		},
		{
			name: "four day gap",
			a:    time.Date(2026, 3, 6, 12, 0, 0, 0, jst),
			b:    time.Date(2026, 3, 10, 12, 0, 0, 0, jst),
			want: 4,
		},
		{
			name: "month boundary",
			a:    time.Date(2026, 2, 28, 12, 0, 0, 0, jst),
			b:    time.Date(2026, 3, 1, 12, 0, 0, 0, jst),
			want: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DaysBetween(tt.a, tt.b, jst); got != tt.want {
				t.Errorf("DaysBetween = %d, want %d", got, tt.want)
			}
		})
	}
}

// TestDayWindow は日の両端（00:00:00.000〜23:59:59.999）を検証する。
func TestDayWindow(t *testing.T) {
	day := time.Date(2026, 3, 10, 15, 30, 0, 0, jst)
	start, end := DayWindow(day, jst)

	wantStart := time.Date(2026, 3, 10, 0, 0, 0, 0, jst)
	wantEnd := time.Date(2026, 3, 10, 23, 59, 59, 999000000, jst)

	if !start.Equal(wantStart) {
		t.Errorf("start = %v, want %v", start, wantStart)
	}
	if !end.Equal(wantEnd) {
		t.Errorf("end = %v, want %v", end, wantEnd)
	}
}

// TestSameDate_IgnoresTimezone はDATEカラム由来のUTC深夜とローカル暦日の
// 比較でタイムゾーンが無視されることを検証する。
func TestSameDate_IgnoresTimezone(t *testing.T) {
	// DBのDATEカラムはUTC深夜として読まれる
	fromDB := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	local := time.Date(2026, 3, 10, 0, 0, 0, 0, jst)

	if !SameDate(fromDB, local) {
		t.Error("SameDate should ignore timezone and compare calendar dates")
	}
}

// TestDateOnOrAfter は日付文字列の順序比較を検証する。
func TestDateOnOrAfter(t *testing.T) {
	earlier := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	later := time.Date(2026, 3, 10, 0, 0, 0, 0, jst)

	if DateOnOrAfter(earlier, later) {
		t.Error("DateOnOrAfter(earlier, later) should be false")
	}
	if !DateOnOrAfter(later, earlier) {
		t.Error("DateOnOrAfter(later, earlier) should be true")
	}
	if !DateOnOrAfter(later, later) {
		t.Error("DateOnOrAfter(x, x) should be true")
	}
}

// TestClampRating はレーティングの範囲クランプを検証する。
func TestClampRating(t *testing.T) {
	if got := ClampRating(399, 400, 2500); got != 400 {
		t.Errorf("ClampRating(399) = %d, want 400", got)
	}
	if got := ClampRating(2501, 400, 2500); got != 2500 {
		t.Errorf("ClampRating(2501) = %d, want 2500", got)
	}
	if got := ClampRating(1000, 400, 2500); got != 1000 {
		t.Errorf("ClampRating(1000) = %d, want 1000", got)
	}
}

// Package score は1日分の活動記録から各サブスコアとDPSを計算する純粋関数群を提供する。
// すべての計算は副作用を持たず、「今日」（暫定）と「過去の確定済みの日」の
// どちらを対象にしても安全に再呼び出しできる。
package score

import (
	"math"
	"time"
)

// dateLayout は暦日の比較・保存に使用する日付フォーマット。
// ISO形式のため文字列の辞書順比較が日付順比較と一致する。
const dateLayout = "2006-01-02"

// DayOf は指定タイムゾーンにおけるtの暦日（その日の00:00:00）を返す。
// 日付の比較は必ずこの正規化を通す。月内日比較のような近道は
// 月境界や1年以上の空白で誤判定するため使用しない。
func DayOf(t time.Time, loc *time.Location) time.Time {
	lt := t.In(loc)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, loc)
}

// DayWindow は暦日dayの開始と終了（00:00:00.000〜23:59:59.999）を返す。
// レコードの日単位スコープはこの両端を含む範囲で行う。
func DayWindow(day time.Time, loc *time.Location) (start, end time.Time) {
	start = DayOf(day, loc)
	end = start.Add(24*time.Hour - time.Millisecond)
	return start, end
}

// SameDay はaとbが指定タイムゾーンで同じ暦日かどうかを返す。
func SameDay(a, b time.Time, loc *time.Location) bool {
	return DayOf(a, loc).Equal(DayOf(b, loc))
}

// DaysBetween はaからbまでの暦日数を返す（a < b なら正）。
// 夏時間による1時間のずれを丸めで吸収する。
func DaysBetween(a, b time.Time, loc *time.Location) int {
	diff := DayOf(b, loc).Sub(DayOf(a, loc))
	return int(math.Round(diff.Hours() / 24))
}

// FormatDate は暦日をISO形式の文字列にする。
func FormatDate(day time.Time) string {
	return day.Format(dateLayout)
}

// SameDate はタイムゾーンを無視して2つの値が同じ日付を指すかどうかを返す。
// DBのDATEカラム（UTC深夜として読まれる）とローカル暦日の比較に使用する。
func SameDate(a, b time.Time) bool {
	return a.Format(dateLayout) == b.Format(dateLayout)
}

// DateOnOrAfter はaの日付がbの日付以降かどうかを返す（タイムゾーン無視）。
func DateOnOrAfter(a, b time.Time) bool {
	return a.Format(dateLayout) >= b.Format(dateLayout)
}

// clampInt はvを[lo, hi]の範囲に収める。
func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampRating はレーティング値を有効範囲に収める。
func ClampRating(rating, min, max int) int {
	return clampInt(rating, min, max)
}

package giftcard

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout 有効期限の文字列表現
const DateLayout = "2006-01-02"

// ParseDate 日付文字列を解析し、UTCの0時で表した日付を返す
// YYYY-MM-DD形式のほか、RFC3339形式のタイムスタンプも日付部分だけを採用する
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return DateOf(t), nil
}

// DateOf 時刻の暦日をUTCの0時で返す
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Today locにおける現在の暦日を返す
func Today(now time.Time, loc *time.Location) time.Time {
	return DateOf(now.In(location(loc)))
}

// LocalMidnight 日付をlocの0時の時刻に変換する
func LocalMidnight(date time.Time, loc *time.Location) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, location(loc))
}

// FormatDate 日付をYYYY-MM-DD形式で返す
func FormatDate(date time.Time) string {
	return date.Format(DateLayout)
}

func location(loc *time.Location) *time.Location {
	if loc == nil {
		return time.Local
	}
	return loc
}

package giftcard

import (
	"math"
	"time"
)

const (
	// ExpiringSoonDays 「まもなく期限切れ」とみなす日数
	ExpiringSoonDays = 7
	// ExpiringWithinDays 一覧の「期限間近」フィルタの日数
	ExpiringWithinDays = 30
)

// ExpirationStatus 有効期限の状態を表す値オブジェクト
type ExpirationStatus string

const (
	ExpirationStatusExpired ExpirationStatus = "expired" // 期限切れ
	ExpirationStatusUrgent  ExpirationStatus = "urgent"  // 7日以内
	ExpirationStatusWarning ExpirationStatus = "warning" // 30日以内
	ExpirationStatusActive  ExpirationStatus = "active"  // それ以外
)

// String 文字列表現を返す
func (s ExpirationStatus) String() string {
	return string(s)
}

// DaysUntilExpiration 有効期限までの日数を返す
// 有効期限はlocの0時として扱い、現在時刻との差を日単位で切り上げる
// 当日は0、過去は負の値になる
func DaysUntilExpiration(expirationDate, now time.Time, loc *time.Location) int {
	diff := LocalMidnight(expirationDate, loc).Sub(now)
	days := math.Ceil(diff.Seconds() / (24 * time.Hour).Seconds())
	if days == 0 {
		return 0 // -0 を避ける
	}
	return int(days)
}

// ClassifyExpiration 日数から有効期限の状態を判定
func ClassifyExpiration(days int) ExpirationStatus {
	switch {
	case days < 0:
		return ExpirationStatusExpired
	case days <= ExpiringSoonDays:
		return ExpirationStatusUrgent
	case days <= ExpiringWithinDays:
		return ExpirationStatusWarning
	default:
		return ExpirationStatusActive
	}
}

// IsExpired 期限切れかどうか
func IsExpired(days int) bool {
	return days < 0
}

// IsExpiringSoon まもなく期限切れ（1〜7日）かどうか
func IsExpiringSoon(days int) bool {
	return days > 0 && days <= ExpiringSoonDays
}

// IsExpiringWithin30Days 30日以内に期限切れ（期限切れを含む）かどうか
func IsExpiringWithin30Days(days int) bool {
	return days <= ExpiringWithinDays
}

// View 表示用に派生フィールドを付与したギフトカード
// DaysUntilExpirationは計算時点の値であり、時刻が進めば古くなる
type View struct {
	Card                *GiftCard
	DaysUntilExpiration int
}

// Status 有効期限の状態を返す
func (v View) Status() ExpirationStatus {
	return ClassifyExpiration(v.DaysUntilExpiration)
}

// Derive 派生フィールドを再計算する
func Derive(cards []*GiftCard, now time.Time, loc *time.Location) []View {
	views := make([]View, 0, len(cards))
	for _, card := range cards {
		views = append(views, View{
			Card:                card,
			DaysUntilExpiration: DaysUntilExpiration(card.ExpirationDate(), now, loc),
		})
	}
	return views
}

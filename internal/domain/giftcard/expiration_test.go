package giftcard

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestDaysUntilExpiration(t *testing.T) {
	now := time.Date(2026, time.March, 10, 9, 15, 0, 0, time.UTC)

	tests := []struct {
		name string
		date time.Time
		want int
	}{
		{name: "正常系: 当日は0", date: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), want: 0},
		{name: "正常系: 翌日は1", date: time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC), want: 1},
		{name: "正常系: 7日後は7", date: time.Date(2026, 3, 17, 0, 0, 0, 0, time.UTC), want: 7},
		{name: "正常系: 30日後は30", date: time.Date(2026, 4, 9, 0, 0, 0, 0, time.UTC), want: 30},
		{name: "正常系: 前日は負", date: time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC), want: -1},
		{name: "正常系: 1年前は負", date: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), want: -365},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DaysUntilExpiration(tt.date, now, time.UTC))
		})
	}
}

func TestDaysUntilExpiration_AtMidnight(t *testing.T) {
	now := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 0, DaysUntilExpiration(now, now, time.UTC))
	assert.Equal(t, 7, DaysUntilExpiration(now.AddDate(0, 0, 7), now, time.UTC))
}

func TestDaysUntilExpiration_Location(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	// 東京では3月11日 05:00
	now := time.Date(2026, time.March, 10, 20, 0, 0, 0, time.UTC)
	date := time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 0, DaysUntilExpiration(date, now, tokyo))
	assert.Equal(t, 1, DaysUntilExpiration(date, now, time.UTC))
}

func TestClassifyExpiration(t *testing.T) {
	tests := []struct {
		name string
		days int
		want ExpirationStatus
	}{
		{name: "期限切れ", days: -1, want: ExpirationStatusExpired},
		{name: "当日", days: 0, want: ExpirationStatusUrgent},
		{name: "7日", days: 7, want: ExpirationStatusUrgent},
		{name: "8日", days: 8, want: ExpirationStatusWarning},
		{name: "30日", days: 30, want: ExpirationStatusWarning},
		{name: "31日", days: 31, want: ExpirationStatusActive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyExpiration(tt.days))
		})
	}
}

func TestExpirationPredicates(t *testing.T) {
	assert.False(t, IsExpiringSoon(0))
	assert.True(t, IsExpiringSoon(1))
	assert.True(t, IsExpiringSoon(7))
	assert.False(t, IsExpiringSoon(8))
	assert.False(t, IsExpiringSoon(-3))

	assert.True(t, IsExpiringWithin30Days(30))
	assert.True(t, IsExpiringWithin30Days(-3))
	assert.False(t, IsExpiringWithin30Days(31))

	assert.True(t, IsExpired(-1))
	assert.False(t, IsExpired(0))
}

func TestDerive(t *testing.T) {
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	cards := []*GiftCard{
		newTestCard("1", "Amazon", "100", time.Date(2026, 3, 17, 0, 0, 0, 0, time.UTC), ""),
		newTestCard("2", "Target", "50", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), ""),
	}

	views := Derive(cards, now, time.UTC)

	assert.Len(t, views, 2)
	assert.Equal(t, 7, views[0].DaysUntilExpiration)
	assert.Equal(t, ExpirationStatusUrgent, views[0].Status())
	assert.Equal(t, -9, views[1].DaysUntilExpiration)
	assert.Equal(t, ExpirationStatusExpired, views[1].Status())

	// 時刻が進めば再計算で値が変わる
	later := Derive(cards, now.Add(24*time.Hour), time.UTC)
	assert.Equal(t, 6, later[0].DaysUntilExpiration)
}

func newTestCard(id, brand, balance string, date time.Time, notes string) *GiftCard {
	return Reconstruct(id, "owner-1", brand, decimal.RequireFromString(balance), date, notes, time.Time{}, time.Time{})
}

package giftcard

import (
	"sort"

	"github.com/shopspring/decimal"
)

// BrandTotal ブランドごとの残高合計
type BrandTotal struct {
	Brand   string
	Balance decimal.Decimal
	Count   int
}

// AggregateByBrand ブランド名（完全一致、大文字小文字を区別）ごとに残高を合計する
// 合計の降順に並べ、同額の場合は最初に現れた順を維持する
func AggregateByBrand(cards []*GiftCard) []BrandTotal {
	index := make(map[string]int)
	totals := make([]BrandTotal, 0)

	for _, card := range cards {
		i, ok := index[card.Brand()]
		if !ok {
			index[card.Brand()] = len(totals)
			totals = append(totals, BrandTotal{Brand: card.Brand(), Balance: decimal.Zero})
			i = len(totals) - 1
		}
		totals[i].Balance = totals[i].Balance.Add(card.Balance())
		totals[i].Count++
	}

	sort.SliceStable(totals, func(a, b int) bool {
		return totals[a].Balance.GreaterThan(totals[b].Balance)
	})

	return totals
}

// TotalBalance 残高の合計を返す
func TotalBalance(cards []*GiftCard) decimal.Decimal {
	total := decimal.Zero
	for _, card := range cards {
		total = total.Add(card.Balance())
	}
	return total
}

// Brands ブランド名を重複なく、最初に現れた順で返す
func Brands(cards []*GiftCard) []string {
	seen := make(map[string]struct{})
	brands := make([]string, 0)
	for _, card := range cards {
		if _, ok := seen[card.Brand()]; ok {
			continue
		}
		seen[card.Brand()] = struct{}{}
		brands = append(brands, card.Brand())
	}
	return brands
}

package giftcard

import (
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"

	"giftkeeper-server/internal/domain/sanitizer"
)

// ExpirationFilter 有効期限による絞り込み
type ExpirationFilter string

const (
	ExpirationFilterAll      ExpirationFilter = "all"      // すべて
	ExpirationFilterExpiring ExpirationFilter = "expiring" // 30日以内
	ExpirationFilterExpired  ExpirationFilter = "expired"  // 期限切れ
)

// BrandFilterAll ブランドで絞り込まない
const BrandFilterAll = "all"

// NewExpirationFilter 新しいExpirationFilterを作成（空文字列はall）
func NewExpirationFilter(s string) (ExpirationFilter, error) {
	switch s {
	case "", "all":
		return ExpirationFilterAll, nil
	case "expiring", "expired":
		return ExpirationFilter(s), nil
	default:
		return "", fmt.Errorf("invalid expiration filter: %s", s)
	}
}

// Filter 一覧の絞り込み条件
type Filter struct {
	Search     string
	Brand      string
	Expiration ExpirationFilter
	// Fuzzy trueの場合、検索語を部分文字列ではなく順序付きの文字の並びとして照合する
	Fuzzy bool
}

// Apply 条件に一致するビューを元の順序で返す
// 検索語とブランドは、保存時のサニタイズを戻した利用者の入力どおりの文字列と照合する
func (f Filter) Apply(views []View) []View {
	search := strings.TrimSpace(sanitizer.Unescape(f.Search))
	brand := sanitizer.Unescape(f.Brand)

	var fuzzyHits map[int]struct{}
	if search != "" && f.Fuzzy {
		fuzzyHits = fuzzyMatch(search, views)
	}

	out := make([]View, 0, len(views))
	for i, v := range views {
		if search != "" {
			if f.Fuzzy {
				if _, ok := fuzzyHits[i]; !ok {
					continue
				}
			} else if !containsFold(displayText(v.Card.Brand()), search) && !containsFold(displayText(v.Card.Notes()), search) {
				continue
			}
		}
		if brand != "" && brand != BrandFilterAll && displayText(v.Card.Brand()) != brand {
			continue
		}
		if !f.matchesExpiration(v.DaysUntilExpiration) {
			continue
		}
		out = append(out, v)
	}
	return out
}

func (f Filter) matchesExpiration(days int) bool {
	switch f.Expiration {
	case ExpirationFilterExpiring:
		return IsExpiringWithin30Days(days)
	case ExpirationFilterExpired:
		return IsExpired(days)
	default:
		return true
	}
}

// displayText 保存済みの文字列を利用者が入力した形に戻す
func displayText(stored string) string {
	return sanitizer.Unescape(stored)
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// viewSource ブランド名とメモをfuzzy.Sourceとして公開する
// 偶数番目がブランド名、奇数番目がメモ
type viewSource []View

func (s viewSource) String(i int) string {
	v := s[i/2]
	if i%2 == 0 {
		return displayText(v.Card.Brand())
	}
	return displayText(v.Card.Notes())
}

func (s viewSource) Len() int {
	return len(s) * 2
}

func fuzzyMatch(pattern string, views []View) map[int]struct{} {
	hits := make(map[int]struct{})
	for _, m := range fuzzy.FindFrom(pattern, viewSource(views)) {
		hits[m.Index/2] = struct{}{}
	}
	return hits
}

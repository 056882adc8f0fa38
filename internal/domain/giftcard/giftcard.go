package giftcard

import (
	"time"

	"github.com/shopspring/decimal"
)

// GiftCard ギフトカードエンティティ
type GiftCard struct {
	id             string
	ownerID        string
	brand          string
	balance        decimal.Decimal
	expirationDate time.Time // 日付のみ（UTCの0時）
	notes          string
	createdAt      time.Time
	updatedAt      time.Time
}

// NewGiftCard 検証済みの入力から新しいGiftCardエンティティを作成
// 作成日時と更新日時はnowになる
func NewGiftCard(id, ownerID string, v *ValidatedGiftCard, now time.Time) (*GiftCard, error) {
	if id == "" {
		return nil, ErrInvalidID
	}
	if ownerID == "" {
		return nil, ErrInvalidOwnerID
	}

	return &GiftCard{
		id:             id,
		ownerID:        ownerID,
		brand:          v.Brand,
		balance:        v.Balance,
		expirationDate: v.ExpirationDate,
		notes:          v.Notes,
		createdAt:      now,
		updatedAt:      now,
	}, nil
}

// Reconstruct 永続化された値からGiftCardを復元する（リポジトリから読み込んだ際に使用）
func Reconstruct(
	id string,
	ownerID string,
	brand string,
	balance decimal.Decimal,
	expirationDate time.Time,
	notes string,
	createdAt time.Time,
	updatedAt time.Time,
) *GiftCard {
	return &GiftCard{
		id:             id,
		ownerID:        ownerID,
		brand:          brand,
		balance:        balance,
		expirationDate: DateOf(expirationDate),
		notes:          notes,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
	}
}

// ID IDを返す
func (g *GiftCard) ID() string {
	return g.id
}

// OwnerID 所有者IDを返す
func (g *GiftCard) OwnerID() string {
	return g.ownerID
}

// Brand ブランド名を返す
func (g *GiftCard) Brand() string {
	return g.brand
}

// Balance 残高を返す
func (g *GiftCard) Balance() decimal.Decimal {
	return g.balance
}

// ExpirationDate 有効期限を返す
func (g *GiftCard) ExpirationDate() time.Time {
	return g.expirationDate
}

// Notes メモを返す
func (g *GiftCard) Notes() string {
	return g.notes
}

// CreatedAt 作成日時を返す
func (g *GiftCard) CreatedAt() time.Time {
	return g.createdAt
}

// UpdatedAt 更新日時を返す
func (g *GiftCard) UpdatedAt() time.Time {
	return g.updatedAt
}

// Replace 全フィールドを置き換える（IDと所有者、作成日時は維持）
func (g *GiftCard) Replace(v *ValidatedGiftCard, now time.Time) {
	g.brand = v.Brand
	g.balance = v.Balance
	g.expirationDate = v.ExpirationDate
	g.notes = v.Notes
	g.updatedAt = now
}

// MustNewGiftCard テスト用ヘルパー: NewGiftCardを呼び出し、エラーが発生した場合はpanicする
func MustNewGiftCard(id, ownerID string, v *ValidatedGiftCard, now time.Time) *GiftCard {
	g, err := NewGiftCard(id, ownerID, v, now)
	if err != nil {
		panic(err)
	}
	return g
}

package memory

import (
	"context"
	"sync"

	"giftkeeper-server/internal/domain/giftcard"
)

var _ giftcard.Repository = (*GiftCardRepository)(nil)

// GiftCardRepository インメモリ実装のgiftcard.Repository
// 所有者ごとに挿入順を保持する
type GiftCardRepository struct {
	mu      sync.RWMutex
	byOwner map[string][]*giftcard.GiftCard
}

// NewGiftCardRepository 新しいGiftCardRepositoryを作成
func NewGiftCardRepository() *GiftCardRepository {
	return &GiftCardRepository{
		byOwner: make(map[string][]*giftcard.GiftCard),
	}
}

// ListByOwner 所有者のギフトカードを作成順に取得
func (r *GiftCardRepository) ListByOwner(ctx context.Context, ownerID string) ([]*giftcard.GiftCard, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	cards := r.byOwner[ownerID]
	out := make([]*giftcard.GiftCard, 0, len(cards))
	for _, c := range cards {
		out = append(out, clone(c))
	}
	return out, nil
}

// FindByID IDでギフトカードを取得
func (r *GiftCardRepository) FindByID(ctx context.Context, id string, ownerID string) (*giftcard.GiftCard, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.indexOf(id, ownerID)
	if i < 0 {
		return nil, giftcard.ErrGiftCardNotFound
	}
	return clone(r.byOwner[ownerID][i]), nil
}

// Create 新しいギフトカードを作成
func (r *GiftCardRepository) Create(ctx context.Context, card *giftcard.GiftCard) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexOf(card.ID(), card.OwnerID()) >= 0 {
		return giftcard.ErrDuplicateID
	}
	r.byOwner[card.OwnerID()] = append(r.byOwner[card.OwnerID()], clone(card))
	return nil
}

// Update ギフトカードを更新（全フィールド置き換え）
func (r *GiftCardRepository) Update(ctx context.Context, card *giftcard.GiftCard) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(card.ID(), card.OwnerID())
	if i < 0 {
		return giftcard.ErrGiftCardNotFound
	}
	r.byOwner[card.OwnerID()][i] = clone(card)
	return nil
}

// Delete ギフトカードを削除
func (r *GiftCardRepository) Delete(ctx context.Context, id string, ownerID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id, ownerID)
	if i < 0 {
		return giftcard.ErrGiftCardNotFound
	}

	cards := r.byOwner[ownerID]
	r.byOwner[ownerID] = append(cards[:i:i], cards[i+1:]...)
	if len(r.byOwner[ownerID]) == 0 {
		delete(r.byOwner, ownerID)
	}
	return nil
}

func (r *GiftCardRepository) indexOf(id, ownerID string) int {
	for i, c := range r.byOwner[ownerID] {
		if c.ID() == id {
			return i
		}
	}
	return -1
}

// 呼び出し側での変更がストアに波及しないようコピーを返す
func clone(c *giftcard.GiftCard) *giftcard.GiftCard {
	return giftcard.Reconstruct(
		c.ID(),
		c.OwnerID(),
		c.Brand(),
		c.Balance(),
		c.ExpirationDate(),
		c.Notes(),
		c.CreatedAt(),
		c.UpdatedAt(),
	)
}

package giftcard

import (
	"context"
)

// Repository ギフトカードリポジトリインターフェース
// すべての操作は所有者IDでスコープされる
type Repository interface {
	// ListByOwner 所有者のギフトカードを作成順に取得
	ListByOwner(ctx context.Context, ownerID string) ([]*GiftCard, error)

	// FindByID IDでギフトカードを取得
	FindByID(ctx context.Context, id string, ownerID string) (*GiftCard, error)

	// Create 新しいギフトカードを作成
	Create(ctx context.Context, card *GiftCard) error

	// Update ギフトカードを更新（全フィールド置き換え）
	Update(ctx context.Context, card *GiftCard) error

	// Delete ギフトカードを削除
	Delete(ctx context.Context, id string, ownerID string) error
}

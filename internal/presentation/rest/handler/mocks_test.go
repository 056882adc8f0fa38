package handler

import (
	"context"

	"giftkeeper-server/internal/domain/giftcard"

	"github.com/stretchr/testify/mock"
)

// MockGiftCardRepository モックギフトカードリポジトリ
type MockGiftCardRepository struct {
	mock.Mock
}

func (m *MockGiftCardRepository) ListByOwner(ctx context.Context, ownerID string) ([]*giftcard.GiftCard, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*giftcard.GiftCard), args.Error(1)
}

func (m *MockGiftCardRepository) FindByID(ctx context.Context, id string, ownerID string) (*giftcard.GiftCard, error) {
	args := m.Called(ctx, id, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*giftcard.GiftCard), args.Error(1)
}

func (m *MockGiftCardRepository) Create(ctx context.Context, card *giftcard.GiftCard) error {
	args := m.Called(ctx, card)
	return args.Error(0)
}

func (m *MockGiftCardRepository) Update(ctx context.Context, card *giftcard.GiftCard) error {
	args := m.Called(ctx, card)
	return args.Error(0)
}

func (m *MockGiftCardRepository) Delete(ctx context.Context, id string, ownerID string) error {
	args := m.Called(ctx, id, ownerID)
	return args.Error(0)
}

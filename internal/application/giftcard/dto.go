package giftcard

import (
	"time"

	"github.com/shopspring/decimal"

	"giftkeeper-server/internal/application/notification"
)

// GiftCardFields 追加・更新で受け取る入力
type GiftCardFields struct {
	Brand          string
	Balance        string // 文字列のまま受け取り検証する
	ExpirationDate string // YYYY-MM-DD
	Notes          *string
}

// AddRequest ギフトカード追加リクエスト
type AddRequest struct {
	OwnerID string
	GiftCardFields
}

// AddResponse ギフトカード追加レスポンス
type AddResponse struct {
	GiftCard     GiftCardDTO
	Notification notification.Notice
}

// UpdateRequest ギフトカード更新リクエスト
type UpdateRequest struct {
	OwnerID string
	ID      string
	GiftCardFields
}

// UpdateResponse ギフトカード更新レスポンス
type UpdateResponse struct {
	GiftCard     GiftCardDTO
	Notification notification.Notice
}

// DeleteRequest ギフトカード削除リクエスト
type DeleteRequest struct {
	OwnerID string
	ID      string
}

// DeleteResponse ギフトカード削除レスポンス
type DeleteResponse struct {
	ID           string
	Notification notification.Notice
}

// ListRequest ギフトカード一覧リクエスト
type ListRequest struct {
	OwnerID    string
	Search     string
	Brand      string // "all"または空は絞り込みなし
	Expiration string // "all", "expiring", "expired"
	Fuzzy      bool
}

// ListResponse ギフトカード一覧レスポンス
type ListResponse struct {
	GiftCards []GiftCardDTO
	Total     int // 絞り込み前の件数
}

// SummaryRequest 集計リクエスト
type SummaryRequest struct {
	OwnerID string
}

// SummaryResponse 集計レスポンス
type SummaryResponse struct {
	TotalBalance      decimal.Decimal
	TotalCards        int
	ExpiringSoonCount int
	BrandBreakdown    []BrandBreakdownDTO
	Brands            []string
	Alerts            []notification.Notice
}

// BrandBreakdownDTO ブランドごとの残高（グラフ表示用）
type BrandBreakdownDTO struct {
	Brand   string
	Balance decimal.Decimal
	Count   int
	Color   string
}

// ExportRequest CSV出力リクエスト
type ExportRequest struct {
	OwnerID string
}

// ExportResponse CSV出力レスポンス
type ExportResponse struct {
	Content      string
	Filename     string
	ContentType  string
	Count        int
	Notification notification.Notice
}

// GiftCardDTO 派生フィールドを含むギフトカード
type GiftCardDTO struct {
	ID                  string
	Brand               string
	Balance             decimal.Decimal
	ExpirationDate      string
	Notes               string
	DaysUntilExpiration int
	Status              string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

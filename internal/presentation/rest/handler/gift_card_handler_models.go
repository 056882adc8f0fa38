package handler

import (
	"bytes"
	"encoding/json"
	"time"

	"giftkeeper-server/internal/application/notification"
)

// NumberOrString 数値と文字列のどちらでも受け取る入力値
// 検証は文字列のまま行うため元の表記を保持する
type NumberOrString string

// UnmarshalJSON json.Unmarshalerの実装
func (n *NumberOrString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = NumberOrString(s)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return err
	}
	*n = NumberOrString(num.String())
	return nil
}

// GiftCardRequest ギフトカード追加・更新リクエスト
// @Description ギフトカード追加・更新リクエスト（更新は全フィールド置き換え）
type GiftCardRequest struct {
	Brand          string         `json:"brand" example:"Amazon"`
	Balance        NumberOrString `json:"balance" swaggertype:"string" example:"50.00"`
	ExpirationDate string         `json:"expiration_date" example:"2026-12-31"`
	Notes          *string        `json:"notes,omitempty" example:"Birthday gift"`
}

// GiftCardResponse ギフトカード
// @Description 派生フィールドを含むギフトカード
type GiftCardResponse struct {
	ID                  string      `json:"id" example:"0b7e1c1e-8c1a-4f5e-9d0e-2f1c3b4a5d6e"`
	Brand               string      `json:"brand" example:"Amazon"`
	Balance             json.Number `json:"balance" swaggertype:"number" example:"50.00"`
	ExpirationDate      string      `json:"expiration_date" example:"2026-12-31"`
	Notes               string      `json:"notes" example:"Birthday gift"`
	DaysUntilExpiration int         `json:"days_until_expiration" example:"42"`
	Status              string      `json:"status" example:"active" enums:"active,warning,urgent,expired"`
	CreatedAt           time.Time   `json:"created_at"`
	UpdatedAt           time.Time   `json:"updated_at"`
}

// GiftCardMutationResponse 追加・更新レスポンス
// @Description 追加・更新レスポンス
type GiftCardMutationResponse struct {
	GiftCard     GiftCardResponse    `json:"gift_card"`
	Notification notification.Notice `json:"notification"`
}

// DeleteGiftCardResponse 削除レスポンス
// @Description 削除レスポンス
type DeleteGiftCardResponse struct {
	ID           string              `json:"id"`
	Notification notification.Notice `json:"notification"`
}

// ListGiftCardsResponse 一覧レスポンス
// @Description 一覧レスポンス
type ListGiftCardsResponse struct {
	GiftCards []GiftCardResponse `json:"gift_cards"`
	Count     int                `json:"count" example:"2"`
	Total     int                `json:"total" example:"5"`
}

// BrandBreakdownItem ブランド別残高
// @Description ブランド別残高（グラフ表示用）
type BrandBreakdownItem struct {
	Brand   string      `json:"brand" example:"Amazon"`
	Balance json.Number `json:"balance" swaggertype:"number" example:"125.00"`
	Count   int         `json:"count" example:"2"`
	Color   string      `json:"color" example:"#3B82F6"`
}

// SummaryResponse 集計レスポンス
// @Description 集計レスポンス
type SummaryResponse struct {
	TotalBalance      json.Number           `json:"total_balance" swaggertype:"number" example:"175.00"`
	TotalCards        int                   `json:"total_cards" example:"3"`
	ExpiringSoonCount int                   `json:"expiring_soon_count" example:"1"`
	BrandBreakdown    []BrandBreakdownItem  `json:"brand_breakdown"`
	Brands            []string              `json:"brands"`
	Alerts            []notification.Notice `json:"alerts"`
}

package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	giftcardapp "giftkeeper-server/internal/application/giftcard"
	restmiddleware "giftkeeper-server/internal/presentation/rest/middleware"

	"github.com/labstack/echo/v4"
)

// GiftCardHandler ギフトカード関連ハンドラー
type GiftCardHandler struct {
	giftCardService *giftcardapp.GiftCardApplicationService
}

// NewGiftCardHandler 新しいGiftCardHandlerを作成
func NewGiftCardHandler(giftCardService *giftcardapp.GiftCardApplicationService) *GiftCardHandler {
	return &GiftCardHandler{
		giftCardService: giftCardService,
	}
}

// List ギフトカード一覧ハンドラー
// @Summary ギフトカード一覧を取得
// @Description 自分のギフトカードを作成順に取得します。有効期限までの日数は取得のたびに計算されます
// @Tags gift-cards
// @Produce json
// @Security Bearer
// @Param search query string false "ブランド名・メモの部分一致（大文字小文字を区別しない）"
// @Param brand query string false "ブランド名の完全一致（allで絞り込みなし）"
// @Param expiration query string false "有効期限の絞り込み" Enums(all, expiring, expired)
// @Param fuzzy query bool false "searchをあいまい検索にする"
// @Success 200 {object} ListGiftCardsResponse "取得成功"
// @Failure 400 {object} middleware.ErrorResponse "絞り込み条件が不正"
// @Failure 401 {object} middleware.ErrorResponse "認証エラー"
// @Failure 500 {object} middleware.ErrorResponse "取得失敗"
// @Router /gift-cards [get]
func (h *GiftCardHandler) List(c echo.Context) error {
	ownerID, err := ownerFromContext(c)
	if err != nil {
		return err
	}

	fuzzy := false
	if raw := c.QueryParam("fuzzy"); raw != "" {
		fuzzy, err = strconv.ParseBool(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "fuzzy must be a boolean")
		}
	}

	resp, err := h.giftCardService.List(c.Request().Context(), &giftcardapp.ListRequest{
		OwnerID:    ownerID,
		Search:     c.QueryParam("search"),
		Brand:      c.QueryParam("brand"),
		Expiration: c.QueryParam("expiration"),
		Fuzzy:      fuzzy,
	})
	if err != nil {
		return err
	}

	cards := make([]GiftCardResponse, 0, len(resp.GiftCards))
	for _, dto := range resp.GiftCards {
		cards = append(cards, toGiftCardResponse(dto))
	}

	return c.JSON(http.StatusOK, ListGiftCardsResponse{
		GiftCards: cards,
		Count:     len(cards),
		Total:     resp.Total,
	})
}

// Create ギフトカード追加ハンドラー
// @Summary ギフトカードを追加
// @Description 入力を検証・無害化してギフトカードを追加します
// @Tags gift-cards
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body GiftCardRequest true "ギフトカード"
// @Success 201 {object} GiftCardMutationResponse "追加成功"
// @Failure 400 {object} middleware.ErrorResponse "入力エラー"
// @Failure 401 {object} middleware.ErrorResponse "認証エラー"
// @Failure 429 {object} middleware.ErrorResponse "操作回数の上限超過"
// @Failure 500 {object} middleware.ErrorResponse "保存失敗"
// @Router /gift-cards [post]
func (h *GiftCardHandler) Create(c echo.Context) error {
	ownerID, err := ownerFromContext(c)
	if err != nil {
		return err
	}

	var reqBody GiftCardRequest
	if err := c.Bind(&reqBody); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	resp, err := h.giftCardService.Add(c.Request().Context(), &giftcardapp.AddRequest{
		OwnerID:        ownerID,
		GiftCardFields: toFields(reqBody),
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, GiftCardMutationResponse{
		GiftCard:     toGiftCardResponse(resp.GiftCard),
		Notification: resp.Notification,
	})
}

// Update ギフトカード更新ハンドラー
// @Summary ギフトカードを更新
// @Description 全フィールドを置き換えます。IDは変わりません
// @Tags gift-cards
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "ギフトカードID"
// @Param request body GiftCardRequest true "ギフトカード"
// @Success 200 {object} GiftCardMutationResponse "更新成功"
// @Failure 400 {object} middleware.ErrorResponse "入力エラー"
// @Failure 401 {object} middleware.ErrorResponse "認証エラー"
// @Failure 404 {object} middleware.ErrorResponse "存在しない"
// @Failure 429 {object} middleware.ErrorResponse "操作回数の上限超過"
// @Failure 500 {object} middleware.ErrorResponse "保存失敗"
// @Router /gift-cards/{id} [put]
func (h *GiftCardHandler) Update(c echo.Context) error {
	ownerID, err := ownerFromContext(c)
	if err != nil {
		return err
	}

	id := c.Param("id")
	if id == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "id is required")
	}

	var reqBody GiftCardRequest
	if err := c.Bind(&reqBody); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	resp, err := h.giftCardService.Update(c.Request().Context(), &giftcardapp.UpdateRequest{
		OwnerID:        ownerID,
		ID:             id,
		GiftCardFields: toFields(reqBody),
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, GiftCardMutationResponse{
		GiftCard:     toGiftCardResponse(resp.GiftCard),
		Notification: resp.Notification,
	})
}

// Delete ギフトカード削除ハンドラー
// @Summary ギフトカードを削除
// @Tags gift-cards
// @Produce json
// @Security Bearer
// @Param id path string true "ギフトカードID"
// @Success 200 {object} DeleteGiftCardResponse "削除成功"
// @Failure 401 {object} middleware.ErrorResponse "認証エラー"
// @Failure 404 {object} middleware.ErrorResponse "存在しない"
// @Failure 429 {object} middleware.ErrorResponse "操作回数の上限超過"
// @Failure 500 {object} middleware.ErrorResponse "削除失敗"
// @Router /gift-cards/{id} [delete]
func (h *GiftCardHandler) Delete(c echo.Context) error {
	ownerID, err := ownerFromContext(c)
	if err != nil {
		return err
	}

	id := c.Param("id")
	if id == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "id is required")
	}

	resp, err := h.giftCardService.Delete(c.Request().Context(), &giftcardapp.DeleteRequest{
		OwnerID: ownerID,
		ID:      id,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, DeleteGiftCardResponse{
		ID:           resp.ID,
		Notification: resp.Notification,
	})
}

// Summary 集計ハンドラー
// @Summary 残高の集計を取得
// @Description 残高合計、ブランド別残高（初出順）、まもなく期限切れの通知を返します
// @Tags gift-cards
// @Produce json
// @Security Bearer
// @Success 200 {object} SummaryResponse "取得成功"
// @Failure 401 {object} middleware.ErrorResponse "認証エラー"
// @Failure 500 {object} middleware.ErrorResponse "取得失敗"
// @Router /gift-cards/summary [get]
func (h *GiftCardHandler) Summary(c echo.Context) error {
	ownerID, err := ownerFromContext(c)
	if err != nil {
		return err
	}

	resp, err := h.giftCardService.Summary(c.Request().Context(), &giftcardapp.SummaryRequest{
		OwnerID: ownerID,
	})
	if err != nil {
		return err
	}

	breakdown := make([]BrandBreakdownItem, 0, len(resp.BrandBreakdown))
	for _, b := range resp.BrandBreakdown {
		breakdown = append(breakdown, BrandBreakdownItem{
			Brand:   b.Brand,
			Balance: json.Number(b.Balance.StringFixed(2)),
			Count:   b.Count,
			Color:   b.Color,
		})
	}

	return c.JSON(http.StatusOK, SummaryResponse{
		TotalBalance:      json.Number(resp.TotalBalance.StringFixed(2)),
		TotalCards:        resp.TotalCards,
		ExpiringSoonCount: resp.ExpiringSoonCount,
		BrandBreakdown:    breakdown,
		Brands:            resp.Brands,
		Alerts:            resp.Alerts,
	})
}

// Export CSV出力ハンドラー
// @Summary ギフトカードをCSVで出力
// @Description 全ギフトカードをCSVでダウンロードします。0件の場合はファイルを作らず422を返します
// @Tags gift-cards
// @Produce text/csv
// @Security Bearer
// @Success 200 {string} string "CSV"
// @Failure 401 {object} middleware.ErrorResponse "認証エラー"
// @Failure 422 {object} middleware.ErrorResponse "出力対象なし"
// @Failure 429 {object} middleware.ErrorResponse "操作回数の上限超過"
// @Failure 500 {object} middleware.ErrorResponse "出力失敗"
// @Router /gift-cards/export [get]
func (h *GiftCardHandler) Export(c echo.Context) error {
	ownerID, err := ownerFromContext(c)
	if err != nil {
		return err
	}

	resp, err := h.giftCardService.Export(c.Request().Context(), &giftcardapp.ExportRequest{
		OwnerID: ownerID,
	})
	if err != nil {
		return err
	}

	header := c.Response().Header()
	header.Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", resp.Filename))
	header.Set("X-Export-Count", strconv.Itoa(resp.Count))

	return c.Blob(http.StatusOK, resp.ContentType, []byte(resp.Content))
}

func ownerFromContext(c echo.Context) (string, error) {
	ownerID, ok := c.Get(restmiddleware.OwnerIDKey).(string)
	if !ok || ownerID == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "user_id not found in token")
	}
	return ownerID, nil
}

func toFields(req GiftCardRequest) giftcardapp.GiftCardFields {
	return giftcardapp.GiftCardFields{
		Brand:          req.Brand,
		Balance:        string(req.Balance),
		ExpirationDate: req.ExpirationDate,
		Notes:          req.Notes,
	}
}

func toGiftCardResponse(dto giftcardapp.GiftCardDTO) GiftCardResponse {
	return GiftCardResponse{
		ID:                  dto.ID,
		Brand:               dto.Brand,
		Balance:             json.Number(dto.Balance.StringFixed(2)),
		ExpirationDate:      dto.ExpirationDate,
		Notes:               dto.Notes,
		DaysUntilExpiration: dto.DaysUntilExpiration,
		Status:              dto.Status,
		CreatedAt:           dto.CreatedAt,
		UpdatedAt:           dto.UpdatedAt,
	}
}

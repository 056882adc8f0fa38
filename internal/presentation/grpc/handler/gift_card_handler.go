package handler

import (
	"context"
	"errors"
	"strconv"
	"time"

	authapp "giftkeeper-server/internal/application/auth"
	giftcardapp "giftkeeper-server/internal/application/giftcard"
	"giftkeeper-server/internal/application/notification"
	"giftkeeper-server/internal/domain/giftcard"
	"giftkeeper-server/internal/domain/ratelimit"
	"giftkeeper-server/internal/infrastructure/csvexport"
	otelinfra "giftkeeper-server/internal/infrastructure/observability/otel"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// GiftCardHandler gRPCギフトカードサービスハンドラー
type GiftCardHandler struct {
	giftCardService *giftcardapp.GiftCardApplicationService
	logger          *otelinfra.Logger
}

var _ GiftCardServiceServer = (*GiftCardHandler)(nil)

// NewGiftCardHandler 新しいGiftCardHandlerを作成
func NewGiftCardHandler(giftCardService *giftcardapp.GiftCardApplicationService, logger *otelinfra.Logger) *GiftCardHandler {
	return &GiftCardHandler{
		giftCardService: giftCardService,
		logger:          logger,
	}
}

// List ギフトカード一覧
func (h *GiftCardHandler) List(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	ownerID, err := ownerFromContext(ctx)
	if err != nil {
		return nil, err
	}

	fuzzy := false
	if v, ok := req.GetFields()["fuzzy"]; ok {
		b, ok := v.GetKind().(*structpb.Value_BoolValue)
		if !ok {
			return nil, status.Error(codes.InvalidArgument, "fuzzy must be a boolean")
		}
		fuzzy = b.BoolValue
	}

	resp, err := h.giftCardService.List(ctx, &giftcardapp.ListRequest{
		OwnerID:    ownerID,
		Search:     stringField(req, "search"),
		Brand:      stringField(req, "brand"),
		Expiration: stringField(req, "expiration"),
		Fuzzy:      fuzzy,
	})
	if err != nil {
		return nil, h.handleError(ctx, err)
	}

	cards := make([]interface{}, 0, len(resp.GiftCards))
	for _, dto := range resp.GiftCards {
		cards = append(cards, giftCardMap(dto))
	}

	return structpb.NewStruct(map[string]interface{}{
		"gift_cards": cards,
		"count":      len(cards),
		"total":      resp.Total,
	})
}

// Add ギフトカード追加
func (h *GiftCardHandler) Add(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	ownerID, err := ownerFromContext(ctx)
	if err != nil {
		return nil, err
	}

	fields, err := toFields(req)
	if err != nil {
		return nil, err
	}

	resp, err := h.giftCardService.Add(ctx, &giftcardapp.AddRequest{
		OwnerID:        ownerID,
		GiftCardFields: fields,
	})
	if err != nil {
		return nil, h.handleError(ctx, err)
	}

	return structpb.NewStruct(map[string]interface{}{
		"gift_card":    giftCardMap(resp.GiftCard),
		"notification": noticeMap(resp.Notification),
	})
}

// Update ギフトカード更新
func (h *GiftCardHandler) Update(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	ownerID, err := ownerFromContext(ctx)
	if err != nil {
		return nil, err
	}

	id := stringField(req, "id")
	if id == "" {
		return nil, status.Error(codes.InvalidArgument, "id is required")
	}

	fields, err := toFields(req)
	if err != nil {
		return nil, err
	}

	resp, err := h.giftCardService.Update(ctx, &giftcardapp.UpdateRequest{
		OwnerID:        ownerID,
		ID:             id,
		GiftCardFields: fields,
	})
	if err != nil {
		return nil, h.handleError(ctx, err)
	}

	return structpb.NewStruct(map[string]interface{}{
		"gift_card":    giftCardMap(resp.GiftCard),
		"notification": noticeMap(resp.Notification),
	})
}

// Delete ギフトカード削除
func (h *GiftCardHandler) Delete(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	ownerID, err := ownerFromContext(ctx)
	if err != nil {
		return nil, err
	}

	id := stringField(req, "id")
	if id == "" {
		return nil, status.Error(codes.InvalidArgument, "id is required")
	}

	resp, err := h.giftCardService.Delete(ctx, &giftcardapp.DeleteRequest{
		OwnerID: ownerID,
		ID:      id,
	})
	if err != nil {
		return nil, h.handleError(ctx, err)
	}

	return structpb.NewStruct(map[string]interface{}{
		"id":           resp.ID,
		"notification": noticeMap(resp.Notification),
	})
}

// Summary 残高の集計
func (h *GiftCardHandler) Summary(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	ownerID, err := ownerFromContext(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := h.giftCardService.Summary(ctx, &giftcardapp.SummaryRequest{
		OwnerID: ownerID,
	})
	if err != nil {
		return nil, h.handleError(ctx, err)
	}

	breakdown := make([]interface{}, 0, len(resp.BrandBreakdown))
	for _, b := range resp.BrandBreakdown {
		breakdown = append(breakdown, map[string]interface{}{
			"brand":   b.Brand,
			"balance": b.Balance.StringFixed(2),
			"count":   b.Count,
			"color":   b.Color,
		})
	}
	brands := make([]interface{}, 0, len(resp.Brands))
	for _, brand := range resp.Brands {
		brands = append(brands, brand)
	}
	alerts := make([]interface{}, 0, len(resp.Alerts))
	for _, alert := range resp.Alerts {
		alerts = append(alerts, noticeMap(alert))
	}

	return structpb.NewStruct(map[string]interface{}{
		"total_balance":       resp.TotalBalance.StringFixed(2),
		"total_cards":         resp.TotalCards,
		"expiring_soon_count": resp.ExpiringSoonCount,
		"brand_breakdown":     breakdown,
		"brands":              brands,
		"alerts":              alerts,
	})
}

// Export CSV出力
func (h *GiftCardHandler) Export(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	ownerID, err := ownerFromContext(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := h.giftCardService.Export(ctx, &giftcardapp.ExportRequest{
		OwnerID: ownerID,
	})
	if err != nil {
		return nil, h.handleError(ctx, err)
	}

	return structpb.NewStruct(map[string]interface{}{
		"filename":     resp.Filename,
		"content_type": resp.ContentType,
		"content":      resp.Content,
		"count":        resp.Count,
		"notification": noticeMap(resp.Notification),
	})
}

// handleError エラーをgRPCステータスコードに変換
func (h *GiftCardHandler) handleError(ctx context.Context, err error) error {
	var verrs giftcard.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		st := status.New(codes.InvalidArgument, verrs.First().Message)
		violations := make([]*errdetails.BadRequest_FieldViolation, 0, len(verrs))
		for _, fe := range verrs {
			violations = append(violations, &errdetails.BadRequest_FieldViolation{
				Field:       fe.Field,
				Description: fe.Message,
			})
		}
		if detailed, derr := st.WithDetails(&errdetails.BadRequest{FieldViolations: violations}); derr == nil {
			st = detailed
		}
		return st.Err()
	}

	if errors.Is(err, ratelimit.ErrRateLimitExceeded) {
		return status.Error(codes.ResourceExhausted, notification.RateLimited().Description)
	}

	if errors.Is(err, giftcard.ErrGiftCardNotFound) {
		return status.Error(codes.NotFound, notification.NotFound().Description)
	}

	if errors.Is(err, giftcardapp.ErrInvalidFilter) {
		return status.Error(codes.InvalidArgument, err.Error())
	}

	if errors.Is(err, csvexport.ErrNothingToExport) {
		return status.Error(codes.FailedPrecondition, notification.NothingToExport().Description)
	}

	var opErr *giftcardapp.OperationError
	if errors.As(err, &opErr) {
		return status.Error(codes.Internal, notification.OperationFailed(opErr.Op).Description)
	}

	h.logger.Error(ctx, "Unexpected gRPC error", err, nil)
	return status.Error(codes.Internal, "internal server error")
}

func ownerFromContext(ctx context.Context) (string, error) {
	ownerID, ok := authapp.OwnerIDFromContext(ctx)
	if !ok {
		return "", status.Error(codes.Unauthenticated, "user_id not found in token")
	}
	return ownerID, nil
}

func stringField(req *structpb.Struct, name string) string {
	return req.GetFields()[name].GetStringValue()
}

// toFields 残高は数値と文字列のどちらでも受け付ける
func toFields(req *structpb.Struct) (giftcardapp.GiftCardFields, error) {
	fields := giftcardapp.GiftCardFields{
		Brand:          stringField(req, "brand"),
		ExpirationDate: stringField(req, "expiration_date"),
	}

	if v, ok := req.GetFields()["balance"]; ok {
		switch kind := v.GetKind().(type) {
		case *structpb.Value_NumberValue:
			fields.Balance = strconv.FormatFloat(kind.NumberValue, 'f', -1, 64)
		case *structpb.Value_StringValue:
			fields.Balance = kind.StringValue
		case *structpb.Value_NullValue:
		default:
			return fields, status.Error(codes.InvalidArgument, "Balance must be a number")
		}
	}

	if v, ok := req.GetFields()["notes"]; ok {
		if s, ok := v.GetKind().(*structpb.Value_StringValue); ok {
			notes := s.StringValue
			fields.Notes = &notes
		}
	}

	return fields, nil
}

func giftCardMap(dto giftcardapp.GiftCardDTO) map[string]interface{} {
	return map[string]interface{}{
		"id":                    dto.ID,
		"brand":                 dto.Brand,
		"balance":               dto.Balance.StringFixed(2),
		"expiration_date":       dto.ExpirationDate,
		"notes":                 dto.Notes,
		"days_until_expiration": dto.DaysUntilExpiration,
		"status":                dto.Status,
		"created_at":            dto.CreatedAt.UTC().Format(time.RFC3339),
		"updated_at":            dto.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func noticeMap(n notification.Notice) map[string]interface{} {
	return map[string]interface{}{
		"title":       n.Title,
		"description": n.Description,
		"severity":    string(n.Severity),
	}
}

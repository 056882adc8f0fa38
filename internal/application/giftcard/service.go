package giftcard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"giftkeeper-server/internal/application/notification"
	"giftkeeper-server/internal/domain/giftcard"
	"giftkeeper-server/internal/domain/ratelimit"
	"giftkeeper-server/internal/infrastructure/csvexport"
	otelinfra "giftkeeper-server/internal/infrastructure/observability/otel"
)

// GiftCardApplicationService ギフトカードアプリケーションサービス
type GiftCardApplicationService struct {
	repo         giftcard.Repository
	gate         *ratelimit.Gate
	logger       *otelinfra.Logger
	metrics      *otelinfra.Metrics
	tracer       trace.Tracer
	loc          *time.Location
	exportPrefix string
	now          func() time.Time
	newID        func() string
}

// Option GiftCardApplicationServiceのオプション
type Option func(*GiftCardApplicationService)

// WithLocation 有効期限を解釈するタイムゾーンを設定
func WithLocation(loc *time.Location) Option {
	return func(s *GiftCardApplicationService) {
		s.loc = loc
	}
}

// WithClock 現在時刻の取得方法を差し替える
func WithClock(now func() time.Time) Option {
	return func(s *GiftCardApplicationService) {
		s.now = now
	}
}

// WithIDGenerator ID生成方法を差し替える
func WithIDGenerator(newID func() string) Option {
	return func(s *GiftCardApplicationService) {
		s.newID = newID
	}
}

// WithExportPrefix CSVファイル名の接頭辞を設定
func WithExportPrefix(prefix string) Option {
	return func(s *GiftCardApplicationService) {
		s.exportPrefix = prefix
	}
}

// NewGiftCardApplicationService 新しいGiftCardApplicationServiceを作成
func NewGiftCardApplicationService(
	repo giftcard.Repository,
	gate *ratelimit.Gate,
	logger *otelinfra.Logger,
	metrics *otelinfra.Metrics,
	opts ...Option,
) *GiftCardApplicationService {
	s := &GiftCardApplicationService{
		repo:         repo,
		gate:         gate,
		logger:       logger,
		metrics:      metrics,
		tracer:       otel.Tracer("giftcard-service"),
		loc:          time.Local,
		exportPrefix: csvexport.DefaultFilenamePrefix,
		now:          time.Now,
		newID:        uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add ギフトカードを追加
func (s *GiftCardApplicationService) Add(ctx context.Context, req *AddRequest) (*AddResponse, error) {
	ctx, span := s.tracer.Start(ctx, "GiftCardApplicationService.Add")
	defer span.End()

	span.SetAttributes(attribute.String("owner_id", req.OwnerID))

	validated, err := s.validate(ctx, span, OpAdd, req.GiftCardFields)
	if err != nil {
		return nil, err
	}

	if err := s.checkRateLimit(ctx, span, ratelimit.OperationAdd, req.OwnerID); err != nil {
		return nil, err
	}

	now := s.now()
	card, err := giftcard.NewGiftCard(s.newID(), req.OwnerID, validated, now)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	if err := s.repo.Create(ctx, card); err != nil {
		return nil, s.operationFailed(ctx, span, OpAdd, err, map[string]interface{}{
			"owner_id": req.OwnerID,
		})
	}

	s.metrics.RecordOperation(ctx, OpAdd, "success")
	s.logger.Info(ctx, "Gift card added", map[string]interface{}{
		"owner_id":     req.OwnerID,
		"gift_card_id": card.ID(),
	})

	return &AddResponse{
		GiftCard:     s.toDTO(card, now),
		Notification: notification.Added(card.Brand()),
	}, nil
}

// Update ギフトカードを更新（全フィールドを置き換え、IDは維持）
func (s *GiftCardApplicationService) Update(ctx context.Context, req *UpdateRequest) (*UpdateResponse, error) {
	ctx, span := s.tracer.Start(ctx, "GiftCardApplicationService.Update")
	defer span.End()

	span.SetAttributes(
		attribute.String("owner_id", req.OwnerID),
		attribute.String("gift_card_id", req.ID),
	)

	validated, err := s.validate(ctx, span, OpUpdate, req.GiftCardFields)
	if err != nil {
		return nil, err
	}

	if err := s.checkRateLimit(ctx, span, ratelimit.OperationUpdate, req.OwnerID); err != nil {
		return nil, err
	}

	card, err := s.repo.FindByID(ctx, req.ID, req.OwnerID)
	if err != nil {
		if errors.Is(err, giftcard.ErrGiftCardNotFound) {
			span.RecordError(err)
			span.SetStatus(otelcodes.Error, err.Error())
			s.metrics.RecordOperation(ctx, OpUpdate, "not_found")
			return nil, err
		}
		return nil, s.operationFailed(ctx, span, OpUpdate, err, map[string]interface{}{
			"owner_id":     req.OwnerID,
			"gift_card_id": req.ID,
		})
	}

	now := s.now()
	card.Replace(validated, now)

	if err := s.repo.Update(ctx, card); err != nil {
		if errors.Is(err, giftcard.ErrGiftCardNotFound) {
			span.RecordError(err)
			span.SetStatus(otelcodes.Error, err.Error())
			s.metrics.RecordOperation(ctx, OpUpdate, "not_found")
			return nil, err
		}
		return nil, s.operationFailed(ctx, span, OpUpdate, err, map[string]interface{}{
			"owner_id":     req.OwnerID,
			"gift_card_id": req.ID,
		})
	}

	s.metrics.RecordOperation(ctx, OpUpdate, "success")
	s.logger.Info(ctx, "Gift card updated", map[string]interface{}{
		"owner_id":     req.OwnerID,
		"gift_card_id": card.ID(),
	})

	return &UpdateResponse{
		GiftCard:     s.toDTO(card, now),
		Notification: notification.Updated(card.Brand()),
	}, nil
}

// Delete ギフトカードを削除
func (s *GiftCardApplicationService) Delete(ctx context.Context, req *DeleteRequest) (*DeleteResponse, error) {
	ctx, span := s.tracer.Start(ctx, "GiftCardApplicationService.Delete")
	defer span.End()

	span.SetAttributes(
		attribute.String("owner_id", req.OwnerID),
		attribute.String("gift_card_id", req.ID),
	)

	if err := s.checkRateLimit(ctx, span, ratelimit.OperationDelete, req.OwnerID); err != nil {
		return nil, err
	}

	if err := s.repo.Delete(ctx, req.ID, req.OwnerID); err != nil {
		if errors.Is(err, giftcard.ErrGiftCardNotFound) {
			span.RecordError(err)
			span.SetStatus(otelcodes.Error, err.Error())
			s.metrics.RecordOperation(ctx, OpDelete, "not_found")
			return nil, err
		}
		return nil, s.operationFailed(ctx, span, OpDelete, err, map[string]interface{}{
			"owner_id":     req.OwnerID,
			"gift_card_id": req.ID,
		})
	}

	s.metrics.RecordOperation(ctx, OpDelete, "success")
	s.logger.Info(ctx, "Gift card deleted", map[string]interface{}{
		"owner_id":     req.OwnerID,
		"gift_card_id": req.ID,
	})

	return &DeleteResponse{
		ID:           req.ID,
		Notification: notification.Deleted(),
	}, nil
}

// List ギフトカード一覧を取得（派生フィールドは取得のたびに再計算する）
func (s *GiftCardApplicationService) List(ctx context.Context, req *ListRequest) (*ListResponse, error) {
	ctx, span := s.tracer.Start(ctx, "GiftCardApplicationService.List")
	defer span.End()

	span.SetAttributes(attribute.String("owner_id", req.OwnerID))

	expiration, err := giftcard.NewExpirationFilter(req.Expiration)
	if err != nil {
		err = fmt.Errorf("%w: %v", ErrInvalidFilter, err)
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	cards, err := s.repo.ListByOwner(ctx, req.OwnerID)
	if err != nil {
		return nil, s.operationFailed(ctx, span, OpFetch, err, map[string]interface{}{
			"owner_id": req.OwnerID,
		})
	}

	now := s.now()
	filter := giftcard.Filter{
		Search:     req.Search,
		Brand:      req.Brand,
		Expiration: expiration,
		Fuzzy:      req.Fuzzy,
	}
	views := filter.Apply(giftcard.Derive(cards, now, s.loc))

	dtos := make([]GiftCardDTO, 0, len(views))
	for _, v := range views {
		dtos = append(dtos, viewToDTO(v))
	}

	span.SetAttributes(attribute.Int("result_count", len(dtos)))

	return &ListResponse{
		GiftCards: dtos,
		Total:     len(cards),
	}, nil
}

// Summary 残高合計・ブランド別集計・期限間近の通知を返す
func (s *GiftCardApplicationService) Summary(ctx context.Context, req *SummaryRequest) (*SummaryResponse, error) {
	ctx, span := s.tracer.Start(ctx, "GiftCardApplicationService.Summary")
	defer span.End()

	span.SetAttributes(attribute.String("owner_id", req.OwnerID))

	cards, err := s.repo.ListByOwner(ctx, req.OwnerID)
	if err != nil {
		return nil, s.operationFailed(ctx, span, OpFetch, err, map[string]interface{}{
			"owner_id": req.OwnerID,
		})
	}

	views := giftcard.Derive(cards, s.now(), s.loc)

	alerts := make([]notification.Notice, 0)
	for _, v := range views {
		if giftcard.IsExpiringSoon(v.DaysUntilExpiration) {
			alerts = append(alerts, notification.ExpiringSoon(v.Card.Brand(), v.DaysUntilExpiration))
		}
	}

	totals := giftcard.AggregateByBrand(cards)
	breakdown := make([]BrandBreakdownDTO, 0, len(totals))
	for i, bt := range totals {
		breakdown = append(breakdown, BrandBreakdownDTO{
			Brand:   bt.Brand,
			Balance: bt.Balance,
			Count:   bt.Count,
			Color:   ColorAt(i),
		})
	}

	total := giftcard.TotalBalance(cards)
	s.metrics.RecordBalanceTotal(ctx, req.OwnerID, total.InexactFloat64())

	return &SummaryResponse{
		TotalBalance:      total,
		TotalCards:        len(cards),
		ExpiringSoonCount: len(alerts),
		BrandBreakdown:    breakdown,
		Brands:            giftcard.Brands(cards),
		Alerts:            alerts,
	}, nil
}

// Export ギフトカードをCSVとして出力
// 0件の場合はcsvexport.ErrNothingToExportを返し、ファイルは作らない
func (s *GiftCardApplicationService) Export(ctx context.Context, req *ExportRequest) (*ExportResponse, error) {
	ctx, span := s.tracer.Start(ctx, "GiftCardApplicationService.Export")
	defer span.End()

	span.SetAttributes(attribute.String("owner_id", req.OwnerID))

	if err := s.checkRateLimit(ctx, span, ratelimit.OperationExport, req.OwnerID); err != nil {
		return nil, err
	}

	cards, err := s.repo.ListByOwner(ctx, req.OwnerID)
	if err != nil {
		return nil, s.operationFailed(ctx, span, OpExport, err, map[string]interface{}{
			"owner_id": req.OwnerID,
		})
	}

	rows := make([]csvexport.Row, 0, len(cards))
	for _, card := range cards {
		rows = append(rows, csvexport.Row{
			ID:             card.ID(),
			Brand:          card.Brand(),
			Balance:        decimal.NewNullDecimal(card.Balance()),
			ExpirationDate: giftcard.FormatDate(card.ExpirationDate()),
			Notes:          card.Notes(),
		})
	}

	content, err := csvexport.Encode(rows)
	if err != nil {
		if errors.Is(err, csvexport.ErrNothingToExport) {
			s.logger.Warn(ctx, "Nothing to export", map[string]interface{}{
				"owner_id": req.OwnerID,
			})
			s.metrics.RecordOperation(ctx, OpExport, "empty")
			return nil, err
		}
		return nil, s.operationFailed(ctx, span, OpExport, err, map[string]interface{}{
			"owner_id": req.OwnerID,
		})
	}

	s.metrics.RecordOperation(ctx, OpExport, "success")
	s.metrics.RecordExport(ctx, len(rows))
	s.logger.Info(ctx, "Gift cards exported", map[string]interface{}{
		"owner_id": req.OwnerID,
		"count":    len(rows),
	})

	return &ExportResponse{
		Content:      content,
		Filename:     csvexport.Filename(s.exportPrefix, s.now().In(s.loc)),
		ContentType:  csvexport.ContentType,
		Count:        len(rows),
		Notification: notification.Exported(len(rows)),
	}, nil
}

func (s *GiftCardApplicationService) validate(ctx context.Context, span trace.Span, op string, f GiftCardFields) (*giftcard.ValidatedGiftCard, error) {
	validated, err := giftcard.Validate(giftcard.Candidate{
		Brand:          f.Brand,
		Balance:        f.Balance,
		ExpirationDate: f.ExpirationDate,
		Notes:          f.Notes,
	}, s.now(), s.loc)
	if err == nil {
		return validated, nil
	}

	span.RecordError(err)
	span.SetStatus(otelcodes.Error, "validation failed")

	var verrs giftcard.ValidationErrors
	if errors.As(err, &verrs) {
		for _, field := range verrs.Fields() {
			s.metrics.RecordValidationFailure(ctx, field)
		}
		s.logger.Warn(ctx, "Validation failed", map[string]interface{}{
			"operation": op,
			"errors":    verrs,
		})
	}
	s.metrics.RecordOperation(ctx, op, "invalid")
	return nil, err
}

func (s *GiftCardApplicationService) checkRateLimit(ctx context.Context, span trace.Span, op ratelimit.Operation, ownerID string) error {
	err := s.gate.Check(ctx, op, ownerID)
	if err == nil {
		return nil
	}

	span.RecordError(err)
	span.SetStatus(otelcodes.Error, err.Error())

	if errors.Is(err, ratelimit.ErrRateLimitExceeded) {
		s.metrics.RecordRateLimited(ctx, op.String())
		s.metrics.RecordOperation(ctx, op.String(), "rate_limited")
		s.logger.Warn(ctx, "Rate limit exceeded", map[string]interface{}{
			"operation": op.String(),
			"owner_id":  ownerID,
		})
		return err
	}

	// リミッター自体の失敗は操作の失敗として扱う
	s.logger.Error(ctx, "Failed to check rate limit", err, map[string]interface{}{
		"operation": op.String(),
		"owner_id":  ownerID,
	})
	s.metrics.RecordOperation(ctx, op.String(), "error")
	return &OperationError{Op: opName(op), Err: err}
}

func (s *GiftCardApplicationService) operationFailed(ctx context.Context, span trace.Span, op string, err error, fields map[string]interface{}) error {
	span.RecordError(err)
	span.SetStatus(otelcodes.Error, err.Error())
	s.logger.Error(ctx, "Failed to "+op+" gift card", err, fields)
	s.metrics.RecordOperation(ctx, op, "error")
	return &OperationError{Op: op, Err: err}
}

func opName(op ratelimit.Operation) string {
	switch op {
	case ratelimit.OperationAdd:
		return OpAdd
	case ratelimit.OperationUpdate:
		return OpUpdate
	case ratelimit.OperationDelete:
		return OpDelete
	default:
		return OpExport
	}
}

func (s *GiftCardApplicationService) toDTO(card *giftcard.GiftCard, now time.Time) GiftCardDTO {
	return viewToDTO(giftcard.View{
		Card:                card,
		DaysUntilExpiration: giftcard.DaysUntilExpiration(card.ExpirationDate(), now, s.loc),
	})
}

func viewToDTO(v giftcard.View) GiftCardDTO {
	return GiftCardDTO{
		ID:                  v.Card.ID(),
		Brand:               v.Card.Brand(),
		Balance:             v.Card.Balance(),
		ExpirationDate:      giftcard.FormatDate(v.Card.ExpirationDate()),
		Notes:               v.Card.Notes(),
		DaysUntilExpiration: v.DaysUntilExpiration,
		Status:              v.Status().String(),
		CreatedAt:           v.Card.CreatedAt(),
		UpdatedAt:           v.Card.UpdatedAt(),
	}
}

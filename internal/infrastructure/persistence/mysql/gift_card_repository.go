package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"giftkeeper-server/internal/domain/giftcard"
)

var _ giftcard.Repository = (*GiftCardRepository)(nil)

// GiftCardRepository MySQL実装のgiftcard.Repository
type GiftCardRepository struct {
	db     *DB
	tracer trace.Tracer
}

// NewGiftCardRepository 新しいGiftCardRepositoryを作成
func NewGiftCardRepository(db *DB) *GiftCardRepository {
	return &GiftCardRepository{
		db:     db,
		tracer: otel.Tracer("giftcard-repository"),
	}
}

const selectGiftCardColumns = `id, owner_id, brand, balance, expiration_date, notes, created_at, updated_at`

// ListByOwner 所有者のギフトカードを作成順に取得
func (r *GiftCardRepository) ListByOwner(ctx context.Context, ownerID string) ([]*giftcard.GiftCard, error) {
	ctx, span := r.tracer.Start(ctx, "GiftCardRepository.ListByOwner")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.owner_id", ownerID),
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.table", "gift_cards"),
	)

	query := `
		SELECT ` + selectGiftCardColumns + `
		FROM gift_cards
		WHERE owner_id = ?
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to list gift cards: %w", err)
	}
	defer rows.Close()

	cards := make([]*giftcard.GiftCard, 0)
	for rows.Next() {
		card, err := scanGiftCard(rows)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(otelcodes.Error, err.Error())
			return nil, err
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to iterate gift cards: %w", err)
	}

	span.SetAttributes(attribute.Int("db.rows", len(cards)))
	span.SetStatus(otelcodes.Ok, "gift cards listed")
	return cards, nil
}

// FindByID IDでギフトカードを取得
func (r *GiftCardRepository) FindByID(ctx context.Context, id string, ownerID string) (*giftcard.GiftCard, error) {
	ctx, span := r.tracer.Start(ctx, "GiftCardRepository.FindByID")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.gift_card_id", id),
		attribute.String("db.owner_id", ownerID),
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.table", "gift_cards"),
	)

	query := `
		SELECT ` + selectGiftCardColumns + `
		FROM gift_cards
		WHERE id = ? AND owner_id = ?
	`

	card, err := scanGiftCard(r.db.QueryRowContext(ctx, query, id, ownerID))
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(otelcodes.Ok, "gift card not found")
		return nil, giftcard.ErrGiftCardNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(otelcodes.Ok, "gift card found")
	return card, nil
}

// Create 新しいギフトカードを作成
func (r *GiftCardRepository) Create(ctx context.Context, card *giftcard.GiftCard) error {
	ctx, span := r.tracer.Start(ctx, "GiftCardRepository.Create")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.gift_card_id", card.ID()),
		attribute.String("db.owner_id", card.OwnerID()),
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.table", "gift_cards"),
	)

	query := `
		INSERT INTO gift_cards (id, owner_id, brand, balance, expiration_date, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		card.ID(),
		card.OwnerID(),
		card.Brand(),
		card.Balance().StringFixed(2),
		giftcard.FormatDate(card.ExpirationDate()),
		nullString(card.Notes()),
		card.CreatedAt().UTC(),
		card.UpdatedAt().UTC(),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return fmt.Errorf("failed to create gift card: %w", err)
	}

	span.SetStatus(otelcodes.Ok, "gift card created")
	return nil
}

// Update ギフトカードを更新（全フィールド置き換え）
func (r *GiftCardRepository) Update(ctx context.Context, card *giftcard.GiftCard) error {
	ctx, span := r.tracer.Start(ctx, "GiftCardRepository.Update")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.gift_card_id", card.ID()),
		attribute.String("db.owner_id", card.OwnerID()),
		attribute.String("db.operation", "UPDATE"),
		attribute.String("db.table", "gift_cards"),
	)

	query := `
		UPDATE gift_cards
		SET brand = ?, balance = ?, expiration_date = ?, notes = ?, updated_at = ?
		WHERE id = ? AND owner_id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		card.Brand(),
		card.Balance().StringFixed(2),
		giftcard.FormatDate(card.ExpirationDate()),
		nullString(card.Notes()),
		card.UpdatedAt().UTC(),
		card.ID(),
		card.OwnerID(),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return fmt.Errorf("failed to update gift card: %w", err)
	}

	return r.checkAffected(span, result, "gift card updated")
}

// Delete ギフトカードを削除
func (r *GiftCardRepository) Delete(ctx context.Context, id string, ownerID string) error {
	ctx, span := r.tracer.Start(ctx, "GiftCardRepository.Delete")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.gift_card_id", id),
		attribute.String("db.owner_id", ownerID),
		attribute.String("db.operation", "DELETE"),
		attribute.String("db.table", "gift_cards"),
	)

	query := `DELETE FROM gift_cards WHERE id = ? AND owner_id = ?`

	result, err := r.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return fmt.Errorf("failed to delete gift card: %w", err)
	}

	return r.checkAffected(span, result, "gift card deleted")
}

func (r *GiftCardRepository) checkAffected(span trace.Span, result sql.Result, okMessage string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	// 該当なしは所有者が異なる場合も含む
	if rowsAffected == 0 {
		span.SetStatus(otelcodes.Ok, "gift card not found")
		return giftcard.ErrGiftCardNotFound
	}

	span.SetAttributes(attribute.Int64("db.rows_affected", rowsAffected))
	span.SetStatus(otelcodes.Ok, okMessage)
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanGiftCard(row rowScanner) (*giftcard.GiftCard, error) {
	var (
		id             string
		ownerID        string
		brand          string
		balance        decimal.Decimal
		expirationDate time.Time
		notes          sql.NullString
		createdAt      time.Time
		updatedAt      time.Time
	)

	err := row.Scan(&id, &ownerID, &brand, &balance, &expirationDate, &notes, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan gift card: %w", err)
	}

	return giftcard.Reconstruct(id, ownerID, brand, balance, expirationDate, notes.String, createdAt, updatedAt), nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

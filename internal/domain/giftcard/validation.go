package giftcard

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"giftkeeper-server/internal/domain/sanitizer"
)

const (
	// MaxBrandLength ブランド名の最大文字数
	MaxBrandLength = 50
	// MaxNotesLength メモの最大文字数
	MaxNotesLength = 500
	// MaxYearsAhead 有効期限として許容する最大年数
	MaxYearsAhead = 10
)

// フィールド名
const (
	FieldBrand          = "brand"
	FieldBalance        = "balance"
	FieldExpirationDate = "expiration_date"
	FieldNotes          = "notes"
)

var (
	// MinBalance 最小残高 ($0.01)
	MinBalance = decimal.New(1, -2)
	// MaxBalance 最大残高 ($10,000)
	MaxBalance = decimal.NewFromInt(10000)

	brandRegex = regexp.MustCompile(`^[a-zA-Z0-9 \-&'.]+$`)
)

// Candidate 検証前のギフトカード入力
type Candidate struct {
	Brand          string
	Balance        string
	ExpirationDate string
	Notes          *string
}

// ValidatedGiftCard 検証・正規化済みのギフトカード入力
type ValidatedGiftCard struct {
	Brand          string
	Balance        decimal.Decimal
	ExpirationDate time.Time
	Notes          string
}

// FieldError フィールド単位の検証エラー
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors 検証エラーの一覧（フィールドの検査順）
type ValidationErrors []FieldError

// Error error インターフェースの実装
func (e ValidationErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, fe := range e {
		msgs = append(msgs, fe.Field+": "+fe.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// First 利用者に表示する最初のエラーを返す
func (e ValidationErrors) First() FieldError {
	if len(e) == 0 {
		return FieldError{}
	}
	return e[0]
}

// Fields エラーのあるフィールド名を返す
func (e ValidationErrors) Fields() []string {
	fields := make([]string, 0, len(e))
	for _, fe := range e {
		fields = append(fields, fe.Field)
	}
	return fields
}

// Validate 入力を検証し、正規化したギフトカードを返す
// ルールは文字参照を戻したトリム済みの入力に対して適用し、結果のブランド名とメモはサニタイズする
// 保存済みの値をそのまま送り直しても同じ値になる
// 各フィールドで最初に失敗したルールのみ報告する
func Validate(c Candidate, now time.Time, loc *time.Location) (*ValidatedGiftCard, error) {
	var errs ValidationErrors
	out := &ValidatedGiftCard{}

	brand := strings.TrimSpace(sanitizer.Unescape(c.Brand))
	if msg := validateBrand(brand); msg != "" {
		errs = append(errs, FieldError{Field: FieldBrand, Message: msg})
	} else {
		out.Brand = sanitizer.Sanitize(brand)
	}

	if balance, msg := validateBalance(c.Balance); msg != "" {
		errs = append(errs, FieldError{Field: FieldBalance, Message: msg})
	} else {
		out.Balance = balance
	}

	if date, msg := validateExpirationDate(c.ExpirationDate, now, loc); msg != "" {
		errs = append(errs, FieldError{Field: FieldExpirationDate, Message: msg})
	} else {
		out.ExpirationDate = date
	}

	if c.Notes != nil {
		notes := strings.TrimSpace(sanitizer.Unescape(*c.Notes))
		if utf8.RuneCountInString(notes) > MaxNotesLength {
			errs = append(errs, FieldError{Field: FieldNotes, Message: "Notes must be 500 characters or less"})
		} else {
			out.Notes = sanitizer.Sanitize(notes)
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return out, nil
}

func validateBrand(brand string) string {
	switch {
	case brand == "":
		return "Brand name is required"
	case utf8.RuneCountInString(brand) > MaxBrandLength:
		return "Brand name must be 50 characters or less"
	case !brandRegex.MatchString(brand):
		return "Brand name contains invalid characters"
	}
	return ""
}

func validateBalance(raw string) (decimal.Decimal, string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, "Balance is required"
	}
	balance, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, "Balance must be a number"
	}
	switch {
	case balance.LessThan(MinBalance):
		return decimal.Zero, "Balance must be at least $0.01"
	case balance.GreaterThan(MaxBalance):
		return decimal.Zero, "Balance cannot exceed $10,000"
	case !balance.Round(2).Equal(balance):
		return decimal.Zero, "Balance can only have 2 decimal places"
	}
	return balance.Round(2), ""
}

func validateExpirationDate(raw string, now time.Time, loc *time.Location) (time.Time, string) {
	if strings.TrimSpace(raw) == "" {
		return time.Time{}, "Expiration date is required"
	}
	date, err := ParseDate(raw)
	if err != nil {
		return time.Time{}, "Expiration date must be a valid date"
	}

	today := Today(now, loc)
	if date.Before(today) {
		return time.Time{}, "Expiration date cannot be in the past"
	}
	if date.After(today.AddDate(MaxYearsAhead, 0, 0)) {
		return time.Time{}, "Expiration date cannot be more than 10 years in the future"
	}
	return date, ""
}

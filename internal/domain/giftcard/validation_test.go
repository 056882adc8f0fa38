package giftcard

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"giftkeeper-server/internal/domain/sanitizer"
)

var testNow = time.Date(2026, time.March, 10, 15, 30, 0, 0, time.UTC)

func validCandidate() Candidate {
	notes := "Birthday gift from mom"
	return Candidate{
		Brand:          "Amazon",
		Balance:        "150.00",
		ExpirationDate: "2026-12-31",
		Notes:          &notes,
	}
}

func stringPtr(s string) *string {
	return &s
}

func TestValidate_Balance(t *testing.T) {
	tests := []struct {
		name    string
		balance string
		wantErr string
	}{
		{name: "正常系: 最小値", balance: "0.01"},
		{name: "正常系: 最大値", balance: "10000"},
		{name: "正常系: 最大値（小数2桁）", balance: "10000.00"},
		{name: "正常系: 小数1桁", balance: "25.5"},
		{name: "正常系: 整数", balance: "100"},
		{name: "異常系: 0", balance: "0", wantErr: "Balance must be at least $0.01"},
		{name: "異常系: 負の値", balance: "-5", wantErr: "Balance must be at least $0.01"},
		{name: "異常系: 最大値超過", balance: "10000.01", wantErr: "Balance cannot exceed $10,000"},
		{name: "異常系: 小数3桁", balance: "12.345", wantErr: "Balance can only have 2 decimal places"},
		{name: "異常系: 数値でない", balance: "abc", wantErr: "Balance must be a number"},
		{name: "異常系: 空", balance: "", wantErr: "Balance is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validCandidate()
			c.Balance = tt.balance

			got, err := Validate(c, testNow, time.UTC)
			if tt.wantErr == "" {
				require.NoError(t, err)
				want, _ := decimal.NewFromString(tt.balance)
				assert.True(t, want.Equal(got.Balance))
				return
			}

			var verrs ValidationErrors
			require.ErrorAs(t, err, &verrs)
			assert.Equal(t, FieldError{Field: FieldBalance, Message: tt.wantErr}, verrs.First())
			assert.Nil(t, got)
		})
	}
}

func TestValidate_Brand(t *testing.T) {
	tests := []struct {
		name      string
		brand     string
		wantBrand string
		wantErr   string
	}{
		{name: "正常系: ピリオド", brand: "Amazon.com", wantBrand: "Amazon.com"},
		{name: "正常系: アンパサンドとアポストロフィ", brand: "Ben & Jerry's", wantBrand: "Ben &amp; Jerry&#x27;s"},
		{name: "正常系: ハイフンと数字", brand: "7-Eleven", wantBrand: "7-Eleven"},
		{name: "正常系: 前後の空白はトリム", brand: "  Target  ", wantBrand: "Target"},
		{name: "正常系: 50文字", brand: strings.Repeat("a", 50), wantBrand: strings.Repeat("a", 50)},
		{name: "異常系: 空", brand: "", wantErr: "Brand name is required"},
		{name: "異常系: 空白のみ", brand: "   ", wantErr: "Brand name is required"},
		{name: "異常系: 51文字", brand: strings.Repeat("a", 51), wantErr: "Brand name must be 50 characters or less"},
		{name: "異常系: タグ", brand: "<script>", wantErr: "Brand name contains invalid characters"},
		{name: "異常系: スラッシュ", brand: "AT/T", wantErr: "Brand name contains invalid characters"},
		{name: "異常系: 感嘆符", brand: "Yahoo!", wantErr: "Brand name contains invalid characters"},
		{name: "異常系: マルチバイト文字", brand: "ギフト", wantErr: "Brand name contains invalid characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validCandidate()
			c.Brand = tt.brand

			got, err := Validate(c, testNow, time.UTC)
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, tt.wantBrand, got.Brand)
				return
			}

			var verrs ValidationErrors
			require.ErrorAs(t, err, &verrs)
			assert.Equal(t, FieldError{Field: FieldBrand, Message: tt.wantErr}, verrs.First())
		})
	}
}

func TestValidate_ExpirationDate(t *testing.T) {
	tests := []struct {
		name     string
		date     string
		wantDate time.Time
		wantErr  string
	}{
		{name: "正常系: 当日", date: "2026-03-10", wantDate: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)},
		{name: "正常系: 10年後ちょうど", date: "2036-03-10", wantDate: time.Date(2036, 3, 10, 0, 0, 0, 0, time.UTC)},
		{name: "正常系: RFC3339形式", date: "2026-04-01T00:00:00Z", wantDate: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)},
		{name: "異常系: 前日", date: "2026-03-09", wantErr: "Expiration date cannot be in the past"},
		{name: "異常系: 10年後の翌日", date: "2036-03-11", wantErr: "Expiration date cannot be more than 10 years in the future"},
		{name: "異常系: 日付でない", date: "next week", wantErr: "Expiration date must be a valid date"},
		{name: "異常系: 存在しない日付", date: "2026-02-30", wantErr: "Expiration date must be a valid date"},
		{name: "異常系: 空", date: "", wantErr: "Expiration date is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validCandidate()
			c.ExpirationDate = tt.date

			got, err := Validate(c, testNow, time.UTC)
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.True(t, tt.wantDate.Equal(got.ExpirationDate))
				return
			}

			var verrs ValidationErrors
			require.ErrorAs(t, err, &verrs)
			assert.Equal(t, FieldError{Field: FieldExpirationDate, Message: tt.wantErr}, verrs.First())
		})
	}
}

func TestValidate_ExpirationDate_UsesLocalCalendarDay(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	// UTCでは3月10日だが東京では3月11日
	now := time.Date(2026, time.March, 10, 20, 0, 0, 0, time.UTC)

	c := validCandidate()
	c.ExpirationDate = "2026-03-10"

	_, err := Validate(c, now, tokyo)
	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "Expiration date cannot be in the past", verrs.First().Message)

	_, err = Validate(c, now, time.UTC)
	assert.NoError(t, err)
}

func TestValidate_Notes(t *testing.T) {
	tests := []struct {
		name      string
		notes     *string
		wantNotes string
		wantErr   string
	}{
		{name: "正常系: 未指定", notes: nil, wantNotes: ""},
		{name: "正常系: 500文字", notes: stringPtr(strings.Repeat("n", 500)), wantNotes: strings.Repeat("n", 500)},
		{name: "正常系: HTMLはエスケープ", notes: stringPtr(`<img src="x">`), wantNotes: "&lt;img src=&quot;x&quot;&gt;"},
		{name: "正常系: マルチバイト500文字", notes: stringPtr(strings.Repeat("あ", 500)), wantNotes: strings.Repeat("あ", 500)},
		{name: "異常系: 501文字", notes: stringPtr(strings.Repeat("n", 501)), wantErr: "Notes must be 500 characters or less"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validCandidate()
			c.Notes = tt.notes

			got, err := Validate(c, testNow, time.UTC)
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, tt.wantNotes, got.Notes)
				return
			}

			var verrs ValidationErrors
			require.ErrorAs(t, err, &verrs)
			assert.Equal(t, FieldError{Field: FieldNotes, Message: tt.wantErr}, verrs.First())
		})
	}
}

func TestValidate_ReportsEachFieldInOrder(t *testing.T) {
	c := Candidate{
		Brand:          "<script>",
		Balance:        "0",
		ExpirationDate: "2020-01-01",
		Notes:          stringPtr(strings.Repeat("x", 501)),
	}

	_, err := Validate(c, testNow, time.UTC)

	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	require.Len(t, verrs, 4)
	assert.Equal(t, []string{FieldBrand, FieldBalance, FieldExpirationDate, FieldNotes}, verrs.Fields())
	assert.Equal(t, "Brand name contains invalid characters", verrs.First().Message)
	assert.Contains(t, verrs.Error(), "balance: Balance must be at least $0.01")
}

func TestValidate_RoundTrip(t *testing.T) {
	inputs := []Candidate{
		validCandidate(),
		{Brand: "Ben & Jerry's", Balance: "12.30", ExpirationDate: "2027-01-15", Notes: stringPtr(`from "work" / party`)},
		{Brand: "Target", Balance: "0.01", ExpirationDate: "2026-03-10"},
	}

	for _, in := range inputs {
		got, err := Validate(in, testNow, time.UTC)
		require.NoError(t, err)

		assert.Equal(t, sanitizer.Sanitize(strings.TrimSpace(in.Brand)), got.Brand)
		balance, _ := decimal.NewFromString(in.Balance)
		assert.True(t, balance.Equal(got.Balance))
		assert.Equal(t, in.ExpirationDate, FormatDate(got.ExpirationDate))
		if in.Notes != nil {
			assert.Equal(t, sanitizer.Sanitize(*in.Notes), got.Notes)
		}
	}
}

func TestValidate_AcceptsStoredValues(t *testing.T) {
	tests := []struct {
		name  string
		brand string
		notes string
	}{
		{name: "正常系: アンパサンド", brand: "AT&T", notes: "a & b"},
		{name: "正常系: スペースとアンパサンド", brand: "Barnes & Noble", notes: ""},
		{name: "正常系: シングルクォート", brand: "Ben & Jerry's", notes: `from "work" / party`},
		{name: "正常系: サニタイズで500文字を超えるメモ", brand: "Target", notes: strings.Repeat("&", MaxNotesLength)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first, err := Validate(Candidate{
				Brand:          tt.brand,
				Balance:        "10.00",
				ExpirationDate: "2027-01-15",
				Notes:          stringPtr(tt.notes),
			}, testNow, time.UTC)
			require.NoError(t, err)

			// 保存済みの値を送り直す
			second, err := Validate(Candidate{
				Brand:          first.Brand,
				Balance:        first.Balance.StringFixed(2),
				ExpirationDate: FormatDate(first.ExpirationDate),
				Notes:          stringPtr(first.Notes),
			}, testNow, time.UTC)
			require.NoError(t, err)

			assert.Equal(t, sanitizer.Sanitize(tt.brand), second.Brand)
			assert.Equal(t, first.Brand, second.Brand)
			assert.Equal(t, first.Notes, second.Notes)
		})
	}
}

func TestValidate_UnescapedReferenceStillRejected(t *testing.T) {
	_, err := Validate(Candidate{
		Brand:          "&lt;script&gt;",
		Balance:        "10.00",
		ExpirationDate: "2027-01-15",
	}, testNow, time.UTC)

	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "Brand name contains invalid characters", verrs.First().Message)
}

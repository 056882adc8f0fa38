package csvexport

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"giftkeeper-server/internal/domain/sanitizer"
)

const (
	// ContentType CSVのContent-Type
	ContentType = "text/csv; charset=utf-8"
	// DefaultFilenamePrefix ファイル名の既定の接頭辞
	DefaultFilenamePrefix = "giftkeeper_export"
)

// ErrNothingToExport 出力するレコードがない
var ErrNothingToExport = errors.New("no gift cards to export")

// Header CSVのヘッダー行
var Header = []string{"ID", "Brand", "Balance (USD)", "Expiration Date", "Notes"}

// Row CSVの1行分
type Row struct {
	ID             string
	Brand          string
	Balance        decimal.NullDecimal
	ExpirationDate string
	Notes          string
}

// Encode 行をCSV文字列に変換する
// 行は"\n"で区切り、末尾に改行は付けない
func Encode(rows []Row) (string, error) {
	if len(rows) == 0 {
		return "", ErrNothingToExport
	}

	var b strings.Builder
	writeLine(&b, Header)
	for _, r := range rows {
		b.WriteByte('\n')
		writeLine(&b, []string{
			r.ID,
			sanitizer.Sanitize(r.Brand),
			formatBalance(r.Balance),
			r.ExpirationDate,
			sanitizer.Sanitize(r.Notes),
		})
	}
	return b.String(), nil
}

// Filename 出力ファイル名を返す（接頭辞_YYYY-MM-DD.csv）
func Filename(prefix string, now time.Time) string {
	if prefix == "" {
		prefix = DefaultFilenamePrefix
	}
	return prefix + "_" + now.Format("2006-01-02") + ".csv"
}

func formatBalance(d decimal.NullDecimal) string {
	if !d.Valid {
		return "0.00"
	}
	return d.Decimal.StringFixed(2)
}

func writeLine(b *strings.Builder, fields []string) {
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(quoteField(f))
	}
}

// quoteField カンマ・ダブルクォート・改行を含む場合のみクォートする
func quoteField(s string) string {
	if !strings.ContainsAny(s, ",\"\n") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

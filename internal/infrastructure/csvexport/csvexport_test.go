package csvexport

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const header = "ID,Brand,Balance (USD),Expiration Date,Notes"

func TestEncode(t *testing.T) {
	tests := []struct {
		name    string
		rows    []Row
		want    string
		wantErr error
	}{
		{
			name: "正常系: 1行",
			rows: []Row{{
				ID:             "card-1",
				Brand:          "Amazon",
				Balance:        decimal.NewNullDecimal(decimal.RequireFromString("50.5")),
				ExpirationDate: "2027-12-31",
				Notes:          "birthday",
			}},
			want: header + "\ncard-1,Amazon,50.50,2027-12-31,birthday",
		},
		{
			name: "正常系: 改行とカンマを含むメモは1回だけクォート",
			rows: []Row{{
				ID:             "card-1",
				Brand:          "Target",
				Balance:        decimal.NewNullDecimal(decimal.NewFromInt(10)),
				ExpirationDate: "2027-01-01",
				Notes:          "line1\nline2, ok",
			}},
			want: header + "\ncard-1,Target,10.00,2027-01-01,\"line1\nline2, ok\"",
		},
		{
			name: "正常系: 残高なしは0.00、メモなしは空",
			rows: []Row{{
				ID:             "card-1",
				Brand:          "Target",
				ExpirationDate: "2027-01-01",
			}},
			want: header + "\ncard-1,Target,0.00,2027-01-01,",
		},
		{
			name: "正常系: ブランドとメモをサニタイズ",
			rows: []Row{{
				ID:             "card-1",
				Brand:          "Ben & Jerry's",
				Balance:        decimal.NewNullDecimal(decimal.NewFromInt(5)),
				ExpirationDate: "2027-01-01",
				Notes:          `<b>"hi"</b>`,
			}},
			want: header + "\ncard-1,Ben &amp; Jerry&#x27;s,5.00,2027-01-01,&lt;b&gt;&quot;hi&quot;&lt;&#x2F;b&gt;",
		},
		{
			name: "正常系: 保存済みのエスケープは二重にならない",
			rows: []Row{{
				ID:             "card-1",
				Brand:          "Ben &amp; Jerry&#x27;s",
				Balance:        decimal.NewNullDecimal(decimal.NewFromInt(5)),
				ExpirationDate: "2027-01-01",
			}},
			want: header + "\ncard-1,Ben &amp; Jerry&#x27;s,5.00,2027-01-01,",
		},
		{
			name: "正常系: 先頭の空白はクォートしない",
			rows: []Row{{
				ID:             "card-1",
				Brand:          "Apple",
				Balance:        decimal.NewNullDecimal(decimal.NewFromInt(1)),
				ExpirationDate: "2027-01-01",
				Notes:          " spaced",
			}},
			want: header + "\ncard-1,Apple,1.00,2027-01-01, spaced",
		},
		{
			name:    "異常系: 0件",
			rows:    nil,
			wantErr: ErrNothingToExport,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Encode(tt.rows)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncode_MultipleRows(t *testing.T) {
	rows := []Row{
		{ID: "1", Brand: "A", Balance: decimal.NewNullDecimal(decimal.NewFromInt(1)), ExpirationDate: "2027-01-01"},
		{ID: "2", Brand: "B", Balance: decimal.NewNullDecimal(decimal.NewFromInt(2)), ExpirationDate: "2027-01-02"},
	}

	got, err := Encode(rows)
	require.NoError(t, err)

	lines := strings.Split(got, "\n")
	assert.Len(t, lines, 3)
	assert.False(t, strings.HasSuffix(got, "\n"))
}

func TestQuoteField(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "plain", want: "plain"},
		{input: "a,b", want: `"a,b"`},
		{input: `say "hi"`, want: `"say ""hi"""`},
		{input: "a\nb", want: "\"a\nb\""},
		{input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, quoteField(tt.input))
		})
	}
}

func TestFilename(t *testing.T) {
	now := time.Date(2026, 3, 10, 23, 0, 0, 0, time.UTC)

	assert.Equal(t, "giftkeeper_export_2026-03-10.csv", Filename("", now))
	assert.Equal(t, "cards_2026-03-10.csv", Filename("cards", now))
}

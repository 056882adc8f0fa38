package giftcard

// ChartPalette ブランド別グラフの配色（順に割り当て、足りなければ先頭から繰り返す）
var ChartPalette = []string{
	"#3B82F6",
	"#10B981",
	"#F59E0B",
	"#EF4444",
	"#8B5CF6",
	"#F97316",
	"#06B6D4",
	"#84CC16",
}

// ColorAt i番目の色を返す
func ColorAt(i int) string {
	return ChartPalette[i%len(ChartPalette)]
}

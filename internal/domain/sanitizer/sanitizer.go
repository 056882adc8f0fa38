package sanitizer

import "strings"

// references Sanitizeが出力する文字参照
var references = []string{"&amp;", "&lt;", "&gt;", "&quot;", "&#x27;", "&#x2F;"}

// Sanitize HTMLとして意味を持つ文字を文字参照に置き換える
// 既に文字参照の先頭になっている&はそのまま残すため、二重に適用しても結果は変わらない
func Sanitize(input string) string {
	if !strings.ContainsAny(input, "&<>\"'/") {
		return input
	}

	var b strings.Builder
	b.Grow(len(input) + 16)

	for i := 0; i < len(input); i++ {
		switch ch := input[i]; ch {
		case '&':
			if startsWithReference(input[i:]) {
				b.WriteByte(ch)
			} else {
				b.WriteString("&amp;")
			}
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		case '"':
			b.WriteString("&quot;")
		case '\'':
			b.WriteString("&#x27;")
		case '/':
			b.WriteString("&#x2F;")
		default:
			b.WriteByte(ch)
		}
	}

	return b.String()
}

// startsWithReference sがSanitizeの出力する文字参照で始まるかどうか
func startsWithReference(s string) bool {
	for _, ref := range references {
		if strings.HasPrefix(s, ref) {
			return true
		}
	}
	return false
}

var unescaper = strings.NewReplacer(
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#x27;", "'",
	"&#x2F;", "/",
)

// Unescape Sanitizeが出力する文字参照を元の文字に戻す
// それ以外の文字参照はそのまま残す
func Unescape(input string) string {
	if !strings.Contains(input, "&") {
		return input
	}
	return unescaper.Replace(input)
}

package otel

import (
	"fmt"
	"regexp"
)

// RedactedValue 秘匿された値の置き換え文字列
const RedactedValue = "[REDACTED]"

var sensitivePattern = regexp.MustCompile(`(?i)password|token|key|secret`)

// Redact ログに出力するフィールドから秘匿情報を取り除いたコピーを返す
// キー名が秘匿語に一致する値は丸ごと、文字列中の秘匿語はその部分だけを置き換える
func Redact(fields map[string]interface{}) map[string]interface{} {
	if fields == nil {
		return nil
	}
	out := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		if sensitivePattern.MatchString(k) {
			out[k] = RedactedValue
			continue
		}
		out[k] = redactValue(v)
	}
	return out
}

func redactValue(v interface{}) interface{} {
	switch val := v.(type) {
	case string:
		return sensitivePattern.ReplaceAllString(val, RedactedValue)
	case map[string]interface{}:
		return Redact(val)
	case map[string]string:
		out := make(map[string]interface{}, len(val))
		for k, s := range val {
			out[k] = s
		}
		return Redact(out)
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = redactValue(item)
		}
		return out
	case []string:
		out := make([]string, len(val))
		for i, s := range val {
			out[i] = sensitivePattern.ReplaceAllString(s, RedactedValue)
		}
		return out
	case error:
		return sensitivePattern.ReplaceAllString(val.Error(), RedactedValue)
	case fmt.Stringer:
		return sensitivePattern.ReplaceAllString(val.String(), RedactedValue)
	default:
		return v
	}
}

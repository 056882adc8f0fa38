package notification

import "strconv"

// Severity 通知の重要度
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Notice 利用者に表示する通知
type Notice struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
}

func success(title, description string) Notice {
	return Notice{Title: title, Description: description, Severity: SeveritySuccess}
}

func failure(title, description string) Notice {
	return Notice{Title: title, Description: description, Severity: SeverityError}
}

func warning(title, description string) Notice {
	return Notice{Title: title, Description: description, Severity: SeverityWarning}
}

// Added ギフトカード追加（ブランド名を含める）
func Added(brand string) Notice {
	return success("Gift Card Added", brand+" gift card has been added successfully")
}

// Updated ギフトカード更新（ブランド名を含める）
func Updated(brand string) Notice {
	return success("Gift Card Updated", brand+" gift card has been updated successfully")
}

// Deleted ギフトカード削除
func Deleted() Notice {
	return success("Gift Card Deleted", "Your gift card has been successfully deleted.")
}

// Exported CSV出力
func Exported(count int) Notice {
	if count == 1 {
		return success("Export Successful", "Exported 1 gift card to CSV.")
	}
	return success("Export Successful", "Exported "+strconv.Itoa(count)+" gift cards to CSV.")
}

// NothingToExport 出力対象なし
func NothingToExport() Notice {
	return warning("No Data to Export", "You don't have any gift cards to export yet.")
}

// ExportFailed CSV出力失敗
func ExportFailed() Notice {
	return failure("Export Failed", "Failed to export gift cards. Please try again.")
}

// ValidationFailed 入力エラー（最初のメッセージを表示する）
func ValidationFailed(message string) Notice {
	return failure("Validation Error", message)
}

// RateLimited 操作回数の上限超過
func RateLimited() Notice {
	return failure("Too Many Requests", "Please wait a moment before trying again.")
}

// NotFound 対象のギフトカードが存在しない
func NotFound() Notice {
	return failure("Gift Card Not Found", "The gift card could not be found.")
}

// OperationFailed 保存先の失敗（操作ごとの汎用メッセージ）
func OperationFailed(op string) Notice {
	switch op {
	case "add":
		return failure("Error", "Failed to add gift card")
	case "update":
		return failure("Error", "Failed to update gift card")
	case "delete":
		return failure("Error", "Failed to delete gift card")
	case "export":
		return ExportFailed()
	default:
		return failure("Error", "Failed to fetch gift cards")
	}
}

// ExpiringSoon まもなく期限切れのギフトカード
func ExpiringSoon(brand string, days int) Notice {
	return warning("Gift Card Expiring Soon!",
		"Your "+brand+" gift card expires in "+strconv.Itoa(days)+" days")
}

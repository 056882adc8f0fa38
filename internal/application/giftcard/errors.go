package giftcard

import (
	"errors"
	"fmt"
)

// ErrInvalidFilter 一覧の絞り込み条件が不正
var ErrInvalidFilter = errors.New("invalid filter")

// 保存先の操作名
const (
	OpAdd    = "add"
	OpUpdate = "update"
	OpDelete = "delete"
	OpFetch  = "fetch"
	OpExport = "export"
)

// OperationError 保存先やシリアライズの失敗
// 利用者には操作ごとの汎用メッセージだけを返し、詳細はログに残す
type OperationError struct {
	Op  string
	Err error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("%s gift card: %v", e.Op, e.Err)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

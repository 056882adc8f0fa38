package giftcard

import "errors"

var (
	// ErrGiftCardNotFound ギフトカードが見つからないエラー
	ErrGiftCardNotFound = errors.New("gift card not found")
	// ErrInvalidID ギフトカードIDが無効
	ErrInvalidID = errors.New("invalid gift card id")
	// ErrInvalidOwnerID 所有者IDが無効
	ErrInvalidOwnerID = errors.New("invalid owner id")
	// ErrDuplicateID 同じIDのギフトカードが既に存在する
	ErrDuplicateID = errors.New("duplicate gift card id")
)

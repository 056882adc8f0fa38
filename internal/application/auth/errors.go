package auth

import "errors"

var (
	// ErrMissingUserID ユーザーIDが指定されていない
	ErrMissingUserID = errors.New("user_id is required")
	// ErrMissingToken 認証ヘッダーがない
	ErrMissingToken = errors.New("missing authorization header")
	// ErrMalformedHeader 認証ヘッダーの形式が不正
	ErrMalformedHeader = errors.New("invalid authorization header format")
	// ErrInvalidToken トークンが無効または期限切れ
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrMissingUserClaim トークンにuser_idが含まれていない
	ErrMissingUserClaim = errors.New("missing user_id in token")
)

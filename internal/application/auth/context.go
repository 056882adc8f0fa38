package auth

import "context"

type ownerIDKey struct{}

// WithOwnerID 認証済みの所有者IDをコンテキストに設定
func WithOwnerID(ctx context.Context, ownerID string) context.Context {
	return context.WithValue(ctx, ownerIDKey{}, ownerID)
}

// OwnerIDFromContext コンテキストから所有者IDを取得
func OwnerIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ownerIDKey{}).(string)
	return id, ok && id != ""
}

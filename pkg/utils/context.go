package utils

import "context"

type contextKey string

const (
	AccountIDKey contextKey = "account_id"
	RoleKey      contextKey = "role"
)

func SetAccountContext(ctx context.Context, accountID, role string) context.Context {
	ctx = context.WithValue(ctx, AccountIDKey, accountID)
	ctx = context.WithValue(ctx, RoleKey, role)
	return ctx
}

func GetAccountIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(AccountIDKey).(string)
	return id, ok && id != ""
}

func GetRoleFromContext(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(RoleKey).(string)
	return role, ok
}

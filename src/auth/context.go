package auth

import (
	"context"

	"papertrade/src/model"
)

type contextKey string

const AccountKey contextKey = "account"

func GetAccountFromContext(ctx context.Context) (*model.Account, bool) {
	account, ok := ctx.Value(AccountKey).(*model.Account)
	return account, ok
}

func WithAccount(ctx context.Context, account *model.Account) context.Context {
	return context.WithValue(ctx, AccountKey, account)
}

package di

import (
	"account_backend/internal/app/config"
	"account_backend/internal/feature/account/transport/handler"
	"account_backend/internal/feature/account/usecase"
	jwtmw "account_backend/internal/platform/jwt"
	"account_backend/internal/platform/password"
)

// Account bundles the components the router needs from the account feature.
type Account struct {
	Handler *handler.AccountHandler
	Tokens  *jwtmw.Generator
}

// NewAccount wires the hasher, token generator, usecase and handler around users.
func NewAccount(cfg config.AuthConfig, users usecase.UserRepository) (*Account, error) {
	tokens, err := jwtmw.NewGenerator(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		return nil, err
	}
	uc := usecase.NewAccountUsecase(users, password.NewBcryptHasher(cfg.BcryptCost), tokens)
	return &Account{
		Handler: handler.NewAccountHandler(uc),
		Tokens:  tokens,
	}, nil
}

package auth

import (
	"go.uber.org/fx"

	"storefront/internal/config"
)

// Module provides the password hasher and token signer.
var Module = fx.Provide(
	func(cfg *config.Config) PasswordHasher { return NewBcryptHasher(cfg.BcryptCost) },
	func(cfg *config.Config) TokenSigner { return NewJWTSigner(cfg.JWTSecret, cfg.TokenTTL) },
)

package auth

import "errors"

var ErrInvalidToken = errors.New("invalid token")

type Authenticator interface {
	GenerateTokens(adminID int64, role string) (TokenPair, error)
	ValidateAccessToken(token string) (*Claims, error)
	ValidateRefreshToken(token string) (*Claims, error)
}

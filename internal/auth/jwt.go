package auth

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	AccessTokenTTL  = 30 * time.Minute
	RefreshTokenTTL = 14 * 24 * time.Hour

	tokenAccess  = "access"
	tokenRefresh = "refresh"
)

// Claims carries the admin id in the subject and a unique id per token so a
// refresh token can be revoked on logout.
type Claims struct {
	Role string `json:"role,omitempty"`
	Type string `json:"typ"`
	jwt.RegisteredClaims
}

// AdminID parses the subject back into the admin primary key.
func (c *Claims) AdminID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	return id, nil
}

type TokenPair struct {
	Access         string
	Refresh        string
	RefreshID      string
	RefreshExpires time.Time
}

type JWTAuthenticator struct {
	secret        string
	refreshSecret string
	aud           string
	iss           string
	now           func() time.Time
}

func NewJWTAuthenticator(secret, refreshSecret, aud, iss string) *JWTAuthenticator {
	return &JWTAuthenticator{
		secret:        secret,
		refreshSecret: refreshSecret,
		aud:           aud,
		iss:           iss,
		now:           time.Now,
	}
}

// GenerateTokens issues a short-lived access token and a refresh token.
func (a *JWTAuthenticator) GenerateTokens(adminID int64, role string) (TokenPair, error) {
	now := a.now()
	sub := strconv.FormatInt(adminID, 10)

	access := Claims{
		Role: role,
		Type: tokenAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   sub,
			Issuer:    a.iss,
			Audience:  jwt.ClaimStrings{a.aud},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(AccessTokenTTL)),
		},
	}

	refreshExp := now.Add(RefreshTokenTTL)
	refresh := Claims{
		Role: role,
		Type: tokenRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   sub,
			Issuer:    a.iss,
			Audience:  jwt.ClaimStrings{a.aud},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(refreshExp),
		},
	}

	accessToken, err := a.sign(access, a.secret)
	if err != nil {
		return TokenPair{}, err
	}
	refreshToken, err := a.sign(refresh, a.refreshSecret)
	if err != nil {
		return TokenPair{}, err
	}

	return TokenPair{
		Access:         accessToken,
		Refresh:        refreshToken,
		RefreshID:      refresh.ID,
		RefreshExpires: refreshExp,
	}, nil
}

func (a *JWTAuthenticator) sign(claims Claims, secret string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func (a *JWTAuthenticator) ValidateAccessToken(token string) (*Claims, error) {
	return a.parse(token, a.secret, tokenAccess)
}

func (a *JWTAuthenticator) ValidateRefreshToken(token string) (*Claims, error) {
	return a.parse(token, a.refreshSecret, tokenRefresh)
}

func (a *JWTAuthenticator) parse(token, secret, typ string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	},
		jwt.WithExpirationRequired(),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithIssuer(a.iss),
		jwt.WithAudience(a.aud),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Type != typ {
		return nil, fmt.Errorf("%w: expected %s token", ErrInvalidToken, typ)
	}
	return claims, nil
}

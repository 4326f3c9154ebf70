package devapi

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	errTokenExpired = errors.New("token expired")
	errTokenInvalid = errors.New("invalid token")
)

const (
	claimSubject = "sub"
	claimRole    = "role"
)

// tokenIssuer signs and verifies HS256 session tokens.
type tokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

type tokenClaims struct {
	UserID string
	Role   string
}

func newTokenIssuer(secret string, ttl time.Duration, now func() time.Time) *tokenIssuer {
	return &tokenIssuer{secret: []byte(secret), ttl: ttl, now: now}
}

func (issuer *tokenIssuer) issue(userID string, role string) (string, error) {
	now := issuer.now()
	claims := jwt.MapClaims{
		claimSubject: userID,
		claimRole:    role,
		"iat":        now.Unix(),
		"exp":        now.Add(issuer.ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(issuer.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (issuer *tokenIssuer) parse(raw string) (tokenClaims, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (any, error) {
		return issuer.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(issuer.now),
		jwt.WithExpirationRequired(),
	)
	if errors.Is(err, jwt.ErrTokenExpired) {
		return tokenClaims{}, errTokenExpired
	}
	if err != nil {
		return tokenClaims{}, errTokenInvalid
	}
	userID, _ := claims[claimSubject].(string)
	role, _ := claims[claimRole].(string)
	if userID == "" {
		return tokenClaims{}, errTokenInvalid
	}
	return tokenClaims{UserID: userID, Role: role}, nil
}

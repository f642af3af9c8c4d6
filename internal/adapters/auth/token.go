package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned by Verify for any token that fails parsing,
// signature, expiry, or subject checks.
var ErrInvalidToken = errors.New("invalid or expired token")

type jwtClaims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
}

// JWT issues and verifies HS256 bearer tokens. It implements both
// domain.TokenIssuer and domain.TokenVerifier.
type JWT struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewJWT returns a JWT signer/verifier for secret. issuer is written to and
// required in the "iss" claim when non-empty.
func NewJWT(secret, issuer string) *JWT {
	return &JWT{secret: []byte(secret), issuer: issuer, now: time.Now}
}

func (j *JWT) Issue(userID, username string, expiry time.Duration) (string, error) {
	now := j.now()
	claims := jwtClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    j.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
		Username: username,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(j.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

func (j *JWT) Verify(tokenString string) (string, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	}
	if j.issuer != "" {
		opts = append(opts, jwt.WithIssuer(j.issuer))
	}
	claims := &jwtClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return j.secret, nil
	}, opts...)
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}
	if claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

// internal/utils/jwt.go
package utils

import (
	"errors"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/golang-jwt/jwt/v4"
)

// JWTClaims carries the caller identity. Roles are informational; every
// ledger operation re-checks them against the role book.
type JWTClaims struct {
	Identity string   `json:"identity"`
	Roles    []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

var (
	jwtSecret = []byte("your-secret-key-change-in-production")
	jwtIssuer = "digital-original"
)

func SetJWTSecret(secret string) {
	jwtSecret = []byte(secret)
}

func SetJWTIssuer(issuer string) {
	if issuer != "" {
		jwtIssuer = issuer
	}
}

func GenerateJWT(identity common.Address, roles []string, ttlHours int) (string, error) {
	now := time.Now()
	claims := JWTClaims{
		Identity: identity.Hex(),
		Roles:    roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(ttlHours) * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    jwtIssuer,
			Subject:   identity.Hex(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

func ValidateJWT(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return jwtSecret, nil
	})

	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if !common.IsHexAddress(claims.Identity) || claims.Identity != claims.Subject {
		return nil, errors.New("token subject is not an identity")
	}
	return claims, nil
}

// CallerIdentity returns the identity the token was issued to.
func (c *JWTClaims) CallerIdentity() common.Address {
	return common.HexToAddress(c.Identity)
}

// Package auth issues and verifies the operator tokens that bind a client to
// one table.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const roleOperator = "operator"

var ErrInvalidToken = errors.New("invalid operator token")

// IssueOperatorToken signs an HS256 token allowing control of tableID.
func IssueOperatorToken(secret, tableID string, ttl time.Duration) (string, time.Time, error) {
	exp := time.Now().Add(ttl)
	claims := jwt.MapClaims{
		"table_id": tableID,
		"role":     roleOperator,
		"exp":      exp.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// ParseOperatorToken verifies token and returns the table it controls.
func ParseOperatorToken(secret, token string) (string, error) {
	parsed, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !parsed.Valid {
		return "", ErrInvalidToken
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	if role, _ := claims["role"].(string); role != roleOperator {
		return "", ErrInvalidToken
	}
	tableID, _ := claims["table_id"].(string)
	if tableID == "" {
		return "", ErrInvalidToken
	}
	return tableID, nil
}

// Authorize checks that token controls tableID.
func Authorize(secret, token, tableID string) error {
	id, err := ParseOperatorToken(secret, token)
	if err != nil {
		return err
	}
	if id != tableID {
		return ErrInvalidToken
	}
	return nil
}

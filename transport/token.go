package transport

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// accessExpired reports whether the access token's exp claim has passed,
// with skew subtracted so refresh starts slightly before the real
// deadline. The signature is not checked; the token is inspected only to
// avoid a guaranteed 401, and the server remains the authority. Tokens
// without a readable exp claim are treated as live so the reactive retry
// path handles them.
func accessExpired(token string, skew time.Duration, now time.Time) bool {
	if token == "" {
		return true
	}

	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !now.Add(skew).Before(exp.Time)
}

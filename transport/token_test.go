package transport

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub": "42",
		"exp": exp.Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func signedTokenNoExp(t *testing.T) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "42"}).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func TestAccessExpired(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name  string
		token string
		skew  time.Duration
		want  bool
	}{
		{"empty token", "", 0, true},
		{"expired", signedToken(t, now.Add(-time.Minute)), 0, true},
		{"live", signedToken(t, now.Add(time.Hour)), 0, false},
		{"inside skew window", signedToken(t, now.Add(20 * time.Second)), 30 * time.Second, true},
		{"outside skew window", signedToken(t, now.Add(2 * time.Minute)), 30 * time.Second, false},
		{"no exp claim", signedTokenNoExp(t), 0, false},
		{"garbage", "not.a.jwt", 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := accessExpired(tc.token, tc.skew, now); got != tc.want {
				t.Fatalf("accessExpired = %v, want %v", got, tc.want)
			}
		})
	}
}

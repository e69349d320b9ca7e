// Command devtoken mints an HS256 bearer token for calling the API locally.
//
//	go run ./cmd/devtoken --sub user_123 --email me@example.com --ttl 24h
//
// The signing key is AUTH_SECRET (from the environment or .env) unless --secret is given.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/spf13/pflag"

	"github.com/trentd187/golf-match-tracker/internal/config"
	"github.com/trentd187/golf-match-tracker/internal/middleware"
)

func main() {
	cfg := config.Load()

	sub := pflag.String("sub", "dev-user", "subject (user id) claim")
	email := pflag.String("email", "", "email claim")
	name := pflag.String("name", "Developer", "display name claim")
	ttl := pflag.Duration("ttl", 12*time.Hour, "how long the token stays valid")
	secret := pflag.String("secret", cfg.AuthSecret, "HMAC signing key")
	pflag.Parse()

	if *secret == "" {
		fmt.Fprintln(os.Stderr, "devtoken: no signing key; set AUTH_SECRET or pass --secret")
		os.Exit(1)
	}

	now := time.Now()
	claims := middleware.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   *sub,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(*ttl)),
		},
		Email: *email,
		Name:  *name,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(*secret))
	if err != nil {
		fmt.Fprintln(os.Stderr, "devtoken:", err)
		os.Exit(1)
	}
	fmt.Println(token)
}

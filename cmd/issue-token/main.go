// Command issue-token prints a bearer token for local testing.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/vladimiradmaev/farm-helper/internal/auth"
	"github.com/vladimiradmaev/farm-helper/internal/config"
)

func main() {
	subject := flag.String("user", "", "user id (random when empty)")
	ttl := flag.Duration("ttl", time.Hour, "token lifetime")
	flag.Parse()

	_ = godotenv.Load()
	cfg, err := config.Load(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if cfg.Auth.JWTSecret == "" {
		fmt.Fprintln(os.Stderr, "AUTH_JWT_SECRET is required")
		os.Exit(1)
	}

	id := uuid.New()
	if *subject != "" {
		if id, err = uuid.Parse(*subject); err != nil {
			fmt.Fprintf(os.Stderr, "invalid -user: %v\n", err)
			os.Exit(1)
		}
	}

	token, err := auth.Sign(cfg.Auth.JWTSecret, id, cfg.Auth.Audience, *ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to sign token: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "user_id: %s\n", id)
	fmt.Println(token)
}

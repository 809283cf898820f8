// Command token-generator prints a session token for the configured JWT
// secret. Operators use it to sign in a browser or to call the API from
// scripts.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/berkedogan/tasks-api/internal/config"
	"github.com/berkedogan/tasks-api/internal/service/auth"
)

func main() {
	subject := flag.String("subject", "owner", "token subject")
	flag.Parse()

	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading .env: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating JWT service: %v\n", err)
		os.Exit(1)
	}

	token, err := jwtService.GenerateToken(context.Background(), *subject)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating token for %s: %v\n", *subject, err)
		os.Exit(1)
	}

	fmt.Printf("Subject: %s\nLifetime: %d minutes\nToken: %s\n",
		*subject, cfg.Auth.TokenLifetimeMinutes, token)
}

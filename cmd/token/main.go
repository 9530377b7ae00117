package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/eventwall/photowall/internal/config"
	authsvc "github.com/eventwall/photowall/internal/services/auth"
)

func main() {
	subject := flag.String("subject", "curator", "token subject")
	role := flag.String("role", authsvc.RoleCurator, "role claim")
	ttl := flag.Duration("ttl", 0, "token lifetime (defaults to the configured auth ttl)")
	flag.Parse()

	cfgPath := os.Getenv("APP_CONFIG")
	if cfgPath == "" {
		cfgPath = "configs/config.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	lifetime := cfg.Auth.TokenTTL
	if *ttl > 0 {
		lifetime = *ttl
	}

	manager := authsvc.NewJWTManager(cfg.Auth.TokenSecret, lifetime)
	if !manager.Enabled() {
		fmt.Fprintln(os.Stderr, "AUTH_TOKEN_SECRET is empty; curator routes are open and no token is needed")
		os.Exit(1)
	}

	token, expiresAt, err := manager.GenerateToken(*subject, *role)
	if err != nil {
		fmt.Fprintf(os.Stderr, "generate token: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(token)
	fmt.Fprintf(os.Stderr, "expires at %s\n", expiresAt.Format(time.RFC3339))
}

// Package main provisions the initial administrator account.
//
// Usage:
//
//	admin -username root -email root@example.com -password secret
//
// It fails when an administrator already exists; further role changes go
// through the admin API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/vnestate/chatbot-platform/internal/auth"
	"github.com/vnestate/chatbot-platform/internal/config"
	"github.com/vnestate/chatbot-platform/internal/store"
	"github.com/vnestate/chatbot-platform/pkg/logger"
)

func main() {
	username := flag.String("username", "", "admin username")
	email := flag.String("email", "", "admin email")
	password := flag.String("password", "", "admin password")
	flag.Parse()

	if *username == "" || *email == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "usage: admin -username <name> -email <email> -password <password>")
		os.Exit(2)
	}

	cfg := config.Load()

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	users := buildUserStore(ctx, cfg, log)
	svc := auth.NewService(users, cfg.JWTSecret, cfg.JWTExpiration, log)

	user, err := svc.ProvisionAdmin(ctx, *username, *email, *password)
	if err != nil {
		if errors.Is(err, auth.ErrAdminExists) {
			fmt.Fprintln(os.Stderr, "an administrator account already exists")
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "failed to provision admin: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("admin account created: %s (%s)\n", user.Username, user.ID)
}

func buildUserStore(ctx context.Context, cfg *config.Config, log *logger.Logger) store.UserStore {
	if cfg.MongoURI != "" {
		mongo, err := store.NewMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err == nil {
			return mongo.Users()
		}
		log.Warn("MongoDB unavailable, falling back to file storage", zap.Error(err))
	}

	users, err := store.NewFileUserStore(cfg.UsersFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open user store: %v\n", err)
		os.Exit(1)
	}
	return users
}

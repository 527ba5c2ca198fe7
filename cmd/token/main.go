// Command token mints an access token signed with JWT_SECRET_KEY for local development.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/geoattend/attendance-backend-go/internal/config"
	"github.com/geoattend/attendance-backend-go/internal/domain/user"
	"github.com/geoattend/attendance-backend-go/internal/pkg/jwt"
	"github.com/google/uuid"
)

func main() {
	userID := flag.String("user", "", "user id (UUIDv7)")
	role := flag.String("role", string(user.RoleEmployee), "admin, hr or employee")
	flag.Parse()

	if _, err := uuid.Parse(*userID); err != nil {
		fmt.Fprintln(os.Stderr, "invalid -user:", err)
		os.Exit(2)
	}
	if !user.IsValidRole(*role) {
		fmt.Fprintln(os.Stderr, "invalid -role:", *role)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error loading config:", err)
		os.Exit(1)
	}

	token, expiresAt, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration).GenerateAccessToken(*userID, user.Role(*role))
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error generating token:", err)
		os.Exit(1)
	}
	fmt.Println(token)
	fmt.Fprintln(os.Stderr, "expires", time.Unix(expiresAt, 0).UTC().Format(time.RFC3339))
}

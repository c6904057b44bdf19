// Command token mints a staff bearer token for calling the SLA API.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/spec-kit/sla-service/internal/auth"
	"github.com/spec-kit/sla-service/internal/config"
	"github.com/spec-kit/sla-service/internal/persistence"
	"github.com/spec-kit/sla-service/internal/repository"
)

func main() {
	var staffID string

	app := &cli.Command{
		Name:  "token",
		Usage: "Mint a bearer token for an active staff member",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "staff",
				Aliases:     []string{"s"},
				Usage:       "staff member id",
				Required:    true,
				Destination: &staffID,
				Sources:     cli.EnvVars("SLA_TOKEN_STAFF_ID"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return mintToken(ctx, staffID)
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func mintToken(ctx context.Context, staffID string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, zap.NewNop())
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pg.Close()

	staff, err := repository.NewStaffRepository(pg.PoolHandle()).GetByID(ctx, staffID)
	if err != nil {
		return fmt.Errorf("load staff %s: %w", staffID, err)
	}
	if !staff.Active {
		return fmt.Errorf("staff %s is inactive", staffID)
	}

	token, expiresAt, err := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes).GenerateToken(staff.ID, staff.Role)
	if err != nil {
		return fmt.Errorf("sign token: %w", err)
	}
	fmt.Printf("%s\nexpires_at=%s role=%s\n", token, expiresAt.UTC().Format("2006-01-02T15:04:05Z"), staff.Role)
	return nil
}

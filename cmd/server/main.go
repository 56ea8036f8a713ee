package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/urfave/cli/v3"
)

// main exposes the server and its operational commands. Wiring lives in
// server.go; business logic lives in internal service packages.
func main() {
	cmd := &cli.Command{
		Name:  "relief",
		Usage: "Disaster relief voucher issuance service",
		Commands: []*cli.Command{
			{
				Name:  "server",
				Usage: "Start the HTTP API and background workers",
				Action: func(ctx context.Context, _ *cli.Command) error {
					return runServer(ctx)
				},
			},
			{
				Name:  "migrate",
				Usage: "Apply database migrations",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "down",
						Usage: "Roll back one migration instead of applying all pending ones",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return runMigrations(cmd.Bool("down"))
				},
			},
			{
				Name:  "fund",
				Usage: "Credit the custodial ledger account",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "amount",
						Usage:    "Amount to credit (base-10 unsigned integer)",
						Required: true,
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return runFund(ctx, cmd.String("amount"))
				},
			},
			{
				Name:  "token",
				Usage: "Mint a bearer token for a principal",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "principal",
						Aliases:  []string{"p"},
						Usage:    "Principal placed in the token subject",
						Required: true,
					},
					&cli.DurationFlag{
						Name:  "ttl",
						Value: time.Hour,
						Usage: "Token lifetime",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					token, err := runToken(cmd.String("principal"), cmd.Duration("ttl"))
					if err != nil {
						return err
					}
					fmt.Fprintln(cmd.Root().Writer, token)
					return nil
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

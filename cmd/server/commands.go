package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	jwttoken "relief/internal/jwt_token"
	"relief/internal/ledger"
	"relief/internal/platform/config"
	"relief/internal/platform/logger"
	"relief/internal/platform/postgres"
	id "relief/pkg/domain"
)

func runFund(ctx context.Context, rawAmount string) error {
	amount, err := strconv.ParseUint(rawAmount, 10, 64)
	if err != nil || amount == 0 {
		return fmt.Errorf("amount must be a positive base-10 integer: %q", rawAmount)
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.Storage.Driver != config.DriverPostgres {
		return errors.New("fund requires STORAGE_DRIVER=postgres; the in-memory ledger is seeded from ENGINE_INITIAL_FUNDS")
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format)

	pool, err := postgres.OpenPool(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer pool.Close()

	custodian, err := id.ParsePrincipal(cfg.Engine.Custodian)
	if err != nil {
		return fmt.Errorf("ENGINE_CUSTODIAN: %w", err)
	}
	l := ledger.NewPostgres(pool, custodian)
	if err := l.Fund(ctx, amount); err != nil {
		return fmt.Errorf("fund custodian: %w", err)
	}
	balance, err := l.Balance(ctx, custodian)
	if err != nil {
		return fmt.Errorf("read custodian balance: %w", err)
	}
	log.Info("custodian funded", "custodian", custodian, "amount", amount, "balance", balance)
	return nil
}

func runToken(rawPrincipal string, ttl time.Duration) (string, error) {
	cfg, err := config.Load()
	if err != nil {
		return "", err
	}
	principal, err := id.ParsePrincipal(rawPrincipal)
	if err != nil {
		return "", fmt.Errorf("principal: %w", err)
	}
	svc := jwttoken.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.JWTIssuer, cfg.Auth.JWTAudience)
	return svc.GenerateAccessToken(principal, ttl)
}

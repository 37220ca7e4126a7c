package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"wedplan/internal/backend"
	"wedplan/internal/core"
	"wedplan/internal/report"
)

type userFinder interface {
	GetUserByEmail(ctx context.Context, email string) (core.User, error)
}

func run(ctx context.Context, out io.Writer, users userFinder, svc backend.Services, email string) error {
	user, err := users.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return fmt.Errorf("find user: %w", err)
	}
	wedding, err := svc.Accounts.WeddingFor(ctx, user.ID)
	if err != nil {
		return err
	}

	var data report.Data
	if data.Dashboard, err = svc.Dashboard.Dashboard(ctx, wedding); err != nil {
		return fmt.Errorf("load dashboard: %w", err)
	}
	if data.Budget, err = svc.Budget.Overview(ctx, wedding); err != nil {
		return fmt.Errorf("load budget: %w", err)
	}
	if data.Tasks, err = svc.Tasks.Board(ctx, wedding.ID); err != nil {
		return fmt.Errorf("load tasks: %w", err)
	}
	return report.Render(out, report.Rose, data)
}

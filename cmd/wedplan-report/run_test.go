package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"wedplan/internal/backend"
	"wedplan/internal/core"
	"wedplan/internal/services"
)

func TestRun(t *testing.T) {
	ctx := context.Background()
	res, err := backend.NewFactory(nil).CreateBackend(ctx, backend.Config{Type: backend.MemoryBackend})
	if err != nil {
		t.Fatalf("create backend: %v", err)
	}
	svc := res.Services()

	_, wedding, err := svc.Accounts.Register(ctx, services.Registration{
		Name:                 "Anna",
		Email:                "anna@example.com",
		Password:             "secret-password",
		PasswordConfirmation: "secret-password",
		BrideName:            "Anna",
		GroomName:            "Marco",
		WeddingDate:          core.NewDate(2030, 5, 4),
		Budget:               core.Money{Cents: 1500000},
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.Tasks.Create(ctx, wedding.ID, core.Task{Title: "Send invitations", Priority: core.PriorityHigh}); err != nil {
		t.Fatalf("create task: %v", err)
	}

	var out bytes.Buffer
	if err := run(ctx, &out, res.Store, svc, " ANNA@example.com "); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	for _, want := range []string{"Anna & Marco", "€15,000.00", "Send invitations"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}

	if err := run(ctx, &out, res.Store, svc, "nobody@example.com"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

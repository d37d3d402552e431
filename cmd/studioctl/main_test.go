package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-envconfig"

	"github.com/lumina-ai/studio/internal/pkg/config"
	"github.com/lumina-ai/studio/pkg/logger"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"STORE_BACKEND": "memory",
		"JWT_SECRET":    "test-secret",
	}))
	if err != nil {
		t.Fatalf("LoadWith: %v", err)
	}
	return cfg
}

func TestRun_UsersListsAdmin(t *testing.T) {
	var out bytes.Buffer
	if err := run(context.Background(), testConfig(t), zerolog.Nop(), "users", nil, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out.String(), "admin@lumina.local") {
		t.Fatalf("expected admin in listing, got:\n%s", out.String())
	}
}

func TestRun_Approve_Unknown(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), testConfig(t), zerolog.Nop(), "approve", []string{"tx_missing"}, &out)
	if err == nil || !strings.Contains(err.Error(), "transaction not found") {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestRun_UnknownCommand(t *testing.T) {
	var out bytes.Buffer
	if err := run(context.Background(), testConfig(t), zerolog.Nop(), "frobnicate", nil, &out); err == nil {
		t.Fatalf("expected error for unknown command")
	}
}

func TestRun_WhoamiLoggedOut(t *testing.T) {
	var out bytes.Buffer
	if err := run(context.Background(), testConfig(t), zerolog.Nop(), "whoami", nil, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out.String(), "not logged in") {
		t.Fatalf("unexpected output: %s", out.String())
	}
}

func setTestEnv(t *testing.T) {
	t.Helper()
	t.Setenv("STORE_BACKEND", "memory")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("LOG_LEVEL", "info")
	logger.Reset()
	t.Cleanup(logger.Reset)
}

func TestRealMain_ExitCodes(t *testing.T) {
	setTestEnv(t)

	var stdout, stderr bytes.Buffer
	if code := realMain(nil, &stdout, &stderr); code != 2 {
		t.Fatalf("expected usage exit code 2, got %d", code)
	}
	if !strings.Contains(stderr.String(), "usage: studioctl") {
		t.Fatalf("expected usage text, got %s", stderr.String())
	}

	stderr.Reset()
	logger.Reset()
	if code := realMain([]string{"approve", "tx_missing"}, &stdout, &stderr); code != 1 {
		t.Fatalf("expected failure exit code 1, got %d", code)
	}
	if !strings.Contains(stderr.String(), "transaction not found") {
		t.Fatalf("expected error on stderr, got %s", stderr.String())
	}

	logger.Reset()
	if code := realMain([]string{"users"}, &stdout, &stderr); code != 0 {
		t.Fatalf("expected success, got %d", code)
	}
}

func TestRealMain_DrainsAuditEventsBeforeReturning(t *testing.T) {
	setTestEnv(t)

	var stdout, stderr bytes.Buffer
	code := realMain([]string{"signup", "-name", "Asha", "-email", "asha@example.com", "-password", "secret1"}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("signup failed with %d: %s", code, stderr.String())
	}
	logs := stderr.String()
	if !strings.Contains(logs, "ledger event") || !strings.Contains(logs, "signup_bonus") {
		t.Fatalf("signup bonus was not audited before exit:\n%s", logs)
	}
}

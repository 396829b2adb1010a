package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"kesef/internal/analytics"
	"kesef/internal/core"
	"kesef/internal/storage"
)

func newTestDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "kesef.db")
	repo, err := storage.NewSQLiteRepository(path)
	if err != nil {
		t.Fatalf("open repo: %v", err)
	}
	defer repo.Close()
	err = repo.CreateUser(context.Background(), core.User{
		ID:           "user-1",
		Name:         "Dana",
		Email:        "dana@example.com",
		PasswordHash: "x",
		CreatedAt:    time.Now(),
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return path
}

func run(t *testing.T, db string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--db", db, "--log-level", "error"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestSeedThenSummary(t *testing.T) {
	db := newTestDB(t)

	out, err := run(t, db, "seed", "--user", "user-1", "--months", "2", "--seed", "7")
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if !strings.Contains(out, "over 2 months") {
		t.Fatalf("unexpected seed output: %s", out)
	}

	out, err = run(t, db, "summary", "--user", "user-1")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	var summary analytics.Summary
	if err := json.Unmarshal([]byte(out), &summary); err != nil {
		t.Fatalf("decode summary: %v (%s)", err, out)
	}
	if summary.ExpectedIncome < 10000 || summary.ExpectedIncome > 15000 {
		t.Fatalf("expected income within salary range, got %d", summary.ExpectedIncome)
	}
	if len(summary.CategoryBudgets) == 0 {
		t.Fatal("expected category budgets after seeding")
	}
}

func TestSeedUnknownUser(t *testing.T) {
	db := newTestDB(t)
	if _, err := run(t, db, "seed", "--user", "ghost"); err == nil {
		t.Fatal("expected error for unknown user")
	}
}

func TestSeedIsReproducible(t *testing.T) {
	first, err := run(t, newTestDB(t), "seed", "--user", "user-1", "--seed", "42")
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	second, err := run(t, newTestDB(t), "seed", "--user", "user-1", "--seed", "42")
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if first != second {
		t.Fatalf("same seed gave different data:\n%s\n%s", first, second)
	}
}

func TestDetect(t *testing.T) {
	db := newTestDB(t)

	out, err := run(t, db, "detect", "--user", "user-1", "--amount", "450", "--category", "Food", "--date", "2024-03-04")
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	var v analytics.Verdict
	if err := json.Unmarshal([]byte(out), &v); err != nil {
		t.Fatalf("decode verdict: %v (%s)", err, out)
	}
	if !v.IsOutlier || v.Confidence != 0.3 {
		t.Fatalf("expected absolute-threshold outlier with confidence 0.3, got %+v", v)
	}

	if _, err := run(t, db, "detect", "--user", "user-1", "--amount=-3"); err == nil {
		t.Fatal("expected error for a negative amount")
	}
	if _, err := run(t, db, "detect", "--user", "user-1", "--amount", "3", "--date", "yesterday"); err == nil {
		t.Fatal("expected error for an invalid date")
	}
}

func TestMakeAdmin(t *testing.T) {
	db := newTestDB(t)

	out, err := run(t, db, "make-admin", "--email", "DANA@example.com")
	if err != nil {
		t.Fatalf("make-admin: %v", err)
	}
	if !strings.Contains(out, "is now an admin") {
		t.Fatalf("unexpected output: %s", out)
	}

	repo, err := storage.NewSQLiteRepository(db)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer repo.Close()
	u, err := repo.GetUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if !u.IsAdmin {
		t.Fatal("expected user to be admin")
	}

	if _, err := run(t, db, "make-admin", "--email", "nobody@example.com"); err == nil {
		t.Fatal("expected error for unknown email")
	}
}

func TestRequiredFlags(t *testing.T) {
	db := newTestDB(t)
	if _, err := run(t, db, "summary"); err == nil {
		t.Fatal("expected error when --user is missing")
	}
}

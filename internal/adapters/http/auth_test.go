package httpadapter

import (
	"os"
	"path/filepath"
	"testing"
)

func TestAuthenticateResolvesRole(t *testing.T) {
	auth := testUsers()

	role, ok := auth.Authenticate("sam", "financepass")
	if !ok || role != "finance" {
		t.Fatalf("Authenticate(sam) = %q, %v", role, ok)
	}

	if _, ok := auth.Authenticate("sam", "wrong"); ok {
		t.Fatalf("wrong password accepted")
	}
	if _, ok := auth.Authenticate("nobody", "financepass"); ok {
		t.Fatalf("unknown user accepted")
	}
}

func TestLoadUsersFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.yaml")
	content := "alice:\n  password: secret\n  role: hr\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write users file: %v", err)
	}

	auth, err := LoadUsersFile(path)
	if err != nil {
		t.Fatalf("LoadUsersFile() error = %v", err)
	}
	role, ok := auth.Authenticate("alice", "secret")
	if !ok || role != "hr" {
		t.Fatalf("Authenticate(alice) = %q, %v", role, ok)
	}
}

func TestLoadUsersFileRejectsMissingRole(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.yaml")
	content := "alice:\n  password: secret\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write users file: %v", err)
	}

	if _, err := LoadUsersFile(path); err == nil {
		t.Fatalf("expected error for user without role")
	}
}

func TestLoadUsersFileRejectsEmptyRoster(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.yaml")
	if err := os.WriteFile(path, []byte("{}\n"), 0o600); err != nil {
		t.Fatalf("write users file: %v", err)
	}

	if _, err := LoadUsersFile(path); err == nil {
		t.Fatalf("expected error for empty users file")
	}
}

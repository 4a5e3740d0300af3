package store

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func openTestStore(t *testing.T, path string) *Store {
	t.Helper()
	s, err := Open(path, testSecret)
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSetGetDelete(t *testing.T) {
	s := openTestStore(t, filepath.Join(t.TempDir(), "levo.db"))
	ctx := context.Background()

	if _, ok, err := s.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("Get(missing) = ok %v, err %v; want absent", ok, err)
	}

	if err := s.Set(ctx, "levo_tokens", []byte(`{"accessToken":"a"}`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, ok, err := s.Get(ctx, "levo_tokens")
	if err != nil || !ok {
		t.Fatalf("get: ok %v, err %v", ok, err)
	}
	if string(got) != `{"accessToken":"a"}` {
		t.Errorf("value = %q", got)
	}

	// Overwrite.
	if err := s.Set(ctx, "levo_tokens", []byte(`{"accessToken":"b"}`)); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, _, _ = s.Get(ctx, "levo_tokens")
	if string(got) != `{"accessToken":"b"}` {
		t.Errorf("value after overwrite = %q", got)
	}

	if err := s.Delete(ctx, "levo_tokens", "never_set"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := s.Get(ctx, "levo_tokens"); ok {
		t.Error("key still present after delete")
	}
}

func TestValuesAreEncryptedAtRest(t *testing.T) {
	s := openTestStore(t, filepath.Join(t.TempDir(), "levo.db"))
	ctx := context.Background()
	secret := []byte("refresh-token-value")

	if err := s.Set(ctx, "k", secret); err != nil {
		t.Fatalf("set: %v", err)
	}

	var raw []byte
	if err := s.DB().QueryRow(`SELECT value FROM secure_kv WHERE key = 'k'`).Scan(&raw); err != nil {
		t.Fatalf("raw select: %v", err)
	}
	if bytes.Contains(raw, secret) {
		t.Error("plaintext found in stored blob")
	}
}

func TestPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "levo.db")
	ctx := context.Background()

	s1, err := Open(path, testSecret)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s1.Set(ctx, "levo_user", []byte(`{"name":"Mina"}`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	s1.Close()

	s2 := openTestStore(t, path)
	got, ok, err := s2.Get(ctx, "levo_user")
	if err != nil || !ok {
		t.Fatalf("get after reopen: ok %v, err %v", ok, err)
	}
	if string(got) != `{"name":"Mina"}` {
		t.Errorf("value = %q", got)
	}
}

func TestWrongSecretFailsToDecrypt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "levo.db")
	ctx := context.Background()

	s1, err := Open(path, testSecret)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s1.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("set: %v", err)
	}
	s1.Close()

	s2, err := Open(path, []byte("another-secret-another-secret-xx"))
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()

	if _, _, err := s2.Get(ctx, "k"); err == nil {
		t.Fatal("expected decrypt error with the wrong secret")
	}
}

func TestKeys(t *testing.T) {
	s := openTestStore(t, filepath.Join(t.TempDir(), "levo.db"))
	ctx := context.Background()
	for _, k := range []string{"levo_user", "levo_profile", "levo_tokens"} {
		if err := s.Set(ctx, k, []byte("x")); err != nil {
			t.Fatalf("set %s: %v", k, err)
		}
	}

	keys, err := s.Keys(ctx)
	if err != nil {
		t.Fatalf("keys: %v", err)
	}
	want := []string{"levo_profile", "levo_tokens", "levo_user"}
	if len(keys) != len(want) {
		t.Fatalf("keys = %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("keys[%d] = %q, want %q", i, keys[i], want[i])
		}
	}
}

func TestOpenRejectsEmptySecret(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "levo.db"), nil); err == nil {
		t.Fatal("expected error for empty secret")
	}
}

func TestLoadOrCreateSecret(t *testing.T) {
	path := SecretPath(filepath.Join(t.TempDir(), "data", "levo.db"))

	first, err := LoadOrCreateSecret(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(first) != secretSize {
		t.Fatalf("secret length = %d, want %d", len(first), secretSize)
	}

	second, err := LoadOrCreateSecret(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Error("secret changed between loads")
	}
}

func TestDefaultDBPath_EnvOverride(t *testing.T) {
	want := filepath.Join(t.TempDir(), "custom", "levo.db")
	t.Setenv("LEVO_DB", want)

	got, err := DefaultDBPath()
	if err != nil {
		t.Fatalf("DefaultDBPath: %v", err)
	}
	if got != want {
		t.Errorf("path = %q, want %q", got, want)
	}
}

func TestDefaultDBPath_XDG(t *testing.T) {
	dataHome := t.TempDir()
	t.Setenv("LEVO_DB", "")
	t.Setenv("XDG_DATA_HOME", dataHome)

	got, err := DefaultDBPath()
	if err != nil {
		t.Fatalf("DefaultDBPath: %v", err)
	}
	want := filepath.Join(dataHome, "levo", "levo.db")
	if got != want {
		t.Errorf("path = %q, want %q", got, want)
	}
}

package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/google/uuid"
)

// testStore runs the behaviour every Store implementation shares.
func testStore(t *testing.T, s Store, owner string) {
	t.Helper()
	ctx := context.Background()

	if _, err := s.Load(ctx, owner, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.Save(ctx, owner, "", []byte("{}")); !errors.Is(err, ErrInvalidName) {
		t.Fatalf("expected ErrInvalidName, got %v", err)
	}

	if err := s.Save(ctx, owner, "sorc", []byte(`{"v":1}`)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.Save(ctx, owner, "amazon", []byte(`{"v":2}`)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.Save(ctx, owner, "sorc", []byte(`{"v":3}`)); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	b, err := s.Load(ctx, owner, "sorc")
	if err != nil || string(b) != `{"v":3}` {
		t.Fatalf("load: %q %v", b, err)
	}
	names, err := s.List(ctx, owner)
	if err != nil || !reflect.DeepEqual(names, []string{"amazon", "sorc"}) {
		t.Fatalf("list: %v %v", names, err)
	}
	if other, _ := s.List(ctx, owner+"-other"); len(other) != 0 {
		t.Fatalf("owners must not see each other's builds: %v", other)
	}

	if err := s.Delete(ctx, owner, "sorc"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.Delete(ctx, owner, "sorc"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
	if _, err := s.Load(ctx, owner, "sorc"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("deleted build still loads: %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	testStore(t, NewMemory(), "player-1")
}

func TestMemoryStoreCopiesData(t *testing.T) {
	s := NewMemory()
	data := []byte("abc")
	s.Save(context.Background(), "p", "b", data)
	data[0] = 'x'
	b, _ := s.Load(context.Background(), "p", "b")
	if string(b) != "abc" {
		t.Fatalf("store must keep its own copy, got %q", b)
	}
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "builds.db")
	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	testStore(t, s, "player-1")
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	b, err := reopened.Load(context.Background(), "player-1", "amazon")
	if err != nil || string(b) != `{"v":2}` {
		t.Fatalf("build lost across reopen: %q %v", b, err)
	}
}

func TestSQLiteRequiresPath(t *testing.T) {
	if _, err := OpenSQLite("  "); err == nil {
		t.Fatalf("expected an error for an empty path")
	}
}

func TestUpSection(t *testing.T) {
	got := upSection("-- +migrate Up\nCREATE TABLE a (x);\n-- +migrate Down\nDROP TABLE a;\n")
	if got != "\nCREATE TABLE a (x);\n" {
		t.Fatalf("unexpected up section %q", got)
	}
	if got := upSection("CREATE TABLE b (y);"); got != "CREATE TABLE b (y);" {
		t.Fatalf("files without markers run whole, got %q", got)
	}
}

func TestRedisKeyLayout(t *testing.T) {
	r := NewRedis(nil)
	if got := r.key("42"); got != "buildplanner:builds:42" {
		t.Fatalf("unexpected key %q", got)
	}
	r = NewRedis(nil, WithRedisPrefix("test:"))
	if got := r.key("42"); got != "test:42" {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("BUILDPLANNER_TEST_REDIS")
	if addr == "" {
		t.Skip("BUILDPLANNER_TEST_REDIS not set")
	}
	s, err := OpenRedis(addr, WithRedisPrefix("buildplanner-test:"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()
	testStore(t, s, uuid.NewString())
}

func TestOpenUnknownDriver(t *testing.T) {
	if _, err := Open("postgres", ""); err == nil {
		t.Fatalf("expected an error for an unknown driver")
	}
	s, err := Open("memory", "")
	if err != nil {
		t.Fatalf("memory: %v", err)
	}
	if _, ok := s.(*Memory); !ok {
		t.Fatalf("expected a memory store, got %T", s)
	}
}

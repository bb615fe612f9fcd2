package repository

import (
	"errors"
	"path/filepath"
	"sort"
	"testing"

	"github.com/user/movierec/internal/model"
)

func newUserStore(t *testing.T) *UserStore {
	t.Helper()
	s := NewUserStore(filepath.Join(t.TempDir(), "movie_users.csv"))
	if err := s.Load(); err != nil {
		t.Fatalf("load empty store: %v", err)
	}
	return s
}

func TestUserStore_MissingFileIsZeroUsers(t *testing.T) {
	s := NewUserStore(filepath.Join(t.TempDir(), "nope.csv"))
	if err := s.Load(); err != nil {
		t.Fatalf("missing file should not be an error, got %v", err)
	}
	if s.Count() != 0 {
		t.Fatalf("count = %d, want 0", s.Count())
	}
}

func TestUserStore_AppendAndRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "movie_users.csv")
	s := NewUserStore(path)
	if err := s.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}

	users := []model.User{
		{Username: "alice", PasswordHash: "h1", Role: model.RoleUser},
		{Username: "철수", PasswordHash: "h2", Role: model.RoleUser},
		{Username: "bob", PasswordHash: "h3", Role: model.RoleAdmin},
	}
	for _, u := range users {
		if err := s.Append(u); err != nil {
			t.Fatalf("append %s: %v", u.Username, err)
		}
	}

	// 重新加载后记录集合应完全一致（顺序不敏感）
	reloaded := NewUserStore(path)
	if err := reloaded.Load(); err != nil {
		t.Fatalf("reload: %v", err)
	}
	got := reloaded.ListAll()
	if len(got) != len(users) {
		t.Fatalf("reloaded %d users, want %d", len(got), len(users))
	}

	sort.Slice(got, func(i, j int) bool { return got[i].Username < got[j].Username })
	want := append([]model.User(nil), users...)
	sort.Slice(want, func(i, j int) bool { return want[i].Username < want[j].Username })
	for i := range want {
		if got[i].Username != want[i].Username ||
			got[i].PasswordHash != want[i].PasswordHash ||
			got[i].Role != want[i].Role {
			t.Fatalf("user %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestUserStore_DuplicateUsername(t *testing.T) {
	s := newUserStore(t)

	if err := s.Append(model.User{Username: "alice", PasswordHash: "h1", Role: model.RoleUser}); err != nil {
		t.Fatalf("first append: %v", err)
	}
	err := s.Append(model.User{Username: "alice", PasswordHash: "h2", Role: model.RoleUser})
	if !errors.Is(err, model.ErrDuplicateUsername) {
		t.Fatalf("err = %v, want ErrDuplicateUsername", err)
	}

	// 失败的注册不能改动表
	if s.Count() != 1 {
		t.Fatalf("count = %d, want 1", s.Count())
	}
	u, ok := s.FindByUsername("alice")
	if !ok || u.PasswordHash != "h1" {
		t.Fatalf("stored hash changed: %+v", u)
	}
}

func TestUserStore_CaseSensitiveLookup(t *testing.T) {
	s := newUserStore(t)
	if err := s.Append(model.User{Username: "Alice", PasswordHash: "h", Role: model.RoleUser}); err != nil {
		t.Fatalf("append: %v", err)
	}

	if _, ok := s.FindByUsername("alice"); ok {
		t.Fatalf("lookup must be case sensitive")
	}
	// 大小写不同的用户名是两个用户
	if err := s.Append(model.User{Username: "alice", PasswordHash: "h", Role: model.RoleUser}); err != nil {
		t.Fatalf("append lowercase variant: %v", err)
	}
}

func TestUserStore_UpdatePasswordAndDelete(t *testing.T) {
	s := newUserStore(t)
	if err := s.Append(model.User{Username: "alice", PasswordHash: "old", Role: model.RoleUser}); err != nil {
		t.Fatalf("append: %v", err)
	}

	if err := s.UpdatePasswordHash("alice", "new"); err != nil {
		t.Fatalf("update password: %v", err)
	}
	u, _ := s.FindByUsername("alice")
	if u.PasswordHash != "new" {
		t.Fatalf("hash = %s, want new", u.PasswordHash)
	}

	if err := s.UpdatePasswordHash("ghost", "x"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("update unknown user: %v, want ErrNotFound", err)
	}

	if err := s.Delete("alice"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := s.FindByUsername("alice"); ok {
		t.Fatalf("user still present after delete")
	}
	if err := s.Delete("alice"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("second delete: %v, want ErrNotFound", err)
	}
}

func TestUserStore_LegacyColumns(t *testing.T) {
	// 最早版本的文件只有 username/password 两列，没有 role
	path := filepath.Join(t.TempDir(), "legacy.csv")
	if err := writeTable(path, []string{" Username ", "PASSWORD"}, [][]string{
		{"alice", "hash1"},
	}); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	s := NewUserStore(path)
	if err := s.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}

	u, ok := s.FindByUsername("alice")
	if !ok {
		t.Fatalf("alice not loaded")
	}
	if u.PasswordHash != "hash1" {
		t.Fatalf("hash = %q, want hash1", u.PasswordHash)
	}
	if u.Role != model.RoleUser {
		t.Fatalf("role = %q, want default user", u.Role)
	}
}

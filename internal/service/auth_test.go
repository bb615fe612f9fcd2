package service

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/user/movierec/internal/model"
	"github.com/user/movierec/internal/repository"
)

func newAuthEnv(t *testing.T) (*AuthService, *repository.UserStore) {
	t.Helper()
	users := repository.NewUserStore(filepath.Join(t.TempDir(), "movie_users.csv"))
	if err := users.Load(); err != nil {
		t.Fatalf("load user store: %v", err)
	}
	return NewAuthService(users, "admin", "admin1234"), users
}

func TestHashPassword(t *testing.T) {
	// 无盐单轮 SHA-256 十六进制摘要，必须与存量文件格式完全一致
	got := HashPassword("password")
	want := "5e884898da28047151d0e56f8dc6292773603d0d6aabbdd62a11ef721d1542d8"
	if got != want {
		t.Fatalf("HashPassword = %s, want %s", got, want)
	}
	if HashPassword("password") != got {
		t.Fatalf("hash must be deterministic")
	}
}

func TestAuthService_RegisterDuplicate(t *testing.T) {
	auth, users := newAuthEnv(t)

	if err := auth.Register("alice", "secret1"); err != nil {
		t.Fatalf("first register: %v", err)
	}
	err := auth.Register("alice", "other-password")
	if !errors.Is(err, model.ErrDuplicateUsername) {
		t.Fatalf("err = %v, want ErrDuplicateUsername", err)
	}

	// 重复注册不能改动表
	if users.Count() != 1 {
		t.Fatalf("count = %d, want 1", users.Count())
	}
	if _, err := auth.Authenticate("alice", "secret1"); err != nil {
		t.Fatalf("original credentials broken: %v", err)
	}
}

func TestAuthService_RegisterAdminNameRejected(t *testing.T) {
	auth, _ := newAuthEnv(t)

	if err := auth.Register("admin", "whatever"); !errors.Is(err, model.ErrDuplicateUsername) {
		t.Fatalf("registering the built-in admin name: %v, want ErrDuplicateUsername", err)
	}
}

func TestAuthService_Authenticate(t *testing.T) {
	auth, _ := newAuthEnv(t)
	if err := auth.Register("alice", "secret1"); err != nil {
		t.Fatalf("register: %v", err)
	}

	sess, err := auth.Authenticate("alice", "secret1")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if sess.Username != "alice" || sess.Role != model.RoleUser {
		t.Fatalf("session = %+v", sess)
	}

	cases := []struct {
		name     string
		username string
		password string
	}{
		{"密码错误", "alice", "wrong"},
		{"用户不存在", "ghost", "secret1"},
		{"用户名大小写不匹配", "Alice", "secret1"},
		{"管理员密码错误", "admin", "wrong"},
	}
	for _, tc := range cases {
		if _, err := auth.Authenticate(tc.username, tc.password); !errors.Is(err, model.ErrInvalidCredentials) {
			t.Fatalf("%s: err = %v, want ErrInvalidCredentials", tc.name, err)
		}
	}
}

func TestAuthService_AdminCredentialBypassesStore(t *testing.T) {
	auth, users := newAuthEnv(t)

	sess, err := auth.Authenticate("admin", "admin1234")
	if err != nil {
		t.Fatalf("admin authenticate: %v", err)
	}
	if !sess.IsAdmin() {
		t.Fatalf("session role = %s, want admin", sess.Role)
	}
	// 内置管理员不是用户表里的记录
	if users.Count() != 0 {
		t.Fatalf("admin login must not touch the user store")
	}
}

func TestAuthService_ChangePassword(t *testing.T) {
	auth, _ := newAuthEnv(t)
	if err := auth.Register("alice", "oldpass"); err != nil {
		t.Fatalf("register: %v", err)
	}
	sess, err := auth.Authenticate("alice", "oldpass")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}

	if err := auth.ChangePassword(sess, "newpass"); err != nil {
		t.Fatalf("change password: %v", err)
	}

	// 旧密码随即失效，新密码生效
	if _, err := auth.Authenticate("alice", "oldpass"); !errors.Is(err, model.ErrInvalidCredentials) {
		t.Fatalf("old password still works: %v", err)
	}
	if _, err := auth.Authenticate("alice", "newpass"); err != nil {
		t.Fatalf("new password rejected: %v", err)
	}

	// 没有会话不能改密码
	if err := auth.ChangePassword(nil, "x"); !errors.Is(err, model.ErrNotAuthenticated) {
		t.Fatalf("nil session: %v, want ErrNotAuthenticated", err)
	}
}

func TestAuthService_DeleteUser(t *testing.T) {
	auth, users := newAuthEnv(t)
	if err := auth.Register("alice", "secret1"); err != nil {
		t.Fatalf("register: %v", err)
	}

	userSess := &model.Session{Username: "alice", Role: model.RoleUser}
	if err := auth.DeleteUser(userSess, "alice"); !errors.Is(err, model.ErrUnauthorized) {
		t.Fatalf("non-admin delete: %v, want ErrUnauthorized", err)
	}

	adminSess, err := auth.Authenticate("admin", "admin1234")
	if err != nil {
		t.Fatalf("admin login: %v", err)
	}
	if err := auth.DeleteUser(adminSess, "alice"); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
	if users.Count() != 0 {
		t.Fatalf("user not removed")
	}
	if _, err := auth.Authenticate("alice", "secret1"); !errors.Is(err, model.ErrInvalidCredentials) {
		t.Fatalf("deleted user can still log in: %v", err)
	}

	if err := auth.DeleteUser(adminSess, "ghost"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("delete unknown user: %v, want ErrNotFound", err)
	}
}

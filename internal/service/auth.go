package service

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/user/movierec/internal/model"
	"github.com/user/movierec/internal/repository"
)

// AuthService 认证服务
//
// 内置管理员凭据不落在用户表里，认证时先于用户表检查，
// 命中即返回 admin 会话。这一优先级沿用旧系统的行为。
type AuthService struct {
	users         *repository.UserStore
	adminUsername string
	adminPassword string
}

// NewAuthService 创建认证服务
func NewAuthService(users *repository.UserStore, adminUsername, adminPassword string) *AuthService {
	return &AuthService{
		users:         users,
		adminUsername: adminUsername,
		adminPassword: adminPassword,
	}
}

// HashPassword 计算密码哈希
//
// 无盐单轮 SHA-256 十六进制摘要。强度不够是已知缺陷，
// 但存量用户文件里存的就是这个格式，换算法会把所有老账号锁在门外。
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// Register 注册新用户，用户名重复（区分大小写精确匹配）返回 ErrDuplicateUsername
func (s *AuthService) Register(username, password string) error {
	// 用户名不能与内置管理员冲突
	if username == s.adminUsername {
		return model.ErrDuplicateUsername
	}

	return s.users.Append(model.User{
		Username:     username,
		PasswordHash: HashPassword(password),
		Role:         model.RoleUser,
		CreatedAt:    time.Now(),
	})
}

// Authenticate 校验凭据并创建会话
//
// 先比对内置管理员凭据，再查用户表；两者都不命中返回 ErrInvalidCredentials。
func (s *AuthService) Authenticate(username, password string) (*model.Session, error) {
	if s.adminUsername != "" && username == s.adminUsername && password == s.adminPassword {
		return &model.Session{Username: username, Role: model.RoleAdmin}, nil
	}

	user, ok := s.users.FindByUsername(username)
	if !ok || user.PasswordHash != HashPassword(password) {
		return nil, model.ErrInvalidCredentials
	}

	return &model.Session{Username: user.Username, Role: user.Role}, nil
}

// ChangePassword 修改当前会话用户的密码
func (s *AuthService) ChangePassword(session *model.Session, newPassword string) error {
	if session == nil || session.Username == "" {
		return model.ErrNotAuthenticated
	}
	return s.users.UpdatePasswordHash(session.Username, HashPassword(newPassword))
}

// DeleteUser 管理员删除用户（硬删除，连同记录一起移除）
func (s *AuthService) DeleteUser(adminSession *model.Session, target string) error {
	if !adminSession.IsAdmin() {
		return model.ErrUnauthorized
	}
	return s.users.Delete(target)
}

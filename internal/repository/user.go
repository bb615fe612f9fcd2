package repository

import (
	"errors"
	"io/fs"
	"sync"

	"github.com/user/movierec/internal/model"
)

// UserStore 用户表（CSV 全量读写）
//
// 整张表常驻内存，每次变更后立即全量写回文件，没有事务也没有
// 多进程保护，后写者静默覆盖先写者。这是沿用旧系统的既定行为。
type UserStore struct {
	path string

	mu    sync.RWMutex
	users []model.User
}

// NewUserStore 创建用户表
func NewUserStore(path string) *UserStore {
	return &UserStore{path: path}
}

// Load 从文件加载全部用户，文件不存在视为零用户
func (s *UserStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	header, rows, err := readTable(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.users = nil
		return nil
	}
	if err != nil {
		return err
	}

	cols := normalizeColumns(header)
	users := make([]model.User, 0, len(rows))
	for _, row := range rows {
		u := model.User{
			Username:     field(row, cols, "username"),
			PasswordHash: field(row, cols, "password_hash"),
			Role:         field(row, cols, "role"),
		}
		// 旧文件没有 role 列，缺省按普通用户处理
		if u.Role == "" {
			u.Role = model.RoleUser
		}
		// 兼容最早版本的列名
		if u.PasswordHash == "" {
			u.PasswordHash = field(row, cols, "password")
		}
		if u.Username == "" {
			continue
		}
		users = append(users, u)
	}

	s.users = users
	return nil
}

// saveLocked 全量写回文件，调用方必须持有写锁
func (s *UserStore) saveLocked() error {
	rows := make([][]string, 0, len(s.users))
	for _, u := range s.users {
		rows = append(rows, []string{u.Username, u.PasswordHash, u.Role})
	}
	return writeTable(s.path, []string{"username", "password_hash", "role"}, rows)
}

// FindByUsername 按用户名精确查找（区分大小写）
func (s *UserStore) FindByUsername(username string) (*model.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.users {
		if s.users[i].Username == username {
			u := s.users[i]
			return &u, true
		}
	}
	return nil, false
}

// Append 追加用户并写回，用户名重复返回 ErrDuplicateUsername
func (s *UserStore) Append(u model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.users {
		if s.users[i].Username == u.Username {
			return model.ErrDuplicateUsername
		}
	}

	s.users = append(s.users, u)
	if err := s.saveLocked(); err != nil {
		// 写回失败时回滚内存副本，保持表与文件一致
		s.users = s.users[:len(s.users)-1]
		return err
	}
	return nil
}

// UpdatePasswordHash 覆盖指定用户的密码哈希并写回
func (s *UserStore) UpdatePasswordHash(username, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.users {
		if s.users[i].Username == username {
			old := s.users[i].PasswordHash
			s.users[i].PasswordHash = hash
			if err := s.saveLocked(); err != nil {
				s.users[i].PasswordHash = old
				return err
			}
			return nil
		}
	}
	return model.ErrNotFound
}

// Delete 删除用户并写回
func (s *UserStore) Delete(username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.users {
		if s.users[i].Username == username {
			removed := s.users[i]
			s.users = append(s.users[:i], s.users[i+1:]...)
			if err := s.saveLocked(); err != nil {
				s.users = append(s.users[:i], append([]model.User{removed}, s.users[i:]...)...)
				return err
			}
			return nil
		}
	}
	return model.ErrNotFound
}

// ListAll 获取所有用户列表
func (s *UserStore) ListAll() []model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.User, len(s.users))
	copy(out, s.users)
	return out
}

// Count 获取用户总数
func (s *UserStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

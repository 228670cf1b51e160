package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/taskhive/go-tasks/models"
)

// Memory là implementation của Store trong bộ nhớ, giữ nguyên thứ tự chèn.
// Dùng cho test và chạy thử, không dùng trong production.
type Memory struct {
	mu         sync.Mutex
	nextUserID int64
	lastTime   time.Time
	users      []*models.User
	tokens     map[int64][]string
	tasks      []*models.Task
}

func NewMemory() *Memory {
	return &Memory{tokens: make(map[int64][]string)}
}

func (m *Memory) CreateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Email == user.Email {
			return ErrDuplicateEmail
		}
	}

	m.nextUserID++
	user.ID = m.nextUserID
	user.CreatedAt = m.now()
	user.UpdatedAt = user.CreatedAt

	stored := *user
	m.users = append(m.users, &stored)
	return nil
}

func (m *Memory) UserByID(_ context.Context, id int64) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u := m.findUser(id)
	if u == nil {
		return nil, ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (m *Memory) UserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) UpdateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Email == user.Email && u.ID != user.ID {
			return ErrDuplicateEmail
		}
	}

	u := m.findUser(user.ID)
	if u == nil {
		return ErrNotFound
	}

	u.Name = user.Name
	u.Email = user.Email
	u.Password = user.Password
	u.UpdatedAt = m.now()
	user.UpdatedAt = u.UpdatedAt
	return nil
}

func (m *Memory) DeleteUser(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := -1
	for i, u := range m.users {
		if u.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return ErrNotFound
	}

	// Cascade: xóa task và token trước, rồi mới xóa user
	remaining := m.tasks[:0]
	for _, t := range m.tasks {
		if t.OwnerID != id {
			remaining = append(remaining, t)
		}
	}
	m.tasks = remaining
	delete(m.tokens, id)
	m.users = append(m.users[:idx], m.users[idx+1:]...)
	return nil
}

func (m *Memory) AddToken(_ context.Context, userID int64, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[userID] = append(m.tokens[userID], token)
	return nil
}

func (m *Memory) HasToken(_ context.Context, userID int64, token string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tokens[userID] {
		if t == token {
			return true, nil
		}
	}
	return false, nil
}

func (m *Memory) RemoveToken(_ context.Context, userID int64, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	tokens := m.tokens[userID]
	for i, t := range tokens {
		if t == token {
			m.tokens[userID] = append(tokens[:i], tokens[i+1:]...)
			break
		}
	}
	return nil
}

func (m *Memory) RemoveAllTokens(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tokens, userID)
	return nil
}

func (m *Memory) Tokens(_ context.Context, userID int64) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string{}, m.tokens[userID]...), nil
}

func (m *Memory) SaveAvatar(_ context.Context, userID int64, avatar []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u := m.findUser(userID)
	if u == nil {
		return ErrNotFound
	}
	u.Avatar = append([]byte{}, avatar...)
	u.UpdatedAt = m.now()
	return nil
}

func (m *Memory) DeleteAvatar(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u := m.findUser(userID)
	if u == nil {
		return ErrNotFound
	}
	u.Avatar = nil
	u.UpdatedAt = m.now()
	return nil
}

func (m *Memory) Avatar(_ context.Context, userID int64) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u := m.findUser(userID)
	if u == nil || len(u.Avatar) == 0 {
		return nil, ErrNotFound
	}
	return append([]byte{}, u.Avatar...), nil
}

func (m *Memory) CreateTask(_ context.Context, task *models.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	task.CreatedAt = m.now()
	task.UpdatedAt = task.CreatedAt

	stored := *task
	m.tasks = append(m.tasks, &stored)
	return nil
}

func (m *Memory) TaskByID(_ context.Context, id string, ownerID int64) (*models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t := m.findTask(id, ownerID)
	if t == nil {
		return nil, ErrNotFound
	}
	copied := *t
	return &copied, nil
}

func (m *Memory) UpdateTask(_ context.Context, task *models.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t := m.findTask(task.ID, task.OwnerID)
	if t == nil {
		return ErrNotFound
	}

	t.Description = task.Description
	t.Completed = task.Completed
	t.UpdatedAt = m.now()
	task.UpdatedAt = t.UpdatedAt
	return nil
}

func (m *Memory) DeleteTask(_ context.Context, id string, ownerID int64) (*models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, t := range m.tasks {
		if t.ID == id && t.OwnerID == ownerID {
			copied := *t
			m.tasks = append(m.tasks[:i], m.tasks[i+1:]...)
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) Tasks(_ context.Context, ownerID int64, filter TaskFilter) ([]models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tasks := []models.Task{}
	for _, t := range m.tasks {
		if t.OwnerID != ownerID {
			continue
		}
		if filter.Completed != nil && t.Completed != *filter.Completed {
			continue
		}
		tasks = append(tasks, *t)
	}

	switch filter.SortBy {
	case "completed":
		sort.SliceStable(tasks, func(i, j int) bool {
			if filter.Desc {
				return tasks[i].Completed && !tasks[j].Completed
			}
			return !tasks[i].Completed && tasks[j].Completed
		})
	case "createdAt":
		sort.SliceStable(tasks, func(i, j int) bool {
			if filter.Desc {
				return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
			}
			return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
		})
	}

	if filter.Skip > 0 {
		if filter.Skip >= len(tasks) {
			return []models.Task{}, nil
		}
		tasks = tasks[filter.Skip:]
	}
	if filter.Limit > 0 && filter.Limit < len(tasks) {
		tasks = tasks[:filter.Limit]
	}
	return tasks, nil
}

// now trả về timestamp tăng nghiêm ngặt để thứ tự tạo luôn phân biệt được.
// Gọi khi đã giữ mutex.
func (m *Memory) now() time.Time {
	t := time.Now()
	if !t.After(m.lastTime) {
		t = m.lastTime.Add(time.Nanosecond)
	}
	m.lastTime = t
	return t
}

func (m *Memory) findUser(id int64) *models.User {
	for _, u := range m.users {
		if u.ID == id {
			return u
		}
	}
	return nil
}

func (m *Memory) findTask(id string, ownerID int64) *models.Task {
	for _, t := range m.tasks {
		if t.ID == id && t.OwnerID == ownerID {
			return t
		}
	}
	return nil
}

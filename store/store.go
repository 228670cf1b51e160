package store

import (
	"context"
	"errors"

	"github.com/taskhive/go-tasks/models"
)

var (
	// ErrNotFound được trả về khi resource không tồn tại hoặc không thuộc
	// về user đang truy vấn. Hai trường hợp này không được phân biệt.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateEmail được trả về khi email đã được đăng ký
	ErrDuplicateEmail = errors.New("email already in use")
)

// TaskFilter mô tả các tham số lọc, phân trang và sắp xếp cho danh sách task
type TaskFilter struct {
	Completed *bool
	Limit     int
	Skip      int
	SortBy    string // "createdAt" hoặc "completed"
	Desc      bool
}

// Users quản lý người dùng, danh sách token và avatar của họ
type Users interface {
	CreateUser(ctx context.Context, user *models.User) error
	UserByID(ctx context.Context, id int64) (*models.User, error)
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error

	// DeleteUser xóa user cùng toàn bộ task và token của họ trong một
	// transaction duy nhất
	DeleteUser(ctx context.Context, id int64) error

	AddToken(ctx context.Context, userID int64, token string) error
	HasToken(ctx context.Context, userID int64, token string) (bool, error)
	RemoveToken(ctx context.Context, userID int64, token string) error
	RemoveAllTokens(ctx context.Context, userID int64) error
	Tokens(ctx context.Context, userID int64) ([]string, error)

	SaveAvatar(ctx context.Context, userID int64, avatar []byte) error
	DeleteAvatar(ctx context.Context, userID int64) error
	Avatar(ctx context.Context, userID int64) ([]byte, error)
}

// Tasks quản lý task, mọi truy vấn đều giới hạn theo chủ sở hữu
type Tasks interface {
	CreateTask(ctx context.Context, task *models.Task) error
	TaskByID(ctx context.Context, id string, ownerID int64) (*models.Task, error)
	UpdateTask(ctx context.Context, task *models.Task) error
	DeleteTask(ctx context.Context, id string, ownerID int64) (*models.Task, error)
	Tasks(ctx context.Context, ownerID int64, filter TaskFilter) ([]models.Task, error)
}

// Store gộp tất cả các thao tác lưu trữ
type Store interface {
	Users
	Tasks
}

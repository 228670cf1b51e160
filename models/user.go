package models

import "time"

// User là cấu trúc dữ liệu của một người dùng.
// Password, Avatar và Tokens không bao giờ được trả về trong JSON.
type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Avatar    []byte    `json:"-"`
	Tokens    []string  `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/taskhive/go-tasks/models"
)

// uniqueViolation là mã lỗi PostgreSQL khi vi phạm ràng buộc UNIQUE
const uniqueViolation = "23505"

// Postgres là implementation của Store trên PostgreSQL
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) CreateUser(ctx context.Context, user *models.User) error {
	err := p.db.QueryRowContext(ctx,
		"INSERT INTO users (name, email, password) VALUES ($1, $2, $3) RETURNING id, created_at, updated_at",
		user.Name, user.Email, user.Password,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicateEmail
	}
	return err
}

func (p *Postgres) UserByID(ctx context.Context, id int64) (*models.User, error) {
	return p.scanUser(p.db.QueryRowContext(ctx,
		"SELECT id, name, email, password, created_at, updated_at FROM users WHERE id = $1", id,
	))
}

func (p *Postgres) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	return p.scanUser(p.db.QueryRowContext(ctx,
		"SELECT id, name, email, password, created_at, updated_at FROM users WHERE email = $1", email,
	))
}

func (p *Postgres) UpdateUser(ctx context.Context, user *models.User) error {
	err := p.db.QueryRowContext(ctx,
		"UPDATE users SET name=$1, email=$2, password=$3, updated_at=NOW() WHERE id=$4 RETURNING updated_at",
		user.Name, user.Email, user.Password, user.ID,
	).Scan(&user.UpdatedAt)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if isUniqueViolation(err) {
		return ErrDuplicateEmail
	}
	return err
}

// DeleteUser xóa task, token rồi tới user trong một transaction duy nhất.
// Cascade được thực hiện tường minh, không dựa vào trigger của database.
func (p *Postgres) DeleteUser(ctx context.Context, id int64) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM tasks WHERE owner_id = $1", id); err != nil {
		return fmt.Errorf("failed to delete tasks: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM tokens WHERE user_id = $1", id); err != nil {
		return fmt.Errorf("failed to delete tokens: %w", err)
	}

	res, err := tx.ExecContext(ctx, "DELETE FROM users WHERE id = $1", id)
	if err != nil {
		return err
	}
	if count, _ := res.RowsAffected(); count == 0 {
		return ErrNotFound
	}

	return tx.Commit()
}

func (p *Postgres) AddToken(ctx context.Context, userID int64, token string) error {
	_, err := p.db.ExecContext(ctx,
		"INSERT INTO tokens (user_id, token) VALUES ($1, $2)", userID, token)
	return err
}

func (p *Postgres) HasToken(ctx context.Context, userID int64, token string) (bool, error) {
	var exists bool
	err := p.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM tokens WHERE user_id=$1 AND token=$2)", userID, token,
	).Scan(&exists)
	return exists, err
}

func (p *Postgres) RemoveToken(ctx context.Context, userID int64, token string) error {
	_, err := p.db.ExecContext(ctx,
		"DELETE FROM tokens WHERE user_id=$1 AND token=$2", userID, token)
	return err
}

func (p *Postgres) RemoveAllTokens(ctx context.Context, userID int64) error {
	_, err := p.db.ExecContext(ctx, "DELETE FROM tokens WHERE user_id=$1", userID)
	return err
}

func (p *Postgres) Tokens(ctx context.Context, userID int64) ([]string, error) {
	rows, err := p.db.QueryContext(ctx,
		"SELECT token FROM tokens WHERE user_id=$1 ORDER BY id", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tokens := []string{}
	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			return nil, err
		}
		tokens = append(tokens, token)
	}
	return tokens, rows.Err()
}

func (p *Postgres) SaveAvatar(ctx context.Context, userID int64, avatar []byte) error {
	res, err := p.db.ExecContext(ctx,
		"UPDATE users SET avatar=$1, updated_at=NOW() WHERE id=$2", avatar, userID)
	if err != nil {
		return err
	}
	if count, _ := res.RowsAffected(); count == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) DeleteAvatar(ctx context.Context, userID int64) error {
	res, err := p.db.ExecContext(ctx,
		"UPDATE users SET avatar=NULL, updated_at=NOW() WHERE id=$1", userID)
	if err != nil {
		return err
	}
	if count, _ := res.RowsAffected(); count == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) Avatar(ctx context.Context, userID int64) ([]byte, error) {
	var avatar []byte
	err := p.db.QueryRowContext(ctx,
		"SELECT avatar FROM users WHERE id=$1", userID).Scan(&avatar)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if len(avatar) == 0 {
		return nil, ErrNotFound
	}
	return avatar, nil
}

func (p *Postgres) CreateTask(ctx context.Context, task *models.Task) error {
	return p.db.QueryRowContext(ctx,
		"INSERT INTO tasks (id, description, completed, owner_id) VALUES ($1, $2, $3, $4) RETURNING created_at, updated_at",
		task.ID, task.Description, task.Completed, task.OwnerID,
	).Scan(&task.CreatedAt, &task.UpdatedAt)
}

func (p *Postgres) TaskByID(ctx context.Context, id string, ownerID int64) (*models.Task, error) {
	return p.scanTask(p.db.QueryRowContext(ctx,
		"SELECT id, description, completed, owner_id, created_at, updated_at FROM tasks WHERE id=$1 AND owner_id=$2",
		id, ownerID,
	))
}

func (p *Postgres) UpdateTask(ctx context.Context, task *models.Task) error {
	err := p.db.QueryRowContext(ctx,
		"UPDATE tasks SET description=$1, completed=$2, updated_at=NOW() WHERE id=$3 AND owner_id=$4 RETURNING updated_at",
		task.Description, task.Completed, task.ID, task.OwnerID,
	).Scan(&task.UpdatedAt)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	return err
}

func (p *Postgres) DeleteTask(ctx context.Context, id string, ownerID int64) (*models.Task, error) {
	task, err := p.scanTask(p.db.QueryRowContext(ctx,
		"DELETE FROM tasks WHERE id=$1 AND owner_id=$2 RETURNING id, description, completed, owner_id, created_at, updated_at",
		id, ownerID,
	))
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (p *Postgres) Tasks(ctx context.Context, ownerID int64, filter TaskFilter) ([]models.Task, error) {
	query := "SELECT id, description, completed, owner_id, created_at, updated_at FROM tasks WHERE owner_id=$1"
	args := []interface{}{ownerID}

	if filter.Completed != nil {
		args = append(args, *filter.Completed)
		query += " AND completed=$" + strconv.Itoa(len(args))
	}

	switch filter.SortBy {
	case "completed":
		query += " ORDER BY completed"
	default:
		query += " ORDER BY created_at"
	}
	if filter.Desc {
		query += " DESC"
	}
	// Thứ tự phụ theo khóa chính để kết quả ổn định
	query += ", id"

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += " LIMIT $" + strconv.Itoa(len(args))
	}
	if filter.Skip > 0 {
		args = append(args, filter.Skip)
		query += " OFFSET $" + strconv.Itoa(len(args))
	}

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		var task models.Task
		if err := rows.Scan(&task.ID, &task.Description, &task.Completed, &task.OwnerID, &task.CreatedAt, &task.UpdatedAt); err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

func (p *Postgres) scanUser(row *sql.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.Password, &user.CreatedAt, &user.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (p *Postgres) scanTask(row *sql.Row) (*models.Task, error) {
	var task models.Task
	err := row.Scan(&task.ID, &task.Description, &task.Completed, &task.OwnerID, &task.CreatedAt, &task.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

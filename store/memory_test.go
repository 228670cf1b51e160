package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskhive/go-tasks/models"
)

func seedUser(t *testing.T, m *Memory, email string) *models.User {
	t.Helper()
	user := &models.User{Name: "Isao", Email: email, Password: "hashed"}
	require.NoError(t, m.CreateUser(context.Background(), user))
	return user
}

func seedTask(t *testing.T, m *Memory, id string, ownerID int64, completed bool) {
	t.Helper()
	task := &models.Task{ID: id, Description: "task " + id, Completed: completed, OwnerID: ownerID}
	require.NoError(t, m.CreateTask(context.Background(), task))
}

func TestMemoryDuplicateEmail(t *testing.T) {
	t.Parallel()
	m := NewMemory()
	ctx := context.Background()

	seedUser(t, m, "isao@ii.oo")

	err := m.CreateUser(ctx, &models.User{Name: "Other", Email: "isao@ii.oo", Password: "hashed"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestMemoryTokens(t *testing.T) {
	t.Parallel()
	m := NewMemory()
	ctx := context.Background()

	user := seedUser(t, m, "isao@ii.oo")

	require.NoError(t, m.AddToken(ctx, user.ID, "first"))
	require.NoError(t, m.AddToken(ctx, user.ID, "second"))

	// Thứ tự token phải theo thứ tự phát hành
	tokens, err := m.Tokens(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, tokens)

	ok, err := m.HasToken(ctx, user.ID, "first")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, m.RemoveToken(ctx, user.ID, "first"))
	ok, err = m.HasToken(ctx, user.ID, "first")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = m.HasToken(ctx, user.ID, "second")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, m.RemoveAllTokens(ctx, user.ID))
	tokens, err = m.Tokens(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, tokens)
}

func TestMemoryDeleteUserCascades(t *testing.T) {
	t.Parallel()
	m := NewMemory()
	ctx := context.Background()

	user := seedUser(t, m, "isao@ii.oo")
	other := seedUser(t, m, "other@ii.oo")

	require.NoError(t, m.AddToken(ctx, user.ID, "token"))
	seedTask(t, m, "t1", user.ID, false)
	seedTask(t, m, "t2", user.ID, true)
	seedTask(t, m, "t3", other.ID, false)

	require.NoError(t, m.DeleteUser(ctx, user.ID))

	_, err := m.UserByID(ctx, user.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	tasks, err := m.Tasks(ctx, user.ID, TaskFilter{})
	require.NoError(t, err)
	assert.Empty(t, tasks)

	ok, err := m.HasToken(ctx, user.ID, "token")
	require.NoError(t, err)
	assert.False(t, ok)

	// Task của user khác không bị ảnh hưởng
	tasks, err = m.Tasks(ctx, other.ID, TaskFilter{})
	require.NoError(t, err)
	assert.Len(t, tasks, 1)
}

func TestMemoryTaskOwnerScoping(t *testing.T) {
	t.Parallel()
	m := NewMemory()
	ctx := context.Background()

	user := seedUser(t, m, "isao@ii.oo")
	other := seedUser(t, m, "other@ii.oo")
	seedTask(t, m, "t1", user.ID, false)

	// Chủ sở hữu đọc được, người khác nhận ErrNotFound y hệt task không tồn tại
	_, err := m.TaskByID(ctx, "t1", user.ID)
	require.NoError(t, err)

	_, err = m.TaskByID(ctx, "t1", other.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = m.TaskByID(ctx, "missing", user.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = m.DeleteTask(ctx, "t1", other.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	err = m.UpdateTask(ctx, &models.Task{ID: "t1", OwnerID: other.ID, Description: "hijack"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryTasksFilterAndOrder(t *testing.T) {
	t.Parallel()
	m := NewMemory()
	ctx := context.Background()

	user := seedUser(t, m, "isao@ii.oo")
	seedTask(t, m, "t1", user.ID, true)
	seedTask(t, m, "t2", user.ID, false)
	seedTask(t, m, "t3", user.ID, true)
	seedTask(t, m, "t4", user.ID, true)

	// Không lọc: đúng thứ tự chèn
	tasks, err := m.Tasks(ctx, user.ID, TaskFilter{})
	require.NoError(t, err)
	require.Len(t, tasks, 4)
	assert.Equal(t, "t1", tasks[0].ID)
	assert.Equal(t, "t4", tasks[3].ID)

	completed := true
	tasks, err = m.Tasks(ctx, user.ID, TaskFilter{Completed: &completed})
	require.NoError(t, err)
	assert.Len(t, tasks, 3)

	notCompleted := false
	tasks, err = m.Tasks(ctx, user.ID, TaskFilter{Completed: &notCompleted})
	require.NoError(t, err)
	assert.Len(t, tasks, 1)

	// Phân trang
	tasks, err = m.Tasks(ctx, user.ID, TaskFilter{Limit: 2, Skip: 1})
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "t2", tasks[0].ID)

	tasks, err = m.Tasks(ctx, user.ID, TaskFilter{Skip: 10})
	require.NoError(t, err)
	assert.Empty(t, tasks)

	// Sắp xếp giảm dần theo thời gian tạo
	tasks, err = m.Tasks(ctx, user.ID, TaskFilter{SortBy: "createdAt", Desc: true})
	require.NoError(t, err)
	require.Len(t, tasks, 4)
	assert.Equal(t, "t4", tasks[0].ID)
	assert.Equal(t, "t1", tasks[3].ID)
}

package handlers_test

import (
	"context"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskhive/go-tasks/store"
)

// setupTasks dựng app với hai user: userOne có 4 task (3 đã hoàn thành),
// userTwo có 1 task
func setupTasks(t *testing.T) (*fiber.App, *store.Memory, authPayload, authPayload, []taskPayload) {
	t.Helper()

	app, mem := newTestApp(t)
	userOne := signup(t, app, "Isao", "isao@ii.oo", "myPass999")
	userTwo := signup(t, app, "Mikie", "mikie@ii.oo", "myPass999")

	bodies := []fiber.Map{
		{"description": "First task", "completed": false},
		{"description": "Second task", "completed": true},
		{"description": "Third task", "completed": true},
		{"description": "Fourth task", "completed": true},
	}

	tasks := make([]taskPayload, 0, len(bodies))
	for _, body := range bodies {
		resp := doRequest(t, app, "POST", "/tasks", userOne.Token, body)
		require.Equal(t, 201, resp.StatusCode)
		var task taskPayload
		decode(t, resp, &task)
		tasks = append(tasks, task)
	}

	resp := doRequest(t, app, "POST", "/tasks", userTwo.Token, fiber.Map{"description": "Other user's task"})
	require.Equal(t, 201, resp.StatusCode)

	return app, mem, userOne, userTwo, tasks
}

func TestCreateTask(t *testing.T) {
	app, _ := newTestApp(t)
	created := signup(t, app, "Isao", "isao@ii.oo", "myPass999")

	resp := doRequest(t, app, "POST", "/tasks", created.Token, fiber.Map{"description": "From my test"})
	require.Equal(t, 201, resp.StatusCode)

	var task taskPayload
	decode(t, resp, &task)
	assert.NotEmpty(t, task.ID)
	assert.Equal(t, "From my test", task.Description)
	assert.False(t, task.Completed)
	assert.Equal(t, created.User.ID, task.OwnerID)
}

func TestCreateTaskInvalid(t *testing.T) {
	app, _ := newTestApp(t)
	created := signup(t, app, "Isao", "isao@ii.oo", "myPass999")

	tests := []struct {
		name string
		body fiber.Map
	}{
		{"empty description", fiber.Map{"description": ""}},
		{"missing description", fiber.Map{"completed": true}},
		{"non-boolean completed", fiber.Map{"description": "x", "completed": "completed"}},
		{"unknown field", fiber.Map{"description": "x", "due": "tomorrow"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doRequest(t, app, "POST", "/tasks", created.Token, tt.body)
			assert.Equal(t, 400, resp.StatusCode)
		})
	}
}

func TestCreateTaskUnauthenticated(t *testing.T) {
	app, _ := newTestApp(t)

	resp := doRequest(t, app, "POST", "/tasks", "", fiber.Map{"description": "From my test"})
	assert.Equal(t, 401, resp.StatusCode)
}

func TestFetchTasks(t *testing.T) {
	app, _, userOne, userTwo, _ := setupTasks(t)

	// Chỉ thấy task của chính mình
	resp := doRequest(t, app, "GET", "/tasks", userOne.Token, nil)
	require.Equal(t, 200, resp.StatusCode)
	var tasks []taskPayload
	decode(t, resp, &tasks)
	assert.Len(t, tasks, 4)

	resp = doRequest(t, app, "GET", "/tasks", userTwo.Token, nil)
	require.Equal(t, 200, resp.StatusCode)
	decode(t, resp, &tasks)
	assert.Len(t, tasks, 1)
}

func TestFetchTasksFilterByCompleted(t *testing.T) {
	app, _, userOne, _, _ := setupTasks(t)

	resp := doRequest(t, app, "GET", "/tasks?completed=true", userOne.Token, nil)
	require.Equal(t, 200, resp.StatusCode)
	var tasks []taskPayload
	decode(t, resp, &tasks)
	assert.Len(t, tasks, 3)

	resp = doRequest(t, app, "GET", "/tasks?completed=false", userOne.Token, nil)
	require.Equal(t, 200, resp.StatusCode)
	decode(t, resp, &tasks)
	require.Len(t, tasks, 1)
	assert.Equal(t, "First task", tasks[0].Description)
}

func TestFetchTasksPaginationAndSort(t *testing.T) {
	app, _, userOne, _, created := setupTasks(t)

	resp := doRequest(t, app, "GET", "/tasks?limit=2", userOne.Token, nil)
	require.Equal(t, 200, resp.StatusCode)
	var tasks []taskPayload
	decode(t, resp, &tasks)
	require.Len(t, tasks, 2)
	assert.Equal(t, created[0].ID, tasks[0].ID)
	assert.Equal(t, created[1].ID, tasks[1].ID)

	resp = doRequest(t, app, "GET", "/tasks?skip=3", userOne.Token, nil)
	require.Equal(t, 200, resp.StatusCode)
	decode(t, resp, &tasks)
	require.Len(t, tasks, 1)
	assert.Equal(t, created[3].ID, tasks[0].ID)

	resp = doRequest(t, app, "GET", "/tasks?sortBy=createdAt:desc", userOne.Token, nil)
	require.Equal(t, 200, resp.StatusCode)
	decode(t, resp, &tasks)
	require.Len(t, tasks, 4)
	assert.Equal(t, created[3].ID, tasks[0].ID)
	assert.Equal(t, created[0].ID, tasks[3].ID)
}

func TestFetchTasksBadQuery(t *testing.T) {
	app, _, userOne, _, _ := setupTasks(t)

	for _, path := range []string{
		"/tasks?completed=banana",
		"/tasks?limit=many",
		"/tasks?skip=-1",
		"/tasks?sortBy=priority:desc",
		"/tasks?sortBy=createdAt:sideways",
	} {
		resp := doRequest(t, app, "GET", path, userOne.Token, nil)
		assert.Equal(t, 400, resp.StatusCode, path)
	}
}

func TestFetchTaskByID(t *testing.T) {
	app, _, userOne, _, created := setupTasks(t)

	resp := doRequest(t, app, "GET", "/tasks/"+created[0].ID, userOne.Token, nil)
	require.Equal(t, 200, resp.StatusCode)

	var task taskPayload
	decode(t, resp, &task)
	assert.Equal(t, created[0].ID, task.ID)
}

func TestFetchTaskUnauthenticated(t *testing.T) {
	app, _, _, _, created := setupTasks(t)

	resp := doRequest(t, app, "GET", "/tasks/"+created[0].ID, "", nil)
	assert.Equal(t, 401, resp.StatusCode)
}

func TestFetchOtherUsersTask(t *testing.T) {
	app, _, _, userTwo, created := setupTasks(t)

	// Task của người khác và task không tồn tại trả về response y hệt nhau
	notOwned := doRequest(t, app, "GET", "/tasks/"+created[0].ID, userTwo.Token, nil)
	require.Equal(t, 404, notOwned.StatusCode)

	missing := doRequest(t, app, "GET", "/tasks/does-not-exist", userTwo.Token, nil)
	require.Equal(t, 404, missing.StatusCode)

	assert.Equal(t, readBody(t, notOwned), readBody(t, missing))
}

func TestUpdateTask(t *testing.T) {
	app, _, userOne, _, created := setupTasks(t)

	resp := doRequest(t, app, "PATCH", "/tasks/"+created[0].ID, userOne.Token, fiber.Map{"completed": true})
	require.Equal(t, 200, resp.StatusCode)

	var task taskPayload
	decode(t, resp, &task)
	assert.True(t, task.Completed)
	assert.Equal(t, "First task", task.Description)

	resp = doRequest(t, app, "GET", "/tasks/"+created[0].ID, userOne.Token, nil)
	require.Equal(t, 200, resp.StatusCode)
	decode(t, resp, &task)
	assert.True(t, task.Completed)
}

func TestUpdateTaskInvalid(t *testing.T) {
	app, _, userOne, _, created := setupTasks(t)

	tests := []struct {
		name string
		body fiber.Map
	}{
		{"empty description", fiber.Map{"description": ""}},
		{"non-boolean completed", fiber.Map{"completed": "completed"}},
		{"unknown field", fiber.Map{"owner_id": 99}},
		{"empty body", fiber.Map{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doRequest(t, app, "PATCH", "/tasks/"+created[0].ID, userOne.Token, tt.body)
			assert.Equal(t, 400, resp.StatusCode)
		})
	}
}

func TestUpdateOtherUsersTask(t *testing.T) {
	app, mem, _, userTwo, created := setupTasks(t)

	resp := doRequest(t, app, "PATCH", "/tasks/"+created[0].ID, userTwo.Token, fiber.Map{"description": "other"})
	assert.Equal(t, 404, resp.StatusCode)

	// Task gốc không bị thay đổi
	tasks, err := mem.Tasks(context.Background(), created[0].OwnerID, store.TaskFilter{})
	require.NoError(t, err)
	assert.Equal(t, "First task", tasks[0].Description)
}

func TestDeleteTask(t *testing.T) {
	app, _, userOne, _, created := setupTasks(t)

	resp := doRequest(t, app, "DELETE", "/tasks/"+created[0].ID, userOne.Token, nil)
	require.Equal(t, 200, resp.StatusCode)

	// Task vừa xóa được trả về trong response
	var task taskPayload
	decode(t, resp, &task)
	assert.Equal(t, created[0].ID, task.ID)

	resp = doRequest(t, app, "GET", "/tasks/"+created[0].ID, userOne.Token, nil)
	assert.Equal(t, 404, resp.StatusCode)
}

func TestDeleteOtherUsersTask(t *testing.T) {
	app, _, userOne, userTwo, created := setupTasks(t)

	resp := doRequest(t, app, "DELETE", "/tasks/"+created[0].ID, userTwo.Token, nil)
	assert.Equal(t, 404, resp.StatusCode)

	// Task vẫn còn nguyên
	resp = doRequest(t, app, "GET", "/tasks/"+created[0].ID, userOne.Token, nil)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestDeleteTaskUnauthenticated(t *testing.T) {
	app, _, _, _, created := setupTasks(t)

	resp := doRequest(t, app, "DELETE", "/tasks/"+created[0].ID, "", nil)
	assert.Equal(t, 401, resp.StatusCode)
}

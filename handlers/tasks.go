package handlers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/taskhive/go-tasks/events"
	"github.com/taskhive/go-tasks/models"
	"github.com/taskhive/go-tasks/store"
	"github.com/taskhive/go-tasks/utils"
	"github.com/taskhive/go-tasks/validation"
)

// HandleCreateTask tạo task mới cho user đang đăng nhập
func (h *Handler) HandleCreateTask(c *fiber.Ctx) error {
	fields, err := validation.ParseBody(c.Body())
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	if violations := validation.TaskCreate(fields); len(violations) > 0 {
		return validationFailed(c, violations)
	}

	id, err := utils.GenerateRandomID()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to generate ID"})
	}

	description, _ := validation.String(fields, "description")
	completed, _ := validation.Bool(fields, "completed")

	task := &models.Task{
		ID:          id,
		Description: strings.TrimSpace(description),
		Completed:   completed,
		OwnerID:     currentUser(c).ID,
	}

	if err := h.store.CreateTask(c.Context(), task); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}

	events.Publish(models.Event{Type: models.EventTaskCreated, ActorID: task.OwnerID, Task: task})

	return c.Status(201).JSON(task)
}

// HandleAllTasks liệt kê task của user đang đăng nhập. Hỗ trợ lọc theo
// completed, phân trang bằng limit/skip và sắp xếp bằng sortBy=field:dir.
func (h *Handler) HandleAllTasks(c *fiber.Ctx) error {
	filter, err := parseTaskFilter(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	tasks, err := h.store.Tasks(c.Context(), currentUser(c).ID, filter)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(200).JSON(tasks)
}

// HandleGetOneTask trả về một task theo ID. Task không tồn tại và task của
// người khác đều trả về 404 giống hệt nhau.
func (h *Handler) HandleGetOneTask(c *fiber.Ctx) error {
	task, err := h.store.TaskByID(c.Context(), c.Params("id"), currentUser(c).ID)
	if errors.Is(err, store.ErrNotFound) {
		return c.Status(404).JSON(fiber.Map{"error": "not found"})
	} else if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(200).JSON(task)
}

// HandleUpdateTask cập nhật description hoặc completed của một task
func (h *Handler) HandleUpdateTask(c *fiber.Ctx) error {
	fields, err := validation.ParseBody(c.Body())
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	if violations := validation.TaskUpdate(fields); len(violations) > 0 {
		return validationFailed(c, violations)
	}

	task, err := h.store.TaskByID(c.Context(), c.Params("id"), currentUser(c).ID)
	if errors.Is(err, store.ErrNotFound) {
		return c.Status(404).JSON(fiber.Map{"error": "not found"})
	} else if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}

	if description, ok := validation.String(fields, "description"); ok {
		task.Description = strings.TrimSpace(description)
	}
	if completed, ok := validation.Bool(fields, "completed"); ok {
		task.Completed = completed
	}

	if err := h.store.UpdateTask(c.Context(), task); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}

	events.Publish(models.Event{Type: models.EventTaskUpdated, ActorID: task.OwnerID, Task: task})

	return c.Status(200).JSON(task)
}

// HandleDeleteTask xóa một task và trả về task vừa xóa
func (h *Handler) HandleDeleteTask(c *fiber.Ctx) error {
	task, err := h.store.DeleteTask(c.Context(), c.Params("id"), currentUser(c).ID)
	if errors.Is(err, store.ErrNotFound) {
		return c.Status(404).JSON(fiber.Map{"error": "not found"})
	} else if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}

	events.Publish(models.Event{Type: models.EventTaskDeleted, ActorID: task.OwnerID, Task: task})

	return c.Status(200).JSON(task)
}

// parseTaskFilter đọc và kiểm tra các query parameter của danh sách task
func parseTaskFilter(c *fiber.Ctx) (store.TaskFilter, error) {
	filter := store.TaskFilter{}

	if completed := c.Query("completed"); completed != "" {
		value, err := strconv.ParseBool(completed)
		if err != nil {
			return filter, errors.New("completed must be true or false")
		}
		filter.Completed = &value
	}

	if limit := c.Query("limit"); limit != "" {
		value, err := strconv.Atoi(limit)
		if err != nil || value < 0 {
			return filter, errors.New("limit must be a non-negative integer")
		}
		filter.Limit = value
	}

	if skip := c.Query("skip"); skip != "" {
		value, err := strconv.Atoi(skip)
		if err != nil || value < 0 {
			return filter, errors.New("skip must be a non-negative integer")
		}
		filter.Skip = value
	}

	if sortBy := c.Query("sortBy"); sortBy != "" {
		parts := strings.SplitN(sortBy, ":", 2)

		switch parts[0] {
		case "createdAt", "completed":
			filter.SortBy = parts[0]
		default:
			return filter, errors.New("sortBy field must be createdAt or completed")
		}

		if len(parts) == 2 {
			switch parts[1] {
			case "asc":
			case "desc":
				filter.Desc = true
			default:
				return filter, errors.New("sortBy direction must be asc or desc")
			}
		}
	}

	return filter, nil
}

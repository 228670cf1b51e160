package handlers

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskhive/go-tasks/auth"
	"github.com/taskhive/go-tasks/config"
	"github.com/taskhive/go-tasks/events"
	"github.com/taskhive/go-tasks/middleware"
	"github.com/taskhive/go-tasks/models"
	"github.com/taskhive/go-tasks/store"
	"github.com/taskhive/go-tasks/validation"
)

// Giới hạn của file avatar
const maxAvatarSize = 1000000

// Handler chứa các route handler, dùng chung một Store
type Handler struct {
	store store.Store
}

func New(s store.Store) *Handler {
	return &Handler{store: s}
}

// HandleSignup đăng ký người dùng mới và trả về token đăng nhập đầu tiên
func (h *Handler) HandleSignup(c *fiber.Ctx) error {
	fields, err := validation.ParseBody(c.Body())
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	if violations := validation.UserCreate(fields); len(violations) > 0 {
		return validationFailed(c, violations)
	}

	name, _ := validation.String(fields, "name")
	email, _ := validation.String(fields, "email")
	password, _ := validation.String(fields, "password")

	// Hash mật khẩu
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "could not hash password"})
	}

	user := &models.User{
		Name:     strings.TrimSpace(name),
		Email:    email,
		Password: string(hashedPassword),
	}

	if err := h.store.CreateUser(c.Context(), user); err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			return validationFailed(c, []validation.Violation{{Field: "email", Message: "already in use"}})
		}
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}

	token, err := h.issueToken(c, user.ID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(201).JSON(fiber.Map{"user": user, "token": token})
}

// HandleLogin xác thực email và mật khẩu, trả về token mới. Lỗi luôn chung
// chung, không tiết lộ email có tồn tại hay không.
func (h *Handler) HandleLogin(c *fiber.Ctx) error {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	user, err := h.store.UserByEmail(c.Context(), input.Email)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "unable to login"})
	}

	// So khớp mật khẩu
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "unable to login"})
	}

	token, err := h.issueToken(c, user.ID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(200).JSON(fiber.Map{"user": user, "token": token})
}

// HandleLogout thu hồi đúng token đang dùng, các phiên khác vẫn hoạt động
func (h *Handler) HandleLogout(c *fiber.Ctx) error {
	user := currentUser(c)
	token := c.Locals(middleware.TokenKey).(string)

	if err := h.store.RemoveToken(c.Context(), user.ID, token); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(200).JSON(fiber.Map{"message": "logged out"})
}

// HandleLogoutAll thu hồi toàn bộ token của user
func (h *Handler) HandleLogoutAll(c *fiber.Ctx) error {
	user := currentUser(c)

	if err := h.store.RemoveAllTokens(c.Context(), user.ID); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(200).JSON(fiber.Map{"message": "logged out"})
}

// HandleMe trả về profile của user đang đăng nhập
func (h *Handler) HandleMe(c *fiber.Ctx) error {
	return c.Status(200).JSON(currentUser(c))
}

// HandleUpdateMe cập nhật profile, chỉ chấp nhận name, email và password
func (h *Handler) HandleUpdateMe(c *fiber.Ctx) error {
	fields, err := validation.ParseBody(c.Body())
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	if violations := validation.UserUpdate(fields); len(violations) > 0 {
		return validationFailed(c, violations)
	}

	user := currentUser(c)

	if name, ok := validation.String(fields, "name"); ok {
		user.Name = strings.TrimSpace(name)
	}
	if email, ok := validation.String(fields, "email"); ok {
		user.Email = email
	}
	if password, ok := validation.String(fields, "password"); ok {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "could not hash password"})
		}
		user.Password = string(hashedPassword)
	}

	if err := h.store.UpdateUser(c.Context(), user); err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			return validationFailed(c, []validation.Violation{{Field: "email", Message: "already in use"}})
		}
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(200).JSON(user)
}

// HandleDeleteMe xóa tài khoản cùng toàn bộ task và token của nó
func (h *Handler) HandleDeleteMe(c *fiber.Ctx) error {
	user := currentUser(c)

	if err := h.store.DeleteUser(c.Context(), user.ID); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}

	events.Publish(models.Event{Type: models.EventUserDeleted, ActorID: user.ID})

	return c.Status(200).JSON(user)
}

// HandleUploadAvatar nhận file avatar qua multipart form, tối đa 1MB,
// chỉ chấp nhận jpg/jpeg/png
func (h *Handler) HandleUploadAvatar(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "please upload an avatar"})
	}

	if fileHeader.Size > maxAvatarSize {
		return c.Status(400).JSON(fiber.Map{"error": "avatar must be smaller than 1MB"})
	}

	switch strings.ToLower(filepath.Ext(fileHeader.Filename)) {
	case ".jpg", ".jpeg", ".png":
	default:
		return c.Status(400).JSON(fiber.Map{"error": "please upload an image"})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}
	defer file.Close()

	avatar, err := io.ReadAll(file)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}

	user := currentUser(c)
	if err := h.store.SaveAvatar(c.Context(), user.ID, avatar); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(200).JSON(fiber.Map{"message": "avatar uploaded"})
}

// HandleDeleteAvatar xóa avatar của user đang đăng nhập
func (h *Handler) HandleDeleteAvatar(c *fiber.Ctx) error {
	user := currentUser(c)

	if err := h.store.DeleteAvatar(c.Context(), user.ID); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(200).JSON(fiber.Map{"message": "avatar deleted"})
}

// HandleGetAvatar trả về ảnh avatar của một user bất kỳ
func (h *Handler) HandleGetAvatar(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "not found"})
	}

	avatar, err := h.store.Avatar(c.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		return c.Status(404).JSON(fiber.Map{"error": "not found"})
	} else if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}

	c.Set("Content-Type", http.DetectContentType(avatar))
	return c.Status(200).Send(avatar)
}

// issueToken tạo token mới và thêm vào danh sách token của user
func (h *Handler) issueToken(c *fiber.Ctx, userID int64) (string, error) {
	token, err := auth.Issue(userID, []byte(os.Getenv("JWT_SECRET")), config.TokenTTL())
	if err != nil {
		return "", err
	}
	if err := h.store.AddToken(c.Context(), userID, token); err != nil {
		return "", err
	}
	return token, nil
}

func currentUser(c *fiber.Ctx) *models.User {
	return c.Locals(middleware.UserKey).(*models.User)
}

func validationFailed(c *fiber.Ctx, violations []validation.Violation) error {
	return c.Status(400).JSON(fiber.Map{"error": "validation failed", "details": violations})
}

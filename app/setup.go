package app

import (
	"errors"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/taskhive/go-tasks/config"
	"github.com/taskhive/go-tasks/database"
	"github.com/taskhive/go-tasks/events"
	"github.com/taskhive/go-tasks/handlers"
	"github.com/taskhive/go-tasks/router"
	"github.com/taskhive/go-tasks/store"
)

// SetupAndRunApp khởi động ứng dụng Fiber
func SetupAndRunApp() error {
	// Load biến môi trường từ file .env
	err := config.LoadENV()
	if err != nil {
		return err
	}

	if os.Getenv("JWT_SECRET") == "" {
		return errors.New("you must set your 'JWT_SECRET' environmental variable")
	}

	// Khởi động PostgreSQL
	err = database.StartPostgreSQL()
	if err != nil {
		return err
	}

	// Đảm bảo kết nối với cơ sở dữ liệu được đóng sau khi ứng dụng kết thúc
	defer database.ClosePostgreSQL()

	// Tạo ứng dụng Fiber
	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PATCH,DELETE,OPTIONS",
	}))

	// Đính kèm middleware để xử lý lỗi và ghi log
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${ip}]:${port} ${status} - ${method} ${path} ${latency}\n",
	}))

	// Thiết lập route cho ứng dụng
	s := store.NewPostgres(database.GetDB())
	h := handlers.New(s)
	router.SetupRoutes(app, h, s)

	// Đính kèm Swagger
	config.AddSwaggerRoutes(app)

	// Kết nối MQTT broker để phát sự kiện (nếu được cấu hình)
	events.InitMQTTPublisher()

	// Lấy port từ biến môi trường và bắt đầu lắng nghe kết nối
	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	// Lắng nghe trên cổng chỉ định
	return app.Listen(":" + port)
}

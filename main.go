package main

import (
	"lawlink-api/core/logger"
	"lawlink-api/core/server"
)

// @title LawLink API
// @version 1.0
// @description API Backend cho nền tảng LawLink - Đặt lịch tư vấn pháp lý
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@lawlink.vn

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:7070
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token. Example: "Bearer {token}"

func main() {
	if err := server.Run(); err != nil {
		logger.Error("run server error", "error", err)
	}
}

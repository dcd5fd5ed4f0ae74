package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

// Recovery - middleware для восстановления после паники
func Recovery() fiber.Handler {
	return recover.New(recover.Config{
		EnableStackTrace: true,
	})
}

// RequestID выставляет X-Request-ID, если клиент его не прислал
func RequestID() fiber.Handler {
	return requestid.New()
}

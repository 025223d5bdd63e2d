package middleware

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
)

type requestLog struct {
	Time      string `json:"time"`
	IP        string `json:"ip"`
	Method    string `json:"method"`
	Path      string `json:"path"`
	Status    int    `json:"status"`
	LatencyMS int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

// LoggingMiddleware пишет одну строку на запрос; format "json" или "text"
func LoggingMiddleware(logger *log.Logger, format string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		// Передаем управление следующему обработчику
		err := c.Next()

		entry := requestLog{
			Time:      time.Now().UTC().Format(time.RFC3339),
			IP:        c.IP(),
			Method:    c.Method(),
			Path:      c.Path(),
			Status:    c.Response().StatusCode(),
			LatencyMS: time.Since(start).Milliseconds(),
		}
		if err != nil {
			entry.Error = err.Error()
		}

		if format == "json" {
			line, _ := json.Marshal(entry)
			logger.Println(string(line))
			return err
		}

		logger.Printf("%s %s %s %d %dms %s",
			entry.IP, entry.Method, entry.Path, entry.Status, entry.LatencyMS, entry.Error)
		return err
	}
}

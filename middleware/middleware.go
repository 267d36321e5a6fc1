package middleware

import (
	"net"
	"net/http"
	"strconv"
	"time"

	"gymsystem/utils"
)

var (
	// Глобальный rate limiter: 100 запросов в минуту с одного адреса
	globalLimiter = utils.NewRateLimiter(100, time.Minute)
)

type LoggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *LoggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

// LoggingMiddleware логирует информацию о запросе и ответе и записывает
// метрики запросов
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Создаем обертку для ResponseWriter
		lrw := &LoggingResponseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		// Обрабатываем запрос
		next.ServeHTTP(lrw, r)

		// Логируем информацию
		duration := time.Since(start)
		utils.LogInfo("Method: %s, Path: %s, Status: %d, Duration: %v",
			r.Method,
			r.URL.Path,
			lrw.statusCode,
			duration,
		)

		utils.GetMetrics().RecordRequest(duration, lrw.statusCode >= http.StatusInternalServerError)
	})
}

// RateLimitMiddleware ограничивает частоту запросов с одного адреса
func RateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientIP := clientAddr(r)

		// Проверяем лимит
		if !globalLimiter.Allow(clientIP) {
			w.Header().Set("X-RateLimit-Reset", globalLimiter.ResetAt(clientIP).Format(time.RFC3339))
			http.Error(w, "Too many requests", http.StatusTooManyRequests)
			return
		}

		// Добавляем заголовки с информацией о лимитах
		w.Header().Set("X-RateLimit-Limit", "100")
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(globalLimiter.Remaining(clientIP)))

		next.ServeHTTP(w, r)
	})
}

// RecoveryMiddleware перехватывает паники и возвращает 500 вместо падения
func RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				utils.LogError("Panic recovered: %v", err)
				http.Error(w, "Internal server error", http.StatusInternalServerError)
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// clientAddr возвращает адрес клиента без порта
func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

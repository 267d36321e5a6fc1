package utils

import (
	"sync"
	"time"
)

// RateLimiter реализует ограничение частоты запросов по фиксированному окну
type RateLimiter struct {
	mu      sync.Mutex
	windows map[string]*rateWindow
	limit   int
	window  time.Duration
}

type rateWindow struct {
	count   int
	startAt time.Time
}

// NewRateLimiter создает новый RateLimiter
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		windows: make(map[string]*rateWindow),
		limit:   limit,
		window:  window,
	}
}

// Allow проверяет, разрешен ли запрос для ключа
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	w := rl.currentWindow(key)
	if w.count >= rl.limit {
		return false
	}
	w.count++
	return true
}

// Remaining возвращает количество оставшихся запросов в текущем окне
func (rl *RateLimiter) Remaining(key string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	w := rl.currentWindow(key)
	remaining := rl.limit - w.count
	if remaining < 0 {
		return 0
	}
	return remaining
}

// ResetAt возвращает время окончания текущего окна
func (rl *RateLimiter) ResetAt(key string) time.Time {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	return rl.currentWindow(key).startAt.Add(rl.window)
}

// currentWindow возвращает актуальное окно для ключа, открывая новое,
// если старое истекло; вызывается под мьютексом
func (rl *RateLimiter) currentWindow(key string) *rateWindow {
	now := time.Now()
	w, exists := rl.windows[key]
	if !exists || now.Sub(w.startAt) >= rl.window {
		w = &rateWindow{startAt: now}
		rl.windows[key] = w
	}
	return w
}

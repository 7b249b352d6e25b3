package ratelimit

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Limiter implements a simple in-memory sliding window rate limiter
type Limiter struct {
	mu       sync.RWMutex
	counters map[string]*counter
	window   time.Duration
	max      int
}

type counter struct {
	count     int
	expiresAt time.Time
}

// NewLimiter creates a new rate limiter with the specified window and max requests
func NewLimiter(window time.Duration, max int) *Limiter {
	l := &Limiter{
		counters: make(map[string]*counter),
		window:   window,
		max:      max,
	}
	go l.cleanup()
	return l
}

// Allow checks if a request for the given key is allowed
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	c, exists := l.counters[key]

	if !exists || now.After(c.expiresAt) {
		l.counters[key] = &counter{
			count:     1,
			expiresAt: now.Add(l.window),
		}
		return true
	}

	if c.count >= l.max {
		return false
	}

	c.count++
	return true
}

// GetRemaining returns the number of remaining requests for the given key
func (l *Limiter) GetRemaining(key string) int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	now := time.Now()
	c, exists := l.counters[key]

	if !exists || now.After(c.expiresAt) {
		return l.max
	}

	remaining := l.max - c.count
	if remaining < 0 {
		return 0
	}
	return remaining
}

// cleanup periodically removes expired counters
func (l *Limiter) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		l.mu.Lock()
		now := time.Now()
		for key, c := range l.counters {
			if now.After(c.expiresAt) {
				delete(l.counters, key)
			}
		}
		l.mu.Unlock()
	}
}

// MultiKeyLimiter manages multiple rate limiters for different types of operations
type MultiKeyLimiter struct {
	limiters map[string]*Limiter
	mu       sync.RWMutex
}

// Limits configures MultiKeyLimiter. Zero values fall back to the defaults.
type Limits struct {
	LoginPerIP    int `mapstructure:"login_per_ip"`
	OrdersPerIP   int `mapstructure:"orders_per_ip"`
	OrdersPerMail int `mapstructure:"orders_per_email"`
}

const (
	defaultLoginPerIP    = 10  // login attempts per IP per 15 minutes
	defaultOrdersPerIP   = 100 // orders per IP per hour
	defaultOrdersPerMail = 100 // orders per email per hour
)

// NewMultiKeyLimiter creates a new multi-key limiter with default limits
func NewMultiKeyLimiter() *MultiKeyLimiter {
	return NewCustomMultiKeyLimiter(Limits{})
}

// NewCustomMultiKeyLimiter creates a limiter with custom limits
func NewCustomMultiKeyLimiter(l Limits) *MultiKeyLimiter {
	if l.LoginPerIP <= 0 {
		l.LoginPerIP = defaultLoginPerIP
	}
	if l.OrdersPerIP <= 0 {
		l.OrdersPerIP = defaultOrdersPerIP
	}
	if l.OrdersPerMail <= 0 {
		l.OrdersPerMail = defaultOrdersPerMail
	}
	return &MultiKeyLimiter{
		limiters: map[string]*Limiter{
			"ip_login":    NewLimiter(15*time.Minute, l.LoginPerIP),
			"ip_order":    NewLimiter(time.Hour, l.OrdersPerIP),
			"email_order": NewLimiter(time.Hour, l.OrdersPerMail),
		},
	}
}

// CheckLogin verifies if a login attempt is allowed from the given IP
func (m *MultiKeyLimiter) CheckLogin(ip string) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.limiters["ip_login"].Allow(ip) {
		return fmt.Errorf("too many login attempts, please try again later")
	}

	return nil
}

// CheckOrderCreation verifies if an order can be created from the given IP and email
func (m *MultiKeyLimiter) CheckOrderCreation(ip, email string) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.limiters["ip_order"].Allow(ip) {
		return fmt.Errorf("too many orders from this IP address, please try again later")
	}

	if email != "" && !m.limiters["email_order"].Allow(strings.ToLower(email)) {
		return fmt.Errorf("too many orders from this email address, please try again later")
	}

	return nil
}

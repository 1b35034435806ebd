package middleware

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/chefbazaar/backend/pkg/response"
)

// bucket tracks request timestamps for one client IP inside a sliding window.
type bucket struct {
	mu     sync.Mutex
	hits   []time.Time
	seenAt time.Time
}

func (b *bucket) allow(max int, window time.Duration) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	b.seenAt = now

	cutoff := now.Add(-window)
	kept := b.hits[:0]
	for _, t := range b.hits {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	b.hits = kept

	if len(b.hits) >= max {
		return false
	}

	b.hits = append(b.hits, now)
	return true
}

var (
	bucketsMu sync.Mutex
	buckets   = map[string]*bucket{}
)

func init() {
	// Evict buckets idle for more than ten minutes.
	go func() {
		for range time.Tick(time.Minute) {
			cutoff := time.Now().Add(-10 * time.Minute)
			bucketsMu.Lock()
			for ip, b := range buckets {
				if b.seenAt.Before(cutoff) {
					delete(buckets, ip)
				}
			}
			bucketsMu.Unlock()
		}
	}()
}

func getBucket(ip string) *bucket {
	bucketsMu.Lock()
	defer bucketsMu.Unlock()

	b, ok := buckets[ip]
	if !ok {
		b = &bucket{}
		buckets[ip] = b
	}
	return b
}

// RateLimit allows at most max requests per client IP inside window.
// Over-limit requests answer 429.
func RateLimit(max int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := r.RemoteAddr
			if idx := strings.LastIndex(ip, ":"); idx != -1 {
				ip = ip[:idx]
			}

			if !getBucket(ip).allow(max, window) {
				response.Error(w, http.StatusTooManyRequests, "Too many requests")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

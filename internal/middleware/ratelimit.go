package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/markadai/taxidispatch/internal/models"
)

// MsgTooManyAttempts is sent with HTTP 429 once the limit is exceeded.
const MsgTooManyAttempts = "Too many login attempts, try again later"

const (
	rateKeyPrefix  = "rl:login:"
	rateWindow     = time.Minute
	maxPeekedBytes = 64 << 10
)

// LoginRateLimit limits login attempts per identifier, or per client IP when
// the body carries none, to maxPerMin within a one minute window. A nil cache
// disables the limiter and cache errors let the request through.
func LoginRateLimit(cache *redis.Client, maxPerMin int, log *zap.Logger) func(http.Handler) http.Handler {
	if maxPerMin <= 0 {
		maxPerMin = 5
	}
	return func(next http.Handler) http.Handler {
		if cache == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := rateKeyPrefix + limiterSubject(r)
			ctx := r.Context()

			cnt, err := cache.Incr(ctx, key).Result()
			if err != nil {
				log.Warn("rate limiter unavailable", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}
			if cnt == 1 {
				// a key left without a TTL would throttle its subject forever
				if err := cache.Expire(ctx, key, rateWindow).Err(); err != nil {
					log.Warn("rate limiter expire failed", zap.String("key", key), zap.Error(err))
					cache.Del(ctx, key)
					next.ServeHTTP(w, r)
					return
				}
			}
			if cnt > int64(maxPerMin) {
				log.Info("login throttled", zap.String("key", key), zap.Int64("count", cnt))
				writeTooMany(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// limiterSubject peeks at the JSON body for loginInput. The next handler
// still reads the whole body: the peeked prefix followed by the unread rest.
func limiterSubject(r *http.Request) string {
	if r.Body != nil {
		raw, err := io.ReadAll(io.LimitReader(r.Body, maxPeekedBytes))
		r.Body = readCloser{Reader: io.MultiReader(bytes.NewReader(raw), r.Body), Closer: r.Body}
		if err == nil {
			var req models.LoginRequest
			if json.Unmarshal(raw, &req) == nil {
				if login := strings.TrimSpace(req.LoginInput); login != "" {
					return login
				}
			}
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

type readCloser struct {
	io.Reader
	io.Closer
}

func writeTooMany(w http.ResponseWriter) {
	msg := MsgTooManyAttempts
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_ = json.NewEncoder(w).Encode(models.LoginResponse{Success: false, Message: &msg})
}

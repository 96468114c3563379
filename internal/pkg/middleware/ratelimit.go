package middleware

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"time"

	"stockmove/internal/pkg/cache"
)

// RateLimiter limita requisições por IP usando um contador no Redis.
//
// A decisão usa o valor retornado pelo próprio INCR: incrementar e comparar é
// uma única operação atômica no Redis, de modo que duas requisições
// simultâneas no limiar nunca passam ambas. A primeira requisição da janela
// (contador == 1) define a expiração da chave.
func RateLimiter(client cache.Client, limit int, duration time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip, _, _ := net.SplitHostPort(r.RemoteAddr)
			key := "rate-limit:" + ip
			ctx := context.Background()

			count, err := client.Incr(ctx, key)
			if err != nil {
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}

			if count == 1 {
				// Início de uma nova janela: a chave expira sozinha.
				if err := client.Expire(ctx, key, duration); err != nil {
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
					return
				}
			}

			if count > int64(limit) {
				http.Error(w, "Rate limit exceeded", http.StatusTooManyRequests)
				return
			}

			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(limit-int(count)))
			next.ServeHTTP(w, r)
		})
	}
}

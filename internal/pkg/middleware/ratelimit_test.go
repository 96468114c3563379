package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"stockmove/internal/pkg/cache"
	"stockmove/internal/pkg/middleware"
)

// counterCache é uma implementação em memória da interface cache.Client com
// um INCR atômico, suficiente para exercitar o Rate Limiter.
type counterCache struct {
	mu       sync.Mutex
	counters map[string]int64
	expires  map[string]time.Duration
}

func newCounterCache() *counterCache {
	return &counterCache{
		counters: make(map[string]int64),
		expires:  make(map[string]time.Duration),
	}
}

func (c *counterCache) Get(ctx context.Context, key string) (string, error) {
	return "", cache.ErrCacheMiss
}

func (c *counterCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return nil
}

func (c *counterCache) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error) {
	return false, nil
}

func (c *counterCache) Incr(ctx context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counters[key]++
	return c.counters[key], nil
}

func (c *counterCache) Expire(ctx context.Context, key string, expiration time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.expires[key] = expiration
	return nil
}

func (c *counterCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.counters, key)
	return nil
}

// doRequest envia uma requisição pelo middleware e retorna o status.
func doRequest(handler http.Handler, ip string) int {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = ip + ":51000"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec.Code
}

// TestRateLimiter_BloqueiaAcimaDoLimite testa que o limite é respeitado
// exatamente: as N primeiras requisições passam, a N+1 recebe 429.
func TestRateLimiter_BloqueiaAcimaDoLimite(t *testing.T) {
	mem := newCounterCache()
	limit := 3

	handler := middleware.RateLimiter(mem, limit, time.Minute)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}),
	)

	for i := 0; i < limit; i++ {
		assert.Equal(t, http.StatusOK, doRequest(handler, "10.0.0.1"))
	}
	assert.Equal(t, http.StatusTooManyRequests, doRequest(handler, "10.0.0.1"))

	// Outro IP tem contador próprio.
	assert.Equal(t, http.StatusOK, doRequest(handler, "10.0.0.2"))
}

// TestRateLimiter_ExpiracaoNaPrimeiraRequisicao testa que a janela é definida
// uma única vez, na primeira requisição do contador.
func TestRateLimiter_ExpiracaoNaPrimeiraRequisicao(t *testing.T) {
	mem := newCounterCache()
	window := 30 * time.Second

	handler := middleware.RateLimiter(mem, 10, window)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}),
	)

	doRequest(handler, "10.0.0.1")
	doRequest(handler, "10.0.0.1")

	assert.Equal(t, window, mem.expires["rate-limit:10.0.0.1"])
}

// TestRateLimiter_ConcorrenciaNoLimiar testa que requisições simultâneas no
// limiar não passam ambas: a decisão usa o valor atômico do incremento.
func TestRateLimiter_ConcorrenciaNoLimiar(t *testing.T) {
	mem := newCounterCache()
	limit := 10

	handler := middleware.RateLimiter(mem, limit, time.Minute)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}),
	)

	const requests = 24
	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0

	for i := 0; i < requests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if doRequest(handler, "10.0.0.1") == http.StatusOK {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, limit, allowed)
}

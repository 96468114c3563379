package router

import (
	"net/http"
	"time"

	httpSwagger "github.com/swaggo/http-swagger/v2"

	"stockmove/internal/api/choice"
	"stockmove/internal/api/profile"
	"stockmove/internal/api/quantity"
	"stockmove/internal/api/user"
	"stockmove/internal/domain"
	"stockmove/internal/pkg/cache"
	"stockmove/internal/pkg/middleware"
)

// NewRouter configura e retorna o roteador HTTP principal.
// Recebe os Handlers já inicializados por injeção de dependências.
func NewRouter(
	choiceHandler *choice.Handler,
	profileHandler *profile.Handler,
	quantityHandler *quantity.Handler,
	userHandler *user.Handler,
	tokenSvc middleware.TokenService,
	cacheClient cache.Client,
	rateLimitMax int,
	rateLimitPeriod time.Duration,
) http.Handler {

	// Usamos o ServeMux padrão do net/http para roteamento
	mux := http.NewServeMux()

	// Middleware de autenticação (JWT) para as rotas administrativas
	auth := middleware.NewAuthMiddleware(tokenSvc)

	// --- 1. Rotas de Health Check ---
	mux.HandleFunc("/ping", PingHandler)

	// --- 2. Rotas de Usuário (públicas) ---
	mux.HandleFunc("/v1/register", userHandler.RegisterUserHandler)
	mux.HandleFunc("/v1/login", userHandler.LoginUserHandler)

	// --- 3. Rotas Administrativas (protegidas por JWT) ---

	// GET /v1/choices/modifications (modificações com estoque disponível)
	mux.HandleFunc("/v1/choices/modifications", auth(choiceHandler.ModificationsHandler))

	// GET /v1/warehouse/profiles (formulário de seleção de armazém)
	mux.HandleFunc("/v1/warehouse/profiles", auth(profileHandler.WarehouseProfilesHandler))

	// GET /v1/quantities (inspeção da carteira de quantidades; somente admin)
	adminOnly := middleware.PermissionMiddleware(domain.RoleAdmin)
	mux.HandleFunc("/v1/quantities", auth(adminOnly(quantityHandler.ResolveQuantityHandler)))

	// --- 4. Documentação (Swagger UI) ---
	mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// --- 5. Middlewares Globais ---
	// O Rate Limiter envolve todo o mux (contagem por IP no Redis)
	return middleware.RateLimiter(cacheClient, rateLimitMax, rateLimitPeriod)(mux)
}

// PingHandler é uma função utilitária para o health check.
func PingHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}

package choice

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"stockmove/internal/domain"
	apperror "stockmove/internal/errors"
	"stockmove/internal/pkg/logger"
	"stockmove/internal/pkg/middleware"
)

// ChoiceService define o contrato que o Handler espera da camada de Serviço.
type ChoiceService interface {
	ModificationsInStock(ctx context.Context, filter domain.ModificationChoiceFilter) ([]domain.ModificationChoice, error)
}

// Handler agrupa os métodos de Handler da lista de modificações em estoque.
type Handler struct {
	Service ChoiceService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc ChoiceService, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Logger:  log,
	}
}

// handleServiceResponse processa erros de serviço e envia respostas padronizadas ao cliente.
func (h *Handler) handleServiceResponse(w http.ResponseWriter, r *http.Request, data interface{}, err error, successStatus int) {
	if err == nil {
		// Sucesso
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(successStatus)
		if data != nil {
			if jsonErr := json.NewEncoder(w).Encode(data); jsonErr != nil {
				h.Logger.Error("Falha ao codificar JSON de resposta", jsonErr)
				http.Error(w, "Erro ao codificar resposta", http.StatusInternalServerError)
			}
		}
		return
	}

	// TRATAMENTO DE ERROS
	status, category, message := apperror.MapToHTTPStatus(err)

	if status >= 500 {
		h.Logger.Error(fmt.Sprintf("Erro de Servidor: %s", category), err)
	} else {
		h.Logger.Debug(fmt.Sprintf("Requisição rejeitada com status %d. Categoria: %s", status, category), map[string]interface{}{"path": r.URL.Path})
	}

	errorResponse := map[string]interface{}{
		"code":     status,
		"category": category,
		"message":  message,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse)
}

// ModificationsHandler lida com a requisição GET /v1/choices/modifications.
// @Summary Lista modificações com estoque disponível
// @Description Retorna as modificações da variante com saldo vendável positivo nos armazéns do usuário autenticado.
// @Tags choices
// @Produce json
// @Param product query string true "ID do produto"
// @Param offer query string true "ID constante da oferta"
// @Param variation query string true "ID constante da variante"
// @Success 200 {array} domain.ModificationChoice "Modificações em estoque"
// @Failure 400 {object} domain.ErrorResponse "Parâmetros obrigatórios ausentes"
// @Failure 401 {object} domain.ErrorResponse "Não autorizado"
// @Failure 500 {object} domain.ErrorResponse "Erro interno do servidor"
// @Security ApiKeyAuth
// @Router /choices/modifications [get]
func (h *Handler) ModificationsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()

	// O usuário vem das claims do JWT anexadas pelo AuthMiddleware
	claims, ok := middleware.GetUserClaimsFromContext(ctx)
	if !ok {
		h.handleServiceResponse(w, r, nil, apperror.NewUnauthorizedError("Autorização necessária."), http.StatusOK)
		return
	}

	query := r.URL.Query()
	filter := domain.ModificationChoiceFilter{
		User:      claims.UserID,
		Product:   query.Get("product"),
		Offer:     query.Get("offer"),
		Variation: query.Get("variation"),
	}

	choices, err := h.Service.ModificationsInStock(ctx, filter)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	// Lista vazia é serializada como [] em vez de null
	if choices == nil {
		choices = []domain.ModificationChoice{}
	}
	h.handleServiceResponse(w, r, choices, nil, http.StatusOK)
}

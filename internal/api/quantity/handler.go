package quantity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"stockmove/internal/domain"
	apperror "stockmove/internal/errors"
	"stockmove/internal/pkg/logger"
)

// QuantityService define o contrato que o Handler espera da camada de Serviço:
// a mesma cascata de resolução usada pelo processamento de movimentações.
type QuantityService interface {
	Resolve(ctx context.Context, product, offer, variation, modification string) (domain.ProductQuantity, error)
}

// Handler agrupa os métodos de Handler de inspeção da carteira de quantidades.
type Handler struct {
	Service QuantityService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc QuantityService, log logger.Logger) *Handler {
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

// ResolveQuantityHandler lida com a requisição GET /v1/quantities.
// @Summary Inspeciona o registro de contagem de uma combinação
// @Description Resolve o registro de contagem mais específico (modificação > variante > oferta > produto) e o retorna. Restrito a administradores.
// @Tags quantities
// @Produce json
// @Param product query string true "ID do produto"
// @Param offer query string false "ID constante da oferta"
// @Param variation query string false "ID constante da variante (exige oferta)"
// @Param modification query string false "ID constante da modificação (exige variante)"
// @Success 200 {object} domain.ProductQuantity "Registro de contagem resolvido"
// @Failure 400 {object} domain.ErrorResponse "Parâmetros inválidos"
// @Failure 403 {object} domain.ErrorResponse "Acesso restrito a administradores"
// @Failure 404 {object} domain.ErrorResponse "Nenhum registro em nenhum nível"
// @Failure 500 {object} domain.ErrorResponse "Erro interno do servidor"
// @Security ApiKeyAuth
// @Router /quantities [get]
func (h *Handler) ResolveQuantityHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	query := r.URL.Query()

	product := query.Get("product")
	offer := query.Get("offer")
	variation := query.Get("variation")
	modification := query.Get("modification")

	if product == "" {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("O parâmetro 'product' é obrigatório."), http.StatusOK)
		return
	}
	// A especificidade é estritamente aninhada
	if variation != "" && offer == "" {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("O parâmetro 'variation' exige 'offer'."), http.StatusOK)
		return
	}
	if modification != "" && variation == "" {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("O parâmetro 'modification' exige 'variation'."), http.StatusOK)
		return
	}

	resolved, err := h.Service.Resolve(ctx, product, offer, variation, modification)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	h.handleServiceResponse(w, r, resolved, nil, http.StatusOK)
}

package profile

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

// ProfileService define o contrato que o Handler espera da camada de Serviço.
type ProfileService interface {
	WarehouseChoices(ctx context.Context, userID string) (domain.ProfileChoiceResponse, error)
}

// Handler agrupa os métodos de Handler do formulário de seleção de armazém.
type Handler struct {
	Service ProfileService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc ProfileService, log logger.Logger) *Handler {
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

// WarehouseProfilesHandler lida com a requisição GET /v1/warehouse/profiles.
// @Summary Lista perfis de armazém do usuário autenticado
// @Description Retorna os perfis ATIVOS do usuário; com exatamente um perfil, devolve o ID pré-selecionado para o formulário.
// @Tags profiles
// @Produce json
// @Success 200 {object} domain.ProfileChoiceResponse "Perfis de armazém"
// @Failure 401 {object} domain.ErrorResponse "Não autorizado"
// @Failure 500 {object} domain.ErrorResponse "Erro interno do servidor"
// @Security ApiKeyAuth
// @Router /warehouse/profiles [get]
func (h *Handler) WarehouseProfilesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()

	claims, ok := middleware.GetUserClaimsFromContext(ctx)
	if !ok {
		h.handleServiceResponse(w, r, nil, apperror.NewUnauthorizedError("Autorização necessária."), http.StatusOK)
		return
	}

	response, err := h.Service.WarehouseChoices(ctx, claims.UserID)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	h.handleServiceResponse(w, r, response, nil, http.StatusOK)
}

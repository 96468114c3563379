package profileservice

import (
	"context"

	"stockmove/internal/domain"
	"stockmove/internal/pkg/logger"
)

// ProfileRepository define o contrato que o Serviço de Perfis espera da
// camada de Persistência.
type ProfileRepository interface {
	FindActiveByUser(ctx context.Context, userID string) ([]domain.UserProfile, error)
}

// Service é a camada de lógica de negócio do formulário de seleção de armazém.
type Service struct {
	repo   ProfileRepository
	logger logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Perfis.
func NewService(repo ProfileRepository, logger logger.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// WarehouseChoices monta o payload do formulário de seleção de armazém.
// Quando o usuário possui exatamente um perfil ativo, o ID dele é devolvido
// em Preselected para preenchimento automático do formulário.
func (s *Service) WarehouseChoices(ctx context.Context, userID string) (domain.ProfileChoiceResponse, error) {
	profiles, err := s.repo.FindActiveByUser(ctx, userID)
	if err != nil {
		s.logger.Error("Falha ao buscar perfis ativos do usuário.", err)
		return domain.ProfileChoiceResponse{}, err
	}

	response := domain.ProfileChoiceResponse{Profiles: profiles}
	if len(profiles) == 1 {
		response.Preselected = profiles[0].ID
	}

	s.logger.Debug("Perfis de armazém retornados.", map[string]interface{}{
		"user_id":     userID,
		"count":       len(profiles),
		"preselected": response.Preselected != "",
	})
	return response, nil
}

package choiceservice

import (
	"context"

	"stockmove/internal/domain"
	apperror "stockmove/internal/errors"
	"stockmove/internal/pkg/logger"
)

// ChoiceRepository define o contrato que o Serviço de Escolhas espera da
// camada de Persistência.
type ChoiceRepository interface {
	FindModificationsInStock(ctx context.Context, filter domain.ModificationChoiceFilter) ([]domain.ModificationChoice, error)
}

// Service é a camada de lógica de negócio da lista de modificações em estoque.
type Service struct {
	repo   ChoiceRepository
	logger logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Escolhas.
func NewService(repo ChoiceRepository, logger logger.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// ModificationsInStock retorna as modificações com estoque disponível para a
// combinação (usuário, produto, oferta, variante). Todos os parâmetros são
// obrigatórios: a especificidade aninhada exige a cadeia completa até a variante.
func (s *Service) ModificationsInStock(ctx context.Context, filter domain.ModificationChoiceFilter) ([]domain.ModificationChoice, error) {
	if filter.User == "" || filter.Product == "" || filter.Offer == "" || filter.Variation == "" {
		return nil, apperror.NewValidationError("É necessário informar usuário, produto, oferta e variante.")
	}

	choices, err := s.repo.FindModificationsInStock(ctx, filter)
	if err != nil {
		s.logger.Error("Falha ao buscar modificações em estoque no repositório.", err)
		return nil, err
	}

	s.logger.Debug("Modificações em estoque retornadas.", map[string]interface{}{
		"user":    filter.User,
		"product": filter.Product,
		"count":   len(choices),
	})
	return choices, nil
}

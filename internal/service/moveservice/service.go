package moveservice

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"

	"stockmove/internal/domain"
	apperror "stockmove/internal/errors"
	"stockmove/internal/pkg/dedup"
	"stockmove/internal/pkg/logger"
)

// EventRepository define o contrato que o Serviço de Movimentação espera do
// armazenamento de eventos (somente leitura).
type EventRepository interface {
	FindByID(ctx context.Context, id string) (domain.StockEvent, error)
}

// QuantityRepository define o contrato que o Serviço espera da carteira de
// quantidades: uma busca por nível de especificidade e a primitiva de
// subtração condicional.
type QuantityRepository interface {
	GetModificationQuantity(ctx context.Context, product, offer, variation, modification string) (domain.ProductQuantity, error)
	GetVariationQuantity(ctx context.Context, product, offer, variation string) (domain.ProductQuantity, error)
	GetOfferQuantity(ctx context.Context, product, offer string) (domain.ProductQuantity, error)
	GetProductQuantity(ctx context.Context, product string) (domain.ProductQuantity, error)
	SubQuantityReserve(ctx context.Context, id string, quantity int) (bool, error)
}

// Namespace de idempotência compartilhado pelos handlers de solicitações de estoque.
const dedupNamespace = "products-stocks"

// Identidade do handler, usada como parte da chave de deduplicação para que
// handlers distintos do mesmo evento não colidam entre si.
var handlerIdentity = func() string {
	sum := md5.Sum([]byte("moveservice.SubQuantityReserveByMove"))
	return hex.EncodeToString(sum[:])
}()

// Service remove a reserva e subtrai a quantidade dos produtos na carteira
// quando uma solicitação é movimentada entre armazéns. A reposição acontece
// quando houver a chegada no armazém de destino (fora do escopo deste serviço:
// este handler apenas DEBITA o lado de origem).
type Service struct {
	events       EventRepository
	quantities   QuantityRepository
	deduplicator dedup.Deduplicator
	logger       logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Movimentação.
func NewService(events EventRepository, quantities QuantityRepository, deduplicator dedup.Deduplicator, logger logger.Logger) *Service {
	return &Service{
		events:       events,
		quantities:   quantities,
		deduplicator: deduplicator,
		logger:       logger,
	}
}

// Handle processa uma mensagem de solicitação de estoque.
//
// Condições esperadas de negócio (status errado, evento ausente, mensagem já
// processada, saldo insuficiente) NÃO retornam erro: são registradas em log e
// a mensagem é considerada tratada, para que o broker não a reentregue.
// Somente falhas de infraestrutura (DB/Redis indisponíveis) e o marcador de
// deduplicação em andamento de outra entrega retornam erro e provocam
// reentrega.
func (s *Service) Handle(ctx context.Context, message domain.StockMoveMessage) error {

	// 1. A mensagem precisa referenciar a versão anterior do evento
	if message.Last == "" {
		return nil
	}

	// 2. Obtemos o status ANTERIOR da solicitação
	event, err := s.events.FindByID(ctx, message.Last)
	if err != nil {
		var notFound *apperror.NotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return err
	}

	// 3. Se o status anterior não é Moving «Movimentação», nada a fazer
	if !event.IsMoving() {
		return nil
	}

	// 4. Obtemos toda a produção da solicitação que é movimentada do armazém.
	// Se a solicitação foi cancelada, a coleção de produtos estará vazia.
	if len(event.Products) == 0 {
		s.logger.Warn("Solicitação não possui produtos na coleção.", map[string]interface{}{
			"message_id": message.ID,
			"event_id":   message.Last,
		})
		return nil
	}

	// 5. Porteiro de idempotência: verificação e reivindicação atômicas.
	// A finalização (Save) só acontece depois que todas as linhas forem
	// aplicadas. Um marcador em andamento de outra entrega (dedup.ErrInFlight)
	// propaga como erro: a mensagem não é confirmada e o broker reentrega até
	// o marcador expirar ou virar executado.
	token := s.deduplicator.
		Namespace(dedupNamespace).
		Deduplication([]string{message.ID, string(domain.StatusMoving), handlerIdentity})

	executed, err := token.IsExecuted(ctx)
	if err != nil {
		return err
	}
	if executed {
		return nil
	}

	// 6. Aplica a subtração linha a linha. Uma linha que falha por regra de
	// negócio não aborta o lote; falha de infraestrutura aborta e libera o
	// marcador para a reentrega reprocessar imediatamente.
	for _, product := range event.Products {
		if err := s.subQuantity(ctx, message, product); err != nil {
			if releaseErr := token.Release(ctx); releaseErr != nil {
				s.logger.Error("Falha ao liberar marcador de deduplicação.", releaseErr)
			}
			return err
		}
	}

	return token.Save(ctx)
}

// Resolve expõe a cascata de resolução para inspeção administrativa: retorna
// o registro de contagem mais específico existente para a combinação informada.
func (s *Service) Resolve(ctx context.Context, product, offer, variation, modification string) (domain.ProductQuantity, error) {
	return s.resolveQuantity(ctx, domain.StockEventProduct{
		Product:      product,
		Offer:        offer,
		Variation:    variation,
		Modification: modification,
	})
}

// quantityLookup é um passo da cascata de resolução do registro de contagem.
type quantityLookup struct {
	applies bool
	find    func(ctx context.Context) (domain.ProductQuantity, error)
}

// resolveQuantity resolve o registro de contagem MAIS ESPECÍFICO existente
// para a linha: modificação > variante > oferta > produto. Cada nível ausente
// (não encontrado) passa para o nível mais amplo seguinte.
func (s *Service) resolveQuantity(ctx context.Context, p domain.StockEventProduct) (domain.ProductQuantity, error) {
	cascade := []quantityLookup{
		{
			// Contagem da modificação da variante múltipla da oferta
			applies: p.HasModification(),
			find: func(ctx context.Context) (domain.ProductQuantity, error) {
				return s.quantities.GetModificationQuantity(ctx, p.Product, p.Offer, p.Variation, p.Modification)
			},
		},
		{
			// Contagem da variante múltipla da oferta
			applies: p.HasVariation(),
			find: func(ctx context.Context) (domain.ProductQuantity, error) {
				return s.quantities.GetVariationQuantity(ctx, p.Product, p.Offer, p.Variation)
			},
		},
		{
			// Contagem da oferta comercial
			applies: p.HasOffer(),
			find: func(ctx context.Context) (domain.ProductQuantity, error) {
				return s.quantities.GetOfferQuantity(ctx, p.Product, p.Offer)
			},
		},
		{
			// Contagem do produto (fallback final)
			applies: true,
			find: func(ctx context.Context) (domain.ProductQuantity, error) {
				return s.quantities.GetProductQuantity(ctx, p.Product)
			},
		},
	}

	for _, lookup := range cascade {
		if !lookup.applies {
			continue
		}

		quantity, err := lookup.find(ctx)
		if err == nil {
			return quantity, nil
		}

		var notFound *apperror.NotFoundError
		if errors.As(err, &notFound) {
			continue // Tenta o próximo nível mais amplo
		}
		return domain.ProductQuantity{}, err
	}

	return domain.ProductQuantity{}, apperror.NewNotFoundError(
		"Registro de contagem não encontrado em nenhum nível de especificidade.",
	)
}

// subQuantity resolve e debita o registro de contagem de UMA linha da solicitação.
// Violações de regra de negócio são registradas como CRITICAL e retornam nil
// para que as demais linhas do lote continuem sendo processadas.
func (s *Service) subQuantity(ctx context.Context, message domain.StockMoveMessage, product domain.StockEventProduct) error {
	contextFields := map[string]interface{}{
		"product":      product.Product,
		"offer":        product.Offer,
		"variation":    product.Variation,
		"modification": product.Modification,
		"event_id":     message.Last,
		"quantity":     product.Quantity,
	}

	quantity, err := s.resolveQuantity(ctx, product)
	if err != nil {
		var notFound *apperror.NotFoundError
		if errors.As(err, &notFound) {
			s.logger.Critical("Movimentação: Impossível subtrair reserva e quantidade do produto: carteira não encontrada.", contextFields)
			return nil
		}
		return err
	}

	applied, err := s.quantities.SubQuantityReserve(ctx, quantity.ID, product.Quantity)
	if err != nil {
		return err
	}
	if !applied {
		s.logger.Critical("Movimentação: Impossível subtrair reserva e quantidade do produto: reserva ou estoque insuficiente.", contextFields)
		return nil
	}

	s.logger.Info("Movimentação: Subtraímos a reserva geral e a quantidade do produto na carteira.", contextFields)
	return nil
}

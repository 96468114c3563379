package eventrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"stockmove/internal/domain"
	apperror "stockmove/internal/errors"
	"stockmove/internal/pkg/logger"
)

// EventRepository dá acesso de LEITURA ao armazenamento de eventos de estoque.
// Os eventos são criados a montante (módulo de solicitações); este serviço
// apenas consulta a versão referenciada pela mensagem recebida.
type EventRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewEventRepository cria e retorna uma nova instância do Repositório de Eventos.
func NewEventRepository(db *sql.DB, dbTimeout time.Duration, logger logger.Logger) *EventRepository {
	return &EventRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

// FindByID busca um evento de estoque pelo ID, incluindo as linhas de produto.
func (r *EventRepository) FindByID(ctx context.Context, id string) (domain.StockEvent, error) {
	r.logger.Debug("Buscando evento de estoque no repositório.", map[string]interface{}{"event_id": id})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	queryEvent := `
        SELECT id, number, status, created_at
        FROM stock_events
        WHERE id = $1`

	var event domain.StockEvent
	err := r.DB.QueryRowContext(ctxTimeout, queryEvent, id).Scan(
		&event.ID, &event.Number, &event.Status, &event.CreatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		r.logger.Debug("Evento de estoque não encontrado.", map[string]interface{}{"event_id": id})
		return domain.StockEvent{}, apperror.NewNotFoundError(fmt.Sprintf("Evento de estoque %s não encontrado.", id))
	}
	if err != nil {
		r.logger.Error("Falha ao buscar evento de estoque no DB.", err)
		return domain.StockEvent{}, apperror.NewDBError("Falha ao buscar evento de estoque", err)
	}

	// Linhas de produto do evento (coleção vazia é um estado válido: ocorre
	// quando um cancelamento reaproveita o ID da solicitação sem produtos)
	queryProducts := `
        SELECT product, COALESCE(offer, ''), COALESCE(variation, ''), COALESCE(modification, ''), quantity
        FROM stock_event_products
        WHERE event_id = $1
        ORDER BY ord`

	rows, err := r.DB.QueryContext(ctxTimeout, queryProducts, id)
	if err != nil {
		r.logger.Error("Falha ao buscar produtos do evento no DB.", err)
		return domain.StockEvent{}, apperror.NewDBError("Falha ao buscar produtos do evento", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p domain.StockEventProduct
		if err := rows.Scan(&p.Product, &p.Offer, &p.Variation, &p.Modification, &p.Quantity); err != nil {
			r.logger.Error("Falha ao mapear produto do evento.", err)
			return domain.StockEvent{}, apperror.NewDBError("Falha ao mapear produto do evento", err)
		}
		event.Products = append(event.Products, p)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("Falha ao iterar produtos do evento.", err)
		return domain.StockEvent{}, apperror.NewDBError("Falha ao iterar produtos do evento", err)
	}

	r.logger.Debug("Evento de estoque encontrado.", map[string]interface{}{
		"event_id": id,
		"status":   string(event.Status),
		"products": len(event.Products),
	})
	return event, nil
}

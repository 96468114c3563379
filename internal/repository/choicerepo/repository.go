package choicerepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"stockmove/internal/domain"
	apperror "stockmove/internal/errors"
	"stockmove/internal/pkg/cache"
	"stockmove/internal/pkg/logger"
)

// ChoiceRepository busca as modificações de variante com estoque disponível
// nos armazéns de um usuário, para a lista de escolha do formulário
// administrativo. O resultado é cacheado no Redis (estratégia Cache-Aside),
// pois a consulta agrega os totais de todos os armazéns do usuário.
type ChoiceRepository struct {
	DB        *sql.DB
	Cache     cache.Client
	DBTimeout time.Duration
	CacheTTL  time.Duration
	logger    logger.Logger
}

// NewChoiceRepository cria e retorna uma nova instância do Repositório de Escolhas.
// Aqui injetamos as dependências de Infraestrutura (DB e Cache).
func NewChoiceRepository(db *sql.DB, cacheClient cache.Client, dbTimeout, cacheTTL time.Duration, logger logger.Logger) *ChoiceRepository {
	return &ChoiceRepository{
		DB:        db,
		Cache:     cacheClient,
		DBTimeout: dbTimeout,
		CacheTTL:  cacheTTL,
		logger:    logger,
	}
}

// Define a chave de cache para a lista de modificações em estoque.
const choiceCacheKey = "products-stocks:choices:%s:%s:%s:%s"

// FindModificationsInStock retorna as modificações da combinação
// (usuário, produto, oferta, variante) com saldo vendável positivo
// ((total - reserve) > 0) somado entre os armazéns do usuário.
func (r *ChoiceRepository) FindModificationsInStock(ctx context.Context, filter domain.ModificationChoiceFilter) ([]domain.ModificationChoice, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	key := fmt.Sprintf(choiceCacheKey, filter.User, filter.Product, filter.Offer, filter.Variation)

	// --- 1. Estratégia Cache-Aside (READ) ---
	cachedData, err := r.Cache.Get(ctxTimeout, key)
	if err == nil {
		var choices []domain.ModificationChoice
		if json.Unmarshal([]byte(cachedData), &choices) == nil {
			r.logger.Debug("Cache HIT para lista de modificações.", map[string]interface{}{"key": key})
			return choices, nil
		}
		// Conteúdo corrompido: descarta e segue para o DB
		_ = r.Cache.Delete(ctxTimeout, key)
	} else if err != cache.ErrCacheMiss {
		// Falha de cache não impede a consulta; apenas registramos
		r.logger.Error("Falha ao consultar cache de modificações.", err)
	}

	// --- 2. Consulta no DB ---
	// Agrega os totais de todos os armazéns (perfis) do usuário e junta a
	// tabela de referência de modificações para obter rótulo e sufixo.
	query := `
        SELECT stock.modification,
               m.value,
               COALESCE(m.name, ''),
               COALESCE(m.postfix, ''),
               COALESCE(m.reference, ''),
               SUM(stock.total) - SUM(stock.reserve) AS available
        FROM stock_totals stock
        JOIN product_modifications m ON m.const = stock.modification
        WHERE stock.usr = $1
          AND stock.product = $2
          AND stock.offer = $3
          AND stock.variation = $4
          AND (stock.total - stock.reserve) > 0
        GROUP BY stock.modification, m.value, m.name, m.postfix, m.reference`

	rows, err := r.DB.QueryContext(ctxTimeout, query, filter.User, filter.Product, filter.Offer, filter.Variation)
	if err != nil {
		r.logger.Error("Falha ao buscar modificações em estoque no DB.", err)
		return nil, apperror.NewDBError("Falha ao buscar modificações em estoque", err)
	}
	defer rows.Close()

	var choices []domain.ModificationChoice
	for rows.Next() {
		var c domain.ModificationChoice
		if err := rows.Scan(&c.Modification, &c.Value, &c.Name, &c.Postfix, &c.Reference, &c.Available); err != nil {
			r.logger.Error("Falha ao mapear modificação em estoque.", err)
			return nil, apperror.NewDBError("Falha ao mapear modificação em estoque", err)
		}
		choices = append(choices, c)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("Falha ao iterar modificações em estoque.", err)
		return nil, apperror.NewDBError("Falha ao iterar modificações em estoque", err)
	}

	// --- 3. Estratégia Cache-Aside (WRITE) ---
	if jsonBytes, marshalErr := json.Marshal(choices); marshalErr == nil {
		if cacheErr := r.Cache.Set(ctxTimeout, key, string(jsonBytes), r.CacheTTL); cacheErr != nil {
			r.logger.Error("Falha ao gravar lista de modificações no cache.", cacheErr)
		}
	}

	r.logger.Debug("Modificações em estoque carregadas do DB.", map[string]interface{}{
		"user":    filter.User,
		"product": filter.Product,
		"count":   len(choices),
	})
	return choices, nil
}

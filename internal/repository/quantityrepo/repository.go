package quantityrepo

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

// QuantityRepository dá acesso à carteira de quantidades (ledger) dos produtos.
// Cada registro guarda o par (total, reserve) de uma combinação
// produto/oferta/variante/modificação. Registros mais amplos (a nível de
// produto ou oferta) têm as colunas mais específicas como NULL.
type QuantityRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewQuantityRepository cria e retorna uma nova instância do Repositório de Quantidades.
func NewQuantityRepository(db *sql.DB, dbTimeout time.Duration, logger logger.Logger) *QuantityRepository {
	return &QuantityRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

// scanQuantity mapeia uma linha da tabela product_quantities para o domínio.
func scanQuantity(row *sql.Row) (domain.ProductQuantity, error) {
	var q domain.ProductQuantity
	var offer, variation, modification sql.NullString
	err := row.Scan(&q.ID, &q.Product, &offer, &variation, &modification, &q.Total, &q.Reserve, &q.UpdatedAt)
	if err != nil {
		return domain.ProductQuantity{}, err
	}
	q.Offer = offer.String
	q.Variation = variation.String
	q.Modification = modification.String
	return q, nil
}

const quantityColumns = `id, product, offer, variation, modification, total, reserve, updated_at`

// GetModificationQuantity busca o registro de contagem a nível de modificação
// (o nível mais específico do aninhamento).
func (r *QuantityRepository) GetModificationQuantity(ctx context.Context, product, offer, variation, modification string) (domain.ProductQuantity, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        SELECT ` + quantityColumns + `
        FROM product_quantities
        WHERE product = $1 AND offer = $2 AND variation = $3 AND modification = $4`

	q, err := scanQuantity(r.DB.QueryRowContext(ctxTimeout, query, product, offer, variation, modification))
	return r.translate(q, err, "modificação", modification)
}

// GetVariationQuantity busca o registro de contagem a nível de variante múltipla.
func (r *QuantityRepository) GetVariationQuantity(ctx context.Context, product, offer, variation string) (domain.ProductQuantity, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        SELECT ` + quantityColumns + `
        FROM product_quantities
        WHERE product = $1 AND offer = $2 AND variation = $3 AND modification IS NULL`

	q, err := scanQuantity(r.DB.QueryRowContext(ctxTimeout, query, product, offer, variation))
	return r.translate(q, err, "variante", variation)
}

// GetOfferQuantity busca o registro de contagem a nível de oferta comercial.
func (r *QuantityRepository) GetOfferQuantity(ctx context.Context, product, offer string) (domain.ProductQuantity, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        SELECT ` + quantityColumns + `
        FROM product_quantities
        WHERE product = $1 AND offer = $2 AND variation IS NULL AND modification IS NULL`

	q, err := scanQuantity(r.DB.QueryRowContext(ctxTimeout, query, product, offer))
	return r.translate(q, err, "oferta", offer)
}

// GetProductQuantity busca o registro de contagem a nível de produto
// (o nível mais amplo, usado como fallback final da cascata).
func (r *QuantityRepository) GetProductQuantity(ctx context.Context, product string) (domain.ProductQuantity, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        SELECT ` + quantityColumns + `
        FROM product_quantities
        WHERE product = $1 AND offer IS NULL AND variation IS NULL AND modification IS NULL`

	q, err := scanQuantity(r.DB.QueryRowContext(ctxTimeout, query, product))
	return r.translate(q, err, "produto", product)
}

// translate converte erros de SQL para a taxonomia de erros da aplicação.
func (r *QuantityRepository) translate(q domain.ProductQuantity, err error, level, id string) (domain.ProductQuantity, error) {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ProductQuantity{}, apperror.NewNotFoundError(
			fmt.Sprintf("Registro de contagem a nível de %s (%s) não encontrado.", level, id),
		)
	}
	if err != nil {
		r.logger.Error("Falha ao buscar registro de contagem no DB.", err)
		return domain.ProductQuantity{}, apperror.NewDBError("Falha ao buscar registro de contagem", err)
	}
	return q, nil
}

// SubQuantityReserve subtrai a quantidade movimentada do total E da reserva do
// registro, em um único UPDATE condicional.
//
// O WHERE exige saldo suficiente nos dois contadores: ou ambos são subtraídos,
// ou nada é alterado (tudo-ou-nada por registro). A verificação acontece
// DENTRO do comando, nunca por leitura-comparação-escrita na aplicação, para
// fechar a janela de corrida com reservas e chegadas concorrentes e impedir
// que total ou reserve fiquem negativos.
//
// Retorna applied=false quando o saldo é insuficiente (zero linhas afetadas).
func (r *QuantityRepository) SubQuantityReserve(ctx context.Context, id string, quantity int) (bool, error) {
	r.logger.Debug("Subtraindo quantidade e reserva do registro de contagem.", map[string]interface{}{
		"quantity_id": id,
		"quantity":    quantity,
	})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        UPDATE product_quantities
        SET total = total - $1, reserve = reserve - $1, updated_at = $2
        WHERE id = $3 AND total >= $1 AND reserve >= $1`

	result, err := r.DB.ExecContext(ctxTimeout, query, quantity, time.Now().UTC(), id)
	if err != nil {
		r.logger.Error("Falha ao subtrair quantidade e reserva no DB.", err)
		return false, apperror.NewDBError("Falha ao subtrair quantidade e reserva", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		r.logger.Error("Falha ao verificar linhas afetadas após subtração.", err)
		return false, apperror.NewDBError("Falha ao verificar linhas afetadas", err)
	}

	return rowsAffected == 1, nil
}

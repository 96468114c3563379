package domain

import "time"

// ProductQuantity representa o registro de contagem (ledger) de uma combinação
// produto/oferta/variante/modificação na carteira de produtos.
// Invariante: 0 <= Reserve <= Total. A invariante é garantida pela camada de
// persistência através de UPDATE condicional, nunca por leitura-modificação-escrita
// em memória da aplicação.
type ProductQuantity struct {
	ID           string    `json:"id"`
	Product      string    `json:"product"`
	Offer        string    `json:"offer,omitempty"`        // Vazio para registro a nível de produto
	Variation    string    `json:"variation,omitempty"`    // Vazio para registros mais amplos
	Modification string    `json:"modification,omitempty"` // Vazio para registros mais amplos
	Total        int       `json:"total"`                  // Quantidade total em mãos
	Reserve      int       `json:"reserve"`                // Quantidade comprometida com pedidos
	UpdatedAt    time.Time `json:"updated_at"`
}

// Available retorna a quantidade vendável (total menos reserva).
func (q ProductQuantity) Available() int {
	return q.Total - q.Reserve
}

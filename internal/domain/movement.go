package domain

import "time"

// StockStatus é um tipo string para representar o status de uma solicitação de estoque.
type StockStatus string

// Constantes para os status de solicitação (ciclo de vida da movimentação)
const (
	StatusMoving   StockStatus = "moving"   // Movimentação entre armazéns em andamento
	StatusIncoming StockStatus = "incoming" // Chegada no armazém de destino
	StatusCancel   StockStatus = "cancel"   // Solicitação cancelada
	StatusPackage  StockStatus = "package"  // Em separação/embalagem
)

// StockMoveMessage é o payload recebido do broker para cada solicitação de estoque.
// O campo Last referencia a versão ANTERIOR do evento (o status de onde a
// solicitação veio), que é o que este serviço precisa inspecionar.
type StockMoveMessage struct {
	ID    string `json:"id"`    // Identificador da solicitação
	Event string `json:"event"` // Versão atual do evento
	Last  string `json:"last"`  // Versão anterior do evento (vazio se for a primeira)
}

// StockEvent representa uma versão imutável de uma solicitação de movimentação.
// Este serviço apenas LÊ eventos; a criação acontece a montante.
type StockEvent struct {
	ID        string              `json:"id"`
	Number    string              `json:"number"` // Número legível da solicitação
	Status    StockStatus         `json:"status"`
	Products  []StockEventProduct `json:"products"`
	CreatedAt time.Time           `json:"created_at"`
}

// StockEventProduct é uma linha de produto dentro de uma movimentação.
// A especificidade é estritamente aninhada: Modification exige Variation,
// que exige Offer, que exige Product. Campos opcionais ficam vazios ("").
type StockEventProduct struct {
	Product      string `json:"product"`      // Identificador do produto (obrigatório)
	Offer        string `json:"offer"`        // Oferta comercial (opcional)
	Variation    string `json:"variation"`    // Variante múltipla da oferta (opcional, exige Offer)
	Modification string `json:"modification"` // Modificação da variante (opcional, exige Variation)
	Quantity     int    `json:"quantity"`     // Quantidade movimentada (sempre positiva)
}

// HasOffer informa se a linha referencia uma oferta.
func (p StockEventProduct) HasOffer() bool { return p.Offer != "" }

// HasVariation informa se a linha referencia uma variante múltipla.
func (p StockEventProduct) HasVariation() bool { return p.Variation != "" }

// HasModification informa se a linha referencia uma modificação.
func (p StockEventProduct) HasModification() bool { return p.Modification != "" }

// IsMoving verifica se o evento está no status de movimentação entre armazéns.
func (e StockEvent) IsMoving() bool { return e.Status == StatusMoving }

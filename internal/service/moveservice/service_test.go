package moveservice_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"stockmove/internal/domain"
	apperror "stockmove/internal/errors"
	"stockmove/internal/pkg/dedup"
	"stockmove/internal/service/moveservice"
)

// MockEventRepository é uma implementação mock da interface EventRepository
type MockEventRepository struct {
	mock.Mock
}

func (m *MockEventRepository) FindByID(ctx context.Context, id string) (domain.StockEvent, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.StockEvent), args.Error(1)
}

// MockQuantityRepository é uma implementação mock da interface QuantityRepository
type MockQuantityRepository struct {
	mock.Mock
}

func (m *MockQuantityRepository) GetModificationQuantity(ctx context.Context, product, offer, variation, modification string) (domain.ProductQuantity, error) {
	args := m.Called(ctx, product, offer, variation, modification)
	return args.Get(0).(domain.ProductQuantity), args.Error(1)
}

func (m *MockQuantityRepository) GetVariationQuantity(ctx context.Context, product, offer, variation string) (domain.ProductQuantity, error) {
	args := m.Called(ctx, product, offer, variation)
	return args.Get(0).(domain.ProductQuantity), args.Error(1)
}

func (m *MockQuantityRepository) GetOfferQuantity(ctx context.Context, product, offer string) (domain.ProductQuantity, error) {
	args := m.Called(ctx, product, offer)
	return args.Get(0).(domain.ProductQuantity), args.Error(1)
}

func (m *MockQuantityRepository) GetProductQuantity(ctx context.Context, product string) (domain.ProductQuantity, error) {
	args := m.Called(ctx, product)
	return args.Get(0).(domain.ProductQuantity), args.Error(1)
}

func (m *MockQuantityRepository) SubQuantityReserve(ctx context.Context, id string, quantity int) (bool, error) {
	args := m.Called(ctx, id, quantity)
	return args.Bool(0), args.Error(1)
}

// MockToken é uma implementação mock da interface dedup.Token
type MockToken struct {
	mock.Mock
}

func (m *MockToken) IsExecuted(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func (m *MockToken) Save(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockToken) Release(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// stubDeduplicator devolve sempre o mesmo token e grava o namespace e as
// partes da chave usados, para que o teste verifique como o serviço monta
// a identidade de deduplicação.
type stubDeduplicator struct {
	mu        sync.Mutex
	token     dedup.Token
	namespace string
	parts     []string
}

func (d *stubDeduplicator) Namespace(ns string) dedup.Deduplicator {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.namespace = ns
	return d
}

func (d *stubDeduplicator) Deduplication(parts []string) dedup.Token {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.parts = parts
	return d.token
}

// spyLogger captura as mensagens para que os testes afirmem sobre os avisos
// e os registros críticos sem inspecionar a saída padrão.
type spyLogger struct {
	mu        sync.Mutex
	warns     []string
	criticals []string
}

func (l *spyLogger) Debug(msg string, fields map[string]interface{}) {}
func (l *spyLogger) Info(msg string, fields map[string]interface{})  {}
func (l *spyLogger) Warn(msg string, fields map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, msg)
}
func (l *spyLogger) Error(msg string, err error) {}
func (l *spyLogger) Critical(msg string, fields map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.criticals = append(l.criticals, msg)
}
func (l *spyLogger) Fatal(msg string, err error) {}

// newService monta o serviço com todos os colaboradores mockados.
func newService(events *MockEventRepository, quantities *MockQuantityRepository, token *MockToken) (*moveservice.Service, *stubDeduplicator, *spyLogger) {
	deduplicator := &stubDeduplicator{token: token}
	log := &spyLogger{}
	return moveservice.NewService(events, quantities, deduplicator, log), deduplicator, log
}

// TestHandle_IgnoraPrimeiraVersao testa que uma mensagem sem versão anterior é um no-op silencioso.
func TestHandle_IgnoraPrimeiraVersao(t *testing.T) {
	mockEvents := new(MockEventRepository)
	mockQuantities := new(MockQuantityRepository)
	mockToken := new(MockToken)

	svc, _, log := newService(mockEvents, mockQuantities, mockToken)

	err := svc.Handle(context.Background(), domain.StockMoveMessage{ID: "msg-1", Event: "v2", Last: ""})

	assert.NoError(t, err)
	assert.Empty(t, log.warns)
	mockEvents.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	mockToken.AssertNotCalled(t, "IsExecuted", mock.Anything)
	mockQuantities.AssertExpectations(t)
}

// TestHandle_EventoAusente testa que uma referência a um evento inexistente é tratada sem erro.
func TestHandle_EventoAusente(t *testing.T) {
	mockEvents := new(MockEventRepository)
	mockQuantities := new(MockQuantityRepository)
	mockToken := new(MockToken)

	svc, _, _ := newService(mockEvents, mockQuantities, mockToken)

	mockEvents.On("FindByID", mock.AnythingOfType("context.backgroundCtx"), "v1").
		Return(domain.StockEvent{}, apperror.NewNotFoundError("Evento não encontrado"))

	err := svc.Handle(context.Background(), domain.StockMoveMessage{ID: "msg-1", Event: "v2", Last: "v1"})

	assert.NoError(t, err)
	mockToken.AssertNotCalled(t, "IsExecuted", mock.Anything)
	mockQuantities.AssertNotCalled(t, "SubQuantityReserve", mock.Anything, mock.Anything, mock.Anything)
	mockEvents.AssertExpectations(t)
}

// TestHandle_FalhaInfraNaBusca testa que uma falha de DB é propagada para provocar reentrega.
func TestHandle_FalhaInfraNaBusca(t *testing.T) {
	mockEvents := new(MockEventRepository)
	mockQuantities := new(MockQuantityRepository)
	mockToken := new(MockToken)

	svc, _, _ := newService(mockEvents, mockQuantities, mockToken)

	dbErr := apperror.NewDBError("Falha ao buscar evento", errors.New("connection refused"))
	mockEvents.On("FindByID", mock.AnythingOfType("context.backgroundCtx"), "v1").
		Return(domain.StockEvent{}, dbErr)

	err := svc.Handle(context.Background(), domain.StockMoveMessage{ID: "msg-1", Event: "v2", Last: "v1"})

	assert.Error(t, err)
	mockToken.AssertNotCalled(t, "IsExecuted", mock.Anything)
	mockEvents.AssertExpectations(t)
}

// TestHandle_StatusNaoMovimentacao testa que qualquer status anterior diferente
// de "moving" é descartado sem tocar na carteira nem no deduplicador.
func TestHandle_StatusNaoMovimentacao(t *testing.T) {
	for _, status := range []domain.StockStatus{domain.StatusIncoming, domain.StatusCancel, domain.StatusPackage} {
		mockEvents := new(MockEventRepository)
		mockQuantities := new(MockQuantityRepository)
		mockToken := new(MockToken)

		svc, _, log := newService(mockEvents, mockQuantities, mockToken)

		mockEvents.On("FindByID", mock.AnythingOfType("context.backgroundCtx"), "v1").
			Return(domain.StockEvent{
				ID:     "v1",
				Status: status,
				Products: []domain.StockEventProduct{
					{Product: "prod-1", Quantity: 3},
				},
			}, nil)

		err := svc.Handle(context.Background(), domain.StockMoveMessage{ID: "msg-1", Event: "v2", Last: "v1"})

		assert.NoError(t, err, "status %s", status)
		assert.Empty(t, log.warns, "status %s", status)
		mockToken.AssertNotCalled(t, "IsExecuted", mock.Anything)
		mockQuantities.AssertNotCalled(t, "SubQuantityReserve", mock.Anything, mock.Anything, mock.Anything)
	}
}

// TestHandle_ColecaoVazia testa que uma solicitação cancelada (sem produtos)
// gera exatamente um aviso e nenhuma mutação nem reivindicação.
func TestHandle_ColecaoVazia(t *testing.T) {
	mockEvents := new(MockEventRepository)
	mockQuantities := new(MockQuantityRepository)
	mockToken := new(MockToken)

	svc, _, log := newService(mockEvents, mockQuantities, mockToken)

	mockEvents.On("FindByID", mock.AnythingOfType("context.backgroundCtx"), "v1").
		Return(domain.StockEvent{ID: "v1", Status: domain.StatusMoving}, nil)

	err := svc.Handle(context.Background(), domain.StockMoveMessage{ID: "msg-1", Event: "v2", Last: "v1"})

	assert.NoError(t, err)
	assert.Len(t, log.warns, 1)
	mockToken.AssertNotCalled(t, "IsExecuted", mock.Anything)
	mockToken.AssertNotCalled(t, "Save", mock.Anything)
	mockQuantities.AssertNotCalled(t, "SubQuantityReserve", mock.Anything, mock.Anything, mock.Anything)
	mockEvents.AssertExpectations(t)
}

// TestHandle_MensagemDeduplicada testa que uma segunda entrega da mesma
// mensagem não toca na carteira (idempotência).
func TestHandle_MensagemDeduplicada(t *testing.T) {
	mockEvents := new(MockEventRepository)
	mockQuantities := new(MockQuantityRepository)
	mockToken := new(MockToken)

	svc, deduplicator, _ := newService(mockEvents, mockQuantities, mockToken)

	mockEvents.On("FindByID", mock.AnythingOfType("context.backgroundCtx"), "v1").
		Return(domain.StockEvent{
			ID:     "v1",
			Status: domain.StatusMoving,
			Products: []domain.StockEventProduct{
				{Product: "prod-1", Quantity: 3},
			},
		}, nil)
	mockToken.On("IsExecuted", mock.AnythingOfType("context.backgroundCtx")).Return(true, nil)

	err := svc.Handle(context.Background(), domain.StockMoveMessage{ID: "msg-1", Event: "v2", Last: "v1"})

	assert.NoError(t, err)
	mockQuantities.AssertNotCalled(t, "SubQuantityReserve", mock.Anything, mock.Anything, mock.Anything)
	mockToken.AssertNotCalled(t, "Save", mock.Anything)

	// A identidade de deduplicação inclui a mensagem e o status alvo.
	assert.Equal(t, "products-stocks", deduplicator.namespace)
	assert.Len(t, deduplicator.parts, 3)
	assert.Equal(t, "msg-1", deduplicator.parts[0])
	assert.Equal(t, "moving", deduplicator.parts[1])

	mockToken.AssertExpectations(t)
}

// TestHandle_ReentregaComMarcadorPendente testa a reentrega que chega enquanto
// o marcador em andamento de outro worker ainda existe (por concorrência ou por
// uma queda antes de finalizar): o erro propaga, a mensagem não é confirmada e
// nenhuma subtração acontece — o broker tenta de novo mais tarde.
func TestHandle_ReentregaComMarcadorPendente(t *testing.T) {
	mockEvents := new(MockEventRepository)
	mockQuantities := new(MockQuantityRepository)
	mockToken := new(MockToken)

	svc, _, _ := newService(mockEvents, mockQuantities, mockToken)

	mockEvents.On("FindByID", mock.AnythingOfType("context.backgroundCtx"), "v1").
		Return(domain.StockEvent{
			ID:     "v1",
			Status: domain.StatusMoving,
			Products: []domain.StockEventProduct{
				{Product: "prod-1", Quantity: 3},
			},
		}, nil)

	// O worker anterior reivindicou o marcador e caiu sem Save/Release.
	mockToken.On("IsExecuted", mock.AnythingOfType("context.backgroundCtx")).
		Return(false, dedup.ErrInFlight)

	err := svc.Handle(context.Background(), domain.StockMoveMessage{ID: "msg-1", Event: "v2", Last: "v1"})

	// Erro = sem confirmação no broker = a movimentação NÃO é perdida.
	assert.ErrorIs(t, err, dedup.ErrInFlight)
	mockQuantities.AssertNotCalled(t, "SubQuantityReserve", mock.Anything, mock.Anything, mock.Anything)
	mockToken.AssertNotCalled(t, "Save", mock.Anything)
	mockToken.AssertNotCalled(t, "Release", mock.Anything)
	mockToken.AssertExpectations(t)
}

// TestHandle_SubtraiNivelModificacao testa o caminho feliz: a linha referencia
// uma modificação e o registro dela existe e tem saldo.
func TestHandle_SubtraiNivelModificacao(t *testing.T) {
	mockEvents := new(MockEventRepository)
	mockQuantities := new(MockQuantityRepository)
	mockToken := new(MockToken)

	svc, _, log := newService(mockEvents, mockQuantities, mockToken)

	mockEvents.On("FindByID", mock.AnythingOfType("context.backgroundCtx"), "v1").
		Return(domain.StockEvent{
			ID:     "v1",
			Status: domain.StatusMoving,
			Products: []domain.StockEventProduct{
				{Product: "prod-1", Offer: "offer-1", Variation: "var-1", Modification: "mod-1", Quantity: 10},
			},
		}, nil)

	mockToken.On("IsExecuted", mock.AnythingOfType("context.backgroundCtx")).Return(false, nil)
	mockToken.On("Save", mock.AnythingOfType("context.backgroundCtx")).Return(nil)

	// Registro contado no nível mais específico, com total == reserve == 10:
	// a subtração deve zerar os dois contadores (o repositório aplica o UPDATE
	// condicional; aqui verificamos apenas que ele é chamado com o delta certo).
	mockQuantities.On("GetModificationQuantity", mock.AnythingOfType("context.backgroundCtx"), "prod-1", "offer-1", "var-1", "mod-1").
		Return(domain.ProductQuantity{ID: "q-1", Product: "prod-1", Total: 10, Reserve: 10}, nil)
	mockQuantities.On("SubQuantityReserve", mock.AnythingOfType("context.backgroundCtx"), "q-1", 10).
		Return(true, nil)

	err := svc.Handle(context.Background(), domain.StockMoveMessage{ID: "msg-1", Event: "v2", Last: "v1"})

	assert.NoError(t, err)
	assert.Empty(t, log.criticals)
	mockQuantities.AssertNotCalled(t, "GetVariationQuantity", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	mockQuantities.AssertNotCalled(t, "GetProductQuantity", mock.Anything, mock.Anything)
	mockQuantities.AssertExpectations(t)
	mockToken.AssertExpectations(t)
}

// TestHandle_CascataParaNivelMaisAmplo testa que a ausência do registro da
// modificação faz a resolução cair para a variante múltipla.
func TestHandle_CascataParaNivelMaisAmplo(t *testing.T) {
	mockEvents := new(MockEventRepository)
	mockQuantities := new(MockQuantityRepository)
	mockToken := new(MockToken)

	svc, _, _ := newService(mockEvents, mockQuantities, mockToken)

	mockEvents.On("FindByID", mock.AnythingOfType("context.backgroundCtx"), "v1").
		Return(domain.StockEvent{
			ID:     "v1",
			Status: domain.StatusMoving,
			Products: []domain.StockEventProduct{
				{Product: "prod-1", Offer: "offer-1", Variation: "var-1", Modification: "mod-1", Quantity: 2},
			},
		}, nil)

	mockToken.On("IsExecuted", mock.AnythingOfType("context.backgroundCtx")).Return(false, nil)
	mockToken.On("Save", mock.AnythingOfType("context.backgroundCtx")).Return(nil)

	mockQuantities.On("GetModificationQuantity", mock.AnythingOfType("context.backgroundCtx"), "prod-1", "offer-1", "var-1", "mod-1").
		Return(domain.ProductQuantity{}, apperror.NewNotFoundError("Registro de contagem não encontrado"))
	mockQuantities.On("GetVariationQuantity", mock.AnythingOfType("context.backgroundCtx"), "prod-1", "offer-1", "var-1").
		Return(domain.ProductQuantity{ID: "q-var", Total: 5, Reserve: 5}, nil)
	mockQuantities.On("SubQuantityReserve", mock.AnythingOfType("context.backgroundCtx"), "q-var", 2).
		Return(true, nil)

	err := svc.Handle(context.Background(), domain.StockMoveMessage{ID: "msg-1", Event: "v2", Last: "v1"})

	assert.NoError(t, err)
	mockQuantities.AssertExpectations(t)
	mockToken.AssertExpectations(t)
}

// TestHandle_CarteiraInexistente testa que uma linha sem registro em nenhum
// nível gera log crítico, não aborta o lote e não impede a finalização.
func TestHandle_CarteiraInexistente(t *testing.T) {
	mockEvents := new(MockEventRepository)
	mockQuantities := new(MockQuantityRepository)
	mockToken := new(MockToken)

	svc, _, log := newService(mockEvents, mockQuantities, mockToken)

	mockEvents.On("FindByID", mock.AnythingOfType("context.backgroundCtx"), "v1").
		Return(domain.StockEvent{
			ID:     "v1",
			Status: domain.StatusMoving,
			Products: []domain.StockEventProduct{
				{Product: "prod-orfao", Quantity: 1},
			},
		}, nil)

	mockToken.On("IsExecuted", mock.AnythingOfType("context.backgroundCtx")).Return(false, nil)
	mockToken.On("Save", mock.AnythingOfType("context.backgroundCtx")).Return(nil)

	mockQuantities.On("GetProductQuantity", mock.AnythingOfType("context.backgroundCtx"), "prod-orfao").
		Return(domain.ProductQuantity{}, apperror.NewNotFoundError("Registro de contagem não encontrado"))

	err := svc.Handle(context.Background(), domain.StockMoveMessage{ID: "msg-1", Event: "v2", Last: "v1"})

	assert.NoError(t, err)
	assert.Len(t, log.criticals, 1)
	mockQuantities.AssertNotCalled(t, "SubQuantityReserve", mock.Anything, mock.Anything, mock.Anything)
	mockToken.AssertExpectations(t)
}

// TestHandle_SaldoInsuficiente testa que o saldo insuficiente em uma linha é
// registrado como crítico e as demais linhas continuam sendo aplicadas.
func TestHandle_SaldoInsuficiente(t *testing.T) {
	mockEvents := new(MockEventRepository)
	mockQuantities := new(MockQuantityRepository)
	mockToken := new(MockToken)

	svc, _, log := newService(mockEvents, mockQuantities, mockToken)

	mockEvents.On("FindByID", mock.AnythingOfType("context.backgroundCtx"), "v1").
		Return(domain.StockEvent{
			ID:     "v1",
			Status: domain.StatusMoving,
			Products: []domain.StockEventProduct{
				{Product: "prod-1", Quantity: 10}, // Saldo 5/5: rejeitada por inteiro
				{Product: "prod-2", Quantity: 1},  // Continua normalmente
			},
		}, nil)

	mockToken.On("IsExecuted", mock.AnythingOfType("context.backgroundCtx")).Return(false, nil)
	mockToken.On("Save", mock.AnythingOfType("context.backgroundCtx")).Return(nil)

	mockQuantities.On("GetProductQuantity", mock.AnythingOfType("context.backgroundCtx"), "prod-1").
		Return(domain.ProductQuantity{ID: "q-1", Total: 5, Reserve: 5}, nil)
	mockQuantities.On("SubQuantityReserve", mock.AnythingOfType("context.backgroundCtx"), "q-1", 10).
		Return(false, nil) // O UPDATE condicional não afetou nenhuma linha

	mockQuantities.On("GetProductQuantity", mock.AnythingOfType("context.backgroundCtx"), "prod-2").
		Return(domain.ProductQuantity{ID: "q-2", Total: 8, Reserve: 8}, nil)
	mockQuantities.On("SubQuantityReserve", mock.AnythingOfType("context.backgroundCtx"), "q-2", 1).
		Return(true, nil)

	err := svc.Handle(context.Background(), domain.StockMoveMessage{ID: "msg-1", Event: "v2", Last: "v1"})

	assert.NoError(t, err)
	assert.Len(t, log.criticals, 1)
	mockQuantities.AssertExpectations(t)
	mockToken.AssertExpectations(t)
}

// TestHandle_FalhaInfraLiberaMarcador testa que uma falha de infraestrutura
// no meio do lote libera o marcador de deduplicação e propaga o erro.
func TestHandle_FalhaInfraLiberaMarcador(t *testing.T) {
	mockEvents := new(MockEventRepository)
	mockQuantities := new(MockQuantityRepository)
	mockToken := new(MockToken)

	svc, _, _ := newService(mockEvents, mockQuantities, mockToken)

	mockEvents.On("FindByID", mock.AnythingOfType("context.backgroundCtx"), "v1").
		Return(domain.StockEvent{
			ID:     "v1",
			Status: domain.StatusMoving,
			Products: []domain.StockEventProduct{
				{Product: "prod-1", Quantity: 2},
			},
		}, nil)

	mockToken.On("IsExecuted", mock.AnythingOfType("context.backgroundCtx")).Return(false, nil)
	mockToken.On("Release", mock.AnythingOfType("context.backgroundCtx")).Return(nil)

	mockQuantities.On("GetProductQuantity", mock.AnythingOfType("context.backgroundCtx"), "prod-1").
		Return(domain.ProductQuantity{ID: "q-1", Total: 9, Reserve: 9}, nil)
	mockQuantities.On("SubQuantityReserve", mock.AnythingOfType("context.backgroundCtx"), "q-1", 2).
		Return(false, apperror.NewDBError("Falha ao subtrair quantidade", errors.New("connection reset")))

	err := svc.Handle(context.Background(), domain.StockMoveMessage{ID: "msg-1", Event: "v2", Last: "v1"})

	assert.Error(t, err)
	mockToken.AssertNotCalled(t, "Save", mock.Anything)
	mockToken.AssertExpectations(t)
	mockQuantities.AssertExpectations(t)
}

// TestResolve_PrefereNivelMaisEspecifico testa a cascata de resolução exposta
// para inspeção: a modificação vence quando o registro dela existe.
func TestResolve_PrefereNivelMaisEspecifico(t *testing.T) {
	mockEvents := new(MockEventRepository)
	mockQuantities := new(MockQuantityRepository)
	mockToken := new(MockToken)

	svc, _, _ := newService(mockEvents, mockQuantities, mockToken)

	mockQuantities.On("GetModificationQuantity", mock.AnythingOfType("context.backgroundCtx"), "prod-1", "offer-1", "var-1", "mod-1").
		Return(domain.ProductQuantity{ID: "q-mod", Total: 4, Reserve: 2}, nil)

	result, err := svc.Resolve(context.Background(), "prod-1", "offer-1", "var-1", "mod-1")

	assert.NoError(t, err)
	assert.Equal(t, "q-mod", result.ID)
	assert.Equal(t, 2, result.Available())
	mockQuantities.AssertExpectations(t)
}

// TestResolve_NenhumNivelEncontrado testa a resolução quando nenhum nível
// possui registro de contagem.
func TestResolve_NenhumNivelEncontrado(t *testing.T) {
	mockEvents := new(MockEventRepository)
	mockQuantities := new(MockQuantityRepository)
	mockToken := new(MockToken)

	svc, _, _ := newService(mockEvents, mockQuantities, mockToken)

	notFound := apperror.NewNotFoundError("Registro de contagem não encontrado")
	mockQuantities.On("GetOfferQuantity", mock.AnythingOfType("context.backgroundCtx"), "prod-1", "offer-1").
		Return(domain.ProductQuantity{}, notFound)
	mockQuantities.On("GetProductQuantity", mock.AnythingOfType("context.backgroundCtx"), "prod-1").
		Return(domain.ProductQuantity{}, notFound)

	_, err := svc.Resolve(context.Background(), "prod-1", "offer-1", "", "")

	assert.Error(t, err)
	assert.IsType(t, &apperror.NotFoundError{}, err)
	mockQuantities.AssertExpectations(t)
}

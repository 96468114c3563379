package messenger

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"

	"stockmove/internal/domain"
	"stockmove/internal/pkg/logger"
)

// MoveHandler define o contrato que o Consumer espera da camada de Serviço.
// Erro retornado = falha de infraestrutura: a mensagem NÃO é confirmada e o
// broker a reentrega. Condições de negócio são tratadas dentro do serviço.
type MoveHandler interface {
	Handle(ctx context.Context, message domain.StockMoveMessage) error
}

// Reader define o contrato mínimo do leitor Kafka, para permitir mock em testes.
type Reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer lê mensagens de solicitação de estoque do broker e as despacha
// para o Serviço de Movimentação.
type Consumer struct {
	reader  Reader
	handler MoveHandler
	logger  logger.Logger
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewConsumer cria e retorna uma nova instância do Consumer com um leitor em
// grupo de consumo: o broker distribui as partições entre os workers e
// reentrega mensagens não confirmadas.
func NewConsumer(brokers []string, topic, groupID string, handler MoveHandler, log logger.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       1,
		MaxBytes:       10e6, // 10MB
		CommitInterval: 0,    // Commit síncrono: confirmamos somente após o Handle
		MaxWait:        500 * time.Millisecond,
	})

	return &Consumer{
		reader:  reader,
		handler: handler,
		logger:  log,
		done:    make(chan struct{}),
	}
}

// NewConsumerWithReader injeta um leitor customizado (usado em testes).
func NewConsumerWithReader(reader Reader, handler MoveHandler, log logger.Logger) *Consumer {
	return &Consumer{
		reader:  reader,
		handler: handler,
		logger:  log,
		done:    make(chan struct{}),
	}
}

// Start inicia o loop de consumo em uma goroutine própria.
func (c *Consumer) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel

	c.logger.Info("Consumer de solicitações de estoque iniciado.", nil)
	go c.consume(ctx)
}

// consume é o loop principal: busca, processa e confirma mensagens uma a uma.
func (c *Consumer) consume(ctx context.Context) {
	defer close(c.done)
	defer c.reader.Close()

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				c.logger.Info("Consumer de solicitações de estoque encerrado.", nil)
				return
			}
			c.logger.Error("Falha ao buscar mensagem do broker.", err)
			continue
		}

		if err := c.process(ctx, msg); err != nil {
			// Falha de infraestrutura: NÃO confirma; o broker reentrega.
			c.logger.Error("Falha ao processar mensagem; aguardando reentrega.", err)
			continue
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			c.logger.Error("Falha ao confirmar mensagem no broker.", err)
		}
	}
}

// process desserializa e despacha uma única mensagem.
// Payload malformado é um veneno sem valor de retry: registra e confirma.
func (c *Consumer) process(ctx context.Context, msg kafka.Message) error {
	c.logger.Debug("Mensagem recebida do broker.", map[string]interface{}{
		"topic":     msg.Topic,
		"partition": msg.Partition,
		"offset":    msg.Offset,
		"key":       string(msg.Key),
	})

	var message domain.StockMoveMessage
	if err := json.Unmarshal(msg.Value, &message); err != nil {
		c.logger.Warn("Payload JSON inválido na mensagem do broker; descartando.", map[string]interface{}{
			"offset": msg.Offset,
			"error":  err.Error(),
		})
		return nil
	}

	return c.handler.Handle(ctx, message)
}

// Stop solicita o encerramento do loop e aguarda a finalização.
func (c *Consumer) Stop() {
	if c.cancel != nil {
		c.cancel()
	}
	<-c.done
}

package dedup

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"stockmove/internal/pkg/cache"
)

// Deduplicator define o contrato do guardião de idempotência.
// Cada combinação (namespace, partes da chave) identifica uma unidade de
// trabalho que deve ser aplicada no máximo uma vez, mesmo que o broker
// entregue a mesma mensagem várias vezes (entrega at-least-once).
type Deduplicator interface {
	// Namespace retorna um Deduplicator vinculado ao domínio lógico informado
	// (e.g., "products-stocks"). Não modifica o receptor.
	Namespace(ns string) Deduplicator

	// Deduplication monta o token de idempotência para as partes da chave
	// (e.g., id da mensagem, status alvo, identidade do handler).
	Deduplication(parts []string) Token
}

// Token representa o marcador de idempotência de uma unidade de trabalho.
//
// O ciclo de vida é em duas fases ("check early, commit late"):
//  1. IsExecuted retorna true somente para trabalho FINALIZADO. Se não houver
//     marcador, reivindica atomicamente um marcador "em andamento" com TTL
//     limitado e retorna false. Um marcador em andamento de OUTRA entrega
//     (inclusive o órfão deixado por um worker que caiu antes de finalizar)
//     retorna ErrInFlight: o chamador NÃO deve confirmar a mensagem, para que
//     a reentrega do broker tente de novo até o marcador expirar ou virar
//     executado.
//  2. Save finaliza o marcador somente depois que todas as linhas foram
//     aplicadas.
type Token interface {
	IsExecuted(ctx context.Context) (bool, error)
	Save(ctx context.Context) error
	Release(ctx context.Context) error
}

// ErrInFlight indica que outra entrega detém o marcador em andamento desta
// unidade de trabalho. É um estado transitório, nunca uma confirmação de
// execução: tratar como falha reprocessável.
var ErrInFlight = errors.New("dedup: unidade de trabalho em andamento por outra entrega")

// Valores armazenados no Redis para cada fase do token.
const (
	statePending  = "pending"
	stateExecuted = "executed"
)

// RedisDeduplicator é a implementação concreta da interface Deduplicator sobre Redis.
// A atomicidade do check-and-set vem do comando SETNX (cache.Client.SetNX).
type RedisDeduplicator struct {
	cache       cache.Client
	namespace   string
	pendingTTL  time.Duration // Vida do marcador em andamento (proteção contra crash)
	executedTTL time.Duration // Vida do marcador finalizado (0 = sem expiração)
}

// NewRedisDeduplicator cria e retorna uma nova instância do Deduplicator.
// Esta função é chamada no main.go.
func NewRedisDeduplicator(cacheClient cache.Client, pendingTTL, executedTTL time.Duration) *RedisDeduplicator {
	return &RedisDeduplicator{
		cache:       cacheClient,
		namespace:   "default",
		pendingTTL:  pendingTTL,
		executedTTL: executedTTL,
	}
}

// Namespace retorna uma cópia vinculada ao domínio lógico informado.
func (d *RedisDeduplicator) Namespace(ns string) Deduplicator {
	clone := *d
	clone.namespace = ns
	return &clone
}

// Deduplication monta o token de idempotência para as partes da chave.
func (d *RedisDeduplicator) Deduplication(parts []string) Token {
	return &redisToken{
		cache:       d.cache,
		key:         BuildKey(d.namespace, parts),
		pendingTTL:  d.pendingTTL,
		executedTTL: d.executedTTL,
	}
}

// BuildKey deriva a chave Redis determinística de um namespace e partes.
// O hash MD5 mantém a chave curta e sem caracteres problemáticos,
// independentemente do conteúdo das partes.
func BuildKey(namespace string, parts []string) string {
	sum := md5.Sum([]byte(strings.Join(parts, "|")))
	return "dedup:" + namespace + ":" + hex.EncodeToString(sum[:])
}

// redisToken é a implementação concreta do Token sobre cache.Client.
type redisToken struct {
	cache       cache.Client
	key         string
	pendingTTL  time.Duration
	executedTTL time.Duration
	claimed     bool
}

// IsExecuted verifica e reivindica o token em uma única sequência atômica.
// Retorna true somente quando o trabalho já foi FINALIZADO. Um marcador em
// andamento de outra entrega retorna ErrInFlight em vez de true: confundir os
// dois estados faria a reentrega de um worker que caiu antes de finalizar ser
// confirmada sem nenhuma subtração aplicada, perdendo a movimentação.
func (t *redisToken) IsExecuted(ctx context.Context) (bool, error) {
	// 1. Checagem rápida: o VALOR da chave distingue finalizado de em andamento.
	val, err := t.cache.Get(ctx, t.key)
	if err == nil {
		if val == stateExecuted {
			return true, nil
		}
		// Marcador pendente de outro worker (ou órfão de uma queda recente):
		// o chamador reprocessa via reentrega quando ele expirar ou finalizar.
		return false, ErrInFlight
	}
	if err != cache.ErrCacheMiss {
		return false, err
	}

	// 2. Reivindicar o marcador em andamento. SETNX garante vencedor único
	//    mesmo entre duas entregas simultâneas da mesma mensagem.
	won, err := t.cache.SetNX(ctx, t.key, statePending, t.pendingTTL)
	if err != nil {
		return false, err
	}
	if !won {
		// Outro worker venceu a corrida entre o GET e o SETNX.
		return false, ErrInFlight
	}

	t.claimed = true
	return false, nil
}

// Save finaliza o token: substitui o marcador em andamento pelo marcador
// executado. Deve ser chamado somente após todas as linhas serem aplicadas.
func (t *redisToken) Save(ctx context.Context) error {
	return t.cache.Set(ctx, t.key, stateExecuted, t.executedTTL)
}

// Release descarta o marcador em andamento após uma falha de infraestrutura,
// permitindo que a reentrega do broker reprocesse imediatamente em vez de
// esperar o TTL expirar. É um no-op se este token não venceu a reivindicação.
func (t *redisToken) Release(ctx context.Context) error {
	if !t.claimed {
		return nil
	}
	t.claimed = false
	return t.cache.Delete(ctx, t.key)
}

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	// Nossos pacotes de infraestrutura e utilitários
	"stockmove/config"
	_ "stockmove/docs" // Especificação Swagger gerada (servida em /swagger/doc.json)
	"stockmove/internal/pkg/cache"
	"stockmove/internal/pkg/database"
	"stockmove/internal/pkg/dedup"
	"stockmove/internal/pkg/logger"
	"stockmove/internal/pkg/token"

	// Camadas da aplicação para Injeção de Dependências
	"stockmove/internal/api/choice"
	"stockmove/internal/api/profile"
	"stockmove/internal/api/quantity"
	"stockmove/internal/api/router"
	"stockmove/internal/api/user"
	"stockmove/internal/messenger"
	"stockmove/internal/repository/choicerepo"
	"stockmove/internal/repository/eventrepo"
	"stockmove/internal/repository/profilerepo"
	"stockmove/internal/repository/quantityrepo"
	"stockmove/internal/repository/userrepo"
	"stockmove/internal/service/choiceservice"
	"stockmove/internal/service/moveservice"
	"stockmove/internal/service/profileservice"
	"stockmove/internal/service/userservice"
)

// @title StockMove API
// @version 1.0
// @description API administrativa do serviço de movimentação de estoque entre armazéns.
// @BasePath /v1

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization

func main() {
	// 1. Configuração e Inicialização
	log.Println("⚡ Inicializando serviço StockMove...")

	// 0. CARREGAR VARIÁVEIS DE AMBIENTE (.env)
	// O godotenv.Load() procura por um arquivo chamado .env na raiz.
	if err := godotenv.Load(); err != nil {
		// Se o arquivo .env não for encontrado (ou houver erro de leitura),
		// avisamos, mas continuamos, pois as variáveis essenciais podem
		// estar no ambiente do sistema (ex: Docker).
		log.Println("⚠️ Aviso: Arquivo .env não encontrado ou erro de leitura. Carregando configs apenas do ambiente do sistema.")
	}

	cfg := config.LoadConfig() // Carrega as configurações (URLs, Timeouts, Broker, etc.)
	log := logger.NewLogger(cfg.LogLevel)
	log.Info("Configurações carregadas.", nil)

	// 2. Conexão com Recursos de Infraestrutura

	// A. Banco de Dados (PostgreSQL)
	db, err := database.NewPostgresDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Falha ao conectar ao banco de dados.", err)
	}
	defer db.Close() // Fecha a conexão de DB ao sair
	log.Info("Conexão PostgreSQL estabelecida.", nil)

	// B. Cache (Redis)
	cacheClient := cache.NewRedisClient(cfg.RedisAddr)
	log.Info("Conexão Redis estabelecida.", nil)

	// C. Deduplicator (idempotência do consumo sobre o Redis)
	deduplicator := dedup.NewRedisDeduplicator(cacheClient, cfg.DedupPendingTTL, cfg.DedupExecutedTTL)
	log.Debug("Deduplicator inicializado.", nil)

	// 3. INJEÇÃO DE DEPENDÊNCIAS (Montagem da Clean Architecture)
	// Ordem: Repository -> Service -> Handler/Consumer

	// A. Repositórios (Camada de Acesso a Dados)
	eventRepo := eventrepo.NewEventRepository(db, cfg.DBTimeout, log)
	quantityRepo := quantityrepo.NewQuantityRepository(db, cfg.DBTimeout, log)
	choiceRepo := choicerepo.NewChoiceRepository(db, cacheClient, cfg.DBTimeout, cfg.ChoiceCacheTTL, log)
	profileRepo := profilerepo.NewProfileRepository(db, cfg.DBTimeout, log)
	userRepo := userrepo.NewUserRepository(db, cfg.DBTimeout, log)
	log.Debug("Repositórios inicializados.", nil)

	// B. Serviços (Camada de Lógica de Negócio)
	moveSvc := moveservice.NewService(eventRepo, quantityRepo, deduplicator, log)
	choiceSvc := choiceservice.NewService(choiceRepo, log)
	profileSvc := profileservice.NewService(profileRepo, log)
	log.Debug("Serviços de domínio inicializados.", nil)

	// C. Serviço de Tokens (JWT) e Usuários
	tokenSvc := token.NewService(cfg.JWTSecretKey, cfg.TokenExpiry)
	userSvc := userservice.NewService(userRepo, tokenSvc)
	log.Debug("Serviços de autenticação inicializados.", nil)

	// D. Handlers (Camada de Apresentação)
	choiceHandler := choice.NewHandler(choiceSvc, log)
	profileHandler := profile.NewHandler(profileSvc, log)
	quantityHandler := quantity.NewHandler(moveSvc, log)
	userHandler := user.NewHandler(userSvc, log)
	log.Debug("Handlers HTTP inicializados.", nil)

	// E. Consumer do Broker (Kafka)
	consumer := messenger.NewConsumer(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaGroupID, moveSvc, log)
	consumer.Start()

	// 4. Configuração e Início do Roteador/Servidor

	r := router.NewRouter(
		choiceHandler,
		profileHandler,
		quantityHandler,
		userHandler,
		tokenSvc,
		cacheClient,
		cfg.RateLimitMaxRequests,
		cfg.RateLimitPeriod,
	)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r, // O roteador final
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 5. Execução e Graceful Shutdown
	go func() {
		log.Info("Servidor StockMove ouvindo na porta", map[string]interface{}{"port": cfg.Port})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Servidor falhou.", err)
		}
	}()

	// Lógica do Graceful Shutdown (captura de sinal)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Info("Sinal de encerramento recebido. Desligando serviço...", nil)

	// Encerra o consumer antes do servidor para não perder confirmações
	consumer.Stop()
	log.Info("Consumer do broker encerrado.", nil)

	// Timeout para desligamento (usa o contexto)
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Desligamento do servidor forçado.", err)
	}

	log.Info("Serviço encerrado com sucesso.", nil)
}

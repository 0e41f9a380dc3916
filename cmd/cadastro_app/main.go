package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/multinegociacoes/APP_CADASTRO_GO/internal/api"
	"github.com/multinegociacoes/APP_CADASTRO_GO/internal/core"
	appLogger "github.com/multinegociacoes/APP_CADASTRO_GO/internal/core/logger"
	"github.com/multinegociacoes/APP_CADASTRO_GO/internal/data"
	"github.com/multinegociacoes/APP_CADASTRO_GO/internal/repositories"
	"github.com/multinegociacoes/APP_CADASTRO_GO/internal/services"
)

func main() {
	// 1. Configuração
	cfg, err := core.LoadConfig("")
	if err != nil {
		appLogger.Fatalf("Erro fatal ao carregar configuração: %v", err)
	}

	// 2. Logger
	if err := appLogger.SetupLogger(cfg); err != nil {
		appLogger.Fatalf("Erro fatal ao configurar logger: %v", err)
	}
	appLogger.Infof("%s v%s iniciando...", cfg.AppName, cfg.AppVersion)

	// 3. Banco de dados
	db, err := data.InitializeDB(cfg)
	if err != nil {
		appLogger.Fatalf("Erro fatal ao inicializar banco de dados: %v", err)
	}
	defer data.CloseDB(db)

	// 4. Repositórios
	cadastroRepo := repositories.NewGormCadastroRepository(db)
	historicoRepo := repositories.NewGormStatusHistoryRepository(db)
	atividadeRepo := repositories.NewGormActivityLogRepository(db)

	// 5. Serviços
	storage, err := services.NewLocalDocumentStorage(cfg.StorageDir)
	if err != nil {
		appLogger.Fatalf("Erro fatal ao preparar armazenamento de documentos: %v", err)
	}

	cepService := services.NewCEPService(cfg.CEPPrimaryURL, cfg.CEPFallbackURL, cfg.CEPTimeout)
	pdfService := services.NewPDFService(cfg.PDFLogoPath, cfg.PDFLogoEnabled, "")

	var telegram *services.TelegramService
	if cfg.TelegramConfigured() {
		telegram = services.NewTelegramService("", cfg.TelegramBot1, cfg.TelegramBot2, 0)
	} else {
		appLogger.Warn("Bots do Telegram não configurados; notificações desativadas")
	}

	submissao := services.NewSubmissionService(cadastroRepo, atividadeRepo, storage, pdfService, telegramOuNil(telegram))
	cadastros := services.NewCadastroService(cadastroRepo, historicoRepo, atividadeRepo, storage, pdfService, telegramOuNil(telegram))
	atividade := services.NewActivityLogService(atividadeRepo)

	// 6. Migração de observações legadas (opcional, na subida)
	if cfg.MigrateLegacyObservations {
		migracao := services.NewMigrationService(cadastroRepo)
		if resultado, err := migracao.MigrarObservacoesLegadas(); err != nil {
			appLogger.Errorf("Migração de observações legadas falhou: %v", err)
		} else if resultado.Migrados > 0 {
			appLogger.Infof("%d cadastro(s) com observações migradas para o formato atual", resultado.Migrados)
		}
	}

	// 7. Servidor HTTP
	stagingDir := filepath.Join(os.TempDir(), "cadastro_app_staging")
	servidor := api.NewServer(cepService, submissao, cadastros, atividade, stagingDir, 0)

	httpServer := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           servidor.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLogger.Infof("Servidor HTTP ouvindo em %s", cfg.ListenAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatalf("Servidor HTTP encerrou com erro: %v", err)
		}
	}()

	// 8. Encerramento gracioso
	parada := make(chan os.Signal, 1)
	signal.Notify(parada, syscall.SIGINT, syscall.SIGTERM)
	<-parada

	appLogger.Info("Encerrando servidor HTTP...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		appLogger.Errorf("Falha no encerramento gracioso: %v", err)
	}
	appLogger.Info("Aplicação finalizada.")
}

// telegramOuNil evita embrulhar um *TelegramService nulo em uma interface
// não-nula.
func telegramOuNil(t *services.TelegramService) services.NotificadorTelegram {
	if t == nil {
		return nil
	}
	return t
}

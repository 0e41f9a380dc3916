package core

import (
	"fmt"
	"log" // Usado para logs iniciais antes que o logger da aplicação esteja configurado
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// TelegramBotConfig agrupa as credenciais de um bot de notificação.
type TelegramBotConfig struct {
	Token  string
	ChatID string
}

// Config struct para armazenar todas as configurações da aplicação.
type Config struct {
	AppName    string
	AppVersion string
	AppDebug   bool

	// HTTP
	ListenAddr string

	// Database
	DBEngine   string
	DBName     string
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string

	// Logging
	LogDir         string
	LogLevel       string
	LogMaxBytes    int
	LogBackupCount int
	LogToConsole   bool

	// Armazenamento de documentos (blobs locais espelhando o bucket original)
	StorageDir string

	// Telegram (dois bots independentes: completo e resumido)
	TelegramBot1 TelegramBotConfig
	TelegramBot2 TelegramBotConfig

	// Consulta de CEP (provedor primário + fallback)
	CEPPrimaryURL  string
	CEPFallbackURL string
	CEPTimeout     time.Duration

	// PDF
	PDFLogoPath    string // caminho local do logo; vazio desabilita
	PDFLogoEnabled bool

	// Migração de observações legadas na inicialização
	MigrateLegacyObservations bool
}

// LoadConfig carrega as configurações do arquivo .env especificado ou encontrado na árvore de diretórios.
func LoadConfig(envPath string) (*Config, error) {
	foundEnvPath, err := findEnvFile(envPath)
	if err != nil {
		log.Printf("Aviso: Arquivo .env em '%s' não encontrado ou inacessível: %v. Tentando carregar variáveis de ambiente globais.", envPath, err)
		if loadErr := godotenv.Load(); loadErr != nil {
			log.Printf("Aviso: Nenhum arquivo .env carregado: %v. Usando apenas variáveis de ambiente existentes ou defaults.", loadErr)
		}
	} else {
		log.Printf("Carregando configurações de: %s", foundEnvPath)
		if err := godotenv.Load(foundEnvPath); err != nil {
			log.Printf("Aviso: Erro ao carregar arquivo .env de '%s': %v. Usando valores padrão ou variáveis de ambiente existentes.", foundEnvPath, err)
		}
	}

	cfg := &Config{}

	cfg.AppName = getEnv("APP_NAME", "Cadastro Multinegociações GO")
	cfg.AppVersion = getEnv("APP_VERSION", "1.0.0-go")
	cfg.AppDebug = getEnvAsBool("APP_DEBUG", false)

	cfg.ListenAddr = getEnv("APP_LISTEN_ADDR", ":8080")

	cfg.DBEngine = getEnv("APP_DB_ENGINE", "sqlite")
	cfg.DBName = getEnv("APP_DB_NAME", "cadastro_go.db")
	cfg.DBHost = getEnv("APP_DB_HOST", "localhost")
	cfg.DBPort = getEnvAsInt("APP_DB_PORT", 5432)
	cfg.DBUser = getEnv("APP_DB_USER", "user")
	cfg.DBPassword = getEnv("APP_DB_PASSWORD", "password")

	cfg.LogDir = getEnv("APP_LOG_DIR", "./app_logs")
	cfg.LogLevel = strings.ToUpper(getEnv("APP_LOG_LEVEL", "INFO"))
	cfg.LogMaxBytes = getEnvAsInt("APP_LOG_MAX_BYTES", 5*1024*1024) // 5MB
	cfg.LogBackupCount = getEnvAsInt("APP_LOG_BACKUP_COUNT", 7)
	cfg.LogToConsole = getEnvAsBool("APP_LOG_TO_CONSOLE", true)

	cfg.StorageDir = getEnv("APP_STORAGE_DIR", "./app_storage")

	cfg.TelegramBot1 = TelegramBotConfig{
		Token:  getEnv("APP_TELEGRAM_BOT1_TOKEN", ""),
		ChatID: getEnv("APP_TELEGRAM_BOT1_CHAT_ID", ""),
	}
	cfg.TelegramBot2 = TelegramBotConfig{
		Token:  getEnv("APP_TELEGRAM_BOT2_TOKEN", ""),
		ChatID: getEnv("APP_TELEGRAM_BOT2_CHAT_ID", ""),
	}

	cfg.CEPPrimaryURL = getEnv("APP_CEP_PRIMARY_URL", "https://viacep.com.br/ws")
	cfg.CEPFallbackURL = getEnv("APP_CEP_FALLBACK_URL", "https://brasilapi.com.br/api/cep/v1")
	cfg.CEPTimeout = getEnvAsDuration("APP_CEP_TIMEOUT", 10)

	cfg.PDFLogoPath = getEnv("APP_PDF_LOGO_PATH", "")
	cfg.PDFLogoEnabled = getEnvAsBool("APP_PDF_LOGO_ENABLED", cfg.PDFLogoPath != "")

	cfg.MigrateLegacyObservations = getEnvAsBool("APP_MIGRATE_LEGACY_OBSERVATIONS", true)

	// Garantir que diretórios essenciais existam.
	if err := ensureDir(cfg.LogDir, true); err != nil {
		return nil, fmt.Errorf("falha ao criar diretório de log essencial '%s': %w", cfg.LogDir, err)
	}
	if err := ensureDir(cfg.StorageDir, true); err != nil {
		return nil, fmt.Errorf("falha ao criar diretório de armazenamento '%s': %w", cfg.StorageDir, err)
	}
	if cfg.DBEngine == "sqlite" {
		sqliteDir := filepath.Dir(cfg.DBName)
		if sqliteDir != "." && sqliteDir != string(filepath.Separator) {
			if err := ensureDir(sqliteDir, true); err != nil {
				return nil, fmt.Errorf("falha ao criar diretório para banco de dados SQLite '%s': %w", sqliteDir, err)
			}
		}
	}

	log.Println("Configurações carregadas e validadas.")
	return cfg, nil
}

// TelegramConfigured informa se pelo menos um bot de Telegram está configurado.
func (c *Config) TelegramConfigured() bool {
	return (c.TelegramBot1.Token != "" && c.TelegramBot1.ChatID != "") ||
		(c.TelegramBot2.Token != "" && c.TelegramBot2.ChatID != "")
}

// findEnvFile tenta localizar o arquivo .env.
// Primeiro no path fornecido, depois subindo na árvore de diretórios a partir do CWD.
func findEnvFile(envPath string) (string, error) {
	if _, err := os.Stat(envPath); err == nil {
		absPath, _ := filepath.Abs(envPath)
		return absPath, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("não foi possível obter o diretório de trabalho atual: %w", err)
	}

	for i := 0; i < 5; i++ {
		tryPath := filepath.Join(cwd, ".env")
		if _, err := os.Stat(tryPath); err == nil {
			return tryPath, nil
		}
		parent := filepath.Dir(cwd)
		if parent == cwd { // Chegou à raiz
			break
		}
		cwd = parent
	}
	return "", fmt.Errorf("arquivo .env não encontrado no caminho '%s' ou nos diretórios pais", envPath)
}

// ensureDir garante que um diretório exista, criando-o se necessário.
// Se 'critical' for true, retorna erro em caso de falha. Caso contrário, apenas loga um aviso.
func ensureDir(dirPath string, critical bool) error {
	absPath, err := filepath.Abs(dirPath)
	if err == nil {
		err = os.MkdirAll(absPath, os.ModePerm)
	}
	if err != nil {
		msg := fmt.Sprintf("Não foi possível garantir o diretório '%s': %v", dirPath, err)
		if critical {
			log.Println("ERRO CRÍTICO:", msg)
			return fmt.Errorf("%s", msg)
		}
		log.Println("AVISO:", msg)
	}
	return nil
}

// getEnv recupera o valor de uma variável de ambiente ou retorna um fallback.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvAsInt recupera uma variável de ambiente como int ou retorna um fallback.
func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}

// getEnvAsBool recupera uma variável de ambiente como bool ou retorna um fallback.
func getEnvAsBool(key string, fallback bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return fallback
}

// getEnvAsDuration recupera uma variável de ambiente como time.Duration em segundos, ou retorna um fallback.
func getEnvAsDuration(key string, fallbackSeconds int) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return time.Duration(value) * time.Second
	}
	return time.Duration(fallbackSeconds) * time.Second
}

package data

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/sirupsen/logrus"

	"github.com/multinegociacoes/APP_CADASTRO_GO/internal/core"
	appLogger "github.com/multinegociacoes/APP_CADASTRO_GO/internal/core/logger"
	"github.com/multinegociacoes/APP_CADASTRO_GO/internal/data/models"
)

// InitializeDB configura e estabelece a conexão com o banco de dados
// e executa migrações automáticas. A instância retornada é injetada nos
// repositórios pela raiz da aplicação; não há estado global de conexão.
func InitializeDB(cfg *core.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector

	appLogger.Infof("Inicializando conexão com banco de dados: %s", cfg.DBEngine)

	gormLogLevel := gormlogger.Silent
	if cfg.AppDebug {
		gormLogLevel = gormlogger.Info // Loga todas as queries SQL em modo debug
	}
	newGormLogger := gormlogger.New(
		appLogger.WithFields(logrus.Fields{"component": "gorm"}),
		gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormLogLevel,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	gormConfig := &gorm.Config{
		Logger: newGormLogger,
	}

	switch cfg.DBEngine {
	case "postgresql":
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable TimeZone=UTC",
			cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort)
		dialector = postgres.Open(dsn)
		appLogger.Infof("Conectando ao PostgreSQL: host=%s dbname=%s user=%s port=%d", cfg.DBHost, cfg.DBName, cfg.DBUser, cfg.DBPort)
	case "sqlite":
		// GORM criará o arquivo se não existir; o diretório já foi garantido pela config.
		dialector = sqlite.Open(cfg.DBName + "?_foreign_keys=on")
		appLogger.Infof("Usando banco de dados SQLite: %s", cfg.DBName)
	default:
		return nil, fmt.Errorf("motor de banco de dados não suportado: %s", cfg.DBEngine)
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		appLogger.Errorf("Falha ao conectar ao banco de dados %s: %v", cfg.DBEngine, err)
		return nil, fmt.Errorf("falha ao abrir conexão com %s: %w", cfg.DBEngine, err)
	}

	// Pool de conexões
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("falha ao configurar pool de conexões: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	appLogger.Info("Conexão com banco de dados estabelecida.")

	appLogger.Info("Executando migrações automáticas do GORM...")
	err = db.AutoMigrate(
		&models.DBCadastro{},
		&models.ActivityLogEntry{},
		&models.DBStatusHistory{},
	)
	if err != nil {
		appLogger.Errorf("Falha durante AutoMigrate: %v", err)
		return nil, fmt.Errorf("falha na migração do esquema do banco de dados: %w", err)
	}
	appLogger.Info("Migrações automáticas do GORM concluídas.")

	return db, nil
}

// CloseDB fecha a conexão com o banco de dados.
func CloseDB(db *gorm.DB) error {
	if db == nil {
		appLogger.Warn("Tentativa de fechar conexão DB nula.")
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		appLogger.Errorf("Erro ao obter *sql.DB para fechar: %v", err)
		return err
	}
	appLogger.Info("Fechando conexão com o banco de dados...")
	return sqlDB.Close()
}

// DBSessionFunc é o corpo de uma transação gerenciada por WithTransaction.
type DBSessionFunc func(tx *gorm.DB) error

// WithTransaction executa uma função dentro de uma transação GORM.
// Faz commit se a função não retornar erro, rollback caso contrário.
func WithTransaction(db *gorm.DB, fn DBSessionFunc) error {
	tx := db.Begin()
	if tx.Error != nil {
		return fmt.Errorf("falha ao iniciar transação: %w", tx.Error)
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback().Error; rbErr != nil {
			return fmt.Errorf("erro ao executar função (%v) E erro no rollback (%w)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("falha ao commitar transação: %w", err)
	}
	return nil
}

package repositories

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	appErrors "github.com/multinegociacoes/APP_CADASTRO_GO/internal/core"
	appLogger "github.com/multinegociacoes/APP_CADASTRO_GO/internal/core/logger"
	"github.com/multinegociacoes/APP_CADASTRO_GO/internal/data/models"
)

// ActivityLogRepository define a interface para o log de atividades (append-only).
type ActivityLogRepository interface {
	Append(entry *models.ActivityLogEntry) error
	ListRecent(limit int) ([]models.ActivityLogEntry, error)
}

type gormActivityLogRepository struct {
	db *gorm.DB
}

// NewGormActivityLogRepository cria uma nova instância de gormActivityLogRepository.
func NewGormActivityLogRepository(db *gorm.DB) ActivityLogRepository {
	if db == nil {
		appLogger.Fatalf("gorm.DB não pode ser nil para NewGormActivityLogRepository")
	}
	return &gormActivityLogRepository{db: db}
}

// Append insere um evento no log. Eventos nunca são alterados ou removidos.
func (r *gormActivityLogRepository) Append(entry *models.ActivityLogEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if err := r.db.Create(entry).Error; err != nil {
		appLogger.Errorf("Erro ao registrar atividade %s de %s: %v", entry.ActionType, entry.UserName, err)
		return appErrors.WrapErrorf(err, "falha ao registrar atividade (GORM)")
	}
	return nil
}

// ListRecent retorna os eventos mais recentes, limitados a `limit`.
func (r *gormActivityLogRepository) ListRecent(limit int) ([]models.ActivityLogEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	var entries []models.ActivityLogEntry
	if err := r.db.Order("created_at DESC").Limit(limit).Find(&entries).Error; err != nil {
		appLogger.Errorf("Erro ao listar log de atividades: %v", err)
		return nil, appErrors.WrapErrorf(err, "falha ao listar log de atividades (GORM)")
	}
	return entries, nil
}

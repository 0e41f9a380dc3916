package repositories

import (
	"gorm.io/gorm"

	appErrors "github.com/multinegociacoes/APP_CADASTRO_GO/internal/core"
	appLogger "github.com/multinegociacoes/APP_CADASTRO_GO/internal/core/logger"
	"github.com/multinegociacoes/APP_CADASTRO_GO/internal/data/models"
)

// StatusHistoryRepository registra e consulta transições de status.
type StatusHistoryRepository interface {
	Append(entry *models.DBStatusHistory) error
	ListByCadastro(cadastroID uint64) ([]models.DBStatusHistory, error)
}

type gormStatusHistoryRepository struct {
	db *gorm.DB
}

// NewGormStatusHistoryRepository cria uma nova instância de gormStatusHistoryRepository.
func NewGormStatusHistoryRepository(db *gorm.DB) StatusHistoryRepository {
	if db == nil {
		appLogger.Fatalf("gorm.DB não pode ser nil para NewGormStatusHistoryRepository")
	}
	return &gormStatusHistoryRepository{db: db}
}

// Append insere uma transição de status.
func (r *gormStatusHistoryRepository) Append(entry *models.DBStatusHistory) error {
	if err := r.db.Create(entry).Error; err != nil {
		appLogger.Errorf("Erro ao registrar histórico de status do cadastro %d: %v", entry.CadastroID, err)
		return appErrors.WrapErrorf(err, "falha ao registrar histórico de status (GORM)")
	}
	return nil
}

// ListByCadastro retorna as transições de um cadastro, mais recentes primeiro.
func (r *gormStatusHistoryRepository) ListByCadastro(cadastroID uint64) ([]models.DBStatusHistory, error) {
	var entries []models.DBStatusHistory
	if err := r.db.Where("cadastro_id = ?", cadastroID).Order("created_at DESC").Find(&entries).Error; err != nil {
		appLogger.Errorf("Erro ao listar histórico de status do cadastro %d: %v", cadastroID, err)
		return nil, appErrors.WrapErrorf(err, "falha ao listar histórico de status (GORM)")
	}
	return entries, nil
}

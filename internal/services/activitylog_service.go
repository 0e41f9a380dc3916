package services

import (
	"github.com/multinegociacoes/APP_CADASTRO_GO/internal/data/models"
	"github.com/multinegociacoes/APP_CADASTRO_GO/internal/repositories"
)

// ActivityLogService expõe a consulta do diário de atividade da retaguarda.
type ActivityLogService interface {
	ListarRecentes(limite int) ([]models.ActivityLogEntry, error)
}

type activityLogServiceImpl struct {
	repo repositories.ActivityLogRepository
}

func NewActivityLogService(repo repositories.ActivityLogRepository) ActivityLogService {
	return &activityLogServiceImpl{repo: repo}
}

func (s *activityLogServiceImpl) ListarRecentes(limite int) ([]models.ActivityLogEntry, error) {
	if limite <= 0 || limite > 500 {
		limite = 100
	}
	return s.repo.ListRecent(limite)
}

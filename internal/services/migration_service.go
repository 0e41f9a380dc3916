package services

import (
	appErrors "github.com/multinegociacoes/APP_CADASTRO_GO/internal/core"
	appLogger "github.com/multinegociacoes/APP_CADASTRO_GO/internal/core/logger"
	"github.com/multinegociacoes/APP_CADASTRO_GO/internal/data/models"
	"github.com/multinegociacoes/APP_CADASTRO_GO/internal/repositories"
)

// MigrationService converte observações de supervisão gravadas nos formatos
// legados (texto puro ou objeto único sem autor) para a lista canônica de
// observações com autor e timestamp.
type MigrationService struct {
	repo repositories.CadastroRepository
}

func NewMigrationService(repo repositories.CadastroRepository) *MigrationService {
	return &MigrationService{repo: repo}
}

// ResultadoMigracao resume uma rodada de migração de observações.
type ResultadoMigracao struct {
	Examinados int
	Migrados   int
	Falhas     int
}

// MigrarObservacoesLegadas varre todos os cadastros com observação gravada e
// regrava as que estão em formato legado. Registros já canônicos não são
// tocados; falhas individuais são contadas e logadas sem interromper a
// varredura.
func (s *MigrationService) MigrarObservacoesLegadas() (*ResultadoMigracao, error) {
	brutas, err := s.repo.ListarObservacoesBrutas()
	if err != nil {
		return nil, appErrors.WrapErrorf(err, "falha ao listar observações para migração")
	}

	resultado := &ResultadoMigracao{}
	for _, bruta := range brutas {
		if bruta.ObservacaoSupervisor == "" {
			continue
		}
		resultado.Examinados++

		observacoes, legado := models.ParseObservacoes([]byte(bruta.ObservacaoSupervisor))
		if !legado {
			continue
		}

		if err := s.repo.UpdateObservacoes(bruta.ID, observacoes); err != nil {
			appLogger.Errorf("Falha ao migrar observações do cadastro %d: %v", bruta.ID, err)
			resultado.Falhas++
			continue
		}
		resultado.Migrados++
	}

	appLogger.Infof("Migração de observações concluída: %d examinados, %d migrados, %d falhas",
		resultado.Examinados, resultado.Migrados, resultado.Falhas)
	return resultado, nil
}

package repositories

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	appErrors "github.com/multinegociacoes/APP_CADASTRO_GO/internal/core"
	appLogger "github.com/multinegociacoes/APP_CADASTRO_GO/internal/core/logger"
	"github.com/multinegociacoes/APP_CADASTRO_GO/internal/data/models"
	"github.com/multinegociacoes/APP_CADASTRO_GO/internal/utils"
)

// FiltroCadastros agrupa os critérios de busca do back-office.
type FiltroCadastros struct {
	// Termo é o texto livre de busca; Campo restringe a um campo específico
	// ("all", "nome_completo", "cpf", "telefone", "codigo_cadastro", "vendedor").
	Termo string
	Campo string
	// Status filtra pelo status normalizado; vazio ou "all_status" não filtra.
	Status string
	// Intervalo de datas sobre data_cadastro (inclusive).
	DataInicio *time.Time
	DataFim    *time.Time
	// VendedorEscopo restringe os resultados a um vendedor (usuários sem
	// permissão de ver todos os cadastros). Vazio não restringe.
	VendedorEscopo string
}

// ObservacaoBruta carrega o conteúdo cru da coluna de observações,
// usado pelo serviço de migração de formatos legados.
type ObservacaoBruta struct {
	ID                   uint64
	ObservacaoSupervisor string
}

// CadastroRepository define a interface para operações no repositório de cadastros.
type CadastroRepository interface {
	Insert(cadastro *models.DBCadastro) error
	Update(cadastro *models.DBCadastro) error
	GetByID(id uint64) (*models.DBCadastro, error)
	GetByCodigo(codigo string) (*models.DBCadastro, error)
	GetAll(vendedorEscopo string) ([]models.DBCadastro, error)
	Search(filtro FiltroCadastros) ([]models.DBCadastro, error)
	UpdateStatus(id uint64, novoStatus string) error
	UpdateObservacoes(id uint64, observacoes models.ObservacaoLista) error
	UpdateVendedor(id uint64, vendedor, equipe string) error
	ListarObservacoesBrutas() ([]ObservacaoBruta, error)
}

// gormCadastroRepository é a implementação GORM de CadastroRepository.
type gormCadastroRepository struct {
	db *gorm.DB
}

// NewGormCadastroRepository cria uma nova instância de gormCadastroRepository.
func NewGormCadastroRepository(db *gorm.DB) CadastroRepository {
	if db == nil {
		appLogger.Fatalf("gorm.DB não pode ser nil para NewGormCadastroRepository")
	}
	return &gormCadastroRepository{db: db}
}

// Insert insere um novo cadastro no banco de dados.
func (r *gormCadastroRepository) Insert(cadastro *models.DBCadastro) error {
	result := r.db.Create(cadastro)
	if result.Error != nil {
		appLogger.Errorf("Erro ao inserir cadastro %s: %v", cadastro.CodigoCadastro, result.Error)
		if strings.Contains(strings.ToLower(result.Error.Error()), "unique") {
			return fmt.Errorf("%w: código de cadastro %s já existente", appErrors.ErrConflict, cadastro.CodigoCadastro)
		}
		return appErrors.WrapErrorf(result.Error, "falha ao inserir cadastro (GORM)")
	}
	appLogger.Infof("Novo cadastro inserido: %s (ID no DB: %d)", cadastro.CodigoCadastro, cadastro.ID)
	return nil
}

// Update atualiza um cadastro existente, identificado pelo ID quando
// presente, senão pelo código de cadastro. Atualização integral
// (last-write-wins; não há token de concorrência otimista).
func (r *gormCadastroRepository) Update(cadastro *models.DBCadastro) error {
	query := r.db.Model(&models.DBCadastro{})
	switch {
	case cadastro.ID != 0:
		query = query.Where("id = ?", cadastro.ID)
	case cadastro.CodigoCadastro != "":
		query = query.Where("codigo_cadastro = ?", cadastro.CodigoCadastro)
	default:
		return fmt.Errorf("%w: identificador do cadastro (ID ou código) não encontrado para edição", appErrors.ErrInvalidInput)
	}

	result := query.Select("*").Omit("id", "created_at").Updates(cadastro)
	if result.Error != nil {
		appLogger.Errorf("Erro ao atualizar cadastro %s: %v", cadastro.CodigoCadastro, result.Error)
		return appErrors.WrapErrorf(result.Error, "falha ao atualizar cadastro (GORM)")
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: cadastro %s não encontrado para atualização", appErrors.ErrNotFound, cadastro.CodigoCadastro)
	}
	appLogger.Infof("Cadastro %s atualizado.", cadastro.CodigoCadastro)
	return nil
}

// GetByID busca um cadastro pelo seu ID no banco de dados.
func (r *gormCadastroRepository) GetByID(id uint64) (*models.DBCadastro, error) {
	var cadastro models.DBCadastro
	result := r.db.First(&cadastro, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: cadastro com ID %d não encontrado", appErrors.ErrNotFound, id)
		}
		appLogger.Errorf("Erro ao buscar cadastro por ID %d: %v", id, result.Error)
		return nil, appErrors.WrapErrorf(result.Error, "falha ao buscar cadastro por ID (GORM)")
	}
	return &cadastro, nil
}

// GetByCodigo busca um cadastro pelo código humano.
func (r *gormCadastroRepository) GetByCodigo(codigo string) (*models.DBCadastro, error) {
	var cadastro models.DBCadastro
	result := r.db.Where("codigo_cadastro = ?", codigo).First(&cadastro)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: cadastro '%s' não encontrado", appErrors.ErrNotFound, codigo)
		}
		appLogger.Errorf("Erro ao buscar cadastro pelo código '%s': %v", codigo, result.Error)
		return nil, appErrors.WrapErrorf(result.Error, "falha ao buscar cadastro pelo código (GORM)")
	}
	return &cadastro, nil
}

// GetAll busca todos os cadastros, mais recentes primeiro, com escopo
// opcional de vendedor.
func (r *gormCadastroRepository) GetAll(vendedorEscopo string) ([]models.DBCadastro, error) {
	var cadastros []models.DBCadastro
	query := r.db.Order("data_cadastro DESC")
	if vendedorEscopo != "" {
		query = query.Where("vendedor = ?", vendedorEscopo)
	}
	if err := query.Find(&cadastros).Error; err != nil {
		appLogger.Errorf("Erro ao buscar cadastros: %v", err)
		return nil, appErrors.WrapErrorf(err, "falha ao buscar lista de cadastros (GORM)")
	}
	return cadastros, nil
}

// Search aplica os filtros do back-office. Escopo de vendedor e intervalo de
// datas descem para o SQL; termo livre e status (que exigem normalização de
// dígitos/acentos) são aplicados em memória sobre o resultado ordenado.
func (r *gormCadastroRepository) Search(filtro FiltroCadastros) ([]models.DBCadastro, error) {
	query := r.db.Order("data_cadastro DESC")
	if filtro.VendedorEscopo != "" {
		query = query.Where("vendedor = ?", filtro.VendedorEscopo)
	}
	if filtro.DataInicio != nil {
		inicio := time.Date(filtro.DataInicio.Year(), filtro.DataInicio.Month(), filtro.DataInicio.Day(), 0, 0, 0, 0, filtro.DataInicio.Location())
		query = query.Where("data_cadastro >= ?", inicio)
	}
	if filtro.DataFim != nil {
		fim := time.Date(filtro.DataFim.Year(), filtro.DataFim.Month(), filtro.DataFim.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), filtro.DataFim.Location())
		query = query.Where("data_cadastro <= ?", fim)
	}

	var cadastros []models.DBCadastro
	if err := query.Find(&cadastros).Error; err != nil {
		appLogger.Errorf("Erro na busca de cadastros: %v", err)
		return nil, appErrors.WrapErrorf(err, "falha na busca de cadastros (GORM)")
	}

	filtrados := cadastros[:0]
	for i := range cadastros {
		if correspondeFiltro(&cadastros[i], filtro) {
			filtrados = append(filtrados, cadastros[i])
		}
	}
	return filtrados, nil
}

// correspondeFiltro aplica termo livre e status a um cadastro já carregado.
func correspondeFiltro(c *models.DBCadastro, filtro FiltroCadastros) bool {
	if filtro.Status != "" && filtro.Status != "all_status" {
		if models.NormalizarStatus(c.StatusCliente) != filtro.Status {
			return false
		}
	}

	termo := strings.ToLower(strings.TrimSpace(filtro.Termo))
	if termo == "" {
		return true
	}
	termoDigitos := utils.OnlyDigits(termo)

	contemTexto := func(valor string) bool {
		return strings.Contains(strings.ToLower(valor), termo)
	}
	contemDigitos := func(valor string) bool {
		return termoDigitos != "" && strings.Contains(utils.OnlyDigits(valor), termoDigitos)
	}

	switch filtro.Campo {
	case "", "all":
		return contemTexto(c.NomeCompleto) ||
			contemDigitos(c.CPF) ||
			contemDigitos(c.Telefone) ||
			contemTexto(c.CodigoCadastro) ||
			contemTexto(c.Vendedor)
	case "cpf":
		return contemDigitos(c.CPF)
	case "telefone":
		return contemDigitos(c.Telefone)
	case "nome_completo":
		return contemTexto(c.NomeCompleto)
	case "codigo_cadastro":
		return contemTexto(c.CodigoCadastro)
	case "vendedor":
		return contemTexto(c.Vendedor)
	default:
		return false
	}
}

// UpdateStatus altera apenas o status de um cadastro.
func (r *gormCadastroRepository) UpdateStatus(id uint64, novoStatus string) error {
	result := r.db.Model(&models.DBCadastro{}).Where("id = ?", id).Update("status_cliente", novoStatus)
	if result.Error != nil {
		appLogger.Errorf("Erro ao atualizar status do cadastro ID %d: %v", id, result.Error)
		return appErrors.WrapErrorf(result.Error, "falha ao atualizar status (GORM)")
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: cadastro com ID %d não encontrado para alteração de status", appErrors.ErrNotFound, id)
	}
	return nil
}

// UpdateObservacoes substitui o histórico de observações de supervisor.
func (r *gormCadastroRepository) UpdateObservacoes(id uint64, observacoes models.ObservacaoLista) error {
	result := r.db.Model(&models.DBCadastro{}).Where("id = ?", id).Update("observacao_supervisor", observacoes)
	if result.Error != nil {
		appLogger.Errorf("Erro ao atualizar observações do cadastro ID %d: %v", id, result.Error)
		return appErrors.WrapErrorf(result.Error, "falha ao atualizar observações (GORM)")
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: cadastro com ID %d não encontrado para atualização de observações", appErrors.ErrNotFound, id)
	}
	return nil
}

// UpdateVendedor reatribui o cadastro a outro vendedor/equipe.
func (r *gormCadastroRepository) UpdateVendedor(id uint64, vendedor, equipe string) error {
	updates := map[string]interface{}{"vendedor": vendedor, "equipe": equipe}
	result := r.db.Model(&models.DBCadastro{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		appLogger.Errorf("Erro ao trocar vendedor do cadastro ID %d: %v", id, result.Error)
		return appErrors.WrapErrorf(result.Error, "falha ao trocar vendedor (GORM)")
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: cadastro com ID %d não encontrado para troca de vendedor", appErrors.ErrNotFound, id)
	}
	return nil
}

// ListarObservacoesBrutas retorna o conteúdo cru da coluna de observações de
// todos os cadastros (para detecção de formatos legados pela migração).
func (r *gormCadastroRepository) ListarObservacoesBrutas() ([]ObservacaoBruta, error) {
	var brutas []ObservacaoBruta
	err := r.db.Raw("SELECT id, observacao_supervisor FROM cadastros WHERE observacao_supervisor IS NOT NULL AND observacao_supervisor <> ''").Scan(&brutas).Error
	if err != nil {
		appLogger.Errorf("Erro ao listar observações brutas: %v", err)
		return nil, appErrors.WrapErrorf(err, "falha ao listar observações para migração (GORM)")
	}
	return brutas, nil
}

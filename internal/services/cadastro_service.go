package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	appErrors "github.com/multinegociacoes/APP_CADASTRO_GO/internal/core"
	appLogger "github.com/multinegociacoes/APP_CADASTRO_GO/internal/core/logger"
	"github.com/multinegociacoes/APP_CADASTRO_GO/internal/data/models"
	"github.com/multinegociacoes/APP_CADASTRO_GO/internal/repositories"
	"github.com/multinegociacoes/APP_CADASTRO_GO/internal/utils"
)

// UsuarioInfo identifica quem executa uma ação de retaguarda. Vendedor é o
// nome de exibição; TipoAcesso distingue vendedor de supervisor.
type UsuarioInfo struct {
	Vendedor   string
	TipoAcesso string
}

func (u UsuarioInfo) valida() bool { return strings.TrimSpace(u.Vendedor) != "" }

// CadastroService reúne as operações de retaguarda sobre cadastros já
// persistidos: consulta, mudança de status com histórico, observações de
// supervisão, resgate, troca de vendedor, reenvio de notificações e download
// dos documentos.
type CadastroService interface {
	Listar(vendedorEscopo string) ([]models.DBCadastro, error)
	Buscar(filtro repositories.FiltroCadastros) ([]models.DBCadastro, error)
	ObterPorID(id uint64) (*models.DBCadastro, error)
	ObterPorCodigo(codigo string) (*models.DBCadastro, error)

	AlterarStatus(ctx context.Context, id uint64, novoStatus string, usuario UsuarioInfo) error
	ResgatarCliente(ctx context.Context, id uint64, usuario UsuarioInfo) error
	AdicionarObservacao(ctx context.Context, id uint64, texto string, usuario UsuarioInfo) (*models.Observacao, error)
	RemoverObservacao(ctx context.Context, id uint64, timestamp string, usuario UsuarioInfo) error
	TrocarVendedor(ctx context.Context, id uint64, vendedor, equipe string, usuario UsuarioInfo) error

	ReenviarTelegram(ctx context.Context, id uint64, usuario UsuarioInfo) error
	GerarPDF(id uint64) ([]byte, string, error)
	BaixarDocumentosZip(id uint64, destino io.Writer) (int, string, error)

	HistoricoStatus(cadastroID uint64) ([]models.DBStatusHistory, error)
}

type cadastroServiceImpl struct {
	repo        repositories.CadastroRepository
	historico   repositories.StatusHistoryRepository
	atividade   repositories.ActivityLogRepository
	storage     DocumentStorage
	gerador     GeradorPDF
	notificador NotificadorTelegram
}

// NewCadastroService cria o serviço de retaguarda com todas as dependências.
func NewCadastroService(
	repo repositories.CadastroRepository,
	historico repositories.StatusHistoryRepository,
	atividade repositories.ActivityLogRepository,
	storage DocumentStorage,
	gerador GeradorPDF,
	notificador NotificadorTelegram,
) CadastroService {
	return &cadastroServiceImpl{
		repo:        repo,
		historico:   historico,
		atividade:   atividade,
		storage:     storage,
		gerador:     gerador,
		notificador: notificador,
	}
}

func (s *cadastroServiceImpl) Listar(vendedorEscopo string) ([]models.DBCadastro, error) {
	return s.repo.GetAll(vendedorEscopo)
}

func (s *cadastroServiceImpl) Buscar(filtro repositories.FiltroCadastros) ([]models.DBCadastro, error) {
	return s.repo.Search(filtro)
}

func (s *cadastroServiceImpl) ObterPorID(id uint64) (*models.DBCadastro, error) {
	return s.repo.GetByID(id)
}

func (s *cadastroServiceImpl) ObterPorCodigo(codigo string) (*models.DBCadastro, error) {
	return s.repo.GetByCodigo(codigo)
}

// AlterarStatus grava o novo status e registra a transição no histórico e no
// log de atividade. As falhas dos registros auxiliares não desfazem a
// mudança de status, apenas são logadas.
func (s *cadastroServiceImpl) AlterarStatus(ctx context.Context, id uint64, novoStatus string, usuario UsuarioInfo) error {
	if !usuario.valida() {
		return appErrors.WrapErrorf(appErrors.ErrInvalidInput, "usuário não identificado para alterar status")
	}
	novoStatus = models.NormalizarStatus(novoStatus)
	if !statusConhecido(novoStatus) {
		return appErrors.WrapErrorf(appErrors.ErrInvalidInput, "status desconhecido: %s", novoStatus)
	}

	cadastro, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	statusAnterior := cadastro.StatusCliente

	if err := s.repo.UpdateStatus(id, novoStatus); err != nil {
		return err
	}
	appLogger.Infof("Status do cadastro %s alterado de %s para %s por %s",
		cadastro.CodigoCadastro, statusAnterior, novoStatus, usuario.Vendedor)

	s.registrarHistoricoStatus(cadastro, statusAnterior, novoStatus, usuario)
	s.registrarAtividade(usuario, models.AcaoAlteracaoStatus, models.JSONDetails{
		"cadastro_id":     cadastro.ID,
		"cliente_nome":    cadastro.NomeCompleto,
		"codigo_cadastro": cadastro.CodigoCadastro,
		"old_status":      statusAnterior,
		"new_status":      novoStatus,
	})
	return nil
}

// ResgatarCliente é o atalho de supervisão que move o cadastro para o status
// de resgatado, com o registro de atividade próprio.
func (s *cadastroServiceImpl) ResgatarCliente(ctx context.Context, id uint64, usuario UsuarioInfo) error {
	if !usuario.valida() {
		return appErrors.WrapErrorf(appErrors.ErrInvalidInput, "usuário não identificado para resgatar cliente")
	}
	cadastro, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	statusAnterior := cadastro.StatusCliente

	if err := s.repo.UpdateStatus(id, models.StatusResgatado); err != nil {
		return err
	}
	appLogger.Infof("Cliente %s resgatado por %s", cadastro.CodigoCadastro, usuario.Vendedor)

	s.registrarHistoricoStatus(cadastro, statusAnterior, models.StatusResgatado, usuario)
	s.registrarAtividade(usuario, models.AcaoResgateCliente, models.JSONDetails{
		"cadastro_id":     cadastro.ID,
		"cliente_nome":    cadastro.NomeCompleto,
		"codigo_cadastro": cadastro.CodigoCadastro,
		"old_status":      statusAnterior,
	})
	return nil
}

// AdicionarObservacao acrescenta uma observação de supervisão ao cadastro e
// devolve a entrada criada.
func (s *cadastroServiceImpl) AdicionarObservacao(ctx context.Context, id uint64, texto string, usuario UsuarioInfo) (*models.Observacao, error) {
	if !usuario.valida() {
		return nil, appErrors.WrapErrorf(appErrors.ErrInvalidInput, "usuário não identificado para adicionar observação")
	}
	if strings.TrimSpace(texto) == "" {
		return nil, appErrors.WrapErrorf(appErrors.ErrInvalidInput, "observação vazia")
	}

	cadastro, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	nova := models.Observacao{
		Texto:     texto,
		Autor:     usuario.Vendedor,
		Timestamp: time.Now().UTC(),
	}
	observacoes := append(append(models.ObservacaoLista{}, cadastro.ObservacaoSupervisor...), nova)

	if err := s.repo.UpdateObservacoes(id, observacoes); err != nil {
		return nil, err
	}
	s.registrarAtividade(usuario, models.AcaoNovaObservacao, models.JSONDetails{
		"cadastro_id":  cadastro.ID,
		"cliente_nome": cadastro.NomeCompleto,
		"observacao":   texto,
	})
	return &nova, nil
}

// RemoverObservacao apaga a observação identificada pelo timestamp (RFC3339).
func (s *cadastroServiceImpl) RemoverObservacao(ctx context.Context, id uint64, timestamp string, usuario UsuarioInfo) error {
	alvo, err := time.Parse(time.RFC3339, timestamp)
	if err != nil {
		return appErrors.WrapErrorf(appErrors.ErrInvalidInput, "timestamp de observação inválido: %s", timestamp)
	}

	cadastro, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}

	restantes := models.ObservacaoLista{}
	removida := false
	for _, obs := range cadastro.ObservacaoSupervisor {
		if obs.Timestamp.Equal(alvo) {
			removida = true
			continue
		}
		restantes = append(restantes, obs)
	}
	if !removida {
		return appErrors.WrapErrorf(appErrors.ErrNotFound, "observação com timestamp %s não encontrada", timestamp)
	}
	return s.repo.UpdateObservacoes(id, restantes)
}

// TrocarVendedor reatribui o cadastro a outro vendedor/equipe.
func (s *cadastroServiceImpl) TrocarVendedor(ctx context.Context, id uint64, vendedor, equipe string, usuario UsuarioInfo) error {
	if !usuario.valida() {
		return appErrors.WrapErrorf(appErrors.ErrInvalidInput, "usuário não identificado para trocar vendedor")
	}
	if strings.TrimSpace(vendedor) == "" {
		return appErrors.WrapErrorf(appErrors.ErrInvalidInput, "novo vendedor não informado")
	}

	cadastro, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	vendedorAnterior := cadastro.Vendedor

	if err := s.repo.UpdateVendedor(id, vendedor, equipe); err != nil {
		return err
	}
	appLogger.Infof("Cadastro %s transferido de %s para %s por %s",
		cadastro.CodigoCadastro, vendedorAnterior, vendedor, usuario.Vendedor)

	s.registrarAtividade(usuario, models.AcaoTrocaVendedor, models.JSONDetails{
		"cadastro_id":       cadastro.ID,
		"cliente_nome":      cadastro.NomeCompleto,
		"codigo_cadastro":   cadastro.CodigoCadastro,
		"vendedor_anterior": vendedorAnterior,
		"vendedor_novo":     vendedor,
		"equipe_nova":       equipe,
	})
	return nil
}

// ReenviarTelegram regenera a ficha do cadastro e repete o envio aos dois
// bots, como na submissão original.
func (s *cadastroServiceImpl) ReenviarTelegram(ctx context.Context, id uint64, usuario UsuarioInfo) error {
	if s.notificador == nil {
		return appErrors.WrapErrorf(appErrors.ErrNotification, "bots do Telegram não configurados")
	}
	cadastro, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}

	ficha, err := s.gerador.GerarFicha(cadastro)
	if err != nil {
		return err
	}

	if _, err := s.notificador.Enviar(ctx, 1, FormatarMensagemCompleta(cadastro), ficha, ""); err != nil {
		return err
	}
	if _, err := s.notificador.Enviar(ctx, 2, "", ficha, FormatarMensagemResumida(cadastro)); err != nil {
		return err
	}

	s.registrarAtividade(usuario, models.AcaoReenvioTelegram, models.JSONDetails{
		"cadastro_id":     cadastro.ID,
		"codigo_cadastro": cadastro.CodigoCadastro,
	})
	return nil
}

// GerarPDF renderiza a ficha e devolve os bytes junto com o nome de download
// no formato DD-MM-YYYY - cliente - vendedor.pdf.
func (s *cadastroServiceImpl) GerarPDF(id uint64) ([]byte, string, error) {
	cadastro, err := s.repo.GetByID(id)
	if err != nil {
		return nil, "", err
	}
	ficha, err := s.gerador.GerarFicha(cadastro)
	if err != nil {
		return nil, "", err
	}
	return ficha, nomeArquivoFicha(cadastro), nil
}

// BaixarDocumentosZip escreve no destino um zip com os documentos do
// cadastro e devolve a contagem incluída e o nome sugerido do arquivo.
func (s *cadastroServiceImpl) BaixarDocumentosZip(id uint64, destino io.Writer) (int, string, error) {
	cadastro, err := s.repo.GetByID(id)
	if err != nil {
		return 0, "", err
	}
	if len(cadastro.Documentos) == 0 {
		return 0, "", appErrors.WrapErrorf(appErrors.ErrNotFound, "cadastro %s não tem documentos anexados", cadastro.CodigoCadastro)
	}

	incluidos, err := ZipDocumentos(s.storage, cadastro.Documentos, destino)
	if err != nil {
		return incluidos, "", err
	}
	return incluidos, fmt.Sprintf("documentos_%s.zip", cadastro.CodigoCadastro), nil
}

func (s *cadastroServiceImpl) HistoricoStatus(cadastroID uint64) ([]models.DBStatusHistory, error) {
	return s.historico.ListByCadastro(cadastroID)
}

func (s *cadastroServiceImpl) registrarHistoricoStatus(cadastro *models.DBCadastro, anterior, novo string, usuario UsuarioInfo) {
	if s.historico == nil {
		return
	}
	entrada := &models.DBStatusHistory{
		CadastroID:             cadastro.ID,
		CadastroCodigoCadastro: cadastro.CodigoCadastro,
		ClienteNome:            cadastro.NomeCompleto,
		OldStatus:              anterior,
		NewStatus:              novo,
		ChangedByUserName:      usuario.Vendedor,
	}
	if err := s.historico.Append(entrada); err != nil {
		appLogger.Errorf("Falha ao registrar histórico de status do cadastro %s: %v", cadastro.CodigoCadastro, err)
	}
}

func (s *cadastroServiceImpl) registrarAtividade(usuario UsuarioInfo, acao string, detalhes models.JSONDetails) {
	if s.atividade == nil {
		return
	}
	entrada := &models.ActivityLogEntry{
		UserName:   usuario.Vendedor,
		UserRole:   usuario.TipoAcesso,
		ActionType: acao,
		Details:    detalhes,
	}
	if err := s.atividade.Append(entrada); err != nil {
		appLogger.Errorf("Falha ao registrar atividade %s: %v", acao, err)
	}
}

func statusConhecido(status string) bool {
	for _, opcao := range models.StatusOpcoes {
		if opcao == status {
			return true
		}
	}
	return false
}

// nomeArquivoFicha segue o padrão de download da retaguarda.
func nomeArquivoFicha(c *models.DBCadastro) string {
	data := "SEM_DATA"
	if !c.DataCadastro.IsZero() {
		data = c.DataCadastro.Format("02-01-2006")
	}
	cliente := c.NomeCompleto
	if cliente == "" {
		cliente = "cliente_sem_nome"
	}
	vendedor := c.Vendedor
	if vendedor == "" {
		vendedor = "vendedor_sem_nome"
	}
	return fmt.Sprintf("%s - %s - %s.pdf", data, utils.SanitizeFilename(cliente), utils.SanitizeFilename(vendedor))
}

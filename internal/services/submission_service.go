package services

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	appErrors "github.com/multinegociacoes/APP_CADASTRO_GO/internal/core"
	appLogger "github.com/multinegociacoes/APP_CADASTRO_GO/internal/core/logger"
	"github.com/multinegociacoes/APP_CADASTRO_GO/internal/data/models"
	"github.com/multinegociacoes/APP_CADASTRO_GO/internal/form"
	"github.com/multinegociacoes/APP_CADASTRO_GO/internal/repositories"
	"github.com/multinegociacoes/APP_CADASTRO_GO/internal/utils"
)

// NotificadorTelegram é a visão do envio de notificação usada pela submissão.
type NotificadorTelegram interface {
	Enviar(ctx context.Context, numero int, mensagem string, pdf []byte, caption string) (bool, error)
}

// GeradorPDF é a visão do gerador de ficha usada pela submissão.
type GeradorPDF interface {
	GerarFicha(c *models.DBCadastro) ([]byte, error)
}

// ResultadoSubmissao é o desfecho de uma submissão. Avisos acumula as falhas
// não fatais das etapas posteriores à montagem do cadastro.
type ResultadoSubmissao struct {
	Sucesso        bool
	CodigoCadastro string
	Avisos         []string
	Cadastro       *models.DBCadastro
}

// SubmissionService executa o pipeline de finalização do formulário:
// geração de código, upload dos anexos, montagem do registro, persistência,
// geração da ficha em PDF e o envio aos dois bots do Telegram. As etapas de
// persistência e notificação degradam para avisos sem abortar o pipeline.
type SubmissionService struct {
	repo     repositories.CadastroRepository
	activity repositories.ActivityLogRepository
	storage  DocumentStorage
	pdf      GeradorPDF
	telegram NotificadorTelegram

	emAndamento atomic.Bool
}

// NewSubmissionService monta o pipeline. O repositório de atividade pode ser
// nil (nenhum evento é registrado nesse caso).
func NewSubmissionService(
	repo repositories.CadastroRepository,
	activity repositories.ActivityLogRepository,
	storage DocumentStorage,
	pdf GeradorPDF,
	telegram NotificadorTelegram,
) *SubmissionService {
	return &SubmissionService{
		repo:     repo,
		activity: activity,
		storage:  storage,
		pdf:      pdf,
		telegram: telegram,
	}
}

// Submeter roda o pipeline completo para o rascunho informado. Em modo de
// edição o código e a data de cadastro originais são preservados; em criação
// o status entra sempre como pendente. Submissões concorrentes são recusadas
// com ErrSubmissao.
func (s *SubmissionService) Submeter(ctx context.Context, dados form.Dados, edicao bool, usuario string) (*ResultadoSubmissao, error) {
	if !s.emAndamento.CompareAndSwap(false, true) {
		return nil, appErrors.WrapErrorf(appErrors.ErrSubmissao, "já existe uma submissão em andamento")
	}
	defer s.emAndamento.Store(false)

	resultado := &ResultadoSubmissao{}

	// 1. Código: reaproveitado em edição, gerado em criação.
	codigo := dados.CodigoCadastro
	if !edicao || codigo == "" {
		codigo = utils.GerarCodigo()
	}
	resultado.CodigoCadastro = codigo
	appLogger.Infof("Iniciando submissão do cadastro %s (edição=%t)", codigo, edicao)

	// 2. Upload dos anexos em staging. Falha em um arquivo vira aviso e o
	// arquivo é excluído da lista final.
	documentos := s.enviarDocumentos(dados.Documentos, codigo, resultado)

	// 3. Montagem do registro persistível.
	cadastro := s.montarCadastro(&dados, codigo, documentos, edicao)
	resultado.Cadastro = cadastro

	// 4. Persistência. Falha não aborta o pipeline: o cadastro segue para a
	// ficha e para as notificações com o aviso registrado.
	if err := s.persistir(cadastro, &dados, edicao); err != nil {
		appLogger.Errorf("Falha ao persistir cadastro %s: %v", codigo, err)
		resultado.Avisos = append(resultado.Avisos, fmt.Sprintf("Falha ao salvar no banco de dados: %v", err))
	} else {
		s.registrarAtividade(cadastro, edicao, usuario)
	}

	// 5. Ficha em PDF.
	var ficha []byte
	if s.pdf != nil {
		var err error
		ficha, err = s.pdf.GerarFicha(cadastro)
		if err != nil {
			appLogger.Errorf("Falha ao gerar PDF do cadastro %s: %v", codigo, err)
			resultado.Avisos = append(resultado.Avisos, fmt.Sprintf("Falha ao gerar o PDF: %v", err))
		}
	}

	// 6. Notificações: bot 1 recebe mensagem completa + PDF, bot 2 apenas o
	// PDF com a legenda resumida. Cada envio falha de forma independente.
	s.notificar(ctx, cadastro, ficha, resultado)

	resultado.Sucesso = true
	appLogger.Infof("Submissão do cadastro %s concluída com %d aviso(s)", codigo, len(resultado.Avisos))
	return resultado, nil
}

// enviarDocumentos sobe os anexos em staging e preserva os já enviados.
func (s *SubmissionService) enviarDocumentos(docs []models.Documento, codigo string, resultado *ResultadoSubmissao) models.DocumentoLista {
	enviados := models.DocumentoLista{}
	for _, doc := range docs {
		if doc.CaminhoLocal == "" {
			// Documento de uma edição anterior; mantido como está.
			if doc.Nome != "" && doc.Caminho != "" {
				enviados = append(enviados, doc)
			}
			continue
		}

		arquivo, err := os.Open(doc.CaminhoLocal)
		if err != nil {
			appLogger.Errorf("Anexo %s ilegível em %s: %v", doc.Nome, doc.CaminhoLocal, err)
			resultado.Avisos = append(resultado.Avisos, fmt.Sprintf("Falha ao enviar %s: %v", doc.Nome, err))
			continue
		}
		caminho, err := s.storage.Salvar(codigo, doc.Nome, arquivo)
		arquivo.Close()
		if err != nil {
			appLogger.Errorf("Falha no upload do anexo %s do cadastro %s: %v", doc.Nome, codigo, err)
			resultado.Avisos = append(resultado.Avisos, fmt.Sprintf("Falha ao enviar %s: %v", doc.Nome, err))
			continue
		}

		enviados = append(enviados, models.Documento{
			Nome:    doc.Nome,
			Tipo:    doc.Tipo,
			Tamanho: doc.Tamanho,
			Caminho: caminho,
		})
	}
	return enviados
}

func (s *SubmissionService) montarCadastro(d *form.Dados, codigo string, documentos models.DocumentoLista, edicao bool) *models.DBCadastro {
	// Data de cadastro: preservada em edição quando válida, senão agora.
	dataCadastro := time.Now()
	if edicao && d.DataCadastro != nil && !d.DataCadastro.IsZero() {
		dataCadastro = *d.DataCadastro
	}

	// Status: criação entra sempre como pendente; edição carrega o atual.
	status := models.StatusPendente
	if edicao && d.StatusCliente != "" {
		status = models.NormalizarStatus(d.StatusCliente)
	}

	cadastro := &models.DBCadastro{
		ID:             d.ID,
		CodigoCadastro: codigo,
		DataCadastro:   dataCadastro,
		StatusCliente:  status,

		Modalidade:     d.Modalidade,
		NomeCompleto:   d.NomeCompleto,
		CPF:            d.CPF,
		RG:             d.RG,
		OrgaoExpedidor: d.OrgaoExpedidor,
		EstadoCivil:    d.EstadoCivil,
		NomeConjuge:    d.NomeConjuge,
		Sexo:           d.Sexo,
		NomeMae:        d.NomeMae,
		NomePai:        d.NomePai,

		Telefone:         d.Telefone,
		Email:            d.Email,
		ContatoAdicional: d.ContatoAdicional,

		CEP:                   d.CEP,
		Endereco:              d.Endereco,
		NumeroResidencia:      d.NumeroResidencia,
		Complemento:           d.Complemento,
		Bairro:                d.Bairro,
		Cidade:                d.Cidade,
		EstadoUF:              d.EstadoUF,
		ObservacaoResidencial: d.ObservacaoResidencial,

		Profissao: d.Profissao,
		TipoRenda: d.TipoRenda,

		Segmento:        d.Segmento,
		ObservacaoFinal: d.ObservacaoFinal,

		Vendedor: d.Vendedor,
		Equipe:   d.Equipe,

		ObservacaoSupervisor: d.ObservacaoSupervisor,
		Documentos:           documentos,
	}

	cadastro.RendaMensal = decimalToNull(d.RendaMensal)
	cadastro.ValorCredito = decimalToNull(d.ValorCredito)
	cadastro.ValorEntrada = decimalToNull(d.ValorEntrada)
	cadastro.ValorParcela = decimalToNull(d.ValorParcela)
	if d.Parcelas != nil {
		p := *d.Parcelas
		cadastro.Parcelas = &p
	}

	if strings.TrimSpace(d.DataNascimento) != "" {
		if nasc, err := time.Parse("2006-01-02", d.DataNascimento); err == nil {
			cadastro.DataNascimento = &nasc
		} else {
			appLogger.Warnf("Data de nascimento inválida '%s' descartada na submissão de %s", d.DataNascimento, codigo)
		}
	}
	return cadastro
}

func (s *SubmissionService) persistir(cadastro *models.DBCadastro, d *form.Dados, edicao bool) error {
	if s.repo == nil {
		appLogger.Warnf("Repositório de cadastros não configurado, registro %s não persistido", cadastro.CodigoCadastro)
		return nil
	}
	if edicao {
		if d.ID == 0 && d.CodigoCadastro == "" {
			return appErrors.WrapErrorf(appErrors.ErrInvalidInput, "identificador do cadastro (ID ou código) ausente na edição")
		}
		return s.repo.Update(cadastro)
	}
	return s.repo.Insert(cadastro)
}

func (s *SubmissionService) registrarAtividade(cadastro *models.DBCadastro, edicao bool, usuario string) {
	if s.activity == nil {
		return
	}
	acao := models.AcaoNovoCadastro
	if edicao {
		acao = models.AcaoEdicaoCadastro
	}
	entrada := &models.ActivityLogEntry{
		UserName:   usuario,
		UserRole:   "vendedor",
		ActionType: acao,
		Details: models.JSONDetails{
			"codigo_cadastro": cadastro.CodigoCadastro,
			"cliente_nome":    cadastro.NomeCompleto,
		},
	}
	if err := s.activity.Append(entrada); err != nil {
		appLogger.Warnf("Falha ao registrar atividade da submissão %s: %v", cadastro.CodigoCadastro, err)
	}
}

func (s *SubmissionService) notificar(ctx context.Context, cadastro *models.DBCadastro, ficha []byte, resultado *ResultadoSubmissao) {
	if s.telegram == nil {
		return
	}

	mensagem := FormatarMensagemCompleta(cadastro)
	if _, err := s.telegram.Enviar(ctx, 1, mensagem, ficha, ""); err != nil {
		appLogger.Errorf("Falha no envio ao bot 1 para %s: %v", cadastro.CodigoCadastro, err)
		resultado.Avisos = append(resultado.Avisos, "Não foi possível enviar o cadastro ao bot 1 do Telegram.")
	}

	if ficha != nil {
		resumo := FormatarMensagemResumida(cadastro)
		if _, err := s.telegram.Enviar(ctx, 2, "", ficha, resumo); err != nil {
			appLogger.Errorf("Falha no envio ao bot 2 para %s: %v", cadastro.CodigoCadastro, err)
			resultado.Avisos = append(resultado.Avisos, "Não foi possível enviar o PDF ao bot 2 do Telegram.")
		}
	}
}

func decimalToNull(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

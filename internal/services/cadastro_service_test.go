package services

import (
	"archive/zip"
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/multinegociacoes/APP_CADASTRO_GO/internal/data/models"
)

type historicoFake struct {
	entradas []*models.DBStatusHistory
}

func (h *historicoFake) Append(e *models.DBStatusHistory) error {
	h.entradas = append(h.entradas, e)
	return nil
}

func (h *historicoFake) ListByCadastro(id uint64) ([]models.DBStatusHistory, error) {
	out := []models.DBStatusHistory{}
	for _, e := range h.entradas {
		if e.CadastroID == id {
			out = append(out, *e)
		}
	}
	return out, nil
}

type atividadeFake struct {
	entradas []*models.ActivityLogEntry
}

func (a *atividadeFake) Append(e *models.ActivityLogEntry) error {
	a.entradas = append(a.entradas, e)
	return nil
}

func (a *atividadeFake) ListRecent(int) ([]models.ActivityLogEntry, error) { return nil, nil }

func servicoComCadastro(t *testing.T) (*repoCadastrosFake, *historicoFake, *atividadeFake, CadastroService) {
	t.Helper()
	repo := novoRepoFake()
	repo.porID[7] = &models.DBCadastro{
		ID:             7,
		CodigoCadastro: "123456ABCD",
		NomeCompleto:   "João da Silva",
		StatusCliente:  models.StatusPendente,
		Vendedor:       "Carlos",
		ObservacaoSupervisor: models.ObservacaoLista{
			{Texto: "Primeira anotação", Autor: "Maria", Timestamp: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)},
		},
	}
	historico := &historicoFake{}
	atividade := &atividadeFake{}
	svc := NewCadastroService(repo, historico, atividade, novoStorageFake(), &pdfFake{}, &telegramFake{})
	return repo, historico, atividade, svc
}

func TestAlterarStatusRegistraHistoricoEAtividade(t *testing.T) {
	_, historico, atividade, svc := servicoComCadastro(t)
	usuario := UsuarioInfo{Vendedor: "Supervisor", TipoAcesso: "supervisor"}

	require.NoError(t, svc.AlterarStatus(context.Background(), 7, models.StatusEmAnalise, usuario))

	require.Len(t, historico.entradas, 1)
	assert.Equal(t, models.StatusPendente, historico.entradas[0].OldStatus)
	assert.Equal(t, models.StatusEmAnalise, historico.entradas[0].NewStatus)
	assert.Equal(t, "Supervisor", historico.entradas[0].ChangedByUserName)

	require.Len(t, atividade.entradas, 1)
	assert.Equal(t, models.AcaoAlteracaoStatus, atividade.entradas[0].ActionType)
	assert.Equal(t, models.StatusEmAnalise, atividade.entradas[0].Details["new_status"])
}

func TestAlterarStatusRejeitaDesconhecidoEAnonimo(t *testing.T) {
	_, _, _, svc := servicoComCadastro(t)
	usuario := UsuarioInfo{Vendedor: "Supervisor"}

	assert.Error(t, svc.AlterarStatus(context.Background(), 7, "status_inventado", usuario))
	assert.Error(t, svc.AlterarStatus(context.Background(), 7, models.StatusAprovado, UsuarioInfo{}))
}

func TestResgatarCliente(t *testing.T) {
	_, historico, atividade, svc := servicoComCadastro(t)
	usuario := UsuarioInfo{Vendedor: "Supervisor", TipoAcesso: "supervisor"}

	require.NoError(t, svc.ResgatarCliente(context.Background(), 7, usuario))

	require.Len(t, historico.entradas, 1)
	assert.Equal(t, models.StatusResgatado, historico.entradas[0].NewStatus)
	require.Len(t, atividade.entradas, 1)
	assert.Equal(t, models.AcaoResgateCliente, atividade.entradas[0].ActionType)
}

func TestAdicionarObservacao(t *testing.T) {
	repo, _, atividade, svc := servicoComCadastro(t)
	usuario := UsuarioInfo{Vendedor: "Supervisor", TipoAcesso: "supervisor"}

	obs, err := svc.AdicionarObservacao(context.Background(), 7, "Cliente pediu retorno", usuario)
	require.NoError(t, err)
	assert.Equal(t, "Supervisor", obs.Autor)
	assert.False(t, obs.Timestamp.IsZero())

	// A observação nova entra no fim da lista, preservando as anteriores.
	gravadas := repo.observacoes[7]
	require.Len(t, gravadas, 2)
	assert.Equal(t, "Primeira anotação", gravadas[0].Texto)
	assert.Equal(t, "Cliente pediu retorno", gravadas[1].Texto)

	require.Len(t, atividade.entradas, 1)
	assert.Equal(t, models.AcaoNovaObservacao, atividade.entradas[0].ActionType)

	_, err = svc.AdicionarObservacao(context.Background(), 7, "   ", usuario)
	assert.Error(t, err)
}

func TestRemoverObservacao(t *testing.T) {
	repo, _, _, svc := servicoComCadastro(t)
	usuario := UsuarioInfo{Vendedor: "Supervisor"}

	require.NoError(t, svc.RemoverObservacao(context.Background(), 7, "2024-05-01T10:00:00Z", usuario))
	assert.Empty(t, repo.observacoes[7])

	err := svc.RemoverObservacao(context.Background(), 7, "2030-01-01T00:00:00Z", usuario)
	assert.Error(t, err)
}

func TestTrocarVendedor(t *testing.T) {
	_, _, atividade, svc := servicoComCadastro(t)
	usuario := UsuarioInfo{Vendedor: "Supervisor", TipoAcesso: "supervisor"}

	require.NoError(t, svc.TrocarVendedor(context.Background(), 7, "Ana", "Equipe Norte", usuario))

	require.Len(t, atividade.entradas, 1)
	entrada := atividade.entradas[0]
	assert.Equal(t, models.AcaoTrocaVendedor, entrada.ActionType)
	assert.Equal(t, "Carlos", entrada.Details["vendedor_anterior"])
	assert.Equal(t, "Ana", entrada.Details["vendedor_novo"])

	assert.Error(t, svc.TrocarVendedor(context.Background(), 7, "", "Equipe Norte", usuario))
}

func TestReenviarTelegram(t *testing.T) {
	repo := novoRepoFake()
	repo.porID[7] = &models.DBCadastro{ID: 7, CodigoCadastro: "123456ABCD", NomeCompleto: "João"}
	tg := &telegramFake{}
	atividade := &atividadeFake{}
	svc := NewCadastroService(repo, &historicoFake{}, atividade, novoStorageFake(), &pdfFake{}, tg)

	require.NoError(t, svc.ReenviarTelegram(context.Background(), 7, UsuarioInfo{Vendedor: "Supervisor"}))

	require.Len(t, tg.envios, 2)
	assert.Equal(t, 1, tg.envios[0].Bot)
	assert.True(t, tg.envios[0].TemPDF)
	assert.Equal(t, 2, tg.envios[1].Bot)
	require.Len(t, atividade.entradas, 1)
	assert.Equal(t, models.AcaoReenvioTelegram, atividade.entradas[0].ActionType)
}

func TestBaixarDocumentosZip(t *testing.T) {
	repo := novoRepoFake()
	storage := novoStorageFake()
	caminho, err := storage.Salvar("123456ABCD", "rg.pdf", strings.NewReader("conteudo-rg"))
	require.NoError(t, err)

	repo.porID[7] = &models.DBCadastro{
		ID:             7,
		CodigoCadastro: "123456ABCD",
		Documentos: models.DocumentoLista{
			{Nome: "RG Frente.pdf", Caminho: caminho},
			{Nome: "staging.pdf", CaminhoLocal: "/tmp/ainda-nao-enviado"},
		},
	}
	svc := NewCadastroService(repo, &historicoFake{}, &atividadeFake{}, storage, &pdfFake{}, &telegramFake{})

	var buf bytes.Buffer
	incluidos, nome, err := svc.BaixarDocumentosZip(7, &buf)
	require.NoError(t, err)
	assert.Equal(t, 1, incluidos)
	assert.Equal(t, "documentos_123456ABCD.zip", nome)

	leitor, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	require.Len(t, leitor.File, 1)
	// O zip usa o nome original de exibição.
	assert.Equal(t, "RG Frente.pdf", leitor.File[0].Name)
}

func TestBaixarDocumentosZipSemDocumentos(t *testing.T) {
	repo := novoRepoFake()
	repo.porID[7] = &models.DBCadastro{ID: 7, CodigoCadastro: "123456ABCD"}
	svc := NewCadastroService(repo, &historicoFake{}, &atividadeFake{}, novoStorageFake(), &pdfFake{}, &telegramFake{})

	var buf bytes.Buffer
	_, _, err := svc.BaixarDocumentosZip(7, &buf)
	assert.Error(t, err)
}

func TestGerarPDFNomeDeArquivo(t *testing.T) {
	repo := novoRepoFake()
	repo.porID[7] = &models.DBCadastro{
		ID:             7,
		CodigoCadastro: "123456ABCD",
		NomeCompleto:   "João da Silva",
		Vendedor:       "Carlos",
		DataCadastro:   time.Date(2024, 5, 10, 9, 30, 0, 0, time.UTC),
	}
	svc := NewCadastroService(repo, &historicoFake{}, &atividadeFake{}, novoStorageFake(), &pdfFake{}, &telegramFake{})

	ficha, nome, err := svc.GerarPDF(7)
	require.NoError(t, err)
	assert.NotEmpty(t, ficha)
	assert.Equal(t, "10-05-2024 - joao_da_silva - carlos.pdf", nome)
}

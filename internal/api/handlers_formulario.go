package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	appErrors "github.com/multinegociacoes/APP_CADASTRO_GO/internal/core"
	appLogger "github.com/multinegociacoes/APP_CADASTRO_GO/internal/core/logger"
	"github.com/multinegociacoes/APP_CADASTRO_GO/internal/data/models"
	"github.com/multinegociacoes/APP_CADASTRO_GO/internal/form"
	"github.com/multinegociacoes/APP_CADASTRO_GO/internal/utils"
)

// limite de upload por anexo.
const maxTamanhoAnexo = 25 << 20

// estadoFormulario é a visão serializada de uma sessão devolvida aos clientes.
type estadoFormulario struct {
	SessaoID string            `json:"sessao_id"`
	Etapa    int               `json:"etapa"`
	Edicao   bool              `json:"edicao"`
	Dados    dadosFormulario   `json:"dados"`
	Erros    map[string]string `json:"erros"`
}

// dadosFormulario apresenta o rascunho com os monetários já formatados.
type dadosFormulario struct {
	form.Dados
	RendaMensalFmt  string `json:"renda_mensal_fmt"`
	ValorCreditoFmt string `json:"valor_credito_fmt"`
	ValorEntradaFmt string `json:"valor_entrada_fmt"`
	ValorParcelaFmt string `json:"valor_parcela_fmt"`
}

func (s *Server) estado(sessao *sessaoFormulario) estadoFormulario {
	dados := sessao.Store.Dados()
	visiveis := make(map[string]string)
	for campo := range sessao.Store.Erros() {
		if msg, ok := sessao.Store.ErroVisivel(campo); ok {
			visiveis[campo] = msg
		}
	}
	return estadoFormulario{
		SessaoID: sessao.ID,
		Etapa:    sessao.Navegador.EtapaAtual(),
		Edicao:   sessao.Edicao,
		Dados: dadosFormulario{
			Dados:           dados,
			RendaMensalFmt:  dados.RendaMensalFmt(),
			ValorCreditoFmt: dados.ValorCreditoFmt(),
			ValorEntradaFmt: dados.ValorEntradaFmt(),
			ValorParcelaFmt: dados.ValorParcelaFmt(),
		},
		Erros: visiveis,
	}
}

// criarSessao abre uma sessão de formulário. Com ?codigo= (ou ?id=) a sessão
// nasce em modo edição, pré-carregada do cadastro persistido.
func (s *Server) criarSessao(w http.ResponseWriter, r *http.Request) {
	codigo := r.URL.Query().Get("codigo")
	idParam := r.URL.Query().Get("id")
	edicao := codigo != "" || idParam != ""

	sessao := s.sessoes.criar(edicao)

	if edicao {
		cadastro, err := s.carregarParaEdicao(idParam, codigo)
		if err != nil {
			s.sessoes.remover(sessao.ID)
			respondError(w, err)
			return
		}
		if err := sessao.Store.Carregar(cadastro); err != nil {
			s.sessoes.remover(sessao.ID)
			respondError(w, err)
			return
		}
	}

	// Vendedor e equipe da sessão vêm da identidade do operador.
	if usuario := usuarioDaRequisicao(r); usuario.Vendedor != "" && !edicao {
		sessao.Store.SetCampo(form.CampoVendedor, usuario.Vendedor)
	}

	respondJSON(w, http.StatusCreated, s.estado(sessao))
}

func (s *Server) carregarParaEdicao(idParam, codigo string) (*models.DBCadastro, error) {
	if idParam != "" {
		id, convErr := strconv.ParseUint(idParam, 10, 64)
		if convErr != nil {
			return nil, appErrors.WrapErrorf(appErrors.ErrInvalidInput, "id de cadastro inválido: %s", idParam)
		}
		return s.cadastros.ObterPorID(id)
	}
	return s.cadastros.ObterPorCodigo(codigo)
}

func (s *Server) sessaoDaRequisicao(w http.ResponseWriter, r *http.Request) (*sessaoFormulario, bool) {
	sessao, err := s.sessoes.obter(chi.URLParam(r, "sessaoID"))
	if err != nil {
		respondError(w, err)
		return nil, false
	}
	return sessao, true
}

func (s *Server) estadoSessao(w http.ResponseWriter, r *http.Request) {
	sessao, ok := s.sessaoDaRequisicao(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, s.estado(sessao))
}

func (s *Server) descartarSessao(w http.ResponseWriter, r *http.Request) {
	s.sessoes.remover(chi.URLParam(r, "sessaoID"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) resetarSessao(w http.ResponseWriter, r *http.Request) {
	sessao, ok := s.sessaoDaRequisicao(w, r)
	if !ok {
		return
	}
	sessao.Store.Reset()
	sessao.Navegador.IrPara(1)
	respondJSON(w, http.StatusOK, s.estado(sessao))
}

func (s *Server) definirCampo(w http.ResponseWriter, r *http.Request) {
	sessao, ok := s.sessaoDaRequisicao(w, r)
	if !ok {
		return
	}
	var corpo struct {
		Valor string `json:"valor"`
	}
	if err := json.NewDecoder(r.Body).Decode(&corpo); err != nil {
		respondError(w, appErrors.WrapErrorf(appErrors.ErrInvalidInput, "corpo inválido: %v", err))
		return
	}
	sessao.Store.SetCampo(chi.URLParam(r, "campo"), corpo.Valor)
	respondJSON(w, http.StatusOK, s.estado(sessao))
}

func (s *Server) blurCampo(w http.ResponseWriter, r *http.Request) {
	sessao, ok := s.sessaoDaRequisicao(w, r)
	if !ok {
		return
	}
	sessao.Store.Blur(r.Context(), chi.URLParam(r, "campo"))
	respondJSON(w, http.StatusOK, s.estado(sessao))
}

func (s *Server) avancarEtapa(w http.ResponseWriter, r *http.Request) {
	sessao, ok := s.sessaoDaRequisicao(w, r)
	if !ok {
		return
	}
	avancou := sessao.Navegador.Avancar()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"avancou": avancou,
		"estado":  s.estado(sessao),
	})
}

func (s *Server) voltarEtapa(w http.ResponseWriter, r *http.Request) {
	sessao, ok := s.sessaoDaRequisicao(w, r)
	if !ok {
		return
	}
	sessao.Navegador.Voltar()
	respondJSON(w, http.StatusOK, s.estado(sessao))
}

func (s *Server) irParaEtapa(w http.ResponseWriter, r *http.Request) {
	sessao, ok := s.sessaoDaRequisicao(w, r)
	if !ok {
		return
	}
	numero, err := strconv.Atoi(chi.URLParam(r, "numero"))
	if err != nil || !sessao.Navegador.IrPara(numero) {
		respondError(w, appErrors.WrapErrorf(appErrors.ErrInvalidInput, "etapa inválida: %s", chi.URLParam(r, "numero")))
		return
	}
	respondJSON(w, http.StatusOK, s.estado(sessao))
}

// anexarDocumento recebe um arquivo multipart e o coloca em staging local;
// o envio definitivo acontece só na submissão.
func (s *Server) anexarDocumento(w http.ResponseWriter, r *http.Request) {
	sessao, ok := s.sessaoDaRequisicao(w, r)
	if !ok {
		return
	}
	if err := r.ParseMultipartForm(maxTamanhoAnexo); err != nil {
		respondError(w, appErrors.WrapErrorf(appErrors.ErrInvalidInput, "upload inválido: %v", err))
		return
	}
	arquivo, header, err := r.FormFile("arquivo")
	if err != nil {
		respondError(w, appErrors.WrapErrorf(appErrors.ErrInvalidInput, "campo 'arquivo' ausente: %v", err))
		return
	}
	defer arquivo.Close()

	if err := os.MkdirAll(s.stagingDir, 0o755); err != nil {
		respondError(w, appErrors.WrapErrorf(err, "falha ao preparar diretório de staging"))
		return
	}
	destino := filepath.Join(s.stagingDir, fmt.Sprintf("%s_%s", uuid.NewString(), utils.SanitizeFilename(header.Filename)))
	saida, err := os.Create(destino)
	if err != nil {
		respondError(w, appErrors.WrapErrorf(err, "falha ao criar arquivo de staging"))
		return
	}
	tamanho, err := io.Copy(saida, arquivo)
	saida.Close()
	if err != nil {
		os.Remove(destino)
		respondError(w, appErrors.WrapErrorf(err, "falha ao gravar arquivo de staging"))
		return
	}

	doc := sessao.Store.AnexarArquivo(header.Filename, header.Header.Get("Content-Type"), tamanho, destino)
	appLogger.Debugf("Anexo %s em staging para a sessão %s", header.Filename, sessao.ID)
	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"documento_id": doc.ID,
		"estado":       s.estado(sessao),
	})
}

func (s *Server) removerDocumento(w http.ResponseWriter, r *http.Request) {
	sessao, ok := s.sessaoDaRequisicao(w, r)
	if !ok {
		return
	}
	if !sessao.Store.RemoverArquivo(chi.URLParam(r, "docID")) {
		respondError(w, appErrors.WrapErrorf(appErrors.ErrNotFound, "documento %s não encontrado na sessão", chi.URLParam(r, "docID")))
		return
	}
	respondJSON(w, http.StatusOK, s.estado(sessao))
}

// submeterFormulario valida a última etapa e roda o pipeline de submissão.
// A sessão é descartada apenas quando a submissão conclui.
func (s *Server) submeterFormulario(w http.ResponseWriter, r *http.Request) {
	sessao, ok := s.sessaoDaRequisicao(w, r)
	if !ok {
		return
	}

	// Revalida todas as etapas antes de submeter.
	for etapa := 1; etapa <= form.TotalEtapas; etapa++ {
		if !sessao.Store.ValidarEtapa(etapa) {
			sessao.Navegador.IrPara(etapa)
			respondJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
				"erro":   fmt.Sprintf("A etapa %d contém campos inválidos.", etapa),
				"estado": s.estado(sessao),
			})
			return
		}
	}

	usuario := usuarioDaRequisicao(r)
	resultado, err := s.submissao.Submeter(r.Context(), sessao.Store.Dados(), sessao.Edicao, usuario.Vendedor)
	if err != nil {
		respondError(w, err)
		return
	}

	s.sessoes.remover(sessao.ID)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"sucesso":         resultado.Sucesso,
		"codigo_cadastro": resultado.CodigoCadastro,
		"avisos":          resultado.Avisos,
	})
}

package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	appErrors "github.com/multinegociacoes/APP_CADASTRO_GO/internal/core"
	"github.com/multinegociacoes/APP_CADASTRO_GO/internal/repositories"
)

func cadastroIDDaRota(r *http.Request) (uint64, error) {
	id, err := strconv.ParseUint(chi.URLParam(r, "cadastroID"), 10, 64)
	if err != nil {
		return 0, appErrors.WrapErrorf(appErrors.ErrInvalidInput, "id de cadastro inválido: %s", chi.URLParam(r, "cadastroID"))
	}
	return id, nil
}

// listarCadastros atende a busca da retaguarda. Filtros via query string:
// termo, campo (nome|cpf|codigo|telefone|vendedor), status, data_inicio,
// data_fim (YYYY-MM-DD) e vendedor (escopo).
func (s *Server) listarCadastros(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filtro := repositories.FiltroCadastros{
		Termo:          q.Get("termo"),
		Campo:          q.Get("campo"),
		Status:         q.Get("status"),
		VendedorEscopo: q.Get("vendedor"),
	}

	if v := q.Get("data_inicio"); v != "" {
		inicio, err := time.Parse("2006-01-02", v)
		if err != nil {
			respondError(w, appErrors.WrapErrorf(appErrors.ErrInvalidInput, "data_inicio inválida: %s", v))
			return
		}
		filtro.DataInicio = &inicio
	}
	if v := q.Get("data_fim"); v != "" {
		fim, err := time.Parse("2006-01-02", v)
		if err != nil {
			respondError(w, appErrors.WrapErrorf(appErrors.ErrInvalidInput, "data_fim inválida: %s", v))
			return
		}
		// Inclui o dia inteiro do limite superior.
		fim = fim.Add(24*time.Hour - time.Nanosecond)
		filtro.DataFim = &fim
	}

	cadastros, err := s.cadastros.Buscar(filtro)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"total":     len(cadastros),
		"cadastros": cadastros,
	})
}

func (s *Server) obterCadastro(w http.ResponseWriter, r *http.Request) {
	id, err := cadastroIDDaRota(r)
	if err != nil {
		respondError(w, err)
		return
	}
	cadastro, err := s.cadastros.ObterPorID(id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, cadastro)
}

func (s *Server) alterarStatus(w http.ResponseWriter, r *http.Request) {
	id, err := cadastroIDDaRota(r)
	if err != nil {
		respondError(w, err)
		return
	}
	var corpo struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&corpo); err != nil {
		respondError(w, appErrors.WrapErrorf(appErrors.ErrInvalidInput, "corpo inválido: %v", err))
		return
	}
	if err := s.cadastros.AlterarStatus(r.Context(), id, corpo.Status, usuarioDaRequisicao(r)); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": corpo.Status})
}

func (s *Server) resgatarCliente(w http.ResponseWriter, r *http.Request) {
	id, err := cadastroIDDaRota(r)
	if err != nil {
		respondError(w, err)
		return
	}
	if err := s.cadastros.ResgatarCliente(r.Context(), id, usuarioDaRequisicao(r)); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) adicionarObservacao(w http.ResponseWriter, r *http.Request) {
	id, err := cadastroIDDaRota(r)
	if err != nil {
		respondError(w, err)
		return
	}
	var corpo struct {
		Texto string `json:"texto"`
	}
	if err := json.NewDecoder(r.Body).Decode(&corpo); err != nil {
		respondError(w, appErrors.WrapErrorf(appErrors.ErrInvalidInput, "corpo inválido: %v", err))
		return
	}
	observacao, err := s.cadastros.AdicionarObservacao(r.Context(), id, corpo.Texto, usuarioDaRequisicao(r))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, observacao)
}

func (s *Server) removerObservacao(w http.ResponseWriter, r *http.Request) {
	id, err := cadastroIDDaRota(r)
	if err != nil {
		respondError(w, err)
		return
	}
	timestamp := r.URL.Query().Get("timestamp")
	if err := s.cadastros.RemoverObservacao(r.Context(), id, timestamp, usuarioDaRequisicao(r)); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) trocarVendedor(w http.ResponseWriter, r *http.Request) {
	id, err := cadastroIDDaRota(r)
	if err != nil {
		respondError(w, err)
		return
	}
	var corpo struct {
		Vendedor string `json:"vendedor"`
		Equipe   string `json:"equipe"`
	}
	if err := json.NewDecoder(r.Body).Decode(&corpo); err != nil {
		respondError(w, appErrors.WrapErrorf(appErrors.ErrInvalidInput, "corpo inválido: %v", err))
		return
	}
	if err := s.cadastros.TrocarVendedor(r.Context(), id, corpo.Vendedor, corpo.Equipe, usuarioDaRequisicao(r)); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) reenviarTelegram(w http.ResponseWriter, r *http.Request) {
	id, err := cadastroIDDaRota(r)
	if err != nil {
		respondError(w, err)
		return
	}
	if err := s.cadastros.ReenviarTelegram(r.Context(), id, usuarioDaRequisicao(r)); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) baixarPDF(w http.ResponseWriter, r *http.Request) {
	id, err := cadastroIDDaRota(r)
	if err != nil {
		respondError(w, err)
		return
	}
	ficha, nome, err := s.cadastros.GerarPDF(id)
	if err != nil {
		respondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", nome))
	w.Header().Set("Content-Length", strconv.Itoa(len(ficha)))
	w.Write(ficha)
}

func (s *Server) baixarDocumentos(w http.ResponseWriter, r *http.Request) {
	id, err := cadastroIDDaRota(r)
	if err != nil {
		respondError(w, err)
		return
	}

	// O zip vai para um buffer antes dos cabeçalhos, para que uma falha no
	// meio da montagem ainda possa virar uma resposta de erro.
	var buf bytes.Buffer
	incluidos, nome, err := s.cadastros.BaixarDocumentosZip(id, &buf)
	if err != nil {
		respondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", nome))
	w.Header().Set("X-Documentos-Incluidos", strconv.Itoa(incluidos))
	w.Write(buf.Bytes())
}

func (s *Server) historicoStatus(w http.ResponseWriter, r *http.Request) {
	id, err := cadastroIDDaRota(r)
	if err != nil {
		respondError(w, err)
		return
	}
	historico, err := s.cadastros.HistoricoStatus(id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, historico)
}

func (s *Server) listarAtividade(w http.ResponseWriter, r *http.Request) {
	limite, _ := strconv.Atoi(r.URL.Query().Get("limite"))
	entradas, err := s.atividade.ListarRecentes(limite)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, entradas)
}

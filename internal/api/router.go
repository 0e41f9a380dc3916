package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	appErrors "github.com/multinegociacoes/APP_CADASTRO_GO/internal/core"
	appLogger "github.com/multinegociacoes/APP_CADASTRO_GO/internal/core/logger"
	"github.com/multinegociacoes/APP_CADASTRO_GO/internal/form"
	"github.com/multinegociacoes/APP_CADASTRO_GO/internal/services"
)

// Server expõe o formulário multi-etapas e a retaguarda de cadastros por
// HTTP/JSON. A identidade do operador chega nos cabeçalhos X-Usuario e
// X-Perfil (a autenticação acontece na borda, fora deste serviço).
type Server struct {
	sessoes    *gerenciadorSessoes
	submissao  *services.SubmissionService
	cadastros  services.CadastroService
	atividade  services.ActivityLogService
	stagingDir string
}

// NewServer monta o servidor com as dependências dos dois fluxos.
func NewServer(
	buscadorCEP form.BuscadorCEP,
	submissao *services.SubmissionService,
	cadastros services.CadastroService,
	atividade services.ActivityLogService,
	stagingDir string,
	sessaoTTL time.Duration,
) *Server {
	return &Server{
		sessoes:    novoGerenciadorSessoes(buscadorCEP, sessaoTTL),
		submissao:  submissao,
		cadastros:  cadastros,
		atividade:  atividade,
		stagingDir: stagingDir,
	}
}

// Router devolve o roteador HTTP completo do serviço.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logMiddleware)
	r.Use(middleware.Recoverer)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/formulario", func(r chi.Router) {
			r.Post("/", s.criarSessao)
			r.Route("/{sessaoID}", func(r chi.Router) {
				r.Get("/", s.estadoSessao)
				r.Delete("/", s.descartarSessao)
				r.Post("/reset", s.resetarSessao)
				r.Put("/campos/{campo}", s.definirCampo)
				r.Post("/campos/{campo}/blur", s.blurCampo)
				r.Post("/avancar", s.avancarEtapa)
				r.Post("/voltar", s.voltarEtapa)
				r.Post("/etapa/{numero}", s.irParaEtapa)
				r.Post("/documentos", s.anexarDocumento)
				r.Delete("/documentos/{docID}", s.removerDocumento)
				r.Post("/submeter", s.submeterFormulario)
			})
		})

		r.Route("/cadastros", func(r chi.Router) {
			r.Get("/", s.listarCadastros)
			r.Route("/{cadastroID}", func(r chi.Router) {
				r.Get("/", s.obterCadastro)
				r.Post("/status", s.alterarStatus)
				r.Post("/resgatar", s.resgatarCliente)
				r.Post("/observacoes", s.adicionarObservacao)
				r.Delete("/observacoes", s.removerObservacao)
				r.Post("/vendedor", s.trocarVendedor)
				r.Post("/reenviar-telegram", s.reenviarTelegram)
				r.Get("/pdf", s.baixarPDF)
				r.Get("/documentos.zip", s.baixarDocumentos)
				r.Get("/historico-status", s.historicoStatus)
			})
		})

		r.Get("/atividade", s.listarAtividade)
	})

	return r
}

func logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		inicio := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		appLogger.WithFields(logrus.Fields{
			"method":  r.Method,
			"path":    r.URL.Path,
			"status":  ww.Status(),
			"bytes":   ww.BytesWritten(),
			"elapsed": time.Since(inicio).String(),
		}).Debug("Requisição atendida")
	})
}

// usuarioDaRequisicao extrai a identidade do operador dos cabeçalhos.
func usuarioDaRequisicao(r *http.Request) services.UsuarioInfo {
	return services.UsuarioInfo{
		Vendedor:   r.Header.Get("X-Usuario"),
		TipoAcesso: r.Header.Get("X-Perfil"),
	}
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			appLogger.Errorf("Falha ao serializar resposta: %v", err)
		}
	}
}

// respondError mapeia os erros sentinela do domínio para códigos HTTP.
func respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, appErrors.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, appErrors.ErrInvalidInput), errors.Is(err, appErrors.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, appErrors.ErrConflict), errors.Is(err, appErrors.ErrSubmissao):
		status = http.StatusConflict
	case errors.Is(err, appErrors.ErrNotification), errors.Is(err, appErrors.ErrCEPLookup):
		status = http.StatusBadGateway
	}
	if status == http.StatusInternalServerError {
		appLogger.Errorf("Erro interno na requisição: %v", err)
	}
	respondJSON(w, status, map[string]string{"erro": err.Error()})
}

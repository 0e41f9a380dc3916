package api

import (
	"sync"
	"time"

	"github.com/google/uuid"

	appErrors "github.com/multinegociacoes/APP_CADASTRO_GO/internal/core"
	"github.com/multinegociacoes/APP_CADASTRO_GO/internal/form"
)

// sessaoFormulario é uma instância viva do formulário multi-etapas: o store
// com rascunho e erros, o navegador de etapas e o modo (criação ou edição).
type sessaoFormulario struct {
	ID        string
	Store     *form.Store
	Navegador *form.Navegador
	Edicao    bool
	CriadaEm  time.Time
	UltimoUso time.Time
}

// gerenciadorSessoes guarda as sessões de formulário em memória, protegidas
// por mutex. Sessões ociosas além do TTL são recolhidas de forma preguiçosa
// a cada acesso.
type gerenciadorSessoes struct {
	mu       sync.Mutex
	sessoes  map[string]*sessaoFormulario
	ttl      time.Duration
	buscador form.BuscadorCEP
}

func novoGerenciadorSessoes(buscador form.BuscadorCEP, ttl time.Duration) *gerenciadorSessoes {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &gerenciadorSessoes{
		sessoes:  make(map[string]*sessaoFormulario),
		ttl:      ttl,
		buscador: buscador,
	}
}

func (g *gerenciadorSessoes) criar(edicao bool) *sessaoFormulario {
	store := form.NovoStore(g.buscador)
	sessao := &sessaoFormulario{
		ID:        uuid.NewString(),
		Store:     store,
		Navegador: form.NovoNavegador(store),
		Edicao:    edicao,
		CriadaEm:  time.Now(),
		UltimoUso: time.Now(),
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.recolherExpiradasLocked()
	g.sessoes[sessao.ID] = sessao
	return sessao
}

func (g *gerenciadorSessoes) obter(id string) (*sessaoFormulario, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.recolherExpiradasLocked()

	sessao, ok := g.sessoes[id]
	if !ok {
		return nil, appErrors.WrapErrorf(appErrors.ErrNotFound, "sessão de formulário %s não encontrada", id)
	}
	sessao.UltimoUso = time.Now()
	return sessao, nil
}

func (g *gerenciadorSessoes) remover(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.sessoes, id)
}

func (g *gerenciadorSessoes) recolherExpiradasLocked() {
	limite := time.Now().Add(-g.ttl)
	for id, sessao := range g.sessoes {
		if sessao.UltimoUso.Before(limite) {
			delete(g.sessoes, id)
		}
	}
}

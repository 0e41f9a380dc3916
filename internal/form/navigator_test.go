package form

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNavegadorComecaNaEtapa1(t *testing.T) {
	nav := NovoNavegador(NovoStore(nil))
	assert.Equal(t, 1, nav.EtapaAtual())
}

func TestNavegadorAvancaSoComEtapaValida(t *testing.T) {
	store := NovoStore(nil)
	nav := NovoNavegador(store)

	// Etapa 1 vazia: o avanço é bloqueado e a etapa não muda.
	assert.False(t, nav.Avancar())
	assert.Equal(t, 1, nav.EtapaAtual())
	assert.True(t, store.EtapaSubmetida(1))

	store.SetCampo(CampoModalidade, "Automóvel")
	store.SetCampo(CampoNomeCompleto, "João da Silva")
	store.SetCampo(CampoCPF, "52998224725")
	store.SetCampo(CampoDataNascimento, "1990-03-15")
	store.SetCampo(CampoNomeMae, "Maria da Silva")

	assert.True(t, nav.Avancar())
	assert.Equal(t, 2, nav.EtapaAtual())
}

func TestNavegadorVoltarSempreFuncionaELimitaEm1(t *testing.T) {
	store := NovoStore(nil)
	nav := NovoNavegador(store)
	nav.IrPara(3)

	nav.Voltar()
	assert.Equal(t, 2, nav.EtapaAtual())
	nav.Voltar()
	assert.Equal(t, 1, nav.EtapaAtual())
	// Na primeira etapa, voltar não sai do intervalo.
	nav.Voltar()
	assert.Equal(t, 1, nav.EtapaAtual())
}

func TestNavegadorIrPara(t *testing.T) {
	nav := NovoNavegador(NovoStore(nil))
	assert.True(t, nav.IrPara(6))
	assert.Equal(t, 6, nav.EtapaAtual())
	assert.False(t, nav.IrPara(0))
	assert.False(t, nav.IrPara(7))
	assert.Equal(t, 6, nav.EtapaAtual())
}

func TestNavegadorNaoPassaDaUltimaEtapa(t *testing.T) {
	store := NovoStore(nil)
	nav := NovoNavegador(store)
	nav.IrPara(6)

	// A etapa 6 não tem regras: avançar valida mas fica na última.
	assert.True(t, nav.Avancar())
	assert.Equal(t, 6, nav.EtapaAtual())
}

package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseObservacoesFormatoAtual(t *testing.T) {
	raw := []byte(`[{"text":"Cliente retornou contato","author":"Maria","timestamp":"2024-05-10T12:00:00Z"}]`)
	lista, legado := ParseObservacoes(raw)
	require.Len(t, lista, 1)
	assert.False(t, legado)
	assert.Equal(t, "Cliente retornou contato", lista[0].Texto)
	assert.Equal(t, "Maria", lista[0].Autor)
}

func TestParseObservacoesObjetoSemAutor(t *testing.T) {
	raw := []byte(`{"text":"Aguardando documentos","timestamp":"2024-05-10T12:00:00Z"}`)
	lista, legado := ParseObservacoes(raw)
	require.Len(t, lista, 1)
	assert.True(t, legado)
	assert.Equal(t, "Aguardando documentos", lista[0].Texto)
	assert.Equal(t, AutorObservacaoLegada, lista[0].Autor)
	assert.Equal(t, 2024, lista[0].Timestamp.Year())
}

func TestParseObservacoesStringSimples(t *testing.T) {
	lista, legado := ParseObservacoes([]byte(`"Ligar amanhã"`))
	require.Len(t, lista, 1)
	assert.True(t, legado)
	assert.Equal(t, "Ligar amanhã", lista[0].Texto)
	assert.Equal(t, AutorObservacaoLegada, lista[0].Autor)
	assert.False(t, lista[0].Timestamp.IsZero())
}

func TestParseObservacoesConteudoInvalido(t *testing.T) {
	lista, legado := ParseObservacoes([]byte(`{{nem json`))
	assert.Nil(t, lista)
	assert.False(t, legado)
}

func TestDocumentoEnviado(t *testing.T) {
	enviado := Documento{Nome: "rg.pdf", Caminho: "documentos/123/rg.pdf"}
	staging := Documento{Nome: "rg.pdf", CaminhoLocal: "/tmp/rg.pdf"}
	assert.True(t, enviado.Enviado())
	assert.False(t, staging.Enviado())
}

func TestNormalizarStatus(t *testing.T) {
	assert.Equal(t, StatusEmAnalise, NormalizarStatus("EM_ANALISE"))
	assert.Equal(t, StatusPendente, NormalizarStatus(" Pendente "))
	assert.Equal(t, StatusNaoAtendeu, NormalizarStatus("Não Atendeu"))
}

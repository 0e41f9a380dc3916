package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/multinegociacoes/APP_CADASTRO_GO/internal/data/models"
	"github.com/multinegociacoes/APP_CADASTRO_GO/internal/repositories"
)

func TestMigrarObservacoesLegadas(t *testing.T) {
	repo := novoRepoFake()
	repo.brutas = []repositories.ObservacaoBruta{
		// Formato atual: não deve ser tocado.
		{ID: 1, ObservacaoSupervisor: `[{"text":"ok","author":"Maria","timestamp":"2024-05-10T12:00:00Z"}]`},
		// Legado: string simples.
		{ID: 2, ObservacaoSupervisor: `"Ligar amanhã"`},
		// Legado: objeto único sem autor.
		{ID: 3, ObservacaoSupervisor: `{"text":"Aguardando documentos","timestamp":"2024-05-10T12:00:00Z"}`},
		// Vazio: ignorado.
		{ID: 4, ObservacaoSupervisor: ""},
	}

	svc := NewMigrationService(repo)
	resultado, err := svc.MigrarObservacoesLegadas()
	require.NoError(t, err)

	assert.Equal(t, 3, resultado.Examinados)
	assert.Equal(t, 2, resultado.Migrados)
	assert.Equal(t, 0, resultado.Falhas)

	// Apenas os registros legados foram regravados.
	assert.NotContains(t, repo.observacoes, uint64(1))
	require.Contains(t, repo.observacoes, uint64(2))
	require.Contains(t, repo.observacoes, uint64(3))

	migrada := repo.observacoes[2]
	require.Len(t, migrada, 1)
	assert.Equal(t, "Ligar amanhã", migrada[0].Texto)
	assert.Equal(t, models.AutorObservacaoLegada, migrada[0].Autor)

	comData := repo.observacoes[3]
	require.Len(t, comData, 1)
	assert.Equal(t, models.AutorObservacaoLegada, comData[0].Autor)
	assert.Equal(t, 2024, comData[0].Timestamp.Year())
}

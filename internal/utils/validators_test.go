package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidarCPF(t *testing.T) {
	tests := []struct {
		name     string
		cpf      string
		esperado bool
	}{
		{"válido sem máscara", "52998224725", true},
		{"válido com máscara", "529.982.247-25", true},
		{"dígito verificador errado", "52998224726", false},
		{"todos os dígitos iguais", "11111111111", false},
		{"curto demais", "1234567890", false},
		{"vazio", "", false},
		{"letras", "abcdefghijk", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.esperado, ValidarCPF(tt.cpf))
		})
	}
}

func TestValidarEmail(t *testing.T) {
	assert.True(t, ValidarEmail("vendas@multinegociacoes.com.br"))
	assert.True(t, ValidarEmail("a@b.co"))
	assert.False(t, ValidarEmail("sem-arroba.com"))
	assert.False(t, ValidarEmail("dois espacos@dominio.com"))
	assert.False(t, ValidarEmail("sem@dominio"))
	assert.False(t, ValidarEmail(""))
}

package form

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/multinegociacoes/APP_CADASTRO_GO/internal/data/models"
)

// buscadorCEPFake devolve respostas programadas por CEP.
type buscadorCEPFake struct {
	enderecos map[string]*EnderecoCEP
	erro      error
	chamadas  int
}

func (b *buscadorCEPFake) BuscarCEP(_ context.Context, cep string) (*EnderecoCEP, error) {
	b.chamadas++
	if b.erro != nil {
		return nil, b.erro
	}
	return b.enderecos[cep], nil
}

func TestSetCampoAplicaMascaras(t *testing.T) {
	store := NovoStore(nil)

	store.SetCampo(CampoCPF, "52998224725")
	store.SetCampo(CampoCEP, "90040191")
	store.SetCampo(CampoTelefone, "51999998888")

	dados := store.Dados()
	assert.Equal(t, "529.982.247-25", dados.CPF)
	assert.Equal(t, "90040-191", dados.CEP)
	assert.Equal(t, "(51) 99999-8888", dados.Telefone)
}

func TestSetCampoCPFValidaAoCompletar(t *testing.T) {
	store := NovoStore(nil)

	// Parcial: sem erro mesmo inválido até aqui.
	store.SetCampo(CampoCPF, "5299822")
	assert.NotContains(t, store.Erros(), CampoCPF)

	// 11 dígitos inválidos: erro imediato.
	store.SetCampo(CampoCPF, "52998224726")
	assert.Equal(t, MsgCPFInvalido, store.Erros()[CampoCPF])

	// Corrigir limpa o erro.
	store.SetCampo(CampoCPF, "52998224725")
	assert.NotContains(t, store.Erros(), CampoCPF)
}

func TestSetCampoMonetarioEmCentavos(t *testing.T) {
	store := NovoStore(nil)

	store.SetCampo(CampoValorCredito, "8000000")
	dados := store.Dados()
	require.NotNil(t, dados.ValorCredito)
	assert.True(t, dados.ValorCredito.Equal(decimal.RequireFromString("80000.00")))
	assert.Equal(t, "R$ 80.000,00", dados.ValorCreditoFmt())

	// Apagar tudo volta para não preenchido.
	store.SetCampo(CampoValorCredito, "")
	dados = store.Dados()
	assert.Nil(t, dados.ValorCredito)
	assert.Equal(t, "", dados.ValorCreditoFmt())
}

func TestSetCampoParcelas(t *testing.T) {
	store := NovoStore(nil)
	store.SetCampo(CampoParcelas, "60x")
	require.NotNil(t, store.Dados().Parcelas)
	assert.Equal(t, 60, *store.Dados().Parcelas)

	store.SetCampo(CampoParcelas, "")
	assert.Nil(t, store.Dados().Parcelas)
}

func TestErroVisivelSoDepoisDeTocarOuSubmeter(t *testing.T) {
	store := NovoStore(nil)
	store.SetCampo(CampoCPF, "52998224726")

	// Erro existe mas ainda não é visível.
	_, visivel := store.ErroVisivel(CampoCPF)
	assert.False(t, visivel)

	store.MarcarTocado(CampoCPF)
	msg, visivel := store.ErroVisivel(CampoCPF)
	assert.True(t, visivel)
	assert.Equal(t, MsgCPFInvalido, msg)
}

func TestErroVisivelRespeitaEtapaDoCampo(t *testing.T) {
	store := NovoStore(nil)
	store.SetCampo(CampoCPF, "52998224726")

	// Submeter outra etapa não expõe o erro de um campo intocado da etapa 1.
	store.ValidarEtapa(5)
	_, visivel := store.ErroVisivel(CampoCPF)
	assert.False(t, visivel)

	// Submeter a etapa do campo, sim.
	store.ValidarEtapa(1)
	msg, visivel := store.ErroVisivel(CampoCPF)
	assert.True(t, visivel)
	assert.Equal(t, MsgCPFInvalido, msg)
}

func TestBlurCEPPreencheEndereco(t *testing.T) {
	buscador := &buscadorCEPFake{enderecos: map[string]*EnderecoCEP{
		"90040191": {
			Endereco: "Av. Borges de Medeiros",
			Bairro:   "Praia de Belas",
			Cidade:   "Porto Alegre",
			EstadoUF: "RS",
		},
	}}
	store := NovoStore(buscador)

	store.SetCampo(CampoCEP, "90040191")
	store.Blur(context.Background(), CampoCEP)

	dados := store.Dados()
	assert.Equal(t, "Av. Borges de Medeiros", dados.Endereco)
	assert.Equal(t, "Praia de Belas", dados.Bairro)
	assert.Equal(t, "Porto Alegre", dados.Cidade)
	assert.Equal(t, "RS", dados.EstadoUF)
	assert.Empty(t, store.Erros())
	assert.Equal(t, 1, buscador.chamadas)
}

func TestBlurCEPNaoEncontrado(t *testing.T) {
	store := NovoStore(&buscadorCEPFake{enderecos: map[string]*EnderecoCEP{}})
	store.SetCampo(CampoCEP, "99999999")
	store.Blur(context.Background(), CampoCEP)
	assert.Equal(t, MsgCEPNaoEncontrado, store.Erros()[CampoCEP])
}

func TestBlurCEPErroDeBusca(t *testing.T) {
	store := NovoStore(&buscadorCEPFake{erro: errors.New("timeout")})
	store.SetCampo(CampoCEP, "90040191")
	store.Blur(context.Background(), CampoCEP)
	assert.Equal(t, MsgCEPErroBusca, store.Erros()[CampoCEP])
}

func TestBlurCEPIncompleto(t *testing.T) {
	buscador := &buscadorCEPFake{}
	store := NovoStore(buscador)
	store.SetCampo(CampoCEP, "900")
	store.Blur(context.Background(), CampoCEP)
	assert.Equal(t, MsgCEPIncompleto, store.Erros()[CampoCEP])
	// CEP parcial não dispara consulta.
	assert.Equal(t, 0, buscador.chamadas)
}

func TestResetPreservaVendedorEEquipe(t *testing.T) {
	store := NovoStore(nil)
	store.SetCampo(CampoVendedor, "Carlos")
	store.SetCampo(CampoEquipe, "Equipe Sul")
	store.SetCampo(CampoNomeCompleto, "João da Silva")
	store.MarcarTocado(CampoNomeCompleto)

	store.Reset()

	dados := store.Dados()
	assert.Equal(t, "Carlos", dados.Vendedor)
	assert.Equal(t, "Equipe Sul", dados.Equipe)
	assert.Equal(t, "", dados.NomeCompleto)
	assert.Empty(t, store.Erros())
	_, visivel := store.ErroVisivel(CampoNomeCompleto)
	assert.False(t, visivel)
}

func TestAnexarERemoverArquivo(t *testing.T) {
	store := NovoStore(nil)
	doc := store.AnexarArquivo("Comprovante de Renda.pdf", "application/pdf", 2048, "/tmp/staging/abc.pdf")

	require.NotEmpty(t, doc.ID)
	// O nome original fica intacto para exibição.
	assert.Equal(t, "Comprovante de Renda.pdf", doc.Nome)
	assert.Len(t, store.Dados().Documentos, 1)

	assert.True(t, store.RemoverArquivo(doc.ID))
	assert.Empty(t, store.Dados().Documentos)
	assert.False(t, store.RemoverArquivo(doc.ID))
}

func TestCarregarCadastroParaEdicao(t *testing.T) {
	nasc := time.Date(1990, 3, 15, 0, 0, 0, 0, time.UTC)
	parcelas := 60
	cadastro := &models.DBCadastro{
		ID:             7,
		CodigoCadastro: "123456ABCD",
		DataCadastro:   time.Date(2024, 5, 10, 9, 30, 0, 0, time.UTC),
		StatusCliente:  models.StatusEmAnalise,
		NomeCompleto:   "João da Silva",
		CPF:            "529.982.247-25",
		DataNascimento: &nasc,
		Parcelas:       &parcelas,
		ValorCredito:   decimal.NullDecimal{Decimal: decimal.RequireFromString("80000"), Valid: true},
		Documentos: models.DocumentoLista{
			{Nome: "rg.pdf", Caminho: "documentos/123456ABCD/rg.pdf"},
		},
	}

	store := NovoStore(nil)
	require.NoError(t, store.Carregar(cadastro))

	dados := store.Dados()
	assert.Equal(t, uint64(7), dados.ID)
	assert.Equal(t, "123456ABCD", dados.CodigoCadastro)
	assert.Equal(t, models.StatusEmAnalise, dados.StatusCliente)
	assert.Equal(t, "1990-03-15", dados.DataNascimento)
	require.NotNil(t, dados.Parcelas)
	assert.Equal(t, 60, *dados.Parcelas)
	assert.Equal(t, "R$ 80.000,00", dados.ValorCreditoFmt())
	assert.Len(t, dados.Documentos, 1)
	require.NotNil(t, dados.DataCadastro)
	assert.Equal(t, 2024, dados.DataCadastro.Year())
}

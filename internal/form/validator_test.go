package form

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func dadosEtapa1Validos() Dados {
	return Dados{
		Modalidade:     "Automóvel",
		NomeCompleto:   "João da Silva",
		CPF:            "529.982.247-25",
		DataNascimento: "1990-03-15",
		NomeMae:        "Maria da Silva",
	}
}

func TestValidarEtapa1(t *testing.T) {
	t.Run("completa passa", func(t *testing.T) {
		d := dadosEtapa1Validos()
		ok, erros := ValidarEtapa(1, &d)
		assert.True(t, ok)
		assert.Empty(t, erros)
	})

	t.Run("campos vazios reprovam", func(t *testing.T) {
		d := Dados{}
		ok, erros := ValidarEtapa(1, &d)
		assert.False(t, ok)
		for _, campo := range []string{CampoModalidade, CampoNomeCompleto, CampoCPF, CampoDataNascimento, CampoNomeMae} {
			assert.Contains(t, erros, campo)
		}
	})

	t.Run("cpf com dígito errado reprova", func(t *testing.T) {
		d := dadosEtapa1Validos()
		d.CPF = "529.982.247-26"
		ok, erros := ValidarEtapa(1, &d)
		assert.False(t, ok)
		assert.Equal(t, MsgCPFInvalido, erros[CampoCPF])
	})

	t.Run("nascimento no futuro reprova", func(t *testing.T) {
		d := dadosEtapa1Validos()
		d.DataNascimento = "2999-01-01"
		ok, erros := ValidarEtapa(1, &d)
		assert.False(t, ok)
		assert.Contains(t, erros, CampoDataNascimento)
	})
}

func TestValidarEtapa2(t *testing.T) {
	d := Dados{Telefone: "(51) 99999-8888", Email: "cliente@exemplo.com"}
	ok, erros := ValidarEtapa(2, &d)
	assert.True(t, ok)
	assert.Empty(t, erros)

	d.Email = "sem-arroba"
	ok, erros = ValidarEtapa(2, &d)
	assert.False(t, ok)
	assert.Equal(t, MsgEmailInvalido, erros[CampoEmail])

	d.Email = ""
	_, erros = ValidarEtapa(2, &d)
	assert.Contains(t, erros[CampoEmail], "obrigatóri")
}

func TestValidarEtapa3(t *testing.T) {
	d := Dados{
		CEP:              "90040-191",
		Endereco:         "Av. Borges de Medeiros",
		NumeroResidencia: "1501",
		Bairro:           "Praia de Belas",
		Cidade:           "Porto Alegre",
		EstadoUF:         "RS",
	}
	ok, erros := ValidarEtapa(3, &d)
	assert.True(t, ok)
	assert.Empty(t, erros)

	d.Bairro = "  "
	ok, erros = ValidarEtapa(3, &d)
	assert.False(t, ok)
	assert.Contains(t, erros, CampoBairro)
}

func TestValidarEtapa4Limites(t *testing.T) {
	base := func() Dados {
		parcelas := 60
		return Dados{
			RendaMensal:  dec("3500.00"),
			TipoRenda:    "CLT",
			ValorCredito: dec("80000.00"),
			ValorEntrada: dec("5000.00"),
			Parcelas:     &parcelas,
			ValorParcela: dec("1333.33"),
			Segmento:     "Veículos Leves",
		}
	}

	t.Run("completa passa", func(t *testing.T) {
		d := base()
		ok, erros := ValidarEtapa(4, &d)
		assert.True(t, ok)
		assert.Empty(t, erros)
	})

	t.Run("crédito zero reprova, um centavo passa", func(t *testing.T) {
		d := base()
		d.ValorCredito = dec("0")
		ok, erros := ValidarEtapa(4, &d)
		assert.False(t, ok)
		assert.Contains(t, erros, CampoValorCredito)

		d.ValorCredito = dec("0.01")
		ok, _ = ValidarEtapa(4, &d)
		assert.True(t, ok)
	})

	t.Run("entrada zero passa, negativa reprova", func(t *testing.T) {
		d := base()
		d.ValorEntrada = dec("0")
		ok, _ := ValidarEtapa(4, &d)
		assert.True(t, ok)

		d.ValorEntrada = dec("-1")
		ok, erros := ValidarEtapa(4, &d)
		assert.False(t, ok)
		assert.Contains(t, erros, CampoValorEntrada)
	})

	t.Run("entrada ausente reprova", func(t *testing.T) {
		d := base()
		d.ValorEntrada = nil
		ok, erros := ValidarEtapa(4, &d)
		assert.False(t, ok)
		assert.Contains(t, erros[CampoValorEntrada], "obrigatóri")
	})

	t.Run("parcelas zero ou ausente reprova", func(t *testing.T) {
		d := base()
		zero := 0
		d.Parcelas = &zero
		ok, erros := ValidarEtapa(4, &d)
		assert.False(t, ok)
		assert.Contains(t, erros, CampoParcelas)

		d.Parcelas = nil
		ok, erros = ValidarEtapa(4, &d)
		assert.False(t, ok)
		assert.Contains(t, erros, CampoParcelas)
	})
}

func TestValidarEtapa5(t *testing.T) {
	d := Dados{Vendedor: "Carlos", Equipe: "Equipe Sul"}
	ok, _ := ValidarEtapa(5, &d)
	assert.True(t, ok)

	d.Equipe = ""
	ok, erros := ValidarEtapa(5, &d)
	assert.False(t, ok)
	assert.Contains(t, erros, CampoEquipe)
}

func TestValidarEtapa6SemRegras(t *testing.T) {
	d := Dados{}
	ok, erros := ValidarEtapa(6, &d)
	assert.True(t, ok)
	assert.Empty(t, erros)
}

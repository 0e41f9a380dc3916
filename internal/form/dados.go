package form

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/multinegociacoes/APP_CADASTRO_GO/internal/data/models"
	"github.com/multinegociacoes/APP_CADASTRO_GO/internal/utils"
)

// Nomes dos campos do formulário, usados como chaves em SetCampo, no mapa de
// erros e nos flags de campo tocado. Espelham as colunas persistidas.
const (
	CampoModalidade            = "modalidade"
	CampoNomeCompleto          = "nome_completo"
	CampoCPF                   = "cpf"
	CampoRG                    = "rg"
	CampoOrgaoExpedidor        = "orgao_expedidor"
	CampoDataNascimento        = "data_nascimento"
	CampoEstadoCivil           = "estado_civil"
	CampoNomeConjuge           = "nome_conjuge"
	CampoSexo                  = "sexo"
	CampoNomeMae               = "nome_mae"
	CampoNomePai               = "nome_pai"
	CampoTelefone              = "telefone"
	CampoEmail                 = "email"
	CampoContatoAdicional      = "contato_adicional"
	CampoCEP                   = "cep"
	CampoEndereco              = "endereco"
	CampoNumeroResidencia      = "numero_residencia"
	CampoComplemento           = "complemento"
	CampoBairro                = "bairro"
	CampoCidade                = "cidade"
	CampoEstadoUF              = "estado_uf"
	CampoObservacaoResidencial = "observacao_residencial"
	CampoProfissao             = "profissao"
	CampoRendaMensal           = "renda_mensal"
	CampoTipoRenda             = "tipo_renda"
	CampoValorCredito          = "valor_credito"
	CampoValorEntrada          = "valor_entrada"
	CampoParcelas              = "parcelas"
	CampoValorParcela          = "valor_parcela"
	CampoSegmento              = "segmento"
	CampoObservacaoFinal       = "observacao_final"
	CampoVendedor              = "vendedor"
	CampoEquipe                = "equipe"
)

// Dados é o rascunho tipado do formulário. Todos os campos são declarados;
// campos monetários usam ponteiros de decimal (nil = não preenchido) e o
// valor autoritativo é sempre o numérico — as formas formatadas são
// derivadas na leitura, nunca armazenadas.
type Dados struct {
	// Identificação (somente em modo edição)
	ID             uint64
	CodigoCadastro string
	DataCadastro   *time.Time
	StatusCliente  string

	// Dados pessoais
	Modalidade     string
	NomeCompleto   string
	CPF            string
	RG             string
	OrgaoExpedidor string
	DataNascimento string // formato fixo YYYY-MM-DD
	EstadoCivil    string
	NomeConjuge    string
	Sexo           string
	NomeMae        string
	NomePai        string

	// Contato
	Telefone         string
	Email            string
	ContatoAdicional string

	// Endereço
	CEP                   string
	Endereco              string
	NumeroResidencia      string
	Complemento           string
	Bairro                string
	Cidade                string
	EstadoUF              string
	ObservacaoResidencial string

	// Renda
	Profissao   string
	RendaMensal *decimal.Decimal
	TipoRenda   string

	// Proposta de crédito
	ValorCredito    *decimal.Decimal
	ValorEntrada    *decimal.Decimal
	Parcelas        *int
	ValorParcela    *decimal.Decimal
	Segmento        string
	ObservacaoFinal string

	// Supervisão (carregado em edição; o formulário não o altera)
	ObservacaoSupervisor models.ObservacaoLista

	// Anexos em staging e/ou já enviados (edição)
	Documentos []models.Documento

	// Atendimento
	Vendedor string
	Equipe   string
}

// RendaMensalFmt retorna a renda mensal formatada; vazio quando não preenchida.
func (d *Dados) RendaMensalFmt() string { return decimalFmt(d.RendaMensal) }

// ValorCreditoFmt retorna o valor de crédito formatado; vazio quando não preenchido.
func (d *Dados) ValorCreditoFmt() string { return decimalFmt(d.ValorCredito) }

// ValorEntradaFmt retorna o valor de entrada formatado; vazio quando não preenchido.
func (d *Dados) ValorEntradaFmt() string { return decimalFmt(d.ValorEntrada) }

// ValorParcelaFmt retorna o valor da parcela formatado; vazio quando não preenchido.
func (d *Dados) ValorParcelaFmt() string { return decimalFmt(d.ValorParcela) }

func decimalFmt(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return utils.FormatDecimalMoeda(*d)
}

// DadosDeCadastro constrói um rascunho a partir de um cadastro persistido
// (modo edição). Valores ausentes viram os defaults do rascunho vazio; a data
// de nascimento é re-encodada para YYYY-MM-DD e a lista de documentos é
// copiada como já enviada.
func DadosDeCadastro(c *models.DBCadastro) Dados {
	d := Dados{
		ID:             c.ID,
		CodigoCadastro: c.CodigoCadastro,
		StatusCliente:  c.StatusCliente,

		Modalidade:     c.Modalidade,
		NomeCompleto:   c.NomeCompleto,
		CPF:            c.CPF,
		RG:             c.RG,
		OrgaoExpedidor: c.OrgaoExpedidor,
		DataNascimento: c.DataNascimentoISO(),
		EstadoCivil:    c.EstadoCivil,
		NomeConjuge:    c.NomeConjuge,
		Sexo:           c.Sexo,
		NomeMae:        c.NomeMae,
		NomePai:        c.NomePai,

		Telefone:         c.Telefone,
		Email:            c.Email,
		ContatoAdicional: c.ContatoAdicional,

		CEP:                   c.CEP,
		Endereco:              c.Endereco,
		NumeroResidencia:      c.NumeroResidencia,
		Complemento:           c.Complemento,
		Bairro:                c.Bairro,
		Cidade:                c.Cidade,
		EstadoUF:              c.EstadoUF,
		ObservacaoResidencial: c.ObservacaoResidencial,

		Profissao: c.Profissao,
		TipoRenda: c.TipoRenda,

		Segmento:        c.Segmento,
		ObservacaoFinal: c.ObservacaoFinal,

		Vendedor: c.Vendedor,
		Equipe:   c.Equipe,
	}

	if !c.DataCadastro.IsZero() {
		dc := c.DataCadastro
		d.DataCadastro = &dc
	}

	d.RendaMensal = nullDecimalPtr(c.RendaMensal)
	d.ValorCredito = nullDecimalPtr(c.ValorCredito)
	d.ValorEntrada = nullDecimalPtr(c.ValorEntrada)
	d.ValorParcela = nullDecimalPtr(c.ValorParcela)
	if c.Parcelas != nil {
		p := *c.Parcelas
		d.Parcelas = &p
	}

	if len(c.ObservacaoSupervisor) > 0 {
		d.ObservacaoSupervisor = append(models.ObservacaoLista{}, c.ObservacaoSupervisor...)
	}
	if len(c.Documentos) > 0 {
		d.Documentos = append([]models.Documento{}, c.Documentos...)
	}
	return d
}

func nullDecimalPtr(nd decimal.NullDecimal) *decimal.Decimal {
	if !nd.Valid {
		return nil
	}
	v := nd.Decimal
	return &v
}

package form

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/multinegociacoes/APP_CADASTRO_GO/internal/utils"
)

// TotalEtapas é o número de etapas do formulário.
const TotalEtapas = 6

// Mensagens de validação reutilizadas pelo store.
const (
	MsgCPFInvalido   = "CPF inválido"
	MsgEmailInvalido = "E-mail inválido"
)

// etapaCampos lista os campos obrigatórios de cada etapa que seguem a regra
// genérica de presença. Campos com regras próprias (cpf, data de nascimento,
// email, valores monetários) são tratados à parte em ValidarEtapa.
var etapaCampos = map[int][]string{
	1: {CampoModalidade, CampoNomeCompleto, CampoNomeMae},
	2: {CampoTelefone},
	3: {CampoCEP, CampoEndereco, CampoNumeroResidencia, CampoBairro, CampoCidade, CampoEstadoUF},
	4: {CampoTipoRenda, CampoSegmento},
	5: {CampoVendedor, CampoEquipe},
	6: nil,
}

// rotulosCampos dá o rótulo humano usado nas mensagens de obrigatoriedade.
var rotulosCampos = map[string]string{
	CampoModalidade:       "Modalidade",
	CampoNomeCompleto:     "Nome completo",
	CampoCPF:              "CPF",
	CampoDataNascimento:   "Data de nascimento",
	CampoNomeMae:          "Nome da mãe",
	CampoTelefone:         "Telefone",
	CampoEmail:            "E-mail",
	CampoCEP:              "CEP",
	CampoEndereco:         "Endereço",
	CampoNumeroResidencia: "Número da residência",
	CampoBairro:           "Bairro",
	CampoCidade:           "Cidade",
	CampoEstadoUF:         "Estado (UF)",
	CampoRendaMensal:      "Renda mensal",
	CampoTipoRenda:        "Tipo de renda",
	CampoValorCredito:     "Valor do crédito",
	CampoValorEntrada:     "Valor de entrada",
	CampoParcelas:         "Quantidade de parcelas",
	CampoValorParcela:     "Valor da parcela",
	CampoSegmento:         "Segmento",
	CampoVendedor:         "Vendedor",
	CampoEquipe:           "Equipe",
}

func msgObrigatorio(campo string) string {
	rotulo, ok := rotulosCampos[campo]
	if !ok {
		rotulo = campo
	}
	return rotulo + " é obrigatório(a)"
}

// ValidarEtapa aplica as regras da etapa informada sobre o rascunho e retorna
// se a etapa está válida junto com o mapa campo→mensagem. Etapas fora de
// 1..TotalEtapas (e a etapa 6, de revisão) não têm regras e sempre passam.
func ValidarEtapa(etapa int, d *Dados) (bool, map[string]string) {
	erros := make(map[string]string)

	for _, campo := range etapaCampos[etapa] {
		if strings.TrimSpace(valorTexto(d, campo)) == "" {
			erros[campo] = msgObrigatorio(campo)
		}
	}

	switch etapa {
	case 1:
		validarCPFCampo(d, erros)
		validarNascimento(d, erros)
	case 2:
		validarEmailCampo(d, erros)
	case 4:
		validarMonetario(CampoRendaMensal, d.RendaMensal, true, erros)
		validarMonetario(CampoValorCredito, d.ValorCredito, true, erros)
		// Entrada zero é aceitável; apenas ausência ou negativo reprovam.
		if d.ValorEntrada == nil {
			erros[CampoValorEntrada] = msgObrigatorio(CampoValorEntrada)
		} else if d.ValorEntrada.IsNegative() {
			erros[CampoValorEntrada] = "Valor de entrada não pode ser negativo"
		}
		if d.Parcelas == nil || *d.Parcelas <= 0 {
			erros[CampoParcelas] = "Quantidade de parcelas deve ser maior que zero"
		}
		validarMonetario(CampoValorParcela, d.ValorParcela, true, erros)
	}

	return len(erros) == 0, erros
}

func validarCPFCampo(d *Dados, erros map[string]string) {
	digitos := utils.OnlyDigits(d.CPF)
	if digitos == "" {
		erros[CampoCPF] = msgObrigatorio(CampoCPF)
		return
	}
	if !utils.ValidarCPF(d.CPF) {
		erros[CampoCPF] = MsgCPFInvalido
	}
}

func validarNascimento(d *Dados, erros map[string]string) {
	if strings.TrimSpace(d.DataNascimento) == "" {
		erros[CampoDataNascimento] = msgObrigatorio(CampoDataNascimento)
		return
	}
	nasc, err := time.Parse("2006-01-02", d.DataNascimento)
	if err != nil {
		erros[CampoDataNascimento] = "Data de nascimento inválida"
		return
	}
	if nasc.After(time.Now()) {
		erros[CampoDataNascimento] = "Data de nascimento não pode ser no futuro"
	}
}

func validarEmailCampo(d *Dados, erros map[string]string) {
	email := strings.TrimSpace(d.Email)
	if email == "" {
		erros[CampoEmail] = msgObrigatorio(CampoEmail)
		return
	}
	if !utils.ValidarEmail(email) {
		erros[CampoEmail] = MsgEmailInvalido
	}
}

func validarMonetario(campo string, valor *decimal.Decimal, exigePositivo bool, erros map[string]string) {
	if valor == nil {
		erros[campo] = msgObrigatorio(campo)
		return
	}
	if exigePositivo && !valor.IsPositive() {
		rotulo := rotulosCampos[campo]
		erros[campo] = rotulo + " deve ser maior que zero"
	}
}

// valorTexto resolve o valor textual de um campo de presença genérica.
func valorTexto(d *Dados, campo string) string {
	switch campo {
	case CampoModalidade:
		return d.Modalidade
	case CampoNomeCompleto:
		return d.NomeCompleto
	case CampoNomeMae:
		return d.NomeMae
	case CampoTelefone:
		return d.Telefone
	case CampoCEP:
		return d.CEP
	case CampoEndereco:
		return d.Endereco
	case CampoNumeroResidencia:
		return d.NumeroResidencia
	case CampoBairro:
		return d.Bairro
	case CampoCidade:
		return d.Cidade
	case CampoEstadoUF:
		return d.EstadoUF
	case CampoTipoRenda:
		return d.TipoRenda
	case CampoSegmento:
		return d.Segmento
	case CampoVendedor:
		return d.Vendedor
	case CampoEquipe:
		return d.Equipe
	}
	return ""
}

package services

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	appErrors "github.com/multinegociacoes/APP_CADASTRO_GO/internal/core"
	appLogger "github.com/multinegociacoes/APP_CADASTRO_GO/internal/core/logger"
	"github.com/multinegociacoes/APP_CADASTRO_GO/internal/data/models"
)

// EmpresaPadraoPDF é a razão social impressa no cabeçalho quando nenhuma é
// configurada.
const EmpresaPadraoPDF = "JBENS SOLUÇÕES FINANCEIRAS LTDA LTDA"

// PDFService gera a ficha de cadastro em PDF (A4 retrato, seções com barra
// de título e campos em duas colunas).
type PDFService struct {
	logoPath    string
	logoEnabled bool
	empresaNome string
}

// NewPDFService cria o gerador. O logo é opcional: caminho vazio ou arquivo
// ilegível apenas omite a imagem do cabeçalho.
func NewPDFService(logoPath string, logoEnabled bool, empresaNome string) *PDFService {
	if empresaNome == "" {
		empresaNome = EmpresaPadraoPDF
	}
	return &PDFService{logoPath: logoPath, logoEnabled: logoEnabled, empresaNome: empresaNome}
}

// NomeArquivoPDF devolve o nome de download da ficha do cadastro.
func NomeArquivoPDF(c *models.DBCadastro) string {
	nome := strings.Join(strings.Fields(c.NomeCompleto), "_")
	return fmt.Sprintf("cadastro_%s_%s.pdf", c.CodigoCadastro, nome)
}

// GerarFicha renderiza a ficha completa do cadastro e devolve os bytes do
// PDF. Campos vazios saem como 'N/A' e monetários vazios como R$ 0,00.
func (s *PDFService) GerarFicha(c *models.DBCadastro) ([]byte, error) {
	if c == nil {
		return nil, appErrors.WrapErrorf(appErrors.ErrInvalidInput, "cadastro nulo ao gerar PDF")
	}

	pdf := fpdf.New("P", "pt", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetAutoPageBreak(true, 60)
	pdf.AddPage()

	largura, altura := pdf.GetPageSize()
	const margem = 30.0
	conteudo := largura - 2*margem

	// Rodapé com numeração em todas as páginas.
	geradoEm := time.Now().Format("02/01/2006 15:04:05")
	pdf.SetFooterFunc(func() {
		pdf.SetY(altura - margem/2 - 8)
		pdf.SetFont("Helvetica", "", 7)
		pdf.SetTextColor(150, 150, 150)
		rodape := fmt.Sprintf("Página %d de {nb} - Gerado em %s", pdf.PageNo(), geradoEm)
		pdf.CellFormat(0, 10, tr(rodape), "", 0, "C", false, 0, "")
	})
	pdf.AliasNbPages("")

	s.cabecalho(pdf, tr, c, margem, conteudo, largura)

	secao := func(titulo string) {
		pdf.Ln(6)
		pdf.SetFillColor(0, 0, 0)
		pdf.Rect(margem, pdf.GetY(), conteudo, 2, "F")
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "B", 11)
		pdf.SetTextColor(0, 0, 0)
		pdf.SetX(margem)
		pdf.CellFormat(conteudo, 14, tr(strings.ToUpper(titulo)), "", 1, "L", false, 0, "")
		pdf.Ln(2)
	}

	campo := func(rotulo, valor string, x, maxLargura float64) {
		if strings.TrimSpace(valor) == "" {
			valor = "N/A"
		}
		pdf.SetFont("Helvetica", "", 7)
		pdf.SetTextColor(75, 85, 99)
		pdf.Text(x, pdf.GetY()+8, tr(rotulo+":"))
		rotuloLargura := pdf.GetStringWidth(rotulo + ": ")
		pdf.SetFont("Helvetica", "", 8)
		pdf.SetTextColor(31, 41, 55)
		texto := valor
		if pdf.GetStringWidth(texto) > maxLargura-rotuloLargura {
			for len(texto) > 0 && pdf.GetStringWidth(texto+"...") > maxLargura-rotuloLargura {
				texto = texto[:len(texto)-1]
			}
			texto += "..."
		}
		pdf.Text(x+rotuloLargura, pdf.GetY()+8, tr(texto))
	}

	campoLargo := func(rotulo, valor string) {
		campo(rotulo, valor, margem, conteudo)
		pdf.Ln(14)
	}
	doisCampos := func(rotulo1, valor1, rotulo2, valor2 string) {
		campo(rotulo1, valor1, margem, conteudo/2-8)
		campo(rotulo2, valor2, margem+conteudo/2, conteudo/2-8)
		pdf.Ln(14)
	}

	secao("Dados de Acesso")
	doisCampos("Usuário/Vendedor", c.Vendedor, "Equipe", c.Equipe)
	campoLargo("Modalidade", c.Modalidade)

	secao("Dados Pessoais")
	campoLargo("Nome Completo", c.NomeCompleto)
	doisCampos("CPF", c.CPF, "RG", c.RG)
	doisCampos("Órgão Expedidor", c.OrgaoExpedidor, "Data de Nascimento", nascimentoExibicao(c))
	doisCampos("Estado Civil", c.EstadoCivil, "Sexo", c.Sexo)
	campoLargo("Nome da Mãe", c.NomeMae)
	campoLargo("Nome do Pai", c.NomePai)
	if strings.Contains(strings.ToLower(c.EstadoCivil), "casado") {
		campoLargo("Nome Cônjuge", c.NomeConjuge)
	}

	secao("Dados Residenciais")
	campoLargo("Endereço", fmt.Sprintf("%s, %s", c.Endereco, c.NumeroResidencia))
	doisCampos("Bairro", c.Bairro, "Cidade", c.Cidade)
	doisCampos("Estado (UF)", c.EstadoUF, "CEP", c.CEP)
	campoLargo("Complemento", c.Complemento)
	campoLargo("Observação Residencial", c.ObservacaoResidencial)

	secao("Informações de Contato")
	doisCampos("Telefone", c.Telefone, "E-mail", c.Email)
	campoLargo("Contato Adicional", c.ContatoAdicional)

	secao("Informações de Renda")
	doisCampos("Profissão", c.Profissao, "Renda Mensal", moedaOuZero(c.RendaMensalFmt()))
	campoLargo("Tipo de Renda", c.TipoRenda)

	secao("Proposta de Crédito")
	doisCampos("Valor do Crédito", moedaOuZero(c.ValorCreditoFmt()), "Valor de Entrada", moedaOuZero(c.ValorEntradaFmt()))
	doisCampos("Nº Parcelas", parcelasExibicao(c), "Valor da Parcela", moedaOuZero(c.ValorParcelaFmt()))
	campoLargo("Segmento", c.Segmento)
	campoLargo("Observação Final", c.ObservacaoFinal)

	secao("Status do Cliente")
	campoLargo("Status Atual", statusExibicao(c.StatusCliente))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, appErrors.WrapErrorf(appErrors.ErrPDF, "falha ao renderizar PDF do cadastro %s: %v", c.CodigoCadastro, err)
	}
	return buf.Bytes(), nil
}

func (s *PDFService) cabecalho(pdf *fpdf.Fpdf, tr func(string) string, c *models.DBCadastro, margem, conteudo, largura float64) {
	topo := margem

	if s.logoEnabled && s.logoPath != "" {
		if _, err := os.Stat(s.logoPath); err == nil {
			opt := fpdf.ImageOptions{ReadDpi: true}
			logoLargura := conteudo * 0.25
			pdf.ImageOptions(s.logoPath, largura-margem-logoLargura, topo, logoLargura, 0, false, opt, 0, "")
		} else {
			appLogger.Warnf("Logo do PDF não encontrado em %s, cabeçalho sem imagem", s.logoPath)
		}
	}

	pdf.SetFont("Helvetica", "B", 20)
	pdf.SetTextColor(0, 0, 0)
	pdf.Text(margem, topo+12, tr("FICHA DE CADASTRO"))

	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(75, 85, 99)
	pdf.Text(margem, topo+36, tr(s.empresaNome))

	dataCadastro := "N/A"
	if !c.DataCadastro.IsZero() {
		dataCadastro = c.DataCadastro.Format("02/01/2006 15:04")
	}
	pdf.Text(margem, topo+48, tr(fmt.Sprintf("Código: %s | Data: %s", ouNA(c.CodigoCadastro), dataCadastro)))

	pdf.SetY(topo + 70)
}

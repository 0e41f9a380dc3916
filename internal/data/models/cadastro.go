package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/multinegociacoes/APP_CADASTRO_GO/internal/utils"
)

// StatusCliente enumera os status possíveis de um cadastro.
// O valor é armazenado normalizado (minúsculas, sem acentos, '_' no lugar de espaços).
const (
	StatusPendente             = "pendente"
	StatusResgatado            = "resgatado"
	StatusEmAnalise            = "em_analise"
	StatusAprovado             = "aprovado"
	StatusReprovado            = "reprovado"
	StatusFinalizado           = "finalizado"
	StatusMarcouVisita         = "marcou_visita"
	StatusComprou              = "comprou"
	StatusNaoComprou           = "nao_comprou"
	StatusNaoAtendeu           = "nao_atendeu"
	StatusCaixaPostal          = "caixa_postal_bloqueador"
	StatusPediuContatoVendedor = "pediu_contato_vendedor"
)

// Opções fixas dos campos de seleção do formulário.
var (
	ModalidadeOpcoes = []string{
		"Automóvel", "Imóvel", "Pesados", "Serviços",
		"Aquisições de Bens", "Autofinanciamento",
	}
	TipoRendaOpcoes = []string{"CLT", "Autônomo", "Empresário", "Aposentado", "Pensionista"}
	SegmentoOpcoes  = []string{
		"Veículos Leves", "Veículos Pesados", "Imóveis Residenciais",
		"Imóveis Comerciais", "Serviços Diversos", "Outros",
	}
	StatusOpcoes = []string{
		StatusPendente, StatusResgatado, StatusEmAnalise, StatusAprovado,
		StatusReprovado, StatusFinalizado, StatusMarcouVisita, StatusComprou,
		StatusNaoComprou, StatusNaoAtendeu, StatusCaixaPostal, StatusPediuContatoVendedor,
	}
)

// NormalizarStatus converte um status de exibição para a forma armazenada
// (minúsculas, sem acentos, espaços viram '_').
func NormalizarStatus(status string) string {
	s := strings.ToLower(strings.TrimSpace(status))
	s = utils.SanitizeFilename(s) // já remove acentos e troca separadores por '_'
	return strings.ReplaceAll(s, " ", "_")
}

// Documento representa um anexo do cadastro.
//
// Antes do upload: ID e CaminhoLocal preenchidos (staging no cliente).
// Depois do upload: apenas name/type/size/path são persistidos; o handle
// local é descartado. O nome original é mantido para exibição ao usuário.
type Documento struct {
	ID           string `json:"-" gorm:"-"` // identificador efêmero de staging
	Nome         string `json:"name"`
	Tipo         string `json:"type"`
	Tamanho      int64  `json:"size"`
	CaminhoLocal string `json:"-" gorm:"-"` // handle do binário local; vazio após upload
	Caminho      string `json:"path,omitempty"`
}

// Enviado informa se o documento já reside no armazenamento remoto.
func (d *Documento) Enviado() bool {
	return d.CaminhoLocal == "" && d.Caminho != ""
}

// DocumentoLista é a lista de anexos serializada como JSON no banco,
// espelhando o formato TEXT/JSON da tabela original.
type DocumentoLista []Documento

// Value implementa driver.Valuer.
func (dl DocumentoLista) Value() (driver.Value, error) {
	if dl == nil {
		return "[]", nil
	}
	b, err := json.Marshal(dl)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implementa sql.Scanner. Conteúdo vazio ou nulo vira lista vazia.
func (dl *DocumentoLista) Scan(value interface{}) error {
	if value == nil {
		*dl = DocumentoLista{}
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		s, okStr := value.(string)
		if !okStr {
			return errors.New("tipo de valor inválido para DocumentoLista scan, esperado []byte ou string")
		}
		b = []byte(s)
	}
	if len(b) == 0 {
		*dl = DocumentoLista{}
		return nil
	}
	// Alguns registros antigos carregam o JSON duplamente serializado
	// (string contendo o array); desfaz um nível antes de decodificar.
	var raw string
	if err := json.Unmarshal(b, &raw); err == nil {
		b = []byte(raw)
	}
	var lista []Documento
	if err := json.Unmarshal(b, &lista); err != nil {
		*dl = DocumentoLista{}
		return nil
	}
	*dl = lista
	return nil
}

// Observacao é uma anotação de supervisor anexada a um cadastro.
type Observacao struct {
	Texto     string    `json:"text"`
	Autor     string    `json:"author"`
	Timestamp time.Time `json:"timestamp"`
}

// ObservacaoLista é o histórico de observações serializado como JSON.
//
// Formatos legados tolerados na leitura (ver serviço de migração):
// string simples e objeto único {text, timestamp} sem autor.
type ObservacaoLista []Observacao

// AutorObservacaoLegada é atribuído a observações migradas do formato
// antigo, que não registrava autor.
const AutorObservacaoLegada = "Heverton"

// Value implementa driver.Valuer.
func (ol ObservacaoLista) Value() (driver.Value, error) {
	if ol == nil {
		return nil, nil
	}
	b, err := json.Marshal(ol)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implementa sql.Scanner, aceitando também os formatos legados.
func (ol *ObservacaoLista) Scan(value interface{}) error {
	if value == nil {
		*ol = nil
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		s, okStr := value.(string)
		if !okStr {
			return errors.New("tipo de valor inválido para ObservacaoLista scan, esperado []byte ou string")
		}
		b = []byte(s)
	}
	if len(b) == 0 {
		*ol = nil
		return nil
	}
	lista, _ := ParseObservacoes(b)
	*ol = lista
	return nil
}

// ParseObservacoes decodifica o conteúdo bruto da coluna de observações,
// convertendo formatos legados para a forma atual. O segundo retorno indica
// se o conteúdo estava no formato legado (e portanto precisa de migração).
func ParseObservacoes(raw []byte) (ObservacaoLista, bool) {
	// Formato atual: array de objetos.
	var lista []Observacao
	if err := json.Unmarshal(raw, &lista); err == nil {
		return lista, false
	}

	// Legado 1: objeto único {text, timestamp} sem autor.
	var antiga struct {
		Texto     string     `json:"text"`
		Autor     string     `json:"author"`
		Timestamp *time.Time `json:"timestamp"`
	}
	if err := json.Unmarshal(raw, &antiga); err == nil && antiga.Texto != "" {
		ts := time.Now().UTC()
		if antiga.Timestamp != nil {
			ts = *antiga.Timestamp
		}
		autor := antiga.Autor
		if autor == "" {
			autor = AutorObservacaoLegada
		}
		return ObservacaoLista{{Texto: antiga.Texto, Autor: autor, Timestamp: ts}}, antiga.Autor == ""
	}

	// Legado 2: string simples.
	var texto string
	if err := json.Unmarshal(raw, &texto); err == nil && strings.TrimSpace(texto) != "" {
		return ObservacaoLista{{Texto: texto, Autor: AutorObservacaoLegada, Timestamp: time.Now().UTC()}}, true
	}

	return nil, false
}

// DBCadastro representa a entidade cadastro no banco de dados.
// Todos os campos do formulário são declarados explicitamente; campos
// opcionais são ponteiros/nulos, nunca chaves ausentes.
type DBCadastro struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	// Metadados do cadastro
	CodigoCadastro string    `gorm:"column:codigo_cadastro;type:varchar(16);uniqueIndex;not null" json:"codigo_cadastro"`
	DataCadastro   time.Time `gorm:"column:data_cadastro;not null;index" json:"data_cadastro"`
	StatusCliente  string    `gorm:"column:status_cliente;type:varchar(40);not null;default:pendente;index" json:"status_cliente"`
	Vendedor       string    `gorm:"column:vendedor;type:varchar(100);index" json:"vendedor"`
	Equipe         string    `gorm:"column:equipe;type:varchar(100)" json:"equipe"`

	// Dados pessoais
	Modalidade     string     `gorm:"column:modalidade;type:varchar(50)" json:"modalidade"`
	NomeCompleto   string     `gorm:"column:nome_completo;type:varchar(200);index" json:"nome_completo"`
	CPF            string     `gorm:"column:cpf;type:varchar(14);index" json:"cpf"`
	RG             string     `gorm:"column:rg;type:varchar(20)" json:"rg"`
	OrgaoExpedidor string     `gorm:"column:orgao_expedidor;type:varchar(20)" json:"orgao_expedidor"`
	DataNascimento *time.Time `gorm:"column:data_nascimento;type:date" json:"data_nascimento"`
	EstadoCivil    string     `gorm:"column:estado_civil;type:varchar(30)" json:"estado_civil"`
	NomeConjuge    string     `gorm:"column:nome_conjuge;type:varchar(200)" json:"nome_conjuge"`
	Sexo           string     `gorm:"column:sexo;type:varchar(30)" json:"sexo"`
	NomeMae        string     `gorm:"column:nome_mae;type:varchar(200)" json:"nome_mae"`
	NomePai        string     `gorm:"column:nome_pai;type:varchar(200)" json:"nome_pai"`

	// Contato
	Telefone         string `gorm:"column:telefone;type:varchar(20)" json:"telefone"`
	Email            string `gorm:"column:email;type:varchar(254)" json:"email"`
	ContatoAdicional string `gorm:"column:contato_adicional;type:varchar(100)" json:"contato_adicional"`

	// Endereço
	CEP                   string `gorm:"column:cep;type:varchar(10)" json:"cep"`
	Endereco              string `gorm:"column:endereco;type:varchar(200)" json:"endereco"`
	NumeroResidencia      string `gorm:"column:numero_residencia;type:varchar(20)" json:"numero_residencia"`
	Complemento           string `gorm:"column:complemento;type:varchar(100)" json:"complemento"`
	Bairro                string `gorm:"column:bairro;type:varchar(100)" json:"bairro"`
	Cidade                string `gorm:"column:cidade;type:varchar(100)" json:"cidade"`
	EstadoUF              string `gorm:"column:estado_uf;type:varchar(2)" json:"estado_uf"`
	ObservacaoResidencial string `gorm:"column:observacao_residencial;type:text" json:"observacao_residencial"`

	// Renda
	Profissao   string              `gorm:"column:profissao;type:varchar(100)" json:"profissao"`
	RendaMensal decimal.NullDecimal `gorm:"column:renda_mensal;type:numeric(14,2)" json:"renda_mensal"`
	TipoRenda   string              `gorm:"column:tipo_renda;type:varchar(30)" json:"tipo_renda"`

	// Proposta de crédito
	ValorCredito    decimal.NullDecimal `gorm:"column:valor_credito;type:numeric(14,2)" json:"valor_credito"`
	ValorEntrada    decimal.NullDecimal `gorm:"column:valor_entrada;type:numeric(14,2)" json:"valor_entrada"`
	Parcelas        *int                `gorm:"column:parcelas" json:"parcelas"`
	ValorParcela    decimal.NullDecimal `gorm:"column:valor_parcela;type:numeric(14,2)" json:"valor_parcela"`
	Segmento        string              `gorm:"column:segmento;type:varchar(50)" json:"segmento"`
	ObservacaoFinal string              `gorm:"column:observacao_final;type:text" json:"observacao_final"`

	// Supervisão
	ObservacaoSupervisor ObservacaoLista `gorm:"column:observacao_supervisor;type:text" json:"observacao_supervisor"`

	// Anexos
	Documentos DocumentoLista `gorm:"column:documentos;type:text" json:"documentos"`
}

// TableName especifica o nome da tabela para GORM.
func (DBCadastro) TableName() string {
	return "cadastros"
}

// RendaMensalFmt retorna a renda mensal formatada para exibição.
// O valor autoritativo é sempre o decimal; a forma exibida é derivada.
func (c *DBCadastro) RendaMensalFmt() string { return nullDecimalFmt(c.RendaMensal) }

// ValorCreditoFmt retorna o valor de crédito formatado para exibição.
func (c *DBCadastro) ValorCreditoFmt() string { return nullDecimalFmt(c.ValorCredito) }

// ValorEntradaFmt retorna o valor de entrada formatado para exibição.
func (c *DBCadastro) ValorEntradaFmt() string { return nullDecimalFmt(c.ValorEntrada) }

// ValorParcelaFmt retorna o valor da parcela formatado para exibição.
func (c *DBCadastro) ValorParcelaFmt() string { return nullDecimalFmt(c.ValorParcela) }

func nullDecimalFmt(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return utils.FormatDecimalMoeda(d.Decimal)
}

// DataNascimentoISO retorna a data de nascimento no formato fixo YYYY-MM-DD.
func (c *DBCadastro) DataNascimentoISO() string {
	if c.DataNascimento == nil {
		return ""
	}
	return c.DataNascimento.Format("2006-01-02")
}

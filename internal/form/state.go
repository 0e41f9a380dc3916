package form

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"

	appErrors "github.com/multinegociacoes/APP_CADASTRO_GO/internal/core"
	appLogger "github.com/multinegociacoes/APP_CADASTRO_GO/internal/core/logger"
	"github.com/multinegociacoes/APP_CADASTRO_GO/internal/data/models"
	"github.com/multinegociacoes/APP_CADASTRO_GO/internal/utils"
)

// Mensagens de erro do auto-preenchimento de endereço.
const (
	MsgCEPNaoEncontrado = "CEP não encontrado ou inválido."
	MsgCEPErroBusca     = "Erro ao buscar CEP. Tente novamente."
	MsgCEPIncompleto    = "CEP incompleto."
)

// EnderecoCEP é o resultado de uma consulta de CEP já normalizado para os
// campos do formulário.
type EnderecoCEP struct {
	Endereco string
	Bairro   string
	Cidade   string
	EstadoUF string
}

// BuscadorCEP consulta um CEP de 8 dígitos. Retorna (nil, nil) quando o CEP
// não existe e erro apenas em falha de comunicação.
type BuscadorCEP interface {
	BuscarCEP(ctx context.Context, cep string) (*EnderecoCEP, error)
}

// Store guarda o rascunho do formulário junto com o estado de interação:
// erros por campo, campos tocados e etapas já submetidas. As escritas passam
// por SetCampo, que normaliza a entrada conforme o campo; os erros só se
// tornam visíveis depois que o campo foi tocado ou a etapa foi submetida.
type Store struct {
	mu sync.Mutex

	dados            Dados
	erros            map[string]string
	tocados          map[string]bool
	etapasSubmetidas map[int]bool

	buscadorCEP BuscadorCEP
}

// NovoStore cria um store vazio. O buscador de CEP pode ser nil; o
// auto-preenchimento fica então desativado.
func NovoStore(buscador BuscadorCEP) *Store {
	return &Store{
		erros:            make(map[string]string),
		tocados:          make(map[string]bool),
		etapasSubmetidas: make(map[int]bool),
		buscadorCEP:      buscador,
	}
}

// Dados retorna uma cópia do rascunho atual.
func (s *Store) Dados() Dados {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copiaDados()
}

func (s *Store) copiaDados() Dados {
	d := s.dados
	if len(s.dados.Documentos) > 0 {
		d.Documentos = append([]models.Documento{}, s.dados.Documentos...)
	}
	return d
}

// Erros retorna uma cópia do mapa de erros correntes (visíveis ou não).
func (s *Store) Erros() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.erros))
	for k, v := range s.erros {
		out[k] = v
	}
	return out
}

// SetCampo grava um valor no rascunho aplicando a normalização do campo:
// CPF/CEP/telefone são formatados como máscara, campos monetários são
// interpretados como centavos digitados e parcelas aceita apenas dígitos.
// Erros de obrigatoriedade do campo são limpos a cada digitação.
func (s *Store) SetCampo(campo, valor string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch campo {
	case CampoCPF:
		s.dados.CPF = utils.FormatCPF(valor)
		digitos := utils.OnlyDigits(valor)
		if len(digitos) == 11 && !utils.ValidarCPF(digitos) {
			s.erros[CampoCPF] = MsgCPFInvalido
		} else if s.erros[CampoCPF] == MsgCPFInvalido {
			delete(s.erros, CampoCPF)
		}
	case CampoCEP:
		s.dados.CEP = utils.FormatCEP(valor)
	case CampoTelefone:
		s.dados.Telefone = utils.FormatTelefone(valor)
	case CampoRendaMensal:
		s.dados.RendaMensal = utils.ParseEntradaCentavos(valor)
	case CampoValorCredito:
		s.dados.ValorCredito = utils.ParseEntradaCentavos(valor)
	case CampoValorEntrada:
		s.dados.ValorEntrada = utils.ParseEntradaCentavos(valor)
	case CampoValorParcela:
		s.dados.ValorParcela = utils.ParseEntradaCentavos(valor)
	case CampoParcelas:
		digitos := utils.OnlyDigits(valor)
		if digitos == "" {
			s.dados.Parcelas = nil
		} else if n, err := strconv.Atoi(digitos); err == nil {
			s.dados.Parcelas = &n
		}
	case CampoEmail:
		s.dados.Email = valor
		if s.erros[CampoEmail] == MsgEmailInvalido {
			delete(s.erros, CampoEmail)
		}
	default:
		s.setTexto(campo, valor)
	}

	// Digitar em um campo apaga seu erro de obrigatoriedade.
	if msg, ok := s.erros[campo]; ok && strings.Contains(msg, "obrigatóri") {
		delete(s.erros, campo)
	}
}

func (s *Store) setTexto(campo, valor string) {
	switch campo {
	case CampoModalidade:
		s.dados.Modalidade = valor
	case CampoNomeCompleto:
		s.dados.NomeCompleto = valor
	case CampoRG:
		s.dados.RG = valor
	case CampoOrgaoExpedidor:
		s.dados.OrgaoExpedidor = valor
	case CampoDataNascimento:
		s.dados.DataNascimento = valor
	case CampoEstadoCivil:
		s.dados.EstadoCivil = valor
	case CampoNomeConjuge:
		s.dados.NomeConjuge = valor
	case CampoSexo:
		s.dados.Sexo = valor
	case CampoNomeMae:
		s.dados.NomeMae = valor
	case CampoNomePai:
		s.dados.NomePai = valor
	case CampoContatoAdicional:
		s.dados.ContatoAdicional = valor
	case CampoEndereco:
		s.dados.Endereco = valor
	case CampoNumeroResidencia:
		s.dados.NumeroResidencia = valor
	case CampoComplemento:
		s.dados.Complemento = valor
	case CampoBairro:
		s.dados.Bairro = valor
	case CampoCidade:
		s.dados.Cidade = valor
	case CampoEstadoUF:
		s.dados.EstadoUF = strings.ToUpper(valor)
	case CampoObservacaoResidencial:
		s.dados.ObservacaoResidencial = valor
	case CampoProfissao:
		s.dados.Profissao = valor
	case CampoTipoRenda:
		s.dados.TipoRenda = valor
	case CampoSegmento:
		s.dados.Segmento = valor
	case CampoObservacaoFinal:
		s.dados.ObservacaoFinal = valor
	case CampoVendedor:
		s.dados.Vendedor = valor
	case CampoEquipe:
		s.dados.Equipe = valor
	default:
		appLogger.Warnf("Campo de formulário desconhecido ignorado: %s", campo)
	}
}

// MarcarTocado marca o campo como tocado, tornando visível qualquer erro dele.
func (s *Store) MarcarTocado(campo string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tocados[campo] = true
}

// Blur marca o campo como tocado e dispara as reações de saída de foco. Para
// o campo de CEP com 8 dígitos, consulta o buscador e preenche endereço,
// bairro, cidade e UF quando encontrado.
func (s *Store) Blur(ctx context.Context, campo string) {
	s.MarcarTocado(campo)

	switch campo {
	case CampoCPF:
		s.mu.Lock()
		digitos := utils.OnlyDigits(s.dados.CPF)
		if digitos != "" && !utils.ValidarCPF(digitos) {
			s.erros[CampoCPF] = MsgCPFInvalido
		}
		s.mu.Unlock()
	case CampoEmail:
		s.mu.Lock()
		if s.dados.Email != "" && !utils.ValidarEmail(s.dados.Email) {
			s.erros[CampoEmail] = MsgEmailInvalido
		}
		s.mu.Unlock()
	case CampoCEP:
		s.autoPreencherCEP(ctx)
	}
}

func (s *Store) autoPreencherCEP(ctx context.Context) {
	s.mu.Lock()
	digitos := utils.OnlyDigits(s.dados.CEP)
	buscador := s.buscadorCEP
	s.mu.Unlock()

	if digitos == "" {
		return
	}
	if len(digitos) != 8 {
		s.mu.Lock()
		s.erros[CampoCEP] = MsgCEPIncompleto
		s.mu.Unlock()
		return
	}
	if buscador == nil {
		return
	}

	endereco, err := buscador.BuscarCEP(ctx, digitos)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		appLogger.Warnf("Falha na busca de CEP %s: %v", digitos, err)
		s.erros[CampoCEP] = MsgCEPErroBusca
		return
	}
	if endereco == nil {
		s.erros[CampoCEP] = MsgCEPNaoEncontrado
		return
	}

	if endereco.Endereco != "" {
		s.dados.Endereco = endereco.Endereco
	}
	if endereco.Bairro != "" {
		s.dados.Bairro = endereco.Bairro
	}
	if endereco.Cidade != "" {
		s.dados.Cidade = endereco.Cidade
	}
	if endereco.EstadoUF != "" {
		s.dados.EstadoUF = endereco.EstadoUF
	}
	for _, c := range []string{CampoCEP, CampoEndereco, CampoBairro, CampoCidade, CampoEstadoUF} {
		delete(s.erros, c)
	}
}

// Carregar substitui o rascunho pelos dados de um cadastro persistido e
// zera o estado de interação (modo edição).
func (s *Store) Carregar(c *models.DBCadastro) error {
	if c == nil {
		return appErrors.WrapErrorf(appErrors.ErrInvalidInput, "cadastro nulo ao carregar formulário")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dados = DadosDeCadastro(c)
	s.limparInteracao()
	return nil
}

// Reset volta o formulário ao estado inicial preservando vendedor e equipe,
// que identificam o atendente da sessão.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	vendedor, equipe := s.dados.Vendedor, s.dados.Equipe
	s.dados = Dados{Vendedor: vendedor, Equipe: equipe}
	s.limparInteracao()
}

func (s *Store) limparInteracao() {
	s.erros = make(map[string]string)
	s.tocados = make(map[string]bool)
	s.etapasSubmetidas = make(map[int]bool)
}

// AnexarArquivo adiciona um documento em staging ao rascunho e devolve a
// entrada criada. O nome original é preservado para exibição; a sanitização
// acontece apenas no momento do upload.
func (s *Store) AnexarArquivo(nome, tipo string, tamanho int64, caminhoLocal string) models.Documento {
	doc := models.Documento{
		ID:           uuid.NewString(),
		Nome:         nome,
		Tipo:         tipo,
		Tamanho:      tamanho,
		CaminhoLocal: caminhoLocal,
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dados.Documentos = append(s.dados.Documentos, doc)
	return doc
}

// RemoverArquivo tira um documento da lista pelo seu identificador de staging.
func (s *Store) RemoverArquivo(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, doc := range s.dados.Documentos {
		if doc.ID == id {
			s.dados.Documentos = append(s.dados.Documentos[:i], s.dados.Documentos[i+1:]...)
			return true
		}
	}
	return false
}

// ErroVisivel devolve a mensagem de erro do campo apenas quando ela deve ser
// exibida: o campo foi tocado ou a etapa que o contém já foi submetida.
func (s *Store) ErroVisivel(campo string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg, ok := s.erros[campo]
	if !ok {
		return "", false
	}
	if s.tocados[campo] {
		return msg, true
	}
	if etapa, ok := etapaDoCampo(campo); ok && s.etapasSubmetidas[etapa] {
		return msg, true
	}
	return "", false
}

// ValidarEtapa roda o validador da etapa sobre o rascunho, substitui os erros
// dos campos daquela etapa e registra a tentativa de submissão.
func (s *Store) ValidarEtapa(etapa int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	ok, erros := ValidarEtapa(etapa, &s.dados)

	// Limpa os erros anteriores da etapa antes de aplicar os novos.
	for _, campo := range camposDaEtapa(etapa) {
		delete(s.erros, campo)
	}
	for campo, msg := range erros {
		s.erros[campo] = msg
	}
	s.etapasSubmetidas[etapa] = true
	return ok
}

// EtapaSubmetida informa se já houve tentativa de submissão da etapa.
func (s *Store) EtapaSubmetida(etapa int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.etapasSubmetidas[etapa]
}

// camposDaEtapa devolve todos os campos validados pela etapa, incluindo os de
// regra própria não listados em etapaCampos.
func camposDaEtapa(etapa int) []string {
	campos := append([]string{}, etapaCampos[etapa]...)
	switch etapa {
	case 1:
		campos = append(campos, CampoCPF, CampoDataNascimento)
	case 2:
		campos = append(campos, CampoEmail)
	case 4:
		campos = append(campos, CampoRendaMensal, CampoValorCredito, CampoValorEntrada, CampoParcelas, CampoValorParcela)
	}
	return campos
}

// etapaDoCampo localiza a etapa que valida o campo.
func etapaDoCampo(campo string) (int, bool) {
	for etapa := 1; etapa <= TotalEtapas; etapa++ {
		for _, c := range camposDaEtapa(etapa) {
			if c == campo {
				return etapa, true
			}
		}
	}
	return 0, false
}

package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/multinegociacoes/APP_CADASTRO_GO/internal/core"
	appLogger "github.com/multinegociacoes/APP_CADASTRO_GO/internal/core/logger"
	"github.com/multinegociacoes/APP_CADASTRO_GO/internal/data/models"
)

// CaptionPadraoPDF é a legenda usada quando nenhuma é informada.
const CaptionPadraoPDF = "Segue o PDF do cadastro."

// TelegramService envia notificações de cadastro para os dois bots
// configurados: o bot 1 recebe a mensagem completa e o PDF, o bot 2 recebe
// apenas o PDF com a legenda resumida.
type TelegramService struct {
	baseURL string
	bots    [2]core.TelegramBotConfig
	client  *http.Client
}

// NewTelegramService cria o serviço apontando para a API oficial. A URL base
// é parametrizável para os testes.
func NewTelegramService(baseURL string, bot1, bot2 core.TelegramBotConfig, timeout time.Duration) *TelegramService {
	if baseURL == "" {
		baseURL = "https://api.telegram.org"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &TelegramService{
		baseURL: strings.TrimRight(baseURL, "/"),
		bots:    [2]core.TelegramBotConfig{bot1, bot2},
		client:  &http.Client{Timeout: timeout},
	}
}

// botConfig devolve a configuração do bot (1 ou 2), ou false se incompleta.
func (s *TelegramService) botConfig(numero int) (core.TelegramBotConfig, bool) {
	if numero < 1 || numero > len(s.bots) {
		return core.TelegramBotConfig{}, false
	}
	cfg := s.bots[numero-1]
	if cfg.Token == "" || cfg.ChatID == "" {
		return core.TelegramBotConfig{}, false
	}
	return cfg, true
}

// Enviar manda a mensagem (quando não vazia) e o PDF (quando não nulo) para o
// bot indicado. Bot não configurado não é erro: apenas loga e retorna false.
func (s *TelegramService) Enviar(ctx context.Context, numero int, mensagem string, pdf []byte, caption string) (bool, error) {
	cfg, ok := s.botConfig(numero)
	if !ok {
		appLogger.Warnf("Bot %d do Telegram não configurado, envio ignorado", numero)
		return false, nil
	}

	if mensagem != "" {
		if err := s.sendMessage(ctx, cfg, mensagem); err != nil {
			return false, core.WrapErrorf(core.ErrNotification, "falha ao enviar mensagem ao bot %d: %v", numero, err)
		}
	}
	if pdf != nil {
		if caption == "" {
			caption = CaptionPadraoPDF
		}
		if err := s.sendDocument(ctx, cfg, pdf, caption); err != nil {
			return false, core.WrapErrorf(core.ErrNotification, "falha ao enviar PDF ao bot %d: %v", numero, err)
		}
	}
	return true, nil
}

// respostaTelegram é o envelope mínimo das respostas da API.
type respostaTelegram struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

func (s *TelegramService) sendMessage(ctx context.Context, cfg core.TelegramBotConfig, texto string) error {
	payload, err := json.Marshal(map[string]string{
		"chat_id":    cfg.ChatID,
		"text":       texto,
		"parse_mode": "HTML",
	})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", s.baseURL, cfg.Token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return s.executar(req)
}

func (s *TelegramService) sendDocument(ctx context.Context, cfg core.TelegramBotConfig, pdf []byte, caption string) error {
	corpo := &bytes.Buffer{}
	escritor := multipart.NewWriter(corpo)

	if err := escritor.WriteField("chat_id", cfg.ChatID); err != nil {
		return err
	}
	if err := escritor.WriteField("caption", caption); err != nil {
		return err
	}
	if err := escritor.WriteField("parse_mode", "HTML"); err != nil {
		return err
	}
	parte, err := escritor.CreateFormFile("document", fmt.Sprintf("cadastro_%d.pdf", time.Now().UnixMilli()))
	if err != nil {
		return err
	}
	if _, err := parte.Write(pdf); err != nil {
		return err
	}
	if err := escritor.Close(); err != nil {
		return err
	}

	url := fmt.Sprintf("%s/bot%s/sendDocument", s.baseURL, cfg.Token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, corpo)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", escritor.FormDataContentType())
	return s.executar(req)
}

func (s *TelegramService) executar(req *http.Request) error {
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	corpo, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var resultado respostaTelegram
	_ = json.Unmarshal(corpo, &resultado)

	if resp.StatusCode != http.StatusOK || !resultado.OK {
		return fmt.Errorf("resposta %d da API do Telegram: %s", resp.StatusCode, resultado.Description)
	}
	return nil
}

func ouNA(valor string) string {
	if strings.TrimSpace(valor) == "" {
		return "N/A"
	}
	return valor
}

func moedaOuZero(valor string) string {
	if strings.TrimSpace(valor) == "" {
		return "R$ 0,00"
	}
	return valor
}

func statusExibicao(status string) string {
	if status == "" {
		status = models.StatusPendente
	}
	return strings.ToUpper(strings.ReplaceAll(status, "_", " "))
}

// FormatarMensagemCompleta monta a mensagem HTML detalhada enviada ao bot 1,
// com todas as seções do cadastro e 'N/A' para campos vazios.
func FormatarMensagemCompleta(c *models.DBCadastro) string {
	linhas := []string{
		"🆕 <b>NOVO CADASTRO</b> 🆕",
		"------------------------------------",
		fmt.Sprintf("🔑 <b>Código:</b> %s", ouNA(c.CodigoCadastro)),
		fmt.Sprintf("📅 <b>Data Cadastro:</b> %s", ouNA(dataExibicao(c))),
		"------------------------------------",
		"👤 <b>DADOS PESSOAIS</b>",
		fmt.Sprintf("   <b>Nome:</b> %s", ouNA(c.NomeCompleto)),
		fmt.Sprintf("   <b>CPF:</b> %s", ouNA(c.CPF)),
		fmt.Sprintf("   <b>RG:</b> %s", ouNA(c.RG)),
		fmt.Sprintf("   <b>Órgão Exp:</b> %s", ouNA(c.OrgaoExpedidor)),
		fmt.Sprintf("   <b>Nascimento:</b> %s", ouNA(nascimentoExibicao(c))),
		fmt.Sprintf("   <b>Estado Civil:</b> %s", ouNA(c.EstadoCivil)),
		fmt.Sprintf("   <b>Cônjuge:</b> %s", ouNA(c.NomeConjuge)),
		fmt.Sprintf("   <b>Sexo:</b> %s", ouNA(c.Sexo)),
		fmt.Sprintf("   <b>Mãe:</b> %s", ouNA(c.NomeMae)),
		fmt.Sprintf("   <b>Pai:</b> %s", ouNA(c.NomePai)),
		"------------------------------------",
		"📞 <b>CONTATO</b>",
		fmt.Sprintf("   <b>Telefone:</b> %s", ouNA(c.Telefone)),
		fmt.Sprintf("   <b>Email:</b> %s", ouNA(c.Email)),
		fmt.Sprintf("   <b>Contato Adicional:</b> %s", ouNA(c.ContatoAdicional)),
		"------------------------------------",
		"🏠 <b>ENDEREÇO</b>",
		fmt.Sprintf("   <b>CEP:</b> %s", ouNA(c.CEP)),
		fmt.Sprintf("   <b>Endereço:</b> %s, Nº %s", ouNA(c.Endereco), ouNA(c.NumeroResidencia)),
		fmt.Sprintf("   <b>Complemento:</b> %s", ouNA(c.Complemento)),
		fmt.Sprintf("   <b>Bairro:</b> %s", ouNA(c.Bairro)),
		fmt.Sprintf("   <b>Cidade:</b> %s - %s", ouNA(c.Cidade), ouNA(c.EstadoUF)),
		fmt.Sprintf("   <b>Obs. Residencial:</b> %s", ouNA(c.ObservacaoResidencial)),
		"------------------------------------",
		"💰 <b>RENDA E PROFISSÃO</b>",
		fmt.Sprintf("   <b>Profissão:</b> %s", ouNA(c.Profissao)),
		fmt.Sprintf("   <b>Renda Mensal:</b> %s", moedaOuZero(c.RendaMensalFmt())),
		fmt.Sprintf("   <b>Tipo de Renda:</b> %s", ouNA(c.TipoRenda)),
		"------------------------------------",
		"💳 <b>PROPOSTA DE CRÉDITO</b>",
		fmt.Sprintf("   <b>Modalidade:</b> %s", ouNA(c.Modalidade)),
		fmt.Sprintf("   <b>Valor Crédito:</b> %s", moedaOuZero(c.ValorCreditoFmt())),
		fmt.Sprintf("   <b>Valor Entrada:</b> %s", moedaOuZero(c.ValorEntradaFmt())),
		fmt.Sprintf("   <b>Parcelas:</b> %s", ouNA(parcelasExibicao(c))),
		fmt.Sprintf("   <b>Valor Parcela:</b> %s", moedaOuZero(c.ValorParcelaFmt())),
		fmt.Sprintf("   <b>Segmento:</b> %s", ouNA(c.Segmento)),
		fmt.Sprintf("   <b>Obs. Final:</b> %s", ouNA(c.ObservacaoFinal)),
		"------------------------------------",
		"👨‍💼 <b>ATENDIMENTO</b>",
		fmt.Sprintf("   <b>Vendedor:</b> %s", ouNA(c.Vendedor)),
		fmt.Sprintf("   <b>Equipe:</b> %s", ouNA(c.Equipe)),
		fmt.Sprintf("   <b>Status:</b> %s", statusExibicao(c.StatusCliente)),
	}
	return strings.Join(linhas, "\n")
}

// FormatarMensagemResumida monta a legenda abreviada usada pelo bot 2.
func FormatarMensagemResumida(c *models.DBCadastro) string {
	linhas := []string{
		"Novo Cadastro Recebido:",
		fmt.Sprintf("Vendedor: %s", ouNA(c.Vendedor)),
		fmt.Sprintf("Equipe: %s", ouNA(c.Equipe)),
		fmt.Sprintf("Nome: %s", ouNA(c.NomeCompleto)),
		fmt.Sprintf("CPF: %s", ouNA(c.CPF)),
		fmt.Sprintf("Email: %s", ouNA(c.Email)),
		fmt.Sprintf("Telefone: %s", ouNA(c.Telefone)),
		fmt.Sprintf("Valor do crédito: %s", moedaOuZero(c.ValorCreditoFmt())),
		fmt.Sprintf("Valor de entrada: %s", moedaOuZero(c.ValorEntradaFmt())),
		fmt.Sprintf("Parcelas: %s", ouNA(parcelasExibicao(c))),
		"",
		fmt.Sprintf("Status: %s", statusExibicao(c.StatusCliente)),
	}
	return strings.Join(linhas, "\n")
}

func dataExibicao(c *models.DBCadastro) string {
	if c.DataCadastro.IsZero() {
		return ""
	}
	return c.DataCadastro.Format("02/01/2006")
}

func nascimentoExibicao(c *models.DBCadastro) string {
	if c.DataNascimento == nil {
		return ""
	}
	return c.DataNascimento.Format("02/01/2006")
}

func parcelasExibicao(c *models.DBCadastro) string {
	if c.Parcelas == nil {
		return ""
	}
	return fmt.Sprintf("%d", *c.Parcelas)
}

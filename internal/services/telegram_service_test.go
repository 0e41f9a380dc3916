package services

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/multinegociacoes/APP_CADASTRO_GO/internal/core"
	"github.com/multinegociacoes/APP_CADASTRO_GO/internal/data/models"
)

func cadastroExemplo() *models.DBCadastro {
	parcelas := 60
	return &models.DBCadastro{
		CodigoCadastro: "123456ABCD",
		DataCadastro:   time.Date(2024, 5, 10, 9, 30, 0, 0, time.UTC),
		NomeCompleto:   "João da Silva",
		CPF:            "529.982.247-25",
		Telefone:       "(51) 99999-8888",
		Email:          "joao@exemplo.com",
		Vendedor:       "Carlos",
		Equipe:         "Equipe Sul",
		StatusCliente:  models.StatusPendente,
		Parcelas:       &parcelas,
		ValorCredito:   decimal.NullDecimal{Decimal: decimal.RequireFromString("80000"), Valid: true},
	}
}

func TestEnviarMensagemEDocumento(t *testing.T) {
	var caminhos []string
	var corpoMensagem string
	servidor := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caminhos = append(caminhos, r.URL.Path)
		if strings.HasSuffix(r.URL.Path, "/sendMessage") {
			b, _ := io.ReadAll(r.Body)
			corpoMensagem = string(b)
			assert.Contains(t, r.Header.Get("Content-Type"), "application/json")
		}
		if strings.HasSuffix(r.URL.Path, "/sendDocument") {
			require.NoError(t, r.ParseMultipartForm(1<<20))
			assert.Equal(t, "chat-1", r.FormValue("chat_id"))
			assert.Equal(t, CaptionPadraoPDF, r.FormValue("caption"))
			_, header, err := r.FormFile("document")
			require.NoError(t, err)
			assert.True(t, strings.HasSuffix(header.Filename, ".pdf"))
		}
		w.Write([]byte(`{"ok": true}`))
	}))
	defer servidor.Close()

	svc := NewTelegramService(servidor.URL,
		core.TelegramBotConfig{Token: "token-1", ChatID: "chat-1"},
		core.TelegramBotConfig{Token: "token-2", ChatID: "chat-2"},
		2*time.Second)

	enviado, err := svc.Enviar(context.Background(), 1, "<b>teste</b>", []byte("%PDF-fake"), "")
	require.NoError(t, err)
	assert.True(t, enviado)

	require.Equal(t, []string{"/bottoken-1/sendMessage", "/bottoken-1/sendDocument"}, caminhos)
	assert.Contains(t, corpoMensagem, `"parse_mode":"HTML"`)
	assert.Contains(t, corpoMensagem, "chat-1")
}

func TestEnviarBotNaoConfiguradoNaoErra(t *testing.T) {
	svc := NewTelegramService("http://invalido.invalid",
		core.TelegramBotConfig{}, core.TelegramBotConfig{}, time.Second)
	enviado, err := svc.Enviar(context.Background(), 1, "msg", nil, "")
	require.NoError(t, err)
	assert.False(t, enviado)
}

func TestEnviarRespostaNaoOK(t *testing.T) {
	servidor := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"ok": false, "description": "chat not found"}`))
	}))
	defer servidor.Close()

	svc := NewTelegramService(servidor.URL,
		core.TelegramBotConfig{Token: "t", ChatID: "c"},
		core.TelegramBotConfig{}, time.Second)
	_, err := svc.Enviar(context.Background(), 1, "msg", nil, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat not found")
}

func TestFormatarMensagemCompleta(t *testing.T) {
	msg := FormatarMensagemCompleta(cadastroExemplo())

	assert.Contains(t, msg, "🆕 <b>NOVO CADASTRO</b> 🆕")
	assert.Contains(t, msg, "<b>Código:</b> 123456ABCD")
	assert.Contains(t, msg, "<b>Nome:</b> João da Silva")
	assert.Contains(t, msg, "<b>Valor Crédito:</b> R$ 80.000,00")
	// Campo vazio sai como N/A; monetário vazio como zero formatado.
	assert.Contains(t, msg, "<b>RG:</b> N/A")
	assert.Contains(t, msg, "<b>Renda Mensal:</b> R$ 0,00")
	assert.Contains(t, msg, "<b>Status:</b> PENDENTE")
}

func TestFormatarMensagemCompletaStatusComUnderscore(t *testing.T) {
	c := cadastroExemplo()
	c.StatusCliente = models.StatusEmAnalise
	assert.Contains(t, FormatarMensagemCompleta(c), "<b>Status:</b> EM ANALISE")
}

func TestFormatarMensagemResumida(t *testing.T) {
	msg := FormatarMensagemResumida(cadastroExemplo())

	assert.True(t, strings.HasPrefix(msg, "Novo Cadastro Recebido:"))
	assert.Contains(t, msg, "Vendedor: Carlos")
	assert.Contains(t, msg, "Valor do crédito: R$ 80.000,00")
	assert.Contains(t, msg, "Valor de entrada: R$ 0,00")
	assert.Contains(t, msg, "Parcelas: 60")
	assert.Contains(t, msg, "Status: PENDENTE")
	// A versão resumida não carrega as seções completas.
	assert.NotContains(t, msg, "ENDEREÇO")
}

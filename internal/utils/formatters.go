package utils

import (
	"crypto/rand"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	appLogger "github.com/multinegociacoes/APP_CADASTRO_GO/internal/core/logger"
)

// OnlyDigits remove todos os caracteres não numéricos de uma string.
func OnlyDigits(valor string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, valor)
}

// FormatCPF formata um CPF como 000.000.000-00.
// Entradas parciais são devolvidas apenas com os dígitos (sem separadores),
// o que torna a função idempotente para qualquer entrada.
func FormatCPF(valor string) string {
	digits := OnlyDigits(valor)
	if len(digits) < 11 {
		return digits
	}
	return digits[0:3] + "." + digits[3:6] + "." + digits[6:9] + "-" + digits[9:11] + digits[11:]
}

// FormatCEP formata um CEP como 00000-000. Entradas parciais passam sem separador.
func FormatCEP(valor string) string {
	digits := OnlyDigits(valor)
	if len(digits) < 8 {
		return digits
	}
	return digits[0:5] + "-" + digits[5:8] + digits[8:]
}

// FormatTelefone formata um telefone com DDD de 2 dígitos e número de 8 ou 9
// dígitos: (00) 0000-0000 ou (00) 00000-0000.
func FormatTelefone(valor string) string {
	digits := OnlyDigits(valor)
	switch {
	case len(digits) == 10:
		return "(" + digits[0:2] + ") " + digits[2:6] + "-" + digits[6:10]
	case len(digits) >= 11:
		return "(" + digits[0:2] + ") " + digits[2:7] + "-" + digits[7:11] + digits[11:]
	default:
		return digits
	}
}

// FormatMoeda formata um valor monetário em reais (pt-BR), tolerando strings
// já formatadas, separadores de milhar perdidos e múltiplos marcadores
// decimais. Entrada não interpretável resulta no valor zero formatado.
func FormatMoeda(valor string) string {
	trimmed := strings.TrimSpace(valor)
	if trimmed == "" {
		return formatBRL(decimal.Zero)
	}

	// Mantém apenas dígitos, vírgula, ponto e sinal.
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == ',' || r == '.' || r == '-' {
			return r
		}
		return -1
	}, trimmed)

	// Vírgulas: a última vira o marcador decimal; as demais são milhar.
	if strings.Contains(cleaned, ",") {
		parts := strings.Split(cleaned, ",")
		if len(parts) > 2 {
			cleaned = strings.Join(parts[:len(parts)-1], "") + "." + parts[len(parts)-1]
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", ".")
		}
	}

	// Pontos: apenas o último sobrevive como decimal.
	if idx := strings.LastIndex(cleaned, "."); idx >= 0 {
		cleaned = strings.ReplaceAll(cleaned[:idx], ".", "") + cleaned[idx:]
	}
	cleaned = strings.TrimSuffix(cleaned, ".")
	if strings.HasPrefix(cleaned, ".") {
		cleaned = "0" + cleaned
	}

	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return formatBRL(decimal.Zero)
	}
	return formatBRL(amount)
}

// FormatDecimalMoeda formata um decimal diretamente em reais (pt-BR).
func FormatDecimalMoeda(valor decimal.Decimal) string {
	return formatBRL(valor)
}

// formatBRL produz "R$ 1.234,56" com agrupamento de milhar pt-BR.
func formatBRL(valor decimal.Decimal) string {
	s := valor.StringFixed(2)
	negativo := strings.HasPrefix(s, "-")
	if negativo {
		s = s[1:]
	}
	intPart, fracPart, _ := strings.Cut(s, ".")

	var sb strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			sb.WriteByte('.')
		}
		sb.WriteRune(r)
	}

	out := "R$ " + sb.String() + "," + fracPart
	if negativo {
		out = "-" + out
	}
	return out
}

// Layouts aceitos ao interpretar datas vindas do formulário ou do banco.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006 15:04:05",
	"02/01/2006",
}

// ParseData interpreta uma data em qualquer um dos layouts conhecidos.
func ParseData(valor string) (time.Time, bool) {
	valor = strings.TrimSpace(valor)
	if valor == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, valor); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatData formata uma data como DD/MM/YYYY.
// Entrada vazia retorna ""; entrada não interpretável retorna "Data inválida".
func FormatData(valor string) string {
	if strings.TrimSpace(valor) == "" {
		return ""
	}
	t, ok := ParseData(valor)
	if !ok {
		return "Data inválida"
	}
	return t.Format("02/01/2006")
}

// FormatDataISO re-encoda uma data para o formato fixo YYYY-MM-DD.
func FormatDataISO(valor string) string {
	if strings.TrimSpace(valor) == "" {
		return ""
	}
	t, ok := ParseData(valor)
	if !ok {
		return "Data inválida"
	}
	return t.Format("2006-01-02")
}

// FormatDataHora formata data e hora como DD/MM/YYYY HH:MM:SS.
func FormatDataHora(t time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	return t.Format("02/01/2006 15:04:05")
}

// SanitizeFilename normaliza um nome de arquivo para armazenamento:
// remove acentos, substitui caracteres fora de [A-Za-z0-9_.-] por '_'
// e converte para minúsculas. O nome original deve ser preservado à parte
// para exibição.
func SanitizeFilename(nome string) string {
	// Decompõe (NFD) e descarta os diacríticos.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	semAcentos, _, err := transform.String(t, nome)
	if err != nil {
		semAcentos = nome
	}

	substituido := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '_':
			return r
		default:
			return '_'
		}
	}, semAcentos)

	return strings.ToLower(substituido)
}

const codigoTokenCharset = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// GerarCodigo gera o código humano de um cadastro: os 6 últimos dígitos do
// timestamp em milissegundos + 4 caracteres aleatórios alfanuméricos.
// A probabilidade de colisão é aceita como desprezível.
func GerarCodigo() string {
	millis := strconv.FormatInt(time.Now().UnixMilli(), 10)
	if len(millis) > 6 {
		millis = millis[len(millis)-6:]
	}

	token := make([]byte, 4)
	if _, err := rand.Read(token); err != nil {
		// crypto/rand falhar é altamente improvável; degrada para o relógio.
		appLogger.Errorf("Falha ao gerar bytes aleatórios para código: %v", err)
		nano := strconv.FormatInt(time.Now().UnixNano(), 36)
		return millis + strings.ToUpper(nano[len(nano)-4:])
	}
	for i, b := range token {
		token[i] = codigoTokenCharset[int(b)%len(codigoTokenCharset)]
	}
	return millis + string(token)
}

// ParseEntradaCentavos interpreta a digitação de um campo monetário: todos os
// dígitos são aproveitados e o valor final é dividido por 100 (entrada em
// centavos, sem marcador decimal). Entrada sem dígitos retorna nil.
func ParseEntradaCentavos(valor string) *decimal.Decimal {
	digits := OnlyDigits(valor)
	if digits == "" {
		return nil
	}
	d, err := decimal.NewFromString(digits)
	if err != nil {
		return nil
	}
	v := d.Shift(-2)
	return &v
}

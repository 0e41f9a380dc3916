package utils

import (
	"regexp"
	"strings"
)

// --- Validador de CPF ---

// ValidarCPF verifica os dígitos verificadores de um CPF (aceita formatado ou não).
// Sequências de 11 dígitos idênticos são sempre rejeitadas.
func ValidarCPF(cpf string) bool {
	digits := OnlyDigits(cpf)
	if len(digits) != 11 {
		return false
	}
	if allDigitsEqual(digits) {
		return false
	}

	// Primeiro dígito verificador: soma ponderada dos 9 primeiros dígitos.
	sum := 0
	for i := 0; i < 9; i++ {
		sum += int(digits[i]-'0') * (10 - i)
	}
	remainder := 11 - (sum % 11)
	if remainder == 10 || remainder == 11 {
		remainder = 0
	}
	if remainder != int(digits[9]-'0') {
		return false
	}

	// Segundo dígito verificador: soma ponderada dos 10 primeiros dígitos.
	sum = 0
	for i := 0; i < 10; i++ {
		sum += int(digits[i]-'0') * (11 - i)
	}
	remainder = 11 - (sum % 11)
	if remainder == 10 || remainder == 11 {
		remainder = 0
	}
	return remainder == int(digits[10]-'0')
}

// allDigitsEqual verifica se todos os caracteres em uma string são iguais.
func allDigitsEqual(s string) bool {
	if len(s) < 2 {
		return true
	}
	first := s[0]
	for i := 1; i < len(s); i++ {
		if s[i] != first {
			return false
		}
	}
	return true
}

// --- Validador de E-mail ---

// Regex permissiva de formato (local@dominio.tld); validação de entregabilidade
// não é responsabilidade do formulário.
var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidarEmail verifica o formato de um e-mail.
func ValidarEmail(email string) bool {
	return emailRegex.MatchString(strings.TrimSpace(email))
}

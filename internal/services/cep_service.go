package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	appErrors "github.com/multinegociacoes/APP_CADASTRO_GO/internal/core"
	appLogger "github.com/multinegociacoes/APP_CADASTRO_GO/internal/core/logger"
	"github.com/multinegociacoes/APP_CADASTRO_GO/internal/form"
	"github.com/multinegociacoes/APP_CADASTRO_GO/internal/utils"
)

// CEPService consulta endereços por CEP em dois provedores: o primário
// (formato ViaCEP) e, quando ele falha ou não devolve logradouro, o de
// fallback (formato BrasilAPI). Implementa form.BuscadorCEP.
type CEPService struct {
	primaryBaseURL  string
	fallbackBaseURL string
	client          *http.Client
}

// NewCEPService cria o serviço com as URLs base configuradas. As URLs são
// parametrizáveis para apontar os testes a servidores locais.
func NewCEPService(primaryBaseURL, fallbackBaseURL string, timeout time.Duration) *CEPService {
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &CEPService{
		primaryBaseURL:  strings.TrimRight(primaryBaseURL, "/"),
		fallbackBaseURL: strings.TrimRight(fallbackBaseURL, "/"),
		client:          &http.Client{Timeout: timeout},
	}
}

// respostaViaCEP é o payload do provedor primário. O campo Erro marca CEP
// inexistente com status 200.
type respostaViaCEP struct {
	Logradouro string `json:"logradouro"`
	Bairro     string `json:"bairro"`
	Localidade string `json:"localidade"`
	UF         string `json:"uf"`
	Erro       bool   `json:"erro"`
}

// respostaBrasilAPI é o payload do provedor de fallback.
type respostaBrasilAPI struct {
	Street       string `json:"street"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `json:"state"`
}

// BuscarCEP consulta o CEP informado (8 dígitos, com ou sem máscara).
// Retorna (nil, nil) quando os provedores respondem que o CEP não existe e
// erro apenas quando nenhum provedor pôde ser consultado.
func (s *CEPService) BuscarCEP(ctx context.Context, cep string) (*form.EnderecoCEP, error) {
	digitos := utils.OnlyDigits(cep)
	if len(digitos) != 8 {
		return nil, appErrors.WrapErrorf(appErrors.ErrInvalidInput, "CEP deve ter 8 dígitos, recebido '%s'", cep)
	}

	endereco, err := s.buscarPrimario(ctx, digitos)
	if err == nil && endereco != nil {
		return endereco, nil
	}
	if err != nil {
		appLogger.Warnf("Provedor primário de CEP falhou para %s, tentando fallback: %v", digitos, err)
	} else {
		appLogger.Debugf("Provedor primário não retornou endereço para %s, tentando fallback", digitos)
	}

	endereco, fbErr := s.buscarFallback(ctx, digitos)
	if fbErr == nil {
		return endereco, nil
	}
	if err == nil {
		// O primário respondeu que o CEP não existe; a indisponibilidade do
		// fallback não muda essa resposta.
		appLogger.Warnf("Fallback de CEP indisponível para %s: %v", digitos, fbErr)
		return nil, nil
	}
	appLogger.Errorf("Provedor de fallback de CEP também falhou para %s: %v", digitos, fbErr)
	return nil, appErrors.WrapErrorf(appErrors.ErrCEPLookup, "falha ao consultar CEP %s: %v / %v", digitos, err, fbErr)
}

func (s *CEPService) buscarPrimario(ctx context.Context, cep string) (*form.EnderecoCEP, error) {
	url := fmt.Sprintf("%s/%s/json/", s.primaryBaseURL, cep)
	var resposta respostaViaCEP
	if err := s.consultar(ctx, url, &resposta); err != nil {
		return nil, err
	}
	// Resposta de inexistência ou sem logradouro conta como ausência de
	// resultado, para o chamador consultar o fallback.
	if resposta.Erro || resposta.Logradouro == "" {
		return nil, nil
	}
	return &form.EnderecoCEP{
		Endereco: resposta.Logradouro,
		Bairro:   resposta.Bairro,
		Cidade:   resposta.Localidade,
		EstadoUF: resposta.UF,
	}, nil
}

func (s *CEPService) buscarFallback(ctx context.Context, cep string) (*form.EnderecoCEP, error) {
	url := fmt.Sprintf("%s/%s", s.fallbackBaseURL, cep)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	// A BrasilAPI sinaliza CEP inexistente com 404.
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status inesperado %d do provedor de fallback", resp.StatusCode)
	}

	var resposta respostaBrasilAPI
	if err := json.NewDecoder(resp.Body).Decode(&resposta); err != nil {
		return nil, err
	}
	return &form.EnderecoCEP{
		Endereco: resposta.Street,
		Bairro:   resposta.Neighborhood,
		Cidade:   resposta.City,
		EstadoUF: resposta.State,
	}, nil
}

func (s *CEPService) consultar(ctx context.Context, url string, destino any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status inesperado %d de %s", resp.StatusCode, url)
	}
	return json.NewDecoder(resp.Body).Decode(destino)
}

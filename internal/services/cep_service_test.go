package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuscarCEPProvedorPrimario(t *testing.T) {
	primario := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/90040191/json/", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"logradouro":"Av. Borges de Medeiros","bairro":"Praia de Belas","localidade":"Porto Alegre","uf":"RS"}`))
	}))
	defer primario.Close()

	svc := NewCEPService(primario.URL, "http://fallback.invalid", 2*time.Second)
	endereco, err := svc.BuscarCEP(context.Background(), "90040-191")
	require.NoError(t, err)
	require.NotNil(t, endereco)
	assert.Equal(t, "Av. Borges de Medeiros", endereco.Endereco)
	assert.Equal(t, "Praia de Belas", endereco.Bairro)
	assert.Equal(t, "Porto Alegre", endereco.Cidade)
	assert.Equal(t, "RS", endereco.EstadoUF)
}

func TestBuscarCEPInexistenteConsultaFallback(t *testing.T) {
	// O primário sinalizando inexistência ainda aciona o fallback, que pode
	// conhecer o CEP.
	primario := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"erro": true}`))
	}))
	defer primario.Close()
	fallback := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"street":"Av. Ipiranga","neighborhood":"Azenha","city":"Porto Alegre","state":"RS"}`))
	}))
	defer fallback.Close()

	svc := NewCEPService(primario.URL, fallback.URL, 2*time.Second)
	endereco, err := svc.BuscarCEP(context.Background(), "90160093")
	require.NoError(t, err)
	require.NotNil(t, endereco)
	assert.Equal(t, "Av. Ipiranga", endereco.Endereco)
}

func TestBuscarCEPPrimarioSemLogradouroConsultaFallback(t *testing.T) {
	// Resposta 200 vazia do primário também conta como ausência de resultado.
	primario := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer primario.Close()
	fallback := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"street":"Av. Ipiranga","neighborhood":"Azenha","city":"Porto Alegre","state":"RS"}`))
	}))
	defer fallback.Close()

	svc := NewCEPService(primario.URL, fallback.URL, 2*time.Second)
	endereco, err := svc.BuscarCEP(context.Background(), "90160093")
	require.NoError(t, err)
	require.NotNil(t, endereco)
	assert.Equal(t, "Av. Ipiranga", endereco.Endereco)
	assert.Equal(t, "Azenha", endereco.Bairro)
}

func TestBuscarCEPInexistenteNosDoisProvedores(t *testing.T) {
	primario := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"erro": true}`))
	}))
	defer primario.Close()
	fallback := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer fallback.Close()

	svc := NewCEPService(primario.URL, fallback.URL, 2*time.Second)
	endereco, err := svc.BuscarCEP(context.Background(), "99999999")
	require.NoError(t, err)
	assert.Nil(t, endereco)
}

func TestBuscarCEPInexistenteNoPrimarioComFallbackForaDoAr(t *testing.T) {
	// Inexistência confirmada pelo primário vale mesmo com o fallback fora
	// do ar: nil sem erro.
	primario := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"erro": true}`))
	}))
	defer primario.Close()

	svc := NewCEPService(primario.URL, "http://fallback.invalid", 500*time.Millisecond)
	endereco, err := svc.BuscarCEP(context.Background(), "99999999")
	require.NoError(t, err)
	assert.Nil(t, endereco)
}

func TestBuscarCEPFallbackQuandoPrimarioIndisponivel(t *testing.T) {
	primario := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer primario.Close()
	fallback := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/90040191", r.URL.Path)
		w.Write([]byte(`{"street":"Av. Borges de Medeiros","neighborhood":"Praia de Belas","city":"Porto Alegre","state":"RS"}`))
	}))
	defer fallback.Close()

	svc := NewCEPService(primario.URL, fallback.URL, 2*time.Second)
	endereco, err := svc.BuscarCEP(context.Background(), "90040191")
	require.NoError(t, err)
	require.NotNil(t, endereco)
	assert.Equal(t, "Porto Alegre", endereco.Cidade)
}

func TestBuscarCEPFallback404(t *testing.T) {
	primario := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer primario.Close()
	fallback := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer fallback.Close()

	svc := NewCEPService(primario.URL, fallback.URL, 2*time.Second)
	endereco, err := svc.BuscarCEP(context.Background(), "99999999")
	require.NoError(t, err)
	assert.Nil(t, endereco)
}

func TestBuscarCEPAmbosIndisponiveis(t *testing.T) {
	svc := NewCEPService("http://primario.invalid", "http://fallback.invalid", 500*time.Millisecond)
	_, err := svc.BuscarCEP(context.Background(), "90040191")
	assert.Error(t, err)
}

func TestBuscarCEPEntradaInvalida(t *testing.T) {
	svc := NewCEPService("http://primario.invalid", "http://fallback.invalid", time.Second)
	_, err := svc.BuscarCEP(context.Background(), "123")
	assert.Error(t, err)
}

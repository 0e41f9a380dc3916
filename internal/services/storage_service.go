package services

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	appErrors "github.com/multinegociacoes/APP_CADASTRO_GO/internal/core"
	appLogger "github.com/multinegociacoes/APP_CADASTRO_GO/internal/core/logger"
	"github.com/multinegociacoes/APP_CADASTRO_GO/internal/data/models"
	"github.com/multinegociacoes/APP_CADASTRO_GO/internal/utils"
)

// DocumentStorage abstrai o armazenamento dos documentos anexados a um
// cadastro. Os caminhos retornados são relativos à raiz do armazenamento e
// são os valores persistidos no cadastro.
type DocumentStorage interface {
	// Salvar grava o conteúdo sob documentos/{codigo}/{nome sanitizado} e
	// retorna o caminho relativo gravado.
	Salvar(codigo, nomeOriginal string, conteudo io.Reader) (string, error)
	// Abrir abre um documento previamente salvo pelo caminho relativo.
	Abrir(caminho string) (io.ReadCloser, error)
	// Remover apaga um documento pelo caminho relativo. Caminho inexistente
	// não é erro.
	Remover(caminho string) error
}

// localDocumentStorage grava documentos no sistema de arquivos local.
type localDocumentStorage struct {
	raiz string
}

// NewLocalDocumentStorage cria um armazenamento enraizado no diretório
// informado, criando-o se necessário.
func NewLocalDocumentStorage(raiz string) (DocumentStorage, error) {
	abs, err := filepath.Abs(raiz)
	if err != nil {
		return nil, appErrors.WrapErrorf(err, "caminho de armazenamento inválido: %s", raiz)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, appErrors.WrapErrorf(err, "falha ao criar diretório de armazenamento %s", abs)
	}
	return &localDocumentStorage{raiz: abs}, nil
}

func (s *localDocumentStorage) Salvar(codigo, nomeOriginal string, conteudo io.Reader) (string, error) {
	if strings.TrimSpace(codigo) == "" {
		return "", appErrors.WrapErrorf(appErrors.ErrInvalidInput, "código de cadastro vazio para upload")
	}
	nome := utils.SanitizeFilename(nomeOriginal)
	if nome == "" {
		return "", appErrors.WrapErrorf(appErrors.ErrInvalidInput, "nome de arquivo inválido: %s", nomeOriginal)
	}

	relativo := filepath.ToSlash(filepath.Join("documentos", codigo, nome))
	destino, err := s.resolver(relativo)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(destino), 0o755); err != nil {
		return "", appErrors.WrapErrorf(appErrors.ErrUpload, "falha ao criar diretório do cadastro %s: %v", codigo, err)
	}

	arquivo, err := os.Create(destino)
	if err != nil {
		return "", appErrors.WrapErrorf(appErrors.ErrUpload, "falha ao criar arquivo %s: %v", relativo, err)
	}
	defer arquivo.Close()

	if _, err := io.Copy(arquivo, conteudo); err != nil {
		os.Remove(destino)
		return "", appErrors.WrapErrorf(appErrors.ErrUpload, "falha ao gravar arquivo %s: %v", relativo, err)
	}
	appLogger.Debugf("Documento gravado em %s", relativo)
	return relativo, nil
}

func (s *localDocumentStorage) Abrir(caminho string) (io.ReadCloser, error) {
	destino, err := s.resolver(caminho)
	if err != nil {
		return nil, err
	}
	arquivo, err := os.Open(destino)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, appErrors.WrapErrorf(appErrors.ErrNotFound, "documento não encontrado: %s", caminho)
		}
		return nil, appErrors.WrapErrorf(err, "falha ao abrir documento %s", caminho)
	}
	return arquivo, nil
}

func (s *localDocumentStorage) Remover(caminho string) error {
	destino, err := s.resolver(caminho)
	if err != nil {
		return err
	}
	if err := os.Remove(destino); err != nil && !os.IsNotExist(err) {
		return appErrors.WrapErrorf(err, "falha ao remover documento %s", caminho)
	}
	return nil
}

// resolver converte um caminho relativo em absoluto dentro da raiz,
// rejeitando tentativas de escape.
func (s *localDocumentStorage) resolver(relativo string) (string, error) {
	limpo := filepath.Clean(filepath.FromSlash(relativo))
	if limpo == "." || strings.HasPrefix(limpo, "..") || filepath.IsAbs(limpo) {
		return "", appErrors.WrapErrorf(appErrors.ErrInvalidInput, "caminho de documento inválido: %s", relativo)
	}
	return filepath.Join(s.raiz, limpo), nil
}

// ZipDocumentos monta um arquivo zip com os documentos enviados do cadastro
// e o escreve no destino. Entradas sem caminho (staging não enviado) são
// ignoradas; documentos faltantes no armazenamento geram aviso e são pulados.
// Retorna o número de documentos incluídos.
func ZipDocumentos(storage DocumentStorage, documentos []models.Documento, destino io.Writer) (int, error) {
	zw := zip.NewWriter(destino)
	incluidos := 0
	nomesUsados := make(map[string]int)

	for _, doc := range documentos {
		if !doc.Enviado() {
			continue
		}
		leitor, err := storage.Abrir(doc.Caminho)
		if err != nil {
			appLogger.Warnf("Documento %s indisponível para download, pulando: %v", doc.Caminho, err)
			continue
		}

		nome := doc.Nome
		if nome == "" {
			nome = filepath.Base(doc.Caminho)
		}
		// Nomes repetidos ganham sufixo para não colidir dentro do zip.
		base := nome
		for n := 1; nomesUsados[nome] > 0; n++ {
			ext := filepath.Ext(base)
			nome = fmt.Sprintf("%s_%d%s", strings.TrimSuffix(base, ext), n, ext)
		}
		nomesUsados[nome]++

		entrada, err := zw.Create(nome)
		if err != nil {
			leitor.Close()
			zw.Close()
			return incluidos, appErrors.WrapErrorf(err, "falha ao criar entrada %s no zip", nome)
		}
		if _, err := io.Copy(entrada, leitor); err != nil {
			leitor.Close()
			zw.Close()
			return incluidos, appErrors.WrapErrorf(err, "falha ao copiar %s para o zip", nome)
		}
		leitor.Close()
		incluidos++
	}

	if err := zw.Close(); err != nil {
		return incluidos, appErrors.WrapErrorf(err, "falha ao finalizar zip de documentos")
	}
	return incluidos, nil
}

package form

// Navegador controla a etapa corrente do formulário (1..TotalEtapas).
// Avançar exige que a etapa atual valide; voltar é sempre permitido.
type Navegador struct {
	store *Store
	atual int
}

// NovoNavegador cria um navegador posicionado na etapa 1.
func NovoNavegador(store *Store) *Navegador {
	return &Navegador{store: store, atual: 1}
}

// EtapaAtual devolve a etapa corrente.
func (n *Navegador) EtapaAtual() int {
	return n.atual
}

// Avancar valida a etapa corrente e, quando válida, avança uma etapa
// (limitada a TotalEtapas). Retorna se o avanço aconteceu; em caso de
// reprovação a etapa corrente não muda e os erros ficam registrados no store.
func (n *Navegador) Avancar() bool {
	if !n.store.ValidarEtapa(n.atual) {
		return false
	}
	if n.atual < TotalEtapas {
		n.atual++
	}
	return true
}

// Voltar recua uma etapa sem validar, limitada à etapa 1.
func (n *Navegador) Voltar() {
	if n.atual > 1 {
		n.atual--
	}
}

// IrPara posiciona o navegador em uma etapa arbitrária dentro do intervalo
// válido, sem validar. Usado pela tela de revisão para editar uma seção.
func (n *Navegador) IrPara(etapa int) bool {
	if etapa < 1 || etapa > TotalEtapas {
		return false
	}
	n.atual = etapa
	return true
}

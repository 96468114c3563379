package domain

// ModificationChoice representa uma modificação de variante com estoque
// disponível no armazém, usada para montar a lista de escolha do formulário
// administrativo.
type ModificationChoice struct {
	Modification string `json:"modification"` // Identificador constante da modificação
	Value        string `json:"value"`        // Valor da modificação (ex: "44", "XL")
	Name         string `json:"name"`         // Nome traduzido do tipo de modificação
	Postfix      string `json:"postfix"`      // Sufixo exibido junto ao valor
	Reference    string `json:"reference"`    // Tipo de referência da categoria
	Available    int    `json:"available"`    // SUM(total) - SUM(reserve) nos armazéns do usuário
}

// ModificationChoiceFilter define os parâmetros obrigatórios da busca de
// modificações em estoque. Todos os campos devem estar preenchidos.
type ModificationChoiceFilter struct {
	User      string
	Product   string
	Offer     string
	Variation string
}

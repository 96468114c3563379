package domain

import "time"

// UserProfile representa um perfil de armazém vinculado a um usuário.
// Cada perfil ativo corresponde a um armazém que o usuário pode operar.
type UserProfile struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"` // Nome exibido na lista de escolha
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// ProfileChoiceResponse é o payload retornado ao formulário administrativo de
// seleção de armazém. Quando o usuário possui exatamente um perfil ativo,
// Preselected carrega o ID desse perfil para preenchimento automático.
type ProfileChoiceResponse struct {
	Profiles    []UserProfile `json:"profiles"`
	Preselected string        `json:"preselected,omitempty"`
}

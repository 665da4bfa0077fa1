package dto

// CreateUserRequest cria uma conta com o crédito inicial de moedas
type CreateUserRequest struct {
	Name string `json:"name"`
	Role string `json:"role"` // user | admin | bot (default: user)
}

// GrantRequest credita moedas a um usuário (operação de admin, tipo "give")
type GrantRequest struct {
	UserID  string `json:"userId"`
	Amount  int64  `json:"amount"`
	Message string `json:"message,omitempty"`
}

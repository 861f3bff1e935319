package auth

// LoginDTO is accepted as JSON or as an OAuth2 password form.
type LoginDTO struct {
	Username string `json:"username" validate:"required,max=150"`
	Password string `json:"password" validate:"required,max=72"`
}

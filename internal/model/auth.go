package model

// RegisterParams is a validated registration request.
type RegisterParams struct {
	Email    string
	Password string
	Name     *string
}

// LoginParams is a validated login request.
type LoginParams struct {
	Email    string
	Password string
}

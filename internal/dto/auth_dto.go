package dto

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type SignUpRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type SignInResponse struct {
	Email string `json:"email"`
}

// SignUpResponse carries the confirmation hint; sign-up does not yield a
// session until the e-mail is verified.
type SignUpResponse struct {
	Message string `json:"message"`
}

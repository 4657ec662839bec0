package models

// Request models
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type CreateCredentialRequest struct {
	Username  string `json:"username" binding:"required"`
	Password  string `json:"password" binding:"required,min=4"`
	Categoria string `json:"categoria" binding:"required"`
}

// UpdateCredentialRequest carries a partial update; nil fields are left unchanged
type UpdateCredentialRequest struct {
	Username  *string `json:"username"`
	Password  *string `json:"password"`
	Categoria *string `json:"categoria"`
}

// Response models
type LoginResponse struct {
	Message   string `json:"message"`
	Categoria string `json:"categoria"`
	Token     string `json:"token,omitempty"`
	ExpiresIn int    `json:"expiresIn,omitempty"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

type SnapshotResponse struct {
	Success bool  `json:"success"`
	Data    []Row `json:"data"`
}

type PhotosResponse struct {
	Photos []Photo `json:"photos"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// file: model/request.go

package model

// RegisterRequest defines the payload for creating a new user.
// bcrypt only looks at the first 72 bytes, so longer passwords are refused.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50,excludes=@"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,max=72"`
}

// LoginRequest accepts either the username or the email as Identifier.
type LoginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type GoogleLoginRequest struct {
	IDToken string `json:"id_token" validate:"required"`
}

type ProfileImageRequest struct {
	ProfileImage string `json:"profile_image" validate:"required,url,max=2048"`
}

type PostRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=10000"`
	ImageURL    string `json:"image_url" validate:"omitempty,url,max=2048"`
}

type CommentRequest struct {
	Content string `json:"content" validate:"required,max=5000"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

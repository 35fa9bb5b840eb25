package handler

import (
	"go-blog-api/common"
	"go-blog-api/logger"
	"go-blog-api/model"
	"go-blog-api/service"
	"net/http"
)

type AuthHandler struct {
	service *service.AuthService
}

func NewAuthHandler(service *service.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

// Register godoc
// @Summary      Register a new user
// @Description  Creates a password account. Username and email must be unused.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        user  body      model.RegisterRequest  true  "User registration info"
// @Success      201   {object}  model.PublicUser
// @Failure      400   {object}  common.AppError
// @Failure      500   {object}  common.AppError
// @Router       /api/auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.RegisterRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}

	user, err := h.service.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		return serviceError(err)
	}

	common.WriteJSON(w, http.StatusCreated, user)
	return nil
}

// Login godoc
// @Summary      Log in
// @Description  Authenticates with a username or email and returns a token pair.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        credentials  body      model.LoginRequest  true  "Login credentials"
// @Success      200          {object}  model.Session
// @Failure      400          {object}  common.AppError
// @Failure      401          {object}  common.AppError
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.LoginRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}

	session, err := h.service.Login(r.Context(), req.Identifier, req.Password)
	if err != nil {
		return serviceError(err)
	}

	logger.Log.WithField("user_id", session.ID).Info("User logged in")
	common.WriteJSON(w, http.StatusOK, session)
	return nil
}

// Refresh godoc
// @Summary      Refresh tokens
// @Description  Exchanges a refresh token for a new pair. The old refresh token stops working.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        token  body      model.RefreshRequest  true  "Refresh token"
// @Success      200    {object}  model.Session
// @Failure      401    {object}  common.AppError
// @Router       /api/auth/refresh [post]
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.RefreshRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}

	session, err := h.service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		return serviceError(err)
	}

	common.WriteJSON(w, http.StatusOK, session)
	return nil
}

// Logout godoc
// @Summary      Log out
// @Description  Revokes the given refresh token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        token  body      model.RefreshRequest  true  "Refresh token"
// @Success      200    {object}  model.MessageResponse
// @Failure      401    {object}  common.AppError
// @Router       /api/auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.RefreshRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}

	if err := h.service.Logout(r.Context(), req.RefreshToken); err != nil {
		return serviceError(err)
	}

	common.WriteJSON(w, http.StatusOK, model.MessageResponse{Message: "Logged out successfully"})
	return nil
}

// GoogleLogin godoc
// @Summary      Log in with Google
// @Description  Verifies a Google ID token and signs the owner in, creating an account on first use.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        token  body      model.GoogleLoginRequest  true  "Google ID token"
// @Success      200    {object}  model.Session
// @Failure      401    {object}  common.AppError
// @Failure      501    {object}  common.AppError
// @Failure      502    {object}  common.AppError
// @Router       /api/auth/google [post]
func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.GoogleLoginRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}

	session, err := h.service.GoogleLogin(r.Context(), req.IDToken)
	if err != nil {
		return serviceError(err)
	}

	common.WriteJSON(w, http.StatusOK, session)
	return nil
}

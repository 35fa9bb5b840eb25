package handler

import (
	"go-blog-api/common"
	"go-blog-api/model"
	"go-blog-api/service"
	"net/http"
)

type UserHandler struct {
	service *service.UserService
}

func NewUserHandler(service *service.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// GetMe godoc
// @Summary      Current user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  model.PublicUser
// @Failure      401  {object}  common.AppError
// @Router       /api/users/me [get]
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request, identity *model.Identity) *common.AppError {
	user, err := h.service.GetMe(r.Context(), identity)
	if err != nil {
		return serviceError(err)
	}
	common.WriteJSON(w, http.StatusOK, user)
	return nil
}

// UpdateProfileImage godoc
// @Summary      Set profile image
// @Description  Stores a URL reference to the caller's profile image.
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        image  body      model.ProfileImageRequest  true  "Image URL"
// @Success      200    {object}  model.PublicUser
// @Failure      400    {object}  common.AppError
// @Failure      401    {object}  common.AppError
// @Router       /api/users/me/profile-image [put]
func (h *UserHandler) UpdateProfileImage(w http.ResponseWriter, r *http.Request, identity *model.Identity) *common.AppError {
	var req model.ProfileImageRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}

	user, err := h.service.UpdateProfileImage(r.Context(), identity, req.ProfileImage)
	if err != nil {
		return serviceError(err)
	}
	common.WriteJSON(w, http.StatusOK, user)
	return nil
}

package handler

import (
	"go-blog-api/common"
	"go-blog-api/model"
	"go-blog-api/service"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type CommentHandler struct {
	service *service.CommentService
}

func NewCommentHandler(service *service.CommentService) *CommentHandler {
	return &CommentHandler{service: service}
}

// ListComments godoc
// @Summary      List comments of a post
// @Tags         comments
// @Produce      json
// @Param        id   path      string  true  "Post ID"
// @Success      200  {array}   model.Comment
// @Failure      404  {object}  common.AppError
// @Router       /api/posts/{id}/comments [get]
func (h *CommentHandler) ListComments(w http.ResponseWriter, r *http.Request) *common.AppError {
	comments, err := h.service.ListForPost(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return serviceError(err)
	}
	common.WriteJSON(w, http.StatusOK, comments)
	return nil
}

// CreateComment godoc
// @Summary      Comment on a post
// @Tags         comments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                true  "Post ID"
// @Param        comment  body      model.CommentRequest  true  "Comment"
// @Success      201      {object}  model.Comment
// @Failure      404      {object}  common.AppError
// @Router       /api/posts/{id}/comments [post]
func (h *CommentHandler) CreateComment(w http.ResponseWriter, r *http.Request, identity *model.Identity) *common.AppError {
	var req model.CommentRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}

	comment, err := h.service.Create(r.Context(), identity, chi.URLParam(r, "id"), req)
	if err != nil {
		return serviceError(err)
	}
	common.WriteJSON(w, http.StatusCreated, comment)
	return nil
}

// UpdateComment godoc
// @Summary      Edit a comment
// @Tags         comments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                true  "Comment ID"
// @Param        comment  body      model.CommentRequest  true  "Comment"
// @Success      200      {object}  model.Comment
// @Failure      403      {object}  common.AppError
// @Router       /api/comments/{id} [put]
func (h *CommentHandler) UpdateComment(w http.ResponseWriter, r *http.Request, identity *model.Identity) *common.AppError {
	var req model.CommentRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}

	comment, err := h.service.Update(r.Context(), identity, chi.URLParam(r, "id"), req)
	if err != nil {
		return serviceError(err)
	}
	common.WriteJSON(w, http.StatusOK, comment)
	return nil
}

// DeleteComment godoc
// @Summary      Delete a comment
// @Tags         comments
// @Security     BearerAuth
// @Param        id   path  string  true  "Comment ID"
// @Success      204
// @Failure      403  {object}  common.AppError
// @Router       /api/comments/{id} [delete]
func (h *CommentHandler) DeleteComment(w http.ResponseWriter, r *http.Request, identity *model.Identity) *common.AppError {
	if err := h.service.Delete(r.Context(), identity, chi.URLParam(r, "id")); err != nil {
		return serviceError(err)
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

package handler

import (
	"go-blog-api/common"
	"go-blog-api/model"
	"go-blog-api/service"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type PostHandler struct {
	service *service.PostService
}

func NewPostHandler(service *service.PostService) *PostHandler {
	return &PostHandler{service: service}
}

// ListPosts godoc
// @Summary      List posts
// @Description  Returns every post, newest first.
// @Tags         posts
// @Produce      json
// @Success      200  {array}   model.Post
// @Router       /api/posts [get]
func (h *PostHandler) ListPosts(w http.ResponseWriter, r *http.Request) *common.AppError {
	posts, err := h.service.List(r.Context())
	if err != nil {
		return serviceError(err)
	}
	common.WriteJSON(w, http.StatusOK, posts)
	return nil
}

// GetPost godoc
// @Summary      Get a post
// @Tags         posts
// @Produce      json
// @Param        id   path      string  true  "Post ID"
// @Success      200  {object}  model.Post
// @Failure      404  {object}  common.AppError
// @Router       /api/posts/{id} [get]
func (h *PostHandler) GetPost(w http.ResponseWriter, r *http.Request) *common.AppError {
	post, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return serviceError(err)
	}
	common.WriteJSON(w, http.StatusOK, post)
	return nil
}

// CreatePost godoc
// @Summary      Create a post
// @Tags         posts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        post  body      model.PostRequest  true  "Post"
// @Success      201   {object}  model.Post
// @Failure      400   {object}  common.AppError
// @Failure      401   {object}  common.AppError
// @Router       /api/posts [post]
func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request, identity *model.Identity) *common.AppError {
	var req model.PostRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}

	post, err := h.service.Create(r.Context(), identity, req)
	if err != nil {
		return serviceError(err)
	}
	common.WriteJSON(w, http.StatusCreated, post)
	return nil
}

// UpdatePost godoc
// @Summary      Update a post
// @Description  Only the owner may update a post.
// @Tags         posts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "Post ID"
// @Param        post  body      model.PostRequest  true  "Post"
// @Success      200   {object}  model.Post
// @Failure      403   {object}  common.AppError
// @Failure      404   {object}  common.AppError
// @Router       /api/posts/{id} [put]
func (h *PostHandler) UpdatePost(w http.ResponseWriter, r *http.Request, identity *model.Identity) *common.AppError {
	var req model.PostRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}

	post, err := h.service.Update(r.Context(), identity, chi.URLParam(r, "id"), req)
	if err != nil {
		return serviceError(err)
	}
	common.WriteJSON(w, http.StatusOK, post)
	return nil
}

// DeletePost godoc
// @Summary      Delete a post
// @Description  Only the owner may delete a post. Its comments are deleted too.
// @Tags         posts
// @Security     BearerAuth
// @Param        id   path  string  true  "Post ID"
// @Success      204
// @Failure      403  {object}  common.AppError
// @Failure      404  {object}  common.AppError
// @Router       /api/posts/{id} [delete]
func (h *PostHandler) DeletePost(w http.ResponseWriter, r *http.Request, identity *model.Identity) *common.AppError {
	if err := h.service.Delete(r.Context(), identity, chi.URLParam(r, "id")); err != nil {
		return serviceError(err)
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

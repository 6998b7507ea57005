package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/restapi/backend/internal/application/resource"
	"github.com/restapi/backend/internal/domain/shared"
	"github.com/restapi/backend/internal/interfaces/http/dto"
)

// UserHandler handles user management HTTP requests
type UserHandler struct {
	BaseHandler
	users *resource.UserResource
}

// NewUserHandler creates a new user handler
func NewUserHandler(users *resource.UserResource) *UserHandler {
	return &UserHandler{users: users}
}

// listFilter binds the pagination query parameters
func (h *BaseHandler) listFilter(c *gin.Context) (shared.Filter, bool) {
	req := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&req); err != nil {
		h.HandleError(c, err)
		return shared.Filter{}, false
	}
	return shared.Filter{
		Page:     req.Page,
		PageSize: req.PageSize,
		OrderBy:  req.OrderBy,
		OrderDir: req.OrderDir,
		Search:   req.Search,
	}, true
}

// decodeUser reads the request body into a user DTO
func (h *UserHandler) decodeUser(c *gin.Context) (*resource.UserDTO, bool) {
	body, err := c.GetRawData()
	if err != nil {
		h.HandleError(c, err)
		return nil, false
	}
	d, err := resource.DecodeUser(body)
	if err != nil {
		h.DecodeError(c, err)
		return nil, false
	}
	return d, true
}

// List godoc
// @ID           listUsers
// @Summary      List users
// @Description  Get a paginated list of users
// @Tags         users
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Items per page" default(20) maximum(100)
// @Param        order_by query string false "Sort by field" Enums(username, email, created_at, updated_at)
// @Param        order_dir query string false "Sort direction" Enums(asc, desc)
// @Param        search query string false "Search username, name or email"
// @Success      200 {object} APIResponse[[]dto.UserResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /user [get]
func (h *UserHandler) List(c *gin.Context) {
	filter, ok := h.listFilter(c)
	if !ok {
		return
	}

	users, total, err := h.users.Find(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, dto.NewUserResponses(users), total, filter.Page, filter.Limit())
}

// Get godoc
// @ID           getUser
// @Summary      Get a user
// @Tags         users
// @Produce      json
// @Param        id path string true "User ID" format(uuid)
// @Success      200 {object} APIResponse[dto.UserResponse]
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /user/{id} [get]
func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.users.FindOne(c.Request.Context(), c.Param("id"), true)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, dto.NewUserResponse(user))
}

// Create godoc
// @ID           createUser
// @Summary      Create a user
// @Description  Every property present in the body is applied to the new user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body resource.UserDTO true "User"
// @Success      201 {object} APIResponse[dto.UserResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /user [post]
func (h *UserHandler) Create(c *gin.Context) {
	d, ok := h.decodeUser(c)
	if !ok {
		return
	}

	user, err := h.users.Create(c.Request.Context(), d)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, dto.NewUserResponse(user))
}

// Update godoc
// @ID           updateUser
// @Summary      Replace a user
// @Description  Applies the properties present in the body. Omitted properties keep their value.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id path string true "User ID" format(uuid)
// @Param        request body resource.UserDTO true "User"
// @Success      200 {object} APIResponse[dto.UserResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /user/{id} [put]
func (h *UserHandler) Update(c *gin.Context) {
	d, ok := h.decodeUser(c)
	if !ok {
		return
	}

	user, err := h.users.Update(c.Request.Context(), c.Param("id"), d)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, dto.NewUserResponse(user))
}

// Patch godoc
// @ID           patchUser
// @Summary      Patch a user
// @Description  Merges the body over the user's current state and validates the result
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id path string true "User ID" format(uuid)
// @Param        request body resource.UserDTO true "Partial user"
// @Success      200 {object} APIResponse[dto.UserResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /user/{id} [patch]
func (h *UserHandler) Patch(c *gin.Context) {
	d, ok := h.decodeUser(c)
	if !ok {
		return
	}

	user, err := h.users.Patch(c.Request.Context(), c.Param("id"), d)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, dto.NewUserResponse(user))
}

// Delete godoc
// @ID           deleteUser
// @Summary      Delete a user
// @Tags         users
// @Param        id path string true "User ID" format(uuid)
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /user/{id} [delete]
func (h *UserHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()
	user, err := h.users.FindOne(ctx, c.Param("id"), true)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if err := h.users.Delete(ctx, user.ID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

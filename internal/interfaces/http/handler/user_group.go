package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/restapi/backend/internal/application/resource"
	"github.com/restapi/backend/internal/infrastructure/logger"
	"github.com/restapi/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// UserGroupHandler handles user group management and membership HTTP requests
type UserGroupHandler struct {
	BaseHandler
	groups *resource.UserGroupResource
	users  *resource.UserResource
}

// NewUserGroupHandler creates a new user group handler
func NewUserGroupHandler(groups *resource.UserGroupResource, users *resource.UserResource) *UserGroupHandler {
	return &UserGroupHandler{groups: groups, users: users}
}

func (h *UserGroupHandler) decodeUserGroup(c *gin.Context) (*resource.UserGroupDTO, bool) {
	body, err := c.GetRawData()
	if err != nil {
		h.HandleError(c, err)
		return nil, false
	}
	d, err := resource.DecodeUserGroup(body)
	if err != nil {
		h.DecodeError(c, err)
		return nil, false
	}
	return d, true
}

// List godoc
// @ID           listUserGroups
// @Summary      List user groups
// @Tags         user groups
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Items per page" default(20) maximum(100)
// @Param        order_by query string false "Sort by field" Enums(name, role, created_at, updated_at)
// @Param        order_dir query string false "Sort direction" Enums(asc, desc)
// @Param        search query string false "Search by name"
// @Success      200 {object} APIResponse[[]dto.UserGroupResponse]
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /user_group [get]
func (h *UserGroupHandler) List(c *gin.Context) {
	filter, ok := h.listFilter(c)
	if !ok {
		return
	}

	groups, total, err := h.groups.Find(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, dto.NewUserGroupResponses(groups), total, filter.Page, filter.Limit())
}

// Get godoc
// @ID           getUserGroup
// @Summary      Get a user group
// @Tags         user groups
// @Produce      json
// @Param        id path string true "User group ID" format(uuid)
// @Success      200 {object} APIResponse[dto.UserGroupResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /user_group/{id} [get]
func (h *UserGroupHandler) Get(c *gin.Context) {
	group, err := h.groups.FindOne(c.Request.Context(), c.Param("id"), true)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, dto.NewUserGroupResponse(group))
}

// Create godoc
// @ID           createUserGroup
// @Summary      Create a user group
// @Tags         user groups
// @Accept       json
// @Produce      json
// @Param        request body resource.UserGroupDTO true "User group"
// @Success      201 {object} APIResponse[dto.UserGroupResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /user_group [post]
func (h *UserGroupHandler) Create(c *gin.Context) {
	d, ok := h.decodeUserGroup(c)
	if !ok {
		return
	}

	group, err := h.groups.Create(c.Request.Context(), d)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, dto.NewUserGroupResponse(group))
}

// Update godoc
// @ID           updateUserGroup
// @Summary      Replace a user group
// @Tags         user groups
// @Accept       json
// @Produce      json
// @Param        id path string true "User group ID" format(uuid)
// @Param        request body resource.UserGroupDTO true "User group"
// @Success      200 {object} APIResponse[dto.UserGroupResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /user_group/{id} [put]
func (h *UserGroupHandler) Update(c *gin.Context) {
	d, ok := h.decodeUserGroup(c)
	if !ok {
		return
	}

	group, err := h.groups.Update(c.Request.Context(), c.Param("id"), d)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, dto.NewUserGroupResponse(group))
}

// Patch godoc
// @ID           patchUserGroup
// @Summary      Patch a user group
// @Tags         user groups
// @Accept       json
// @Produce      json
// @Param        id path string true "User group ID" format(uuid)
// @Param        request body resource.UserGroupDTO true "Partial user group"
// @Success      200 {object} APIResponse[dto.UserGroupResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /user_group/{id} [patch]
func (h *UserGroupHandler) Patch(c *gin.Context) {
	d, ok := h.decodeUserGroup(c)
	if !ok {
		return
	}

	group, err := h.groups.Patch(c.Request.Context(), c.Param("id"), d)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, dto.NewUserGroupResponse(group))
}

// Delete godoc
// @ID           deleteUserGroup
// @Summary      Delete a user group
// @Tags         user groups
// @Param        id path string true "User group ID" format(uuid)
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /user_group/{id} [delete]
func (h *UserGroupHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()
	group, err := h.groups.FindOne(ctx, c.Param("id"), true)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if err := h.groups.Delete(ctx, group.ID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// AttachUser godoc
// @ID           attachUserToGroup
// @Summary      Add a user to a group
// @Description  Answers 201 when the user joined the group and 200 when it already was a member
// @Tags         user groups
// @Produce      json
// @Param        id path string true "User group ID" format(uuid)
// @Param        user path string true "User ID" format(uuid)
// @Success      200 {object} APIResponse[[]dto.BasicUser]
// @Success      201 {object} APIResponse[[]dto.BasicUser]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /user_group/{id}/user/{user} [post]
func (h *UserGroupHandler) AttachUser(c *gin.Context) {
	ctx := c.Request.Context()
	group, err := h.groups.FindOne(ctx, c.Param("id"), true)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	user, err := h.users.FindOne(ctx, c.Param("user"), true)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	status := http.StatusOK
	if group.AddUser(user) {
		status = http.StatusCreated
	}

	if err := h.groups.Save(ctx, group, false, false); err != nil {
		h.HandleError(c, err)
		return
	}
	if err := h.users.Save(ctx, user, true, true); err != nil {
		h.HandleError(c, err)
		return
	}

	logger.GetGinLogger(c).Info("User attached to group",
		zap.String("group_id", group.ID.String()),
		zap.String("member_id", user.ID.String()),
		zap.Bool("created", status == http.StatusCreated))
	c.JSON(status, dto.NewSuccessResponse(dto.NewBasicUsers(group.Users)))
}

// DetachUser godoc
// @ID           detachUserFromGroup
// @Summary      Remove a user from a group
// @Tags         user groups
// @Produce      json
// @Param        id path string true "User group ID" format(uuid)
// @Param        user path string true "User ID" format(uuid)
// @Success      200 {object} APIResponse[[]dto.BasicUser]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /user_group/{id}/user/{user} [delete]
func (h *UserGroupHandler) DetachUser(c *gin.Context) {
	ctx := c.Request.Context()
	group, err := h.groups.FindOne(ctx, c.Param("id"), true)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	user, err := h.users.FindOne(ctx, c.Param("user"), true)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if !group.RemoveUser(user) {
		h.NotFound(c, "User is not a member of the group")
		return
	}

	if err := h.groups.Save(ctx, group, false, false); err != nil {
		h.HandleError(c, err)
		return
	}
	if err := h.users.Save(ctx, user, true, true); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, dto.NewBasicUsers(group.Users))
}

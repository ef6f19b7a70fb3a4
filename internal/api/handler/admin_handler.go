package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/llmrelay/chat-service/internal/core/ports"
)

// AdminHandler manages user records. Routes are mounted behind the session
// middleware with an Admin rights requirement; the user management itself
// mirrors what the operator CLI does against the store.
type AdminHandler struct {
	repo   ports.UserRepository
	logger zerolog.Logger
}

func NewAdminHandler(repo ports.UserRepository, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{repo: repo, logger: logger}
}

type createUserRequest struct {
	Username string `json:"username" validate:"required,min=1,max=64"`
	Password string `json:"password" validate:"required,min=1"`
}

type userView struct {
	Identity string  `json:"identity"`
	Username string  `json:"username"`
	Rights   string  `json:"rights"`
	Credit   float64 `json:"credit"`
}

// ListUsers returns every user record, without password hashes or keys.
//
// @Summary      List users
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  userView
// @Router       /api/admin/users [get]
func (h *AdminHandler) ListUsers(c echo.Context) error {
	records, err := h.repo.ListAll(c.Request().Context())
	if err != nil {
		return err
	}

	views := make([]userView, 0, len(records))
	for _, r := range records {
		views = append(views, userView{
			Identity: r.Identity.String(),
			Username: r.Username,
			Rights:   r.Rights.String(),
			Credit:   r.Credit,
		})
	}
	return c.JSON(http.StatusOK, views)
}

// CreateUser adds a user record with Chat rights and the starting credit.
//
// @Summary      Create a user
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createUserRequest  true  "New user credentials"
// @Success      201   {object}  map[string]bool
// @Failure      409   {object}  map[string]string
// @Router       /api/admin/users [post]
func (h *AdminHandler) CreateUser(c echo.Context) error {
	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	created, err := h.repo.Create(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return err
	}
	if !created {
		return echo.NewHTTPError(http.StatusConflict, "username already exists")
	}

	h.logger.Info().Str("username", req.Username).Msg("user created")
	return c.JSON(http.StatusCreated, map[string]bool{"created": true})
}

// DeleteUser removes a user record. Live sessions for the user are not
// revoked; they lapse at expiry.
//
// @Summary      Delete a user
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        username  path  string  true  "Username"
// @Success      200  {object}  map[string]bool
// @Failure      404  {object}  map[string]string
// @Router       /api/admin/users/{username} [delete]
func (h *AdminHandler) DeleteUser(c echo.Context) error {
	username := c.Param("username")
	deleted, err := h.repo.Delete(c.Request().Context(), username)
	if err != nil {
		return err
	}
	if !deleted {
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	}

	h.logger.Info().Str("username", username).Msg("user deleted")
	return c.JSON(http.StatusOK, map[string]bool{"deleted": true})
}

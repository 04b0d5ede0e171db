package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/venue-booking/internal/model"
	"github.com/iliyamo/venue-booking/internal/repository"
	"github.com/iliyamo/venue-booking/internal/service"
	"github.com/iliyamo/venue-booking/internal/utils"
)

var userMsgs = messages{notFound: "User not found", conflict: "Email already exists"}

// UsersHandler serves the staff directory.
type UsersHandler struct {
	Users      *repository.UserRepo
	Auth       *service.AuthService
	BcryptCost int
	Log        *logrus.Entry
}

func NewUsersHandler(u *repository.UserRepo, a *service.AuthService, bcryptCost int, log *logrus.Entry) *UsersHandler {
	return &UsersHandler{Users: u, Auth: a, BcryptCost: bcryptCost, Log: log}
}

type userReq struct {
	Role     string  `json:"role"`
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Phone    *string `json:"phone"`
	Password string  `json:"password"`
}

func (h *UsersHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	users, err := h.Users.List(ctx)
	if err != nil {
		return fail(c, h.Log, err, userMsgs)
	}
	return c.JSON(http.StatusOK, users)
}

func (h *UsersHandler) Get(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return bad(c, "Invalid user ID")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		return fail(c, h.Log, err, userMsgs)
	}
	return c.JSON(http.StatusOK, u)
}

func (h *UsersHandler) Create(c echo.Context) error {
	var req userReq
	if err := c.Bind(&req); err != nil {
		return bad(c, msgBadBody)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	u, err := h.Auth.CreateUser(ctx, service.NewUser{
		Name: req.Name, Email: req.Email, Phone: req.Phone, Role: req.Role, Password: req.Password,
	})
	if err != nil {
		return fail(c, h.Log, err, userMsgs)
	}
	return c.JSON(http.StatusCreated, u)
}

// Update replaces the profile. An empty password keeps the stored one.
func (h *UsersHandler) Update(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return bad(c, "Invalid user ID")
	}
	var req userReq
	if err := c.Bind(&req); err != nil {
		return bad(c, msgBadBody)
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if req.Role == "" || req.Name == "" || req.Email == "" {
		return bad(c, msgMissing)
	}
	role := model.Role(req.Role)
	if !role.IsValid() {
		return bad(c, "Invalid role")
	}

	var hash string
	if req.Password != "" {
		var err error
		if hash, err = utils.HashPassword(req.Password, h.BcryptCost); err != nil {
			return fail(c, h.Log, err, userMsgs)
		}
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	u := model.User{ID: id, Role: role, Name: req.Name, Email: req.Email, Phone: optString(req.Phone)}
	if err := h.Users.Update(ctx, u, hash); err != nil {
		return fail(c, h.Log, err, userMsgs)
	}
	return c.JSON(http.StatusOK, u)
}

// Delete removes the user; events it was assigned to keep their other data.
func (h *UsersHandler) Delete(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return bad(c, "Invalid user ID")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Users.Delete(ctx, id); err != nil {
		return fail(c, h.Log, err, userMsgs)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "User deleted successfully"})
}

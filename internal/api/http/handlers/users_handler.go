package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/barbershop-api/internal/api/dto"
	"github.com/spec-kit/barbershop-api/internal/auth"
	"github.com/spec-kit/barbershop-api/internal/service"
	apperrors "github.com/spec-kit/barbershop-api/pkg/util/errorutil"
)

// UsersHandler exposes signup, login and account administration.
type UsersHandler struct {
	auth  *service.AuthService
	users *service.UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(authService *service.AuthService, userService *service.UserService) *UsersHandler {
	return &UsersHandler{auth: authService, users: userService}
}

// Signup handles POST /signup.
func (h *UsersHandler) Signup(c *fiber.Ctx) error {
	var req dto.SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("Invalid body", nil)
	}

	if _, err := h.auth.Register(c.UserContext(), service.RegisterInput{
		Name:      req.Name,
		Email:     req.Email,
		Username:  req.Username,
		Password:  req.Password,
		Birthdate: req.Birthdate,
		CPF:       req.CPF,
	}); err != nil {
		return err
	}
	return c.JSON(dto.SuccessResponse{Success: true})
}

// Login handles POST /login.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("Invalid body", nil)
	}

	_, token, err := h.auth.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(dto.AuthResponse{Token: token.Token, ExpiresAt: token.ExpiresAt})
}

// Me handles GET /me.
func (h *UsersHandler) Me(c *fiber.Ctx) error {
	claims, ok := auth.ClaimsFromFiber(c)
	if !ok {
		return apperrors.NewUnauthorized("Missing token")
	}
	user, err := h.users.Get(c.UserContext(), claims.UserID)
	if err != nil {
		// The account was removed after the token was issued.
		if apperrors.IsCode(err, apperrors.CodeNotFound) {
			return apperrors.NewUnauthorized("User not found")
		}
		return err
	}
	return c.JSON(dto.NewUserResponse(*user))
}

// ListUsers handles GET /all-users.
func (h *UsersHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.users.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.NewUserListResponse(users))
}

// DeleteUser handles DELETE /user/:id.
func (h *UsersHandler) DeleteUser(c *fiber.Ctx) error {
	if err := h.users.Delete(c.UserContext(), actorID(c), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(dto.SuccessResponse{Success: true})
}

func actorID(c *fiber.Ctx) string {
	if claims, ok := auth.ClaimsFromFiber(c); ok {
		return claims.UserID
	}
	return ""
}

package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/omnibus/ticket-checkout/internal/core/domain"
	"github.com/omnibus/ticket-checkout/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type registerRequest struct {
	Nombre      string `json:"nombre"      validate:"required"`
	Apellido    string `json:"apellido"    validate:"required"`
	CI          string `json:"ci"          validate:"required"`
	Email       string `json:"email"       validate:"required,email"`
	Password    string `json:"password"    validate:"required,min=6"`
	Telefono    string `json:"telefono"`
	FechaNac    string `json:"fecha_nac"`
	TipoCliente string `json:"tipo_cliente" validate:"omitempty,oneof=COMUN JUBILADO ESTUDIANTE"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type profileRequest struct {
	Nombre      string `json:"nombre"       validate:"required"`
	Apellido    string `json:"apellido"`
	CI          string `json:"ci"`
	Telefono    string `json:"telefono"`
	FechaNac    string `json:"fecha_nac"`
	TipoCliente string `json:"tipo_cliente" validate:"omitempty,oneof=COMUN JUBILADO ESTUDIANTE"`
}

type authResponse struct {
	User *domain.UserProfile `json:"user,omitempty"`
}

// Register creates a customer account and logs it in.
//
// @Summary      Register a new customer
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Customer registration details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Failure      502   {object}  errorResponse
// @Router       /v1/auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
	}

	user, err := h.authService.Register(c.Request().Context(), domain.RegisterRequest{
		Nombre:      req.Nombre,
		Apellido:    req.Apellido,
		CI:          req.CI,
		Email:       req.Email,
		Contrasena:  req.Password,
		Telefono:    req.Telefono,
		FechaNac:    req.FechaNac,
		TipoCliente: domain.CustomerType(req.TipoCliente),
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, authResponse{User: user})
}

// Login authenticates against the backend and starts session monitoring.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      502   {object}  errorResponse
// @Router       /v1/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}

	user, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, authResponse{User: user})
}

// Logout drops the credential and the profile.
//
// @Summary      Logout
// @Tags         auth
// @Success      204
// @Router       /v1/auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	if err := h.authService.Logout(c.Request().Context()); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Profile returns the stored customer profile.
//
// @Summary      Current profile
// @Tags         profile
// @Produce      json
// @Success      200  {object}  authResponse
// @Failure      401  {object}  errorResponse
// @Router       /v1/profile [get]
func (h *AuthHandler) Profile(c echo.Context) error {
	user, err := h.authService.CurrentUser(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, authResponse{User: user})
}

// UpdateProfile rewrites the editable profile fields.
//
// @Summary      Update profile
// @Tags         profile
// @Accept       json
// @Produce      json
// @Param        body  body      profileRequest  true  "Editable fields"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/profile [put]
func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	var req profileRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
	}

	ctx := c.Request().Context()
	err := h.authService.UpdateProfile(ctx, domain.UserProfile{
		Nombre:      req.Nombre,
		Apellido:    req.Apellido,
		CI:          req.CI,
		Telefono:    req.Telefono,
		FechaNac:    req.FechaNac,
		TipoCliente: domain.CustomerType(req.TipoCliente),
	})
	if err != nil {
		return err
	}

	user, err := h.authService.CurrentUser(ctx)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, authResponse{User: user})
}

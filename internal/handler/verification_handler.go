package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"usermgmt/internal/service"
)

// VerificationHandler handles email verification endpoints.
type VerificationHandler struct {
	verificationService service.VerificationService
}

// NewVerificationHandler creates a new verification handler.
func NewVerificationHandler(verificationService service.VerificationService) *VerificationHandler {
	return &VerificationHandler{verificationService: verificationService}
}

// VerifyEmailRequest asks for a (re)issued verification code.
type VerifyEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// VerifyCodeRequest submits a previously issued code.
type VerifyCodeRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6,numeric"`
}

// MessageResponse is a plain informational response body.
type MessageResponse struct {
	Message string `json:"message"`
}

// VerifyEmail godoc
// @Summary Send a verification code to the user's email
// @Description Overwrites any pending code. Already-verified accounts are left untouched.
// @Tags users
// @Accept json
// @Produce json
// @Param request body VerifyEmailRequest true "Target email"
// @Success 200 {object} MessageResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /users/verify-email [post]
func (h *VerificationHandler) VerifyEmail(c echo.Context) error {
	var req VerifyEmailRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	alreadyVerified, err := h.verificationService.RequestCode(c.Request().Context(), req.Email)
	if err != nil {
		return respondDomainError(err)
	}
	if alreadyVerified {
		return c.JSON(http.StatusOK, MessageResponse{Message: "email is already verified"})
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "verification code sent"})
}

// VerifyCode godoc
// @Summary Confirm a verification code
// @Tags users
// @Accept json
// @Produce json
// @Param request body VerifyCodeRequest true "Email and code"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/verify-code [post]
func (h *VerificationHandler) VerifyCode(c echo.Context) error {
	var req VerifyCodeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.verificationService.ConfirmCode(c.Request().Context(), req.Email, req.Code); err != nil {
		return respondDomainError(err)
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "email verified successfully"})
}

// Package httpapi maps the account lifecycle onto JSON endpoints served by
// fiber.
package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	account "github.com/goliatone/go-account"
	goerrors "github.com/goliatone/go-errors"
)

// Lifecycle is the subset of account.AccountLifecycle served over HTTP
type Lifecycle interface {
	Register(ctx context.Context, msg account.RegisterAccountMessage) (bool, error)
	VerifyEmail(ctx context.Context, token string) (bool, error)
	ResendVerification(ctx context.Context, email string) (bool, error)
	VerifyIdentity(ctx context.Context, identifier, password string) (account.Identity, error)
	RequestPasswordReset(ctx context.Context, msg account.PasswordResetRequestMessage) (bool, error)
	CheckResetToken(ctx context.Context, token string) (bool, error)
	ResetPassword(ctx context.Context, msg account.FinalizePasswordResetMessage) (bool, error)
}

var _ Lifecycle = (*account.AccountLifecycle)(nil)

// Controller holds the HTTP handlers
type Controller struct {
	lifecycle Lifecycle
	logger    account.Logger
}

// Option configures a Controller
type Option func(*Controller)

func WithLogger(logger account.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func NewController(lifecycle Lifecycle, opts ...Option) *Controller {
	c := &Controller{
		lifecycle: lifecycle,
		logger:    nopLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// RegisterRoutes mounts the endpoints on r
func (c *Controller) RegisterRoutes(r fiber.Router) {
	r.Post("/accounts", c.Register)
	r.Get("/verify/:token", c.VerifyEmail)
	r.Post("/verify/resend", c.ResendVerification)
	r.Post("/login", c.Login)
	r.Post("/password-reset", c.RequestPasswordReset)
	r.Get("/password-reset/:token", c.CheckResetToken)
	r.Post("/password-reset/:token", c.ResetPassword)
}

// ResultResponse is returned by operations that report a boolean outcome
type ResultResponse struct {
	Success bool `json:"success"`
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

type ErrorBody struct {
	Message  string `json:"message"`
	TextCode string `json:"text_code,omitempty"`
	Category string `json:"category,omitempty"`
}

// IdentityResponse is returned by a successful login
type IdentityResponse struct {
	ID     string `json:"id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

type resendPayload struct {
	Email string `json:"email"`
}

type loginPayload struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type resetPayload struct {
	Password string `json:"password"`
}

func (c *Controller) Register(ctx *fiber.Ctx) error {
	payload := account.RegisterAccountMessage{}
	if err := ctx.BodyParser(&payload); err != nil {
		return c.badRequest(ctx, err)
	}

	shape := payload
	shape.Email = account.NormalizeEmail(shape.Email)
	shape.Name = strings.TrimSpace(shape.Name)
	if err := shape.Validate(); err != nil {
		return c.fail(ctx, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid registration payload").
			WithCode(goerrors.CodeBadRequest))
	}

	ok, err := c.lifecycle.Register(ctx.UserContext(), payload)
	if err != nil {
		return c.fail(ctx, err)
	}
	return result(ctx, ok, http.StatusCreated, http.StatusConflict)
}

func (c *Controller) VerifyEmail(ctx *fiber.Ctx) error {
	ok, err := c.lifecycle.VerifyEmail(ctx.UserContext(), ctx.Params("token"))
	if err != nil {
		return c.fail(ctx, err)
	}
	return result(ctx, ok, http.StatusOK, http.StatusBadRequest)
}

func (c *Controller) ResendVerification(ctx *fiber.Ctx) error {
	payload := resendPayload{}
	if err := ctx.BodyParser(&payload); err != nil {
		return c.badRequest(ctx, err)
	}

	ok, err := c.lifecycle.ResendVerification(ctx.UserContext(), payload.Email)
	if err != nil {
		return c.fail(ctx, err)
	}
	return result(ctx, ok, http.StatusAccepted, http.StatusConflict)
}

func (c *Controller) Login(ctx *fiber.Ctx) error {
	payload := loginPayload{}
	if err := ctx.BodyParser(&payload); err != nil {
		return c.badRequest(ctx, err)
	}

	identity, err := c.lifecycle.VerifyIdentity(ctx.UserContext(), payload.Identifier, payload.Password)
	if err != nil {
		return c.fail(ctx, err)
	}

	return ctx.Status(http.StatusOK).JSON(IdentityResponse{
		ID:     identity.ID(),
		Email:  identity.Email(),
		Name:   identity.Name(),
		Status: identity.Status().String(),
	})
}

func (c *Controller) RequestPasswordReset(ctx *fiber.Ctx) error {
	payload := account.PasswordResetRequestMessage{}
	if err := ctx.BodyParser(&payload); err != nil {
		return c.badRequest(ctx, err)
	}

	ok, err := c.lifecycle.RequestPasswordReset(ctx.UserContext(), payload)
	if err != nil {
		return c.fail(ctx, err)
	}
	return result(ctx, ok, http.StatusAccepted, http.StatusBadGateway)
}

func (c *Controller) CheckResetToken(ctx *fiber.Ctx) error {
	ok, err := c.lifecycle.CheckResetToken(ctx.UserContext(), ctx.Params("token"))
	if err != nil {
		return c.fail(ctx, err)
	}
	return result(ctx, ok, http.StatusOK, http.StatusNotFound)
}

func (c *Controller) ResetPassword(ctx *fiber.Ctx) error {
	payload := resetPayload{}
	if err := ctx.BodyParser(&payload); err != nil {
		return c.badRequest(ctx, err)
	}

	ok, err := c.lifecycle.ResetPassword(ctx.UserContext(), account.FinalizePasswordResetMessage{
		Token:    ctx.Params("token"),
		Password: payload.Password,
	})
	if err != nil {
		return c.fail(ctx, err)
	}
	return result(ctx, ok, http.StatusOK, http.StatusBadRequest)
}

func result(ctx *fiber.Ctx, ok bool, successStatus, failureStatus int) error {
	status := successStatus
	if !ok {
		status = failureStatus
	}
	return ctx.Status(status).JSON(ResultResponse{Success: ok})
}

func (c *Controller) badRequest(ctx *fiber.Ctx, err error) error {
	return c.fail(ctx, goerrors.Wrap(err, goerrors.CategoryBadInput, "malformed request body").
		WithCode(goerrors.CodeBadRequest))
}

func (c *Controller) fail(ctx *fiber.Ctx, err error) error {
	status, body := ErrorPayload(err)
	if status >= http.StatusInternalServerError {
		c.logger.Error("request %s %s failed: %v", ctx.Method(), ctx.Path(), err)
	}
	return ctx.Status(status).JSON(body)
}

// ErrorPayload maps err onto an HTTP status and response body
func ErrorPayload(err error) (int, ErrorResponse) {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		return http.StatusInternalServerError, ErrorResponse{Error: ErrorBody{
			Message: "An unexpected server error occurred",
		}}
	}

	status := richErr.Code
	if status == 0 {
		status = statusForCategory(richErr.Category)
	}

	message := richErr.Message
	if status >= http.StatusInternalServerError {
		message = "An unexpected server error occurred"
	}

	return status, ErrorResponse{Error: ErrorBody{
		Message:  message,
		TextCode: richErr.TextCode,
		Category: fmt.Sprint(richErr.Category),
	}}
}

func statusForCategory(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryValidation, goerrors.CategoryBadInput:
		return http.StatusBadRequest
	case goerrors.CategoryAuth:
		return http.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return http.StatusForbidden
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryConflict:
		return http.StatusConflict
	case goerrors.CategoryOperation:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

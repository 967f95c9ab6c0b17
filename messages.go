package account

import (
	"bytes"
	"io/fs"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/template/django/v3"
	goerrors "github.com/goliatone/go-errors"
)

const (
	TemplateVerification  = "verification"
	TemplatePasswordReset = "password_reset"

	SubjectVerification  = "Confirm your email address"
	SubjectPasswordReset = "Reset your password"
)

// MessageRenderer turns a notification template and its data into a body
type MessageRenderer interface {
	Render(name string, data map[string]any) (string, error)
}

// MessageRendererFunc adapts a function to the MessageRenderer interface
type MessageRendererFunc func(name string, data map[string]any) (string, error)

func (f MessageRendererFunc) Render(name string, data map[string]any) (string, error) {
	return f(name, data)
}

// TemplateRenderer renders notification bodies with the django engine.
// Templates are loaded lazily on first use.
type TemplateRenderer struct {
	engine *django.Engine
	once   sync.Once
	err    error
}

// NewTemplateRenderer loads templates with the given extension from fsys
func NewTemplateRenderer(fsys fs.FS, extension string) *TemplateRenderer {
	return &TemplateRenderer{
		engine: django.NewFileSystem(http.FS(fsys), extension),
	}
}

// DefaultMessageRenderer uses the embedded email templates
func DefaultMessageRenderer() *TemplateRenderer {
	sub, err := fs.Sub(emailTemplatesFS, "data/templates/emails")
	if err != nil {
		return &TemplateRenderer{err: err}
	}
	return NewTemplateRenderer(sub, ".txt")
}

func (r *TemplateRenderer) Render(name string, data map[string]any) (string, error) {
	if r.engine == nil {
		if r.err == nil {
			r.err = goerrors.New("template engine not configured", goerrors.CategoryInternal)
		}
		return "", r.err
	}

	r.once.Do(func() {
		r.err = r.engine.Load()
	})
	if r.err != nil {
		return "", goerrors.Wrap(r.err, goerrors.CategoryInternal, "failed to load message templates")
	}

	var buf bytes.Buffer
	if err := r.engine.Render(&buf, name, data); err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to render message template").
			WithMetadata(map[string]any{"template": name})
	}

	return strings.TrimSpace(buf.String()) + "\n", nil
}

// LinkBuilder creates the URLs embedded in verification and reset messages
type LinkBuilder struct {
	BaseURL           string
	VerificationPath  string
	PasswordResetPath string
}

func DefaultLinkBuilder(baseURL string) LinkBuilder {
	return LinkBuilder{
		BaseURL:           baseURL,
		VerificationPath:  "/verify",
		PasswordResetPath: "/password-reset",
	}
}

func (b LinkBuilder) VerificationLink(token string) string {
	return b.join(b.VerificationPath, token)
}

func (b LinkBuilder) PasswordResetLink(token string) string {
	return b.join(b.PasswordResetPath, token)
}

func (b LinkBuilder) join(p, token string) string {
	base := strings.TrimRight(b.BaseURL, "/")
	if p != "" && !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return base + strings.TrimRight(p, "/") + "/" + token
}

func verificationMessageData(acc *Account, link string) map[string]any {
	return map[string]any{
		"name":  acc.Name,
		"email": acc.Email,
		"link":  link,
	}
}

func passwordResetMessageData(acc *Account, link string) map[string]any {
	expires := ""
	if acc.ResetTokenExpiresAt != nil {
		expires = acc.ResetTokenExpiresAt.UTC().Format(time.RFC1123)
	}
	return map[string]any{
		"name":       acc.Name,
		"email":      acc.Email,
		"link":       link,
		"expires_at": expires,
	}
}

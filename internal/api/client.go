// Package api wraps the remote SaveLook HTTP API. The backend is an
// opaque collaborator: user directory, verification-code issuance,
// registration and profile updates all live behind it and are consumed
// here only through their request/response contracts.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eduarcas/savelook/internal/models"
)

// Client defines the remote operations the application depends on.
type Client interface {
	// Users fetches the full user directory.
	Users(ctx context.Context) ([]models.UserSession, error)
	// UserByEmail fetches the directory and returns the record whose
	// correo matches exactly, or ErrUserNotFound.
	UserByEmail(ctx context.Context, correo string) (*models.UserSession, error)
	// SendVerificationCode asks the backend to email a code to correo.
	SendVerificationCode(ctx context.Context, correo string) error
	// CreateUser submits a full registration, including the code.
	CreateUser(ctx context.Context, reg models.Registration) error
	// UpdateUser applies a partial profile update keyed by correo.
	UpdateUser(ctx context.Context, correo string, patch models.UserPatch) error
}

// ErrUserNotFound is returned by UserByEmail when no record matches.
var ErrUserNotFound = errors.New("user not found")

// RequestError is a failed remote call: a non-success HTTP response, a
// malformed body, or an unreachable server. Message carries the
// server-provided error text when the response included one; otherwise
// it is empty and callers fall back to a generic connectivity notice.
type RequestError struct {
	// Op is the API path the request targeted.
	Op string
	// Status is the HTTP status code, or 0 if no response was received.
	Status int
	// Message is the server-provided error message, if any.
	Message string
	// Err is the underlying transport or decode error, if any.
	Err error
}

func (e *RequestError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: status %d", e.Op, e.Status)
}

func (e *RequestError) Unwrap() error { return e.Err }

// defaultTimeout bounds every remote call so an unresponsive server
// cannot stall a loading state indefinitely.
const defaultTimeout = 30 * time.Second

// HTTPClient is the Client implementation over net/http.
type HTTPClient struct {
	baseURL string
	client  *http.Client
	log     *zap.Logger
}

// New returns an HTTPClient for the given base URL.
func New(baseURL string, log *zap.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: defaultTimeout},
		log:     log,
	}
}

// errBody is the error envelope the backend returns on failure.
type errBody struct {
	Error string `json:"error"`
}

// do issues one JSON request and decodes the response into out when
// out is non-nil. All failures come back as *RequestError.
func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return &RequestError{Op: path, Err: err}
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return &RequestError{Op: path, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	reqID := uuid.NewString()
	req.Header.Set("X-Request-Id", reqID)

	c.log.Debug("api request", zap.String("method", method), zap.String("path", path), zap.String("request_id", reqID))

	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Warn("api request failed", zap.String("path", path), zap.Error(err))
		return &RequestError{Op: path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		reqErr := &RequestError{Op: path, Status: resp.StatusCode}
		var eb errBody
		if err := json.NewDecoder(resp.Body).Decode(&eb); err == nil {
			reqErr.Message = eb.Error
		}
		c.log.Warn("api request rejected",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("request_id", reqID),
		)
		return reqErr
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &RequestError{Op: path, Status: resp.StatusCode, Err: err}
		}
	}
	return nil
}

// Users fetches the full user directory via GET /get_users.
func (c *HTTPClient) Users(ctx context.Context) ([]models.UserSession, error) {
	var users []models.UserSession
	if err := c.do(ctx, http.MethodGet, "/get_users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// UserByEmail returns the directory record matching correo. The session
// is the source of truth for identity, so callers always filter by the
// session's email rather than taking an arbitrary record.
func (c *HTTPClient) UserByEmail(ctx context.Context, correo string) (*models.UserSession, error) {
	users, err := c.Users(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].Correo == correo {
			return &users[i], nil
		}
	}
	return nil, ErrUserNotFound
}

// SendVerificationCode POSTs /send_verification_code for correo.
func (c *HTTPClient) SendVerificationCode(ctx context.Context, correo string) error {
	payload := map[string]string{"correo": correo}
	return c.do(ctx, http.MethodPost, "/send_verification_code", payload, nil)
}

// CreateUser POSTs the full registration payload to /up_user.
func (c *HTTPClient) CreateUser(ctx context.Context, reg models.Registration) error {
	return c.do(ctx, http.MethodPost, "/up_user", reg, nil)
}

// updatePayload is a UserPatch addressed by correo, as /update_user expects.
type updatePayload struct {
	Correo string `json:"correo"`
	models.UserPatch
}

// UpdateUser PUTs a partial update to /update_user, keyed by correo.
func (c *HTTPClient) UpdateUser(ctx context.Context, correo string, patch models.UserPatch) error {
	return c.do(ctx, http.MethodPut, "/update_user", updatePayload{Correo: correo, UserPatch: patch}, nil)
}

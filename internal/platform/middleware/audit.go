package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/clinic/backoffice/internal/platform/auth"
)

// AuditEntry records one change made through the API.
type AuditEntry struct {
	Timestamp  time.Time
	RequestID  string
	ClinicID   string
	UserID     string
	UserRoles  []string
	Action     string // create, update, delete
	Resource   string
	ResourceID string
	Path       string
	StatusCode int
}

// AuditRecorder persists audit entries.
type AuditRecorder interface {
	RecordChange(entry AuditEntry) error
}

// AuditRecorderFunc is a function adapter for AuditRecorder.
type AuditRecorderFunc func(entry AuditEntry) error

func (f AuditRecorderFunc) RecordChange(entry AuditEntry) error {
	return f(entry)
}

// Audit logs every successful write under /api/v1 with the acting user and
// clinic. Reads are not audited. Recorder errors are logged and never fail
// the request.
func Audit(logger zerolog.Logger, recorders ...AuditRecorder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			action := methodToAction(req.Method)
			if action == "" || !strings.HasPrefix(req.URL.Path, "/api/v1/") {
				return next(c)
			}

			err := next(c)
			status := c.Response().Status
			if err != nil || status >= 400 {
				return err
			}

			ctx := c.Request().Context()
			resource, id := splitResource(req.URL.Path)
			rid, _ := c.Get("request_id").(string)
			clinic, _ := c.Get("clinic_id").(string)
			entry := AuditEntry{
				Timestamp:  time.Now().UTC(),
				RequestID:  rid,
				ClinicID:   clinic,
				UserID:     auth.UserIDFromContext(ctx),
				UserRoles:  auth.RolesFromContext(ctx),
				Action:     action,
				Resource:   resource,
				ResourceID: id,
				Path:       req.URL.Path,
				StatusCode: status,
			}

			logger.Info().
				Str("request_id", entry.RequestID).
				Str("clinic_id", entry.ClinicID).
				Str("user_id", entry.UserID).
				Strs("roles", entry.UserRoles).
				Str("action", entry.Action).
				Str("resource", entry.Resource).
				Str("resource_id", entry.ResourceID).
				Int("status", entry.StatusCode).
				Msg("audit")

			for _, r := range recorders {
				if rerr := r.RecordChange(entry); rerr != nil {
					logger.Error().Err(rerr).Str("request_id", entry.RequestID).Msg("audit recorder failed")
				}
			}
			return nil
		}
	}
}

func methodToAction(method string) string {
	switch method {
	case http.MethodPost:
		return "create"
	case http.MethodPut, http.MethodPatch:
		return "update"
	case http.MethodDelete:
		return "delete"
	}
	return ""
}

// splitResource returns the first path segment after /api/v1/ and, when
// present, the second one as its id.
func splitResource(path string) (resource, id string) {
	parts := strings.Split(strings.Trim(strings.TrimPrefix(path, "/api/v1/"), "/"), "/")
	if len(parts) > 0 {
		resource = parts[0]
	}
	if len(parts) > 1 {
		id = parts[1]
	}
	return resource, id
}

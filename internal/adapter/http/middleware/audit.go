package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"money-tracker/internal/core/domain"
	"money-tracker/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CtxResourceID is set by handlers that create a resource so the audit
// entry can reference it.
const CtxResourceID = "resource_id"

// AuditLog creates an audit middleware that logs successful write operations.
// It maps route templates and methods to audit actions.
func AuditLog(auditSvc ports.AuditService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		status := c.Writer.Status()
		if status < 200 || status >= 300 {
			return
		}
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			return
		}

		action, resourceType := mapRouteToAction(c.FullPath(), c.Request.Method)
		if action == "" {
			return
		}

		var userID *uuid.UUID
		if id, ok := UserID(c); ok {
			userID = &id
		}

		resourceID := c.GetString(CtxResourceID)
		if resourceID == "" {
			resourceID = c.Param("id")
		}

		details, _ := json.Marshal(map[string]interface{}{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
			"status": status,
		})

		auditSvc.Log(c.Request.Context(), &domain.AuditLog{
			ID:           uuid.New(),
			UserID:       userID,
			Action:       action,
			ResourceType: resourceType,
			ResourceID:   resourceID,
			IPAddress:    c.ClientIP(),
			Details:      string(details),
			CreatedAt:    time.Now().UTC(),
		})
	}
}

func mapRouteToAction(route, method string) (domain.AuditAction, string) {
	switch {
	case route == "/api/v1/auth/register" && method == http.MethodPost:
		return domain.AuditActionRegister, "user"
	case route == "/api/v1/auth/login" && method == http.MethodPost:
		return domain.AuditActionLogin, "session"
	case route == "/api/v1/wallets" && method == http.MethodPost:
		return domain.AuditActionCreateWallet, "wallet"
	case route == "/api/v1/people" && method == http.MethodPost:
		return domain.AuditActionCreatePerson, "person"
	case route == "/api/v1/people/:id" && method == http.MethodDelete:
		return domain.AuditActionDeletePerson, "person"
	case route == "/api/v1/transactions" && method == http.MethodPost:
		return domain.AuditActionApplyTransaction, "transaction"
	case route == "/api/v1/transactions/:id/reverse" && method == http.MethodPost:
		return domain.AuditActionReverseTransaction, "transaction"
	}
	return "", ""
}

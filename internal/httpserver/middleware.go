package httpserver

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"mail-dispatch-service/internal/util"
	"mail-dispatch-service/pkg/trace"
)

// TraceMiddleware attaches an incoming (or fresh) trace id to the request
// context so every log line of the request carries it.
func TraceMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader(trace.HeaderName())
		if traceID == "" {
			traceID = trace.GenerateTraceID()
		}

		ctx := trace.WithContext(c.Request.Context(), traceID)
		c.Request = c.Request.WithContext(ctx)
		c.Header(trace.HeaderName(), traceID)

		c.Next()
	}
}

// AuthMiddleware validates the bearer token and stores the sender
// identity in the context for handlers.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := util.ExtractToken(c.Request)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			c.Abort()
			return
		}

		email, name, err := util.ParseJWT(token, jwtSecret)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		c.Set("sender_email", strings.ToLower(email))
		c.Set("sender_name", name)

		c.Next()
	}
}

// RequireSenderDomain rejects authenticated senders whose address is
// outside the organizational domain allow-list, before any validation of
// the request body happens.
func RequireSenderDomain(allowedDomains []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		senderEmail := c.GetString("sender_email")
		if senderEmail == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "sender not authenticated"})
			c.Abort()
			return
		}

		at := strings.LastIndex(senderEmail, "@")
		if at < 0 {
			c.JSON(http.StatusForbidden, gin.H{"error": "sender domain not allowed"})
			c.Abort()
			return
		}
		domain := senderEmail[at+1:]

		for _, allowed := range allowedDomains {
			if strings.EqualFold(domain, allowed) {
				c.Next()
				return
			}
		}

		c.JSON(http.StatusForbidden, gin.H{"error": "sender domain not allowed"})
		c.Abort()
	}
}

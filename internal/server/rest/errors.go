package rest

import (
	"time"

	"github.com/dmitrijs2005/userservice/internal/server/apierror"
	"github.com/gin-gonic/gin"
)

// ErrorResponse is the body of every error reply. FieldErrors is present
// only for validation failures.
type ErrorResponse struct {
	Status      int               `json:"status"`
	Error       string            `json:"error"`
	Message     string            `json:"message"`
	FieldErrors map[string]string `json:"fieldErrors,omitempty"`
	Timestamp   string            `json:"timestamp"`
}

// now is swapped in tests.
var now = time.Now

// respondError writes the client-facing problem for err. Internal failures
// are also recorded on the context so RequestLogger reports their cause,
// which the client never sees.
func respondError(c *gin.Context, err error) {
	p := apierror.FromError(err)
	if p.Internal() {
		_ = c.Error(err)
	}
	writeProblem(c, p.HTTPStatus, p.Label, p.Message, p.Fields)
}

func writeProblem(c *gin.Context, status int, label, message string, fields map[string]string) {
	c.JSON(status, ErrorResponse{
		Status:      status,
		Error:       label,
		Message:     message,
		FieldErrors: fields,
		Timestamp:   now().UTC().Format(time.RFC3339),
	})
}

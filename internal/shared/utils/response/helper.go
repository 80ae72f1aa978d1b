package response

import (
	"net/http"

	"ticketly/internal/shared/apperr"

	"github.com/gin-gonic/gin"
)

func RespondJSON(c *gin.Context, status string, code int, message string, data interface{}, errors interface{}) {
	c.JSON(code, StandardApiResponse{
		Status:     status,
		StatusCode: code,
		Message:    message,
		Data:       data,
		Errors:     errors,
	})
}

func Success(c *gin.Context, code int, message string, data interface{}) {
	RespondJSON(c, "success", code, message, data, nil)
}

// Error renders a failed operation. Classified errors carry their own
// user-presentable message and status; anything else becomes a generic 500.
func Error(c *gin.Context, err error) {
	code := apperr.HTTPStatus(err)
	message := apperr.Message(err)
	if code == http.StatusInternalServerError {
		message = "internal error"
	}
	RespondJSON(c, "error", code, message, nil, nil)
}

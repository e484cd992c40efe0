package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pagesync/internal/app/dto"
	"pagesync/internal/domain"
)

var statusByCode = map[domain.ErrorCode]int{
	domain.ErrorCodeNotFound:    http.StatusNotFound,
	domain.ErrorCodeBadRequest:  http.StatusBadRequest,
	domain.ErrorCodeConflict:    http.StatusConflict,
	domain.ErrorCodeUnavailable: http.StatusServiceUnavailable,
}

// StatusFor returns the HTTP status for a domain error code; unknown codes map to 500.
func StatusFor(code domain.ErrorCode) int {
	if s, ok := statusByCode[code]; ok {
		return s
	}
	return http.StatusInternalServerError
}

func (h *Handler) writeError(c *gin.Context, err error) {
	var de *domain.DomainError
	if errors.As(err, &de) {
		if status := StatusFor(de.Code); status != http.StatusInternalServerError {
			c.JSON(status, dto.ErrorResponse{
				Error: dto.Error{
					Code:    string(de.Code),
					Message: de.Message,
				},
			})
			return
		}
	}

	h.Log.Error("internal error", zap.Error(err))
	c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
		Error: dto.Error{
			Code:    "INTERNAL_ERROR",
			Message: "internal server error",
		},
	})
}

func (h *Handler) badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{
		Error: dto.Error{
			Code:    string(domain.ErrorCodeBadRequest),
			Message: msg,
		},
	})
}

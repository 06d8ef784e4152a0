package handlers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	appErrors "github.com/pharmagdd/catalog/pkg/errors"
	"github.com/pharmagdd/catalog/pkg/response"
	appValidator "github.com/pharmagdd/catalog/pkg/validator"
)

// bindAndValidate binds the JSON payload into dest and runs struct validation
// rules. Malformed JSON yields a 400; rule failures yield a 422 with one
// message per failing field. When either happens an error response is already
// written and false is returned.
func bindAndValidate[T any](c *gin.Context, dest *T) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.NewBadRequest("invalid JSON payload"))
		return false
	}

	if err := appValidator.ValidateStruct(dest); err != nil {
		var ve appValidator.ValidationErrors
		if errors.As(err, &ve) {
			response.Error(c, appErrors.NewValidationFailed(ve.FieldMap()))
		} else {
			response.Error(c, appErrors.NewBadRequest("invalid request payload"))
		}
		return false
	}

	return true
}

func parseIntQuery(c *gin.Context, key string, fallback int) int {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func parseBoolQuery(c *gin.Context, key string) bool {
	value := strings.TrimSpace(strings.ToLower(c.Query(key)))
	return value == "1" || value == "true"
}

package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	appErrors "github.com/pharmagdd/catalog/pkg/errors"
)

func performRequest(t *testing.T, handler gin.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()

	gin.SetMode(gin.TestMode)
	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	handler(c)
	return recorder
}

func TestSuccessWrapsPayload(t *testing.T) {
	recorder := performRequest(t, func(c *gin.Context) {
		Success(c, http.StatusOK, gin.H{"name": "Paracétamol 500mg"})
	})

	require.Equal(t, http.StatusOK, recorder.Code)

	var body Response
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	require.True(t, body.Success)
	require.Nil(t, body.Error)
}

func TestErrorRendersPermissionDenied(t *testing.T) {
	recorder := performRequest(t, func(c *gin.Context) {
		Error(c, appErrors.NewPermissionDenied("products.price.update"))
	})

	require.Equal(t, http.StatusForbidden, recorder.Code)

	var body Response
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	require.False(t, body.Success)
	require.NotNil(t, body.Error)
	require.Equal(t, "products.price.update", body.Error.RequiredPermission)
}

func TestErrorDefaultsToInternalServer(t *testing.T) {
	recorder := performRequest(t, func(c *gin.Context) {
		Error(c, errors.New("database exploded"))
	})

	require.Equal(t, http.StatusInternalServerError, recorder.Code)

	var body Response
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	require.Equal(t, appErrors.ErrInternalServer.Code, body.Error.Code)
	// Internal detail must never reach the client.
	require.NotContains(t, recorder.Body.String(), "database exploded")
}

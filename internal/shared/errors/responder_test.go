package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

type fakeTransitionErr struct{}

func (fakeTransitionErr) Error() string          { return "supplier may not move in-supply to in-distribution" }
func (fakeTransitionErr) TransitionFrom() string { return "in-supply" }
func (fakeTransitionErr) TransitionTo() string   { return "in-distribution" }
func (fakeTransitionErr) TransitionRole() string { return "supplier" }
func (fakeTransitionErr) Unwrap() error          { return ErrInvalidTransition }

func TestProblemFromError_Kinds(t *testing.T) {
	cases := []struct {
		err    error
		status int
		typ    string
	}{
		{fmt.Errorf("%w: product missing", ErrNotFound), http.StatusNotFound, TypeNotFound},
		{fmt.Errorf("%w: location is required", ErrValidation), http.StatusBadRequest, TypeValidation},
		{fmt.Errorf("%w: customer", ErrForbidden), http.StatusForbidden, TypeForbidden},
		{fmt.Errorf("%w: stale", ErrConflict), http.StatusConflict, TypeConflict},
		{fmt.Errorf("%w: not awaiting check", ErrInvalidState), http.StatusUnprocessableEntity, TypeInvalidState},
		{fakeTransitionErr{}, http.StatusUnprocessableEntity, TypeInvalidTransition},
	}
	for _, tc := range cases {
		problem, ok := ProblemFromError(tc.err)
		require.True(t, ok, tc.err.Error())
		require.Equal(t, tc.status, problem.Status)
		require.Equal(t, tc.typ, problem.Type)
		require.Equal(t, tc.status, HTTPStatusFromError(tc.err))
	}

	_, ok := ProblemFromError(fmt.Errorf("boom"))
	require.False(t, ok)
}

func TestProblemFromError_TransitionExtensions(t *testing.T) {
	problem, ok := ProblemFromError(fmt.Errorf("product p-1: %w", fakeTransitionErr{}))
	require.True(t, ok)
	require.Equal(t, "in-supply", problem.Extensions["from"])
	require.Equal(t, "in-distribution", problem.Extensions["to"])
	require.Equal(t, "supplier", problem.Extensions["role"])
}

func TestChainedResponder_UsesMappersFirst(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/products/p-1", nil)

	responder := NewChainedResponder("https://errors.example", func(err error) (ProblemDetail, bool) {
		return ProblemNotFound.WithExtension("productId", "p-1"), true
	})
	responder.RespondError(c, fmt.Errorf("anything"))

	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, ContentTypeProblemJSON, w.Header().Get("Content-Type"))
	var body ProblemDetail
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "https://errors.example"+TypeNotFound, body.Type)
	require.Equal(t, "/api/products/p-1", body.Instance)
	require.Equal(t, "p-1", body.Extensions["productId"])
}

func TestResponder_UnknownErrorIsInternal(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)

	RespondError(c, fmt.Errorf("db down"))
	require.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestKindName_RoundTrip(t *testing.T) {
	err := fmt.Errorf("%w: product p-1 changed", ErrConflict)
	name := KindName(err)
	require.Equal(t, "Conflict", name)
	kind, ok := KindByName(name)
	require.True(t, ok)
	require.ErrorIs(t, kind, ErrConflict)

	require.Empty(t, KindName(fmt.Errorf("boom")))
	_, ok = KindByName("Nope")
	require.False(t, ok)
}

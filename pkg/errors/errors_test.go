package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_StatusCode(t *testing.T) {
	tests := []struct {
		err  *AppError
		want int
	}{
		{NewBadRequestError("bad"), http.StatusBadRequest},
		{NewNotFoundError("page"), http.StatusNotFound},
		{NewRecipeNotFoundError("a.jpg"), http.StatusNotFound},
		{NewCorruptRecordError(stderrors.New("eof")), http.StatusInternalServerError},
		{NewInvalidCountsError(stderrors.New("eof")), http.StatusInternalServerError},
		{NewStorageError("write", stderrors.New("disk full")), http.StatusInternalServerError},
		{NewInternalError(""), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.err.StatusCode(), string(tt.err.Code))
	}
}

func TestAppError_UnwrapKeepsCause(t *testing.T) {
	cause := stderrors.New("line 3: unexpected end of JSON input")
	err := fmt.Errorf("lookup: %w", NewCorruptRecordError(cause))

	assert.ErrorIs(t, err, cause)
	assert.True(t, Is(err, CodeCorruptRecord))
	assert.Equal(t, CodeCorruptRecord, GetCode(err))
	assert.Equal(t, http.StatusInternalServerError, StatusCode(err))
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(nil, "ignored"))

	notFound := NewRecipeNotFoundError("x.png")
	assert.Same(t, notFound, Wrap(notFound, "ignored"))

	wrapped := Wrap(stderrors.New("boom"), "render failed")
	assert.Equal(t, CodeInternal, wrapped.Code)
	assert.Equal(t, "render failed", wrapped.Message)
}

func TestAppError_Error(t *testing.T) {
	err := NewRecipeNotFoundError("pasta.jpg")

	assert.Equal(t, "RECIPE_NOT_FOUND: Recipe not found (No recipe stored for pasta.jpg)", err.Error())
	assert.Equal(t, "pasta.jpg", err.Metadata["filename"])
}

func TestStatusCode_PlainError(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, StatusCode(stderrors.New("x")))
}

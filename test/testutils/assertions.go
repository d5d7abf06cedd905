// Package testutils provides custom assertions for testing
package testutils

import (
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pastaboard/pastaboard/internal/domain/recipe"
)

// EntryAssertions provides entry-specific assertion methods
type EntryAssertions struct {
	t *testing.T
}

// NewEntryAssertions creates a new entry assertions helper
func NewEntryAssertions(t *testing.T) *EntryAssertions {
	return &EntryAssertions{t: t}
}

// ValidEntry asserts the entry has a filename and a well-formed timestamp
func (ea *EntryAssertions) ValidEntry(e *recipe.Entry, msgAndArgs ...interface{}) {
	require.NotNil(ea.t, e, "Entry should not be nil")

	assert.NotEmpty(ea.t, e.Filename, "Entry filename should not be empty")
	assert.Len(ea.t, e.Timestamp, len(recipe.TimestampLayout), msgAndArgs...)
	assert.NotNil(ea.t, e.Counts, "Entry counts should not be nil")
}

// SameContent asserts two entries carry the same user data
func (ea *EntryAssertions) SameContent(expected, actual *recipe.Entry, msgAndArgs ...interface{}) {
	require.NotNil(ea.t, actual, "Entry should not be nil")

	assert.Equal(ea.t, expected.Filename, actual.Filename, msgAndArgs...)
	assert.Equal(ea.t, expected.Title, actual.Title, msgAndArgs...)
	assert.Equal(ea.t, expected.Author, actual.Author, msgAndArgs...)
	assert.Equal(ea.t, expected.Content, actual.Content, msgAndArgs...)
	assert.Equal(ea.t, expected.Counts, actual.Counts, msgAndArgs...)
}

// HTTPAssertions provides HTTP-specific assertion methods
type HTTPAssertions struct {
	t *testing.T
}

// NewHTTPAssertions creates a new HTTP assertions helper
func NewHTTPAssertions(t *testing.T) *HTTPAssertions {
	return &HTTPAssertions{t: t}
}

// StatusCode asserts the HTTP status code
func (ha *HTTPAssertions) StatusCode(resp *http.Response, expectedCode int, msgAndArgs ...interface{}) {
	require.NotNil(ha.t, resp, "Response should not be nil")
	assert.Equal(ha.t, expectedCode, resp.StatusCode, msgAndArgs...)
}

// Redirect asserts a 303 redirect to location
func (ha *HTTPAssertions) Redirect(resp *http.Response, location string, msgAndArgs ...interface{}) {
	ha.StatusCode(resp, http.StatusSeeOther, msgAndArgs...)
	assert.Equal(ha.t, location, resp.Header.Get("Location"), msgAndArgs...)
}

// Header asserts that a header exists with expected value
func (ha *HTTPAssertions) Header(resp *http.Response, headerName, expectedValue string, msgAndArgs ...interface{}) {
	require.NotNil(ha.t, resp, "Response should not be nil")

	actualValue := resp.Header.Get(headerName)
	assert.Equal(ha.t, expectedValue, actualValue, msgAndArgs...)
}

// Body reads and returns the response body
func (ha *HTTPAssertions) Body(resp *http.Response) string {
	require.NotNil(ha.t, resp, "Response should not be nil")

	data, err := io.ReadAll(resp.Body)
	require.NoError(ha.t, err, "Response body should be readable")
	return string(data)
}

// BodyContains asserts the body contains every fragment
func (ha *HTTPAssertions) BodyContains(resp *http.Response, fragments ...string) string {
	body := ha.Body(resp)
	for _, fragment := range fragments {
		assert.Contains(ha.t, body, fragment)
	}
	return body
}

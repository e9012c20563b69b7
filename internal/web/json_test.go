package web

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSON(t *testing.T) {
	w := httptest.NewRecorder()
	JSON(w, 201, map[string]any{"ok": true})

	assert.Equal(t, 201, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"ok":true}`, w.Body.String())
}

func TestDecodeJSON(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"EPCOT"}`))
	var in struct {
		Name string `json:"name"`
	}
	require.NoError(t, DecodeJSON(r, &in))
	assert.Equal(t, "EPCOT", in.Name)

	r = httptest.NewRequest("POST", "/", strings.NewReader(`not json`))
	assert.Error(t, DecodeJSON(r, &in))
}

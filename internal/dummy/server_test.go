package dummy

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEcho_JSON(t *testing.T) {
	srv := httptest.NewServer(NewMux())
	defer srv.Close()

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/echo", strings.NewReader(`{"a":1}`))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Trace", "abc")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var e Echo
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&e))

	assert.Equal(t, http.MethodPost, e.Method)
	assert.Equal(t, "abc", e.Headers["X-Trace"])
	assert.Equal(t, map[string]any{"a": float64(1)}, e.JSON)
}

func TestEcho_Form(t *testing.T) {
	srv := httptest.NewServer(NewMux())
	defer srv.Close()

	resp, err := http.PostForm(srv.URL+"/echo", url.Values{"k": {"v"}})
	require.NoError(t, err)
	defer resp.Body.Close()

	var e Echo
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&e))

	assert.Equal(t, []string{"v"}, e.Form["k"])
}

func TestStatus(t *testing.T) {
	srv := httptest.NewServer(NewMux())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/status/418")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusTeapot, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/status/abc")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

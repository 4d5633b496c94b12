package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoJSON_RoundTrip(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/login", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "yes", r.Header.Get("X-Extra"))

		var in map[string]string
		_ = json.NewDecoder(r.Body).Decode(&in)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"echo": in["email"]})
	}))
	defer ts.Close()

	c, err := New(time.Second).WithBaseURL(ts.URL + "/api/")
	require.NoError(t, err)

	var out struct {
		Echo string `json:"echo"`
	}
	err = c.DoJSON(context.Background(), http.MethodPost, "auth/login",
		map[string]string{"X-Extra": "yes", " ": "skip"},
		map[string]string{"email": "ana@mail.com"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "ana@mail.com", out.Echo)
}

func TestDoJSON_Non2xxReturnsHTTPError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"success":false,"message":"bad credentials"}`))
	}))
	defer ts.Close()

	err := New(time.Second).DoJSON(context.Background(), http.MethodGet, ts.URL, nil, nil, nil)

	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusUnauthorized, httpErr.StatusCode)
	assert.Contains(t, httpErr.Body, "bad credentials")
}

func TestDoJSON_RelativePathWithoutBaseURL(t *testing.T) {
	err := New(time.Second).DoJSON(context.Background(), http.MethodGet, "/x", nil, nil, nil)
	require.Error(t, err)
}

func TestWithBaseURL_Invalid(t *testing.T) {
	_, err := New(time.Second).WithBaseURL("::nope")
	require.Error(t, err)
}

func TestDoMultipart_SendsFieldsAndFiles(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			return
		}

		assert.JSONEq(t, `{"phone":"1122334455"}`, r.FormValue("request"))

		f, hdr, err := r.FormFile("documentImage")
		if !assert.NoError(t, err) {
			return
		}
		defer f.Close()
		b, _ := io.ReadAll(f)
		assert.Equal(t, "dni.png", hdr.Filename)
		assert.Equal(t, "PNGDATA", string(b))

		_ = json.NewEncoder(w).Encode(map[string]any{"success": true})
	}))
	defer ts.Close()

	var out struct {
		Success bool `json:"success"`
	}
	err := New(time.Second).DoMultipart(context.Background(), ts.URL, nil, []Part{
		{Name: "request", ContentType: "application/json", Data: []byte(`{"phone":"1122334455"}`)},
		{Name: "documentImage", FileName: "dni.png", Data: []byte("PNGDATA")},
		{Name: "", Data: []byte("ignored")},
	}, &out)
	require.NoError(t, err)
	assert.True(t, out.Success)
}

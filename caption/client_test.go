package caption

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digiclo/clothtagger/service"
)

func newServer(t *testing.T, status int, body string, check func(r *http.Request, req captionReq)) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			var req captionReq
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			check(r, req)
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestClient_Caption(t *testing.T) {
	t.Parallel()

	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	server := newServer(t, http.StatusOK, `[{"generated_text": "the clothing item is a red dress"}]`, func(r *http.Request, req captionReq) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "the clothing item is", req.Parameters.Text)
		assert.Equal(t, 50, req.Parameters.MaxNewTokens)
		assert.Equal(t, 2, req.Parameters.NoRepeatNgramSize)
		assert.True(t, req.Parameters.EarlyStopping)

		data, err := base64.StdEncoding.DecodeString(req.Inputs)
		require.NoError(t, err)
		decoded, err := png.Decode(bytes.NewReader(data))
		require.NoError(t, err)
		assert.Equal(t, img.Bounds(), decoded.Bounds())
	})

	c := NewClient(Options{URL: server.URL, Token: "secret", MaxNewTokens: 50, NoRepeatNgramSize: 2, Timeout: time.Second})
	got, err := c.Caption(context.Background(), img, "the clothing item is")
	require.NoError(t, err)
	assert.Equal(t, "the clothing item is a red dress", got)
}

func TestClient_Caption_Responses(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		status     int
		body       string
		want       string
		wantFailed bool
		wantErr    bool
	}{
		{name: "object", status: 200, body: `{"generated_text": " a blue coat "}`, want: "a blue coat"},
		{name: "list takes first", status: 200, body: `[{"generated_text": "one"}, {"generated_text": "two"}]`, want: "one"},
		{name: "empty list", status: 200, body: `[]`, wantFailed: true},
		{name: "missing field", status: 200, body: `{"caption": "a coat"}`, wantFailed: true},
		{name: "null field", status: 200, body: `{"generated_text": null}`, wantFailed: true},
		{name: "blank text", status: 200, body: `{"generated_text": "   "}`, wantFailed: true},
		{name: "empty body", status: 200, body: ``, wantFailed: true},
		{name: "invalid json", status: 200, body: `<html>`, wantFailed: true},
		{name: "wrong shape", status: 200, body: `"a coat"`, wantFailed: true},
		{name: "upstream error", status: 503, body: `loading`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := newServer(t, tt.status, tt.body, nil)
			c := NewClient(Options{URL: server.URL})
			got, err := c.Caption(context.Background(), image.NewGray(image.Rect(0, 0, 1, 1)), "")

			switch {
			case tt.wantFailed:
				assert.ErrorIs(t, err, service.ErrCaptionFailed)
			case tt.wantErr:
				require.Error(t, err)
				assert.NotErrorIs(t, err, service.ErrCaptionFailed)
				assert.Contains(t, err.Error(), "503")
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestClient_Caption_OmitsEmptyPrompt(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, ok := body["parameters"]["text"]
		assert.False(t, ok)
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"generated_text": "a hat"}`))
	}))
	defer server.Close()

	got, err := NewClient(Options{URL: server.URL}).Caption(context.Background(), image.NewGray(image.Rect(0, 0, 1, 1)), "")
	require.NoError(t, err)
	assert.Equal(t, "a hat", got)
}

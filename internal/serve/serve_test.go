package serve

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/tandemkit/tandem/internal/adapter"
	"github.com/tandemkit/tandem/internal/envelope"
	"github.com/tandemkit/tandem/internal/workflow"
)

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	a, err := adapter.New(adapter.Deps{Definition: workflow.Default()})
	require.NoError(t, err)
	runner := adapter.NewRunner(a, noop.NewTracerProvider().Tracer("test"), nil)
	srv := httptest.NewServer(NewServer(runner).Routes())
	t.Cleanup(srv.Close)
	return srv
}

func predict(t *testing.T, srv *httptest.Server, body any) (*http.Response, envelope.Response) {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	res, err := http.Post(srv.URL+"/predict", "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	t.Cleanup(func() { _ = res.Body.Close() })

	var out envelope.Response
	require.NoError(t, json.NewDecoder(res.Body).Decode(&out))
	return res, out
}

func TestPredict_NormalizedRequest(t *testing.T) {
	t.Parallel()

	srv := testServer(t)
	res, out := predict(t, srv, map[string]any{"prompt": "Artificial Intelligence"})

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, envelope.StatusSuccess, out.Status)
	assert.Equal(t, "success", out.Content)
	assert.NotEmpty(t, out.ID)
}

func TestPredict_CompletionEnvelope(t *testing.T) {
	t.Parallel()

	srv := testServer(t)
	res, out := predict(t, srv, map[string]any{
		"model": envelope.DefaultModel,
		"messages": []map[string]string{
			{"role": "system", "content": "You are a helpful assistant"},
			{"role": "user", "content": "Artificial Intelligence"},
		},
	})

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, envelope.StatusSuccess, out.Status)
}

func TestPredict_EmptyInputIsError200(t *testing.T) {
	t.Parallel()

	srv := testServer(t)
	res, out := predict(t, srv, map[string]any{})

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, envelope.StatusError, out.Status)
	assert.NotEmpty(t, out.Error)
}

func TestPredict_MalformedBodyIs400(t *testing.T) {
	t.Parallel()

	srv := testServer(t)
	res, err := http.Post(srv.URL+"/predict", "application/json", bytes.NewReader([]byte("{not json")))
	require.NoError(t, err)
	t.Cleanup(func() { _ = res.Body.Close() })
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	srv := testServer(t)
	res, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	t.Cleanup(func() { _ = res.Body.Close() })
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

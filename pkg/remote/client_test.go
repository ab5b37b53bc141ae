package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/getmockd/userdesk/pkg/logging"
	"github.com/getmockd/userdesk/pkg/record"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_ListPreservesOrder(t *testing.T) {
	t.Parallel()

	var gotPath, gotAccept string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id":"3","name":"Carol","email":"c@x.com"},
			{"id":1,"name":"Alice","email":"a@x.com"}
		]`))
	}))
	defer ts.Close()

	records, err := NewClient(ts.URL).List(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "/Users", gotPath)
	assert.Equal(t, "application/json", gotAccept)
	require.Len(t, records, 2)
	assert.Equal(t, "3", records[0].ID.String())
	assert.Equal(t, "Alice", records[1].Name)
	assert.True(t, records[1].ID.IsNumeric())
}

func TestClient_ListEmptyBody(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer ts.Close()

	records, err := NewClient(ts.URL).List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestClient_CreateSendsNoID(t *testing.T) {
	t.Parallel()

	var body map[string]interface{}
	var method, requestID string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		requestID = r.Header.Get(RequestIDHeader)
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"42","name":"A","email":"a@x.com"}`))
	}))
	defer ts.Close()

	created, err := NewClient(ts.URL).Create(context.Background(), record.Record{Name: "A", Email: "a@x.com"})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, method)
	assert.NotEmpty(t, requestID)
	assert.NotContains(t, body, "id")
	assert.Equal(t, "A", body["name"])
	assert.Equal(t, record.Record{ID: record.StringID("42"), Name: "A", Email: "a@x.com"}, created)
}

func TestClient_CreateWithoutAssignedID(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"name":"A","email":"a@x.com"}`))
	}))
	defer ts.Close()

	_, err := NewClient(ts.URL).Create(context.Background(), record.Record{Name: "A"})
	require.Error(t, err)
	assert.True(t, IsTransport(err))
}

func TestClient_ReplaceUsesPathAndBody(t *testing.T) {
	t.Parallel()

	var gotPath string
	var body map[string]interface{}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&body)
		_, _ = w.Write([]byte(`{"id":"1","name":"Bobby","email":"b@x.com"}`))
	}))
	defer ts.Close()

	rec := record.Record{ID: record.StringID("1"), Name: "Bobby", Email: "b@x.com"}
	confirmed, err := NewClient(ts.URL).Replace(context.Background(), rec)
	require.NoError(t, err)

	assert.Equal(t, "/Users/1", gotPath)
	assert.Equal(t, "1", body["id"])
	assert.Equal(t, rec, confirmed)
}

func TestClient_ReplaceWithoutBodyConfirmsSentRecord(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ts.Close()

	rec := record.Record{ID: record.NumberID(5), Name: "E", Email: "e@x.com"}
	confirmed, err := NewClient(ts.URL).Replace(context.Background(), rec)
	require.NoError(t, err)
	assert.Equal(t, rec, confirmed)
}

func TestClient_ReplaceRequiresID(t *testing.T) {
	t.Parallel()

	_, err := NewClient("http://127.0.0.1:1").Replace(context.Background(), record.Record{Name: "x"})
	assert.Error(t, err)
}

func TestClient_DeleteEscapesID(t *testing.T) {
	t.Parallel()

	var gotRawPath, method string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		gotRawPath = r.URL.EscapedPath()
		_, _ = w.Write([]byte(`{}`))
	}))
	defer ts.Close()

	err := NewClient(ts.URL).Delete(context.Background(), record.StringID("a/b"))
	require.NoError(t, err)
	assert.Equal(t, http.MethodDelete, method)
	assert.Equal(t, "/Users/a%2Fb", gotRawPath)
}

func TestClient_RejectionCarriesStatusAndMessage(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"not_found","message":"user 9 not found"}`))
	}))
	defer ts.Close()

	err := NewClient(ts.URL).Delete(context.Background(), record.StringID("9"))
	require.Error(t, err)

	var rej *RejectionError
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, http.StatusNotFound, rej.StatusCode)
	assert.Equal(t, "user 9 not found", rej.Message)
	assert.Equal(t, "delete", rej.Op)
	assert.True(t, IsNotFound(err))
	assert.NotEmpty(t, rej.Hint())
}

func TestClient_RejectionPlainTextBody(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, "boom")
	}))
	defer ts.Close()

	_, err := NewClient(ts.URL).List(context.Background())
	var rej *RejectionError
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, "boom", rej.Message)
}

func TestClient_TransportFailure(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := ts.URL
	ts.Close()

	_, err := NewClient(url, WithTimeout(time.Second)).List(context.Background())
	require.Error(t, err)
	assert.True(t, IsTransport(err))
	assert.False(t, IsRejection(err))
}

func TestClient_CancelledContextIsTransportFailure(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient(ts.URL).List(ctx)
	assert.True(t, IsTransport(err))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClient_CustomResource(t *testing.T) {
	t.Parallel()

	var gotPath string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`[]`))
	}))
	defer ts.Close()

	c := NewClient(ts.URL+"/", WithResource("/members/"))
	_, err := c.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/members", gotPath)
	assert.Equal(t, "members", c.Resource())
}

func TestClient_TimeoutDoesNotTouchCallerClient(t *testing.T) {
	t.Parallel()

	shared := &http.Client{}
	c := NewClient("http://remote", WithHTTPClient(shared), WithTimeout(3*time.Second))

	assert.Zero(t, shared.Timeout)
	assert.Equal(t, 3*time.Second, c.httpClient.Timeout)
	assert.NotSame(t, shared, c.httpClient)

	kept := NewClient("http://remote", WithHTTPClient(&http.Client{Timeout: time.Minute}))
	assert.Equal(t, time.Minute, kept.httpClient.Timeout)
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

type failingBody struct{}

func (failingBody) Read([]byte) (int, error) { return 0, errors.New("connection reset") }
func (failingBody) Close() error             { return nil }

func TestClient_ReplaceUnreadableBodyIsLogged(t *testing.T) {
	t.Parallel()

	hc := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		return &http.Response{StatusCode: http.StatusOK, Body: failingBody{}, Header: http.Header{}, Request: r}, nil
	})}
	var logs bytes.Buffer
	log := logging.New(logging.Config{Level: logging.LevelDebug, Output: &logs})

	sent := record.Record{ID: record.StringID("7"), Name: "Ann", Email: "ann@example.com"}
	got, err := NewClient("http://remote", WithHTTPClient(hc), WithLogger(log)).Replace(context.Background(), sent)
	require.NoError(t, err)
	assert.Equal(t, sent, got)
	assert.Contains(t, logs.String(), "update response body unreadable")
	assert.Contains(t, logs.String(), "connection reset")
}

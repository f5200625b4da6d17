package graph

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/sociallens/comment-collector/pkg/apperrors"
	"github.com/sociallens/comment-collector/pkg/logger"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "v22.0", 5*time.Second, logger.New(logger.Opts{}))
}

func TestGetDecodesVersionedPath(t *testing.T) {
	var gotPath, gotToken string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotToken = r.URL.Query().Get("access_token")
		w.Write([]byte(`{"id":"12345"}`))
	})

	var out struct {
		ID string `json:"id"`
	}
	params := url.Values{"access_token": {"tok"}}
	if err := client.Get(context.Background(), "me", params, &out); err != nil {
		t.Fatalf("Get: %v", err)
	}

	if gotPath != "/v22.0/me" {
		t.Errorf("expected path /v22.0/me, got %q", gotPath)
	}
	if gotToken != "tok" {
		t.Errorf("expected access_token to be forwarded, got %q", gotToken)
	}
	if out.ID != "12345" {
		t.Errorf("expected decoded id 12345, got %q", out.ID)
	}
}

func TestGetRateLimitedByStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"slow down","code":1}}`))
	})

	var out struct{}
	err := client.Get(context.Background(), "me", nil, &out)
	if !apperrors.IsRateLimited(err) {
		t.Fatalf("expected rate-limited error, got %v", err)
	}
}

func TestGetRateLimitedByGraphCode(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"application request limit reached","code":4}}`))
	})

	var out struct{}
	err := client.Get(context.Background(), "me", nil, &out)
	if !apperrors.IsRateLimited(err) {
		t.Fatalf("expected rate-limited error, got %v", err)
	}
}

func TestGetTransportErrorOnServerFault(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"message":"something broke","code":100}}`))
	})

	var out struct{}
	err := client.Get(context.Background(), "me", nil, &out)
	if !apperrors.IsTransport(err) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if apperrors.IsRateLimited(err) {
		t.Fatal("server fault must not classify as rate limited")
	}
}

func TestGetURLFollowsAbsoluteCursor(t *testing.T) {
	var gotPath string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{"data":[]}`))
	})

	var out struct {
		Data []struct{} `json:"data"`
	}
	next := client.baseURL + "/v22.0/123/comments?after=CURSOR"
	if err := client.GetURL(context.Background(), next, &out); err != nil {
		t.Fatalf("GetURL: %v", err)
	}
	if gotPath != "/v22.0/123/comments" {
		t.Errorf("expected cursor path to be requested verbatim, got %q", gotPath)
	}
}

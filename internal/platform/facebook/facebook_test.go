package facebook

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sociallens/comment-collector/internal/domain"
	"github.com/sociallens/comment-collector/internal/graph"
	"github.com/sociallens/comment-collector/pkg/apperrors"
	"github.com/sociallens/comment-collector/pkg/logger"
)

func newTestImpl(t *testing.T, mux *http.ServeMux) (*Impl, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	log := logger.New(logger.Opts{})
	impl := &Impl{
		graph:     graph.NewClient(srv.URL, "v22.0", 5*time.Second, log),
		logger:    log,
		userToken: "user-token",
	}
	return impl, srv
}

func accountsHandler(mux *http.ServeMux) {
	mux.HandleFunc("/v22.0/me/accounts", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":[
			{"id":"p1","name":"Acme Corp","access_token":"page-token"},
			{"id":"p2","name":"Zebra Industries","access_token":"zebra-token"}
		]}`)
	})
}

func TestResolveAccountMatchesPage(t *testing.T) {
	mux := http.NewServeMux()
	accountsHandler(mux)
	impl, _ := newTestImpl(t, mux)

	account, err := impl.ResolveAccount(context.Background(), []string{"acme corp"})
	if err != nil {
		t.Fatalf("ResolveAccount: %v", err)
	}

	if account.Alias != "acme corp" {
		t.Errorf("expected alias to be the candidate that resolved, got %q", account.Alias)
	}
	if account.Name != "Acme Corp" || account.ID != "p1" || account.AccessToken != "page-token" {
		t.Errorf("unexpected account: %+v", account)
	}
}

func TestResolveAccountNoMatch(t *testing.T) {
	mux := http.NewServeMux()
	accountsHandler(mux)
	impl, _ := newTestImpl(t, mux)

	_, err := impl.ResolveAccount(context.Background(), []string{"qqq"})
	if !apperrors.IsNotFound(err) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestResolveAccountNoCandidates(t *testing.T) {
	impl, _ := newTestImpl(t, http.NewServeMux())

	_, err := impl.ResolveAccount(context.Background(), nil)
	if !apperrors.IsInvalidInput(err) {
		t.Fatalf("expected invalid-input error, got %v", err)
	}
}

func testAccount() *domain.Account {
	return &domain.Account{Alias: "acme", Name: "Acme Corp", ID: "99", AccessToken: "page-token"}
}

func TestLocatePostDirectFromURL(t *testing.T) {
	impl, _ := newTestImpl(t, http.NewServeMux())

	ref, err := impl.LocatePost(context.Background(), testAccount(),
		domain.BatchItem{Link: "https://www.facebook.com/123_456"})
	if err != nil {
		t.Fatalf("LocatePost: %v", err)
	}
	if ref.ResourceID != "123_456" {
		t.Errorf("expected resource 123_456, got %q", ref.ResourceID)
	}
}

func TestLocatePostComposesReelID(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v22.0/99_777", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":"99_777"}`)
	})
	impl, _ := newTestImpl(t, mux)

	ref, err := impl.LocatePost(context.Background(), testAccount(),
		domain.BatchItem{Link: "https://www.facebook.com/reel/777"})
	if err != nil {
		t.Fatalf("LocatePost: %v", err)
	}
	if ref.ResourceID != "99_777" {
		t.Errorf("expected composed resource 99_777, got %q", ref.ResourceID)
	}
}

func TestLocatePostFeedPermalinkFallback(t *testing.T) {
	link := "https://www.facebook.com/share/p/XyZ/"
	mux := http.NewServeMux()
	mux.HandleFunc("/v22.0/99/feed", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"data":[
			{"id":"99_1","message":"older post","permalink_url":"https://www.facebook.com/99/posts/1"},
			{"id":"99_2","message":"the one","permalink_url":%q}
		]}`, link)
	})
	impl, _ := newTestImpl(t, mux)

	ref, err := impl.LocatePost(context.Background(), testAccount(), domain.BatchItem{Link: link})
	if err != nil {
		t.Fatalf("LocatePost: %v", err)
	}
	if ref.ResourceID != "99_2" {
		t.Errorf("expected feed match 99_2, got %q", ref.ResourceID)
	}
}

func TestLocatePostFeedContentFallback(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v22.0/99/feed", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":[
			{"id":"99_1","message":"totally unrelated announcement","permalink_url":"https://www.facebook.com/99/posts/1"},
			{"id":"99_2","message":"Our big spring campaign launch starts today","permalink_url":"https://www.facebook.com/99/posts/2"}
		]}`)
	})
	impl, _ := newTestImpl(t, mux)

	ref, err := impl.LocatePost(context.Background(), testAccount(), domain.BatchItem{
		Link:    "https://www.facebook.com/share/p/AbC/",
		Content: "big spring campaign launch",
	})
	if err != nil {
		t.Fatalf("LocatePost: %v", err)
	}
	if ref.ResourceID != "99_2" {
		t.Errorf("expected content match 99_2, got %q", ref.ResourceID)
	}
}

func TestLocatePostNotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v22.0/99/feed", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":[]}`)
	})
	impl, _ := newTestImpl(t, mux)

	_, err := impl.LocatePost(context.Background(), testAccount(),
		domain.BatchItem{Link: "https://www.facebook.com/share/p/AbC/"})
	if !apperrors.IsNotFound(err) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func postRefFor(id string) *domain.PostRef {
	return &domain.PostRef{Platform: domain.PlatformFacebook, ResourceID: id}
}

func TestFetchCommentsPaginationAndCap(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	mux.HandleFunc("/v22.0/99_1/comments", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"data":[
			{"id":"c1","message":"one","from":{"name":"alice"}},
			{"id":"c2","message":"two","from":{"name":"bob"}}
		],"paging":{"next":"%s/page2"}}`, srv.URL)
	})
	mux.HandleFunc("/page2", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":[
			{"id":"c3","message":"three","from":{"name":"carol"}},
			{"id":"c4","message":"four","from":{"name":"dave"}}
		]}`)
	})

	log := logger.New(logger.Opts{})
	impl := &Impl{
		graph:     graph.NewClient(srv.URL, "v22.0", 5*time.Second, log),
		logger:    log,
		userToken: "user-token",
	}

	comments, err := impl.FetchComments(context.Background(), testAccount(), postRefFor("99_1"), 3)
	if err != nil {
		t.Fatalf("FetchComments: %v", err)
	}
	if len(comments) != 3 {
		t.Fatalf("expected cap to trim to 3 comments, got %d", len(comments))
	}
	if comments[0].ID != "c1" || comments[2].ID != "c3" {
		t.Errorf("unexpected comment order: %q ... %q", comments[0].ID, comments[2].ID)
	}
}

func TestFetchCommentsExpandsReplies(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v22.0/99_1/comments", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":[
			{"id":"c1","message":"top","comment_count":2,"from":{"name":"alice"}}
		]}`)
	})
	mux.HandleFunc("/v22.0/c1/comments", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":[
			{"id":"r1","message":"first reply","from":{"name":"bob"}},
			{"id":"r2","message":"second reply","from":{}}
		]}`)
	})
	impl, _ := newTestImpl(t, mux)

	comments, err := impl.FetchComments(context.Background(), testAccount(), postRefFor("99_1"), 10)
	if err != nil {
		t.Fatalf("FetchComments: %v", err)
	}
	if len(comments) != 1 {
		t.Fatalf("expected 1 top-level comment, got %d", len(comments))
	}
	if len(comments[0].Replies) != 2 {
		t.Fatalf("expected 2 replies, got %d", len(comments[0].Replies))
	}
	if comments[0].Replies[1].Author != "" {
		t.Errorf("expected missing reply author to stay empty until normalization, got %q",
			comments[0].Replies[1].Author)
	}
}

func TestFetchCommentsKeepsPartialOnTransportFault(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	mux.HandleFunc("/v22.0/99_1/comments", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"data":[
			{"id":"c1","message":"one","from":{"name":"alice"}}
		],"paging":{"next":"%s/page2"}}`, srv.URL)
	})
	mux.HandleFunc("/page2", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"error":{"message":"backend unavailable","code":2}}`)
	})

	log := logger.New(logger.Opts{})
	impl := &Impl{
		graph:     graph.NewClient(srv.URL, "v22.0", 5*time.Second, log),
		logger:    log,
		userToken: "user-token",
	}

	comments, err := impl.FetchComments(context.Background(), testAccount(), postRefFor("99_1"), 100)
	if err != nil {
		t.Fatalf("expected partial results without error, got %v", err)
	}
	if len(comments) != 1 || comments[0].ID != "c1" {
		t.Fatalf("expected the first page to survive, got %+v", comments)
	}
}

func TestFetchCommentsSurfacesRateLimit(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v22.0/99_1/comments", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error":{"message":"limit reached","code":4}}`)
	})
	impl, _ := newTestImpl(t, mux)

	comments, err := impl.FetchComments(context.Background(), testAccount(), postRefFor("99_1"), 100)
	if !apperrors.IsRateLimited(err) {
		t.Fatalf("expected rate-limited error, got %v", err)
	}
	if len(comments) != 0 {
		t.Errorf("expected no comments, got %d", len(comments))
	}
}

func TestFetchCommentsZeroBudget(t *testing.T) {
	impl, _ := newTestImpl(t, http.NewServeMux())

	comments, err := impl.FetchComments(context.Background(), testAccount(), postRefFor("99_1"), 0)
	if err != nil || comments != nil {
		t.Fatalf("expected nil result for zero budget, got %v, %v", comments, err)
	}
}

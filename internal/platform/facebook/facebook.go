// Package facebook fetches comments for Facebook page posts through the
// Graph API: page resolution via /me/accounts, post location from the URL or
// the page feed, and cursor pagination over comments and their replies.
package facebook

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/sociallens/comment-collector/internal/domain"
	"github.com/sociallens/comment-collector/internal/fetcher"
	"github.com/sociallens/comment-collector/internal/graph"
	"github.com/sociallens/comment-collector/internal/match"
	"github.com/sociallens/comment-collector/pkg/apperrors"
	"github.com/sociallens/comment-collector/pkg/config"
	"github.com/sociallens/comment-collector/pkg/logger"
	"go.uber.org/fx"
)

const (
	pageSize      = 100
	commentFields = "id,message,created_time,like_count,from,attachment,comment_count,parent"
	replyFields   = "id,message,created_time,like_count,from,attachment"
	feedFields    = "id,message,created_time,permalink_url"
)

type Opts struct {
	fx.In

	Graph  *graph.Client
	Config *config.Config
	Logger logger.Logger
}

type Impl struct {
	graph     *graph.Client
	logger    logger.Logger
	userToken string
	pageDelay time.Duration

	loadOnce sync.Once
	pages    []pagePayload
	loadErr  error
}

func New(opts Opts) *Impl {
	return &Impl{
		graph:     opts.Graph,
		logger:    opts.Logger.WithComponent("FacebookFetcher"),
		userToken: opts.Config.Graph.AccessToken,
		pageDelay: opts.Config.Collector.PageDelay,
	}
}

var _ fetcher.Client = (*Impl)(nil)

func (f *Impl) Platform() domain.Platform {
	return domain.PlatformFacebook
}

// accessiblePages lists the pages the token can manage. The listing is fetched
// once and cached for the lifetime of the run.
func (f *Impl) accessiblePages(ctx context.Context) ([]pagePayload, error) {
	f.loadOnce.Do(func() {
		params := url.Values{
			"access_token": {f.userToken},
			"limit":        {fmt.Sprint(pageSize)},
		}
		var resp accountsResponse
		if err := f.graph.Get(ctx, "me/accounts", params, &resp); err != nil {
			f.loadErr = apperrors.Wrap(err, "failed to list accessible pages")
			return
		}
		f.pages = resp.Data
		f.logger.Info("Loaded accessible Facebook pages", "count", len(resp.Data))
	})
	return f.pages, f.loadErr
}

func (f *Impl) ResolveAccount(ctx context.Context, names []string) (*domain.Account, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: no candidate names", apperrors.ErrInvalidInput)
	}

	pages, err := f.accessiblePages(ctx)
	if err != nil {
		return nil, err
	}
	choices := lo.Map(pages, func(p pagePayload, _ int) string { return p.Name })

	for _, name := range names {
		res, ok := match.Best(name, choices)
		if !ok {
			f.logger.Warn("No page match for candidate", "candidate", name)
			continue
		}

		for _, page := range pages {
			if page.Name != res.Choice {
				continue
			}
			f.logger.Info("Matched Facebook page",
				"candidate", name, "page", page.Name, "score", res.Score, "exact", res.Exact)
			return &domain.Account{
				Alias:       name,
				Name:        page.Name,
				ID:          page.ID,
				AccessToken: page.AccessToken,
			}, nil
		}
	}

	return nil, fmt.Errorf("%w: no facebook page matched candidates %v", apperrors.ErrNotFound, names)
}

func (f *Impl) LocatePost(ctx context.Context, account *domain.Account, item domain.BatchItem) (*domain.PostRef, error) {
	pageID, postID := extractPostID(item.Link)

	switch {
	case pageID != "" && postID != "":
		return f.postRef(pageID+"_"+postID, item.Link), nil
	case postID != "":
		// Reel and video URLs carry only the post half of the id; compose it
		// with the resolved page and confirm the object exists.
		full := account.ID + "_" + postID
		if f.validatePostID(ctx, account, full) {
			return f.postRef(full, item.Link), nil
		}
		f.logger.Warn("Composed post id failed validation, falling back to feed search", "post_id", full)
	default:
		f.logger.Warn("No known URL pattern matched, falling back to feed search", "url", item.Link)
	}

	return f.findInFeed(ctx, account, item)
}

func (f *Impl) postRef(resourceID, sourceURL string) *domain.PostRef {
	return &domain.PostRef{
		Platform:   domain.PlatformFacebook,
		ResourceID: resourceID,
		SourceURL:  sourceURL,
	}
}

func (f *Impl) validatePostID(ctx context.Context, account *domain.Account, id string) bool {
	params := url.Values{
		"access_token": {account.AccessToken},
		"fields":       {"id"},
	}
	var resp idResponse
	if err := f.graph.Get(ctx, id, params, &resp); err != nil {
		f.logger.Warn("Post id validation failed", "post_id", id, "error", err)
		return false
	}
	return resp.ID != ""
}

// findInFeed scans the page's recent feed for a post whose permalink contains
// the source URL, or whose message matches the supplied content snippet.
func (f *Impl) findInFeed(ctx context.Context, account *domain.Account, item domain.BatchItem) (*domain.PostRef, error) {
	params := url.Values{
		"access_token": {account.AccessToken},
		"limit":        {fmt.Sprint(pageSize)},
		"fields":       {feedFields},
	}
	var resp feedResponse
	if err := f.graph.Get(ctx, account.ID+"/feed", params, &resp); err != nil {
		return nil, apperrors.Wrap(err, "failed to fetch page feed")
	}

	for _, post := range resp.Data {
		if post.PermalinkURL != "" && strings.Contains(post.PermalinkURL, item.Link) {
			f.logger.Info("Found post by permalink match", "post_id", post.ID)
			return f.postRef(post.ID, item.Link), nil
		}
	}

	// Very short snippets match almost anything, skip them.
	if len(item.Content) > 10 {
		var best *feedPayload
		bestScore := 0
		for i, post := range resp.Data {
			if post.Message == "" {
				continue
			}
			if score := match.ContentScore(item.Content, post.Message); score > bestScore {
				bestScore = score
				best = &resp.Data[i]
			}
		}
		if best != nil && bestScore > match.ContentThreshold {
			f.logger.Info("Found post by content match", "post_id", best.ID, "score", bestScore)
			return f.postRef(best.ID, item.Link), nil
		}
	}

	return nil, fmt.Errorf("%w: post not found in page feed for %s", apperrors.ErrNotFound, item.Link)
}

func (f *Impl) FetchComments(ctx context.Context, account *domain.Account, ref *domain.PostRef, maxItems int) ([]domain.Comment, error) {
	if maxItems <= 0 {
		return nil, nil
	}

	payloads, err := f.fetchTopLevel(ctx, account, ref, maxItems)
	comments := lo.Map(payloads, func(p commentPayload, _ int) domain.Comment { return p.toDomain() })
	if err != nil {
		return comments, err
	}

	budget := maxItems - len(comments)
	for i := range comments {
		if budget <= 0 {
			break
		}
		if comments[i].ChildCount == 0 {
			continue
		}
		replies, err := f.fetchReplies(ctx, account, comments[i].ID, budget)
		comments[i].Replies = replies
		budget -= len(replies)
		if err != nil {
			return comments, err
		}
	}

	return comments, nil
}

// fetchTopLevel walks the stream-ordered comment pagination up to the cap.
// Transport faults mid-walk keep the partial accumulation; only rate limiting
// is surfaced to the caller.
func (f *Impl) fetchTopLevel(ctx context.Context, account *domain.Account, ref *domain.PostRef, maxItems int) ([]commentPayload, error) {
	params := url.Values{
		"access_token": {account.AccessToken},
		"summary":      {"true"},
		"filter":       {"stream"},
		"limit":        {fmt.Sprint(pageSize)},
		"fields":       {commentFields},
	}

	var payloads []commentPayload
	next := ""
	page := 0

	for {
		page++
		var resp commentsResponse
		var err error
		if next == "" {
			err = f.graph.Get(ctx, ref.ResourceID+"/comments", params, &resp)
		} else {
			err = f.graph.GetURL(ctx, next, &resp)
		}
		if err != nil {
			if apperrors.IsRateLimited(err) {
				return payloads, err
			}
			f.logger.Error("Comment page fetch failed, keeping partial results",
				"post_id", ref.ResourceID, "page", page, "error", err)
			return payloads, nil
		}

		if len(resp.Data) == 0 {
			break
		}
		payloads = append(payloads, resp.Data...)
		f.logger.Info("Retrieved comment page",
			"post_id", ref.ResourceID, "page", page, "total", len(payloads))

		if len(payloads) >= maxItems {
			payloads = payloads[:maxItems]
			f.logger.Info("Reached comment cap", "post_id", ref.ResourceID, "cap", maxItems)
			break
		}
		if resp.Paging.Next == "" {
			break
		}
		next = resp.Paging.Next
		time.Sleep(f.pageDelay)
	}

	return payloads, nil
}

func (f *Impl) fetchReplies(ctx context.Context, account *domain.Account, commentID string, budget int) ([]domain.Comment, error) {
	params := url.Values{
		"access_token": {account.AccessToken},
		"limit":        {fmt.Sprint(pageSize)},
		"fields":       {replyFields},
	}

	var payloads []commentPayload
	next := ""

	for {
		var resp commentsResponse
		var err error
		if next == "" {
			err = f.graph.Get(ctx, commentID+"/comments", params, &resp)
		} else {
			err = f.graph.GetURL(ctx, next, &resp)
		}
		if err != nil {
			if apperrors.IsRateLimited(err) {
				return toComments(payloads), err
			}
			f.logger.Error("Reply page fetch failed, keeping partial results",
				"comment_id", commentID, "error", err)
			return toComments(payloads), nil
		}

		if len(resp.Data) == 0 {
			break
		}
		payloads = append(payloads, resp.Data...)

		if len(payloads) >= budget {
			payloads = payloads[:budget]
			break
		}
		if resp.Paging.Next == "" {
			break
		}
		next = resp.Paging.Next
		time.Sleep(f.pageDelay)
	}

	return toComments(payloads), nil
}

func toComments(payloads []commentPayload) []domain.Comment {
	return lo.Map(payloads, func(p commentPayload, _ int) domain.Comment { return p.toDomain() })
}

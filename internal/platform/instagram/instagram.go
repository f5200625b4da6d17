// Package instagram fetches comments for Instagram business media through the
// Graph API. The account resolves through the linked Facebook page; media ids
// are found by matching the URL's media code against the account's media
// listing, since the Graph API cannot look up a media object by its public code.
package instagram

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
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
	maxMediaPages = 30
	commentFields = "id,text,timestamp,username,like_count,replies{id,text,timestamp,username,like_count}"
	mediaFields   = "id,permalink,timestamp"
)

var (
	mediaCodeRe = regexp.MustCompile(`instagram\.com/(?:p|reel)/([^/?#]+)`)
	permalinkRe = regexp.MustCompile(`/(?:p|reel)/([^/?#]+)`)
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
		logger:    opts.Logger.WithComponent("InstagramFetcher"),
		userToken: opts.Config.Graph.AccessToken,
		pageDelay: opts.Config.Collector.PageDelay,
	}
}

var _ fetcher.Client = (*Impl)(nil)

func (f *Impl) Platform() domain.Platform {
	return domain.PlatformInstagram
}

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
		f.logger.Info("Loaded accessible pages for Instagram lookup", "count", len(resp.Data))
	})
	return f.pages, f.loadErr
}

// ResolveAccount matches a candidate name to a Facebook page, then follows the
// page's linked Instagram business account. A page without a linked account
// does not end the search; the next candidate is tried.
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

			igID, err := f.businessAccountID(ctx, page.ID)
			if err != nil {
				f.logger.Warn("Failed to look up Instagram business account",
					"page", page.Name, "error", err)
				break
			}
			if igID == "" {
				f.logger.Warn("Page has no linked Instagram business account", "page", page.Name)
				break
			}

			f.logger.Info("Matched Instagram business account",
				"candidate", name, "page", page.Name, "ig_id", igID, "score", res.Score, "exact", res.Exact)
			return &domain.Account{
				Alias:       name,
				Name:        page.Name,
				ID:          igID,
				AccessToken: f.userToken,
			}, nil
		}
	}

	return nil, fmt.Errorf("%w: no instagram account matched candidates %v", apperrors.ErrNotFound, names)
}

func (f *Impl) businessAccountID(ctx context.Context, pageID string) (string, error) {
	params := url.Values{
		"access_token": {f.userToken},
		"fields":       {"instagram_business_account"},
	}
	var resp businessAccountResponse
	if err := f.graph.Get(ctx, pageID, params, &resp); err != nil {
		return "", err
	}
	return resp.InstagramBusinessAccount.ID, nil
}

// LocatePost extracts the opaque media code from the URL and scans the
// account's media listing for the item whose permalink embeds the same code.
// The scan is bounded to keep a stale link from walking the entire history.
func (f *Impl) LocatePost(ctx context.Context, account *domain.Account, item domain.BatchItem) (*domain.PostRef, error) {
	code := extractMediaCode(item.Link)
	if code == "" {
		return nil, fmt.Errorf("%w: no media code in url %s", apperrors.ErrNotFound, item.Link)
	}

	params := url.Values{
		"access_token": {f.userToken},
		"limit":        {fmt.Sprint(pageSize)},
		"fields":       {mediaFields},
	}

	next := ""
	for page := 1; page <= maxMediaPages; page++ {
		var resp mediaResponse
		var err error
		if next == "" {
			err = f.graph.Get(ctx, account.ID+"/media", params, &resp)
		} else {
			err = f.graph.GetURL(ctx, next, &resp)
		}
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to list account media")
		}

		for _, media := range resp.Data {
			if codeOfPermalink(media.Permalink) == code {
				f.logger.Info("Found media by code", "code", code, "media_id", media.ID, "page", page)
				return &domain.PostRef{
					Platform:   domain.PlatformInstagram,
					ResourceID: media.ID,
					SourceURL:  item.Link,
				}, nil
			}
		}

		if resp.Paging.Next == "" {
			break
		}
		next = resp.Paging.Next
	}

	return nil, fmt.Errorf("%w: media with code %s not found in account listing", apperrors.ErrNotFound, code)
}

func extractMediaCode(link string) string {
	if m := mediaCodeRe.FindStringSubmatch(link); m != nil {
		return m[1]
	}
	return ""
}

func codeOfPermalink(permalink string) string {
	if m := permalinkRe.FindStringSubmatch(permalink); m != nil {
		return m[1]
	}
	return ""
}

func (f *Impl) FetchComments(ctx context.Context, account *domain.Account, ref *domain.PostRef, maxItems int) ([]domain.Comment, error) {
	if maxItems <= 0 {
		return nil, nil
	}

	payloads, err := f.fetchTopLevel(ctx, ref, maxItems)
	if err != nil {
		return toComments(payloads, maxItems), err
	}

	comments := make([]domain.Comment, 0, len(payloads))
	budget := maxItems - len(payloads)

	for _, p := range payloads {
		comment := p.toDomain()

		if p.Replies != nil && budget > 0 {
			replies, used, err := f.expandReplies(ctx, p, budget)
			comment.Replies = replies
			comment.ChildCount = len(replies)
			budget -= used
			if err != nil {
				comments = append(comments, comment)
				return comments, err
			}
		} else {
			comment.Replies = nil
			comment.ChildCount = 0
		}

		comments = append(comments, comment)
	}

	return comments, nil
}

func (f *Impl) fetchTopLevel(ctx context.Context, ref *domain.PostRef, maxItems int) ([]commentPayload, error) {
	params := url.Values{
		"access_token": {f.userToken},
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
				"media_id", ref.ResourceID, "page", page, "error", err)
			return payloads, nil
		}

		if len(resp.Data) == 0 {
			break
		}
		payloads = append(payloads, resp.Data...)
		f.logger.Info("Retrieved comment page",
			"media_id", ref.ResourceID, "page", page, "total", len(payloads))

		if len(payloads) >= maxItems {
			payloads = payloads[:maxItems]
			f.logger.Info("Reached comment cap", "media_id", ref.ResourceID, "cap", maxItems)
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

// expandReplies takes the reply page embedded in a comment and follows its
// cursor for the rest, bounded by the remaining budget. Returns the replies
// and how many budget slots they consumed.
func (f *Impl) expandReplies(ctx context.Context, p commentPayload, budget int) ([]domain.Comment, int, error) {
	initial := p.Replies.Data
	if len(initial) > budget {
		initial = initial[:budget]
	}
	replies := lo.Map(initial, func(r commentPayload, _ int) domain.Comment { return r.toDomain() })

	next := p.Replies.Paging.Next
	for next != "" && len(replies) < budget {
		time.Sleep(f.pageDelay)

		var resp commentsResponse
		if err := f.graph.GetURL(ctx, next, &resp); err != nil {
			if apperrors.IsRateLimited(err) {
				return replies, len(replies), err
			}
			f.logger.Error("Reply page fetch failed, keeping partial results",
				"comment_id", p.ID, "error", err)
			return replies, len(replies), nil
		}

		if len(resp.Data) == 0 {
			break
		}
		for _, r := range resp.Data {
			if len(replies) >= budget {
				break
			}
			replies = append(replies, r.toDomain())
		}
		next = resp.Paging.Next
	}

	return replies, len(replies), nil
}

func toComments(payloads []commentPayload, maxItems int) []domain.Comment {
	if len(payloads) > maxItems {
		payloads = payloads[:maxItems]
	}
	return lo.Map(payloads, func(p commentPayload, _ int) domain.Comment {
		c := p.toDomain()
		c.Replies = nil
		c.ChildCount = 0
		return c
	})
}

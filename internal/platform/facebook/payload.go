package facebook

import (
	"github.com/sociallens/comment-collector/internal/domain"
	"github.com/sociallens/comment-collector/internal/graph"
)

// pagePayload is one entry of the /me/accounts listing.
type pagePayload struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	AccessToken string `json:"access_token"`
}

type accountsResponse struct {
	Data   []pagePayload `json:"data"`
	Paging graph.Paging  `json:"paging"`
}

// feedPayload is one post of a page feed listing.
type feedPayload struct {
	ID           string `json:"id"`
	Message      string `json:"message"`
	CreatedTime  string `json:"created_time"`
	PermalinkURL string `json:"permalink_url"`
}

type feedResponse struct {
	Data   []feedPayload `json:"data"`
	Paging graph.Paging  `json:"paging"`
}

// commentPayload is the Facebook comment shape. It is converted to
// domain.Comment at this boundary and never leaks further.
type commentPayload struct {
	ID           string `json:"id"`
	Message      string `json:"message"`
	CreatedTime  string `json:"created_time"`
	LikeCount    int    `json:"like_count"`
	CommentCount int    `json:"comment_count"`
	From         struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"from"`
}

type commentsResponse struct {
	Data    []commentPayload `json:"data"`
	Paging  graph.Paging     `json:"paging"`
	Summary graph.Summary    `json:"summary"`
}

type idResponse struct {
	ID string `json:"id"`
}

func (p commentPayload) toDomain() domain.Comment {
	return domain.Comment{
		ID:         p.ID,
		Author:     p.From.Name,
		Message:    p.Message,
		CreatedAt:  graph.ParseTime(p.CreatedTime),
		LikeCount:  p.LikeCount,
		ChildCount: p.CommentCount,
	}
}

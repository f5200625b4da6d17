package instagram

import (
	"github.com/sociallens/comment-collector/internal/domain"
	"github.com/sociallens/comment-collector/internal/graph"
)

type pagePayload struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type accountsResponse struct {
	Data   []pagePayload `json:"data"`
	Paging graph.Paging  `json:"paging"`
}

type businessAccountResponse struct {
	InstagramBusinessAccount struct {
		ID string `json:"id"`
	} `json:"instagram_business_account"`
}

type mediaPayload struct {
	ID        string `json:"id"`
	Permalink string `json:"permalink"`
	Timestamp string `json:"timestamp"`
}

type mediaResponse struct {
	Data   []mediaPayload `json:"data"`
	Paging graph.Paging   `json:"paging"`
}

// commentPayload is the Instagram comment shape. Unlike Facebook, the first
// page of replies arrives embedded in the comment itself.
type commentPayload struct {
	ID        string           `json:"id"`
	Text      string           `json:"text"`
	Timestamp string           `json:"timestamp"`
	Username  string           `json:"username"`
	LikeCount int              `json:"like_count"`
	Replies   *repliesEnvelope `json:"replies"`
}

type repliesEnvelope struct {
	Data   []commentPayload `json:"data"`
	Paging graph.Paging     `json:"paging"`
}

type commentsResponse struct {
	Data   []commentPayload `json:"data"`
	Paging graph.Paging     `json:"paging"`
}

func (p commentPayload) toDomain() domain.Comment {
	childCount := 0
	if p.Replies != nil {
		childCount = len(p.Replies.Data)
	}
	return domain.Comment{
		ID:         p.ID,
		Author:     p.Username,
		Message:    p.Text,
		CreatedAt:  graph.ParseTime(p.Timestamp),
		LikeCount:  p.LikeCount,
		ChildCount: childCount,
	}
}

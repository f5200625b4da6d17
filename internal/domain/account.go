package domain

// Account is a resolved platform account. Alias is the candidate name that
// actually matched, Name is the display name reported by the API. Accounts
// live for a single run only.
type Account struct {
	Alias       string
	Name        string
	ID          string
	AccessToken string
}

// PostRef identifies one post or media object. ResourceID may be composite
// ("pageID_postID") on Facebook. Immutable once constructed.
type PostRef struct {
	Platform   Platform
	ResourceID string
	SourceURL  string
}

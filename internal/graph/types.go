package graph

// Paging is the standard Graph API pagination envelope. Next is an absolute
// URL carrying the cursor and all original query parameters.
type Paging struct {
	Cursors struct {
		Before string `json:"before"`
		After  string `json:"after"`
	} `json:"cursors"`
	Next string `json:"next"`
}

// Summary is returned for comment listings requested with summary=true.
type Summary struct {
	Order      string `json:"order"`
	TotalCount int    `json:"total_count"`
}

// apiError is the error envelope the Graph API returns with non-2xx statuses.
type apiError struct {
	Error struct {
		Message   string `json:"message"`
		Type      string `json:"type"`
		Code      int    `json:"code"`
		Subcode   int    `json:"error_subcode"`
		TraceID   string `json:"fbtrace_id"`
		Transient bool   `json:"is_transient"`
	} `json:"error"`
}

// Graph error codes that signal application-level throttling.
var rateLimitCodes = map[int]bool{
	4:   true, // application request limit
	17:  true, // user request limit
	32:  true, // page request limit
	613: true, // custom rate limit
}

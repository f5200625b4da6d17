package facebook

import "regexp"

// Known Facebook post URL shapes, checked in priority order. The first match
// wins; later patterns are never consulted once one hits.
var (
	underscoreRe = regexp.MustCompile(`facebook\.com/(\d+)_(\d+)`)
	reelRe       = regexp.MustCompile(`facebook\.com/reel/(\d+)`)
	permalinkRe  = regexp.MustCompile(`facebook\.com/permalink\.php\?.*?story_fbid=(\d+).*?id=(\d+)`)
	videoRe      = regexp.MustCompile(`facebook\.com/video\.php\?.*?v=(\d+)`)
)

// extractPostID pulls (pageID, postID) out of a post URL. Reel and video URLs
// carry no page component, so pageID comes back empty for those.
func extractPostID(url string) (pageID, postID string) {
	if m := underscoreRe.FindStringSubmatch(url); m != nil {
		return m[1], m[2]
	}
	if m := reelRe.FindStringSubmatch(url); m != nil {
		return "", m[1]
	}
	if m := permalinkRe.FindStringSubmatch(url); m != nil {
		return m[2], m[1]
	}
	if m := videoRe.FindStringSubmatch(url); m != nil {
		return "", m[1]
	}
	return "", ""
}

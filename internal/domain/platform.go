package domain

import "strings"

type Platform string

const (
	PlatformFacebook  Platform = "facebook"
	PlatformInstagram Platform = "instagram"
)

// PlatformOfLink picks the platform by the link's host substring, the same way
// the batch input splits links. Unknown links return an empty platform.
func PlatformOfLink(link string) Platform {
	lower := strings.ToLower(link)
	switch {
	case strings.Contains(lower, "facebook"):
		return PlatformFacebook
	case strings.Contains(lower, "instagram"):
		return PlatformInstagram
	default:
		return ""
	}
}

package extractor

import (
	"strings"

	"creatora-api/internal/domain"
)

// DetectPlatform определяет платформу по подстрокам URL. Порядок проверок важен: fb.com раньше x.com.
func DetectPlatform(url string) domain.Platform {
	switch {
	case strings.Contains(url, "instagram.com"):
		return domain.PlatformInstagram
	case strings.Contains(url, "facebook.com"), strings.Contains(url, "fb.com"):
		return domain.PlatformFacebook
	case strings.Contains(url, "twitter.com"), strings.Contains(url, "x.com"):
		return domain.PlatformTwitter
	case strings.Contains(url, "linkedin.com"):
		return domain.PlatformLinkedIn
	case strings.Contains(url, "youtube.com"), strings.Contains(url, "youtu.be"):
		return domain.PlatformYouTube
	default:
		return domain.PlatformBlog
	}
}

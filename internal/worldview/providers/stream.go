package providers

import (
	"github.com/i474232898/worldview-aggregation/internal/common"
	"github.com/i474232898/worldview-aggregation/internal/worldview"
)

// detectStreamType guesses how a camera URL is played. fallback is returned
// when nothing matches.
func detectStreamType(rawURL string, fallback worldview.StreamType) worldview.StreamType {
	switch {
	case rawURL == "":
		return fallback
	case common.HasAny(rawURL, "youtube.com/", "youtu.be/"):
		return worldview.StreamYouTube
	case common.HasAny(rawURL, ".m3u8"):
		return worldview.StreamHLS
	case common.HasAny(rawURL, ".mp4"):
		return worldview.StreamMP4
	case common.HasAny(rawURL, ".jpg", ".jpeg", ".png"):
		return worldview.StreamImage
	default:
		return fallback
	}
}

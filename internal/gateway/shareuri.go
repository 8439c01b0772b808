package gateway

import (
	"net/url"
	"strings"
)

// audioPathMarker separates the media server's API prefix from the library
// path inside a track URL, e.g.
// http://host/api/v8/audio/Test%2FKinderlieder%2FTest.mp3.
const audioPathMarker = "/audio/"

// BuildShareURI converts a media-server track URL into the x-file-cifs URI
// a Sonos player streams from a file share. The library path after the
// /audio/ marker is percent-decoded so the share path matches the real file
// layout; when the marker is absent the whole URL is used as the path.
func BuildShareURI(fileServerHost, trackURL string) string {
	path := trackURL
	if _, after, found := strings.Cut(trackURL, audioPathMarker); found {
		if decoded, err := url.PathUnescape(after); err == nil {
			path = decoded
		} else {
			path = after
		}
	}
	return "x-file-cifs://" + fileServerHost + "/" + path
}

// encodeURIComponent percent-encodes a URI so it can ride inside a path
// segment of a control API request. Spaces become %20, not +.
func encodeURIComponent(value string) string {
	return strings.ReplaceAll(url.QueryEscape(value), "+", "%20")
}

package domain

// DefaultMediaID is the video every room starts with.
const DefaultMediaID MediaID = "dQw4w9WgXcQ"

// canonicalWatchURL is the URL form media IDs are rendered as on the wire.
const canonicalWatchURL = "https://www.youtube.com/watch?v="

// MediaID is the canonical 11-character identifier of a video. It is never a
// raw URL.
type MediaID string

// URL renders the media ID as a canonical watch URL.
func (m MediaID) URL() string {
	return canonicalWatchURL + string(m)
}

func (m MediaID) String() string {
	return string(m)
}

// PlaybackState is the authoritative playback state of one room.
type PlaybackState struct {
	Media   MediaID
	Playing bool
}

// NewPlaybackState returns a paused state on the given media.
func NewPlaybackState(media MediaID) PlaybackState {
	return PlaybackState{Media: media}
}

// PlaybackPatch is a validated intent. Nil fields are absent and leave the
// corresponding state field untouched.
type PlaybackPatch struct {
	Media   *MediaID
	Playing *bool
}

// Merge returns s with every present field of p applied.
func (s PlaybackState) Merge(p PlaybackPatch) PlaybackState {
	if p.Media != nil {
		s.Media = *p.Media
	}
	if p.Playing != nil {
		s.Playing = *p.Playing
	}
	return s
}

// SyncIntent is a client request to change playback, before the URL has
// been resolved to a media ID.
type SyncIntent struct {
	URL     *string
	Playing *bool
}

package domain

// PlayState represents the playback state reported by the remote player
type PlayState string

const (
	// StateStopped indicates playback is stopped
	StateStopped PlayState = "Stopped"
	// StatePlaying indicates media is currently playing
	StatePlaying PlayState = "Playing"
	// StatePaused indicates playback is paused
	StatePaused PlayState = "Paused"
	// StateEnded indicates the current media reached its end
	StateEnded PlayState = "Ended"
)

// Snapshot is a point-in-time copy of the player's observable condition
type Snapshot struct {
	// Volume in protocol-reported units (signed, no fixed range)
	Volume int `json:"volume"`
	// Title of the current media, empty if unknown
	Title string `json:"title"`
	// State is the current playback state
	State PlayState `json:"state"`
	// CurrentTime is the elapsed playback time in seconds
	CurrentTime int `json:"current_time"`
	// TotalTime is the media length in seconds
	TotalTime int `json:"total_time"`
	// Source is the filesystem-style path of the current input
	Source string `json:"source"`
}

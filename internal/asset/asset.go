// Package asset implements the Asset Probe & Registry (spec.md §4.3): it
// probes declared media files for duration/dimensions/rotation/stream
// presence and assigns each one a stable input index.
package asset

import "fmt"

// Kind is the media kind of an asset.
type Kind string

const (
	KindVideo Kind = "video"
	KindImage Kind = "image"
	KindAudio Kind = "audio"
)

// KindFromString maps the markup's data-type attribute to a Kind, defaulting
// to video for anything unrecognized (matches the Project Builder's own
// "video" default for an absent data-type).
func KindFromString(s string) Kind {
	switch Kind(s) {
	case KindImage:
		return KindImage
	case KindAudio:
		return KindAudio
	default:
		return KindVideo
	}
}

// Asset is a probed media file, identified by a unique name, immutable once
// probed (spec.md §3).
type Asset struct {
	Name       string
	Path       string
	Kind       Kind
	DurationMS int
	Width      int
	Height     int
	Rotation   int // one of 0, 90, 180, 270
	HasVideo   bool
	HasAudio   bool
	Author     string
}

// VideoLabel returns the filter-graph input label for this asset's video
// stream ("<index>:v"). Fails if the asset has no video stream.
func (a Asset) VideoLabel(index int) (string, error) {
	if !a.HasVideo {
		return "", assetLacksVideo(a.Name)
	}
	return fmt.Sprintf("%d:v", index), nil
}

// AudioLabel returns the filter-graph input label for this asset's audio
// stream ("<index>:a"). Returns ok=false if the asset has no audio.
func (a Asset) AudioLabel(index int) (string, bool) {
	if !a.HasAudio {
		return "", false
	}
	return fmt.Sprintf("%d:a", index), true
}

// Package project builds the in-memory Project model from a markup tree
// (spec.md §3, §4.4): assets, outputs, engine-option presets, uploads,
// sequences and fragments, plus overlay-pair normalization.
package project

import (
	"fmt"

	"github.com/videocraft/compiler/internal/asset"
	"github.com/videocraft/compiler/internal/decoder"
	"github.com/videocraft/compiler/internal/expr"
)

// ContainerAssetName derives the virtual-asset name a rasterized container
// is registered under for a given output: stable, deterministic, and
// namespaced per output since the same container id rasterizes differently
// at different output resolutions (spec.md §4.6, §4.8).
func ContainerAssetName(outputName, containerID string) string {
	return fmt.Sprintf("container::%s::%s", outputName, containerID)
}

// Output is a named render target.
type Output struct {
	Name   string
	Path   string
	Width  int
	Height int
	FPS    int
}

// EngineOptionPreset is a named raw argument string passed to the engine
// verbatim, excluding inputs, filter-complex, and maps.
type EngineOptionPreset struct {
	Name string
	Args string
}

// UploadKind tags an UploadDescriptor's variant.
type UploadKind string

const (
	UploadYouTube   UploadKind = "youtube"
	UploadS3        UploadKind = "s3"
	UploadInstagram UploadKind = "instagram"
)

// UploadDescriptor is a tagged variant over {youtube, s3, instagram}
// upload targets. Not part of the compilation core; carried through to the
// emitter/orchestrator untouched.
type UploadDescriptor struct {
	Kind        UploadKind
	Name        string
	OutputName  string
	Title       string
	Tags        []string
	Description string

	// Provider-specific fields, left as strings since the upload/auth flow
	// itself is an external collaborator (spec.md §1).
	Bucket string // s3
	Key    string // s3
	Region string // s3
}

// Container is an HTML/CSS snippet a fragment rasterizes to a transparent
// PNG (spec.md Glossary).
type Container struct {
	ID          string
	HTMLContent string
}

// TransitionSpec names a transition and its duration in milliseconds.
type TransitionSpec = decoder.TransitionSpec

// Fragment is a contiguous piece of a sequence (spec.md §3).
type Fragment struct {
	ID      string
	Enabled bool

	AssetName string

	DurationMS int
	TrimLeftMS int

	OverlayLeft   expr.Expression
	OverlayZIndex int

	TransitionIn  TransitionSpec
	TransitionOut TransitionSpec

	Fit       decoder.FitPolicy
	Chromakey decoder.Chromakey

	VisualFilter   string
	Container      *Container
	TimecodeLabel  string

	// durationSpec holds the raw -duration property text until
	// ResolveDurations fills in DurationMS once assets are probed.
	durationSpec string
}

// Sequence is an ordered list of fragments producing one (video, audio)
// timeline. The first sequence in a project is the spine.
type Sequence struct {
	Fragments []Fragment
}

// Project owns the whole compiled model: asset declarations, outputs,
// presets, uploads, sequences, and global CSS/title/date.
type Project struct {
	Title string
	Date  string

	GlobalCSS string

	AssetDecls []AssetDecl
	Outputs    map[string]Output
	Presets    map[string]EngineOptionPreset
	Uploads    []UploadDescriptor
	Sequences  []Sequence
}

// AssetDecl is a declared <asset> element, prior to probing.
type AssetDecl struct {
	Name   string
	Path   string
	Kind   string // "video" | "image" | "audio"
	Author string
}

// AssetDeclarations converts the project's declared <asset> elements into
// the Prober's input shape, preserving declaration order.
func (p *Project) AssetDeclarations() []asset.Declaration {
	decls := make([]asset.Declaration, 0, len(p.AssetDecls))
	for _, a := range p.AssetDecls {
		decls = append(decls, asset.Declaration{
			Name:   a.Name,
			Path:   a.Path,
			Kind:   asset.KindFromString(a.Kind),
			Author: a.Author,
		})
	}
	return decls
}

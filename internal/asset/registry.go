package asset

import (
	"os"

	videoerrors "github.com/videocraft/compiler/internal/pkg/errors"
)

func assetLacksVideo(name string) error {
	return videoerrors.AssetLacksVideo(name)
}

// Registry indexes assets in declaration order, the order the emitter later
// uses for -i flags (spec.md §4.3, §4.7, §8 invariant 10).
type Registry struct {
	order  []string
	byName map[string]Asset
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: map[string]Asset{}}
}

// Add registers an asset at the next declaration index. Re-adding the same
// name overwrites in place without changing its index, which virtual
// (rasterized) assets rely on.
func (r *Registry) Add(a Asset) {
	if _, exists := r.byName[a.Name]; !exists {
		r.order = append(r.order, a.Name)
	}
	r.byName[a.Name] = a
}

// Get looks up an asset by name.
func (r *Registry) Get(name string) (Asset, bool) {
	a, ok := r.byName[name]
	return a, ok
}

// Index returns an asset's declaration-order input index.
func (r *Registry) Index(name string) (int, bool) {
	for i, n := range r.order {
		if n == name {
			return i, true
		}
	}
	return 0, false
}

// Ordered returns assets in declaration order, the order the Command
// Emitter uses for -i flags.
func (r *Registry) Ordered() []Asset {
	out := make([]Asset, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name])
	}
	return out
}

// Clone returns an independent copy of the registry: appending virtual
// assets (e.g. rasterized containers) to the clone never affects r. Each
// Output compiles against its own clone of the project's probed-asset
// registry, since container virtual assets are output-resolution-specific
// (spec.md §4.6, §4.7 "virtual assets from rasterization appear last").
func (r *Registry) Clone() *Registry {
	clone := &Registry{
		order:  append([]string(nil), r.order...),
		byName: make(map[string]Asset, len(r.byName)),
	}
	for k, v := range r.byName {
		clone.byName[k] = v
	}
	return clone
}

// Preflight asserts every asset path exists on disk, reporting the full
// list of missing files in a single error (spec.md §4.3).
func (r *Registry) Preflight() error {
	var missing []string
	for _, a := range r.Ordered() {
		if _, err := os.Stat(a.Path); err != nil {
			missing = append(missing, a.Name)
		}
	}
	if len(missing) > 0 {
		return videoerrors.AssetMissingFile(missing)
	}
	return nil
}

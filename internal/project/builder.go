package project

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/videocraft/compiler/internal/asset"
	"github.com/videocraft/compiler/internal/decoder"
	"github.com/videocraft/compiler/internal/expr"
	"github.com/videocraft/compiler/internal/markup"
	videoerrors "github.com/videocraft/compiler/internal/pkg/errors"
)

// Build walks the markup tree + property map into a Project, performing
// overlay-pair normalization along the way (spec.md §4.4).
func Build(root *markup.Node, props markup.PropertyMap) (*Project, error) {
	projectNode := findProjectNode(root)
	if projectNode == nil {
		return nil, videoerrors.ProjectStructural("markup tree has no <project> element")
	}

	p := &Project{
		Outputs: map[string]Output{},
		Presets: map[string]EngineOptionPreset{},
	}

	if titleNode := projectNode.Find("title"); titleNode != nil {
		p.Title = strings.TrimSpace(titleNode.TextContent())
	}
	p.Date = projectNode.Attr("data-date")

	var cssParts []string
	for _, tagNode := range projectNode.FindAll("tag") {
		cssParts = append(cssParts, tagNode.TextContent())
	}
	p.GlobalCSS = strings.Join(cssParts, "\n")

	if assetsNode := projectNode.Find("assets"); assetsNode != nil {
		for _, a := range assetsNode.FindAll("asset") {
			p.AssetDecls = append(p.AssetDecls, AssetDecl{
				Name:   a.Attr("data-name"),
				Path:   a.Attr("data-path"),
				Kind:   defaultString(a.Attr("data-type"), "video"),
				Author: a.Attr("data-author"),
			})
		}
	}

	if outputsNode := projectNode.Find("outputs"); outputsNode != nil {
		for _, o := range outputsNode.FindAll("output") {
			w, h := parseResolution(o.Attr("resolution"))
			fps, _ := strconv.Atoi(o.Attr("fps"))
			out := Output{
				Name:   o.Attr("name"),
				Path:   o.Attr("path"),
				Width:  w,
				Height: h,
				FPS:    fps,
			}
			p.Outputs[out.Name] = out
		}
	}

	if ffmpegNode := projectNode.Find("ffmpeg"); ffmpegNode != nil {
		for _, opt := range ffmpegNode.FindAll("option") {
			name := opt.Attr("name")
			p.Presets[name] = EngineOptionPreset{
				Name: name,
				Args: strings.TrimSpace(opt.TextContent()),
			}
		}
	}

	if uploadsNode := projectNode.Find("uploads"); uploadsNode != nil {
		p.Uploads = append(p.Uploads, buildUploads(uploadsNode)...)
	}

	for _, seqNode := range projectNode.FindAll("sequence") {
		seq, err := buildSequence(seqNode, props)
		if err != nil {
			return nil, err
		}
		p.Sequences = append(p.Sequences, seq)
	}

	return p, nil
}

func findProjectNode(root *markup.Node) *markup.Node {
	if root.Type == markup.NodeTag && root.Name == "project" {
		return root
	}
	if found := root.Find("project"); found != nil {
		return found
	}
	for _, c := range root.Children {
		if found := findProjectNode(c); found != nil {
			return found
		}
	}
	return nil
}

func defaultString(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func parseResolution(s string) (int, int) {
	parts := strings.SplitN(s, "x", 2)
	if len(parts) != 2 {
		return 0, 0
	}
	w, _ := strconv.Atoi(strings.TrimSpace(parts[0]))
	h, _ := strconv.Atoi(strings.TrimSpace(parts[1]))
	return w, h
}

func buildUploads(node *markup.Node) []UploadDescriptor {
	var out []UploadDescriptor
	kinds := map[string]UploadKind{"youtube": UploadYouTube, "s3": UploadS3, "instagram": UploadInstagram}

	for _, u := range node.Children {
		kind, ok := kinds[u.Name]
		if u.Type != markup.NodeTag || !ok {
			continue
		}
		d := UploadDescriptor{
			Kind:        kind,
			Name:        u.Attr("data-name"),
			OutputName:  u.Attr("data-output"),
			Title:       u.Attr("data-title"),
			Description: u.Attr("data-description"),
			Bucket:      u.Attr("data-bucket"),
			Key:         u.Attr("data-key"),
			Region:      u.Attr("data-region"),
		}
		if tags := u.Attr("data-tags"); tags != "" {
			d.Tags = strings.Split(tags, ",")
		}
		out = append(out, d)
	}
	return out
}

// rawFragment carries the not-yet-folded overlay fields used by
// overlay-pair normalization before the final Fragment is produced.
type rawFragment struct {
	frag         Fragment
	overlayLeft  expr.Expression
	overlayRight expr.Expression
	zIndexOwn    int
	zIndexRight  int // -overlay-end-z-index of THIS fragment, negated later
}

func buildSequence(seqNode *markup.Node, props markup.PropertyMap) (Sequence, error) {
	var raws []rawFragment

	for i, fragNode := range seqNode.FindAll("fragment") {
		rf, err := buildFragment(fragNode, props, i)
		if err != nil {
			return Sequence{}, err
		}
		raws = append(raws, rf)
	}

	fragments := normalizeOverlays(raws)
	return Sequence{Fragments: fragments}, nil
}

func buildFragment(node *markup.Node, props markup.PropertyMap, index int) (rawFragment, error) {
	id := node.Attr("id")
	if id == "" {
		id = fmt.Sprintf("fragment-%d", index)
	}

	get := func(prop string) string { return props.Get(node, prop) }

	enabled := decoder.ParseEnabled(get("display"))
	assetName := get("-asset")
	trimLeft := decoder.ParseTrimStart(get("-trim-start"))

	overlayLeftRaw, err := parseOffsetProperty(get("-offset-start"))
	if err != nil {
		return rawFragment{}, err
	}
	overlayRightRaw, err := parseOffsetProperty(get("-offset-end"))
	if err != nil {
		return rawFragment{}, err
	}

	transitionIn := decoder.ParseTransitionSpec(get("-transition-start"))
	transitionOut := decoder.ParseTransitionSpec(get("-transition-end"))
	fit := decoder.ParseObjectFitSpec(get("-object-fit"))
	chromakey := decoder.ParseChromakeySpec(get("-chromakey"))

	var container *Container
	if cNode := node.Find("container"); cNode != nil {
		container = &Container{
			ID:          defaultString(cNode.Attr("id"), id),
			HTMLContent: cNode.TextContent(),
		}
	}

	frag := Fragment{
		ID:             id,
		Enabled:        enabled,
		AssetName:      assetName,
		TrimLeftMS:     trimLeft,
		TransitionIn:   transitionIn,
		TransitionOut:  transitionOut,
		Fit:            fit,
		Chromakey:      chromakey,
		VisualFilter:   get("filter"),
		Container:      container,
		TimecodeLabel:  node.Attr("data-timecode"),
	}
	// Duration resolution depends on the referenced asset and is finished
	// once assets are probed (see ResolveDurations); -duration is kept raw
	// here via a sentinel and filled in by ResolveDurations.
	frag.DurationMS = -1
	frag.durationSpec = get("-duration")

	return rawFragment{
		frag:         frag,
		overlayLeft:  overlayLeftRaw,
		overlayRight: overlayRightRaw,
		zIndexOwn:    decoder.ParseZIndex(get("-overlay-start-z-index")),
		zIndexRight:  decoder.ParseZIndex(get("-overlay-end-z-index")),
	}, nil
}

func parseOffsetProperty(raw string) (expr.Expression, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return expr.ConstExpr{Value: 0}, nil
	}
	if expr.IsCalc(raw) {
		return expr.Compile(raw)
	}
	return expr.ConstExpr{Value: decoder.ParseTime(raw)}, nil
}

// normalizeOverlays folds -offset-end(i-1) into -offset-start(i), and
// -overlay-end-z-index(i-1) (negated) into -overlay-start-z-index(i), per
// spec.md §4.4. The resulting fragment count equals the input count and no
// fragment retains an overlayRight field (spec.md §8 invariant 2).
func normalizeOverlays(raws []rawFragment) []Fragment {
	fragments := make([]Fragment, len(raws))

	for i, rf := range raws {
		frag := rf.frag

		if i == 0 {
			frag.OverlayLeft = rf.overlayLeft
		} else {
			prev := raws[i-1]
			frag.OverlayLeft = expr.Add(rf.overlayLeft, prev.overlayRight)
		}

		if i == 0 {
			frag.OverlayZIndex = rf.zIndexOwn
		} else if rf.zIndexOwn == 0 {
			frag.OverlayZIndex = -raws[i-1].zIndexRight
		} else {
			frag.OverlayZIndex = rf.zIndexOwn
		}

		fragments[i] = frag
	}

	return fragments
}

// ResolveDurations fills in each fragment's duration using the decoder
// against its referenced asset, now that assets have been probed. Must run
// after asset probing and before sequence compilation.
func ResolveDurations(p *Project, reg *asset.Registry) {
	for s := range p.Sequences {
		for f := range p.Sequences[s].Fragments {
			frag := &p.Sequences[s].Fragments[f]
			if frag.DurationMS >= 0 {
				continue
			}

			var ad decoder.AssetDuration
			if a, ok := reg.Get(frag.AssetName); ok {
				ad = decoder.AssetDuration{DurationMS: a.DurationMS}
			}
			frag.DurationMS = decoder.ParseDurationSpec(frag.durationSpec, ad, frag.TrimLeftMS)
		}
	}
}

package dag

// High-level composite policies implemented as macros over the primitive
// ops above (spec.md §4.5).

// FitCover scales with aspect-preserving enlargement then center-crops to
// exactly (w, h).
func (s *StreamBuilder) FitCover(w, h int) *StreamBuilder {
	scaled := s.Scale(w, h, "force_original_aspect_ratio=increase")
	return scaled.Crop(w, h, "(in_w-out_w)/2", "(in_h-out_h)/2")
}

// FitContainPillarbox scales with aspect-preserving shrink then pads to
// (w, h) centered with color.
func (s *StreamBuilder) FitContainPillarbox(w, h int, color string) *StreamBuilder {
	scaled := s.Scale(w, h, "force_original_aspect_ratio=decrease")
	return scaled.Pad(w, h, "(ow-iw)/2", "(oh-ih)/2", color)
}

// FitContainAmbient splits upstream into a blurred/darkened background
// branch and a scaled foreground branch, overlaying the foreground centered
// on the background.
func (s *StreamBuilder) FitContainAmbient(w, h int, blur, brightness, saturation float64) *StreamBuilder {
	branches := s.Split(2)
	background := branches[0].FitCover(w, h).Gblur(blur, 0).Eq(brightness, saturation)
	foreground := branches[1].Scale(w, h, "force_original_aspect_ratio=decrease").Pad(w, h, "(ow-iw)/2", "(oh-ih)/2", "black@0.0")
	return background.Overlay(foreground, "(W-w)/2", "(H-h)/2", false)
}

// RotateCorrect applies the rotation implied by a probed asset's side-data
// rotation value.
func (s *StreamBuilder) RotateCorrect(deg int) *StreamBuilder {
	switch deg {
	case 90:
		return s.Transpose(2)
	case 180:
		return s.Hflip().Vflip()
	case 270:
		return s.Transpose(1)
	default:
		return s
	}
}

// TPadStart prepends startFrames frames of padding (clone or add mode).
func (s *StreamBuilder) TPadStart(startFrames int, mode, color string) *StreamBuilder {
	return s.Tpad(startFrames, mode, color)
}

// OverlayWithOffset composites other onto s honoring a possibly-negative
// start offset: when otherOffsetLeftMS < 0, other's start is padded with
// |otherOffsetLeftMS + selfDurationMS| of transparent frames (at fps)
// before overlaying; when 0, it overlays directly. Positive values are not
// expected here (rejected by the caller before reaching this macro). flip
// swaps which stream is the background layer (spec.md §4.5
// overlayWithOffset, §4.6 step 9).
func (s *StreamBuilder) OverlayWithOffset(other *StreamBuilder, selfDurationMS, otherDurationMS, otherOffsetLeftMS, fps int, flip bool) *StreamBuilder {
	adjusted := other
	if otherOffsetLeftMS < 0 {
		padMS := otherOffsetLeftMS + selfDurationMS
		if padMS < 0 {
			padMS = -padMS
		}
		frames := (padMS*fps + 500) / 1000
		adjusted = other.TPadStart(frames, "add", "black@0.0")
	}
	return s.Overlay(adjusted, "0", "0", flip)
}

// Package errors implements the compiler's flat error-kind taxonomy (see
// spec.md §7) plus client-safe rendering helpers.
package errors

import "fmt"

// Kind identifies one of the fatal error categories the compiler can raise.
type Kind string

const (
	KindProjectStructural         Kind = "PROJECT_STRUCTURAL"
	KindAssetMissingFile          Kind = "ASSET_MISSING_FILE"
	KindAssetLacksVideo           Kind = "ASSET_LACKS_VIDEO"
	KindExpressionParseError      Kind = "EXPRESSION_PARSE_ERROR"
	KindExpressionUnresolved      Kind = "EXPRESSION_UNRESOLVED"
	KindOverlayNegativeAtStart    Kind = "OVERLAY_NEGATIVE_AT_START"
	KindOverlayPositiveAfterStart Kind = "OVERLAY_POSITIVE_AFTER_START"
	KindConcatArityMismatch       Kind = "CONCAT_ARITY_MISMATCH"
	KindLabelExhaustion           Kind = "LABEL_EXHAUSTION"
	KindEngineNotInstalled        Kind = "ENGINE_NOT_INSTALLED"
	KindEngineFailed              Kind = "ENGINE_FAILED"
	KindProbeFailed               Kind = "PROBE_FAILED"
	KindCacheIOError              Kind = "CACHE_IO_ERROR"
)

// CompileError is the single error type surfaced by every compiler stage.
// It carries a Kind, a human message, and optional source-location details
// (fragment id, asset name, expression text) for the Orchestrator's
// diagnostic formatter.
type CompileError struct {
	Kind    Kind
	Message string
	Details map[string]interface{}
}

func (e *CompileError) Error() string {
	return e.Message
}

func new_(kind Kind, message string, details map[string]interface{}) *CompileError {
	return &CompileError{Kind: kind, Message: message, Details: details}
}

func ProjectStructural(message string) *CompileError {
	return new_(KindProjectStructural, message, nil)
}

func AssetMissingFile(names []string) *CompileError {
	return new_(KindAssetMissingFile,
		fmt.Sprintf("asset file(s) not found: %v", names),
		map[string]interface{}{"assets": names})
}

func AssetLacksVideo(assetName string) *CompileError {
	return new_(KindAssetLacksVideo,
		fmt.Sprintf("asset %q has no video stream", assetName),
		map[string]interface{}{"asset": assetName})
}

func ExpressionParseError(source string, err error) *CompileError {
	return new_(KindExpressionParseError,
		fmt.Sprintf("failed to parse expression %q: %v", source, err),
		map[string]interface{}{"expression": source})
}

func ExpressionUnresolved(source, reason string) *CompileError {
	return new_(KindExpressionUnresolved,
		fmt.Sprintf("cannot resolve expression %q: %s", source, reason),
		map[string]interface{}{"expression": source})
}

func OverlayNegativeAtStart(fragmentID string, value int) *CompileError {
	return new_(KindOverlayNegativeAtStart,
		fmt.Sprintf("fragment %q is the first in its sequence and resolves to a negative overlay offset (%dms)", fragmentID, value),
		map[string]interface{}{"fragment_id": fragmentID, "overlay_left": value})
}

func OverlayPositiveAfterStart(fragmentID string, value int) *CompileError {
	return new_(KindOverlayPositiveAfterStart,
		fmt.Sprintf("fragment %q is not the first in its sequence and resolves to a positive overlay offset (%dms); only the first fragment may start after time zero", fragmentID, value),
		map[string]interface{}{"fragment_id": fragmentID, "overlay_left": value})
}

func ConcatArityMismatch(inputs, v, a int) *CompileError {
	return new_(KindConcatArityMismatch,
		fmt.Sprintf("concat received %d inputs, which is not n*(v+a) for v+a=%d", inputs, v+a),
		map[string]interface{}{"inputs": inputs, "v": v, "a": a})
}

func LabelExhaustion(attempts int) *CompileError {
	return new_(KindLabelExhaustion,
		fmt.Sprintf("unique label allocator exhausted its budget after %d attempts", attempts),
		map[string]interface{}{"attempts": attempts})
}

func EngineNotInstalled(binary string) *CompileError {
	return new_(KindEngineNotInstalled,
		fmt.Sprintf("render engine binary %q not found", binary),
		map[string]interface{}{"binary": binary})
}

func EngineFailed(code int, stderr string) *CompileError {
	return new_(KindEngineFailed,
		fmt.Sprintf("render engine exited with code %d", code),
		map[string]interface{}{"exit_code": code, "stderr": stderr})
}

func ProbeFailed(assetName string, err error) *CompileError {
	return new_(KindProbeFailed,
		fmt.Sprintf("failed to probe asset %q: %v", assetName, err),
		map[string]interface{}{"asset": assetName})
}

func CacheIOError(op string, err error) *CompileError {
	return new_(KindCacheIOError,
		fmt.Sprintf("container cache %s failed: %v", op, err),
		map[string]interface{}{"operation": op})
}

// clientErrorMessages gives a user-safe message per kind, matching the
// teacher's sanitize-for-client pattern.
var clientErrorMessages = map[Kind]string{
	KindProjectStructural:         "The project description is missing required structure.",
	KindAssetMissingFile:          "One or more asset files could not be found on disk.",
	KindAssetLacksVideo:           "An asset was used as a video source but has no video stream.",
	KindExpressionParseError:      "A calc() expression could not be parsed.",
	KindExpressionUnresolved:      "A calc() expression references an unknown fragment or property.",
	KindOverlayNegativeAtStart:    "The first fragment of a sequence cannot start before time zero.",
	KindOverlayPositiveAfterStart: "Only the first fragment of a sequence may start after time zero.",
	KindConcatArityMismatch:       "Internal filter-graph error: concat arity mismatch.",
	KindLabelExhaustion:           "Internal filter-graph error: ran out of unique stream labels.",
	KindEngineNotInstalled:        "The render engine is not installed or not on PATH.",
	KindEngineFailed:              "The render engine failed while rendering the output.",
	KindProbeFailed:               "Failed to probe an asset's media metadata.",
	KindCacheIOError:              "A filesystem error occurred in the container cache.",
}

// SanitizeForClient returns a short, user-facing message for an error.
func SanitizeForClient(err error) string {
	if ce, ok := err.(*CompileError); ok {
		if msg, ok := clientErrorMessages[ce.Kind]; ok {
			return msg
		}
	}
	return "An unexpected error occurred while compiling the project."
}

// GetLogContext returns structured fields suitable for a logger.WithFields call.
func GetLogContext(err error) map[string]interface{} {
	ctx := map[string]interface{}{}
	if ce, ok := err.(*CompileError); ok {
		ctx["error_kind"] = string(ce.Kind)
		ctx["error_message"] = ce.Message
		for k, v := range ce.Details {
			ctx[k] = v
		}
		return ctx
	}
	ctx["error_kind"] = "UNKNOWN"
	ctx["error_message"] = err.Error()
	return ctx
}

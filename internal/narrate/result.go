// internal/narrate/result.go
//
// The narration emission type shared by the orchestrator and the
// presentation surface.

package narrate

// Source records where a narration string came from.
type Source string

const (
	SourceGenerated Source = "generated"
	SourceFallback  Source = "fallback"
)

// Result is one narration emission: exactly one per phase transition.
type Result struct {
	Text   string `json:"text"`
	Source Source `json:"source"`
}

package engine

// seekContext scaffolds what a future Seek implementation needs: pause
// intake, seek the format reader, reset the decoder, flush the Ring
// Source, refill, then resume — or spawn a fresh worker at the target
// offset. Not wired into the command loop; Seek only enqueues SeekCmd,
// and the Controller answers it with an ErrorEvent instead of seeking,
// matching the original implementation's own unconnected SeekContext
// (see SPEC_FULL.md section 12).
type seekContext struct {
	positionSecs float64
}

package strategy

// wholeStreamAssemble folds one byte's step outcome into an output buffer
// that carries the entire input forward, substituting each delivered match's
// converted bytes for the raw byte wherever a handler produced one. Convert
// and All share this: both emit every byte of the document, replacing only
// the spans a matcher selected.
func wholeStreamAssemble(out []byte, b byte, res stepResult) []byte {
	for _, am := range res.closedEarly {
		out = append(out, am.epilogue...)
	}
	for _, am := range res.opened {
		out = append(out, am.prologue...)
	}

	if len(res.delivered) == 0 {
		out = append(out, b)
	} else {
		for _, am := range res.delivered {
			if replaced, ok := res.feedOut[am.id]; ok {
				out = append(out, replaced...)
			} else {
				out = append(out, b)
			}
		}
	}

	for _, am := range res.closedNow {
		out = append(out, am.epilogue...)
	}
	return out
}

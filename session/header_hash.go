package session

import (
	"bytes"

	"github.com/flightrec/blackbox/internal/hash"
)

// headerHash fingerprints the textual header block at the start of a
// session: every line beginning with "H " up to (but excluding) the
// first byte that starts a data frame. It is a cheap approximation
// computed without running the real header parser, used only so a
// caller can recognize repeat headers; it is never consulted for
// decoding correctness.
func headerHash(session []byte) uint64 {
	end := 0

	for end < len(session) {
		if session[end] != 'H' {
			break
		}

		nl := bytes.IndexByte(session[end:], '\n')
		if nl < 0 {
			end = len(session)

			break
		}

		end += nl + 1
	}

	return hash.ID(session[:end])
}

package decoders

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/drgolem/flickplayer/pkg/decoders/flac"
	"github.com/drgolem/flickplayer/pkg/decoders/mp3"
	"github.com/drgolem/flickplayer/pkg/decoders/ogg"
	"github.com/drgolem/flickplayer/pkg/decoders/wav"
	"github.com/drgolem/flickplayer/pkg/types"
)

// NewDecoder creates and opens the appropriate decoder based on file
// extension. Extension whitelist: .mp3, .flac, .fla, .ogg, .m4a, .wav.
// .m4a is recognized by extension (so the whitelist is honored) but has
// no decoding implementation available and always fails with
// UnsupportedFormat — see DESIGN.md for why.
func NewDecoder(fileName string) (types.AudioDecoder, error) {
	ext := strings.ToLower(filepath.Ext(fileName))

	var decoder types.AudioDecoder

	switch ext {
	case ".mp3":
		decoder = mp3.NewDecoder()
	case ".flac", ".fla":
		decoder = flac.NewDecoder()
	case ".ogg":
		decoder = ogg.NewDecoder()
	case ".wav":
		decoder = wav.NewDecoder()
	case ".m4a":
		return nil, types.NewError(types.UnsupportedFormat, "m4a/AAC decoding is not available")
	default:
		return nil, types.NewError(types.UnsupportedFormat, fmt.Sprintf("unrecognized extension %s", ext))
	}

	if err := decoder.Open(fileName); err != nil {
		return nil, types.WrapError(types.IoError, fmt.Sprintf("failed to open %s", fileName), err)
	}

	return decoder, nil
}

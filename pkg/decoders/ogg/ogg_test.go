package ogg

import (
	"testing"

	"github.com/drgolem/flickplayer/pkg/types"
)

// Compile-time assertions that Decoder satisfies both interfaces the
// decoder worker relies on: the common decode surface, and the
// float-vs-integer PCM signal that lets it avoid FormatFromBits'
// bits=32 -> S32 misclassification (see pkg/pcm).
var (
	_ types.AudioDecoder    = (*Decoder)(nil)
	_ types.FloatPCMDecoder = (*Decoder)(nil)
)

func TestDecodesFloat32IsAlwaysTrue(t *testing.T) {
	d := NewDecoder()
	if !d.DecodesFloat32() {
		t.Error("ogg decoder must report DecodesFloat32() == true: oggvorbis.Reader.Read always produces IEEE-754 float32 samples")
	}
}

func TestGetFormatReportsThirtyTwoBits(t *testing.T) {
	d := &Decoder{rate: 44100, chans: 2}
	_, _, bits := d.GetFormat()
	if bits != 32 {
		t.Errorf("expected bitsPerSample 32 (float32 byte width), got %d", bits)
	}
}

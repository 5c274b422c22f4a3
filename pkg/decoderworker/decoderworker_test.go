package decoderworker

import (
	"errors"
	"io"
	"testing"

	"github.com/drgolem/flickplayer/pkg/pcm"
	"github.com/drgolem/flickplayer/pkg/types"
)

type fakeIntDecoder struct{}

func (fakeIntDecoder) Open(string) error                    { return nil }
func (fakeIntDecoder) Close() error                         { return nil }
func (fakeIntDecoder) GetFormat() (int, int, int)           { return 44100, 2, 16 }
func (fakeIntDecoder) DecodeSamples(int, []byte) (int, error) { return 0, nil }

type fakeFloatDecoder struct{}

func (fakeFloatDecoder) Open(string) error                    { return nil }
func (fakeFloatDecoder) Close() error                         { return nil }
func (fakeFloatDecoder) GetFormat() (int, int, int)           { return 44100, 2, 32 }
func (fakeFloatDecoder) DecodeSamples(int, []byte) (int, error) { return 0, nil }
func (fakeFloatDecoder) DecodesFloat32() bool                   { return true }

func TestSelectPCMFormatUsesBitsForIntegerDecoder(t *testing.T) {
	if got := selectPCMFormat(fakeIntDecoder{}, 16); got != pcm.S16 {
		t.Errorf("expected S16, got %v", got)
	}
}

func TestSelectPCMFormatRoutesFloatDecoderToF32(t *testing.T) {
	var d types.AudioDecoder = fakeFloatDecoder{}
	if got := selectPCMFormat(d, 32); got != pcm.F32 {
		t.Errorf("expected F32 for a FloatPCMDecoder reporting 32 bits, got %v", got)
	}
}

func TestSelectPCMFormatFallsBackWhenThirtyTwoBitIntegerDecoder(t *testing.T) {
	// A genuine 32-bit integer PCM decoder (no FloatPCMDecoder) must
	// still map to S32, not F32.
	if got := selectPCMFormat(fakeIntDecoder{}, 32); got != pcm.S32 {
		t.Errorf("expected S32 for a non-float decoder at 32 bits, got %v", got)
	}
}

type fakeClassifyingDecoder struct {
	fakeIntDecoder
	kind types.DecodeErrorKind
}

func (f fakeClassifyingDecoder) ClassifyDecodeError(error) types.DecodeErrorKind { return f.kind }

func TestClassifyDecodeErrorMapsIoEOFToDecodeEOF(t *testing.T) {
	if got := classifyDecodeError(fakeIntDecoder{}, io.EOF); got != types.DecodeEOF {
		t.Errorf("expected DecodeEOF, got %v", got)
	}
}

func TestClassifyDecodeErrorTreatsUnwrappedEOFMessageAsFatal(t *testing.T) {
	wrapped := errors.New("wrapped: " + io.EOF.Error())
	// errors.New does not wrap io.EOF, so this must NOT classify as EOF.
	if got := classifyDecodeError(fakeIntDecoder{}, wrapped); got != types.DecodeFatal {
		t.Errorf("expected DecodeFatal for a non-wrapped EOF-like message, got %v", got)
	}
}

func TestClassifyDecodeErrorDefaultsNonEOFToFatal(t *testing.T) {
	if got := classifyDecodeError(fakeIntDecoder{}, errors.New("corrupt frame")); got != types.DecodeFatal {
		t.Errorf("expected DecodeFatal for an unrecognized error, got %v", got)
	}
}

func TestClassifyDecodeErrorDefersToDecoderClassifier(t *testing.T) {
	d := fakeClassifyingDecoder{kind: types.DecodeResetRequired}
	if got := classifyDecodeError(d, errors.New("format change")); got != types.DecodeResetRequired {
		t.Errorf("expected DecodeResetRequired from the decoder's own classifier, got %v", got)
	}
}

func TestSpawnOnMissingFileFailsSynchronously(t *testing.T) {
	src, w, err := Spawn("/nonexistent/path/does-not-exist.mp3", 48000, 0)
	if err == nil {
		t.Fatal("expected an error for a nonexistent file")
	}
	if src != nil || w != nil {
		t.Error("expected nil Source and Worker on probe failure")
	}
}

func TestSpawnOnUnsupportedExtensionFails(t *testing.T) {
	_, _, err := Spawn("song.m4a", 48000, 0)
	if err == nil {
		t.Fatal("expected an error for an unsupported extension")
	}
}

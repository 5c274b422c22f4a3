// Package ogg wraps jfreymuth/oggvorbis to decode Ogg Vorbis audio files.
// Implements types.AudioDecoder interface, matching the sibling flac/mp3/wav
// decoders.
package ogg

import (
	"fmt"
	"math"
	"os"

	"github.com/jfreymuth/oggvorbis"
)

// Decoder wraps an oggvorbis.Reader for decoding Ogg Vorbis files.
type Decoder struct {
	file    *os.File
	reader  *oggvorbis.Reader
	rate    int
	chans   int
	scratch []float32
}

// NewDecoder creates a new Ogg Vorbis decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Open opens an Ogg Vorbis file for decoding.
func (d *Decoder) Open(fileName string) error {
	file, err := os.Open(fileName)
	if err != nil {
		return fmt.Errorf("failed to open ogg file: %w", err)
	}

	reader, err := oggvorbis.NewReader(file)
	if err != nil {
		file.Close()
		return fmt.Errorf("failed to read ogg vorbis stream: %w", err)
	}

	d.file = file
	d.reader = reader
	d.rate = reader.SampleRate()
	d.chans = reader.Channels()

	return nil
}

// Close closes the underlying file.
func (d *Decoder) Close() error {
	if d.file != nil {
		return d.file.Close()
	}
	return nil
}

// GetFormat returns sample rate, channels, and bits per sample.
// oggvorbis decodes directly to float32, so bitsPerSample is reported
// as 32 (matching the S32 byte width) even though the bytes are not
// integer PCM; callers must consult DecodesFloat32 to pick pcm.F32
// rather than inferring the format from bitsPerSample alone.
func (d *Decoder) GetFormat() (rate, channels, bitsPerSample int) {
	return d.rate, d.chans, 32
}

// DecodesFloat32 implements types.FloatPCMDecoder: oggvorbis always
// decodes directly to IEEE-754 float32, never integer PCM.
func (d *Decoder) DecodesFloat32() bool { return true }

// DecodeSamples decodes up to 'samples' frames (samples per channel),
// writing interleaved little-endian float32 bytes into audio (4 bytes
// per sample), and returns the number of frames decoded.
func (d *Decoder) DecodeSamples(samples int, audio []byte) (int, error) {
	if d.reader == nil {
		return 0, fmt.Errorf("decoder not initialized")
	}

	need := samples * d.chans
	if len(d.scratch) < need {
		d.scratch = make([]float32, need)
	}
	buf := d.scratch[:need]

	n, err := d.reader.Read(buf)
	if n <= 0 {
		return 0, err
	}

	decoded := n / d.chans
	for i := 0; i < n; i++ {
		bits := math.Float32bits(buf[i])
		off := i * 4
		audio[off] = byte(bits)
		audio[off+1] = byte(bits >> 8)
		audio[off+2] = byte(bits >> 16)
		audio[off+3] = byte(bits >> 24)
	}

	return decoded, err
}

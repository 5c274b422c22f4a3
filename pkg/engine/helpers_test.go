package engine

import (
	"testing"

	"github.com/drgolem/flickplayer/pkg/ringsource"
	"github.com/drgolem/flickplayer/pkg/types"
)

func newTestSourceForEngine(t *testing.T) (*ringsource.Source, *ringsource.Producer) {
	t.Helper()
	return ringsource.New(types.SourceInfo{Path: "test.wav", OutputRate: 48000, Channels: 2}, 64)
}

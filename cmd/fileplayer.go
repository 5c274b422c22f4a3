package cmd

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/drgolem/flickplayer/pkg/engine"

	"github.com/spf13/cobra"
)

var (
	playlistDeviceIdx        int
	playlistRingCapacity     uint64
	playlistFramesPerBuffer  int
	playlistVerbose          bool
	playlistCrossfade        bool
	playlistCrossfadeSeconds float32
)

// playlistCmd represents the playlist command
var playlistCmd = &cobra.Command{
	Use:   "playlist <audio_file> [audio_file...]",
	Short: "Play multiple audio files gaplessly",
	Long: `Plays a sequence of audio files back to back through the real-time
engine. The next file is queued as soon as playback of the current one
starts, so the Source Provider has it pre-buffered and the transition
between tracks is gapless. --crossfade enables the engine's crossfader
with the given duration; this command sends no skip command, so each
track change still happens as a gapless cut when the current track runs
out.

Examples:
  # Play multiple files gaplessly
  flickplayer playlist song1.mp3 song2.flac song3.wav

  # Enable a 3 second crossfade setting on the engine
  flickplayer playlist --crossfade --crossfade-seconds 3 *.flac

Supported Formats:
  MP3:  .mp3 (16-bit lossy)
  FLAC: .flac, .fla (16/24/32-bit lossless)
  OGG:  .ogg (Vorbis)
  WAV:  .wav (8/16/24/32-bit PCM)`,
	Args: cobra.MinimumNArgs(1),
	Run:  runPlaylist,
}

func init() {
	rootCmd.AddCommand(playlistCmd)

	playlistCmd.Flags().IntVarP(&playlistDeviceIdx, "device", "d", 1, "Audio output device index")
	playlistCmd.Flags().Uint64VarP(&playlistRingCapacity, "capacity", "c", 0, "Ring buffer capacity in samples (0 = default)")
	playlistCmd.Flags().IntVarP(&playlistFramesPerBuffer, "frames", "p", 0, "PortAudio frames per buffer (0 = default)")
	playlistCmd.Flags().BoolVarP(&playlistVerbose, "verbose", "v", false, "Verbose output (debug logging)")
	playlistCmd.Flags().BoolVar(&playlistCrossfade, "crossfade", false, "Enable the engine's crossfader (track changes stay gapless cuts)")
	playlistCmd.Flags().Float32Var(&playlistCrossfadeSeconds, "crossfade-seconds", 3, "Crossfade duration in seconds")
}

func runPlaylist(cmd *cobra.Command, args []string) {
	configureLogging(playlistVerbose)

	files := args

	slog.Info("Initializing engine",
		"device_index", playlistDeviceIdx,
		"file_count", len(files),
		"crossfade", playlistCrossfade)

	if err := engine.Init(engine.Config{
		DeviceIndex:     playlistDeviceIdx,
		FramesPerBuffer: playlistFramesPerBuffer,
		RingCapacity:    playlistRingCapacity,
	}); err != nil {
		slog.Error("Failed to initialize engine", "error", err)
		os.Exit(1)
	}
	defer engine.Shutdown()

	if playlistCrossfade {
		if err := engine.SetCrossfade(true, playlistCrossfadeSeconds); err != nil {
			slog.Error("Failed to enable crossfade", "error", err)
		}
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	slog.Info("Playing", "file", files[0])
	if err := engine.Play(files[0]); err != nil {
		slog.Error("Failed to start playback", "file", files[0], "error", err)
		os.Exit(1)
	}

	current := 0
	if len(files) > 1 {
		slog.Info("Queueing next track", "file", files[1])
		if err := engine.QueueNext(files[1]); err != nil {
			slog.Error("Failed to queue next track", "file", files[1], "error", err)
		}
	}

	done := make(chan struct{})
	go runPlaylistEvents(files, &current, done)

	select {
	case <-done:
		slog.Info("Playlist completed")
	case sig := <-sigChan:
		slog.Info("Signal received, stopping", "signal", sig)
		engine.Stop()
	}

	slog.Info("Exiting")
}

// runPlaylistEvents advances the playlist index as each track ends,
// queueing the file after next so it is pre-buffered ahead of time.
func runPlaylistEvents(files []string, current *int, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for range ticker.C {
		for {
			ev, ok := engine.PollEvent()
			if !ok {
				break
			}
			switch e := ev.(type) {
			case engine.StateChangedEvent:
				slog.Debug("State changed", "state", e.State)
			case engine.CrossfadeStartedEvent:
				slog.Info("Crossfading", "from", e.FromPath, "to", e.ToPath)
			case engine.NextTrackReadyEvent:
				slog.Info("Next track ready", "file", e.Path)
			case engine.ErrorEvent:
				slog.Error("Engine error", "message", e.Message)
			case engine.TrackEndedEvent:
				slog.Info("Track ended", "file", e.Path)
				*current++
				if *current >= len(files) {
					return
				}
				if *current+1 < len(files) {
					next := files[*current+1]
					slog.Info("Queueing next track", "file", next)
					if err := engine.QueueNext(next); err != nil {
						slog.Error("Failed to queue next track", "file", next, "error", err)
					}
				}
			}
		}
	}
}

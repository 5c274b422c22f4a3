package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/drgolem/flickplayer/pkg/engine"

	"github.com/spf13/cobra"
)

const version = "1.0.0"

var (
	deviceIdx       int
	ringCapacity    uint64
	framesPerBuffer int
	showVersion     bool
	verbose         bool
)

// playerCmd represents the play command
var playerCmd = &cobra.Command{
	Use:   "play <audio_file>",
	Short: "Play an audio file (MP3, FLAC, OGG, WAV)",
	Long: `Plays a single audio file through the real-time engine, printing
state and error events as they arrive.

Examples:
  # Play an MP3 file
  flickplayer play music.mp3

  # Play a FLAC file with a specific output device
  flickplayer play --device 0 music.flac

  # Use a larger ring buffer for better stability
  flickplayer play --capacity 960000 music.mp3

Supported Formats:
  MP3:  .mp3 (16-bit lossy)
  FLAC: .flac, .fla (16/24/32-bit lossless)
  OGG:  .ogg (Vorbis)
  WAV:  .wav (8/16/24/32-bit PCM)`,
	Args: cobra.ExactArgs(1),
	Run:  runPlayer,
}

func init() {
	rootCmd.AddCommand(playerCmd)

	playerCmd.Flags().IntVarP(&deviceIdx, "device", "d", 1, "Audio output device index")
	playerCmd.Flags().Uint64VarP(&ringCapacity, "capacity", "c", 0, "Ring buffer capacity in samples (0 = default)")
	playerCmd.Flags().IntVarP(&framesPerBuffer, "frames", "f", 0, "PortAudio frames per buffer (0 = default)")
	playerCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output (debug logging)")
	playerCmd.Flags().BoolVar(&showVersion, "version", false, "Show version information")
}

func runPlayer(cmd *cobra.Command, args []string) {
	if showVersion {
		fmt.Printf("flickplayer v%s\n", version)
		os.Exit(0)
	}

	fileName := args[0]

	configureLogging(verbose)

	if _, err := os.Stat(fileName); os.IsNotExist(err) {
		slog.Error("File not found", "path", fileName)
		os.Exit(1)
	}

	slog.Info("Initializing engine")
	if err := engine.Init(engine.Config{
		DeviceIndex:     deviceIdx,
		FramesPerBuffer: framesPerBuffer,
		RingCapacity:    ringCapacity,
	}); err != nil {
		slog.Error("Failed to initialize engine", "error", err)
		os.Exit(1)
	}
	defer engine.Shutdown()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	slog.Info("Starting playback", "file", fileName)
	if err := engine.Play(fileName); err != nil {
		slog.Error("Failed to start playback", "error", err)
		os.Exit(1)
	}

	done := make(chan struct{})
	go pollEvents(done)

	select {
	case <-done:
		slog.Info("Playback completed")
	case sig := <-sigChan:
		slog.Info("Signal received, stopping", "signal", sig)
		engine.Stop()
	}
}

// pollEvents drains events from the engine and logs them, exiting when
// the track ends or an error arrives.
func pollEvents(done chan struct{}) {
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
				slog.Info("State changed", "state", e.State)
			case engine.TrackEndedEvent:
				slog.Info("Track ended", "file", e.Path)
				return
			case engine.ErrorEvent:
				slog.Error("Engine error", "message", e.Message)
				return
			case engine.CrossfadeStartedEvent:
				slog.Info("Crossfade started", "from", e.FromPath, "to", e.ToPath)
			case engine.NextTrackReadyEvent:
				slog.Info("Next track ready", "file", e.Path)
			}
		}
	}
}

func configureLogging(verbose bool) {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)
}

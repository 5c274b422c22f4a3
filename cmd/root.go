package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "flickplayer",
	Short: "Real-time gapless audio playback engine",
	Long: `flickplayer - a real-time audio playback engine built around a
command/event protocol, a lock-free sample ring buffer, and a
real-time-safe mixer.

Features:
  - Gapless track transitions via a pre-buffered Source Provider
  - Equal-power (and linear/sqrt/s-curve) crossfading between tracks
  - Variable-speed playback via real-time frame interpolation
  - Support for MP3, FLAC, OGG/Vorbis, and WAV audio formats
  - Sample rate transformation and format conversion

Commands:
  - play: Play a single audio file with real-time event reporting
  - playlist: Play a sequence of files gaplessly
  - transform: Convert audio files to different sample rates and WAV format`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

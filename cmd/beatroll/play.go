package main

import (
	"fmt"
	"math"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mkantola/beatroll"
	"github.com/mkantola/beatroll/engine"
	"github.com/mkantola/beatroll/oto"
)

func init() {
	rootCmd.AddCommand(playCmd)
}

var playCmd = &cobra.Command{
	Use:   "play [songfile]",
	Short: "Play a song file through the default audio device",
	Long: `Play loads a .json or .yml song file and runs the playback transport
until the song ends, printing the position as bar:beat:tick. Without a
working audio device the transport still runs, just silently.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return play(args[0])
	},
}

func play(filename string) error {
	var sink beatroll.AudioSink
	if ctx, err := oto.NewContext(); err != nil {
		fmt.Fprintf(os.Stderr, "could not acquire audio context, playing silently: %v\n", err)
	} else {
		sink = ctx.Output()
		defer sink.Close()
	}
	broker := engine.NewBroker()
	model := engine.NewModel(broker)
	player := engine.NewPlayer(broker, sink)
	go player.Run()
	defer func() {
		engine.TrySend(broker.ClosePlayer, struct{}{})
		engine.TimeoutReceive(broker.FinishedPlayer, 3*time.Second)
	}()
	if err := model.LoadSong(filename); err != nil {
		return fmt.Errorf("could not load %v: %v", filename, err)
	}
	song := model.Song()
	model.SubscribeError(func(err error) {
		fmt.Fprintf(os.Stderr, "\n%v\n", err)
	})
	model.PlayPause()
	started := false
	beatsPerBar := song.TimeSignature.BeatsPerBar()
	for range time.Tick(50 * time.Millisecond) {
		model.ProcessMessages()
		if model.State() == engine.StatePlaying {
			started = true
		}
		pos := model.Position()
		bar := int(pos)/beatsPerBar + 1
		beat := int(pos)%beatsPerBar + 1
		tick := int(math.Round((pos - math.Floor(pos)) * beatroll.MIDITicksPerBeat))
		fmt.Printf("\r%s %d:%d:%03d", model.State(), bar, beat, tick)
		if started && model.State() == engine.StateStopped {
			break
		}
	}
	fmt.Println()
	return nil
}

package engine_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/mkantola/beatroll"
	"github.com/mkantola/beatroll/engine"
)

func testPlayerSong() beatroll.Song {
	return beatroll.Song{
		Name:          "test",
		BPM:           120,
		TimeSignature: beatroll.TimeSignature{4, 4},
		Key:           "C",
		Length:        4, // 16 beats
		Tracks: []beatroll.Track{
			{Name: "Track 1", Volume: 80, Notes: []beatroll.Note{
				{Pitch: 60, Duration: 1, Start: 0, Velocity: 80},
				{Pitch: 64, Duration: 1, Start: 4, Velocity: 80},
			}},
		},
	}
}

func newTestPlayer(sink beatroll.AudioSink) (*engine.Player, *engine.Broker) {
	broker := engine.NewBroker()
	player := engine.NewPlayer(broker, sink)
	broker.ToPlayer <- testPlayerSong()
	player.ProcessMessages()
	return player, broker
}

func tickN(player *engine.Player, n int) {
	for i := 0; i < n; i++ {
		player.Tick()
	}
}

func TestPlayerTicksAdvancePosition(t *testing.T) {
	player, broker := newTestPlayer(nil)
	broker.ToPlayer <- engine.PlayMsg{}
	player.ProcessMessages()
	if player.State() != engine.StatePlaying {
		t.Fatalf("state = %v, expected Playing", player.State())
	}
	tickN(player, 80)
	if pos := player.Position(); math.Abs(pos-8) > 1e-6 {
		t.Errorf("position after 80 ticks = %v, expected 8", pos)
	}
}

func TestPlayerStopsAtSongEnd(t *testing.T) {
	player, broker := newTestPlayer(nil)
	broker.ToPlayer <- engine.PlayMsg{}
	player.ProcessMessages()
	tickN(player, 161) // more than 16 beats worth of ticks
	if player.State() != engine.StateStopped {
		t.Errorf("state = %v, expected Stopped", player.State())
	}
	if pos := player.Position(); pos != 0 {
		t.Errorf("position = %v, expected reset to 0", pos)
	}
	tickN(player, 10) // ticking while stopped does nothing
	if pos := player.Position(); pos != 0 {
		t.Errorf("position moved to %v while stopped", pos)
	}
}

func TestPlayerPauseAndResume(t *testing.T) {
	player, broker := newTestPlayer(nil)
	broker.ToPlayer <- engine.PlayMsg{}
	player.ProcessMessages()
	tickN(player, 10)
	pos := player.Position()
	broker.ToPlayer <- engine.PlayMsg{}
	player.ProcessMessages()
	if player.State() != engine.StatePaused {
		t.Fatalf("state = %v, expected Paused", player.State())
	}
	tickN(player, 10)
	if player.Position() != pos {
		t.Errorf("position moved from %v to %v while paused", pos, player.Position())
	}
	broker.ToPlayer <- engine.PlayMsg{}
	player.ProcessMessages()
	if player.State() != engine.StatePlaying {
		t.Fatalf("state = %v, expected Playing after resume", player.State())
	}
	if player.Position() != pos {
		t.Errorf("resuming moved the position from %v to %v", pos, player.Position())
	}
	broker.ToPlayer <- engine.StopMsg{}
	player.ProcessMessages()
	if player.State() != engine.StateStopped || player.Position() != 0 {
		t.Errorf("stop left state %v position %v", player.State(), player.Position())
	}
}

func TestPlayerRestartsFromZero(t *testing.T) {
	player, broker := newTestPlayer(nil)
	broker.ToPlayer <- engine.PlayMsg{}
	player.ProcessMessages()
	tickN(player, 10)
	broker.ToPlayer <- engine.StopMsg{}
	broker.ToPlayer <- engine.PlayMsg{}
	player.ProcessMessages()
	if pos := player.Position(); pos != 0 {
		t.Errorf("playing from stopped starts at %v, expected 0", pos)
	}
}

func TestPlayerSeek(t *testing.T) {
	player, broker := newTestPlayer(nil)
	broker.ToPlayer <- engine.SeekMsg{Beat: 100}
	player.ProcessMessages()
	if pos := player.Position(); pos != 16 {
		t.Errorf("seek past the end gave position %v, expected the clamp to 16", pos)
	}
	broker.ToPlayer <- engine.SeekMsg{Beat: -5}
	player.ProcessMessages()
	if pos := player.Position(); pos != 0 {
		t.Errorf("seek before the start gave position %v, expected 0", pos)
	}
	broker.ToPlayer <- engine.SeekMsg{Beat: 8}
	player.ProcessMessages()
	if pos := player.Position(); pos != 8 {
		t.Errorf("seek gave position %v, expected 8", pos)
	}
}

func TestPlayerSeekBeforeSongLoaded(t *testing.T) {
	broker := engine.NewBroker()
	player := engine.NewPlayer(broker, nil)
	broker.ToPlayer <- engine.SeekMsg{Beat: 8}
	player.ProcessMessages()
	if pos := player.Position(); pos != 0 {
		t.Errorf("seek with no song loaded moved the position to %v", pos)
	}
}

func TestPlayerPositionMessagesInOrder(t *testing.T) {
	player, broker := newTestPlayer(nil)
	broker.ToPlayer <- engine.PlayMsg{}
	player.ProcessMessages()
	for len(broker.ToModel) > 0 {
		<-broker.ToModel
	}
	tickN(player, 50)
	prev := -1.0
	count := 0
	for len(broker.ToModel) > 0 {
		msg := <-broker.ToModel
		if msg.Position < prev {
			t.Fatalf("position went backwards: %v after %v", msg.Position, prev)
		}
		prev = msg.Position
		count++
	}
	if count != 50 {
		t.Errorf("received %v position messages, expected 50", count)
	}
}

type failingSink struct {
	calls int
}

func (f *failingSink) WriteAudio([]float32) error {
	f.calls++
	return errors.New("device lost")
}

func (f *failingSink) Close() error { return nil }

func TestPlayerDropsFailingSink(t *testing.T) {
	sink := &failingSink{}
	player, broker := newTestPlayer(sink)
	broker.ToPlayer <- engine.PlayMsg{}
	player.ProcessMessages()
	for len(broker.ToModel) > 0 {
		<-broker.ToModel
	}
	tickN(player, 20) // a note sounds at position 0, so the first tick hits the sink
	if sink.calls != 1 {
		t.Errorf("sink was called %v times, expected the player to drop it after 1", sink.calls)
	}
	var sawError bool
	for len(broker.ToModel) > 0 {
		if err, ok := (<-broker.ToModel).Data.(error); ok && err != nil {
			sawError = true
		}
	}
	if !sawError {
		t.Errorf("the sink failure was never published to the model")
	}
	if player.State() != engine.StatePlaying {
		t.Errorf("losing the device changed the transport state to %v", player.State())
	}
}

func TestPlayerRunShutdown(t *testing.T) {
	player, broker := newTestPlayer(nil)
	go player.Run()
	if !engine.TrySend(broker.ClosePlayer, struct{}{}) {
		t.Fatalf("could not send the close request")
	}
	if _, ok := engine.TimeoutReceive(broker.FinishedPlayer, time.Second); ok {
		t.Fatalf("FinishedPlayer sent a value, expected it to just close")
	} else if _, stillOpen := <-broker.FinishedPlayer; stillOpen {
		t.Fatalf("FinishedPlayer is still open")
	}
}

func TestPlayerSongSwapKeepsPosition(t *testing.T) {
	player, broker := newTestPlayer(nil)
	broker.ToPlayer <- engine.PlayMsg{}
	player.ProcessMessages()
	tickN(player, 40)
	song := testPlayerSong()
	song.BPM = 60
	broker.ToPlayer <- song
	player.ProcessMessages()
	if pos := player.Position(); math.Abs(pos-4) > 1e-6 {
		t.Errorf("receiving an edited song moved the position to %v", pos)
	}
	tickN(player, 5) // safely past beat 4
	short := testPlayerSong()
	short.Length = 1 // 4 beats, shorter than the current position
	broker.ToPlayer <- short
	player.ProcessMessages()
	if player.State() != engine.StateStopped || player.Position() != 0 {
		t.Errorf("shrinking the song below the position left state %v position %v", player.State(), player.Position())
	}
}

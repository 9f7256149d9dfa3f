package engine

import (
	"fmt"
	"time"

	"github.com/mkantola/beatroll"
	"github.com/viterin/vek/vek32"
)

type (
	// Player is the playback transport, run in a separate goroutine. It is
	// controlled by messages from the model via the broker and publishes its
	// position back to the model on every tick. The player keeps its own
	// deep copy of the song, refreshed by the model on every edit, so it
	// never reads data the model might be mutating.
	Player struct {
		song     beatroll.Song
		loaded   bool
		state    State
		position float64 // in beats

		synth beatroll.Synth
		sink  beatroll.AudioSink // nil when no audio device is available

		broker *Broker
	}

	// State is the transport state.
	State int

	// PlayMsg toggles the transport: Stopped starts playing from the
	// beginning, Playing pauses and Paused resumes.
	PlayMsg struct{}
	// StopMsg stops the transport and resets the position to zero.
	StopMsg struct{}
	// SeekMsg moves the position, clamped into the song bounds.
	SeekMsg struct{ Beat float64 }
)

const (
	StateStopped State = iota
	StatePlaying
	StatePaused
)

func (s State) String() string {
	switch s {
	case StatePlaying:
		return "Playing"
	case StatePaused:
		return "Paused"
	default:
		return "Stopped"
	}
}

// tickIncrement is how far the position advances per tick, in beats.
const tickIncrement = 0.1

// blipSeconds is the length of the tone fired for each note found sounding
// on a tick.
const blipSeconds = 0.1

// NewPlayer creates a player that renders through the given sink. A nil sink
// means no audio device is available: the transport still runs, only the
// synthesis calls become no-ops.
func NewPlayer(broker *Broker, sink beatroll.AudioSink) *Player {
	return &Player{
		broker: broker,
		sink:   sink,
		synth:  beatroll.NewSynth(),
	}
}

// Run executes the tick loop until a close request arrives. While playing,
// the loop sleeps between ticks for one tick's worth of wall-clock time,
// computed from the song tempo; messages are handled as they arrive, so the
// worst-case latency of any command is one sleep interval.
func (p *Player) Run() {
	defer close(p.broker.FinishedPlayer)
	for {
		if p.state == StatePlaying {
			select {
			case <-p.broker.ClosePlayer:
				return
			case msg := <-p.broker.ToPlayer:
				p.handleMessage(msg)
			case <-time.After(p.sleepInterval()):
				p.Tick()
			}
		} else {
			select {
			case <-p.broker.ClosePlayer:
				return
			case msg := <-p.broker.ToPlayer:
				p.handleMessage(msg)
			}
		}
	}
}

// ProcessMessages drains the pending messages without blocking. Run calls
// this implicitly; it is exported for callers embedding the player into
// their own loop.
func (p *Player) ProcessMessages() {
	for {
		select {
		case msg := <-p.broker.ToPlayer:
			p.handleMessage(msg)
		default:
			return
		}
	}
}

// Tick advances the transport by one increment: plays the notes sounding at
// the current position, moves the position forward and publishes it. When
// the position reaches the end of the song, the transport stops and the
// position resets to zero.
func (p *Player) Tick() {
	if p.state != StatePlaying {
		return
	}
	p.playNotesAt(p.position)
	p.position += tickIncrement
	if p.position >= p.song.LengthInBeats() {
		p.position = 0
		p.state = StateStopped
	}
	p.publish(nil)
}

// Position returns the playback position in beats. Only safe from the
// goroutine driving the player.
func (p *Player) Position() float64 { return p.position }

// State returns the transport state. Only safe from the goroutine driving
// the player.
func (p *Player) State() State { return p.state }

func (p *Player) sleepInterval() time.Duration {
	secondsPerBeat := p.song.SecondsPerBeat()
	if secondsPerBeat <= 0 {
		secondsPerBeat = 60.0 / beatroll.DefaultBPM
	}
	return time.Duration(secondsPerBeat * tickIncrement * float64(time.Second))
}

func (p *Player) handleMessage(msg any) {
	switch m := msg.(type) {
	case beatroll.Song:
		p.song = m
		p.loaded = true
		if p.position > p.song.LengthInBeats() {
			p.position = 0
			p.state = StateStopped
		}
	case PlayMsg:
		switch p.state {
		case StateStopped:
			p.position = 0
			p.state = StatePlaying
		case StatePlaying:
			p.state = StatePaused
		case StatePaused:
			p.state = StatePlaying
		}
		p.publish(nil)
	case StopMsg:
		p.state = StateStopped
		p.position = 0
		p.publish(nil)
	case SeekMsg:
		if !p.loaded {
			return // nothing to seek in; never fatal
		}
		beat := m.Beat
		if beat < 0 {
			beat = 0
		}
		if max := p.song.LengthInBeats(); beat > max {
			beat = max
		}
		p.position = beat
		p.publish(nil)
	default:
		// ignore unknown messages
	}
}

// playNotesAt fires a short tone for every note of every audible track
// sounding at the given position. A failing sink is dropped for the rest of
// the session so that one bad write never halts the transport.
func (p *Player) playNotesAt(pos float64) {
	if p.sink == nil {
		return
	}
	for i := range p.song.Tracks {
		if !p.song.TrackAudible(i) {
			continue
		}
		track := &p.song.Tracks[i]
		for _, n := range track.NotesAt(pos) {
			buffer := p.synth.Synthesize(n.Pitch, n.Velocity, blipSeconds)
			vek32.MulNumber_Inplace(buffer, float32(track.Volume)/127)
			if err := p.sink.WriteAudio(buffer); err != nil {
				p.sink = nil
				p.publish(fmt.Errorf("writing audio failed, audio disabled: %w", err))
				return
			}
		}
	}
}

// all sends from the player are non-blocking, so the player can never
// dead-lock on a slow consumer; a full channel only coalesces updates and
// never reorders them
func (p *Player) publish(data any) {
	TrySend(p.broker.ToModel, MsgToModel{
		Position: p.position,
		State:    p.state,
		Data:     data,
	})
}

package engine

import (
	"time"

	"github.com/bep/debounce"
	"github.com/mkantola/beatroll"
)

type (
	// Model is the editing side of the engine. It owns the authoritative
	// Song; every mutation pushes a deep copy of the song to the player
	// through the broker, so the player's tick loop and the editor never
	// touch the same data. All Model methods must be called from a single
	// goroutine (the UI thread).
	Model struct {
		song         beatroll.Song
		currentTrack int

		// note input settings
		grid         float64 // quantization grid in beats; 0 disables
		snapToScale  bool
		scale        string
		noteDuration float64
		noteVelocity byte

		position float64 // last position published by the player
		state    State

		positionObservers []func(beat float64)
		errorObservers    []func(error)
		renderObservers   []func()
		redraw            func(func())

		broker *Broker
	}

	// EditMode selects what a click on the note canvas does. It is passed
	// explicitly into Click instead of being read from widget state.
	EditMode int
)

const (
	ModeSelect EditMode = iota
	ModePencil
	ModeEraser
)

// NewModel creates a model with a default song and announces it to the
// player.
func NewModel(broker *Broker) *Model {
	m := &Model{
		song:         beatroll.NewSong(),
		scale:        "Major",
		grid:         1,
		noteDuration: 1,
		noteVelocity: beatroll.DefaultVelocity,
		redraw:       debounce.New(time.Second / 60),
		broker:       broker,
	}
	m.sendSong()
	return m
}

// Song returns a deep copy of the current song.
func (m *Model) Song() beatroll.Song { return m.song.Copy() }

// CurrentTrack returns the index of the track edits apply to.
func (m *Model) CurrentTrack() int { return m.currentTrack }

// SetCurrentTrack selects the track edits apply to; out of range indices are
// clamped.
func (m *Model) SetCurrentTrack(index int) {
	if index < 0 {
		index = 0
	}
	if index >= len(m.song.Tracks) {
		index = len(m.song.Tracks) - 1
	}
	m.currentTrack = index
}

// SetGrid sets the quantization grid in beats; 0 disables quantization.
func (m *Model) SetGrid(grid float64) { m.grid = grid }

// SetSnapToScale enables snapping input pitches to the given scale. Unknown
// scale names disable snapping.
func (m *Model) SetSnapToScale(enabled bool, scale string) {
	if _, ok := beatroll.Scales[scale]; !ok {
		m.snapToScale = false
		return
	}
	m.snapToScale = enabled
	m.scale = scale
}

// SetNoteInput sets the duration (beats) and velocity of notes added with
// the pencil.
func (m *Model) SetNoteInput(duration float64, velocity byte) {
	if duration > 0 {
		m.noteDuration = duration
	}
	if velocity >= 1 && velocity <= 127 {
		m.noteVelocity = velocity
	}
}

// Click applies an edit at the given canvas position, in beats and
// semitones. The pencil quantizes the time, optionally snaps the pitch to
// the scale and adds a note unless one already sits there; the eraser
// removes the notes near the position; select does nothing to the data.
// Returns whether the song changed.
func (m *Model) Click(mode EditMode, timeBeats float64, pitch int) bool {
	if len(m.song.Tracks) == 0 {
		return false
	}
	track := &m.song.Tracks[m.currentTrack]
	t := beatroll.Quantize(timeBeats, m.grid)
	if m.snapToScale {
		pitch = beatroll.SnapToScale(pitch, beatroll.KeyRoot(m.song.Key), beatroll.Scales[m.scale])
	}
	if pitch < 0 || pitch > 127 {
		return false
	}
	switch mode {
	case ModePencil:
		for _, n := range track.Notes {
			if int(n.Pitch) == pitch && n.Start > t-0.1 && n.Start < t+0.1 {
				return false // a note already sits here
			}
		}
		track.AddNote(beatroll.Note{
			Pitch:    byte(pitch),
			Duration: m.noteDuration,
			Start:    t,
			Velocity: m.noteVelocity,
		})
		m.sendSong()
		return true
	case ModeEraser:
		if track.RemoveNotesNear(t, pitch) == 0 {
			return false
		}
		m.sendSong()
		return true
	default:
		return false
	}
}

// AddNote appends a note to the current track as-is, without quantization.
func (m *Model) AddNote(n beatroll.Note) {
	if len(m.song.Tracks) == 0 {
		return
	}
	m.song.Tracks[m.currentTrack].AddNote(n)
	m.sendSong()
}

// AddTrack appends a new track named after its position and selects it.
func (m *Model) AddTrack() {
	m.song.AddTrack(beatroll.Track{
		Name:   trackName(len(m.song.Tracks) + 1),
		Volume: beatroll.DefaultVolume,
	})
	m.currentTrack = len(m.song.Tracks) - 1
	m.sendSong()
}

// RemoveTrack removes the track at the given index, but never the last one.
func (m *Model) RemoveTrack(index int) {
	if len(m.song.Tracks) <= 1 {
		return
	}
	m.song.RemoveTrack(index)
	if m.currentTrack >= len(m.song.Tracks) {
		m.currentTrack = len(m.song.Tracks) - 1
	}
	m.sendSong()
}

// SetTempo sets the song tempo, clamped to the editor's 60-200 BPM range.
// The player picks the new pacing up on its next tick.
func (m *Model) SetTempo(bpm int) {
	if bpm < 60 {
		bpm = 60
	}
	if bpm > 200 {
		bpm = 200
	}
	m.song.BPM = bpm
	m.sendSong()
}

// PlayPause toggles the transport.
func (m *Model) PlayPause() { TrySend(m.broker.ToPlayer, any(PlayMsg{})) }

// Stop stops the transport and resets the position.
func (m *Model) Stop() { TrySend(m.broker.ToPlayer, any(StopMsg{})) }

// Seek moves the transport to the given beat.
func (m *Model) Seek(beat float64) { TrySend(m.broker.ToPlayer, any(SeekMsg{Beat: beat})) }

// Position returns the last playback position published by the player.
func (m *Model) Position() float64 { return m.position }

// State returns the last transport state published by the player.
func (m *Model) State() State { return m.state }

// SubscribePosition registers an observer called for every processed
// position update, in tick order. A slow model may miss updates (the player
// coalesces), but observers never see them out of order.
func (m *Model) SubscribePosition(fn func(beat float64)) {
	m.positionObservers = append(m.positionObservers, fn)
}

// SubscribeError registers an observer for errors the player reports, e.g.
// a failing audio device.
func (m *Model) SubscribeError(fn func(error)) {
	m.errorObservers = append(m.errorObservers, fn)
}

// SubscribeRender registers a redraw callback, debounced to at most one call
// per frame so that the render cadence stays decoupled from the tick
// cadence. The callback runs on the debouncer's timer goroutine.
func (m *Model) SubscribeRender(fn func()) {
	m.renderObservers = append(m.renderObservers, fn)
}

// ProcessMessages drains the pending player messages without blocking and
// feeds the observers. Call it regularly from the UI loop.
func (m *Model) ProcessMessages() {
	for {
		select {
		case msg := <-m.broker.ToModel:
			m.processMessage(msg)
		default:
			return
		}
	}
}

func (m *Model) processMessage(msg MsgToModel) {
	m.position = msg.Position
	m.state = msg.State
	if err, ok := msg.Data.(error); ok {
		for _, fn := range m.errorObservers {
			fn(err)
		}
	}
	for _, fn := range m.positionObservers {
		fn(msg.Position)
	}
	if len(m.renderObservers) > 0 {
		m.redraw(m.notifyRender)
	}
}

func (m *Model) notifyRender() {
	for _, fn := range m.renderObservers {
		fn()
	}
}

// sendSong pushes a deep copy of the song to the player. The copy is what
// makes concurrent edits safe: the player only ever sees complete
// snapshots.
func (m *Model) sendSong() {
	TrySend(m.broker.ToPlayer, any(m.song.Copy()))
}

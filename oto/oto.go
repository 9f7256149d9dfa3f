// Package oto implements the beatroll audio boundary on top of the
// ebitengine/oto library.
package oto

import (
	"bytes"
	"fmt"

	"github.com/ebitengine/oto/v3"
	"github.com/mkantola/beatroll"
)

type (
	// Context wraps an oto context as a beatroll.AudioContext.
	Context struct {
		context *oto.Context
	}

	// Output plays each buffer it is given as a one-shot oto player. The
	// transport fires short tones at it and never waits for them, so
	// finished players are reaped lazily on the next write.
	Output struct {
		context *oto.Context
		players []*oto.Player
	}
)

const (
	sampleRate   = 44100
	channelCount = 2
)

// NewContext initializes the audio device. An error here means the device is
// unavailable; the caller should continue without audio rather than fail.
func NewContext() (*Context, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: channelCount,
		Format:       oto.FormatSignedInt16LE,
	}
	context, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("cannot create oto context: %w", err)
	}
	<-ready
	return &Context{context: context}, nil
}

func (c *Context) Output() beatroll.AudioSink {
	return &Output{context: c.context}
}

// Close is a no-op as oto contexts cannot be closed; it exists to satisfy
// beatroll.AudioContext.
func (c *Context) Close() error {
	return nil
}

// WriteAudio converts the float buffer to 16-bit little-endian samples and
// starts playing it, returning without waiting for the playback to finish.
func (o *Output) WriteAudio(buffer []float32) error {
	o.reap()
	p := o.context.NewPlayer(bytes.NewReader(floatBufferTo16BitLE(buffer, nil)))
	p.Play()
	o.players = append(o.players, p)
	return nil
}

// Close stops and disposes every player still alive.
func (o *Output) Close() error {
	var firstErr error
	for _, p := range o.players {
		if err := p.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("cannot close oto player: %w", err)
		}
	}
	o.players = nil
	return firstErr
}

// reap closes the players that have finished playing.
func (o *Output) reap() {
	alive := o.players[:0]
	for _, p := range o.players {
		if p.IsPlaying() {
			alive = append(alive, p)
			continue
		}
		p.Close()
	}
	o.players = alive
}

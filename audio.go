package beatroll

type (
	// AudioSink is the fire-and-forget boundary to the audio backend. The
	// engine only produces interleaved float32 buffers; the sink owns the
	// device handle and its concurrency contract.
	AudioSink interface {
		WriteAudio(buffer []float32) error
		Close() error
	}

	// AudioContext is the entry point to an audio backend.
	AudioContext interface {
		Output() AudioSink
		Close() error
	}
)

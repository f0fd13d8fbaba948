package player

// Engine abstracts the audio backend the player drives. Implementations
// wrap whatever actually produces sound (a media element, a native audio
// pipeline); the player only ever talks to this interface.
//
// The engine reports the end of a chapter by calling the player's
// OnChapterEnded method from whatever goroutine it likes.
type Engine interface {
	// Load points the engine at a new source and position. When autoplay
	// is set the engine starts playing as soon as it can.
	Load(url, mimeType string, position float64, autoplay bool) error

	// Play resumes the currently loaded source.
	Play() error

	// Pause halts output, keeping the position.
	Pause() error

	// Seek moves within the currently loaded source.
	Seek(position float64) error

	// Position reports the current position in seconds.
	Position() float64

	// Unload drops the current source and stops output.
	Unload()
}

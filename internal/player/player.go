// Package player implements the audiobook playback state machine: chapter
// sequencing, skip navigation, resume, and the progress save protocol.
package player

import (
	"context"
	"sync"

	"github.com/audioshelfapp/audioshelf-server/internal/domain"
	"github.com/audioshelfapp/audioshelf-server/internal/errors"
	"github.com/audioshelfapp/audioshelf-server/internal/logger"
)

// SkipBackThreshold is the position, in seconds, past which skipping
// backward restarts the current chapter instead of moving to the
// previous one.
const SkipBackThreshold = 3.0

// State is the player's lifecycle state.
type State int

// Player states. A chapter is either being fetched (StateLoading) or
// loaded into the engine; only loaded chapters are ever paused or played.
const (
	StateIdle State = iota
	StateLoading
	StatePaused
	StatePlaying
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StatePaused:
		return "paused"
	case StatePlaying:
		return "playing"
	default:
		return "unknown"
	}
}

// Status is a point-in-time view of the player for observers.
type Status struct {
	State         State
	BookID        string
	ChapterID     string
	ChapterOrder  int
	Position      float64
	Completed     bool
	TotalChapters int
}

// Player drives one audio engine through one book at a time.
//
// All methods are safe for concurrent use. Loads fetch from the server
// without holding the lock; every load carries a sequence number and a
// completion whose sequence no longer matches the current one is
// discarded, so a close or a newer request always wins over a slow
// fetch.
type Player struct {
	client    Client
	engine    Engine
	sessionID string
	logger    *logger.Logger

	mu        sync.Mutex
	state     State
	book      *domain.Book
	chapter   *domain.Chapter
	completed bool
	seq       uint64
}

// New creates a player for one listening session.
func New(client Client, engine Engine, sessionID string, log *logger.Logger) *Player {
	return &Player{
		client:    client,
		engine:    engine,
		sessionID: sessionID,
		logger:    log,
	}
}

// PlayBook opens a book and starts playing from the session's resume
// point. Calling it for the book that is already open toggles
// play/pause instead of reloading; a completed book reloads and
// restarts from its first chapter.
func (p *Player) PlayBook(ctx context.Context, bookID string) error {
	p.mu.Lock()
	if p.book != nil && p.book.ID == bookID && p.state != StateLoading && !p.completed {
		p.mu.Unlock()
		return p.TogglePlayPause(ctx)
	}

	// Record the outgoing book's position before switching away.
	saveBookID, snap, hasSave := p.snapshotLocked()
	prev := p.state
	p.seq++
	seq := p.seq
	p.state = StateLoading
	p.mu.Unlock()

	if hasSave {
		p.persist(ctx, saveBookID, snap)
	}

	book, err := p.client.GetBook(ctx, bookID)
	if err != nil {
		p.failLoad(seq, prev)
		return err
	}

	// A failed progress fetch degrades to starting from the beginning.
	progress, err := p.client.GetProgress(ctx, p.sessionID, bookID)
	if err != nil {
		progress = nil
	}

	chapter, position := domain.ResolveResume(book, progress)
	if chapter == nil {
		p.failLoad(seq, prev)
		return errors.NotFound("book has no chapters")
	}

	info, err := p.client.GetPlayInfo(ctx, bookID, chapter.ID)
	if err != nil {
		p.failLoad(seq, prev)
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if seq != p.seq {
		// A newer request or a close superseded this load.
		return nil
	}

	if err := p.engine.Load(info.PlayURL, info.MimeType, position, true); err != nil {
		p.engine.Unload()
		p.resetLocked()
		return err
	}

	p.book = book
	p.chapter = chapter
	p.completed = false
	p.state = StatePlaying
	return nil
}

// PlayChapter jumps to a specific chapter of the open book, starting at
// position 0. The outgoing chapter's position is saved first.
func (p *Player) PlayChapter(ctx context.Context, chapterID string) error {
	p.mu.Lock()
	if p.book == nil {
		p.mu.Unlock()
		return errors.Validation("no book is open")
	}
	chapter := p.book.ChapterByID(chapterID)
	if chapter == nil {
		p.mu.Unlock()
		return errors.NotFoundf("chapter %s not found in book", chapterID)
	}

	bookID := p.book.ID
	saveBookID, snap, hasSave := p.snapshotLocked()
	prev := p.state
	p.seq++
	seq := p.seq
	p.state = StateLoading
	p.mu.Unlock()

	if hasSave {
		p.persist(ctx, saveBookID, snap)
	}

	info, err := p.client.GetPlayInfo(ctx, bookID, chapterID)
	if err != nil {
		p.failLoad(seq, prev)
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if seq != p.seq {
		return nil
	}

	if err := p.engine.Load(info.PlayURL, info.MimeType, 0, true); err != nil {
		p.engine.Unload()
		p.resetLocked()
		return err
	}

	p.chapter = chapter
	p.completed = false
	p.state = StatePlaying
	return nil
}

// TogglePlayPause flips between playing and paused. Pausing saves the
// current position; the toggle is a no-op while idle or loading.
func (p *Player) TogglePlayPause(ctx context.Context) error {
	p.mu.Lock()

	switch p.state {
	case StatePlaying:
		if err := p.engine.Pause(); err != nil {
			p.mu.Unlock()
			return err
		}
		p.state = StatePaused
		bookID, snap, hasSave := p.snapshotLocked()
		p.mu.Unlock()
		if hasSave {
			p.persist(ctx, bookID, snap)
		}
		return nil

	case StatePaused:
		if err := p.engine.Play(); err != nil {
			p.mu.Unlock()
			return err
		}
		p.state = StatePlaying
		p.mu.Unlock()
		return nil

	default:
		p.mu.Unlock()
		return nil
	}
}

// SkipForward moves to the next chapter in order. At the last chapter
// it finishes the book, same as playing that chapter to its end.
func (p *Player) SkipForward(ctx context.Context) error {
	p.mu.Lock()
	if p.book == nil || p.chapter == nil {
		p.mu.Unlock()
		return nil
	}
	next := p.book.NextChapter(p.chapter)
	if next == nil {
		bookID, snap := p.finishBookLocked()
		p.mu.Unlock()
		p.persist(ctx, bookID, snap)
		return nil
	}
	p.mu.Unlock()

	return p.PlayChapter(ctx, next.ID)
}

// SkipBackward restarts the current chapter when more than
// SkipBackThreshold seconds in; otherwise it moves to the previous
// chapter. At the start of the first chapter it is a no-op.
func (p *Player) SkipBackward(ctx context.Context) error {
	p.mu.Lock()
	if p.book == nil || p.chapter == nil {
		p.mu.Unlock()
		return nil
	}

	if p.engine.Position() > SkipBackThreshold {
		err := p.engine.Seek(0)
		p.mu.Unlock()
		return err
	}

	prev := p.book.PrevChapter(p.chapter)
	p.mu.Unlock()
	if prev == nil {
		return nil
	}

	return p.PlayChapter(ctx, prev.ID)
}

// Seek moves within the current chapter, clamped to its duration.
func (p *Player) Seek(position float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.chapter == nil {
		return nil
	}
	if position < 0 {
		position = 0
	}
	if position > p.chapter.Duration {
		position = p.chapter.Duration
	}
	return p.engine.Seek(position)
}

// OnEnginePlaying reconciles state when playback starts outside the
// player's control, e.g. hardware media keys acting on the engine
// directly.
func (p *Player) OnEnginePlaying() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == StatePaused {
		p.state = StatePlaying
	}
}

// OnEnginePaused reconciles state when the engine pauses on its own.
// The position is saved, same as an explicit pause.
func (p *Player) OnEnginePaused(ctx context.Context) {
	p.mu.Lock()
	if p.state != StatePlaying {
		p.mu.Unlock()
		return
	}
	p.state = StatePaused
	bookID, snap, hasSave := p.snapshotLocked()
	p.mu.Unlock()

	if hasSave {
		p.persist(ctx, bookID, snap)
	}
}

// OnChapterEnded is called by the engine when the loaded chapter plays
// to its end. A next chapter auto-advances; the last chapter marks the
// book completed at its full duration.
func (p *Player) OnChapterEnded(ctx context.Context) {
	p.mu.Lock()
	if p.book == nil || p.chapter == nil || p.state != StatePlaying {
		p.mu.Unlock()
		return
	}

	next := p.book.NextChapter(p.chapter)
	if next != nil {
		p.mu.Unlock()
		// The switch save inside PlayChapter records the finished
		// chapter's final position.
		if err := p.PlayChapter(ctx, next.ID); err != nil && p.logger != nil {
			p.logger.Warn("auto-advance failed", "chapter_id", next.ID, "error", err)
		}
		return
	}

	// Last chapter: the book is finished.
	bookID, snap := p.finishBookLocked()
	p.mu.Unlock()

	p.persist(ctx, bookID, snap)
}

// finishBookLocked pauses the engine and marks the open book completed
// at the current chapter's full duration. Caller holds the mutex and
// persists the returned snapshot after unlocking.
func (p *Player) finishBookLocked() (string, ProgressSnapshot) {
	_ = p.engine.Pause()
	p.state = StatePaused
	p.completed = true
	return p.book.ID, ProgressSnapshot{
		ChapterID: p.chapter.ID,
		Position:  p.chapter.Duration,
		Completed: true,
	}
}

// Close saves the current position, unloads the engine, and returns to
// idle. Any in-flight load is invalidated.
func (p *Player) Close(ctx context.Context) {
	p.mu.Lock()
	bookID, snap, hasSave := p.snapshotLocked()
	p.engine.Unload()
	p.resetLocked()
	p.mu.Unlock()

	if hasSave {
		p.persist(ctx, bookID, snap)
	}
}

// SaveNow persists the current position if a chapter is playing. Used
// by the periodic persister; errors are swallowed there as everywhere.
func (p *Player) SaveNow(ctx context.Context) {
	p.mu.Lock()
	if p.state != StatePlaying {
		p.mu.Unlock()
		return
	}
	bookID, snap, hasSave := p.snapshotLocked()
	p.mu.Unlock()

	if hasSave {
		p.persist(ctx, bookID, snap)
	}
}

// Status reports the player's current state.
func (p *Player) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()

	status := Status{
		State:     p.state,
		Completed: p.completed,
	}
	if p.book != nil {
		status.BookID = p.book.ID
		status.TotalChapters = len(p.book.Chapters)
	}
	if p.chapter != nil {
		status.ChapterID = p.chapter.ID
		status.ChapterOrder = p.chapter.Order
		status.Position = p.engine.Position()
	}
	return status
}

// snapshotLocked captures a consistent (chapter, position) pair for
// saving. Caller holds the mutex. Returns ok=false when nothing is
// loaded.
func (p *Player) snapshotLocked() (bookID string, snap ProgressSnapshot, ok bool) {
	if p.book == nil || p.chapter == nil {
		return "", ProgressSnapshot{}, false
	}
	return p.book.ID, ProgressSnapshot{
		ChapterID: p.chapter.ID,
		Position:  p.engine.Position(),
		Completed: p.completed,
	}, true
}

// persist sends one snapshot to the server. Failures are logged and
// swallowed; a missed save never interrupts playback.
func (p *Player) persist(ctx context.Context, bookID string, snap ProgressSnapshot) {
	if err := p.client.SaveProgress(ctx, p.sessionID, bookID, snap); err != nil && p.logger != nil {
		p.logger.Warn("progress save failed",
			"book_id", bookID,
			"chapter_id", snap.ChapterID,
			"error", err,
		)
	}
}

// failLoad rolls back a load that errored, unless a newer request has
// already taken over. A failed fetch never stops whatever chapter is
// already in the engine: if one was playing or paused before the
// request, the player returns to that state.
func (p *Player) failLoad(seq uint64, prev State) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if seq != p.seq {
		return
	}
	if p.chapter != nil && (prev == StatePlaying || prev == StatePaused) {
		p.state = prev
		return
	}
	p.resetLocked()
}

// resetLocked returns the player to idle. Caller holds the mutex.
func (p *Player) resetLocked() {
	p.book = nil
	p.chapter = nil
	p.completed = false
	p.state = StateIdle
	p.seq++
}

package player

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/audioshelfapp/audioshelf-server/internal/domain"
	domainerrors "github.com/audioshelfapp/audioshelf-server/internal/errors"
	"github.com/audioshelfapp/audioshelf-server/internal/logger"
)

const testSessionID = "session-test"

// fakeEngine records every call and lets tests set the reported position.
type fakeEngine struct {
	mu       sync.Mutex
	loaded   bool
	playing  bool
	url      string
	mimeType string
	position float64

	loads   []string
	seeks   []float64
	pauses  int
	unloads int

	loadErr error
}

func (e *fakeEngine) Load(url, mimeType string, position float64, autoplay bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.loadErr != nil {
		return e.loadErr
	}
	e.loaded = true
	e.playing = autoplay
	e.url = url
	e.mimeType = mimeType
	e.position = position
	e.loads = append(e.loads, url)
	return nil
}

func (e *fakeEngine) Play() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.playing = true
	return nil
}

func (e *fakeEngine) Pause() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.playing = false
	e.pauses++
	return nil
}

func (e *fakeEngine) Seek(position float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.position = position
	e.seeks = append(e.seeks, position)
	return nil
}

func (e *fakeEngine) Position() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.position
}

func (e *fakeEngine) Unload() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.loaded = false
	e.playing = false
	e.unloads++
}

func (e *fakeEngine) setPosition(pos float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.position = pos
}

func (e *fakeEngine) loadCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.loads)
}

func (e *fakeEngine) lastLoad() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.loads) == 0 {
		return ""
	}
	return e.loads[len(e.loads)-1]
}

type savedProgress struct {
	SessionID string
	BookID    string
	Snap      ProgressSnapshot
}

// fakeClient serves fixture books from memory. GetPlayInfo can be made
// to block on a channel so tests can interleave a slow load with other
// player calls.
type fakeClient struct {
	mu       sync.Mutex
	books    map[string]*domain.Book
	progress map[string]*domain.PlaybackProgress
	saves    []savedProgress

	saveErr    error
	getBookErr error

	playInfoBlock   chan struct{}
	playInfoEntered chan struct{}
}

func newFakeClient(books ...*domain.Book) *fakeClient {
	c := &fakeClient{
		books:    make(map[string]*domain.Book),
		progress: make(map[string]*domain.PlaybackProgress),
	}
	for _, b := range books {
		c.books[b.ID] = b
	}
	return c
}

func (c *fakeClient) GetBook(_ context.Context, bookID string) (*domain.Book, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getBookErr != nil {
		return nil, c.getBookErr
	}
	book, ok := c.books[bookID]
	if !ok {
		return nil, domainerrors.NotFoundf("book %s not found", bookID)
	}
	return book, nil
}

func (c *fakeClient) GetPlayInfo(_ context.Context, bookID, chapterID string) (*PlayInfo, error) {
	c.mu.Lock()
	block := c.playInfoBlock
	entered := c.playInfoEntered
	book, ok := c.books[bookID]
	c.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
	}
	if block != nil {
		<-block
	}

	if !ok {
		return nil, domainerrors.NotFoundf("book %s not found", bookID)
	}
	ch := book.ChapterByID(chapterID)
	if ch == nil {
		return nil, domainerrors.NotFoundf("chapter %s not found", chapterID)
	}
	return &PlayInfo{
		PlayURL:   "https://cdn.test/" + chapterID,
		MimeType:  ch.MimeType,
		ChapterID: ch.ID,
	}, nil
}

func (c *fakeClient) GetProgress(_ context.Context, sessionID, bookID string) (*domain.PlaybackProgress, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.progress[domain.ProgressID(sessionID, bookID)]; ok {
		return p, nil
	}
	return &domain.PlaybackProgress{SessionID: sessionID, BookID: bookID}, nil
}

func (c *fakeClient) SaveProgress(_ context.Context, sessionID, bookID string, snap ProgressSnapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.saveErr != nil {
		return c.saveErr
	}
	c.saves = append(c.saves, savedProgress{SessionID: sessionID, BookID: bookID, Snap: snap})
	c.progress[domain.ProgressID(sessionID, bookID)] = &domain.PlaybackProgress{
		SessionID:        sessionID,
		BookID:           bookID,
		CurrentChapterID: snap.ChapterID,
		Position:         snap.Position,
		Completed:        snap.Completed,
		UpdatedAt:        time.Now(),
	}
	return nil
}

func (c *fakeClient) setProgress(sessionID string, p *domain.PlaybackProgress) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.progress[domain.ProgressID(sessionID, p.BookID)] = p
}

func (c *fakeClient) savedCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.saves)
}

func (c *fakeClient) lastSave() savedProgress {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saves[len(c.saves)-1]
}

func testBook(id string) *domain.Book {
	return &domain.Book{
		ID:     id,
		Title:  "The Dispossessed",
		Author: "Ursula K. Le Guin",
		Chapters: []domain.Chapter{
			{ID: id + "-ch1", Title: "Chapter 1", Order: 1, MimeType: "audio/mpeg", Duration: 100},
			{ID: id + "-ch2", Title: "Chapter 2", Order: 2, MimeType: "audio/mpeg", Duration: 200},
			{ID: id + "-ch3", Title: "Chapter 3", Order: 3, MimeType: "audio/mpeg", Duration: 50},
		},
		TotalDuration: 350,
	}
}

func setupPlayer(t *testing.T, books ...*domain.Book) (*Player, *fakeEngine, *fakeClient) {
	t.Helper()
	if len(books) == 0 {
		books = []*domain.Book{testBook("book-1")}
	}
	client := newFakeClient(books...)
	engine := &fakeEngine{}
	log := logger.New(logger.Config{Writer: io.Discard, Format: "json"})
	return New(client, engine, testSessionID, log), engine, client
}

func TestPlayBookStartsFromBeginning(t *testing.T) {
	p, engine, _ := setupPlayer(t)
	ctx := context.Background()

	require.NoError(t, p.PlayBook(ctx, "book-1"))

	status := p.Status()
	assert.Equal(t, StatePlaying, status.State)
	assert.Equal(t, "book-1", status.BookID)
	assert.Equal(t, "book-1-ch1", status.ChapterID)
	assert.Equal(t, 0.0, status.Position)
	assert.Equal(t, 3, status.TotalChapters)
	assert.Equal(t, "https://cdn.test/book-1-ch1", engine.lastLoad())
	assert.Equal(t, "audio/mpeg", engine.mimeType)
	assert.True(t, engine.playing)
}

func TestPlayBookResumesSavedPosition(t *testing.T) {
	p, engine, client := setupPlayer(t)
	client.setProgress(testSessionID, &domain.PlaybackProgress{
		SessionID:        testSessionID,
		BookID:           "book-1",
		CurrentChapterID: "book-1-ch2",
		Position:         42.5,
	})

	require.NoError(t, p.PlayBook(context.Background(), "book-1"))

	status := p.Status()
	assert.Equal(t, "book-1-ch2", status.ChapterID)
	assert.Equal(t, 42.5, engine.Position())
	assert.Equal(t, "https://cdn.test/book-1-ch2", engine.lastLoad())
}

func TestPlayBookResumeFallsBackWhenChapterGone(t *testing.T) {
	p, engine, client := setupPlayer(t)
	client.setProgress(testSessionID, &domain.PlaybackProgress{
		SessionID:        testSessionID,
		BookID:           "book-1",
		CurrentChapterID: "deleted-chapter",
		Position:         99,
	})

	require.NoError(t, p.PlayBook(context.Background(), "book-1"))

	assert.Equal(t, "book-1-ch1", p.Status().ChapterID)
	assert.Equal(t, 0.0, engine.Position())
}

func TestPlayBookCompletedRestartsFromStart(t *testing.T) {
	p, engine, client := setupPlayer(t)
	client.setProgress(testSessionID, &domain.PlaybackProgress{
		SessionID:        testSessionID,
		BookID:           "book-1",
		CurrentChapterID: "book-1-ch3",
		Position:         50,
		Completed:        true,
	})

	require.NoError(t, p.PlayBook(context.Background(), "book-1"))

	status := p.Status()
	assert.Equal(t, "book-1-ch1", status.ChapterID)
	assert.Equal(t, 0.0, engine.Position())
	assert.False(t, status.Completed)
}

func TestPlayBookSameBookToggles(t *testing.T) {
	p, engine, client := setupPlayer(t)
	ctx := context.Background()

	require.NoError(t, p.PlayBook(ctx, "book-1"))
	engine.setPosition(12)

	// Second call pauses instead of reloading.
	require.NoError(t, p.PlayBook(ctx, "book-1"))
	assert.Equal(t, StatePaused, p.Status().State)
	assert.Equal(t, 1, engine.loadCount())
	require.Equal(t, 1, client.savedCount())
	assert.Equal(t, 12.0, client.lastSave().Snap.Position)

	// Third call resumes.
	require.NoError(t, p.PlayBook(ctx, "book-1"))
	assert.Equal(t, StatePlaying, p.Status().State)
	assert.Equal(t, 1, engine.loadCount())
}

func TestPlayBookSwitchSavesOutgoing(t *testing.T) {
	p, engine, client := setupPlayer(t, testBook("book-1"), testBook("book-2"))
	ctx := context.Background()

	require.NoError(t, p.PlayBook(ctx, "book-1"))
	engine.setPosition(37)

	require.NoError(t, p.PlayBook(ctx, "book-2"))

	require.Equal(t, 1, client.savedCount())
	save := client.lastSave()
	assert.Equal(t, "book-1", save.BookID)
	assert.Equal(t, "book-1-ch1", save.Snap.ChapterID)
	assert.Equal(t, 37.0, save.Snap.Position)

	assert.Equal(t, "book-2", p.Status().BookID)
	assert.Equal(t, "book-2-ch1", p.Status().ChapterID)
}

func TestPlayBookUnknownBook(t *testing.T) {
	p, engine, _ := setupPlayer(t)

	err := p.PlayBook(context.Background(), "nope")
	require.Error(t, err)
	assert.Equal(t, StateIdle, p.Status().State)
	assert.Equal(t, 0, engine.loadCount())
}

func TestPlayBookProgressFetchFailureStartsFromBeginning(t *testing.T) {
	client := newFakeClient(testBook("book-1"))
	engine := &fakeEngine{}
	p := New(&progressErrClient{fakeClient: client}, engine, testSessionID, nil)

	require.NoError(t, p.PlayBook(context.Background(), "book-1"))
	assert.Equal(t, "book-1-ch1", p.Status().ChapterID)
	assert.Equal(t, 0.0, engine.Position())
}

// progressErrClient fails every progress fetch.
type progressErrClient struct {
	*fakeClient
}

func (c *progressErrClient) GetProgress(context.Context, string, string) (*domain.PlaybackProgress, error) {
	return nil, domainerrors.Internal("store unavailable")
}

func TestTogglePauseSavesPosition(t *testing.T) {
	p, engine, client := setupPlayer(t)
	ctx := context.Background()

	require.NoError(t, p.PlayBook(ctx, "book-1"))
	engine.setPosition(12)

	require.NoError(t, p.TogglePlayPause(ctx))

	assert.Equal(t, StatePaused, p.Status().State)
	assert.False(t, engine.playing)
	require.Equal(t, 1, client.savedCount())
	save := client.lastSave()
	assert.Equal(t, testSessionID, save.SessionID)
	assert.Equal(t, "book-1-ch1", save.Snap.ChapterID)
	assert.Equal(t, 12.0, save.Snap.Position)
	assert.False(t, save.Snap.Completed)
}

func TestToggleResumeDoesNotSave(t *testing.T) {
	p, engine, client := setupPlayer(t)
	ctx := context.Background()

	require.NoError(t, p.PlayBook(ctx, "book-1"))
	require.NoError(t, p.TogglePlayPause(ctx))
	saves := client.savedCount()

	require.NoError(t, p.TogglePlayPause(ctx))

	assert.Equal(t, StatePlaying, p.Status().State)
	assert.True(t, engine.playing)
	assert.Equal(t, saves, client.savedCount())
}

func TestToggleWhileIdleIsNoop(t *testing.T) {
	p, engine, client := setupPlayer(t)

	require.NoError(t, p.TogglePlayPause(context.Background()))

	assert.Equal(t, StateIdle, p.Status().State)
	assert.Equal(t, 0, engine.loadCount())
	assert.Equal(t, 0, client.savedCount())
}

func TestPlayChapterJumpsToStart(t *testing.T) {
	p, engine, client := setupPlayer(t)
	ctx := context.Background()

	require.NoError(t, p.PlayBook(ctx, "book-1"))
	engine.setPosition(55)

	require.NoError(t, p.PlayChapter(ctx, "book-1-ch3"))

	status := p.Status()
	assert.Equal(t, StatePlaying, status.State)
	assert.Equal(t, "book-1-ch3", status.ChapterID)
	assert.Equal(t, 0.0, engine.Position())

	// The outgoing chapter was saved at its last position.
	require.Equal(t, 1, client.savedCount())
	assert.Equal(t, "book-1-ch1", client.lastSave().Snap.ChapterID)
	assert.Equal(t, 55.0, client.lastSave().Snap.Position)
}

func TestPlayChapterUnknownChapter(t *testing.T) {
	p, _, _ := setupPlayer(t)
	ctx := context.Background()

	require.NoError(t, p.PlayBook(ctx, "book-1"))

	err := p.PlayChapter(ctx, "nope")
	require.Error(t, err)
	var derr *domainerrors.Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, domainerrors.CodeNotFound, derr.Code)

	// The open book is untouched.
	assert.Equal(t, "book-1-ch1", p.Status().ChapterID)
}

func TestPlayChapterWithoutOpenBook(t *testing.T) {
	p, _, _ := setupPlayer(t)

	err := p.PlayChapter(context.Background(), "book-1-ch1")
	require.Error(t, err)
	var derr *domainerrors.Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, domainerrors.CodeValidation, derr.Code)
}

func TestSkipForwardAdvances(t *testing.T) {
	p, engine, _ := setupPlayer(t)
	ctx := context.Background()

	require.NoError(t, p.PlayBook(ctx, "book-1"))
	require.NoError(t, p.SkipForward(ctx))

	assert.Equal(t, "book-1-ch2", p.Status().ChapterID)
	assert.Equal(t, 0.0, engine.Position())
}

func TestSkipForwardAtLastChapterCompletes(t *testing.T) {
	p, engine, client := setupPlayer(t)
	ctx := context.Background()

	require.NoError(t, p.PlayBook(ctx, "book-1"))
	require.NoError(t, p.PlayChapter(ctx, "book-1-ch3"))
	loads := engine.loadCount()

	require.NoError(t, p.SkipForward(ctx))

	// Same terminal state as playing the last chapter to its end.
	status := p.Status()
	assert.Equal(t, StatePaused, status.State)
	assert.True(t, status.Completed)
	assert.Equal(t, "book-1-ch3", status.ChapterID)
	assert.Equal(t, loads, engine.loadCount())

	save := client.lastSave()
	assert.Equal(t, "book-1-ch3", save.Snap.ChapterID)
	assert.Equal(t, 50.0, save.Snap.Position)
	assert.True(t, save.Snap.Completed)
}

func TestSkipBackwardRestartsPastThreshold(t *testing.T) {
	p, engine, _ := setupPlayer(t)
	ctx := context.Background()

	require.NoError(t, p.PlayBook(ctx, "book-1"))
	require.NoError(t, p.PlayChapter(ctx, "book-1-ch2"))
	engine.setPosition(10)

	require.NoError(t, p.SkipBackward(ctx))

	assert.Equal(t, "book-1-ch2", p.Status().ChapterID)
	assert.Equal(t, []float64{0}, engine.seeks)
}

func TestSkipBackwardToPreviousChapter(t *testing.T) {
	p, engine, _ := setupPlayer(t)
	ctx := context.Background()

	require.NoError(t, p.PlayBook(ctx, "book-1"))
	require.NoError(t, p.PlayChapter(ctx, "book-1-ch2"))
	engine.setPosition(1.5)

	require.NoError(t, p.SkipBackward(ctx))

	assert.Equal(t, "book-1-ch1", p.Status().ChapterID)
	assert.Equal(t, 0.0, engine.Position())
	assert.Empty(t, engine.seeks)
}

func TestSkipBackwardAtFirstChapterIsNoop(t *testing.T) {
	p, engine, _ := setupPlayer(t)
	ctx := context.Background()

	require.NoError(t, p.PlayBook(ctx, "book-1"))
	engine.setPosition(1.5)

	require.NoError(t, p.SkipBackward(ctx))

	status := p.Status()
	assert.Equal(t, "book-1-ch1", status.ChapterID)
	assert.Equal(t, StatePlaying, status.State)
	assert.Empty(t, engine.seeks)
}

func TestSeekClampsToChapterDuration(t *testing.T) {
	p, engine, _ := setupPlayer(t)
	ctx := context.Background()

	require.NoError(t, p.PlayBook(ctx, "book-1"))

	require.NoError(t, p.Seek(500))
	assert.Equal(t, 100.0, engine.Position())

	require.NoError(t, p.Seek(-3))
	assert.Equal(t, 0.0, engine.Position())
}

func TestEnginePauseEventSavesAndReconciles(t *testing.T) {
	p, engine, client := setupPlayer(t)
	ctx := context.Background()

	require.NoError(t, p.PlayBook(ctx, "book-1"))
	engine.setPosition(19)

	p.OnEnginePaused(ctx)

	assert.Equal(t, StatePaused, p.Status().State)
	require.Equal(t, 1, client.savedCount())
	assert.Equal(t, 19.0, client.lastSave().Snap.Position)

	// And back again when the engine resumes on its own.
	p.OnEnginePlaying()
	assert.Equal(t, StatePlaying, p.Status().State)
}

func TestEngineEventsWhileIdleAreIgnored(t *testing.T) {
	p, _, client := setupPlayer(t)
	ctx := context.Background()

	p.OnEnginePaused(ctx)
	p.OnEnginePlaying()

	assert.Equal(t, StateIdle, p.Status().State)
	assert.Equal(t, 0, client.savedCount())
}

func TestChapterEndedAdvances(t *testing.T) {
	p, engine, client := setupPlayer(t)
	ctx := context.Background()

	require.NoError(t, p.PlayBook(ctx, "book-1"))
	engine.setPosition(100)

	p.OnChapterEnded(ctx)

	status := p.Status()
	assert.Equal(t, StatePlaying, status.State)
	assert.Equal(t, "book-1-ch2", status.ChapterID)
	assert.Equal(t, 0.0, engine.Position())

	require.Equal(t, 1, client.savedCount())
	save := client.lastSave()
	assert.Equal(t, "book-1-ch1", save.Snap.ChapterID)
	assert.Equal(t, 100.0, save.Snap.Position)
	assert.False(t, save.Snap.Completed)
}

func TestChapterEndedAtLastChapterCompletes(t *testing.T) {
	p, engine, client := setupPlayer(t)
	ctx := context.Background()

	require.NoError(t, p.PlayBook(ctx, "book-1"))
	require.NoError(t, p.PlayChapter(ctx, "book-1-ch3"))
	engine.setPosition(50)

	p.OnChapterEnded(ctx)

	status := p.Status()
	assert.Equal(t, StatePaused, status.State)
	assert.True(t, status.Completed)
	assert.Equal(t, "book-1-ch3", status.ChapterID)
	assert.False(t, engine.playing)

	save := client.lastSave()
	assert.Equal(t, "book-1-ch3", save.Snap.ChapterID)
	assert.Equal(t, 50.0, save.Snap.Position)
	assert.True(t, save.Snap.Completed)
}

func TestChapterEndedWhileIdleIsIgnored(t *testing.T) {
	p, engine, client := setupPlayer(t)

	p.OnChapterEnded(context.Background())

	assert.Equal(t, StateIdle, p.Status().State)
	assert.Equal(t, 0, engine.loadCount())
	assert.Equal(t, 0, client.savedCount())
}

func TestCloseSavesAndUnloads(t *testing.T) {
	p, engine, client := setupPlayer(t)
	ctx := context.Background()

	require.NoError(t, p.PlayBook(ctx, "book-1"))
	engine.setPosition(77)

	p.Close(ctx)

	status := p.Status()
	assert.Equal(t, StateIdle, status.State)
	assert.Empty(t, status.BookID)
	assert.Equal(t, 1, engine.unloads)

	require.Equal(t, 1, client.savedCount())
	assert.Equal(t, 77.0, client.lastSave().Snap.Position)
}

func TestCloseWhileIdleIsNoop(t *testing.T) {
	p, engine, client := setupPlayer(t)

	p.Close(context.Background())

	assert.Equal(t, 1, engine.unloads)
	assert.Equal(t, 0, client.savedCount())
}

func TestStaleLoadDiscarded(t *testing.T) {
	p, engine, client := setupPlayer(t)
	ctx := context.Background()

	client.mu.Lock()
	client.playInfoBlock = make(chan struct{})
	client.playInfoEntered = make(chan struct{}, 1)
	client.mu.Unlock()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, p.PlayBook(ctx, "book-1"))
	}()

	// Wait until the load is in flight, then close the player under it.
	<-client.playInfoEntered
	p.Close(ctx)
	close(client.playInfoBlock)
	wg.Wait()

	// The stale result committed nothing.
	assert.Equal(t, StateIdle, p.Status().State)
	assert.Equal(t, 0, engine.loadCount())
}

func TestNewerLoadWinsOverSlowOne(t *testing.T) {
	p, engine, client := setupPlayer(t, testBook("book-1"), testBook("book-2"))
	ctx := context.Background()

	client.mu.Lock()
	client.playInfoBlock = make(chan struct{})
	client.playInfoEntered = make(chan struct{}, 2)
	client.mu.Unlock()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		assert.NoError(t, p.PlayBook(ctx, "book-1"))
	}()
	<-client.playInfoEntered

	go func() {
		defer wg.Done()
		assert.NoError(t, p.PlayBook(ctx, "book-2"))
	}()
	<-client.playInfoEntered

	close(client.playInfoBlock)
	wg.Wait()

	// Only the second request's chapter is loaded.
	assert.Equal(t, 1, engine.loadCount())
	assert.Equal(t, "book-2", p.Status().BookID)
	assert.Equal(t, "https://cdn.test/book-2-ch1", engine.lastLoad())
}

func TestSaveErrorsAreSwallowed(t *testing.T) {
	p, engine, client := setupPlayer(t)
	ctx := context.Background()

	require.NoError(t, p.PlayBook(ctx, "book-1"))
	engine.setPosition(30)
	client.mu.Lock()
	client.saveErr = domainerrors.Internal("store unavailable")
	client.mu.Unlock()

	require.NoError(t, p.TogglePlayPause(ctx))
	assert.Equal(t, StatePaused, p.Status().State)

	p.Close(ctx)
	assert.Equal(t, StateIdle, p.Status().State)
}

func TestEngineLoadFailureResets(t *testing.T) {
	p, engine, _ := setupPlayer(t)
	engine.loadErr = domainerrors.Internal("codec unsupported")

	err := p.PlayBook(context.Background(), "book-1")
	require.Error(t, err)
	assert.Equal(t, StateIdle, p.Status().State)
	assert.Equal(t, 1, engine.unloads)
}

// playInfoErrClient fails play-URL resolution for one chapter.
type playInfoErrClient struct {
	*fakeClient
	failChapter string
}

func (c *playInfoErrClient) GetPlayInfo(ctx context.Context, bookID, chapterID string) (*PlayInfo, error) {
	if chapterID == c.failChapter {
		return nil, domainerrors.Upstream("play url unavailable")
	}
	return c.fakeClient.GetPlayInfo(ctx, bookID, chapterID)
}

func TestFailedChapterFetchKeepsCurrentPlayback(t *testing.T) {
	client := newFakeClient(testBook("book-1"))
	engine := &fakeEngine{}
	p := New(&playInfoErrClient{fakeClient: client, failChapter: "book-1-ch2"}, engine, testSessionID, nil)
	ctx := context.Background()

	require.NoError(t, p.PlayBook(ctx, "book-1"))
	engine.setPosition(30)

	require.Error(t, p.PlayChapter(ctx, "book-1-ch2"))

	// The chapter that was playing stays loaded and controllable.
	status := p.Status()
	assert.Equal(t, StatePlaying, status.State)
	assert.Equal(t, "book-1-ch1", status.ChapterID)
	assert.Equal(t, 0, engine.pauses)

	require.NoError(t, p.TogglePlayPause(ctx))
	assert.Equal(t, StatePaused, p.Status().State)
}

func TestFailedBookSwitchKeepsCurrentPlayback(t *testing.T) {
	p, _, client := setupPlayer(t)
	ctx := context.Background()

	require.NoError(t, p.PlayBook(ctx, "book-1"))
	client.getBookErr = domainerrors.Upstream("metadata unavailable")

	require.Error(t, p.PlayBook(ctx, "book-2"))

	status := p.Status()
	assert.Equal(t, StatePlaying, status.State)
	assert.Equal(t, "book-1", status.BookID)
	assert.Equal(t, "book-1-ch1", status.ChapterID)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "loading", StateLoading.String())
	assert.Equal(t, "paused", StatePaused.String())
	assert.Equal(t, "playing", StatePlaying.String())
	assert.Equal(t, "unknown", State(42).String())
}

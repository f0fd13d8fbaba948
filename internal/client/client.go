// Package client is a Go client for the AudioShelf HTTP API. It covers
// the listener surface: browsing books, minting streaming URLs, and the
// progress save protocol. It satisfies player.Client, so a player can be
// wired straight to a remote server.
package client

import (
	"bytes"
	"context"
	"encoding/json/jsontext"
	"encoding/json/v2"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/audioshelfapp/audioshelf-server/internal/domain"
	"github.com/audioshelfapp/audioshelf-server/internal/errors"
	"github.com/audioshelfapp/audioshelf-server/internal/player"
)

const defaultTimeout = 30 * time.Second

// NewSessionID mints a fresh anonymous listening session identifier.
// Clients persist it locally; the server never issues one.
func NewSessionID() string {
	return uuid.NewString()
}

// Options configures a Client. BaseURL is required.
type Options struct {
	BaseURL string

	// SessionID identifies this listening session. Empty generates a
	// fresh one; pass a stored value to keep resume points across runs.
	SessionID string

	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client talks to one AudioShelf server on behalf of one session.
type Client struct {
	http      *http.Client
	baseURL   string
	sessionID string
	logger    *slog.Logger
}

// New creates a client for the server at opts.BaseURL.
func New(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	sessionID := opts.SessionID
	if sessionID == "" {
		sessionID = NewSessionID()
	}
	return &Client{
		http:      httpClient,
		baseURL:   opts.BaseURL,
		sessionID: sessionID,
		logger:    opts.Logger,
	}
}

// SessionID returns the session this client saves progress under.
func (c *Client) SessionID() string {
	return c.sessionID
}

// ListBooks fetches the full library listing.
func (c *Client) ListBooks(ctx context.Context) ([]*domain.Book, error) {
	var books []*domain.Book
	if err := c.get(ctx, "/api/v1/books", nil, &books); err != nil {
		return nil, err
	}
	return books, nil
}

// GetBook fetches one book with its full chapter list.
func (c *Client) GetBook(ctx context.Context, bookID string) (*domain.Book, error) {
	var book domain.Book
	if err := c.get(ctx, "/api/v1/books/"+url.PathEscape(bookID), nil, &book); err != nil {
		return nil, err
	}
	return &book, nil
}

// playURLResponse mirrors the server's play-url payload.
type playURLResponse struct {
	PlayURL  string `json:"playUrl"`
	MimeType string `json:"mimeType"`
	Chapter  struct {
		ID string `json:"id"`
	} `json:"chapter"`
}

// GetPlayInfo requests a fresh streaming URL for a chapter. An empty
// chapterID selects the book's first chapter.
func (c *Client) GetPlayInfo(ctx context.Context, bookID, chapterID string) (*player.PlayInfo, error) {
	body := map[string]string{}
	if chapterID != "" {
		body["chapterId"] = chapterID
	}

	var resp playURLResponse
	path := "/api/v1/books/" + url.PathEscape(bookID) + "/play-url"
	if err := c.post(ctx, path, body, &resp); err != nil {
		return nil, err
	}
	return &player.PlayInfo{
		PlayURL:   resp.PlayURL,
		MimeType:  resp.MimeType,
		ChapterID: resp.Chapter.ID,
	}, nil
}

// progressResponse mirrors the API's camelCase progress payload.
type progressResponse struct {
	SessionID        string    `json:"sessionId"`
	BookID           string    `json:"bookId"`
	CurrentChapterID string    `json:"currentChapterId"`
	Position         float64   `json:"position"`
	Completed        bool      `json:"completed"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// GetProgress fetches the session's resume point in a book. A session
// that never played the book gets the zero record.
func (c *Client) GetProgress(ctx context.Context, sessionID, bookID string) (*domain.PlaybackProgress, error) {
	query := url.Values{"sessionId": {sessionID}}
	var resp progressResponse
	path := "/api/v1/books/" + url.PathEscape(bookID) + "/progress"
	if err := c.get(ctx, path, query, &resp); err != nil {
		return nil, err
	}
	return &domain.PlaybackProgress{
		SessionID:        resp.SessionID,
		BookID:           resp.BookID,
		CurrentChapterID: resp.CurrentChapterID,
		Position:         resp.Position,
		Completed:        resp.Completed,
		UpdatedAt:        resp.UpdatedAt,
	}, nil
}

// SaveProgress upserts the session's resume point. Last write wins.
func (c *Client) SaveProgress(ctx context.Context, sessionID, bookID string, snap player.ProgressSnapshot) error {
	body := map[string]any{
		"sessionId": sessionID,
		"chapterId": snap.ChapterID,
		"position":  snap.Position,
		"completed": snap.Completed,
	}
	path := "/api/v1/books/" + url.PathEscape(bookID) + "/progress"
	return c.post(ctx, path, body, nil)
}

// envelope is the server's response wrapper. Data stays raw until the
// caller's type is known.
type envelope struct {
	Data    jsontext.Value `json:"data"`
	Error   string         `json:"error"`
	Success bool           `json:"success"`
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return c.do(req, out)
}

// do executes the request and unwraps the response envelope into out.
func (c *Client) do(req *http.Request, out any) error {
	if c.logger != nil {
		c.logger.Debug("api request", "method", req.Method, "path", req.URL.Path)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, errors.CodeUpstream, "request failed")
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.UnmarshalRead(resp.Body, &env); err != nil {
		return errors.Wrapf(err, errors.CodeUpstream, "decode response (status %d)", resp.StatusCode)
	}

	if resp.StatusCode >= 400 || !env.Success {
		return statusError(resp.StatusCode, env.Error)
	}

	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return errors.Wrap(err, errors.CodeUpstream, "decode response data")
		}
	}
	return nil
}

// statusError maps an HTTP status to the matching domain error so
// callers can branch with errors.As the same way they do against
// in-process services.
func statusError(status int, msg string) error {
	if msg == "" {
		msg = http.StatusText(status)
	}
	switch status {
	case http.StatusBadRequest:
		return errors.Validation(msg)
	case http.StatusUnauthorized:
		return errors.Unauthorized(msg)
	case http.StatusNotFound:
		return errors.NotFound(msg)
	case http.StatusConflict:
		return errors.Conflict(msg)
	default:
		return errors.Upstream(msg)
	}
}

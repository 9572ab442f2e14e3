package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/datawhiz/whiz/internal/logging"
	"github.com/datawhiz/whiz/internal/models"
)

// Coordinator errors.
var (
	ErrChatNotFound = errors.New("chat not found")
	ErrEmptyMessage = &models.ValidationError{Field: "text", Message: "message text must not be blank"}
)

// Backend is the remote service the coordinator talks to. Calls are
// opaque: they either settle with a payload or fail with an error.
type Backend interface {
	// SendMessage posts a user message (with any attached files) to the
	// chat's message endpoint and returns the server's echo.
	SendMessage(ctx context.Context, chatID int, text string, files []models.FileRef) (*models.MessageReceipt, error)

	// RenameChat asks the server to rename a chat.
	RenameChat(ctx context.Context, chatID int, title string) error
}

// Timing controls the simulated upload/extraction latency.
type Timing struct {
	// TickInterval is how often simulated upload progress advances.
	TickInterval time.Duration

	// ProgressStep is the progress added per tick (percent).
	ProgressStep int

	// ExtractionDelay is how long after attach the extraction-complete
	// message arrives.
	ExtractionDelay time.Duration
}

// DefaultTiming returns the production timing values.
func DefaultTiming() Timing {
	return Timing{
		TickInterval:    80 * time.Millisecond,
		ProgressStep:    10,
		ExtractionDelay: 1200 * time.Millisecond,
	}
}

// UploadPhase names a stage of the simulated upload pipeline.
type UploadPhase string

const (
	UploadPhaseProgress  UploadPhase = "progress"
	UploadPhaseAttached  UploadPhase = "attached"
	UploadPhaseExtracted UploadPhase = "extracted"
)

// UploadEvent reports upload progression to the UI.
type UploadEvent struct {
	ChatID   int
	Phase    UploadPhase
	Progress int // 0..100
}

// Coordinator wraps each user-triggered action in a task that may suspend
// on network I/O or timers. Completions never assume their captured chat
// still exists: they re-validate the target id against the current session
// inside Apply, so a chat deleted while an operation is pending simply
// drops the pending merge. There is no cancellation primitive; discarding
// a completion is the only cancellation semantics in the system.
type Coordinator struct {
	store   *Store
	backend Backend
	timing  Timing
	logger  zerolog.Logger
	wg      sync.WaitGroup
}

// NewCoordinator creates a coordinator over the given store and backend.
func NewCoordinator(store *Store, backend Backend, timing Timing) *Coordinator {
	if timing.TickInterval <= 0 {
		timing.TickInterval = DefaultTiming().TickInterval
	}
	if timing.ProgressStep <= 0 {
		timing.ProgressStep = DefaultTiming().ProgressStep
	}
	if timing.ExtractionDelay < 0 {
		timing.ExtractionDelay = DefaultTiming().ExtractionDelay
	}

	return &Coordinator{
		store:   store,
		backend: backend,
		timing:  timing,
		logger:  logging.Component("coordinator"),
	}
}

// Store exposes the underlying session store for read access and
// subscriptions.
func (c *Coordinator) Store() *Store {
	return c.store
}

// Wait blocks until all in-flight upload tasks have settled.
func (c *Coordinator) Wait() {
	c.wg.Wait()
}

// NewChat creates a chat with a default title and welcome message,
// selects it, and returns its id.
func (c *Coordinator) NewChat() int {
	var id int
	c.store.Apply(func(s Session) Session {
		title := fmt.Sprintf("Chat %d", s.NextChatID())
		next, created := s.CreateChat(title, WelcomeText)
		id = created
		return next.SelectChat(created)
	})

	c.logger.Info().Int("chat_id", id).Msg("chat created")
	return id
}

// Select focuses a chat and switches to the chat view.
func (c *Coordinator) Select(chatID int) {
	c.store.Apply(func(s Session) Session {
		return s.SelectChat(chatID)
	})
}

// Delete removes a chat locally. Pending timers targeting it keep running;
// their completions are discarded when they find the id gone.
func (c *Coordinator) Delete(chatID int) {
	c.store.Apply(func(s Session) Session {
		return s.DeleteChat(chatID)
	})

	c.logger.Info().Int("chat_id", chatID).Msg("chat deleted")
}

// ShowProfile switches to the profile overlay.
func (c *Coordinator) ShowProfile() {
	c.store.Apply(Session.ShowProfile)
}

// ShowLanding returns to the landing screen.
func (c *Coordinator) ShowLanding() {
	c.store.Apply(Session.ShowLanding)
}

// Send submits a user message. On success the server's echo of the user
// message and a placeholder bot reply are appended as one atomic burst.
// On failure nothing is appended and nothing is retried; re-submitting is
// up to the user.
func (c *Coordinator) Send(ctx context.Context, chatID int, text string) error {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ErrEmptyMessage
	}

	chat, ok := c.store.Snapshot().Chat(chatID)
	if !ok {
		return ErrChatNotFound
	}

	var files []models.FileRef
	if chat.AttachedFile != nil {
		files = append(files, *chat.AttachedFile)
	}

	logger := c.logger.With().
		Str("op_id", uuid.NewString()).
		Int("chat_id", chatID).
		Logger()

	receipt, err := c.backend.SendMessage(ctx, chatID, trimmed, files)
	if err != nil {
		logger.Warn().Err(err).Msg("message send failed")
		return err
	}

	echoText := receipt.Text
	if echoText == "" {
		echoText = trimmed
	}

	c.store.Apply(func(s Session) Session {
		if _, ok := s.Chat(chatID); !ok {
			logger.Debug().Msg("send settled after chat was deleted, dropping")
			return s
		}
		return s.AppendMessages(chatID,
			Draft{Sender: models.SenderUser, Text: echoText, Attachments: receipt.Attachments},
			Draft{Sender: models.SenderBot, Text: PlaceholderReply},
		)
	})

	logger.Debug().Msg("message send settled")
	return nil
}

// Rename asks the server to rename a chat and updates the local title only
// after acknowledgment; on failure the title is left unchanged.
func (c *Coordinator) Rename(ctx context.Context, chatID int, newTitle string) error {
	trimmed, err := models.ValidateTitle(newTitle)
	if err != nil {
		return err
	}

	if _, ok := c.store.Snapshot().Chat(chatID); !ok {
		return ErrChatNotFound
	}

	logger := c.logger.With().
		Str("op_id", uuid.NewString()).
		Int("chat_id", chatID).
		Logger()

	if err := c.backend.RenameChat(ctx, chatID, trimmed); err != nil {
		logger.Warn().Err(err).Msg("rename failed")
		return err
	}

	c.store.Apply(func(s Session) Session {
		return s.RenameChat(chatID, trimmed)
	})

	logger.Info().Str("title", trimmed).Msg("chat renamed")
	return nil
}

// StartUpload begins the simulated upload pipeline for a file. Progress
// advances in fixed steps on a repeating timer; at 100% the file is
// attached and a "file received" bot message appended in one transition,
// and after the extraction delay an "extraction complete" message follows
// through the same guarded append. Both merges target the chat by id, so
// deleting the chat mid-pipeline silently drops them.
//
// Validation failures (unsupported file type, unknown chat) are returned
// synchronously; afterwards the returned channel reports progression and
// is closed once the pipeline settles.
func (c *Coordinator) StartUpload(chatID int, file models.FileRef) (<-chan UploadEvent, error) {
	if err := models.ValidateUpload(file); err != nil {
		return nil, err
	}
	if _, ok := c.store.Snapshot().Chat(chatID); !ok {
		return nil, ErrChatNotFound
	}

	logger := c.logger.With().
		Str("op_id", uuid.NewString()).
		Int("chat_id", chatID).
		Str("file", file.Name).
		Logger()

	events := make(chan UploadEvent, 100/c.timing.ProgressStep+4)

	c.wg.Add(1)
	go c.runUpload(chatID, file, events, logger)

	return events, nil
}

func (c *Coordinator) runUpload(chatID int, file models.FileRef, events chan<- UploadEvent, logger zerolog.Logger) {
	defer c.wg.Done()
	defer close(events)

	ticker := time.NewTicker(c.timing.TickInterval)
	defer ticker.Stop()

	progress := 0
	for progress < 100 {
		<-ticker.C
		progress += c.timing.ProgressStep
		if progress > 100 {
			progress = 100
		}
		events <- UploadEvent{ChatID: chatID, Phase: UploadPhaseProgress, Progress: progress}
	}

	c.store.Apply(func(s Session) Session {
		if _, ok := s.Chat(chatID); !ok {
			logger.Debug().Msg("upload settled after chat was deleted, dropping")
			return s
		}
		return s.AttachFile(chatID, file).AppendMessages(chatID, Draft{
			Sender: models.SenderBot,
			Text:   fileReceivedText(file.Name),
		})
	})
	events <- UploadEvent{ChatID: chatID, Phase: UploadPhaseAttached, Progress: 100}
	logger.Info().Msg("file attached")

	timer := time.NewTimer(c.timing.ExtractionDelay)
	defer timer.Stop()
	<-timer.C

	c.store.Apply(func(s Session) Session {
		if _, ok := s.Chat(chatID); !ok {
			logger.Debug().Msg("extraction settled after chat was deleted, dropping")
			return s
		}
		return s.AppendMessages(chatID, Draft{
			Sender: models.SenderBot,
			Text:   extractionCompleteText(file.Name),
		})
	})
	events <- UploadEvent{ChatID: chatID, Phase: UploadPhaseExtracted, Progress: 100}
	logger.Info().Msg("extraction complete")
}

func fileReceivedText(name string) string {
	return fmt.Sprintf("File received: %s. Extracting your data now.", name)
}

func extractionCompleteText(name string) string {
	return fmt.Sprintf("Extraction complete. Ask me anything about %s.", name)
}

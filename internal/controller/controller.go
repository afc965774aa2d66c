// Package controller holds the floor-plan studio's UI state machine.
//
// A Controller owns one explicit state value. Every user action mutates it
// under a single lock and re-renders a models.View, so transitions are applied
// one at a time in the order they happen, the way a browser event loop would.
// Backend calls run on their own goroutines; their results are applied only if
// no newer request of the same flow has been issued since.
package controller

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"floorplan-studio/internal/logger"
	"floorplan-studio/internal/models"
	"floorplan-studio/internal/services"

	"github.com/sirupsen/logrus"
)

const (
	msgEmptyRequirements = "Please enter your requirements"
	msgNetworkError      = "Network error. Please try again."
)

// ErrNoResults is returned by Download when nothing is on display.
var ErrNoResults = errors.New("no results to download")

// Backend is the planner service the controller submits to.
type Backend interface {
	Analyze(ctx context.Context, file *models.SelectedFile) (string, error)
	GeneratePlan(ctx context.Context, requirements string) (string, error)
	History(ctx context.Context) ([]models.HistoryEntry, error)
	DownloadURL(filename string) string
}

type Previewer interface {
	Render(data []byte) (string, error)
}

type Options struct {
	Intake    *services.Intake
	Previewer Previewer
	Sanitizer *services.TextSanitizer
	// RequestTimeout bounds every backend call; zero means no timeout.
	RequestTimeout time.Duration
	HistoryLimit   int
	Location       *time.Location
	Now            func() time.Time
}

type flow int

const (
	flowAnalysis flow = iota
	flowGeneration
)

func (f flow) String() string {
	if f == flowAnalysis {
		return "analysis"
	}
	return "generation"
}

type Controller struct {
	backend      Backend
	intake       *services.Intake
	previewer    Previewer
	sanitizer    *services.TextSanitizer
	timeout      time.Duration
	historyLimit int
	loc          *time.Location
	now          func() time.Time

	mu          sync.Mutex
	state       state
	seq         [2]uint64
	historySeq  uint64
	subscribers map[int]chan models.View
	nextSub     int

	background sync.WaitGroup
}

func New(backend Backend, opts Options) *Controller {
	if opts.Intake == nil {
		opts.Intake = services.NewIntake(services.DefaultMaxFileSize)
	}
	if opts.Sanitizer == nil {
		opts.Sanitizer = services.NewTextSanitizer()
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = 5
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Controller{
		backend:      backend,
		intake:       opts.Intake,
		previewer:    opts.Previewer,
		sanitizer:    opts.Sanitizer,
		timeout:      opts.RequestTimeout,
		historyLimit: opts.HistoryLimit,
		loc:          opts.Location,
		now:          opts.Now,
		state:        initialState(),
		subscribers:  make(map[int]chan models.View),
	}
}

// View renders the current state.
func (c *Controller) View() models.View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.renderLocked()
}

// Subscribe delivers the current view and then every re-render. A slow
// reader only ever sees the latest view.
func (c *Controller) Subscribe() (<-chan models.View, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextSub
	c.nextSub++
	ch := make(chan models.View, 1)
	ch <- c.renderLocked()
	c.subscribers[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			delete(c.subscribers, id)
			close(ch)
		})
	}
}

// Wait blocks until every background task has finished: preview rendering,
// in-flight requests and the history refreshes they trigger.
func (c *Controller) Wait() {
	c.background.Wait()
}

func (c *Controller) goBackground(fn func()) {
	c.background.Add(1)
	go func() {
		defer c.background.Done()
		fn()
	}()
}

func (c *Controller) renderLocked() models.View {
	return render(&c.state, c.backend.DownloadURL, c.loc)
}

func (c *Controller) publishLocked() {
	if len(c.subscribers) == 0 {
		return
	}
	view := c.renderLocked()
	for _, ch := range c.subscribers {
		select {
		case ch <- view:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- view
		}
	}
}

// SelectFile handles a file chosen through the picker.
func (c *Controller) SelectFile(raw models.RawFile) error {
	return c.acceptFile(raw, "picker")
}

// DropFile handles a file dropped on the drop zone. It ends the drag.
func (c *Controller) DropFile(raw models.RawFile) error {
	return c.acceptFile(raw, "drop")
}

func (c *Controller) acceptFile(raw models.RawFile, source string) error {
	file, err := c.intake.Accept(raw)

	c.mu.Lock()
	defer c.mu.Unlock()

	if source == "drop" {
		c.state.dragActive = false
	}
	if err != nil {
		logger.WithFields(logrus.Fields{
			"source": source,
			"name":   raw.Name,
			"size":   len(raw.Data),
		}).Info("Rejected file")
		c.state.notice = err.Error()
		c.publishLocked()
		return err
	}

	c.state.file = file
	c.state.preview = ""
	c.publishLocked()

	logger.WithFields(logrus.Fields{
		"source":    source,
		"fileId":    file.ID,
		"mediaType": file.MediaType,
		"size":      file.Size,
	}).Info("Selected file")

	if c.previewer != nil {
		c.goBackground(func() { c.renderPreview(file) })
	}
	return nil
}

func (c *Controller) renderPreview(file *models.SelectedFile) {
	preview, err := c.previewer.Render(file.Data)
	if err != nil {
		logger.WithFields(logrus.Fields{
			"fileId": file.ID,
			"error":  err.Error(),
		}).Warn("Preview unavailable")
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.file == nil || c.state.file.ID != file.ID {
		return
	}
	c.state.preview = preview
	c.publishLocked()
}

// SetDragActive toggles the drop zone highlight. It always reports the event
// as handled so the surface suppresses its default file navigation.
func (c *Controller) SetDragActive(active bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.dragActive != active {
		c.state.dragActive = active
		c.publishLocked()
	}
	return true
}

// RemoveFile clears the selection and any displayed results.
func (c *Controller) RemoveFile() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.removeFileLocked()
	c.publishLocked()
}

func (c *Controller) removeFileLocked() {
	c.state.file = nil
	c.state.preview = ""
	if c.state.request.Phase != models.PhaseLoading {
		c.state.request = models.RequestState{Phase: models.PhaseIdle}
	}
}

func (c *Controller) SetRequirements(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.requirements = text
	c.publishLocked()
}

func (c *Controller) DismissNotice() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.notice = ""
	c.publishLocked()
}

// StartAnalysis enters Loading and submits the selected file. The returned
// channel yields this request's outcome once it settles.
func (c *Controller) StartAnalysis(ctx context.Context) <-chan models.RequestState {
	done := make(chan models.RequestState, 1)

	c.mu.Lock()
	file := c.state.file
	if file == nil {
		current := c.state.request
		c.mu.Unlock()
		logger.Warn("Analysis requested with no file selected")
		done <- current
		close(done)
		return done
	}
	id := c.beginLocked(flowAnalysis)
	c.mu.Unlock()

	c.goBackground(func() {
		defer close(done)

		reqCtx, cancel := c.requestContext(ctx)
		analysis, err := c.backend.Analyze(reqCtx, file)
		cancel()

		result, applied := c.settle(flowAnalysis, id, services.AnalysisTitle, analysis, err)
		if applied && result.Phase == models.PhaseSuccess {
			c.RefreshHistory(ctx)
		}
		done <- result
	})

	return done
}

func (c *Controller) SubmitAnalysis(ctx context.Context) models.RequestState {
	return <-c.StartAnalysis(ctx)
}

// StartGeneration submits trimmed requirements. Blank requirements fail
// immediately without contacting the backend.
func (c *Controller) StartGeneration(ctx context.Context, requirements string) <-chan models.RequestState {
	done := make(chan models.RequestState, 1)
	trimmed := strings.TrimSpace(requirements)

	c.mu.Lock()
	c.state.requirements = requirements
	if trimmed == "" {
		c.state.notice = msgEmptyRequirements
		c.publishLocked()
		c.mu.Unlock()
		done <- models.RequestState{Phase: models.PhaseFailed, Message: msgEmptyRequirements}
		close(done)
		return done
	}
	id := c.beginLocked(flowGeneration)
	c.mu.Unlock()

	c.goBackground(func() {
		defer close(done)

		reqCtx, cancel := c.requestContext(ctx)
		plan, err := c.backend.GeneratePlan(reqCtx, trimmed)
		cancel()

		result, applied := c.settle(flowGeneration, id, services.GenerationTitle, plan, err)
		if applied && result.Phase == models.PhaseSuccess {
			c.RefreshHistory(ctx)
		}
		done <- result
	})

	return done
}

func (c *Controller) SubmitGeneration(ctx context.Context, requirements string) models.RequestState {
	return <-c.StartGeneration(ctx, requirements)
}

// beginLocked moves to Loading and returns the new request id for f.
func (c *Controller) beginLocked(f flow) uint64 {
	c.seq[f]++
	c.state.request = models.RequestState{Phase: models.PhaseLoading}
	c.state.scroll = ""
	c.publishLocked()

	logger.WithFields(logrus.Fields{
		"flow":      f.String(),
		"requestId": c.seq[f],
	}).Debug("Request issued")

	return c.seq[f]
}

// settle applies a finished request unless a newer one of the same flow
// superseded it. It reports the outcome and whether it was applied.
func (c *Controller) settle(f flow, id uint64, title, content string, err error) (models.RequestState, bool) {
	result := c.outcome(f, title, content, err)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.seq[f] != id {
		logger.WithFields(logrus.Fields{
			"flow":      f.String(),
			"requestId": id,
			"current":   c.seq[f],
		}).Info("Discarding superseded response")
		return result, false
	}

	c.state.request = result
	if result.Phase == models.PhaseSuccess {
		c.state.scroll = ScrollResults
		if f == flowAnalysis {
			c.state.generationVisible = true
		}
	} else {
		c.state.notice = result.Message
	}
	c.publishLocked()

	return result, true
}

func (c *Controller) outcome(f flow, title, content string, err error) models.RequestState {
	if err == nil {
		return models.RequestState{
			Phase:   models.PhaseSuccess,
			Title:   title,
			Content: c.sanitizer.SanitizeText(content),
		}
	}

	var be *services.BackendError
	if errors.As(err, &be) {
		logger.WithFields(logrus.Fields{
			"flow":  f.String(),
			"error": be.Message,
		}).Warn("Backend reported failure")
		return models.RequestState{Phase: models.PhaseFailed, Message: be.Message}
	}

	logger.WithFields(logrus.Fields{
		"flow":  f.String(),
		"error": err.Error(),
	}).Error("Request failed")
	return models.RequestState{Phase: models.PhaseFailed, Message: msgNetworkError}
}

// StartHistoryRefresh runs RefreshHistory in the background.
func (c *Controller) StartHistoryRefresh(ctx context.Context) {
	c.goBackground(func() { c.RefreshHistory(ctx) })
}

// RefreshHistory reloads the history list. Failures only change the
// placeholder; they never raise a notice.
func (c *Controller) RefreshHistory(ctx context.Context) {
	c.mu.Lock()
	c.historySeq++
	id := c.historySeq
	c.mu.Unlock()

	reqCtx, cancel := c.requestContext(ctx)
	entries, err := c.backend.History(reqCtx)
	cancel()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.historySeq != id {
		return
	}

	switch {
	case err != nil:
		logger.WithFields(logrus.Fields{
			"error": err.Error(),
		}).Warn("Failed to load history")
		c.state.historyStatus = models.HistoryError
		c.state.history = nil
	case len(entries) == 0:
		c.state.historyStatus = models.HistoryEmpty
		c.state.history = nil
	default:
		if len(entries) > c.historyLimit {
			entries = entries[:c.historyLimit]
		}
		c.state.historyStatus = models.HistoryReady
		c.state.history = entries
	}
	c.publishLocked()
}

// Download returns the displayed result and the file name to save it under.
func (c *Controller) Download() (string, string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.request.Phase != models.PhaseSuccess || c.state.request.Content == "" {
		return "", "", ErrNoResults
	}
	return services.ResultFilename(c.now()), c.state.request.Content, nil
}

// Reset returns everything to the initial state and supersedes requests
// still in flight. History is kept.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.seq[flowAnalysis]++
	c.seq[flowGeneration]++
	c.state.requirements = ""
	c.removeFileLocked()
	c.state.request = models.RequestState{Phase: models.PhaseIdle}
	c.state.generationVisible = false
	c.state.dragActive = false
	c.state.scroll = ScrollTop
	c.publishLocked()

	logger.Info("Controller reset")
}

func (c *Controller) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout > 0 {
		return context.WithTimeout(ctx, c.timeout)
	}
	return context.WithCancel(ctx)
}

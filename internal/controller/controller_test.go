package controller

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"floorplan-studio/internal/models"
	"floorplan-studio/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	mu            sync.Mutex
	analyze       func(ctx context.Context, call int, file *models.SelectedFile) (string, error)
	generate      func(ctx context.Context, requirements string) (string, error)
	history       func(ctx context.Context) ([]models.HistoryEntry, error)
	analyzeCalls  int
	generateCalls int
	historyCalls  int
}

func (f *fakeBackend) Analyze(ctx context.Context, file *models.SelectedFile) (string, error) {
	f.mu.Lock()
	f.analyzeCalls++
	call := f.analyzeCalls
	f.mu.Unlock()
	if f.analyze == nil {
		return "", errors.New("analyze not stubbed")
	}
	return f.analyze(ctx, call, file)
}

func (f *fakeBackend) GeneratePlan(ctx context.Context, requirements string) (string, error) {
	f.mu.Lock()
	f.generateCalls++
	f.mu.Unlock()
	if f.generate == nil {
		return "", errors.New("generate not stubbed")
	}
	return f.generate(ctx, requirements)
}

func (f *fakeBackend) History(ctx context.Context) ([]models.HistoryEntry, error) {
	f.mu.Lock()
	f.historyCalls++
	f.mu.Unlock()
	if f.history == nil {
		return nil, nil
	}
	return f.history(ctx)
}

func (f *fakeBackend) DownloadURL(filename string) string {
	return "http://planner/download/" + filename
}

func (f *fakeBackend) calls() (analyze, generate, history int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.analyzeCalls, f.generateCalls, f.historyCalls
}

func pngFile(name string, size int) models.RawFile {
	return models.RawFile{Name: name, MediaType: "image/png", Data: make([]byte, size)}
}

func newTestController(backend *fakeBackend, opts Options) *Controller {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return New(backend, opts)
}

func historyEntries(n int) []models.HistoryEntry {
	entries := make([]models.HistoryEntry, 0, n)
	for i := 0; i < n; i++ {
		entries = append(entries, models.HistoryEntry{
			Type:      models.EntryKindAnalysis,
			Timestamp: fmt.Sprintf("2026101%d_120000", 9-i),
			Filename:  fmt.Sprintf("analysis_%d.json", i),
		})
	}
	return entries
}

func TestSelectFile_RejectsDisallowedType(t *testing.T) {
	for _, mediaType := range []string{"application/pdf", "text/plain", "image/webp", "image/svg+xml"} {
		t.Run(mediaType, func(t *testing.T) {
			c := newTestController(&fakeBackend{}, Options{})

			err := c.SelectFile(models.RawFile{Name: "plan", MediaType: mediaType, Data: []byte("x")})
			require.Error(t, err)

			view := c.View()
			assert.False(t, view.Intake.SubmitEnabled)
			assert.Empty(t, view.Intake.FileName)
			assert.Equal(t, "Please select a valid image file (PNG, JPG, JPEG, GIF, BMP)", view.Notice)
		})
	}
}

func TestSelectFile_RejectionKeepsCurrentFile(t *testing.T) {
	c := newTestController(&fakeBackend{}, Options{})
	require.NoError(t, c.SelectFile(pngFile("first.png", 10)))

	require.Error(t, c.SelectFile(models.RawFile{Name: "notes.txt", MediaType: "text/plain", Data: []byte("x")}))

	view := c.View()
	assert.Equal(t, "first.png", view.Intake.FileName)
	assert.True(t, view.Intake.SubmitEnabled)
}

func TestSelectFile_SizeCeiling(t *testing.T) {
	const ceiling = 1024

	tests := []struct {
		name      string
		file      models.RawFile
		wantError bool
	}{
		{"empty png", pngFile("a.png", 0), false},
		{"under ceiling", pngFile("a.png", ceiling-1), false},
		{"at ceiling", pngFile("a.png", ceiling), false},
		{"over ceiling png", pngFile("a.png", ceiling+1), true},
		{"over ceiling gif", models.RawFile{Name: "a.gif", MediaType: "image/gif", Data: make([]byte, ceiling*2)}, true},
		{"over ceiling bad type", models.RawFile{Name: "a.txt", MediaType: "text/plain", Data: make([]byte, ceiling*2)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestController(&fakeBackend{}, Options{Intake: services.NewIntake(ceiling)})

			err := c.SelectFile(tt.file)
			view := c.View()
			if tt.wantError {
				assert.Error(t, err)
				assert.False(t, view.Intake.SubmitEnabled)
				return
			}
			assert.NoError(t, err)
			assert.True(t, view.Intake.SubmitEnabled)
			assert.Equal(t, int64(len(tt.file.Data)), view.Intake.FileSize)
		})
	}
}

func TestSelectFile_DefaultCeiling(t *testing.T) {
	c := newTestController(&fakeBackend{}, Options{})

	assert.NoError(t, c.SelectFile(pngFile("max.png", int(services.DefaultMaxFileSize))))

	err := c.SelectFile(pngFile("big.png", int(services.DefaultMaxFileSize)+1))
	assert.EqualError(t, err, "File size must be less than 16MB")
	assert.Equal(t, "max.png", c.View().Intake.FileName)
}

func TestPickerAndDropConverge(t *testing.T) {
	files := []models.RawFile{
		pngFile("plan.png", 12),
		{Name: "plan.jpg", Data: []byte("jpg")},
		{Name: "plan.pdf", MediaType: "application/pdf", Data: []byte("pdf")},
	}

	for _, file := range files {
		t.Run(file.Name, func(t *testing.T) {
			picker := newTestController(&fakeBackend{}, Options{})
			dropper := newTestController(&fakeBackend{}, Options{})
			dropper.SetDragActive(true)

			pickErr := picker.SelectFile(file)
			dropErr := dropper.DropFile(file)

			assert.Equal(t, pickErr, dropErr)
			assert.Equal(t, picker.View(), dropper.View())
		})
	}
}

func TestDragState(t *testing.T) {
	c := newTestController(&fakeBackend{}, Options{})

	assert.True(t, c.SetDragActive(true))
	assert.True(t, c.View().Intake.DragActive)

	assert.True(t, c.SetDragActive(false))
	assert.False(t, c.View().Intake.DragActive)

	c.SetDragActive(true)
	require.Error(t, c.DropFile(models.RawFile{Name: "x.txt", MediaType: "text/plain"}))
	assert.False(t, c.View().Intake.DragActive, "a drop ends the drag even when rejected")
}

func TestRemoveFile(t *testing.T) {
	backend := &fakeBackend{
		analyze: func(context.Context, int, *models.SelectedFile) (string, error) { return "rooms", nil },
	}
	c := newTestController(backend, Options{})
	require.NoError(t, c.SelectFile(pngFile("plan.png", 4)))
	c.SubmitAnalysis(context.Background())
	require.True(t, c.View().Results.Visible)

	c.RemoveFile()

	view := c.View()
	assert.Empty(t, view.Intake.FileName)
	assert.False(t, view.Intake.SubmitEnabled)
	assert.False(t, view.Results.Visible)
}

func TestSubmitGeneration_BlankRequirements(t *testing.T) {
	for _, requirements := range []string{"", "   ", "\n\t "} {
		t.Run(fmt.Sprintf("%q", requirements), func(t *testing.T) {
			backend := &fakeBackend{}
			c := newTestController(backend, Options{})

			result := c.SubmitGeneration(context.Background(), requirements)

			assert.Equal(t, models.PhaseFailed, result.Phase)
			assert.Equal(t, "Please enter your requirements", c.View().Notice)
			assert.False(t, c.View().Loading)
			_, generateCalls, historyCalls := backend.calls()
			assert.Zero(t, generateCalls)
			assert.Zero(t, historyCalls)
		})
	}
}

func TestSubmitAnalysis_Success(t *testing.T) {
	backend := &fakeBackend{
		analyze: func(_ context.Context, _ int, file *models.SelectedFile) (string, error) {
			assert.Equal(t, "plan.png", file.Name)
			return "X", nil
		},
		history: func(context.Context) ([]models.HistoryEntry, error) { return historyEntries(1), nil },
	}
	c := newTestController(backend, Options{})
	require.NoError(t, c.SelectFile(pngFile("plan.png", 8)))

	result := c.SubmitAnalysis(context.Background())

	assert.Equal(t, models.PhaseSuccess, result.Phase)
	view := c.View()
	assert.True(t, view.Results.Visible)
	assert.Equal(t, "X", view.Results.Content)
	assert.Equal(t, "Analysis Results", view.Results.Title)
	assert.True(t, view.Generation.Visible)
	assert.Equal(t, ScrollResults, view.Scroll)
	assert.Empty(t, view.Notice)

	_, _, historyCalls := backend.calls()
	assert.Equal(t, 1, historyCalls)
	assert.Equal(t, models.HistoryReady, view.History.Status)
}

func TestSubmitAnalysis_SanitizesContent(t *testing.T) {
	backend := &fakeBackend{
		analyze: func(context.Context, int, *models.SelectedFile) (string, error) { return "  Kitchen\r\n\x00Hall  ", nil },
	}
	c := newTestController(backend, Options{})
	require.NoError(t, c.SelectFile(pngFile("plan.png", 8)))

	c.SubmitAnalysis(context.Background())

	assert.Equal(t, "Kitchen\nHall", c.View().Results.Content)
}

func TestSubmitAnalysis_NoFileIsNoop(t *testing.T) {
	backend := &fakeBackend{}
	c := newTestController(backend, Options{})

	result := c.SubmitAnalysis(context.Background())

	assert.Equal(t, models.PhaseIdle, result.Phase)
	analyzeCalls, _, _ := backend.calls()
	assert.Zero(t, analyzeCalls)
}

func TestSubmitGeneration_BackendFailure(t *testing.T) {
	backend := &fakeBackend{
		generate: func(_ context.Context, requirements string) (string, error) {
			assert.Equal(t, "3 bed bungalow", requirements)
			return "", &services.BackendError{Op: "generate", Message: "bad input"}
		},
	}
	c := newTestController(backend, Options{})

	result := c.SubmitGeneration(context.Background(), "  3 bed bungalow ")

	assert.Equal(t, models.PhaseFailed, result.Phase)
	view := c.View()
	assert.Equal(t, "bad input", view.Notice)
	assert.Equal(t, models.PhaseFailed, view.Request.Phase)
	assert.False(t, view.Results.Visible)
	_, _, historyCalls := backend.calls()
	assert.Zero(t, historyCalls)
}

func TestSubmitGeneration_Success(t *testing.T) {
	backend := &fakeBackend{
		generate: func(context.Context, string) (string, error) { return "Open-plan layout", nil },
	}
	c := newTestController(backend, Options{})

	c.SubmitGeneration(context.Background(), "open plan")

	view := c.View()
	assert.Equal(t, "Generated Floor Plan", view.Results.Title)
	assert.Equal(t, "Open-plan layout", view.Results.Content)
	assert.Equal(t, "open plan", view.Generation.Requirements)
	assert.False(t, view.Generation.Visible, "only a successful analysis reveals the generation form")
	_, _, historyCalls := backend.calls()
	assert.Equal(t, 1, historyCalls)
}

func TestSubmitAnalysis_TransportFailure(t *testing.T) {
	backend := &fakeBackend{
		analyze: func(context.Context, int, *models.SelectedFile) (string, error) {
			return "", &services.TransportError{Op: "analyze", Err: errors.New("connection refused")}
		},
	}
	c := newTestController(backend, Options{})
	require.NoError(t, c.SelectFile(pngFile("plan.png", 8)))

	result := c.SubmitAnalysis(context.Background())

	assert.Equal(t, models.PhaseFailed, result.Phase)
	assert.Equal(t, "Network error. Please try again.", c.View().Notice)
	assert.False(t, c.View().Generation.Visible)

	c.DismissNotice()
	assert.Empty(t, c.View().Notice)
}

func TestSubmitAnalysis_LoadingUntilSettled(t *testing.T) {
	release := make(chan struct{})
	backend := &fakeBackend{
		analyze: func(context.Context, int, *models.SelectedFile) (string, error) {
			<-release
			return "done", nil
		},
	}
	c := newTestController(backend, Options{})
	require.NoError(t, c.SelectFile(pngFile("plan.png", 8)))

	done := c.StartAnalysis(context.Background())

	view := c.View()
	assert.True(t, view.Loading)
	assert.False(t, view.Results.Visible)

	close(release)
	result := <-done

	assert.Equal(t, models.PhaseSuccess, result.Phase)
	assert.False(t, c.View().Loading)
}

func TestSubmitAnalysis_SupersededResponseDiscarded(t *testing.T) {
	firstStarted := make(chan struct{})
	releaseFirst := make(chan struct{})
	backend := &fakeBackend{
		analyze: func(_ context.Context, call int, _ *models.SelectedFile) (string, error) {
			if call == 1 {
				close(firstStarted)
				<-releaseFirst
				return "first", nil
			}
			return "second", nil
		},
	}
	c := newTestController(backend, Options{})
	require.NoError(t, c.SelectFile(pngFile("plan.png", 8)))

	first := c.StartAnalysis(context.Background())
	// Issue the second request only once the first is inside the backend.
	select {
	case <-firstStarted:
	case <-time.After(2 * time.Second):
		t.Fatal("first analysis never reached the backend")
	}
	second := c.SubmitAnalysis(context.Background())
	require.Equal(t, "second", second.Content)

	close(releaseFirst)
	late := <-first

	assert.Equal(t, "first", late.Content)
	assert.Equal(t, "second", c.View().Results.Content)
	_, _, historyCalls := backend.calls()
	assert.Equal(t, 1, historyCalls, "a discarded response does not refresh history")
}

func TestFlows_MostRecentSettlementWins(t *testing.T) {
	releaseAnalysis := make(chan struct{})
	backend := &fakeBackend{
		analyze: func(context.Context, int, *models.SelectedFile) (string, error) {
			<-releaseAnalysis
			return "analysis", nil
		},
		generate: func(context.Context, string) (string, error) { return "plan", nil },
	}
	c := newTestController(backend, Options{})
	require.NoError(t, c.SelectFile(pngFile("plan.png", 8)))

	analysis := c.StartAnalysis(context.Background())
	c.SubmitGeneration(context.Background(), "two rooms")
	assert.Equal(t, "plan", c.View().Results.Content)

	close(releaseAnalysis)
	<-analysis

	view := c.View()
	assert.Equal(t, "analysis", view.Results.Content)
	assert.Equal(t, "Analysis Results", view.Results.Title)
}

func TestRequestTimeout(t *testing.T) {
	backend := &fakeBackend{
		analyze: func(ctx context.Context, _ int, _ *models.SelectedFile) (string, error) {
			<-ctx.Done()
			return "", &services.TransportError{Op: "analyze", Err: ctx.Err()}
		},
	}
	c := newTestController(backend, Options{RequestTimeout: 20 * time.Millisecond})
	require.NoError(t, c.SelectFile(pngFile("plan.png", 8)))

	result := c.SubmitAnalysis(context.Background())

	assert.Equal(t, models.PhaseFailed, result.Phase)
	assert.Equal(t, "Network error. Please try again.", result.Message)
}

func TestReset(t *testing.T) {
	backend := &fakeBackend{
		analyze: func(context.Context, int, *models.SelectedFile) (string, error) { return "rooms", nil },
	}
	c := newTestController(backend, Options{})
	require.NoError(t, c.SelectFile(pngFile("plan.png", 8)))
	c.SubmitAnalysis(context.Background())
	c.SetRequirements("loft conversion")
	require.True(t, c.View().Generation.Visible)

	c.Reset()

	view := c.View()
	assert.Empty(t, view.Intake.FileName)
	assert.Empty(t, view.Intake.Preview)
	assert.False(t, view.Intake.SubmitEnabled)
	assert.False(t, view.Results.Visible)
	assert.False(t, view.Generation.Visible)
	assert.Empty(t, view.Generation.Requirements)
	assert.Equal(t, models.PhaseIdle, view.Request.Phase)
	assert.Equal(t, ScrollTop, view.Scroll)
}

func TestReset_FromInitialState(t *testing.T) {
	c := newTestController(&fakeBackend{}, Options{})

	c.Reset()

	view := c.View()
	assert.False(t, view.Intake.SubmitEnabled)
	assert.False(t, view.Results.Visible)
	assert.False(t, view.Generation.Visible)
}

func TestReset_DiscardsInFlightRequest(t *testing.T) {
	release := make(chan struct{})
	backend := &fakeBackend{
		analyze: func(context.Context, int, *models.SelectedFile) (string, error) {
			<-release
			return "late", nil
		},
	}
	c := newTestController(backend, Options{})
	require.NoError(t, c.SelectFile(pngFile("plan.png", 8)))

	done := c.StartAnalysis(context.Background())
	c.Reset()
	close(release)
	<-done

	view := c.View()
	assert.False(t, view.Results.Visible)
	assert.Equal(t, models.PhaseIdle, view.Request.Phase)
}

func TestRefreshHistory(t *testing.T) {
	tests := []struct {
		name            string
		entries         []models.HistoryEntry
		err             error
		wantStatus      models.HistoryStatus
		wantPlaceholder string
		wantEntries     int
	}{
		{name: "seven entries show five", entries: historyEntries(7), wantStatus: models.HistoryReady, wantEntries: 5},
		{name: "three entries show three", entries: historyEntries(3), wantStatus: models.HistoryReady, wantEntries: 3},
		{name: "no entries", entries: nil, wantStatus: models.HistoryEmpty, wantPlaceholder: "No history available"},
		{name: "malformed response", err: &services.TransportError{Op: "history", Err: errors.New("invalid character")}, wantStatus: models.HistoryError, wantPlaceholder: "Error loading history"},
		{name: "backend failure", err: &services.BackendError{Op: "history", Message: "Error loading history"}, wantStatus: models.HistoryError, wantPlaceholder: "Error loading history"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &fakeBackend{
				history: func(context.Context) ([]models.HistoryEntry, error) { return tt.entries, tt.err },
			}
			c := newTestController(backend, Options{})

			c.RefreshHistory(context.Background())

			view := c.View()
			assert.Equal(t, tt.wantStatus, view.History.Status)
			assert.Equal(t, tt.wantPlaceholder, view.History.Placeholder)
			assert.Len(t, view.History.Entries, tt.wantEntries)
			assert.Empty(t, view.Notice, "history failures never raise a notice")
		})
	}
}

func TestRefreshHistory_AllEntriesMalformed(t *testing.T) {
	gin.SetMode(gin.TestMode)
	planner := gin.New()
	planner.GET("/history", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"success": true, "files": []gin.H{
			{"type": "report", "timestamp": "20261015_101500", "filename": "report.json"},
			{"type": "analysis", "timestamp": "x"},
		}})
	})
	srv := httptest.NewServer(planner)
	defer srv.Close()

	c := New(services.NewBackendClient(srv.URL, srv.Client()), Options{Location: time.UTC})

	c.RefreshHistory(context.Background())

	view := c.View()
	assert.Equal(t, models.HistoryError, view.History.Status)
	assert.Equal(t, "Error loading history", view.History.Placeholder)
	assert.Empty(t, view.History.Entries)
	assert.Empty(t, view.Notice)
}

func TestRefreshHistory_KeepsBackendOrder(t *testing.T) {
	entries := historyEntries(7)
	entries[1].Type = models.EntryKindPlan
	backend := &fakeBackend{
		history: func(context.Context) ([]models.HistoryEntry, error) { return entries, nil },
	}
	c := newTestController(backend, Options{})

	c.RefreshHistory(context.Background())

	items := c.View().History.Entries
	require.Len(t, items, 5)
	for i, item := range items {
		assert.Equal(t, entries[i].Filename, item.Filename)
		assert.Equal(t, "http://planner/download/"+entries[i].Filename, item.DownloadURL)
	}
	assert.Equal(t, "Floor Plan Analysis", items[0].Label)
	assert.Equal(t, "Oct 19, 2026, 12:00:00 PM", items[0].Time)
	assert.Equal(t, "Generated Plan", items[1].Label)
	assert.Equal(t, models.EntryKindGeneration, items[1].Kind)
}

func TestRefreshHistory_Idempotent(t *testing.T) {
	backend := &fakeBackend{
		history: func(context.Context) ([]models.HistoryEntry, error) { return historyEntries(2), nil },
	}
	c := newTestController(backend, Options{})

	c.RefreshHistory(context.Background())
	first := c.View().History
	c.RefreshHistory(context.Background())

	assert.Equal(t, first, c.View().History)
}

func TestInitialHistoryIsLoading(t *testing.T) {
	c := newTestController(&fakeBackend{}, Options{})

	assert.Equal(t, models.HistoryLoading, c.View().History.Status)
}

func TestDownload(t *testing.T) {
	now := time.Date(2026, 10, 15, 14, 30, 5, 0, time.UTC)
	backend := &fakeBackend{
		analyze: func(context.Context, int, *models.SelectedFile) (string, error) { return "Living room 20x15", nil },
	}
	c := newTestController(backend, Options{Now: func() time.Time { return now }})

	_, _, err := c.Download()
	assert.ErrorIs(t, err, ErrNoResults)

	require.NoError(t, c.SelectFile(pngFile("plan.png", 8)))
	c.SubmitAnalysis(context.Background())

	filename, content, err := c.Download()
	require.NoError(t, err)
	assert.Equal(t, "floor_plan_analysis_2026-10-15T14-30-05.txt", filename)
	assert.Equal(t, "Living room 20x15", content)
}

type blockingPreviewer struct {
	release chan struct{}
}

func (p *blockingPreviewer) Render(data []byte) (string, error) {
	<-p.release
	return "data:image/png;base64," + string(data), nil
}

func TestPreview_Async(t *testing.T) {
	previewer := &blockingPreviewer{release: make(chan struct{})}
	c := newTestController(&fakeBackend{}, Options{Previewer: previewer})

	require.NoError(t, c.SelectFile(models.RawFile{Name: "a.png", MediaType: "image/png", Data: []byte("A")}))
	view := c.View()
	assert.True(t, view.Intake.SubmitEnabled, "submit does not wait for the preview")
	assert.Empty(t, view.Intake.Preview)

	close(previewer.release)
	c.Wait()

	assert.Equal(t, "data:image/png;base64,A", c.View().Intake.Preview)
}

func TestPreview_StaleDiscarded(t *testing.T) {
	previewer := &blockingPreviewer{release: make(chan struct{})}
	c := newTestController(&fakeBackend{}, Options{Previewer: previewer})

	require.NoError(t, c.SelectFile(models.RawFile{Name: "a.png", MediaType: "image/png", Data: []byte("A")}))
	c.RemoveFile()

	close(previewer.release)
	c.Wait()

	assert.Empty(t, c.View().Intake.Preview)
}

func TestWait_CoversRequestsAndHistory(t *testing.T) {
	release := make(chan struct{})
	backend := &fakeBackend{
		analyze: func(context.Context, int, *models.SelectedFile) (string, error) {
			<-release
			return "done", nil
		},
		history: func(context.Context) ([]models.HistoryEntry, error) {
			return historyEntries(2), nil
		},
	}
	c := newTestController(backend, Options{})
	require.NoError(t, c.SelectFile(pngFile("plan.png", 8)))

	c.StartAnalysis(context.Background())
	require.NoError(t, c.Dispatch(context.Background(), HistoryRefreshed{}))

	waited := make(chan struct{})
	go func() {
		c.Wait()
		close(waited)
	}()

	select {
	case <-waited:
		t.Fatal("Wait returned while an analysis was in flight")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	select {
	case <-waited:
	case <-time.After(2 * time.Second):
		t.Fatal("Wait did not return after the analysis settled")
	}

	view := c.View()
	assert.Equal(t, "done", view.Results.Content)
	assert.Equal(t, models.HistoryReady, view.History.Status)
	_, _, historyCalls := backend.calls()
	assert.Equal(t, 2, historyCalls)
}

type failingPreviewer struct{}

func (failingPreviewer) Render([]byte) (string, error) { return "", errors.New("corrupt") }

func TestPreview_FailureIsBestEffort(t *testing.T) {
	c := newTestController(&fakeBackend{}, Options{Previewer: failingPreviewer{}})

	require.NoError(t, c.SelectFile(pngFile("a.png", 3)))
	c.Wait()

	view := c.View()
	assert.True(t, view.Intake.SubmitEnabled)
	assert.Empty(t, view.Intake.Preview)
	assert.Empty(t, view.Notice)
}

func TestSubscribe(t *testing.T) {
	c := newTestController(&fakeBackend{}, Options{})

	views, unsubscribe := c.Subscribe()
	initial := <-views
	assert.False(t, initial.Intake.SubmitEnabled)

	require.NoError(t, c.SelectFile(pngFile("a.png", 3)))
	c.SetDragActive(true)

	latest := <-views
	assert.True(t, latest.Intake.SubmitEnabled)
	assert.True(t, latest.Intake.DragActive)

	unsubscribe()
	unsubscribe()
	_, open := <-views
	assert.False(t, open)
}

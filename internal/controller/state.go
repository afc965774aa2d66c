package controller

import (
	"time"

	"floorplan-studio/internal/models"
	"floorplan-studio/internal/services"
)

const (
	ScrollResults = "results"
	ScrollTop     = "top"

	placeholderLoading = "Loading history..."
	placeholderEmpty   = "No history available"
	placeholderError   = "Error loading history"
)

// state is the single source of truth the View is rendered from.
type state struct {
	file              *models.SelectedFile
	preview           string
	dragActive        bool
	request           models.RequestState
	generationVisible bool
	requirements      string
	historyStatus     models.HistoryStatus
	history           []models.HistoryEntry
	notice            string
	scroll            string
}

func initialState() state {
	return state{
		request:       models.RequestState{Phase: models.PhaseIdle},
		historyStatus: models.HistoryLoading,
	}
}

// render is a pure function of s; nothing else decides what is visible.
func render(s *state, downloadURL func(string) string, loc *time.Location) models.View {
	view := models.View{
		Request: s.request,
		Loading: s.request.Phase == models.PhaseLoading,
		Generation: models.GenerationView{
			Visible:      s.generationVisible,
			Requirements: s.requirements,
		},
		Notice: s.notice,
		Scroll: s.scroll,
	}

	view.Intake = models.IntakeView{
		DragActive:    s.dragActive,
		SubmitEnabled: s.file != nil,
	}
	if s.file != nil {
		view.Intake.FileName = s.file.Name
		view.Intake.FileSize = s.file.Size
		view.Intake.MediaType = s.file.MediaType
		view.Intake.Preview = s.preview
	}

	if s.request.Phase == models.PhaseSuccess {
		view.Results = models.ResultsView{
			Visible: true,
			Title:   s.request.Title,
			Content: s.request.Content,
		}
	}

	view.History = models.HistoryView{
		Status:  s.historyStatus,
		Entries: make([]models.HistoryItemView, 0, len(s.history)),
	}
	switch s.historyStatus {
	case models.HistoryLoading:
		view.History.Placeholder = placeholderLoading
	case models.HistoryEmpty:
		view.History.Placeholder = placeholderEmpty
	case models.HistoryError:
		view.History.Placeholder = placeholderError
	}
	for _, entry := range s.history {
		view.History.Entries = append(view.History.Entries, models.HistoryItemView{
			Kind:        services.EntryKind(entry),
			Label:       services.EntryLabel(entry),
			Time:        services.FormatHistoryTime(entry.Timestamp, loc),
			Filename:    entry.Filename,
			DownloadURL: downloadURL(entry.Filename),
		})
	}

	return view
}

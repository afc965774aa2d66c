package controller

import (
	"context"
	"fmt"

	"floorplan-studio/internal/models"
)

// Event is one user action.
type Event interface {
	event()
}

type (
	FileSelected        struct{ File models.RawFile }
	FileDropped         struct{ File models.RawFile }
	DragChanged         struct{ Active bool }
	FileRemoved         struct{}
	AnalysisSubmitted   struct{}
	RequirementsEdited  struct{ Text string }
	GenerationSubmitted struct{ Requirements string }
	ResetRequested      struct{}
	HistoryRefreshed    struct{}
	NoticeDismissed     struct{}
)

func (FileSelected) event() {}
func (FileDropped) event() {}
func (DragChanged) event() {}
func (FileRemoved) event() {}
func (AnalysisSubmitted) event() {}
func (RequirementsEdited) event() {}
func (GenerationSubmitted) event() {}
func (ResetRequested) event() {}
func (HistoryRefreshed) event() {}
func (NoticeDismissed) event() {}

// Dispatch applies ev. Requests are started, not awaited: ctx must outlive
// the call, since it also bounds the request and the history refresh that
// follows a success.
func (c *Controller) Dispatch(ctx context.Context, ev Event) error {
	switch e := ev.(type) {
	case FileSelected:
		return c.SelectFile(e.File)
	case FileDropped:
		return c.DropFile(e.File)
	case DragChanged:
		c.SetDragActive(e.Active)
	case FileRemoved:
		c.RemoveFile()
	case AnalysisSubmitted:
		c.StartAnalysis(ctx)
	case RequirementsEdited:
		c.SetRequirements(e.Text)
	case GenerationSubmitted:
		c.StartGeneration(ctx, e.Requirements)
	case ResetRequested:
		c.Reset()
	case HistoryRefreshed:
		c.StartHistoryRefresh(ctx)
	case NoticeDismissed:
		c.DismissNotice()
	default:
		return fmt.Errorf("unknown event %T", ev)
	}
	return nil
}

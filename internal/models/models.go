package models

import "fmt"

// Backend wire types.

type AnalyzeResponse struct {
	Success  bool   `json:"success"`
	Analysis string `json:"analysis,omitempty"`
	Error    string `json:"error,omitempty"`
}

type GeneratePlanRequest struct {
	Requirements string `json:"requirements" validate:"required"`
}

type GeneratePlanResponse struct {
	Success       bool   `json:"success"`
	GeneratedPlan string `json:"generated_plan,omitempty"`
	Error         string `json:"error,omitempty"`
}

type HistoryResponse struct {
	Success bool           `json:"success"`
	Files   []HistoryEntry `json:"files"`
	Error   string         `json:"error,omitempty"`
}

type HistoryEntry struct {
	Type      string `json:"type" validate:"required,oneof=analysis generation plan"`
	Timestamp string `json:"timestamp"`
	Filename  string `json:"filename" validate:"required"`
}

const (
	EntryKindAnalysis   = "analysis"
	EntryKindGeneration = "generation"
	// EntryKindPlan is what the planner backend writes for generated plans.
	EntryKindPlan = "plan"
)

// SelectedFile is the image currently held by intake.
type SelectedFile struct {
	ID        string
	Name      string
	MediaType string
	Size      int64
	Data      []byte
}

// RawFile is a candidate file from either the picker or a drop.
type RawFile struct {
	Name      string
	MediaType string
	Data      []byte
}

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseSuccess
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseSuccess:
		return "success"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Phase) UnmarshalText(text []byte) error {
	for _, candidate := range []Phase{PhaseIdle, PhaseLoading, PhaseSuccess, PhaseFailed} {
		if candidate.String() == string(text) {
			*p = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", text)
}

type RequestState struct {
	Phase   Phase  `json:"phase"`
	Content string `json:"content,omitempty"`
	Title   string `json:"title,omitempty"`
	Message string `json:"message,omitempty"`
}

package models

// View is everything the UI shows, derived from controller state.
type View struct {
	Intake     IntakeView     `json:"intake"`
	Request    RequestState   `json:"request"`
	Loading    bool           `json:"loading"`
	Results    ResultsView    `json:"results"`
	Generation GenerationView `json:"generation"`
	History    HistoryView    `json:"history"`
	Notice     string         `json:"notice,omitempty"`
	Scroll     string         `json:"scroll,omitempty"`
}

type IntakeView struct {
	FileName      string `json:"fileName,omitempty"`
	FileSize      int64  `json:"fileSize,omitempty"`
	MediaType     string `json:"mediaType,omitempty"`
	Preview       string `json:"preview,omitempty"`
	DragActive    bool   `json:"dragActive"`
	SubmitEnabled bool   `json:"submitEnabled"`
}

type ResultsView struct {
	Visible bool   `json:"visible"`
	Title   string `json:"title,omitempty"`
	Content string `json:"content,omitempty"`
}

type GenerationView struct {
	Visible      bool   `json:"visible"`
	Requirements string `json:"requirements"`
}

type HistoryStatus string

const (
	HistoryLoading HistoryStatus = "loading"
	HistoryReady   HistoryStatus = "ready"
	HistoryEmpty   HistoryStatus = "empty"
	HistoryError   HistoryStatus = "error"
)

type HistoryView struct {
	Status      HistoryStatus     `json:"status"`
	Placeholder string            `json:"placeholder,omitempty"`
	Entries     []HistoryItemView `json:"entries"`
}

type HistoryItemView struct {
	Kind        string `json:"kind"`
	Label       string `json:"label"`
	Time        string `json:"time"`
	Filename    string `json:"filename"`
	DownloadURL string `json:"downloadUrl"`
}

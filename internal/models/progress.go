package models

// ProgressUpdate is the payload broadcast over the WebSocket hub whenever a
// bulk operation or maintenance job advances.
type ProgressUpdate struct {
	OpKind   string  `json:"op_kind"`
	RunID    string  `json:"run_id,omitempty"`
	Message  string  `json:"message"`
	Progress float64 `json:"progress"` // 0-100
	Status   string  `json:"status"`   // e.g. "running", "complete", "failed"
	Cost     float64 `json:"cost,omitempty"`
	Done     bool    `json:"done"`
}

// Pill is the minimized projection of an active bulk operation: a small
// persistent status indicator shown after the operator collapses the modal.
type Pill struct {
	ID          string `json:"id"` // stable per operation kind
	Label       string `json:"label"`
	StatusText  string `json:"status_text"`
	StatusColor string `json:"status_color"` // "amber", "green", "red", "gray"
	TabID       string `json:"tab_id,omitempty"`
}

package domain

import "time"

// Status is the lifecycle state of an uploaded document.
type Status string

// Document statuses. A document only moves forward through them.
const (
	StatusWaitingQueue Status = "waiting_queue"
	StatusParsing      Status = "parsing"
	StatusParsed       Status = "parsed"
)

// Next returns the status that follows s, or false when s is terminal or unknown.
func (s Status) Next() (Status, bool) {
	switch s {
	case StatusWaitingQueue:
		return StatusParsing, true
	case StatusParsing:
		return StatusParsed, true
	default:
		return s, false
	}
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusWaitingQueue, StatusParsing, StatusParsed:
		return true
	}
	return false
}

// Document represents an uploaded file record
type Document struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	UploadedAt time.Time `json:"uploadedAt"`
	Status     Status    `json:"status"`
	FileSize   string    `json:"fileSize"`
	FileType   string    `json:"fileType"`
}

// Pagination describes one page of the document list
type Pagination struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// DocumentListResponse is the response for listing documents
type DocumentListResponse struct {
	Documents  []*Document `json:"documents"`
	Total      int         `json:"total"`
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
	TotalPages int         `json:"totalPages"`
}

// Pagination returns the list-level paging metadata of the response.
func (r *DocumentListResponse) Pagination() Pagination {
	return Pagination{
		Total:      r.Total,
		Page:       r.Page,
		Limit:      r.Limit,
		TotalPages: r.TotalPages,
	}
}

// FileDescriptor describes a file handed to Upload. No bytes are carried.
type FileDescriptor struct {
	Name string
	Size int64
	Type string
}

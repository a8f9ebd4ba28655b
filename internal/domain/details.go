package domain

import "fmt"

// Section names one of the three parsed-content categories of a document.
type Section string

const (
	SectionHeaders Section = "headers"
	SectionBody    Section = "body"
	SectionContent Section = "content"
)

// Sections lists every section in display order.
var Sections = []Section{SectionHeaders, SectionBody, SectionContent}

// ParseSection validates a section name.
func ParseSection(name string) (Section, error) {
	switch s := Section(name); s {
	case SectionHeaders, SectionBody, SectionContent:
		return s, nil
	}
	return "", fmt.Errorf("%w: unknown section %q", ErrInvalidRequest, name)
}

// TextItem is one parsed text fragment
type TextItem struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// DetailsMetadata holds the three parsed sections
type DetailsMetadata struct {
	Headers []TextItem `json:"headers"`
	Body    []TextItem `json:"body"`
	Content []TextItem `json:"content"`
}

// Items returns the items of the given section.
func (m *DetailsMetadata) Items(s Section) []TextItem {
	switch s {
	case SectionHeaders:
		return m.Headers
	case SectionBody:
		return m.Body
	case SectionContent:
		return m.Content
	}
	return nil
}

// Paging is the document-level paging of the source file (e.g. PDF pages).
type Paging struct {
	CurrentPage int `json:"current_page"`
	PageSize    int `json:"page_size"`
	TotalPages  int `json:"total_pages"`
}

// SectionPaging is the local paging derived from a single section's length.
type SectionPaging struct {
	TotalItems int `json:"total_items"`
	PageSize   int `json:"page_size"`
	TotalPages int `json:"total_pages"`
}

// DetailsList is the body of a details record
type DetailsList struct {
	DocLink       string                    `json:"doc_link"`
	Metadata      DetailsMetadata           `json:"metadata"`
	Paging        Paging                    `json:"paging"`
	SectionPaging map[Section]SectionPaging `json:"section_paging,omitempty"`
}

// DocumentDetails is the parsed content of a document
type DocumentDetails struct {
	List DetailsList `json:"list"`
}

// Clone returns a deep copy so callers can adjust paging without touching
// shared records.
func (d *DocumentDetails) Clone() *DocumentDetails {
	if d == nil {
		return nil
	}
	out := &DocumentDetails{List: DetailsList{
		DocLink: d.List.DocLink,
		Paging:  d.List.Paging,
		Metadata: DetailsMetadata{
			Headers: append([]TextItem(nil), d.List.Metadata.Headers...),
			Body:    append([]TextItem(nil), d.List.Metadata.Body...),
			Content: append([]TextItem(nil), d.List.Metadata.Content...),
		},
	}}
	if d.List.SectionPaging != nil {
		out.List.SectionPaging = make(map[Section]SectionPaging, len(d.List.SectionPaging))
		for k, v := range d.List.SectionPaging {
			out.List.SectionPaging[k] = v
		}
	}
	return out
}

// DocumentWithDetails pairs a document with its details. Details is nil when
// the document has not been parsed.
type DocumentWithDetails struct {
	Document *Document        `json:"document"`
	Details  *DocumentDetails `json:"details"`
}

// SectionPage is one local page of a section
type SectionPage struct {
	Section    Section    `json:"section"`
	Items      []TextItem `json:"items"`
	Page       int        `json:"page"`
	PageSize   int        `json:"page_size"`
	TotalItems int        `json:"total_items"`
	TotalPages int        `json:"total_pages"`
	Start      int        `json:"start"`
	End        int        `json:"end"`
}

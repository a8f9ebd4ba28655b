package state

import (
	"github.com/liliang-cn/doclens/internal/domain"
	"github.com/liliang-cn/doclens/internal/service"
)

// DetailView tracks which section and local page of a document is shown,
// along with the document-level page the details were fetched for. It is
// owned by a single view and not safe for concurrent use.
type DetailView struct {
	section  domain.Section
	page     int
	docPage  int
	pageSize int
}

// NewDetailView starts on the first page of the headers section.
func NewDetailView(pageSize int) *DetailView {
	if pageSize < 1 {
		pageSize = 5
	}
	return &DetailView{
		section:  domain.SectionHeaders,
		page:     1,
		docPage:  1,
		pageSize: pageSize,
	}
}

func (v *DetailView) Section() domain.Section { return v.section }
func (v *DetailView) Page() int               { return v.page }
func (v *DetailView) DocumentPage() int       { return v.docPage }
func (v *DetailView) PageSize() int           { return v.pageSize }

// SelectSection switches section and goes back to its first page.
func (v *DetailView) SelectSection(s domain.Section) error {
	if _, err := domain.ParseSection(string(s)); err != nil {
		return err
	}
	v.section = s
	v.page = 1
	return nil
}

// TotalPages is the local page count of the current section.
func (v *DetailView) TotalPages(details *domain.DocumentDetails) int {
	if details == nil {
		return 0
	}
	return service.TotalPages(len(details.List.Metadata.Items(v.section)), v.pageSize)
}

// Next moves one local page forward. It reports false on the last page.
func (v *DetailView) Next(details *domain.DocumentDetails) bool {
	if v.page >= v.TotalPages(details) {
		return false
	}
	v.page++
	return true
}

// Prev moves one local page back. It reports false on the first page.
func (v *DetailView) Prev() bool {
	if v.page <= 1 {
		return false
	}
	v.page--
	return true
}

// GoTo jumps to a local page. Pages outside [1, TotalPages] are rejected.
func (v *DetailView) GoTo(details *domain.DocumentDetails, page int) bool {
	if page < 1 || page > v.TotalPages(details) {
		return false
	}
	v.page = page
	return true
}

// SetDocumentPage changes the document-level page. The local page resets to
// 1 and the caller must refetch the details when it returns true.
func (v *DetailView) SetDocumentPage(page int) bool {
	if page < 1 || page == v.docPage {
		return false
	}
	v.docPage = page
	v.page = 1
	return true
}

// Reset returns to the initial position.
func (v *DetailView) Reset() {
	v.section = domain.SectionHeaders
	v.page = 1
	v.docPage = 1
}

// Render slices the visible items out of details.
func (v *DetailView) Render(details *domain.DocumentDetails) *domain.SectionPage {
	var items []domain.TextItem
	if details != nil {
		items = details.List.Metadata.Items(v.section)
	}
	return service.PaginateSection(v.section, items, v.page, v.pageSize)
}

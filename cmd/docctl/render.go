package main

import (
	"context"
	"fmt"
	"io/fs"
	"mime"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"

	"github.com/liliang-cn/doclens/internal/domain"
	"github.com/liliang-cn/doclens/internal/state"
)

const titleWidth = 40

func (a *app) list(ctx context.Context, page, limit int) error {
	if err := a.store.FetchDocuments(ctx, page, limit); err != nil {
		return err
	}
	st := a.store.Snapshot()

	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tTYPE\tSIZE\tSTATUS\tUPLOADED")
	for _, doc := range st.Documents {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			doc.ID,
			runewidth.Truncate(doc.Title, titleWidth, "..."),
			doc.FileType,
			doc.FileSize,
			doc.Status,
			humanize.Time(doc.UploadedAt),
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	p := st.Pagination
	fmt.Fprintf(a.out, "\nPage %d of %d (%d documents)\n", p.Page, p.TotalPages, p.Total)
	return nil
}

func (a *app) show(ctx context.Context, id, section string, page, docPage int) error {
	view := state.NewDetailView(a.pageSize)
	if err := view.SelectSection(domain.Section(section)); err != nil {
		return err
	}
	if docPage < 1 {
		return fmt.Errorf("%w: doc-page must be positive", domain.ErrInvalidRequest)
	}
	view.SetDocumentPage(docPage)

	if err := a.store.FetchDetailsByPage(ctx, id, view.DocumentPage()); err != nil {
		return err
	}
	st := a.store.Snapshot()
	doc := st.CurrentDocument

	fmt.Fprintf(a.out, "%s\n", doc.Title)
	fmt.Fprintf(a.out, "%s, %s, %s, uploaded %s\n", doc.FileType, doc.FileSize, doc.Status, doc.UploadedAt.Format(time.DateOnly))

	if st.CurrentDetails == nil {
		fmt.Fprintln(a.out, "\nNo parsed content yet.")
		return nil
	}
	details := st.CurrentDetails
	fmt.Fprintf(a.out, "%s\nDocument page %d of %d\n\n",
		details.List.DocLink, details.List.Paging.CurrentPage, details.List.Paging.TotalPages)

	if page != 1 && !view.GoTo(details, page) {
		return fmt.Errorf("%w: %s has %d pages", domain.ErrInvalidRequest, section, view.TotalPages(details))
	}
	sp := view.Render(details)
	for _, item := range sp.Items {
		fmt.Fprintf(a.out, "[%s] %s\n", item.Type, item.Content)
	}
	if sp.TotalItems == 0 {
		fmt.Fprintf(a.out, "No %s items.\n", sp.Section)
		return nil
	}
	fmt.Fprintf(a.out, "\nShowing %d-%d of %d %s items (page %d of %d)\n",
		sp.Start+1, sp.End, sp.TotalItems, sp.Section, sp.Page, sp.TotalPages)
	return nil
}

func describeFile(path string, info fs.FileInfo) domain.FileDescriptor {
	name := filepath.Base(path)
	return domain.FileDescriptor{
		Name: name,
		Size: info.Size(),
		Type: mime.TypeByExtension(filepath.Ext(name)),
	}
}

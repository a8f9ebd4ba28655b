package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liliang-cn/doclens/internal/domain"
)

func newTestRepos(t *testing.T, seed bool) (*DocumentRepository, *DetailsRepository) {
	t.Helper()
	db, err := NewDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	docs := NewDocumentRepository(db)
	details := NewDetailsRepository(db)
	if seed {
		require.NoError(t, Seed(context.Background(), docs, details))
	}
	return docs, details
}

func TestSeedOrderAndCount(t *testing.T) {
	docs, _ := newTestRepos(t, true)
	ctx := context.Background()

	page, total, err := docs.Page(ctx, 0, 100)
	require.NoError(t, err)
	assert.Equal(t, 10, total)
	require.Len(t, page, 10)
	for i, doc := range page {
		assert.Equal(t, fmt.Sprint(i+1), doc.ID)
	}
	assert.True(t, page[0].UploadedAt.Equal(time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)))
	assert.Equal(t, domain.StatusParsed, page[0].Status)
	assert.Equal(t, "2.5 MB", page[0].FileSize)
}

func TestSeedIsIdempotent(t *testing.T) {
	docs, details := newTestRepos(t, true)
	require.NoError(t, Seed(context.Background(), docs, details))

	_, total, err := docs.Page(context.Background(), 0, 1)
	require.NoError(t, err)
	assert.Equal(t, 10, total)
}

func TestPageWindow(t *testing.T) {
	docs, _ := newTestRepos(t, true)
	ctx := context.Background()

	page, total, err := docs.Page(ctx, 8, 5)
	require.NoError(t, err)
	assert.Equal(t, 10, total)
	require.Len(t, page, 2)
	assert.Equal(t, "9", page[0].ID)
	assert.Equal(t, "10", page[1].ID)

	page, total, err = docs.Page(ctx, 50, 5)
	require.NoError(t, err)
	assert.Equal(t, 10, total)
	assert.NotNil(t, page)
	assert.Empty(t, page)

	_, _, err = docs.Page(ctx, 0, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestGetNotFound(t *testing.T) {
	docs, _ := newTestRepos(t, true)

	_, err := docs.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	doc, err := docs.Get(context.Background(), "4")
	require.NoError(t, err)
	assert.Equal(t, "Carbon Neutrality Roadmap.pptx", doc.Title)
}

func TestPrependGoesFirst(t *testing.T) {
	docs, _ := newTestRepos(t, true)
	ctx := context.Background()

	doc := &domain.Document{Title: "New.pdf", FileSize: "1.0 MB", FileType: "pdf"}
	require.NoError(t, docs.Prepend(ctx, doc))
	assert.NotEmpty(t, doc.ID)
	assert.Equal(t, domain.StatusWaitingQueue, doc.Status)

	page, total, err := docs.Page(ctx, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, 11, total)
	assert.Equal(t, doc.ID, page[0].ID)
	assert.Equal(t, "1", page[1].ID)
}

func TestAdvanceStatus(t *testing.T) {
	docs, _ := newTestRepos(t, true)
	ctx := context.Background()

	require.NoError(t, docs.AdvanceStatus(ctx, "3", domain.StatusWaitingQueue, domain.StatusParsing))
	doc, err := docs.Get(ctx, "3")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusParsing, doc.Status)

	// stale from-status
	err = docs.AdvanceStatus(ctx, "3", domain.StatusWaitingQueue, domain.StatusParsing)
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)

	// backwards and skipping transitions are rejected
	assert.ErrorIs(t, docs.AdvanceStatus(ctx, "1", domain.StatusParsed, domain.StatusParsing), domain.ErrInvalidRequest)
	assert.ErrorIs(t, docs.AdvanceStatus(ctx, "7", domain.StatusWaitingQueue, domain.StatusParsed), domain.ErrInvalidRequest)

	assert.ErrorIs(t, docs.AdvanceStatus(ctx, "nope", domain.StatusParsing, domain.StatusParsed), domain.ErrNotFound)
}

func TestOldestUnparsed(t *testing.T) {
	docs, _ := newTestRepos(t, true)
	ctx := context.Background()

	doc, err := docs.OldestUnparsed(ctx)
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, "8", doc.ID)

	empty, _ := newTestRepos(t, false)
	doc, err = empty.OldestUnparsed(ctx)
	require.NoError(t, err)
	assert.Nil(t, doc)
}

func TestDetailsRoundTrip(t *testing.T) {
	_, details := newTestRepos(t, true)
	ctx := context.Background()

	d, err := details.Get(ctx, "1")
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, "https://example.com/sustainability-report-2024.pdf", d.List.DocLink)
	assert.Equal(t, domain.Paging{CurrentPage: 1, PageSize: 5, TotalPages: 5}, d.List.Paging)
	assert.Len(t, d.List.Metadata.Headers, 15)
	assert.Len(t, d.List.Metadata.Body, 15)
	assert.Len(t, d.List.Metadata.Content, 25)
	assert.Equal(t, "Sustainability Report 2024 - Executive Summary", d.List.Metadata.Headers[0].Content)
	assert.Equal(t, "Sustainability Report 2024 - Methodology", d.List.Metadata.Headers[3].Content)
	assert.Equal(t, "Sustainability Report 2024 - Page 4", d.List.Metadata.Headers[9].Content)

	// position ordering survives more than ten items
	assert.Equal(t, "Key Points - Page 5", d.List.Metadata.Headers[14].Content)

	none, err := details.Get(ctx, "6")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestDetailsPutReplaces(t *testing.T) {
	_, details := newTestRepos(t, true)
	ctx := context.Background()

	replacement := &domain.DocumentDetails{List: domain.DetailsList{
		DocLink:  "https://example.com/x.pdf",
		Metadata: domain.DetailsMetadata{Headers: []domain.TextItem{{Type: "h1", Content: "only"}}},
		Paging:   domain.Paging{PageSize: 5, TotalPages: 1},
	}}
	require.NoError(t, details.Put(ctx, "2", replacement))

	d, err := details.Get(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, []domain.TextItem{{Type: "h1", Content: "only"}}, d.List.Metadata.Headers)
	assert.Empty(t, d.List.Metadata.Body)
	assert.NotNil(t, d.List.Metadata.Body)
}

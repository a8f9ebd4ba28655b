package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/liliang-cn/doclens/internal/domain"
)

// seedDocuments is the initial collection, newest first.
var seedDocuments = []domain.Document{
	{ID: "1", Title: "Sustainability Report 2024.pdf", UploadedAt: mustTime("2024-01-15T10:30:00Z"), Status: domain.StatusParsed, FileSize: "2.5 MB", FileType: "pdf"},
	{ID: "2", Title: "Green Energy Implementation Plan.docx", UploadedAt: mustTime("2024-01-10T09:15:00Z"), Status: domain.StatusParsing, FileSize: "1.8 MB", FileType: "docx"},
	{ID: "3", Title: "Waste Management Strategy.pdf", UploadedAt: mustTime("2024-01-05T11:00:00Z"), Status: domain.StatusWaitingQueue, FileSize: "3.2 MB", FileType: "pdf"},
	{ID: "4", Title: "Carbon Neutrality Roadmap.pptx", UploadedAt: mustTime("2024-01-01T08:00:00Z"), Status: domain.StatusParsed, FileSize: "4.1 MB", FileType: "pptx"},
	{ID: "5", Title: "ESG Performance Metrics.xlsx", UploadedAt: mustTime("2023-12-28T14:20:00Z"), Status: domain.StatusParsed, FileSize: "1.2 MB", FileType: "xlsx"},
	{ID: "6", Title: "Sustainable Supply Chain Guidelines.pdf", UploadedAt: mustTime("2023-12-25T12:30:00Z"), Status: domain.StatusParsed, FileSize: "2.8 MB", FileType: "pdf"},
	{ID: "7", Title: "Water Conservation Initiative.docx", UploadedAt: mustTime("2023-12-20T16:45:00Z"), Status: domain.StatusWaitingQueue, FileSize: "1.5 MB", FileType: "docx"},
	{ID: "8", Title: "Biodiversity Protection Plan.pdf", UploadedAt: mustTime("2023-12-15T10:00:00Z"), Status: domain.StatusParsing, FileSize: "3.7 MB", FileType: "pdf"},
	{ID: "9", Title: "Circular Economy Framework.pptx", UploadedAt: mustTime("2023-12-10T13:15:00Z"), Status: domain.StatusParsed, FileSize: "2.9 MB", FileType: "pptx"},
	{ID: "10", Title: "Climate Risk Assessment.pdf", UploadedAt: mustTime("2023-12-05T09:30:00Z"), Status: domain.StatusParsed, FileSize: "5.2 MB", FileType: "pdf"},
}

type seedDetail struct {
	documentID string
	name       string
	link       string
	pages      int
}

var seedDetails = []seedDetail{
	{"1", "Sustainability Report 2024", "https://example.com/sustainability-report-2024.pdf", 5},
	{"2", "Green Energy Implementation Plan", "https://example.com/green-energy-plan.docx", 3},
	{"3", "Waste Management Strategy", "https://example.com/waste-management-strategy.pdf", 4},
	{"4", "Carbon Neutrality Roadmap", "https://example.com/carbon-neutrality-roadmap.pptx", 6},
	{"5", "ESG Performance Metrics", "https://example.com/esg-performance-metrics.xlsx", 2},
}

const seedPageSize = 5

func mustTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

// Seed loads the mock collection into empty repositories. It is a no-op when
// documents already exist.
func Seed(ctx context.Context, docs *DocumentRepository, details *DetailsRepository) error {
	_, total, err := docs.Page(ctx, 0, 1)
	if err != nil {
		return err
	}
	if total > 0 {
		return nil
	}

	// prepend oldest first so the head of the collection is document 1
	for i := len(seedDocuments) - 1; i >= 0; i-- {
		doc := seedDocuments[i]
		if err := docs.Prepend(ctx, &doc); err != nil {
			return fmt.Errorf("failed to seed document %s: %w", doc.ID, err)
		}
	}

	for _, sd := range seedDetails {
		if err := details.Put(ctx, sd.documentID, buildDetails(sd)); err != nil {
			return err
		}
	}
	return nil
}

func buildDetails(sd seedDetail) *domain.DocumentDetails {
	var meta domain.DetailsMetadata
	for page := 1; page <= sd.pages; page++ {
		p := pageContent(page, sd.name)
		meta.Headers = append(meta.Headers, p.Headers...)
		meta.Body = append(meta.Body, p.Body...)
		meta.Content = append(meta.Content, p.Content...)
	}
	return &domain.DocumentDetails{List: domain.DetailsList{
		DocLink:  sd.link,
		Metadata: meta,
		Paging: domain.Paging{
			CurrentPage: 1,
			PageSize:    seedPageSize,
			TotalPages:  sd.pages,
		},
	}}
}

// pageContent generates the parsed content of one source page.
func pageContent(page int, name string) domain.DetailsMetadata {
	meta := domain.DetailsMetadata{
		Headers: []domain.TextItem{
			{Type: "h1", Content: fmt.Sprintf("%s - Page %d", name, page)},
			{Type: "h2", Content: fmt.Sprintf("Section %d Overview", page)},
			{Type: "h3", Content: fmt.Sprintf("Key Points - Page %d", page)},
		},
		Body: []domain.TextItem{
			{Type: "body", Content: fmt.Sprintf("This is the main content for page %d of the %s. It contains detailed information about the topics covered in this section.", page, name)},
			{Type: "body", Content: fmt.Sprintf("Page %d focuses on specific aspects and provides comprehensive analysis of the subject matter.", page)},
			{Type: "body", Content: "The content on this page is structured to provide clear understanding and actionable insights."},
		},
		Content: []domain.TextItem{
			{Type: "text", Content: fmt.Sprintf("Page %d highlights:", page)},
			{Type: "text", Content: fmt.Sprintf("• Important findings from section %d", page)},
			{Type: "text", Content: "• Key metrics and data points"},
			{Type: "text", Content: fmt.Sprintf("• Recommendations for page %d", page)},
			{Type: "text", Content: "• Next steps and action items"},
		},
	}

	switch page {
	case 1:
		meta.Headers[0].Content = name + " - Executive Summary"
		meta.Body[0].Content = fmt.Sprintf("This is the executive summary page of the %s. It provides an overview of all key findings and recommendations.", name)
	case 2:
		meta.Headers[0].Content = name + " - Methodology"
		meta.Body[0].Content = fmt.Sprintf("This page describes the methodology used in the %s. It explains the research approach and data collection methods.", name)
	case 3:
		meta.Headers[0].Content = name + " - Results & Analysis"
		meta.Body[0].Content = fmt.Sprintf("This page presents the main results and analysis from the %s. It includes detailed findings and interpretations.", name)
	}
	return meta
}

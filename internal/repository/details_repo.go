package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/liliang-cn/doclens/internal/domain"
)

// DetailsRepository handles parsed content persistence
type DetailsRepository struct {
	db *DB
}

// NewDetailsRepository creates a new details repository
func NewDetailsRepository(db *DB) *DetailsRepository {
	return &DetailsRepository{db: db}
}

// Get returns the details of a document, or nil when none were stored.
func (r *DetailsRepository) Get(ctx context.Context, documentID string) (*domain.DocumentDetails, error) {
	details := &domain.DocumentDetails{}
	list := &details.List

	err := r.db.QueryRowContext(ctx, `
		SELECT doc_link, page_size, total_pages
		FROM document_details WHERE document_id = ?
	`, documentID).Scan(&list.DocLink, &list.Paging.PageSize, &list.Paging.TotalPages)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	list.Paging.CurrentPage = 1

	rows, err := r.db.QueryContext(ctx, `
		SELECT section, type, content FROM detail_items
		WHERE document_id = ? ORDER BY section, position
	`, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list.Metadata = domain.DetailsMetadata{
		Headers: []domain.TextItem{},
		Body:    []domain.TextItem{},
		Content: []domain.TextItem{},
	}
	for rows.Next() {
		var section string
		var item domain.TextItem
		if err := rows.Scan(&section, &item.Type, &item.Content); err != nil {
			return nil, err
		}
		switch domain.Section(section) {
		case domain.SectionHeaders:
			list.Metadata.Headers = append(list.Metadata.Headers, item)
		case domain.SectionBody:
			list.Metadata.Body = append(list.Metadata.Body, item)
		case domain.SectionContent:
			list.Metadata.Content = append(list.Metadata.Content, item)
		}
	}

	return details, rows.Err()
}

// Put replaces the details stored for a document
func (r *DetailsRepository) Put(ctx context.Context, documentID string, details *domain.DocumentDetails) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM document_details WHERE document_id = ?`, documentID); err != nil {
		return err
	}

	list := details.List
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO document_details (document_id, doc_link, page_size, total_pages)
		VALUES (?, ?, ?, ?)
	`, documentID, list.DocLink, list.Paging.PageSize, list.Paging.TotalPages); err != nil {
		return fmt.Errorf("failed to store details for %s: %w", documentID, err)
	}

	for _, section := range domain.Sections {
		for i, item := range list.Metadata.Items(section) {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO detail_items (document_id, section, position, type, content)
				VALUES (?, ?, ?, ?, ?)
			`, documentID, string(section), i, item.Type, item.Content); err != nil {
				return fmt.Errorf("failed to store %s item %d for %s: %w", section, i, documentID, err)
			}
		}
	}

	return tx.Commit()
}

var _ domain.DetailsStore = (*DetailsRepository)(nil)

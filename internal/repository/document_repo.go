package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/liliang-cn/doclens/internal/domain"
)

// DocumentRepository handles document persistence
type DocumentRepository struct {
	db *DB
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(db *DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

const documentColumns = `id, title, uploaded_at, status, file_size, file_type`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*domain.Document, error) {
	doc := &domain.Document{}
	var status string
	if err := row.Scan(&doc.ID, &doc.Title, &doc.UploadedAt, &status, &doc.FileSize, &doc.FileType); err != nil {
		return nil, err
	}
	doc.Status = domain.Status(status)
	doc.UploadedAt = doc.UploadedAt.UTC()
	return doc, nil
}

// Page returns one window of the collection, newest first, with the total
// count read in the same transaction.
func (r *DocumentRepository) Page(ctx context.Context, offset, limit int) ([]*domain.Document, int, error) {
	if offset < 0 || limit < 1 {
		return nil, 0, fmt.Errorf("%w: offset %d limit %d", domain.ErrInvalidRequest, offset, limit)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, 0, err
	}
	defer tx.Rollback()

	var total int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := tx.QueryContext(ctx,
		`SELECT `+documentColumns+` FROM documents ORDER BY seq DESC LIMIT ? OFFSET ?`,
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	docs := []*domain.Document{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, 0, err
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return docs, total, nil
}

// Get retrieves a document by ID
func (r *DocumentRepository) Get(ctx context.Context, id string) (*domain.Document, error) {
	doc, err := scanDocument(r.db.QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Prepend stores doc ahead of every existing document
func (r *DocumentRepository) Prepend(ctx context.Context, doc *domain.Document) error {
	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	if doc.UploadedAt.IsZero() {
		doc.UploadedAt = time.Now().UTC()
	}
	if doc.Status == "" {
		doc.Status = domain.StatusWaitingQueue
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO documents (id, title, uploaded_at, status, file_size, file_type)
		VALUES (?, ?, ?, ?, ?, ?)
	`, doc.ID, doc.Title, doc.UploadedAt.UTC(), string(doc.Status), doc.FileSize, doc.FileType)

	return err
}

// AdvanceStatus moves a document forward from one status to the next
func (r *DocumentRepository) AdvanceStatus(ctx context.Context, id string, from, to domain.Status) error {
	if next, ok := from.Next(); !ok || next != to {
		return fmt.Errorf("%w: illegal status transition %s -> %s", domain.ErrInvalidRequest, from, to)
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE documents SET status = ? WHERE id = ? AND status = ?`,
		string(to), id, string(from))
	if err != nil {
		return err
	}

	affected, _ := result.RowsAffected()
	if affected > 0 {
		return nil
	}
	if _, err := r.Get(ctx, id); err != nil {
		return err
	}
	return fmt.Errorf("%w: document %s is no longer %s", domain.ErrInvalidRequest, id, from)
}

// OldestUnparsed returns the earliest stored document that is not parsed yet
func (r *DocumentRepository) OldestUnparsed(ctx context.Context) (*domain.Document, error) {
	doc, err := scanDocument(r.db.QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE status != ? ORDER BY seq ASC LIMIT 1`,
		string(domain.StatusParsed)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return doc, err
}

var _ domain.DocumentStore = (*DocumentRepository)(nil)

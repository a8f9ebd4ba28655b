package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/liliang-cn/doclens/internal/config"
	"github.com/liliang-cn/doclens/internal/domain"
)

// Options tunes DocumentService behaviour
type Options struct {
	ListDelay         time.Duration
	DetailDelay       time.Duration
	UploadDelay       time.Duration
	UploadFailureRate float64
	MaxUploadSize     int64
	AllowedTypes      []string
	SectionPageSize   int
}

// OptionsFromConfig maps the config sections onto service options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		ListDelay:         cfg.Simulation.ListDelay,
		DetailDelay:       cfg.Simulation.DetailDelay,
		UploadDelay:       cfg.Simulation.UploadDelay,
		UploadFailureRate: cfg.Simulation.UploadFailureRate,
		MaxUploadSize:     cfg.Upload.MaxSize,
		AllowedTypes:      cfg.Upload.AllowedTypes,
		SectionPageSize:   cfg.Pagination.SectionPageSize,
	}
}

// DocumentService implements the document data access operations
type DocumentService struct {
	docs    domain.DocumentStore
	details domain.DetailsStore
	cache   domain.Cache
	logger  *zap.Logger
	opts    Options

	// random returns a value in [0, 1) deciding simulated upload failures
	random func() float64
	now    func() time.Time
}

// NewDocumentService creates a new document service
func NewDocumentService(
	docs domain.DocumentStore,
	details domain.DetailsStore,
	cache domain.Cache,
	logger *zap.Logger,
	opts Options,
) *DocumentService {
	if opts.SectionPageSize < 1 {
		opts.SectionPageSize = 5
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentService{
		docs:    docs,
		details: details,
		cache:   cache,
		logger:  logger,
		opts:    opts,
		random:  rand.Float64,
		now:     time.Now,
	}
}

// SectionPageSize is the default local page size for section views.
func (s *DocumentService) SectionPageSize() int {
	return s.opts.SectionPageSize
}

// ListDocuments returns page (1-indexed) of the collection with limit items
// per page. Pages past the end are empty, not an error.
func (s *DocumentService) ListDocuments(ctx context.Context, page, limit int) (*domain.DocumentListResponse, error) {
	if page < 1 || limit < 1 {
		return nil, fmt.Errorf("%w: page and limit must be positive", domain.ErrInvalidRequest)
	}
	if err := wait(ctx, s.opts.ListDelay); err != nil {
		return nil, fetchFailed(err)
	}

	docs, total, err := s.docs.Page(ctx, PageOffset(page, limit), limit)
	if err != nil {
		s.logger.Error("failed to list documents", zap.Int("page", page), zap.Int("limit", limit), zap.Error(err))
		return nil, fetchFailed(err)
	}

	return &domain.DocumentListResponse{
		Documents:  docs,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: TotalPages(total, limit),
	}, nil
}

// GetDocument retrieves a document by ID
func (s *DocumentService) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	doc, err := s.docs.Get(ctx, id)
	if err != nil {
		return nil, fetchFailed(err)
	}
	return doc, nil
}

// GetDocumentDetails returns a document and its parsed content positioned at
// the given document-level page. Details is nil for documents without
// parsed content.
func (s *DocumentService) GetDocumentDetails(ctx context.Context, id string, docPage int) (*domain.DocumentWithDetails, error) {
	if docPage < 1 {
		return nil, fmt.Errorf("%w: page must be positive", domain.ErrInvalidRequest)
	}
	if err := wait(ctx, s.opts.DetailDelay); err != nil {
		return nil, fetchFailed(err)
	}

	doc, err := s.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}

	details, err := s.loadDetails(ctx, id)
	if err != nil {
		return nil, err
	}
	if details != nil {
		details.List.Paging.CurrentPage = docPage
		details.List.SectionPaging = SectionPagingFor(&details.List.Metadata, s.opts.SectionPageSize)
	}

	return &domain.DocumentWithDetails{Document: doc, Details: details}, nil
}

// GetSection returns one local page of a section. Documents without details
// produce an empty page.
func (s *DocumentService) GetSection(ctx context.Context, id string, section domain.Section, page, pageSize int) (*domain.SectionPage, error) {
	if pageSize < 1 {
		pageSize = s.opts.SectionPageSize
	}
	if page < 1 {
		return nil, fmt.Errorf("%w: page must be positive", domain.ErrInvalidRequest)
	}
	if _, err := s.GetDocument(ctx, id); err != nil {
		return nil, err
	}

	details, err := s.loadDetails(ctx, id)
	if err != nil {
		return nil, err
	}
	var items []domain.TextItem
	if details != nil {
		items = details.List.Metadata.Items(section)
	}
	return PaginateSection(section, items, page, pageSize), nil
}

// loadDetails reads details through the cache. The returned value is a
// private copy.
func (s *DocumentService) loadDetails(ctx context.Context, id string) (*domain.DocumentDetails, error) {
	key := detailsCacheKey(id)
	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, key); ok {
			if d, ok := cached.(*domain.DocumentDetails); ok {
				s.logger.Debug("details cache hit", zap.String("id", id))
				return d.Clone(), nil
			}
		}
	}

	details, err := s.details.Get(ctx, id)
	if err != nil {
		s.logger.Error("failed to load details", zap.String("id", id), zap.Error(err))
		return nil, fetchFailed(err)
	}
	if details == nil {
		return nil, nil
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, details); err != nil {
			s.logger.Warn("failed to cache details", zap.String("id", id), zap.Error(err))
		}
	}
	return details.Clone(), nil
}

// Upload simulates a file upload. After the configured delay it either
// prepends a new waiting_queue document or fails with ErrUploadFailed.
func (s *DocumentService) Upload(ctx context.Context, file domain.FileDescriptor) (*domain.Document, error) {
	fileType, err := s.validateUpload(file)
	if err != nil {
		return nil, err
	}

	if err := wait(ctx, s.opts.UploadDelay); err != nil {
		return nil, err
	}

	if s.random() < s.opts.UploadFailureRate {
		s.logger.Warn("simulated upload failure", zap.String("file", file.Name))
		return nil, domain.ErrUploadFailed
	}

	doc := &domain.Document{
		Title:      file.Name,
		UploadedAt: s.now().UTC(),
		Status:     domain.StatusWaitingQueue,
		FileSize:   FormatFileSize(file.Size),
		FileType:   fileType,
	}
	if err := s.docs.Prepend(ctx, doc); err != nil {
		s.logger.Error("failed to store uploaded document", zap.String("file", file.Name), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", domain.ErrUploadFailed, err)
	}

	s.logger.Info("document uploaded",
		zap.String("id", doc.ID),
		zap.String("title", doc.Title),
		zap.String("file_size", doc.FileSize),
	)
	return doc, nil
}

func (s *DocumentService) validateUpload(file domain.FileDescriptor) (string, error) {
	if strings.TrimSpace(file.Name) == "" {
		return "", fmt.Errorf("%w: file name is required", domain.ErrInvalidRequest)
	}
	if file.Size < 0 {
		return "", fmt.Errorf("%w: negative file size", domain.ErrInvalidRequest)
	}
	if s.opts.MaxUploadSize > 0 && file.Size > s.opts.MaxUploadSize {
		return "", fmt.Errorf("%w: file exceeds %s", domain.ErrInvalidRequest, FormatFileSize(s.opts.MaxUploadSize))
	}

	fileType := DetectFileType(file.Name)
	if len(s.opts.AllowedTypes) == 0 {
		return fileType, nil
	}
	for _, allowed := range s.opts.AllowedTypes {
		if strings.EqualFold(allowed, fileType) {
			return fileType, nil
		}
	}
	return "", fmt.Errorf("%w: unsupported file type: %s", domain.ErrInvalidRequest, fileType)
}

// AdvanceNext moves the oldest unparsed document one status forward. It
// returns nil when nothing is left to advance.
func (s *DocumentService) AdvanceNext(ctx context.Context) (*domain.Document, error) {
	doc, err := s.docs.OldestUnparsed(ctx)
	if err != nil || doc == nil {
		return nil, err
	}

	next, ok := doc.Status.Next()
	if !ok {
		return nil, nil
	}
	if err := s.docs.AdvanceStatus(ctx, doc.ID, doc.Status, next); err != nil {
		return nil, err
	}

	s.logger.Info("document status advanced",
		zap.String("id", doc.ID),
		zap.String("from", string(doc.Status)),
		zap.String("to", string(next)),
	)
	doc.Status = next
	return doc, nil
}

func detailsCacheKey(id string) string {
	return "details:" + id
}

// fetchFailed folds unexpected errors into ErrFetchFailed, leaving the
// taxonomy errors untouched.
func fetchFailed(err error) error {
	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrInvalidRequest) || errors.Is(err, domain.ErrFetchFailed) {
		return err
	}
	return fmt.Errorf("%w: %v", domain.ErrFetchFailed, err)
}

// wait blocks for d or until ctx is done.
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

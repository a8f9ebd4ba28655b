// Package state holds the client-side application state of the document
// views. All mutations go through the Store actions.
package state

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/liliang-cn/doclens/internal/domain"
	"github.com/liliang-cn/doclens/internal/service"
)

// Backend is the data access layer the store dispatches to.
type Backend interface {
	ListDocuments(ctx context.Context, page, limit int) (*domain.DocumentListResponse, error)
	GetDocumentDetails(ctx context.Context, id string, docPage int) (*domain.DocumentWithDetails, error)
	Upload(ctx context.Context, file domain.FileDescriptor) (*domain.Document, error)
}

// Default rejection messages.
const (
	MsgFetchDocumentsFailed = "Failed to fetch documents"
	MsgFetchDetailsFailed   = "Failed to fetch document details"
	MsgUploadFailed         = "Failed to upload document"
	MsgDocumentNotFound     = "Document not found"
)

// State is a point-in-time view of the store.
type State struct {
	Documents       []*domain.Document
	CurrentDocument *domain.Document
	CurrentDetails  *domain.DocumentDetails
	Loading         bool
	UploadLoading   bool
	Error           string
	ErrorKind       domain.ErrorKind
	Pagination      domain.Pagination
}

func initialState() State {
	return State{
		Documents:  []*domain.Document{},
		Pagination: domain.Pagination{Page: 1, Limit: 10},
	}
}

func (s *State) clone() State {
	out := *s
	out.Documents = make([]*domain.Document, len(s.Documents))
	for i, d := range s.Documents {
		cp := *d
		out.Documents[i] = &cp
	}
	if s.CurrentDocument != nil {
		cp := *s.CurrentDocument
		out.CurrentDocument = &cp
	}
	out.CurrentDetails = s.CurrentDetails.Clone()
	return out
}

type view int

const (
	viewList view = iota
	viewDetails
	viewCount
)

// Store is the application state container. It is safe for concurrent use.
// Each fetch view (list, details) tags its dispatches with a sequence number
// and a completion only lands if it is still the latest for that view.
type Store struct {
	backend Backend
	logger  *zap.Logger

	// dispatchMu orders transitions and their notifications
	dispatchMu sync.Mutex
	mu         sync.RWMutex
	state      State
	seq        [viewCount]uint64
	inFlight   [viewCount]bool
	uploads    int

	subMu  sync.Mutex
	nextID int
	subs   map[int]func(State)
}

// NewStore creates a store in its initial state.
func NewStore(backend Backend, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		backend: backend,
		logger:  logger,
		state:   initialState(),
		subs:    make(map[int]func(State)),
	}
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// Subscribe registers fn to receive a snapshot after every transition. fn
// must not dispatch actions. The returned func unsubscribes.
func (s *Store) Subscribe(fn func(State)) func() {
	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

// transition applies fn under the state lock and notifies subscribers.
// fn reports whether anything changed.
func (s *Store) transition(fn func(st *State) bool) {
	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()

	s.mu.Lock()
	changed := fn(&s.state)
	var snap State
	if changed {
		snap = s.state.clone()
	}
	s.mu.Unlock()

	if !changed {
		return
	}

	s.subMu.Lock()
	subs := make([]func(State), 0, len(s.subs))
	for _, sub := range s.subs {
		subs = append(subs, sub)
	}
	s.subMu.Unlock()

	for _, sub := range subs {
		sub(snap)
	}
}

// begin runs the pending phase of a fetch view and returns its sequence number.
func (s *Store) begin(v view) uint64 {
	var seq uint64
	s.transition(func(st *State) bool {
		s.seq[v]++
		seq = s.seq[v]
		s.inFlight[v] = true
		st.Loading = true
		st.Error = ""
		st.ErrorKind = domain.KindNone
		return true
	})
	return seq
}

// settle runs the fulfilled or rejected phase of a fetch view. Stale
// completions are dropped and reported false.
func (s *Store) settle(v view, seq uint64, apply func(st *State)) bool {
	applied := false
	s.transition(func(st *State) bool {
		if seq != s.seq[v] {
			return false
		}
		applied = true
		s.inFlight[v] = false
		st.Loading = s.fetching()
		apply(st)
		return true
	})
	return applied
}

func (s *Store) fetching() bool {
	for _, f := range s.inFlight {
		if f {
			return true
		}
	}
	return false
}

// FetchDocuments loads one page of the document list.
func (s *Store) FetchDocuments(ctx context.Context, page, limit int) error {
	seq := s.begin(viewList)

	res, err := s.backend.ListDocuments(ctx, page, limit)

	applied := s.settle(viewList, seq, func(st *State) {
		if err != nil {
			setError(st, err, MsgFetchDocumentsFailed)
			return
		}
		st.Documents = res.Documents
		st.Pagination = res.Pagination()
	})
	if !applied {
		s.logger.Debug("dropped stale document list", zap.Uint64("seq", seq), zap.Int("page", page))
	}
	return err
}

// FetchDetails loads a document and its details at document page 1.
func (s *Store) FetchDetails(ctx context.Context, id string) error {
	return s.fetchDetails(ctx, id, 1)
}

// FetchDetailsByPage loads a document and its details at docPage.
func (s *Store) FetchDetailsByPage(ctx context.Context, id string, docPage int) error {
	return s.fetchDetails(ctx, id, docPage)
}

func (s *Store) fetchDetails(ctx context.Context, id string, docPage int) error {
	seq := s.begin(viewDetails)

	res, err := s.backend.GetDocumentDetails(ctx, id, docPage)

	applied := s.settle(viewDetails, seq, func(st *State) {
		if err != nil {
			setError(st, err, MsgFetchDetailsFailed)
			return
		}
		st.CurrentDocument = res.Document
		st.CurrentDetails = res.Details
	})
	if !applied {
		s.logger.Debug("dropped stale document details",
			zap.Uint64("seq", seq),
			zap.String("id", id),
			zap.Int("page", docPage),
		)
	}
	return err
}

// Upload sends file to the backend. On success the new document is put at
// the head of the list and the total grows by one. Uploads never supersede
// each other.
func (s *Store) Upload(ctx context.Context, file domain.FileDescriptor) (*domain.Document, error) {
	s.transition(func(st *State) bool {
		s.uploads++
		st.UploadLoading = true
		st.Error = ""
		st.ErrorKind = domain.KindNone
		return true
	})

	doc, err := s.backend.Upload(ctx, file)

	s.transition(func(st *State) bool {
		s.uploads--
		st.UploadLoading = s.uploads > 0
		if err != nil {
			setError(st, err, MsgUploadFailed)
			return true
		}
		st.Documents = append([]*domain.Document{doc}, st.Documents...)
		st.Pagination.Total++
		st.Pagination.TotalPages = service.TotalPages(st.Pagination.Total, st.Pagination.Limit)
		return true
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// ClearError resets the error message.
func (s *Store) ClearError() {
	s.transition(func(st *State) bool {
		if st.Error == "" {
			return false
		}
		st.Error = ""
		st.ErrorKind = domain.KindNone
		return true
	})
}

// ClearCurrentDocument drops the current document and its details. A details
// fetch still in flight is discarded when it completes.
func (s *Store) ClearCurrentDocument() {
	s.transition(func(st *State) bool {
		s.seq[viewDetails]++
		s.inFlight[viewDetails] = false
		st.Loading = s.fetching()
		st.CurrentDocument = nil
		st.CurrentDetails = nil
		return true
	})
}

func setError(st *State, err error, fallback string) {
	st.ErrorKind = domain.KindOf(err)
	st.Error = Message(err, fallback)
}

// Message turns err into a user-facing message.
func Message(err error, fallback string) string {
	switch domain.KindOf(err) {
	case domain.KindNone:
		return ""
	case domain.KindNotFound:
		return MsgDocumentNotFound
	case domain.KindUploadFailed:
		return "Upload failed, please try again"
	case domain.KindInvalid:
		return err.Error()
	default:
		return fallback
	}
}

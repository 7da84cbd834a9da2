package docdb

import (
	"context"
	"io"
	"log/slog"
	"slices"

	domainerrors "userstore/internal/domain/errors"
	"userstore/internal/errors"
	"userstore/internal/infra/persistence/model"

	"gocloud.dev/docstore"
	"gocloud.dev/gcerrors"
)

type docState int

const (
	stateUnchanged docState = iota
	stateAdded
	stateModified
	stateDeleted
)

type opKind int

const (
	opCreate opKind = iota
	opReplace
	opDelete
)

func (k opKind) String() string {
	switch k {
	case opCreate:
		return "create"
	case opReplace:
		return "replace"
	case opDelete:
		return "delete"
	default:
		return "unknown"
	}
}

type trackedDocument struct {
	doc   model.Document
	state docState
	// original is the stored state when the document was loaded. Nil for added documents.
	original model.Document
}

type writeOp struct {
	kind opKind
	key  string
	t    *trackedDocument
}

// Session is a unit of work over one docstore collection.
//
// Loaded documents are kept in an identity map, so every read of a key within the session
// returns the same instance. Writes are staged with Store and Delete and reach the collection
// only in SaveChanges. A Session is not safe for concurrent use.
type Session struct {
	coll    *docstore.Collection
	logger  *slog.Logger
	tracked map[string]*trackedDocument

	// failed is set when a flush failed; the session must be discarded afterwards.
	failed error
}

// NewSession opens a session over coll.
func NewSession(coll *docstore.Collection, logger *slog.Logger) *Session {
	return &Session{
		coll:    coll,
		logger:  logger,
		tracked: make(map[string]*trackedDocument),
	}
}

// Load returns the tracked instance for doc's key, or reads doc from the collection and tracks it.
// doc only needs its key set. A key staged for deletion reads as ErrNotFound.
func (s *Session) Load(ctx context.Context, doc model.Document) (model.Document, error) {
	key := doc.DocumentKey()
	if t, ok := s.tracked[key]; ok {
		if t.state == stateDeleted {
			return nil, domainerrors.ErrNotFound.WithDetails(key)
		}

		return t.doc, nil
	}

	if err := s.coll.Get(ctx, doc); err != nil {
		return nil, mapReadError(err, key)
	}
	s.track(doc)

	return doc, nil
}

func (s *Session) track(doc model.Document) {
	s.tracked[doc.DocumentKey()] = &trackedDocument{
		doc:      doc,
		state:    stateUnchanged,
		original: doc.Snapshot(),
	}
}

// Store stages doc for writing. An untracked key becomes a create; a tracked instance becomes
// a revision-checked replace. Storing a new instance over a key staged for deletion turns the
// delete into a replace of the loaded revision.
func (s *Session) Store(doc model.Document) error {
	key := doc.DocumentKey()
	if key == "" {
		return domainerrors.ErrValidationFailed.WithDetails("document key is empty")
	}

	t, ok := s.tracked[key]
	if !ok {
		s.tracked[key] = &trackedDocument{doc: doc, state: stateAdded}

		return nil
	}

	if t.doc != doc {
		if t.state != stateDeleted {
			return domainerrors.ErrDuplicateIdentity.WithDetails(key + " is already tracked by another instance")
		}
		doc.SetRevision(t.doc.Revision())
		t.doc = doc
	}

	if t.state == stateUnchanged || t.state == stateDeleted {
		t.state = stateModified
	}

	return nil
}

// Delete stages removal of a tracked key. Deleting a document added in this session just
// forgets it. ErrNotFound when the key was never loaded or stored here.
func (s *Session) Delete(key string) error {
	t, ok := s.tracked[key]
	if !ok {
		return domainerrors.ErrNotFound.WithDetails(key + " is not loaded in the session")
	}

	if t.state == stateAdded {
		delete(s.tracked, key)

		return nil
	}
	t.state = stateDeleted

	return nil
}

// HasChanges reports whether any write is staged.
func (s *Session) HasChanges() bool {
	for _, t := range s.tracked {
		if t.state != stateUnchanged {
			return true
		}
	}

	return false
}

// SaveChanges flushes staged writes: creates first, then replaces, then deletes, each group in
// key order. When a write fails every write already applied is undone in reverse order and the
// failure is returned. Compensation is best effort; its own failures are logged.
func (s *Session) SaveChanges(ctx context.Context) error {
	if s.failed != nil {
		return errors.Wrap(s.failed, "session already failed to save")
	}

	ops := s.pendingOperations()
	if len(ops) == 0 {
		return nil
	}

	applied := make([]writeOp, 0, len(ops))
	for _, op := range ops {
		done, err := s.apply(ctx, op)
		if err != nil {
			mapped := mapWriteError(op, err)
			s.logger.WarnContext(ctx, "Save changes failed, compensating applied writes",
				slog.String("op", op.kind.String()),
				slog.String("key", op.key),
				slog.Int("applied", len(applied)),
				slog.Any("error", err),
			)
			s.compensate(ctx, applied)
			s.failed = mapped

			return mapped
		}
		if done {
			applied = append(applied, op)
		}
	}

	s.acceptChanges(ops)
	s.logger.DebugContext(ctx, "Saved changes", slog.Int("writes", len(ops)))

	return nil
}

func (s *Session) pendingOperations() []writeOp {
	var creates, replaces, deletes []writeOp
	for key, t := range s.tracked {
		switch t.state {
		case stateAdded:
			creates = append(creates, writeOp{kind: opCreate, key: key, t: t})
		case stateModified:
			replaces = append(replaces, writeOp{kind: opReplace, key: key, t: t})
		case stateDeleted:
			deletes = append(deletes, writeOp{kind: opDelete, key: key, t: t})
		case stateUnchanged:
		}
	}

	byKey := func(a, b writeOp) int {
		switch {
		case a.key < b.key:
			return -1
		case a.key > b.key:
			return 1
		default:
			return 0
		}
	}
	slices.SortFunc(creates, byKey)
	slices.SortFunc(replaces, byKey)
	slices.SortFunc(deletes, byKey)

	return slices.Concat(creates, replaces, deletes)
}

// apply performs one write. done is false when the write turned out to be a no-op.
func (s *Session) apply(ctx context.Context, op writeOp) (done bool, err error) {
	switch op.kind {
	case opCreate:
		err = s.coll.Create(ctx, op.t.doc)
	case opReplace:
		err = s.coll.Replace(ctx, op.t.doc)
	case opDelete:
		err = s.coll.Delete(ctx, op.t.doc)
		if gcerrors.Code(err) == gcerrors.NotFound {
			return false, nil
		}
	}
	if err != nil {
		return false, err
	}

	return true, nil
}

func (s *Session) compensate(ctx context.Context, applied []writeOp) {
	// The caller's ctx may be the reason the flush failed.
	ctx = context.WithoutCancel(ctx)

	for i := len(applied) - 1; i >= 0; i-- {
		op := applied[i]

		var err error
		switch op.kind {
		case opCreate:
			err = s.coll.Delete(ctx, op.t.doc.Snapshot())
		case opReplace, opDelete:
			err = s.coll.Put(ctx, op.t.original.Snapshot())
		}
		if err != nil {
			s.logger.ErrorContext(ctx, "Failed to compensate write",
				slog.String("op", op.kind.String()),
				slog.String("key", op.key),
				slog.Any("error", err),
			)
		}
	}
}

func (s *Session) acceptChanges(ops []writeOp) {
	for _, op := range ops {
		if op.kind == opDelete {
			delete(s.tracked, op.key)

			continue
		}
		op.t.state = stateUnchanged
		op.t.original = op.t.doc.Snapshot()
	}
}

// LoadDocument reads a typed document through the session identity map.
func LoadDocument[T model.Document](ctx context.Context, s *Session, doc T) (T, error) {
	var zero T

	got, err := s.Load(ctx, doc)
	if err != nil {
		return zero, err
	}

	typed, ok := got.(T)
	if !ok {
		return zero, domainerrors.ErrInternalError.WithDetails(doc.DocumentKey() + " is tracked with a different document type")
	}

	return typed, nil
}

// QueryDocuments runs a collection query of one document kind and merges it with the session state:
// tracked instances replace query results, documents staged for deletion are dropped, and
// staged documents of type T that satisfy match are included. Results are ordered by key.
func QueryDocuments[T model.Document](
	ctx context.Context,
	s *Session,
	kind string,
	newDoc func() T,
	match func(T) bool,
	filters ...Filter,
) ([]T, error) {
	q := s.coll.Query().Where(model.FieldKind, "=", kind)
	for _, f := range filters {
		q = q.Where(docstore.FieldPath(f.Field), f.Op, f.Value)
	}

	iter := q.Get(ctx)
	defer iter.Stop()

	seen := make(map[string]struct{})
	for {
		doc := newDoc()
		err := iter.Next(ctx, doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, domainerrors.NewStoreError(err, "query "+kind)
		}

		key := doc.DocumentKey()
		seen[key] = struct{}{}
		if _, ok := s.tracked[key]; !ok {
			s.track(doc)
		}
	}

	var out []T
	for key, t := range s.tracked {
		if t.state == stateDeleted {
			continue
		}
		typed, ok := t.doc.(T)
		if !ok {
			continue
		}
		// Unchanged documents the store did not return are left out; the store is authoritative for them.
		if _, ok := seen[key]; !ok && t.state == stateUnchanged {
			continue
		}
		if match(typed) {
			out = append(out, typed)
		}
	}

	slices.SortFunc(out, func(a, b T) int {
		switch {
		case a.DocumentKey() < b.DocumentKey():
			return -1
		case a.DocumentKey() > b.DocumentKey():
			return 1
		default:
			return 0
		}
	})

	return out, nil
}

// Filter is one equality or range condition of QueryDocuments.
type Filter struct {
	Field string
	Op    string
	Value any
}

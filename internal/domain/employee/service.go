package employee

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"hrrecords/internal/platform/cache"
	"hrrecords/internal/platform/i18n"
	"hrrecords/internal/platform/metrics"
	"hrrecords/internal/platform/requestctx"
)

// Actor is the signed-in user on whose behalf a write runs.
type Actor struct {
	UserID    string
	Name      string
	RequestID string
	IP        string
}

type AuditRecorder interface {
	Record(ctx context.Context, actorID, action, entityType, entityID, requestID, ip string, before, after any) error
}

const listCacheKey = "employees"

type Service struct {
	Store   StoreAPI
	Schema  *Schema
	Cache   *cache.Cache[string, []Employee]
	Audit   AuditRecorder
	Metrics *metrics.Collector
	Log     zerolog.Logger

	// listGen counts committed writes. A listing read from storage is only
	// cached if no write committed while it was being read.
	listMu  sync.Mutex
	listGen atomic.Uint64
}

func NewService(store StoreAPI, listCache *cache.Cache[string, []Employee], audit AuditRecorder, collector *metrics.Collector, logger zerolog.Logger) *Service {
	return &Service{
		Store:   store,
		Schema:  NewSchema(),
		Cache:   listCache,
		Audit:   audit,
		Metrics: collector,
		Log:     logger,
	}
}

func (s *Service) Validate(in FormInput, lang string) (Payload, error) {
	return s.Schema.Validate(in, lang)
}

func (s *Service) Create(ctx context.Context, actor Actor, in FormInput, lang string) (emp Employee, err error) {
	defer func() { s.Metrics.RecordOperation("employee.create", err != nil) }()

	payload, err := s.Schema.Validate(in, lang)
	if err != nil {
		return Employee{}, err
	}
	if err := s.ensureNationalIDFree(ctx, payload.NationalID, "", lang); err != nil {
		return Employee{}, err
	}
	emp, err = s.Store.Insert(ctx, payload)
	if err != nil {
		return Employee{}, s.storageFailure(ctx, "create", err, lang)
	}
	s.committed(ctx, actor, "employee.create", emp.ID, nil, emp)
	return emp, nil
}

func (s *Service) Read(ctx context.Context, id string) (emp Employee, err error) {
	defer func() { s.Metrics.RecordOperation("employee.read", err != nil && !errors.Is(err, ErrNotFound)) }()

	if !validID(id) {
		return Employee{}, ErrNotFound
	}
	emp, err = s.Store.Get(ctx, id)
	if err != nil {
		return Employee{}, s.storageFailure(ctx, "read", err, "")
	}
	return emp, nil
}

// List returns all employees, newest first. Results are served from the
// listing cache until the next committed write. Callers own the returned
// slice and may modify it.
func (s *Service) List(ctx context.Context) (out []Employee, err error) {
	defer func() { s.Metrics.RecordOperation("employee.list", err != nil) }()

	if cached, ok := s.Cache.Get(listCacheKey); ok {
		return cloneEmployees(cached), nil
	}
	gen := s.listGen.Load()
	out, err = s.Store.List(ctx)
	if err != nil {
		return nil, s.storageFailure(ctx, "list", err, "")
	}
	s.cacheList(gen, cloneEmployees(out))
	return out, nil
}

func (s *Service) cacheList(gen uint64, list []Employee) {
	s.listMu.Lock()
	defer s.listMu.Unlock()
	if s.listGen.Load() == gen {
		s.Cache.Put(listCacheKey, list)
	}
}

func (s *Service) invalidateList() {
	s.listMu.Lock()
	defer s.listMu.Unlock()
	s.listGen.Add(1)
	s.Cache.Purge()
}

// Update replaces every field and the whole relationship set of an employee.
func (s *Service) Update(ctx context.Context, actor Actor, id string, in FormInput, lang string) (emp Employee, err error) {
	defer func() { s.Metrics.RecordOperation("employee.update", err != nil) }()

	payload, err := s.Schema.Validate(in, lang)
	if err != nil {
		return Employee{}, err
	}
	if !validID(id) {
		return Employee{}, ErrNotFound
	}
	before, err := s.Store.Get(ctx, id)
	if err != nil {
		return Employee{}, s.storageFailure(ctx, "update", err, lang)
	}
	if err := s.ensureNationalIDFree(ctx, payload.NationalID, id, lang); err != nil {
		return Employee{}, err
	}
	emp, err = s.Store.Replace(ctx, id, payload)
	if err != nil {
		return Employee{}, s.storageFailure(ctx, "update", err, lang)
	}
	s.committed(ctx, actor, "employee.update", emp.ID, before, emp)
	return emp, nil
}

func (s *Service) Delete(ctx context.Context, actor Actor, id string) (err error) {
	defer func() { s.Metrics.RecordOperation("employee.delete", err != nil) }()

	if !validID(id) {
		return ErrNotFound
	}
	before, err := s.Store.Get(ctx, id)
	if err != nil {
		return s.storageFailure(ctx, "delete", err, "")
	}
	if err := s.Store.Delete(ctx, id); err != nil {
		return s.storageFailure(ctx, "delete", err, "")
	}
	s.committed(ctx, actor, "employee.delete", id, before, nil)
	return nil
}

func (s *Service) ensureNationalIDFree(ctx context.Context, nationalID, excludeID, lang string) error {
	taken, err := s.Store.NationalIDTaken(ctx, nationalID, excludeID)
	if err != nil {
		return s.storageFailure(ctx, "national id check", err, lang)
	}
	if taken {
		return duplicateNationalID(lang)
	}
	return nil
}

// committed runs after a write has been committed to storage.
func (s *Service) committed(ctx context.Context, actor Actor, action, id string, before, after any) {
	s.invalidateList()
	s.Log.Info().Str("action", action).Str("employee_id", id).Str("actor", actor.UserID).
		Str("request_id", actor.RequestID).Msg("employee record changed")
	if s.Audit == nil {
		return
	}
	if err := s.Audit.Record(ctx, actor.UserID, action, auditEntity, id, actor.RequestID, actor.IP, before, after); err != nil {
		s.Log.Warn().Err(err).Str("action", action).Str("employee_id", id).Msg("audit record failed")
	}
}

// storageFailure classifies a store error. Anything that is not a known
// domain outcome is logged and hidden behind a *PersistenceError.
func (s *Service) storageFailure(ctx context.Context, op string, err error, lang string) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return ErrNotFound
	case errors.Is(err, ErrNationalIDTaken):
		return duplicateNationalID(lang)
	case errors.Is(err, context.Canceled):
		return err
	}
	s.Log.Error().Err(err).Str("op", op).Str("request_id", requestctx.GetRequestID(ctx)).Msg("employee storage failure")
	return &PersistenceError{Op: op, Err: err}
}

func duplicateNationalID(lang string) error {
	if lang != i18n.English {
		lang = i18n.Arabic
	}
	return &ValidationError{Issues: []FieldIssue{{
		Field:   "nationalId",
		Message: i18n.T(lang, i18n.MsgDuplicateNationalID),
	}}}
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

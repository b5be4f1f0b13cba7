// internal/app/store/memstore/memstore.go

// Package memstore is an in-memory implementation of every store interface.
// It mirrors the MongoDB stores' defaults, ordering, and error sentinels so
// handler tests can run without a database.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dalemusser/bilanhub/internal/app/store"
	"github.com/dalemusser/bilanhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
)

// Store holds all collections behind a single mutex.
type Store struct {
	mu   sync.Mutex
	fail error
	ids  map[string]int64
	// clock is stepped on every write so ordering by time is deterministic.
	clock time.Time

	users     map[int64]models.User
	orgs      map[int64]models.Organization
	bilans    map[int64]models.Bilan
	sessions  map[int64]models.Session
	documents map[int64]models.Document
	messages  map[int64]models.Message
	recs      map[int64]models.Recommendation
	skills    map[int64]models.SkillsEvaluation
	surveys   map[int64]models.SatisfactionSurvey
	responses map[int64]models.SurveyResponse
	audit     []models.AuditLog
}

func New() *Store {
	return &Store{
		ids:       map[string]int64{},
		clock:     time.Now().UTC(),
		users:     map[int64]models.User{},
		orgs:      map[int64]models.Organization{},
		bilans:    map[int64]models.Bilan{},
		sessions:  map[int64]models.Session{},
		documents: map[int64]models.Document{},
		messages:  map[int64]models.Message{},
		recs:      map[int64]models.Recommendation{},
		skills:    map[int64]models.SkillsEvaluation{},
		surveys:   map[int64]models.SatisfactionSurvey{},
		responses: map[int64]models.SurveyResponse{},
	}
}

// Set exposes the store through the interfaces handlers depend on.
func (m *Store) Set() store.Set {
	return store.Set{
		Users:           users{m},
		Organizations:   orgs{m},
		Bilans:          bilans{m},
		Sessions:        sessions{m},
		Documents:       documents{m},
		Messages:        messages{m},
		Recommendations: recs{m},
		Skills:          skills{m},
		Surveys:         surveys{m},
		Audit:           audit{m},
	}
}

// FailWith makes every subsequent call return err until cleared with nil.
func (m *Store) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail = err
}

// lock acquires the mutex and reports the injected failure, if any. The
// caller must defer m.mu.Unlock() regardless of the result.
func (m *Store) lock(ctx context.Context) error {
	m.mu.Lock()
	if err := ctx.Err(); err != nil {
		return store.FromMongo(err)
	}
	return m.fail
}

func (m *Store) next(name string) int64 {
	m.ids[name]++
	return m.ids[name]
}

func (m *Store) now() time.Time {
	m.clock = m.clock.Add(time.Millisecond)
	return m.clock
}

func clone[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func eq(a, b *int64) bool {
	return a != nil && b != nil && *a == *b
}

/*─────────────────────────────────────────────────────────────────────────────*
| Users                                                                        |
*─────────────────────────────────────────────────────────────────────────────*/

type users struct{ m *Store }

func (s users) Create(ctx context.Context, u models.User) (models.User, error) {
	m := s.m
	defer m.mu.Unlock()
	if err := m.lock(ctx); err != nil {
		return models.User{}, err
	}
	return m.createUser(u)
}

func (m *Store) createUser(u models.User) (models.User, error) {
	if u.OpenID != "" {
		for _, x := range m.users {
			if x.OpenID == u.OpenID {
				return models.User{}, store.ErrDuplicate
			}
		}
	}
	now := m.now()
	u.ID = m.next("users")
	u.Name = strings.TrimSpace(u.Name)
	u.NameCI = text.Fold(u.Name)
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if u.Role == "" {
		u.Role = models.RoleBeneficiary
	}
	u.IsActive = true
	u.OrganizationID = clone(u.OrganizationID)
	u.CreatedAt = now
	u.UpdatedAt = now
	m.users[u.ID] = u
	return u, nil
}

func (s users) GetByID(ctx context.Context, id int64) (models.User, error) {
	m := s.m
	defer m.mu.Unlock()
	if err := m.lock(ctx); err != nil {
		return models.User{}, err
	}
	u, ok := m.users[id]
	if !ok {
		return models.User{}, store.ErrNotFound
	}
	return u, nil
}

func (s users) GetByOpenID(ctx context.Context, openID string) (models.User, error) {
	m := s.m
	defer m.mu.Unlock()
	if err := m.lock(ctx); err != nil {
		return models.User{}, err
	}
	for _, u := range m.users {
		if u.OpenID == openID {
			return u, nil
		}
	}
	return models.User{}, store.ErrNotFound
}

func (s users) UpsertByOpenID(ctx context.Context, u models.User) (models.User, error) {
	m := s.m
	defer m.mu.Unlock()
	if err := m.lock(ctx); err != nil {
		return models.User{}, err
	}
	now := m.now()
	for id, x := range m.users {
		if x.OpenID != u.OpenID {
			continue
		}
		if u.Name != "" {
			x.Name = strings.TrimSpace(u.Name)
			x.NameCI = text.Fold(x.Name)
		}
		if u.Email != "" {
			x.Email = strings.ToLower(strings.TrimSpace(u.Email))
		}
		if u.AvatarURL != "" {
			x.AvatarURL = u.AvatarURL
		}
		x.LastSignedIn = &now
		x.UpdatedAt = now
		m.users[id] = x
		return x, nil
	}
	u.LastSignedIn = &now
	return m.createUser(u)
}

func matchUser(u models.User, f store.UserFilter) bool {
	if f.OrganizationID != nil && !eq(u.OrganizationID, f.OrganizationID) {
		return false
	}
	if f.Role != "" && u.Role != f.Role {
		return false
	}
	if f.ActiveOnly && !u.Enabled() {
		return false
	}
	if f.Search != "" {
		q := text.Fold(f.Search)
		if !strings.Contains(u.NameCI, q) && !strings.Contains(u.Email, strings.ToLower(strings.TrimSpace(f.Search))) {
			return false
		}
	}
	return true
}

func (s users) Find(ctx context.Context, f store.UserFilter) ([]models.User, error) {
	m := s.m
	defer m.mu.Unlock()
	if err := m.lock(ctx); err != nil {
		return nil, err
	}
	out := []models.User{}
	for _, u := range m.users {
		if matchUser(u, f) {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].NameCI != out[j].NameCI {
			return out[i].NameCI < out[j].NameCI
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s users) Count(ctx context.Context, f store.UserFilter) (int64, error) {
	all, err := s.Find(ctx, f)
	return int64(len(all)), err
}

func (s users) Update(ctx context.Context, id int64, p store.UserPatch) (models.User, error) {
	m := s.m
	defer m.mu.Unlock()
	if err := m.lock(ctx); err != nil {
		return models.User{}, err
	}
	u, ok := m.users[id]
	if !ok {
		return models.User{}, store.ErrNotFound
	}
	if p.Name != nil {
		u.Name = strings.TrimSpace(*p.Name)
		u.NameCI = text.Fold(u.Name)
	}
	if p.Email != nil {
		u.Email = strings.ToLower(strings.TrimSpace(*p.Email))
	}
	if p.Phone != nil {
		u.Phone = *p.Phone
	}
	if p.AvatarURL != nil {
		u.AvatarURL = *p.AvatarURL
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.OrganizationID != nil {
		u.OrganizationID = clone(p.OrganizationID)
	}
	if p.IsActive != nil {
		u.IsActive = *p.IsActive
	}
	if p.DeletedAt != nil {
		u.DeletedAt = clone(p.DeletedAt)
	}
	if p.LastSignedIn != nil {
		u.LastSignedIn = clone(p.LastSignedIn)
	}
	u.UpdatedAt = m.now()
	m.users[id] = u
	return u, nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Organizations                                                                |
*─────────────────────────────────────────────────────────────────────────────*/

type orgs struct{ m *Store }

func (s orgs) Create(ctx context.Context, o models.Organization) (models.Organization, error) {
	m := s.m
	defer m.mu.Unlock()
	if err := m.lock(ctx); err != nil {
		return models.Organization{}, err
	}
	if o.Siret != "" {
		for _, x := range m.orgs {
			if x.Siret == o.Siret {
				return models.Organization{}, store.ErrDuplicate
			}
		}
	}
	now := m.now()
	o.ID = m.next("organizations")
	o.NameCI = text.Fold(o.Name)
	o.CreatedAt = now
	o.UpdatedAt = now
	m.orgs[o.ID] = o
	return o, nil
}

func (s orgs) GetByID(ctx context.Context, id int64) (models.Organization, error) {
	m := s.m
	defer m.mu.Unlock()
	if err := m.lock(ctx); err != nil {
		return models.Organization{}, err
	}
	o, ok := m.orgs[id]
	if !ok {
		return models.Organization{}, store.ErrNotFound
	}
	return o, nil
}

func (s orgs) Find(ctx context.Context, f store.OrganizationFilter) ([]models.Organization, error) {
	m := s.m
	defer m.mu.Unlock()
	if err := m.lock(ctx); err != nil {
		return nil, err
	}
	out := []models.Organization{}
	for _, o := range m.orgs {
		if f.ID != nil && o.ID != *f.ID {
			continue
		}
		if f.ActiveOnly && !o.IsActive {
			continue
		}
		if f.Search != "" && !strings.Contains(o.NameCI, text.Fold(f.Search)) {
			continue
		}
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].NameCI != out[j].NameCI {
			return out[i].NameCI < out[j].NameCI
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s orgs) Update(ctx context.Context, id int64, p store.OrganizationPatch) (models.Organization, error) {
	m := s.m
	defer m.mu.Unlock()
	if err := m.lock(ctx); err != nil {
		return models.Organization{}, err
	}
	o, ok := m.orgs[id]
	if !ok {
		return models.Organization{}, store.ErrNotFound
	}
	if p.Name != nil {
		o.Name = *p.Name
		o.NameCI = text.Fold(*p.Name)
	}
	if p.Address != nil {
		o.Address = *p.Address
	}
	if p.Phone != nil {
		o.Phone = *p.Phone
	}
	if p.Email != nil {
		o.Email = *p.Email
	}
	if p.Website != nil {
		o.Website = *p.Website
	}
	if p.LogoURL != nil {
		o.LogoURL = *p.LogoURL
	}
	if p.Settings != nil {
		o.Settings = *p.Settings
	}
	if p.IsActive != nil {
		o.IsActive = *p.IsActive
	}
	o.UpdatedAt = m.now()
	m.orgs[id] = o
	return o, nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Bilans                                                                       |
*─────────────────────────────────────────────────────────────────────────────*/

type bilans struct{ m *Store }

func (s bilans) Create(ctx context.Context, b models.Bilan) (models.Bilan, error) {
	m := s.m
	defer m.mu.Unlock()
	if err := m.lock(ctx); err != nil {
		return models.Bilan{}, err
	}
	now := m.now()
	b.ID = m.next("bilans")
	if b.Status == "" {
		b.Status = models.BilanPreliminary
	}
	if b.DurationHours == 0 {
		b.DurationHours = models.DefaultDurationHours
	}
	if b.StartDate.IsZero() {
		b.StartDate = now
	}
	b.ConsultantID = clone(b.ConsultantID)
	b.OrganizationID = clone(b.OrganizationID)
	b.CreatedAt = now
	b.UpdatedAt = now
	m.bilans[b.ID] = b
	return b, nil
}

func (s bilans) GetByID(ctx context.Context, id int64) (models.Bilan, error) {
	m := s.m
	defer m.mu.Unlock()
	if err := m.lock(ctx); err != nil {
		return models.Bilan{}, err
	}
	b, ok := m.bilans[id]
	if !ok {
		return models.Bilan{}, store.ErrNotFound
	}
	return b, nil
}

func matchBilan(b models.Bilan, f store.BilanFilter) bool {
	if f.OrganizationID != nil && !eq(b.OrganizationID, f.OrganizationID) {
		return false
	}
	if f.ConsultantID != nil && !eq(b.ConsultantID, f.ConsultantID) {
		return false
	}
	if f.BeneficiaryID != nil && b.BeneficiaryID != *f.BeneficiaryID {
		return false
	}
	if f.Status != "" && b.Status != f.Status {
		return false
	}
	return true
}

func (s bilans) Find(ctx context.Context, f store.BilanFilter) ([]models.Bilan, error) {
	m := s.m
	defer m.mu.Unlock()
	if err := m.lock(ctx); err != nil {
		return nil, err
	}
	out := []models.Bilan{}
	for _, b := range m.bilans {
		if matchBilan(b, f) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s bilans) Count(ctx context.Context, f store.BilanFilter) (int64, error) {
	all, err := s.Find(ctx, f)
	return int64(len(all)), err
}

func (s bilans) Update(ctx context.Context, id int64, p store.BilanPatch) (models.Bilan, error) {
	m := s.m
	defer m.mu.Unlock()
	if err := m.lock(ctx); err != nil {
		return models.Bilan{}, err
	}
	b, ok := m.bilans[id]
	if !ok {
		return models.Bilan{}, store.ErrNotFound
	}
	if p.ConsultantID != nil {
		b.ConsultantID = clone(p.ConsultantID)
	}
	if p.Status != nil {
		b.Status = *p.Status
	}
	if p.StartDate != nil {
		b.StartDate = *p.StartDate
	}
	if p.ExpectedEndDate != nil {
		b.ExpectedEndDate = clone(p.ExpectedEndDate)
	}
	if p.ActualEndDate != nil {
		b.ActualEndDate = clone(p.ActualEndDate)
	}
	if p.DurationHours != nil {
		b.DurationHours = *p.DurationHours
	}
	if p.Objectives != nil {
		b.Objectives = *p.Objectives
	}
	if p.Context != nil {
		b.Context = *p.Context
	}
	if p.AssessmentData != nil {
		b.AssessmentData = *p.AssessmentData
	}
	if p.SynthesisData != nil {
		b.SynthesisData = *p.SynthesisData
	}
	if p.ActionPlan != nil {
		b.ActionPlan = *p.ActionPlan
	}
	if p.SatisfactionScore != nil {
		b.SatisfactionScore = clone(p.SatisfactionScore)
	}
	b.UpdatedAt = m.now()
	m.bilans[id] = b
	return b, nil
}

func (s bilans) Delete(ctx context.Context, id int64) error {
	m := s.m
	defer m.mu.Unlock()
	if err := m.lock(ctx); err != nil {
		return err
	}
	if _, ok := m.bilans[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.bilans, id)
	return nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Audit                                                                        |
*─────────────────────────────────────────────────────────────────────────────*/

type audit struct{ m *Store }

func (s audit) Log(ctx context.Context, e models.AuditLog) error {
	m := s.m
	defer m.mu.Unlock()
	if err := m.lock(ctx); err != nil {
		return err
	}
	if e.ID == 0 {
		e.ID = m.next("audit_logs")
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = m.now()
	}
	m.audit = append(m.audit, e)
	return nil
}

func (s audit) Find(ctx context.Context, f store.AuditFilter) ([]models.AuditLog, error) {
	m := s.m
	defer m.mu.Unlock()
	if err := m.lock(ctx); err != nil {
		return nil, err
	}
	out := []models.AuditLog{}
	for _, e := range m.audit {
		if f.OrganizationID != nil && !eq(e.OrganizationID, f.OrganizationID) {
			continue
		}
		if f.UserID != nil && !eq(e.UserID, f.UserID) {
			continue
		}
		if f.EntityType != "" && e.EntityType != f.EntityType {
			continue
		}
		if f.EntityID != nil && !eq(e.EntityID, f.EntityID) {
			continue
		}
		if f.Category != "" && e.Category != f.Category {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

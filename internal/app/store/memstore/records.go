// internal/app/store/memstore/records.go
package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/dalemusser/bilanhub/internal/app/store"
	"github.com/dalemusser/bilanhub/internal/domain/models"
)

// newestFirst orders by created time descending, then id descending.
func newestFirst(ai, aj time.Time, ii, ij int64) bool {
	if !ai.Equal(aj) {
		return ai.After(aj)
	}
	return ii > ij
}

/*─────────────────────────────────────────────────────────────────────────────*
| Sessions                                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

type sessions struct{ m *Store }

func (s sessions) Create(ctx context.Context, x models.Session) (models.Session, error) {
	m := s.m
	defer m.mu.Unlock()
	if err := m.lock(ctx); err != nil {
		return models.Session{}, err
	}
	now := m.now()
	x.ID = m.next("sessions")
	if x.Status == "" {
		x.Status = models.SessionScheduled
	}
	if x.DurationMinutes == 0 {
		x.DurationMinutes = models.DefaultSessionMinutes
	}
	x.ConsultantID = clone(x.ConsultantID)
	x.CreatedAt = now
	x.UpdatedAt = now
	m.sessions[x.ID] = x
	return x, nil
}

func (s sessions) GetByID(ctx context.Context, id int64) (models.Session, error) {
	m := s.m
	defer m.mu.Unlock()
	if err := m.lock(ctx); err != nil {
		return models.Session{}, err
	}
	x, ok := m.sessions[id]
	if !ok {
		return models.Session{}, store.ErrNotFound
	}
	return x, nil
}

func (s sessions) ListByBilan(ctx context.Context, bilanID int64) ([]models.Session, error) {
	m := s.m
	defer m.mu.Unlock()
	if err := m.lock(ctx); err != nil {
		return nil, err
	}
	out := []models.Session{}
	for _, x := range m.sessions {
		if x.BilanID == bilanID {
			out = append(out, x)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ScheduledAt.Equal(out[j].ScheduledAt) {
			return out[i].ScheduledAt.Before(out[j].ScheduledAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s sessions) Update(ctx context.Context, id int64, p store.SessionPatch) (models.Session, error) {
	m := s.m
	defer m.mu.Unlock()
	if err := m.lock(ctx); err != nil {
		return models.Session{}, err
	}
	x, ok := m.sessions[id]
	if !ok {
		return models.Session{}, store.ErrNotFound
	}
	if p.Title != nil {
		x.Title = *p.Title
	}
	if p.Description != nil {
		x.Description = *p.Description
	}
	if p.ScheduledAt != nil {
		x.ScheduledAt = *p.ScheduledAt
	}
	if p.DurationMinutes != nil {
		x.DurationMinutes = *p.DurationMinutes
	}
	if p.Status != nil {
		x.Status = *p.Status
	}
	if p.Notes != nil {
		x.Notes = *p.Notes
	}
	if p.Location != nil {
		x.Location = *p.Location
	}
	x.UpdatedAt = m.now()
	m.sessions[id] = x
	return x, nil
}

func (s sessions) DeleteByBilan(ctx context.Context, bilanID int64) error {
	m := s.m
	defer m.mu.Unlock()
	if err := m.lock(ctx); err != nil {
		return err
	}
	for id, x := range m.sessions {
		if x.BilanID == bilanID {
			delete(m.sessions, id)
		}
	}
	return nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Documents                                                                    |
*─────────────────────────────────────────────────────────────────────────────*/

type documents struct{ m *Store }

func (s documents) Create(ctx context.Context, d models.Document) (models.Document, error) {
	m := s.m
	defer m.mu.Unlock()
	if err := m.lock(ctx); err != nil {
		return models.Document{}, err
	}
	d.ID = m.next("documents")
	d.CreatedAt = m.now()
	m.documents[d.ID] = d
	return d, nil
}

func (s documents) GetByID(ctx context.Context, id int64) (models.Document, error) {
	m := s.m
	defer m.mu.Unlock()
	if err := m.lock(ctx); err != nil {
		return models.Document{}, err
	}
	d, ok := m.documents[id]
	if !ok {
		return models.Document{}, store.ErrNotFound
	}
	return d, nil
}

func (s documents) ListByBilan(ctx context.Context, bilanID int64) ([]models.Document, error) {
	m := s.m
	defer m.mu.Unlock()
	if err := m.lock(ctx); err != nil {
		return nil, err
	}
	out := []models.Document{}
	for _, d := range m.documents {
		if d.BilanID == bilanID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return newestFirst(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID)
	})
	return out, nil
}

func (s documents) Rename(ctx context.Context, id int64, fileName string) (models.Document, error) {
	m := s.m
	defer m.mu.Unlock()
	if err := m.lock(ctx); err != nil {
		return models.Document{}, err
	}
	d, ok := m.documents[id]
	if !ok {
		return models.Document{}, store.ErrNotFound
	}
	d.FileName = fileName
	m.documents[id] = d
	return d, nil
}

func (s documents) Delete(ctx context.Context, id int64) error {
	m := s.m
	defer m.mu.Unlock()
	if err := m.lock(ctx); err != nil {
		return err
	}
	if _, ok := m.documents[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.documents, id)
	return nil
}

func (s documents) DeleteByBilan(ctx context.Context, bilanID int64) error {
	m := s.m
	defer m.mu.Unlock()
	if err := m.lock(ctx); err != nil {
		return err
	}
	for id, d := range m.documents {
		if d.BilanID == bilanID {
			delete(m.documents, id)
		}
	}
	return nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Messages                                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

type messages struct{ m *Store }

func (s messages) Create(ctx context.Context, x models.Message) (models.Message, error) {
	m := s.m
	defer m.mu.Unlock()
	if err := m.lock(ctx); err != nil {
		return models.Message{}, err
	}
	x.ID = m.next("messages")
	x.IsRead = false
	x.ReadAt = nil
	x.CreatedAt = m.now()
	m.messages[x.ID] = x
	return x, nil
}

func (s messages) GetByID(ctx context.Context, id int64) (models.Message, error) {
	m := s.m
	defer m.mu.Unlock()
	if err := m.lock(ctx); err != nil {
		return models.Message{}, err
	}
	x, ok := m.messages[id]
	if !ok {
		return models.Message{}, store.ErrNotFound
	}
	return x, nil
}

func (s messages) ListByBilan(ctx context.Context, bilanID int64) ([]models.Message, error) {
	m := s.m
	defer m.mu.Unlock()
	if err := m.lock(ctx); err != nil {
		return nil, err
	}
	out := []models.Message{}
	for _, x := range m.messages {
		if x.BilanID == bilanID {
			out = append(out, x)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return newestFirst(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID)
	})
	return out, nil
}

func (s messages) MarkRead(ctx context.Context, id int64, at time.Time) (models.Message, error) {
	m := s.m
	defer m.mu.Unlock()
	if err := m.lock(ctx); err != nil {
		return models.Message{}, err
	}
	x, ok := m.messages[id]
	if !ok {
		return models.Message{}, store.ErrNotFound
	}
	x.IsRead = true
	x.ReadAt = &at
	m.messages[id] = x
	return x, nil
}

func (s messages) MarkBilanRead(ctx context.Context, bilanID, receiverID int64, at time.Time) (int64, error) {
	m := s.m
	defer m.mu.Unlock()
	if err := m.lock(ctx); err != nil {
		return 0, err
	}
	var n int64
	for id, x := range m.messages {
		if x.BilanID == bilanID && x.ReceiverID == receiverID && !x.IsRead {
			x.IsRead = true
			x.ReadAt = &at
			m.messages[id] = x
			n++
		}
	}
	return n, nil
}

func (s messages) CountUnread(ctx context.Context, receiverID int64, bilanID *int64) (int64, error) {
	m := s.m
	defer m.mu.Unlock()
	if err := m.lock(ctx); err != nil {
		return 0, err
	}
	var n int64
	for _, x := range m.messages {
		if x.ReceiverID != receiverID || x.IsRead {
			continue
		}
		if bilanID != nil && x.BilanID != *bilanID {
			continue
		}
		n++
	}
	return n, nil
}

func (s messages) Delete(ctx context.Context, id int64) error {
	m := s.m
	defer m.mu.Unlock()
	if err := m.lock(ctx); err != nil {
		return err
	}
	if _, ok := m.messages[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.messages, id)
	return nil
}

func (s messages) DeleteByBilan(ctx context.Context, bilanID int64) error {
	m := s.m
	defer m.mu.Unlock()
	if err := m.lock(ctx); err != nil {
		return err
	}
	for id, x := range m.messages {
		if x.BilanID == bilanID {
			delete(m.messages, id)
		}
	}
	return nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Recommendations                                                              |
*─────────────────────────────────────────────────────────────────────────────*/

type recs struct{ m *Store }

func (s recs) Create(ctx context.Context, r models.Recommendation) (models.Recommendation, error) {
	m := s.m
	defer m.mu.Unlock()
	if err := m.lock(ctx); err != nil {
		return models.Recommendation{}, err
	}
	r.ID = m.next("recommendations")
	if r.Priority == 0 {
		r.Priority = models.PriorityLow
	}
	r.CreatedAt = m.now()
	m.recs[r.ID] = r
	return r, nil
}

func (s recs) ListByBilan(ctx context.Context, bilanID int64) ([]models.Recommendation, error) {
	m := s.m
	defer m.mu.Unlock()
	if err := m.lock(ctx); err != nil {
		return nil, err
	}
	out := []models.Recommendation{}
	for _, r := range m.recs {
		if r.BilanID == bilanID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority > out[j].Priority
		}
		return newestFirst(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID)
	})
	return out, nil
}

func (s recs) DeleteByBilan(ctx context.Context, bilanID int64) error {
	m := s.m
	defer m.mu.Unlock()
	if err := m.lock(ctx); err != nil {
		return err
	}
	for id, r := range m.recs {
		if r.BilanID == bilanID {
			delete(m.recs, id)
		}
	}
	return nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Skills evaluations                                                           |
*─────────────────────────────────────────────────────────────────────────────*/

type skills struct{ m *Store }

func (m *Store) insertSkill(e models.SkillsEvaluation) models.SkillsEvaluation {
	now := m.now()
	e.ID = m.next("skills_evaluations")
	e.ValidatedByConsultant = false
	e.CreatedAt = now
	e.UpdatedAt = now
	m.skills[e.ID] = e
	return e
}

func (s skills) Upsert(ctx context.Context, e models.SkillsEvaluation) (models.SkillsEvaluation, bool, error) {
	m := s.m
	defer m.mu.Unlock()
	if err := m.lock(ctx); err != nil {
		return models.SkillsEvaluation{}, false, err
	}
	for id, x := range m.skills {
		if x.BilanID != e.BilanID || x.SkillName != e.SkillName {
			continue
		}
		x.Category = e.Category
		x.Level = e.Level
		x.Frequency = e.Frequency
		x.Preference = e.Preference
		x.Notes = e.Notes
		x.UpdatedAt = m.now()
		m.skills[id] = x
		return x, true, nil
	}
	return m.insertSkill(e), false, nil
}

func (s skills) GetByID(ctx context.Context, id int64) (models.SkillsEvaluation, error) {
	m := s.m
	defer m.mu.Unlock()
	if err := m.lock(ctx); err != nil {
		return models.SkillsEvaluation{}, err
	}
	e, ok := m.skills[id]
	if !ok {
		return models.SkillsEvaluation{}, store.ErrNotFound
	}
	return e, nil
}

func (s skills) ListByBilan(ctx context.Context, bilanID int64) ([]models.SkillsEvaluation, error) {
	m := s.m
	defer m.mu.Unlock()
	if err := m.lock(ctx); err != nil {
		return nil, err
	}
	out := []models.SkillsEvaluation{}
	for _, e := range m.skills {
		if e.BilanID == bilanID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].SkillName < out[j].SkillName
	})
	return out, nil
}

func (s skills) ReplaceForBilan(ctx context.Context, bilanID int64, evals []models.SkillsEvaluation) ([]models.SkillsEvaluation, error) {
	m := s.m
	defer m.mu.Unlock()
	if err := m.lock(ctx); err != nil {
		return nil, err
	}
	for id, e := range m.skills {
		if e.BilanID == bilanID {
			delete(m.skills, id)
		}
	}
	out := make([]models.SkillsEvaluation, 0, len(evals))
	seen := map[string]bool{}
	for _, e := range evals {
		if seen[e.SkillName] {
			return out, store.ErrDuplicate
		}
		seen[e.SkillName] = true
		e.BilanID = bilanID
		out = append(out, m.insertSkill(e))
	}
	return out, nil
}

func (s skills) Update(ctx context.Context, id int64, p store.SkillPatch) (models.SkillsEvaluation, error) {
	m := s.m
	defer m.mu.Unlock()
	if err := m.lock(ctx); err != nil {
		return models.SkillsEvaluation{}, err
	}
	e, ok := m.skills[id]
	if !ok {
		return models.SkillsEvaluation{}, store.ErrNotFound
	}
	if p.ValidatedByConsultant != nil {
		e.ValidatedByConsultant = *p.ValidatedByConsultant
	}
	if p.Notes != nil {
		e.Notes = *p.Notes
	}
	e.UpdatedAt = m.now()
	m.skills[id] = e
	return e, nil
}

func (s skills) Delete(ctx context.Context, id int64) error {
	m := s.m
	defer m.mu.Unlock()
	if err := m.lock(ctx); err != nil {
		return err
	}
	if _, ok := m.skills[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.skills, id)
	return nil
}

func (s skills) DeleteByBilan(ctx context.Context, bilanID int64) error {
	m := s.m
	defer m.mu.Unlock()
	if err := m.lock(ctx); err != nil {
		return err
	}
	for id, e := range m.skills {
		if e.BilanID == bilanID {
			delete(m.skills, id)
		}
	}
	return nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Surveys                                                                      |
*─────────────────────────────────────────────────────────────────────────────*/

type surveys struct{ m *Store }

func (s surveys) CreateSurvey(ctx context.Context, sv models.SatisfactionSurvey) (models.SatisfactionSurvey, error) {
	m := s.m
	defer m.mu.Unlock()
	if err := m.lock(ctx); err != nil {
		return models.SatisfactionSurvey{}, err
	}
	sv.ID = m.next("satisfaction_surveys")
	sv.CreatedAt = m.now()
	m.surveys[sv.ID] = sv
	return sv, nil
}

func (s surveys) GetSurvey(ctx context.Context, id int64) (models.SatisfactionSurvey, error) {
	m := s.m
	defer m.mu.Unlock()
	if err := m.lock(ctx); err != nil {
		return models.SatisfactionSurvey{}, err
	}
	sv, ok := m.surveys[id]
	if !ok {
		return models.SatisfactionSurvey{}, store.ErrNotFound
	}
	return sv, nil
}

func (s surveys) ListSurveysByBilan(ctx context.Context, bilanID int64) ([]models.SatisfactionSurvey, error) {
	m := s.m
	defer m.mu.Unlock()
	if err := m.lock(ctx); err != nil {
		return nil, err
	}
	out := []models.SatisfactionSurvey{}
	for _, sv := range m.surveys {
		if sv.BilanID == bilanID {
			out = append(out, sv)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return newestFirst(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID)
	})
	return out, nil
}

func (s surveys) CreateResponse(ctx context.Context, r models.SurveyResponse) (models.SurveyResponse, error) {
	m := s.m
	defer m.mu.Unlock()
	if err := m.lock(ctx); err != nil {
		return models.SurveyResponse{}, err
	}
	r.ID = m.next("survey_responses")
	r.CreatedAt = m.now()
	m.responses[r.ID] = r
	return r, nil
}

func (m *Store) responsesWhere(keep func(models.SurveyResponse) bool) []models.SurveyResponse {
	out := []models.SurveyResponse{}
	for _, r := range m.responses {
		if keep(r) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return newestFirst(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID)
	})
	return out
}

func (s surveys) ListResponses(ctx context.Context, surveyID int64) ([]models.SurveyResponse, error) {
	m := s.m
	defer m.mu.Unlock()
	if err := m.lock(ctx); err != nil {
		return nil, err
	}
	return m.responsesWhere(func(r models.SurveyResponse) bool { return r.SurveyID == surveyID }), nil
}

func (s surveys) ListResponsesByBilans(ctx context.Context, bilanIDs []int64) ([]models.SurveyResponse, error) {
	m := s.m
	defer m.mu.Unlock()
	if err := m.lock(ctx); err != nil {
		return nil, err
	}
	want := make(map[int64]bool, len(bilanIDs))
	for _, id := range bilanIDs {
		want[id] = true
	}
	return m.responsesWhere(func(r models.SurveyResponse) bool { return want[r.BilanID] }), nil
}

func (s surveys) DeleteByBilan(ctx context.Context, bilanID int64) error {
	m := s.m
	defer m.mu.Unlock()
	if err := m.lock(ctx); err != nil {
		return err
	}
	for id, r := range m.responses {
		if r.BilanID == bilanID {
			delete(m.responses, id)
		}
	}
	for id, sv := range m.surveys {
		if sv.BilanID == bilanID {
			delete(m.surveys, id)
		}
	}
	return nil
}

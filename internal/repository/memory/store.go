// Package memory implements the repository interfaces against an
// in-process map store. It backs demo mode, where the server runs with no
// Postgres or Redis and serves seeded sample data.
package memory

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/unitime-app/unitime-api/internal/models"
)

// Demo credentials seeded on startup.
const (
	DemoEmail    = "demo@unitime.app"
	DemoPassword = "demo123"
)

// Store is a mutex-guarded map store. Lookups that miss return
// sql.ErrNoRows so services treat both backends identically.
type Store struct {
	mu       sync.RWMutex
	users    map[string]models.User
	tokens   map[string]models.RefreshToken
	subjects map[string]models.Subject
	events   map[string]models.ScheduleEvent
}

// NewStore builds an empty store.
func NewStore() *Store {
	return &Store{
		users:    make(map[string]models.User),
		tokens:   make(map[string]models.RefreshToken),
		subjects: make(map[string]models.Subject),
		events:   make(map[string]models.ScheduleEvent),
	}
}

// NewSeededStore builds a store preloaded with the demo account, two
// sample subjects and a class block on the current day.
func NewSeededStore() (*Store, error) {
	s := NewStore()

	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := models.User{
		ID:           uuid.NewString(),
		Email:        DemoEmail,
		PasswordHash: string(hash),
		Name:         "Sinh Viên Demo",
		Active:       true,
		CreatedAt:    now.UTC(),
		UpdatedAt:    now.UTC(),
	}
	s.users[user.ID] = user

	room301 := "Phòng 301"
	lab2 := "Phòng Lab 2"
	math := models.Subject{
		ID: uuid.NewString(), UserID: user.ID,
		Name: "Toán Cao Cấp", Code: "MAT301", Color: "#3b82f6", Location: &room301,
		CreatedAt: now.UTC(), UpdatedAt: now.UTC(),
	}
	cs := models.Subject{
		ID: uuid.NewString(), UserID: user.ID,
		Name: "Tin Học Cơ Sở", Code: "CS101", Color: "#10b981", Location: &lab2,
		CreatedAt: now.UTC().Add(time.Second), UpdatedAt: now.UTC().Add(time.Second),
	}
	s.subjects[math.ID] = math
	s.subjects[cs.ID] = cs

	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 9, 0, 0, 0, now.Location())
	lecture := models.ScheduleEvent{
		ID:          uuid.NewString(),
		UserID:      user.ID,
		SubjectID:   &math.ID,
		Title:       "Bài giảng Demo",
		StartTime:   dayStart,
		EndTime:     dayStart.Add(2 * time.Hour),
		Type:        models.EventTypeClass,
		Priority:    models.PriorityMedium,
		IsCompleted: false,
		CreatedAt:   now.UTC(),
		UpdatedAt:   now.UTC(),
	}
	s.events[lecture.ID] = lecture

	return s, nil
}

// Users exposes the store under the user repository contract.
func (s *Store) Users() *UserStore { return &UserStore{s: s} }

// Subjects exposes the store under the subject repository contract.
func (s *Store) Subjects() *SubjectStore { return &SubjectStore{s: s} }

// Events exposes the store under the event repository contract.
func (s *Store) Events() *EventStore { return &EventStore{s: s} }

// UserStore adapts Store to the account repository interface.
type UserStore struct{ s *Store }

func (u *UserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return u.s.FindByEmail(ctx, email)
}

func (u *UserStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	return u.s.FindByID(ctx, id)
}

func (u *UserStore) Create(ctx context.Context, user *models.User) error {
	return u.s.Create(ctx, user)
}

func (u *UserStore) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	return u.s.UpdateLastLogin(ctx, id, ts)
}

func (u *UserStore) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	return u.s.CreateRefreshToken(ctx, token)
}

func (u *UserStore) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	return u.s.FindRefreshToken(ctx, token)
}

func (u *UserStore) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	return u.s.RevokeRefreshToken(ctx, id, revokedAt)
}

// SubjectStore adapts Store to the subject repository interface.
type SubjectStore struct{ s *Store }

func (r *SubjectStore) ListByUser(ctx context.Context, userID string) ([]models.Subject, error) {
	return r.s.ListSubjectsByUser(ctx, userID)
}

func (r *SubjectStore) FindByID(ctx context.Context, userID, id string) (*models.Subject, error) {
	return r.s.FindSubjectByID(ctx, userID, id)
}

func (r *SubjectStore) Create(ctx context.Context, subject *models.Subject) error {
	return r.s.CreateSubject(ctx, subject)
}

func (r *SubjectStore) Update(ctx context.Context, subject *models.Subject) error {
	return r.s.UpdateSubject(ctx, subject)
}

func (r *SubjectStore) Delete(ctx context.Context, userID, id string) error {
	return r.s.DeleteSubject(ctx, userID, id)
}

// EventStore adapts Store to the event repository interface.
type EventStore struct{ s *Store }

func (r *EventStore) ListByUser(ctx context.Context, userID string, filter models.EventFilter) ([]models.ScheduleEvent, error) {
	return r.s.ListEventsByUser(ctx, userID, filter)
}

func (r *EventStore) FindByID(ctx context.Context, userID, id string) (*models.ScheduleEvent, error) {
	return r.s.FindEventByID(ctx, userID, id)
}

func (r *EventStore) Create(ctx context.Context, event *models.ScheduleEvent) error {
	return r.s.CreateEvent(ctx, event)
}

func (r *EventStore) Patch(ctx context.Context, userID, id string, patch models.EventPatch) error {
	return r.s.PatchEvent(ctx, userID, id, patch)
}

func (r *EventStore) SetCompletion(ctx context.Context, userID, id string, completed bool) error {
	return r.s.SetEventCompletion(ctx, userID, id, completed)
}

func (r *EventStore) Delete(ctx context.Context, userID, id string) error {
	return r.s.DeleteEvent(ctx, userID, id)
}

// --- users ---

func (s *Store) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			user := u
			return &user, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *Store) FindByID(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.users[id]; ok {
		user := u
		return &user, nil
	}
	return nil, sql.ErrNoRows
}

func (s *Store) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	s.users[user.ID] = *user
	return nil
}

func (s *Store) UpdateLastLogin(_ context.Context, id string, ts time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return sql.ErrNoRows
	}
	u.LastLogin = &ts
	s.users[id] = u
	return nil
}

func (s *Store) CreateRefreshToken(_ context.Context, token *models.RefreshToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token.ID] = *token
	return nil
}

func (s *Store) FindRefreshToken(_ context.Context, token string) (*models.RefreshToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.tokens {
		if t.Token == token {
			found := t
			return &found, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *Store) RevokeRefreshToken(_ context.Context, id string, revokedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tokens[id]
	if !ok {
		return sql.ErrNoRows
	}
	t.Revoked = true
	t.RevokedAt = &revokedAt
	s.tokens[id] = t
	return nil
}

// --- subjects ---

func (s *Store) ListSubjectsByUser(_ context.Context, userID string) ([]models.Subject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var subjects []models.Subject
	for _, sub := range s.subjects {
		if sub.UserID == userID {
			subjects = append(subjects, sub)
		}
	}
	sort.SliceStable(subjects, func(i, j int) bool {
		return subjects[i].CreatedAt.After(subjects[j].CreatedAt)
	})
	return subjects, nil
}

func (s *Store) FindSubjectByID(_ context.Context, userID, id string) (*models.Subject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if sub, ok := s.subjects[id]; ok && sub.UserID == userID {
		subject := sub
		return &subject, nil
	}
	return nil, sql.ErrNoRows
}

func (s *Store) CreateSubject(_ context.Context, subject *models.Subject) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if subject.ID == "" {
		subject.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if subject.CreatedAt.IsZero() {
		subject.CreatedAt = now
	}
	subject.UpdatedAt = now
	s.subjects[subject.ID] = *subject
	return nil
}

func (s *Store) UpdateSubject(_ context.Context, subject *models.Subject) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.subjects[subject.ID]
	if !ok || existing.UserID != subject.UserID {
		return sql.ErrNoRows
	}
	subject.UpdatedAt = time.Now().UTC()
	s.subjects[subject.ID] = *subject
	return nil
}

func (s *Store) DeleteSubject(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sub, ok := s.subjects[id]; ok && sub.UserID == userID {
		delete(s.subjects, id)
	}
	// Events keep their subject_id; dangling references are tolerated.
	return nil
}

// --- events ---

func (s *Store) ListEventsByUser(_ context.Context, userID string, filter models.EventFilter) ([]models.ScheduleEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var events []models.ScheduleEvent
	for _, ev := range s.events {
		if ev.UserID != userID {
			continue
		}
		if filter.Start != nil && ev.StartTime.Before(*filter.Start) {
			continue
		}
		if filter.End != nil && ev.EndTime.After(*filter.End) {
			continue
		}
		events = append(events, ev)
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].StartTime.Before(events[j].StartTime)
	})
	return events, nil
}

func (s *Store) FindEventByID(_ context.Context, userID, id string) (*models.ScheduleEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if ev, ok := s.events[id]; ok && ev.UserID == userID {
		event := ev
		return &event, nil
	}
	return nil, sql.ErrNoRows
}

func (s *Store) CreateEvent(_ context.Context, event *models.ScheduleEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if event.CreatedAt.IsZero() {
		event.CreatedAt = now
	}
	event.UpdatedAt = now
	s.events[event.ID] = *event
	return nil
}

func (s *Store) PatchEvent(_ context.Context, userID, id string, patch models.EventPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev, ok := s.events[id]
	if !ok || ev.UserID != userID {
		return sql.ErrNoRows
	}
	if patch.SubjectID != nil {
		if *patch.SubjectID == "" {
			ev.SubjectID = nil
		} else {
			ev.SubjectID = patch.SubjectID
		}
	}
	if patch.Title != nil {
		ev.Title = *patch.Title
	}
	if patch.Description != nil {
		ev.Description = *patch.Description
	}
	if patch.StartTime != nil {
		ev.StartTime = *patch.StartTime
	}
	if patch.EndTime != nil {
		ev.EndTime = *patch.EndTime
	}
	if patch.Type != nil {
		ev.Type = *patch.Type
	}
	if patch.Priority != nil {
		ev.Priority = *patch.Priority
	}
	if patch.IsCompleted != nil {
		ev.IsCompleted = *patch.IsCompleted
	}
	ev.UpdatedAt = time.Now().UTC()
	s.events[id] = ev
	return nil
}

func (s *Store) SetEventCompletion(_ context.Context, userID, id string, completed bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev, ok := s.events[id]
	if !ok || ev.UserID != userID {
		return sql.ErrNoRows
	}
	ev.IsCompleted = completed
	ev.UpdatedAt = time.Now().UTC()
	s.events[id] = ev
	return nil
}

func (s *Store) DeleteEvent(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ev, ok := s.events[id]; ok && ev.UserID == userID {
		delete(s.events, id)
	}
	return nil
}

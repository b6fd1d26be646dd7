package services

import (
	"context"
	"errors"
	"io"
	"maps"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/yoockh/recruitportal/internal/access"
	"github.com/yoockh/recruitportal/internal/identity"
	"github.com/yoockh/recruitportal/internal/models"
	"github.com/yoockh/recruitportal/internal/pipeline"
	pgrepo "github.com/yoockh/recruitportal/internal/repositories/postgres"
	"github.com/yoockh/recruitportal/internal/utils"
)

var (
	master      = access.Principal{UserID: "u-master", FullName: "Mia Master", Roles: []access.Role{access.RoleMaster}}
	approver    = access.Principal{UserID: "u-approver", Roles: []access.Role{access.RoleApprover}}
	hr          = access.Principal{UserID: "u-hr", Roles: []access.Role{access.RoleHR}}
	interviewer = access.Principal{UserID: "u-interviewer", Roles: []access.Role{access.RoleInterviewer}}

	testNow = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
)

func fixedNow() time.Time { return testNow }

// fakeDB is the in-memory state behind fakeStore.
type fakeDB struct {
	mu         sync.Mutex
	candidates map[string]models.Candidate
	slots      map[string]models.AssessmentSlot
	interviews map[string]models.Interview
	notes      []models.Notification
	outbox     map[string]models.EmailOutbox
	users      map[string]models.User
	userRoles  map[string][]string
	roles      []string

	failNotificationInsert error
}

type snapshot struct {
	candidates map[string]models.Candidate
	slots      map[string]models.AssessmentSlot
	interviews map[string]models.Interview
	notes      []models.Notification
	outbox     map[string]models.EmailOutbox
	users      map[string]models.User
	userRoles  map[string][]string
}

func (db *fakeDB) snapshot() snapshot {
	db.mu.Lock()
	defer db.mu.Unlock()
	return snapshot{
		candidates: maps.Clone(db.candidates),
		slots:      maps.Clone(db.slots),
		interviews: maps.Clone(db.interviews),
		notes:      slices.Clone(db.notes),
		outbox:     maps.Clone(db.outbox),
		users:      maps.Clone(db.users),
		userRoles:  maps.Clone(db.userRoles),
	}
}

func (db *fakeDB) restore(s snapshot) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.candidates = s.candidates
	db.slots = s.slots
	db.interviews = s.interviews
	db.notes = s.notes
	db.outbox = s.outbox
	db.users = s.users
	db.userRoles = s.userRoles
}

// fakeStore serializes transactions and rolls back by restoring a snapshot.
type fakeStore struct {
	db   *fakeDB
	txMu *sync.Mutex
	inTx bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		db: &fakeDB{
			candidates: map[string]models.Candidate{},
			slots:      map[string]models.AssessmentSlot{},
			interviews: map[string]models.Interview{},
			outbox:     map[string]models.EmailOutbox{},
			users:      map[string]models.User{},
			userRoles:  map[string][]string{},
		},
		txMu: &sync.Mutex{},
	}
}

func (s *fakeStore) Candidates() pgrepo.CandidateRepository       { return fakeCandidates{s.db} }
func (s *fakeStore) Slots() pgrepo.SlotRepository                 { return fakeSlots{s.db} }
func (s *fakeStore) Interviews() pgrepo.InterviewRepository       { return fakeInterviews{s.db} }
func (s *fakeStore) Notifications() pgrepo.NotificationRepository { return fakeNotifications{s.db} }
func (s *fakeStore) Outbox() pgrepo.OutboxRepository              { return fakeOutboxRepo{s.db} }
func (s *fakeStore) Users() pgrepo.UserRepository                 { return fakeUsers{s.db} }

func (s *fakeStore) WithinTx(ctx context.Context, fn func(tx pgrepo.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	before := s.db.snapshot()
	err := fn(&fakeStore{db: s.db, txMu: s.txMu, inTx: true})
	if err != nil {
		s.db.restore(before)
	}
	return err
}

// interleavedStore runs transactions without isolation and holds each
// candidate read until every expected reader has read, so concurrent
// transitions all see the same starting status before any of them writes.
// It never rolls back.
type interleavedStore struct {
	*fakeStore
	gate *readGate
}

func (s *interleavedStore) Candidates() pgrepo.CandidateRepository {
	return gatedCandidates{fakeCandidates{s.db}, s.gate}
}

func (s *interleavedStore) WithinTx(_ context.Context, fn func(tx pgrepo.Store) error) error {
	return fn(s)
}

type gatedCandidates struct {
	fakeCandidates
	gate *readGate
}

func (r gatedCandidates) GetByID(ctx context.Context, id string) (*models.Candidate, error) {
	c, err := r.fakeCandidates.GetByID(ctx, id)
	r.gate.arrive()
	return c, err
}

type readGate struct {
	mu      sync.Mutex
	want    int
	arrived int
	open    chan struct{}
}

func newReadGate(readers int) *readGate {
	return &readGate{want: readers, open: make(chan struct{})}
}

func (g *readGate) arrive() {
	g.mu.Lock()
	g.arrived++
	if g.arrived == g.want {
		close(g.open)
	}
	g.mu.Unlock()
	<-g.open
}

// seed helpers

func (s *fakeStore) addCandidate(c models.Candidate) models.Candidate {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Status == "" {
		c.Status = pipeline.StatusApplied
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = testNow
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	s.db.candidates[c.ID] = c
	return c
}

func (s *fakeStore) addSlot(start time.Time) models.AssessmentSlot {
	slot := models.AssessmentSlot{ID: uuid.NewString(), StartTime: start, EndTime: start.Add(time.Hour), CreatedAt: testNow}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	s.db.slots[slot.ID] = slot
	return slot
}

func (s *fakeStore) candidate(id string) (models.Candidate, bool) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	c, ok := s.db.candidates[id]
	return c, ok
}

func (s *fakeStore) slot(id string) models.AssessmentSlot {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return s.db.slots[id]
}

func (s *fakeStore) outboxRows() []models.EmailOutbox {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	out := make([]models.EmailOutbox, 0, len(s.db.outbox))
	for _, r := range s.db.outbox {
		out = append(out, r)
	}
	return out
}

func (s *fakeStore) interviewsFor(candidateID string) []models.Interview {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []models.Interview
	for _, iv := range s.db.interviews {
		if iv.CandidateID == candidateID {
			out = append(out, iv)
		}
	}
	return out
}

func (s *fakeStore) notifications() []models.Notification {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return slices.Clone(s.db.notes)
}

type fakeCandidates struct{ db *fakeDB }

func (r fakeCandidates) Insert(_ context.Context, c *models.Candidate) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.candidates[c.ID]; ok {
		return utils.ErrConflict
	}
	r.db.candidates[c.ID] = *c
	return nil
}

func (r fakeCandidates) GetByID(_ context.Context, id string) (*models.Candidate, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c, ok := r.db.candidates[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	return &c, nil
}

func (r fakeCandidates) List(_ context.Context, f models.CandidateFilter) ([]models.Candidate, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	q := strings.ToLower(f.Query)
	var out []models.Candidate
	for _, c := range r.db.candidates {
		if f.Status != "" && c.Status != f.Status {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(c.Name+" "+c.Email+" "+c.Position), q) {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r fakeCandidates) Recent(ctx context.Context, n int) ([]models.Candidate, error) {
	return r.List(ctx, models.CandidateFilter{Limit: n})
}

func (r fakeCandidates) Count(_ context.Context, status pipeline.Status) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var n int64
	for _, c := range r.db.candidates {
		if status == "" || c.Status == status {
			n++
		}
	}
	return n, nil
}

func (r fakeCandidates) UpdateStatus(_ context.Context, id string, from, to pipeline.Status) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c, ok := r.db.candidates[id]
	if !ok {
		return utils.ErrNotFound
	}
	if c.Status != from {
		return utils.ErrConflict
	}
	c.Status = to
	r.db.candidates[id] = c
	return nil
}

func (r fakeCandidates) Delete(_ context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.candidates[id]; !ok {
		return utils.ErrNotFound
	}
	delete(r.db.candidates, id)
	return nil
}

type fakeSlots struct{ db *fakeDB }

func (r fakeSlots) Insert(_ context.Context, s *models.AssessmentSlot) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.slots[s.ID] = *s
	return nil
}

func (r fakeSlots) GetByID(_ context.Context, id string) (*models.AssessmentSlot, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	s, ok := r.db.slots[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	return &s, nil
}

func (r fakeSlots) filter(keep func(models.AssessmentSlot) bool) []models.AssessmentSlot {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := []models.AssessmentSlot{}
	for _, s := range r.db.slots {
		if keep(s) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out
}

func (r fakeSlots) ListAll(context.Context) ([]models.AssessmentSlot, error) {
	return r.filter(func(models.AssessmentSlot) bool { return true }), nil
}

func (r fakeSlots) ListAvailable(_ context.Context, from time.Time) ([]models.AssessmentSlot, error) {
	return r.filter(func(s models.AssessmentSlot) bool { return !s.IsLocked && !s.StartTime.Before(from) }), nil
}

func (r fakeSlots) Upcoming(_ context.Context, from time.Time, n int) ([]models.AssessmentSlot, error) {
	out := r.filter(func(s models.AssessmentSlot) bool { return s.IsLocked && !s.StartTime.Before(from) })
	if len(out) > n {
		out = out[:n]
	}
	return out, nil
}

func (r fakeSlots) ListByCandidate(_ context.Context, candidateID string) ([]models.AssessmentSlot, error) {
	return r.filter(func(s models.AssessmentSlot) bool { return s.CandidateID != nil && *s.CandidateID == candidateID }), nil
}

func (r fakeSlots) Book(_ context.Context, slotID, candidateID string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	s, ok := r.db.slots[slotID]
	if !ok {
		return utils.ErrNotFound
	}
	if s.IsLocked {
		return utils.ErrConflict
	}
	id := candidateID
	s.IsLocked = true
	s.CandidateID = &id
	r.db.slots[slotID] = s
	return nil
}

func (r fakeSlots) Release(_ context.Context, candidateID, keepSlotID string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for id, s := range r.db.slots {
		if id == keepSlotID || s.CandidateID == nil || *s.CandidateID != candidateID {
			continue
		}
		s.IsLocked = false
		s.CandidateID = nil
		r.db.slots[id] = s
	}
	return nil
}

func (r fakeSlots) DeleteByCandidate(_ context.Context, candidateID string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for id, s := range r.db.slots {
		if s.CandidateID != nil && *s.CandidateID == candidateID {
			delete(r.db.slots, id)
		}
	}
	return nil
}

func (r fakeSlots) DeleteUnlocked(_ context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	s, ok := r.db.slots[id]
	if !ok {
		return utils.ErrNotFound
	}
	if s.IsLocked {
		return utils.ErrConflict
	}
	delete(r.db.slots, id)
	return nil
}

type fakeInterviews struct{ db *fakeDB }

func (r fakeInterviews) Insert(_ context.Context, iv *models.Interview) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.interviews[iv.ID] = *iv
	return nil
}

func (r fakeInterviews) GetByID(_ context.Context, id string) (*models.Interview, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	iv, ok := r.db.interviews[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	if c, ok := r.db.candidates[iv.CandidateID]; ok {
		iv.Candidate = &c
	}
	return &iv, nil
}

func (r fakeInterviews) List(context.Context) ([]models.Interview, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := []models.Interview{}
	for _, iv := range r.db.interviews {
		out = append(out, iv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledAt.Before(out[j].ScheduledAt) })
	return out, nil
}

func (r fakeInterviews) ListByCandidate(ctx context.Context, candidateID string) ([]models.Interview, error) {
	all, _ := r.List(ctx)
	out := []models.Interview{}
	for _, iv := range all {
		if iv.CandidateID == candidateID {
			out = append(out, iv)
		}
	}
	return out, nil
}

func (r fakeInterviews) CountPending(context.Context) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var n int64
	for _, iv := range r.db.interviews {
		if iv.Decision == nil {
			n++
		}
	}
	return n, nil
}

func (r fakeInterviews) SetDecision(_ context.Context, id string, d pipeline.Decision, feedback, actorID string, at time.Time, overwrite bool) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	iv, ok := r.db.interviews[id]
	if !ok {
		return utils.ErrNotFound
	}
	if !overwrite && iv.Decision != nil {
		return utils.ErrConflict
	}
	iv.Decision = &d
	iv.Feedback = &feedback
	iv.DecidedBy = &actorID
	iv.DecidedAt = &at
	r.db.interviews[id] = iv
	return nil
}

func (r fakeInterviews) DeleteByCandidate(_ context.Context, candidateID string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for id, iv := range r.db.interviews {
		if iv.CandidateID == candidateID {
			delete(r.db.interviews, id)
		}
	}
	return nil
}

type fakeNotifications struct{ db *fakeDB }

func (r fakeNotifications) Insert(_ context.Context, n *models.Notification) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.failNotificationInsert != nil {
		return r.db.failNotificationInsert
	}
	r.db.notes = append(r.db.notes, *n)
	return nil
}

func (r fakeNotifications) Latest(_ context.Context, limit int) ([]models.Notification, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := slices.Clone(r.db.notes)
	slices.Reverse(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r fakeNotifications) CountUnread(context.Context) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var n int64
	for _, note := range r.db.notes {
		if !note.IsRead {
			n++
		}
	}
	return n, nil
}

func (r fakeNotifications) MarkAllRead(context.Context) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var n int64
	for i := range r.db.notes {
		if !r.db.notes[i].IsRead {
			r.db.notes[i].IsRead = true
			n++
		}
	}
	return n, nil
}

type fakeOutboxRepo struct{ db *fakeDB }

func (r fakeOutboxRepo) Insert(_ context.Context, m *models.EmailOutbox) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.outbox[m.ID] = *m
	return nil
}

func (r fakeOutboxRepo) GetByID(_ context.Context, id string) (*models.EmailOutbox, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	m, ok := r.db.outbox[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	return &m, nil
}

func (r fakeOutboxRepo) List(_ context.Context, status models.OutboxStatus, limit int) ([]models.EmailOutbox, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := []models.EmailOutbox{}
	for _, m := range r.db.outbox {
		if status == "" || m.Status == status {
			out = append(out, m)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r fakeOutboxRepo) Due(context.Context, time.Time, int) ([]models.EmailOutbox, error) {
	return nil, nil
}

func (r fakeOutboxRepo) Claim(context.Context, string, time.Time, time.Time) error { return nil }

func (r fakeOutboxRepo) MarkSent(_ context.Context, id string, at time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	m, ok := r.db.outbox[id]
	if !ok {
		return utils.ErrNotFound
	}
	m.Status = models.OutboxSent
	m.SentAt = &at
	r.db.outbox[id] = m
	return nil
}

func (r fakeOutboxRepo) MarkFailed(_ context.Context, id string, lastErr string, next time.Time, dead bool) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	m, ok := r.db.outbox[id]
	if !ok {
		return utils.ErrNotFound
	}
	m.Attempts++
	m.LastError = lastErr
	m.NextAttemptAt = next
	if dead {
		m.Status = models.OutboxDead
	}
	r.db.outbox[id] = m
	return nil
}

func (r fakeOutboxRepo) Requeue(_ context.Context, id string, at time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	m, ok := r.db.outbox[id]
	if !ok {
		return utils.ErrNotFound
	}
	m.Status = models.OutboxPending
	m.Attempts = 0
	m.NextAttemptAt = at
	r.db.outbox[id] = m
	return nil
}

func (r fakeOutboxRepo) DiscardPending(_ context.Context, candidateID, reason string) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var n int64
	for id, m := range r.db.outbox {
		if m.CandidateID != candidateID || m.Status != models.OutboxPending {
			continue
		}
		m.Status = models.OutboxDead
		m.LastError = reason
		r.db.outbox[id] = m
		n++
	}
	return n, nil
}

type fakeUsers struct{ db *fakeDB }

func (r fakeUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	u, ok := r.db.users[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	return &u, nil
}

func (r fakeUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, u := range r.db.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, utils.ErrNotFound
}

func (r fakeUsers) Upsert(_ context.Context, u *models.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.users[u.ID] = *u
	return nil
}

func (r fakeUsers) UpdateFullName(_ context.Context, id, fullName string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	u, ok := r.db.users[id]
	if !ok {
		return utils.ErrNotFound
	}
	u.FullName = fullName
	r.db.users[id] = u
	return nil
}

func (r fakeUsers) Delete(_ context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.users[id]; !ok {
		return utils.ErrNotFound
	}
	delete(r.db.users, id)
	delete(r.db.userRoles, id)
	return nil
}

func (r fakeUsers) RoleNames(_ context.Context, userID string) ([]string, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return slices.Clone(r.db.userRoles[userID]), nil
}

func (r fakeUsers) SetRoles(_ context.Context, userID string, roleNames []string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.userRoles[userID] = slices.Clone(roleNames)
	return nil
}

func (r fakeUsers) ListWithRoles(context.Context) ([]models.UserWithRoles, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := []models.UserWithRoles{}
	for _, u := range r.db.users {
		out = append(out, models.UserWithRoles{ID: u.ID, Email: u.Email, FullName: u.FullName, CreatedAt: u.CreatedAt, Roles: r.db.userRoles[u.ID]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (r fakeUsers) ListRoles(context.Context) ([]models.Role, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make([]models.Role, 0, len(r.db.roles))
	for i, n := range r.db.roles {
		out = append(out, models.Role{ID: i + 1, Name: n})
	}
	return out, nil
}

func (r fakeUsers) EnsureRoles(_ context.Context, names []string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, n := range names {
		if !slices.Contains(r.db.roles, n) {
			r.db.roles = append(r.db.roles, n)
		}
	}
	return nil
}

// side-effect fakes

type fakePublisher struct {
	mu  sync.Mutex
	ids []string
	err error
}

func (p *fakePublisher) Publish(_ context.Context, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.ids = append(p.ids, id)
	return nil
}

func (p *fakePublisher) published() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.ids)
}

type fakeFeed struct {
	mu    sync.Mutex
	notes []models.Notification
	err   error
}

func (f *fakeFeed) Publish(_ context.Context, n models.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.notes = append(f.notes, n)
	return nil
}

func (f *fakeFeed) titles() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.notes))
	for _, n := range f.notes {
		out = append(out, n.Title)
	}
	return out
}

type fakeEvents struct {
	mu        sync.Mutex
	events    []models.PipelineEvent
	deleted   []string
	appendErr error
}

func (e *fakeEvents) Append(_ context.Context, ev *models.PipelineEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.appendErr != nil {
		return e.appendErr
	}
	e.events = append(e.events, *ev)
	return nil
}

func (e *fakeEvents) ListByCandidate(_ context.Context, candidateID string, limit int64) ([]models.PipelineEvent, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := []models.PipelineEvent{}
	for _, ev := range e.events {
		if ev.CandidateID == candidateID && int64(len(out)) < limit {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (e *fakeEvents) DeleteByCandidate(_ context.Context, candidateID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.deleted = append(e.deleted, candidateID)
	kept := e.events[:0]
	for _, ev := range e.events {
		if ev.CandidateID != candidateID {
			kept = append(kept, ev)
		}
	}
	e.events = kept
	return nil
}

type fakeUploader struct {
	mu      sync.Mutex
	objects map[string][]byte
	err     error
}

func (u *fakeUploader) Upload(_ context.Context, objectName, _ string, r io.Reader) (string, error) {
	if u.err != nil {
		return "", u.err
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.objects == nil {
		u.objects = map[string][]byte{}
	}
	u.objects[objectName] = b
	return "gs://resumes/" + objectName, nil
}

func (u *fakeUploader) SignedGetURL(_ context.Context, objectName string, ttl time.Duration) (string, error) {
	return "https://storage.example/" + objectName + "?ttl=" + ttl.String(), nil
}

// fakeIdentity is an in-memory account system keyed by email.
type fakeIdentity struct {
	mu        sync.Mutex
	accounts  map[string]identity.User
	passwords map[string]string
	deleted   []string
	createErr error
}

func newFakeIdentity() *fakeIdentity {
	return &fakeIdentity{accounts: map[string]identity.User{}, passwords: map[string]string{}}
}

func (f *fakeIdentity) SignIn(_ context.Context, email, password string) (*identity.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.accounts {
		if u.Email == email && f.passwords[u.ID] == password {
			return &identity.Session{AccessToken: "tok-" + u.ID, TokenType: "bearer", ExpiresAt: testNow.Add(time.Hour), User: u}, nil
		}
	}
	return nil, utils.E(utils.CodeUnauthorized, "fakeIdentity.SignIn", "invalid login credentials", nil)
}

func (f *fakeIdentity) SignOut(context.Context, string) error { return nil }

func (f *fakeIdentity) GetUser(context.Context, string) (*identity.User, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeIdentity) CreateUser(_ context.Context, email, password, fullName string) (*identity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	for _, u := range f.accounts {
		if u.Email == email {
			return nil, utils.E(utils.CodeConflict, "fakeIdentity.CreateUser", "email already registered", nil)
		}
	}
	u := identity.User{ID: uuid.NewString(), Email: email, FullName: fullName}
	f.accounts[u.ID] = u
	f.passwords[u.ID] = password
	return &u, nil
}

func (f *fakeIdentity) DeleteUser(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.accounts[userID]; !ok {
		return utils.E(utils.CodeNotFound, "fakeIdentity.DeleteUser", "user not found", nil)
	}
	delete(f.accounts, userID)
	f.deleted = append(f.deleted, userID)
	return nil
}

func (f *fakeIdentity) UpdateUser(_ context.Context, userID string, upd identity.UserUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.accounts[userID]
	if !ok {
		return utils.E(utils.CodeNotFound, "fakeIdentity.UpdateUser", "user not found", nil)
	}
	if upd.FullName != nil {
		u.FullName = *upd.FullName
	}
	if upd.Password != nil {
		f.passwords[userID] = *upd.Password
	}
	f.accounts[userID] = u
	return nil
}

func noRoles() access.Principal { return access.Principal{UserID: "u-none"} }

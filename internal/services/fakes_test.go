package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"referralhub/internal/cache"
	"referralhub/internal/config"
	"referralhub/internal/models"
	"referralhub/internal/repositories"

	"github.com/gofrs/uuid"
	"go.uber.org/zap"
)

// In-memory repositories that mirror the constraints of the SQL schema.

type store struct {
	mu        sync.Mutex
	now       time.Time
	users     map[uuid.UUID]*models.User
	jobs      map[uuid.UUID]*models.Job
	referrals map[uuid.UUID]*models.Referral
}

func newStore() *store {
	return &store{
		now:       time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		users:     make(map[uuid.UUID]*models.User),
		jobs:      make(map[uuid.UUID]*models.Job),
		referrals: make(map[uuid.UUID]*models.Referral),
	}
}

func (s *store) tick() time.Time {
	s.now = s.now.Add(time.Second)
	return s.now
}

type fakeUserRepo struct{ s *store }

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == user.Email || u.Username == user.Username {
			return repositories.ErrDuplicate
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.Must(uuid.NewV4())
	}
	user.Date = r.s.tick()
	cp := *user
	r.s.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == strings.ToLower(email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeUserRepo) ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email || u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeUserRepo) UpdateProfile(ctx context.Context, id uuid.UUID, update *models.ProfileUpdate) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	years := update.YearsOfExperience
	u.Name = update.Name
	u.YearsOfExperience = &years
	u.CurrentCompany = update.CurrentCompany
	u.LinkedinProfile = update.LinkedinProfile
	cp := *u
	return &cp, nil
}

type fakeJobRepo struct{ s *store }

func (r *fakeJobRepo) withOwner(j *models.Job) *models.Job {
	cp := *j
	if owner, ok := r.s.users[j.UserID]; ok {
		cp.User = owner.Summary()
	}
	return &cp
}

func (r *fakeJobRepo) Create(ctx context.Context, job *models.Job) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if job.ID == uuid.Nil {
		job.ID = uuid.Must(uuid.NewV4())
	}
	job.Date = r.s.tick()
	cp := *job
	r.s.jobs[job.ID] = &cp
	return nil
}

func (r *fakeJobRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	j, ok := r.s.jobs[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return r.withOwner(j), nil
}

func (r *fakeJobRepo) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	_, ok := r.s.jobs[id]
	return ok, nil
}

func (r *fakeJobRepo) List(ctx context.Context) ([]*models.Job, error) {
	return r.list(func(*models.Job) bool { return true }), nil
}

func (r *fakeJobRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Job, error) {
	return r.list(func(j *models.Job) bool { return j.UserID == userID }), nil
}

func (r *fakeJobRepo) list(keep func(*models.Job) bool) []*models.Job {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*models.Job{}
	for _, j := range r.s.jobs {
		if keep(j) {
			out = append(out, r.withOwner(j))
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Date.After(out[b].Date) })
	return out
}

func (r *fakeJobRepo) Update(ctx context.Context, job *models.Job) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.jobs[job.ID]; !ok {
		return repositories.ErrNotFound
	}
	cp := *job
	cp.User = nil
	r.s.jobs[job.ID] = &cp
	return nil
}

func (r *fakeJobRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.jobs[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.s.jobs, id)
	return nil
}

type fakeReferralRepo struct{ s *store }

func (r *fakeReferralRepo) Create(ctx context.Context, ref *models.Referral) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.referrals {
		if existing.JobID == ref.JobID && existing.EmployerID == ref.EmployerID {
			return repositories.ErrDuplicate
		}
	}
	if ref.ID == uuid.Nil {
		ref.ID = uuid.Must(uuid.NewV4())
	}
	ref.Date = r.s.tick()
	ref.UpdatedAt = ref.Date
	cp := *ref
	r.s.referrals[ref.ID] = &cp
	return nil
}

func (r *fakeReferralRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Referral, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ref, ok := r.s.referrals[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *ref
	return &cp, nil
}

func (r *fakeReferralRepo) GetDetailed(ctx context.Context, id uuid.UUID) (*models.Referral, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ref, ok := r.s.referrals[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *ref
	if job, ok := r.s.jobs[ref.JobID]; ok {
		cp.Job = &models.JobSummary{ID: job.ID, Company: job.Company, Position: job.Position}
	}
	if seeker, ok := r.s.users[ref.JobSeekerID]; ok {
		cp.JobSeeker = seeker.Summary()
	}
	if employer, ok := r.s.users[ref.EmployerID]; ok {
		cp.Employer = employer.Summary()
	}
	return &cp, nil
}

func (r *fakeReferralRepo) ExistsForJobAndEmployer(ctx context.Context, jobID, employerID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, ref := range r.s.referrals {
		if ref.JobID == jobID && ref.EmployerID == employerID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeReferralRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.ReferralStatus) (*models.Referral, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ref, ok := r.s.referrals[id]
	if !ok || ref.Status != from {
		return nil, repositories.ErrNotFound
	}
	ref.Status = to
	ref.UpdatedAt = r.s.tick()
	cp := *ref
	return &cp, nil
}

func (r *fakeReferralRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.referrals[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.s.referrals, id)
	return nil
}

func (r *fakeReferralRepo) DeleteByJobSeeker(ctx context.Context, jobSeekerID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, ref := range r.s.referrals {
		if ref.JobSeekerID == jobSeekerID {
			delete(r.s.referrals, id)
			n++
		}
	}
	return n, nil
}

func (r *fakeReferralRepo) ListByEmployer(ctx context.Context, employerID uuid.UUID) ([]*models.Referral, error) {
	return r.list(func(ref *models.Referral) bool {
		_, seeker := r.s.users[ref.JobSeekerID]
		return ref.EmployerID == employerID && seeker
	}), nil
}

func (r *fakeReferralRepo) ListByJobSeeker(ctx context.Context, jobSeekerID uuid.UUID) ([]*models.Referral, error) {
	return r.list(func(ref *models.Referral) bool {
		_, employer := r.s.users[ref.EmployerID]
		return ref.JobSeekerID == jobSeekerID && employer
	}), nil
}

func (r *fakeReferralRepo) ListAll(ctx context.Context) ([]*models.Referral, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*models.Referral{}
	for _, ref := range r.s.referrals {
		cp := *ref
		out = append(out, &cp)
	}
	return out, nil
}

// list holds the lock while keep runs; keep may read the store directly
func (r *fakeReferralRepo) list(keep func(*models.Referral) bool) []*models.Referral {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*models.Referral{}
	for _, ref := range r.s.referrals {
		if _, job := r.s.jobs[ref.JobID]; !job || !keep(ref) {
			continue
		}
		cp := *ref
		out = append(out, &cp)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Date.After(out[b].Date) })
	return out
}

func (r *fakeReferralRepo) DeleteRejectedBefore(ctx context.Context, cutoff time.Time) (int, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, ref := range r.s.referrals {
		if ref.Status == models.StatusRejected && ref.Date.Before(cutoff) {
			delete(r.s.referrals, id)
			n++
		}
	}
	return int(n), n, nil
}

// backdate moves a referral's creation time
func (s *store) backdate(id uuid.UUID, date time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.referrals[id].Date = date
}

// ===============================
// FIXTURE
// ===============================

type fixture struct {
	store    *store
	services *ServiceCollection
}

func testConfig() *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:  "test-secret",
			JWTExpiry:  time.Hour,
			JWTIssuer:  "referralhub-test",
			BCryptCost: 4,
		},
		Cache: config.CacheConfig{
			Provider: "memory",
			UserTTL:  time.Minute,
		},
		Cleanup: config.CleanupConfig{
			Enabled:  true,
			Interval: time.Hour,
			MaxAge:   24 * time.Hour,
		},
	}
}

func newFixture() *fixture {
	st := newStore()
	logger := zap.NewNop()
	backend := cache.NewMemoryCache(&cache.Config{
		Provider:        "memory",
		TTL:             time.Minute,
		MaxKeys:         100,
		CleanupInterval: time.Minute,
	}, logger)

	sc := NewServiceCollectionFromRepositories(
		&fakeUserRepo{st}, &fakeJobRepo{st}, &fakeReferralRepo{st}, backend, testConfig(), logger,
	)
	return &fixture{store: st, services: sc}
}

func intPtr(n int) *int { return &n }

// addUser inserts a user with a complete profile directly into the store
func (f *fixture) addUser(name string, role models.Role) *models.User {
	u := &models.User{
		ID:                uuid.Must(uuid.NewV4()),
		Username:          strings.ToLower(name),
		Name:              name,
		Email:             strings.ToLower(name) + "@example.com",
		Role:              role,
		YearsOfExperience: intPtr(3),
		CurrentCompany:    "Acme",
		LinkedinProfile:   "https://linkedin.com/in/" + strings.ToLower(name),
	}
	f.store.mu.Lock()
	f.store.users[u.ID] = u
	f.store.mu.Unlock()
	return u
}

func (f *fixture) addJob(owner *models.User) *models.Job {
	j := &models.Job{
		ID:          uuid.Must(uuid.NewV4()),
		UserID:      owner.ID,
		Company:     "Globex",
		Position:    "Backend Engineer",
		JobID:       "GX-1",
		JobURL:      "https://globex.example/jobs/1",
		Location:    "Remote",
		Skills:      []string{"go", "sql"},
		Description: "Build services",
	}
	f.store.mu.Lock()
	j.Date = f.store.tick()
	f.store.jobs[j.ID] = j
	f.store.mu.Unlock()
	return j
}

package service

import (
	"context"
	"maps"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	apperrors "github.com/jobbuddy/internal/errors"
	"github.com/jobbuddy/internal/models"
	"github.com/jobbuddy/internal/storage"
	"github.com/jobbuddy/internal/types"
)

// memData holds rows by id. Streaks are keyed by user id.
type memData struct {
	users         map[string]models.User
	onboarding    map[string]models.OnboardingData
	companies     map[string]models.Company
	contacts      map[string]models.Contact
	applications  map[string]models.Application
	outreach      map[string]models.Outreach
	goals         map[string]models.Goal
	streaks       map[string]models.Streak
	notifications map[string]models.Notification
	quests        map[string]models.UserQuest
	cvAnalyses    map[string]models.CVAnalysis
}

func (d *memData) clone() *memData {
	return &memData{
		users:         maps.Clone(d.users),
		onboarding:    maps.Clone(d.onboarding),
		companies:     maps.Clone(d.companies),
		contacts:      maps.Clone(d.contacts),
		applications:  maps.Clone(d.applications),
		outreach:      maps.Clone(d.outreach),
		goals:         maps.Clone(d.goals),
		streaks:       maps.Clone(d.streaks),
		notifications: maps.Clone(d.notifications),
		quests:        maps.Clone(d.quests),
		cvAnalyses:    maps.Clone(d.cvAnalyses),
	}
}

// memDB is an in-memory stand-in for Postgres. Constraint violations surface as the
// same categorized errors the storage package produces.
type memDB struct {
	mu    sync.Mutex
	data  *memData
	fail  map[string]error
	tick  time.Time
	store *Store
}

func newMemDB() *memDB {
	db := &memDB{
		data: &memData{
			users:         map[string]models.User{},
			onboarding:    map[string]models.OnboardingData{},
			companies:     map[string]models.Company{},
			contacts:      map[string]models.Contact{},
			applications:  map[string]models.Application{},
			outreach:      map[string]models.Outreach{},
			goals:         map[string]models.Goal{},
			streaks:       map[string]models.Streak{},
			notifications: map[string]models.Notification{},
			quests:        map[string]models.UserQuest{},
			cvAnalyses:    map[string]models.CVAnalysis{},
		},
		fail: map[string]error{},
		tick: time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC),
	}
	db.store = &Store{
		Users:         &memUserRepo{db},
		Onboarding:    &memOnboardingRepo{db},
		Companies:     &memCompanyRepo{db},
		Contacts:      &memContactRepo{db},
		Applications:  &memApplicationRepo{db},
		Outreach:      &memOutreachRepo{db},
		Goals:         &memGoalRepo{db},
		Streaks:       &memStreakRepo{db},
		Notifications: &memNotificationRepo{db},
		Quests:        &memQuestRepo{db},
		CVAnalyses:    &memCVAnalysisRepo{db},
	}
	return db
}

// failNext makes the operation return err until cleared
func (db *memDB) failNext(op string, err error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.fail[op] = err
}

// lock acquires the mutex and reports an injected failure for op
func (db *memDB) lock(op string) error {
	db.mu.Lock()
	if err, ok := db.fail[op]; ok {
		db.mu.Unlock()
		return err
	}
	return nil
}

// stamp returns strictly increasing timestamps so ordering is deterministic
func (db *memDB) stamp() time.Time {
	db.tick = db.tick.Add(time.Second)
	return db.tick
}

// memUnitOfWork restores the previous data when fn fails
type memUnitOfWork struct {
	db *memDB
}

func (u *memUnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, store *Store) error) error {
	u.db.mu.Lock()
	snapshot := u.db.data.clone()
	u.db.mu.Unlock()

	if err := fn(ctx, u.db.store); err != nil {
		u.db.mu.Lock()
		u.db.data = snapshot
		u.db.mu.Unlock()
		return err
	}
	return nil
}

func newID(id string) string {
	if id == "" {
		return uuid.New().String()
	}
	return id
}

func ptr[T any](v T) *T { return &v }

func sortedValues[T any](m map[string]T, keep func(T) bool, less func(a, b T) int) []*T {
	out := make([]*T, 0)
	for _, v := range m {
		if keep(v) {
			out = append(out, ptr(v))
		}
	}
	slices.SortFunc(out, func(a, b *T) int { return less(*a, *b) })
	return out
}

func newestFirst(a, b time.Time) int { return b.Compare(a) }

// Users

type memUserRepo struct{ db *memDB }

func (r *memUserRepo) Create(ctx context.Context, user *models.User) error {
	if err := r.db.lock("users.Create"); err != nil {
		return err
	}
	defer r.db.mu.Unlock()
	user.Email = strings.ToLower(user.Email)
	for _, u := range r.db.data.users {
		if u.Email == user.Email {
			return apperrors.NewConflictError("User already exists")
		}
	}
	user.ID = newID(user.ID)
	user.CreatedAt = r.db.stamp()
	user.UpdatedAt = user.CreatedAt
	r.db.data.users[user.ID] = *user
	r.db.data.streaks[user.ID] = models.Streak{ID: uuid.New().String(), UserID: user.ID, CreatedAt: user.CreatedAt}
	return nil
}

func (r *memUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	if err := r.db.lock("users.GetByID"); err != nil {
		return nil, err
	}
	defer r.db.mu.Unlock()
	u, ok := r.db.data.users[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("user", id)
	}
	return &u, nil
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if err := r.db.lock("users.GetByEmail"); err != nil {
		return nil, err
	}
	defer r.db.mu.Unlock()
	for _, u := range r.db.data.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, apperrors.NewNotFoundError("user", email)
}

func (r *memUserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	if apperrors.IsNotFound(err) {
		return false, nil
	}
	return err == nil, err
}

func (r *memUserRepo) ListActive(ctx context.Context) ([]*models.User, error) {
	if err := r.db.lock("users.ListActive"); err != nil {
		return nil, err
	}
	defer r.db.mu.Unlock()
	return sortedValues(r.db.data.users,
		func(u models.User) bool { return u.IsActive },
		func(a, b models.User) int { return a.CreatedAt.Compare(b.CreatedAt) }), nil
}

func (r *memUserRepo) Update(ctx context.Context, user *models.User) error {
	if err := r.db.lock("users.Update"); err != nil {
		return err
	}
	defer r.db.mu.Unlock()
	if _, ok := r.db.data.users[user.ID]; !ok {
		return apperrors.NewNotFoundError("user", user.ID)
	}
	user.UpdatedAt = r.db.stamp()
	r.db.data.users[user.ID] = *user
	return nil
}

func (r *memUserRepo) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	if err := r.db.lock("users.UpdateLastLogin"); err != nil {
		return err
	}
	defer r.db.mu.Unlock()
	u, ok := r.db.data.users[id]
	if !ok {
		return apperrors.NewNotFoundError("user", id)
	}
	u.LastLogin = &at
	r.db.data.users[id] = u
	return nil
}

func (r *memUserRepo) Delete(ctx context.Context, id string) error {
	if err := r.db.lock("users.Delete"); err != nil {
		return err
	}
	defer r.db.mu.Unlock()
	d := r.db.data
	if _, ok := d.users[id]; !ok {
		return apperrors.NewNotFoundError("user", id)
	}
	delete(d.users, id)
	delete(d.streaks, id)
	for cid, c := range d.companies {
		if c.UserID == id {
			deleteCompanyLocked(d, cid)
		}
	}
	maps.DeleteFunc(d.onboarding, func(_ string, v models.OnboardingData) bool { return v.UserID == id })
	maps.DeleteFunc(d.outreach, func(_ string, v models.Outreach) bool { return v.UserID == id })
	maps.DeleteFunc(d.goals, func(_ string, v models.Goal) bool { return v.UserID == id })
	maps.DeleteFunc(d.notifications, func(_ string, v models.Notification) bool { return v.UserID == id })
	maps.DeleteFunc(d.quests, func(_ string, v models.UserQuest) bool { return v.UserID == id })
	maps.DeleteFunc(d.cvAnalyses, func(_ string, v models.CVAnalysis) bool { return v.UserID == id })
	return nil
}

func deleteCompanyLocked(d *memData, id string) {
	delete(d.companies, id)
	var contactIDs, appIDs []string
	for cid, c := range d.contacts {
		if c.CompanyID == id {
			contactIDs = append(contactIDs, cid)
			delete(d.contacts, cid)
		}
	}
	for aid, a := range d.applications {
		if a.CompanyID == id {
			appIDs = append(appIDs, aid)
			delete(d.applications, aid)
		}
	}
	maps.DeleteFunc(d.outreach, func(_ string, o models.Outreach) bool {
		return (o.CompanyID != nil && *o.CompanyID == id) ||
			(o.ApplicationID != nil && slices.Contains(appIDs, *o.ApplicationID)) ||
			slices.Contains(contactIDs, o.ContactID)
	})
}

// Onboarding

type memOnboardingRepo struct{ db *memDB }

func (r *memOnboardingRepo) Create(ctx context.Context, data *models.OnboardingData) error {
	if err := r.db.lock("onboarding.Create"); err != nil {
		return err
	}
	defer r.db.mu.Unlock()
	data.ID = newID(data.ID)
	data.CompletedAt = r.db.stamp()
	r.db.data.onboarding[data.ID] = *data
	return nil
}

func (r *memOnboardingRepo) GetByID(ctx context.Context, id string) (*models.OnboardingData, error) {
	if err := r.db.lock("onboarding.GetByID"); err != nil {
		return nil, err
	}
	defer r.db.mu.Unlock()
	v, ok := r.db.data.onboarding[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("onboarding data", id)
	}
	return &v, nil
}

func (r *memOnboardingRepo) GetByUserID(ctx context.Context, userID string) (*models.OnboardingData, error) {
	if err := r.db.lock("onboarding.GetByUserID"); err != nil {
		return nil, err
	}
	defer r.db.mu.Unlock()
	for _, v := range r.db.data.onboarding {
		if v.UserID == userID {
			return &v, nil
		}
	}
	return nil, apperrors.NewNotFoundError("onboarding data for user", userID)
}

func (r *memOnboardingRepo) ExistsForUser(ctx context.Context, userID string) (bool, error) {
	_, err := r.GetByUserID(ctx, userID)
	if apperrors.IsNotFound(err) {
		return false, nil
	}
	return err == nil, err
}

func (r *memOnboardingRepo) Update(ctx context.Context, data *models.OnboardingData) error {
	if err := r.db.lock("onboarding.Update"); err != nil {
		return err
	}
	defer r.db.mu.Unlock()
	if _, ok := r.db.data.onboarding[data.ID]; !ok {
		return apperrors.NewNotFoundError("onboarding data", data.ID)
	}
	r.db.data.onboarding[data.ID] = *data
	return nil
}

func (r *memOnboardingRepo) Delete(ctx context.Context, id string) error {
	if err := r.db.lock("onboarding.Delete"); err != nil {
		return err
	}
	defer r.db.mu.Unlock()
	if _, ok := r.db.data.onboarding[id]; !ok {
		return apperrors.NewNotFoundError("onboarding data", id)
	}
	delete(r.db.data.onboarding, id)
	return nil
}

// Companies

type memCompanyRepo struct{ db *memDB }

func (r *memCompanyRepo) Create(ctx context.Context, company *models.Company) error {
	if err := r.db.lock("companies.Create"); err != nil {
		return err
	}
	defer r.db.mu.Unlock()
	for _, c := range r.db.data.companies {
		if c.UserID == company.UserID && strings.EqualFold(c.Name, company.Name) {
			return apperrors.NewConflictError("Company already exists")
		}
	}
	company.ID = newID(company.ID)
	company.CreatedAt = r.db.stamp()
	company.UpdatedAt = company.CreatedAt
	r.db.data.companies[company.ID] = *company
	return nil
}

func (r *memCompanyRepo) GetByID(ctx context.Context, id string) (*models.Company, error) {
	if err := r.db.lock("companies.GetByID"); err != nil {
		return nil, err
	}
	defer r.db.mu.Unlock()
	c, ok := r.db.data.companies[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("company", id)
	}
	return &c, nil
}

func (r *memCompanyRepo) GetByName(ctx context.Context, userID, name string) (*models.Company, error) {
	if err := r.db.lock("companies.GetByName"); err != nil {
		return nil, err
	}
	defer r.db.mu.Unlock()
	for _, c := range r.db.data.companies {
		if c.UserID == userID && strings.EqualFold(c.Name, name) {
			return &c, nil
		}
	}
	return nil, apperrors.NewNotFoundError("company", name)
}

func (r *memCompanyRepo) NameExists(ctx context.Context, userID, name, excludeID string) (bool, error) {
	if err := r.db.lock("companies.NameExists"); err != nil {
		return false, err
	}
	defer r.db.mu.Unlock()
	for _, c := range r.db.data.companies {
		if c.UserID == userID && c.ID != excludeID && strings.EqualFold(c.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

func (r *memCompanyRepo) ListByUser(ctx context.Context, userID, industry string) ([]*models.Company, error) {
	if err := r.db.lock("companies.ListByUser"); err != nil {
		return nil, err
	}
	defer r.db.mu.Unlock()
	return sortedValues(r.db.data.companies,
		func(c models.Company) bool {
			return c.UserID == userID && (industry == "" || (c.Industry != nil && *c.Industry == industry))
		},
		func(a, b models.Company) int { return strings.Compare(a.Name, b.Name) }), nil
}

func containsFold(field *string, term string) bool {
	return field != nil && strings.Contains(strings.ToLower(*field), strings.ToLower(term))
}

func (r *memCompanyRepo) Search(ctx context.Context, userID, term string) ([]*models.Company, error) {
	if err := r.db.lock("companies.Search"); err != nil {
		return nil, err
	}
	defer r.db.mu.Unlock()
	return sortedValues(r.db.data.companies,
		func(c models.Company) bool {
			return c.UserID == userID &&
				(containsFold(&c.Name, term) || containsFold(c.Location, term) || containsFold(c.Industry, term))
		},
		func(a, b models.Company) int { return strings.Compare(a.Name, b.Name) }), nil
}

func (r *memCompanyRepo) Update(ctx context.Context, company *models.Company) error {
	if err := r.db.lock("companies.Update"); err != nil {
		return err
	}
	defer r.db.mu.Unlock()
	if _, ok := r.db.data.companies[company.ID]; !ok {
		return apperrors.NewNotFoundError("company", company.ID)
	}
	company.UpdatedAt = r.db.stamp()
	r.db.data.companies[company.ID] = *company
	return nil
}

func (r *memCompanyRepo) Delete(ctx context.Context, id string) error {
	if err := r.db.lock("companies.Delete"); err != nil {
		return err
	}
	defer r.db.mu.Unlock()
	if _, ok := r.db.data.companies[id]; !ok {
		return apperrors.NewNotFoundError("company", id)
	}
	deleteCompanyLocked(r.db.data, id)
	return nil
}

func (r *memCompanyRepo) Stats(ctx context.Context, id string) (*models.CompanyStats, error) {
	if err := r.db.lock("companies.Stats"); err != nil {
		return nil, err
	}
	defer r.db.mu.Unlock()
	d := r.db.data
	stats := &models.CompanyStats{CompanyID: id, Applications: []models.StatusCount{}}
	for _, c := range d.contacts {
		if c.CompanyID == id {
			stats.TotalContacts++
		}
	}
	counts := map[types.ApplicationStatus]int{}
	appIDs := map[string]bool{}
	for _, a := range d.applications {
		if a.CompanyID == id {
			counts[a.Status]++
			appIDs[a.ID] = true
		}
	}
	for _, status := range types.ApplicationStatuses {
		if counts[status] > 0 {
			stats.Applications = append(stats.Applications, models.StatusCount{Status: status, Count: counts[status]})
		}
	}
	for _, o := range d.outreach {
		if (o.CompanyID != nil && *o.CompanyID == id) || (o.ApplicationID != nil && appIDs[*o.ApplicationID]) {
			stats.TotalOutreach++
		}
	}
	return stats, nil
}

// Contacts

type memContactRepo struct{ db *memDB }

func (r *memContactRepo) Create(ctx context.Context, contact *models.Contact) error {
	if err := r.db.lock("contacts.Create"); err != nil {
		return err
	}
	defer r.db.mu.Unlock()
	if _, ok := r.db.data.companies[contact.CompanyID]; !ok {
		return apperrors.NewValidationError("Contact references a record that does not exist")
	}
	contact.ID = newID(contact.ID)
	contact.CreatedAt = r.db.stamp()
	contact.UpdatedAt = contact.CreatedAt
	r.db.data.contacts[contact.ID] = *contact
	return nil
}

func (r *memContactRepo) GetByID(ctx context.Context, id string) (*models.Contact, error) {
	if err := r.db.lock("contacts.GetByID"); err != nil {
		return nil, err
	}
	defer r.db.mu.Unlock()
	c, ok := r.db.data.contacts[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("contact", id)
	}
	return &c, nil
}

func (r *memContactRepo) GetByEmail(ctx context.Context, companyID, email string) (*models.Contact, error) {
	if err := r.db.lock("contacts.GetByEmail"); err != nil {
		return nil, err
	}
	defer r.db.mu.Unlock()
	for _, c := range r.db.data.contacts {
		if c.CompanyID == companyID && c.Email != nil && strings.EqualFold(*c.Email, email) {
			return &c, nil
		}
	}
	return nil, apperrors.NewNotFoundError("contact", email)
}

func (r *memContactRepo) EmailExists(ctx context.Context, companyID, email, excludeID string) (bool, error) {
	if err := r.db.lock("contacts.EmailExists"); err != nil {
		return false, err
	}
	defer r.db.mu.Unlock()
	for _, c := range r.db.data.contacts {
		if c.CompanyID == companyID && c.ID != excludeID && c.Email != nil && strings.EqualFold(*c.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func byName(a, b models.Contact) int { return strings.Compare(a.Name, b.Name) }

func (r *memContactRepo) ListByCompany(ctx context.Context, companyID string) ([]*models.Contact, error) {
	if err := r.db.lock("contacts.ListByCompany"); err != nil {
		return nil, err
	}
	defer r.db.mu.Unlock()
	return sortedValues(r.db.data.contacts, func(c models.Contact) bool { return c.CompanyID == companyID }, byName), nil
}

func (r *memContactRepo) ListByUser(ctx context.Context, userID string) ([]*models.Contact, error) {
	if err := r.db.lock("contacts.ListByUser"); err != nil {
		return nil, err
	}
	defer r.db.mu.Unlock()
	companies := r.db.data.companies
	return sortedValues(r.db.data.contacts, func(c models.Contact) bool {
		return companies[c.CompanyID].UserID == userID
	}, byName), nil
}

func (r *memContactRepo) Search(ctx context.Context, userID, term string) ([]*models.Contact, error) {
	if err := r.db.lock("contacts.Search"); err != nil {
		return nil, err
	}
	defer r.db.mu.Unlock()
	companies := r.db.data.companies
	return sortedValues(r.db.data.contacts, func(c models.Contact) bool {
		return companies[c.CompanyID].UserID == userID &&
			(containsFold(&c.Name, term) || containsFold(c.Role, term) || containsFold(c.Email, term))
	}, byName), nil
}

func (r *memContactRepo) Update(ctx context.Context, contact *models.Contact) error {
	if err := r.db.lock("contacts.Update"); err != nil {
		return err
	}
	defer r.db.mu.Unlock()
	if _, ok := r.db.data.contacts[contact.ID]; !ok {
		return apperrors.NewNotFoundError("contact", contact.ID)
	}
	contact.UpdatedAt = r.db.stamp()
	r.db.data.contacts[contact.ID] = *contact
	return nil
}

func (r *memContactRepo) Delete(ctx context.Context, id string) error {
	if err := r.db.lock("contacts.Delete"); err != nil {
		return err
	}
	defer r.db.mu.Unlock()
	if _, ok := r.db.data.contacts[id]; !ok {
		return apperrors.NewNotFoundError("contact", id)
	}
	delete(r.db.data.contacts, id)
	maps.DeleteFunc(r.db.data.outreach, func(_ string, o models.Outreach) bool { return o.ContactID == id })
	return nil
}

// Applications

type memApplicationRepo struct{ db *memDB }

func appNewestFirst(a, b models.Application) int { return newestFirst(a.CreatedAt, b.CreatedAt) }

func (r *memApplicationRepo) Create(ctx context.Context, app *models.Application) error {
	if err := r.db.lock("applications.Create"); err != nil {
		return err
	}
	defer r.db.mu.Unlock()
	if _, ok := r.db.data.companies[app.CompanyID]; !ok {
		return apperrors.NewValidationError("Application references a record that does not exist")
	}
	app.ID = newID(app.ID)
	app.CreatedAt = r.db.stamp()
	app.UpdatedAt = app.CreatedAt
	r.db.data.applications[app.ID] = *app
	return nil
}

func (r *memApplicationRepo) GetByID(ctx context.Context, id string) (*models.Application, error) {
	if err := r.db.lock("applications.GetByID"); err != nil {
		return nil, err
	}
	defer r.db.mu.Unlock()
	a, ok := r.db.data.applications[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("application", id)
	}
	return &a, nil
}

func (r *memApplicationRepo) ListByUser(ctx context.Context, userID string, status types.ApplicationStatus) ([]*models.Application, error) {
	if err := r.db.lock("applications.ListByUser"); err != nil {
		return nil, err
	}
	defer r.db.mu.Unlock()
	return sortedValues(r.db.data.applications, func(a models.Application) bool {
		return a.UserID == userID && (status == "" || a.Status == status)
	}, appNewestFirst), nil
}

func (r *memApplicationRepo) ListByCompany(ctx context.Context, companyID string) ([]*models.Application, error) {
	if err := r.db.lock("applications.ListByCompany"); err != nil {
		return nil, err
	}
	defer r.db.mu.Unlock()
	return sortedValues(r.db.data.applications, func(a models.Application) bool { return a.CompanyID == companyID }, appNewestFirst), nil
}

func (r *memApplicationRepo) detailed(keep func(models.Application, models.Company) bool) []*models.ApplicationDetail {
	apps := sortedValues(r.db.data.applications, func(a models.Application) bool {
		return keep(a, r.db.data.companies[a.CompanyID])
	}, appNewestFirst)
	out := make([]*models.ApplicationDetail, 0, len(apps))
	for _, a := range apps {
		c := r.db.data.companies[a.CompanyID]
		out = append(out, &models.ApplicationDetail{Application: *a, CompanyName: c.Name, CompanyLocation: c.Location})
	}
	return out
}

func (r *memApplicationRepo) ListDetailed(ctx context.Context, userID string) ([]*models.ApplicationDetail, error) {
	if err := r.db.lock("applications.ListDetailed"); err != nil {
		return nil, err
	}
	defer r.db.mu.Unlock()
	return r.detailed(func(a models.Application, _ models.Company) bool { return a.UserID == userID }), nil
}

func (r *memApplicationRepo) Search(ctx context.Context, userID, term string) ([]*models.ApplicationDetail, error) {
	if err := r.db.lock("applications.Search"); err != nil {
		return nil, err
	}
	defer r.db.mu.Unlock()
	return r.detailed(func(a models.Application, c models.Company) bool {
		return a.UserID == userID && (containsFold(&a.JobTitle, term) || containsFold(&c.Name, term))
	}), nil
}

func (r *memApplicationRepo) ListAwaitingFollowUp(ctx context.Context, cutoff time.Time) ([]*models.Application, error) {
	if err := r.db.lock("applications.ListAwaitingFollowUp"); err != nil {
		return nil, err
	}
	defer r.db.mu.Unlock()
	users := r.db.data.users
	return sortedValues(r.db.data.applications, func(a models.Application) bool {
		return users[a.UserID].IsActive && a.Status == types.ApplicationApplied &&
			a.AppliedDate != nil && !a.AppliedDate.After(models.DateOf(cutoff))
	}, func(a, b models.Application) int { return a.AppliedDate.Compare(*b.AppliedDate) }), nil
}

func (r *memApplicationRepo) Update(ctx context.Context, app *models.Application) error {
	if err := r.db.lock("applications.Update"); err != nil {
		return err
	}
	defer r.db.mu.Unlock()
	if _, ok := r.db.data.applications[app.ID]; !ok {
		return apperrors.NewNotFoundError("application", app.ID)
	}
	app.UpdatedAt = r.db.stamp()
	r.db.data.applications[app.ID] = *app
	return nil
}

func (r *memApplicationRepo) Delete(ctx context.Context, id string) error {
	if err := r.db.lock("applications.Delete"); err != nil {
		return err
	}
	defer r.db.mu.Unlock()
	if _, ok := r.db.data.applications[id]; !ok {
		return apperrors.NewNotFoundError("application", id)
	}
	delete(r.db.data.applications, id)
	maps.DeleteFunc(r.db.data.outreach, func(_ string, o models.Outreach) bool {
		return o.ApplicationID != nil && *o.ApplicationID == id
	})
	return nil
}

// Outreach

type memOutreachRepo struct{ db *memDB }

func sentNewestFirst(a, b models.Outreach) int {
	if c := newestFirst(a.SentDate, b.SentDate); c != 0 {
		return c
	}
	return newestFirst(a.CreatedAt, b.CreatedAt)
}

func (r *memOutreachRepo) Create(ctx context.Context, o *models.Outreach) error {
	if err := r.db.lock("outreach.Create"); err != nil {
		return err
	}
	defer r.db.mu.Unlock()
	if !models.ExactlyOneLink(o.ApplicationID, o.CompanyID) {
		return apperrors.NewValidationError("Outreach violates constraint outreach_exactly_one_link")
	}
	o.ID = newID(o.ID)
	o.CreatedAt = r.db.stamp()
	o.UpdatedAt = o.CreatedAt
	r.db.data.outreach[o.ID] = *o
	return nil
}

func (r *memOutreachRepo) GetByID(ctx context.Context, id string) (*models.Outreach, error) {
	if err := r.db.lock("outreach.GetByID"); err != nil {
		return nil, err
	}
	defer r.db.mu.Unlock()
	o, ok := r.db.data.outreach[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("outreach", id)
	}
	return &o, nil
}

func (r *memOutreachRepo) list(op string, keep func(models.Outreach) bool) ([]*models.Outreach, error) {
	if err := r.db.lock(op); err != nil {
		return nil, err
	}
	defer r.db.mu.Unlock()
	return sortedValues(r.db.data.outreach, keep, sentNewestFirst), nil
}

func (r *memOutreachRepo) ListByUser(ctx context.Context, userID string, status types.OutreachStatus) ([]*models.Outreach, error) {
	return r.list("outreach.ListByUser", func(o models.Outreach) bool {
		return o.UserID == userID && (status == "" || o.Status == status)
	})
}

func (r *memOutreachRepo) ListByApplication(ctx context.Context, applicationID string) ([]*models.Outreach, error) {
	return r.list("outreach.ListByApplication", func(o models.Outreach) bool {
		return o.ApplicationID != nil && *o.ApplicationID == applicationID
	})
}

func (r *memOutreachRepo) ListByContact(ctx context.Context, contactID string) ([]*models.Outreach, error) {
	return r.list("outreach.ListByContact", func(o models.Outreach) bool { return o.ContactID == contactID })
}

func (r *memOutreachRepo) ListByCompany(ctx context.Context, companyID string) ([]*models.Outreach, error) {
	if err := r.db.lock("outreach.ListByCompany"); err != nil {
		return nil, err
	}
	defer r.db.mu.Unlock()
	apps := r.db.data.applications
	return sortedValues(r.db.data.outreach, func(o models.Outreach) bool {
		if o.CompanyID != nil {
			return *o.CompanyID == companyID
		}
		return apps[*o.ApplicationID].CompanyID == companyID
	}, sentNewestFirst), nil
}

func (r *memOutreachRepo) ListPendingFollowUps(ctx context.Context, userID string, today time.Time) ([]*models.Outreach, error) {
	if err := r.db.lock("outreach.ListPendingFollowUps"); err != nil {
		return nil, err
	}
	defer r.db.mu.Unlock()
	return sortedValues(r.db.data.outreach, func(o models.Outreach) bool {
		return o.UserID == userID && o.NeedsFollowUp(today)
	}, func(a, b models.Outreach) int { return a.FollowUpDate.Compare(*b.FollowUpDate) }), nil
}

func (r *memOutreachRepo) Update(ctx context.Context, o *models.Outreach) error {
	if err := r.db.lock("outreach.Update"); err != nil {
		return err
	}
	defer r.db.mu.Unlock()
	if _, ok := r.db.data.outreach[o.ID]; !ok {
		return apperrors.NewNotFoundError("outreach", o.ID)
	}
	o.UpdatedAt = r.db.stamp()
	r.db.data.outreach[o.ID] = *o
	return nil
}

func (r *memOutreachRepo) Delete(ctx context.Context, id string) error {
	if err := r.db.lock("outreach.Delete"); err != nil {
		return err
	}
	defer r.db.mu.Unlock()
	if _, ok := r.db.data.outreach[id]; !ok {
		return apperrors.NewNotFoundError("outreach", id)
	}
	delete(r.db.data.outreach, id)
	return nil
}

// Goals

type memGoalRepo struct{ db *memDB }

func (r *memGoalRepo) Create(ctx context.Context, goal *models.Goal) error {
	if err := r.db.lock("goals.Create"); err != nil {
		return err
	}
	defer r.db.mu.Unlock()
	goal.WeekStart = models.WeekStart(goal.WeekStart)
	for _, g := range r.db.data.goals {
		if g.UserID == goal.UserID && g.WeekStart.Equal(goal.WeekStart) {
			return apperrors.NewConflictError("Goal already exists")
		}
	}
	goal.ID = newID(goal.ID)
	goal.CreatedAt = r.db.stamp()
	goal.UpdatedAt = goal.CreatedAt
	r.db.data.goals[goal.ID] = *goal
	return nil
}

func (r *memGoalRepo) GetByID(ctx context.Context, id string) (*models.Goal, error) {
	if err := r.db.lock("goals.GetByID"); err != nil {
		return nil, err
	}
	defer r.db.mu.Unlock()
	g, ok := r.db.data.goals[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("goal", id)
	}
	return &g, nil
}

func (r *memGoalRepo) GetByWeek(ctx context.Context, userID string, day time.Time) (*models.Goal, error) {
	if err := r.db.lock("goals.GetByWeek"); err != nil {
		return nil, err
	}
	defer r.db.mu.Unlock()
	week := models.WeekStart(day)
	for _, g := range r.db.data.goals {
		if g.UserID == userID && g.WeekStart.Equal(week) {
			return &g, nil
		}
	}
	return nil, apperrors.NewNotFoundError("goal for week", week.Format(time.DateOnly))
}

func (r *memGoalRepo) GetOrCreateForWeek(ctx context.Context, goal *models.Goal) (*models.Goal, error) {
	if err := r.db.lock("goals.GetOrCreateForWeek"); err != nil {
		return nil, err
	}
	defer r.db.mu.Unlock()
	week := models.WeekStart(goal.WeekStart)
	for _, g := range r.db.data.goals {
		if g.UserID == goal.UserID && g.WeekStart.Equal(week) {
			return &g, nil
		}
	}
	created := *goal
	created.WeekStart = week
	created.ID = newID(created.ID)
	created.CreatedAt = r.db.stamp()
	created.UpdatedAt = created.CreatedAt
	r.db.data.goals[created.ID] = created
	return &created, nil
}

func (r *memGoalRepo) ListByUser(ctx context.Context, userID string, limit int) ([]*models.Goal, error) {
	if err := r.db.lock("goals.ListByUser"); err != nil {
		return nil, err
	}
	defer r.db.mu.Unlock()
	goals := sortedValues(r.db.data.goals, func(g models.Goal) bool { return g.UserID == userID },
		func(a, b models.Goal) int { return newestFirst(a.WeekStart, b.WeekStart) })
	if limit > 0 && len(goals) > limit {
		goals = goals[:limit]
	}
	return goals, nil
}

func (r *memGoalRepo) Update(ctx context.Context, goal *models.Goal) error {
	if err := r.db.lock("goals.Update"); err != nil {
		return err
	}
	defer r.db.mu.Unlock()
	if _, ok := r.db.data.goals[goal.ID]; !ok {
		return apperrors.NewNotFoundError("goal", goal.ID)
	}
	goal.UpdatedAt = r.db.stamp()
	r.db.data.goals[goal.ID] = *goal
	return nil
}

func (r *memGoalRepo) mutate(op, id string, fn func(*models.Goal)) (*models.Goal, error) {
	if err := r.db.lock(op); err != nil {
		return nil, err
	}
	defer r.db.mu.Unlock()
	g, ok := r.db.data.goals[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("goal", id)
	}
	fn(&g)
	g.UpdatedAt = r.db.stamp()
	r.db.data.goals[id] = g
	return &g, nil
}

func (r *memGoalRepo) IncrementApplications(ctx context.Context, id string, count int) (*models.Goal, error) {
	return r.mutate("goals.IncrementApplications", id, func(g *models.Goal) { g.ApplicationsCurrent += count })
}

func (r *memGoalRepo) IncrementOutreach(ctx context.Context, id string, count int) (*models.Goal, error) {
	return r.mutate("goals.IncrementOutreach", id, func(g *models.Goal) { g.OutreachCurrent += count })
}

func (r *memGoalRepo) ResetProgress(ctx context.Context, id string) (*models.Goal, error) {
	return r.mutate("goals.ResetProgress", id, func(g *models.Goal) {
		g.ApplicationsCurrent = 0
		g.OutreachCurrent = 0
	})
}

func (r *memGoalRepo) Delete(ctx context.Context, id string) error {
	if err := r.db.lock("goals.Delete"); err != nil {
		return err
	}
	defer r.db.mu.Unlock()
	if _, ok := r.db.data.goals[id]; !ok {
		return apperrors.NewNotFoundError("goal", id)
	}
	delete(r.db.data.goals, id)
	return nil
}

// Streaks

type memStreakRepo struct{ db *memDB }

func (r *memStreakRepo) GetByUserID(ctx context.Context, userID string) (*models.Streak, error) {
	if err := r.db.lock("streaks.GetByUserID"); err != nil {
		return nil, err
	}
	defer r.db.mu.Unlock()
	s, ok := r.db.data.streaks[userID]
	if !ok {
		return nil, apperrors.NewNotFoundError("streak for user", userID)
	}
	return &s, nil
}

func (r *memStreakRepo) GetOrCreate(ctx context.Context, userID string) (*models.Streak, error) {
	if err := r.db.lock("streaks.GetOrCreate"); err != nil {
		return nil, err
	}
	s, ok := r.db.data.streaks[userID]
	if !ok {
		s = models.Streak{ID: uuid.New().String(), UserID: userID, CreatedAt: r.db.stamp()}
		r.db.data.streaks[userID] = s
	}
	r.db.mu.Unlock()
	return &s, nil
}

func (r *memStreakRepo) GetForUpdate(ctx context.Context, userID string) (*models.Streak, error) {
	return r.GetByUserID(ctx, userID)
}

func (r *memStreakRepo) Save(ctx context.Context, streak *models.Streak) error {
	if err := r.db.lock("streaks.Save"); err != nil {
		return err
	}
	defer r.db.mu.Unlock()
	if _, ok := r.db.data.streaks[streak.UserID]; !ok {
		return apperrors.NewNotFoundError("streak for user", streak.UserID)
	}
	streak.UpdatedAt = r.db.stamp()
	r.db.data.streaks[streak.UserID] = *streak
	return nil
}

func (r *memStreakRepo) mutate(op, userID string, fn func(*models.Streak)) (*models.Streak, error) {
	if err := r.db.lock(op); err != nil {
		return nil, err
	}
	defer r.db.mu.Unlock()
	s, ok := r.db.data.streaks[userID]
	if !ok {
		return nil, apperrors.NewNotFoundError("streak for user", userID)
	}
	fn(&s)
	s.UpdatedAt = r.db.stamp()
	r.db.data.streaks[userID] = s
	return &s, nil
}

func (r *memStreakRepo) AddPoints(ctx context.Context, userID string, points int) (*models.Streak, error) {
	return r.mutate("streaks.AddPoints", userID, func(s *models.Streak) { s.TotalPoints += points })
}

func (r *memStreakRepo) Reset(ctx context.Context, userID string) (*models.Streak, error) {
	return r.mutate("streaks.Reset", userID, func(s *models.Streak) { s.CurrentStreak = 0 })
}

// Notifications

type memNotificationRepo struct{ db *memDB }

func notificationNewestFirst(a, b models.Notification) int { return newestFirst(a.CreatedAt, b.CreatedAt) }

func (r *memNotificationRepo) Create(ctx context.Context, n *models.Notification) error {
	if err := r.db.lock("notifications.Create"); err != nil {
		return err
	}
	defer r.db.mu.Unlock()
	n.ID = newID(n.ID)
	n.CreatedAt = r.db.stamp()
	r.db.data.notifications[n.ID] = *n
	return nil
}

func (r *memNotificationRepo) GetByID(ctx context.Context, id string) (*models.Notification, error) {
	if err := r.db.lock("notifications.GetByID"); err != nil {
		return nil, err
	}
	defer r.db.mu.Unlock()
	n, ok := r.db.data.notifications[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("notification", id)
	}
	return &n, nil
}

func (r *memNotificationRepo) list(op string, keep func(models.Notification) bool, less func(a, b models.Notification) int) ([]*models.Notification, error) {
	if err := r.db.lock(op); err != nil {
		return nil, err
	}
	defer r.db.mu.Unlock()
	return sortedValues(r.db.data.notifications, keep, less), nil
}

func (r *memNotificationRepo) ListByUser(ctx context.Context, userID string, unreadOnly bool) ([]*models.Notification, error) {
	return r.list("notifications.ListByUser", func(n models.Notification) bool {
		return n.UserID == userID && (!unreadOnly || !n.IsRead)
	}, notificationNewestFirst)
}

func (r *memNotificationRepo) ListByType(ctx context.Context, userID string, typ types.NotificationType) ([]*models.Notification, error) {
	return r.list("notifications.ListByType", func(n models.Notification) bool {
		return n.UserID == userID && n.Type == typ
	}, notificationNewestFirst)
}

func (r *memNotificationRepo) ListUnemailed(ctx context.Context, userID string) ([]*models.Notification, error) {
	return r.list("notifications.ListUnemailed", func(n models.Notification) bool {
		return n.UserID == userID && !n.Emailed
	}, func(a, b models.Notification) int { return a.CreatedAt.Compare(b.CreatedAt) })
}

func (r *memNotificationRepo) UnreadCount(ctx context.Context, userID string) (int, error) {
	unread, err := r.ListByUser(ctx, userID, true)
	return len(unread), err
}

func (r *memNotificationRepo) ExistsForRelated(ctx context.Context, userID string, typ types.NotificationType, ref types.RelatedRef) (bool, error) {
	list, err := r.ListByType(ctx, userID, typ)
	if err != nil {
		return false, err
	}
	for _, n := range list {
		if n.Related == ref {
			return true, nil
		}
	}
	return false, nil
}

func (r *memNotificationRepo) mutate(op, id string, fn func(*models.Notification)) error {
	if err := r.db.lock(op); err != nil {
		return err
	}
	defer r.db.mu.Unlock()
	n, ok := r.db.data.notifications[id]
	if !ok {
		return apperrors.NewNotFoundError("notification", id)
	}
	fn(&n)
	r.db.data.notifications[id] = n
	return nil
}

func (r *memNotificationRepo) SetRead(ctx context.Context, id string, read bool) error {
	return r.mutate("notifications.SetRead", id, func(n *models.Notification) { n.IsRead = read })
}

func (r *memNotificationRepo) MarkEmailed(ctx context.Context, id string) error {
	return r.mutate("notifications.MarkEmailed", id, func(n *models.Notification) { n.Emailed = true })
}

func (r *memNotificationRepo) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	if err := r.db.lock("notifications.MarkAllRead"); err != nil {
		return 0, err
	}
	defer r.db.mu.Unlock()
	var count int64
	for id, n := range r.db.data.notifications {
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			r.db.data.notifications[id] = n
			count++
		}
	}
	return count, nil
}

func (r *memNotificationRepo) Delete(ctx context.Context, id string) error {
	if err := r.db.lock("notifications.Delete"); err != nil {
		return err
	}
	defer r.db.mu.Unlock()
	if _, ok := r.db.data.notifications[id]; !ok {
		return apperrors.NewNotFoundError("notification", id)
	}
	delete(r.db.data.notifications, id)
	return nil
}

func (r *memNotificationRepo) deleteWhere(op string, keep func(models.Notification) bool) (int64, error) {
	if err := r.db.lock(op); err != nil {
		return 0, err
	}
	defer r.db.mu.Unlock()
	before := len(r.db.data.notifications)
	maps.DeleteFunc(r.db.data.notifications, func(_ string, n models.Notification) bool { return keep(n) })
	return int64(before - len(r.db.data.notifications)), nil
}

func (r *memNotificationRepo) DeleteOlderThan(ctx context.Context, userID string, cutoff time.Time) (int64, error) {
	return r.deleteWhere("notifications.DeleteOlderThan", func(n models.Notification) bool {
		return n.UserID == userID && n.CreatedAt.Before(cutoff)
	})
}

func (r *memNotificationRepo) DeleteAllOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return r.deleteWhere("notifications.DeleteAllOlderThan", func(n models.Notification) bool {
		return n.CreatedAt.Before(cutoff)
	})
}

// Quests

type memQuestRepo struct{ db *memDB }

func (r *memQuestRepo) Create(ctx context.Context, q *models.UserQuest) error {
	if err := r.db.lock("quests.Create"); err != nil {
		return err
	}
	defer r.db.mu.Unlock()
	for _, existing := range r.db.data.quests {
		if existing.UserID == q.UserID && existing.QuestID == q.QuestID {
			return apperrors.NewConflictError("User quest already exists")
		}
	}
	q.ID = newID(q.ID)
	q.CompletedAt = r.db.stamp()
	r.db.data.quests[q.ID] = *q
	return nil
}

func (r *memQuestRepo) GetByID(ctx context.Context, id string) (*models.UserQuest, error) {
	if err := r.db.lock("quests.GetByID"); err != nil {
		return nil, err
	}
	defer r.db.mu.Unlock()
	q, ok := r.db.data.quests[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("user quest", id)
	}
	return &q, nil
}

func (r *memQuestRepo) GetByQuestID(ctx context.Context, userID, questID string) (*models.UserQuest, error) {
	if err := r.db.lock("quests.GetByQuestID"); err != nil {
		return nil, err
	}
	defer r.db.mu.Unlock()
	for _, q := range r.db.data.quests {
		if q.UserID == userID && q.QuestID == questID {
			return &q, nil
		}
	}
	return nil, apperrors.NewNotFoundError("user quest", questID)
}

func (r *memQuestRepo) IsCompleted(ctx context.Context, userID, questID string) (bool, error) {
	_, err := r.GetByQuestID(ctx, userID, questID)
	if apperrors.IsNotFound(err) {
		return false, nil
	}
	return err == nil, err
}

func (r *memQuestRepo) ListByUser(ctx context.Context, userID string) ([]*models.UserQuest, error) {
	if err := r.db.lock("quests.ListByUser"); err != nil {
		return nil, err
	}
	defer r.db.mu.Unlock()
	return sortedValues(r.db.data.quests, func(q models.UserQuest) bool { return q.UserID == userID },
		func(a, b models.UserQuest) int { return newestFirst(a.CompletedAt, b.CompletedAt) }), nil
}

func (r *memQuestRepo) CountByUser(ctx context.Context, userID string) (int, error) {
	list, err := r.ListByUser(ctx, userID)
	return len(list), err
}

func (r *memQuestRepo) QuestIDsByUser(ctx context.Context, userID string) ([]string, error) {
	list, err := r.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(list))
	for _, q := range list {
		ids = append(ids, q.QuestID)
	}
	slices.Sort(ids)
	return ids, nil
}

func (r *memQuestRepo) Delete(ctx context.Context, id string) error {
	if err := r.db.lock("quests.Delete"); err != nil {
		return err
	}
	defer r.db.mu.Unlock()
	if _, ok := r.db.data.quests[id]; !ok {
		return apperrors.NewNotFoundError("user quest", id)
	}
	delete(r.db.data.quests, id)
	return nil
}

func (r *memQuestRepo) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	if err := r.db.lock("quests.DeleteByUser"); err != nil {
		return 0, err
	}
	defer r.db.mu.Unlock()
	before := len(r.db.data.quests)
	maps.DeleteFunc(r.db.data.quests, func(_ string, q models.UserQuest) bool { return q.UserID == userID })
	return int64(before - len(r.db.data.quests)), nil
}

// CV analyses

type memCVAnalysisRepo struct{ db *memDB }

func cvNewestFirst(a, b models.CVAnalysis) int { return newestFirst(a.CreatedAt, b.CreatedAt) }

func (r *memCVAnalysisRepo) Create(ctx context.Context, a *models.CVAnalysis) error {
	if err := r.db.lock("cv.Create"); err != nil {
		return err
	}
	defer r.db.mu.Unlock()
	a.ID = newID(a.ID)
	a.CreatedAt = r.db.stamp()
	r.db.data.cvAnalyses[a.ID] = *a
	return nil
}

func (r *memCVAnalysisRepo) GetByID(ctx context.Context, id string) (*models.CVAnalysis, error) {
	if err := r.db.lock("cv.GetByID"); err != nil {
		return nil, err
	}
	defer r.db.mu.Unlock()
	a, ok := r.db.data.cvAnalyses[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("CV analysis", id)
	}
	return &a, nil
}

func (r *memCVAnalysisRepo) ListByUser(ctx context.Context, userID string) ([]*models.CVAnalysis, error) {
	if err := r.db.lock("cv.ListByUser"); err != nil {
		return nil, err
	}
	defer r.db.mu.Unlock()
	return sortedValues(r.db.data.cvAnalyses, func(a models.CVAnalysis) bool { return a.UserID == userID }, cvNewestFirst), nil
}

func (r *memCVAnalysisRepo) ListByApplication(ctx context.Context, applicationID string) ([]*models.CVAnalysis, error) {
	if err := r.db.lock("cv.ListByApplication"); err != nil {
		return nil, err
	}
	defer r.db.mu.Unlock()
	return sortedValues(r.db.data.cvAnalyses, func(a models.CVAnalysis) bool {
		return a.ApplicationID != nil && *a.ApplicationID == applicationID
	}, cvNewestFirst), nil
}

func (r *memCVAnalysisRepo) LatestForApplication(ctx context.Context, applicationID string) (*models.CVAnalysis, error) {
	list, err := r.ListByApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, apperrors.NewNotFoundError("CV analysis for application", applicationID)
	}
	return list[0], nil
}

func (r *memCVAnalysisRepo) AverageScore(ctx context.Context, userID string) (float64, bool, error) {
	list, err := r.ListByUser(ctx, userID)
	if err != nil || len(list) == 0 {
		return 0, false, err
	}
	total := 0
	for _, a := range list {
		total += a.ATSScore
	}
	return float64(total) / float64(len(list)), true, nil
}

func (r *memCVAnalysisRepo) Delete(ctx context.Context, id string) error {
	if err := r.db.lock("cv.Delete"); err != nil {
		return err
	}
	defer r.db.mu.Unlock()
	if _, ok := r.db.data.cvAnalyses[id]; !ok {
		return apperrors.NewNotFoundError("CV analysis", id)
	}
	delete(r.db.data.cvAnalyses, id)
	return nil
}

// memCache is a map-backed Cache that records invalidations
type memCache struct {
	mu          sync.Mutex
	values      map[string]interface{}
	invalidated []string
	failGet     error
}

func newMemCache() *memCache {
	return &memCache{values: map[string]interface{}{}}
}

func (c *memCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failGet != nil {
		return false, c.failGet
	}
	v, ok := c.values[key]
	if !ok {
		return false, nil
	}
	switch d := dest.(type) {
	case *int:
		*d = v.(int)
	case *models.StreakSummary:
		*d = *v.(*models.StreakSummary)
	default:
		return false, nil
	}
	return true, nil
}

func (c *memCache) Set(ctx context.Context, key string, value interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
	return nil
}

func (c *memCache) Invalidate(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.values, k)
		c.invalidated = append(c.invalidated, k)
	}
	return nil
}

func (c *memCache) InvalidateUser(ctx context.Context, userID string) error {
	return c.Invalidate(ctx, storage.StreakSummaryKey(userID), storage.UnreadCountKey(userID))
}

func (c *memCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.values[key]
	return ok
}

// fixedClock returns a Clock stuck at t
func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

// testEnv wires every service over one in-memory database
type testEnv struct {
	db       *memDB
	cache    *memCache
	now      time.Time
	services *Services
}

// newTestEnv starts on Friday 2026-10-16
func newTestEnv() *testEnv {
	db := newMemDB()
	cache := newMemCache()
	now := time.Date(2026, 10, 16, 14, 30, 0, 0, time.UTC)
	return &testEnv{
		db:       db,
		cache:    cache,
		now:      now,
		services: NewServices(db.store, &memUnitOfWork{db: db}, cache, fixedClock(now)),
	}
}

// withClock rebuilds the services around a different current time
func (e *testEnv) withClock(now time.Time) *testEnv {
	e.now = now
	e.services = NewServices(e.db.store, &memUnitOfWork{db: e.db}, e.cache, fixedClock(now))
	return e
}

func (e *testEnv) user(ctx context.Context, email string) *models.User {
	u := &models.User{Email: email, Name: "Test User", IsActive: true, EmailNotificationsEnabled: true}
	if err := e.db.store.Users.Create(ctx, u); err != nil {
		panic(err)
	}
	return u
}

func (e *testEnv) company(ctx context.Context, userID, name string) *models.Company {
	c := &models.Company{UserID: userID, Name: name, Source: types.CompanySourceManual}
	if err := e.db.store.Companies.Create(ctx, c); err != nil {
		panic(err)
	}
	return c
}

func (e *testEnv) contact(ctx context.Context, companyID, name string) *models.Contact {
	c := &models.Contact{CompanyID: companyID, Name: name, Source: types.ContactSourceManual}
	if err := e.db.store.Contacts.Create(ctx, c); err != nil {
		panic(err)
	}
	return c
}

// requireAppError asserts err is a categorized error with the given code and message
func requireAppError(t *testing.T, err error, code, message string) {
	t.Helper()
	var ce *apperrors.CategorizedError
	require.ErrorAs(t, err, &ce)
	require.Equal(t, code, ce.Code)
	if message != "" {
		require.Equal(t, message, ce.Message)
	}
}

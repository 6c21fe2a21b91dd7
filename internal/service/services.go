// Package service implements the job tracker's business operations on top of the repositories.
package service

// Services bundles every service built over one store
type Services struct {
	Users         *UserService
	Onboarding    *OnboardingService
	Companies     *CompanyService
	Contacts      *ContactService
	Applications  *ApplicationService
	Outreach      *OutreachService
	Goals         *GoalService
	Streaks       *StreakService
	Notifications *NotificationService
	Quests        *QuestService
	CVAnalyses    *CVAnalysisService
	Activity      *ActivityService
}

// NewServices wires the services. cache may be nil and clock defaults to SystemClock.
func NewServices(store *Store, uow UnitOfWork, cache Cache, clock Clock) *Services {
	if clock == nil {
		clock = SystemClock
	}
	return &Services{
		Users:         NewUserService(store.Users, store.Onboarding, cache, clock),
		Onboarding:    NewOnboardingService(store.Onboarding),
		Companies:     NewCompanyService(store.Companies, store.Contacts, store.Applications, store.Outreach),
		Contacts:      NewContactService(store.Contacts, store.Companies, store.Outreach),
		Applications:  NewApplicationService(store.Applications, store.Companies, store.Outreach, store.CVAnalyses, clock),
		Outreach:      NewOutreachService(store.Outreach, store.Contacts, store.Applications, store.Companies, clock),
		Goals:         NewGoalService(store.Goals, clock),
		Streaks:       NewStreakService(store.Streaks, uow, cache, clock),
		Notifications: NewNotificationService(store, cache, clock),
		Quests:        NewQuestService(store.Quests),
		CVAnalyses:    NewCVAnalysisService(store.CVAnalyses, store.Applications),
		Activity:      NewActivityService(uow, cache, clock),
	}
}

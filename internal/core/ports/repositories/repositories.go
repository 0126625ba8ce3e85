package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// This makes passing dependencies to the service container constructor cleaner.
type RepositoryProvider struct {
	SubjectRepo        SubjectRepositoryFacade
	SettlementRepo     SettlementRepositoryFacade
	SubscriptionRepo   SubscriptionRepositoryFacade
	ShieldConsentRepo  ShieldConsentRepository
	HealthScoreRepo    HealthScoreRepository
	AuditRepo          AuditRepository
	CallbackRepo       CallbackRepository
	ServiceRequestRepo ServiceRequestRepository
	AdvisoryRepo       AdvisoryRepository
}

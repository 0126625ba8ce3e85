package services

import (
	"github.com/exitdebt/exitdebt_backend/internal/core/ports/providers"
	portsrepo "github.com/exitdebt/exitdebt_backend/internal/core/ports/repositories"
	portssvc "github.com/exitdebt/exitdebt_backend/internal/core/ports/services"
	"github.com/exitdebt/exitdebt_backend/internal/platform/config"
)

// Providers groups the external collaborators and shared infrastructure the
// services are built on.
type Providers struct {
	Bureau     providers.BureauClient
	Aggregator providers.AggregatorClient
	Payments   providers.PaymentClient
	CRM        providers.CRMClient
	Messenger  providers.Messenger
	Publisher  providers.EventPublisher
	Limiter    providers.AttemptLimiter
	Locker     providers.Locker
	Vault      providers.Encrypter
	Clock      providers.Clock
}

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, p Providers) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// Audit first since every other service writes to it
	container.Audit = NewAuditService(repos.AuditRepo, WithClock(p.Clock))

	shared := []ServiceOption{
		WithClock(p.Clock),
		WithLocker(p.Locker),
		WithAuditor(container.Audit),
		WithPublisher(p.Publisher),
	}

	container.HealthCheck = NewHealthCheckService(HealthCheckDeps{
		Subjects:   repos.SubjectRepo,
		Scores:     repos.HealthScoreRepo,
		Bureau:     p.Bureau,
		Aggregator: p.Aggregator,
		Limiter:    p.Limiter,
		Vault:      p.Vault,
		Messenger:  p.Messenger,
		PullLimit:  cfg.RateLimitCibilPulls,
		ShareURL:   cfg.FrontendBaseURL + "/check",
	}, shared...)
	container.Aggregator = NewAggregatorService(p.Aggregator, shared...)
	container.Settlement = NewSettlementService(repos.SubjectRepo, repos.SettlementRepo, p.CRM, shared...)
	container.Subscription = NewSubscriptionService(
		repos.SubjectRepo,
		repos.SubscriptionRepo,
		repos.ShieldConsentRepo,
		p.Payments,
		WithTrialLength(cfg.TrialLength),
		WithBaseOptions(shared...),
	)
	container.Callback = NewCallbackService(repos.SubjectRepo, repos.CallbackRepo, repos.HealthScoreRepo, p.CRM, shared...)
	container.ServiceRequest = NewServiceRequestService(repos.SubjectRepo, repos.SubscriptionRepo, repos.ServiceRequestRepo, p.CRM, shared...)
	container.Advisory = NewAdvisoryService(repos.SubjectRepo, repos.AdvisoryRepo, p.Payments, shared...)

	return container
}

package pgsql

import (
	portsrepo "github.com/exitdebt/exitdebt_backend/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	subjectRepo := newPgxSubjectRepository(dbPool)
	settlementRepo := newPgxSettlementRepository(dbPool)
	subscriptionRepo := newPgxSubscriptionRepository(dbPool)
	shieldConsentRepo := newPgxShieldConsentRepository(dbPool)
	healthScoreRepo := newPgxHealthScoreRepository(dbPool)
	auditRepo := newPgxAuditRepository(dbPool)
	callbackRepo := newPgxCallbackRepository(dbPool)
	serviceRequestRepo := newPgxServiceRequestRepository(dbPool)
	advisoryRepo := newPgxAdvisoryRepository(dbPool)

	return portsrepo.RepositoryProvider{
		SubjectRepo:        subjectRepo,
		SettlementRepo:     settlementRepo,
		SubscriptionRepo:   subscriptionRepo,
		ShieldConsentRepo:  shieldConsentRepo,
		HealthScoreRepo:    healthScoreRepo,
		AuditRepo:          auditRepo,
		CallbackRepo:       callbackRepo,
		ServiceRequestRepo: serviceRequestRepo,
		AdvisoryRepo:       advisoryRepo,
	}
}

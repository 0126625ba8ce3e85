package crm

import (
	"context"
	"fmt"

	"github.com/exitdebt/exitdebt_backend/internal/core/domain"
	"github.com/exitdebt/exitdebt_backend/internal/core/ports/providers"
	"github.com/google/uuid"
)

// LeadMessage is the body published for each lead.
type LeadMessage struct {
	LeadID string `json:"lead_id"`
	providers.Lead
}

// QueuedCRM hands leads to a broker; a downstream consumer syncs them into the CRM.
type QueuedCRM struct {
	publisher providers.EventPublisher
}

// NewQueuedCRM creates a QueuedCRM publishing through publisher.
func NewQueuedCRM(publisher providers.EventPublisher) *QueuedCRM {
	return &QueuedCRM{publisher: publisher}
}

var _ providers.CRMClient = (*QueuedCRM)(nil)

func (c *QueuedCRM) CreateLead(ctx context.Context, lead providers.Lead) (string, error) {
	leadID := uuid.NewString()
	if err := c.publisher.Publish(ctx, domain.RoutingCRMLead, LeadMessage{LeadID: leadID, Lead: lead}); err != nil {
		return "", fmt.Errorf("failed to queue lead: %w", err)
	}
	return leadID, nil
}

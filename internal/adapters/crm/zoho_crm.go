package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/exitdebt/exitdebt_backend/internal/apperrors"
	"github.com/exitdebt/exitdebt_backend/internal/core/domain"
	"github.com/exitdebt/exitdebt_backend/internal/core/ports/providers"
	"github.com/shopspring/decimal"
	"golang.org/x/oauth2"
)

// ZohoConfig holds the OAuth client and endpoints of a Zoho CRM org.
type ZohoConfig struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	// AccountsURL is the token endpoint, e.g. https://accounts.zoho.in/oauth/v2/token.
	AccountsURL string
	// APIURL is the CRM module base, e.g. https://www.zohoapis.in/crm/v2.
	APIURL string
}

// ZohoCRM creates leads through the Zoho CRM REST API. Access tokens are
// refreshed from the configured refresh token as they expire.
type ZohoCRM struct {
	apiURL     string
	tokens     oauth2.TokenSource
	httpClient *http.Client
	logger     *slog.Logger
}

// NewZohoCRM creates a ZohoCRM. A nil logger uses slog.Default().
func NewZohoCRM(ctx context.Context, cfg ZohoConfig, logger *slog.Logger) (*ZohoCRM, error) {
	if cfg.RefreshToken == "" || cfg.ClientID == "" {
		return nil, errors.New("zoho crm: client id and refresh token are required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	oauthCfg := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL:  cfg.AccountsURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
	return &ZohoCRM{
		apiURL:     strings.TrimRight(cfg.APIURL, "/"),
		tokens:     oauthCfg.TokenSource(ctx, &oauth2.Token{RefreshToken: cfg.RefreshToken}),
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger,
	}, nil
}

var _ providers.CRMClient = (*ZohoCRM)(nil)

type zohoLead struct {
	LastName         string  `json:"Last_Name"`
	Phone            string  `json:"Phone"`
	LeadSource       string  `json:"Lead_Source"`
	Description      string  `json:"Description"`
	DebtHealthScore  *int    `json:"Debt_Health_Score,omitempty"`
	TotalOutstanding *string `json:"Total_Outstanding,omitempty"`
	PreferredTime    *string `json:"Preferred_Callback_Time,omitempty"`
}

type zohoResponse struct {
	Data []struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details struct {
			ID string `json:"id"`
		} `json:"details"`
	} `json:"data"`
}

func (c *ZohoCRM) CreateLead(ctx context.Context, lead providers.Lead) (string, error) {
	token, err := c.tokens.Token()
	if err != nil {
		return "", fmt.Errorf("%w: zoho token refresh failed: %v", apperrors.ErrUpstream, err)
	}

	name := lead.Name
	if name == "" {
		name = "Unknown"
	}
	record := zohoLead{
		LastName:        name,
		Phone:           lead.Phone,
		LeadSource:      "ExitDebt Website",
		Description:     describeLead(lead),
		DebtHealthScore: lead.Score,
	}
	if lead.TotalOutstanding != "" {
		outstanding := lead.TotalOutstanding
		record.TotalOutstanding = &outstanding
	}
	if lead.PreferredTime != nil {
		preferred := lead.PreferredTime.UTC().Format(time.RFC3339)
		record.PreferredTime = &preferred
	}
	body, err := json.Marshal(map[string]any{"data": []zohoLead{record}})
	if err != nil {
		return "", fmt.Errorf("failed to encode zoho lead: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/Leads", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build zoho request: %w", err)
	}
	req.Header.Set("Authorization", "Zoho-oauthtoken "+token.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: zoho request failed: %v", apperrors.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: zoho returned %s", apperrors.ErrUpstream, resp.Status)
	}

	var result zohoResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode zoho response: %w", err)
	}
	if len(result.Data) == 0 || result.Data[0].Details.ID == "" {
		return "", fmt.Errorf("%w: zoho response carried no lead id", apperrors.ErrUpstream)
	}
	leadID := result.Data[0].Details.ID
	c.logger.Info("Zoho lead created", slog.String("lead_id", leadID), slog.String("source", lead.Source))
	return leadID, nil
}

func describeLead(lead providers.Lead) string {
	parts := []string{"ExitDebt Lead"}
	if lead.Score != nil {
		parts = append(parts, fmt.Sprintf("Debt Health Score: %d/100", *lead.Score))
	}
	if lead.TotalOutstanding != "" {
		if d, err := decimal.NewFromString(lead.TotalOutstanding); err == nil {
			parts = append(parts, "Total Outstanding: ₹"+domain.GroupThousands(d.Round(0).IntPart()))
		}
	}
	if lead.TotalDebt > 0 {
		parts = append(parts, "Settlement Debt: ₹"+domain.GroupThousands(lead.TotalDebt))
	}
	if lead.PreferredTime != nil {
		parts = append(parts, "Preferred Callback: "+lead.PreferredTime.UTC().Format(time.RFC3339))
	}
	if lead.RequestID != "" {
		parts = append(parts, "Request: "+lead.RequestID)
	}
	if lead.Source != "" {
		parts = append(parts, "Source: "+lead.Source)
	}
	return strings.Join(parts, " | ")
}

package domain

import (
	"strings"
	"time"
)

// FI types reported by an account aggregator.
const (
	FITypeDeposit     = "DEPOSIT"
	FITypeCreditCard  = "CREDIT_CARD"
	FITypeTermDeposit = "TERM_DEPOSIT"
)

// DefaultFITypes are requested when a consent does not name any.
var DefaultFITypes = []string{FITypeDeposit, FITypeCreditCard, FITypeTermDeposit}

// FIData is the financial information returned for an approved consent.
type FIData struct {
	ConsentID string        `json:"consent_id"`
	Status    string        `json:"status"`
	FIPs      []FIPAccounts `json:"fi_data"`
}

// FIPAccounts groups the accounts held at one financial information provider.
type FIPAccounts struct {
	FIPID string   `json:"fipId"`
	Data  []FIItem `json:"data"`
}

// FIItem is a single linked account.
type FIItem struct {
	LinkRefNumber   string    `json:"linkRefNumber"`
	MaskedAccNumber string    `json:"maskedAccNumber"`
	FIType          string    `json:"fiType"`
	Account         FIAccount `json:"account"`
}

// FIAccount holds the summary and statement of an FIItem.
type FIAccount struct {
	Summary      FISummary      `json:"summary"`
	Transactions FITransactions `json:"transactions"`
}

// FISummary is the account summary block.
type FISummary struct {
	Type           string         `json:"type"`
	CurrentBalance LenientDecimal `json:"currentBalance"`
	CurrentDue     LenientDecimal `json:"currentDue"`
	TotalLimit     LenientDecimal `json:"totalLimit"`
	DueDate        string         `json:"dueDate"`
	Currency       string         `json:"currency"`
}

// FITransactions wraps the statement lines.
type FITransactions struct {
	Transaction []FITransaction `json:"transaction"`
}

// FITransaction is one statement line.
type FITransaction struct {
	TxnID     string         `json:"txnId"`
	Type      string         `json:"type"`
	Mode      string         `json:"mode"`
	Amount    LenientDecimal `json:"amount"`
	Narration string         `json:"narration"`
	Timestamp string         `json:"transactionTimestamp"`
}

// ConsentStatus is the state of an aggregator consent.
type ConsentStatus string

const (
	ConsentPending  ConsentStatus = "PENDING"
	ConsentApproved ConsentStatus = "APPROVED"
	ConsentRejected ConsentStatus = "REJECTED"
)

// AggregatorConsent is a user's permission to fetch their bank data.
type AggregatorConsent struct {
	ID         string        `json:"id"`
	URL        string        `json:"url"`
	Status     ConsentStatus `json:"status"`
	VUA        string        `json:"vua"`
	FITypes    []string      `json:"fi_types"`
	CreatedAt  time.Time     `json:"created_at"`
	ApprovedAt *time.Time    `json:"approved_at,omitempty"`
}

// Phone returns the phone number the consent was raised for, taken from the
// handle part of the VUA.
func (c AggregatorConsent) Phone() string {
	phone, _, _ := strings.Cut(c.VUA, "@")
	return phone
}

package domain

import "time"

// BureauAccount is one tradeline as reported by a credit bureau.
type BureauAccount struct {
	LenderName     string         `json:"lender_name"`
	AccountType    string         `json:"account_type"`
	Outstanding    LenientDecimal `json:"outstanding"`
	InterestRate   LenientDecimal `json:"interest_rate"`
	EMIAmount      LenientDecimal `json:"emi_amount"`
	Status         string         `json:"status"`
	Utilization    LenientDecimal `json:"utilization"`
	PaymentHistory LenientDecimal `json:"payment_history"`
}

// BureauReport is the result of a bureau pull.
type BureauReport struct {
	CreditScore int             `json:"credit_score"`
	Accounts    []BureauAccount `json:"accounts"`
	RawData     string          `json:"raw_data"`
}

// StoredBureauReport is a bureau pull kept encrypted at rest.
type StoredBureauReport struct {
	ID               string
	SubjectID        string
	CreditScore      int
	EncryptedRawData string
	PulledAt         time.Time
}

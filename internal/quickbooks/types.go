package quickbooks

import (
	"github.com/shopspring/decimal"
)

// Wire types for the QuickBooks Online v3 accounting API.
// Field names and casing follow the remote JSON contract exactly.

// Ref points to another entity, e.g. CustomerRef or ItemRef on an invoice line
type Ref struct {
	Value string `json:"value"`
	Name  string `json:"name,omitempty"`
}

type EmailAddress struct {
	Address string `json:"Address"`
}

type TelephoneNumber struct {
	FreeFormNumber string `json:"FreeFormNumber"`
}

type Customer struct {
	ID               string           `json:"Id,omitempty"`
	SyncToken        string           `json:"SyncToken,omitempty"`
	DisplayName      string           `json:"DisplayName"`
	GivenName        string           `json:"GivenName,omitempty"`
	FamilyName       string           `json:"FamilyName,omitempty"`
	PrimaryEmailAddr *EmailAddress    `json:"PrimaryEmailAddr,omitempty"`
	PrimaryPhone     *TelephoneNumber `json:"PrimaryPhone,omitempty"`
}

type Item struct {
	ID               string          `json:"Id,omitempty"`
	SyncToken        string          `json:"SyncToken,omitempty"`
	Name             string          `json:"Name"`
	Type             string          `json:"Type,omitempty"`
	IncomeAccountRef *Ref            `json:"IncomeAccountRef,omitempty"`
	UnitPrice        decimal.Decimal `json:"UnitPrice,omitempty"`
}

type Account struct {
	ID          string `json:"Id,omitempty"`
	Name        string `json:"Name,omitempty"`
	AccountType string `json:"AccountType,omitempty"`
}

type SalesItemLineDetail struct {
	ItemRef   Ref             `json:"ItemRef"`
	Qty       int             `json:"Qty,omitempty"`
	UnitPrice decimal.Decimal `json:"UnitPrice,omitempty"`
}

type Line struct {
	ID                  string               `json:"Id,omitempty"`
	Amount              decimal.Decimal      `json:"Amount"`
	DetailType          string               `json:"DetailType"`
	SalesItemLineDetail *SalesItemLineDetail `json:"SalesItemLineDetail,omitempty"`
	Description         string               `json:"Description,omitempty"`
}

type Invoice struct {
	ID          string          `json:"Id,omitempty"`
	SyncToken   string          `json:"SyncToken,omitempty"`
	DocNumber   string          `json:"DocNumber,omitempty"`
	CustomerRef Ref             `json:"CustomerRef"`
	TxnDate     string          `json:"TxnDate,omitempty"` // YYYY-MM-DD
	DueDate     string          `json:"DueDate,omitempty"`
	Line        []Line          `json:"Line"`
	Balance     decimal.Decimal `json:"Balance,omitempty"`

	// Sparse updates send only the changed fields plus SyncToken
	Sparse bool `json:"sparse,omitempty"`
}

// QueryResponse carries results of the SQL-like query endpoint.
// Only the entity named in the FROM clause is populated.
type QueryResponse struct {
	Customer []Customer `json:"Customer,omitempty"`
	Item     []Item     `json:"Item,omitempty"`
	Account  []Account  `json:"Account,omitempty"`
	Invoice  []Invoice  `json:"Invoice,omitempty"`
}

type queryEnvelope struct {
	QueryResponse QueryResponse `json:"QueryResponse"`
}

type customerEnvelope struct {
	Customer Customer `json:"Customer"`
}

type itemEnvelope struct {
	Item Item `json:"Item"`
}

type invoiceEnvelope struct {
	Invoice Invoice `json:"Invoice"`
}

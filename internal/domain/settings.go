package domain

// Well-known settings keys. The settings table is a plain key/value
// store with JSON values; these are the keys the ledger reads.
const (
	// SettingVATRates holds the VAT-rate-name -> percentage map.
	SettingVATRates = "taxasIVA"

	// SettingVATSinkUserID holds the id of the account that receives
	// the VAT portion of taxed transfers. Mandatory when any nonzero
	// rate is configured.
	SettingVATSinkUserID = "ivaDestinationUserId"
)

// Discipline gates per-discipline rule limits. Owned by the school
// CRUD subsystem; the ledger only reads it.
type Discipline struct {
	ID     string
	Name   string
	Active bool
}

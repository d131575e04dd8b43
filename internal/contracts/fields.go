package contracts

// SirionFields lists the 12 metadata columns in CLM import order.
var SirionFields = []string{
	"Customer (CK) Entity",
	"Supplier Entity",
	"Effective Date",
	"Expiration Date",
	"Term Type",
	"Governing Law",
	"Contract Type",
	"Contract Currency",
	"Payment Term",
	"Termination for Convenience",
	"Notice Period for Termination for Convenience",
	"Party with the Right to Terminate for Convenience",
}

// FieldValues returns the 12 Sirion field values in SirionFields order.
func (m Metadata) FieldValues() []string {
	return []string{
		m.CustomerEntity,
		m.SupplierEntity,
		m.EffectiveDate,
		m.ExpirationDate,
		m.TermType,
		m.GoverningLaw,
		m.ContractType,
		m.ContractCurrency,
		m.PaymentTerm,
		m.TerminationForConv,
		m.TerminationNotice,
		m.TerminationParty,
	}
}

// CriticalFields are the fields that should never come back empty; missing
// ones are surfaced in the result notes for manual review.
var CriticalFields = []string{
	"Customer (CK) Entity",
	"Supplier Entity",
	"Effective Date",
	"Contract Type",
}

// MissingCriticalFields returns the names of critical fields the model left
// empty or null.
func (m Metadata) MissingCriticalFields() []string {
	values := map[string]string{
		"Customer (CK) Entity": m.CustomerEntity,
		"Supplier Entity":      m.SupplierEntity,
		"Effective Date":       m.EffectiveDate,
		"Contract Type":        m.ContractType,
	}
	var missing []string
	for _, name := range CriticalFields {
		v := values[name]
		if v == "" || v == "null" {
			missing = append(missing, name)
		}
	}
	return missing
}

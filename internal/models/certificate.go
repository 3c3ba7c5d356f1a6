package models

// Certificate represents one issued certificate record.
//
// Every field is a string so the struct maps one-to-one onto the JSON shape
// persisted in the storage slot:
// {id, verificationCode, name, title, issuer, date, note, createdAt}.
// Records are immutable after creation; there is no update path, only
// create and delete.
type Certificate struct {
	// ID is an opaque unique identifier assigned at creation, never reused.
	ID string `json:"id"`

	// VerificationCode is a fixed-length upper-case alphanumeric token used
	// for public lookup. It is random, not cryptographically verifiable.
	VerificationCode string `json:"verificationCode"`

	// Name is the recipient name. Required non-empty, enforced at the
	// boundary rather than here.
	Name string `json:"name"`

	// Title is the certificate title or subject.
	Title string `json:"title"`

	// Issuer is the issuing entity name.
	Issuer string `json:"issuer"`

	// Date is the certificate's effective date in ISO 8601 date form
	// (YYYY-MM-DD).
	Date string `json:"date"`

	// Note is the free-text body. May be empty.
	Note string `json:"note"`

	// CreatedAt is the record creation instant in RFC 3339 form, set once.
	CreatedAt string `json:"createdAt"`
}

// Clone returns a copy of the record so callers cannot mutate store-owned
// state through a returned pointer.
func (c *Certificate) Clone() *Certificate {
	out := *c
	return &out
}

// CloneRecords deep-copies a record slice, preserving order.
func CloneRecords(records []Certificate) []Certificate {
	if records == nil {
		return nil
	}
	out := make([]Certificate, len(records))
	copy(out, records)
	return out
}

package models

// PlainFields is the decrypted content of an entry. It exists only in the
// client process while the vault is unlocked.
type PlainFields struct {
	SecretValue string
	Username    *string
	Notes       *string
}

// Merge applies the sensitive part of u over f. An empty Username or Notes
// clears the field.
func (f PlainFields) Merge(u EntryUpdate) PlainFields {
	out := f
	if u.SecretValue != nil {
		out.SecretValue = *u.SecretValue
	}
	if u.Username != nil {
		out.Username = nonEmpty(*u.Username)
	}
	if u.Notes != nil {
		out.Notes = nonEmpty(*u.Notes)
	}
	return out
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// NullableString normalises an optional string: nil and "" both become nil.
func NullableString(s *string) *string {
	if s == nil {
		return nil
	}
	return nonEmpty(*s)
}

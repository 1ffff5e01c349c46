package models

// TrustKey holds fetched signing-key material and the fingerprint
// derived from it. The zero value is the "no key" sentinel used when
// trust could not be established and the flow degrades.
type TrustKey struct {
	Raw         []byte
	Fingerprint string
}

// NoKey is the sentinel returned when key fetch or parsing failed and
// the registration continues with a relaxed signature policy.
var NoKey = TrustKey{}

// HasKey reports whether usable key material was obtained.
func (k TrustKey) HasKey() bool {
	return k.Fingerprint != ""
}

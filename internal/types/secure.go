package types

const redactedPlaceholder = "***REDACTED***"

var redactedJSON = []byte(`"***REDACTED***"`)

// SecretString holds a credential (the provider access key) and keeps it out
// of fmt output, slog attributes and JSON dumps. String and MarshalJSON both
// return a placeholder; Unmask returns the real value.
type SecretString string

// String returns a redacted placeholder instead of the raw value.
func (s SecretString) String() string {
	return redactedPlaceholder
}

// MarshalJSON returns the redacted placeholder as a JSON string.
func (s SecretString) MarshalJSON() ([]byte, error) {
	return redactedJSON, nil
}

// Unmask returns the raw plaintext value. Callers are limited to the code that
// writes the access_key query parameter.
func (s SecretString) Unmask() string {
	return string(s)
}

// IsEmpty reports whether no secret was supplied.
func (s SecretString) IsEmpty() bool {
	return s == ""
}

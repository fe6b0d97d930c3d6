package types

// redacted replaces secret values in logs and serialized output.
const redacted = "***REDACTED***"

var redactedJSON = []byte(`"***REDACTED***"`)

// SecretString is a string type that prevents accidental logging or
// serialization of sensitive values such as notification credentials. It
// overrides String() and MarshalJSON() to return a redacted placeholder.
//
// Use Unmask() to retrieve the raw plaintext when it is genuinely needed
// (e.g., building an Authorization header).
type SecretString string

// String returns a redacted placeholder instead of the raw value. Invoked by
// fmt functions and slog via the fmt.Stringer interface.
func (s SecretString) String() string {
	return redacted
}

// MarshalJSON returns the redacted placeholder as a JSON string so secrets
// never appear in serialized config dumps or API responses.
func (s SecretString) MarshalJSON() ([]byte, error) {
	return redactedJSON, nil
}

// Unmask returns the raw plaintext value of the secret. Usage should be
// limited to the point where the value leaves the process.
func (s SecretString) Unmask() string {
	return string(s)
}

package config

// SecretStringValue replaces actual value whenever secret is marshaled.
const SecretStringValue = "<secret>"

// SecretString is used for credentials (view counter token) which must never
// end up in logs, dumped configuration or debug reports.
type SecretString string

func (s SecretString) String() string {
	if len(s) == 0 {
		return ""
	}
	return SecretStringValue
}

// Reveal returns actual value, use only when talking to the remote side.
func (s SecretString) Reveal() string {
	return string(s)
}

func (s SecretString) MarshalJSON() ([]byte, error) {
	if len(s) == 0 {
		return []byte("null"), nil
	}
	return []byte(`"` + SecretStringValue + `"`), nil
}

func (s SecretString) MarshalYAML() (any, error) {
	if len(s) == 0 {
		return nil, nil
	}
	return SecretStringValue, nil
}

package domain

// Principal is the authenticated caller attached to a request.
type Principal struct {
	UserID string
	Email  string
	Source string
}

const (
	// SourceToken marks a principal resolved from a bearer access token.
	SourceToken = "jwt"
	// SourceService marks a principal authenticated with the provider admin key.
	SourceService = "service_key"
)

// IsService reports whether the principal came from the provider admin key.
func (p Principal) IsService() bool { return p.Source == SourceService }

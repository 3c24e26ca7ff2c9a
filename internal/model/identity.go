package model

// Provider is the mocked OAuth provider a user signed in with.
type Provider string

const (
	ProviderGoogle Provider = "google"
	ProviderGitHub Provider = "github"
)

// Providers lists the supported sign-in providers.
var Providers = []Provider{ProviderGoogle, ProviderGitHub}

// Valid reports whether p is a supported provider.
func (p Provider) Valid() bool {
	return p == ProviderGoogle || p == ProviderGitHub
}

// Identity is the signed-in user. It is created at login and never
// changes for the lifetime of the session.
type Identity struct {
	ID       string   `json:"id"`
	Email    string   `json:"email"`
	Name     string   `json:"name"`
	Avatar   string   `json:"avatar,omitempty"`
	Provider Provider `json:"provider"`
}

package session

import (
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"

	"github.com/nhle/tasknest/internal/model"
)

// avatarURL is shared by every mock identity.
const avatarURL = "https://images.unsplash.com/photo-1472099645785-5658abf4ff4e?w=40&h=40&fit=crop&crop=face"

// redirectURL is where a real provider would send the user back to.
const redirectURL = "http://localhost:8085/oauth2callback"

// profile describes the mock account a provider signs in as.
type profile struct {
	email    string
	name     string
	endpoint oauth2.Endpoint
	scopes   []string
}

var profiles = map[model.Provider]profile{
	model.ProviderGoogle: {
		email:    "user@gmail.com",
		name:     "Google User",
		endpoint: endpoints.Google,
		scopes:   []string{"openid", "email", "profile"},
	},
	model.ProviderGitHub: {
		email:    "user@github.com",
		name:     "GitHub User",
		endpoint: endpoints.GitHub,
		scopes:   []string{"read:user", "user:email"},
	},
}

func lookup(p model.Provider) (profile, error) {
	prof, ok := profiles[p]
	if !ok {
		return profile{}, fmt.Errorf("%w: %q", ErrUnsupportedProvider, p)
	}
	return prof, nil
}

// MockIdentity derives the identity a provider signs in as. The same
// provider always yields the same identity, so a returning user finds
// the tasks saved under their scope.
func MockIdentity(p model.Provider) (model.Identity, error) {
	prof, err := lookup(p)
	if err != nil {
		return model.Identity{}, err
	}
	id := uuid.NewSHA1(uuid.NameSpaceURL, []byte(string(p)+":"+prof.email))
	return model.Identity{
		ID:       id.String(),
		Email:    prof.email,
		Name:     prof.name,
		Avatar:   avatarURL,
		Provider: p,
	}, nil
}

// AuthURL returns the consent page URL the provider would be opened at.
// No token exchange ever happens against it.
func AuthURL(p model.Provider, state string) (string, error) {
	prof, err := lookup(p)
	if err != nil {
		return "", err
	}
	cfg := &oauth2.Config{
		ClientID:    "tasknest",
		Endpoint:    prof.endpoint,
		RedirectURL: redirectURL,
		Scopes:      prof.scopes,
	}
	return cfg.AuthCodeURL(state, oauth2.AccessTypeOffline), nil
}

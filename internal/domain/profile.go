package domain

import "context"

// Profile is the public profile of an authenticated user. Its ID is shared
// with the authentication identity. Read-only from this service's perspective.
// swagger:model Profile
type Profile struct {
	ID        string  `json:"id"`
	FullName  *string `json:"full_name,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
	Email     string  `json:"email"`
}

// DisplayName returns the full name, or the placeholder organizer name when unset.
func (p *Profile) DisplayName() string {
	if p == nil || p.FullName == nil || *p.FullName == "" {
		return PlaceholderOrganizerName
	}
	return *p.FullName
}

// Avatar returns the avatar URL, or the placeholder avatar when unset.
func (p *Profile) Avatar() string {
	if p == nil || p.AvatarURL == nil || *p.AvatarURL == "" {
		return PlaceholderOrganizerAvatar
	}
	return *p.AvatarURL
}

// ProfileRepository defines the interface for profile storage
type ProfileRepository interface {
	GetByID(ctx context.Context, id string) (*Profile, error)
}

// Identity is the ambient authenticated user.
type Identity struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// TokenVerifier verifies an access token and returns the authenticated identity.
type TokenVerifier interface {
	Verify(token string) (*Identity, error)
}

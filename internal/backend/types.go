package backend

import "time"

// UserRecord is the identity and profile metadata returned by the backend.
type UserRecord struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	DisplayName  string         `json:"displayName,omitempty"`
	Role         string         `json:"role,omitempty"`
	AccountType  string         `json:"accountType,omitempty"`
	UserMetadata map[string]any `json:"user_metadata,omitempty"`
}

// MetadataString returns user_metadata[key] when it holds a string.
func (u *UserRecord) MetadataString(key string) string {
	if u == nil || u.UserMetadata == nil {
		return ""
	}
	s, _ := u.UserMetadata[key].(string)
	return s
}

// AuthResult is the answer to a login or registration.
type AuthResult struct {
	Token string      `json:"token"`
	User  *UserRecord `json:"user"`
}

// Account types. They are mutually exclusive.
const (
	AccountPartnership = "partnership"
	AccountSponsorship = "sponsorship"
)

// ValidAccountType reports whether t names one of the two account types.
func ValidAccountType(t string) bool {
	return t == AccountPartnership || t == AccountSponsorship
}

// Business is the canonical business record. Backends that use other
// field spellings are normalized before a Business is built.
type Business struct {
	ID                string   `json:"id"`
	OwnerID           string   `json:"ownerId"`
	Name              string   `json:"name"`
	Description       string   `json:"description,omitempty"`
	Industry          string   `json:"industry,omitempty"`
	AccountType       string   `json:"accountType,omitempty"`
	Category          string   `json:"category,omitempty"`
	Location          string   `json:"location,omitempty"`
	Website           string   `json:"website,omitempty"`
	LogoURL           string   `json:"logoUrl,omitempty"`
	PartnershipOffers []string `json:"partnershipOffers"`
	SponsorshipOffers []string `json:"sponsorshipOffers"`
	Gallery           []string `json:"gallery"`
}

type Post struct {
	ID         string    `json:"id"`
	AuthorID   string    `json:"authorId"`
	AuthorName string    `json:"authorName,omitempty"`
	Content    string    `json:"content"`
	ImageURL   string    `json:"imageUrl,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

type NewPost struct {
	AuthorID string `json:"authorId,omitempty"`
	Content  string `json:"content"`
	ImageURL string `json:"imageUrl,omitempty"`
}

type AppointmentStatus string

const (
	AppointmentPending   AppointmentStatus = "pending"
	AppointmentAccepted  AppointmentStatus = "accepted"
	AppointmentDeclined  AppointmentStatus = "declined"
	AppointmentCancelled AppointmentStatus = "cancelled"
)

func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentPending, AppointmentAccepted, AppointmentDeclined, AppointmentCancelled:
		return true
	}
	return false
}

type Appointment struct {
	ID          string            `json:"id"`
	RequesterID string            `json:"requesterId"`
	RecipientID string            `json:"recipientId"`
	BusinessID  string            `json:"businessId,omitempty"`
	Title       string            `json:"title"`
	Notes       string            `json:"notes,omitempty"`
	ScheduledAt time.Time         `json:"scheduledAt"`
	Status      AppointmentStatus `json:"status"`
}

type NewAppointment struct {
	RecipientID string    `json:"recipientId"`
	BusinessID  string    `json:"businessId,omitempty"`
	Title       string    `json:"title"`
	Notes       string    `json:"notes,omitempty"`
	ScheduledAt time.Time `json:"scheduledAt"`
}

type Message struct {
	ID          string    `json:"id"`
	SenderID    string    `json:"senderId"`
	RecipientID string    `json:"recipientId"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"createdAt"`
}

type NewMessage struct {
	RecipientID string `json:"recipientId"`
	Content     string `json:"content"`
}

// Package backend defines the data-access boundary between the session
// shell and whichever backend a deployment talks to.
package backend

import (
	"context"
	"io"
)

//go:generate mockgen -destination=mocks/mock_backend.go -package=mocks . AuthProvider,BusinessRepository,PostRepository,AppointmentRepository

// AuthProvider signs users in, registers them, and updates their profile.
type AuthProvider interface {
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Register(ctx context.Context, email, password string, metadata map[string]any) (*AuthResult, error)
	UpdateProfile(ctx context.Context, fields map[string]any) (*UserRecord, error)
}

// UserDirectory reads user profiles.
type UserDirectory interface {
	Profile(ctx context.Context) (*UserRecord, error)
	ProfileByID(ctx context.Context, id string) (*UserRecord, error)
	AllUsers(ctx context.Context) ([]UserRecord, error)
}

type BusinessRepository interface {
	ListBusinesses(ctx context.Context) ([]Business, error)
	GetBusiness(ctx context.Context, id string) (*Business, error)
	CreateBusiness(ctx context.Context, b Business) (*Business, error)
	BusinessCategories(ctx context.Context, accountType string) ([]string, error)
	BusinessesByCategory(ctx context.Context, accountType, category string) ([]Business, error)
}

type PostRepository interface {
	ListPosts(ctx context.Context) ([]Post, error)
	CreatePost(ctx context.Context, p NewPost) (*Post, error)
	DeletePost(ctx context.Context, id string) error
}

type AppointmentRepository interface {
	ListAppointments(ctx context.Context) ([]Appointment, error)
	CreateAppointment(ctx context.Context, a NewAppointment) (*Appointment, error)
	UpdateAppointmentStatus(ctx context.Context, id string, status AppointmentStatus) (*Appointment, error)
}

type MessageRepository interface {
	ListMessages(ctx context.Context) ([]Message, error)
	SendMessage(ctx context.Context, m NewMessage) (*Message, error)
}

// Uploader stores a file and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, filename string, r io.Reader) (string, error)
}

// Backend bundles one implementation of every repository. A deployment
// selects exactly one implementation per field.
type Backend struct {
	Auth         AuthProvider
	Users        UserDirectory
	Businesses   BusinessRepository
	Posts        PostRepository
	Appointments AppointmentRepository
	Messages     MessageRepository
	Uploads      Uploader
}

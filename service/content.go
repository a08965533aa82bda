package service

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/loganlanou/colink-venture/internal/backend"
	"github.com/loganlanou/colink-venture/internal/notify"
	"github.com/loganlanou/colink-venture/internal/session"
)

// authed wraps a content action: it builds the request, requires a signed
// in caller and reports a failure as a toast titled title.
func (s *Service) authed(title string, fn func(c echo.Context, r *request, user *backend.UserRecord) (any, error)) echo.HandlerFunc {
	return func(c echo.Context) error {
		r, err := s.newRequest(c)
		if err != nil {
			return err
		}

		user, err := r.user()
		if err != nil {
			r.flash.Notify(notify.Error(title, "Please sign in to continue."))
			return s.respond(c, r, nil, err)
		}

		data, err := fn(c, r, user)
		if err != nil {
			slog.Warn("action failed", "action", title, "user", user.ID, "error", err)
			r.flash.Notify(notify.Error(title, publicMessage(err)))
		}
		return s.respond(c, r, data, err)
	}
}

type postRequest struct {
	Content  string `json:"content"`
	ImageURL string `json:"imageUrl,omitempty"`
}

func (s *Service) handleCreatePost(c echo.Context) error {
	return s.authed("Couldn't publish post", func(c echo.Context, r *request, user *backend.UserRecord) (any, error) {
		var req postRequest
		if err := bind(c, &req); err != nil {
			return nil, err
		}
		req.Content = strings.TrimSpace(req.Content)
		if req.Content == "" && req.ImageURL == "" {
			return nil, fmt.Errorf("%w: a post needs text or an image", session.ErrValidation)
		}

		post, err := r.backend.Posts.CreatePost(r.ctx, backend.NewPost{
			AuthorID: user.ID,
			Content:  req.Content,
			ImageURL: req.ImageURL,
		})
		if err != nil {
			return nil, err
		}
		r.flash.Notify(notify.Info("Post published", ""))
		return post, nil
	})(c)
}

func (s *Service) handleDeletePost(c echo.Context) error {
	return s.authed("Couldn't delete post", func(c echo.Context, r *request, _ *backend.UserRecord) (any, error) {
		if err := r.backend.Posts.DeletePost(r.ctx, c.Param("id")); err != nil {
			return nil, err
		}
		r.flash.Notify(notify.Info("Post deleted", ""))
		return nil, nil
	})(c)
}

type businessRequest struct {
	Name              string   `json:"name"`
	Description       string   `json:"description,omitempty"`
	Industry          string   `json:"industry,omitempty"`
	AccountType       string   `json:"accountType,omitempty"`
	Category          string   `json:"category,omitempty"`
	Location          string   `json:"location,omitempty"`
	Website           string   `json:"website,omitempty"`
	LogoURL           string   `json:"logoUrl,omitempty"`
	PartnershipOffers []string `json:"partnershipOffers,omitempty"`
	SponsorshipOffers []string `json:"sponsorshipOffers,omitempty"`
	Gallery           []string `json:"gallery,omitempty"`
}

// handleCreateBusiness lists a business owned by the caller. The account
// type defaults to the session's.
func (s *Service) handleCreateBusiness(c echo.Context) error {
	return s.authed("Couldn't list business", func(c echo.Context, r *request, user *backend.UserRecord) (any, error) {
		var req businessRequest
		if err := bind(c, &req); err != nil {
			return nil, err
		}
		req.Name = strings.TrimSpace(req.Name)
		if req.AccountType == "" {
			req.AccountType = r.session.Session().AccountType
		}
		switch {
		case req.Name == "":
			return nil, fmt.Errorf("%w: a business name is required", session.ErrValidation)
		case !backend.ValidAccountType(req.AccountType):
			return nil, fmt.Errorf("%w: choose partnership or sponsorship", session.ErrValidation)
		}

		b, err := r.backend.Businesses.CreateBusiness(r.ctx, backend.Business{
			OwnerID:           user.ID,
			Name:              req.Name,
			Description:       req.Description,
			Industry:          req.Industry,
			AccountType:       req.AccountType,
			Category:          req.Category,
			Location:          req.Location,
			Website:           req.Website,
			LogoURL:           req.LogoURL,
			PartnershipOffers: orEmpty(req.PartnershipOffers),
			SponsorshipOffers: orEmpty(req.SponsorshipOffers),
			Gallery:           orEmpty(req.Gallery),
		})
		if err != nil {
			return nil, err
		}
		r.flash.Notify(notify.Info("Business listed", b.Name+" is now visible to other members."))
		return b, nil
	})(c)
}

func orEmpty(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}

type appointmentRequest struct {
	RecipientID string    `json:"recipientId"`
	BusinessID  string    `json:"businessId,omitempty"`
	Title       string    `json:"title"`
	Notes       string    `json:"notes,omitempty"`
	ScheduledAt time.Time `json:"scheduledAt"`
}

func (s *Service) handleCreateAppointment(c echo.Context) error {
	return s.authed("Couldn't request appointment", func(c echo.Context, r *request, user *backend.UserRecord) (any, error) {
		var req appointmentRequest
		if err := bind(c, &req); err != nil {
			return nil, err
		}
		req.Title = strings.TrimSpace(req.Title)
		switch {
		case req.RecipientID == "":
			return nil, fmt.Errorf("%w: a recipient is required", session.ErrValidation)
		case req.RecipientID == user.ID:
			return nil, fmt.Errorf("%w: you cannot book an appointment with yourself", session.ErrValidation)
		case req.Title == "":
			return nil, fmt.Errorf("%w: a title is required", session.ErrValidation)
		case req.ScheduledAt.IsZero():
			return nil, fmt.Errorf("%w: a date and time is required", session.ErrValidation)
		}

		appt, err := r.backend.Appointments.CreateAppointment(r.ctx, backend.NewAppointment(req))
		if err != nil {
			return nil, err
		}
		r.flash.Notify(notify.Info("Appointment requested", "We'll let you know when they respond."))
		return appt, nil
	})(c)
}

type statusRequest struct {
	Status backend.AppointmentStatus `json:"status"`
}

func (s *Service) handleUpdateAppointmentStatus(c echo.Context) error {
	return s.authed("Couldn't update appointment", func(c echo.Context, r *request, _ *backend.UserRecord) (any, error) {
		var req statusRequest
		if err := bind(c, &req); err != nil {
			return nil, err
		}
		if !req.Status.Valid() {
			return nil, fmt.Errorf("%w: unknown appointment status %q", session.ErrValidation, req.Status)
		}

		appt, err := r.backend.Appointments.UpdateAppointmentStatus(r.ctx, c.Param("id"), req.Status)
		if err != nil {
			return nil, err
		}
		r.flash.Notify(notify.Info("Appointment "+string(appt.Status), ""))
		return appt, nil
	})(c)
}

type messageRequest struct {
	RecipientID string `json:"recipientId"`
	Content     string `json:"content"`
}

func (s *Service) handleSendMessage(c echo.Context) error {
	return s.authed("Couldn't send message", func(c echo.Context, r *request, _ *backend.UserRecord) (any, error) {
		var req messageRequest
		if err := bind(c, &req); err != nil {
			return nil, err
		}
		req.Content = strings.TrimSpace(req.Content)
		if req.RecipientID == "" || req.Content == "" {
			return nil, fmt.Errorf("%w: a recipient and a message are required", session.ErrValidation)
		}

		msg, err := r.backend.Messages.SendMessage(r.ctx, backend.NewMessage(req))
		if err != nil {
			return nil, err
		}
		return msg, nil
	})(c)
}

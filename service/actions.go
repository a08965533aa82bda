package service

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/loganlanou/colink-venture/internal/backend"
	"github.com/loganlanou/colink-venture/internal/gateway"
	"github.com/loganlanou/colink-venture/internal/notify"
	"github.com/loganlanou/colink-venture/internal/session"
)

var errBadRequest = errors.New("bad request")

// ActionResult is the JSON answer to every action. Redirect is where the
// client should navigate next, if anywhere.
type ActionResult struct {
	OK       bool           `json:"ok"`
	Redirect string         `json:"redirect,omitempty"`
	Toasts   []notify.Toast `json:"toasts"`
	Data     any            `json:"data,omitempty"`
	Error    string         `json:"error,omitempty"`
}

func (s *Service) respond(c echo.Context, r *request, data any, err error) error {
	result := ActionResult{
		OK:       err == nil,
		Redirect: r.redirect,
		Data:     data,
	}
	if err != nil {
		result.Error = publicMessage(err)
	}
	result.Toasts = r.flash.Pop()
	return c.JSON(statusFor(err), result)
}

func statusFor(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var apiErr *backend.APIError
	switch {
	case errors.Is(err, session.ErrValidation), errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrAuthRejected), errors.Is(err, session.ErrNotAuthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, session.ErrNetworkFailure), errors.Is(err, gateway.ErrTransport):
		return http.StatusBadGateway
	case errors.Is(err, backend.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &apiErr):
		if apiErr.Status >= 400 && apiErr.Status < 500 {
			return apiErr.Status
		}
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// publicMessage is the error text safe to show the caller.
func publicMessage(err error) string {
	var apiErr *backend.APIError
	switch {
	case errors.Is(err, session.ErrValidation), errors.Is(err, errBadRequest):
		msg := err.Error()
		for _, sentinel := range []error{session.ErrValidation, errBadRequest} {
			msg = strings.TrimPrefix(msg, sentinel.Error()+": ")
		}
		return msg
	case errors.As(err, &apiErr) && apiErr.Message != "":
		return apiErr.Message
	}
	return http.StatusText(statusFor(err))
}

func bind(c echo.Context, v any) error {
	if err := c.Bind(v); err != nil {
		return fmt.Errorf("%w: malformed request body", errBadRequest)
	}
	return nil
}

type credentialsRequest struct {
	Email    string         `json:"email"`
	Password string         `json:"password"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

func (s *Service) handleSignIn(c echo.Context) error {
	r, err := s.newRequest(c)
	if err != nil {
		return err
	}

	var req credentialsRequest
	if err := bind(c, &req); err != nil {
		return s.respond(c, r, nil, err)
	}

	r.session.Load()
	err = r.session.SignIn(r.ctx, req.Email, req.Password)
	return s.respond(c, r, sessionData(r, err), err)
}

func (s *Service) handleSignUp(c echo.Context) error {
	r, err := s.newRequest(c)
	if err != nil {
		return err
	}

	var req credentialsRequest
	if err := bind(c, &req); err != nil {
		return s.respond(c, r, nil, err)
	}

	r.session.Load()
	err = r.session.SignUp(r.ctx, req.Email, req.Password, req.Metadata)
	return s.respond(c, r, sessionData(r, err), err)
}

func (s *Service) handleSignOut(c echo.Context) error {
	r, err := s.newRequest(c)
	if err != nil {
		return err
	}

	r.session.SignOut()
	return s.respond(c, r, nil, nil)
}

func (s *Service) handleUpdateProfile(c echo.Context) error {
	r, err := s.newRequest(c)
	if err != nil {
		return err
	}

	var fields map[string]any
	if err := bind(c, &fields); err != nil {
		return s.respond(c, r, nil, err)
	}
	if len(fields) == 0 {
		return s.respond(c, r, nil, fmt.Errorf("%w: no profile fields given", errBadRequest))
	}

	r.session.Load()
	err = r.session.UpdateProfile(r.ctx, fields)
	return s.respond(c, r, sessionData(r, err), err)
}

type onboardingRequest struct {
	AccountType string `json:"accountType"`
}

func (s *Service) handleCompleteOnboarding(c echo.Context) error {
	r, err := s.newRequest(c)
	if err != nil {
		return err
	}

	var req onboardingRequest
	if err := bind(c, &req); err != nil {
		return s.respond(c, r, nil, err)
	}

	r.session.Load()
	err = r.session.CompleteOnboarding(req.AccountType)
	return s.respond(c, r, sessionData(r, err), err)
}

func (s *Service) handleSkipNavigation(c echo.Context) error {
	r, err := s.newRequest(c)
	if err != nil {
		return err
	}

	r.session.SkipNextAutoNavigation()
	return s.respond(c, r, nil, nil)
}

// sessionData is the caller's session after a successful session action.
func sessionData(r *request, err error) any {
	if err != nil {
		return nil
	}
	return r.session.Session()
}

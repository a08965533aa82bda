package dashboard

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/loganlanou/colink-venture/internal/backend"
	"github.com/loganlanou/colink-venture/internal/shaping"
)

// Feed sections, as reported in Feed.Failed.
const (
	SectionBusinesses   = "businesses"
	SectionPosts        = "posts"
	SectionAppointments = "appointments"
)

type Sources struct {
	Businesses   backend.BusinessRepository
	Posts        backend.PostRepository
	Appointments backend.AppointmentRepository
}

// Feed is what the dashboard shows. A section whose fetch failed is empty
// and named in Failed.
type Feed struct {
	Businesses   []backend.Business    `json:"businesses"`
	Posts        []backend.Post        `json:"posts"`
	Appointments []backend.Appointment `json:"appointments"`
	Failed       []string              `json:"failed,omitempty"`
}

// LoadFeed fetches the three sections concurrently. Businesses owned by
// userID are left out and the list is cut to one listing page.
func LoadFeed(ctx context.Context, src Sources, userID string) Feed {
	feed := Feed{
		Businesses:   []backend.Business{},
		Posts:        []backend.Post{},
		Appointments: []backend.Appointment{},
	}

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	fail := func(section string, err error) {
		slog.Warn("dashboard section failed", "section", section, "error", err)
		mu.Lock()
		feed.Failed = append(feed.Failed, section)
		mu.Unlock()
	}

	if src.Businesses != nil {
		g.Go(func() error {
			list, err := src.Businesses.ListBusinesses(ctx)
			if err != nil {
				fail(SectionBusinesses, err)
				return nil
			}
			page := shaping.Paginate(shaping.ExcludeOwner(list, userID), 1, shaping.ListingPageSize)
			mu.Lock()
			feed.Businesses = page.Items
			mu.Unlock()
			return nil
		})
	}

	if src.Posts != nil {
		g.Go(func() error {
			posts, err := src.Posts.ListPosts(ctx)
			if err != nil {
				fail(SectionPosts, err)
				return nil
			}
			if posts != nil {
				mu.Lock()
				feed.Posts = posts
				mu.Unlock()
			}
			return nil
		})
	}

	if src.Appointments != nil {
		g.Go(func() error {
			appts, err := src.Appointments.ListAppointments(ctx)
			if err != nil {
				fail(SectionAppointments, err)
				return nil
			}
			if appts != nil {
				mu.Lock()
				feed.Appointments = appts
				mu.Unlock()
			}
			return nil
		})
	}

	_ = g.Wait()
	return feed
}

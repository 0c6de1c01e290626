// Package catalog holds the salon's sellable services and team members.
package catalog

import (
	"errors"
	"sort"
	"strings"
	"time"
)

// ErrNotFound is returned when a service or team member id is unknown.
var ErrNotFound = errors.New("catalog: not found")

// Service is a sellable treatment. Duration is in minutes, Price in Currency units.
type Service struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Description     string `json:"description"`
	Duration        int    `json:"duration"`
	Price           int    `json:"price"`
	Category        string `json:"category"`
	ImageURL        string `json:"imageUrl"`
	IsCustomizable  bool   `json:"isCustomizable,omitempty"`
	PricePerUnit    bool   `json:"pricePerUnit,omitempty"`
	DurationPerUnit bool   `json:"durationPerUnit,omitempty"`
}

// Contribution returns the price and duration the service adds to a booking.
// Non-customizable services ignore quantity entirely.
func (s Service) Contribution(quantity int) (price, duration int) {
	if !s.IsCustomizable {
		return s.Price, s.Duration
	}
	if quantity < 1 {
		quantity = 1
	}
	price, duration = s.Price, s.Duration
	if s.PricePerUnit {
		price *= quantity
	}
	if s.DurationPerUnit {
		duration *= quantity
	}
	return price, duration
}

// TeamMember is a professional who can take appointments.
type TeamMember struct {
	ID              int    `json:"id"`
	Name            string `json:"name"`
	Role            string `json:"role"`
	Specialty       string `json:"specialty"`
	ImageURL        string `json:"imageUrl"`
	UnavailableDays []int  `json:"unavailableDays"`
}

// UnavailableOn reports whether the member does not work on the given weekday.
func (m TeamMember) UnavailableOn(day time.Weekday) bool {
	for _, d := range m.UnavailableDays {
		if d == int(day) {
			return true
		}
	}
	return false
}

// Salon carries the public contact details used in emails and calendar files.
type Salon struct {
	Name          string `json:"name"`
	Currency      string `json:"currency"`
	WhatsAppLink  string `json:"whatsappLink"`
	InstagramLink string `json:"instagramLink"`
	BookingLink   string `json:"bookingLink"`
}

// Catalog is an immutable view over services and team.
type Catalog struct {
	salon    Salon
	services []Service
	team     []TeamMember
	byID     map[string]Service
	byMember map[int]TeamMember
}

// New builds a catalog, validating the invariants of every entry.
func New(salon Salon, services []Service, team []TeamMember) (*Catalog, error) {
	c := &Catalog{
		salon:    salon,
		services: append([]Service(nil), services...),
		team:     append([]TeamMember(nil), team...),
		byID:     make(map[string]Service, len(services)),
		byMember: make(map[int]TeamMember, len(team)),
	}
	for _, s := range services {
		if strings.TrimSpace(s.ID) == "" {
			return nil, errors.New("catalog: service id required")
		}
		if s.Price < 0 || s.Duration < 0 {
			return nil, errors.New("catalog: service " + s.ID + " has negative price or duration")
		}
		if _, dup := c.byID[s.ID]; dup {
			return nil, errors.New("catalog: duplicate service " + s.ID)
		}
		c.byID[s.ID] = s
	}
	for _, m := range team {
		for _, d := range m.UnavailableDays {
			if d < 0 || d > 6 {
				return nil, errors.New("catalog: team member " + m.Name + " has weekday out of range")
			}
		}
		if _, dup := c.byMember[m.ID]; dup {
			return nil, errors.New("catalog: duplicate team member " + m.Name)
		}
		c.byMember[m.ID] = m
	}
	return c, nil
}

// Salon returns the salon contact details.
func (c *Catalog) Salon() Salon { return c.salon }

// Services returns every service in display order.
func (c *Catalog) Services() []Service {
	return append([]Service(nil), c.services...)
}

// Team returns every team member in display order.
func (c *Catalog) Team() []TeamMember {
	return append([]TeamMember(nil), c.team...)
}

// Service looks up a service by id.
func (c *Catalog) Service(id string) (Service, error) {
	s, ok := c.byID[strings.TrimSpace(id)]
	if !ok {
		return Service{}, ErrNotFound
	}
	return s, nil
}

// Member looks up a team member by id.
func (c *Catalog) Member(id int) (TeamMember, error) {
	m, ok := c.byMember[id]
	if !ok {
		return TeamMember{}, ErrNotFound
	}
	return m, nil
}

// Categories lists the distinct service categories, sorted.
func (c *Catalog) Categories() []string {
	seen := map[string]struct{}{}
	var out []string
	for _, s := range c.services {
		if _, ok := seen[s.Category]; ok {
			continue
		}
		seen[s.Category] = struct{}{}
		out = append(out, s.Category)
	}
	sort.Strings(out)
	return out
}

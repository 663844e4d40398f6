package domain

import (
	"context"
	"time"
)

// EventCategory is one of the fixed event-type tags an organizer can pick.
type EventCategory string

const (
	CategoryWorkshop           EventCategory = "Workshop"
	CategorySeminar            EventCategory = "Seminar"
	CategoryGuestLecture       EventCategory = "Guest Lecture"
	CategoryNetworkingEvent    EventCategory = "Networking Event"
	CategoryHackathon          EventCategory = "Hackathon"
	CategoryCompetition        EventCategory = "Competition"
	CategoryCareerFair         EventCategory = "Career Fair"
	CategoryCulturalFest       EventCategory = "Cultural Fest"
	CategoryMusicConcert       EventCategory = "Music Concert"
	CategoryArtExhibition      EventCategory = "Art Exhibition"
	CategoryMovieNight         EventCategory = "Movie Night"
	CategorySocialMixer        EventCategory = "Social Mixer"
	CategoryFoodFestival       EventCategory = "Food Festival"
	CategorySportsTournament   EventCategory = "Sports Tournament"
	CategoryFitnessSession     EventCategory = "Fitness Session"
	CategoryOutdoorTrip        EventCategory = "Outdoor Trip"
	CategoryMarathon           EventCategory = "Marathon"
	CategoryESportsCompetition EventCategory = "E-Sports Competition"
	CategoryCharityDrive       EventCategory = "Charity Drive"
	CategoryVolunteerDay       EventCategory = "Volunteer Day"
	CategoryAwarenessCampaign  EventCategory = "Awareness Campaign"
	CategoryClubMeeting        EventCategory = "Club Meeting"
	CategoryInfoSession        EventCategory = "Info Session"
)

var eventCategories = []EventCategory{
	CategoryWorkshop, CategorySeminar, CategoryGuestLecture, CategoryNetworkingEvent,
	CategoryHackathon, CategoryCompetition, CategoryCareerFair, CategoryCulturalFest,
	CategoryMusicConcert, CategoryArtExhibition, CategoryMovieNight, CategorySocialMixer,
	CategoryFoodFestival, CategorySportsTournament, CategoryFitnessSession, CategoryOutdoorTrip,
	CategoryMarathon, CategoryESportsCompetition, CategoryCharityDrive, CategoryVolunteerDay,
	CategoryAwarenessCampaign, CategoryClubMeeting, CategoryInfoSession,
}

// EventCategories returns all accepted categories in display order.
func EventCategories() []EventCategory {
	out := make([]EventCategory, len(eventCategories))
	copy(out, eventCategories)
	return out
}

// Valid reports whether c is one of the fixed categories.
func (c EventCategory) Valid() bool {
	for _, known := range eventCategories {
		if c == known {
			return true
		}
	}
	return false
}

// Event represents a university event published by an organizer.
// swagger:model Event
type Event struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Date        time.Time     `json:"date"`
	Location    string        `json:"location"`
	Category    EventCategory `json:"category"`
	ImageURL    string        `json:"image_url"`
	// Capacity is the hard ceiling on registrations; nil means unlimited.
	Capacity *int `json:"capacity"`
	// SeatsRemaining is maintained by strict admission; nil when Capacity is nil.
	SeatsRemaining *int      `json:"seats_remaining"`
	OwnerID        string    `json:"owner_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewEvent returns a new Event with the given fields. ID is typically set by the repository on create.
// SeatsRemaining starts equal to capacity.
func NewEvent(title, description string, date time.Time, location string, category EventCategory, imageURL string, capacity *int, ownerID string, createdAt, updatedAt time.Time) *Event {
	var seats *int
	if capacity != nil {
		c := *capacity
		seats = &c
	}
	return &Event{
		Title:          title,
		Description:    description,
		Date:           date,
		Location:       location,
		Category:       category,
		ImageURL:       imageURL,
		Capacity:       capacity,
		SeatsRemaining: seats,
		OwnerID:        ownerID,
		CreatedAt:      createdAt,
		UpdatedAt:      updatedAt,
	}
}

// HasCapacity reports whether the event limits registrations.
func (e *Event) HasCapacity() bool {
	return e.Capacity != nil
}

// HasOccurred reports whether the event date is strictly before now.
func (e *Event) HasOccurred(now time.Time) bool {
	return e.Date.Before(now)
}

// CanBeManagedBy reports whether p may mutate the event or view its attendees.
func (e *Event) CanBeManagedBy(p *Principal) bool {
	if p == nil {
		return false
	}
	return p.IsSuperAdmin() || p.UserID == e.OwnerID
}

// EventUpdate carries the optional fields of a partial event update. Nil fields are left unchanged.
// ClearCapacity removes the capacity limit and takes precedence over Capacity.
type EventUpdate struct {
	Title         *string
	Description   *string
	Date          *time.Time
	Location      *string
	Category      *EventCategory
	ImageURL      *string
	Capacity      *int
	ClearCapacity bool
}

// Empty reports whether the update changes nothing.
func (u *EventUpdate) Empty() bool {
	return u.Title == nil && u.Description == nil && u.Date == nil && u.Location == nil &&
		u.Category == nil && u.ImageURL == nil && u.Capacity == nil && !u.ClearCapacity
}

// EventRepository defines the interface for event storage
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	// ListUpcoming returns events dated at or after from, ordered by date ascending, plus the total count.
	ListUpcoming(ctx context.Context, from time.Time, params PaginationParams) ([]*Event, int, error)
	ListByOwnerID(ctx context.Context, ownerID string) ([]*Event, error)
	// Update applies upd. A capacity change shifts SeatsRemaining by the same delta and fails with
	// ErrInvalidInput when that would leave fewer seats than current registrations.
	Update(ctx context.Context, eventID string, upd *EventUpdate) (*Event, error)
	Delete(ctx context.Context, id string) error
}

// EventService defines the business logic for publishing and managing events.
type EventService interface {
	CreateEvent(ctx context.Context, event *Event) error
	GetEvent(ctx context.Context, eventID string) (*Event, error)
	ListUpcomingEvents(ctx context.Context, params PaginationParams) ([]*Event, int, error)
	ListEventsByOwner(ctx context.Context, ownerID string) ([]*Event, error)
	UpdateEvent(ctx context.Context, eventID string, principal *Principal, upd *EventUpdate) (*Event, error)
	// DeleteEvent removes every registration of the event and then the event itself.
	// It returns the number of registrations removed.
	DeleteEvent(ctx context.Context, eventID string, principal *Principal) (int64, error)
}

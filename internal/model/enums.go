package model

// Role is the job a user has at the venue. It is informational only.
type Role string

const (
	RoleAdmin        Role = "Admin"
	RoleBooker       Role = "Booker"
	RoleDoor         Role = "Door"
	RoleEventManager Role = "Event Manager"
	RoleOther        Role = "Other"
)

// Roles lists every accepted role in display order.
var Roles = []Role{RoleAdmin, RoleBooker, RoleDoor, RoleEventManager, RoleOther}

// ArtistType classifies a performer.
type ArtistType string

const (
	ArtistDJ   ArtistType = "DJ"
	ArtistLive ArtistType = "Live"
	ArtistDrag ArtistType = "Drag Performance"
)

var ArtistTypes = []ArtistType{ArtistDJ, ArtistLive, ArtistDrag}

// Category of an event; Concert when not given.
type Category string

const (
	CategoryConcert Category = "Concert"
	CategoryRave    Category = "Rave"
)

var Categories = []Category{CategoryConcert, CategoryRave}

// EventState is the planning status of an event.
type EventState string

const (
	StateConfirmed EventState = "Confirmed"
	StateOption    EventState = "Option"
	StateIdea      EventState = "Idea"
	StateCancelled EventState = "Cancelled"
)

var EventStates = []EventState{StateConfirmed, StateOption, StateIdea, StateCancelled}

// Floor is the room an event takes place in.
type Floor string

const (
	FloorEli             Floor = "Eli"
	FloorXxs             Floor = "Xxs"
	FloorGarderobenfloor Floor = "Garderobenfloor"
	FloorOpenAir         Floor = "Open Air"
)

var Floors = []Floor{FloorEli, FloorXxs, FloorGarderobenfloor, FloorOpenAir}

// IsValid reports whether r is one of Roles.
func (r Role) IsValid() bool { return contains(Roles, r) }

// IsValid reports whether t is one of ArtistTypes.
func (t ArtistType) IsValid() bool { return contains(ArtistTypes, t) }

// IsValid reports whether c is one of Categories.
func (c Category) IsValid() bool { return contains(Categories, c) }

// IsValid reports whether s is one of EventStates.
func (s EventState) IsValid() bool { return contains(EventStates, s) }

// IsValid reports whether f is one of Floors.
func (f Floor) IsValid() bool { return contains(Floors, f) }

func contains[T comparable](list []T, v T) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

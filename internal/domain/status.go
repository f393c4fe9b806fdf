package domain

// Role of a user account.
type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleStaff    Role = "STAFF"
	RoleAdmin    Role = "ADMIN"
)

// RouteStatus is the operational status of a route.
type RouteStatus string

const (
	RouteActive   RouteStatus = "ACTIVE"
	RouteInactive RouteStatus = "INACTIVE"
	RouteSeasonal RouteStatus = "SEASONAL"
	RouteDeleted  RouteStatus = "DELETED"
)

func (s RouteStatus) Valid() bool {
	switch s {
	case RouteActive, RouteInactive, RouteSeasonal, RouteDeleted:
		return true
	}
	return false
}

// BusType categorizes the vehicle.
type BusType string

const (
	BusMinibus       BusType = "MINIBUS"
	BusStandard      BusType = "STANDARD"
	BusLuxury        BusType = "LUXURY"
	BusSleeper       BusType = "SLEEPER"
	BusMinibusLuxury BusType = "MINIBUS_LUXURY"
)

func (t BusType) Valid() bool {
	switch t {
	case BusMinibus, BusStandard, BusLuxury, BusSleeper, BusMinibusLuxury:
		return true
	}
	return false
}

// BusStatus is the operational status of a bus.
type BusStatus string

const (
	BusActive      BusStatus = "ACTIVE"
	BusMaintenance BusStatus = "MAINTENANCE"
	BusInactive    BusStatus = "INACTIVE"
	BusDeleted     BusStatus = "DELETED"
)

func (s BusStatus) Valid() bool {
	switch s {
	case BusActive, BusMaintenance, BusInactive, BusDeleted:
		return true
	}
	return false
}

// DepartureStatus is the lifecycle state of a scheduled trip.
type DepartureStatus string

const (
	DepartureScheduled DepartureStatus = "SCHEDULED"
	DepartureDeparted  DepartureStatus = "DEPARTED"
	DepartureArrived   DepartureStatus = "ARRIVED"
	DepartureCancelled DepartureStatus = "CANCELLED"
	DepartureDelayed   DepartureStatus = "DELAYED"
)

func (s DepartureStatus) Valid() bool {
	switch s {
	case DepartureScheduled, DepartureDeparted, DepartureArrived,
		DepartureCancelled, DepartureDelayed:
		return true
	}
	return false
}

// departureTransitions maps each status to the set of statuses it may move
// to. ARRIVED and CANCELLED are terminal.
var departureTransitions = map[DepartureStatus][]DepartureStatus{
	DepartureScheduled: {DepartureDeparted, DepartureDelayed, DepartureCancelled},
	DepartureDeparted:  {DepartureArrived},
	DepartureDelayed:   {DepartureDeparted, DepartureCancelled},
	DepartureArrived:   {},
	DepartureCancelled: {},
}

// AllowedTransitions returns the statuses a departure in status from may
// move to. The returned slice must not be mutated.
func AllowedTransitions(from DepartureStatus) []DepartureStatus {
	return departureTransitions[from]
}

// CheckTransition validates a requested status change against the
// transition table.
func CheckTransition(from, to DepartureStatus) error {
	for _, allowed := range departureTransitions[from] {
		if allowed == to {
			return nil
		}
	}
	return InvalidTransitionError{From: from, To: to}
}

package payload

// Typed mirror of the travel request object. The dialogue core validates by
// key presence only and passes the raw JSON through; these structs serve the
// planner client and tests that need to build or inspect well-formed
// requests.

// Place is a geocoded location.
type Place struct {
	Name    string `json:"name"`
	PlaceID string `json:"placeId"`
	Lat     string `json:"lat"`
	Lon     string `json:"lon"`
}

// TravelerGroup counts travelers of one category, with ages where relevant.
type TravelerGroup struct {
	Count string   `json:"count"`
	Age   []string `json:"age,omitempty"`
}

// RoomOccupancy describes who sleeps in one room.
type RoomOccupancy struct {
	Adults   TravelerGroup `json:"adults"`
	Children TravelerGroup `json:"children"`
	Infants  TravelerGroup `json:"infants"`
}

// Pagination controls result paging on the planning side.
type Pagination struct {
	Start  string `json:"start"`
	Count  string `json:"count"`
	SortBy string `json:"sort_by"`
	Order  string `json:"order"`
}

// Agent identifies the booking agent on whose behalf the plan is requested.
type Agent struct {
	AgentID string `json:"agent_id"`
}

// TravelRequest is the full structured payload handed to the planner.
type TravelRequest struct {
	Destination   Place           `json:"destination"`
	Destinations  []Place         `json:"destinations"`
	Source        Place           `json:"source"`
	StartDateTime string          `json:"startDateTime"`
	EndDateTime   string          `json:"endDateTime"`
	Adults        TravelerGroup   `json:"adults"`
	Children      TravelerGroup   `json:"children"`
	Infants       TravelerGroup   `json:"infants"`
	Purpose       string          `json:"purpose,omitempty"`
	Pagination    *Pagination     `json:"pagination,omitempty"`
	Rooms         string          `json:"rooms,omitempty"`
	RoomOccupancy []RoomOccupancy `json:"roomsOccupancy,omitempty"`
	Agent         *Agent          `json:"Agent,omitempty"`
}

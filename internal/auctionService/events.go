package auction

// Event names on the websocket wire, matching the client protocol.
const (
	EventBootstrap      = "bootstrap"
	EventLotCreated     = "lotCreated"
	EventLotUpdated     = "lotUpdated"
	EventLotDeleted     = "lotDeleted"
	EventLotExtended    = "lotExtended"
	EventBidPlaced      = "bidPlaced"
	EventBidAccepted    = "bidAccepted"
	EventBidRejected    = "bidRejected"
	EventActionRejected = "actionRejected"
	EventUserUpdated    = "userUpdated"
)

// BootstrapPayload is sent once to each party on connect, already
// filtered by that party's eligibility.
type BootstrapPayload struct {
	Lots []LotView `json:"lots"`
	User UserView  `json:"user"`
}

type LotDeletedPayload struct {
	LotID int64 `json:"lotId"`
}

type LotExtendedPayload struct {
	LotID     int64  `json:"lotId"`
	NewEndsAt string `json:"newEndsAt"`
}

type BidPlacedPayload struct {
	LotID int64   `json:"lotId"`
	Bid   BidView `json:"bid"`
}

type BidAcceptedPayload struct {
	BidID int64 `json:"bidId"`
}

type RejectedPayload struct {
	Reason string `json:"reason"`
}

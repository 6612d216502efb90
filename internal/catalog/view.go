package catalog

import "github.com/syntrixbase/showroom/internal/notify"

// CodeStoreUnavailable is the error code reported when the store could not serve a fetch.
const CodeStoreUnavailable = "STORE_UNAVAILABLE"

// ViewError describes the last failed fetch of a session.
type ViewError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

// Card is a vehicle as presented in a result grid.
type Card struct {
	Vehicle
	// Primary is the URL of the image shown on the card.
	Primary string `json:"primaryImage"`
	// Revealed is true once the primary image reported loaded.
	Revealed bool `json:"revealed"`
}

// View is an immutable snapshot of a controller.
type View struct {
	Session string `json:"session"`
	State   State  `json:"state"`
	Query   string `json:"query"`
	// Seq identifies the installed result set. Image load events carry it back.
	Seq      uint64 `json:"seq"`
	Pending  bool   `json:"pending"`
	Cards    []Card `json:"cards"`
	Revealed int    `json:"revealed"`
	// RevealedIDs lists the revealed vehicles in ascending id order.
	RevealedIDs []string   `json:"revealedIds"`
	Error       *ViewError `json:"error,omitempty"`
}

// Update is what subscribers of a controller receive.
type Update struct {
	View   View
	Notice *notify.Notification
}

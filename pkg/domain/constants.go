package domain

// Keys of Response.Data understood by the session context store.
const (
	KeyActivePageID      = "activePageId"
	KeyActiveWireframeID = "activeWireframeId"
	KeyWireframes        = "wireframes"
	KeyWireframeID       = "wireframeId"
	KeyPageIDs           = "pageIds"
	KeyName              = "name"
	KeySimulated         = "simulated"
	KeyPlaceholder       = "placeholder"
)

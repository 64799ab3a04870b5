package request

// RegisterPlayerRequest is the body for POST /api/v1/players
type RegisterPlayerRequest struct {
	Name    string `json:"name"`
	Contact string `json:"contact"`
}

// ActionRequest is the body for POST /api/v1/actions
type ActionRequest struct {
	Actor  string            `json:"actor"`
	Action string            `json:"action"`
	Args   map[string]string `json:"args,omitempty"`
}

package activity

// GetActivityRequest asks for one owner's tallies.
type GetActivityRequest struct {
	UserID string `json:"user_id"`
}

// ActivityResponse carries one owner's tallies.
type ActivityResponse struct {
	Counts Counts `json:"counts"`
}

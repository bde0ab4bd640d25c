package model

// Candidate is one ranked entry of a matchmaking response.
type Candidate struct {
	PlayerID             string   `json:"player_id"`
	PlayerName           string   `json:"player_name"`
	Score                float64  `json:"score"`
	DistanceKM           float64  `json:"distance_km"`
	Elo                  int      `json:"elo"`
	EloDiff              int      `json:"elo_diff"`
	AcceptanceRate       float64  `json:"acceptance_rate"`
	Gender               Gender   `json:"gender"`
	Reasons              []string `json:"reasons"`
	InvitationMessage    string   `json:"invitation_message"`
	CompatibilitySummary string   `json:"compatibility_summary"`
}

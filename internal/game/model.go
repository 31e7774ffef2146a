package game

// Game is one play session. The roster is keyed by player token;
// usernames are unique within a game ignoring case and surrounding
// whitespace.
type Game struct {
	ID            string   `json:"id"`
	TemplateID    string   `json:"game_template_id"`
	Code          string   `json:"code"`
	SignUpBlocked bool     `json:"sign_up_blocked"`
	AdminToken    string   `json:"admin_token"`
	Players       []Player `json:"players"`
	CreatedBy     string   `json:"created_by"`
}

type Player struct {
	Username string `json:"username"`
	Token    string `json:"token"`
}

// RankingPlayer is a leaderboard row. RoundLost is nil unless the
// player was eliminated, in which case it holds the round index the
// elimination happened in.
type RankingPlayer struct {
	Token     string `json:"token"`
	Username  string `json:"username"`
	Points    int    `json:"points"`
	RoundLost *int   `json:"round_lost"`
}

// PlayerByToken returns the roster entry for token, or nil.
func (g *Game) PlayerByToken(token string) *Player {
	for i := range g.Players {
		if g.Players[i].Token == token {
			return &g.Players[i]
		}
	}
	return nil
}

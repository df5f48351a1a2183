package model

import "time"

// Stats holds a player's cumulative match counters.
type Stats struct {
	Wins        int `json:"wins"`
	Losses      int `json:"losses"`
	GamesPlayed int `json:"games_played"`
	Experience  int `json:"experience"`
	Level       int `json:"level"`
}

// StatsDelta describes an increment applied to a player's stats.
// LevelThreshold, when > 0, enables the level-up check after the
// experience increment is applied.
type StatsDelta struct {
	Wins           int
	Losses         int
	GamesPlayed    int
	Experience     int
	LevelThreshold int
}

// Apply adds the delta to the stats in place. The level threshold is
// checked once per delta: an increment that crosses two thresholds still
// yields a single level-up.
func (d StatsDelta) Apply(s *Stats) {
	s.Wins += d.Wins
	s.Losses += d.Losses
	s.GamesPlayed += d.GamesPlayed
	s.Experience += d.Experience
	if d.LevelThreshold > 0 && s.Experience >= d.LevelThreshold {
		s.Level++
		s.Experience -= d.LevelThreshold
	}
}

// Player is the durable account record. Username is the identity and is
// immutable after registration. TokenHash is the sha256 of the current
// bearer token, empty when the player is logged out.
type Player struct {
	Username     string    `json:"username"`
	PasswordHash string    `json:"password_hash"`
	TokenHash    string    `json:"token_hash"`
	Avatar       string    `json:"avatar"`
	Stats        Stats     `json:"stats"`
	CreatedAt    time.Time `json:"created_at"`
}

package cli

import (
	"encoding/json"
	"fmt"
	"os"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"error": err.Error()})
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case RegisterResult:
		fmt.Printf("Registered: %s\n", v.Username)
	case Profile:
		o.printProfile(v)
	case HealthResult:
		fmt.Printf("Status: %s\n", v.Status)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// RegisterResult response type
type RegisterResult struct {
	Username string `json:"username"`
}

// LoginResult response type
type LoginResult struct {
	Token string `json:"token"`
}

// Profile response type
type Profile struct {
	Username string `json:"username"`
	Avatar   string `json:"avatar,omitempty"`
	Stats    struct {
		Wins        int `json:"wins"`
		Losses      int `json:"losses"`
		GamesPlayed int `json:"games_played"`
		Experience  int `json:"experience"`
		Level       int `json:"level"`
	} `json:"stats"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printProfile(p Profile) {
	fmt.Printf("Player: %s\n", p.Username)
	if p.Avatar != "" {
		fmt.Printf("Avatar: %s\n", p.Avatar)
	}
	fmt.Printf("Level: %d (%d xp)\n", p.Stats.Level, p.Stats.Experience)
	fmt.Printf("Record: %d-%d over %d games\n", p.Stats.Wins, p.Stats.Losses, p.Stats.GamesPlayed)
}

package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
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

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
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

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Player:
		o.printPlayer(v)
	case QueueSnapshot:
		o.printQueueSnapshot(v)
	case Game:
		o.printGame(v)
	case ActionResult:
		o.printActionResult(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Player response type (matches API)
type Player struct {
	Contact   string    `json:"contact"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// QueueSnapshot response type
type QueueSnapshot struct {
	Players []Player `json:"players"`
}

// Game response type
type Game struct {
	ID         string     `json:"id"`
	King       string     `json:"king"`
	Challenger string     `json:"challenger"`
	Status     string     `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// Notification response type
type Notification struct {
	Player          Player `json:"player"`
	DeadlineSeconds int    `json:"deadline_seconds"`
}

// ActionResult response type
type ActionResult struct {
	Code         string        `json:"code"`
	Text         string        `json:"text"`
	Notification *Notification `json:"notification,omitempty"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printPlayer(p Player) {
	fmt.Printf("Player: %s (%s)\n", p.Name, p.Contact)
}

func (o *Output) printQueueSnapshot(q QueueSnapshot) {
	if len(q.Players) == 0 {
		fmt.Println("Queue is empty")
		return
	}
	fmt.Printf("Queue (%d):\n", len(q.Players))
	for i, p := range q.Players {
		fmt.Printf("  %d. %s (%s)\n", i+1, p.Name, p.Contact)
	}
}

func (o *Output) printGame(g Game) {
	fmt.Printf("Game: %s\n", g.ID)
	fmt.Printf("King: %s\n", g.King)
	fmt.Printf("Challenger: %s\n", g.Challenger)
	fmt.Printf("Status: %s\n", g.Status)
	if g.FinishedAt != nil {
		fmt.Printf("Finished: %s\n", g.FinishedAt.Format(time.RFC3339))
	}
}

func (o *Output) printActionResult(r ActionResult) {
	fmt.Printf("Result: %s\n", r.Code)
	if r.Text != "" {
		fmt.Println(r.Text)
	}
	if r.Notification != nil {
		fmt.Printf("Up next: %s (%s), %ds to claim the table\n",
			r.Notification.Player.Name, r.Notification.Player.Contact, r.Notification.DeadlineSeconds)
	}
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
}

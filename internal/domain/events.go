package domain

// Notification types fanned out to every connected client.
const (
	EventQuestionActivated = "questionActivated"
	EventUpdateTimer       = "updateTimer"
	EventTimeUp            = "timeUp"
	EventUpdateLeaderboard = "updateLeaderboard"
)

// Event is a single real-time notification.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// QuestionActivated announces a new live question. It never carries the correct option.
type QuestionActivated struct {
	RoundID       string         `json:"roundId"`
	RoundNumber   int            `json:"roundNumber"`
	Question      PublicQuestion `json:"question"`
	QuestionIndex int            `json:"questionIndex"`
	IsActive      bool           `json:"isActive"`
	TimeLimit     float64        `json:"timeLimit"`
}

// TimerUpdate is emitted once per tick while a question is live.
type TimerUpdate struct {
	RoundNumber   int     `json:"roundNumber"`
	QuestionIndex int     `json:"questionIndex"`
	RemainingTime float64 `json:"remainingTime"`
}

// TimeUp is emitted exactly once when a countdown expires.
type TimeUp struct {
	RoundNumber   int `json:"roundNumber"`
	QuestionIndex int `json:"questionIndex"`
}

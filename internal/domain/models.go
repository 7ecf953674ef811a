package domain

import "time"

// Question models a multiple-choice prompt with exactly one correct option.
type Question struct {
	ID       string   `json:"id"`
	Text     string   `json:"questionText"`
	Options  []string `json:"options"`
	Correct  string   `json:"correct"`
	IsActive bool     `json:"isActive"`
}

// Round is an ordered group of questions. The question list never changes shape
// after seeding; only the active flags move.
type Round struct {
	ID        string     `json:"id"`
	Number    int        `json:"roundNumber"`
	IsActive  bool       `json:"isActive"`
	Questions []Question `json:"questions"`
}

// Answer is the immutable record of one participant's response to one question.
type Answer struct {
	ID              string    `json:"id"`
	QuestionID      string    `json:"questionId"`
	RoundID         string    `json:"roundId"`
	ParticipantID   string    `json:"participantId"`
	ParticipantName string    `json:"participantName"`
	Answer          string    `json:"answer"`
	IsCorrect       bool      `json:"isCorrect"`
	TimeTaken       float64   `json:"timeTaken"`
	SubmittedAt     time.Time `json:"submittedAt"`
}

// Participant is a registered player, identified by employee id.
type Participant struct {
	EmployeeID string `json:"employeeId"`
	Name       string `json:"name"`
	Department string `json:"department"`
}

// AnswerSubmission is what a participant sends for a question.
type AnswerSubmission struct {
	QuestionID      string
	ParticipantID   string
	ParticipantName string
	Answer          string
	TimeTaken       float64
}

// PublicQuestion is a question as shown to participants: no correct option.
type PublicQuestion struct {
	ID      string   `json:"id"`
	Text    string   `json:"questionText"`
	Options []string `json:"options"`
}

// Public strips the correct option.
func (q Question) Public() PublicQuestion {
	options := make([]string, len(q.Options))
	copy(options, q.Options)
	return PublicQuestion{ID: q.ID, Text: q.Text, Options: options}
}

// ActiveQuestion describes the currently live activation.
type ActiveQuestion struct {
	RoundID       string         `json:"roundId"`
	RoundNumber   int            `json:"roundNumber"`
	QuestionIndex int            `json:"questionIndex"`
	Question      PublicQuestion `json:"question"`
	TimeLimit     float64        `json:"timeLimit"`
	RemainingTime float64        `json:"remainingTime"`
}

// LeaderboardScope selects the granularity of a leaderboard.
type LeaderboardScope string

const (
	ScopeQuestion LeaderboardScope = "question"
	ScopeRound    LeaderboardScope = "round"
	ScopeGlobal   LeaderboardScope = "global"
)

// ParseScope maps a wire value onto a scope. "all" is kept as an alias of global.
func ParseScope(raw string) (LeaderboardScope, error) {
	switch raw {
	case string(ScopeQuestion):
		return ScopeQuestion, nil
	case string(ScopeRound):
		return ScopeRound, nil
	case string(ScopeGlobal), "all":
		return ScopeGlobal, nil
	default:
		return "", ErrInvalidScope
	}
}

// LeaderboardEntry is one ranked participant.
type LeaderboardEntry struct {
	Rank            int       `json:"rank"`
	ParticipantID   string    `json:"participantId"`
	ParticipantName string    `json:"name"`
	Points          int       `json:"totalPoints"`
	CorrectAnswers  int       `json:"correctAnswers"`
	TotalTime       float64   `json:"totalTime"`
	EarliestCorrect time.Time `json:"earliestCorrect"`
}

// LeaderboardPage is one page of a ranked leaderboard.
type LeaderboardPage struct {
	Scope        LeaderboardScope   `json:"scope"`
	ScopeID      string             `json:"scopeId,omitempty"`
	Data         []LeaderboardEntry `json:"data"`
	TotalPages   int                `json:"totalPages"`
	CurrentPage  int                `json:"currentPage"`
	TotalRecords int                `json:"totalRecords"`
}

// FindQuestion locates a question and its owning round by question id.
func FindQuestion(rounds []Round, questionID string) (Round, Question, bool) {
	for _, round := range rounds {
		for _, question := range round.Questions {
			if question.ID == questionID {
				return round, question, true
			}
		}
	}
	return Round{}, Question{}, false
}

// FindRound locates a round by its number.
func FindRound(rounds []Round, number int) (Round, bool) {
	for _, round := range rounds {
		if round.Number == number {
			return round, true
		}
	}
	return Round{}, false
}

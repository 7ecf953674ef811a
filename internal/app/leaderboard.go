package app

import (
	"context"
	"fmt"
	"sort"

	"live-quiz-service/internal/domain"
)

// LeaderboardEngine ranks participants from the answer store. Nothing is cached:
// every call recomputes from the current answers and round definitions.
type LeaderboardEngine struct {
	rounds   RoundCatalog
	answers  AnswerRepository
	points   int
	pageSize int
}

func NewLeaderboardEngine(rounds RoundCatalog, answers AnswerRepository, opts Options) *LeaderboardEngine {
	opts = opts.withDefaults()
	return &LeaderboardEngine{
		rounds:   rounds,
		answers:  answers,
		points:   opts.PointsPerCorrect,
		pageSize: opts.PageSize,
	}
}

// ComputeLeaderboard returns page (1-indexed) of the standings for scope.
// pageSize <= 0 uses the configured default.
func (e *LeaderboardEngine) ComputeLeaderboard(ctx context.Context, scope domain.LeaderboardScope, scopeID string, page, pageSize int) (domain.LeaderboardPage, error) {
	switch scope {
	case domain.ScopeQuestion, domain.ScopeRound, domain.ScopeGlobal:
	default:
		return domain.LeaderboardPage{}, fmt.Errorf("%w: %q", domain.ErrInvalidScope, scope)
	}

	rounds, err := e.rounds.ListRounds(ctx)
	if err != nil {
		return domain.LeaderboardPage{}, err
	}
	answers, err := e.answers.List(ctx)
	if err != nil {
		return domain.LeaderboardPage{}, err
	}
	sortAnswers(answers)

	var entries []domain.LeaderboardEntry
	switch scope {
	case domain.ScopeQuestion:
		if _, _, ok := domain.FindQuestion(rounds, scopeID); !ok {
			return domain.LeaderboardPage{}, fmt.Errorf("%w: %s", domain.ErrQuestionNotFound, scopeID)
		}
		entries = e.questionStandings(answers, scopeID)
	case domain.ScopeRound:
		round, ok := findRoundByID(rounds, scopeID)
		if !ok {
			return domain.LeaderboardPage{}, fmt.Errorf("%w: %s", domain.ErrRoundNotFound, scopeID)
		}
		entries = e.completionStandings(answers, round.Questions)
	case domain.ScopeGlobal:
		var all []domain.Question
		for _, round := range rounds {
			all = append(all, round.Questions...)
		}
		entries = e.completionStandings(answers, all)
	}

	if pageSize <= 0 {
		pageSize = e.pageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	result := paginate(entries, page, pageSize)
	result.Scope = scope
	result.ScopeID = scopeID
	return result, nil
}

// questionStandings ranks every participant with a correct answer to the question
// by points desc, then first correct answer asc.
func (e *LeaderboardEngine) questionStandings(answers []domain.Answer, questionID string) []domain.LeaderboardEntry {
	byParticipant := make(map[string]*domain.LeaderboardEntry)
	var order []string
	for _, answer := range answers {
		if answer.QuestionID != questionID || !answer.IsCorrect {
			continue
		}
		entry, ok := byParticipant[answer.ParticipantID]
		if !ok {
			entry = &domain.LeaderboardEntry{
				ParticipantID:   answer.ParticipantID,
				ParticipantName: answer.ParticipantName,
				EarliestCorrect: answer.SubmittedAt,
			}
			byParticipant[answer.ParticipantID] = entry
			order = append(order, answer.ParticipantID)
		}
		entry.CorrectAnswers++
		entry.Points += e.points
		entry.TotalTime += answer.TimeTaken
	}

	entries := collect(byParticipant, order)
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Points != entries[j].Points {
			return entries[i].Points > entries[j].Points
		}
		if !entries[i].EarliestCorrect.Equal(entries[j].EarliestCorrect) {
			return entries[i].EarliestCorrect.Before(entries[j].EarliestCorrect)
		}
		return entries[i].ParticipantID < entries[j].ParticipantID
	})
	return entries
}

// completionStandings keeps only participants who answered every question
// correctly and ranks them by summed time taken, fastest first.
func (e *LeaderboardEngine) completionStandings(answers []domain.Answer, questions []domain.Question) []domain.LeaderboardEntry {
	if len(questions) == 0 {
		return nil
	}
	inScope := make(map[string]struct{}, len(questions))
	for _, q := range questions {
		inScope[q.ID] = struct{}{}
	}

	byParticipant := make(map[string]*domain.LeaderboardEntry)
	var order []string
	for _, answer := range answers {
		if !answer.IsCorrect {
			continue
		}
		if _, ok := inScope[answer.QuestionID]; !ok {
			continue
		}
		entry, ok := byParticipant[answer.ParticipantID]
		if !ok {
			entry = &domain.LeaderboardEntry{
				ParticipantID:   answer.ParticipantID,
				ParticipantName: answer.ParticipantName,
				EarliestCorrect: answer.SubmittedAt,
			}
			byParticipant[answer.ParticipantID] = entry
			order = append(order, answer.ParticipantID)
		}
		entry.CorrectAnswers++
		entry.TotalTime += answer.TimeTaken
	}

	qualified := make([]domain.LeaderboardEntry, 0, len(order))
	for _, id := range order {
		entry := byParticipant[id]
		if entry.CorrectAnswers != len(questions) {
			continue
		}
		entry.Points = e.points * len(questions)
		qualified = append(qualified, *entry)
	}
	sort.SliceStable(qualified, func(i, j int) bool {
		if qualified[i].TotalTime != qualified[j].TotalTime {
			return qualified[i].TotalTime < qualified[j].TotalTime
		}
		return qualified[i].ParticipantID < qualified[j].ParticipantID
	})
	return qualified
}

// paginate slices one page out of the ranked entries; the total comes from the
// same slice so the count and the page always agree.
func paginate(entries []domain.LeaderboardEntry, page, pageSize int) domain.LeaderboardPage {
	if page < 1 {
		page = 1
	}
	total := len(entries)
	totalPages := total / pageSize
	if total%pageSize != 0 {
		totalPages++
	}

	// Compare before multiplying so a huge page cannot overflow.
	start := total
	if total > 0 && page-1 <= (total-1)/pageSize {
		start = (page - 1) * pageSize
	}
	end := total
	if total-start > pageSize {
		end = start + pageSize
	}

	data := make([]domain.LeaderboardEntry, 0, end-start)
	for i := start; i < end; i++ {
		entry := entries[i]
		entry.Rank = i + 1
		data = append(data, entry)
	}
	return domain.LeaderboardPage{
		Data:         data,
		TotalPages:   totalPages,
		CurrentPage:  page,
		TotalRecords: total,
	}
}

// sortAnswers orders answers by submission time, then id, so grouping is
// independent of the store's iteration order.
func sortAnswers(answers []domain.Answer) {
	sort.SliceStable(answers, func(i, j int) bool {
		if !answers[i].SubmittedAt.Equal(answers[j].SubmittedAt) {
			return answers[i].SubmittedAt.Before(answers[j].SubmittedAt)
		}
		return answers[i].ID < answers[j].ID
	})
}

func collect(byParticipant map[string]*domain.LeaderboardEntry, order []string) []domain.LeaderboardEntry {
	entries := make([]domain.LeaderboardEntry, 0, len(order))
	for _, id := range order {
		entries = append(entries, *byParticipant[id])
	}
	return entries
}

func findRoundByID(rounds []domain.Round, id string) (domain.Round, bool) {
	for _, round := range rounds {
		if round.ID == id {
			return round, true
		}
	}
	return domain.Round{}, false
}

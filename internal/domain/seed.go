package domain

import (
	"strconv"

	"github.com/google/uuid"
)

// seedNamespace keeps seeded ids stable across processes, so a restarted
// instance still matches answers and cached rounds written by the previous one.
var seedNamespace = uuid.MustParse("6f1c2a8e-4b1d-4c47-9a53-2f0e7d3b9c15")

// SeedRounds returns the default quiz content: five rounds of two questions.
func SeedRounds() []Round {
	raw := []struct {
		text    string
		options []string
		correct string
	}{
		{"What is the capital of France?", []string{"Paris", "London", "Rome", "Berlin"}, "Paris"},
		{"What is 2 + 2?", []string{"3", "4", "5", "6"}, "4"},
		{"What color is the sky?", []string{"Blue", "Red", "Green", "Yellow"}, "Blue"},
		{"What is the largest ocean?", []string{"Atlantic", "Indian", "Arctic", "Pacific"}, "Pacific"},
		{"Who wrote 'Hamlet'?", []string{"Shakespeare", "Dickens", "Austen", "Orwell"}, "Shakespeare"},
		{"What is the speed of light?", []string{"300,000 km/s", "150,000 km/s", "450,000 km/s", "600,000 km/s"}, "300,000 km/s"},
		{"Which planet is known as the Red Planet?", []string{"Earth", "Mars", "Jupiter", "Venus"}, "Mars"},
		{"Who painted the Mona Lisa?", []string{"Van Gogh", "Da Vinci", "Picasso", "Michelangelo"}, "Da Vinci"},
		{"What is the chemical symbol for water?", []string{"H2O", "O2", "CO2", "NaCl"}, "H2O"},
		{"How many continents are there on Earth?", []string{"5", "6", "7", "8"}, "7"},
	}

	const perRound = 2
	rounds := make([]Round, 0, len(raw)/perRound)
	for i := 0; i < len(raw); i += perRound {
		number := i/perRound + 1
		round := Round{ID: seedID("round-" + strconv.Itoa(number)), Number: number}
		for j, q := range raw[i : i+perRound] {
			round.Questions = append(round.Questions, Question{
				ID:      seedID("question-" + strconv.Itoa(i+j+1)),
				Text:    q.text,
				Options: q.options,
				Correct: q.correct,
			})
		}
		rounds = append(rounds, round)
	}
	return rounds
}

func seedID(name string) string {
	return uuid.NewSHA1(seedNamespace, []byte(name)).String()
}

package quiz

import "github.com/biolaureat/learn-client/api"

// DefaultLevelCount is the number of levels a module's questions are split
// into.
const DefaultLevelCount = 5

// SplitLevels chunks questions into count levels of ceil(len/count) each;
// trailing levels may be shorter or empty. With no questions every level is
// empty.
func SplitLevels(questions []api.Question, count int) [][]api.Question {
	if count <= 0 {
		count = DefaultLevelCount
	}
	levels := make([][]api.Question, count)
	if len(questions) == 0 {
		return levels
	}

	per := (len(questions) + count - 1) / count
	for i := 0; i < count; i++ {
		start := i * per
		if start >= len(questions) {
			break
		}
		end := start + per
		if end > len(questions) {
			end = len(questions)
		}
		levels[i] = questions[start:end]
	}
	return levels
}

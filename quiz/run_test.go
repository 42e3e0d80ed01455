package quiz_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/biolaureat/learn-client/api"
	"github.com/biolaureat/learn-client/quiz"
)

// fiveQuestions builds a quiz where option 0 is always correct.
func fiveQuestions() []api.Question {
	questions := make([]api.Question, 5)
	for i := range questions {
		questions[i] = api.Question{
			Question:     "q",
			Options:      []string{"right", "wrong", "also wrong"},
			CorrectIndex: 0,
			Explanation:  "because",
		}
	}
	return questions
}

func TestNewRunRejectsEmptyQuiz(t *testing.T) {
	_, err := quiz.NewRun(nil)
	require.ErrorIs(t, err, quiz.ErrEmptyQuiz)

	_, err = quiz.NewRun([]api.Question{})
	require.ErrorIs(t, err, quiz.ErrEmptyQuiz)
}

func TestAdvanceRequiresAnswer(t *testing.T) {
	run, err := quiz.NewRun(fiveQuestions())
	require.NoError(t, err)

	err = run.Advance()
	require.ErrorIs(t, err, quiz.ErrAnswerRequired)
	require.Equal(t, 0, run.Index())
}

func TestSelectLocksFirstAnswer(t *testing.T) {
	run, err := quiz.NewRun(fiveQuestions())
	require.NoError(t, err)

	correct, err := run.Select(1)
	require.NoError(t, err)
	require.False(t, correct)

	_, err = run.Select(0)
	require.ErrorIs(t, err, quiz.ErrAnswerLocked)

	selected, ok := run.Selection()
	require.True(t, ok)
	require.Equal(t, 1, selected)
}

func TestSelectRejectsOutOfRangeOption(t *testing.T) {
	run, err := quiz.NewRun(fiveQuestions())
	require.NoError(t, err)

	_, err = run.Select(-1)
	require.ErrorIs(t, err, quiz.ErrInvalidOption)

	_, err = run.Select(3)
	require.ErrorIs(t, err, quiz.ErrInvalidOption)
}

func TestRetreatPreservesSelection(t *testing.T) {
	run, err := quiz.NewRun(fiveQuestions())
	require.NoError(t, err)

	_, err = run.Select(2)
	require.NoError(t, err)
	require.NoError(t, run.Advance())
	require.Equal(t, 1, run.Index())

	run.Retreat()
	require.Equal(t, 0, run.Index())

	// Feedback is hidden again but the recorded answer survives.
	require.False(t, run.Revealed())
	selected, ok := run.Selection()
	require.True(t, ok)
	require.Equal(t, 2, selected)

	// Still locked: the first selection is never overwritten.
	_, err = run.Select(0)
	require.ErrorIs(t, err, quiz.ErrAnswerLocked)
}

func TestRetreatAtFirstQuestionIsNoop(t *testing.T) {
	run, err := quiz.NewRun(fiveQuestions())
	require.NoError(t, err)

	run.Retreat()
	require.Equal(t, 0, run.Index())
}

func TestFinishAfterLastQuestion(t *testing.T) {
	run, err := quiz.NewRun(fiveQuestions())
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		_, err := run.Select(0)
		require.NoError(t, err)
		require.NoError(t, run.Advance())
	}
	require.True(t, run.Finished())

	require.ErrorIs(t, run.Advance(), quiz.ErrRunFinished)
	_, err = run.Select(0)
	require.ErrorIs(t, err, quiz.ErrRunFinished)
}

func TestReportCountsCorrectAnswers(t *testing.T) {
	run, err := quiz.NewRun(fiveQuestions())
	require.NoError(t, err)

	// Questions 0,1,3,4 answered correctly, question 2 wrong.
	for i := 0; i < 5; i++ {
		choice := 0
		if i == 2 {
			choice = 1
		}
		_, err := run.Select(choice)
		require.NoError(t, err)
		require.NoError(t, run.Advance())
	}

	report := run.Report()
	require.Equal(t, 5, report.Total)
	require.Equal(t, 4, report.CorrectCount)
	require.Len(t, report.Items, 5)

	wrong := report.Items[2]
	require.Equal(t, quiz.VerdictWrong, wrong.Verdict)
	require.NotNil(t, wrong.SelectedIndex)
	require.Equal(t, 1, *wrong.SelectedIndex)

	for _, i := range []int{0, 1, 3, 4} {
		require.Equal(t, quiz.VerdictCorrect, report.Items[i].Verdict)
	}
}

func TestReportHandlesUnansweredQuestions(t *testing.T) {
	run, err := quiz.NewRun(fiveQuestions())
	require.NoError(t, err)

	_, err = run.Select(0)
	require.NoError(t, err)

	report := run.Report()
	require.Equal(t, 5, report.Total)
	require.Equal(t, 1, report.CorrectCount)
	require.Nil(t, report.Items[1].SelectedIndex)
	require.Equal(t, quiz.VerdictWrong, report.Items[1].Verdict)
}

func TestSplitLevels(t *testing.T) {
	questions := make([]api.Question, 12)
	levels := quiz.SplitLevels(questions, 5)
	require.Len(t, levels, 5)

	// ceil(12/5) = 3 per level, trailing level empty.
	require.Len(t, levels[0], 3)
	require.Len(t, levels[1], 3)
	require.Len(t, levels[2], 3)
	require.Len(t, levels[3], 3)
	require.Len(t, levels[4], 0)
}

func TestSplitLevelsEmptyInput(t *testing.T) {
	levels := quiz.SplitLevels(nil, 5)
	require.Len(t, levels, 5)
	for _, level := range levels {
		require.Empty(t, level)
	}
}

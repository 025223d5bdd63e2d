package quiz

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csshub/backend/models"
)

func sampleQuestion() models.Question {
	q := models.Question{
		Category:           "flexbox",
		Difficulty:         "medium",
		TextEn:             "Which property sets the main axis?",
		TextRu:             "Какое свойство задаёт главную ось?",
		AnswersEn:          []string{"flex-direction", "align-items"},
		AnswersRu:          []string{"flex-direction", "align-items"},
		CorrectAnswerIndex: 0,
		ExplanationEn:      "flex-direction defines the main axis.",
	}
	q.ID = 11
	return q
}

func TestProjectSelectsLanguage(t *testing.T) {
	q := sampleQuestion()

	en := Project(q, LangEN, false)
	assert.Equal(t, uint(11), en.ID)
	assert.Equal(t, q.TextEn, en.Text)
	assert.Equal(t, []string{"flex-direction", "align-items"}, en.Answers)
	assert.Nil(t, en.AnswerKey)

	ru := Project(q, LangRU, true)
	assert.Equal(t, q.TextRu, ru.Text)
	require.NotNil(t, ru.AnswerKey)
	assert.Equal(t, 0, ru.AnswerKey.CorrectAnswerIndex)
	assert.Empty(t, ru.AnswerKey.Explanation, "no fallback to the english explanation")
}

func TestProjectMissingTranslationIsEmpty(t *testing.T) {
	q := sampleQuestion()
	q.TextRu = ""
	q.AnswersRu = nil

	ru := Project(q, LangRU, false)
	assert.Empty(t, ru.Text)
	assert.NotNil(t, ru.Answers)
	assert.Empty(t, ru.Answers)
}

func TestProjectWithoutAnswerKeyDoesNotLeak(t *testing.T) {
	data, err := json.Marshal(Project(sampleQuestion(), LangEN, false))
	require.NoError(t, err)

	assert.NotContains(t, string(data), "correct_answer_index")
	assert.NotContains(t, string(data), "answer_key")
	assert.NotContains(t, string(data), "explanation")

	data, err = json.Marshal(Project(sampleQuestion(), LangEN, true))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"correct_answer_index":0`)
}

func TestProjectDoesNotAliasStoredAnswers(t *testing.T) {
	q := sampleQuestion()
	out := Project(q, LangEN, false)
	out.Answers[0] = "changed"
	assert.Equal(t, "flex-direction", q.AnswersEn[0])
}

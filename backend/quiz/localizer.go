package quiz

import "csshub/backend/models"

// AnswerKey is only attached to review payloads, never to a test being taken.
type AnswerKey struct {
	CorrectAnswerIndex int    `json:"correct_answer_index"`
	Explanation        string `json:"explanation"`
}

type LocalizedQuestion struct {
	ID         uint       `json:"id"`
	Category   string     `json:"category"`
	Difficulty string     `json:"difficulty"`
	Language   string     `json:"language"`
	Text       string     `json:"text"`
	Answers    []string   `json:"answers"`
	AnswerKey  *AnswerKey `json:"answer_key,omitempty"`
}

// Project renders q in lang. A missing translation yields empty text and
// answers rather than the other language's content.
func Project(q models.Question, lang string, includeAnswerKey bool) LocalizedQuestion {
	var (
		text        string
		answers     []string
		explanation string
	)
	switch lang {
	case LangEN:
		text, answers, explanation = q.TextEn, q.AnswersEn, q.ExplanationEn
	case LangRU:
		text, answers, explanation = q.TextRu, q.AnswersRu, q.ExplanationRu
	}

	out := LocalizedQuestion{
		ID:         q.ID,
		Category:   q.Category,
		Difficulty: q.Difficulty,
		Language:   lang,
		Text:       text,
		Answers:    append(make([]string, 0, len(answers)), answers...),
	}
	if includeAnswerKey {
		out.AnswerKey = &AnswerKey{
			CorrectAnswerIndex: q.CorrectAnswerIndex,
			Explanation:        explanation,
		}
	}
	return out
}

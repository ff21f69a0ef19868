// Package scoring implements automatic objective scoring for completed exam
// sessions. Everything here is pure: the service layer loads questions and
// answers, calls Grade, and persists the verdicts inside the submit
// transaction.
package scoring

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/proctorguard/backend/internal/model"
)

// Kind tags the normalized form of a stored correct answer.
type Kind int

const (
	// KindNone means the stored value was absent or unparseable. Questions
	// with no usable correct answer score as incorrect, never as an error.
	KindNone Kind = iota
	KindChoice
	KindBool
)

// NormalizedAnswer is the canonical form of a question's correct answer.
// The raw column holds three historical shapes: a plain string letter, a
// bare boolean, or a legacy wrapper object {"answer": ...}. All comparisons
// run against this union, never against the raw JSON.
type NormalizedAnswer struct {
	Kind   Kind
	Choice string // uppercase, trimmed; valid when Kind == KindChoice
	Bool   bool   // valid when Kind == KindBool
}

// legacyWrapper is the {"answer": ...} shape written by an earlier importer.
type legacyWrapper struct {
	Answer json.RawMessage `json:"answer"`
}

// NormalizeCorrectAnswer parses the raw correct-answer JSON for a question
// into its canonical form. Unparseable or absent values normalize to
// KindNone rather than failing, so one bad question never blocks a
// candidate's submission.
func NormalizeCorrectAnswer(qt model.QuestionType, raw json.RawMessage) NormalizedAnswer {
	if len(raw) == 0 {
		return NormalizedAnswer{}
	}

	value := raw

	// Unwrap the legacy object form first: {"answer": "b"} / {"answer": true}.
	var wrapper legacyWrapper
	if err := json.Unmarshal(raw, &wrapper); err == nil && wrapper.Answer != nil {
		value = wrapper.Answer
	}

	switch qt {
	case model.QuestionTypeTrueFalse:
		return normalizeBool(value)
	case model.QuestionTypeMultipleChoice:
		return normalizeChoice(value)
	}
	return NormalizedAnswer{}
}

func normalizeBool(value json.RawMessage) NormalizedAnswer {
	var b bool
	if err := json.Unmarshal(value, &b); err == nil {
		return NormalizedAnswer{Kind: KindBool, Bool: b}
	}

	// Tolerate string-encoded booleans ("true" / "false").
	var s string
	if err := json.Unmarshal(value, &s); err == nil {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "true":
			return NormalizedAnswer{Kind: KindBool, Bool: true}
		case "false":
			return NormalizedAnswer{Kind: KindBool, Bool: false}
		}
	}
	return NormalizedAnswer{}
}

func normalizeChoice(value json.RawMessage) NormalizedAnswer {
	var s string
	if err := json.Unmarshal(value, &s); err != nil {
		return NormalizedAnswer{}
	}
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return NormalizedAnswer{}
	}
	return NormalizedAnswer{Kind: KindChoice, Choice: s}
}

// Correct compares a submitted selected option against the normalized
// correct answer. Submissions are strings in both cases: an option letter
// for multiple choice, the literal "true"/"false" for true/false.
func (n NormalizedAnswer) Correct(selected string) bool {
	switch n.Kind {
	case KindChoice:
		return strings.ToUpper(strings.TrimSpace(selected)) == n.Choice
	case KindBool:
		return strings.EqualFold(strings.TrimSpace(selected), "true") == n.Bool
	}
	return false
}

// Verdict is the scoring outcome for one objective question. The service
// layer persists it onto the existing answer row, or creates a synthetic
// zero-point row when the candidate never answered.
type Verdict struct {
	QuestionID uuid.UUID
	IsCorrect  bool
	Points     int
}

// Result summarizes one scored session. Percentage is rounded to the
// nearest integer and defined as 0 when there are no scoreable questions.
type Result struct {
	SessionID        uuid.UUID `json:"session_id"`
	TotalScore       int       `json:"total_score"`
	MaxPossibleScore int       `json:"max_possible_score"`
	Percentage       int       `json:"percentage"`
	Passed           bool      `json:"passed"`
	QuestionsScored  int       `json:"questions_scored"`
	QuestionsTotal   int       `json:"questions_total"`
}

// Grade scores a session's answers against the approved question set.
// Essay questions are skipped entirely: they add nothing to the maximum and
// produce no verdict. Every objective question yields exactly one verdict,
// answered or not; there is no partial credit.
func Grade(sessionID uuid.UUID, questions []model.Question, answers map[uuid.UUID]*model.Answer, passingScore int) (Result, []Verdict) {
	var (
		totalScore int
		maxScore   int
		verdicts   = make([]Verdict, 0, len(questions))
	)

	for _, q := range questions {
		if !q.Type.Objective() {
			continue
		}
		maxScore += q.Points

		selected := ""
		if a := answers[q.ID]; a != nil && a.SelectedOption != nil {
			selected = *a.SelectedOption
		}
		if strings.TrimSpace(selected) == "" {
			verdicts = append(verdicts, Verdict{QuestionID: q.ID})
			continue
		}

		correct := NormalizeCorrectAnswer(q.Type, q.CorrectAnswer).Correct(selected)
		v := Verdict{QuestionID: q.ID, IsCorrect: correct}
		if correct {
			v.Points = q.Points
			totalScore += q.Points
		}
		verdicts = append(verdicts, v)
	}

	percentage := 0
	if maxScore > 0 {
		percentage = int(math.Round(float64(totalScore) / float64(maxScore) * 100))
	}

	return Result{
		SessionID:        sessionID,
		TotalScore:       totalScore,
		MaxPossibleScore: maxScore,
		Percentage:       percentage,
		Passed:           percentage >= passingScore,
		QuestionsScored:  len(verdicts),
		QuestionsTotal:   len(questions),
	}, verdicts
}

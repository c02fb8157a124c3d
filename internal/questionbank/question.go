package questionbank

// Subject is one of the four exam sections.
type Subject string

const (
	English   Subject = "english"
	Maths     Subject = "maths"
	Reasoning Subject = "reasoning"
	GK        Subject = "gk"
)

// AllSubjects lists the subjects in their canonical display order.
var AllSubjects = []Subject{English, Maths, Reasoning, GK}

// Label returns the human-readable subject name.
func (s Subject) Label() string {
	switch s {
	case English:
		return "English"
	case Maths:
		return "Mathematics"
	case Reasoning:
		return "Reasoning"
	case GK:
		return "General Knowledge"
	default:
		return string(s)
	}
}

// Valid reports whether s is a known subject.
func (s Subject) Valid() bool {
	switch s {
	case English, Maths, Reasoning, GK:
		return true
	}
	return false
}

// QuestionType tags which kind of test a question was written for.
type QuestionType string

const (
	TypeDiagnostic QuestionType = "diagnostic"
	TypeMock       QuestionType = "mock"
	TypePractice   QuestionType = "practice"
)

// Valid reports whether t is a known question type.
func (t QuestionType) Valid() bool {
	switch t {
	case TypeDiagnostic, TypeMock, TypePractice:
		return true
	}
	return false
}

// OptionCount is the number of options every question carries.
const OptionCount = 4

// Question is a single multiple-choice exam question.
type Question struct {
	ID            string       `json:"id"`
	Subject       Subject      `json:"subject"`
	Topic         string       `json:"topic"`
	Text          string       `json:"question_text"`
	Options       []string     `json:"options"`
	CorrectAnswer int          `json:"correct_answer"`
	Difficulty    int          `json:"difficulty"`
	Explanation   string       `json:"explanation"`
	Type          QuestionType `json:"type"`
}

// IsCorrect reports whether option is the correct answer.
func (q Question) IsCorrect(option int) bool {
	return option == q.CorrectAnswer
}

// clone returns a copy that does not share the options slice.
func (q Question) clone() Question {
	q.Options = append([]string(nil), q.Options...)
	return q
}

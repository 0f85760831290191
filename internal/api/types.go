package api

// Endpoint paths relative to the configured base URL.
const (
	PathLogin                = "/api/v1/login/access-token"
	PathRegister             = "/api/v1/users/register"
	PathCheckIn              = "/api/v1/check-in/"
	PathQuestions            = "/api/v1/questions/"
	PathAnswers              = "/api/v1/questions/answers"
	PathMotivationHistory    = "/api/v1/dashboard/motivation-history"
	PathQuestionnaireSummary = "/api/v1/dashboard/questionnaire-summary"
)

// tokenResponse is the login payload.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

// registerRequest creates an account. Registration does not authenticate;
// the caller issues a separate Login afterwards.
type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// checkInRequest submits one daily motivation level.
type checkInRequest struct {
	MotivationLevel int `json:"motivation_level"`
}

// Question is one questionnaire item.
type Question struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
}

// Answer is one Likert response, value in [1,7].
type Answer struct {
	QuestionID int `json:"question_id"`
	Value      int `json:"value"`
}

type answersRequest struct {
	Answers []Answer `json:"answers"`
}

// MotivationEntry is one recorded check-in, oldest first as returned by
// the backend.
type MotivationEntry struct {
	MotivationLevel int    `json:"motivation_level"`
	Date            string `json:"date"`
}

// SectionScore is one questionnaire section aggregate, score domain 1-7.
type SectionScore struct {
	SectionName  string  `json:"section_name"`
	AverageScore float64 `json:"average_score"`
}

// Dashboard bundles the two concurrent dashboard fetches. Either half may
// be empty when its fetch failed.
type Dashboard struct {
	History []MotivationEntry
	Summary []SectionScore
}

// HasData reports whether the user has any recorded progress.
func (d Dashboard) HasData() bool {
	return len(d.History) > 0 || len(d.Summary) > 0
}

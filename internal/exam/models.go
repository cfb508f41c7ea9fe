package exam

type Course struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Option struct {
	Text      string `json:"optionText"`
	IsCorrect bool   `json:"isCorrect"`
}

type Question struct {
	ID             string   `json:"id,omitempty"`
	Text           string   `json:"text"`
	Type           string   `json:"type,omitempty"` // MULTIPLE_CHOICE | TRUE_FALSE
	Marks          float64  `json:"marks"`
	Options        []Option `json:"options"`
	CorrectAnswer  string   `json:"correctAnswer"` // text of the correct option
	IsCodeQuestion bool     `json:"isCodeQuestion,omitempty"`
	CodeSnippet    string   `json:"codeSnippet,omitempty"`
}

type Exam struct {
	ID                string     `json:"id"`
	Title             string     `json:"title"`
	Course            Course     `json:"course"`
	Duration          int        `json:"duration"` // minutes
	TotalScore        float64    `json:"totalScore"`
	PassingScore      float64    `json:"passingScore"`
	NumberOfQuestions int        `json:"numberOfQuestions"`
	MaxAttempts       int        `json:"maxAttempts"`
	Published         bool       `json:"published"`
	Questions         []Question `json:"questions"`

	CreatedAt int64 `json:"created_at,omitempty"`
}

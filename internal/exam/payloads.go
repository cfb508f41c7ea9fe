package exam

// Wire contract between the authoring core and the exam service. Create and
// update deliberately differ: update rows use questionText and carry the
// server id only for questions that already exist.

type CreateQuestion struct {
	Text           string   `json:"text"`
	Type           string   `json:"type,omitempty"`
	Marks          float64  `json:"marks"`
	Options        []Option `json:"options"`
	CorrectAnswer  string   `json:"correctAnswer"`
	IsCodeQuestion bool     `json:"isCodeQuestion"`
	CodeSnippet    string   `json:"codeSnippet,omitempty"`
}

type CreateExamRequest struct {
	Title      string           `json:"title"`
	CourseID   string           `json:"courseId"`
	Duration   int              `json:"duration"`
	TotalScore float64          `json:"totalScore"`
	Questions  []CreateQuestion `json:"questions"`
}

type UpdateQuestion struct {
	ID            string   `json:"id,omitempty"` // absent = create during edit-mode save
	QuestionText  string   `json:"questionText"`
	Type          string   `json:"type,omitempty"`
	Marks         float64  `json:"marks"`
	Options       []Option `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
}

type UpdateExamRequest struct {
	Title             string           `json:"title"`
	Duration          int              `json:"duration"`
	TotalScore        float64          `json:"totalScore"`
	NumberOfQuestions int              `json:"numberOfQuestions"`
	Questions         []UpdateQuestion `json:"questions"`
}

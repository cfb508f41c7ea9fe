package draft

// FormEditor holds the single working question currently open for authoring.
// editingIndex is nil while composing a new question and points into the
// draft's question list while revising a committed one. The working copy
// never aliases the list entry; edits become visible only on commit.
type FormEditor struct {
	working      QuestionDraft
	editingIndex *int
	optionFloor  int
}

func NewFormEditor(optionFloor int) *FormEditor {
	if optionFloor <= 0 {
		optionFloor = DefaultOptionFloor
	}
	return &FormEditor{
		working:     NewQuestion(TypeMultipleChoice),
		optionFloor: optionFloor,
	}
}

func (f *FormEditor) Working() QuestionDraft { return Clone(f.working) }

func (f *FormEditor) EditingIndex() *int {
	if f.editingIndex == nil {
		return nil
	}
	n := *f.editingIndex
	return &n
}

// Load replaces the working copy wholesale: selecting a committed question
// for revision (index non-nil) or seeding an AI candidate (index nil).
func (f *FormEditor) Load(q QuestionDraft, index *int) {
	f.working = Clone(q)
	if index == nil {
		f.editingIndex = nil
		return
	}
	n := *index
	f.editingIndex = &n
}

// Reset clears to a blank working copy of the given type.
func (f *FormEditor) Reset(t QuestionType) {
	if t == "" {
		t = f.working.Type
	}
	f.working = NewQuestion(t)
	f.editingIndex = nil
}

func (f *FormEditor) SetText(text string)       { f.working.Text = text }
func (f *FormEditor) SetMarks(marks float64)    { f.working.Marks = marks }
func (f *FormEditor) SetCodeSnippet(src string) { f.working.CodeSnippet = src }
func (f *FormEditor) SetCodeQuestion(on bool)   { f.working.IsCodeQuestion = on }

// SetType swaps the option set for the new type's defaults. Switching away
// from MULTIPLE_CHOICE loses any option text the author had typed; that is
// the expected cost of changing type.
func (f *FormEditor) SetType(t QuestionType) {
	if t != TypeTrueFalse {
		t = TypeMultipleChoice
	}
	f.working.Type = t
	f.working.Options = DefaultOptions(t)
}

// SetCorrectOption marks exactly the option at index correct and clears the
// rest. Radio semantics: repeated calls with the same index are idempotent.
func (f *FormEditor) SetCorrectOption(index int) {
	if index < 0 || index >= len(f.working.Options) {
		return
	}
	for i := range f.working.Options {
		f.working.Options[i].IsCorrect = i == index
	}
}

func (f *FormEditor) SetOptionText(index int, text string) {
	if index < 0 || index >= len(f.working.Options) {
		return
	}
	f.working.Options[index].Text = text
}

func (f *FormEditor) AddOption() error {
	if f.working.Type != TypeMultipleChoice {
		return ErrNotMultipleChoice
	}
	f.working.Options = append(f.working.Options, OptionDraft{})
	return nil
}

// RemoveOption refuses, rather than silently ignores, removal at or below
// the floor.
func (f *FormEditor) RemoveOption(index int) error {
	if f.working.Type != TypeMultipleChoice {
		return ErrNotMultipleChoice
	}
	if len(f.working.Options) <= f.optionFloor {
		return ErrOptionFloor
	}
	if index < 0 || index >= len(f.working.Options) {
		return &ValidationError{Field: "options", Reason: "no option at that position"}
	}
	f.working.Options = append(f.working.Options[:index], f.working.Options[index+1:]...)
	return nil
}

// Submit commits the working copy into the draft. On success the next AI
// candidate is auto-loaded when the queue has one; otherwise the editor
// resets to a blank question of the same type. On failure nothing moves.
func (f *FormEditor) Submit(d *ExamDraft, next func() (QuestionDraft, bool)) error {
	if err := d.CommitQuestion(f.working, f.editingIndex); err != nil {
		return err
	}
	committedType := f.working.Type
	wasEditing := f.editingIndex != nil
	f.editingIndex = nil
	if !wasEditing && next != nil {
		if q, ok := next(); ok {
			f.Load(q, nil)
			return nil
		}
	}
	f.Reset(committedType)
	return nil
}

// CancelEdit discards the working copy's changes when revising a committed
// question. No-op while composing new.
func (f *FormEditor) CancelEdit() {
	if f.editingIndex == nil {
		return
	}
	f.Reset(f.working.Type)
}

// NoteDeleted adjusts the tracked editing index after the draft removed the
// question at index.
func (f *FormEditor) NoteDeleted(cancelled bool, shifted *int) {
	if cancelled {
		f.Reset(f.working.Type)
		return
	}
	f.editingIndex = shifted
}

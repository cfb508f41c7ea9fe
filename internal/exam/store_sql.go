package exam

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
)

type SQLStore struct {
	db     *sql.DB
	driver string // "sqlite" or "postgres"
}

func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver}
}

func (s *SQLStore) PutExam(ctx context.Context, e Exam) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO exams (id, course_id, title, duration, total_score, passing_score, number_of_questions, max_attempts, published, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		e.ID, e.Course.ID, e.Title, e.Duration, e.TotalScore, e.PassingScore,
		e.NumberOfQuestions, e.MaxAttempts, e.Published, e.CreatedAt)
	if err != nil {
		return err
	}
	if err := insertQuestions(ctx, tx, e.ID, e.Questions, 0); err != nil {
		return err
	}
	return tx.Commit()
}

// UpdateExam rewrites the exam row and upserts questions by id. Question rows
// absent from e.Questions stay in place.
func (s *SQLStore) UpdateExam(ctx context.Context, e Exam) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE exams SET title=$1, duration=$2, total_score=$3, passing_score=$4,
		        number_of_questions=$5, max_attempts=$6, published=$7
		 WHERE id=$8`,
		e.Title, e.Duration, e.TotalScore, e.PassingScore,
		e.NumberOfQuestions, e.MaxAttempts, e.Published, e.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	var maxPos sql.NullInt64
	if err := tx.QueryRowContext(ctx,
		`SELECT MAX(position) FROM questions WHERE exam_id=$1`, e.ID).Scan(&maxPos); err != nil {
		return err
	}
	nextPos := int(maxPos.Int64) + 1

	for _, q := range e.Questions {
		oj, err := json.Marshal(q.Options)
		if err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx,
			`UPDATE questions SET text=$1, qtype=$2, marks=$3, options_json=$4, correct_answer=$5,
			        is_code=$6, code_snippet=$7
			 WHERE id=$8 AND exam_id=$9`,
			q.Text, q.Type, q.Marks, string(oj), q.CorrectAnswer,
			q.IsCodeQuestion, q.CodeSnippet, q.ID, e.ID)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			if err := insertQuestions(ctx, tx, e.ID, []Question{q}, nextPos); err != nil {
				return err
			}
			nextPos++
		}
	}
	return tx.Commit()
}

func insertQuestions(ctx context.Context, tx *sql.Tx, examID string, qs []Question, startPos int) error {
	for i, q := range qs {
		oj, err := json.Marshal(q.Options)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO questions (id, exam_id, text, qtype, marks, options_json, correct_answer, is_code, code_snippet, position)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
			q.ID, examID, q.Text, q.Type, q.Marks, string(oj), q.CorrectAnswer,
			q.IsCodeQuestion, q.CodeSnippet, startPos+i)
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLStore) GetExam(ctx context.Context, id string) (Exam, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT e.id, e.title, e.duration, e.total_score, e.passing_score,
		        e.number_of_questions, e.max_attempts, e.published, e.created_at,
		        c.id, c.name
		 FROM exams e JOIN courses c ON c.id = e.course_id
		 WHERE e.id=$1`, id)
	var e Exam
	if err := row.Scan(&e.ID, &e.Title, &e.Duration, &e.TotalScore, &e.PassingScore,
		&e.NumberOfQuestions, &e.MaxAttempts, &e.Published, &e.CreatedAt,
		&e.Course.ID, &e.Course.Name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Exam{}, ErrNotFound
		}
		return Exam{}, err
	}
	qs, err := s.questionsForExam(ctx, id)
	if err != nil {
		return Exam{}, err
	}
	e.Questions = qs
	return e, nil
}

func (s *SQLStore) questionsForExam(ctx context.Context, examID string) ([]Question, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, text, qtype, marks, options_json, correct_answer, is_code, code_snippet
		 FROM questions WHERE exam_id=$1 ORDER BY position`, examID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Question
	for rows.Next() {
		var q Question
		var oj string
		if err := rows.Scan(&q.ID, &q.Text, &q.Type, &q.Marks, &oj, &q.CorrectAnswer,
			&q.IsCodeQuestion, &q.CodeSnippet); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(oj), &q.Options); err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (s *SQLStore) ListExamsByInstructor(ctx context.Context, instructorID string) ([]Exam, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT e.id FROM exams e
		 JOIN course_instructors ci ON ci.course_id = e.course_id
		 WHERE ci.instructor_id=$1
		 ORDER BY e.created_at DESC, e.id`, instructorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]Exam, 0, len(ids))
	for _, id := range ids {
		e, err := s.GetExam(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (s *SQLStore) CreateCourse(ctx context.Context, c Course, instructorID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO courses (id, name, created_by) VALUES ($1,$2,$3)`,
		c.ID, c.Name, instructorID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO course_instructors (course_id, instructor_id) VALUES ($1,$2)`,
		c.ID, instructorID); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLStore) GetCourse(ctx context.Context, id string) (Course, error) {
	var c Course
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name FROM courses WHERE id=$1`, id).Scan(&c.ID, &c.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return Course{}, ErrCourseNotFound
	}
	if err != nil {
		return Course{}, err
	}
	return c, nil
}

func (s *SQLStore) ListCoursesByInstructor(ctx context.Context, instructorID string) ([]Course, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT c.id, c.name FROM courses c
		 JOIN course_instructors ci ON ci.course_id = c.id
		 WHERE ci.instructor_id=$1 ORDER BY c.name`, instructorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Course
	for rows.Next() {
		var c Course
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *SQLStore) CourseOwnedBy(ctx context.Context, courseID, instructorID string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM course_instructors WHERE course_id=$1 AND instructor_id=$2`,
		courseID, instructorID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

package services

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"mime/multipart"
	"sort"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/submisoon/assessment-service/internal/models"
	"github.com/submisoon/assessment-service/internal/repositories"
)

// fixedClock pins time for deterministic assertions.
type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

// fakeData is the in-memory backing store shared by the fake repositories.
type fakeData struct {
	assessments map[uint]*models.Assessment
	questions   map[uint]*models.Question
	attempts    map[uint]*models.UserAssessment
	answers     map[uint]*models.Answer
	enrollments []fakeEnrollment
	files       map[uint]*models.StoredFile
	users       map[uint]*models.User
	leaderboard []*models.LeaderboardEntry
	nextID      uint
}

type fakeEnrollment struct {
	studentID uint
	classID   uint
	active    bool
}

func newFakeData() *fakeData {
	return &fakeData{
		assessments: make(map[uint]*models.Assessment),
		questions:   make(map[uint]*models.Question),
		attempts:    make(map[uint]*models.UserAssessment),
		answers:     make(map[uint]*models.Answer),
		files:       make(map[uint]*models.StoredFile),
		users:       make(map[uint]*models.User),
		nextID:      1000,
	}
}

func (d *fakeData) id() uint {
	d.nextID++
	return d.nextID
}

// fakeRepository implements repositories.Repository over fakeData. Its
// WithTransaction snapshots the mutable tables and restores them when the
// callback fails, mirroring a database rollback.
type fakeRepository struct {
	data *fakeData
}

func newFakeRepository(data *fakeData) *fakeRepository {
	return &fakeRepository{data: data}
}

func (r *fakeRepository) Assessment() repositories.AssessmentRepository {
	return &fakeAssessmentRepo{data: r.data}
}
func (r *fakeRepository) Question() repositories.QuestionRepository {
	return &fakeQuestionRepo{data: r.data}
}
func (r *fakeRepository) UserAssessment() repositories.UserAssessmentRepository {
	return &fakeUserAssessmentRepo{data: r.data}
}
func (r *fakeRepository) Answer() repositories.AnswerRepository {
	return &fakeAnswerRepo{data: r.data}
}
func (r *fakeRepository) Enrollment() repositories.EnrollmentRepository {
	return &fakeEnrollmentRepo{data: r.data}
}
func (r *fakeRepository) Student() repositories.StudentRepository {
	return &fakeStudentRepo{data: r.data}
}
func (r *fakeRepository) File() repositories.FileRepository {
	return &fakeFileRepo{data: r.data}
}
func (r *fakeRepository) User() repositories.UserRepository {
	return &fakeUserRepo{data: r.data}
}

func (r *fakeRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	attempts := snapshotMap(r.data.attempts)
	answers := snapshotMap(r.data.answers)
	files := snapshotMap(r.data.files)

	if err := fn(r); err != nil {
		r.data.attempts = attempts
		r.data.answers = answers
		r.data.files = files
		return err
	}
	return nil
}

func (r *fakeRepository) Ping(ctx context.Context) error { return nil }
func (r *fakeRepository) Close() error                   { return nil }

func snapshotMap[T any](src map[uint]*T) map[uint]*T {
	dst := make(map[uint]*T, len(src))
	for k, v := range src {
		cp := *v
		dst[k] = &cp
	}
	return dst
}

type fakeAssessmentRepo struct {
	data *fakeData
}

func (r *fakeAssessmentRepo) GetByID(_ context.Context, id uint) (*models.Assessment, error) {
	a, ok := r.data.assessments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *fakeAssessmentRepo) GetByIDWithClass(ctx context.Context, id uint) (*models.Assessment, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeAssessmentRepo) GetIncompleteByClassIDs(_ context.Context, classIDs, excludeIDs []uint, endAfter time.Time, termID *uint) ([]*models.Assessment, error) {
	classes := toSet(classIDs)
	excluded := toSet(excludeIDs)

	var result []*models.Assessment
	for _, a := range r.data.assessments {
		if !classes[a.ClassID] || excluded[a.ID] || a.EndDate.Before(endAfter) {
			continue
		}
		if termID != nil && a.Class.AcademicTermID != *termID {
			continue
		}
		cp := *a
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].EndDate.Before(result[j].EndDate) })
	return result, nil
}

func (r *fakeAssessmentRepo) GetCompletedWithDetails(_ context.Context, classIDs, includeIDs []uint, termID *uint) ([]*models.Assessment, error) {
	classes := toSet(classIDs)
	included := toSet(includeIDs)

	var result []*models.Assessment
	for _, a := range r.data.assessments {
		if !classes[a.ClassID] || !included[a.ID] {
			continue
		}
		if termID != nil && a.Class.AcademicTermID != *termID {
			continue
		}
		cp := *a
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool { return result[j].EndDate.Before(result[i].EndDate) })
	return result, nil
}

type fakeQuestionRepo struct {
	data *fakeData
}

func (r *fakeQuestionRepo) GetByID(_ context.Context, id uint) (*models.Question, error) {
	q, ok := r.data.questions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *q
	return &cp, nil
}

func (r *fakeQuestionRepo) GetByAssessmentWithOptions(_ context.Context, assessmentID uint) ([]*models.Question, error) {
	var result []*models.Question
	for _, q := range r.data.questions {
		if q.AssessmentID != assessmentID {
			continue
		}
		cp := *q
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

type fakeUserAssessmentRepo struct {
	data *fakeData
}

func (r *fakeUserAssessmentRepo) Create(_ context.Context, ua *models.UserAssessment) error {
	ua.ID = r.data.id()
	if ua.CreatedAt.IsZero() {
		ua.CreatedAt = time.Now()
	}
	cp := *ua
	r.data.attempts[ua.ID] = &cp
	return nil
}

func (r *fakeUserAssessmentRepo) Update(_ context.Context, ua *models.UserAssessment) error {
	if _, ok := r.data.attempts[ua.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *ua
	r.data.attempts[ua.ID] = &cp
	return nil
}

func (r *fakeUserAssessmentRepo) find(userID, assessmentID uint) *models.UserAssessment {
	for _, ua := range r.data.attempts {
		if ua.UserID == userID && ua.AssessmentID == assessmentID {
			return ua
		}
	}
	return nil
}

func (r *fakeUserAssessmentRepo) GetByUserAndAssessment(_ context.Context, userID, assessmentID uint) (*models.UserAssessment, error) {
	ua := r.find(userID, assessmentID)
	if ua == nil {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *ua
	return &cp, nil
}

func (r *fakeUserAssessmentRepo) GetWithAnswers(ctx context.Context, userID, assessmentID uint) (*models.UserAssessment, error) {
	ua, err := r.GetByUserAndAssessment(ctx, userID, assessmentID)
	if err != nil {
		return nil, err
	}
	ua.Answers = r.answersFor(ua.ID)
	return ua, nil
}

func (r *fakeUserAssessmentRepo) answersFor(attemptID uint) []models.Answer {
	var result []models.Answer
	for _, a := range r.data.answers {
		if a.UserAssessmentID != attemptID {
			continue
		}
		cp := *a
		if cp.SelectedOptionID != nil {
			for _, q := range r.data.questions {
				for i := range q.Options {
					if q.Options[i].ID == *cp.SelectedOptionID {
						opt := q.Options[i]
						cp.McqOption = &opt
					}
				}
			}
		}
		if cp.FileID != nil {
			if f, ok := r.data.files[*cp.FileID]; ok {
				fcp := *f
				cp.File = &fcp
			}
		}
		result = append(result, cp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].QuestionID < result[j].QuestionID })
	return result
}

func (r *fakeUserAssessmentRepo) GetCompletedOrReviewAssessmentIDs(_ context.Context, userID uint) ([]uint, error) {
	var ids []uint
	for _, ua := range r.data.attempts {
		if ua.UserID == userID && ua.Submitted() {
			ids = append(ids, ua.AssessmentID)
		}
	}
	return ids, nil
}

func (r *fakeUserAssessmentRepo) GetCompletedByUser(_ context.Context, userID uint) ([]*models.UserAssessment, error) {
	var result []*models.UserAssessment
	for _, ua := range r.data.attempts {
		if ua.UserID == userID && ua.Submitted() {
			cp := *ua
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (r *fakeUserAssessmentRepo) GetCompletedWithAnswers(ctx context.Context, userID, assessmentID uint) (*models.UserAssessment, error) {
	ua, err := r.GetWithAnswers(ctx, userID, assessmentID)
	if err != nil {
		return nil, err
	}
	if !ua.Submitted() {
		return nil, gorm.ErrRecordNotFound
	}
	return ua, nil
}

type fakeAnswerRepo struct {
	data *fakeData
}

func (r *fakeAnswerRepo) Create(_ context.Context, answer *models.Answer) error {
	answer.ID = r.data.id()
	cp := *answer
	r.data.answers[answer.ID] = &cp
	return nil
}

func (r *fakeAnswerRepo) Update(_ context.Context, answer *models.Answer) error {
	if _, ok := r.data.answers[answer.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *answer
	r.data.answers[answer.ID] = &cp
	return nil
}

type fakeEnrollmentRepo struct {
	data *fakeData
}

func (r *fakeEnrollmentRepo) GetActiveClassIDs(_ context.Context, studentID uint) ([]uint, error) {
	var ids []uint
	for _, e := range r.data.enrollments {
		if e.studentID == studentID && e.active {
			ids = append(ids, e.classID)
		}
	}
	return ids, nil
}

func (r *fakeEnrollmentRepo) IsEnrolledInClass(_ context.Context, studentID, classID uint) (bool, error) {
	for _, e := range r.data.enrollments {
		if e.studentID == studentID && e.classID == classID && e.active {
			return true, nil
		}
	}
	return false, nil
}

type fakeStudentRepo struct {
	data *fakeData
}

func (r *fakeStudentRepo) GetLeaderboard(_ context.Context) ([]*models.LeaderboardEntry, error) {
	result := make([]*models.LeaderboardEntry, 0, len(r.data.leaderboard))
	for _, e := range r.data.leaderboard {
		cp := *e
		result = append(result, &cp)
	}
	return result, nil
}

type fakeFileRepo struct {
	data *fakeData
}

func (r *fakeFileRepo) Create(_ context.Context, file *models.StoredFile) error {
	file.ID = r.data.id()
	cp := *file
	r.data.files[file.ID] = &cp
	return nil
}

func (r *fakeFileRepo) Delete(_ context.Context, id uint) error {
	delete(r.data.files, id)
	return nil
}

func (r *fakeFileRepo) GetByID(_ context.Context, id uint) (*models.StoredFile, error) {
	f, ok := r.data.files[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *f
	return &cp, nil
}

func (r *fakeFileRepo) GetByIDs(_ context.Context, ids []uint) ([]*models.StoredFile, error) {
	var result []*models.StoredFile
	for _, id := range ids {
		if f, ok := r.data.files[id]; ok {
			cp := *f
			result = append(result, &cp)
		}
	}
	return result, nil
}

type fakeUserRepo struct {
	data *fakeData
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range r.data.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uint) (*models.User, error) {
	u, ok := r.data.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func toSet(ids []uint) map[uint]bool {
	set := make(map[uint]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// makeFileHeader builds a real multipart.FileHeader carrying content, the
// same shape gin hands to the service from an upload form.
func makeFileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("failed to write form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close form writer: %v", err)
	}

	reader := multipart.NewReader(&buf, writer.Boundary())
	form, err := reader.ReadForm(32 << 20)
	if err != nil {
		t.Fatalf("failed to read form: %v", err)
	}
	t.Cleanup(func() { _ = form.RemoveAll() })

	return form.File["file"][0]
}

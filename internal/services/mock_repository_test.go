package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/course-access-service/internal/models"
	"github.com/SAP-F-2025/course-access-service/internal/repositories"
)

// fakeRepository is an in-memory Repository for service tests. All sub
// repositories share the same maps; WithTransaction just runs the function
// against the same state since the scenarios under test are single-threaded.
type fakeRepository struct {
	restrictions      map[uint]*models.Restriction
	nextRestrictionID uint

	// pairLocks records LockPair calls as "teacher:student" keys.
	pairLocks []string

	// restrictionCreateErr is returned once by the next restriction Create,
	// standing in for the unique index rejecting an insert that a concurrent
	// transaction raced past the overlap check.
	restrictionCreateErr error

	enrollments      map[string]*models.Enrollment
	nextEnrollmentID uint

	courses      map[uint]*models.Course
	users        map[string]*models.User
	chatRooms    map[uint]*models.ChatRoom // keyed by course id
	nextRoomID   uint
	participants map[string]*models.ChatParticipant
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		restrictions:      make(map[uint]*models.Restriction),
		nextRestrictionID: 1,
		enrollments:       make(map[string]*models.Enrollment),
		nextEnrollmentID:  1,
		courses:           make(map[uint]*models.Course),
		users:             make(map[string]*models.User),
		chatRooms:         make(map[uint]*models.ChatRoom),
		nextRoomID:        1,
		participants:      make(map[string]*models.ChatParticipant),
	}
}

func enrollmentKey(studentID string, courseID uint) string {
	return fmt.Sprintf("%s:%d", studentID, courseID)
}

func participantKey(roomID uint, userID string) string {
	return fmt.Sprintf("%d:%s", roomID, userID)
}

// ===== SEED HELPERS =====

func (f *fakeRepository) addUser(id string, role models.UserRole) {
	f.users[id] = &models.User{ID: id, FullName: id, Email: id + "@example.com", Role: role}
}

func (f *fakeRepository) addCourse(id uint, teacherID string, published bool) {
	f.courses[id] = &models.Course{ID: id, Title: fmt.Sprintf("Course %d", id), TeacherID: teacherID, IsPublished: published}
}

func (f *fakeRepository) addChatRoom(courseID uint) *models.ChatRoom {
	cid := courseID
	room := &models.ChatRoom{ID: f.nextRoomID, Type: models.ChatRoomCourse, CourseID: &cid, Name: fmt.Sprintf("Course %d chat", courseID)}
	f.nextRoomID++
	f.chatRooms[courseID] = room
	return room
}

func (f *fakeRepository) addEnrollment(studentID string, courseID uint, active bool) *models.Enrollment {
	e := &models.Enrollment{
		ID:         f.nextEnrollmentID,
		StudentID:  studentID,
		CourseID:   courseID,
		IsActive:   active,
		EnrolledAt: time.Now().Add(-time.Hour),
	}
	if !active {
		t := time.Now().Add(-time.Minute)
		e.UnenrolledAt = &t
	}
	f.nextEnrollmentID++
	f.enrollments[enrollmentKey(studentID, courseID)] = e
	return e
}

func (f *fakeRepository) addParticipant(roomID uint, userID string, active bool) *models.ChatParticipant {
	p := &models.ChatParticipant{ChatRoomID: roomID, UserID: userID, Role: models.ParticipantRoleParticipant, IsActive: active}
	f.participants[participantKey(roomID, userID)] = p
	return p
}

// ===== REPOSITORY INTERFACE =====

func (f *fakeRepository) Restriction() repositories.RestrictionRepository { return (*fakeRestrictionRepo)(f) }
func (f *fakeRepository) Enrollment() repositories.EnrollmentRepository   { return (*fakeEnrollmentRepo)(f) }
func (f *fakeRepository) Chat() repositories.ChatRepository               { return (*fakeChatRepo)(f) }
func (f *fakeRepository) Course() repositories.CourseRepository           { return (*fakeCourseRepo)(f) }
func (f *fakeRepository) User() repositories.UserRepository               { return (*fakeUserRepo)(f) }

func (f *fakeRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(f)
}

func (f *fakeRepository) Ping(ctx context.Context) error { return nil }
func (f *fakeRepository) Close() error                   { return nil }

// ===== RESTRICTION =====

type fakeRestrictionRepo fakeRepository

func (f *fakeRestrictionRepo) Create(ctx context.Context, restriction *models.Restriction) error {
	if f.restrictionCreateErr != nil {
		err := f.restrictionCreateErr
		f.restrictionCreateErr = nil
		return err
	}

	for _, existing := range f.restrictions {
		if existing.TeacherID != restriction.TeacherID || existing.StudentID != restriction.StudentID {
			continue
		}
		if sameCourse(existing.CourseID, restriction.CourseID) {
			return repositories.ErrDuplicateRestriction
		}
	}

	restriction.ID = f.nextRestrictionID
	f.nextRestrictionID++
	restriction.CreatedAt = time.Now()
	f.restrictions[restriction.ID] = restriction
	return nil
}

func sameCourse(a, b *uint) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (f *fakeRestrictionRepo) Delete(ctx context.Context, id uint) error {
	if _, ok := f.restrictions[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.restrictions, id)
	return nil
}

func (f *fakeRestrictionRepo) GetByID(ctx context.Context, id uint) (*models.Restriction, error) {
	restriction, ok := f.restrictions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return restriction, nil
}

func (f *fakeRestrictionRepo) ListByTeacher(ctx context.Context, teacherID string, filters repositories.RestrictionFilters) ([]*models.Restriction, int64, error) {
	var matched []*models.Restriction
	for _, r := range f.restrictions {
		if r.TeacherID != teacherID {
			continue
		}
		if filters.StudentID != nil && r.StudentID != *filters.StudentID {
			continue
		}
		if filters.CourseID != nil && (r.CourseID == nil || *r.CourseID != *filters.CourseID) {
			continue
		}
		matched = append(matched, r)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	total := int64(len(matched))
	if filters.Offset > 0 {
		if filters.Offset >= len(matched) {
			matched = nil
		} else {
			matched = matched[filters.Offset:]
		}
	}
	if filters.Limit > 0 && len(matched) > filters.Limit {
		matched = matched[:filters.Limit]
	}
	return matched, total, nil
}

func (f *fakeRestrictionRepo) blocking(studentID string, courseID uint) *models.Restriction {
	course := f.courses[courseID]

	var scoped *models.Restriction
	for _, r := range f.restrictions {
		if r.StudentID != studentID {
			continue
		}
		if r.CourseID == nil {
			if course != nil && r.TeacherID == course.TeacherID {
				return r // global wins
			}
			continue
		}
		if *r.CourseID == courseID {
			scoped = r
		}
	}
	return scoped
}

func (f *fakeRestrictionRepo) IsRestricted(ctx context.Context, studentID string, courseID uint) (bool, error) {
	return f.blocking(studentID, courseID) != nil, nil
}

func (f *fakeRestrictionRepo) FindBlocking(ctx context.Context, studentID string, courseID uint) (*models.Restriction, error) {
	return f.blocking(studentID, courseID), nil
}

func (f *fakeRestrictionRepo) LockPair(ctx context.Context, teacherID, studentID string) error {
	f.pairLocks = append(f.pairLocks, teacherID+":"+studentID)
	return nil
}

func (f *fakeRestrictionRepo) FindOverlapping(ctx context.Context, teacherID, studentID string) (*repositories.RestrictionOverlap, error) {
	overlap := &repositories.RestrictionOverlap{}
	for _, r := range f.restrictions {
		if r.TeacherID != teacherID || r.StudentID != studentID {
			continue
		}
		if r.CourseID == nil {
			overlap.Global = r
		} else {
			overlap.Scoped = append(overlap.Scoped, r)
		}
	}
	return overlap, nil
}

func (f *fakeRestrictionRepo) DeleteScopedForPair(ctx context.Context, teacherID, studentID string) (int64, error) {
	var deleted int64
	for id, r := range f.restrictions {
		if r.TeacherID == teacherID && r.StudentID == studentID && r.CourseID != nil {
			delete(f.restrictions, id)
			deleted++
		}
	}
	return deleted, nil
}

// ===== ENROLLMENT =====

type fakeEnrollmentRepo fakeRepository

func (f *fakeEnrollmentRepo) Create(ctx context.Context, enrollment *models.Enrollment) error {
	key := enrollmentKey(enrollment.StudentID, enrollment.CourseID)
	if _, ok := f.enrollments[key]; ok {
		return fmt.Errorf("duplicate enrollment")
	}
	enrollment.ID = f.nextEnrollmentID
	f.nextEnrollmentID++
	f.enrollments[key] = enrollment
	return nil
}

func (f *fakeEnrollmentRepo) Update(ctx context.Context, enrollment *models.Enrollment) error {
	key := enrollmentKey(enrollment.StudentID, enrollment.CourseID)
	if _, ok := f.enrollments[key]; !ok {
		return gorm.ErrRecordNotFound
	}
	f.enrollments[key] = enrollment
	return nil
}

func (f *fakeEnrollmentRepo) GetByStudentAndCourse(ctx context.Context, studentID string, courseID uint) (*models.Enrollment, error) {
	enrollment, ok := f.enrollments[enrollmentKey(studentID, courseID)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return enrollment, nil
}

func (f *fakeEnrollmentRepo) GetByStudentAndCourseForUpdate(ctx context.Context, studentID string, courseID uint) (*models.Enrollment, error) {
	return f.GetByStudentAndCourse(ctx, studentID, courseID)
}

func (f *fakeEnrollmentRepo) ListForPairsForUpdate(ctx context.Context, studentID string, courseIDs []uint) ([]*models.Enrollment, error) {
	var out []*models.Enrollment
	sorted := append([]uint(nil), courseIDs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	for _, courseID := range sorted {
		if enrollment, ok := f.enrollments[enrollmentKey(studentID, courseID)]; ok {
			out = append(out, enrollment)
		}
	}
	return out, nil
}

func (f *fakeEnrollmentRepo) ListByStudent(ctx context.Context, studentID string, activeOnly bool) ([]*models.Enrollment, error) {
	var out []*models.Enrollment
	for _, e := range f.enrollments {
		if e.StudentID != studentID {
			continue
		}
		if activeOnly && !e.IsActive {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CourseID < out[j].CourseID })
	return out, nil
}

func (f *fakeEnrollmentRepo) ListByCourse(ctx context.Context, courseID uint, activeOnly bool) ([]*models.Enrollment, error) {
	var out []*models.Enrollment
	for _, e := range f.enrollments {
		if e.CourseID != courseID {
			continue
		}
		if activeOnly && !e.IsActive {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StudentID < out[j].StudentID })
	return out, nil
}

// ===== CHAT =====

type fakeChatRepo fakeRepository

func (f *fakeChatRepo) CourseChatRoomFor(ctx context.Context, courseID uint) (*models.ChatRoom, error) {
	room, ok := f.chatRooms[courseID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return room, nil
}

func (f *fakeChatRepo) GetParticipant(ctx context.Context, chatRoomID uint, userID string) (*models.ChatParticipant, error) {
	participant, ok := f.participants[participantKey(chatRoomID, userID)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return participant, nil
}

func (f *fakeChatRepo) GetParticipantForUpdate(ctx context.Context, chatRoomID uint, userID string) (*models.ChatParticipant, error) {
	return f.GetParticipant(ctx, chatRoomID, userID)
}

func (f *fakeChatRepo) CreateParticipant(ctx context.Context, participant *models.ChatParticipant) error {
	key := participantKey(participant.ChatRoomID, participant.UserID)
	if _, ok := f.participants[key]; ok {
		return fmt.Errorf("duplicate participant")
	}
	f.participants[key] = participant
	return nil
}

func (f *fakeChatRepo) UpdateParticipant(ctx context.Context, participant *models.ChatParticipant) error {
	key := participantKey(participant.ChatRoomID, participant.UserID)
	if _, ok := f.participants[key]; !ok {
		return gorm.ErrRecordNotFound
	}
	f.participants[key] = participant
	return nil
}

// ===== COURSE =====

type fakeCourseRepo fakeRepository

func (f *fakeCourseRepo) GetByID(ctx context.Context, id uint) (*models.Course, error) {
	course, ok := f.courses[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return course, nil
}

func (f *fakeCourseRepo) CoursesTaughtBy(ctx context.Context, teacherID string) ([]uint, error) {
	var out []uint
	for id, course := range f.courses {
		if course.TeacherID == teacherID {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// ===== USER =====

type fakeUserRepo fakeRepository

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) Exists(ctx context.Context, id string) (bool, error) {
	_, ok := f.users[id]
	return ok, nil
}

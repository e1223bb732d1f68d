package classes

import (
	"context"
	"errors"
	"log/slog"

	"github.com/hamzamohiuddin1/msaconnect/internal/course"
	"github.com/hamzamohiuddin1/msaconnect/internal/metrics"
	"github.com/hamzamohiuddin1/msaconnect/internal/notify"
	"github.com/hamzamohiuddin1/msaconnect/internal/user"
)

var ErrInvalidClass = errors.New("class entries must have a course identifier and section code")

type Service struct {
	repo      user.Repository
	publisher notify.Publisher
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

func NewService(repo user.Repository, publisher notify.Publisher, logger *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		metrics:   m,
	}
}

// GetClasses returns the caller's class list.
func (s *Service) GetClasses(ctx context.Context, userID int) ([]user.Class, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.Classes == nil {
		return []user.Class{}, nil
	}
	return u.Classes, nil
}

// ReplaceClasses normalizes every submitted entry and replaces the caller's
// full class list. Normalization happens here, at the write path, with the
// same pure function the matcher uses at lookup time.
func (s *Service) ReplaceClasses(ctx context.Context, userID int, inputs []ClassInput) ([]user.Class, error) {
	normalized := make([]user.Class, 0, len(inputs))
	for _, in := range inputs {
		courseID := course.Normalize(in.CourseID)
		sectionCode := course.NormalizeSection(in.SectionCode)
		if courseID == "" || sectionCode == "" {
			return nil, ErrInvalidClass
		}
		normalized = append(normalized, user.Class{
			CourseID:       courseID,
			SectionCode:    sectionCode,
			DiscussionCode: course.NormalizeSection(in.DiscussionCode),
		})
	}

	u, err := s.repo.UpdateClasses(ctx, userID, normalized)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordClassesUpdated(ctx)
	s.logger.InfoContext(ctx, "classes updated", "user_id", userID, "count", len(normalized))

	if u.Classes == nil {
		return []user.Class{}, nil
	}
	return u.Classes, nil
}

// FindClassmates returns the other confirmed users enrolled in the given
// course, after mutual gender-visibility filtering. Malformed identifiers
// degrade to an empty result rather than an error.
func (s *Service) FindClassmates(ctx context.Context, userID int, rawCourseID, rawSectionCode string) (*ClassmatesResponse, error) {
	requester, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	courseID := course.Normalize(rawCourseID)
	sectionCode := course.NormalizeSection(rawSectionCode)

	resp := &ClassmatesResponse{
		CourseID:    courseID,
		SectionCode: sectionCode,
		Classmates:  []ClassmateSummary{},
	}

	if courseID == "" {
		return resp, nil
	}

	// Requester-side preference is a query pre-filter; the candidate-side
	// preference is applied afterwards. The filter is asymmetric by design:
	// whichever side opted in gets it honored.
	genderFilter := ""
	if requester.GenderPreference {
		genderFilter = requester.Gender
	}

	candidates, err := s.repo.FindClassmates(ctx, requester.ID, courseID, genderFilter)
	if err != nil {
		return nil, err
	}

	for _, candidate := range filterVisible(requester, candidates) {
		matching, ok := candidate.ClassFor(courseID)
		if !ok {
			continue
		}
		resp.Classmates = append(resp.Classmates, ClassmateSummary{
			ID:             candidate.ID,
			Name:           candidate.Name,
			Email:          candidate.Email,
			PhoneNumber:    candidate.PhoneNumber,
			Major:          candidate.Major,
			Year:           candidate.Year,
			Gender:         candidate.Gender,
			SectionCode:    matching.SectionCode,
			DiscussionCode: matching.DiscussionCode,
		})
	}
	resp.Count = len(resp.Classmates)

	s.metrics.RecordClassmateSearch(ctx)

	return resp, nil
}

// NotifyNewClassmates fans out a notification email to every classmate the
// caller would match for the given course. Publish failures are logged and
// never returned: email dispatch must not fail the triggering request.
func (s *Service) NotifyNewClassmates(ctx context.Context, userID int, rawCourseID, rawSectionCode string) (int, error) {
	requester, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return 0, err
	}

	matches, err := s.FindClassmates(ctx, userID, rawCourseID, rawSectionCode)
	if err != nil {
		return 0, err
	}

	queued := 0
	for _, classmate := range matches.Classmates {
		event := notify.Event{
			RecipientEmail: classmate.Email,
			RecipientName:  classmate.Name,
			ClassmateName:  requester.Name,
			CourseID:       matches.CourseID,
			SectionCode:    matches.SectionCode,
		}
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.ErrorContext(ctx, "failed to queue classmate notification",
				"recipient", classmate.Email,
				"course_id", matches.CourseID,
				"error", err,
			)
			continue
		}
		queued++
	}

	s.logger.InfoContext(ctx, "classmate notifications queued",
		"user_id", userID,
		"course_id", matches.CourseID,
		"queued", queued,
	)

	return queued, nil
}

// filterVisible applies the candidate-side half of the mutual visibility
// rule: a candidate who opted into gender-restriction is kept only when
// their gender equals the requester's.
func filterVisible(requester *user.User, candidates []user.User) []user.User {
	visible := candidates[:0]
	for _, candidate := range candidates {
		if candidate.GenderPreference && candidate.Gender != requester.Gender {
			continue
		}
		visible = append(visible, candidate)
	}
	return visible
}

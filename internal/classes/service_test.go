package classes_test

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"testing"

	"github.com/hamzamohiuddin1/msaconnect/internal/classes"
	"github.com/hamzamohiuddin1/msaconnect/internal/metrics"
	"github.com/hamzamohiuddin1/msaconnect/internal/notify"
	"github.com/hamzamohiuddin1/msaconnect/internal/user"
	"github.com/hamzamohiuddin1/msaconnect/internal/user/usertest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePublisher struct {
	mu     sync.Mutex
	events []notify.Event
}

func (f *fakePublisher) Publish(ctx context.Context, event notify.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

func (f *fakePublisher) Events() []notify.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]notify.Event(nil), f.events...)
}

func newTestService(t *testing.T) (*classes.Service, *usertest.Repository, *fakePublisher) {
	t.Helper()
	repo := usertest.NewRepository()
	publisher := &fakePublisher{}
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	return classes.NewService(repo, publisher, logger, metrics.NewMock()), repo, publisher
}

func seed(t *testing.T, repo *usertest.Repository, name, email, gender string, pref bool, confirmed bool, enrollments ...user.Class) *user.User {
	t.Helper()
	u, err := repo.Create(context.Background(), &user.User{
		Name:             name,
		Email:            email,
		Password:         "irrelevant-hash",
		PhoneNumber:      "8580000000",
		Major:            "Undeclared",
		Year:             "Sophomore",
		Gender:           gender,
		GenderPreference: pref,
		Classes:          enrollments,
		IsEmailConfirmed: confirmed,
	})
	require.NoError(t, err)
	return u
}

func cse101(section string) user.Class {
	return user.Class{CourseID: "CSE101", SectionCode: section}
}

func TestReplaceClasses(t *testing.T) {
	t.Run("NormalizesEveryEntry", func(t *testing.T) {
		svc, repo, _ := newTestService(t)
		owner := seed(t, repo, "Owner", "owner@ucsd.edu", user.GenderBrother, false, true)

		result, err := svc.ReplaceClasses(context.Background(), owner.ID, []classes.ClassInput{
			{CourseID: "cse 101", SectionCode: " a00 ", DiscussionCode: "a01"},
			{CourseID: "Math 20D", SectionCode: "b00"},
		})
		require.NoError(t, err)
		require.Len(t, result, 2)
		assert.Equal(t, user.Class{CourseID: "CSE101", SectionCode: "A00", DiscussionCode: "A01"}, result[0])
		assert.Equal(t, user.Class{CourseID: "MATH20D", SectionCode: "B00"}, result[1])
	})

	t.Run("ReplacesFullList", func(t *testing.T) {
		svc, repo, _ := newTestService(t)
		owner := seed(t, repo, "Owner", "owner@ucsd.edu", user.GenderBrother, false, true, cse101("A00"))

		result, err := svc.ReplaceClasses(context.Background(), owner.ID, []classes.ClassInput{
			{CourseID: "ECE65", SectionCode: "C00"},
		})
		require.NoError(t, err)
		require.Len(t, result, 1)
		assert.Equal(t, "ECE65", result[0].CourseID)
	})

	t.Run("RejectsBlankCourse", func(t *testing.T) {
		svc, repo, _ := newTestService(t)
		owner := seed(t, repo, "Owner", "owner@ucsd.edu", user.GenderBrother, false, true)

		_, err := svc.ReplaceClasses(context.Background(), owner.ID, []classes.ClassInput{
			{CourseID: "   ", SectionCode: "A00"},
		})
		assert.ErrorIs(t, err, classes.ErrInvalidClass)
	})
}

func TestFindClassmates(t *testing.T) {
	t.Run("MatchesAcrossSpellings", func(t *testing.T) {
		svc, repo, _ := newTestService(t)
		requester := seed(t, repo, "A", "a@ucsd.edu", user.GenderBrother, false, true, cse101("A00"))
		seed(t, repo, "B", "b@ucsd.edu", user.GenderBrother, false, true, cse101("A00"))

		// Lookup uses a different spelling than storage.
		resp, err := svc.FindClassmates(context.Background(), requester.ID, "cse 101", "a00")
		require.NoError(t, err)
		assert.Equal(t, "CSE101", resp.CourseID)
		assert.Equal(t, "A00", resp.SectionCode)
		require.Equal(t, 1, resp.Count)
		assert.Equal(t, "b@ucsd.edu", resp.Classmates[0].Email)
		assert.Equal(t, "A00", resp.Classmates[0].SectionCode)
	})

	t.Run("ExcludesSelf", func(t *testing.T) {
		svc, repo, _ := newTestService(t)
		requester := seed(t, repo, "A", "a@ucsd.edu", user.GenderBrother, false, true, cse101("A00"))

		resp, err := svc.FindClassmates(context.Background(), requester.ID, "CSE101", "A00")
		require.NoError(t, err)
		assert.Equal(t, 0, resp.Count)
		assert.Empty(t, resp.Classmates)
	})

	t.Run("ExcludesUnconfirmed", func(t *testing.T) {
		svc, repo, _ := newTestService(t)
		requester := seed(t, repo, "A", "a@ucsd.edu", user.GenderBrother, false, true, cse101("A00"))
		seed(t, repo, "B", "b@ucsd.edu", user.GenderBrother, false, false, cse101("A00"))

		resp, err := svc.FindClassmates(context.Background(), requester.ID, "CSE101", "A00")
		require.NoError(t, err)
		assert.Equal(t, 0, resp.Count)
	})

	t.Run("CandidatePreferenceHidesFromOtherGender", func(t *testing.T) {
		svc, repo, _ := newTestService(t)
		requester := seed(t, repo, "R", "r@ucsd.edu", user.GenderBrother, false, true, cse101("A00"))
		seed(t, repo, "C", "c@ucsd.edu", user.GenderSister, true, true, cse101("A00"))

		// C restricted visibility to Sisters; a Brother never sees C even
		// with no preference of his own.
		resp, err := svc.FindClassmates(context.Background(), requester.ID, "CSE101", "A00")
		require.NoError(t, err)
		assert.Equal(t, 0, resp.Count)
	})

	t.Run("RequesterPreferenceFiltersOtherGender", func(t *testing.T) {
		svc, repo, _ := newTestService(t)
		requester := seed(t, repo, "R", "r@ucsd.edu", user.GenderBrother, true, true, cse101("A00"))
		seed(t, repo, "C", "c@ucsd.edu", user.GenderSister, false, true, cse101("A00"))
		seed(t, repo, "D", "d@ucsd.edu", user.GenderBrother, false, true, cse101("A00"))

		// R opted in, so only Brothers are visible regardless of the
		// candidates' own preferences.
		resp, err := svc.FindClassmates(context.Background(), requester.ID, "CSE101", "A00")
		require.NoError(t, err)
		require.Equal(t, 1, resp.Count)
		assert.Equal(t, "d@ucsd.edu", resp.Classmates[0].Email)
	})

	t.Run("SameGenderWithMutualPreference", func(t *testing.T) {
		svc, repo, _ := newTestService(t)
		requester := seed(t, repo, "R", "r@ucsd.edu", user.GenderSister, true, true, cse101("A00"))
		seed(t, repo, "C", "c@ucsd.edu", user.GenderSister, true, true, cse101("A00"))

		resp, err := svc.FindClassmates(context.Background(), requester.ID, "CSE101", "A00")
		require.NoError(t, err)
		assert.Equal(t, 1, resp.Count)
	})

	t.Run("ProjectsMatchingClassOnly", func(t *testing.T) {
		svc, repo, _ := newTestService(t)
		requester := seed(t, repo, "A", "a@ucsd.edu", user.GenderBrother, false, true, cse101("A00"))
		seed(t, repo, "B", "b@ucsd.edu", user.GenderBrother, false, true,
			user.Class{CourseID: "MATH20D", SectionCode: "B00"},
			user.Class{CourseID: "CSE101", SectionCode: "C00", DiscussionCode: "C02"},
		)

		resp, err := svc.FindClassmates(context.Background(), requester.ID, "CSE101", "A00")
		require.NoError(t, err)
		require.Equal(t, 1, resp.Count)
		assert.Equal(t, "C00", resp.Classmates[0].SectionCode)
		assert.Equal(t, "C02", resp.Classmates[0].DiscussionCode)
	})

	t.Run("EmptyCourseDegradesToNoMatches", func(t *testing.T) {
		svc, repo, _ := newTestService(t)
		requester := seed(t, repo, "A", "a@ucsd.edu", user.GenderBrother, false, true, cse101("A00"))

		resp, err := svc.FindClassmates(context.Background(), requester.ID, "   ", "A00")
		require.NoError(t, err)
		assert.Equal(t, 0, resp.Count)
		assert.Empty(t, resp.Classmates)
	})
}

func TestNotifyNewClassmates(t *testing.T) {
	t.Run("FansOutToMatches", func(t *testing.T) {
		svc, repo, publisher := newTestService(t)
		requester := seed(t, repo, "New Kid", "new@ucsd.edu", user.GenderBrother, false, true, cse101("A00"))
		seed(t, repo, "B", "b@ucsd.edu", user.GenderBrother, false, true, cse101("A00"))
		seed(t, repo, "C", "c@ucsd.edu", user.GenderBrother, false, true, cse101("B00"))

		queued, err := svc.NotifyNewClassmates(context.Background(), requester.ID, "cse 101", "A00")
		require.NoError(t, err)
		assert.Equal(t, 2, queued)

		events := publisher.Events()
		require.Len(t, events, 2)
		recipients := []string{events[0].RecipientEmail, events[1].RecipientEmail}
		assert.ElementsMatch(t, []string{"b@ucsd.edu", "c@ucsd.edu"}, recipients)
		assert.Equal(t, "New Kid", events[0].ClassmateName)
		assert.Equal(t, "CSE101", events[0].CourseID)
	})

	t.Run("HonorsVisibilityFiltering", func(t *testing.T) {
		svc, repo, publisher := newTestService(t)
		requester := seed(t, repo, "New Kid", "new@ucsd.edu", user.GenderBrother, false, true, cse101("A00"))
		seed(t, repo, "Hidden", "hidden@ucsd.edu", user.GenderSister, true, true, cse101("A00"))

		queued, err := svc.NotifyNewClassmates(context.Background(), requester.ID, "CSE101", "A00")
		require.NoError(t, err)
		assert.Equal(t, 0, queued)
		assert.Empty(t, publisher.Events())
	})
}

package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/barbershop-api/internal/events"
	"github.com/spec-kit/barbershop-api/internal/repository/repotest"
)

var fixedNow = time.Date(2030, time.March, 10, 15, 30, 0, 0, time.UTC)

func newScheduleService(t *testing.T) (*ScheduleService, *repotest.Schedules, events.Dispatcher) {
	t.Helper()
	repo := repotest.NewSchedules()
	dispatcher := events.NewInMemoryDispatcher()
	svc := NewScheduleService(ScheduleDependencies{ScheduleRepo: repo, Dispatcher: dispatcher})
	svc.now = func() time.Time { return fixedNow }
	return svc, repo, dispatcher
}

func strPtr(s string) *string { return &s }

func TestScheduleCreate(t *testing.T) {
	svc, _, _ := newScheduleService(t)
	ctx := context.Background()

	s, err := svc.Create(ctx, "admin", ScheduleInput{Date: "11/03/2030", Hour: "9:30", Title: strPtr("Cut")})
	require.NoError(t, err)
	assert.Equal(t, "11/03/2030", s.Date)
	assert.Equal(t, "09:30", s.Hour)
	assert.Equal(t, "Cut", s.Title)
	_, err = uuid.Parse(s.ID)
	assert.NoError(t, err)
}

func TestScheduleCreate_TodayIsNotPast(t *testing.T) {
	svc, _, _ := newScheduleService(t)

	_, err := svc.Create(context.Background(), "admin", ScheduleInput{Date: "10/03/2030", Hour: "08:00"})
	require.NoError(t, err)
}

func TestScheduleCreate_PastDateRejected(t *testing.T) {
	svc, _, _ := newScheduleService(t)

	_, err := svc.Create(context.Background(), "admin", ScheduleInput{Date: "09/03/2030", Hour: "10:00"})
	requireDomainError(t, err, http.StatusBadRequest, "Invalid date")
}

func TestScheduleCreate_PastDateJudgedInConfiguredZone(t *testing.T) {
	loc := time.FixedZone("BRT", -3*60*60)
	svc := NewScheduleService(ScheduleDependencies{ScheduleRepo: repotest.NewSchedules(), Location: loc})
	// 01:00 UTC on the 11th is still the 10th in BRT.
	svc.now = func() time.Time { return time.Date(2030, time.March, 11, 1, 0, 0, 0, time.UTC) }

	_, err := svc.Create(context.Background(), "admin", ScheduleInput{Date: "10/03/2030", Hour: "22:00"})
	require.NoError(t, err)
}

func TestScheduleCreate_Validation(t *testing.T) {
	cases := []struct {
		name    string
		in      ScheduleInput
		message string
	}{
		{"missing date", ScheduleInput{Hour: "10:00"}, "Invalid body"},
		{"missing hour", ScheduleInput{Date: "11/03/2030"}, "Invalid body"},
		{"bad date", ScheduleInput{Date: "2030-03-11", Hour: "10:00"}, "Invalid date"},
		{"impossible date", ScheduleInput{Date: "31/02/2031", Hour: "10:00"}, "Invalid date"},
		{"bad hour", ScheduleInput{Date: "11/03/2030", Hour: "25:00"}, "Invalid hour"},
		{"twelve hour clock", ScheduleInput{Date: "11/03/2030", Hour: "10:00pm"}, "Invalid hour"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, _, _ := newScheduleService(t)
			_, err := svc.Create(context.Background(), "admin", tc.in)
			requireDomainError(t, err, http.StatusBadRequest, tc.message)
		})
	}
}

func TestScheduleCreate_SameSlotConflicts(t *testing.T) {
	svc, _, _ := newScheduleService(t)
	ctx := context.Background()
	in := ScheduleInput{Date: "11/03/2030", Hour: "10:00"}

	_, err := svc.Create(ctx, "admin", in)
	require.NoError(t, err)
	_, err = svc.Create(ctx, "admin", ScheduleInput{Date: "11/03/2030", Hour: "10:00"})
	requireDomainError(t, err, http.StatusBadRequest, "Hour already exists")
}

func TestScheduleCreate_UniqueConstraintDecidesWhenPrecheckMisses(t *testing.T) {
	svc, repo, _ := newScheduleService(t)
	ctx := context.Background()
	_, err := svc.Create(ctx, "admin", ScheduleInput{Date: "11/03/2030", Hour: "10:00"})
	require.NoError(t, err)

	repo.SkipLookups = true
	_, err = svc.Create(ctx, "admin", ScheduleInput{Date: "11/03/2030", Hour: "10:00"})
	requireDomainError(t, err, http.StatusBadRequest, "Hour already exists")
}

func TestScheduleCreate_SanitizesText(t *testing.T) {
	svc, _, _ := newScheduleService(t)

	s, err := svc.Create(context.Background(), "admin", ScheduleInput{
		Date:  "11/03/2030",
		Hour:  "10:00",
		Title: strPtr(`<script>alert(1)</script>Beard trim`),
		Body:  strPtr(`<b>bring</b> towel`),
	})
	require.NoError(t, err)
	assert.Equal(t, "Beard trim", s.Title)
	assert.Equal(t, "bring towel", s.Body)
}

func TestScheduleGet(t *testing.T) {
	svc, _, _ := newScheduleService(t)
	ctx := context.Background()
	created, err := svc.Create(ctx, "admin", ScheduleInput{Date: "11/03/2030", Hour: "10:00"})
	require.NoError(t, err)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = svc.Get(ctx, uuid.NewString())
	requireDomainError(t, err, http.StatusBadRequest, "Schedule not found")

	_, err = svc.Get(ctx, "not-a-uuid")
	requireDomainError(t, err, http.StatusBadRequest, "Schedule not found")
}

func TestScheduleList(t *testing.T) {
	svc, repo, _ := newScheduleService(t)
	ctx := context.Background()

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = svc.Create(ctx, "admin", ScheduleInput{Date: "11/03/2030", Hour: "10:00"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, "admin", ScheduleInput{Date: "11/03/2030", Hour: "11:00"})
	require.NoError(t, err)

	list, err = svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "10:00", list[0].Hour)

	repo.Err = errors.New("boom")
	_, err = svc.List(ctx)
	requireDomainError(t, err, http.StatusInternalServerError, "internal server error")
}

func TestScheduleUpdate(t *testing.T) {
	svc, _, _ := newScheduleService(t)
	ctx := context.Background()
	first, err := svc.Create(ctx, "admin", ScheduleInput{Date: "11/03/2030", Hour: "10:00", Title: strPtr("Cut")})
	require.NoError(t, err)
	_, err = svc.Create(ctx, "admin", ScheduleInput{Date: "11/03/2030", Hour: "11:00"})
	require.NoError(t, err)

	t.Run("same slot keeps title", func(t *testing.T) {
		updated, err := svc.Update(ctx, "admin", first.ID, ScheduleInput{Date: "11/03/2030", Hour: "10:00"})
		require.NoError(t, err)
		assert.Equal(t, "Cut", updated.Title)
	})
	t.Run("moves to free slot", func(t *testing.T) {
		updated, err := svc.Update(ctx, "admin", first.ID, ScheduleInput{Date: "12/03/2030", Hour: "10:00", Title: strPtr("")})
		require.NoError(t, err)
		assert.Equal(t, "12/03/2030", updated.Date)
		assert.Empty(t, updated.Title)
	})
	t.Run("occupied slot", func(t *testing.T) {
		_, err := svc.Update(ctx, "admin", first.ID, ScheduleInput{Date: "11/03/2030", Hour: "11:00"})
		requireDomainError(t, err, http.StatusBadRequest, "Hour already exists")
	})
	t.Run("past date", func(t *testing.T) {
		_, err := svc.Update(ctx, "admin", first.ID, ScheduleInput{Date: "01/01/2020", Hour: "11:00"})
		requireDomainError(t, err, http.StatusBadRequest, "Invalid date")
	})
	t.Run("unknown id", func(t *testing.T) {
		_, err := svc.Update(ctx, "admin", uuid.NewString(), ScheduleInput{Date: "12/03/2030", Hour: "12:00"})
		requireDomainError(t, err, http.StatusBadRequest, "Schedule not found")
	})
}

func TestScheduleDelete(t *testing.T) {
	svc, _, dispatcher := newScheduleService(t)
	ctx := context.Background()
	var seen []events.EventType
	for _, et := range []events.EventType{events.EventScheduleCreated, events.EventScheduleDeleted} {
		dispatcher.Subscribe(et, func(_ context.Context, e events.Event) error {
			seen = append(seen, e.Type)
			return nil
		})
	}

	created, err := svc.Create(ctx, "admin", ScheduleInput{Date: "11/03/2030", Hour: "10:00"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, "admin", created.ID))
	err = svc.Delete(ctx, "admin", created.ID)
	requireDomainError(t, err, http.StatusBadRequest, "Schedule not found")

	assert.Equal(t, []events.EventType{events.EventScheduleCreated, events.EventScheduleDeleted}, seen)

	// The slot is free again.
	_, err = svc.Create(ctx, "admin", ScheduleInput{Date: "11/03/2030", Hour: "10:00"})
	require.NoError(t, err)
}

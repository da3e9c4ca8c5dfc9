package contact

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/gridnode/internal/metrics"
	"github.com/magabrotheeeer/gridnode/internal/models"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateContact(ctx context.Context, c *models.Contact) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockRepository) ListContacts(ctx context.Context) ([]*models.Contact, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Contact), args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, routingKey string, message any) error {
	args := m.Called(ctx, routingKey, message)
	return args.Error(0)
}

type seqIDs struct {
	n int
}

func (g *seqIDs) Prefixed(prefix string) string {
	g.n++
	return prefix + "_" + strconv.Itoa(g.n)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newService(repo *MockRepository, pub *MockPublisher, latency time.Duration) (*Service, *metrics.Metrics) {
	m := metrics.New(prometheus.NewRegistry())
	s := New(newNoopLogger(), repo, &seqIDs{}, pub, m, latency)
	s.now = func() time.Time { return time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC) }
	return s, m
}

func TestSubmit(t *testing.T) {
	repo := new(MockRepository)
	pub := new(MockPublisher)
	repo.On("CreateContact", mock.Anything, mock.MatchedBy(func(c *models.Contact) bool {
		return c.ID == "contact_1" && c.Name == "Ann" && c.Email == "ann@b.co" && c.Company == ""
	})).Return(nil).Once()
	pub.On("Publish", mock.Anything, models.EventContactSubmitted, mock.AnythingOfType("*models.Contact")).Return(nil).Once()

	s, m := newService(repo, pub, 0)
	c, err := s.Submit(context.Background(), models.ContactRequest{
		Name:    " Ann ",
		Email:   "ann@b.co",
		Message: "hello",
	})
	require.NoError(t, err)

	assert.Equal(t, "contact_1", c.ID)
	assert.Equal(t, "hello", c.Message)
	assert.Equal(t, time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC), c.Timestamp)
	assert.InDelta(t, 1, testutil.ToFloat64(m.Contacts), 0)
	repo.AssertExpectations(t)
	pub.AssertExpectations(t)
}

func TestSubmit_PublishFailureIsNotFatal(t *testing.T) {
	repo := new(MockRepository)
	pub := new(MockPublisher)
	repo.On("CreateContact", mock.Anything, mock.Anything).Return(nil)
	pub.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("broker down"))

	s, _ := newService(repo, pub, 0)
	_, err := s.Submit(context.Background(), models.ContactRequest{Name: "Ann", Email: "ann@b.co", Message: "hi"})
	require.NoError(t, err)
}

func TestSubmit_StorageError(t *testing.T) {
	repo := new(MockRepository)
	pub := new(MockPublisher)
	repo.On("CreateContact", mock.Anything, mock.Anything).Return(errors.New("db down"))

	s, m := newService(repo, pub, 0)
	_, err := s.Submit(context.Background(), models.ContactRequest{Name: "Ann", Email: "ann@b.co", Message: "hi"})
	require.Error(t, err)
	assert.Zero(t, testutil.ToFloat64(m.Contacts))
	pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmit_RejectsLineBreaks(t *testing.T) {
	repo := new(MockRepository)
	pub := new(MockPublisher)
	s, _ := newService(repo, pub, 0)

	for _, req := range []models.ContactRequest{
		{Name: "Eve\r\nBcc: victim@example.com", Email: "eve@b.co", Message: "hi"},
		{Name: "Eve", Email: "eve@b.co", Company: "Acme\nX-Spam: yes", Message: "hi"},
	} {
		_, err := s.Submit(context.Background(), req)
		assert.ErrorIs(t, err, models.ErrMultilineField)
	}
	repo.AssertNotCalled(t, "CreateContact", mock.Anything, mock.Anything)
	pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmit_Cancelled(t *testing.T) {
	repo := new(MockRepository)
	s, _ := newService(repo, new(MockPublisher), time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Submit(ctx, models.ContactRequest{Name: "Ann", Email: "ann@b.co", Message: "hi"})
	assert.ErrorIs(t, err, context.Canceled)
	repo.AssertNotCalled(t, "CreateContact", mock.Anything, mock.Anything)
}

func TestList(t *testing.T) {
	repo := new(MockRepository)
	want := []*models.Contact{{ID: "contact_1"}, {ID: "contact_2"}}
	repo.On("ListContacts", mock.Anything).Return(want, nil)

	s, _ := newService(repo, new(MockPublisher), 0)
	got, err := s.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

package notifier

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/causeconnect/backend/internal/models"
	"github.com/causeconnect/backend/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) CreateNotification(ctx context.Context, n *models.Notification) error {
	args := m.Called(ctx, n)
	if args.Error(0) == nil {
		n.ID = 42
	}
	return args.Error(0)
}

func (m *MockNotificationRepository) GetByRecipientID(ctx context.Context, recipientID uint, unreadOnly bool, page, limit int) ([]models.Notification, int64, error) {
	args := m.Called(ctx, recipientID, unreadOnly, page, limit)
	return args.Get(0).([]models.Notification), args.Get(1).(int64), args.Error(2)
}

func (m *MockNotificationRepository) GetGrouped(ctx context.Context, recipientID uint, now time.Time) (*repositories.GroupedNotifications, error) {
	args := m.Called(ctx, recipientID, now)
	return args.Get(0).(*repositories.GroupedNotifications), args.Error(1)
}

func (m *MockNotificationRepository) GetUnreadCount(ctx context.Context, recipientID uint) (int64, error) {
	args := m.Called(ctx, recipientID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationRepository) MarkAsRead(ctx context.Context, notificationID, recipientID uint) error {
	return m.Called(ctx, notificationID, recipientID).Error(0)
}

func (m *MockNotificationRepository) MarkAllAsRead(ctx context.Context, recipientID uint) (int64, error) {
	args := m.Called(ctx, recipientID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationRepository) DeleteNotification(ctx context.Context, notificationID, recipientID uint) error {
	return m.Called(ctx, notificationID, recipientID).Error(0)
}

type MockSettingsFinder struct {
	mock.Mock
}

func (m *MockSettingsFinder) FindSettings(ctx context.Context, userID uint) (*models.UserSettings, error) {
	args := m.Called(ctx, userID)
	settings, _ := args.Get(0).(*models.UserSettings)
	return settings, args.Error(1)
}

type MockPusher struct {
	mock.Mock
}

func (m *MockPusher) Push(ctx context.Context, token string, n *models.Notification) error {
	return m.Called(ctx, token, n).Error(0)
}

var (
	ann = &models.User{ID: 1, Name: "Ann", Username: "ann"}
	bob = &models.User{ID: 2, Username: "bob"}
)

func TestEmit_FollowStoresUnreadNotice(t *testing.T) {
	repo := new(MockNotificationRepository)
	settings := new(MockSettingsFinder)
	settings.On("FindSettings", mock.Anything, bob.ID).Return(models.DefaultSettings(bob.ID), nil)
	repo.On("CreateNotification", mock.Anything, mock.MatchedBy(func(n *models.Notification) bool {
		return n.RecipientID == bob.ID &&
			n.Type == models.NotificationFollow &&
			n.ActorID != nil && *n.ActorID == ann.ID &&
			n.Link != nil && *n.Link == "/profile/1" &&
			!n.IsRead
	})).Return(nil)

	row := New(repo, settings, nil).Emit(context.Background(), Follow(ann, bob.ID))

	require.NotNil(t, row)
	assert.Equal(t, "Ann started following you", row.Message)
	repo.AssertExpectations(t)
}

func TestEmit_SkipsSelfAndNobody(t *testing.T) {
	repo := new(MockNotificationRepository)
	settings := new(MockSettingsFinder)
	e := New(repo, settings, nil)

	assert.Nil(t, e.Emit(context.Background(), PostLike(ann, &models.Post{ID: 5, AuthorID: ann.ID})))
	assert.Nil(t, e.Emit(context.Background(), Notice{Type: models.NotificationLike, ActorID: ann.ID}))

	repo.AssertNotCalled(t, "CreateNotification", mock.Anything, mock.Anything)
	settings.AssertNotCalled(t, "FindSettings", mock.Anything, mock.Anything)
}

func TestEmit_RespectsMutedTypes(t *testing.T) {
	muted := models.DefaultSettings(bob.ID)
	muted.NotifyLikes = false
	repo := new(MockNotificationRepository)
	settings := new(MockSettingsFinder)
	settings.On("FindSettings", mock.Anything, bob.ID).Return(muted, nil)
	repo.On("CreateNotification", mock.Anything, mock.Anything).Return(nil)
	e := New(repo, settings, nil)

	assert.Nil(t, e.Emit(context.Background(), PostLike(ann, &models.Post{ID: 5, AuthorID: bob.ID})))
	assert.NotNil(t, e.Emit(context.Background(), System(bob.ID, "Welcome", "Hello", "")))

	repo.AssertNumberOfCalls(t, "CreateNotification", 1)
}

func TestEmit_SettingsErrorFallsBackToDefaults(t *testing.T) {
	repo := new(MockNotificationRepository)
	settings := new(MockSettingsFinder)
	settings.On("FindSettings", mock.Anything, bob.ID).Return(nil, errors.New("db down"))
	repo.On("CreateNotification", mock.Anything, mock.Anything).Return(nil)

	row := New(repo, settings, nil).Emit(context.Background(), Follow(ann, bob.ID))
	assert.NotNil(t, row)
}

func TestEmit_SwallowsStoreErrors(t *testing.T) {
	repo := new(MockNotificationRepository)
	settings := new(MockSettingsFinder)
	pusher := new(MockPusher)
	enabled := models.DefaultSettings(bob.ID)
	enabled.PushNotifications = true
	enabled.PushToken = "device"
	settings.On("FindSettings", mock.Anything, bob.ID).Return(enabled, nil)
	repo.On("CreateNotification", mock.Anything, mock.Anything).Return(errors.New("insert failed"))

	assert.Nil(t, New(repo, settings, pusher).Emit(context.Background(), Follow(ann, bob.ID)))
	pusher.AssertNotCalled(t, "Push", mock.Anything, mock.Anything, mock.Anything)
}

func TestEmit_PushesOnlyWhenEnabled(t *testing.T) {
	tests := []struct {
		name     string
		enabled  bool
		token    string
		wantPush bool
	}{
		{"enabled with token", true, "device", true},
		{"disabled", false, "device", false},
		{"no token", true, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := models.DefaultSettings(bob.ID)
			s.PushNotifications = tt.enabled
			s.PushToken = tt.token
			repo := new(MockNotificationRepository)
			settings := new(MockSettingsFinder)
			pusher := new(MockPusher)
			settings.On("FindSettings", mock.Anything, bob.ID).Return(s, nil)
			repo.On("CreateNotification", mock.Anything, mock.Anything).Return(nil)
			pusher.On("Push", mock.Anything, "device", mock.Anything).Return(errors.New("unregistered"))

			row := New(repo, settings, pusher).Emit(context.Background(), Follow(ann, bob.ID))

			require.NotNil(t, row, "push failures never drop the stored row")
			if tt.wantPush {
				pusher.AssertCalled(t, "Push", mock.Anything, "device", row)
			} else {
				pusher.AssertNotCalled(t, "Push", mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}

func TestDonationNotice(t *testing.T) {
	event := &models.Event{ID: 9, OwnerID: bob.ID, Title: "Clean water"}

	n := Donation(ann, event, &models.Donation{Amount: 25, Currency: "USD"})
	assert.Equal(t, "Ann donated 25.00 USD to Clean water", n.Message)
	require.NotNil(t, n.Amount)
	assert.Equal(t, 25.0, *n.Amount)
	assert.Equal(t, "/events/9", n.Link)

	anon := Donation(ann, event, &models.Donation{Amount: 5, Currency: "USD", Anonymous: true})
	assert.Equal(t, "Someone donated 5.00 USD to Clean water", anon.Message)
}

func TestCommentNotice_Wording(t *testing.T) {
	postID, eventID := uint(3), uint(4)

	assert.Equal(t, "bob commented on your post", Comment(bob, ann.ID, &models.Comment{PostID: &postID}, false).Message)
	assert.Equal(t, "bob commented on your event", Comment(bob, ann.ID, &models.Comment{EventID: &eventID}, false).Message)
	reply := Comment(bob, ann.ID, &models.Comment{PostID: &postID}, true)
	assert.Equal(t, "bob replied to your comment", reply.Message)
	assert.Equal(t, "/posts/3", reply.Link)
}

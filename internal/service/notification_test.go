package service

import (
	"context"
	"errors"
	"testing"

	"etf-advisor/internal/dto"
	"etf-advisor/internal/model"
	"etf-advisor/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUnitOfWork struct {
	runs int
	err  error
}

func (f *fakeUnitOfWork) Run(ctx context.Context, fn func(opts ...utils.DBOption) error) error {
	f.runs++
	if f.err != nil {
		return f.err
	}
	return fn()
}

type fakeUserRepo struct {
	user     *model.User
	settings *model.InvestmentSettings

	updateCalls int
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id uint, opts ...utils.DBOption) (*model.User, error) {
	if f.user != nil && f.user.ID == id {
		return f.user, nil
	}
	return nil, nil
}

func (f *fakeUserRepo) GetSettings(ctx context.Context, userID uint, opts ...utils.DBOption) (*model.InvestmentSettings, error) {
	if f.settings != nil && f.settings.UserID == userID {
		return f.settings, nil
	}
	return nil, nil
}

func (f *fakeUserRepo) UpdateSettings(ctx context.Context, settings *model.InvestmentSettings, opts ...utils.DBOption) error {
	f.updateCalls++
	f.settings = settings
	return nil
}

func notificationFixture(t *testing.T) (NotificationService, *fakeUnitOfWork, *fakeUserRepo, *recordingNotificationRepo) {
	t.Helper()
	uow := &fakeUnitOfWork{}
	userRepo := &fakeUserRepo{
		settings: &model.InvestmentSettings{
			UserID:               7,
			RiskLevel:            5,
			NotificationEnabled:  true,
			NotificationChannels: "app",
		},
	}
	notificationRepo := &recordingNotificationRepo{}
	svc := NewNotificationService(testLogger(t), uow, userRepo, notificationRepo, nil)
	return svc, uow, userRepo, notificationRepo
}

func seedNotification(t *testing.T, repo *recordingNotificationRepo, userID uint) uint {
	t.Helper()
	n := &model.Notification{UserID: userID, Title: "t", Content: "c", Type: model.NotificationTypeSystem}
	require.NoError(t, repo.Create(context.Background(), n))
	return n.ID
}

func TestNotificationMarkRead_WriteRunsInTransaction(t *testing.T) {
	svc, uow, _, repo := notificationFixture(t)
	id := seedNotification(t, repo, 7)

	notification, err := svc.MarkRead(context.Background(), 7, id)
	require.NoError(t, err)
	require.NotNil(t, notification)

	assert.Equal(t, 1, uow.runs)
	assert.Equal(t, 1, repo.markReads)
}

func TestNotificationMarkRead_OtherUserWritesNothing(t *testing.T) {
	svc, _, _, repo := notificationFixture(t)
	id := seedNotification(t, repo, 7)

	_, err := svc.MarkRead(context.Background(), 9, id)
	require.ErrorIs(t, err, ErrForbidden)
	assert.Zero(t, repo.markReads)
}

func TestNotificationDelete_OwnershipCheckedBeforeDelete(t *testing.T) {
	svc, uow, _, repo := notificationFixture(t)
	id := seedNotification(t, repo, 7)

	require.ErrorIs(t, svc.Delete(context.Background(), 7, 42), ErrNotFound)
	assert.Empty(t, repo.deleted)

	require.NoError(t, svc.Delete(context.Background(), 7, id))
	assert.Equal(t, []uint{id}, repo.deleted)
	assert.Equal(t, 2, uow.runs)
}

func TestNotificationUpdateSettings_ReadModifyWriteIsTransactional(t *testing.T) {
	svc, uow, userRepo, _ := notificationFixture(t)

	disabled := false
	settings, err := svc.UpdateSettings(context.Background(), &dto.UpdateNotificationSettingsRequest{
		UserID:               7,
		NotificationEnabled:  &disabled,
		NotificationChannels: []string{"app", "email"},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, uow.runs)
	assert.Equal(t, 1, userRepo.updateCalls)
	assert.False(t, settings.NotificationEnabled)
	assert.Equal(t, "app,email", settings.NotificationChannels)
}

func TestNotificationUpdateSettings_UnknownUserWritesNothing(t *testing.T) {
	svc, _, userRepo, _ := notificationFixture(t)

	_, err := svc.UpdateSettings(context.Background(), &dto.UpdateNotificationSettingsRequest{UserID: 99})
	require.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, userRepo.updateCalls)
}

func TestNotificationUpdateSettings_TransactionFailureSurfaces(t *testing.T) {
	svc, uow, userRepo, _ := notificationFixture(t)
	uow.err = errors.New("deadlock detected")

	_, err := svc.UpdateSettings(context.Background(), &dto.UpdateNotificationSettingsRequest{UserID: 7})
	require.ErrorContains(t, err, "deadlock detected")
	assert.Zero(t, userRepo.updateCalls)
}

func TestNotificationList_ClampsLimit(t *testing.T) {
	svc, _, _, repo := notificationFixture(t)

	_, err := svc.List(context.Background(), &model.GetNotificationParam{UserID: 7})
	require.NoError(t, err)
	assert.Equal(t, dto.DefaultNotificationLimit, repo.lastGetParam.Limit)

	_, err = svc.List(context.Background(), &model.GetNotificationParam{UserID: 7, Limit: 1000})
	require.NoError(t, err)
	assert.Equal(t, dto.MaxNotificationLimit, repo.lastGetParam.Limit)
}

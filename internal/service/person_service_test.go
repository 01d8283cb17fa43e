package service

import (
	"context"
	"testing"

	"moneytracker/internal/core/domain"
	"moneytracker/internal/core/ports"
	"moneytracker/internal/core/ports/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type personTestDeps struct {
	svc        *PersonServiceImpl
	personRepo *mocks.MockPersonRepository
	entryRepo  *mocks.MockEntryRepository
	ctrl       *gomock.Controller
}

func setupPersonService(t *testing.T) *personTestDeps {
	ctrl := gomock.NewController(t)
	d := &personTestDeps{
		personRepo: mocks.NewMockPersonRepository(ctrl),
		entryRepo:  mocks.NewMockEntryRepository(ctrl),
		ctrl:       ctrl,
	}
	d.svc = NewPersonService(d.personRepo, d.entryRepo, newTestLogger())
	return d
}

func TestPersonService_CreatePerson(t *testing.T) {
	d := setupPersonService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	userID := uuid.New()
	phone := "+84901234567"

	d.personRepo.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, p *domain.Person) error {
			assert.Equal(t, userID, p.UserID)
			assert.Equal(t, "Alice", p.Name)
			return nil
		},
	)

	summary, err := d.svc.CreatePerson(ctx, userID, ports.CreatePersonRequest{
		Name: "Alice", Phone: &phone,
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice", summary.Person.Name)
	assert.True(t, summary.NetBalance.IsZero())
	assert.Equal(t, domain.PersonStatusSettled, summary.Status)
}

func TestPersonService_GetPerson_TheyOweMe(t *testing.T) {
	d := setupPersonService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	userID := uuid.New()
	personID := uuid.New()

	d.personRepo.EXPECT().GetByID(ctx, personID).Return(&domain.Person{
		ID: personID, UserID: userID, Name: "Bob",
	}, nil)
	d.entryRepo.EXPECT().SumByPersonAndKind(ctx, userID, personID, domain.EntryKindReceived).Return(dec(300), nil)
	d.entryRepo.EXPECT().SumByPersonAndKind(ctx, userID, personID, domain.EntryKindGiven).Return(dec(100), nil)

	summary, err := d.svc.GetPerson(ctx, userID, personID)
	require.NoError(t, err)
	assert.True(t, summary.NetBalance.Equal(dec(200)))
	assert.Equal(t, domain.PersonStatusTheyOweMe, summary.Status)
}

func TestPersonService_GetPerson_IOweThem(t *testing.T) {
	d := setupPersonService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	userID := uuid.New()
	personID := uuid.New()

	d.personRepo.EXPECT().GetByID(ctx, personID).Return(&domain.Person{
		ID: personID, UserID: userID, Name: "Bob",
	}, nil)
	d.entryRepo.EXPECT().SumByPersonAndKind(ctx, userID, personID, domain.EntryKindReceived).Return(dec(50), nil)
	d.entryRepo.EXPECT().SumByPersonAndKind(ctx, userID, personID, domain.EntryKindGiven).Return(dec(120), nil)

	summary, err := d.svc.GetPerson(ctx, userID, personID)
	require.NoError(t, err)
	assert.True(t, summary.NetBalance.Equal(dec(-70)))
	assert.Equal(t, domain.PersonStatusIOweThem, summary.Status)
}

func TestPersonService_GetPerson_Settled(t *testing.T) {
	d := setupPersonService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	userID := uuid.New()
	personID := uuid.New()

	d.personRepo.EXPECT().GetByID(ctx, personID).Return(&domain.Person{
		ID: personID, UserID: userID, Name: "Bob",
	}, nil)
	d.entryRepo.EXPECT().SumByPersonAndKind(ctx, userID, personID, domain.EntryKindReceived).Return(dec(80), nil)
	d.entryRepo.EXPECT().SumByPersonAndKind(ctx, userID, personID, domain.EntryKindGiven).Return(dec(80), nil)

	summary, err := d.svc.GetPerson(ctx, userID, personID)
	require.NoError(t, err)
	assert.Equal(t, domain.PersonStatusSettled, summary.Status)
}

func TestPersonService_GetPerson_NotFound(t *testing.T) {
	d := setupPersonService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	personID := uuid.New()
	d.personRepo.EXPECT().GetByID(ctx, personID).Return(nil, nil)

	_, err := d.svc.GetPerson(ctx, uuid.New(), personID)
	assertAppError(t, err, "RES_001")
}

func TestPersonService_GetPerson_OtherUsersPerson(t *testing.T) {
	d := setupPersonService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	personID := uuid.New()
	d.personRepo.EXPECT().GetByID(ctx, personID).Return(&domain.Person{
		ID: personID, UserID: uuid.New(), Name: "Eve",
	}, nil)

	_, err := d.svc.GetPerson(ctx, uuid.New(), personID)
	assertAppError(t, err, "RES_002")
}

func TestPersonService_ListPeople(t *testing.T) {
	d := setupPersonService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	userID := uuid.New()
	p1 := domain.Person{ID: uuid.New(), UserID: userID, Name: "Alice"}
	p2 := domain.Person{ID: uuid.New(), UserID: userID, Name: "Bob"}

	d.personRepo.EXPECT().ListByUser(ctx, userID).Return([]domain.Person{p1, p2}, nil)
	d.entryRepo.EXPECT().SumByPersonAndKind(ctx, userID, p1.ID, domain.EntryKindReceived).Return(dec(10), nil)
	d.entryRepo.EXPECT().SumByPersonAndKind(ctx, userID, p1.ID, domain.EntryKindGiven).Return(dec(0), nil)
	d.entryRepo.EXPECT().SumByPersonAndKind(ctx, userID, p2.ID, domain.EntryKindReceived).Return(dec(0), nil)
	d.entryRepo.EXPECT().SumByPersonAndKind(ctx, userID, p2.ID, domain.EntryKindGiven).Return(dec(0), nil)

	summaries, err := d.svc.ListPeople(ctx, userID)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, domain.PersonStatusTheyOweMe, summaries[0].Status)
	assert.Equal(t, domain.PersonStatusSettled, summaries[1].Status)
}

func TestPersonService_DeletePerson_Success(t *testing.T) {
	d := setupPersonService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	userID := uuid.New()
	personID := uuid.New()

	d.personRepo.EXPECT().GetByID(ctx, personID).Return(&domain.Person{
		ID: personID, UserID: userID, Name: "Alice",
	}, nil)
	d.entryRepo.EXPECT().ExistsByPerson(ctx, personID).Return(false, nil)
	d.personRepo.EXPECT().Delete(ctx, personID).Return(nil)

	err := d.svc.DeletePerson(ctx, userID, personID)
	require.NoError(t, err)
}

func TestPersonService_DeletePerson_ReferencedByEntries(t *testing.T) {
	d := setupPersonService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	userID := uuid.New()
	personID := uuid.New()

	d.personRepo.EXPECT().GetByID(ctx, personID).Return(&domain.Person{
		ID: personID, UserID: userID, Name: "Alice",
	}, nil)
	d.entryRepo.EXPECT().ExistsByPerson(ctx, personID).Return(true, nil)

	err := d.svc.DeletePerson(ctx, userID, personID)
	assertAppError(t, err, "RES_003")
}

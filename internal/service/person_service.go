package service

import (
	"context"
	"fmt"
	"time"

	"moneytracker/internal/core/domain"
	"moneytracker/internal/core/ports"
	"moneytracker/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// PersonServiceImpl implements ports.PersonService.
type PersonServiceImpl struct {
	personRepo ports.PersonRepository
	entryRepo  ports.EntryRepository
	log        zerolog.Logger
}

// NewPersonService creates a new PersonServiceImpl.
func NewPersonService(personRepo ports.PersonRepository, entryRepo ports.EntryRepository, log zerolog.Logger) *PersonServiceImpl {
	return &PersonServiceImpl{personRepo: personRepo, entryRepo: entryRepo, log: log}
}

// CreatePerson registers a new counterparty.
func (s *PersonServiceImpl) CreatePerson(ctx context.Context, userID uuid.UUID, req ports.CreatePersonRequest) (*ports.PersonSummary, error) {
	person := &domain.Person{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      req.Name,
		Phone:     req.Phone,
		Notes:     req.Notes,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.personRepo.Create(ctx, person); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create person: %w", err))
	}

	s.log.Info().
		Str("person_id", person.ID.String()).
		Str("user_id", userID.String()).
		Msg("person created")

	// A fresh person has no entries, so the summary is trivially settled.
	return &ports.PersonSummary{
		Person:        *person,
		TotalReceived: decimal.Zero,
		TotalGiven:    decimal.Zero,
		NetBalance:    decimal.Zero,
		Status:        domain.PersonStatusSettled,
	}, nil
}

// ListPeople returns all counterparties of the user with their debt summaries.
func (s *PersonServiceImpl) ListPeople(ctx context.Context, userID uuid.UUID) ([]ports.PersonSummary, error) {
	people, err := s.personRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list people: %w", err))
	}

	summaries := make([]ports.PersonSummary, 0, len(people))
	for _, p := range people {
		summary, err := s.summarize(ctx, userID, p)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, *summary)
	}
	return summaries, nil
}

// GetPerson returns one counterparty with their debt summary.
func (s *PersonServiceImpl) GetPerson(ctx context.Context, userID, personID uuid.UUID) (*ports.PersonSummary, error) {
	person, err := s.findOwned(ctx, userID, personID)
	if err != nil {
		return nil, err
	}
	return s.summarize(ctx, userID, *person)
}

// DeletePerson removes a counterparty. Deletion is refused while any ledger
// entry still references the person, reversals included.
func (s *PersonServiceImpl) DeletePerson(ctx context.Context, userID, personID uuid.UUID) error {
	if _, err := s.findOwned(ctx, userID, personID); err != nil {
		return err
	}

	referenced, err := s.entryRepo.ExistsByPerson(ctx, personID)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("check person references: %w", err))
	}
	if referenced {
		return apperror.ErrConflict("person is referenced by existing transactions")
	}

	if err := s.personRepo.Delete(ctx, personID); err != nil {
		return apperror.InternalError(fmt.Errorf("delete person: %w", err))
	}

	s.log.Info().
		Str("person_id", personID.String()).
		Str("user_id", userID.String()).
		Msg("person deleted")

	return nil
}

func (s *PersonServiceImpl) findOwned(ctx context.Context, userID, personID uuid.UUID) (*domain.Person, error) {
	person, err := s.personRepo.GetByID(ctx, personID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("find person: %w", err))
	}
	if person == nil {
		return nil, apperror.ErrNotFound("person")
	}
	if person.UserID != userID {
		return nil, apperror.ErrForbidden("person")
	}
	return person, nil
}

// summarize aggregates the person's RECEIVED and GIVEN totals. Reversal
// entries carry the opposite kind, so a reversed movement cancels itself out
// of the net without special handling.
func (s *PersonServiceImpl) summarize(ctx context.Context, userID uuid.UUID, person domain.Person) (*ports.PersonSummary, error) {
	received, err := s.entryRepo.SumByPersonAndKind(ctx, userID, person.ID, domain.EntryKindReceived)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("sum received: %w", err))
	}
	given, err := s.entryRepo.SumByPersonAndKind(ctx, userID, person.ID, domain.EntryKindGiven)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("sum given: %w", err))
	}

	net := received.Sub(given)
	status := domain.PersonStatusSettled
	switch {
	case net.IsPositive():
		status = domain.PersonStatusTheyOweMe
	case net.IsNegative():
		status = domain.PersonStatusIOweThem
	}

	return &ports.PersonSummary{
		Person:        person,
		TotalReceived: received,
		TotalGiven:    given,
		NetBalance:    net,
		Status:        status,
	}, nil
}

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"coursecatalog/internal/identity"
	"coursecatalog/internal/model"
	"coursecatalog/internal/pubsub"
	"coursecatalog/internal/repository"

	"github.com/rs/zerolog"
)

var ErrUsernameExhausted = errors.New("no free username candidate")

// SyncOutcome says what applying an identity event did.
type SyncOutcome string

const (
	OutcomeCreated SyncOutcome = "created"
	OutcomeReplay  SyncOutcome = "replay"
	OutcomeUpdated SyncOutcome = "updated"
	OutcomeDeleted SyncOutcome = "deleted"
	OutcomeIgnored SyncOutcome = "ignored"
)

type SyncResult struct {
	Outcome SyncOutcome
	// User is set for OutcomeCreated.
	User *model.User
}

// UserEvent is published after the local directory changes.
type UserEvent struct {
	Event      string `json:"event"`
	ExternalID string `json:"external_id"`
	Username   string `json:"username,omitempty"`
}

// UserSyncService keeps local user records in step with the identity provider.
type UserSyncService interface {
	HandleEvent(ctx context.Context, evt identity.Event) (SyncResult, error)
}

type userSyncService struct {
	repo        repository.UserRepository
	dlq         repository.DLQRepository
	publisher   pubsub.Publisher
	topic       string
	maxAttempts int
	logger      zerolog.Logger
}

// NewUserSyncService creates a UserSyncService. publisher may be nil, in
// which case no notifications are sent. Notifications that fail to publish
// are stored in dlq when it is non-nil.
func NewUserSyncService(repo repository.UserRepository, dlq repository.DLQRepository, publisher pubsub.Publisher, topic string, maxAttempts int, logger zerolog.Logger) UserSyncService {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &userSyncService{
		repo:        repo,
		dlq:         dlq,
		publisher:   publisher,
		topic:       topic,
		maxAttempts: maxAttempts,
		logger:      logger.With().Str("service", "UserSyncService").Logger(),
	}
}

func (s *userSyncService) HandleEvent(ctx context.Context, evt identity.Event) (SyncResult, error) {
	switch e := evt.(type) {
	case identity.UserCreated:
		return s.createUser(ctx, e.User)
	case identity.UserUpdated:
		s.logger.Debug().Str("external_id", e.User.ID).Msg("User updated, nothing to apply")
		return SyncResult{Outcome: OutcomeUpdated}, nil
	case identity.UserDeleted:
		return s.deleteUser(ctx, e.ExternalID)
	default:
		s.logger.Debug().Str("type", evt.Type()).Msg("Ignoring identity event")
		return SyncResult{Outcome: OutcomeIgnored}, nil
	}
}

func (s *userSyncService) createUser(ctx context.Context, data identity.UserData) (SyncResult, error) {
	existing, err := s.repo.GetUserByExternalID(ctx, data.ID)
	if err != nil {
		return SyncResult{}, err
	}
	if existing != nil {
		s.logger.Info().Str("external_id", data.ID).Msg("User already exists, treating as replay")
		return SyncResult{Outcome: OutcomeReplay}, nil
	}

	base := SanitizeUsername(DeriveUsername(data))
	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		candidate := usernameCandidate(base, attempt)
		taken, err := s.repo.UsernameExists(ctx, candidate)
		if err != nil {
			return SyncResult{}, err
		}
		if taken {
			continue
		}

		u := &model.User{
			ExternalID: data.ID,
			Username:   candidate,
			Email:      data.PrimaryEmail(),
			AvatarURL:  data.AvatarURL(),
		}
		err = s.repo.CreateUser(ctx, u)
		switch {
		case err == nil:
			s.logger.Info().Str("external_id", u.ExternalID).Str("username", u.Username).Msg("User created")
			s.notify(ctx, UserEvent{Event: identity.TypeUserCreated, ExternalID: u.ExternalID, Username: u.Username})
			return SyncResult{Outcome: OutcomeCreated, User: u}, nil
		case errors.Is(err, repository.ErrUsernameTaken):
			// Lost a race for this candidate; try the next suffix.
			continue
		case errors.Is(err, repository.ErrExternalIDTaken):
			s.logger.Info().Str("external_id", data.ID).Msg("Concurrent delivery created user, treating as replay")
			return SyncResult{Outcome: OutcomeReplay}, nil
		default:
			return SyncResult{}, err
		}
	}
	return SyncResult{}, fmt.Errorf("%w: base %q after %d attempts", ErrUsernameExhausted, base, s.maxAttempts)
}

func (s *userSyncService) deleteUser(ctx context.Context, externalID string) (SyncResult, error) {
	err := s.repo.DeleteUserByExternalID(ctx, externalID)
	if errors.Is(err, repository.ErrNotFound) {
		s.logger.Info().Str("external_id", externalID).Msg("Delete for unknown user acknowledged")
		return SyncResult{Outcome: OutcomeDeleted}, nil
	}
	if err != nil {
		return SyncResult{}, err
	}
	s.logger.Info().Str("external_id", externalID).Msg("User deleted")
	s.notify(ctx, UserEvent{Event: identity.TypeUserDeleted, ExternalID: externalID})
	return SyncResult{Outcome: OutcomeDeleted}, nil
}

// notify publishes evt when a publisher is configured. Failures never fail
// the sync; the message is parked in the dead letter table instead.
func (s *userSyncService) notify(ctx context.Context, evt UserEvent) {
	if s.publisher == nil || s.topic == "" {
		return
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to marshal user event")
		return
	}
	_, err = s.publisher.Publish(ctx, s.topic, payload)
	if err == nil {
		return
	}
	s.logger.Error().Err(err).Str("topic", s.topic).Str("external_id", evt.ExternalID).Msg("Failed to publish user event")
	if s.dlq == nil {
		return
	}
	dead := &model.DeadLetterMessage{
		Topic:     s.topic,
		EventKey:  evt.ExternalID,
		Payload:   string(payload),
		LastError: err.Error(),
	}
	if err := s.dlq.Create(ctx, dead); err != nil {
		s.logger.Error().Err(err).Str("external_id", evt.ExternalID).Msg("Failed to store dead letter")
	}
}

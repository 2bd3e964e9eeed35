package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"coursecatalog/internal/identity"
	"coursecatalog/internal/model"
	"coursecatalog/internal/repository/repotest"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu       sync.Mutex
	messages []UserEvent
	err      error
}

func (p *recordingPublisher) Publish(_ context.Context, _ string, payload []byte) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return "", p.err
	}
	var evt UserEvent
	if err := json.Unmarshal(payload, &evt); err != nil {
		return "", err
	}
	p.messages = append(p.messages, evt)
	return "msg-id", nil
}

func newSyncService(maxAttempts int) (UserSyncService, *repotest.UserRepo, *recordingPublisher) {
	svc, repo, pub, _ := newSyncServiceWithDLQ(maxAttempts)
	return svc, repo, pub
}

func newSyncServiceWithDLQ(maxAttempts int) (UserSyncService, *repotest.UserRepo, *recordingPublisher, *repotest.DLQRepo) {
	repo := repotest.NewUserRepo()
	dlq := repotest.NewDLQRepo()
	pub := &recordingPublisher{}
	return NewUserSyncService(repo, dlq, pub, "user-events", maxAttempts, zerolog.Nop()), repo, pub, dlq
}

func namedUser(id, first, last string) identity.UserData {
	return identity.UserData{ID: id, FirstName: &first, LastName: &last}
}

func TestDeriveUsername(t *testing.T) {
	username := "Jane_Doe"
	empty := ""
	primary := "e2"
	tests := []struct {
		name string
		data identity.UserData
		want string
	}{
		{"provider username kept as given", identity.UserData{Username: &username}, "Jane_Doe"},
		{"empty provider username falls through", identity.UserData{
			Username:       &empty,
			EmailAddresses: []identity.EmailAddress{{ID: "e1", EmailAddress: "Jane.Doe@Example.com"}},
		}, "jane.doe"},
		{"primary email local part", identity.UserData{
			EmailAddresses:        []identity.EmailAddress{{ID: "e1", EmailAddress: "a@x.io"}, {ID: "e2", EmailAddress: "B@x.io"}},
			PrimaryEmailAddressID: &primary,
		}, "b"},
		{"first and last name", namedUser("u", "John", "Doe"), "johndoe"},
		{"nothing", identity.UserData{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveUsername(tt.data))
		})
	}
}

func TestSanitizeUsername(t *testing.T) {
	assert.Equal(t, "johndoe", SanitizeUsername("john doe"))
	assert.Equal(t, "jane_doe-1", SanitizeUsername("jane_doe-1"))
	assert.Equal(t, "janedoe", SanitizeUsername("jane.doe"))
	assert.Equal(t, "Zo", SanitizeUsername("Zoë"))
	assert.Equal(t, "user", SanitizeUsername("!!!"))
	assert.Equal(t, "user", SanitizeUsername(""))
}

func TestCreateUserDerivesAndSuffixes(t *testing.T) {
	svc, repo, pub := newSyncService(100)
	ctx := context.Background()

	res, err := svc.HandleEvent(ctx, identity.UserCreated{User: namedUser("user_1", "John", " Doe")})
	require.NoError(t, err)
	assert.Equal(t, OutcomeCreated, res.Outcome)
	require.NotNil(t, res.User)
	assert.Equal(t, "johndoe", res.User.Username)

	res, err = svc.HandleEvent(ctx, identity.UserCreated{User: namedUser("user_2", "John", "Doe")})
	require.NoError(t, err)
	assert.Equal(t, "johndoe-1", res.User.Username)

	res, err = svc.HandleEvent(ctx, identity.UserCreated{User: namedUser("user_3", "john", "doe")})
	require.NoError(t, err)
	assert.Equal(t, "johndoe-2", res.User.Username)

	assert.Len(t, repo.Users(), 3)
	require.Len(t, pub.messages, 3)
	assert.Equal(t, UserEvent{Event: "user.created", ExternalID: "user_1", Username: "johndoe"}, pub.messages[0])
}

func TestCreateUserStoresEmailAndAvatar(t *testing.T) {
	svc, _, _ := newSyncService(100)
	avatar := "https://img.example/u.png"
	res, err := svc.HandleEvent(context.Background(), identity.UserCreated{User: identity.UserData{
		ID:              "user_1",
		EmailAddresses:  []identity.EmailAddress{{ID: "e1", EmailAddress: "Ada@Example.com"}},
		ProfileImageURL: &avatar,
	}})
	require.NoError(t, err)
	assert.Equal(t, "ada", res.User.Username)
	assert.Equal(t, "Ada@Example.com", res.User.Email)
	assert.Equal(t, avatar, res.User.AvatarURL)
}

func TestCreateUserReplayIsIdempotent(t *testing.T) {
	svc, repo, pub := newSyncService(100)
	ctx := context.Background()
	evt := identity.UserCreated{User: namedUser("user_1", "John", "Doe")}

	_, err := svc.HandleEvent(ctx, evt)
	require.NoError(t, err)
	res, err := svc.HandleEvent(ctx, evt)
	require.NoError(t, err)

	assert.Equal(t, OutcomeReplay, res.Outcome)
	assert.Nil(t, res.User)
	assert.Len(t, repo.Users(), 1)
	assert.Len(t, pub.messages, 1)
}

func TestCreateUserLosesUsernameRace(t *testing.T) {
	svc, repo, _ := newSyncService(100)
	raced := false
	repo.BeforeCreate = func(u *model.User) {
		if !raced && u.Username == "johndoe" {
			raced = true
			repo.Seed(model.User{ExternalID: "user_other", Username: "johndoe"})
		}
	}

	res, err := svc.HandleEvent(context.Background(), identity.UserCreated{User: namedUser("user_1", "John", "Doe")})
	require.NoError(t, err)
	assert.Equal(t, OutcomeCreated, res.Outcome)
	assert.Equal(t, "johndoe-1", res.User.Username)
}

func TestCreateUserLosesExternalIDRace(t *testing.T) {
	svc, repo, pub := newSyncService(100)
	repo.BeforeCreate = func(u *model.User) {
		repo.Seed(model.User{ExternalID: u.ExternalID, Username: "someone-else"})
	}

	res, err := svc.HandleEvent(context.Background(), identity.UserCreated{User: namedUser("user_1", "John", "Doe")})
	require.NoError(t, err)
	assert.Equal(t, OutcomeReplay, res.Outcome)
	assert.Len(t, repo.Users(), 1)
	assert.Empty(t, pub.messages)
}

func TestCreateUserExhaustsAttempts(t *testing.T) {
	svc, repo, _ := newSyncService(2)
	repo.Seed(model.User{ExternalID: "a", Username: "johndoe"})
	repo.Seed(model.User{ExternalID: "b", Username: "johndoe-1"})

	_, err := svc.HandleEvent(context.Background(), identity.UserCreated{User: namedUser("user_1", "John", "Doe")})
	assert.ErrorIs(t, err, ErrUsernameExhausted)
}

func TestConcurrentCreatesGetDistinctUsernames(t *testing.T) {
	svc, repo, _ := newSyncService(100)
	var wg sync.WaitGroup
	ids := []string{"user_1", "user_2", "user_3", "user_4", "user_5"}
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := svc.HandleEvent(context.Background(), identity.UserCreated{User: namedUser(id, "John", "Doe")})
			assert.NoError(t, err)
		}(id)
	}
	wg.Wait()

	seen := map[string]bool{}
	for _, u := range repo.Users() {
		assert.False(t, seen[u.Username], "duplicate username %s", u.Username)
		seen[u.Username] = true
	}
	assert.Len(t, seen, len(ids))
}

func TestUpdatedAndUnknownEventsDoNotMutate(t *testing.T) {
	svc, repo, _ := newSyncService(100)
	repo.Seed(model.User{ExternalID: "user_1", Username: "johndoe"})

	res, err := svc.HandleEvent(context.Background(), identity.UserUpdated{User: identity.UserData{ID: "user_1"}})
	require.NoError(t, err)
	assert.Equal(t, OutcomeUpdated, res.Outcome)

	res, err = svc.HandleEvent(context.Background(), identity.UnknownEvent{EventType: "session.created"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeIgnored, res.Outcome)

	assert.Equal(t, []model.User{{ExternalID: "user_1", Username: "johndoe", UserID: repo.Users()[0].UserID}}, repo.Users())
}

func TestDeleteUser(t *testing.T) {
	svc, repo, pub := newSyncService(100)
	repo.Seed(model.User{ExternalID: "user_1", Username: "johndoe"})

	res, err := svc.HandleEvent(context.Background(), identity.UserDeleted{ExternalID: "user_1"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeDeleted, res.Outcome)
	assert.Empty(t, repo.Users())
	require.Len(t, pub.messages, 1)
	assert.Equal(t, "user.deleted", pub.messages[0].Event)

	res, err = svc.HandleEvent(context.Background(), identity.UserDeleted{ExternalID: "user_1"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeDeleted, res.Outcome)
	assert.Len(t, pub.messages, 1)
}

func TestPublishFailureDoesNotFailSync(t *testing.T) {
	svc, repo, pub, dlq := newSyncServiceWithDLQ(100)
	pub.err = errors.New("pubsub unavailable")

	res, err := svc.HandleEvent(context.Background(), identity.UserCreated{User: namedUser("user_1", "John", "Doe")})
	require.NoError(t, err)
	assert.Equal(t, OutcomeCreated, res.Outcome)
	assert.Len(t, repo.Users(), 1)

	dead := dlq.Messages()
	require.Len(t, dead, 1)
	assert.Equal(t, "user-events", dead[0].Topic)
	assert.Equal(t, "user_1", dead[0].EventKey)
	assert.Equal(t, "pubsub unavailable", dead[0].LastError)
	assert.Equal(t, "pending", dead[0].Status)
	assert.JSONEq(t, `{"event":"user.created","external_id":"user_1","username":"johndoe"}`, dead[0].Payload)
}

func TestNoPublisherSkipsNotifications(t *testing.T) {
	dlq := repotest.NewDLQRepo()
	svc := NewUserSyncService(repotest.NewUserRepo(), dlq, nil, "user-events", 100, zerolog.Nop())

	_, err := svc.HandleEvent(context.Background(), identity.UserCreated{User: namedUser("user_1", "John", "Doe")})
	require.NoError(t, err)
	assert.Empty(t, dlq.Messages())
}

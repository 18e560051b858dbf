package testutil

import (
	"context"
	"sync"

	"github.com/hupe1980/botmesh/core"
	"github.com/hupe1980/botmesh/schema"
)

// CapturingConnector records every outbound call so tests can assert on
// delivered traffic. Safe for concurrent use; background workers may send
// while the test inspects.
type CapturingConnector struct {
	mu      sync.Mutex
	sent    []*schema.Activity
	replied []*schema.Activity
	updated []*schema.Activity
	deleted []string

	// Err, when set, is returned by every call.
	Err error
}

var _ core.ConnectorClient = (*CapturingConnector)(nil)

// SendToConversation records the activity as a new conversation post.
func (c *CapturingConnector) SendToConversation(_ context.Context, activity *schema.Activity) (*schema.ResourceResponse, error) {
	if c.Err != nil {
		return nil, c.Err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, activity)
	return &schema.ResourceResponse{ID: schema.NewID()}, nil
}

// ReplyToActivity records the activity as a reply.
func (c *CapturingConnector) ReplyToActivity(_ context.Context, activity *schema.Activity) (*schema.ResourceResponse, error) {
	if c.Err != nil {
		return nil, c.Err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.replied = append(c.replied, activity)
	return &schema.ResourceResponse{ID: schema.NewID()}, nil
}

// UpdateActivity records the updated activity.
func (c *CapturingConnector) UpdateActivity(_ context.Context, activity *schema.Activity) (*schema.ResourceResponse, error) {
	if c.Err != nil {
		return nil, c.Err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.updated = append(c.updated, activity)
	return &schema.ResourceResponse{ID: activity.ID}, nil
}

// DeleteActivity records the deleted activity id.
func (c *CapturingConnector) DeleteActivity(_ context.Context, _, activityID string) error {
	if c.Err != nil {
		return c.Err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deleted = append(c.deleted, activityID)
	return nil
}

// Sent returns a snapshot of activities posted as new conversation messages.
func (c *CapturingConnector) Sent() []*schema.Activity {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*schema.Activity(nil), c.sent...)
}

// Replied returns a snapshot of activities delivered as replies.
func (c *CapturingConnector) Replied() []*schema.Activity {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*schema.Activity(nil), c.replied...)
}

// Delivered returns replies followed by conversation posts.
func (c *CapturingConnector) Delivered() []*schema.Activity {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := append([]*schema.Activity(nil), c.replied...)
	return append(out, c.sent...)
}

// Updated returns a snapshot of updated activities.
func (c *CapturingConnector) Updated() []*schema.Activity {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*schema.Activity(nil), c.updated...)
}

// Deleted returns a snapshot of deleted activity ids.
func (c *CapturingConnector) Deleted() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.deleted...)
}

// StaticConnectorFactory hands out the same connector for every service URL.
type StaticConnectorFactory struct {
	Connector core.ConnectorClient
	Err       error
}

var _ core.ConnectorFactory = (*StaticConnectorFactory)(nil)

// Create implements core.ConnectorFactory.
func (f *StaticConnectorFactory) Create(context.Context, string, string) (core.ConnectorClient, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Connector, nil
}

// StubTokenClient serves queued token responses in order, then keeps
// returning the last one. A nil queue yields nil responses.
type StubTokenClient struct {
	mu        sync.Mutex
	Responses []*schema.TokenResponse
	Err       error
	calls     int
	signOuts  []string
}

var _ core.UserTokenClient = (*StubTokenClient)(nil)

// GetUserToken implements core.UserTokenClient.
func (s *StubTokenClient) GetUserToken(context.Context, string, string, string, string) (*schema.TokenResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.Err != nil {
		return nil, s.Err
	}
	if len(s.Responses) == 0 {
		return nil, nil
	}
	i := s.calls - 1
	if i >= len(s.Responses) {
		i = len(s.Responses) - 1
	}
	return s.Responses[i], nil
}

// SignOutUser implements core.UserTokenClient.
func (s *StubTokenClient) SignOutUser(_ context.Context, userID, _, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.signOuts = append(s.signOuts, userID)
	return nil
}

// Calls returns how many times GetUserToken was invoked.
func (s *StubTokenClient) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// SignOuts returns the user ids passed to SignOutUser.
func (s *StubTokenClient) SignOuts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.signOuts...)
}

// FakeAuth authenticates every request with a fixed identity and hands out
// the configured collaborators. The zero value rejects nothing and yields a
// plain bot identity.
type FakeAuth struct {
	Identity    *core.Identity
	Audience    string
	CallerID    string
	Connector   core.ConnectorClient
	TokenClient core.UserTokenClient

	// AuthErr, when set, fails AuthenticateRequest.
	AuthErr error
}

var _ core.Auth = (*FakeAuth)(nil)

// NewFakeAuth builds a FakeAuth around a capturing connector and a stub
// token client.
func NewFakeAuth() *FakeAuth {
	return &FakeAuth{
		Identity: &core.Identity{Claims: map[string]string{
			core.AppIDClaim:    "bot-app-id",
			core.AudienceClaim: "bot-app-id",
		}},
		Audience:    "https://api.example",
		Connector:   &CapturingConnector{},
		TokenClient: &StubTokenClient{},
	}
}

// AuthenticateRequest implements core.Auth.
func (f *FakeAuth) AuthenticateRequest(context.Context, *schema.Activity, string) (*core.AuthenticateRequestResult, error) {
	if f.AuthErr != nil {
		return nil, f.AuthErr
	}
	return &core.AuthenticateRequestResult{
		Identity:         f.Identity,
		Audience:         f.Audience,
		CallerID:         f.CallerID,
		ConnectorFactory: &StaticConnectorFactory{Connector: f.Connector},
	}, nil
}

// CreateConnectorFactory implements core.Auth.
func (f *FakeAuth) CreateConnectorFactory(context.Context, *core.Identity) (core.ConnectorFactory, error) {
	return &StaticConnectorFactory{Connector: f.Connector}, nil
}

// CreateUserTokenClient implements core.Auth.
func (f *FakeAuth) CreateUserTokenClient(context.Context, *core.Identity) (core.UserTokenClient, error) {
	return f.TokenClient, nil
}

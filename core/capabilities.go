package core

import (
	"context"

	"github.com/hupe1980/botmesh/schema"
)

// ConnectorClient is the outbound capability of a channel connector for one
// service URL / credential pair. Concrete transports live outside the
// engine; the engine only depends on this contract.
type ConnectorClient interface {
	SendToConversation(ctx context.Context, activity *schema.Activity) (*schema.ResourceResponse, error)
	ReplyToActivity(ctx context.Context, activity *schema.Activity) (*schema.ResourceResponse, error)
	UpdateActivity(ctx context.Context, activity *schema.Activity) (*schema.ResourceResponse, error)
	DeleteActivity(ctx context.Context, conversationID, activityID string) error
}

// ConnectorFactory creates connector clients bound to a service URL and
// audience. Factories are handed out by Auth as part of authenticating an
// inbound request.
type ConnectorFactory interface {
	Create(ctx context.Context, serviceURL, audience string) (ConnectorClient, error)
}

// UserTokenClient is the token-service capability used by sign-in flows and
// the token-exchange poller.
type UserTokenClient interface {
	GetUserToken(ctx context.Context, userID, connectionName, channelID, magicCode string) (*schema.TokenResponse, error)
	SignOutUser(ctx context.Context, userID, connectionName, channelID string) error
}

// Identity is the authenticated caller of an inbound request, expressed as
// a flat claims map.
type Identity struct {
	Claims map[string]string
}

// Claim names the engine inspects.
const (
	AppIDClaim    = "appid"
	AudienceClaim = "aud"
	VersionClaim  = "ver"
)

// AppID returns the application id claim, if present.
func (i *Identity) AppID() string {
	if i == nil {
		return ""
	}
	return i.Claims[AppIDClaim]
}

// Audience returns the audience claim, if present.
func (i *Identity) Audience() string {
	if i == nil {
		return ""
	}
	return i.Claims[AudienceClaim]
}

// IsSkill reports whether the identity belongs to another bot calling this
// one as a skill: a versioned token whose app id differs from its audience.
func (i *Identity) IsSkill() bool {
	if i == nil {
		return false
	}
	appID, audience := i.AppID(), i.Audience()
	return i.Claims[VersionClaim] != "" && appID != "" && audience != "" && appID != audience
}

// AuthenticateRequestResult is everything Auth derives from an inbound
// request: who is calling, which audience outbound calls must target, the
// caller id to stamp on the activity, and a factory for connector clients.
type AuthenticateRequestResult struct {
	Identity         *Identity
	Audience         string
	CallerID         string
	ConnectorFactory ConnectorFactory
}

// Auth authenticates inbound requests and mints the collaborators needed
// for outbound calls. Implementations own all credential mechanics.
// CreateConnectorFactory serves proactive turns, where no inbound request
// exists to authenticate.
type Auth interface {
	AuthenticateRequest(ctx context.Context, activity *schema.Activity, authHeader string) (*AuthenticateRequestResult, error)
	CreateConnectorFactory(ctx context.Context, identity *Identity) (ConnectorFactory, error)
	CreateUserTokenClient(ctx context.Context, identity *Identity) (UserTokenClient, error)
}

package core

import (
	"context"

	"github.com/hupe1980/botmesh/schema"
)

// HandlerFunc is the bot callback contract: the pipeline terminus invoked
// once per turn after all middleware has run.
type HandlerFunc func(tc *TurnContext) error

// Bot is implemented by applications that prefer a type over a bare
// function as the pipeline terminus.
type Bot interface {
	OnTurn(tc *TurnContext) error
}

// Adapter is the capability a TurnContext needs for terminal delivery and
// that hosts use to continue conversations proactively. The concrete
// implementation lives in the adapter package.
type Adapter interface {
	SendActivities(ctx context.Context, tc *TurnContext, activities []*schema.Activity) ([]*schema.ResourceResponse, error)
	UpdateActivity(ctx context.Context, tc *TurnContext, activity *schema.Activity) (*schema.ResourceResponse, error)
	DeleteActivity(ctx context.Context, tc *TurnContext, reference *schema.ConversationReference) error
	ContinueConversation(ctx context.Context, appID string, reference *schema.ConversationReference, callback HandlerFunc) error
}

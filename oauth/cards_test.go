package oauth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hupe1980/botmesh/schema"
)

func TestFindOAuthCard_TypedAttachment(t *testing.T) {
	card := &schema.OAuthCard{Text: "Sign in", ConnectionName: "github"}
	activity := &schema.Activity{
		Type:        schema.ActivityMessage,
		Attachments: []schema.Attachment{schema.NewOAuthCardAttachment(card)},
	}

	found := FindOAuthCard(activity)
	assert.NotNil(t, found)
	assert.Equal(t, "github", found.ConnectionName)
}

func TestFindOAuthCard_ValueAttachment(t *testing.T) {
	activity := &schema.Activity{
		Type: schema.ActivityMessage,
		Attachments: []schema.Attachment{{
			ContentType: schema.OAuthCardContentType,
			Content:     schema.OAuthCard{ConnectionName: "github"},
		}},
	}

	found := FindOAuthCard(activity)
	assert.NotNil(t, found)
	assert.Equal(t, "github", found.ConnectionName)
}

func TestFindOAuthCard_GenericMapAttachment(t *testing.T) {
	// Attachments that crossed a JSON boundary arrive as generic maps.
	activity := &schema.Activity{
		Type: schema.ActivityMessage,
		Attachments: []schema.Attachment{{
			ContentType: schema.OAuthCardContentType,
			Content: map[string]any{
				"text":           "Sign in",
				"connectionName": "github",
			},
		}},
	}

	found := FindOAuthCard(activity)
	assert.NotNil(t, found)
	assert.Equal(t, "github", found.ConnectionName)
}

func TestFindOAuthCard_NoMatch(t *testing.T) {
	assert.Nil(t, FindOAuthCard(nil))
	assert.Nil(t, FindOAuthCard(&schema.Activity{Type: schema.ActivityMessage}))

	activity := &schema.Activity{
		Type: schema.ActivityMessage,
		Attachments: []schema.Attachment{{
			ContentType: schema.SignInCardContentType,
			Content:     &schema.SignInCard{Text: "Sign in"},
		}},
	}
	assert.Nil(t, FindOAuthCard(activity))
}

func TestIsOAuthResponseActivity(t *testing.T) {
	tests := []struct {
		name     string
		activity *schema.Activity
		want     bool
	}{
		{
			name:     "tokens/response event",
			activity: &schema.Activity{Type: schema.ActivityEvent, Name: schema.TokenResponseEventName},
			want:     true,
		},
		{
			name:     "verify state invoke",
			activity: &schema.Activity{Type: schema.ActivityInvoke, Name: schema.SignInVerifyStateOperation},
			want:     true,
		},
		{
			name:     "token exchange invoke",
			activity: &schema.Activity{Type: schema.ActivityInvoke, Name: schema.SignInTokenExchangeOperation},
			want:     true,
		},
		{
			name:     "plain event",
			activity: &schema.Activity{Type: schema.ActivityEvent, Name: "custom"},
			want:     false,
		},
		{
			name:     "message",
			activity: &schema.Activity{Type: schema.ActivityMessage},
			want:     false,
		},
		{
			name: "nil activity",
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsOAuthResponseActivity(tt.activity))
		})
	}
}

package schema

import (
	"encoding/json"
	"strings"
)

// Mention is the entity a channel attaches when a user @-mentions someone
// in a message.
type Mention struct {
	Type      string          `json:"type,omitempty"`
	Text      string          `json:"text,omitempty"`
	Mentioned *ChannelAccount `json:"mentioned,omitempty"`
}

// MentionEntityType tags mention entities in Activity.Entities.
const MentionEntityType = "mention"

// GetMentions returns the mention entities carried by the activity.
// Entities arrive as generic JSON maps, so each candidate goes through a
// decode; malformed entries are skipped.
func (a *Activity) GetMentions() []Mention {
	var mentions []Mention
	for _, entity := range a.Entities {
		if t, _ := entity["type"].(string); !strings.EqualFold(t, MentionEntityType) {
			continue
		}
		raw, err := json.Marshal(entity)
		if err != nil {
			continue
		}
		var mention Mention
		if err := json.Unmarshal(raw, &mention); err != nil {
			continue
		}
		mentions = append(mentions, mention)
	}
	return mentions
}

// RemoveRecipientMention strips the recipient's @-mention text ("@BotName
// do this" → "do this") from the activity text and returns the result.
// Channels that address bots by mention prepend it to every message; bots
// usually want the bare command.
func (a *Activity) RemoveRecipientMention() string {
	if a.Recipient == nil {
		return a.Text
	}
	return a.RemoveMentionText(a.Recipient.ID)
}

// RemoveMentionText strips every mention of the given account id from the
// activity text, mutating Text and returning it.
func (a *Activity) RemoveMentionText(id string) string {
	for _, mention := range a.GetMentions() {
		if mention.Mentioned == nil || mention.Mentioned.ID != id {
			continue
		}
		if mention.Text == "" {
			continue
		}
		a.Text = strings.TrimSpace(strings.ReplaceAll(a.Text, mention.Text, ""))
	}
	return a.Text
}

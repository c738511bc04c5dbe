package honeypot

import (
	"encoding/json"
	"strings"

	"honeypot-lab/internal/domain/models"
)

// DefaultConversationID is used when the caller supplies none
const DefaultConversationID = "default"

// NormalizeRequest turns any request body into a TurnRequest. Wrong shapes are
// replaced with defaults instead of being rejected: a live conversation is
// never dropped over a malformed field.
//
// Accepted shapes:
//
//	message:             "text" | {"text": "..."}
//	history:             [...] under "history" or "conversationHistory"
//	history entry:       {"role": ..., "content"|"text": ...}
func NormalizeRequest(body []byte) models.TurnRequest {
	req := models.TurnRequest{
		ConversationID: DefaultConversationID,
		History:        []models.ConversationTurn{},
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return req
	}

	if id := stringField(raw["conversation_id"]); id != "" {
		req.ConversationID = id
	} else if id := stringField(raw["sessionId"]); id != "" {
		req.ConversationID = id
	}

	req.Message = messageText(raw["message"])

	history, ok := raw["history"]
	if !ok || isNull(history) {
		history = raw["conversationHistory"]
	}
	req.History = historyTurns(history)

	return req
}

func isNull(v json.RawMessage) bool {
	return len(v) == 0 || string(v) == "null"
}

func stringField(v json.RawMessage) string {
	var s string
	if isNull(v) || json.Unmarshal(v, &s) != nil {
		return ""
	}
	return s
}

func messageText(v json.RawMessage) string {
	if s := stringField(v); s != "" {
		return s
	}
	var nested struct {
		Text json.RawMessage `json:"text"`
	}
	if isNull(v) || json.Unmarshal(v, &nested) != nil {
		return ""
	}
	return stringField(nested.Text)
}

func historyTurns(v json.RawMessage) []models.ConversationTurn {
	turns := []models.ConversationTurn{}

	var entries []json.RawMessage
	if isNull(v) || json.Unmarshal(v, &entries) != nil {
		return turns
	}

	for _, e := range entries {
		var fields map[string]json.RawMessage
		if json.Unmarshal(e, &fields) != nil {
			// A non-object entry still counts as a turn that happened
			turns = append(turns, models.ConversationTurn{Role: models.TurnRoleCounterpart})
			continue
		}
		content := stringField(fields["content"])
		if content == "" {
			content = stringField(fields["text"])
		}
		role := stringField(fields["role"])
		if role == "" {
			role = stringField(fields["sender"])
		}
		turns = append(turns, models.ConversationTurn{
			Role:    normalizeRole(role),
			Content: content,
		})
	}
	return turns
}

func normalizeRole(role string) models.TurnRole {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case "agent", "assistant", "user_agent", "honeypot":
		return models.TurnRoleAgent
	default:
		return models.TurnRoleCounterpart
	}
}

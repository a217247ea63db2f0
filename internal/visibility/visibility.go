// Package visibility computes the message log a given viewer actually sees.
// Per-viewer deletion records are layered over the shared, immutable log, so
// the two participants can hold divergent views of the same chat.
package visibility

import "messaging-service/internal/models"

// Filter returns the order-preserving subsequence of messages not hidden for
// the viewer. It never mutates its input.
func Filter(messages []models.Message, hidden map[int]struct{}) []models.Message {
	if len(hidden) == 0 {
		return messages
	}
	visible := make([]models.Message, 0, len(messages))
	for _, msg := range messages {
		if _, ok := hidden[msg.ID]; ok {
			continue
		}
		visible = append(visible, msg)
	}
	return visible
}

// internal/app/features/messages/sort.go
package messages

import "sort"

// sortConversations orders conversations newest message first.
func sortConversations(cs []Conversation) {
	sort.SliceStable(cs, func(i, j int) bool {
		a, b := cs[i].LastMessage, cs[j].LastMessage
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
}

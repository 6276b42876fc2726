package chat

import (
	"sort"
	"strings"
	"time"
)

// FuzzyWindow is how close two identical submissions must be to count as
// one.
const FuzzyWindow = 5 * time.Second

// DedupeByID keeps the first message for each id, preserving order.
func DedupeByID(msgs []Message) []Message {
	seen := make(map[string]bool, len(msgs))
	out := make([]Message, 0, len(msgs))
	for _, m := range msgs {
		if m.ID != "" {
			if seen[m.ID] {
				continue
			}
			seen[m.ID] = true
		}
		out = append(out, m)
	}
	return out
}

// DedupeFuzzy drops a message when an earlier kept message has the same
// role and trimmed content and was created within FuzzyWindow of it.
func DedupeFuzzy(msgs []Message) []Message {
	type key struct {
		role    Role
		content string
	}
	kept := make(map[key][]time.Time, len(msgs))
	out := make([]Message, 0, len(msgs))
	for _, m := range msgs {
		k := key{role: m.Role, content: strings.TrimSpace(m.Content)}
		dup := false
		for _, at := range kept[k] {
			if absDuration(m.CreatedAt.Sub(at)) <= FuzzyWindow {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		kept[k] = append(kept[k], m.CreatedAt)
		out = append(out, m)
	}
	return out
}

// Merge combines server-confirmed messages with optimistic local ones.
// Server copies win on conflict; the result is ordered by CreatedAt.
func Merge(server, optimistic []Message) []Message {
	all := make([]Message, 0, len(server)+len(optimistic))
	all = append(all, server...)
	all = append(all, optimistic...)
	out := DedupeFuzzy(DedupeByID(all))
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

package message

import (
	"fmt"
	"io"
	"sort"
)

// Stats holds aggregate statistics for one conversation.
type Stats struct {
	Total     int
	ByRole    map[Role]int
	ToolCalls map[string]int // invocations per tool name
	Subagents int
}

// ComputeStats calculates aggregate statistics from a message sequence.
// Subagent sub-conversations are counted but not descended into.
func ComputeStats(msgs []Message) *Stats {
	stats := &Stats{
		ByRole:    make(map[Role]int),
		ToolCalls: make(map[string]int),
	}

	for _, m := range msgs {
		stats.Total++
		stats.ByRole[m.Role]++

		switch m.Role {
		case RoleToolCall:
			if m.ToolCall != nil {
				stats.ToolCalls[m.ToolCall.Name]++
			}
		case RoleSubagent:
			stats.Subagents++
		}
	}

	return stats
}

// Print outputs the statistics to the writer as plain text.
func (s *Stats) Print(w io.Writer) {
	fmt.Fprintf(w, "%d messages", s.Total)
	if s.Subagents > 0 {
		fmt.Fprintf(w, " (%d subagents)", s.Subagents)
	}
	fmt.Fprintln(w)

	roles := make([]string, 0, len(s.ByRole))
	for r := range s.ByRole {
		roles = append(roles, string(r))
	}
	sort.Strings(roles)
	for _, r := range roles {
		fmt.Fprintf(w, "  %-12s %d\n", r+":", s.ByRole[Role(r)])
	}

	if len(s.ToolCalls) > 0 {
		names := make([]string, 0, len(s.ToolCalls))
		for n := range s.ToolCalls {
			names = append(names, n)
		}
		sort.Strings(names)
		fmt.Fprintln(w, "  tools:")
		for _, n := range names {
			fmt.Fprintf(w, "    %-14s %d\n", n, s.ToolCalls[n])
		}
	}
}

package service

import (
	"fmt"
	"sort"

	"schedule-compiler/modules/planner/entity"

	"github.com/google/uuid"
)

// Partitioner slices events into granularity-sized parts and renumbers buffer groups.
type Partitioner struct {
	granularity int
	newGroupID  func() string
}

func NewPartitioner(granularity int) *Partitioner {
	return &Partitioner{granularity: granularity, newGroupID: uuid.NewString}
}

// Partition splits event into floor(d/g) full parts plus one remainder part when d%g > 0.
// Every part shares the event id as group id and carries lastPart = total parts.
func (p *Partitioner) Partition(event entity.Event, hostID string) ([]entity.EventPart, error) {
	start, err := ParseInZone(event.StartDate, event.Timezone)
	if err != nil {
		return nil, fmt.Errorf("partition %s: %w", event.ID, err)
	}
	end, err := ParseInZone(event.EndDate, event.Timezone)
	if err != nil {
		return nil, fmt.Errorf("partition %s: %w", event.ID, err)
	}

	minutes := MinutesBetween(start, end)
	if minutes <= 0 {
		return nil, nil
	}

	full, remainder := minutes/p.granularity, minutes%p.granularity
	total := full
	if remainder > 0 {
		total++
	}

	parts := make([]entity.EventPart, 0, total)
	for i := 1; i <= total; i++ {
		length := p.granularity
		if i > full {
			length = remainder
		}
		parts = append(parts, entity.EventPart{
			Event:           event,
			GroupID:         event.ID,
			Part:            i,
			LastPart:        total,
			MeetingPart:     i,
			MeetingLastPart: total,
			HostID:          hostID,
			Minutes:         length,
		})
	}
	return parts, nil
}

func sortedByPart(parts []entity.EventPart) []entity.EventPart {
	sort.SliceStable(parts, func(i, j int) bool { return parts[i].Part < parts[j].Part })
	return parts
}

func filterParts(parts []entity.EventPart, keep func(entity.EventPart) bool) []entity.EventPart {
	var out []entity.EventPart
	for _, part := range parts {
		if keep(part) {
			out = append(out, part)
		}
	}
	return out
}

// forEventIDs lists the distinct ForEventID values of matching parts in first-seen order.
func forEventIDs(parts []entity.EventPart, match func(entity.EventPart) bool) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, part := range parts {
		if !match(part) || part.ForEventID == "" || seen[part.ForEventID] {
			continue
		}
		seen[part.ForEventID] = true
		ids = append(ids, part.ForEventID)
	}
	return ids
}

// withoutEvents drops parts whose event id is in ids, preserving order.
func withoutEvents(parts []entity.EventPart, ids map[string]bool) []entity.EventPart {
	return filterParts(parts, func(part entity.EventPart) bool { return !ids[part.ID] })
}

// RenumberPreBuffers joins each pre-buffer with its event into one group numbered from 1.
// Untouched parts keep their order and the rebuilt groups follow them.
func (p *Partitioner) RenumberPreBuffers(parts []entity.EventPart) []entity.EventPart {
	targets := forEventIDs(parts, func(part entity.EventPart) bool { return part.IsPreEvent })
	if len(targets) == 0 {
		return parts
	}

	touched := make(map[string]bool)
	var rebuilt []entity.EventPart
	for _, target := range targets {
		pre := sortedByPart(filterParts(parts, func(part entity.EventPart) bool {
			return part.IsPreEvent && part.ForEventID == target
		}))
		actual := sortedByPart(filterParts(parts, func(part entity.EventPart) bool { return part.ID == target }))

		group := append(pre, actual...)
		groupID := p.newGroupID()
		for i := range group {
			group[i].GroupID = groupID
			group[i].Part = i + 1
			group[i].LastPart = len(group)
			touched[group[i].ID] = true
		}
		rebuilt = append(rebuilt, group...)
	}

	return append(withoutEvents(parts, touched), rebuilt...)
}

// RenumberPostBuffers appends each post-buffer to its event's group. When the event
// already carries a pre-buffer its numbering is kept and the pre-buffer parts move to
// the new group. Otherwise the group is renumbered from 1.
func (p *Partitioner) RenumberPostBuffers(parts []entity.EventPart) []entity.EventPart {
	targets := forEventIDs(parts, func(part entity.EventPart) bool { return part.IsPostEvent })
	if len(targets) == 0 {
		return parts
	}

	touched := make(map[string]bool)
	var rebuilt []entity.EventPart
	for _, target := range targets {
		actual := sortedByPart(filterParts(parts, func(part entity.EventPart) bool { return part.ID == target }))
		post := sortedByPart(filterParts(parts, func(part entity.EventPart) bool {
			return part.IsPostEvent && part.ForEventID == target
		}))

		prevLast, preEventID := 0, ""
		if len(actual) > 0 {
			prevLast = actual[0].LastPart
			preEventID = actual[0].PreEventID
		}
		newLast := prevLast + len(post)

		group := append(actual, post...)
		groupID := p.newGroupID()
		for i := range group {
			group[i].GroupID = groupID
			if preEventID != "" {
				group[i].LastPart = newLast
			} else {
				group[i].Part = i + 1
				group[i].LastPart = len(group)
			}
		}
		for i := range post {
			group[len(actual)+i].Part = prevLast + i + 1
		}

		var pre []entity.EventPart
		if preEventID != "" {
			pre = sortedByPart(filterParts(parts, func(part entity.EventPart) bool { return part.ID == preEventID }))
			for i := range pre {
				pre[i].GroupID = groupID
				pre[i].LastPart = newLast
				touched[pre[i].ID] = true
			}
		}

		for _, part := range group {
			touched[part.ID] = true
		}
		rebuilt = append(rebuilt, pre...)
		rebuilt = append(rebuilt, group...)
	}

	return append(withoutEvents(parts, touched), rebuilt...)
}

package tui

import (
	"time"

	"github.com/hylla/prioritas/internal/domain"
)

// mutationState tracks the lifecycle of one optimistic collection mutation.
type mutationState int

// mutation states for staged collection changes.
const (
	mutationPending mutationState = iota
	mutationCommitted
	mutationRolledBack
)

// stagedMutation captures the pre-mutation card so a failed commit can revert it.
type stagedMutation struct {
	token  int
	ideaID string
	prior  domain.Idea
	state  mutationState
}

// ideaCollection owns the in-memory card list for the active project. Cards keep
// insertion order across updates; all mutation flows through stage/commit/rollback
// so the renderer and drag controller never touch rows directly.
type ideaCollection struct {
	order     []string
	byID      map[string]domain.Idea
	staged    map[int]stagedMutation
	nextToken int
}

// newIdeaCollection constructs an empty collection.
func newIdeaCollection() *ideaCollection {
	return &ideaCollection{
		byID:   map[string]domain.Idea{},
		staged: map[int]stagedMutation{},
	}
}

// replaceAll swaps in a freshly loaded card list and drops staged state.
func (c *ideaCollection) replaceAll(ideas []domain.Idea) {
	c.order = make([]string, 0, len(ideas))
	c.byID = make(map[string]domain.Idea, len(ideas))
	c.staged = map[int]stagedMutation{}
	for _, idea := range ideas {
		if _, ok := c.byID[idea.ID]; ok {
			continue
		}
		c.order = append(c.order, idea.ID)
		c.byID[idea.ID] = idea
	}
}

// len reports the number of cards.
func (c *ideaCollection) len() int {
	return len(c.order)
}

// ideas returns the cards in insertion order.
func (c *ideaCollection) ideas() []domain.Idea {
	out := make([]domain.Idea, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}

// get resolves one card by id.
func (c *ideaCollection) get(ideaID string) (domain.Idea, bool) {
	idea, ok := c.byID[ideaID]
	return idea, ok
}

// at returns the card at one insertion-order index.
func (c *ideaCollection) at(idx int) (domain.Idea, bool) {
	if idx < 0 || idx >= len(c.order) {
		return domain.Idea{}, false
	}
	return c.byID[c.order[idx]], true
}

// indexOf reports the insertion-order index of one card.
func (c *ideaCollection) indexOf(ideaID string) int {
	for idx, id := range c.order {
		if id == ideaID {
			return idx
		}
	}
	return -1
}

// add appends one card, preserving insertion order.
func (c *ideaCollection) add(idea domain.Idea) {
	if _, ok := c.byID[idea.ID]; ok {
		c.byID[idea.ID] = idea
		return
	}
	c.order = append(c.order, idea.ID)
	c.byID[idea.ID] = idea
}

// remove deletes one card from order and index.
func (c *ideaCollection) remove(ideaID string) {
	if _, ok := c.byID[ideaID]; !ok {
		return
	}
	delete(c.byID, ideaID)
	for idx, id := range c.order {
		if id == ideaID {
			c.order = append(c.order[:idx], c.order[idx+1:]...)
			break
		}
	}
}

// stageMove optimistically repositions one card and returns a rollback token.
func (c *ideaCollection) stageMove(ideaID string, pos domain.Position, now time.Time) (int, bool) {
	return c.stage(ideaID, func(idea *domain.Idea) {
		idea.MoveTo(pos, now)
	})
}

// stageCollapse optimistically toggles one card and returns a rollback token.
func (c *ideaCollection) stageCollapse(ideaID string, collapsed bool, now time.Time) (int, bool) {
	return c.stage(ideaID, func(idea *domain.Idea) {
		idea.SetCollapsed(collapsed, now)
	})
}

// stage applies one optimistic mutation, capturing the prior row for rollback.
func (c *ideaCollection) stage(ideaID string, mutate func(*domain.Idea)) (int, bool) {
	idea, ok := c.byID[ideaID]
	if !ok {
		return 0, false
	}
	prior := idea
	mutate(&idea)
	c.byID[ideaID] = idea

	c.nextToken++
	token := c.nextToken
	c.staged[token] = stagedMutation{
		token:  token,
		ideaID: ideaID,
		prior:  prior,
		state:  mutationPending,
	}
	return token, true
}

// commit settles one staged mutation with the repository's canonical row.
func (c *ideaCollection) commit(token int, canonical domain.Idea) {
	staged, ok := c.staged[token]
	if !ok || staged.state != mutationPending {
		return
	}
	if _, exists := c.byID[staged.ideaID]; exists && canonical.ID == staged.ideaID {
		c.byID[staged.ideaID] = canonical
	}
	staged.state = mutationCommitted
	delete(c.staged, token)
}

// rollback restores the captured prior row for one failed mutation.
func (c *ideaCollection) rollback(token int) {
	staged, ok := c.staged[token]
	if !ok || staged.state != mutationPending {
		return
	}
	if _, exists := c.byID[staged.ideaID]; exists {
		c.byID[staged.ideaID] = staged.prior
	}
	staged.state = mutationRolledBack
	delete(c.staged, token)
}

// stagedIdeaID resolves the card a pending token was staged for.
func (c *ideaCollection) stagedIdeaID(token int) (string, bool) {
	staged, ok := c.staged[token]
	if !ok || staged.state != mutationPending {
		return "", false
	}
	return staged.ideaID, true
}

// hasPending reports whether any optimistic mutation is still unsettled.
func (c *ideaCollection) hasPending() bool {
	return len(c.staged) > 0
}

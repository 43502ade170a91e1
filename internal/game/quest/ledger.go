package quest

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/cloudranger/internal/game/effect"
	"github.com/cory-johannsen/cloudranger/internal/game/inventory"
)

var (
	// ErrQuestNotFound is returned for an unknown quest id.
	ErrQuestNotFound = errors.New("quest not found")
	// ErrUnavailable is returned when the player does not meet a quest's requirements.
	ErrUnavailable = errors.New("quest requirements not met")
	// ErrWrongLocation is returned when a quest must be accepted elsewhere.
	ErrWrongLocation = errors.New("quest is offered at another location")
	// ErrAlreadyTaken is returned when a quest is already active or completed.
	ErrAlreadyTaken = errors.New("quest already active or completed")
)

// Subject is the read-only player view the ledger tests.
type Subject interface {
	effect.Subject
	IsActive(id string) bool
	IsCompleted(id string) bool
	ActiveQuests() []string
}

// Ranger is the player as the ledger mutates it: quest lists plus the reward target.
type Ranger interface {
	Subject
	effect.Target
	StartQuest(id string) bool
	CompleteQuest(id string) bool
}

// Facts are the parts of the world state that objective triggers observe.
type Facts struct {
	Location      string
	ArtifactCount int
	// Services counts online deployed services by definition id.
	Services  map[string]int
	ClueCount int
}

// Update reports one piece of progress made by Evaluate or Complete.
type Update struct {
	QuestID string
	// ObjectiveID is empty when the whole quest completed.
	ObjectiveID string
	Text        string
}

// ObjectiveStatus is an objective with its completion flag.
type ObjectiveStatus struct {
	Objective
	Completed bool
}

// Ledger holds quest definitions and the progress of the current playthrough.
type Ledger struct {
	defs     map[string]*Def
	order    []string
	progress map[string][]bool
	logger   *zap.Logger
}

// NewLedger builds a ledger over defs.
//
// Postcondition: Returns an error naming every duplicate id and unknown prerequisite.
func NewLedger(defs []*Def, logger *zap.Logger) (*Ledger, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	l := &Ledger{
		defs:     make(map[string]*Def, len(defs)),
		progress: make(map[string][]bool, len(defs)),
		logger:   logger,
	}
	var errs []string
	for _, d := range defs {
		if _, dup := l.defs[d.ID]; dup {
			errs = append(errs, fmt.Sprintf("duplicate quest id %q", d.ID))
			continue
		}
		l.defs[d.ID] = d
		l.order = append(l.order, d.ID)
		l.progress[d.ID] = make([]bool, len(d.Objectives))
	}
	for _, id := range l.order {
		for _, pre := range l.defs[id].PrereqQuests {
			if _, ok := l.defs[pre]; !ok {
				errs = append(errs, fmt.Sprintf("quest %q: unknown prerequisite %q", id, pre))
			}
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return l, nil
}

// Def returns the definition for id.
func (l *Ledger) Def(id string) (*Def, bool) {
	d, ok := l.defs[id]
	return d, ok
}

// All returns every definition in load order.
func (l *Ledger) All() []*Def {
	out := make([]*Def, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, l.defs[id])
	}
	return out
}

// IsAvailable reports whether p meets every prerequisite, skill minimum and
// reputation minimum of quest id. Unknown ids are never available.
func (l *Ledger) IsAvailable(id string, p Subject) bool {
	d, ok := l.defs[id]
	if !ok {
		return false
	}
	for _, pre := range d.PrereqQuests {
		if !p.IsCompleted(pre) {
			return false
		}
	}
	for skill, level := range d.MinSkill {
		if p.Skill(skill) < level {
			return false
		}
	}
	for faction, rep := range d.MinFactionRep {
		if p.Reputation(faction) < rep {
			return false
		}
	}
	return true
}

// Available returns the quests p could accept at location at.
func (l *Ledger) Available(p Subject, at string) []*Def {
	var out []*Def
	for _, id := range l.order {
		d := l.defs[id]
		if p.IsActive(id) || p.IsCompleted(id) {
			continue
		}
		if d.Location != "" && d.Location != at {
			continue
		}
		if l.IsAvailable(id, p) {
			out = append(out, d)
		}
	}
	return out
}

// Start accepts quest id for p at location at.
//
// Postcondition: On error the player's quest lists are unchanged.
func (l *Ledger) Start(id string, p Ranger, at string) error {
	d, ok := l.defs[id]
	if !ok {
		return fmt.Errorf("%q: %w", id, ErrQuestNotFound)
	}
	if p.IsActive(id) || p.IsCompleted(id) {
		return fmt.Errorf("%q: %w", id, ErrAlreadyTaken)
	}
	if d.Location != "" && d.Location != at {
		return fmt.Errorf("%q at %q: %w", id, d.Location, ErrWrongLocation)
	}
	if !l.IsAvailable(id, p) {
		return fmt.Errorf("%q: %w", id, ErrUnavailable)
	}
	p.StartQuest(id)
	l.logger.Info("quest started", zap.String("quest", id))
	return nil
}

// CompleteObjective marks one objective of quest questID complete and reports
// whether the objective exists. Unknown ids are logged and ignored.
func (l *Ledger) CompleteObjective(questID, objectiveID string) bool {
	d, ok := l.defs[questID]
	if !ok {
		l.logger.Warn("complete objective: unknown quest", zap.String("quest", questID))
		return false
	}
	for i, o := range d.Objectives {
		if o.ID == objectiveID {
			l.progress[questID][i] = true
			return true
		}
	}
	l.logger.Warn("complete objective: unknown objective",
		zap.String("quest", questID),
		zap.String("objective", objectiveID),
	)
	return false
}

// CheckCompletion reports whether every objective of questID is complete.
func (l *Ledger) CheckCompletion(questID string) bool {
	prog, ok := l.progress[questID]
	if !ok {
		return false
	}
	for _, done := range prog {
		if !done {
			return false
		}
	}
	return true
}

// Objectives returns the objectives of questID with their completion flags.
func (l *Ledger) Objectives(questID string) []ObjectiveStatus {
	d, ok := l.defs[questID]
	if !ok {
		return nil
	}
	out := make([]ObjectiveStatus, len(d.Objectives))
	for i, o := range d.Objectives {
		out[i] = ObjectiveStatus{Objective: o, Completed: l.progress[questID][i]}
	}
	return out
}

// Complete moves questID to p's completed list and applies its rewards.
// Calling it again for the same quest does nothing. An artifact reward that
// does not fit the inventory is dropped.
//
// Postcondition: Returns true only on the call that completed the quest.
func (l *Ledger) Complete(questID string, p Ranger) bool {
	if _, ok := l.defs[questID]; !ok || p.IsCompleted(questID) {
		return false
	}
	d := l.defs[questID]
	p.CompleteQuest(questID)
	if err := effect.Apply(d.Rewards, p, "quest:"+questID); err != nil {
		if errors.Is(err, inventory.ErrInventoryFull) {
			l.logger.Info("quest reward dropped: inventory full", zap.String("quest", questID))
		} else {
			l.logger.Warn("quest reward partially applied", zap.String("quest", questID), zap.Error(err))
		}
	}
	l.logger.Info("quest completed", zap.String("quest", questID))
	return true
}

// Evaluate completes every active objective whose trigger matches f, then
// completes every active quest whose objectives are all done.
//
// Postcondition: Returns the progress made, objectives before their quest.
func (l *Ledger) Evaluate(p Ranger, f Facts) []Update {
	var updates []Update
	for _, id := range p.ActiveQuests() {
		d, ok := l.defs[id]
		if !ok {
			continue
		}
		for i, o := range d.Objectives {
			if l.progress[id][i] || o.Trigger == nil {
				continue
			}
			if l.triggered(id, o.Trigger, p, f) {
				l.progress[id][i] = true
				updates = append(updates, Update{QuestID: id, ObjectiveID: o.ID, Text: o.Description})
			}
		}
		if l.CheckCompletion(id) && l.Complete(id, p) {
			updates = append(updates, Update{QuestID: id, Text: d.Title})
		}
	}
	return updates
}

func (l *Ledger) triggered(questID string, t *Trigger, p Subject, f Facts) bool {
	switch t.Kind {
	case TriggerVisit:
		return f.Location == t.Location
	case TriggerOwnArtifact:
		if t.Artifact != "" {
			return p.HasArtifact(t.Artifact)
		}
		return f.ArtifactCount > 0
	case TriggerDeployService:
		need := max(1, t.Count)
		if t.Service != "" {
			return f.Services[t.Service] >= need
		}
		total := 0
		for _, n := range f.Services {
			total += n
		}
		return total >= need
	case TriggerClueCount:
		return f.ClueCount >= t.Count
	case TriggerHasClue:
		return p.HasClue(t.Clue)
	case TriggerAtLocationAfter:
		return f.Location == t.Location && l.objectiveDone(questID, t.After)
	}
	return false
}

func (l *Ledger) objectiveDone(questID, objectiveID string) bool {
	for i, o := range l.defs[questID].Objectives {
		if o.ID == objectiveID {
			return l.progress[questID][i]
		}
	}
	return false
}

// State returns the completed objective ids per quest.
func (l *Ledger) State() map[string][]string {
	out := make(map[string][]string)
	for _, id := range l.order {
		for i, done := range l.progress[id] {
			if done {
				out[id] = append(out[id], l.defs[id].Objectives[i].ID)
			}
		}
	}
	return out
}

// Restore resets all progress and marks the objectives in st complete.
//
// Postcondition: Returns an error naming the first unknown quest or objective;
// on error progress is unchanged.
func (l *Ledger) Restore(st map[string][]string) error {
	fresh := make(map[string][]bool, len(l.defs))
	for _, id := range l.order {
		fresh[id] = make([]bool, len(l.defs[id].Objectives))
	}
	for qid, objs := range st {
		d, ok := l.defs[qid]
		if !ok {
			return fmt.Errorf("restoring quest progress: %q: %w", qid, ErrQuestNotFound)
		}
		for _, oid := range objs {
			idx := -1
			for i, o := range d.Objectives {
				if o.ID == oid {
					idx = i
				}
			}
			if idx < 0 {
				return fmt.Errorf("restoring quest %q: unknown objective %q", qid, oid)
			}
			fresh[qid][idx] = true
		}
	}
	l.progress = fresh
	return nil
}

package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/cloudranger/internal/game/engine"
	"github.com/cory-johannsen/cloudranger/internal/game/player"
	"github.com/cory-johannsen/cloudranger/internal/storage"
	"github.com/cory-johannsen/cloudranger/internal/storage/leaderboard"
)

// ErrStopped is returned by Run when the session was stopped from outside.
var ErrStopped = errors.New("session stopped")

// SessionConfig carries a Session's collaborators.
type SessionConfig struct {
	Game      *engine.Game
	Input     *Input
	Presenter *Presenter
	// Store receives manual saves and the autosave. Nil disables saving.
	Store storage.SnapshotStore
	// Board receives the final score. Nil disables the leaderboard.
	Board *leaderboard.Board
	// AutosaveName is the slot written by Stop while the game is running.
	AutosaveName string
	Logger       *zap.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

// Session drives one playthrough from the main menu until it ends.
type Session struct {
	cfg     SessionConfig
	logger  *zap.Logger
	mu      sync.Mutex
	stopped bool
	ended   bool
}

// NewSession returns a Session ready to Run.
//
// Precondition: cfg.Game, cfg.Input and cfg.Presenter must be non-nil.
func NewSession(cfg SessionConfig) *Session {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.AutosaveName == "" {
		cfg.AutosaveName = "autosave"
	}
	return &Session{cfg: cfg, logger: cfg.Logger}
}

type menuItem struct {
	label string
	run   func(ctx context.Context) error
}

// errQuit ends the loop without finishing the game.
var errQuit = errors.New("quit")

// Run shows the main menu until the game ends, the player quits, input runs
// out or ctx is cancelled. A finished game is scored and recorded.
//
// Postcondition: Returns nil for every normal ending; ErrStopped after Stop.
func (s *Session) Run(ctx context.Context) error {
	out := s.cfg.Presenter
	g := s.cfg.Game
	s.do(func() { g.Look() })

	items := []menuItem{
		{"Explore location", s.act(g.Explore)},
		{"Travel", s.travel},
		{"Quests", s.questMenu},
		{"Inventory and artifacts", s.inventoryMenu},
		{"Services", s.serviceMenu},
		{"Trade with vendors", s.tradeMenu},
		{"Rest (skip day)", s.act(g.Rest)},
		{"Status", func(context.Context) error { s.do(g.ShowStatus); return nil }},
		{"Save game", s.save},
		{"Quit game", s.quit},
	}
	labels := make([]string, len(items))
	for i, it := range items {
		labels[i] = it.label
	}

	for {
		if err := s.interrupted(ctx); err != nil {
			return err
		}
		if s.over() {
			return s.finish(ctx)
		}
		out.Heading(fmt.Sprintf("Day %d | %s", g.Day(), g.Location().Name))
		out.Menu(labels, "")
		choice, err := s.cfg.Input.Number("Choose an action:", 1, len(items))
		if err != nil {
			return s.inputEnded(err)
		}
		if err := items[choice-1].run(ctx); err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}
			if errors.Is(err, io.EOF) {
				return s.inputEnded(err)
			}
			return err
		}
	}
}

// Stop ends the session from outside and writes the autosave if the game is
// still running. Calling Stop more than once has no further effect.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.stopped = true
	if s.ended || s.cfg.Game.Outcome().Over {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.saveLocked(ctx, s.cfg.AutosaveName); err != nil {
		s.logger.Error("autosave failed", zap.Error(err))
		return
	}
	s.cfg.Presenter.Notify(fmt.Sprintf("Progress saved to %q.", s.cfg.AutosaveName), engine.SeverityInfo)
}

func (s *Session) interrupted(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return ErrStopped
	}
	return ctx.Err()
}

func (s *Session) over() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.Game.Outcome().Over
}

func (s *Session) inputEnded(err error) error {
	if errors.Is(err, io.EOF) {
		s.logger.Info("input closed, leaving session")
		return nil
	}
	return fmt.Errorf("reading input: %w", err)
}

// do runs fn while holding the game lock.
func (s *Session) do(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
}

// try runs an engine action under the lock and reports a refusal to the player.
func (s *Session) try(fn func() error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := fn(); err != nil {
		s.logger.Debug("action refused", zap.Error(err))
		s.cfg.Presenter.Notify(err.Error(), engine.SeverityError)
	}
}

func (s *Session) act(fn func() error) func(context.Context) error {
	return func(context.Context) error {
		s.try(fn)
		return nil
	}
}

// pick lists labels and returns the chosen index, or -1 for back.
func (s *Session) pick(title string, labels []string, empty string) (int, error) {
	out := s.cfg.Presenter
	out.Heading(title)
	if len(labels) == 0 {
		out.Muted(empty)
		return -1, nil
	}
	out.Menu(labels, "Back")
	n, err := s.cfg.Input.Number("Choose:", 0, len(labels))
	if err != nil {
		return -1, err
	}
	return n - 1, nil
}

func (s *Session) travel(context.Context) error {
	g := s.cfg.Game
	ns := g.Neighbors()
	labels := make([]string, len(ns))
	for i, n := range ns {
		labels[i] = fmt.Sprintf("%s (difficulty %d)", n.Name, n.Difficulty)
	}
	i, err := s.pick("Travel", labels, "There is nowhere to go from here.")
	if err != nil || i < 0 {
		return err
	}
	s.try(func() error { return g.Travel(ns[i].ID) })
	return nil
}

func (s *Session) questMenu(context.Context) error {
	g := s.cfg.Game
	out := s.cfg.Presenter
	out.Heading("Active Quests")
	active := g.Player().ActiveQuests()
	if len(active) == 0 {
		out.Muted("No active quests.")
	}
	for _, id := range active {
		d, ok := g.Quests().Def(id)
		if !ok {
			continue
		}
		out.Text(d.Title)
		for _, o := range g.Quests().Objectives(id) {
			mark := "[ ]"
			if o.Completed {
				mark = "[x]"
			}
			out.Muted(fmt.Sprintf("  %s %s", mark, o.Description))
		}
	}
	if done := len(g.Player().CompletedQuests()); done > 0 {
		out.Muted(fmt.Sprintf("Completed quests: %d", done))
	}

	avail := g.AvailableQuests()
	labels := make([]string, len(avail))
	for i, d := range avail {
		labels[i] = d.Title
	}
	i, err := s.pick("Available Quests", labels, "No quests are offered here.")
	if err != nil || i < 0 {
		return err
	}
	out.Text(avail[i].Description)
	s.try(func() error { return g.StartQuest(avail[i].ID) })
	return nil
}

func (s *Session) inventoryMenu(context.Context) error {
	g := s.cfg.Game
	out := s.cfg.Presenter
	inv := g.Player().Inventory

	out.Heading("Inventory")
	out.Text("Credits: " + Credits(inv.Credits()))
	for _, a := range inv.Artifacts() {
		line := fmt.Sprintf("%s (%s, power %d, upgrade %d)", a.Name(), a.Def.Type, a.Power, a.UpgradeLevel)
		if !a.Ready() {
			line += fmt.Sprintf(" cooling down %d", a.Cooldown)
		}
		out.Text(line)
	}
	for _, id := range inv.ConsumableIDs() {
		name := id
		if d, ok := g.Bundle().Items.Consumable(id); ok {
			name = d.Name
		}
		out.Text(fmt.Sprintf("%s x%d", name, inv.ConsumableCount(id)))
	}
	for _, id := range inv.Blueprints() {
		out.Muted("Blueprint: " + s.serviceName(id))
	}
	if inv.IsEmpty() {
		out.Muted("Your inventory is empty.")
	}

	i, err := s.pick("Inventory Actions", []string{"Use artifact", "Upgrade artifact", "Use consumable"}, "")
	if err != nil || i < 0 {
		return err
	}
	switch i {
	case 0:
		return s.useArtifact()
	case 1:
		return s.upgradeArtifact()
	default:
		return s.useConsumable()
	}
}

func (s *Session) chooseArtifact(title string) (string, error) {
	arts := s.cfg.Game.Player().Inventory.Artifacts()
	labels := make([]string, len(arts))
	for i, a := range arts {
		labels[i] = fmt.Sprintf("%s (power %d)", a.Name(), a.Power)
	}
	i, err := s.pick(title, labels, "You have no artifacts.")
	if err != nil || i < 0 {
		return "", err
	}
	return arts[i].InstanceID, nil
}

// chooseService offers the online services. With optional set, option 0
// means "no particular service" and yields "".
func (s *Session) chooseService(title string, optional bool) (string, bool, error) {
	svcs := s.cfg.Game.Player().Inventory.Online()
	if len(svcs) == 0 {
		return "", optional, nil
	}
	labels := make([]string, len(svcs))
	for i, sv := range svcs {
		labels[i] = fmt.Sprintf("%s [%s] health %d security %d performance %d",
			sv.Name, sv.InstanceID, sv.Health, sv.SecurityLevel, sv.Performance)
	}
	out := s.cfg.Presenter
	out.Heading(title)
	back := "Back"
	if optional {
		back = "No particular service"
	}
	out.Menu(labels, back)
	n, err := s.cfg.Input.Number("Choose:", 0, len(labels))
	if err != nil {
		return "", false, err
	}
	if n == 0 {
		return "", optional, nil
	}
	return svcs[n-1].InstanceID, true, nil
}

func (s *Session) useArtifact() error {
	id, err := s.chooseArtifact("Use Artifact")
	if err != nil || id == "" {
		return err
	}
	target, ok, err := s.chooseService("Target Service", true)
	if err != nil || !ok {
		return err
	}
	s.try(func() error { return s.cfg.Game.UseArtifact(id, target) })
	return nil
}

func (s *Session) upgradeArtifact() error {
	id, err := s.chooseArtifact("Upgrade Artifact")
	if err != nil || id == "" {
		return err
	}
	s.try(func() error { return s.cfg.Game.UpgradeArtifact(id) })
	return nil
}

func (s *Session) useConsumable() error {
	g := s.cfg.Game
	ids := g.Player().Inventory.ConsumableIDs()
	labels := make([]string, len(ids))
	for i, id := range ids {
		labels[i] = id
		if d, ok := g.Bundle().Items.Consumable(id); ok {
			labels[i] = fmt.Sprintf("%s x%d: %s", d.Name, g.Player().Inventory.ConsumableCount(id), d.Description)
		}
	}
	i, err := s.pick("Use Consumable", labels, "You have no consumables.")
	if err != nil || i < 0 {
		return err
	}
	target, ok, err := s.chooseService("Target Service", true)
	if err != nil || !ok {
		return err
	}
	s.try(func() error { return g.UseConsumable(ids[i], target) })
	return nil
}

func (s *Session) serviceName(defID string) string {
	if d, ok := s.cfg.Game.Bundle().Services.Get(defID); ok {
		return d.Name
	}
	return defID
}

func (s *Session) serviceMenu(context.Context) error {
	g := s.cfg.Game
	out := s.cfg.Presenter
	inv := g.Player().Inventory

	out.Heading("Deployed Services")
	if len(inv.Deployed()) == 0 {
		out.Muted("No services deployed.")
	}
	for _, sv := range inv.Deployed() {
		state := "online"
		if !sv.Deployed {
			state = "offline"
		}
		out.Text(fmt.Sprintf("%s [%s] %s in %s: health %d, security %d, performance %d, revenue %s/day",
			sv.Name, sv.InstanceID, state, Label(sv.Region), sv.Health, sv.SecurityLevel, sv.Performance,
			Credits(sv.DailyIncome()-sv.DailyCost())))
	}

	actions := []string{"Deploy blueprint", "Repair", "Enhance security", "Optimize performance", "Undeploy", "Redeploy"}
	i, err := s.pick("Service Actions", actions, "")
	if err != nil || i < 0 {
		return err
	}
	if i == 0 {
		return s.deploy()
	}

	all := inv.Deployed()
	labels := make([]string, len(all))
	for j, sv := range all {
		labels[j] = fmt.Sprintf("%s [%s]", sv.Name, sv.InstanceID)
	}
	j, err := s.pick(actions[i], labels, "No services deployed.")
	if err != nil || j < 0 {
		return err
	}
	id := all[j].InstanceID
	ops := []func(string) error{nil, g.Repair, g.EnhanceSecurity, g.OptimizePerformance, g.Undeploy, g.Redeploy}
	s.try(func() error { return ops[i](id) })
	return nil
}

func (s *Session) deploy() error {
	g := s.cfg.Game
	bps := g.Player().Inventory.Blueprints()
	labels := make([]string, len(bps))
	for i, id := range bps {
		labels[i] = s.serviceName(id)
		if d, ok := g.Bundle().Services.Get(id); ok {
			labels[i] = fmt.Sprintf("%s (deploy cost %s)", d.Name, Count(d.DeployCost))
		}
	}
	i, err := s.pick("Deploy Service", labels, "You have no blueprints.")
	if err != nil || i < 0 {
		return err
	}
	s.try(func() error { return g.Deploy(bps[i]) })
	return nil
}

func (s *Session) tradeMenu(context.Context) error {
	g := s.cfg.Game
	vendors := g.Vendors()
	labels := make([]string, len(vendors))
	for i, v := range vendors {
		labels[i] = v.Name
	}
	i, err := s.pick("Vendors", labels, "No vendors trade here.")
	if err != nil || i < 0 {
		return err
	}
	v := vendors[i]
	if err := g.CanTrade(v.ID); err != nil {
		s.cfg.Presenter.Notify(err.Error(), engine.SeverityError)
		return nil
	}
	s.cfg.Presenter.Text(v.Description)

	actions := []string{"Buy artifact", "Buy blueprint", "Buy consumable", "Sell artifact", "Sell blueprint"}
	a, err := s.pick(v.Name, actions, "")
	if err != nil || a < 0 {
		return err
	}
	switch a {
	case 0:
		return s.buyArtifact(v.ID, v.Artifacts)
	case 1:
		return s.buyBlueprint(v.ID, v.Services)
	case 2:
		return s.buyConsumable(v.ID, v.Consumables)
	case 3:
		return s.sellArtifact(v.ID)
	default:
		return s.sellBlueprint(v.ID)
	}
}

func (s *Session) buyArtifact(vendorID string, stock []string) error {
	g := s.cfg.Game
	labels := make([]string, len(stock))
	for i, id := range stock {
		labels[i] = id
		if d, ok := g.Bundle().Items.Artifact(id); ok {
			labels[i] = fmt.Sprintf("%s (%s, power %d): %s credits", d.Name, d.Type, d.Power, Count(d.Cost))
		}
	}
	i, err := s.pick("Artifacts for Sale", labels, "No artifacts for sale.")
	if err != nil || i < 0 {
		return err
	}
	s.try(func() error { return g.BuyArtifact(vendorID, stock[i]) })
	return nil
}

func (s *Session) buyBlueprint(vendorID string, stock []string) error {
	g := s.cfg.Game
	labels := make([]string, len(stock))
	for i, id := range stock {
		labels[i] = id
		if d, ok := g.Bundle().Services.Get(id); ok {
			labels[i] = fmt.Sprintf("%s: %s credits", d.Name, Count(d.BlueprintPrice()))
		}
	}
	i, err := s.pick("Blueprints for Sale", labels, "No blueprints for sale.")
	if err != nil || i < 0 {
		return err
	}
	s.try(func() error { return g.BuyBlueprint(vendorID, stock[i]) })
	return nil
}

func (s *Session) buyConsumable(vendorID string, stock []string) error {
	g := s.cfg.Game
	labels := make([]string, len(stock))
	for i, id := range stock {
		labels[i] = id
		if d, ok := g.Bundle().Items.Consumable(id); ok {
			labels[i] = fmt.Sprintf("%s: %s credits each", d.Name, Count(d.Price))
		}
	}
	i, err := s.pick("Consumables for Sale", labels, "No consumables for sale.")
	if err != nil || i < 0 {
		return err
	}
	qty, err := s.cfg.Input.Number("Quantity (0 to cancel):", 0, 10)
	if err != nil || qty == 0 {
		return err
	}
	s.try(func() error { return g.BuyConsumable(vendorID, stock[i], qty) })
	return nil
}

func (s *Session) sellArtifact(vendorID string) error {
	id, err := s.chooseArtifact("Sell Artifact")
	if err != nil || id == "" {
		return err
	}
	s.try(func() error { return s.cfg.Game.SellArtifact(vendorID, id) })
	return nil
}

func (s *Session) sellBlueprint(vendorID string) error {
	bps := s.cfg.Game.Player().Inventory.Blueprints()
	labels := make([]string, len(bps))
	for i, id := range bps {
		labels[i] = s.serviceName(id)
	}
	i, err := s.pick("Sell Blueprint", labels, "You have no blueprints.")
	if err != nil || i < 0 {
		return err
	}
	s.try(func() error { return s.cfg.Game.SellBlueprint(vendorID, bps[i]) })
	return nil
}

func (s *Session) save(ctx context.Context) error {
	if s.cfg.Store == nil {
		s.cfg.Presenter.Muted("Saving is disabled.")
		return nil
	}
	name, err := s.cfg.Input.Line("Save name (letters, digits, - and _):")
	if err != nil {
		return err
	}
	if name == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.saveLocked(ctx, name); err != nil {
		s.cfg.Presenter.Notify(err.Error(), engine.SeverityError)
		return nil
	}
	s.cfg.Presenter.Notify(fmt.Sprintf("Game saved as %q.", name), engine.SeveritySuccess)
	return nil
}

func (s *Session) saveLocked(ctx context.Context, name string) error {
	if s.cfg.Store == nil {
		return nil
	}
	snap := s.cfg.Game.Snapshot()
	if err := s.cfg.Store.Save(ctx, name, snap); err != nil {
		return fmt.Errorf("saving %s: %w", name, err)
	}
	s.logger.Info("game saved", zap.String("name", name), zap.Int("day", snap.Day))
	return nil
}

func (s *Session) quit(context.Context) error {
	s.cfg.Presenter.Heading("Quit")
	s.cfg.Presenter.Menu([]string{"Yes, quit game", "No, continue playing"}, "")
	n, err := s.cfg.Input.Number("Are you sure?", 1, 2)
	if err != nil {
		return err
	}
	if n == 2 {
		return nil
	}
	s.do(func() { s.ended = true })
	s.cfg.Presenter.Text("Thanks for playing Cloud Ranger!")
	return errQuit
}

// finish scores a finished game and records it on the leaderboard.
func (s *Session) finish(context.Context) error {
	s.mu.Lock()
	s.ended = true
	g := s.cfg.Game
	score := g.Score()
	outcome := g.Outcome()
	p := g.Player()
	topic := p.Specialization
	if spec, err := player.SpecializationByID(p.Specialization); err == nil {
		topic = spec.Name
	}
	s.mu.Unlock()

	s.cfg.Presenter.GameOver(outcome, score)
	if s.cfg.Board == nil {
		return nil
	}
	entry := leaderboard.Entry{Date: s.cfg.Now(), Name: p.Name, Score: score, Topic: topic}
	if err := s.cfg.Board.Add(entry); err != nil {
		return fmt.Errorf("recording score: %w", err)
	}
	top, err := s.cfg.Board.Top(leaderboard.TopN)
	if err != nil {
		return fmt.Errorf("reading leaderboard: %w", err)
	}
	s.cfg.Presenter.Leaderboard(top)
	return nil
}

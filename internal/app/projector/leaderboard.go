// Package projector maintains the live leaderboard: a bounded, ranked view
// of team scores, seeded from the store and kept current by consuming the
// teams change feed.
package projector

import (
	"context"
	"debug_contest/internal/domain/model"
	"debug_contest/internal/domain/repository"
	"log"
	"sort"
	"sync"
	"time"
)

// TeamFeed is the subscribe side of the teams change feed.
type TeamFeed interface {
	Subscribe(ctx context.Context) (<-chan model.TeamScoreUpdate, error)
}

// Leaderboard projects the top-N teams by score. Updates for teams outside
// the projected window are ignored: a team breaking into the top-N after the
// seed only appears on the next reseed. This keeps the tracked set bounded
// over a long-running subscription.
type Leaderboard struct {
	teamRepo repository.TeamRepository
	feed     TeamFeed
	size     int

	mu      sync.RWMutex
	entries []model.LeaderboardEntry

	watchersMu sync.Mutex
	watchers   map[chan []model.LeaderboardEntry]struct{}
}

func NewLeaderboard(teamRepo repository.TeamRepository, feed TeamFeed, size int) *Leaderboard {
	return &Leaderboard{
		teamRepo: teamRepo,
		feed:     feed,
		size:     size,
		watchers: make(map[chan []model.LeaderboardEntry]struct{}),
	}
}

// Start seeds the projection and consumes the change feed until ctx is
// cancelled. Run it as a goroutine next to the HTTP server.
func (p *Leaderboard) Start(ctx context.Context) {
	log.Println("Leaderboard projector started.")
	for {
		if err := p.Seed(ctx); err != nil {
			log.Printf("ERROR: Failed to seed leaderboard: %v", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(5 * time.Second):
				continue
			}
		}
		break
	}

	updates, err := p.feed.Subscribe(ctx)
	if err != nil {
		log.Printf("ERROR: Failed to subscribe to team feed, leaderboard is static: %v", err)
		return
	}
	for {
		select {
		case <-ctx.Done():
			log.Println("Leaderboard projector stopping...")
			return
		case update, ok := <-updates:
			if !ok {
				log.Println("Team feed closed, leaderboard projector stopping...")
				return
			}
			p.Apply(update)
		}
	}
}

// Seed replaces the projection with the current top-N from the store.
func (p *Leaderboard) Seed(ctx context.Context) error {
	teams, err := p.teamRepo.ListTopTeams(ctx, p.size)
	if err != nil {
		return err
	}
	entries := make([]model.LeaderboardEntry, 0, len(teams))
	for i, t := range teams {
		entries = append(entries, model.LeaderboardEntry{
			Rank:     i + 1,
			TeamID:   t.ID,
			TeamName: t.TeamName,
			Score:    t.Score,
		})
	}

	p.mu.Lock()
	p.entries = entries
	p.mu.Unlock()
	p.notify()
	return nil
}

// Apply patches a projected team's score in place and re-sorts. Updates for
// teams not in the window are dropped.
func (p *Leaderboard) Apply(update model.TeamScoreUpdate) {
	p.mu.Lock()
	found := false
	for i := range p.entries {
		if p.entries[i].TeamID == update.TeamID {
			p.entries[i].Score = update.Score
			p.entries[i].TeamName = update.TeamName
			found = true
			break
		}
	}
	if found {
		sort.SliceStable(p.entries, func(i, j int) bool {
			return p.entries[i].Score > p.entries[j].Score
		})
		for i := range p.entries {
			p.entries[i].Rank = i + 1
		}
	}
	p.mu.Unlock()

	if found {
		p.notify()
	}
}

// Snapshot returns a copy of the projection, sorted by score descending.
func (p *Leaderboard) Snapshot() []model.LeaderboardEntry {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]model.LeaderboardEntry, len(p.entries))
	copy(out, p.entries)
	return out
}

// Watch registers a listener that receives a snapshot after every change.
// The channel holds only the latest snapshot; slow listeners skip
// intermediate states instead of blocking the projector. The returned
// cancel func must be called when done.
func (p *Leaderboard) Watch() (<-chan []model.LeaderboardEntry, func()) {
	ch := make(chan []model.LeaderboardEntry, 1)

	p.watchersMu.Lock()
	p.watchers[ch] = struct{}{}
	p.watchersMu.Unlock()

	cancel := func() {
		p.watchersMu.Lock()
		delete(p.watchers, ch)
		p.watchersMu.Unlock()
	}
	return ch, cancel
}

func (p *Leaderboard) notify() {
	snapshot := p.Snapshot()
	p.watchersMu.Lock()
	defer p.watchersMu.Unlock()
	for ch := range p.watchers {
		select {
		case ch <- snapshot:
		default:
			// Replace the stale pending snapshot with the fresh one.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snapshot:
			default:
			}
		}
	}
}

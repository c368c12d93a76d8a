package config

import (
	"errors"
	"fmt"
	"sort"

	"warplan/internal/war"
)

var ErrUnknownSnapshot = errors.New("config: snapshot has neither attackers/targets nor clan/opponent")

type WarAttack struct {
	AttackerTag string `yaml:"attackerTag"`
	DefenderTag string `yaml:"defenderTag"`
	Stars       int    `yaml:"stars"`
}

type WarMember struct {
	Tag                string      `yaml:"tag"`
	Name               string      `yaml:"name"`
	MapPosition        int         `yaml:"mapPosition"`
	TownHallLevel      int         `yaml:"townHallLevel"`
	Attacks            []WarAttack `yaml:"attacks"`
	BestOpponentAttack *WarAttack  `yaml:"bestOpponentAttack"`
}

type WarClan struct {
	Tag     string      `yaml:"tag"`
	Name    string      `yaml:"name"`
	Members []WarMember `yaml:"members"`
}

// War is a war snapshot as the game API reports it: our clan attacks, the
// opponent defends.
type War struct {
	AttacksPerMember int      `yaml:"attacksPerMember"`
	Clan             *WarClan `yaml:"clan"`
	Opponent         *WarClan `yaml:"opponent"`
}

// snapshotFile accepts both the normalized request and the raw war form.
type snapshotFile struct {
	ID        string           `yaml:"id"`
	Attackers []war.Attacker   `yaml:"attackers"`
	Targets   []war.Target     `yaml:"targets"`
	History   []war.PastAttack `yaml:"history"`

	War `yaml:",inline"`
}

// LoadSnapshot reads a planning request from a YAML or JSON file in either
// form.
func LoadSnapshot(path string) (war.Request, error) {
	var f snapshotFile
	if err := loadYAML(path, &f, false); err != nil {
		return war.Request{}, err
	}
	switch {
	case f.Clan != nil || f.Opponent != nil:
		if f.Clan == nil || f.Opponent == nil {
			return war.Request{}, fmt.Errorf("config: snapshot %s: war form needs both clan and opponent", path)
		}
		req := f.War.Request()
		req.ID = f.ID
		return req, nil
	case f.Attackers != nil || f.Targets != nil:
		return war.Request{ID: f.ID, Attackers: f.Attackers, Targets: f.Targets, History: f.History}, nil
	}
	return war.Request{}, fmt.Errorf("%w: %s", ErrUnknownSnapshot, path)
}

// Request normalizes the war: clan members become attackers with the
// attacks they have left, opponent members become targets ranked by map
// position, and every attack already made becomes history.
func (w War) Request() war.Request {
	var req war.Request
	if w.Clan == nil || w.Opponent == nil {
		return req
	}

	positions := make(map[string]int, len(w.Opponent.Members))
	for _, m := range w.Opponent.Members {
		positions[m.Tag] = m.MapPosition
		captured := 0
		if m.BestOpponentAttack != nil {
			captured = m.BestOpponentAttack.Stars
		}
		req.Targets = append(req.Targets, war.Target{
			Name:     m.Name,
			Rank:     m.MapPosition,
			Power:    m.TownHallLevel,
			Captured: captured,
		})
	}

	for _, m := range w.Clan.Members {
		req.Attackers = append(req.Attackers, war.Attacker{
			Name:             m.Name,
			Rank:             m.MapPosition,
			Power:            m.TownHallLevel,
			AttacksRemaining: max(w.AttacksPerMember-len(m.Attacks), 0),
		})
		for _, a := range m.Attacks {
			if rank, ok := positions[a.DefenderTag]; ok {
				req.History = append(req.History, war.PastAttack{AttackerName: m.Name, TargetRank: rank})
			}
		}
	}

	sort.SliceStable(req.Attackers, func(i, j int) bool { return req.Attackers[i].Rank < req.Attackers[j].Rank })
	sort.SliceStable(req.Targets, func(i, j int) bool { return req.Targets[i].Rank < req.Targets[j].Rank })
	return req
}

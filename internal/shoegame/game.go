package shoegame

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gorilla/websocket"

	"github.com/rickgao/terris/internal/actor"
	"github.com/rickgao/terris/internal/connection"
	"github.com/rickgao/terris/internal/model"
	"github.com/rickgao/terris/internal/session"
)

// Errors returned to participants.
var (
	errNotModerator = errors.New("only the moderator can do that")
	errNoQuestion   = errors.New("no question is open")
	errBadShoe      = errors.New("shoe must be bride or groom")
	errBadRole      = errors.New("role must be guest, screen or moderator")
	errUnknown      = errors.New("unknown command")
)

type participant struct {
	session session.ID
	role    Role
}

// Game is the shared live state of one shoe game. It is only touched from
// its actor goroutine.
type Game struct {
	questions []model.Question
	logger    *slog.Logger

	phase  Phase
	index  int
	votes  map[session.ID]Shoe
	answer Shoe

	participants map[actor.Address]*participant
}

// New creates a game over questions, which must already be in play order.
func New(questions []model.Question, logger *slog.Logger) *Game {
	if logger == nil {
		logger = slog.Default()
	}
	return &Game{
		questions:    append([]model.Question(nil), questions...),
		logger:       logger,
		phase:        PhaseLobby,
		index:        -1,
		votes:        make(map[session.ID]Shoe),
		participants: make(map[actor.Address]*participant),
	}
}

// Handle implements actor.Handler.
func (g *Game) Handle(ctx context.Context, env actor.Envelope) {
	switch m := env.Message.(type) {
	case connection.Joined:
		g.participants[m.Outbox] = &participant{session: m.Session, role: RoleGuest}
		g.logger.Debug("participant joined", "session", m.Session, "participants", len(g.participants))
		g.broadcast()
	case connection.Left:
		delete(g.participants, m.Outbox)
		g.logger.Debug("participant left", "session", m.Session, "reason", m.Reason)
		g.broadcast()
	case connection.Frame:
		if err := g.apply(env.Sender, m); err != nil {
			g.reply(env.Sender, ErrorMessage{Type: "error", Error: err.Error()})
			return
		}
		g.broadcast()
	default:
		g.logger.Debug("ignoring message", "type", fmt.Sprintf("%T", m))
	}
}

func (g *Game) apply(from actor.Address, f connection.Frame) error {
	if f.Type != websocket.TextMessage {
		return errUnknown
	}
	var cmd command
	if err := json.Unmarshal(f.Data, &cmd); err != nil {
		return fmt.Errorf("malformed command: %w", err)
	}

	p, ok := g.participants[from]
	if !ok {
		// Frame raced ahead of Joined; treat the sender as a guest.
		p = &participant{session: f.Session, role: RoleGuest}
		g.participants[from] = p
	}

	switch cmd.Type {
	case "hello":
		switch cmd.Role {
		case RoleGuest, RoleScreen, RoleModerator:
			p.role = cmd.Role
			return nil
		default:
			return errBadRole
		}
	case "vote":
		if g.phase != PhaseQuestion {
			return errNoQuestion
		}
		if !cmd.Shoe.valid() {
			return errBadShoe
		}
		g.votes[p.session] = cmd.Shoe
		return nil
	case "next":
		if p.role != RoleModerator {
			return errNotModerator
		}
		g.advance()
		return nil
	case "reveal":
		if p.role != RoleModerator {
			return errNotModerator
		}
		if g.phase != PhaseQuestion {
			return errNoQuestion
		}
		if !cmd.Shoe.valid() {
			return errBadShoe
		}
		g.answer = cmd.Shoe
		g.phase = PhaseRevealed
		return nil
	default:
		return errUnknown
	}
}

// advance moves to the next question, or to the end of the game.
func (g *Game) advance() {
	g.votes = make(map[session.ID]Shoe)
	g.answer = ""

	if g.index+1 >= len(g.questions) {
		g.index = len(g.questions)
		g.phase = PhaseFinished
		return
	}
	g.index++
	g.phase = PhaseQuestion
}

// Snapshot builds the state as seen by role. vote is the viewer's own vote.
func (g *Game) Snapshot(role Role, vote Shoe) StateMessage {
	st := StateMessage{
		Type:         "state",
		Phase:        g.phase,
		Index:        g.index,
		Total:        len(g.questions),
		Role:         role,
		MyVote:       vote,
		VotesCast:    len(g.votes),
		Answer:       g.answer,
		Participants: len(g.participants),
	}
	if g.index >= 0 && g.index < len(g.questions) {
		st.Question = g.questions[g.index].Text
	}
	if role != RoleGuest || g.phase == PhaseRevealed {
		st.Votes = map[Shoe]int{ShoeBride: 0, ShoeGroom: 0}
		for _, v := range g.votes {
			st.Votes[v]++
		}
	}
	return st
}

func (g *Game) broadcast() {
	for addr, p := range g.participants {
		g.reply(addr, g.Snapshot(p.role, g.votes[p.session]))
	}
}

func (g *Game) reply(to actor.Address, v any) {
	if to == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		g.logger.Error("failed to encode message", "error", err)
		return
	}
	to.Send(actor.Envelope{Message: connection.Outbound{Type: websocket.TextMessage, Data: data}})
}

package shoegame

// Role is what a participant sees and may do.
type Role string

const (
	RoleGuest     Role = "guest"
	RoleScreen    Role = "screen"
	RoleModerator Role = "moderator"
)

// Shoe is a vote or an answer.
type Shoe string

const (
	ShoeBride Shoe = "bride"
	ShoeGroom Shoe = "groom"
)

func (s Shoe) valid() bool {
	return s == ShoeBride || s == ShoeGroom
}

// Phase is the game's position in the question flow.
type Phase string

const (
	PhaseLobby    Phase = "lobby"
	PhaseQuestion Phase = "question"
	PhaseRevealed Phase = "revealed"
	PhaseFinished Phase = "finished"
)

// command is an inbound client frame.
type command struct {
	Type string `json:"type"`
	Role Role   `json:"role,omitempty"`
	Shoe Shoe   `json:"shoe,omitempty"`
}

// StateMessage is broadcast after every change.
type StateMessage struct {
	Type         string       `json:"type"` // always "state"
	Phase        Phase        `json:"phase"`
	Index        int          `json:"index"` // -1 in the lobby
	Total        int          `json:"total"`
	Question     string       `json:"question,omitempty"`
	Role         Role         `json:"role"`
	MyVote       Shoe         `json:"my_vote,omitempty"`
	VotesCast    int          `json:"votes_cast"`
	Votes        map[Shoe]int `json:"votes,omitempty"` // hidden from guests until revealed
	Answer       Shoe         `json:"answer,omitempty"`
	Participants int          `json:"participants"`
}

// ErrorMessage is sent to a single participant whose command was rejected.
type ErrorMessage struct {
	Type  string `json:"type"` // always "error"
	Error string `json:"error"`
}

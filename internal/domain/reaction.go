package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

var (
	ErrUnknownReactionKind = errors.New("unknown reaction kind")
	ErrUnknownTargetKind   = errors.New("unknown target kind")
)

// ReactionKind is the emoji a user applied to a target. Ordinals are stored.
type ReactionKind uint8

const (
	ReactionLike ReactionKind = iota + 1
	ReactionDislike
	ReactionSmile
	ReactionHeart
	ReactionThanks
)

// DefaultReactionKind is used when a reaction is created without a kind.
const DefaultReactionKind = ReactionLike

var reactionLabels = [...]string{
	ReactionLike:    "like",
	ReactionDislike: "dislike",
	ReactionSmile:   "smile",
	ReactionHeart:   "heart",
	ReactionThanks:  "thanks",
}

var reactionByLabel = func() map[string]ReactionKind {
	m := make(map[string]ReactionKind, len(reactionLabels))
	for k, label := range reactionLabels {
		if label != "" {
			m[label] = ReactionKind(k)
		}
	}
	return m
}()

// ReactionKinds returns every kind in ordinal order.
func ReactionKinds() []ReactionKind {
	return []ReactionKind{ReactionLike, ReactionDislike, ReactionSmile, ReactionHeart, ReactionThanks}
}

// ParseReactionKind maps a label such as "heart" to its kind.
func ParseReactionKind(label string) (ReactionKind, error) {
	k, ok := reactionByLabel[strings.ToLower(strings.TrimSpace(label))]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownReactionKind, label)
	}
	return k, nil
}

func (k ReactionKind) Valid() bool {
	return k >= ReactionLike && k <= ReactionThanks
}

func (k ReactionKind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("ReactionKind(%d)", uint8(k))
	}
	return reactionLabels[k]
}

func (k ReactionKind) MarshalJSON() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownReactionKind, uint8(k))
	}
	return json.Marshal(reactionLabels[k])
}

func (k *ReactionKind) UnmarshalJSON(data []byte) error {
	var label string
	if err := json.Unmarshal(data, &label); err != nil {
		return err
	}
	parsed, err := ParseReactionKind(label)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// TargetKind says whether a reaction or comment action addresses a post or a comment.
type TargetKind string

const (
	TargetPost    TargetKind = "post"
	TargetComment TargetKind = "comment"
)

// ParseTargetKind accepts exactly "post" or "comment".
func ParseTargetKind(s string) (TargetKind, error) {
	switch TargetKind(s) {
	case TargetPost, TargetComment:
		return TargetKind(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownTargetKind, s)
	}
}

// Target is a post or a comment, never both.
type Target struct {
	Kind TargetKind `json:"kind"`
	ID   uint       `json:"id"`
}

func PostTarget(id uint) Target    { return Target{Kind: TargetPost, ID: id} }
func CommentTarget(id uint) Target { return Target{Kind: TargetComment, ID: id} }

func (t Target) String() string {
	return fmt.Sprintf("%s:%d", t.Kind, t.ID)
}

// Reaction is one user's reaction to one target.
type Reaction struct {
	ID        uint         `json:"id"`
	UserID    uint         `json:"user_id"`
	Target    Target       `json:"target"`
	Kind      ReactionKind `json:"kind"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// UpsertOutcome reports what an upsert did to the ledger.
type UpsertOutcome int

const (
	OutcomeCreated UpsertOutcome = iota + 1
	OutcomeUpdated
	OutcomeUnchanged
)

func (o UpsertOutcome) String() string {
	switch o {
	case OutcomeCreated:
		return "created"
	case OutcomeUpdated:
		return "updated"
	case OutcomeUnchanged:
		return "unchanged"
	default:
		return "unknown"
	}
}

// TallyEntry is the number of reactions of one kind on a target.
type TallyEntry struct {
	Kind  ReactionKind `json:"kind"`
	Count int64        `json:"count"`
}

// Tally is sorted by count descending, then by kind ordinal ascending.
type Tally []TallyEntry

// NewTally builds a sorted tally, skipping zero counts.
func NewTally(counts map[ReactionKind]int64) Tally {
	t := make(Tally, 0, len(counts))
	for k, c := range counts {
		if c > 0 {
			t = append(t, TallyEntry{Kind: k, Count: c})
		}
	}
	sort.Slice(t, func(i, j int) bool {
		if t[i].Count != t[j].Count {
			return t[i].Count > t[j].Count
		}
		return t[i].Kind < t[j].Kind
	})
	return t
}

// Count returns the count for kind, zero if absent.
func (t Tally) Count(kind ReactionKind) int64 {
	for _, e := range t {
		if e.Kind == kind {
			return e.Count
		}
	}
	return 0
}

// Total is the number of reactions across all kinds.
func (t Tally) Total() int64 {
	var n int64
	for _, e := range t {
		n += e.Count
	}
	return n
}

// AsMap returns label → count.
func (t Tally) AsMap() map[string]int64 {
	m := make(map[string]int64, len(t))
	for _, e := range t {
		m[e.Kind.String()] = e.Count
	}
	return m
}

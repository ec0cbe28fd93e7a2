// Package scoring validates racket-sport set and match scores.
package scoring

import (
	"errors"

	"github.com/Dosada05/racket-club/models"
)

const maxGames = 7

type Side int

const (
	SideNone Side = 0
	Side1    Side = 1
	Side2    Side = 2
)

// Rules describes the match format a score is checked against.
type Rules struct {
	BestOf        int
	SuperTiebreak bool
	TiebreakAt    int
}

func DefaultRules() Rules {
	return Rules{BestOf: 3, TiebreakAt: 6}
}

// RulesFromSettings builds the rules of a competition.
func RulesFromSettings(s *models.CompetitionSettings) Rules {
	return Rules{BestOf: s.BestOf, SuperTiebreak: s.SuperTiebreak, TiebreakAt: s.TiebreakAt}.normalized()
}

func (r Rules) normalized() Rules {
	if r.BestOf < 1 {
		r.BestOf = 3
	}
	if r.TiebreakAt <= 0 {
		r.TiebreakAt = 6
	}
	return r
}

func (r Rules) setsToWin() int {
	return r.BestOf/2 + 1
}

// ValidateSet checks a single set. The returned error is a *ScoreError with SetIndex 0.
func ValidateSet(set models.Set, rules Rules) error {
	if _, err := decideSet(set, rules.normalized()); err != nil {
		return err
	}
	return nil
}

// SetWinner returns the side that took the set, SideNone when the set is invalid.
func SetWinner(set models.Set, rules Rules) Side {
	side, err := decideSet(set, rules.normalized())
	if err != nil {
		return SideNone
	}
	return side
}

func decideSet(set models.Set, rules Rules) (Side, *ScoreError) {
	g1, g2 := set.Games1, set.Games2
	if g1 < 0 || g2 < 0 || g1 > maxGames || g2 > maxGames {
		return SideNone, setError(ReasonGamesOutOfRange, "games must be between 0 and %d, got %d-%d", maxGames, g1, g2)
	}
	if set.Tiebreak != nil {
		if set.Tiebreak.Points1 < 0 || set.Tiebreak.Points2 < 0 {
			return SideNone, setError(ReasonTiebreakTied, "tiebreak points must not be negative")
		}
		if set.Tiebreak.Points1 == set.Tiebreak.Points2 {
			return SideNone, setError(ReasonTiebreakTied, "tiebreak %d-%d has no winner", set.Tiebreak.Points1, set.Tiebreak.Points2)
		}
	}

	// A recorded tiebreak at the tiebreak score decides the set outright.
	if g1 == g2 {
		if g1 == rules.TiebreakAt && set.Tiebreak != nil {
			return tiebreakSide(set.Tiebreak), nil
		}
		return SideNone, setError(ReasonGamesTied, "games tied at %d-%d", g1, g2)
	}

	winner, hi, lo := Side1, g1, g2
	if g2 > g1 {
		winner, hi, lo = Side2, g2, g1
	}

	if hi == maxGames {
		switch lo {
		case maxGames - 1:
			if set.Tiebreak == nil {
				return SideNone, setError(ReasonMissingRequiredTiebreak, "%d-%d requires a tiebreak", g1, g2)
			}
			if tiebreakSide(set.Tiebreak) != winner {
				return SideNone, setError(ReasonTiebreakWinnerMismatch, "tiebreak %d-%d does not match set %d-%d",
					set.Tiebreak.Points1, set.Tiebreak.Points2, g1, g2)
			}
			return winner, nil
		case maxGames - 2:
			if set.Tiebreak != nil {
				return SideNone, setError(ReasonUnexpectedTiebreak, "%d-%d must not record a tiebreak", g1, g2)
			}
			return winner, nil
		default:
			return SideNone, setError(ReasonInvalidSevenGameOpponentScore, "opponent of a 7-game set must have 5 or 6 games, got %d", lo)
		}
	}

	if set.Tiebreak != nil {
		return SideNone, setError(ReasonUnexpectedTiebreak, "%d-%d must not record a tiebreak", g1, g2)
	}
	if hi < maxGames-1 || hi-lo < 2 {
		return SideNone, setError(ReasonSetNotFinished, "%d-%d is not a finished set", g1, g2)
	}
	return winner, nil
}

func tiebreakSide(tb *models.Tiebreak) Side {
	if tb.Points1 > tb.Points2 {
		return Side1
	}
	return Side2
}

// MatchWinner validates every set and returns the side holding a strict majority.
func MatchWinner(score models.Score, rules Rules) (Side, error) {
	rules = rules.normalized()
	if len(score.Sets) == 0 {
		return SideNone, matchError(ReasonNoSets, "a result needs at least one set")
	}
	if len(score.Sets) > rules.BestOf {
		return SideNone, matchError(ReasonTooManySets, "%d sets recorded in a best of %d", len(score.Sets), rules.BestOf)
	}

	won1, won2, err := countSets(score.Sets, rules)
	if err != nil {
		return SideNone, err
	}

	needed := rules.setsToWin()
	split := won1 == won2 && won1 == needed-1

	if score.SuperTiebreak != nil {
		if !rules.SuperTiebreak {
			return SideNone, matchError(ReasonUnexpectedTiebreak, "this format does not play a super-tiebreak")
		}
		if !split || len(score.Sets) != 2*(needed-1) {
			return SideNone, matchError(ReasonUnexpectedTiebreak, "a super-tiebreak is only played on a %d-%d split", needed-1, needed-1)
		}
		stb := score.SuperTiebreak
		if stb.Points1 < 0 || stb.Points2 < 0 || stb.Points1 == stb.Points2 {
			return SideNone, matchError(ReasonNoMajorityWinner, "super-tiebreak %d-%d has no winner", stb.Points1, stb.Points2)
		}
		return tiebreakSide(stb), nil
	}

	switch {
	case won1 >= needed && won1 > won2:
		if err := checkNoSetsAfterDecision(score.Sets, rules, needed); err != nil {
			return SideNone, err
		}
		return Side1, nil
	case won2 >= needed && won2 > won1:
		if err := checkNoSetsAfterDecision(score.Sets, rules, needed); err != nil {
			return SideNone, err
		}
		return Side2, nil
	case split && rules.SuperTiebreak:
		return SideNone, matchError(ReasonNoMajorityWinner, "sets split %d-%d and no super-tiebreak recorded", won1, won2)
	}
	return SideNone, matchError(ReasonNoMajorityWinner, "sets %d-%d do not decide a best of %d", won1, won2, rules.BestOf)
}

func countSets(sets []models.Set, rules Rules) (int, int, error) {
	won1, won2 := 0, 0
	for i, set := range sets {
		side, err := decideSet(set, rules)
		if err != nil {
			err.SetIndex = i
			return 0, 0, err
		}
		if side == Side1 {
			won1++
		} else {
			won2++
		}
	}
	return won1, won2, nil
}

// checkNoSetsAfterDecision rejects sets recorded after the match was already won.
func checkNoSetsAfterDecision(sets []models.Set, rules Rules, needed int) error {
	w1, w2 := 0, 0
	for i, set := range sets {
		if w1 == needed || w2 == needed {
			return &ScoreError{Reason: ReasonTooManySets, SetIndex: i, Detail: "set played after the match was decided"}
		}
		side, _ := decideSet(set, rules)
		if side == Side1 {
			w1++
		} else {
			w2++
		}
	}
	return nil
}

// Tally is the per-side aggregate of a valid score used by the standings fold.
type Tally struct {
	Sets1, Sets2   int
	Games1, Games2 int
}

// TallyScore counts sets and games of each side. The super-tiebreak counts as a set, not as games.
func TallyScore(score models.Score, rules Rules) (Tally, error) {
	rules = rules.normalized()
	var t Tally
	for i, set := range score.Sets {
		side, err := decideSet(set, rules)
		if err != nil {
			err.SetIndex = i
			return Tally{}, err
		}
		t.Games1 += set.Games1
		t.Games2 += set.Games2
		if side == Side1 {
			t.Sets1++
		} else {
			t.Sets2++
		}
	}
	if score.SuperTiebreak != nil {
		if tiebreakSide(score.SuperTiebreak) == Side1 {
			t.Sets1++
		} else {
			t.Sets2++
		}
	}
	return t, nil
}

// AsScoreError unwraps err into a *ScoreError.
func AsScoreError(err error) (*ScoreError, bool) {
	var se *ScoreError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

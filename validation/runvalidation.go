// Package validation re-checks a finished settlement run against its input
// before the result is persisted. It guards the all-or-nothing write: a run
// that fails any check should be investigated, not applied.
package validation

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/openleague/waiverwire/core"
)

// RunValidationInput contains everything needed to verify a settlement run.
type RunValidationInput struct {
	// Before holds the pre-run publisher snapshots, keyed by publisher id.
	Before map[uuid.UUID]*core.Publisher

	// Result is the run's folded outcome.
	Result *core.Result

	// ExpectedHash, when set, is checked against the recomputed run hash.
	ExpectedHash string
}

// RunValidationResult reports each invariant check separately, with
// human-readable details for the audit trail.
type RunValidationResult struct {
	BudgetsValid bool
	OutbidValid  bool
	RostersValid bool
	QuotasValid  bool
	HashValid    bool

	ValidationDetails []string
}

// IsValid reports whether every check passed.
func (r *RunValidationResult) IsValid() bool {
	return r.BudgetsValid && r.OutbidValid && r.RostersValid && r.QuotasValid && r.HashValid
}

// ValidateRun verifies:
//   - every publisher's post-run budget equals the pre-run budget minus the
//     sum of their winning bids, and is never negative
//   - every bid that lost as outbid offered no more than the winner's amount
//   - no roster exceeds its standard or counter-pick slot counts
//   - drop counters never move backwards and stay within the league's
//     allowances
//   - the recomputed run hash matches the expected hash, when one is given
func ValidateRun(input *RunValidationInput) *RunValidationResult {
	result := &RunValidationResult{}
	result.BudgetsValid = validateBudgets(input, result)
	result.OutbidValid = validateOutbids(input, result)
	result.RostersValid = validateRosters(input, result)
	result.QuotasValid = validateQuotas(input, result)
	result.HashValid = validateHash(input, result)
	return result
}

func validateBudgets(input *RunValidationInput, result *RunValidationResult) bool {
	wonByPublisher := make(map[uuid.UUID]int)
	for _, bid := range input.Result.SuccessBids {
		wonByPublisher[bid.PublisherID] += bid.Amount
	}

	ok := true
	for id, after := range input.Result.Publishers {
		if after.Budget < 0 {
			result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Publisher %s has negative budget %d", id, after.Budget))
			ok = false
		}
		before, known := input.Before[id]
		if !known {
			result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Publisher %s appears in the result but not in the pre-run snapshots", id))
			ok = false
			continue
		}
		expected := before.Budget - wonByPublisher[id]
		if after.Budget != expected {
			result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Publisher %s budget mismatch: expected %d, got %d", id, expected, after.Budget))
			ok = false
		}
	}
	if ok {
		result.ValidationDetails = append(result.ValidationDetails, "Budget validation passed")
	}
	return ok
}

func validateOutbids(input *RunValidationInput, result *RunValidationResult) bool {
	winningAmounts := make(map[uuid.UUID]int)
	for _, bid := range input.Result.SuccessBids {
		if current, ok := winningAmounts[bid.Game.ID]; !ok || bid.Amount > current {
			winningAmounts[bid.Game.ID] = bid.Amount
		}
	}

	ok := true
	for _, failed := range input.Result.FailedBids {
		if failed.Reason != "Publisher was outbid." {
			continue
		}
		winner, contested := winningAmounts[failed.Bid.Game.ID]
		if !contested {
			result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Bid %s lost as outbid but nothing won %s", failed.Bid.ID, failed.Bid.Game.Name))
			ok = false
			continue
		}
		if failed.Bid.Amount > winner {
			result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Bid %s offered %d on %s but lost to a winning amount of %d", failed.Bid.ID, failed.Bid.Amount, failed.Bid.Game.Name, winner))
			ok = false
		}
	}
	if ok {
		result.ValidationDetails = append(result.ValidationDetails, "Outbid validation passed")
	}
	return ok
}

func validateRosters(input *RunValidationInput, result *RunValidationResult) bool {
	ok := true
	for id, publisher := range input.Result.Publishers {
		standard, counterPicks := 0, 0
		for _, rg := range publisher.Roster {
			if rg.CounterPick {
				counterPicks++
			} else {
				standard++
			}
		}
		opts := publisher.League.Options
		if standard > opts.StandardSlots {
			result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Publisher %s holds %d standard games with only %d slots", id, standard, opts.StandardSlots))
			ok = false
		}
		if counterPicks > opts.CounterPickSlots {
			result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Publisher %s holds %d counter picks with only %d slots", id, counterPicks, opts.CounterPickSlots))
			ok = false
		}
	}
	if ok {
		result.ValidationDetails = append(result.ValidationDetails, "Roster validation passed")
	}
	return ok
}

func validateQuotas(input *RunValidationInput, result *RunValidationResult) bool {
	ok := true
	for id, after := range input.Result.Publishers {
		before, known := input.Before[id]
		if !known {
			continue // already reported by the budget check
		}
		counters := []struct {
			name          string
			before, after int
			cap           int
		}{
			{"free", before.FreeGamesDropped, after.FreeGamesDropped, after.League.Options.FreeDroppableGames},
			{"will-not-release", before.WillNotReleaseGamesDropped, after.WillNotReleaseGamesDropped, after.League.Options.WillNotReleaseDroppableGames},
			{"will-release", before.WillReleaseGamesDropped, after.WillReleaseGamesDropped, after.League.Options.WillReleaseDroppableGames},
		}
		for _, c := range counters {
			if c.after < c.before {
				result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Publisher %s %s drop counter went backwards: %d to %d", id, c.name, c.before, c.after))
				ok = false
			}
			if c.cap != core.UnlimitedDrops && c.after > c.cap {
				result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Publisher %s used %d %s drops with an allowance of %d", id, c.after, c.name, c.cap))
				ok = false
			}
		}
	}
	if ok {
		result.ValidationDetails = append(result.ValidationDetails, "Drop quota validation passed")
	}
	return ok
}

func validateHash(input *RunValidationInput, result *RunValidationResult) bool {
	if input.ExpectedHash == "" {
		result.ValidationDetails = append(result.ValidationDetails, "No expected hash given, skipping hash validation")
		return true
	}
	computed := core.ComputeRunHash(input.Result)
	if computed == input.ExpectedHash {
		result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Run hash validation passed: %s", computed))
		return true
	}
	result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Run hash mismatch: computed %s, expected %s", computed, input.ExpectedHash))
	return false
}

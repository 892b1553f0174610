package pipeline

import "cointribute/internal/oracle/models"

const approvalThreshold = 60

// Aggregate folds the stage outputs in b into FinalScore and Approved.
// The fold is pure and order-independent: every adjustment reads only the
// stage fields, never the running total.
//
//	+10 presence signal
//	+10 reachable evidence document
//	image block, only when an image score exists:
//	  valid and >= 70  -> +20
//	  >= 50            -> +10
//	  < 30             -> -15
//	-5 per red flag
//
// The result is clamped to [0,100]; 60 or above approves.
func Aggregate(b models.ScoreBreakdown) models.ScoreBreakdown {
	score := b.BaseScore

	if b.PresenceFound {
		score += 10
	}
	if b.DocumentValid {
		score += 10
	}

	if b.ImageScore > 0 {
		switch {
		case b.ImageValid && b.ImageScore >= 70:
			score += 20
		case b.ImageScore >= 50:
			score += 10
		case b.ImageScore < 30:
			score -= 15
		}
	}

	score -= 5 * len(b.Flags)

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	b.FinalScore = score
	b.Approved = score >= approvalThreshold
	return b
}

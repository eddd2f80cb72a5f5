package learning

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"meetsense/internal/types"
)

// IdentifySuccessPatterns mines the user's feedback history for recurring
// trigger situations where one intervention type keeps working. A pattern
// needs at least MinPatternSamples occurrences and a success rate above
// PatternSuccessRate to surface.
func (l *Loop) IdentifySuccessPatterns(ctx context.Context, userID string) ([]types.InterventionPattern, error) {
	recs, err := l.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load feedback: %w", err)
	}

	type bucket struct {
		typ       types.InterventionType
		total     int
		successes int
		effSum    float64
	}
	buckets := make(map[string]*bucket)
	for _, rec := range recs {
		key := patternKey(rec.InterventionType, rec.Trigger)
		b := buckets[key]
		if b == nil {
			b = &bucket{typ: rec.InterventionType}
			buckets[key] = b
		}
		b.total++
		if successful(rec) {
			b.successes++
		}
		b.effSum += rec.Effectiveness.Overall
	}

	var patterns []types.InterventionPattern
	for key, b := range buckets {
		if b.total < l.cfg.MinPatternSamples {
			continue
		}
		rate := float64(b.successes) / float64(b.total)
		if rate <= l.cfg.PatternSuccessRate {
			continue
		}

		// Confidence grows with sample count up to the saturation point,
		// blended with how effective the interventions actually were.
		saturation := float64(b.total) / float64(l.cfg.PatternSaturation)
		if saturation > 1 {
			saturation = 1
		}
		avgEff := b.effSum / float64(b.total)

		patterns = append(patterns, types.InterventionPattern{
			Key:         key,
			Type:        b.typ,
			SampleCount: b.total,
			SuccessRate: rate,
			Confidence:  0.5*saturation + 0.5*avgEff,
			Description: fmt.Sprintf("%s works well when triggered by %q (%d/%d successful)", b.typ, key, b.successes, b.total),
		})
	}

	sort.Slice(patterns, func(i, j int) bool {
		if patterns[i].Confidence != patterns[j].Confidence {
			return patterns[i].Confidence > patterns[j].Confidence
		}
		return patterns[i].Key < patterns[j].Key
	})
	return patterns, nil
}

// patternKey coarsens a trigger excerpt into a grouping key: the type plus
// the first three words, lowercased with punctuation stripped, so near-
// identical triggers collapse into one bucket.
func patternKey(t types.InterventionType, trigger string) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return unicode.ToLower(r)
		}
		return -1
	}, trigger)

	words := strings.Fields(cleaned)
	if len(words) > 3 {
		words = words[:3]
	}
	return string(t) + ":" + strings.Join(words, " ")
}

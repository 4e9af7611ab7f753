package detection

import "github.com/MrTurnables/dpps-prototype/internal/domain/entity"

// DetectDuplicatesInProposal compares every record of a proposal against
// every other record. For each index i it collects, in ascending order of j,
// the results of DetectDuplicate(records[i], records[j]) that reach the
// medium threshold. Indices without such results are absent from the map.
//
// Every ordered pair is scored: vendor mismatches can still reach the
// medium floor, so no pairs are pruned.
func DetectDuplicatesInProposal(records []entity.InvoiceRecord, cfg DetectionConfig) map[int][]DetectionResult {
	results := make(map[int][]DetectionResult)

	for i := range records {
		var duplicates []DetectionResult
		for j := range records {
			if i == j {
				continue
			}
			result := DetectDuplicate(records[i], records[j], cfg)
			if result.Score >= cfg.MediumThreshold {
				duplicates = append(duplicates, result)
			}
		}
		if len(duplicates) > 0 {
			results[i] = duplicates
		}
	}

	return results
}

// BestMatch returns the highest-scoring result. Ties keep the earliest one.
func BestMatch(results []DetectionResult) (DetectionResult, bool) {
	if len(results) == 0 {
		return DetectionResult{}, false
	}
	best := results[0]
	for _, r := range results[1:] {
		if r.Score > best.Score {
			best = r
		}
	}
	return best, true
}

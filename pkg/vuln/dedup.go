package vuln

// Dedupe merges per-package finding lists into one list with exactly one
// finding per advisory id. Packages are visited in their original request
// order and findings in list order, so the first copy encountered wins.
// Findings without an id are excluded entirely: they cannot be
// deduplicated safely, and dropping them beats double counting.
func Dedupe(order []string, byPackage map[string][]Finding) []Finding {
	seen := make(map[string]bool)
	var out []Finding

	for _, name := range order {
		for _, f := range byPackage[name] {
			if f.ID == "" || seen[f.ID] {
				continue
			}
			seen[f.ID] = true
			out = append(out, f)
		}
	}
	return out
}

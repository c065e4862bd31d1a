package inspection

// CategoryStat is the per-category rollup. Issues counts every verdict that
// is not ok, missing included.
type CategoryStat struct {
	OK     int `json:"ok"`
	Issues int `json:"issues"`
}

// KPIReport is the compliance dashboard payload.
type KPIReport struct {
	TotalItems     int                     `json:"total_items"`
	OKItems        int                     `json:"ok_items"`
	MissingItems   int                     `json:"missing_items"`
	IssuesItems    int                     `json:"issues_items"`
	ComplianceRate float64                 `json:"compliance_rate"`
	CategoryStats  map[string]CategoryStat `json:"category_stats"`
}

// fallbackCategory buckets items whose catalog entry carries no category.
const fallbackCategory = "Otros"

// ComputeKPI aggregates per-item verdicts across the given inspections.
// Top-level counters split three ways (ok, missing, everything else) while
// the per-category issues column folds missing in with the rest, so
// missing items count once in MissingItems and once in their category's
// Issues. The compliance rate is ok over total as a percentage, zero when
// there are no items.
func ComputeKPI(inspections []*Inspection) *KPIReport {
	report := &KPIReport{
		CategoryStats: make(map[string]CategoryStat),
	}

	for _, insp := range inspections {
		for i := range insp.Items {
			item := &insp.Items[i]
			report.TotalItems++

			switch item.Status {
			case ItemStatusOK:
				report.OKItems++
			case ItemStatusMissing:
				report.MissingItems++
			default:
				report.IssuesItems++
			}

			category := fallbackCategory
			if item.Epp != nil && item.Epp.Category != "" {
				category = item.Epp.Category
			}

			stat := report.CategoryStats[category]
			if item.Status == ItemStatusOK {
				stat.OK++
			} else {
				stat.Issues++
			}
			report.CategoryStats[category] = stat
		}
	}

	if report.TotalItems > 0 {
		report.ComplianceRate = float64(report.OKItems) / float64(report.TotalItems) * 100
	}
	return report
}

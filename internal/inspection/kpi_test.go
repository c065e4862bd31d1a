package inspection_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/safetrack/epp-inspection/internal/catalog"
	"github.com/safetrack/epp-inspection/internal/inspection"
)

func TestInspection(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Inspection Suite")
}

func itemWith(status, category string) inspection.Item {
	return inspection.Item{
		Status: status,
		Epp:    &catalog.EppItem{Category: category},
	}
}

var _ = Describe("ComputeKPI", func() {
	It("returns a zeroed report for no inspections", func() {
		report := inspection.ComputeKPI(nil)

		Expect(report.TotalItems).To(BeZero())
		Expect(report.OKItems).To(BeZero())
		Expect(report.MissingItems).To(BeZero())
		Expect(report.IssuesItems).To(BeZero())
		Expect(report.ComplianceRate).To(BeZero())
		Expect(report.CategoryStats).To(BeEmpty())
	})

	It("splits counters by verdict and rolls up categories", func() {
		inspections := []*inspection.Inspection{
			{Items: []inspection.Item{
				itemWith(inspection.ItemStatusOK, "Cabeza"),
				itemWith(inspection.ItemStatusMissing, "Manos"),
			}},
		}

		report := inspection.ComputeKPI(inspections)

		Expect(report.TotalItems).To(Equal(2))
		Expect(report.OKItems).To(Equal(1))
		Expect(report.MissingItems).To(Equal(1))
		Expect(report.IssuesItems).To(BeZero())
		Expect(report.ComplianceRate).To(Equal(50.0))
		Expect(report.CategoryStats).To(HaveKeyWithValue("Cabeza", inspection.CategoryStat{OK: 1, Issues: 0}))
		Expect(report.CategoryStats).To(HaveKeyWithValue("Manos", inspection.CategoryStat{OK: 0, Issues: 1}))
	})

	It("counts non-ok non-missing verdicts as issues at the top level and per category", func() {
		inspections := []*inspection.Inspection{
			{Items: []inspection.Item{
				itemWith(inspection.ItemStatusNeedsReplacement, "Ojos"),
				itemWith(inspection.ItemStatusDamaged, "Ojos"),
				itemWith(inspection.ItemStatusOK, "Ojos"),
			}},
		}

		report := inspection.ComputeKPI(inspections)

		Expect(report.IssuesItems).To(Equal(2))
		Expect(report.MissingItems).To(BeZero())
		Expect(report.CategoryStats["Ojos"]).To(Equal(inspection.CategoryStat{OK: 1, Issues: 2}))
	})

	It("buckets uncategorized items under Otros", func() {
		inspections := []*inspection.Inspection{
			{Items: []inspection.Item{
				{Status: inspection.ItemStatusOK},
				{Status: inspection.ItemStatusMissing, Epp: &catalog.EppItem{Category: ""}},
			}},
		}

		report := inspection.ComputeKPI(inspections)

		Expect(report.CategoryStats).To(HaveLen(1))
		Expect(report.CategoryStats["Otros"]).To(Equal(inspection.CategoryStat{OK: 1, Issues: 1}))
	})

	It("keeps the verdict counters summing to the total", func() {
		inspections := []*inspection.Inspection{
			{Items: []inspection.Item{
				itemWith(inspection.ItemStatusOK, "Cabeza"),
				itemWith(inspection.ItemStatusMissing, "Cabeza"),
				itemWith(inspection.ItemStatusNeedsReplacement, "Manos"),
				itemWith(inspection.ItemStatusOK, "Pies"),
			}},
			{Items: []inspection.Item{
				itemWith(inspection.ItemStatusNeedsReplacement, "Pies"),
			}},
		}

		report := inspection.ComputeKPI(inspections)

		Expect(report.OKItems + report.MissingItems + report.IssuesItems).To(Equal(report.TotalItems))
		Expect(report.TotalItems).To(Equal(5))
		Expect(report.ComplianceRate).To(Equal(40.0))
	})

	It("is stable across repeated runs over the same input", func() {
		inspections := []*inspection.Inspection{
			{Items: []inspection.Item{
				itemWith(inspection.ItemStatusOK, "Cabeza"),
				itemWith(inspection.ItemStatusMissing, "Manos"),
			}},
		}

		first := inspection.ComputeKPI(inspections)
		second := inspection.ComputeKPI(inspections)

		Expect(second).To(Equal(first))
	})
})

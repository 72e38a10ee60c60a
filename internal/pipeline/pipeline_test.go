package pipeline

import (
	"testing"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/salesopshq/salesops/internal/auth"
	"github.com/salesopshq/salesops/internal/user"
)

func TestPipeline(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Pipeline Module Suite")
}

func funnelStages() []Stage {
	return []Stage{
		{ID: 1, Code: StageProspecting, Label: "Prospecting", Probability: 10, Position: 1},
		{ID: 2, Code: StageNeedsDefined, Label: "Needs Defined", Probability: 25, Position: 2},
		{ID: 3, Code: StageProposalSubmitted, Label: "Proposal Submitted", Probability: 50, Position: 3},
		{ID: 4, Code: StageNegotiationDone, Label: "Negotiation", Probability: 75, Position: 4},
		{ID: 5, Code: StageCloseWon, Label: "Close Won", Probability: 100, Position: 5},
	}
}

var _ = ginkgo.Describe("Stage totals", func() {
	ginkgo.Describe("NormalizeStageTotals", func() {
		ginkgo.It("should emit all five stages in funnel order", func() {
			raw := []StageTotal{
				{StageID: 3, DealCount: 2, TotalValue: 50000},
			}

			normalized := NormalizeStageTotals(funnelStages(), raw)

			gomega.Expect(normalized).To(gomega.HaveLen(5))
			gomega.Expect(normalized[0].Code).To(gomega.Equal(StageProspecting))
			gomega.Expect(normalized[4].Code).To(gomega.Equal(StageCloseWon))
		})

		ginkgo.It("should zero-fill empty stages and mark them", func() {
			raw := []StageTotal{
				{StageID: 1, DealCount: 3, TotalValue: 30000},
				{StageID: 5, DealCount: 1, TotalValue: 90000},
			}

			normalized := NormalizeStageTotals(funnelStages(), raw)

			gomega.Expect(normalized[0].IsEmpty).To(gomega.BeFalse())
			gomega.Expect(normalized[0].DealCount).To(gomega.Equal(int64(3)))

			for _, i := range []int{1, 2, 3} {
				gomega.Expect(normalized[i].IsEmpty).To(gomega.BeTrue())
				gomega.Expect(normalized[i].DealCount).To(gomega.BeZero())
				gomega.Expect(normalized[i].TotalValue).To(gomega.BeZero())
			}

			gomega.Expect(normalized[4].IsEmpty).To(gomega.BeFalse())
			gomega.Expect(normalized[4].TotalValue).To(gomega.Equal(90000.0))
		})

		ginkgo.It("should carry the stage metadata onto every slice", func() {
			normalized := NormalizeStageTotals(funnelStages(), nil)

			for i, stage := range funnelStages() {
				gomega.Expect(normalized[i].StageID).To(gomega.Equal(stage.ID))
				gomega.Expect(normalized[i].Label).To(gomega.Equal(stage.Label))
				gomega.Expect(normalized[i].Probability).To(gomega.Equal(stage.Probability))
				gomega.Expect(normalized[i].IsEmpty).To(gomega.BeTrue())
			}
		})
	})

	ginkgo.Describe("BuildSummary", func() {
		totals := func() []StageTotal {
			return NormalizeStageTotals(funnelStages(), []StageTotal{
				{StageID: 1, DealCount: 2, TotalValue: 100000},
				{StageID: 3, DealCount: 1, TotalValue: 200000},
				{StageID: 5, DealCount: 1, TotalValue: 100000},
			})
		}

		ginkgo.It("should aggregate counts and amounts across stages", func() {
			summary := BuildSummary(totals(), nil)

			gomega.Expect(summary.TotalDeals).To(gomega.Equal(int64(4)))
			gomega.Expect(summary.TotalPipelineAmount).To(gomega.Equal(400000.0))
			gomega.Expect(summary.ClosedWon).To(gomega.Equal(100000.0))
			gomega.Expect(summary.AvgDealSize).To(gomega.Equal(100000.0))
		})

		ginkgo.It("should weight the forecast by stage probability", func() {
			summary := BuildSummary(totals(), nil)

			// 100000*0.10 + 200000*0.50 + 100000*1.00
			gomega.Expect(summary.WeightedForecast).To(gomega.Equal(210000.0))
		})

		ginkgo.It("should omit the target block without a single owner in scope", func() {
			summary := BuildSummary(totals(), nil)

			gomega.Expect(summary.QuarterlyTarget).To(gomega.BeNil())
			gomega.Expect(summary.PercentToTarget).To(gomega.BeNil())
		})

		ginkgo.It("should derive the quarterly target from the owner's yearly target", func() {
			yearly := 1200000.0
			summary := BuildSummary(totals(), &yearly)

			gomega.Expect(summary.QuarterlyTarget).ToNot(gomega.BeNil())
			gomega.Expect(*summary.QuarterlyTarget).To(gomega.Equal(300000.0))
			// closedWon 100000 of 300000
			gomega.Expect(*summary.PercentToTarget).To(gomega.BeNumerically("~", 33.33, 0.01))
		})

		ginkgo.It("should handle an empty pipeline", func() {
			summary := BuildSummary(NormalizeStageTotals(funnelStages(), nil), nil)

			gomega.Expect(summary.TotalDeals).To(gomega.BeZero())
			gomega.Expect(summary.AvgDealSize).To(gomega.BeZero())
			gomega.Expect(summary.WeightedForecast).To(gomega.BeZero())
		})
	})
})

var _ = ginkgo.Describe("Actor scoping", func() {
	ginkgo.It("should pin a sales rep to their own deals", func() {
		actor := auth.Actor{Type: auth.ActorTypeUser, ID: 7, Department: user.DepartmentSales}
		filter := scopeForActor(actor, ListFilter{SalesOwnerID: 99})

		gomega.Expect(filter.SalesOwnerID).To(gomega.Equal(int64(7)))
	})

	ginkgo.It("should pin a pre-sales engineer to their assignments", func() {
		actor := auth.Actor{Type: auth.ActorTypeUser, ID: 8, Department: user.DepartmentPreSales}
		filter := scopeForActor(actor, ListFilter{PreSalesOwnerIDs: []int64{1, 2}})

		gomega.Expect(filter.PreSalesOwnerIDs).To(gomega.Equal([]int64{8}))
	})

	ginkgo.It("should pass an admin's filter through untouched", func() {
		actor := auth.Actor{Type: auth.ActorTypeAdmin, ID: 1, AdminRole: auth.RoleAdmin}
		filter := scopeForActor(actor, ListFilter{SalesOwnerID: 42, Year: 2026})

		gomega.Expect(filter.SalesOwnerID).To(gomega.Equal(int64(42)))
		gomega.Expect(filter.Year).To(gomega.Equal(2026))
	})
})

var _ = ginkgo.Describe("Deal periods", func() {
	ginkgo.It("should derive year and quarter from the close date", func() {
		year, quarter := PeriodOf(time.Date(2026, time.February, 10, 0, 0, 0, 0, time.UTC))
		gomega.Expect(year).To(gomega.Equal(2026))
		gomega.Expect(quarter).To(gomega.Equal(1))

		_, quarter = PeriodOf(time.Date(2026, time.June, 30, 0, 0, 0, 0, time.UTC))
		gomega.Expect(quarter).To(gomega.Equal(2))

		_, quarter = PeriodOf(time.Date(2026, time.December, 1, 0, 0, 0, 0, time.UTC))
		gomega.Expect(quarter).To(gomega.Equal(4))
	})
})

package compliance_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"plenum/internal/domain/compliance"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func intPtr(v int) *int { return &v }

func datePtr(t time.Time) *compliance.Date {
	d := compliance.NewDate(t)
	return &d
}

var _ = Describe("Resolve", func() {
	It("rejects non-positive validity", func() {
		_, err := compliance.Resolve(date(2024, 1, 1), 0, date(2024, 1, 1), 30)
		Expect(err).To(MatchError(compliance.ErrInvalidPeriod))

		_, err = compliance.Resolve(date(2024, 1, 1), -5, date(2024, 1, 1), 30)
		Expect(err).To(MatchError(compliance.ErrInvalidPeriod))
	})

	It("resolves an exam one day before its due date as due soon", func() {
		res, err := compliance.Resolve(date(2024, 1, 1), 365, date(2024, 12, 30), 30)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.DueDate).To(Equal(date(2024, 12, 31)))
		Expect(res.Status).To(Equal(compliance.StatusDueSoon))
	})

	It("resolves the same exam after its due date as overdue", func() {
		res, err := compliance.Resolve(date(2024, 1, 1), 365, date(2025, 1, 2), 30)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Status).To(Equal(compliance.StatusOverdue))
	})

	It("treats the due date itself as due soon", func() {
		res, err := compliance.Resolve(date(2024, 3, 1), 10, date(2024, 3, 11), 30)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Status).To(Equal(compliance.StatusDueSoon))
	})

	It("treats the last day of the window as due soon", func() {
		res, err := compliance.Resolve(date(2024, 3, 1), 40, date(2024, 3, 11), 30)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.DueDate).To(Equal(date(2024, 4, 10)))
		Expect(res.Status).To(Equal(compliance.StatusDueSoon))

		res, err = compliance.Resolve(date(2024, 3, 1), 41, date(2024, 3, 11), 30)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Status).To(Equal(compliance.StatusCurrent))
	})

	It("ignores the time of day", func() {
		ref := time.Date(2024, 1, 1, 23, 59, 0, 0, time.UTC)
		now := time.Date(2024, 1, 11, 0, 1, 0, 0, time.UTC)
		res, err := compliance.Resolve(ref, 10, now, 30)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.DueDate).To(Equal(date(2024, 1, 11)))
		Expect(res.Status).To(Equal(compliance.StatusDueSoon))
	})

	DescribeTable("reference date equal to now",
		func(validity int, want compliance.Status) {
			now := date(2024, 6, 15)
			res, err := compliance.Resolve(now, validity, now, 30)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Status).To(Equal(want))
		},
		Entry("one day", 1, compliance.StatusDueSoon),
		Entry("at threshold", 30, compliance.StatusDueSoon),
		Entry("past threshold", 31, compliance.StatusCurrent),
		Entry("a year", 365, compliance.StatusCurrent),
	)

	It("only moves forward as now advances", func() {
		rank := map[compliance.Status]int{
			compliance.StatusCurrent: 0,
			compliance.StatusDueSoon: 1,
			compliance.StatusOverdue: 2,
		}
		ref := date(2024, 1, 1)
		prev := -1
		for day := 0; day < 500; day++ {
			res, err := compliance.Resolve(ref, 365, ref.AddDate(0, 0, day), 30)
			Expect(err).NotTo(HaveOccurred())
			Expect(rank[res.Status]).To(BeNumerically(">=", prev))
			prev = rank[res.Status]
		}
		Expect(prev).To(Equal(2))
	})
})

var _ = Describe("Summarize", func() {
	now := date(2024, 6, 1)

	item := func(ref time.Time, validity int) compliance.Item {
		return compliance.Item{Source: compliance.Source{ReferenceDate: datePtr(ref), ValidityDays: intPtr(validity)}}
	}

	It("counts an item due in ten days in both due buckets", func() {
		s := compliance.Summarize([]compliance.Item{item(now, 10)}, now)
		Expect(s).To(Equal(compliance.Summary{Total: 1, Due30: 1, Due60: 1}))
	})

	It("counts an item due in forty-five days only in the wide bucket", func() {
		s := compliance.Summarize([]compliance.Item{item(now, 45)}, now)
		Expect(s).To(Equal(compliance.Summary{Total: 1, Due60: 1}))
	})

	It("keeps overdue items out of the due buckets", func() {
		s := compliance.Summarize([]compliance.Item{item(now.AddDate(0, 0, -20), 10)}, now)
		Expect(s).To(Equal(compliance.Summary{Total: 1, Overdue: 1}))
	})

	It("counts items without a period only toward the total", func() {
		items := []compliance.Item{
			{Source: compliance.Source{ValidityDays: intPtr(30)}},
			{Source: compliance.Source{ReferenceDate: datePtr(now)}},
			{Source: compliance.Source{ReferenceDate: datePtr(now), ValidityDays: intPtr(0)}},
			item(now, 400),
		}
		Expect(compliance.Summarize(items, now)).To(Equal(compliance.Summary{Total: 4}))
	})
})

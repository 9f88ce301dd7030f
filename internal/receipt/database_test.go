package receipt

import (
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
)

var _ = Describe("BoltStore", func() {
	var (
		dbPath string
		store  *BoltStore
	)

	day := func(d int) time.Time {
		return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC)
	}

	item := func(owner int64, name string, date time.Time) LineItem {
		li, err := NewLineItem(owner, name, decimal.NewFromInt(1), decimal.RequireFromString("10"), date)
		Expect(err).NotTo(HaveOccurred())
		li.ID = name + date.Format("2006-01-02")
		return li
	}

	obs := func(owner int64, name, price string, date time.Time) PriceObservation {
		return PriceObservation{
			ID:          name + price,
			Owner:       owner,
			ProductName: name,
			UnitPrice:   decimal.RequireFromString(price),
			Date:        date,
		}
	}

	BeforeEach(func() {
		dbPath = filepath.Join(GinkgoT().TempDir(), "test.db")
		var err error
		store, err = NewBoltStore(dbPath)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		if store != nil {
			store.Close()
		}
	})

	Describe("SaveReceipt", func() {
		It("persists line items and observations together", func() {
			err := store.SaveReceipt(
				[]LineItem{item(1, "Milk", day(10))},
				[]PriceObservation{obs(1, "Milk", "69.99", day(10))},
			)
			Expect(err).NotTo(HaveOccurred())

			items, err := store.LineItemsByOwner(1)
			Expect(err).NotTo(HaveOccurred())
			Expect(items).To(HaveLen(1))

			observations, err := store.ObservationsByProduct(1, "Milk")
			Expect(err).NotTo(HaveOccurred())
			Expect(observations).To(HaveLen(1))
		})

		It("round-trips decimal values exactly", func() {
			err := store.SaveReceipt(
				[]LineItem{item(1, "Milk", day(10))},
				[]PriceObservation{obs(1, "Milk", "69.99", day(10))},
			)
			Expect(err).NotTo(HaveOccurred())

			observations, err := store.ObservationsByProduct(1, "Milk")
			Expect(err).NotTo(HaveOccurred())
			Expect(observations[0].UnitPrice).To(beDecimal("69.99"))
		})
	})

	Describe("LineItemsByOwner", func() {
		When("the owner has no records", func() {
			It("returns an empty slice", func() {
				items, err := store.LineItemsByOwner(1)
				Expect(err).NotTo(HaveOccurred())
				Expect(items).To(BeEmpty())
			})
		})

		When("records span several dates and products", func() {
			BeforeEach(func() {
				Expect(store.SaveReceipt([]LineItem{
					item(1, "Yogurt", day(12)),
					item(1, "Bread", day(12)),
				}, nil)).To(Succeed())
				Expect(store.SaveReceipt([]LineItem{
					item(1, "Milk", day(10)),
				}, nil)).To(Succeed())
			})

			It("orders by purchase date, then product name", func() {
				items, err := store.LineItemsByOwner(1)
				Expect(err).NotTo(HaveOccurred())

				names := make([]string, 0, len(items))
				for _, li := range items {
					names = append(names, li.ProductName)
				}
				Expect(names).To(Equal([]string{"Milk", "Bread", "Yogurt"}))
			})
		})

		When("several owners have records", func() {
			BeforeEach(func() {
				Expect(store.SaveReceipt([]LineItem{item(1, "Milk", day(10))}, nil)).To(Succeed())
				Expect(store.SaveReceipt([]LineItem{item(2, "Beer", day(10))}, nil)).To(Succeed())
			})

			It("never returns another owner's records", func() {
				items, err := store.LineItemsByOwner(1)
				Expect(err).NotTo(HaveOccurred())
				Expect(items).To(HaveLen(1))
				Expect(items[0].ProductName).To(Equal("Milk"))
			})
		})
	})

	Describe("ObservationsByProduct", func() {
		BeforeEach(func() {
			Expect(store.SaveReceipt(nil, []PriceObservation{
				obs(1, "Milk", "75.00", day(20)),
				obs(1, "Bread", "45.00", day(20)),
			})).To(Succeed())
			Expect(store.SaveReceipt(nil, []PriceObservation{
				obs(1, "Milk", "69.99", day(10)),
				obs(2, "Milk", "99.00", day(10)),
			})).To(Succeed())
		})

		It("returns only the requested product, date ascending", func() {
			observations, err := store.ObservationsByProduct(1, "Milk")
			Expect(err).NotTo(HaveOccurred())
			Expect(observations).To(HaveLen(2))
			Expect(observations[0].UnitPrice).To(beDecimal("69.99"))
			Expect(observations[1].UnitPrice).To(beDecimal("75.00"))
		})

		It("matches product names case-sensitively", func() {
			observations, err := store.ObservationsByProduct(1, "milk")
			Expect(err).NotTo(HaveOccurred())
			Expect(observations).To(BeEmpty())
		})

		It("never returns another owner's observations", func() {
			observations, err := store.ObservationsByProduct(2, "Milk")
			Expect(err).NotTo(HaveOccurred())
			Expect(observations).To(HaveLen(1))
			Expect(observations[0].UnitPrice).To(beDecimal("99.00"))
		})
	})
})

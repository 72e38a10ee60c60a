package transport

import (
	"net/http/httptest"
	"testing"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

func TestTransport(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Transport Suite")
}

var _ = ginkgo.Describe("Pagination", func() {
	ginkgo.Describe("ParsePagination", func() {
		ginkgo.It("should default to page 1 and the default limit", func() {
			r := httptest.NewRequest("GET", "/api/v1/users", nil)
			p := ParsePagination(r)
			gomega.Expect(p.Page).To(gomega.Equal(1))
			gomega.Expect(p.Limit).To(gomega.Equal(DefaultPageSize))
		})

		ginkgo.It("should ignore a limit above the maximum", func() {
			r := httptest.NewRequest("GET", "/api/v1/users?limit=9999", nil)
			p := ParsePagination(r)
			gomega.Expect(p.Limit).To(gomega.Equal(DefaultPageSize))
		})

		ginkgo.It("should ignore non-numeric values", func() {
			r := httptest.NewRequest("GET", "/api/v1/users?page=abc&limit=xyz", nil)
			p := ParsePagination(r)
			gomega.Expect(p.Page).To(gomega.Equal(1))
			gomega.Expect(p.Limit).To(gomega.Equal(DefaultPageSize))
		})
	})

	ginkgo.Describe("TotalPages and Clamp", func() {
		ginkgo.It("should compute 3 pages for 42 records at limit 15", func() {
			p := Pagination{Page: 1, Limit: 15}
			gomega.Expect(p.TotalPages(42)).To(gomega.Equal(3))
		})

		ginkgo.It("should give the last page the remaining records", func() {
			p := Pagination{Page: 3, Limit: 15}
			totalPages := p.TotalPages(42)
			p = p.Clamp(totalPages)
			gomega.Expect(p.Page).To(gomega.Equal(3))
			gomega.Expect(p.Offset()).To(gomega.Equal(30))
		})

		ginkgo.It("should clamp a page beyond the last down to it", func() {
			p := Pagination{Page: 9, Limit: 15}
			p = p.Clamp(p.TotalPages(42))
			gomega.Expect(p.Page).To(gomega.Equal(3))
		})

		ginkgo.It("should clamp page zero up to one", func() {
			p := Pagination{Page: 0, Limit: 15}
			p = p.Clamp(p.TotalPages(42))
			gomega.Expect(p.Page).To(gomega.Equal(1))
			gomega.Expect(p.Offset()).To(gomega.Equal(0))
		})

		ginkgo.It("should report one page for an empty result", func() {
			p := Pagination{Page: 5, Limit: 15}
			totalPages := p.TotalPages(0)
			gomega.Expect(totalPages).To(gomega.Equal(1))
			gomega.Expect(p.Clamp(totalPages).Page).To(gomega.Equal(1))
		})

		ginkgo.It("should report one page when the records fit exactly", func() {
			p := Pagination{Page: 1, Limit: 15}
			gomega.Expect(p.TotalPages(15)).To(gomega.Equal(1))
			gomega.Expect(p.TotalPages(30)).To(gomega.Equal(2))
		})
	})

	ginkgo.Describe("NewPaginatedResponse", func() {
		ginkgo.It("should build the uniform envelope", func() {
			p := Pagination{Page: 2, Limit: 15}
			resp := NewPaginatedResponse(p, 42, []string{"a", "b"})
			gomega.Expect(resp.Success).To(gomega.BeTrue())
			gomega.Expect(resp.Page).To(gomega.Equal(2))
			gomega.Expect(resp.Limit).To(gomega.Equal(15))
			gomega.Expect(resp.Total).To(gomega.Equal(int64(42)))
			gomega.Expect(resp.TotalPages).To(gomega.Equal(3))
		})
	})
})

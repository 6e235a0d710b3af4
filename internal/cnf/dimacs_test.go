package cnf_test

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/operator-framework/searchtree/internal/cnf"
)

var _ = Describe("Dimacs", func() {
	It("should fail if there is no header", func() {
		_, err := cnf.ParseDimacs(strings.NewReader("1 2 3 0\n"))
		Expect(err).To(MatchError(ContainSubstring("missing header")))
	})

	It("should fail if there are no clauses", func() {
		_, err := cnf.ParseDimacs(strings.NewReader("p cnf 3 3\n"))
		Expect(err).To(HaveOccurred())
	})

	It("should fail if the clause count differs from the header", func() {
		_, err := cnf.ParseDimacs(strings.NewReader("p cnf 3 2\n1 2 3 0\n"))
		Expect(err).To(MatchError(ContainSubstring("number of clauses")))
	})

	It("should fail if a variable is out of range", func() {
		_, err := cnf.ParseDimacs(strings.NewReader("p cnf 2 1\n1 -3 0\n"))
		Expect(err).To(MatchError(ContainSubstring("-3 is not a valid variable")))
	})

	It("should fail on unknown commands", func() {
		_, err := cnf.ParseDimacs(strings.NewReader("p cnf 1 1\nx 1 0\n"))
		Expect(err).To(MatchError(ContainSubstring("invalid dimacs command")))
	})

	It("should parse valid dimacs", func() {
		problem := "c a comment\np cnf 3 2\n1  2 3 0\n\n-1\t-3 0\n"
		p, err := cnf.ParseDimacs(strings.NewReader(problem))
		Expect(err).ToNot(HaveOccurred())
		Expect(p.Variables).To(Equal(3))
		Expect(p.Clauses).To(Equal([][]int{{1, 2, 3}, {-1, -3}}))
	})
})

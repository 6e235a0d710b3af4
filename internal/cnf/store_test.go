package cnf_test

import (
	"strings"

	"github.com/go-air/gini/z"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/operator-framework/searchtree/internal/cnf"
	"github.com/operator-framework/searchtree/pkg/search"
)

func load(problem string) *cnf.Store {
	p, err := cnf.ParseDimacs(strings.NewReader(problem))
	Expect(err).ToNot(HaveOccurred())
	return cnf.NewStore(p)
}

var _ = Describe("Store", func() {
	// 1 implies 2, 2 implies 3
	const chain = "p cnf 3 2\n-1 2 0\n-2 3 0\n"

	It("should propagate an assignment", func() {
		s := load(chain)
		Expect(s.Assign(z.Dimacs2Lit(1))).To(Succeed())
		for v := 1; v <= 3; v++ {
			value, assigned := s.Value(v)
			Expect(assigned).To(BeTrue())
			Expect(value).To(BeTrue())
		}
		_, ok := s.Unassigned()
		Expect(ok).To(BeFalse())
		Expect(s.Model()).To(Equal([]int{1, 2, 3}))
	})

	It("should fail on a literal contradicting the assignment", func() {
		s := load(chain)
		Expect(s.Assign(z.Dimacs2Lit(1))).To(Succeed())
		Expect(s.Assign(z.Dimacs2Lit(3))).To(Succeed())
		err := s.Assign(z.Dimacs2Lit(-3))
		Expect(search.IsPropagationFailure(err)).To(BeTrue())
	})

	It("should fail when propagation finds a conflict", func() {
		s := load("p cnf 2 2\n-1 2 0\n-1 -2 0\n")
		err := s.Assign(z.Dimacs2Lit(1))
		Expect(search.IsPropagationFailure(err)).To(BeTrue())
	})

	It("should undo and redo frames", func() {
		s := load(chain)
		s.Push()
		Expect(s.Assign(z.Dimacs2Lit(2))).To(Succeed())
		Expect(s.Model()).To(Equal([]int{1, 2, 3}))
		v, ok := s.Unassigned()
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal(1))

		d := s.PopDelta()
		_, assigned := s.Value(2)
		Expect(assigned).To(BeFalse())
		_, assigned = s.Value(3)
		Expect(assigned).To(BeFalse())

		s.PushDelta(d)
		value, assigned := s.Value(3)
		Expect(assigned).To(BeTrue())
		Expect(value).To(BeTrue())
	})

	It("should panic when popping the base frame", func() {
		s := load(chain)
		Expect(func() { s.PopDelta() }).To(PanicWith(BeAssignableToTypeOf(search.ContractViolation{})))
	})

	It("should restore snapshots", func() {
		s := load(chain)
		Expect(s.Assign(z.Dimacs2Lit(3))).To(Succeed())
		snapshot := s.CurrentState()

		s.Push()
		Expect(s.Assign(z.Dimacs2Lit(1))).To(Succeed())
		Expect(s.Model()).To(Equal([]int{1, 2, 3}))
		s.RestoreState(snapshot)
		_, assigned := s.Value(1)
		Expect(assigned).To(BeFalse())
		_, assigned = s.Value(2)
		Expect(assigned).To(BeFalse())
		value, assigned := s.Value(3)
		Expect(assigned).To(BeTrue())
		Expect(value).To(BeTrue())
	})

	DescribeTable("should enumerate every model with the decision action",
		func(problem string, strategy string, want [][]int) {
			s := load(problem)
			var tree search.Tree
			if strategy == "jump" {
				tree = search.NewJumpingTree(s.Decide(), search.NewRecalculatingStateManager(s))
			} else {
				tree = search.NewCrawlingTree(s.Decide(), search.NewDeltaStateManager(s))
			}

			var models [][]int
			for {
				n := tree.CurrentNode()
				if n.State() == search.Open {
					if _, err := n.Activate(nil); err == nil && tree.ChildCount() == 0 {
						models = append(models, s.Model())
					}
				}
				if tree.MoveToNextOpenChild() {
					continue
				}
				found := false
				for !found && tree.MoveToParent() {
					found = tree.MoveToNextOpenChild()
				}
				if !found {
					break
				}
			}
			Expect(models).To(Equal(want))
		},
		Entry("crawling", "p cnf 2 1\n1 2 0\n", "crawl", [][]int{{1, 2}, {1, -2}, {-1, 2}}),
		Entry("jumping", "p cnf 2 1\n1 2 0\n", "jump", [][]int{{1, 2}, {1, -2}, {-1, 2}}),
		Entry("propagated", chain, "crawl", [][]int{{1, 2, 3}, {-1, 2, 3}, {-1, -2, 3}, {-1, -2, -3}}),
		Entry("unsatisfiable", "p cnf 2 4\n1 2 0\n1 -2 0\n-1 2 0\n-1 -2 0\n", "jump", [][]int(nil)),
	)
})

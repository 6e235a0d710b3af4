package search_test

import (
	"strconv"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/operator-framework/searchtree/pkg/search"
	"github.com/operator-framework/searchtree/pkg/store"
)

// branch marks name as taken in s and splits into two children until
// depth levels are left.
func branch(s *store.Map[string, bool], name string, depth int) search.Action {
	return search.Step(func() (search.Action, error) {
		s.Set(name, true)
		if depth == 0 {
			return nil, nil
		}
		return search.Choose(branch(s, name+"0", depth-1), branch(s, name+"1", depth-1)), nil
	})
}

func taken(s *store.Map[string, bool]) map[string]bool {
	m := map[string]bool{}
	_ = s.Iterate(func(key string, value bool) error {
		m[key] = value
		return nil
	})
	return m
}

func want(path search.PathAddress) map[string]bool {
	m := map[string]bool{"r": true}
	name := "r"
	for _, i := range path.Indices() {
		name += strconv.Itoa(i)
		m[name] = true
	}
	return m
}

// depthFirst activates and visits every node of t once.
func depthFirst(t search.Tree, visit func()) {
	for {
		if t.CurrentNode().State() == search.Open {
			_, err := t.CurrentNode().Activate(nil)
			Expect(err).ToNot(HaveOccurred())
			visit()
		}
		if t.MoveToNextOpenChild() {
			continue
		}
		for {
			if !t.MoveToParent() {
				return
			}
			if t.MoveToNextOpenChild() {
				break
			}
		}
	}
}

var _ = Describe("SearchTree", func() {
	type strategy struct {
		name  string
		build func(s *store.Map[string, bool], deactivate bool) search.Tree
	}

	for _, st := range []strategy{
		{
			name: "CrawlingTree with a DeltaStateManager",
			build: func(s *store.Map[string, bool], deactivate bool) search.Tree {
				return search.NewCrawlingTree(branch(s, "r", 2), search.NewDeltaStateManager(s), search.WithDeactivateOnAscend(deactivate))
			},
		},
		{
			name: "CrawlingTree with a RecalculatingStateManager",
			build: func(s *store.Map[string, bool], deactivate bool) search.Tree {
				return search.NewCrawlingTree(branch(s, "r", 2), search.NewRecalculatingStateManager(s), search.WithDeactivateOnAscend(deactivate))
			},
		},
		{
			name: "JumpingTree",
			build: func(s *store.Map[string, bool], deactivate bool) search.Tree {
				return search.NewJumpingTree(branch(s, "r", 2), search.NewRecalculatingStateManager(s, search.WithSnapshotInterval(2)), search.WithDeactivateOnAscend(deactivate))
			},
		},
	} {
		Describe(st.name, func() {
			var (
				s    *store.Map[string, bool]
				tree search.Tree
			)

			BeforeEach(func() {
				s = store.NewMap[string, bool]()
			})

			It("should visit the seven nodes of a three level binary tree with distinct ids", func() {
				tree = st.build(s, false)
				ids := map[int]string{}
				depthFirst(tree, func() {
					n := tree.CurrentNode()
					Expect(taken(s)).To(Equal(want(n.Path())))
					Expect(ids).ToNot(HaveKey(tree.UniqueNodeID()))
					ids[tree.UniqueNodeID()] = n.Path().String()
				})
				Expect(ids).To(HaveLen(7))
				Expect(tree.Depth()).To(Equal(0))
				Expect(taken(s)).To(Equal(map[string]bool{"r": true}))
			})

			for _, deactivate := range []bool{false, true} {
				deactivate := deactivate
				It("should return to every reference taken during the search, deactivating: "+strconv.FormatBool(deactivate), func() {
					tree = st.build(s, deactivate)
					var refs []search.Reference
					depthFirst(tree, func() {
						refs = append(refs, tree.ReferenceFor(tree.CurrentNode()))
					})
					Expect(refs).To(HaveLen(7))

					for i := len(refs) - 1; i >= 0; i-- {
						ref := refs[i]
						tree.ReturnToReference(ref)
						Expect(ref.Matches(tree.CurrentNode())).To(BeTrue(), ref.String())
						Expect(tree.CurrentNode().State()).To(Equal(search.Closed))
						Expect(taken(s)).To(Equal(want(ref.Path())), ref.String())
					}
				})
			}

			It("should keep coordinates stable across rebuilds", func() {
				tree = st.build(s, true)
				depthFirst(tree, func() {})
				tree.MoveToChild(1)
				first := tree.CurrentNode()
				id := tree.UniqueNodeID()
				Expect(tree.MoveToParent()).To(BeTrue())

				tree.MoveToChild(1)
				Expect(tree.CurrentNode().Equal(first)).To(BeTrue())
				Expect(tree.CurrentNode().Hash()).To(Equal(first.Hash()))
				Expect(tree.UniqueNodeID()).To(Equal(id))
				Expect(taken(s)).To(Equal(map[string]bool{"r": true, "r1": true}))
			})
		})
	}
})

package driver_test

import (
	"context"
	"errors"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/operator-framework/searchtree/internal/config"
	"github.com/operator-framework/searchtree/internal/driver"
	"github.com/operator-framework/searchtree/pkg/search"
	"github.com/operator-framework/searchtree/pkg/store"
)

func branch(s *store.Map[string, int], name string, depth int) search.Action {
	return search.Step(func() (search.Action, error) {
		s.Set(name, depth)
		if depth == 0 {
			return nil, nil
		}
		return search.Choose(branch(s, name+"0", depth-1), branch(s, name+"1", depth-1)), nil
	})
}

type countingGoal struct {
	updates int
	fail    error
}

func (g *countingGoal) BestObjectiveValue() float64 {
	return float64(g.updates)
}

func (g *countingGoal) UpdateBoundForOpenNode() error {
	g.updates++
	return g.fail
}

func (g *countingGoal) ReturnBoundToObjectiveValue(float64) {}

var _ = Describe("DepthFirst", func() {
	var (
		s       *store.Map[string, int]
		reg     *prometheus.Registry
		metrics *driver.Metrics
	)

	BeforeEach(func() {
		s = store.NewMap[string, int]()
		reg = prometheus.NewRegistry()
		metrics = driver.NewMetrics(reg)
	})

	crawl := func(act search.Action) search.Tree {
		return search.NewCrawlingTree(act, search.NewDeltaStateManager(s))
	}

	It("should explore the whole tree", func() {
		var leaves []string
		d := driver.New(crawl(branch(s, "r", 2)),
			driver.WithMetrics(metrics),
			driver.WithSolutionHandler(func(t search.Tree) error {
				leaves = append(leaves, t.CurrentNode().Path().String())
				Expect(s.Len()).To(Equal(3))
				return nil
			}),
		)
		res, err := d.Run(context.Background())
		Expect(err).ToNot(HaveOccurred())
		Expect(res.Exhausted).To(BeTrue())
		Expect(res.LimitReached).To(BeFalse())
		Expect(res.Activations).To(Equal(7))
		Expect(res.Solutions).To(Equal(4))
		Expect(leaves).To(Equal([]string{"[0 0]", "[0 1]", "[1 0]", "[1 1]"}))

		Expect(testutil.ToFloat64(metrics.Activations)).To(Equal(7.0))
		Expect(testutil.ToFloat64(metrics.Solutions)).To(Equal(4.0))
		Expect(testutil.ToFloat64(metrics.Backtracks)).To(Equal(6.0))
		Expect(testutil.ToFloat64(metrics.Failures)).To(BeZero())
		count, err := testutil.GatherAndCount(reg)
		Expect(err).ToNot(HaveOccurred())
		Expect(count).To(Equal(4))
	})

	It("should stop after the requested number of solutions", func() {
		d := driver.New(crawl(branch(s, "r", 2)), driver.WithMaxSolutions(1))
		res, err := d.Run(context.Background())
		Expect(err).ToNot(HaveOccurred())
		Expect(res.Solutions).To(Equal(1))
		Expect(res.Activations).To(Equal(3))
		Expect(res.Exhausted).To(BeFalse())
	})

	It("should stop at the iteration limit", func() {
		d := driver.New(crawl(branch(s, "r", 2)), driver.WithLimit(2))
		res, err := d.Run(context.Background())
		Expect(err).ToNot(HaveOccurred())
		Expect(res.LimitReached).To(BeTrue())
		Expect(res.Activations).To(Equal(2))
		Expect(res.Solutions).To(BeZero())
	})

	It("should apply technique changes returned by activations", func() {
		act := search.Combine(
			search.ChangeTechnique(search.WithLimit(4), search.WithTechnique("narrow")),
			branch(s, "r", 2),
		)
		d := driver.New(crawl(act))
		res, err := d.Run(context.Background())
		Expect(err).ToNot(HaveOccurred())
		Expect(res.LimitReached).To(BeTrue())
		Expect(res.Activations).To(Equal(4))
		Expect(res.Technique).To(Equal("narrow"))
	})

	It("should hand the goal of an overlay to later activations", func() {
		g := &countingGoal{}
		act := search.Combine(search.ChangeTechnique(search.WithGoal(g)), branch(s, "r", 1))
		d := driver.New(crawl(act), driver.WithMaxSolutions(0))
		res, err := d.Run(context.Background())
		Expect(err).ToNot(HaveOccurred())
		Expect(res.Activations).To(Equal(3))
		Expect(g.updates).To(Equal(2))
	})

	It("should prune failing branches and go on", func() {
		act := search.Choose(
			search.Step(func() (search.Action, error) { return nil, search.Fail("dead end") }),
			branch(s, "r", 0),
		)
		d := driver.New(crawl(act), driver.WithMetrics(metrics))
		res, err := d.Run(context.Background())
		Expect(err).ToNot(HaveOccurred())
		Expect(res.Solutions).To(Equal(1))
		Expect(testutil.ToFloat64(metrics.Failures)).To(Equal(1.0))
	})

	It("should return errors other than propagation failures", func() {
		g := &countingGoal{fail: errors.New("goal broken")}
		d := driver.New(crawl(branch(s, "r", 1)), driver.WithGoal(g))
		_, err := d.Run(context.Background())
		Expect(err).To(MatchError("goal broken"))
	})

	It("should let the solution handler stop the search", func() {
		d := driver.New(crawl(branch(s, "r", 2)),
			driver.WithMaxSolutions(0),
			driver.WithSolutionHandler(func(search.Tree) error { return driver.ErrStop }),
		)
		res, err := d.Run(context.Background())
		Expect(err).ToNot(HaveOccurred())
		Expect(res.Solutions).To(Equal(1))
	})

	It("should stop when the context is done", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		d := driver.New(crawl(branch(s, "r", 2)))
		res, err := d.Run(ctx)
		Expect(err).To(MatchError(context.Canceled))
		Expect(res.Activations).To(BeZero())
	})

	It("should tag its log entries with the run id", func() {
		logger, hook := test.NewNullLogger()
		id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
		d := driver.New(crawl(branch(s, "r", 0)),
			driver.WithLogger(logrus.NewEntry(logger)),
			driver.WithUUIDProvider(func() (uuid.UUID, error) { return id, nil }),
		)
		res, err := d.Run(context.Background())
		Expect(err).ToNot(HaveOccurred())
		Expect(res.RunID).To(Equal(id.String()))
		Expect(hook.Entries).ToNot(BeEmpty())
		for _, e := range hook.AllEntries() {
			Expect(e.Data).To(HaveKeyWithValue("run", id.String()))
		}
	})

	It("should still run when no run id can be generated", func() {
		d := driver.New(crawl(branch(s, "r", 0)),
			driver.WithUUIDProvider(func() (uuid.UUID, error) { return uuid.Nil, errors.New("no entropy") }),
		)
		res, err := d.Run(context.Background())
		Expect(err).ToNot(HaveOccurred())
		Expect(res.RunID).To(ContainSubstring("no entropy"))
	})
})

var _ = Describe("NewTree", func() {
	It("should build the tree the profile asks for", func() {
		s := store.NewMap[string, int]()
		p := config.Default()
		tree, err := driver.NewTree(p, branch(s, "r", 1), s, nil)
		Expect(err).ToNot(HaveOccurred())
		Expect(tree).To(BeAssignableToTypeOf(&search.CrawlingTree{}))

		p.Strategy = config.StrategyJump
		p.SnapshotInterval = 2
		tree, err = driver.NewTree(p, branch(s, "r", 1), s, nil)
		Expect(err).ToNot(HaveOccurred())
		Expect(tree).To(BeAssignableToTypeOf(&search.JumpingTree{}))

		res, err := driver.New(tree, driver.WithMaxSolutions(0)).Run(context.Background())
		Expect(err).ToNot(HaveOccurred())
		Expect(res.Solutions).To(Equal(2))
	})

	It("should reject an invalid profile", func() {
		s := store.NewMap[string, int]()
		p := config.Default()
		p.Strategy = "sideways"
		_, err := driver.NewTree(p, branch(s, "r", 1), s, nil)
		Expect(err).To(MatchError(ContainSubstring("unknown strategy")))
	})
})

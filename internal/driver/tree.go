package driver

import (
	"github.com/sirupsen/logrus"

	"github.com/operator-framework/searchtree/internal/config"
	"github.com/operator-framework/searchtree/pkg/search"
)

// NewTree builds the tree and state manager a profile asks for, with
// act as the root action and store as the external state.
func NewTree(p config.Profile, act search.Action, store search.Store, logger *logrus.Entry, options ...search.TreeOption) (search.Tree, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	options = append(options,
		search.WithLogger(logger),
		search.WithDeactivateOnAscend(p.DeactivateOnAscend),
	)
	managerOptions := []search.ManagerOption{
		search.WithManagerLogger(logger),
		search.WithSnapshotInterval(p.SnapshotInterval),
	}
	if p.Strategy == config.StrategyJump {
		return search.NewJumpingTree(act, search.NewRecalculatingStateManager(store, managerOptions...), options...), nil
	}
	return search.NewCrawlingTree(act, search.NewDeltaStateManager(store, managerOptions...), options...), nil
}

package config

import (
	"github.com/spf13/cobra"
)

const (
	flagConfig             = "config"
	flagStrategy           = "strategy"
	flagSnapshotInterval   = "snapshot-interval"
	flagDeactivateOnAscend = "deactivate-on-ascend"
	flagLimit              = "limit"
	flagMaxSolutions       = "solutions"
)

// AddFlags registers the profile flags on cmd.
func AddFlags(cmd *cobra.Command) {
	d := Default()
	flags := cmd.Flags()
	flags.String(flagConfig, "", "path to a YAML search profile")
	flags.String(flagStrategy, string(d.Strategy), "tree strategy: crawl or jump")
	flags.Int(flagSnapshotInterval, d.SnapshotInterval, "keep a snapshot every n levels (jump strategy)")
	flags.Bool(flagDeactivateOnAscend, d.DeactivateOnAscend, "drop explored subtrees when backtracking")
	flags.Int(flagLimit, d.Limit, "maximum number of node activations, 0 for no limit")
	flags.Int(flagMaxSolutions, d.MaxSolutions, "stop after n solutions, 0 for all")
}

// FromFlags loads the profile named by --config, or the defaults, and
// applies every flag that was set explicitly on top of it.
func FromFlags(cmd *cobra.Command) (Profile, error) {
	flags := cmd.Flags()
	p := Default()
	if path, err := flags.GetString(flagConfig); err != nil {
		return Profile{}, err
	} else if path != "" {
		if p, err = Load(path); err != nil {
			return Profile{}, err
		}
	}

	var err error
	if flags.Changed(flagStrategy) {
		var s string
		if s, err = flags.GetString(flagStrategy); err != nil {
			return Profile{}, err
		}
		p.Strategy = Strategy(s)
	}
	if flags.Changed(flagSnapshotInterval) {
		if p.SnapshotInterval, err = flags.GetInt(flagSnapshotInterval); err != nil {
			return Profile{}, err
		}
	}
	if flags.Changed(flagDeactivateOnAscend) {
		if p.DeactivateOnAscend, err = flags.GetBool(flagDeactivateOnAscend); err != nil {
			return Profile{}, err
		}
	}
	if flags.Changed(flagLimit) {
		if p.Limit, err = flags.GetInt(flagLimit); err != nil {
			return Profile{}, err
		}
	}
	if flags.Changed(flagMaxSolutions) {
		if p.MaxSolutions, err = flags.GetInt(flagMaxSolutions); err != nil {
			return Profile{}, err
		}
	}
	return p, p.Validate()
}

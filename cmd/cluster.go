package cmd

import (
	"pgcluster/internal/cluster"
	"pgcluster/internal/coordination"
	"pgcluster/internal/filelock"
)

// openCluster builds a ResourceFree for the cluster at datadirFlag, using
// the runtime discovery chain resolved from the current flags.
func openCluster() (coordination.ResourceFree[*cluster.Cluster], error) {
	lockPath, err := filelock.ClusterLockPath(datadirFlag)
	if err != nil {
		return coordination.ResourceFree[*cluster.Cluster]{}, err
	}
	c := cluster.New(datadirFlag, strategy())
	return coordination.NewResourceFree(lockPath, c)
}

// parseOptions turns a "name=value" flag slice into cluster.StartOptions.
func parseOptions(raw []string) cluster.StartOptions {
	opts := make(cluster.StartOptions, len(raw))
	for _, kv := range raw {
		name, value, ok := splitOption(kv)
		if !ok {
			continue
		}
		opts[name] = value
	}
	return opts
}

func splitOption(kv string) (name, value string, ok bool) {
	for i := 0; i < len(kv); i++ {
		if kv[i] == '=' {
			return kv[:i], kv[i+1:], true
		}
	}
	return "", "", false
}

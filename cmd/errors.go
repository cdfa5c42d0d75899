package cmd

import "github.com/meltosvc/tvc/internal/tvcerr"

// exitCode maps an engine error to spec's CLI exit codes: 0 success,
// 1 generic failure, 2 conflict, 3 nothing to commit, 4 not initialized.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	switch {
	case tvcerr.Is(err, tvcerr.KindTreeConflict), tvcerr.Is(err, tvcerr.KindDivergence):
		return 2
	case tvcerr.Is(err, tvcerr.KindNothingToCommit):
		return 3
	case tvcerr.Is(err, tvcerr.KindNotInitialized):
		return 4
	default:
		return 1
	}
}

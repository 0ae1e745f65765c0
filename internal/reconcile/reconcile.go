// Package reconcile implements the change-detection core: compare the
// current fingerprint of the watched files against the stored one and
// advance the version counter on mismatch.
package reconcile

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/usishare/docver/internal/fingerprint"
	"github.com/usishare/docver/internal/store"
)

// ErrVersionOverflow is returned when the counter cannot be incremented
// without overflowing. A document build counter should never get anywhere
// near this; the guard keeps the failure explicit instead of wrapping.
var ErrVersionOverflow = errors.New("version counter overflow")

// State describes the outcome of a reconcile run
type State string

const (
	// StateUnchanged means the watched files match the stored fingerprint;
	// nothing was written.
	StateUnchanged State = "unchanged"
	// StateAdvanced means the fingerprint differed and both stores were
	// rewritten (or would be, in dry-run mode).
	StateAdvanced State = "advanced"
)

// Result reports what a run did
type Result struct {
	State        State
	Bootstrapped bool   // a store file had to be created on entry
	Fingerprint  string // fingerprint computed from the watched files
	OldVersion   int64  // only meaningful when State == StateAdvanced
	NewVersion   int64  // only meaningful when State == StateAdvanced
}

// Engine runs a single reconcile pass
type Engine struct {
	stores   store.Pair
	observed []string
	logger   *slog.Logger
	dryRun   bool
}

// NewEngine creates a new reconcile engine. The observed slice order is
// significant: it is the concatenation order of the fingerprint.
func NewEngine(stores store.Pair, observed []string, logger *slog.Logger, dryRun bool) *Engine {
	return &Engine{
		stores:   stores,
		observed: observed,
		logger:   logger,
		dryRun:   dryRun,
	}
}

// Run executes one complete reconcile pass. Every read, including the
// version parse, happens before the first write, so a fatal error at any
// point leaves both stores in their last-known-good state. Running twice
// without intervening file changes is a no-op the second time.
func (e *Engine) Run() (*Result, error) {
	// Ensure both stores exist before anything reads them
	bootstrapped, err := e.stores.Bootstrap()
	if err != nil {
		return nil, err
	}
	if bootstrapped {
		e.logger.Info("initialized store files",
			"hash_store", e.stores.HashPath,
			"version_store", e.stores.VersionPath)
	}

	oldFingerprint, err := e.stores.ReadFingerprint()
	if err != nil {
		return nil, err
	}

	newFingerprint, err := fingerprint.Compute(e.observed)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("computed fingerprint",
		"fingerprint", newFingerprint,
		"files", len(e.observed))

	res := &Result{
		Bootstrapped: bootstrapped,
		Fingerprint:  newFingerprint,
	}

	if oldFingerprint == newFingerprint {
		res.State = StateUnchanged
		e.logger.Info("watched files unchanged", "fingerprint", newFingerprint)
		return res, nil
	}

	// Change detected. The version parse must land before any write: a
	// parse failure here aborts with both stores untouched.
	oldVersion, err := e.stores.ReadVersion()
	if err != nil {
		return nil, err
	}

	newVersion, err := increment(oldVersion)
	if err != nil {
		return nil, err
	}

	res.State = StateAdvanced
	res.OldVersion = oldVersion
	res.NewVersion = newVersion

	if e.dryRun {
		e.logger.Info("[dry-run] would advance version",
			"from", oldVersion,
			"to", newVersion,
			"fingerprint", newFingerprint)
		return res, nil
	}

	if err := e.stores.WriteFingerprint(newFingerprint); err != nil {
		return nil, err
	}
	if err := e.stores.WriteVersion(newVersion); err != nil {
		return nil, err
	}

	e.logger.Info("version advanced",
		"from", oldVersion,
		"to", newVersion,
		"fingerprint", newFingerprint)
	return res, nil
}

// increment advances the counter by exactly one
func increment(v int64) (int64, error) {
	if v == math.MaxInt64 {
		return 0, fmt.Errorf("%w: current version %d", ErrVersionOverflow, v)
	}
	return v + 1, nil
}

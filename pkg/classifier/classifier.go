package classifier

import (
	"path/filepath"

	"github.com/arthur-debert/wd40/pkg/artifact"
	"github.com/arthur-debert/wd40/pkg/errors"
	"github.com/arthur-debert/wd40/pkg/filesystem"
	"github.com/arthur-debert/wd40/pkg/logging"
	"github.com/arthur-debert/wd40/pkg/probes"
	"github.com/arthur-debert/wd40/pkg/types"
	"github.com/rs/zerolog"
)

// Config contains configuration for the classifier
type Config struct {
	FS     types.FS
	Rules  []Rule
	Logger *zerolog.Logger
}

// Classifier turns a directory path into a Candidate verdict
type Classifier struct {
	prober *probes.Prober
	rules  []Rule
	logger zerolog.Logger
}

// New creates a classifier. A nil FS means the real filesystem and empty
// Rules means DefaultRules(DefaultOptions()).
func New(cfg Config) *Classifier {
	fs := cfg.FS
	if fs == nil {
		fs = filesystem.NewOS()
	}
	rules := cfg.Rules
	if len(rules) == 0 {
		rules = DefaultRules(DefaultOptions())
	}
	logger := logging.GetLogger("classifier")
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}
	return &Classifier{
		prober: probes.New(fs),
		rules:  rules,
		logger: logger,
	}
}

// Rules returns the rule table in evaluation order
func (c *Classifier) Rules() []Rule {
	return c.rules
}

// Classify evaluates the rules in priority order and returns the first
// confirmed match. A directory no rule confirms is Rejected with kind None
// and carries the signals of every rule whose name gate it passed.
func (c *Classifier) Classify(path string) artifact.Candidate {
	path = filepath.Clean(path)
	name := filepath.Base(path)

	var observed []artifact.Signal
	for i, rule := range c.rules {
		if !rule.matchesName(name) {
			continue
		}
		ok, signals := rule.evaluate(c.prober, path)
		if !ok {
			observed = append(observed, signals...)
			continue
		}

		c.checkAmbiguity(path, rule, c.rules[i+1:])
		cand := artifact.Candidate{
			Path:       path,
			Kind:       rule.Kind,
			Confidence: artifact.Confirmed,
			Signals:    signals,
		}
		c.logger.Trace().
			Str("path", path).
			Str("kind", rule.Kind.String()).
			Strs("evidence", cand.Evidence()).
			Msg("Directory confirmed")
		return cand
	}

	return artifact.Candidate{
		Path:       path,
		Kind:       artifact.None,
		Confidence: artifact.Rejected,
		Signals:    observed,
	}
}

// checkAmbiguity looks for lower priority rules that would also have
// confirmed the directory. The winner never changes; the overlap is only
// logged so layouts that trip it can be audited.
func (c *Classifier) checkAmbiguity(path string, winner Rule, rest []Rule) {
	if c.logger.GetLevel() > zerolog.DebugLevel || zerolog.GlobalLevel() > zerolog.DebugLevel {
		return
	}
	name := filepath.Base(path)
	for _, rule := range rest {
		if !rule.matchesName(name) {
			continue
		}
		if ok, _ := rule.evaluate(c.prober, path); ok {
			err := errors.Newf(errors.ErrClassificationAmbiguous,
				"%s also matches %s", path, rule.Kind).
				WithDetail("winner", winner.Kind.String()).
				WithDetail("other", rule.Kind.String())
			c.logger.Debug().
				Err(err).
				Str("path", path).
				Str("kind", winner.Kind.String()).
				Str("also", rule.Kind.String()).
				Msg("Ambiguous classification resolved by priority")
		}
	}
}

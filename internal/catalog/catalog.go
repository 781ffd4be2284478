// Package catalog loads the canned poll answers and reaction phrases the bot
// picks from. The backing file is read on every use; nothing is cached.
package catalog

import (
	"errors"
	"fmt"
	"math/rand/v2"
)

var (
	// ErrData is the parent of every catalog failure.
	ErrData = errors.New("catalog data error")

	ErrDataUnavailable = fmt.Errorf("%w: unavailable", ErrData)
	ErrDataMalformed   = fmt.Errorf("%w: malformed", ErrData)
	ErrEmptyCatalog    = fmt.Errorf("%w: empty option list", ErrData)
)

// PollOptions holds the answer pools for the availability poll.
type PollOptions struct {
	Yes []string `json:"ja" yaml:"ja" toml:"ja"`
	No  []string `json:"nein" yaml:"nein" toml:"nein"`
}

// MatchOptions holds phrases for reporting match results.
type MatchOptions struct {
	Win  []string `json:"win" yaml:"win" toml:"win"`
	Lose []string `json:"lose" yaml:"lose" toml:"lose"`
}

// Catalog is the decoded punlines file.
type Catalog struct {
	DodoPoll     *PollOptions `json:"dodo_poll" yaml:"dodo_poll" toml:"dodo_poll"`
	MatchOutcome MatchOptions `json:"match_outcome" yaml:"match_outcome" toml:"match_outcome"`
	// PerformanceVerbs is keyed by KDA threshold ("0.5", "1", "2", "5", "10", "inf").
	PerformanceVerbs map[string][]string `json:"performance_verbs" yaml:"performance_verbs" toml:"performance_verbs"`

	intn func(n int) int
}

// PollYes returns the pool of "yes" answers.
func (c *Catalog) PollYes() []string {
	if c.DodoPoll == nil {
		return nil
	}
	return c.DodoPoll.Yes
}

// PollNo returns the pool of "no" answers.
func (c *Catalog) PollNo() []string {
	if c.DodoPoll == nil {
		return nil
	}
	return c.DodoPoll.No
}

// PickYes selects one "yes" answer uniformly at random.
func (c *Catalog) PickYes() (string, error) {
	return c.pick("yes", c.PollYes())
}

// PickNo selects one "no" answer uniformly at random.
func (c *Catalog) PickNo() (string, error) {
	return c.pick("no", c.PollNo())
}

// PickPair returns the two options of a poll: one yes answer, then one no answer.
func (c *Catalog) PickPair() ([]string, error) {
	yes, err := c.PickYes()
	if err != nil {
		return nil, err
	}
	no, err := c.PickNo()
	if err != nil {
		return nil, err
	}
	return []string{yes, no}, nil
}

func (c *Catalog) pick(pool string, items []string) (string, error) {
	if len(items) == 0 {
		return "", fmt.Errorf("%w: %s answers", ErrEmptyCatalog, pool)
	}
	intn := c.intn
	if intn == nil {
		intn = rand.IntN
	}
	return items[intn(len(items))], nil
}

// Validate checks the catalog can serve a poll.
func (c *Catalog) Validate() error {
	if c.DodoPoll == nil {
		return fmt.Errorf("%w: missing dodo_poll section", ErrDataMalformed)
	}
	if c.DodoPoll.Yes == nil || c.DodoPoll.No == nil {
		return fmt.Errorf("%w: dodo_poll needs both ja and nein lists", ErrDataMalformed)
	}
	if len(c.DodoPoll.Yes) == 0 {
		return fmt.Errorf("%w: yes answers", ErrEmptyCatalog)
	}
	if len(c.DodoPoll.No) == 0 {
		return fmt.Errorf("%w: no answers", ErrEmptyCatalog)
	}
	return nil
}

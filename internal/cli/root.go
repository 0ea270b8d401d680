package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/maestro/internal/config"
	"github.com/julianstephens/maestro/internal/constants"
	"github.com/julianstephens/maestro/internal/dashboard"
	apperrors "github.com/julianstephens/maestro/internal/errors"
	"github.com/julianstephens/maestro/internal/keyring"
	"github.com/julianstephens/maestro/internal/models"
	"github.com/julianstephens/maestro/internal/repository"
	"github.com/julianstephens/maestro/internal/storage"
	"github.com/julianstephens/maestro/internal/storage/memory"
	"github.com/julianstephens/maestro/internal/storage/postgres"
	"github.com/julianstephens/maestro/internal/storage/sqlite"
	"github.com/julianstephens/maestro/internal/utils"
)

// EnvConnection names the environment variable holding a database location.
const EnvConnection = "MAESTRO_DB_CONNECTION"

type Context struct {
	Store     storage.Provider
	Repo      *repository.Repository
	Dashboard *dashboard.Service
	Config    config.Config
	// SettingsPath is the YAML file Config was loaded from.
	SettingsPath string

	// Confirmer answers graduation prompts. Nil means a terminal prompt.
	Confirmer dashboard.Confirmer
	// Out receives command output. Nil means os.Stdout.
	Out io.Writer
	// Now overrides the clock in tests.
	Now func() time.Time
}

// NewContext wires the repository and dashboard over store.
func NewContext(store storage.Provider, cfg config.Config) *Context {
	repo := repository.New(store)
	return &Context{
		Store:  store,
		Repo:   repo,
		Config: cfg,
		Dashboard: dashboard.New(repo, dashboard.Options{
			Suggestions: cfg.Dashboard.Suggestions,
			PerOutcome:  cfg.Dashboard.PerOutcome,
		}),
	}
}

// Stdout returns the writer commands print to.
func (c *Context) Stdout() io.Writer {
	if c.Out != nil {
		return c.Out
	}
	return os.Stdout
}

// Printf writes formatted output.
func (c *Context) Printf(format string, args ...any) {
	fmt.Fprintf(c.Stdout(), format, args...)
}

// Print writes s as is.
func (c *Context) Print(s string) {
	fmt.Fprint(c.Stdout(), s)
}

// Println writes a line of output.
func (c *Context) Println(args ...any) {
	fmt.Fprintln(c.Stdout(), args...)
}

// Ctx is the context commands run their storage calls under.
func (c *Context) Ctx() context.Context {
	return context.Background()
}

// Clock returns the current instant.
func (c *Context) Clock() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// Today returns the current local date, or date when it is set.
func (c *Context) Today(date string) (string, error) {
	if date != "" {
		if !utils.ValidateDateFormat(date) {
			return "", fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", date)
		}
		return date, nil
	}
	return utils.FormatLocalDate(c.Clock()), nil
}

// ConfirmerOrDefault returns the configured confirmer or a terminal prompt.
func (c *Context) ConfirmerOrDefault() dashboard.Confirmer {
	if c.Confirmer != nil {
		return c.Confirmer
	}
	return dashboard.HuhConfirmer{Accessible: os.Getenv("ACCESSIBLE") != ""}
}

// ResolveDatabase picks the database location. An explicit flag wins, then
// the environment, then the keyring, then the config file. fromSecretStore
// reports whether the value came from the environment or keyring, where
// embedded credentials are acceptable.
func ResolveDatabase(flag string, cfg config.Config, lookup func() (string, error)) (location string, fromSecretStore bool) {
	if flag != "" {
		return flag, false
	}
	if env := strings.TrimSpace(os.Getenv(EnvConnection)); env != "" {
		return env, true
	}
	if lookup != nil {
		if connStr, err := lookup(); err == nil && connStr != "" {
			return connStr, true
		}
	}
	return cfg.Database, false
}

// KeyringLookup reads the stored connection string.
func KeyringLookup() (string, error) {
	return keyring.GetConnectionString()
}

// IsPostgres reports whether location is a PostgreSQL URL.
func IsPostgres(location string) bool {
	return strings.HasPrefix(location, "postgres://") || strings.HasPrefix(location, "postgresql://")
}

// NewStore builds the provider for location: ":memory:", a PostgreSQL URL,
// or a sqlite file path.
func NewStore(location string, allowCredentials bool) (storage.Provider, error) {
	switch {
	case location == constants.MemoryConfigPath:
		return memory.New(), nil
	case IsPostgres(location):
		if err := postgres.ValidateConnString(location); err != nil {
			if !errors.Is(err, postgres.ErrEmbeddedCredentials) || !allowCredentials {
				return nil, err
			}
		}
		return postgres.New(location), nil
	default:
		path, err := config.ExpandPath(location)
		if err != nil {
			return nil, err
		}
		return sqlite.NewStore(path), nil
	}
}

// ParseWeekdays parses a comma-separated list of weekdays
func ParseWeekdays(s string) ([]time.Weekday, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	var weekdays []time.Weekday

	dayMap := map[string]time.Weekday{
		"sun":       time.Sunday,
		"sunday":    time.Sunday,
		"mon":       time.Monday,
		"monday":    time.Monday,
		"tue":       time.Tuesday,
		"tuesday":   time.Tuesday,
		"wed":       time.Wednesday,
		"wednesday": time.Wednesday,
		"thu":       time.Thursday,
		"thursday":  time.Thursday,
		"fri":       time.Friday,
		"friday":    time.Friday,
		"sat":       time.Saturday,
		"saturday":  time.Saturday,
	}

	for _, part := range parts {
		part = strings.TrimSpace(strings.ToLower(part))
		if wd, ok := dayMap[part]; ok {
			weekdays = append(weekdays, wd)
		} else {
			// Try parsing as number (0=Sunday, 6=Saturday)
			num, err := strconv.Atoi(part)
			if err == nil && num >= 0 && num <= 6 {
				weekdays = append(weekdays, time.Weekday(num))
			} else {
				return nil, fmt.Errorf("invalid weekday: %s", part)
			}
		}
	}

	return weekdays, nil
}

// matchRef finds the single candidate whose id equals ref, whose id starts
// with ref, or whose name equals ref ignoring case, in that order.
func matchRef[T any](kind, ref string, items []T, id, name func(T) string) (T, error) {
	var zero T
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return zero, apperrors.Validationf("%s reference is required", kind)
	}

	for _, it := range items {
		if id(it) == ref {
			return it, nil
		}
	}

	tiers := []func(T) bool{
		func(it T) bool { return strings.HasPrefix(id(it), ref) },
		func(it T) bool { return strings.EqualFold(strings.TrimSpace(name(it)), ref) },
	}
	for _, matches := range tiers {
		var found []T
		for _, it := range items {
			if matches(it) {
				found = append(found, it)
			}
		}
		switch len(found) {
		case 0:
			continue
		case 1:
			return found[0], nil
		default:
			return zero, apperrors.Validationf("%s %q is ambiguous (%d matches)", kind, ref, len(found))
		}
	}
	return zero, fmt.Errorf("%s %q: %w", kind, ref, apperrors.ErrNotFound)
}

// ResolveOutcome finds an outcome by id, id prefix or title.
func (c *Context) ResolveOutcome(ref string) (models.Outcome, error) {
	outcomes, err := c.Repo.ListOutcomes(c.Ctx(), true)
	if err != nil {
		return models.Outcome{}, err
	}
	return matchRef("outcome", ref, outcomes,
		func(o models.Outcome) string { return o.ID },
		func(o models.Outcome) string { return o.Title })
}

// ResolveOutput finds an output by id, id prefix or description.
func (c *Context) ResolveOutput(ref string) (models.Output, error) {
	outputs, err := c.Repo.ListAllOutputs(c.Ctx())
	if err != nil {
		return models.Output{}, err
	}
	return matchRef("output", ref, outputs,
		func(o models.Output) string { return o.ID },
		func(o models.Output) string { return o.Description })
}

// ResolveSkill finds a live skill by id, id prefix or name. Archived skills
// are only matched by id.
func (c *Context) ResolveSkill(ref string) (models.SkillItem, error) {
	all, err := c.Repo.ListSkillItems(c.Ctx())
	if err != nil {
		return models.SkillItem{}, err
	}
	for _, s := range all {
		if s.ID == ref {
			return s, nil
		}
	}
	live := make([]models.SkillItem, 0, len(all))
	for _, s := range all {
		if s.Stage != constants.StageArchived {
			live = append(live, s)
		}
	}
	return matchRef("skill", ref, live,
		func(s models.SkillItem) string { return s.ID },
		func(s models.SkillItem) string { return s.Name })
}

// ShortID trims an id for display.
func ShortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
